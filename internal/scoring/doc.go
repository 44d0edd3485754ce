// Package scoring derives the computed fields of risks, vendors, vendor
// assessments and compliance frameworks. Every function is pure: it returns
// the derived values and leaves persisting them to the caller.
package scoring
