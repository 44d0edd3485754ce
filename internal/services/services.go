// Package services implements the record-keeping operations. Each operation
// loads entities through the repository, runs the scoring or aggregation
// functions on them, persists the derived fields and appends an audit entry.
package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"grc-center/internal/analytics"
	"grc-center/internal/database"
	"grc-center/internal/models"
	"grc-center/internal/transfer"
)

// DefaultListLimit applies when a list call does not set a limit.
const DefaultListLimit = 100

type Service struct {
	store    *database.Store
	log      *slog.Logger
	now      func() time.Time
	evidence transfer.Storage
	impact   analytics.ImpactConstants
}

type Options struct {
	Logger *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
	// Evidence stores uploaded evidence files. Uploads fail when it is nil.
	Evidence transfer.Storage
	Impact   analytics.ImpactConstants
}

func New(store *database.Store, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Impact == (analytics.ImpactConstants{}) {
		opts.Impact = analytics.DefaultImpactConstants()
	}
	return &Service{
		store:    store,
		log:      opts.Logger,
		now:      opts.Now,
		evidence: opts.Evidence,
		impact:   opts.Impact,
	}
}

func (s *Service) Store() *database.Store {
	return s.store
}

// NotFoundError names the entity that a lookup could not find.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return database.ErrNotFound }

// ValidationError is returned for input that fails a domain rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsInvalidInput reports whether err was caused by bad caller input.
func IsInvalidInput(err error) bool {
	var ve *ValidationError
	var ive *models.InvalidValueError
	return errors.As(err, &ve) || errors.As(err, &ive)
}

// lookup turns database.ErrNotFound into a NotFoundError for entity id.
func lookup[T any](rec *T, err error, entity, id string) (*T, error) {
	if errors.Is(err, database.ErrNotFound) {
		return nil, &NotFoundError{Entity: entity, ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("load %s %s: %w", entity, id, err)
	}
	return rec, nil
}

// RowError is one rejected row of an import. Row is the spreadsheet row
// number, the header being row 1.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

func (e RowError) String() string {
	return fmt.Sprintf("Row %d: %s", e.Row, e.Message)
}

// ImportReport is the result of a partial-success import.
type ImportReport struct {
	ImportedCount int        `json:"imported_count"`
	Errors        []RowError `json:"errors"`
}

func limitOrDefault(p database.Page) database.Page {
	if p.Limit <= 0 {
		p.Limit = DefaultListLimit
	}
	return p
}

func ptr[T any](v T) *T { return &v }
