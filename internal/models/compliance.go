package models

import "time"

type ComplianceStatus string

const (
	Compliant            ComplianceStatus = "Compliant"
	PartiallyCompliant   ComplianceStatus = "Partially Compliant"
	NonCompliant         ComplianceStatus = "Non-Compliant"
	NotApplicable        ComplianceStatus = "Not Applicable"
	ComplianceInProgress ComplianceStatus = "In Progress"
)

var ComplianceStatuses = []ComplianceStatus{Compliant, PartiallyCompliant, NonCompliant, NotApplicable, ComplianceInProgress}

func ParseComplianceStatus(s string) (ComplianceStatus, error) {
	return parseEnum("compliance status", s, ComplianceStatuses)
}

func (s ComplianceStatus) Valid() bool { return containsEnum(s, ComplianceStatuses) }

// ComplianceFramework caches the derived compliance figures of its requirements.
type ComplianceFramework struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Code        string `gorm:"size:100;uniqueIndex" json:"framework_id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Version     string `gorm:"size:50" json:"version"`
	Description string `gorm:"type:text" json:"description"`

	OverallCompliancePercentage float64          `json:"overall_compliance_percentage"`
	Status                      ComplianceStatus `gorm:"type:varchar(32)" json:"status"`

	TargetCertificationDate *time.Time `json:"target_certification_date"`
	LastAuditDate           *time.Time `json:"last_audit_date"`
	NextAuditDate           *time.Time `json:"next_audit_date"`

	TotalRequirements              int `json:"total_requirements"`
	CompliantRequirements          int `json:"compliant_requirements"`
	PartiallyCompliantRequirements int `json:"partially_compliant_requirements"`
	NonCompliantRequirements       int `json:"non_compliant_requirements"`

	IsActive  bool      `gorm:"index" json:"is_active"`
	Priority  int       `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Requirements []ComplianceRequirement `gorm:"foreignKey:FrameworkID" json:"-"`
}

// DisplayStatus is the framework status, "In Progress" until first computed.
func (f ComplianceFramework) DisplayStatus() ComplianceStatus {
	if f.Status == "" {
		return ComplianceInProgress
	}
	return f.Status
}

// ComplianceRequirement belongs to exactly one framework. Code is unique per framework only.
type ComplianceRequirement struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	FrameworkID uint   `gorm:"not null;uniqueIndex:idx_framework_requirement" json:"-"`
	Code        string `gorm:"size:100;uniqueIndex:idx_framework_requirement" json:"requirement_id"`

	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Category    string `gorm:"size:100" json:"category"`
	SubCategory string `gorm:"size:100" json:"sub_category"`

	Status               ComplianceStatus `gorm:"type:varchar(32);not null" json:"status"`
	CompliancePercentage float64          `json:"compliance_percentage"`

	Owner               string     `gorm:"size:100" json:"owner"`
	ImplementationNotes string     `gorm:"type:text" json:"implementation_notes"`
	RemediationPlan     string     `gorm:"type:text" json:"remediation_plan"`
	RemediationDeadline *time.Time `json:"remediation_deadline"`

	MappedControls    []string `gorm:"serializer:json" json:"mapped_controls"`
	RequiredEvidence  []string `gorm:"serializer:json" json:"required_evidence"`
	CollectedEvidence []string `gorm:"serializer:json" json:"collected_evidence"`
	EvidenceStatus    string   `gorm:"size:50" json:"evidence_status"`

	TestProcedure string     `gorm:"type:text" json:"test_procedure"`
	LastTested    *time.Time `json:"last_tested"`
	TestResults   string     `gorm:"type:text" json:"test_results"`

	// Priority: higher is more urgent.
	Priority  int       `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
