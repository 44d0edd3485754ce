package models

import "time"

type VendorStatus string
type VendorRiskLevel string
type AssessmentStatus string

const (
	VendorActive      VendorStatus = "Active"
	VendorOnboarding  VendorStatus = "Onboarding"
	VendorOffboarding VendorStatus = "Offboarding"
	VendorInactive    VendorStatus = "Inactive"
	VendorSuspended   VendorStatus = "Suspended"

	VendorCritical VendorRiskLevel = "Critical"
	VendorHigh     VendorRiskLevel = "High"
	VendorMedium   VendorRiskLevel = "Medium"
	VendorLow      VendorRiskLevel = "Low"

	AssessmentNotStarted  AssessmentStatus = "Not Started"
	AssessmentInProgress  AssessmentStatus = "In Progress"
	AssessmentUnderReview AssessmentStatus = "Under Review"
	AssessmentCompleted   AssessmentStatus = "Completed"
	AssessmentExpired     AssessmentStatus = "Expired"
)

// DefaultAssessmentFrequencyDays applies when a vendor has no cadence set.
const DefaultAssessmentFrequencyDays = 365

var (
	VendorStatuses     = []VendorStatus{VendorActive, VendorOnboarding, VendorOffboarding, VendorInactive, VendorSuspended}
	VendorRiskLevels   = []VendorRiskLevel{VendorCritical, VendorHigh, VendorMedium, VendorLow}
	AssessmentStatuses = []AssessmentStatus{AssessmentNotStarted, AssessmentInProgress, AssessmentUnderReview, AssessmentCompleted, AssessmentExpired}
)

func ParseVendorStatus(s string) (VendorStatus, error) {
	return parseEnum("vendor status", s, VendorStatuses)
}

func ParseVendorRiskLevel(s string) (VendorRiskLevel, error) {
	return parseEnum("vendor risk level", s, VendorRiskLevels)
}

func ParseAssessmentStatus(s string) (AssessmentStatus, error) {
	return parseEnum("assessment status", s, AssessmentStatuses)
}

func (s VendorStatus) Valid() bool     { return containsEnum(s, VendorStatuses) }
func (l VendorRiskLevel) Valid() bool  { return containsEnum(l, VendorRiskLevels) }
func (s AssessmentStatus) Valid() bool { return containsEnum(s, AssessmentStatuses) }

type Vendor struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Code        string       `gorm:"size:100;uniqueIndex" json:"vendor_id"`
	Name        string       `gorm:"size:255;not null" json:"name"`
	Description string       `gorm:"type:text" json:"description"`
	Status      VendorStatus `gorm:"type:varchar(32);not null;index" json:"status"`

	PrimaryContactName  string `gorm:"size:100" json:"primary_contact_name"`
	PrimaryContactEmail string `gorm:"size:100" json:"primary_contact_email"`
	PrimaryContactPhone string `gorm:"size:50" json:"primary_contact_phone"`
	Website             string `gorm:"size:255" json:"website"`

	RiskLevel        VendorRiskLevel `gorm:"type:varchar(32);index" json:"risk_level"`
	RiskScore        *float64        `json:"risk_score"`
	CriticalityLevel string          `gorm:"size:50" json:"criticality_level"`

	ServiceType       string     `gorm:"size:255" json:"service_type"`
	ContractStartDate *time.Time `json:"contract_start_date"`
	ContractEndDate   *time.Time `json:"contract_end_date"`
	AnnualSpend       *float64   `json:"annual_spend"`

	DataAccess             bool     `json:"data_access"`
	DataTypes              []string `gorm:"serializer:json" json:"data_types"`
	ComplianceRequirements []string `gorm:"serializer:json" json:"compliance_requirements"`
	Certifications         []string `gorm:"serializer:json" json:"certifications"`

	LastAssessmentDate      *time.Time `json:"last_assessment_date"`
	NextAssessmentDate      *time.Time `json:"next_assessment_date"`
	AssessmentFrequencyDays int        `gorm:"default:365" json:"assessment_frequency_days"`

	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Tags         []string  `gorm:"serializer:json" json:"tags"`
	CustomFields Fields    `gorm:"serializer:json" json:"custom_fields"`
}

type VendorAssessment struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	VendorID uint   `gorm:"index;not null" json:"vendor_ref"`
	Code     string `gorm:"size:100;uniqueIndex" json:"assessment_id"`

	AssessmentType string           `gorm:"size:100" json:"assessment_type"` // Initial, Annual, Ad-hoc
	Status         AssessmentStatus `gorm:"type:varchar(32);not null" json:"status"`
	Assessor       string           `gorm:"size:100" json:"assessor"`

	StartDate      *time.Time `json:"start_date"`
	CompletionDate *time.Time `json:"completion_date"`
	DueDate        *time.Time `json:"due_date"`

	OverallScore     *float64 `json:"overall_score"`
	SecurityScore    *float64 `json:"security_score"`
	PrivacyScore     *float64 `json:"privacy_score"`
	OperationalScore *float64 `json:"operational_score"`
	FinancialScore   *float64 `json:"financial_score"`

	Findings        []Fields `gorm:"serializer:json" json:"findings"`
	Recommendations []string `gorm:"serializer:json" json:"recommendations"`
	ActionItems     []string `gorm:"serializer:json" json:"action_items"`
	Responses       Fields   `gorm:"serializer:json" json:"responses"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
