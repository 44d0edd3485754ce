package models

import "time"

type ControlType string
type ControlStatus string

const (
	ControlPreventive ControlType = "Preventive"
	ControlDetective  ControlType = "Detective"
	ControlCorrective ControlType = "Corrective"
	ControlDirective  ControlType = "Directive"

	ControlImplemented          ControlStatus = "Implemented"
	ControlPartiallyImplemented ControlStatus = "Partially Implemented"
	ControlNotImplemented       ControlStatus = "Not Implemented"
	ControlNotApplicable        ControlStatus = "Not Applicable"
)

var (
	ControlTypes    = []ControlType{ControlPreventive, ControlDetective, ControlCorrective, ControlDirective}
	ControlStatuses = []ControlStatus{ControlImplemented, ControlPartiallyImplemented, ControlNotImplemented, ControlNotApplicable}
)

func ParseControlType(s string) (ControlType, error) {
	return parseEnum("control type", s, ControlTypes)
}

func ParseControlStatus(s string) (ControlStatus, error) {
	return parseEnum("control status", s, ControlStatuses)
}

func (t ControlType) Valid() bool   { return containsEnum(t, ControlTypes) }
func (s ControlStatus) Valid() bool { return containsEnum(s, ControlStatuses) }

// Control is a safeguard from the control library.
type Control struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Code        string        `gorm:"size:100;uniqueIndex" json:"control_id"`
	Title       string        `gorm:"size:255;not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	ControlType ControlType   `gorm:"type:varchar(32);not null" json:"control_type"`
	Status      ControlStatus `gorm:"type:varchar(32);not null;index" json:"status"`

	ImplementationDescription string `gorm:"type:text" json:"implementation_description"`
	Owner                     string `gorm:"size:100" json:"owner"`
	ResponsibleTeam           string `gorm:"size:100" json:"responsible_team"`

	TestProcedure     string     `gorm:"type:text" json:"test_procedure"`
	TestFrequencyDays *int       `json:"test_frequency_days"`
	LastTested        *time.Time `json:"last_tested"`
	NextTestDate      *time.Time `json:"next_test_date"`
	TestStatus        string     `gorm:"size:50" json:"test_status"`

	EffectivenessRating      *int `json:"effectiveness_rating"`       // 1-5
	SystemOrchestrationLevel *int `json:"system_orchestration_level"` // 0-100 percent

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Tags         []string `gorm:"serializer:json" json:"tags"`
	CustomFields Fields   `gorm:"serializer:json" json:"custom_fields"`

	Mappings []ControlMapping `gorm:"foreignKey:ControlID" json:"-"`
}

// ControlFramework is a standard a control can be mapped to (SOC2, NIST CSF, ISO 27001).
type ControlFramework struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Version     string    `gorm:"size:50" json:"version"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ControlMapping links a control to a framework-specific requirement.
type ControlMapping struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	ControlID   uint `gorm:"index;not null" json:"-"`
	FrameworkID uint `gorm:"index;not null" json:"-"`

	FrameworkControlID string        `gorm:"size:100" json:"framework_control_id"` // e.g. CC6.1
	RequirementText    string        `gorm:"type:text" json:"requirement_text"`
	ComplianceStatus   ControlStatus `gorm:"type:varchar(32)" json:"compliance_status"`

	EvidenceRequired  []string `gorm:"serializer:json" json:"evidence_required"`
	EvidenceCollected []string `gorm:"serializer:json" json:"evidence_collected"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Framework ControlFramework `gorm:"foreignKey:FrameworkID" json:"framework"`
}
