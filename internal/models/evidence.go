package models

import "time"

type EvidenceType string
type EvidenceStatus string
type CollectionMethod string

const (
	EvidenceScreenshot    EvidenceType = "Screenshot"
	EvidenceLogFile       EvidenceType = "Log File"
	EvidenceDocument      EvidenceType = "Document"
	EvidenceConfiguration EvidenceType = "Configuration"
	EvidenceReport        EvidenceType = "Report"
	EvidenceVideo         EvidenceType = "Video"
	EvidenceOther         EvidenceType = "Other"

	EvidencePending   EvidenceStatus = "Pending"
	EvidenceCollected EvidenceStatus = "Collected"
	EvidenceVerified  EvidenceStatus = "Verified"
	EvidenceExpired   EvidenceStatus = "Expired"
	EvidenceRejected  EvidenceStatus = "Rejected"

	CollectedManually CollectionMethod = "Manual"
	CollectedAuto     CollectionMethod = "Automated"
	CollectedAPI      CollectionMethod = "API"
	CollectedSchedule CollectionMethod = "Scheduled"
)

var (
	EvidenceTypes     = []EvidenceType{EvidenceScreenshot, EvidenceLogFile, EvidenceDocument, EvidenceConfiguration, EvidenceReport, EvidenceVideo, EvidenceOther}
	EvidenceStatuses  = []EvidenceStatus{EvidencePending, EvidenceCollected, EvidenceVerified, EvidenceExpired, EvidenceRejected}
	CollectionMethods = []CollectionMethod{CollectedManually, CollectedAuto, CollectedAPI, CollectedSchedule}
)

func ParseEvidenceType(s string) (EvidenceType, error) {
	return parseEnum("evidence type", s, EvidenceTypes)
}

func ParseEvidenceStatus(s string) (EvidenceStatus, error) {
	return parseEnum("evidence status", s, EvidenceStatuses)
}

func (t EvidenceType) Valid() bool     { return containsEnum(t, EvidenceTypes) }
func (s EvidenceStatus) Valid() bool   { return containsEnum(s, EvidenceStatuses) }
func (m CollectionMethod) Valid() bool { return containsEnum(m, CollectionMethods) }

// Evidence substantiates a control or requirement. ControlRef, Framework and
// RequirementRef are loose references, not foreign keys.
type Evidence struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Code         string         `gorm:"size:100;uniqueIndex" json:"evidence_id"`
	Title        string         `gorm:"size:255;not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	EvidenceType EvidenceType   `gorm:"type:varchar(32);not null" json:"evidence_type"`
	Status       EvidenceStatus `gorm:"type:varchar(32);not null;index" json:"status"`

	FileName string `gorm:"size:255" json:"file_name"`
	FilePath string `gorm:"size:500" json:"file_path"`
	FileSize *int64 `json:"file_size"`
	FileHash string `gorm:"size:100" json:"file_hash"` // hex SHA-256

	CollectionMethod CollectionMethod `gorm:"type:varchar(32)" json:"collection_method"`
	CollectedBy      string           `gorm:"size:100" json:"collected_by"`
	CollectionDate   *time.Time       `json:"collection_date"`
	CollectionSource string           `gorm:"size:255" json:"collection_source"`

	ControlRef     string `gorm:"column:control_ref;size:100;index" json:"control_id"`
	Framework      string `gorm:"size:100;index" json:"framework"`
	RequirementRef string `gorm:"column:requirement_ref;size:100" json:"requirement_id"`

	ValidFrom  *time.Time `json:"valid_from"`
	ValidUntil *time.Time `json:"valid_until"`
	IsExpired  bool       `json:"is_expired"`

	ReviewedBy  string     `gorm:"size:100" json:"reviewed_by"`
	ReviewDate  *time.Time `json:"review_date"`
	ReviewNotes string     `gorm:"type:text" json:"review_notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Tags      []string  `gorm:"serializer:json" json:"tags"`
	Metadata  Fields    `gorm:"serializer:json" json:"metadata"`

	CollectionID *uint `gorm:"index" json:"collection_ref,omitempty"`
}

// EvidenceCollection describes a recurring collection job. It is run by an
// external scheduler; Schedule is a cron expression.
type EvidenceCollection struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Code        string `gorm:"size:100;uniqueIndex" json:"collection_id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	CollectionType   string `gorm:"size:100" json:"collection_type"`
	Schedule         string `gorm:"size:100" json:"schedule"`
	IsActive         bool   `json:"is_active"`
	SourceSystem     string `gorm:"size:100" json:"source_system"`
	CollectionParams Fields `gorm:"serializer:json" json:"collection_params"`

	LastRun      *time.Time `json:"last_run"`
	NextRun      *time.Time `json:"next_run"`
	LastStatus   string     `gorm:"size:50" json:"last_status"`
	ErrorMessage string     `gorm:"type:text" json:"error_message"`

	TotalCollections      int `json:"total_collections"`
	SuccessfulCollections int `json:"successful_collections"`
	FailedCollections     int `json:"failed_collections"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
