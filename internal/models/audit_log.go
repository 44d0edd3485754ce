package models

import "time"

// AnonymousActor is recorded when a request carries no actor in its session.
const AnonymousActor = "anonymous"

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Actor     string `gorm:"size:100;not null" json:"actor"`
	RequestID string `gorm:"size:64" json:"request_id"`

	Entity   string `gorm:"size:50;not null" json:"entity"` // "risk", "vendor", "framework"
	EntityID string `gorm:"size:100" json:"entity_id"`
	Action   string `gorm:"size:50;not null" json:"action"` // "create", "recompute", "import"
	Details  string `gorm:"type:text" json:"details"`
}

// Sequence backs the display identifiers (RISK-00001, VND-00001).
type Sequence struct {
	Name  string `gorm:"primaryKey;size:50"`
	Value int64  `gorm:"not null"`
}
