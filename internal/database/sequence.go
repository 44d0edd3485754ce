package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"grc-center/internal/models"
)

// CodeFormat pairs a counter with the display format of the identifiers it
// hands out. Uniqueness comes from the counter, the format is cosmetic.
type CodeFormat struct {
	Sequence string
	Format   string
}

var (
	RiskCodes       = CodeFormat{Sequence: "risk", Format: "RISK-%05d"}
	FindingCodes    = CodeFormat{Sequence: "risk_aws", Format: "AWS-%05d"}
	ControlCodes    = CodeFormat{Sequence: "control", Format: "GEN-%04d"}
	VendorCodes     = CodeFormat{Sequence: "vendor", Format: "VND-%05d"}
	AssessmentCodes = CodeFormat{Sequence: "assessment", Format: "ASSESS-%05d"}
	EvidenceCodes   = CodeFormat{Sequence: "evidence", Format: "EVD-%06d"}
	CollectionCodes = CodeFormat{Sequence: "collection", Format: "COLL-%05d"}
)

// nextValue atomically increments the named counter and returns the new value.
func nextValue(tx *gorm.DB, name string) (int64, error) {
	seed := models.Sequence{Name: name}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return 0, fmt.Errorf("init sequence %s: %w", name, err)
	}

	var value int64
	err := tx.Raw("UPDATE sequences SET value = value + 1 WHERE name = ? RETURNING value", name).
		Scan(&value).Error
	if err != nil {
		return 0, fmt.Errorf("advance sequence %s: %w", name, err)
	}
	return value, nil
}

func nextCode(tx *gorm.DB, f CodeFormat) (string, error) {
	v, err := nextValue(tx, f.Sequence)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(f.Format, v), nil
}

// NextCode reserves the next display identifier of f.
func (s *Store) NextCode(ctx context.Context, f CodeFormat) (string, error) {
	return nextCode(s.conn(ctx), f)
}
