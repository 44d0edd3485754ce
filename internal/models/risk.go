package models

import (
	"strconv"
	"strings"
	"time"
)

type RiskCategory string
type RiskStatus string
type RiskLevel string

const (
	CategoryStrategic    RiskCategory = "Strategic"
	CategoryOperational  RiskCategory = "Operational"
	CategoryFinancial    RiskCategory = "Financial"
	CategoryCompliance   RiskCategory = "Compliance"
	CategoryTechnology   RiskCategory = "Technology"
	CategoryReputational RiskCategory = "Reputational"

	RiskOpen       RiskStatus = "Open"
	RiskInProgress RiskStatus = "In Progress"
	RiskMitigated  RiskStatus = "Mitigated"
	RiskAccepted   RiskStatus = "Accepted"
	RiskClosed     RiskStatus = "Closed"

	LevelCritical RiskLevel = "Critical"
	LevelHigh     RiskLevel = "High"
	LevelMedium   RiskLevel = "Medium"
	LevelLow      RiskLevel = "Low"
)

var (
	RiskCategories = []RiskCategory{CategoryStrategic, CategoryOperational, CategoryFinancial, CategoryCompliance, CategoryTechnology, CategoryReputational}
	RiskStatuses   = []RiskStatus{RiskOpen, RiskInProgress, RiskMitigated, RiskAccepted, RiskClosed}
	RiskLevels     = []RiskLevel{LevelCritical, LevelHigh, LevelMedium, LevelLow}
)

func ParseRiskCategory(s string) (RiskCategory, error) {
	return parseEnum("risk category", s, RiskCategories)
}

func ParseRiskStatus(s string) (RiskStatus, error) {
	return parseEnum("risk status", s, RiskStatuses)
}

func (c RiskCategory) Valid() bool { return containsEnum(c, RiskCategories) }
func (s RiskStatus) Valid() bool   { return containsEnum(s, RiskStatuses) }

// Likelihood is the 1-5 ordinal probability scale.
type Likelihood int

const (
	LikelihoodRare          Likelihood = 1
	LikelihoodUnlikely      Likelihood = 2
	LikelihoodPossible      Likelihood = 3
	LikelihoodLikely        Likelihood = 4
	LikelihoodAlmostCertain Likelihood = 5
)

var likelihoodNames = []string{"Rare", "Unlikely", "Possible", "Likely", "Almost Certain"}

func (l Likelihood) Valid() bool { return l >= LikelihoodRare && l <= LikelihoodAlmostCertain }

func (l Likelihood) String() string {
	if !l.Valid() {
		return "Likelihood(" + strconv.Itoa(int(l)) + ")"
	}
	return likelihoodNames[l-1]
}

// ParseLikelihood accepts either the ordinal ("4") or the name ("LIKELY", "Almost Certain").
func ParseLikelihood(s string) (Likelihood, error) {
	v, err := parseOrdinal("likelihood", s, likelihoodNames)
	return Likelihood(v), err
}

// Impact is the 1-5 ordinal consequence scale.
type Impact int

const (
	ImpactInsignificant Impact = 1
	ImpactMinor         Impact = 2
	ImpactModerate      Impact = 3
	ImpactMajor         Impact = 4
	ImpactCatastrophic  Impact = 5
)

var impactNames = []string{"Insignificant", "Minor", "Moderate", "Major", "Catastrophic"}

func (i Impact) Valid() bool { return i >= ImpactInsignificant && i <= ImpactCatastrophic }

func (i Impact) String() string {
	if !i.Valid() {
		return "Impact(" + strconv.Itoa(int(i)) + ")"
	}
	return impactNames[i-1]
}

func ParseImpact(s string) (Impact, error) {
	v, err := parseOrdinal("impact", s, impactNames)
	return Impact(v), err
}

func parseOrdinal(kind, raw string, names []string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(trimmed); err == nil {
		if n >= 1 && n <= len(names) {
			return n, nil
		}
		return 0, &InvalidValueError{Kind: kind, Value: raw}
	}
	key := normalizeName(trimmed)
	for i, name := range names {
		if normalizeName(name) == key {
			return i + 1, nil
		}
	}
	return 0, &InvalidValueError{Kind: kind, Value: raw}
}

// Risk is an entry of the risk register.
type Risk struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Code        string       `gorm:"size:50;uniqueIndex" json:"risk_id"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Category    RiskCategory `gorm:"type:varchar(32);not null;index" json:"category"`
	Status      RiskStatus   `gorm:"type:varchar(32);not null;index" json:"status"`

	Likelihood        Likelihood `gorm:"not null" json:"likelihood"`
	Impact            Impact     `gorm:"not null" json:"impact"`
	InherentRiskScore *float64   `json:"inherent_risk_score"`
	ResidualRiskScore *float64   `json:"residual_risk_score"`

	Owner          string   `gorm:"size:100" json:"owner"`
	AffectedAssets []string `gorm:"serializer:json" json:"affected_assets"`
	ThreatSource   string   `gorm:"size:255" json:"threat_source"`
	Vulnerability  string   `gorm:"type:text" json:"vulnerability"`

	MitigationStrategy string     `gorm:"type:text" json:"mitigation_strategy"`
	MitigationDeadline *time.Time `json:"mitigation_deadline"`
	ControlIDs         []string   `gorm:"serializer:json" json:"control_ids"`

	// ExternalID is set for risks imported from a finding source; NULL otherwise.
	ExternalID *string `gorm:"size:512;uniqueIndex" json:"external_id,omitempty"`

	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	LastReviewed        *time.Time `json:"last_reviewed"`
	ReviewFrequencyDays int        `gorm:"default:90" json:"review_frequency_days"`

	Tags         []string `gorm:"serializer:json" json:"tags"`
	CustomFields Fields   `gorm:"serializer:json" json:"custom_fields"`
}
