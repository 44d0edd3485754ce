package services

import (
	"context"
	"fmt"
	"time"

	"grc-center/internal/analytics"
	"grc-center/internal/database"
	"grc-center/internal/models"
	"grc-center/internal/scoring"
)

const entityRisk = "risk"

type RiskInput struct {
	Title               string        `json:"title" binding:"required"`
	Description         string        `json:"description"`
	Category            string        `json:"category" binding:"required"`
	Status              string        `json:"status"`
	Likelihood          int           `json:"likelihood" binding:"required"`
	Impact              int           `json:"impact" binding:"required"`
	Owner               string        `json:"owner"`
	AffectedAssets      []string      `json:"affected_assets"`
	ThreatSource        string        `json:"threat_source"`
	Vulnerability       string        `json:"vulnerability"`
	MitigationStrategy  string        `json:"mitigation_strategy"`
	MitigationDeadline  *time.Time    `json:"mitigation_deadline"`
	ControlIDs          []string      `json:"control_ids"`
	ReviewFrequencyDays int           `json:"review_frequency_days"`
	Tags                []string      `json:"tags"`
	CustomFields        models.Fields `json:"custom_fields"`
}

func (in RiskInput) model() (models.Risk, error) {
	if in.Title == "" {
		return models.Risk{}, invalid("title", "is required")
	}
	category, err := models.ParseRiskCategory(in.Category)
	if err != nil {
		return models.Risk{}, err
	}
	status := models.RiskOpen
	if in.Status != "" {
		if status, err = models.ParseRiskStatus(in.Status); err != nil {
			return models.Risk{}, err
		}
	}
	likelihood, impact := models.Likelihood(in.Likelihood), models.Impact(in.Impact)
	if !likelihood.Valid() {
		return models.Risk{}, invalid("likelihood", "must be between 1 and 5, got %d", in.Likelihood)
	}
	if !impact.Valid() {
		return models.Risk{}, invalid("impact", "must be between 1 and 5, got %d", in.Impact)
	}
	reviewDays := in.ReviewFrequencyDays
	if reviewDays <= 0 {
		reviewDays = 90
	}
	return models.Risk{
		Title:               in.Title,
		Description:         in.Description,
		Category:            category,
		Status:              status,
		Likelihood:          likelihood,
		Impact:              impact,
		Owner:               in.Owner,
		AffectedAssets:      in.AffectedAssets,
		ThreatSource:        in.ThreatSource,
		Vulnerability:       in.Vulnerability,
		MitigationStrategy:  in.MitigationStrategy,
		MitigationDeadline:  in.MitigationDeadline,
		ControlIDs:          in.ControlIDs,
		ReviewFrequencyDays: reviewDays,
		Tags:                in.Tags,
		CustomFields:        in.CustomFields,
	}, nil
}

// RiskUpdate is a partial update; nil fields are left unchanged.
type RiskUpdate struct {
	Title              *string       `json:"title"`
	Description        *string       `json:"description"`
	Category           *string       `json:"category"`
	Status             *string       `json:"status"`
	Likelihood         *int          `json:"likelihood"`
	Impact             *int          `json:"impact"`
	ResidualRiskScore  *float64      `json:"residual_risk_score"`
	Owner              *string       `json:"owner"`
	AffectedAssets     []string      `json:"affected_assets"`
	ThreatSource       *string       `json:"threat_source"`
	Vulnerability      *string       `json:"vulnerability"`
	MitigationStrategy *string       `json:"mitigation_strategy"`
	MitigationDeadline *time.Time    `json:"mitigation_deadline"`
	ControlIDs         []string      `json:"control_ids"`
	LastReviewed       *time.Time    `json:"last_reviewed"`
	Tags               []string      `json:"tags"`
	CustomFields       models.Fields `json:"custom_fields"`
}

// apply reports whether likelihood or impact changed.
func (u RiskUpdate) apply(r *models.Risk) (rescore bool, err error) {
	if u.Title != nil {
		if *u.Title == "" {
			return false, invalid("title", "must not be empty")
		}
		r.Title = *u.Title
	}
	if u.Category != nil {
		if r.Category, err = models.ParseRiskCategory(*u.Category); err != nil {
			return false, err
		}
	}
	if u.Status != nil {
		if r.Status, err = models.ParseRiskStatus(*u.Status); err != nil {
			return false, err
		}
	}
	if u.Likelihood != nil {
		l := models.Likelihood(*u.Likelihood)
		if !l.Valid() {
			return false, invalid("likelihood", "must be between 1 and 5, got %d", *u.Likelihood)
		}
		r.Likelihood, rescore = l, true
	}
	if u.Impact != nil {
		i := models.Impact(*u.Impact)
		if !i.Valid() {
			return false, invalid("impact", "must be between 1 and 5, got %d", *u.Impact)
		}
		r.Impact, rescore = i, true
	}
	if u.ResidualRiskScore != nil {
		if v := *u.ResidualRiskScore; v < 0 || v > 25 {
			return false, invalid("residual_risk_score", "must be between 0 and 25, got %v", v)
		}
		r.ResidualRiskScore = ptr(*u.ResidualRiskScore)
	}
	setString(&r.Description, u.Description)
	setString(&r.Owner, u.Owner)
	setString(&r.ThreatSource, u.ThreatSource)
	setString(&r.Vulnerability, u.Vulnerability)
	setString(&r.MitigationStrategy, u.MitigationStrategy)
	if u.MitigationDeadline != nil {
		r.MitigationDeadline = u.MitigationDeadline
	}
	if u.LastReviewed != nil {
		r.LastReviewed = u.LastReviewed
	}
	if u.AffectedAssets != nil {
		r.AffectedAssets = u.AffectedAssets
	}
	if u.ControlIDs != nil {
		r.ControlIDs = u.ControlIDs
	}
	if u.Tags != nil {
		r.Tags = u.Tags
	}
	if u.CustomFields != nil {
		r.CustomFields = u.CustomFields
	}
	return rescore, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// CreateRisk assigns the next RISK- code, derives the inherent score and
// starts the residual score at the same value.
func (s *Service) CreateRisk(ctx context.Context, in RiskInput) (*models.Risk, error) {
	risk, err := in.model()
	if err != nil {
		return nil, err
	}
	scoring.InitialRiskScores(risk.Likelihood, risk.Impact).Apply(&risk)

	err = s.store.Transaction(ctx, func(tx *database.Store) error {
		if err := tx.CreateRisk(ctx, &risk); err != nil {
			return fmt.Errorf("create risk: %w", err)
		}
		return audit(ctx, tx, entityRisk, risk.Code, ActionCreate, "created risk %q", risk.Title)
	})
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "risk created", "risk_id", risk.Code, "inherent_risk_score", *risk.InherentRiskScore)
	return &risk, nil
}

func (s *Service) ListRisks(ctx context.Context, f database.RiskFilter) ([]models.Risk, error) {
	f.Page = limitOrDefault(f.Page)
	return s.store.ListRisks(ctx, f)
}

func (s *Service) GetRisk(ctx context.Context, code string) (*models.Risk, error) {
	r, err := s.store.GetRisk(ctx, code)
	return lookup(r, err, entityRisk, code)
}

// UpdateRisk applies u. The inherent score is re-derived only when
// likelihood or impact changed; the residual score changes only when u sets it.
func (s *Service) UpdateRisk(ctx context.Context, code string, u RiskUpdate) (*models.Risk, error) {
	var updated *models.Risk
	err := s.store.Transaction(ctx, func(tx *database.Store) error {
		stored, err := tx.GetRisk(ctx, code)
		r, err := lookup(stored, err, entityRisk, code)
		if err != nil {
			return err
		}
		rescore, err := u.apply(r)
		if err != nil {
			return err
		}
		if rescore {
			scoring.RecomputeInherent(r.Likelihood, r.Impact).Apply(r)
		}
		if err := tx.SaveRisk(ctx, r); err != nil {
			return fmt.Errorf("save risk %s: %w", code, err)
		}
		updated = r
		return audit(ctx, tx, entityRisk, code, ActionUpdate, "rescored=%t", rescore)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) DeleteRisk(ctx context.Context, code string) error {
	return s.store.Transaction(ctx, func(tx *database.Store) error {
		if err := tx.DeleteRisk(ctx, code); err != nil {
			_, err = lookup[models.Risk](nil, err, entityRisk, code)
			return err
		}
		return audit(ctx, tx, entityRisk, code, ActionDelete, "deleted risk")
	})
}

func (s *Service) RiskStatistics(ctx context.Context) (analytics.RiskStatistics, error) {
	risks, err := s.store.ListRisks(ctx, database.RiskFilter{})
	if err != nil {
		return analytics.RiskStatistics{}, fmt.Errorf("list risks: %w", err)
	}
	return analytics.BuildRiskStatistics(risks), nil
}

func (s *Service) RiskHeatmap(ctx context.Context) ([]analytics.HeatmapCell, error) {
	risks, err := s.store.ListRisks(ctx, database.RiskFilter{})
	if err != nil {
		return nil, fmt.Errorf("list risks: %w", err)
	}
	return analytics.BuildHeatmap(risks), nil
}
