package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"grc-center/internal/analytics"
	"grc-center/internal/database"
	"grc-center/internal/models"
)

const (
	entityControl          = "control"
	entityControlFramework = "control_framework"
)

type ControlInput struct {
	Title                     string     `json:"title" binding:"required"`
	Description               string     `json:"description"`
	ControlType               string     `json:"control_type" binding:"required"`
	Status                    string     `json:"status"`
	ImplementationDescription string     `json:"implementation_description"`
	Owner                     string     `json:"owner"`
	ResponsibleTeam           string     `json:"responsible_team"`
	TestProcedure             string     `json:"test_procedure"`
	TestFrequencyDays         *int       `json:"test_frequency_days"`
	LastTested                *time.Time `json:"last_tested"`
	NextTestDate              *time.Time `json:"next_test_date"`
	EffectivenessRating       *int       `json:"effectiveness_rating"`
	SystemOrchestrationLevel  *int       `json:"system_orchestration_level"`
	Tags                      []string   `json:"tags"`
}

// ControlUpdate is a partial update; nil fields are left unchanged.
type ControlUpdate struct {
	Title                     *string    `json:"title"`
	Description               *string    `json:"description"`
	ControlType               *string    `json:"control_type"`
	Status                    *string    `json:"status"`
	ImplementationDescription *string    `json:"implementation_description"`
	Owner                     *string    `json:"owner"`
	ResponsibleTeam           *string    `json:"responsible_team"`
	TestProcedure             *string    `json:"test_procedure"`
	TestFrequencyDays         *int       `json:"test_frequency_days"`
	LastTested                *time.Time `json:"last_tested"`
	NextTestDate              *time.Time `json:"next_test_date"`
	TestStatus                *string    `json:"test_status"`
	EffectivenessRating       *int       `json:"effectiveness_rating"`
	SystemOrchestrationLevel  *int       `json:"system_orchestration_level"`
	Tags                      []string   `json:"tags"`
}

func checkRange(field string, v *int, lo, hi int) error {
	if v != nil && (*v < lo || *v > hi) {
		return invalid(field, "must be between %d and %d, got %d", lo, hi, *v)
	}
	return nil
}

func checkControlRatings(effectiveness, orchestration, frequency *int) error {
	if err := checkRange("effectiveness_rating", effectiveness, 1, 5); err != nil {
		return err
	}
	if err := checkRange("system_orchestration_level", orchestration, 0, 100); err != nil {
		return err
	}
	if frequency != nil && *frequency <= 0 {
		return invalid("test_frequency_days", "must be positive, got %d", *frequency)
	}
	return nil
}

// scheduleNextTest derives the next test date from the last test when the
// caller did not give one.
func scheduleNextTest(c *models.Control, explicitNext bool) {
	if explicitNext || c.LastTested == nil || c.TestFrequencyDays == nil {
		return
	}
	next := c.LastTested.AddDate(0, 0, *c.TestFrequencyDays)
	c.NextTestDate = &next
}

func (s *Service) CreateControl(ctx context.Context, in ControlInput) (*models.Control, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, invalid("title", "is required")
	}
	controlType, err := models.ParseControlType(in.ControlType)
	if err != nil {
		return nil, err
	}
	status := models.ControlNotImplemented
	if in.Status != "" {
		if status, err = models.ParseControlStatus(in.Status); err != nil {
			return nil, err
		}
	}
	if err := checkControlRatings(in.EffectivenessRating, in.SystemOrchestrationLevel, in.TestFrequencyDays); err != nil {
		return nil, err
	}

	control := models.Control{
		Title:                     in.Title,
		Description:               in.Description,
		ControlType:               controlType,
		Status:                    status,
		ImplementationDescription: in.ImplementationDescription,
		Owner:                     in.Owner,
		ResponsibleTeam:           in.ResponsibleTeam,
		TestProcedure:             in.TestProcedure,
		TestFrequencyDays:         in.TestFrequencyDays,
		LastTested:                in.LastTested,
		NextTestDate:              in.NextTestDate,
		EffectivenessRating:       in.EffectivenessRating,
		SystemOrchestrationLevel:  in.SystemOrchestrationLevel,
		Tags:                      in.Tags,
	}
	scheduleNextTest(&control, in.NextTestDate != nil)

	err = s.store.Transaction(ctx, func(tx *database.Store) error {
		if err := tx.CreateControl(ctx, &control); err != nil {
			return fmt.Errorf("create control: %w", err)
		}
		return audit(ctx, tx, entityControl, control.Code, ActionCreate, "created control %q", control.Title)
	})
	if err != nil {
		return nil, err
	}
	return &control, nil
}

func (s *Service) ListControls(ctx context.Context, f database.ControlFilter) ([]models.Control, error) {
	f.Page = limitOrDefault(f.Page)
	return s.store.ListControls(ctx, f)
}

func (s *Service) GetControl(ctx context.Context, code string) (*models.Control, error) {
	c, err := s.store.GetControl(ctx, code)
	return lookup(c, err, entityControl, code)
}

func (s *Service) UpdateControl(ctx context.Context, code string, u ControlUpdate) (*models.Control, error) {
	if err := checkControlRatings(u.EffectivenessRating, u.SystemOrchestrationLevel, u.TestFrequencyDays); err != nil {
		return nil, err
	}

	var updated *models.Control
	err := s.store.Transaction(ctx, func(tx *database.Store) error {
		stored, err := tx.GetControl(ctx, code)
		c, err := lookup(stored, err, entityControl, code)
		if err != nil {
			return err
		}
		if u.Title != nil {
			if strings.TrimSpace(*u.Title) == "" {
				return invalid("title", "must not be empty")
			}
			c.Title = *u.Title
		}
		if u.ControlType != nil {
			if c.ControlType, err = models.ParseControlType(*u.ControlType); err != nil {
				return err
			}
		}
		if u.Status != nil {
			if c.Status, err = models.ParseControlStatus(*u.Status); err != nil {
				return err
			}
		}
		setString(&c.Description, u.Description)
		setString(&c.ImplementationDescription, u.ImplementationDescription)
		setString(&c.Owner, u.Owner)
		setString(&c.ResponsibleTeam, u.ResponsibleTeam)
		setString(&c.TestProcedure, u.TestProcedure)
		setString(&c.TestStatus, u.TestStatus)
		if u.TestFrequencyDays != nil {
			c.TestFrequencyDays = u.TestFrequencyDays
		}
		if u.LastTested != nil {
			c.LastTested = u.LastTested
		}
		if u.NextTestDate != nil {
			c.NextTestDate = u.NextTestDate
		}
		if u.EffectivenessRating != nil {
			c.EffectivenessRating = u.EffectivenessRating
		}
		if u.SystemOrchestrationLevel != nil {
			c.SystemOrchestrationLevel = u.SystemOrchestrationLevel
		}
		if u.Tags != nil {
			c.Tags = u.Tags
		}
		if u.LastTested != nil {
			scheduleNextTest(c, u.NextTestDate != nil)
		}

		if err := tx.SaveControl(ctx, c); err != nil {
			return fmt.Errorf("save control %s: %w", code, err)
		}
		updated = c
		return audit(ctx, tx, entityControl, code, ActionUpdate, "status=%s", c.Status)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// InitResult reports which standard frameworks an initialization created.
type InitResult struct {
	Created []string `json:"created"`
	Message string   `json:"message"`
}

func newInitResult(created []string) InitResult {
	if len(created) == 0 {
		return InitResult{Created: []string{}, Message: "All frameworks already exist"}
	}
	return InitResult{Created: created, Message: "Initialized frameworks: " + strings.Join(created, ", ")}
}

var standardControlFrameworks = []models.ControlFramework{
	{Name: "SOC2", Version: "2017", Description: "SOC 2 Trust Service Criteria"},
	{Name: "NIST CSF", Version: "1.1", Description: "NIST Cybersecurity Framework"},
	{Name: "ISO 27001", Version: "2013", Description: "ISO/IEC 27001:2013 Information Security Management"},
}

// InitControlFrameworks creates the standard control frameworks that do not
// exist yet. Calling it again is a no-op.
func (s *Service) InitControlFrameworks(ctx context.Context) (InitResult, error) {
	var created []string
	err := s.store.Transaction(ctx, func(tx *database.Store) error {
		for _, fw := range standardControlFrameworks {
			ok, err := tx.EnsureControlFramework(ctx, &fw)
			if err != nil {
				return fmt.Errorf("ensure control framework %s: %w", fw.Name, err)
			}
			if ok {
				created = append(created, fw.Name)
			}
		}
		if len(created) == 0 {
			return nil
		}
		return audit(ctx, tx, entityControlFramework, "", ActionInit, "created %s", strings.Join(created, ", "))
	})
	if err != nil {
		return InitResult{}, err
	}
	return newInitResult(created), nil
}

func (s *Service) ListControlFrameworks(ctx context.Context) ([]models.ControlFramework, error) {
	return s.store.ListControlFrameworks(ctx)
}

type MappingInput struct {
	Framework          string   `json:"framework" binding:"required"`
	FrameworkControlID string   `json:"framework_control_id" binding:"required"`
	RequirementText    string   `json:"requirement_text"`
	ComplianceStatus   string   `json:"compliance_status"`
	EvidenceRequired   []string `json:"evidence_required"`
}

// MapControl links a control to a requirement of a control framework.
func (s *Service) MapControl(ctx context.Context, code string, in MappingInput) (*models.ControlMapping, error) {
	status := models.ControlNotImplemented
	if in.ComplianceStatus != "" {
		var err error
		if status, err = models.ParseControlStatus(in.ComplianceStatus); err != nil {
			return nil, err
		}
	}

	var mapping *models.ControlMapping
	err := s.store.Transaction(ctx, func(tx *database.Store) error {
		stored, err := tx.GetControl(ctx, code)
		control, err := lookup(stored, err, entityControl, code)
		if err != nil {
			return err
		}
		storedFw, err := tx.GetControlFramework(ctx, in.Framework)
		fw, err := lookup(storedFw, err, entityControlFramework, in.Framework)
		if err != nil {
			return err
		}
		mapping = &models.ControlMapping{
			ControlID:          control.ID,
			FrameworkID:        fw.ID,
			FrameworkControlID: in.FrameworkControlID,
			RequirementText:    in.RequirementText,
			ComplianceStatus:   status,
			EvidenceRequired:   in.EvidenceRequired,
		}
		if err := tx.CreateControlMapping(ctx, mapping); err != nil {
			return fmt.Errorf("create mapping for %s: %w", code, err)
		}
		mapping.Framework = *fw
		return audit(ctx, tx, entityControl, code, ActionUpdate, "mapped to %s %s", fw.Name, in.FrameworkControlID)
	})
	if err != nil {
		return nil, err
	}
	return mapping, nil
}

type MappingView struct {
	Framework          string               `json:"framework"`
	FrameworkControlID string               `json:"framework_control_id"`
	Status             models.ControlStatus `json:"status"`
}

type ControlMappings struct {
	ControlID string        `json:"control_id"`
	Mappings  []MappingView `json:"mappings"`
}

func (s *Service) ControlMappings(ctx context.Context, code string) (ControlMappings, error) {
	stored, err := s.store.GetControl(ctx, code)
	control, err := lookup(stored, err, entityControl, code)
	if err != nil {
		return ControlMappings{}, err
	}
	mappings, err := s.store.ControlMappings(ctx, control.ID)
	if err != nil {
		return ControlMappings{}, fmt.Errorf("list mappings of %s: %w", code, err)
	}

	out := ControlMappings{ControlID: code, Mappings: make([]MappingView, 0, len(mappings))}
	for _, m := range mappings {
		out.Mappings = append(out.Mappings, MappingView{
			Framework:          m.Framework.Name,
			FrameworkControlID: m.FrameworkControlID,
			Status:             m.ComplianceStatus,
		})
	}
	return out, nil
}

func (s *Service) ControlCoverage(ctx context.Context) (analytics.ControlCoverage, error) {
	controls, err := s.store.ListControls(ctx, database.ControlFilter{})
	if err != nil {
		return analytics.ControlCoverage{}, fmt.Errorf("list controls: %w", err)
	}
	frameworks, err := s.store.ListControlFrameworks(ctx)
	if err != nil {
		return analytics.ControlCoverage{}, fmt.Errorf("list control frameworks: %w", err)
	}
	mappings, err := s.store.ListControlMappings(ctx)
	if err != nil {
		return analytics.ControlCoverage{}, fmt.Errorf("list control mappings: %w", err)
	}
	return analytics.BuildControlCoverage(controls, frameworks, mappings), nil
}
