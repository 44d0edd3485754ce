package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"grc-center/internal/analytics"
	"grc-center/internal/database"
	"grc-center/internal/models"
	"grc-center/internal/transfer"
)

const (
	entityEvidence   = "evidence"
	entityCollection = "collection"
)

// ErrStorageUnavailable is returned by uploads when no evidence storage is configured.
var ErrStorageUnavailable = errors.New("evidence storage is not configured")

type EvidenceInput struct {
	Title            string        `json:"title" binding:"required"`
	Description      string        `json:"description"`
	EvidenceType     string        `json:"evidence_type" binding:"required"`
	Status           string        `json:"status"`
	CollectedBy      string        `json:"collected_by"`
	CollectionDate   *time.Time    `json:"collection_date"`
	CollectionSource string        `json:"collection_source"`
	ControlID        string        `json:"control_id"`
	Framework        string        `json:"framework"`
	RequirementID    string        `json:"requirement_id"`
	ValidFrom        *time.Time    `json:"valid_from"`
	ValidUntil       *time.Time    `json:"valid_until"`
	Tags             []string      `json:"tags"`
	Metadata         models.Fields `json:"metadata"`
}

func checkValidity(from, until *time.Time) error {
	if from != nil && until != nil && until.Before(*from) {
		return invalid("valid_until", "must not be before valid_from")
	}
	return nil
}

// CreateEvidence records manually collected evidence.
func (s *Service) CreateEvidence(ctx context.Context, in EvidenceInput) (*models.Evidence, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, invalid("title", "is required")
	}
	evidenceType, err := models.ParseEvidenceType(in.EvidenceType)
	if err != nil {
		return nil, err
	}
	status := models.EvidencePending
	if in.Status != "" {
		if status, err = models.ParseEvidenceStatus(in.Status); err != nil {
			return nil, err
		}
	}
	if err := checkValidity(in.ValidFrom, in.ValidUntil); err != nil {
		return nil, err
	}

	e := &models.Evidence{
		Title:            in.Title,
		Description:      in.Description,
		EvidenceType:     evidenceType,
		Status:           status,
		CollectionMethod: models.CollectedManually,
		CollectedBy:      in.CollectedBy,
		CollectionDate:   in.CollectionDate,
		CollectionSource: in.CollectionSource,
		ControlRef:       in.ControlID,
		Framework:        in.Framework,
		RequirementRef:   in.RequirementID,
		ValidFrom:        in.ValidFrom,
		ValidUntil:       in.ValidUntil,
		Tags:             in.Tags,
		Metadata:         in.Metadata,
	}
	if err := s.createEvidence(ctx, e, ActionCreate); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) createEvidence(ctx context.Context, e *models.Evidence, action string) error {
	return s.store.Transaction(ctx, func(tx *database.Store) error {
		if err := tx.CreateEvidence(ctx, e); err != nil {
			return fmt.Errorf("create evidence: %w", err)
		}
		return audit(ctx, tx, entityEvidence, e.Code, action, "%s %q", e.EvidenceType, e.Title)
	})
}

// UploadInput describes an uploaded evidence file.
type UploadInput struct {
	Filename      string
	Data          []byte
	Title         string
	Description   string
	EvidenceType  string
	CollectedBy   string
	ControlID     string
	Framework     string
	RequirementID string
	ValidUntil    *time.Time
}

// UploadEvidence stores the file under its content hash and records it as
// collected evidence. The title defaults to the file name and the type to Document.
func (s *Service) UploadEvidence(ctx context.Context, in UploadInput) (*models.Evidence, error) {
	if s.evidence == nil {
		return nil, ErrStorageUnavailable
	}
	evidenceType := models.EvidenceDocument
	if in.EvidenceType != "" {
		var err error
		if evidenceType, err = models.ParseEvidenceType(in.EvidenceType); err != nil {
			return nil, err
		}
	}

	stored, err := s.evidence.Put(ctx, in.Filename, in.Data)
	if errors.Is(err, transfer.ErrEmptyFilename) {
		return nil, invalid("file", "%v", err)
	}
	if err != nil {
		return nil, fmt.Errorf("store evidence file: %w", err)
	}

	title := in.Title
	if title == "" {
		title = stored.Name
	}
	collected := s.now()
	e := &models.Evidence{
		Title:            title,
		Description:      in.Description,
		EvidenceType:     evidenceType,
		Status:           models.EvidenceCollected,
		FileName:         stored.Name,
		FilePath:         stored.Location,
		FileSize:         ptr(stored.Size),
		FileHash:         stored.Hash,
		CollectionMethod: models.CollectedManually,
		CollectedBy:      in.CollectedBy,
		CollectionDate:   &collected,
		ControlRef:       in.ControlID,
		Framework:        in.Framework,
		RequirementRef:   in.RequirementID,
		ValidUntil:       in.ValidUntil,
	}
	if err := s.createEvidence(ctx, e, ActionUpload); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "evidence uploaded", "evidence_id", e.Code, "file_hash", e.FileHash, "size", stored.Size)
	return e, nil
}

// EvidenceFile returns the stored file of an uploaded evidence record.
func (s *Service) EvidenceFile(ctx context.Context, code string) (string, []byte, error) {
	e, err := s.GetEvidence(ctx, code)
	if err != nil {
		return "", nil, err
	}
	if e.FilePath == "" {
		return "", nil, &NotFoundError{Entity: "evidence file", ID: code}
	}
	if s.evidence == nil {
		return "", nil, ErrStorageUnavailable
	}
	data, err := s.evidence.Get(ctx, e.FilePath)
	if err != nil {
		return "", nil, fmt.Errorf("read evidence file %s: %w", code, err)
	}
	return e.FileName, data, nil
}

func (s *Service) ListEvidence(ctx context.Context, f database.EvidenceFilter) ([]models.Evidence, error) {
	f.Page = limitOrDefault(f.Page)
	return s.store.ListEvidence(ctx, f)
}

func (s *Service) GetEvidence(ctx context.Context, code string) (*models.Evidence, error) {
	e, err := s.store.GetEvidence(ctx, code)
	return lookup(e, err, entityEvidence, code)
}

type VerifyInput struct {
	Reviewer string `json:"reviewer" binding:"required"`
	Notes    string `json:"notes"`
}

func (s *Service) VerifyEvidence(ctx context.Context, code string, in VerifyInput) (*models.Evidence, error) {
	if strings.TrimSpace(in.Reviewer) == "" {
		return nil, invalid("reviewer", "is required")
	}
	var out *models.Evidence
	err := s.store.Transaction(ctx, func(tx *database.Store) error {
		stored, err := tx.GetEvidence(ctx, code)
		e, err := lookup(stored, err, entityEvidence, code)
		if err != nil {
			return err
		}
		reviewed := s.now()
		e.Status = models.EvidenceVerified
		e.ReviewedBy = in.Reviewer
		e.ReviewDate = &reviewed
		e.ReviewNotes = in.Notes
		if err := tx.SaveEvidence(ctx, e); err != nil {
			return fmt.Errorf("save evidence %s: %w", code, err)
		}
		out = e
		return audit(ctx, tx, entityEvidence, code, ActionVerify, "verified by %s", in.Reviewer)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type CollectionInput struct {
	Name             string        `json:"name" binding:"required"`
	Description      string        `json:"description"`
	CollectionType   string        `json:"collection_type"`
	SourceSystem     string        `json:"source_system"`
	Schedule         string        `json:"schedule"`
	CollectionParams models.Fields `json:"collection_params"`
	NextRun          *time.Time    `json:"next_run"`
}

// CreateCollection defines a recurring collection job. Jobs are run by an
// external scheduler; they start active with zeroed run counters.
func (s *Service) CreateCollection(ctx context.Context, in CollectionInput) (*models.EvidenceCollection, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalid("name", "is required")
	}
	c := &models.EvidenceCollection{
		Name:             in.Name,
		Description:      in.Description,
		CollectionType:   in.CollectionType,
		SourceSystem:     in.SourceSystem,
		Schedule:         in.Schedule,
		CollectionParams: in.CollectionParams,
		NextRun:          in.NextRun,
		IsActive:         true,
	}
	err := s.store.Transaction(ctx, func(tx *database.Store) error {
		if err := tx.CreateCollection(ctx, c); err != nil {
			return fmt.Errorf("create collection: %w", err)
		}
		return audit(ctx, tx, entityCollection, c.Code, ActionCreate, "created collection %q", c.Name)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) ListCollections(ctx context.Context) ([]models.EvidenceCollection, error) {
	return s.store.ListCollections(ctx)
}

func (s *Service) EvidenceSummary(ctx context.Context) (analytics.EvidenceSummary, error) {
	evidence, err := s.store.ListEvidence(ctx, database.EvidenceFilter{})
	if err != nil {
		return analytics.EvidenceSummary{}, fmt.Errorf("list evidence: %w", err)
	}
	return analytics.BuildEvidenceSummary(evidence, s.now()), nil
}
