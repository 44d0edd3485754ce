package database

import (
	"context"
	"errors"

	"grc-center/internal/models"
)

type ControlFilter struct {
	Status models.ControlStatus
	Page
}

func (s *Store) CreateControl(ctx context.Context, c *models.Control) error {
	return createWithCode(ctx, s, c, &c.Code, ControlCodes)
}

func (s *Store) ListControls(ctx context.Context, f ControlFilter) ([]models.Control, error) {
	q := s.conn(ctx).Model(&models.Control{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var controls []models.Control
	err := f.Page.apply(q).Order("id").Find(&controls).Error
	return controls, err
}

func (s *Store) GetControl(ctx context.Context, code string) (*models.Control, error) {
	return first[models.Control](s.conn(ctx), "code = ?", code)
}

func (s *Store) SaveControl(ctx context.Context, c *models.Control) error {
	return s.conn(ctx).Save(c).Error
}

// EnsureControlFramework inserts fw unless a framework with its name exists.
// It reports whether a row was created.
func (s *Store) EnsureControlFramework(ctx context.Context, fw *models.ControlFramework) (bool, error) {
	existing, err := first[models.ControlFramework](s.conn(ctx), "name = ?", fw.Name)
	switch {
	case err == nil:
		*fw = *existing
		return false, nil
	case !errors.Is(err, ErrNotFound):
		return false, err
	}
	return true, s.conn(ctx).Create(fw).Error
}

func (s *Store) ListControlFrameworks(ctx context.Context) ([]models.ControlFramework, error) {
	var frameworks []models.ControlFramework
	err := s.conn(ctx).Order("id").Find(&frameworks).Error
	return frameworks, err
}

func (s *Store) GetControlFramework(ctx context.Context, name string) (*models.ControlFramework, error) {
	return first[models.ControlFramework](s.conn(ctx), "name = ?", name)
}

func (s *Store) CreateControlMapping(ctx context.Context, m *models.ControlMapping) error {
	return s.conn(ctx).Create(m).Error
}

// ControlMappings returns the mappings of one control with their framework loaded.
func (s *Store) ControlMappings(ctx context.Context, controlID uint) ([]models.ControlMapping, error) {
	var mappings []models.ControlMapping
	err := s.conn(ctx).Preload("Framework").
		Where("control_id = ?", controlID).
		Order("id").
		Find(&mappings).Error
	return mappings, err
}

func (s *Store) ListControlMappings(ctx context.Context) ([]models.ControlMapping, error) {
	var mappings []models.ControlMapping
	err := s.conn(ctx).Order("id").Find(&mappings).Error
	return mappings, err
}
