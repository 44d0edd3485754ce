package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"grc-center/internal/analytics"
	"grc-center/internal/database"
)

// snapshot loads every collection the dashboard reads. The queries are
// independent and run concurrently.
func (s *Service) snapshot(ctx context.Context) (analytics.Snapshot, error) {
	var snap analytics.Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.Risks, err = s.store.ListRisks(gctx, database.RiskFilter{})
		return wrapList("risks", err)
	})
	g.Go(func() (err error) {
		snap.Controls, err = s.store.ListControls(gctx, database.ControlFilter{})
		return wrapList("controls", err)
	})
	g.Go(func() (err error) {
		snap.Vendors, err = s.store.ListVendors(gctx, database.VendorFilter{})
		return wrapList("vendors", err)
	})
	g.Go(func() (err error) {
		snap.Assessments, err = s.store.ListAssessments(gctx, 0)
		return wrapList("assessments", err)
	})
	g.Go(func() (err error) {
		snap.Evidence, err = s.store.ListEvidence(gctx, database.EvidenceFilter{})
		return wrapList("evidence", err)
	})
	g.Go(func() (err error) {
		snap.Frameworks, err = s.store.ListComplianceFrameworks(gctx, nil, false)
		return wrapList("frameworks", err)
	})

	if err := g.Wait(); err != nil {
		return analytics.Snapshot{}, err
	}
	return snap, nil
}

func wrapList(what string, err error) error {
	if err != nil {
		return fmt.Errorf("list %s: %w", what, err)
	}
	return nil
}

func (s *Service) DashboardOverview(ctx context.Context) (analytics.Overview, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return analytics.Overview{}, err
	}
	return analytics.BuildOverview(snap, s.now()), nil
}

// DashboardTrends counts activity over the last days days; days <= 0 means
// the default period.
func (s *Service) DashboardTrends(ctx context.Context, days int) (analytics.Trends, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return analytics.Trends{}, err
	}
	return analytics.BuildTrends(snap, days, s.now()), nil
}

func (s *Service) DashboardKPIs(ctx context.Context) (analytics.KPIs, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return analytics.KPIs{}, err
	}
	return analytics.BuildKPIs(snap, s.now(), s.impact), nil
}

func (s *Service) ActionItems(ctx context.Context) (analytics.ActionItemList, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return analytics.ActionItemList{}, err
	}
	return analytics.BuildActionItems(snap, s.now()), nil
}
