package services

import (
	"context"
	"fmt"

	"grc-center/internal/database"
)

type RecomputeSummary struct {
	Frameworks int `json:"frameworks"`
	Vendors    int `json:"vendors"`
}

// RecomputeAll re-derives every framework's compliance figures and every
// vendor's risk score. It stops at the first failure.
func (s *Service) RecomputeAll(ctx context.Context) (RecomputeSummary, error) {
	var sum RecomputeSummary

	frameworks, err := s.store.ListComplianceFrameworks(ctx, nil, false)
	if err != nil {
		return sum, fmt.Errorf("list frameworks: %w", err)
	}
	for i := range frameworks {
		if _, err := s.recomputeFramework(ctx, &frameworks[i]); err != nil {
			return sum, err
		}
		sum.Frameworks++
	}

	vendors, err := s.store.ListVendors(ctx, database.VendorFilter{})
	if err != nil {
		return sum, fmt.Errorf("list vendors: %w", err)
	}
	for _, v := range vendors {
		if _, err := s.RecomputeVendor(ctx, v.Code); err != nil {
			return sum, err
		}
		sum.Vendors++
	}

	s.log.InfoContext(ctx, "recomputation finished", "frameworks", sum.Frameworks, "vendors", sum.Vendors)
	return sum, nil
}
