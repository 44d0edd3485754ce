package services

import (
	"context"
	"fmt"

	"grc-center/internal/database"
)

// SeedSummary counts what Seed created.
type SeedSummary struct {
	Frameworks   InitResult `json:"frameworks"`
	Controls     InitResult `json:"control_frameworks"`
	Risks        int        `json:"risks"`
	ControlItems int        `json:"controls"`
	Vendors      int        `json:"vendors"`
	Requirements int        `json:"requirements"`
}

var sampleRisks = []RiskInput{
	{
		Title:              "Credential theft through phishing",
		Description:        "Staff credentials harvested by a phishing campaign give an attacker access to customer data",
		Category:           "Technology",
		Likelihood:         4,
		Impact:             5,
		Owner:              "CISO",
		ThreatSource:       "External attackers",
		Vulnerability:      "Awareness training is annual only",
		MitigationStrategy: "Quarterly phishing simulations and hardware MFA for administrators",
	},
	{
		Title:              "Exposure of data held by a supplier",
		Description:        "A compromised supplier leaks data it processes on our behalf",
		Category:           "Operational",
		Likelihood:         3,
		Impact:             4,
		Owner:              "Vendor Management",
		ThreatSource:       "Third parties",
		Vulnerability:      "Suppliers are not reassessed after onboarding",
		MitigationStrategy: "Annual supplier assessments with security questionnaires",
	},
	{
		Title:              "Qualified SOC 2 opinion",
		Description:        "Control gaps found during fieldwork lead to a qualified audit opinion",
		Category:           "Compliance",
		Likelihood:         2,
		Impact:             4,
		Owner:              "Compliance Lead",
		ThreatSource:       "Internal process gaps",
		Vulnerability:      "Several controls lack recurring evidence",
		MitigationStrategy: "Close open gaps and automate evidence collection before the audit window",
	},
	{
		Title:              "Publicly readable storage bucket",
		Description:        "A misconfigured bucket exposes internal documents",
		Category:           "Technology",
		Likelihood:         3,
		Impact:             3,
		Owner:              "Platform Team",
		ThreatSource:       "Human error",
		Vulnerability:      "Infrastructure changes are made by hand",
		MitigationStrategy: "Manage infrastructure as code and scan configurations continuously",
	},
	{
		Title:              "Prolonged regional outage",
		Description:        "Loss of the primary region stops customer-facing services for days",
		Category:           "Operational",
		Likelihood:         1,
		Impact:             5,
		Owner:              "COO",
		ThreatSource:       "Provider failure",
		Vulnerability:      "Disaster recovery has never been exercised end to end",
		MitigationStrategy: "Run a recovery exercise twice a year",
	},
}

var sampleControls = []ControlInput{
	{Title: "Multi-factor authentication", Description: "MFA is enforced for every workforce login",
		ControlType: "Preventive", Status: "Implemented", Owner: "IT Security", TestFrequencyDays: ptr(90),
		EffectivenessRating: ptr(5), SystemOrchestrationLevel: ptr(95)},
	{Title: "Security event monitoring", Description: "Security events are collected and triaged centrally",
		ControlType: "Detective", Status: "Implemented", Owner: "Security Operations", TestFrequencyDays: ptr(30),
		EffectivenessRating: ptr(4), SystemOrchestrationLevel: ptr(85)},
	{Title: "Encryption at rest", Description: "Customer data stores are encrypted with managed keys",
		ControlType: "Preventive", Status: "Partially Implemented", Owner: "Platform Team", TestFrequencyDays: ptr(180),
		EffectivenessRating: ptr(3), SystemOrchestrationLevel: ptr(60)},
	{Title: "Incident response runbook", Description: "A documented and rehearsed incident response procedure",
		ControlType: "Corrective", Status: "Not Implemented", Owner: "Security Operations", TestFrequencyDays: ptr(365)},
}

var sampleVendors = []VendorInput{
	{Name: "Northwind Cloud Hosting", ServiceType: "Infrastructure", PrimaryContactName: "Dana Ruiz",
		PrimaryContactEmail: "security@northwind.example", DataAccess: true, AnnualSpend: ptr(1_500_000.0),
		Certifications: []string{"SOC 2", "ISO 27001"}},
	{Name: "Ledgerline Payroll", ServiceType: "Payroll", PrimaryContactName: "Sam Okafor",
		PrimaryContactEmail: "trust@ledgerline.example", DataAccess: true, AnnualSpend: ptr(240_000.0)},
	{Name: "Brightdesk Office Supplies", ServiceType: "Procurement", AnnualSpend: ptr(12_000.0)},
}

var sampleRequirements = []RequirementInput{
	{RequirementID: "CC6.1", Title: "Logical access security", Category: "Common Criteria", Priority: 9},
	{RequirementID: "CC7.2", Title: "System monitoring", Category: "Common Criteria", Priority: 8},
	{RequirementID: "CC8.1", Title: "Change management", Category: "Common Criteria", Priority: 6},
	{RequirementID: "A1.2", Title: "Recovery infrastructure", Category: "Availability", Priority: 7},
}

// Seed initializes the standard frameworks and, when the register is
// empty, loads a small sample program. Running it twice adds nothing.
func (s *Service) Seed(ctx context.Context) (SeedSummary, error) {
	var sum SeedSummary
	var err error

	if sum.Frameworks, err = s.InitComplianceFrameworks(ctx); err != nil {
		return sum, err
	}
	if sum.Controls, err = s.InitControlFrameworks(ctx); err != nil {
		return sum, err
	}

	existing, err := s.store.ListRisks(ctx, database.RiskFilter{Page: database.Page{Limit: 1}})
	if err != nil {
		return sum, fmt.Errorf("check existing risks: %w", err)
	}
	if len(existing) > 0 {
		s.log.InfoContext(ctx, "sample data already present, skipping")
		return sum, nil
	}

	for _, in := range sampleRisks {
		if _, err := s.CreateRisk(ctx, in); err != nil {
			return sum, fmt.Errorf("seed risk %q: %w", in.Title, err)
		}
		sum.Risks++
	}
	for _, in := range sampleControls {
		if _, err := s.CreateControl(ctx, in); err != nil {
			return sum, fmt.Errorf("seed control %q: %w", in.Title, err)
		}
		sum.ControlItems++
	}
	for _, in := range sampleVendors {
		if _, err := s.CreateVendor(ctx, in); err != nil {
			return sum, fmt.Errorf("seed vendor %q: %w", in.Name, err)
		}
		sum.Vendors++
	}
	for _, in := range sampleRequirements {
		if _, err := s.CreateRequirement(ctx, "SOC2", in); err != nil {
			return sum, fmt.Errorf("seed requirement %s: %w", in.RequirementID, err)
		}
		sum.Requirements++
	}

	s.log.InfoContext(ctx, "sample data created", "risks", sum.Risks, "controls", sum.ControlItems,
		"vendors", sum.Vendors, "requirements", sum.Requirements)
	return sum, nil
}
