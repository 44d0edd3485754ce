package integrations

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/securityhub"
	shtypes "github.com/aws/aws-sdk-go-v2/service/securityhub/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"grc-center/internal/config"
)

const (
	ServiceAWS = "aws"

	// MaxFindings bounds one Security Hub request.
	MaxFindings = 100

	defaultHTTPTimeout = 60 * time.Second
)

type securityHubAPI interface {
	GetFindings(context.Context, *securityhub.GetFindingsInput, ...func(*securityhub.Options)) (*securityhub.GetFindingsOutput, error)
}

type stsAPI interface {
	GetCallerIdentity(context.Context, *sts.GetCallerIdentityInput, ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// SecurityHub reads findings from AWS Security Hub.
type SecurityHub struct {
	hub securityHubAPI
	sts stsAPI
}

// NewSecurityHub builds a client from static credentials. It returns
// ErrNotConfigured when no access key is set.
func NewSecurityHub(ctx context.Context, cfg config.AWSConfig) (*SecurityHub, error) {
	if cfg.AccessKeyID == "" {
		return nil, notConfigured(ServiceAWS)
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithHTTPClient(&http.Client{Timeout: defaultHTTPTimeout}),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, &ServiceError{Service: ServiceAWS, Err: err}
	}
	return NewSecurityHubWithConfig(awsCfg), nil
}

func NewSecurityHubWithConfig(cfg aws.Config) *SecurityHub {
	return &SecurityHub{hub: securityhub.NewFromConfig(cfg), sts: sts.NewFromConfig(cfg)}
}

// Findings returns up to limit findings, optionally restricted to one severity label.
func (s *SecurityHub) Findings(ctx context.Context, severity string, limit int) ([]Finding, error) {
	if limit <= 0 || limit > MaxFindings {
		limit = MaxFindings
	}
	in := &securityhub.GetFindingsInput{MaxResults: aws.Int32(int32(limit))}
	if severity != "" {
		in.Filters = &shtypes.AwsSecurityFindingFilters{
			SeverityLabel: []shtypes.StringFilter{{
				Value:      aws.String(severity),
				Comparison: shtypes.StringFilterComparisonEquals,
			}},
		}
	}

	out, err := s.hub.GetFindings(ctx, in)
	if err != nil {
		recordCall(ServiceAWS, err)
		return nil, &ServiceError{Service: ServiceAWS, Err: err}
	}
	recordCall(ServiceAWS, nil)

	findings := make([]Finding, 0, len(out.Findings))
	for _, f := range out.Findings {
		findings = append(findings, mapFinding(f))
	}
	return findings, nil
}

func mapFinding(f shtypes.AwsSecurityFinding) Finding {
	out := Finding{
		ID:          aws.ToString(f.Id),
		Title:       aws.ToString(f.Title),
		Description: aws.ToString(f.Description),
		CreatedAt:   aws.ToString(f.CreatedAt),
	}
	if f.Severity != nil {
		out.Severity = string(f.Severity.Label)
	}
	if len(f.Resources) > 0 {
		out.ResourceType = aws.ToString(f.Resources[0].Type)
	}
	if f.Compliance != nil {
		out.ComplianceStatus = string(f.Compliance.Status)
	}
	return out
}

// Ping checks the credentials with STS GetCallerIdentity.
func (s *SecurityHub) Ping(ctx context.Context) error {
	_, err := s.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	recordCall(ServiceAWS, err)
	if err != nil {
		return &ServiceError{Service: ServiceAWS, Err: err}
	}
	return nil
}
