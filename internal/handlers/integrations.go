package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"grc-center/internal/config"
	"grc-center/internal/integrations"
	"grc-center/internal/services"
)

type FindingsClient interface {
	services.FindingSource
	integrations.Pinger
}

type IssueTracker interface {
	SearchIssues(ctx context.Context, project string) ([]integrations.JiraIssue, error)
	CreateIssue(ctx context.Context, in integrations.NewJiraIssue) (integrations.CreatedJiraIssue, error)
	integrations.Pinger
}

type IncidentDesk interface {
	SecurityIncidents(ctx context.Context) ([]integrations.Incident, error)
	CreateIncident(ctx context.Context, in integrations.NewIncident) (integrations.CreatedIncident, error)
	integrations.Pinger
}

// Integrations builds clients on demand. A constructor whose credentials are
// unset returns integrations.ErrNotConfigured.
type Integrations struct {
	SecurityHub func(ctx context.Context) (FindingsClient, error)
	Jira        func() (IssueTracker, error)
	ServiceNow  func() (IncidentDesk, error)
}

func NewIntegrations(cfg *config.Config) Integrations {
	return Integrations{
		SecurityHub: func(ctx context.Context) (FindingsClient, error) {
			hub, err := integrations.NewSecurityHub(ctx, cfg.AWS)
			if err != nil {
				return nil, err
			}
			return hub, nil
		},
		Jira: func() (IssueTracker, error) {
			j, err := integrations.NewJira(cfg.Jira, nil)
			if err != nil {
				return nil, err
			}
			return j, nil
		},
		ServiceNow: func() (IncidentDesk, error) {
			s, err := integrations.NewServiceNow(cfg.ServiceNow, nil)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
	}
}

func (h *Handlers) AWSFindings(c *gin.Context) {
	ctx := c.Request.Context()
	hub, err := h.integrations.SecurityHub(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	findings, err := hub.Findings(ctx, c.Query("severity"), integrations.MaxFindings)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"findings": findings, "count": len(findings)})
}

func (h *Handlers) ImportAWSFindings(c *gin.Context) {
	ctx := c.Request.Context()
	hub, err := h.integrations.SecurityHub(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.svc.ImportFindings(ctx, hub, c.Query("severity"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) JiraIssues(c *gin.Context) {
	jira, err := h.integrations.Jira()
	if err != nil {
		h.fail(c, err)
		return
	}
	project := c.Query("project")
	if project != "" && !integrations.ValidProjectKey(project) {
		h.fail(c, &services.ValidationError{Field: "project", Message: "must be an upper-case Jira project key"})
		return
	}
	issues, err := jira.SearchIssues(c.Request.Context(), project)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"issues": issues, "count": len(issues)})
}

func (h *Handlers) CreateJiraIssue(c *gin.Context) {
	var in integrations.NewJiraIssue
	if err := bindJSON(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	jira, err := h.integrations.Jira()
	if err != nil {
		h.fail(c, err)
		return
	}
	created, err := jira.CreateIssue(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handlers) ServiceNowIncidents(c *gin.Context) {
	desk, err := h.integrations.ServiceNow()
	if err != nil {
		h.fail(c, err)
		return
	}
	incidents, err := desk.SecurityIncidents(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"incidents": incidents, "count": len(incidents)})
}

func (h *Handlers) CreateServiceNowIncident(c *gin.Context) {
	var in integrations.NewIncident
	if err := bindJSON(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	desk, err := h.integrations.ServiceNow()
	if err != nil {
		h.fail(c, err)
		return
	}
	created, err := desk.CreateIncident(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// IntegrationsHealth pings every integration concurrently. It always answers
// 200; failures are reported per integration.
func (h *Handlers) IntegrationsHealth(c *gin.Context) {
	ctx := c.Request.Context()
	var aws, jira, servicenow integrations.Health

	var g errgroup.Group
	g.Go(func() error {
		client, err := h.integrations.SecurityHub(ctx)
		aws = integrations.Check(ctx, client, err)
		return nil
	})
	g.Go(func() error {
		client, err := h.integrations.Jira()
		jira = integrations.Check(ctx, client, err)
		return nil
	})
	g.Go(func() error {
		client, err := h.integrations.ServiceNow()
		servicenow = integrations.Check(ctx, client, err)
		return nil
	})
	_ = g.Wait()

	c.JSON(http.StatusOK, gin.H{
		integrations.ServiceAWS:        aws,
		integrations.ServiceJira:       jira,
		integrations.ServiceServiceNow: servicenow,
	})
}
