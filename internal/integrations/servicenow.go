package integrations

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"grc-center/internal/config"
)

const (
	ServiceServiceNow = "servicenow"

	incidentPath        = "/api/now/table/incident"
	securityIncidentsQ  = "active=true^category=security"
	serviceNowPageLimit = 100
)

type ServiceNow struct {
	client basicAuthClient
}

type Incident struct {
	Number           string `json:"number"`
	ShortDescription string `json:"short_description"`
	State            string `json:"state"`
	Priority         string `json:"priority"`
	Category         string `json:"category"`
	OpenedAt         string `json:"opened_at"`
}

type NewIncident struct {
	ShortDescription string `json:"short_description" binding:"required"`
	Description      string `json:"description"`
	Category         string `json:"category"`
	Priority         string `json:"priority"`
}

type CreatedIncident struct {
	Number string `json:"incident_number"`
	SysID  string `json:"sys_id"`
}

// NewServiceNow targets https://<instance>.service-now.com. An instance given
// as a full URL is used as is.
func NewServiceNow(cfg config.ServiceNowConfig, httpClient *http.Client) (*ServiceNow, error) {
	if !cfg.Configured() {
		return nil, notConfigured(ServiceServiceNow)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	base := cfg.Instance
	if !strings.Contains(base, "://") {
		base = fmt.Sprintf("https://%s.service-now.com", base)
	}
	return &ServiceNow{client: basicAuthClient{
		service:  ServiceServiceNow,
		baseURL:  strings.TrimRight(base, "/"),
		username: cfg.Username,
		secret:   cfg.Password,
		http:     httpClient,
	}}, nil
}

// SecurityIncidents lists active incidents in the security category.
func (s *ServiceNow) SecurityIncidents(ctx context.Context) ([]Incident, error) {
	q := url.Values{}
	q.Set("sysparm_limit", strconv.Itoa(serviceNowPageLimit))
	q.Set("sysparm_query", securityIncidentsQ)

	var payload struct {
		Result []Incident `json:"result"`
	}
	if err := s.client.do(ctx, http.MethodGet, incidentPath+"?"+q.Encode(), nil, http.StatusOK, &payload); err != nil {
		return nil, err
	}
	if payload.Result == nil {
		payload.Result = []Incident{}
	}
	return payload.Result, nil
}

// CreateIncident defaults the category to security and the priority to 3.
func (s *ServiceNow) CreateIncident(ctx context.Context, in NewIncident) (CreatedIncident, error) {
	if in.Category == "" {
		in.Category = "security"
	}
	if in.Priority == "" {
		in.Priority = "3"
	}
	var payload struct {
		Result struct {
			Number string `json:"number"`
			SysID  string `json:"sys_id"`
		} `json:"result"`
	}
	if err := s.client.do(ctx, http.MethodPost, incidentPath, in, http.StatusCreated, &payload); err != nil {
		return CreatedIncident{}, err
	}
	return CreatedIncident{Number: payload.Result.Number, SysID: payload.Result.SysID}, nil
}

func (s *ServiceNow) Ping(ctx context.Context) error {
	q := url.Values{}
	q.Set("sysparm_limit", "1")
	return s.client.do(ctx, http.MethodGet, incidentPath+"?"+q.Encode(), nil, http.StatusOK, nil)
}
