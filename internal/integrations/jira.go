package integrations

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"grc-center/internal/config"
)

const (
	ServiceJira = "jira"

	// DefaultJQL selects issues labelled for governance work.
	DefaultJQL = "labels = 'grc' OR labels = 'compliance' OR labels = 'security'"

	jiraMaxResults = 100
)

var (
	ErrInvalidProjectKey = errors.New("invalid jira project key")

	projectKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]+$`)
)

// ValidProjectKey reports whether key looks like a Jira project key (e.g. "SEC").
func ValidProjectKey(key string) bool {
	return projectKeyPattern.MatchString(key)
}

type Jira struct {
	client basicAuthClient
}

type JiraIssue struct {
	Key      string `json:"key"`
	Summary  string `json:"summary"`
	Status   string `json:"status"`
	Priority string `json:"priority,omitempty"`
	Created  string `json:"created"`
	Assignee string `json:"assignee,omitempty"`
}

type NewJiraIssue struct {
	Project     string   `json:"project" binding:"required"`
	Summary     string   `json:"summary" binding:"required"`
	Description string   `json:"description"`
	IssueType   string   `json:"issue_type"`
	Labels      []string `json:"labels"`
}

type CreatedJiraIssue struct {
	Key string `json:"issue_key"`
	URL string `json:"issue_url"`
}

// NewJira returns ErrNotConfigured unless URL, username and token are all set.
// httpClient may be nil.
func NewJira(cfg config.JiraConfig, httpClient *http.Client) (*Jira, error) {
	if !cfg.Configured() {
		return nil, notConfigured(ServiceJira)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Jira{client: basicAuthClient{
		service:  ServiceJira,
		baseURL:  cfg.URL,
		username: cfg.Username,
		secret:   cfg.APIToken,
		http:     httpClient,
	}}, nil
}

// SearchIssues runs `project = "<project>"` when project is set, DefaultJQL otherwise.
func (j *Jira) SearchIssues(ctx context.Context, project string) ([]JiraIssue, error) {
	jql := DefaultJQL
	if project != "" {
		if !ValidProjectKey(project) {
			return nil, ErrInvalidProjectKey
		}
		jql = `project = "` + project + `"`
	}
	q := url.Values{}
	q.Set("jql", jql)
	q.Set("maxResults", strconv.Itoa(jiraMaxResults))

	var payload struct {
		Issues []struct {
			Key    string `json:"key"`
			Fields struct {
				Summary string `json:"summary"`
				Created string `json:"created"`
				Status  struct {
					Name string `json:"name"`
				} `json:"status"`
				Priority *struct {
					Name string `json:"name"`
				} `json:"priority"`
				Assignee *struct {
					DisplayName string `json:"displayName"`
				} `json:"assignee"`
			} `json:"fields"`
		} `json:"issues"`
	}
	if err := j.client.do(ctx, http.MethodGet, "/rest/api/2/search?"+q.Encode(), nil, http.StatusOK, &payload); err != nil {
		return nil, err
	}

	issues := make([]JiraIssue, 0, len(payload.Issues))
	for _, raw := range payload.Issues {
		issue := JiraIssue{
			Key:     raw.Key,
			Summary: raw.Fields.Summary,
			Status:  raw.Fields.Status.Name,
			Created: raw.Fields.Created,
		}
		if raw.Fields.Priority != nil {
			issue.Priority = raw.Fields.Priority.Name
		}
		if raw.Fields.Assignee != nil {
			issue.Assignee = raw.Fields.Assignee.DisplayName
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

// CreateIssue defaults the issue type to Task and the labels to ["grc"].
func (j *Jira) CreateIssue(ctx context.Context, in NewJiraIssue) (CreatedJiraIssue, error) {
	if in.IssueType == "" {
		in.IssueType = "Task"
	}
	if len(in.Labels) == 0 {
		in.Labels = []string{"grc"}
	}
	body := map[string]any{
		"fields": map[string]any{
			"project":     map[string]string{"key": in.Project},
			"summary":     in.Summary,
			"description": in.Description,
			"issuetype":   map[string]string{"name": in.IssueType},
			"labels":      in.Labels,
		},
	}
	var created struct {
		Key string `json:"key"`
	}
	if err := j.client.do(ctx, http.MethodPost, "/rest/api/2/issue", body, http.StatusCreated, &created); err != nil {
		return CreatedJiraIssue{}, err
	}
	return CreatedJiraIssue{Key: created.Key, URL: j.client.baseURL + "/browse/" + created.Key}, nil
}

// Ping fetches the authenticated user.
func (j *Jira) Ping(ctx context.Context) error {
	return j.client.do(ctx, http.MethodGet, "/rest/api/2/myself", nil, http.StatusOK, nil)
}
