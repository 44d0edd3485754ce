package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"grc-center/internal/database"
	"grc-center/internal/handlers"
	"grc-center/internal/integrations"
	"grc-center/internal/logging"
	"grc-center/internal/models"
	"grc-center/internal/services"
)

type fakeHub struct {
	findings []integrations.Finding
	err      error
}

func (f *fakeHub) Findings(context.Context, string, int) ([]integrations.Finding, error) {
	return f.findings, f.err
}

func (f *fakeHub) Ping(context.Context) error { return f.err }

type fakeJira struct{ err error }

func (f *fakeJira) SearchIssues(context.Context, string) ([]integrations.JiraIssue, error) {
	return nil, f.err
}

func (f *fakeJira) CreateIssue(context.Context, integrations.NewJiraIssue) (integrations.CreatedJiraIssue, error) {
	return integrations.CreatedJiraIssue{Key: "GRC-1"}, f.err
}

func (f *fakeJira) Ping(context.Context) error { return f.err }

func newTestRouter(t *testing.T, integ handlers.Integrations) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(context.Background(), database.Options{DSN: "sqlite::memory:", Logger: logging.Discard(), Quiet: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	svc := services.New(database.NewStore(db), services.Options{Logger: logging.Discard()})
	h := handlers.New(svc, integ, logging.Discard())
	return NewRouter(h, Options{SessionSecret: "test-secret", Logger: logging.Discard()})
}

func notConfigured() handlers.Integrations {
	return handlers.Integrations{
		SecurityHub: func(context.Context) (handlers.FindingsClient, error) {
			return nil, integrations.ErrNotConfigured
		},
		Jira: func() (handlers.IssueTracker, error) {
			return nil, integrations.ErrNotConfigured
		},
		ServiceNow: func() (handlers.IncidentDesk, error) {
			return nil, integrations.ErrNotConfigured
		},
	}
}

func do(t *testing.T, r http.Handler, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestRiskLifecycle(t *testing.T) {
	r := newTestRouter(t, notConfigured())

	w := do(t, r, http.MethodPost, "/api/risks", map[string]any{
		"title": "Ransomware", "category": "Technology", "likelihood": 3, "impact": 5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Risk](t, w)
	assert.Equal(t, "RISK-00001", created.Code)
	assert.Equal(t, 15.0, *created.InherentRiskScore)

	w = do(t, r, http.MethodPut, "/api/risks/RISK-00001", map[string]any{"impact": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.Risk](t, w)
	assert.Equal(t, 6.0, *updated.InherentRiskScore)
	assert.Equal(t, 15.0, *updated.ResidualRiskScore)

	w = do(t, r, http.MethodGet, "/api/risks?category=technology&min_score=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Risk](t, w), 1)

	w = do(t, r, http.MethodGet, "/api/risks/statistics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_risks":1`)

	w = do(t, r, http.MethodDelete, "/api/risks/RISK-00001", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/risks/RISK-00001", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "RISK-00001")
}

func TestBadInputIs400(t *testing.T) {
	r := newTestRouter(t, notConfigured())

	w := do(t, r, http.MethodPost, "/api/risks", map[string]any{
		"title": "x", "category": "Weather", "likelihood": 3, "impact": 3,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/risks", map[string]any{"category": "Technology"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/risks?status=Forgotten", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/vendors?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWritesAreAttributedToSessionActor(t *testing.T) {
	r := newTestRouter(t, notConfigured())

	w := do(t, r, http.MethodPost, "/api/session/actor", map[string]any{"actor": "dana"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	w = do(t, r, http.MethodPost, "/api/vendors", map[string]any{"name": "Acme"}, cookies...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = do(t, r, http.MethodPost, "/api/vendors", map[string]any{"name": "Globex"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/audit?entity=vendor", nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries := decode[[]models.AuditLog](t, w)
	require.Len(t, entries, 2)
	assert.Equal(t, models.AnonymousActor, entries[0].Actor)
	assert.Equal(t, "dana", entries[1].Actor)
	assert.NotEmpty(t, entries[1].RequestID)
}

func TestImportRisksUpload(t *testing.T) {
	r := newTestRouter(t, notConfigured())

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Title", "Category", "Likelihood", "Impact"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Laptop theft", "Operational", "Likely", "Minor"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"", "Operational", "Likely", "Minor"}))
	xlsx, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "risks.xlsx")
	require.NoError(t, err)
	_, err = part.Write(xlsx.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/risks/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decode[services.ImportReport](t, w)
	assert.Equal(t, 1, report.ImportedCount)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 3, report.Errors[0].Row)

	w = do(t, r, http.MethodPost, "/api/risks/import", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestComplianceRecompute(t *testing.T) {
	r := newTestRouter(t, notConfigured())

	w := do(t, r, http.MethodPost, "/api/compliance/frameworks/initialize", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/api/compliance/frameworks/GDPR/requirements", map[string]any{
		"requirement_id": "Art.32", "title": "Security of processing", "priority": 9,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, r, http.MethodPut, "/api/compliance/frameworks/GDPR/requirements/Art.32", map[string]any{"status": "Compliant"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodPost, "/api/compliance/frameworks/GDPR/recompute", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"compliance_percentage":100`)
	assert.Contains(t, w.Body.String(), `"status":"Compliant"`)

	w = do(t, r, http.MethodPost, "/api/compliance/frameworks/SOX/recompute", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIntegrationErrors(t *testing.T) {
	r := newTestRouter(t, notConfigured())

	w := do(t, r, http.MethodGet, "/api/integrations/jira/issues", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "not configured")

	w = do(t, r, http.MethodGet, "/api/integrations/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	health := decode[map[string]integrations.Health](t, w)
	assert.False(t, health[integrations.ServiceJira].Configured)
	assert.Equal(t, integrations.StatusUnknown, health[integrations.ServiceAWS].Status)

	failing := notConfigured()
	remote := &integrations.ServiceError{Service: integrations.ServiceJira, StatusCode: 401, Err: errors.New("bad credentials")}
	failing.Jira = func() (handlers.IssueTracker, error) { return &fakeJira{err: remote}, nil }
	r = newTestRouter(t, failing)

	w = do(t, r, http.MethodGet, "/api/integrations/jira/issues", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "bad credentials")

	w = do(t, r, http.MethodGet, "/api/integrations/jira/issues?project=SEC%20OR%20project%20!%3D%20SEC", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "project")

	w = do(t, r, http.MethodGet, "/api/integrations/health", nil)
	health = decode[map[string]integrations.Health](t, w)
	assert.Equal(t, integrations.StatusError, health[integrations.ServiceJira].Status)
}

func TestImportFindingsEndpoint(t *testing.T) {
	integ := notConfigured()
	hub := &fakeHub{findings: []integrations.Finding{{ID: "f-1", Title: "Open security group", Severity: "HIGH"}}}
	integ.SecurityHub = func(context.Context) (handlers.FindingsClient, error) { return hub, nil }
	r := newTestRouter(t, integ)

	for i := 0; i < 2; i++ {
		w := do(t, r, http.MethodPost, "/api/integrations/aws/import", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := do(t, r, http.MethodGet, "/api/risks", nil)
	risks := decode[[]models.Risk](t, w)
	require.Len(t, risks, 1)
	assert.Equal(t, "AWS-00001", risks[0].Code)
}

func TestUploadWithoutStorageIs503(t *testing.T) {
	r := newTestRouter(t, notConfigured())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "policy.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/evidence/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(t, notConfigured())

	w := do(t, r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = do(t, r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "grc_http_request_duration_seconds"))
}
