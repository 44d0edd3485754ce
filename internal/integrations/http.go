package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"grc-center/internal/metrics"
)

const maxBodySize = 1 << 20

func recordCall(service string, err error) {
	result := metrics.ResultOK
	if err != nil {
		result = metrics.ResultError
	}
	metrics.IntegrationRequestsTotal.WithLabelValues(service, result).Inc()
}

// basicAuthClient is the JSON-over-HTTP plumbing shared by Jira and ServiceNow.
type basicAuthClient struct {
	service  string
	baseURL  string
	username string
	secret   string
	http     *http.Client
}

// do sends a JSON request and decodes the response into out when out is non-nil.
// Any status other than want is a ServiceError.
func (c *basicAuthClient) do(ctx context.Context, method, path string, body any, want int, out any) (err error) {
	defer func() { recordCall(c.service, err) }()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", c.service, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &ServiceError{Service: c.service, Err: err}
	}
	req.SetBasicAuth(c.username, c.secret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &ServiceError{Service: c.service, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &ServiceError{Service: c.service, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode != want {
		return &ServiceError{Service: c.service, StatusCode: resp.StatusCode, Err: fmt.Errorf("api error: %s", snippet(data))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ServiceError{Service: c.service, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	if s == "" {
		return "empty body"
	}
	return s
}
