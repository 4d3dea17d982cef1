// Package e2e drives a running custodia instance over HTTP with godog. The
// suite is black box: it needs a server started separately and seeded with the
// demo fixtures, located through CUSTODIA_E2E_BASE_URL.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// TestContext holds per-scenario HTTP state shared by all step packages.
type TestContext struct {
	BaseURL string
	client  *http.Client

	lastStatus int
	lastBody   []byte

	accessToken string
	requestID   string
}

// NewTestContext builds a context from the environment.
func NewTestContext() *TestContext {
	base := os.Getenv("CUSTODIA_E2E_BASE_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	return &TestContext{
		BaseURL: base,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Reset clears scenario state between scenarios.
func (tc *TestContext) Reset() {
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.accessToken = ""
	tc.requestID = ""
}

// POST sends a JSON body, attaching the stored access token when present.
func (tc *TestContext) POST(path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, tc.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return tc.send(req)
}

// GET sends a request with optional extra headers.
func (tc *TestContext) GET(path string, headers map[string]string) error {
	req, err := http.NewRequest(http.MethodGet, tc.BaseURL+path, nil)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return tc.send(req)
}

func (tc *TestContext) send(req *http.Request) error {
	if tc.accessToken != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+tc.accessToken)
	}
	resp, err := tc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

// GetResponseField extracts a top-level field from the last JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var parsed map[string]any
	if err := json.Unmarshal(tc.lastBody, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	value, ok := parsed[field]
	if !ok {
		return nil, fmt.Errorf("response has no field %q", field)
	}
	return value, nil
}

// GetLastResponseStatus returns the status code of the last response.
func (tc *TestContext) GetLastResponseStatus() int { return tc.lastStatus }

// GetLastResponseBody returns the raw body of the last response.
func (tc *TestContext) GetLastResponseBody() []byte { return tc.lastBody }

// GetAccessToken returns the stored bearer token.
func (tc *TestContext) GetAccessToken() string { return tc.accessToken }

// SetAccessToken stores the bearer token for subsequent requests.
func (tc *TestContext) SetAccessToken(token string) { tc.accessToken = token }

// GetRequestID returns the access request ID captured by a previous step.
func (tc *TestContext) GetRequestID() string { return tc.requestID }

// SetRequestID stores an access request ID for subsequent steps.
func (tc *TestContext) SetRequestID(id string) { tc.requestID = id }
