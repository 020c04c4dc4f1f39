package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"tindo.app/internal/auth"
	"tindo.app/internal/owner"
)

type apiClient struct {
	baseURL string
	client  *http.Client
	t       *testing.T
}

func newTestAPI(t *testing.T) *apiClient {
	t.Helper()

	t.Setenv("TINDO_OWNER_AUTH_SECRET", "test-secret")
	owner.ResetSecretForTests()

	svc, err := auth.NewService(auth.NewInMemory(), owner.NewOracle())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if err := svc.SeedCatalog(context.Background()); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}

	api := New(ReadyProbe{}, "test", svc)
	api.rateBurst = 100
	api.ratePerSec = 100

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &apiClient{
		baseURL: srv.URL,
		client:  srv.Client(),
		t:       t,
	}
}

func (c *apiClient) do(method, path string, body any, headers map[string]string) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

func (c *apiClient) post(path string, body any, headers map[string]string) *http.Response {
	return c.do(http.MethodPost, path, body, headers)
}

func (c *apiClient) put(path string, body any, headers map[string]string) *http.Response {
	return c.do(http.MethodPut, path, body, headers)
}

func (c *apiClient) get(path string, params url.Values, headers map[string]string) *http.Response {
	c.t.Helper()
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		c.t.Fatalf("parse url: %v", err)
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}
	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("get request: %v", err)
	}
	return resp
}

// ownerHeader mints an owner token through the dev endpoint and wraps
// it as an Authorization header.
func (c *apiClient) ownerHeader(ownerID string) map[string]string {
	c.t.Helper()
	resp := c.post("/v1/owner/token", map[string]any{"owner_id": ownerID}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("unexpected owner token status: %d", resp.StatusCode)
	}
	var payload ownerTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.t.Fatalf("decode token response: %v", err)
	}
	if payload.Token == "" {
		c.t.Fatalf("empty owner token issued")
	}
	return map[string]string{"Authorization": "Bearer " + payload.Token}
}

// createStaff provisions one staff account as the given owner and
// returns its id.
func (c *apiClient) createStaff(ownerHeader map[string]string, email, password string) string {
	c.t.Helper()
	resp := c.post("/v1/staff", map[string]any{
		"email":    email,
		"password": password,
		"name":     "Test Staff",
	}, ownerHeader)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		c.t.Fatalf("unexpected create staff status: %d", resp.StatusCode)
	}
	profile := decode[map[string]any](c.t, resp)
	id, _ := profile["id"].(string)
	if id == "" {
		c.t.Fatalf("staff id missing in response")
	}
	return id
}

// login authenticates staff credentials and returns the session header.
func (c *apiClient) login(email, password string) map[string]string {
	c.t.Helper()
	resp := c.post("/v1/staff/login", map[string]any{
		"email":    email,
		"password": password,
	}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("unexpected login status: %d", resp.StatusCode)
	}
	var payload loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.t.Fatalf("decode login response: %v", err)
	}
	if payload.SessionToken == "" {
		c.t.Fatalf("empty session token issued")
	}
	return map[string]string{"Authorization": "Bearer " + payload.SessionToken}
}

func decode[T any](t *testing.T, r *http.Response) T {
	t.Helper()
	defer r.Body.Close()
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealthAndInfo(t *testing.T) {
	api := newTestAPI(t)

	resp := api.get("/healthz", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected healthz status: %d", resp.StatusCode)
	}
	body := decode[map[string]any](t, resp)
	if body["service"] != "tindo-api" {
		t.Fatalf("unexpected service name: %v", body["service"])
	}

	resp = api.get("/readyz", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected readyz status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = api.get("/v1/info", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected info status: %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUnknownPathReturns404(t *testing.T) {
	api := newTestAPI(t)
	resp := api.get("/nope", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}
