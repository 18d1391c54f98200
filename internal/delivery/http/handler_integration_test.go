package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/competitorlens/backend/config"
	"github.com/competitorlens/backend/internal/domain"
	"github.com/competitorlens/backend/internal/usecase"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	os.Exit(m.Run())
}

// frontendOrigin is the local research UI that calls this API from the browser
const frontendOrigin = "http://localhost:3000"

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{frontendOrigin, "http://127.0.0.1:3000"},
		},
	}
}

// setupTestRouter creates a test router without a research service
func setupTestRouter() *gin.Engine {
	// Pass nil for research service - handler returns 501 for research endpoints
	handler := NewHandler(nil, zap.NewNop())
	if handler == nil {
		panic("setupTestRouter: NewHandler returned nil")
	}

	router := SetupRouter(testConfig(), handler, zap.NewNop())
	if router == nil {
		panic("setupTestRouter: SetupRouter returned nil *gin.Engine")
	}

	return router
}

// serve runs a request from the frontend origin through the full router
func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Origin", frontendOrigin)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheckEndpoint(t *testing.T) {
	w := serve(setupTestRouter(), "GET", "/health", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
	}

	var response struct {
		Status  string `json:"status"`
		Service string `json:"service"`
		Version string `json:"version"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Status != "healthy" || response.Service != "competitorlens-backend" {
		t.Errorf("health = %+v, want healthy competitorlens-backend", response)
	}
	if strings.TrimSpace(response.Version) == "" {
		t.Errorf("version should not be empty")
	}
}

// TestRouteTable pins which method and path pairs the router serves when no
// research service is wired.
func TestRouteTable(t *testing.T) {
	routes := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{"GET", "/health", "", http.StatusOK},
		{"POST", "/health", "", http.StatusNotFound},
		{"DELETE", "/health", "", http.StatusNotFound},
		{"GET", "/api/v1/research?query=figma+alternatives", "", http.StatusNotImplemented},
		{"POST", "/api/v1/research", `{"query":"figma alternatives"}`, http.StatusNotImplemented},
		{"PUT", "/api/v1/research", "", http.StatusNotFound},
		{"PATCH", "/api/v1/research", "", http.StatusNotFound},
		{"GET", "/api/research?query=figma", "", http.StatusNotFound},
		{"POST", "/research", "", http.StatusNotFound},
		{"POST", "/api/v1", "", http.StatusNotFound},
		{"OPTIONS", "/api/v1/research", "", http.StatusNoContent},
	}

	router := setupTestRouter()
	for _, rt := range routes {
		w := serve(router, rt.method, rt.path, rt.body)
		if w.Code != rt.want {
			t.Errorf("%s %s: Status = %d, want %d", rt.method, rt.path, w.Code, rt.want)
		}
	}
}

func TestResearchEndpoint_NotConfigured(t *testing.T) {
	w := serve(setupTestRouter(), "POST", "/api/v1/research", `{"query":"notion alternatives"}`)

	if w.Code != http.StatusNotImplemented {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusNotImplemented)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q, want JSON", got)
	}

	var response domain.SearchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Success {
		t.Errorf("success = true, want false")
	}
	if !strings.Contains(response.Error, "not configured") {
		t.Errorf("error = %q, want to contain 'not configured'", response.Error)
	}
}

// TestFrontendHeaders checks that every response the browser sees carries a
// request ID it is allowed to read.
func TestFrontendHeaders(t *testing.T) {
	router := setupTestRouter()
	router.GET("/boom", func(c *gin.Context) {
		panic("handler exploded")
	})

	for _, path := range []string{"/health", "/api/v1/research?query=x", "/boom"} {
		w := serve(router, "GET", path, "")

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != frontendOrigin {
			t.Errorf("%s: Access-Control-Allow-Origin = %q, want %q", path, got, frontendOrigin)
		}
		if got := w.Header().Get("Access-Control-Expose-Headers"); got != "X-Request-ID" {
			t.Errorf("%s: Access-Control-Expose-Headers = %q, want X-Request-ID", path, got)
		}
		if w.Header().Get("X-Request-ID") == "" {
			t.Errorf("%s: X-Request-ID missing", path)
		}
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	router := setupTestRouter()
	router.POST("/boom", func(c *gin.Context) {
		panic("handler exploded")
	})

	w := serve(router, "POST", "/boom", `{"query":"x"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusInternalServerError)
	}

	var response domain.SearchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Response should be valid JSON, got error: %v", err)
	}
	if response.Success || response.Error == "" {
		t.Errorf("response = %+v, want failure envelope", response)
	}
	if strings.Contains(response.Error, "handler exploded") {
		t.Errorf("error = %q, panic value should not leak to the client", response.Error)
	}
}

// --- Mock implementations for testing with ResearchService ---

// mockSearchProvider is a mock implementation of domain.SearchProvider
type mockSearchProvider struct {
	results map[string][]domain.SearchResult
	err     error
}

func (m *mockSearchProvider) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.results[query], nil
}

// mockLLMClient is a mock implementation of domain.LLMClient
type mockLLMClient struct {
	response string
	err      error
}

func (m *mockLLMClient) Complete(ctx context.Context, prompt string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

// setupTestRouterWithService creates a test router with a real ResearchService using mocks
func setupTestRouterWithService(provider domain.SearchProvider, llm domain.LLMClient) *gin.Engine {
	researchService := usecase.NewResearchService(provider, llm, usecase.ResearchServiceConfig{}, zap.NewNop())

	handler := NewHandler(researchService, zap.NewNop())
	return SetupRouter(testConfig(), handler, zap.NewNop())
}

func decodeSearchResponse(t *testing.T, w *httptest.ResponseRecorder) domain.SearchResponse {
	t.Helper()
	var response domain.SearchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	return response
}

// TestResearchWithService tests the research endpoints with a real service
func TestResearchWithService(t *testing.T) {
	provider := &mockSearchProvider{
		results: map[string][]domain.SearchResult{
			"notion alternatives": {
				{URL: "https://clickup.com", Title: "ClickUp | One app to replace them all", Content: "Tasks and docs."},
			},
		},
	}
	llm := &mockLLMClient{
		response: `{"summary":["Crowded market"],"competitors_details":[{"name":"ClickUp","website_url":"https://clickup.com","key_features":["Tasks"]}]}`,
	}

	t.Run("returns analysis for valid POST request", func(t *testing.T) {
		router := setupTestRouterWithService(provider, llm)

		req, _ := http.NewRequest("POST", "/api/v1/research", strings.NewReader(`{"query":"notion alternatives"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d; body = %s", w.Code, http.StatusOK, w.Body.String())
		}

		response := decodeSearchResponse(t, w)
		if !response.Success || response.Data == nil {
			t.Fatalf("response = %+v, want success with data", response)
		}
		if len(response.Data.CompetitorsDetails) != 1 {
			t.Fatalf("competitors = %d, want 1", len(response.Data.CompetitorsDetails))
		}
		if got := response.Data.CompetitorsDetails[0].WebsiteURL; got != "https://clickup.com" {
			t.Errorf("website_url = %q, want https://clickup.com", got)
		}
		if response.Metadata == nil || response.Metadata.Query != "notion alternatives" || response.Metadata.SourcesCount != 1 {
			t.Errorf("metadata = %+v, want query and sources_count 1", response.Metadata)
		}
		if w.Header().Get("X-Request-ID") == "" {
			t.Errorf("X-Request-ID header should be set")
		}
	})

	t.Run("returns analysis for valid GET request", func(t *testing.T) {
		router := setupTestRouterWithService(provider, llm)

		req, _ := http.NewRequest("GET", "/api/v1/research?query=notion+alternatives", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("returns bad request for blank query", func(t *testing.T) {
		router := setupTestRouterWithService(provider, llm)

		req, _ := http.NewRequest("POST", "/api/v1/research", strings.NewReader(`{"query":"   "}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
		response := decodeSearchResponse(t, w)
		if response.Success || response.Metadata != nil {
			t.Errorf("response = %+v, want failure without metadata", response)
		}
	})

	t.Run("returns bad request for malformed body", func(t *testing.T) {
		router := setupTestRouterWithService(provider, llm)

		req, _ := http.NewRequest("POST", "/api/v1/research", strings.NewReader(`{"query":`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("returns bad gateway when search fails", func(t *testing.T) {
		router := setupTestRouterWithService(&mockSearchProvider{err: domain.ErrSearchProviderFailure}, llm)

		req, _ := http.NewRequest("GET", "/api/v1/research?query=notion", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadGateway {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadGateway)
		}
		response := decodeSearchResponse(t, w)
		if response.Metadata == nil || response.Metadata.SourcesCount != 0 {
			t.Errorf("metadata = %+v, want sources_count 0", response.Metadata)
		}
	})

	t.Run("returns bad gateway when the model fails", func(t *testing.T) {
		router := setupTestRouterWithService(provider, &mockLLMClient{err: domain.ErrLLMFailure})

		req, _ := http.NewRequest("GET", "/api/v1/research?query=notion+alternatives", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadGateway {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadGateway)
		}
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"invalid query", domain.ErrInvalidQuery, http.StatusBadRequest},
		{"search failure", domain.ErrSearchProviderFailure, http.StatusBadGateway},
		{"llm failure", domain.ErrLLMFailure, http.StatusBadGateway},
		{"other", context.Canceled, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor() = %d, want %d", got, tt.want)
			}
		})
	}
}
