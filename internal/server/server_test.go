package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigil-app/vigil/internal/config"
	"github.com/vigil-app/vigil/internal/fetch"
	"github.com/vigil-app/vigil/internal/oracle"
	"github.com/vigil-app/vigil/internal/pipeline"
	"github.com/vigil-app/vigil/internal/webpage"
)

type stubReasoner struct{ response string }

func (s *stubReasoner) Name() string { return "stub" }
func (s *stubReasoner) Close() error { return nil }
func (s *stubReasoner) Analyze(context.Context, oracle.Payload) (string, error) {
	return s.response, nil
}

func testServer(t *testing.T, apiKey string) *Server {
	t.Helper()

	searchSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"organic_results": []}`)
	}))
	t.Cleanup(searchSrv.Close)

	cfg := config.DefaultConfig()
	cfg.SessionsRoot = t.TempDir()
	cfg.Server.APIKey = apiKey

	client := fetch.New(5 * time.Second)
	pipe := pipeline.New(
		cfg,
		&stubReasoner{response: `{"risk_level": "Low Risk", "summary": "Nothing alarming."}`},
		oracle.NewSearchClient("test-key", searchSrv.URL),
		webpage.NewScraper(client, cfg.Scrape),
		client,
	)
	return New(cfg, pipe)
}

func TestHealth(t *testing.T) {
	srv := testServer(t, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	srv.router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestAuthMiddleware(t *testing.T) {
	srv := testServer(t, "secret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	srv.router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-API-Key", "secret")
	srv.router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAnalyzeWebpage(t *testing.T) {
	pageSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Claim Piece</title></head><body><p>
		An assertion-heavy article whose statements deserve a second look
		before anyone forwards it along.</p></body></html>`)
	}))
	defer pageSrv.Close()

	srv := testServer(t, "")

	body, err := json.Marshal(AnalyzeRequest{URL: pageSrv.URL})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Code int          `json:"code"`
		Data AnalysisView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, "Claim Piece", resp.Data.Title)
	assert.Equal(t, oracle.RiskLow, resp.Data.RiskLevel)
	assert.NotEmpty(t, resp.Data.SessionDir)
}

func TestAnalyzeMissingURL(t *testing.T) {
	srv := testServer(t, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	srv.router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadUnsupportedType(t *testing.T) {
	srv := testServer(t, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "payload.xyz")
	require.NoError(t, err)
	_, err = part.Write([]byte("bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	srv.router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestUploadDocument(t *testing.T) {
	srv := testServer(t, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "claims.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("A pamphlet of bold claims presented with no sources at all."))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	srv.router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Low Risk")
}
