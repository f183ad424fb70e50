package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/doebialale/EZRAVERIFY/internal/config"
	"github.com/doebialale/EZRAVERIFY/internal/runtime"
	pebblestore "github.com/doebialale/EZRAVERIFY/internal/storage/pebble"
	logpkg "github.com/doebialale/EZRAVERIFY/pkg/log"
)

func newTestServer(t *testing.T) (*Server, *runtime.Runtime) {
	t.Helper()
	cfg := config.Default()
	cfg.BaseURL = "http://example.test:8000"
	rt, err := runtime.Open(runtime.Options{
		DataDir: t.TempDir(),
		Fsync:   pebblestore.FsyncModeNever,
		Config:  cfg,
		Logger:  logpkg.NewLogger(logpkg.WithLevel(logpkg.ErrorLevel)),
	})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	return New(rt, rt.Logger()), rt
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func issueCode(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/v1/codes", map[string]string{
		"manufacturingDate": "2026-01-15",
		"info":              "ALPHA-BRAVO-001",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("issue status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode issue response: %v", err)
	}
	if resp.ID == "" {
		t.Fatal("issue response missing id")
	}
	if want := "http://example.test:8000/" + resp.ID; resp.URL != want {
		t.Fatalf("url = %q, want %q", resp.URL, want)
	}
	return resp.ID
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s.srv.Handler, http.MethodGet, "/v1/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected health body: %s", rec.Body.String())
	}
}

func TestIssueAndVerify(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.srv.Handler
	id := issueCode(t, h)

	rec := doJSON(t, h, http.MethodGet, "/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "VERIFIED") {
		t.Fatalf("expected VERIFIED badge, got: %s", body)
	}
	if !strings.Contains(body, "Scans:</strong> 1/5") {
		t.Fatalf("expected scan count 1/5, got: %s", body)
	}
	if !strings.Contains(body, "Not yet sold") {
		t.Fatalf("expected unsold marker, got: %s", body)
	}
}

func TestVerifyUnknownCode(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s.srv.Handler, http.MethodGet, "/NOSUCHCODEAAAAAAAAAAAAAA", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "UNVERIFIED") {
		t.Fatalf("expected UNVERIFIED badge, got: %s", rec.Body.String())
	}
}

func TestVerifyScanLimit(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.srv.Handler
	id := issueCode(t, h)

	for i := 0; i < 5; i++ {
		rec := doJSON(t, h, http.MethodGet, "/"+id, nil)
		if !strings.Contains(rec.Body.String(), "VERIFIED") {
			t.Fatalf("scan %d: expected VERIFIED, got: %s", i+1, rec.Body.String())
		}
	}
	rec := doJSON(t, h, http.MethodGet, "/"+id, nil)
	if !strings.Contains(rec.Body.String(), "SCAN LIMIT REACHED") {
		t.Fatalf("expected SCAN LIMIT REACHED, got: %s", rec.Body.String())
	}
}

func TestVerifyExpired(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.srv.Handler
	rec := doJSON(t, h, http.MethodPost, "/v1/codes", map[string]string{
		"manufacturingDate": "2019-01-01",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("issue status = %d", rec.Code)
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	page := doJSON(t, h, http.MethodGet, "/"+resp.ID, nil)
	if !strings.Contains(page.Body.String(), ">EXPIRED<") {
		t.Fatalf("expected EXPIRED badge, got: %s", page.Body.String())
	}
}

func TestRecordSale(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.srv.Handler
	id := issueCode(t, h)

	rec := doJSON(t, h, http.MethodPost, "/v1/codes/sale", map[string]string{
		"id": id, "soldDate": "2026-02-01",
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("sale status = %d, body %s", rec.Code, rec.Body.String())
	}

	// Second sale must be rejected.
	rec = doJSON(t, h, http.MethodPost, "/v1/codes/sale", map[string]string{
		"id": id, "soldDate": "2026-03-01",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("repeat sale status = %d, want 409", rec.Code)
	}

	page := doJSON(t, h, http.MethodGet, "/"+id, nil)
	if !strings.Contains(page.Body.String(), "2026-02-01") {
		t.Fatalf("expected first sold date on page, got: %s", page.Body.String())
	}
}

func TestRecordSaleUnknown(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s.srv.Handler, http.MethodPost, "/v1/codes/sale", map[string]string{
		"id": "NOSUCHCODEAAAAAAAAAAAAAA",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("sale status = %d, want 404", rec.Code)
	}
}

func TestListCodes(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.srv.Handler
	for i := 0; i < 3; i++ {
		issueCode(t, h)
	}

	rec := doJSON(t, h, http.MethodGet, "/v1/codes", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var resp struct {
		Codes []struct {
			ID string `json:"id"`
		} `json:"codes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(resp.Codes) != 3 {
		t.Fatalf("listed %d codes, want 3", len(resp.Codes))
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/codes?limit=2", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(resp.Codes) != 2 {
		t.Fatalf("limited list returned %d codes, want 2", len(resp.Codes))
	}
}

func TestListCodesFilter(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.srv.Handler
	id := issueCode(t, h)
	issueCode(t, h)

	// Bump one code's counter so the filter can select it.
	doJSON(t, h, http.MethodGet, "/"+id, nil)

	rec := doJSON(t, h, http.MethodGet, "/v1/codes?filter="+
		"scan_count%20%3E%200", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("filtered list status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Codes []struct {
			ID string `json:"id"`
		} `json:"codes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(resp.Codes) != 1 || resp.Codes[0].ID != id {
		t.Fatalf("filtered list = %+v, want only %s", resp.Codes, id)
	}

	bad := doJSON(t, h, http.MethodGet, "/v1/codes?filter=%28%28", nil)
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("bad filter status = %d, want 400", bad.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s.srv.Handler, http.MethodGet, "/v1/healthz", nil)
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("missing X-Request-Id header")
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/healthz", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	out := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(out, req)
	if got := out.Header().Get("X-Request-Id"); got != "abc-123" {
		t.Fatalf("request id = %q, want abc-123", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/v1/codes", nil)
	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing CORS origin header")
	}
}

func TestIssueInvalidDate(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s.srv.Handler, http.MethodPost, "/v1/codes", map[string]string{
		"manufacturingDate": "15/01/2026",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
