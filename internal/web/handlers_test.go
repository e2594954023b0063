package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/flatluna/twinfx/internal/config"
	"github.com/flatluna/twinfx/internal/core"
	"github.com/flatluna/twinfx/internal/storage"
)

var (
	jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46}
	pdfBytes  = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj")
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           0,
			RequestTimeout: 30 * time.Second,
		},
		Upload: config.UploadConfig{
			MaxBodySize: 1 << 20,
			MaxFileSize: 1 << 19,
		},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	repo, err := storage.NewMemory()
	if err != nil {
		t.Fatalf("NewMemory() error = %v", err)
	}
	blobs, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	service := core.NewService(repo, blobs, cfg)
	return NewServer(service, cfg)
}

// buildUpload assembles a raw multipart body with CRLF line endings.
func buildUpload(boundary string, sections ...string) []byte {
	var b bytes.Buffer
	for _, s := range sections {
		b.WriteString("--" + boundary + "\r\n")
		b.WriteString(s)
		b.WriteString("\r\n")
	}
	b.WriteString("--" + boundary + "--\r\n")
	return b.Bytes()
}

func fileSection(field, filename, contentType string, data []byte) string {
	return "Content-Disposition: form-data; name=\"" + field + "\"; filename=\"" + filename + "\"\r\n" +
		"Content-Type: " + contentType + "\r\n\r\n" + string(data)
}

func textSection(field, value string) string {
	return "Content-Disposition: form-data; name=\"" + field + "\"\r\n\r\n" + value
}

func doRequest(t *testing.T, s *Server, method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, testConfig())
	rec := doRequest(t, s, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t, testConfig())
	rec := doRequest(t, s, http.MethodGet, "/healthz", "", nil)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}

func TestReceiptUpload(t *testing.T) {
	s := newTestServer(t, testConfig())

	body := buildUpload("XYZ",
		fileSection("file", "r.jpg", "image/jpeg", jpegBytes),
		textSection("receiptType", "comida"),
	)
	rec := doRequest(t, s, http.MethodPost, "/api/twins/t1/diary/e1/receipt",
		"multipart/form-data; boundary=XYZ", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}

	var receipt storage.Receipt
	if err := json.NewDecoder(rec.Body).Decode(&receipt); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if receipt.ReceiptType != "comida" {
		t.Errorf("receiptType = %q, want comida", receipt.ReceiptType)
	}
	if receipt.Size != int64(len(jpegBytes)) {
		t.Errorf("size = %d, want %d", receipt.Size, len(jpegBytes))
	}

	list := doRequest(t, s, http.MethodGet, "/api/twins/t1/diary/e1/receipts", "", nil)
	if list.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", list.Code)
	}
	var receipts []storage.Receipt
	if err := json.NewDecoder(list.Body).Decode(&receipts); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(receipts) != 1 {
		t.Fatalf("len(receipts) = %d, want 1", len(receipts))
	}
}

func TestReceiptUpload_Errors(t *testing.T) {
	tests := []struct {
		name        string
		body        []byte
		contentType string
		wantStatus  int
		wantCode    string
	}{
		{
			name:        "not multipart",
			body:        []byte(`{"nope":true}`),
			contentType: "application/json",
			wantStatus:  http.StatusBadRequest,
			wantCode:    "FORM001",
		},
		{
			name:        "no file part",
			body:        buildUpload("XYZ", textSection("receiptType", "comida")),
			contentType: "multipart/form-data; boundary=XYZ",
			wantStatus:  http.StatusBadRequest,
			wantCode:    "FORM002",
		},
		{
			name:        "bad extension",
			body:        buildUpload("XYZ", fileSection("file", "run.exe", "application/octet-stream", jpegBytes)),
			contentType: "multipart/form-data; boundary=XYZ",
			wantStatus:  http.StatusBadRequest,
			wantCode:    "FILE001",
		},
		{
			name:        "file too large",
			body:        buildUpload("XYZ", fileSection("file", "big.jpg", "image/jpeg", bytes.Repeat([]byte{0xAA}, 1<<19+1))),
			contentType: "multipart/form-data; boundary=XYZ",
			wantStatus:  http.StatusRequestEntityTooLarge,
			wantCode:    "FILE002",
		},
	}

	s := newTestServer(t, testConfig())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodPost, "/api/twins/t1/diary/e1/receipt", tt.contentType, tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			var resp ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestReceiptUpload_BodyOverCap(t *testing.T) {
	cfg := testConfig()
	cfg.Upload.MaxBodySize = 512

	s := newTestServer(t, cfg)
	body := buildUpload("XYZ",
		fileSection("file", "r.jpg", "image/jpeg", bytes.Repeat([]byte{0xAA}, 2048)),
	)
	rec := doRequest(t, s, http.MethodPost, "/api/twins/t1/diary/e1/receipt",
		"multipart/form-data; boundary=XYZ", body)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
}

func TestMortgageStatement(t *testing.T) {
	s := newTestServer(t, testConfig())

	good := buildUpload("bnd", fileSection("file", "jan.pdf", "application/pdf", pdfBytes))
	rec := doRequest(t, s, http.MethodPost, "/api/twins/t1/mortgage/statement",
		"multipart/form-data; boundary=bnd", good)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}

	// A JPEG renamed to .pdf must be rejected
	fake := buildUpload("bnd", fileSection("file", "jan.pdf", "application/pdf", jpegBytes))
	rec = doRequest(t, s, http.MethodPost, "/api/twins/t1/mortgage/statement",
		"multipart/form-data; boundary=bnd", fake)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("fake pdf status = %d, want 400", rec.Code)
	}

	list := doRequest(t, s, http.MethodGet, "/api/twins/t1/mortgage/statements", "", nil)
	var stmts []storage.Statement
	if err := json.NewDecoder(list.Body).Decode(&stmts); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("len(statements) = %d, want 1", len(stmts))
	}
}

func TestDocumentUpload(t *testing.T) {
	s := newTestServer(t, testConfig())

	body := buildUpload("bnd", fileSection("document", "notes.pdf", "application/pdf", pdfBytes))
	rec := doRequest(t, s, http.MethodPost, "/api/twins/t1/documents",
		"multipart/form-data; boundary=bnd", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}
	var doc storage.Document
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if doc.Kind != ".pdf" {
		t.Errorf("kind = %q, want .pdf", doc.Kind)
	}
}

func TestSkillsLifecycle(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := doRequest(t, s, http.MethodPost, "/api/twins/t1/skills",
		"application/json", []byte(`{"name":"Go","level":"advanced"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}
	var skill storage.Skill
	if err := json.NewDecoder(rec.Body).Decode(&skill); err != nil {
		t.Fatalf("decode skill: %v", err)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/twins/t1/skills",
		"application/json", []byte(`{"level":"basic"}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing name status = %d, want 400", rec.Code)
	}

	list := doRequest(t, s, http.MethodGet, "/api/twins/t1/skills", "", nil)
	var skills []storage.Skill
	if err := json.NewDecoder(list.Body).Decode(&skills); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(skills) != 1 {
		t.Fatalf("len(skills) = %d, want 1", len(skills))
	}

	del := doRequest(t, s, http.MethodDelete, "/api/twins/t1/skills/"+skill.ID, "", nil)
	if del.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", del.Code)
	}

	del = doRequest(t, s, http.MethodDelete, "/api/twins/t1/skills/"+skill.ID, "", nil)
	if del.Code != http.StatusNotFound {
		t.Fatalf("delete missing status = %d, want 404", del.Code)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"secret-key"}

	s := newTestServer(t, cfg)

	rec := doRequest(t, s, http.MethodGet, "/api/twins/t1/skills", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no key status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/twins/t1/skills", nil)
	req.Header.Set("X-API-Key", "wrong")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("wrong key status = %d, want 403", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/twins/t1/skills", nil)
	req.Header.Set("X-API-Key", "secret-key")
	w = httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("good key status = %d, want 200", w.Code)
	}

	// Health stays open without a key
	if rec := doRequest(t, s, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", rec.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d: allow = false, want true", i+1)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Fatal("request 4: allow = true, want false")
	}

	// A different client has its own bucket
	if !rl.allow("10.0.0.2") {
		t.Fatal("other ip: allow = false, want true")
	}
}

func TestNotMultipartMessageMentionsBoundary(t *testing.T) {
	s := newTestServer(t, testConfig())
	rec := doRequest(t, s, http.MethodPost, "/api/twins/t1/documents", "text/plain", []byte("hi"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "multipart") {
		t.Errorf("body %q should mention multipart", rec.Body.String())
	}
}
