package helpers

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/cbitosc/HTF25-Team-416-sub000/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&services.Error{Kind: services.ErrNotFound}, http.StatusNotFound},
		{&services.Error{Kind: services.ErrForbidden}, http.StatusForbidden},
		{&services.Error{Kind: services.ErrUnauthorized}, http.StatusUnauthorized},
		{services.ErrAlreadyRegistered, http.StatusBadRequest},
		{&services.Error{Kind: services.ErrNotApplicable}, http.StatusBadRequest},
		{&services.Error{Kind: services.ErrInvalid}, http.StatusBadRequest},
		{&services.Error{Kind: services.ErrUpstream}, http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", &services.Error{Kind: services.ErrNotFound}), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestRespondWithServiceError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RespondWithServiceError(c, fmt.Errorf("loading event: %w", errors.New("db down")), "Something failed.")
	if w.Code != http.StatusInternalServerError || !strings.Contains(w.Body.String(), `"message":"loading event: db down"`) {
		t.Fatalf("response = %d %s", w.Code, w.Body)
	}

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	RespondWithServiceError(c, services.ErrAlreadyRegistered, "fallback")
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "already registered") {
		t.Fatalf("response = %d %s", w.Code, w.Body)
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query     string
		page, lim int
	}{
		{"", 1, 10},
		{"page=3&limit=5", 3, 5},
		{"page=0&limit=-1", 1, 10},
		{"page=abc&limit=xyz", 1, 10},
		{"limit=1000", 1, maxPageLimit},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
		page, limit := ParsePagination(c)
		if page != tt.page || limit != tt.lim {
			t.Errorf("%q: page=%d limit=%d, want %d %d", tt.query, page, limit, tt.page, tt.lim)
		}
	}
}

func multipartFile(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write(content)
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatal(err)
	}
	return req.MultipartForm.File["file"][0]
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestUploadFile(t *testing.T) {
	base := t.TempDir()
	cfg := DefaultImageUploadConfig
	cfg.UploadBasePath = base
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	rel, err := UploadFile(c, multipartFile(t, "Banner.PNG", pngHeader), EventMediaDir, cfg)
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if !strings.HasPrefix(rel, EventMediaDir+"/") || !strings.HasSuffix(rel, ".png") {
		t.Errorf("relative path = %q", rel)
	}
	if _, err := os.Stat(filepath.Join(base, filepath.FromSlash(rel))); err != nil {
		t.Errorf("stored file missing: %v", err)
	}
	if err := DeleteFile(base, rel); err != nil {
		t.Errorf("DeleteFile: %v", err)
	}

	_, err = UploadFile(c, multipartFile(t, "notes.txt", []byte("hello")), EventMediaDir, cfg)
	if !errors.Is(err, ErrInvalidFileType) {
		t.Errorf("text upload err = %v", err)
	}

	cfg.MaxSizeBytes = 4
	_, err = UploadFile(c, multipartFile(t, "big.png", pngHeader), EventMediaDir, cfg)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("oversized upload err = %v", err)
	}
}
