package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DukeRupert/storyshelf/internal/domain"
)

// =============================================================================
// Error Response Tests - Security Focus
// =============================================================================

func TestErrorResponse_DoesNotExposeOperationName(t *testing.T) {
	err := domain.Upstream(errors.New("dial tcp 10.0.0.7:443: connection refused"), "storyapi.ListStories", "Story API request failed")

	req := httptest.NewRequest("GET", "/stories", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	ErrorResponse(rec, req, testLogger(), err)

	body := rec.Body.String()
	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", rec.Code)
	}
	if strings.Contains(body, "storyapi") {
		t.Errorf("response exposes internal operation name: %s", body)
	}
	if strings.Contains(body, "10.0.0.7") {
		t.Errorf("response exposes the underlying error: %s", body)
	}
	if !strings.Contains(body, "Story API request failed") {
		t.Errorf("response should contain the user-facing message, got: %s", body)
	}
}

func TestErrorResponse_JSON(t *testing.T) {
	req := httptest.NewRequest("GET", "/stories/9/edit", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	ErrorResponse(rec, req, testLogger(), domain.NotFound("storyapi.GetStory", "story", "9"))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}

	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error.Code != domain.ENOTFOUND {
		t.Errorf("expected code %q, got %q", domain.ENOTFOUND, resp.Error.Code)
	}
}

func TestInternalErrorResponse_HidesDetails(t *testing.T) {
	req := httptest.NewRequest("GET", "/stories", nil)
	rec := httptest.NewRecorder()

	InternalErrorResponse(rec, req, testLogger(), errors.New("template cache corrupted"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "template cache") {
		t.Errorf("response exposes internal error: %s", rec.Body.String())
	}
}

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{domain.EINVALID, http.StatusBadRequest},
		{domain.EUNAUTHORIZED, http.StatusUnauthorized},
		{domain.EFORBIDDEN, http.StatusForbidden},
		{domain.ENOTFOUND, http.StatusNotFound},
		{domain.ECONFLICT, http.StatusConflict},
		{domain.ERATELIMIT, http.StatusTooManyRequests},
		{domain.EUPSTREAM, http.StatusBadGateway},
		{domain.EINTERNAL, http.StatusInternalServerError},
		{"unknown", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := ErrorCodeToHTTPStatus(tt.code); got != tt.want {
			t.Errorf("ErrorCodeToHTTPStatus(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestAcceptsJSON(t *testing.T) {
	htmx := httptest.NewRequest("GET", "/stories", nil)
	htmx.Header.Set("HX-Request", "true")
	if acceptsJSON(htmx) {
		t.Error("htmx requests want HTML")
	}

	api := httptest.NewRequest("GET", "/stories", nil)
	api.Header.Set("Accept", "application/json")
	if !acceptsJSON(api) {
		t.Error("Accept: application/json wants JSON")
	}

	plain := httptest.NewRequest("GET", "/stories.json", nil)
	if acceptsJSON(plain) {
		t.Error("the path alone does not select JSON")
	}
}

func TestErrorResponse_HTMXRetargetsErrorRegion(t *testing.T) {
	req := httptest.NewRequest("GET", "/stories/nav?to=last", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	ErrorResponse(rec, req, testLogger(), domain.Invalid("StoryHandler.Navigate", `Invalid page <"last">`))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
	if got := rec.Header().Get("HX-Retarget"); got != "#errors" {
		t.Errorf("expected HX-Retarget #errors, got %q", got)
	}
	if got := rec.Header().Get("HX-Reswap"); got != "innerHTML" {
		t.Errorf("expected HX-Reswap innerHTML, got %q", got)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `role="alert"`) {
		t.Errorf("expected an alert fragment, got: %s", body)
	}
	if strings.Contains(body, `<"last">`) {
		t.Errorf("message must be escaped, got: %s", body)
	}
	if strings.Contains(body, "StoryHandler") {
		t.Errorf("response exposes internal operation name: %s", body)
	}
}
