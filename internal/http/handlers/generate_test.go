package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"server/internal/domain"
	"server/internal/middleware"
)

func generateBody() string {
	return `{"base64Image1":"aW1n","prompt":"remove the background"}`
}

func doGenerate(ta *testApp, body, email string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(body))
	req.RemoteAddr = "198.51.100.10:1234"
	if email != "" {
		req = req.WithContext(middleware.ContextWithEmail(req.Context(), email))
	}
	rec := httptest.NewRecorder()
	ta.app.Generate(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	return out
}

func TestGenerateFreePath(t *testing.T) {
	ta := newTestApp()

	rec := doGenerate(ta, generateBody(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["imageData"] != "ZWRpdGVk" || body["mimeType"] != "image/png" {
		t.Fatalf("image fields = %v/%v", body["imageData"], body["mimeType"])
	}
	if body["remaining"].(float64) != 2 {
		t.Fatalf("remaining = %v, want 2", body["remaining"])
	}
	// The free path echoes the remaining count through both fields.
	if body["remainingCredits"].(float64) != 2 {
		t.Fatalf("remainingCredits = %v, want 2", body["remainingCredits"])
	}
	if body["budgetRemainingKrw"].(float64) != 9946 {
		t.Fatalf("budgetRemainingKrw = %v, want 9946", body["budgetRemainingKrw"])
	}
	if body["creditUnit"].(float64) != 10 {
		t.Fatalf("creditUnit = %v, want 10", body["creditUnit"])
	}
}

func TestGenerateFreeLimitGives402(t *testing.T) {
	ta := newTestApp()

	for i := 0; i < 3; i++ {
		if rec := doGenerate(ta, generateBody(), ""); rec.Code != http.StatusOK {
			t.Fatalf("request #%d status = %d", i+1, rec.Code)
		}
	}

	rec := doGenerate(ta, generateBody(), "")
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("status = %d, want 402", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "FREE_LIMIT_EXCEEDED" {
		t.Fatalf("error = %v", body["error"])
	}
	if ta.editor.calls != 3 {
		t.Fatalf("provider calls = %d, want 3", ta.editor.calls)
	}
}

func TestGenerateBadRequest(t *testing.T) {
	ta := newTestApp()

	tests := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"missing prompt", `{"base64Image1":"aW1n"}`},
		{"missing image", `{"prompt":"hello"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doGenerate(ta, tc.body, "")
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if body := decodeBody(t, rec); body["error"] != "BAD_REQUEST" {
				t.Fatalf("error = %v", body["error"])
			}
		})
	}
	if ta.editor.calls != 0 {
		t.Fatalf("provider calls = %d, want 0", ta.editor.calls)
	}
}

func TestGenerateProviderErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not configured", domain.ErrNotConfigured, http.StatusInternalServerError, "SERVER_MISCONFIGURED"},
		{"no image", domain.ErrNoImageReturned, http.StatusInternalServerError, "NO_IMAGE_RETURNED"},
		{"provider failure", domain.ErrProviderFailure, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ta := newTestApp()
			ta.editor.err = tc.err

			rec := doGenerate(ta, generateBody(), "")
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			if body := decodeBody(t, rec); body["error"] != tc.code {
				t.Fatalf("error = %v, want %s", body["error"], tc.code)
			}
		})
	}
}

func TestGenerateCreditPath(t *testing.T) {
	ta := newTestApp()
	_, _ = ta.users.AddCredits(context.Background(), "buyer@example.com", 30)

	rec := doGenerate(ta, generateBody(), "buyer@example.com")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["remaining"].(float64) != 20 {
		t.Fatalf("remaining = %v, want 20", body["remaining"])
	}
	if body["remainingCredits"].(float64) != 20 {
		t.Fatalf("remainingCredits = %v, want 20", body["remainingCredits"])
	}
	// Budget is untouched on the credit path.
	if body["budgetRemainingKrw"].(float64) != 10000 {
		t.Fatalf("budgetRemainingKrw = %v, want 10000", body["budgetRemainingKrw"])
	}
}
