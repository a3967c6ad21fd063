package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAdminCreditsLifecycle(t *testing.T) {
	ta := newTestApp()
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodPost, "/admin/credits/add", strings.NewReader(`{"email":"tester@example.com","amount":50}`))
	rec := httptest.NewRecorder()
	ta.app.AdminCreditsAdd(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("add status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["credits"].(float64) != 50 {
		t.Fatalf("credits after add = %v", body["credits"])
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/credits/get?email=tester@example.com", nil)
	rec = httptest.NewRecorder()
	ta.app.AdminCreditsGet(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/admin/credits/reset", strings.NewReader(`{"email":"tester@example.com","amount":0}`))
	rec = httptest.NewRecorder()
	ta.app.AdminCreditsReset(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset status = %d", rec.Code)
	}
	if balance, _ := ta.users.GetByEmail(ctx, "tester@example.com"); balance.Credits != 0 {
		t.Fatalf("credits after reset = %d", balance.Credits)
	}

	req = httptest.NewRequest(http.MethodPost, "/admin/credits/delete-user", strings.NewReader(`{"email":"tester@example.com"}`))
	rec = httptest.NewRecorder()
	ta.app.AdminDeleteUser(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if _, err := ta.users.GetByEmail(ctx, "tester@example.com"); err == nil {
		t.Fatal("user still present after delete")
	}
}

func TestAdminCreditsGetUnknownUser(t *testing.T) {
	ta := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/admin/credits/get?email=ghost@example.com", nil)
	rec := httptest.NewRecorder()
	ta.app.AdminCreditsGet(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
