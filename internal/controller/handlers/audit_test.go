package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"storeplane/internal/store"
	"storeplane/pkg/api"
)

func TestListAudit_DefaultLimit(t *testing.T) {
	aud := &fakeAudit{}
	storeID := "store-aaaa1111"
	for i := 0; i < 3; i++ {
		_ = aud.Append(nil, &storeID, store.AuditCreate, "seed")
	}
	h := newTestHandlers(newFakeRegistry(), aud, 10)

	req := httptest.NewRequest(http.MethodGet, "/api/audit", nil)
	rec := httptest.NewRecorder()
	h.ListAudit(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp api.ListAuditResponse
	decodeBody(t, rec, &resp)
	if len(resp.Audit) != 3 {
		t.Fatalf("entries = %d, want 3", len(resp.Audit))
	}
}

func TestListAudit_LimitClamped(t *testing.T) {
	aud := &fakeAudit{}
	h := newTestHandlers(newFakeRegistry(), aud, 10)

	req := httptest.NewRequest(http.MethodGet, "/api/audit?limit=99999", nil)
	rec := httptest.NewRecorder()
	h.ListAudit(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if aud.lastLimit != 500 {
		t.Fatalf("limit passed to audit log = %d, want 500", aud.lastLimit)
	}
}

func TestListAudit_InvalidLimitIgnored(t *testing.T) {
	h := newTestHandlers(newFakeRegistry(), &fakeAudit{}, 10)

	req := httptest.NewRequest(http.MethodGet, "/api/audit?limit=notanumber", nil)
	rec := httptest.NewRecorder()
	h.ListAudit(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
