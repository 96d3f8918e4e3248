package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"tendertrack/config"
	"tendertrack/services"
	"tendertrack/testhelpers"
)

func TestHandleOfferList(t *testing.T) {
	f := newOfferFixture(t)
	pending := testhelpers.CreateTestOffer(t, f.app, f.tenderID, f.customerID, "OFR-LIST-1", "PENDING_APPROVAL")
	testhelpers.CreateTestWorkItem(t, f.app, pending.Id, 1, "Meter", 1000, 10, 18)
	testhelpers.CreateTestOffer(t, f.app, f.tenderID, f.customerID, "OFR-LIST-2", "DRAFT")

	req := httptest.NewRequest(http.MethodGet, "/offers?status=PENDING_APPROVAL", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(f.app, req, rec)

	if err := HandleOfferList(f.app, config.Defaults())(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body, "OFR-LIST-1", "11,800")
	testhelpers.AssertHTMLNotContains(t, body, "OFR-LIST-2", "<!DOCTYPE html>")
}

func TestHandleOfferList_Empty(t *testing.T) {
	f := newOfferFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/offers", nil)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(f.app, req, rec)

	if err := HandleOfferList(f.app, config.Defaults())(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "<!DOCTYPE html>", "No offers found")
}

func TestHandleOfferExport(t *testing.T) {
	f := newOfferFixture(t)
	offer := testhelpers.CreateTestOffer(t, f.app, f.tenderID, f.customerID, "OFR-EXP-1", "APPROVED")
	testhelpers.CreateTestWorkItem(t, f.app, offer.Id, 1, "Meter", 1000, 10, 18)

	req := httptest.NewRequest(http.MethodGet, "/offers/export", nil)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(f.app, req, rec)

	if err := HandleOfferExport(f.app, config.Defaults())(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "Offer_Register_") {
		t.Errorf("unexpected content disposition %q", cd)
	}
	// xlsx files are zip archives
	if !strings.HasPrefix(rec.Body.String(), "PK") {
		t.Error("expected an xlsx body")
	}
}

func TestHandleOfferView(t *testing.T) {
	f := newOfferFixture(t)
	offer := testhelpers.CreateTestOffer(t, f.app, f.tenderID, f.customerID, "OFR-VIEW-1", "PENDING_APPROVAL")
	testhelpers.CreateTestWorkItem(t, f.app, offer.Id, 1, "Transformer", 100000, 0, 18)

	tests := []struct {
		name       string
		user       services.CurrentUser
		wantDecide bool
	}{
		{"approver sees decision form", f.approver, true},
		{"staff does not", services.CurrentUser{Role: services.RoleStaff}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/offers/"+offer.Id, nil)
			req.SetPathValue("id", offer.Id)
			req = withUser(req, tt.user)
			rec := httptest.NewRecorder()
			e := newTestRequestEvent(f.app, req, rec)

			if err := HandleOfferView(f.app, config.Defaults())(e); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			body := rec.Body.String()
			testhelpers.AssertHTMLContains(t, body, "OFR-VIEW-1", "Transformer", "1,18,000", "Pending Approval")
			// pending offers are locked
			testhelpers.AssertHTMLNotContains(t, body, "/offers/"+offer.Id+"/edit")
			if got := strings.Contains(body, "decision-form"); got != tt.wantDecide {
				t.Errorf("decision form shown = %v, want %v", got, tt.wantDecide)
			}
		})
	}
}

func TestHandleOfferView_NotFound(t *testing.T) {
	f := newOfferFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/offers/missing", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(f.app, req, rec)

	if err := HandleOfferView(f.app, config.Defaults())(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}

func postDecision(t *testing.T, f offerFixture, id string, user services.CurrentUser, decision, note string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"decision": {decision}, "note": {note}}
	req := withUser(newHTMXFormRequest("/offers/"+id+"/decision", id, form), user)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(f.app, req, rec)

	if err := HandleOfferDecision(f.app)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func TestHandleOfferDecision(t *testing.T) {
	f := newOfferFixture(t)
	offer := testhelpers.CreateTestOffer(t, f.app, f.tenderID, f.customerID, "OFR-DEC-1", "PENDING_APPROVAL")

	rec := postDecision(t, f, offer.Id, services.CurrentUser{Role: services.RoleStaff}, "APPROVED", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for staff, got %d", rec.Code)
	}

	rec = postDecision(t, f, offer.Id, f.approver, "REJECTED", "")
	if got := toastFrom(t, rec)["message"]; got != "Please give a reason for rejecting the offer" {
		t.Errorf("unexpected toast %q", got)
	}

	rec = postDecision(t, f, offer.Id, f.approver, "REJECTED", "EMD too low")
	if got := toastFrom(t, rec)["message"]; got != "Offer rejected" {
		t.Errorf("unexpected toast %q", got)
	}
	testhelpers.AssertHXRedirect(t, rec.Header().Get("HX-Redirect"), "/offers/"+offer.Id)

	saved, err := f.app.FindRecordById("offers", offer.Id)
	if err != nil {
		t.Fatalf("reload offer: %v", err)
	}
	if saved.GetString("status") != "REJECTED" || saved.GetString("decision_note") != "EMD too low" {
		t.Errorf("unexpected offer %q/%q", saved.GetString("status"), saved.GetString("decision_note"))
	}
}

func TestHandleOfferDelete(t *testing.T) {
	f := newOfferFixture(t)
	draft := testhelpers.CreateTestOffer(t, f.app, f.tenderID, f.customerID, "OFR-DEL-1", "DRAFT")
	approved := testhelpers.CreateTestOffer(t, f.app, f.tenderID, f.customerID, "OFR-DEL-2", "APPROVED")

	del := func(id string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/offers/"+id, nil)
		req.Header.Set("HX-Request", "true")
		req.SetPathValue("id", id)
		rec := httptest.NewRecorder()
		if err := HandleOfferDelete(f.app)(newTestRequestEvent(f.app, req, rec)); err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		return rec
	}

	rec := del(approved.Id)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", rec.Code)
	}

	rec = del(draft.Id)
	testhelpers.AssertHXRedirect(t, rec.Header().Get("HX-Redirect"), "/offers")
	if _, err := f.app.FindRecordById("offers", draft.Id); err == nil {
		t.Error("expected draft to be deleted")
	}
}

func TestHandleOfferPDF(t *testing.T) {
	f := newOfferFixture(t)
	offer := testhelpers.CreateTestOffer(t, f.app, f.tenderID, f.customerID, "OFR/PDF/1", "APPROVED")
	testhelpers.CreateTestWorkItem(t, f.app, offer.Id, 1, "Transformer", 100000, 1, 18)

	req := httptest.NewRequest(http.MethodGet, "/offers/"+offer.Id+"/pdf", nil)
	req.SetPathValue("id", offer.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(f.app, req, rec)

	if err := HandleOfferPDF(f.app, config.Defaults())(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="OFR-PDF-1.pdf"`) {
		t.Errorf("unexpected content disposition %q", cd)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Error("expected a PDF body")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"OFR-001", "OFR-001"},
		{"OFR/MSEDCL/2025-26/001", "OFR-MSEDCL-2025-26-001"},
		{`a "b" c:d\e`, "a-b-c-d-e"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
