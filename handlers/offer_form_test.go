package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"

	"tendertrack/config"
	"tendertrack/services"
	"tendertrack/testhelpers"
)

type offerFixture struct {
	app        *pocketbase.PocketBase
	customerID string
	tenderID   string
	approver   services.CurrentUser
}

func newOfferFixture(t *testing.T) offerFixture {
	t.Helper()
	app := testhelpers.NewTestApp(t)
	customer := testhelpers.CreateTestCustomer(t, app, "Form Customer")
	tender := testhelpers.CreateTestTender(t, app, "T-FORM", customer.Id)
	approver := testhelpers.CreateTestUser(t, app, "approver@example.com", "Asha", services.RoleApprover)
	return offerFixture{
		app:        app,
		customerID: customer.Id,
		tenderID:   tender.Id,
		approver:   services.CurrentUser{ID: approver.Id, Name: "Asha", Role: services.RoleApprover},
	}
}

// completeForm is a form that passes every step.
func (f offerFixture) completeForm() services.OfferForm {
	return services.OfferForm{
		Title:      "Supply of transformers",
		TenderID:   f.tenderID,
		CustomerID: f.customerID,
		OfferDate:  "2025-06-01",
		WorkItems: []services.WorkItem{
			{Key: "k1", Description: "Transformer", BasicRate: 10000, TaxRate: 18},
		},
		EMD: services.EMDDetails{Amount: 236, PaymentMode: "DD", ValidityDays: 90},
	}
}

func encodedState(t *testing.T, state *services.OfferFormState) string {
	t.Helper()
	encoded, err := state.Encode()
	if err != nil {
		t.Fatalf("encode state: %v", err)
	}
	return encoded
}

func postOfferForm(t *testing.T, f offerFixture, user services.CurrentUser, orch *services.SubmissionOrchestrator, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := withUser(newHTMXFormRequest("/offers/form", "", form), user)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(f.app, req, rec)

	if orch == nil {
		orch = services.NewSubmissionOrchestrator(services.NewRecordOfferStore(f.app), nil)
	}
	if err := HandleOfferFormAction(f.app, config.Defaults(), orch)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func TestHandleOfferNew(t *testing.T) {
	f := newOfferFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/offers/new?tender="+f.tenderID, nil)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(f.app, req, rec)

	if err := HandleOfferNew(f.app, config.Defaults())(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body,
		"<!DOCTYPE html>", "New Offer", "Offer Details", `name="state"`,
		`value="`+f.tenderID+`" selected`, `value="`+f.customerID+`" selected`)
}

func TestHandleOfferEdit_NotEditable(t *testing.T) {
	f := newOfferFixture(t)
	offer := testhelpers.CreateTestOffer(t, f.app, f.tenderID, f.customerID, "OFR-APP-1", "APPROVED")

	req := httptest.NewRequest(http.MethodGet, "/offers/"+offer.Id+"/edit", nil)
	req.SetPathValue("id", offer.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(f.app, req, rec)

	if err := HandleOfferEdit(f.app, config.Defaults())(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", rec.Code)
	}
	if got := toastFrom(t, rec)["message"]; got != "Offers that are Approved cannot be edited" {
		t.Errorf("unexpected toast %q", got)
	}
}

func TestHandleOfferEdit_Draft(t *testing.T) {
	f := newOfferFixture(t)
	offer := testhelpers.CreateTestOffer(t, f.app, f.tenderID, f.customerID, "OFR-DRAFT-1", "DRAFT")
	testhelpers.CreateTestWorkItem(t, f.app, offer.Id, 1, "Cable laying", 500, 10, 18)

	req := httptest.NewRequest(http.MethodGet, "/offers/"+offer.Id+"/edit", nil)
	req.SetPathValue("id", offer.Id)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(f.app, req, rec)

	if err := HandleOfferEdit(f.app, config.Defaults())(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body, "Edit Offer OFR-DRAFT-1")
	testhelpers.AssertHTMLNotContains(t, body, "<!DOCTYPE html>")
}

func TestHandleOfferFormAction_InvalidState(t *testing.T) {
	f := newOfferFixture(t)

	rec := postOfferForm(t, f, f.approver, nil, url.Values{"state": {"not-a-state"}, "action": {"next"}})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
	if rec.Header().Get("HX-Reswap") != "none" {
		t.Error("expected HX-Reswap none on error")
	}
}

func TestHandleOfferFormAction_NextBlockedByErrors(t *testing.T) {
	f := newOfferFixture(t)
	state := services.NewOfferFormState(services.ModeCreate, "", services.OfferForm{}, 2)

	rec := postOfferForm(t, f, f.approver, nil, url.Values{
		"state":  {encodedState(t, state)},
		"action": {"next"},
		"title":  {""},
	})

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	toast := toastFrom(t, rec)
	if toast["type"] != "warning" || !strings.HasPrefix(toast["message"], "Please fix: ") {
		t.Errorf("unexpected toast %v", toast)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "Offer Details", "field-error")
}

func TestHandleOfferFormAction_NextAdvances(t *testing.T) {
	f := newOfferFixture(t)
	state := services.NewOfferFormState(services.ModeCreate, "", services.OfferForm{}, 2)

	rec := postOfferForm(t, f, f.approver, nil, url.Values{
		"state":       {encodedState(t, state)},
		"action":      {"next"},
		"title":       {"Substation works"},
		"tender_id":   {f.tenderID},
		"customer_id": {f.customerID},
		"offer_date":  {"2025-06-01"},
	})

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "Add Item", "Before Tax")
}

func TestHandleOfferFormAction_ItemEditRederivesEMD(t *testing.T) {
	f := newOfferFixture(t)
	initial := f.completeForm()
	state := services.NewOfferFormState(services.ModeCreate, "", initial, 2)
	state.Step = 1

	rec := postOfferForm(t, f, f.approver, nil, url.Values{
		"state":            {encodedState(t, state)},
		"action":           {"recalc"},
		"item_key":         {"k1"},
		"item_description": {"Transformer"},
		"item_basic_rate":  {"50000"},
		"item_unit":        {"Nos"},
		"item_quantity":    {"2"},
		"item_tax_rate":    {"18"},
	})

	body := rec.Body.String()
	// 50000 x 2 + 18% = 1,18,000
	testhelpers.AssertHTMLContains(t, body, "1,18,000")

	decoded := stateFromBody(t, body)
	if decoded.Values.EMD.Amount != 2360 {
		t.Errorf("expected EMD to follow items at 2360, got %v", decoded.Values.EMD.Amount)
	}
	if !decoded.Touched {
		t.Error("expected the form to be marked touched")
	}
}

func TestHandleOfferFormAction_NonFiniteNumbersRejected(t *testing.T) {
	f := newOfferFixture(t)

	state := services.NewOfferFormState(services.ModeCreate, "", f.completeForm(), 2)
	state.Step = 1
	rec := postOfferForm(t, f, f.approver, nil, url.Values{
		"state":           {encodedState(t, state)},
		"action":          {"recalc"},
		"item_key":        {"k1"},
		"item_basic_rate": {"NaN"},
		"item_tax_rate":   {"Inf"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body, "Please enter a number")
	decoded := stateFromBody(t, body)
	if item := decoded.Values.WorkItems[0]; item.BasicRate != 10000 || item.TaxRate != 18 {
		t.Errorf("expected item to keep its numbers, got %+v", item)
	}
	if decoded.Values.EMD.Amount != 236 {
		t.Errorf("expected EMD to stay at 236, got %v", decoded.Values.EMD.Amount)
	}

	state = services.NewOfferFormState(services.ModeCreate, "", f.completeForm(), 2)
	state.Step = 2
	rec = postOfferForm(t, f, f.approver, nil, url.Values{
		"state":      {encodedState(t, state)},
		"action":     {"next"},
		"emd_amount": {"Inf"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if toast := toastFrom(t, rec); toast["type"] != "warning" {
		t.Errorf("expected warning toast, got %v", toast)
	}
	body = rec.Body.String()
	testhelpers.AssertHTMLContains(t, body, "EMD amount must be a number")
	decoded = stateFromBody(t, body)
	if decoded.Step != 2 {
		t.Errorf("expected to stay on the EMD step, got %d", decoded.Step)
	}
	if decoded.Values.EMD.Amount != 236 || decoded.EMDOverridden {
		t.Errorf("expected EMD untouched, got %v overridden=%v", decoded.Values.EMD.Amount, decoded.EMDOverridden)
	}
}

func TestHandleOfferFormAction_Reset(t *testing.T) {
	f := newOfferFixture(t)
	state := services.NewOfferFormState(services.ModeCreate, "", f.completeForm(), 2)

	rec := postOfferForm(t, f, f.approver, nil, url.Values{
		"state":  {encodedState(t, state)},
		"action": {"reset"},
	})
	if got := toastFrom(t, rec)["message"]; got != "There are no changes to reset" {
		t.Errorf("unexpected toast %q", got)
	}

	rec = postOfferForm(t, f, f.approver, nil, url.Values{
		"state":  {encodedState(t, state)},
		"action": {"reset"},
		"title":  {"Changed title"},
	})
	decoded := stateFromBody(t, rec.Body.String())
	if decoded.Values.Title != "Supply of transformers" || decoded.Touched {
		t.Errorf("expected initial values back, got %q touched=%v", decoded.Values.Title, decoded.Touched)
	}
}

func TestHandleOfferFormAction_SubmitOnlyFromReview(t *testing.T) {
	f := newOfferFixture(t)
	state := services.NewOfferFormState(services.ModeCreate, "", f.completeForm(), 2)

	rec := postOfferForm(t, f, f.approver, nil, url.Values{
		"state":  {encodedState(t, state)},
		"action": {"submit"},
	})

	if got := toastFrom(t, rec)["message"]; got != "Offers can only be submitted from the Review step" {
		t.Errorf("unexpected toast %q", got)
	}
	if n, _ := f.app.CountRecords("offers"); n != 0 {
		t.Errorf("expected no offer to be saved, found %d", n)
	}
}

func TestHandleOfferFormAction_SubmitCreatesOffer(t *testing.T) {
	f := newOfferFixture(t)
	state := services.NewOfferFormState(services.ModeCreate, "", f.completeForm(), 2)
	state.Step = len(services.OfferSteps) - 1

	rec := postOfferForm(t, f, f.approver, nil, url.Values{
		"state":   {encodedState(t, state)},
		"action":  {"submit"},
		"remarks": {"Rates valid for 90 days"},
	})

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if got := toastFrom(t, rec)["message"]; got != "Offer submitted for approval" {
		t.Errorf("unexpected toast %q", got)
	}

	records, err := f.app.FindAllRecords("offers")
	if err != nil || len(records) != 1 {
		t.Fatalf("expected one offer, got %d (%v)", len(records), err)
	}
	offer := records[0]
	testhelpers.AssertHXRedirect(t, rec.Header().Get("HX-Redirect"), "/offers/"+offer.Id)
	if offer.GetString("status") != "PENDING_APPROVAL" {
		t.Errorf("expected PENDING_APPROVAL, got %q", offer.GetString("status"))
	}
	if offer.GetString("remarks") != "Rates valid for 90 days" {
		t.Errorf("remarks not saved: %q", offer.GetString("remarks"))
	}
	if offer.GetString("created_by") != f.approver.ID {
		t.Errorf("expected created_by %s, got %q", f.approver.ID, offer.GetString("created_by"))
	}
}

func TestHandleOfferFormAction_StaffNeedsApprover(t *testing.T) {
	f := newOfferFixture(t)
	state := services.NewOfferFormState(services.ModeCreate, "", f.completeForm(), 2)
	state.Step = len(services.OfferSteps) - 1

	rec := postOfferForm(t, f, services.CurrentUser{Role: services.RoleStaff}, nil, url.Values{
		"state":  {encodedState(t, state)},
		"action": {"submit"},
	})

	if got := toastFrom(t, rec)["message"]; got != services.FormInvalidMessage {
		t.Errorf("unexpected toast %q", got)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "Approver is required")
}

func TestHandleOfferFormAction_SaveDraftEdit(t *testing.T) {
	f := newOfferFixture(t)
	offer := testhelpers.CreateTestOffer(t, f.app, f.tenderID, f.customerID, "OFR-EDIT-1", "REJECTED")
	form := f.completeForm()
	state := services.NewOfferFormState(services.ModeEdit, offer.Id, form, 2)

	rec := postOfferForm(t, f, f.approver, nil, url.Values{
		"state":  {encodedState(t, state)},
		"action": {"save_draft"},
		"title":  {"Revised offer"},
	})

	if got := toastFrom(t, rec)["message"]; got != "Draft saved" {
		t.Errorf("unexpected toast %q", got)
	}
	testhelpers.AssertHXRedirect(t, rec.Header().Get("HX-Redirect"), "/offers/"+offer.Id)

	saved, err := f.app.FindRecordById("offers", offer.Id)
	if err != nil {
		t.Fatalf("reload offer: %v", err)
	}
	if saved.GetString("status") != "DRAFT" || saved.GetString("title") != "Revised offer" {
		t.Errorf("unexpected saved offer %q/%q", saved.GetString("status"), saved.GetString("title"))
	}
}

type failingStore struct{}

func (failingStore) CreateOffer(context.Context, services.OfferPayload) (services.SavedOffer, error) {
	return services.SavedOffer{}, errors.New("disk full")
}

func (failingStore) UpdateOffer(context.Context, string, services.OfferPayload) (services.SavedOffer, error) {
	return services.SavedOffer{}, errors.New("disk full")
}

func TestHandleOfferFormAction_StoreFailureKeepsForm(t *testing.T) {
	f := newOfferFixture(t)
	state := services.NewOfferFormState(services.ModeCreate, "", f.completeForm(), 2)
	state.Step = len(services.OfferSteps) - 1
	orch := services.NewSubmissionOrchestrator(failingStore{}, nil)

	rec := postOfferForm(t, f, f.approver, orch, url.Values{
		"state":  {encodedState(t, state)},
		"action": {"submit"},
	})

	toast := toastFrom(t, rec)
	if toast["type"] != "error" || toast["message"] != "Failed to create offer" {
		t.Errorf("unexpected toast %v", toast)
	}
	if rec.Header().Get("HX-Redirect") != "" {
		t.Error("expected no redirect on failure")
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "Supply of transformers")
}

// stateFromBody decodes the hidden state field of a rendered form.
func stateFromBody(t *testing.T, body string) *services.OfferFormState {
	t.Helper()
	const marker = `name="state" value="`
	i := strings.Index(body, marker)
	if i < 0 {
		t.Fatalf("no state field in body")
	}
	rest := body[i+len(marker):]
	state, err := services.DecodeOfferFormState(rest[:strings.IndexByte(rest, '"')])
	if err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return state
}

type stubExtractor struct {
	fields services.ExtractedFields
	err    error
	got    string
}

func (s *stubExtractor) Extract(_ context.Context, filename string, r io.Reader) (services.ExtractedFields, error) {
	data, _ := io.ReadAll(r)
	s.got = filename + ":" + string(data)
	return s.fields, s.err
}

func postExtract(t *testing.T, f offerFixture, extractor services.DocumentExtractor, state string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("state", state)
	part, _ := mw.CreateFormFile("document", "dd.pdf")
	part.Write([]byte("scan"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/offers/form/extract", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("HX-Request", "true")
	req = withUser(req, f.approver)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(f.app, req, rec)

	cfg := config.Defaults()
	cfg.Extraction.BaseURL = "http://ocr.local"
	if err := HandleOfferExtract(f.app, cfg, extractor)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func TestHandleOfferExtract(t *testing.T) {
	f := newOfferFixture(t)
	state := services.NewOfferFormState(services.ModeCreate, "", f.completeForm(), 2)
	state.Step = 2

	amount := 5000.0
	bank := "State Bank of India"
	ext := &stubExtractor{fields: services.ExtractedFields{Amount: &amount, BankName: &bank}}

	rec := postExtract(t, f, ext, encodedState(t, state))

	if ext.got != "dd.pdf:scan" {
		t.Errorf("extractor received %q", ext.got)
	}
	if got := toastFrom(t, rec)["message"]; got != "EMD details filled in from dd.pdf" {
		t.Errorf("unexpected toast %q", got)
	}
	decoded := stateFromBody(t, rec.Body.String())
	if decoded.Values.EMD.Amount != 5000 || decoded.Values.EMD.BankName != bank || !decoded.EMDOverridden {
		t.Errorf("unexpected EMD after extraction: %+v overridden=%v", decoded.Values.EMD, decoded.EMDOverridden)
	}
}

func TestHandleOfferExtract_Failure(t *testing.T) {
	f := newOfferFixture(t)
	state := services.NewOfferFormState(services.ModeCreate, "", f.completeForm(), 2)
	ext := &stubExtractor{err: &services.CollaboratorError{Message: "Unreadable scan"}}

	rec := postExtract(t, f, ext, encodedState(t, state))

	toast := toastFrom(t, rec)
	if toast["type"] != "error" || toast["message"] != "Unreadable scan" {
		t.Errorf("unexpected toast %v", toast)
	}
	decoded := stateFromBody(t, rec.Body.String())
	if decoded.Values.EMD.Amount != 236 {
		t.Errorf("expected EMD untouched, got %v", decoded.Values.EMD.Amount)
	}
}

func TestHandleOfferExtract_Disabled(t *testing.T) {
	f := newOfferFixture(t)

	rec := postExtract(t, f, nil, "")

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}
