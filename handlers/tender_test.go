package handlers

import (
	"bytes"
	"encoding/json"
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

func TestHandleTenderList(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	customer := testhelpers.CreateTestCustomer(t, app, "Tender Customer")
	tender := testhelpers.CreateTestTender(t, app, "T-LIST-1", customer.Id)
	testhelpers.CreateTestTender(t, app, "T-OTHER", customer.Id)

	req := httptest.NewRequest(http.MethodGet, "/tenders?search=LIST", nil)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleTenderList(app, config.Defaults())(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body, "<!DOCTYPE html>", "T-LIST-1", "Tender Customer", "/offers/new?tender="+tender.Id)
	testhelpers.AssertHTMLNotContains(t, body, "T-OTHER")
}

func uploadTenders(t *testing.T, app *pocketbase.PocketBase, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("file", filename)
	part.Write([]byte(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/tenders/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleTenderImport(app, config.Defaults())(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func TestHandleTenderImport(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestCustomer(t, app, "Known Customer")
	testhelpers.CreateTestTender(t, app, "T-DUP", "")

	csv := "Tender Number *,Title *,Customer,Estimated Value,EMD Amount,Due Date\n" +
		"T-NEW-1,Feeder works,Known Customer,\"5,00,000\",10000,2026-08-01\n" +
		"T-NEW-2,,Known Customer,100,,\n" +
		"T-DUP,Duplicate,,,,\n"

	rec := uploadTenders(t, app, "tenders.csv", csv)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body, "3 rows read", "1 imported", "1 failed", "1 skipped",
		"T-NEW-2", `action="/tenders/import/errors"`)
	if got := toastFrom(t, rec)["message"]; got != "Imported 1 of 3 rows" {
		t.Errorf("unexpected toast %q", got)
	}

	if _, err := app.FindFirstRecordByData("tenders", "tender_number", "T-NEW-1"); err != nil {
		t.Errorf("expected T-NEW-1 to be saved: %v", err)
	}
}

func TestHandleTenderImport_UnsupportedFile(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	rec := uploadTenders(t, app, "tenders.txt", "hello")

	testhelpers.AssertHTMLContains(t, rec.Body.String(), "Please upload an .xlsx or .csv file")
}

func TestHandleTenderImport_NoFile(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/tenders/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	if err := HandleTenderImport(app, config.Defaults())(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestHandleTenderTemplate(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/tenders/import/template", nil)
	rec := httptest.NewRecorder()

	if err := HandleTenderTemplate(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "tender_import_template.xlsx") {
		t.Errorf("unexpected content disposition %q", cd)
	}
	if rec.Body.Len() == 0 {
		t.Error("expected a non-empty template")
	}
}

func TestHandleTenderErrorReport(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	payload, _ := json.Marshal([]services.ImportRowError{{Row: 3, Identifier: "T-1", Message: "Title is required"}})
	form := url.Values{"errors": {string(payload)}}
	req := httptest.NewRequest(http.MethodPost, "/tenders/import/errors", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	if err := HandleTenderErrorReport(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "tender_import_errors.xlsx") {
		t.Errorf("unexpected content disposition %q", cd)
	}

	form.Set("errors", "not json")
	req = httptest.NewRequest(http.MethodPost, "/tenders/import/errors", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	if err := HandleTenderErrorReport(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for bad payload, got %d", rec.Code)
	}
}
