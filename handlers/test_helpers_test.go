// Tests in this package use plain testing and httptest, asserting on
// rendered HTML and HX headers. Pure logic is tested with testify in
// package services.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app *pocketbase.PocketBase, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

// newHTMXFormRequest builds an urlencoded HTMX POST to target. A non-empty
// id is set as the {id} path value.
func newHTMXFormRequest(target, id string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	if id != "" {
		req.SetPathValue("id", id)
	}
	return req
}
