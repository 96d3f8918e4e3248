package handlers

import (
	"log"
	"net/http"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tendertrack/services"
	"tendertrack/templates"
)

// HandleCustomerList renders the customer directory, filtered by ?q=.
func HandleCustomerList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		list, err := services.ListCustomers(app, e.Request.URL.Query().Get("q"))
		if err != nil {
			log.Printf("customer_list: could not query customers: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		var component templ.Component
		if e.Request.Header.Get("HX-Request") == "true" {
			component = templates.CustomerListContent(list)
		} else {
			component = templates.CustomerListPage(list, GetHeaderData(e.Request), GetSidebarData(e.Request))
		}
		return component.Render(e.Request.Context(), e.Response)
	}
}
