package handlers

import (
	"log"
	"net/http"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tendertrack/config"
	"tendertrack/services"
	"tendertrack/templates"
)

// HandleTenderList renders the searchable, paginated tender list.
func HandleTenderList(app *pocketbase.PocketBase, cfg *config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		params := services.ParseListParams(e.Request.URL.Query(), listSpec(cfg, services.TenderListSpec))

		list, err := services.ListTenders(app, params)
		if err != nil {
			log.Printf("tender_list: could not query tenders: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		data := templates.TenderListData{List: list, Params: params}

		var component templ.Component
		if e.Request.Header.Get("HX-Request") == "true" {
			component = templates.TenderListContent(data)
		} else {
			component = templates.TenderListPage(data, GetHeaderData(e.Request), GetSidebarData(e.Request))
		}
		return component.Render(e.Request.Context(), e.Response)
	}
}
