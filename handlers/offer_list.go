package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tendertrack/config"
	"tendertrack/services"
	"tendertrack/templates"
)

// registerExportLimit caps the rows written to one register export.
const registerExportLimit = 10000

// HandleOfferList renders the offer register with filters, sorting and
// pagination taken from the query string.
func HandleOfferList(app *pocketbase.PocketBase, cfg *config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		params := services.ParseListParams(e.Request.URL.Query(), listSpec(cfg, services.OfferListSpec))

		list, err := services.ListOffers(app, params)
		if err != nil {
			log.Printf("offer_list: could not query offers: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		data := templates.OfferListData{List: list, Params: params}

		var component templ.Component
		if e.Request.Header.Get("HX-Request") == "true" {
			component = templates.OfferListContent(data)
		} else {
			component = templates.OfferListPage(data, GetHeaderData(e.Request), GetSidebarData(e.Request))
		}
		return component.Render(e.Request.Context(), e.Response)
	}
}

// HandleOfferExport downloads the filtered register as an Excel file.
func HandleOfferExport(app *pocketbase.PocketBase, cfg *config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		params := services.ParseListParams(e.Request.URL.Query(), listSpec(cfg, services.OfferListSpec))
		params.Page = 1
		params.PageSize = registerExportLimit

		list, err := services.ListOffers(app, params)
		if err != nil {
			log.Printf("offer_list: could not query offers for export: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to load offers")
		}

		xlsxBytes, err := services.GenerateOfferRegister("Offer Register", list.Items)
		if err != nil {
			log.Printf("offer_list: failed to generate register: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate Excel file")
		}

		filename := fmt.Sprintf("Offer_Register_%s.xlsx", time.Now().Format("2006-01-02"))

		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}
