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

const dashboardRecentOffers = 5

// HandleDashboard renders offer counts and values per status, EMD exposure
// and the latest offers.
func HandleDashboard(app *pocketbase.PocketBase, cfg *config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		user := GetCurrentUser(e.Request)
		awaitingFor := ""
		if user.CanSelfApprove() {
			awaitingFor = user.ID
		}

		data, err := services.LoadDashboard(app, cfg.EMD.DefaultPercent, dashboardRecentOffers, awaitingFor)
		if err != nil {
			log.Printf("dashboard: could not load figures: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		var component templ.Component
		if e.Request.Header.Get("HX-Request") == "true" {
			component = templates.DashboardContent(data)
		} else {
			component = templates.DashboardPage(data, GetHeaderData(e.Request), GetSidebarData(e.Request))
		}
		return component.Render(e.Request.Context(), e.Response)
	}
}
