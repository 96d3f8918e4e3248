package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"

	"tendertrack/services"
	"tendertrack/templates"
)

// BuildSidebarData constructs the SidebarData for the current request.
// Approvers and admins see how many offers wait for a decision.
func BuildSidebarData(r *http.Request, app *pocketbase.PocketBase) templates.SidebarData {
	data := templates.SidebarData{ActivePath: r.URL.Path}

	user := GetCurrentUser(r)
	if !user.CanSelfApprove() {
		return data
	}

	pending, err := app.FindRecordsByFilter(
		"offers",
		"status = {:status}",
		"", 0, 0,
		map[string]any{"status": string(services.StatusPendingApproval)},
	)
	if err != nil {
		log.Printf("sidebar: could not count pending offers: %v", err)
		return data
	}
	data.PendingApprovals = len(pending)
	return data
}
