package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tendertrack/config"
	"tendertrack/services"
	"tendertrack/templates"
)

// HandleOfferView renders one offer with its computed totals.
func HandleOfferView(app *pocketbase.PocketBase, cfg *config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if id == "" {
			return ErrorToast(e, http.StatusBadRequest, "Missing offer ID")
		}

		offer, err := services.LoadOffer(app, id)
		if err != nil {
			log.Printf("offer_view: %v", err)
			return ErrorToast(e, http.StatusNotFound, "Offer not found")
		}

		user := GetCurrentUser(e.Request)
		data := templates.OfferViewData{
			Offer:         offer,
			EMD:           services.SummarizeEMD(offer.Form.WorkItems, cfg.EMD.DefaultPercent),
			AmountInWords: services.AmountToWords(offer.Totals().Total),
			CanEdit:       offer.Status.Editable(),
			CanDecide:     offer.Status == services.StatusPendingApproval && user.CanSelfApprove(),
		}

		var component templ.Component
		if e.Request.Header.Get("HX-Request") == "true" {
			component = templates.OfferViewContent(data)
		} else {
			component = templates.OfferViewPage(data, GetHeaderData(e.Request), GetSidebarData(e.Request))
		}
		return component.Render(e.Request.Context(), e.Response)
	}
}

// HandleOfferDelete removes a draft or rejected offer and its work items.
func HandleOfferDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if id == "" {
			return ErrorToast(e, http.StatusBadRequest, "Missing offer ID")
		}

		if err := services.DeleteOffer(app, id); err != nil {
			log.Printf("offer_view: could not delete offer %s: %v", id, err)
			return ErrorToast(e, http.StatusConflict, services.UserMessage(err, "Something went wrong. Please try again."))
		}

		SetToast(e, "success", "Offer deleted")
		return redirect(e, "/offers")
	}
}

// HandleOfferDecision records an approve or reject decision on a pending
// offer.
func HandleOfferDecision(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if id == "" {
			return ErrorToast(e, http.StatusBadRequest, "Missing offer ID")
		}
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		decision := services.OfferStatus(e.Request.FormValue("decision"))
		note := e.Request.FormValue("note")
		if err := services.DecideOffer(app, id, GetCurrentUser(e.Request), decision, note); err != nil {
			log.Printf("offer_view: decision on %s failed: %v", id, err)
			return ErrorToast(e, http.StatusBadRequest, services.UserMessage(err, "Could not record the decision"))
		}

		SetToast(e, "success", "Offer "+strings.ToLower(decision.Label()))
		return redirect(e, fmt.Sprintf("/offers/%s", id))
	}
}

// HandleOfferPDF downloads the offer as a PDF document.
func HandleOfferPDF(app *pocketbase.PocketBase, cfg *config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if id == "" {
			return e.String(http.StatusBadRequest, "Missing offer ID")
		}

		company := services.CompanyInfo{
			Name:    cfg.Company.Name,
			Address: cfg.Company.Address,
			Email:   cfg.Company.Email,
		}
		data, err := services.BuildOfferExportData(app, id, company, cfg.EMD.DefaultPercent)
		if err != nil {
			log.Printf("offer_view: failed to build export data: %v", err)
			return e.String(http.StatusNotFound, "Offer not found")
		}

		pdfBytes, err := services.GenerateOfferPDF(data)
		if err != nil {
			log.Printf("offer_view: failed to generate PDF: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate PDF")
		}

		filename := fmt.Sprintf("%s.pdf", sanitizeFilename(data.OfferNumber))

		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(pdfBytes)
		return nil
	}
}

// sanitizeFilename removes characters that are unsafe for filenames.
func sanitizeFilename(s string) string {
	return strings.NewReplacer(" ", "-", "/", "-", "\\", "-", ":", "-", `"`, "").Replace(s)
}
