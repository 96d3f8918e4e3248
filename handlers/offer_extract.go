package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tendertrack/config"
	"tendertrack/services"
)

// HandleOfferExtract reads EMD details out of an uploaded instrument and
// merges them into the form. Failures leave the form as it was.
// extractor is nil when no extraction service is configured.
func HandleOfferExtract(app *pocketbase.PocketBase, cfg *config.Config, extractor services.DocumentExtractor) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if extractor == nil {
			return ErrorToast(e, http.StatusNotFound, "Document upload is not enabled")
		}

		if err := e.Request.ParseMultipartForm(cfg.Extraction.MaxUploadBytes); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "File too large or invalid form data")
		}

		ctrl, err := restoreOfferForm(e, cfg)
		if err != nil {
			log.Printf("offer_extract: %v", err)
			return ErrorToast(e, http.StatusBadRequest, "The form session is invalid. Please reload the page.")
		}
		errs := bindOfferForm(ctrl, e.Request.PostForm)

		file, header, err := e.Request.FormFile("document")
		if err != nil {
			SetToast(e, "warning", "Please choose a document to upload")
			return renderOfferFormWithOptions(e, app, cfg, ctrl, errs)
		}
		defer file.Close()

		fields, err := extractor.Extract(e.Request.Context(), header.Filename, file)
		switch {
		case err != nil:
			log.Printf("offer_extract: extraction of %s failed: %v", header.Filename, err)
			SetToast(e, "error", services.UserMessage(err, "Could not read the document"))
		case fields.Empty():
			SetToast(e, "warning", "No EMD details were found in the document")
		default:
			ctrl.ApplyExtracted(fields)
			SetToast(e, "success", "EMD details filled in from "+header.Filename)
		}
		return renderOfferFormWithOptions(e, app, cfg, ctrl, errs)
	}
}
