package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tendertrack/config"
	"tendertrack/services"
	"tendertrack/templates"
)

func renderTenderImport(e *core.RequestEvent, data templates.TenderImportData) error {
	var component templ.Component
	if e.Request.Header.Get("HX-Request") == "true" {
		component = templates.TenderImportContent(data)
	} else {
		component = templates.TenderImportPage(data, GetHeaderData(e.Request), GetSidebarData(e.Request))
	}
	return component.Render(e.Request.Context(), e.Response)
}

// HandleTenderImportPage renders the upload form.
// Route: GET /tenders/import
func HandleTenderImportPage(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return renderTenderImport(e, templates.TenderImportData{})
	}
}

// HandleTenderImport saves every valid row of an uploaded spreadsheet and
// reports the rows that failed or were skipped.
// Route: POST /tenders/import
func HandleTenderImport(app *pocketbase.PocketBase, cfg *config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseMultipartForm(cfg.Import.MaxUploadBytes); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "File too large or invalid form data")
		}

		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Please select a file to upload")
		}
		defer file.Close()

		result, err := services.BulkImportTenders(app, file, header.Filename)
		if err != nil {
			log.Printf("tender_import: %s: %v", header.Filename, err)
			msg := err.Error()
			if errors.Is(err, services.ErrUnsupportedFormat) {
				msg = "Please upload an .xlsx or .csv file"
			}
			SetToast(e, "error", "Import failed")
			return renderTenderImport(e, templates.TenderImportData{Error: msg})
		}

		switch {
		case result.FailureCount > 0:
			SetToast(e, "warning", fmt.Sprintf("Imported %d of %d rows", result.SuccessCount, result.TotalRows))
		default:
			SetToast(e, "success", fmt.Sprintf("Imported %d tenders", result.SuccessCount))
		}
		return renderTenderImport(e, templates.TenderImportData{Result: result})
	}
}

// HandleTenderTemplate downloads the blank import template.
// Route: GET /tenders/import/template
func HandleTenderTemplate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		xlsxBytes, err := services.GenerateTenderTemplate()
		if err != nil {
			log.Printf("tender_import: failed to generate template: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate template")
		}

		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", `attachment; filename="tender_import_template.xlsx"`)
		e.Response.Write(xlsxBytes)
		return nil
	}
}

// HandleTenderErrorReport turns the posted row errors of an import into an
// Excel report.
// Route: POST /tenders/import/errors
func HandleTenderErrorReport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		var rowErrors []services.ImportRowError
		if err := json.Unmarshal([]byte(e.Request.FormValue("errors")), &rowErrors); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid error data")
		}

		xlsxBytes, err := services.GenerateImportErrorReport(rowErrors)
		if err != nil {
			log.Printf("tender_import: failed to generate error report: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate error report")
		}

		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", `attachment; filename="tender_import_errors.xlsx"`)
		e.Response.Write(xlsxBytes)
		return nil
	}
}
