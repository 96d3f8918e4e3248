package main

import (
	"log"
	"os"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"tendertrack/collections"
	"tendertrack/config"
	"tendertrack/handlers"
	"tendertrack/services"
)

func main() {
	configPath := os.Getenv("TENDERTRACK_CONFIG")
	if configPath == "" {
		configPath = "tendertrack.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	app := pocketbase.New()

	// Create collections and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		if err := collections.MigrateLegacyOfferStatuses(app); err != nil {
			log.Printf("Warning: offer status migration failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		orch := services.NewSubmissionOrchestrator(services.NewRecordOfferStore(app), app.Logger())

		var extractor services.DocumentExtractor
		if cfg.ExtractionEnabled() {
			extractor = services.NewHTTPExtractor(cfg.Extraction.BaseURL, cfg.Extraction.APIKey, cfg.Extraction.Timeout, app.Logger())
		}

		se.Router.GET("/static/{path...}", apis.Static(os.DirFS("./static"), false))

		se.Router.BindFunc(handlers.CurrentUserMiddleware(app))

		se.Router.GET("/", handlers.HandleDashboard(app, cfg))

		// ── Offers ───────────────────────────────────────────────
		// Fixed paths before /offers/{id}
		se.Router.GET("/offers", handlers.HandleOfferList(app, cfg))
		se.Router.GET("/offers/export", handlers.HandleOfferExport(app, cfg))
		se.Router.GET("/offers/new", handlers.HandleOfferNew(app, cfg))
		se.Router.POST("/offers/form", handlers.HandleOfferFormAction(app, cfg, orch))
		se.Router.POST("/offers/form/extract", handlers.HandleOfferExtract(app, cfg, extractor))

		se.Router.GET("/offers/{id}/edit", handlers.HandleOfferEdit(app, cfg))
		se.Router.GET("/offers/{id}/pdf", handlers.HandleOfferPDF(app, cfg))
		se.Router.POST("/offers/{id}/decision", handlers.HandleOfferDecision(app))
		se.Router.GET("/offers/{id}", handlers.HandleOfferView(app, cfg))
		se.Router.DELETE("/offers/{id}", handlers.HandleOfferDelete(app))

		// ── Tenders ──────────────────────────────────────────────
		se.Router.GET("/tenders", handlers.HandleTenderList(app, cfg))
		se.Router.GET("/tenders/import", handlers.HandleTenderImportPage(app))
		se.Router.POST("/tenders/import", handlers.HandleTenderImport(app, cfg))
		se.Router.GET("/tenders/import/template", handlers.HandleTenderTemplate(app))
		se.Router.POST("/tenders/import/errors", handlers.HandleTenderErrorReport(app))

		// ── Customers ────────────────────────────────────────────
		se.Router.GET("/customers", handlers.HandleCustomerList(app))
		se.Router.GET("/customers/new", handlers.HandleCustomerNew(app))
		se.Router.POST("/customers", handlers.HandleCustomerCreate(app))
		se.Router.GET("/customers/{id}/edit", handlers.HandleCustomerEdit(app))
		se.Router.POST("/customers/{id}", handlers.HandleCustomerUpdate(app))
		se.Router.DELETE("/customers/{id}", handlers.HandleCustomerDelete(app))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
