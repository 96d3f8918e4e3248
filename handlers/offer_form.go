package handlers

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tendertrack/config"
	"tendertrack/services"
	"tendertrack/templates"
)

// HandleOfferNew starts a new offer form session. A ?tender= id preselects
// the tender and its customer.
func HandleOfferNew(app *pocketbase.PocketBase, cfg *config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		src, err := services.LoadOfferFormSource(e.Request.Context(), app, "")
		if err != nil {
			log.Printf("offer_form: could not load form options: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		initial := services.OfferForm{
			OfferDate: time.Now().Format("2006-01-02"),
			EMD: services.EMDDetails{
				PaymentMode:  "DD",
				ValidityDays: 90,
			},
		}
		if tenderID := e.Request.URL.Query().Get("tender"); tenderID != "" {
			for _, t := range src.Options.Tenders {
				if t.Value == tenderID {
					initial.TenderID = t.Value
					initial.CustomerID = t.Hint
				}
			}
		}

		state := services.NewOfferFormState(services.ModeCreate, "", initial, cfg.EMD.DefaultPercent)
		ctrl := services.NewOfferFormController(state, services.NewOfferSchema(GetCurrentUser(e.Request)), cfg.EMD.DefaultPercent)
		return renderOfferForm(e, cfg, ctrl, src.Options, "", nil)
	}
}

// HandleOfferEdit starts a form session over a stored offer. Only drafts and
// rejected offers can be edited.
func HandleOfferEdit(app *pocketbase.PocketBase, cfg *config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if id == "" {
			return ErrorToast(e, http.StatusBadRequest, "Missing offer ID")
		}

		src, err := services.LoadOfferFormSource(e.Request.Context(), app, id)
		if err != nil {
			log.Printf("offer_form: could not load offer %s: %v", id, err)
			return ErrorToast(e, http.StatusNotFound, "Offer not found")
		}
		if !src.Offer.Status.Editable() {
			return ErrorToast(e, http.StatusConflict, "Offers that are "+src.Offer.Status.Label()+" cannot be edited")
		}

		state := services.NewOfferFormState(services.ModeEdit, id, src.Offer.Form, cfg.EMD.DefaultPercent)
		ctrl := services.NewOfferFormController(state, services.NewOfferSchema(GetCurrentUser(e.Request)), cfg.EMD.DefaultPercent)
		return renderOfferForm(e, cfg, ctrl, src.Options, src.Offer.OfferNumber, nil)
	}
}

// HandleOfferFormAction applies the posted step values and then one action:
// next, previous, reset, add_item, remove_item:<key>, use_suggested_emd,
// save_draft, submit. Anything else just recalculates.
func HandleOfferFormAction(app *pocketbase.PocketBase, cfg *config.Config, orch *services.SubmissionOrchestrator) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		ctrl, err := restoreOfferForm(e, cfg)
		if err != nil {
			log.Printf("offer_form: %v", err)
			return ErrorToast(e, http.StatusBadRequest, "The form session is invalid. Please reload the page.")
		}
		errs := bindOfferForm(ctrl, e.Request.PostForm)

		action := e.Request.PostFormValue("action")
		switch {
		case action == "next":
			if len(errs) > 0 {
				SetToast(e, "warning", "Please fix: "+strings.Join(errs.Labels(), ", "))
				break
			}
			if ok, stepErrs := ctrl.Next(); !ok && len(stepErrs) > 0 {
				errs = stepErrs
				SetToast(e, "warning", "Please fix: "+strings.Join(stepErrs.Labels(), ", "))
			}
		case action == "previous":
			ctrl.Previous()
		case action == "reset":
			if err := ctrl.Reset(); errors.Is(err, services.ErrResetUnavailable) {
				SetToast(e, "info", "There are no changes to reset")
			}
			errs = nil
		case action == "add_item":
			ctrl.WorkItems().Add()
		case strings.HasPrefix(action, "remove_item:"):
			ctrl.WorkItems().Remove(strings.TrimPrefix(action, "remove_item:"))
		case action == "use_suggested_emd":
			ctrl.UseSuggestedEMD()
		case action == "save_draft" || action == "submit":
			if len(errs) > 0 {
				SetToast(e, "warning", services.FormInvalidMessage)
				break
			}
			return submitOfferForm(e, app, cfg, orch, ctrl, action == "submit")
		}

		return renderOfferFormWithOptions(e, app, cfg, ctrl, errs)
	}
}

func submitOfferForm(e *core.RequestEvent, app *pocketbase.PocketBase, cfg *config.Config, orch *services.SubmissionOrchestrator, ctrl *services.OfferFormController, submit bool) error {
	var (
		values services.OfferForm
		errs   services.FieldErrors
		err    error
		status = services.StatusDraft
	)
	if submit {
		status = services.StatusPendingApproval
		values, errs, err = ctrl.PrepareSubmit()
	} else {
		values, errs, err = ctrl.PrepareDraft()
	}

	switch {
	case errors.Is(err, services.ErrNotOnLastStep):
		SetToast(e, "warning", "Offers can only be submitted from the Review step")
		return renderOfferFormWithOptions(e, app, cfg, ctrl, nil)
	case errors.Is(err, services.ErrFormInvalid):
		SetToast(e, "warning", services.FormInvalidMessage)
		return renderOfferFormWithOptions(e, app, cfg, ctrl, errs)
	}

	state := ctrl.State()
	result, err := orch.Submit(e.Request.Context(), services.SubmissionRequest{
		Token:    state.Token,
		Mode:     state.Mode,
		RecordID: state.RecordID,
		Values:   values,
		Status:   status,
		User:     GetCurrentUser(e.Request),
	})
	if errors.Is(err, services.ErrSubmissionInFlight) {
		return ErrorToast(e, http.StatusConflict, "This offer is already being saved")
	}

	NotifyToast(e, result.Notification)
	if !result.OK() {
		return renderOfferFormWithOptions(e, app, cfg, ctrl, nil)
	}
	return redirect(e, result.RedirectURL)
}

// restoreOfferForm rebuilds the controller from the posted state field.
func restoreOfferForm(e *core.RequestEvent, cfg *config.Config) (*services.OfferFormController, error) {
	state, err := services.DecodeOfferFormState(e.Request.PostFormValue("state"))
	if err != nil {
		return nil, err
	}
	schema := services.NewOfferSchema(GetCurrentUser(e.Request))
	return services.NewOfferFormController(state, schema, cfg.EMD.DefaultPercent), nil
}

var offerTextFields = []struct {
	name string
	set  func(v *services.OfferForm, s string)
}{
	{"title", func(v *services.OfferForm, s string) { v.Title = s }},
	{"tender_id", func(v *services.OfferForm, s string) { v.TenderID = s }},
	{"customer_id", func(v *services.OfferForm, s string) { v.CustomerID = s }},
	{"offer_date", func(v *services.OfferForm, s string) { v.OfferDate = s }},
	{"emd_payment_mode", func(v *services.OfferForm, s string) { v.EMD.PaymentMode = s }},
	{"emd_bank_name", func(v *services.OfferForm, s string) { v.EMD.BankName = s }},
	{"emd_instrument_no", func(v *services.OfferForm, s string) { v.EMD.InstrumentNo = s }},
	{"emd_instrument_date", func(v *services.OfferForm, s string) { v.EMD.InstrumentDate = s }},
	{"emd_expiry_date", func(v *services.OfferForm, s string) { v.EMD.ExpiryDate = s }},
	{"emd_remarks", func(v *services.OfferForm, s string) { v.EMD.Remarks = s }},
	{"approver", func(v *services.OfferForm, s string) { v.Approver = s }},
	{"remarks", func(v *services.OfferForm, s string) { v.Remarks = s }},
}

var itemColumns = []struct {
	name  string
	field services.WorkItemField
	key   string
}{
	{"item_description", services.FieldDescription, "Description"},
	{"item_basic_rate", services.FieldBasicRate, "BasicRate"},
	{"item_unit", services.FieldUnit, "Unit"},
	{"item_quantity", services.FieldQuantity, "Quantity"},
	{"item_tax_rate", services.FieldTaxRate, "TaxRate"},
}

// bindOfferForm copies the fields present in the post into the form. Only
// the active step's inputs are posted, so absent fields keep their values.
// Work items are applied before the EMD amount so an unchanged amount does
// not count as a manual edit.
func bindOfferForm(ctrl *services.OfferFormController, form url.Values) services.FieldErrors {
	errs := services.FieldErrors{}

	ctrl.Edit(func(v *services.OfferForm) {
		for _, f := range offerTextFields {
			if vals, ok := form[f.name]; ok && len(vals) > 0 {
				f.set(v, strings.TrimSpace(vals[0]))
			}
		}
		if vals, ok := form["emd_validity_days"]; ok && len(vals) > 0 {
			s := strings.TrimSpace(vals[0])
			if n, err := strconv.Atoi(s); err == nil {
				v.EMD.ValidityDays = n
			} else if s != "" {
				errs["EMD.ValidityDays"] = "Validity period must be a whole number of days"
			}
		}
	})

	if keys, ok := form["item_key"]; ok {
		list := ctrl.WorkItems()
		for i, key := range keys {
			for _, col := range itemColumns {
				vals := form[col.name]
				if i >= len(vals) {
					continue
				}
				if err := list.Update(key, col.field, vals[i]); err != nil {
					errs["WorkItems["+strconv.Itoa(i)+"]."+col.key] = "Please enter a number"
				}
			}
		}
	}

	if vals, ok := form["emd_amount"]; ok && len(vals) > 0 {
		amount, err := services.ParseAmount(vals[0])
		if err != nil {
			errs["EMD.Amount"] = "EMD amount must be a number"
		} else {
			ctrl.SetEMDAmount(amount)
		}
	}
	return errs
}

func renderOfferFormWithOptions(e *core.RequestEvent, app *pocketbase.PocketBase, cfg *config.Config, ctrl *services.OfferFormController, errs services.FieldErrors) error {
	src, err := services.LoadOfferFormSource(e.Request.Context(), app, "")
	if err != nil {
		log.Printf("offer_form: could not load form options: %v", err)
		return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
	offerNumber := ""
	if id := ctrl.State().RecordID; id != "" {
		if rec, err := app.FindRecordById("offers", id); err == nil {
			offerNumber = rec.GetString("offer_number")
		}
	}
	return renderOfferForm(e, cfg, ctrl, src.Options, offerNumber, errs)
}

func renderOfferForm(e *core.RequestEvent, cfg *config.Config, ctrl *services.OfferFormController, opts services.OfferFormOptions, offerNumber string, errs services.FieldErrors) error {
	state := ctrl.State()
	encoded, err := state.Encode()
	if err != nil {
		log.Printf("offer_form: %v", err)
		return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}

	data := templates.OfferFormData{
		Mode:              state.Mode,
		OfferNumber:       offerNumber,
		State:             encoded,
		Step:              state.Step,
		Values:            state.Values,
		Errors:            errs,
		Options:           opts,
		EMD:               ctrl.EMDSummary(),
		EMDOverridden:     state.EMDOverridden,
		CanReset:          ctrl.CanReset(),
		ApproverRequired:  ctrl.Schema().ApproverRequired(),
		ExtractionEnabled: cfg.ExtractionEnabled(),
	}

	var component templ.Component
	if e.Request.Header.Get("HX-Request") == "true" {
		component = templates.OfferFormContent(data)
	} else {
		component = templates.OfferFormPage(data, GetHeaderData(e.Request), GetSidebarData(e.Request))
	}
	return component.Render(e.Request.Context(), e.Response)
}
