package services

import (
	"context"
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase/core"
)

// RecordOfferStore keeps offers and their work items in PocketBase.
type RecordOfferStore struct {
	app core.App
	now func() time.Time
}

// NewRecordOfferStore returns a store backed by app.
func NewRecordOfferStore(app core.App) *RecordOfferStore {
	return &RecordOfferStore{app: app, now: time.Now}
}

// CreateOffer saves a new offer with a fresh offer number and its work
// items in one transaction.
func (s *RecordOfferStore) CreateOffer(ctx context.Context, p OfferPayload) (SavedOffer, error) {
	if err := ctx.Err(); err != nil {
		return SavedOffer{}, err
	}

	var saved SavedOffer
	err := s.app.RunInTransaction(func(txApp core.App) error {
		offersCol, err := txApp.FindCollectionByNameOrId("offers")
		if err != nil {
			return fmt.Errorf("find offers collection: %w", err)
		}

		number, err := GenerateOfferNumber(txApp, p.Form.TenderID, s.now())
		if err != nil {
			return &CollaboratorError{Message: "The selected tender no longer exists", Err: err}
		}

		rec := core.NewRecord(offersCol)
		rec.Set("offer_number", number)
		rec.Set("created_by", p.CreatedBy)
		setOfferFields(rec, p)

		if err := txApp.Save(rec); err != nil {
			return saveError("offer", err)
		}
		if err := replaceWorkItems(txApp, rec.Id, p.Form.WorkItems); err != nil {
			return err
		}

		saved = SavedOffer{ID: rec.Id, OfferNumber: number, Status: p.Status}
		return nil
	})
	if err != nil {
		return SavedOffer{}, err
	}
	return saved, nil
}

// UpdateOffer overwrites an editable offer and replaces its work items in
// one transaction.
func (s *RecordOfferStore) UpdateOffer(ctx context.Context, id string, p OfferPayload) (SavedOffer, error) {
	if err := ctx.Err(); err != nil {
		return SavedOffer{}, err
	}

	var saved SavedOffer
	err := s.app.RunInTransaction(func(txApp core.App) error {
		rec, err := txApp.FindRecordById("offers", id)
		if err != nil {
			return &CollaboratorError{Message: "Offer not found", Err: err}
		}
		if current := OfferStatus(rec.GetString("status")); !current.Editable() {
			return &CollaboratorError{
				Message: fmt.Sprintf("Offers that are %s cannot be edited", current.Label()),
				Err:     fmt.Errorf("offer %s has status %s", id, current),
			}
		}

		setOfferFields(rec, p)
		rec.Set("decided_by", "")
		rec.Set("decision_note", "")

		if err := txApp.Save(rec); err != nil {
			return saveError("offer", err)
		}
		if err := replaceWorkItems(txApp, rec.Id, p.Form.WorkItems); err != nil {
			return err
		}

		saved = SavedOffer{ID: rec.Id, OfferNumber: rec.GetString("offer_number"), Status: p.Status}
		return nil
	})
	if err != nil {
		return SavedOffer{}, err
	}
	return saved, nil
}

// setOfferFields copies the form values onto an offer record.
func setOfferFields(rec *core.Record, p OfferPayload) {
	f := p.Form
	rec.Set("title", f.Title)
	rec.Set("tender", f.TenderID)
	rec.Set("customer", f.CustomerID)
	rec.Set("offer_date", f.OfferDate)
	rec.Set("status", string(p.Status))
	rec.Set("emd_amount", f.EMD.Amount)
	rec.Set("emd_payment_mode", f.EMD.PaymentMode)
	rec.Set("emd_validity_days", f.EMD.ValidityDays)
	rec.Set("emd_bank_name", f.EMD.BankName)
	rec.Set("emd_instrument_no", f.EMD.InstrumentNo)
	rec.Set("emd_instrument_date", f.EMD.InstrumentDate)
	rec.Set("emd_expiry_date", f.EMD.ExpiryDate)
	rec.Set("emd_remarks", f.EMD.Remarks)
	rec.Set("approver", f.Approver)
	rec.Set("remarks", f.Remarks)
}

// replaceWorkItems deletes the offer's rows and writes items in list order.
func replaceWorkItems(txApp core.App, offerID string, items []WorkItem) error {
	existing, err := txApp.FindRecordsByFilter(
		"offer_work_items",
		"offer = {:offerId}",
		"",
		0,
		0,
		map[string]any{"offerId": offerID},
	)
	if err != nil {
		return fmt.Errorf("query work items: %w", err)
	}
	for _, rec := range existing {
		if err := txApp.Delete(rec); err != nil {
			return fmt.Errorf("delete work item %s: %w", rec.Id, err)
		}
	}

	col, err := txApp.FindCollectionByNameOrId("offer_work_items")
	if err != nil {
		return fmt.Errorf("find offer_work_items collection: %w", err)
	}
	for i, item := range items {
		rec := core.NewRecord(col)
		rec.Set("offer", offerID)
		rec.Set("sort_order", i+1)
		rec.Set("description", item.Description)
		rec.Set("basic_rate", item.BasicRate)
		rec.Set("unit", item.Unit)
		rec.Set("tax_rate", item.TaxRate)
		rec.Set("has_quantity", item.Quantity != nil)
		if item.Quantity != nil {
			rec.Set("quantity", *item.Quantity)
		}
		if err := txApp.Save(rec); err != nil {
			return saveError(fmt.Sprintf("work item %d", i+1), err)
		}
	}
	return nil
}

func saveError(what string, err error) error {
	return &CollaboratorError{
		Message: fmt.Sprintf("Could not save %s. Please check the selected tender, customer and approver.", what),
		Err:     fmt.Errorf("save %s: %w", what, err),
	}
}
