package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"golang.org/x/sync/errgroup"
)

// StoredOffer is an offer read back from the store with display names
// resolved.
type StoredOffer struct {
	ID           string
	OfferNumber  string
	Status       OfferStatus
	Form         OfferForm
	TenderNumber string
	TenderTitle  string
	CustomerName string
	ApproverName string
	DecidedBy    string
	DecisionNote string
	Created      time.Time
}

// Totals derives the offer totals from its work items.
func (o StoredOffer) Totals() OfferTotals {
	return CalcOfferTotals(o.Form.WorkItems)
}

// LoadOffer reads an offer and its work items.
func LoadOffer(app core.App, id string) (*StoredOffer, error) {
	rec, err := app.FindRecordById("offers", id)
	if err != nil {
		return nil, fmt.Errorf("offer %s not found: %w", id, err)
	}

	items, err := loadWorkItems(app, rec.Id)
	if err != nil {
		return nil, err
	}

	offer := &StoredOffer{
		ID:           rec.Id,
		OfferNumber:  rec.GetString("offer_number"),
		Status:       OfferStatus(rec.GetString("status")),
		Form:         recordToForm(rec, items),
		DecisionNote: rec.GetString("decision_note"),
		Created:      rec.GetDateTime("created").Time(),
	}

	if tender, err := app.FindRecordById("tenders", offer.Form.TenderID); err == nil {
		offer.TenderNumber = tender.GetString("tender_number")
		offer.TenderTitle = tender.GetString("title")
	}
	if customer, err := app.FindRecordById("customers", offer.Form.CustomerID); err == nil {
		offer.CustomerName = customer.GetString("name")
	}
	if approverID := offer.Form.Approver; approverID != "" {
		if user, err := app.FindRecordById("users", approverID); err == nil {
			offer.ApproverName = userDisplayName(user)
		}
	}
	if decidedBy := rec.GetString("decided_by"); decidedBy != "" {
		if user, err := app.FindRecordById("users", decidedBy); err == nil {
			offer.DecidedBy = userDisplayName(user)
		}
	}

	return offer, nil
}

func recordToForm(rec *core.Record, items []WorkItem) OfferForm {
	return OfferForm{
		Title:      rec.GetString("title"),
		TenderID:   rec.GetString("tender"),
		CustomerID: rec.GetString("customer"),
		OfferDate:  rec.GetString("offer_date"),
		WorkItems:  items,
		EMD: EMDDetails{
			Amount:         rec.GetFloat("emd_amount"),
			PaymentMode:    rec.GetString("emd_payment_mode"),
			ValidityDays:   rec.GetInt("emd_validity_days"),
			BankName:       rec.GetString("emd_bank_name"),
			InstrumentNo:   rec.GetString("emd_instrument_no"),
			InstrumentDate: rec.GetString("emd_instrument_date"),
			ExpiryDate:     rec.GetString("emd_expiry_date"),
			Remarks:        rec.GetString("emd_remarks"),
		},
		Approver: rec.GetString("approver"),
		Remarks:  rec.GetString("remarks"),
	}
}

func loadWorkItems(app core.App, offerID string) ([]WorkItem, error) {
	records, err := app.FindRecordsByFilter(
		"offer_work_items",
		"offer = {:offerId}",
		"sort_order",
		0,
		0,
		map[string]any{"offerId": offerID},
	)
	if err != nil {
		return nil, fmt.Errorf("query work items for offer %s: %w", offerID, err)
	}

	items := make([]WorkItem, 0, len(records))
	for _, rec := range records {
		item := WorkItem{
			Key:         rec.Id,
			Description: rec.GetString("description"),
			BasicRate:   rec.GetFloat("basic_rate"),
			Unit:        rec.GetString("unit"),
			TaxRate:     rec.GetFloat("tax_rate"),
		}
		if rec.GetBool("has_quantity") {
			q := rec.GetFloat("quantity")
			item.Quantity = &q
		}
		items = append(items, item)
	}
	return items, nil
}

func userDisplayName(user *core.Record) string {
	if name := strings.TrimSpace(user.GetString("name")); name != "" {
		return name
	}
	return user.Email()
}

// SelectOption is one entry of a dropdown.
type SelectOption struct {
	Value string
	Label string
	Hint  string
}

// OfferFormOptions are the dropdown contents of the offer form.
type OfferFormOptions struct {
	Tenders   []SelectOption
	Customers []SelectOption
	Approvers []SelectOption
}

// OfferFormSource is everything the offer form needs to render.
type OfferFormSource struct {
	Options OfferFormOptions
	// Offer is set when editing.
	Offer *StoredOffer
}

// LoadOfferFormSource fetches the dropdown options and, when offerID is
// set, the offer being edited. The lookups are independent and run
// concurrently. If ctx ends first the partial result is dropped and the
// context error returned.
func LoadOfferFormSource(ctx context.Context, app core.App, offerID string) (*OfferFormSource, error) {
	g, gctx := errgroup.WithContext(ctx)
	src := &OfferFormSource{}

	g.Go(func() error {
		opts, err := tenderOptions(gctx, app)
		src.Options.Tenders = opts
		return err
	})
	g.Go(func() error {
		opts, err := customerOptions(gctx, app)
		src.Options.Customers = opts
		return err
	})
	g.Go(func() error {
		opts, err := approverOptions(gctx, app)
		src.Options.Approvers = opts
		return err
	})
	if offerID != "" {
		g.Go(func() error {
			offer, err := LoadOffer(app, offerID)
			src.Offer = offer
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return src, nil
}

func tenderOptions(ctx context.Context, app core.App) ([]SelectOption, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := app.FindRecordsByFilter("tenders", "1=1", "-created", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("query tenders: %w", err)
	}
	opts := make([]SelectOption, 0, len(records))
	for _, rec := range records {
		opts = append(opts, SelectOption{
			Value: rec.Id,
			Label: rec.GetString("tender_number") + " - " + rec.GetString("title"),
			Hint:  rec.GetString("customer"),
		})
	}
	return opts, nil
}

func customerOptions(ctx context.Context, app core.App) ([]SelectOption, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := app.FindRecordsByFilter("customers", "1=1", "name", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	opts := make([]SelectOption, 0, len(records))
	for _, rec := range records {
		opts = append(opts, SelectOption{Value: rec.Id, Label: rec.GetString("name"), Hint: rec.GetString("city")})
	}
	return opts, nil
}

func approverOptions(ctx context.Context, app core.App) ([]SelectOption, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := app.FindRecordsByFilter(
		"users",
		"role = {:approver} || role = {:admin}",
		"name",
		0,
		0,
		map[string]any{"approver": RoleApprover, "admin": RoleAdmin},
	)
	if err != nil {
		return nil, fmt.Errorf("query approvers: %w", err)
	}
	opts := make([]SelectOption, 0, len(records))
	for _, rec := range records {
		opts = append(opts, SelectOption{Value: rec.Id, Label: userDisplayName(rec), Hint: rec.GetString("role")})
	}
	return opts, nil
}
