package services

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FormMode says whether the form creates a new offer or edits one.
type FormMode string

const (
	ModeCreate FormMode = "create"
	ModeEdit   FormMode = "edit"
)

// FormStep is one page of the offer form and the fields it owns.
type FormStep struct {
	Title  string
	Fields []string
}

// OfferSteps is the fixed step order of the offer form.
var OfferSteps = []FormStep{
	{Title: "Offer Details", Fields: []string{"Title", "TenderID", "CustomerID", "OfferDate"}},
	{Title: "Work Items", Fields: []string{"WorkItems"}},
	{Title: "EMD", Fields: []string{
		"EMD.Amount", "EMD.PaymentMode", "EMD.ValidityDays", "EMD.BankName",
		"EMD.InstrumentNo", "EMD.InstrumentDate", "EMD.ExpiryDate", "EMD.Remarks",
	}},
	{Title: "Review", Fields: []string{"Approver", "Remarks"}},
}

var (
	ErrNotOnLastStep    = errors.New("offers can only be submitted from the last step")
	ErrResetUnavailable = errors.New("nothing to reset")
	ErrFormInvalid      = errors.New("offer form has invalid fields")
)

// FormInvalidMessage is the notice shown when a whole-form check fails.
const FormInvalidMessage = "Please correct all required fields"

// OfferFormState is everything the offer form needs between requests.
// It travels in a hidden field; the server validates it again before
// anything is persisted.
type OfferFormState struct {
	Token                string    `json:"token"`
	Mode                 FormMode  `json:"mode"`
	RecordID             string    `json:"record_id,omitempty"`
	Step                 int       `json:"step"`
	Touched              bool      `json:"touched"`
	EMDOverridden        bool      `json:"emd_overridden"`
	InitialEMDOverridden bool      `json:"initial_emd_overridden"`
	Initial              OfferForm `json:"initial"`
	Values               OfferForm `json:"values"`
}

// NewOfferFormState starts a form session on step 0. In edit mode a stored
// EMD amount that differs from the suggestion counts as a manual override.
func NewOfferFormState(mode FormMode, recordID string, initial OfferForm, emdPercent float64) *OfferFormState {
	initial = cloneForm(initial)
	overridden := false
	if mode == ModeEdit {
		suggested := SuggestedEMD(AggregateTotal(initial.WorkItems), emdPercent)
		// create mode stores the suggestion rounded to paise
		overridden = !suggested.Round(2).Equal(decimal.NewFromFloat(initial.EMD.Amount))
	}
	return &OfferFormState{
		Token:                uuid.NewString(),
		Mode:                 mode,
		RecordID:             recordID,
		EMDOverridden:        overridden,
		InitialEMDOverridden: overridden,
		Initial:              initial,
		Values:               cloneForm(initial),
	}
}

// Encode serialises s for a hidden form field.
func (s *OfferFormState) Encode() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode form state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodeOfferFormState reverses Encode and clamps the step index.
func DecodeOfferFormState(encoded string) (*OfferFormState, error) {
	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode form state: %w", err)
	}
	var s OfferFormState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode form state: %w", err)
	}
	if s.Token == "" {
		return nil, errors.New("decode form state: missing session token")
	}
	if s.Mode != ModeCreate && s.Mode != ModeEdit {
		return nil, fmt.Errorf("decode form state: unknown mode %q", s.Mode)
	}
	s.Step = max(0, min(s.Step, len(OfferSteps)-1))
	s.Initial = cloneForm(s.Initial)
	s.Values = cloneForm(s.Values)
	return &s, nil
}

// OfferFormController drives one offer form session.
type OfferFormController struct {
	state      *OfferFormState
	schema     *OfferSchema
	emdPercent float64
}

// NewOfferFormController wraps state. The schema decides which fields are
// mandatory for the current user.
func NewOfferFormController(state *OfferFormState, schema *OfferSchema, emdPercent float64) *OfferFormController {
	return &OfferFormController{state: state, schema: schema, emdPercent: emdPercent}
}

// State returns the live state.
func (c *OfferFormController) State() *OfferFormState {
	return c.state
}

// Schema returns the schema the controller validates with.
func (c *OfferFormController) Schema() *OfferSchema {
	return c.schema
}

// CurrentStep returns the active step definition.
func (c *OfferFormController) CurrentStep() FormStep {
	return OfferSteps[c.state.Step]
}

// IsFirstStep reports whether the active step is the first one.
func (c *OfferFormController) IsFirstStep() bool {
	return c.state.Step == 0
}

// IsLastStep reports whether the active step is the last one.
func (c *OfferFormController) IsLastStep() bool {
	return c.state.Step == len(OfferSteps)-1
}

// Next validates the active step and advances when it passes. On the last
// step it does nothing.
func (c *OfferFormController) Next() (bool, FieldErrors) {
	if c.IsLastStep() {
		return false, nil
	}
	errs := c.schema.ValidateFields(c.state.Values, c.CurrentStep().Fields)
	if len(errs) > 0 {
		return false, errs
	}
	c.state.Step++
	return true, nil
}

// Previous moves back one step without validating. On the first step it
// does nothing.
func (c *OfferFormController) Previous() bool {
	if c.IsFirstStep() {
		return false
	}
	c.state.Step--
	return true
}

// CanReset reports whether there are edits to discard.
func (c *OfferFormController) CanReset() bool {
	return c.state.Touched
}

// Reset restores the initial values and keeps the active step.
func (c *OfferFormController) Reset() error {
	if !c.state.Touched {
		return ErrResetUnavailable
	}
	c.state.Values = cloneForm(c.state.Initial)
	c.state.EMDOverridden = c.state.InitialEMDOverridden
	c.state.Touched = false
	return nil
}

// Edit applies fn to the form values.
func (c *OfferFormController) Edit(fn func(v *OfferForm)) {
	fn(&c.state.Values)
	c.refreshTouched()
}

// WorkItems returns an editor over the current rows. Each change updates
// the form values and re-derives the EMD amount unless it was overridden.
func (c *OfferFormController) WorkItems() *WorkItemList {
	return NewWorkItemList(c.state.Values.WorkItems, c.applyWorkItems)
}

func (c *OfferFormController) applyWorkItems(items []WorkItem) {
	if len(items) == 0 {
		items = nil
	}
	c.state.Values.WorkItems = items
	if !c.state.EMDOverridden {
		amount, _ := c.EMDSummary().Suggested.Round(2).Float64()
		c.state.Values.EMD.Amount = amount
	}
	c.refreshTouched()
}

// EMDSummary derives the suggested and maximum EMD from the current rows.
func (c *OfferFormController) EMDSummary() EMDSummary {
	return SummarizeEMD(c.state.Values.WorkItems, c.emdPercent)
}

// SetEMDAmount records a manually typed EMD amount. From then on item
// changes no longer touch the amount.
func (c *OfferFormController) SetEMDAmount(amount float64) {
	if amount == c.state.Values.EMD.Amount {
		return
	}
	c.state.Values.EMD.Amount = amount
	c.state.EMDOverridden = true
	c.refreshTouched()
}

// UseSuggestedEMD drops a manual override and re-derives the amount.
func (c *OfferFormController) UseSuggestedEMD() {
	c.state.EMDOverridden = false
	c.applyWorkItems(c.state.Values.WorkItems)
}

// ApplyExtracted merges fields read from an uploaded document. A merged
// amount counts as a manual override.
func (c *OfferFormController) ApplyExtracted(fields ExtractedFields) {
	MergeExtracted(&c.state.Values.EMD, fields)
	if fields.Amount != nil {
		c.state.EMDOverridden = true
	}
	c.refreshTouched()
}

// PrepareSubmit validates the whole form for submission. It is only
// allowed from the last step.
func (c *OfferFormController) PrepareSubmit() (OfferForm, FieldErrors, error) {
	if !c.IsLastStep() {
		return OfferForm{}, nil, ErrNotOnLastStep
	}
	return c.validated()
}

// PrepareDraft validates the whole form for saving as a draft, from any
// step. Drafts need at least one work item too.
func (c *OfferFormController) PrepareDraft() (OfferForm, FieldErrors, error) {
	return c.validated()
}

func (c *OfferFormController) validated() (OfferForm, FieldErrors, error) {
	errs := c.schema.ValidateAll(c.state.Values)
	if len(errs) > 0 {
		return OfferForm{}, errs, ErrFormInvalid
	}
	return cloneForm(c.state.Values), nil, nil
}

func (c *OfferFormController) refreshTouched() {
	c.state.Touched = !reflect.DeepEqual(c.state.Values, c.state.Initial)
}

// cloneForm deep-copies f so edits never leak into the initial values.
// Empty item lists normalise to nil.
func cloneForm(f OfferForm) OfferForm {
	if len(f.WorkItems) == 0 {
		f.WorkItems = nil
		return f
	}
	items := make([]WorkItem, len(f.WorkItems))
	for i, it := range f.WorkItems {
		if it.Quantity != nil {
			q := *it.Quantity
			it.Quantity = &q
		}
		items[i] = it
	}
	f.WorkItems = items
	return f
}
