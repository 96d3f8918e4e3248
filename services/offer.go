package services

import (
	"slices"
	"strconv"
	"strings"
)

// OfferStatus is the lifecycle state of an offer. Transitions after
// submission are decided on the approval screen, never by the form.
type OfferStatus string

const (
	StatusDraft           OfferStatus = "DRAFT"
	StatusPendingApproval OfferStatus = "PENDING_APPROVAL"
	StatusApproved        OfferStatus = "APPROVED"
	StatusRejected        OfferStatus = "REJECTED"
)

// OfferStatuses lists every status in lifecycle order.
var OfferStatuses = []OfferStatus{StatusDraft, StatusPendingApproval, StatusApproved, StatusRejected}

// Valid reports whether s is a known status.
func (s OfferStatus) Valid() bool {
	return slices.Contains(OfferStatuses, s)
}

// Label is the display text for s.
func (s OfferStatus) Label() string {
	switch s {
	case StatusDraft:
		return "Draft"
	case StatusPendingApproval:
		return "Pending Approval"
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	}
	return string(s)
}

// Editable reports whether an offer in status s may still be changed.
func (s OfferStatus) Editable() bool {
	return s == StatusDraft || s == StatusRejected
}

// CanTransitionTo reports whether an approval decision may move an offer
// from s to next.
func (s OfferStatus) CanTransitionTo(next OfferStatus) bool {
	return s == StatusPendingApproval && (next == StatusApproved || next == StatusRejected)
}

// EMDDetails describes the earnest money deposit attached to an offer.
type EMDDetails struct {
	Amount         float64 `json:"amount" validate:"gte=0"`
	PaymentMode    string  `json:"payment_mode" validate:"required,oneof=DD BG FDR ONLINE EXEMPT"`
	ValidityDays   int     `json:"validity_days" validate:"gte=1,lte=730"`
	BankName       string  `json:"bank_name" validate:"max=100"`
	InstrumentNo   string  `json:"instrument_no" validate:"max=50"`
	InstrumentDate string  `json:"instrument_date" validate:"omitempty,datetime=2006-01-02"`
	ExpiryDate     string  `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
	Remarks        string  `json:"remarks" validate:"max=500"`
}

// OfferForm holds every value the offer form edits.
type OfferForm struct {
	Title      string     `json:"title" validate:"required,max=200"`
	TenderID   string     `json:"tender_id" validate:"required"`
	CustomerID string     `json:"customer_id" validate:"required"`
	OfferDate  string     `json:"offer_date" validate:"required,datetime=2006-01-02"`
	WorkItems  []WorkItem `json:"work_items" validate:"min=1,dive"`
	EMD        EMDDetails `json:"emd"`
	Approver   string     `json:"approver" validate:"max=100"`
	Remarks    string     `json:"remarks" validate:"max=1000"`
}

// Roles known to the approval flow.
const (
	RoleAdmin    = "admin"
	RoleApprover = "approver"
	RoleStaff    = "staff"
)

// CurrentUser is the person filling in the form.
type CurrentUser struct {
	ID    string
	Name  string
	Email string
	Role  string
}

// CanSelfApprove reports whether offers by u need no separate approver.
func (u CurrentUser) CanSelfApprove() bool {
	return u.Role == RoleAdmin || u.Role == RoleApprover
}

// OfferSchema validates OfferForm values for one user. The approver is
// mandatory unless that user may approve their own offers.
type OfferSchema struct {
	approverRequired bool
}

// NewOfferSchema builds the schema for user.
func NewOfferSchema(user CurrentUser) *OfferSchema {
	return &OfferSchema{approverRequired: !user.CanSelfApprove()}
}

// ApproverRequired reports whether the approver field must be filled.
func (s *OfferSchema) ApproverRequired() bool {
	return s.approverRequired
}

// ValidateFields validates only the named fields of form. "WorkItems"
// covers the list length and every row.
func (s *OfferSchema) ValidateFields(form OfferForm, fields []string) FieldErrors {
	errs := FieldErrors{}

	var partial []string
	for _, f := range fields {
		switch f {
		case "WorkItems":
			errs.Merge(validateWorkItems(form.WorkItems))
		case "Approver":
			s.checkApprover(form, errs)
			partial = append(partial, f)
		default:
			partial = append(partial, f)
		}
	}

	if len(partial) > 0 {
		collectErrors(validate.StructPartial(form, partial...), "", errs)
	}
	return errs
}

// ValidateAll validates the whole form.
func (s *OfferSchema) ValidateAll(form OfferForm) FieldErrors {
	errs := FieldErrors{}
	collectErrors(validate.Struct(form), "", errs)
	s.checkApprover(form, errs)
	return errs
}

func (s *OfferSchema) checkApprover(form OfferForm, errs FieldErrors) {
	if s.approverRequired && strings.TrimSpace(form.Approver) == "" {
		if _, ok := errs["Approver"]; !ok {
			errs["Approver"] = "Approver is required"
		}
	}
}

// validateWorkItems checks the list length and each row. Rows are
// validated one at a time because partial struct validation does not
// descend into slice elements.
func validateWorkItems(items []WorkItem) FieldErrors {
	errs := FieldErrors{}
	if len(items) == 0 {
		errs["WorkItems"] = "Please add at least one work item"
		return errs
	}
	for i, item := range items {
		collectErrors(validate.Struct(item), workItemPrefix(i), errs)
	}
	return errs
}

func workItemPrefix(i int) string {
	return "WorkItems[" + strconv.Itoa(i) + "]."
}
