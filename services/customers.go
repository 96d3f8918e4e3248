package services

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pocketbase/pocketbase/core"
)

// CustomerInput is the editable part of a customer record.
type CustomerInput struct {
	Name          string `validate:"required,max=200"`
	ContactPerson string `validate:"max=100"`
	Phone         string `validate:"omitempty,in_phone"`
	Email         string `validate:"omitempty,email"`
	GSTIN         string `validate:"omitempty,gstin"`
	PAN           string `validate:"omitempty,pan"`
	Address       string `validate:"max=500"`
	City          string `validate:"max=100"`
	State         string
	PinCode       string `validate:"omitempty,in_pincode"`
}

// Normalize trims every field and upper-cases the tax identifiers.
func (c *CustomerInput) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.ContactPerson = strings.TrimSpace(c.ContactPerson)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)
	c.GSTIN = strings.ToUpper(strings.TrimSpace(c.GSTIN))
	c.PAN = strings.ToUpper(strings.TrimSpace(c.PAN))
	c.Address = strings.TrimSpace(c.Address)
	c.City = strings.TrimSpace(c.City)
	c.State = strings.TrimSpace(c.State)
	c.PinCode = strings.TrimSpace(c.PinCode)
}

// Validate checks c and returns per-field messages keyed by field name.
func (c CustomerInput) Validate() FieldErrors {
	errs := FieldErrors{}
	collectErrors(validate.Struct(c), "", errs)
	if c.State != "" && !slices.Contains(IndianStates, c.State) {
		errs["State"] = "Please pick a state from the list"
	}
	return errs
}

// Customer is a stored customer.
type Customer struct {
	ID string
	CustomerInput
	OfferCount int
}

// CustomerList is every customer matching a search.
type CustomerList struct {
	Items  []Customer
	Search string
}

func customerFromRecord(rec *core.Record) Customer {
	return Customer{
		ID: rec.Id,
		CustomerInput: CustomerInput{
			Name:          rec.GetString("name"),
			ContactPerson: rec.GetString("contact_person"),
			Phone:         rec.GetString("phone"),
			Email:         rec.GetString("email"),
			GSTIN:         rec.GetString("gstin"),
			PAN:           rec.GetString("pan"),
			Address:       rec.GetString("address"),
			City:          rec.GetString("city"),
			State:         rec.GetString("state"),
			PinCode:       rec.GetString("pin_code"),
		},
	}
}

func setCustomerFields(rec *core.Record, in CustomerInput) {
	rec.Set("name", in.Name)
	rec.Set("contact_person", in.ContactPerson)
	rec.Set("phone", in.Phone)
	rec.Set("email", in.Email)
	rec.Set("gstin", in.GSTIN)
	rec.Set("pan", in.PAN)
	rec.Set("address", in.Address)
	rec.Set("city", in.City)
	rec.Set("state", in.State)
	rec.Set("pin_code", in.PinCode)
}

// CreateCustomer validates and stores a new customer. Validation failures
// come back as FieldErrors with a nil error.
func CreateCustomer(app core.App, in CustomerInput) (string, FieldErrors, error) {
	in.Normalize()
	if errs := in.Validate(); len(errs) > 0 {
		return "", errs, nil
	}

	col, err := app.FindCollectionByNameOrId("customers")
	if err != nil {
		return "", nil, fmt.Errorf("find customers collection: %w", err)
	}
	rec := core.NewRecord(col)
	setCustomerFields(rec, in)
	if err := app.Save(rec); err != nil {
		return "", nil, fmt.Errorf("save customer: %w", err)
	}
	return rec.Id, nil, nil
}

// UpdateCustomer validates and overwrites customer id.
func UpdateCustomer(app core.App, id string, in CustomerInput) (FieldErrors, error) {
	rec, err := app.FindRecordById("customers", id)
	if err != nil {
		return nil, &CollaboratorError{Message: "Customer not found", Err: err}
	}

	in.Normalize()
	if errs := in.Validate(); len(errs) > 0 {
		return errs, nil
	}

	setCustomerFields(rec, in)
	if err := app.Save(rec); err != nil {
		return nil, fmt.Errorf("save customer %s: %w", id, err)
	}
	return nil, nil
}

// LoadCustomer reads customer id.
func LoadCustomer(app core.App, id string) (*Customer, error) {
	rec, err := app.FindRecordById("customers", id)
	if err != nil {
		return nil, &CollaboratorError{Message: "Customer not found", Err: err}
	}
	c := customerFromRecord(rec)
	return &c, nil
}

// ListCustomers returns customers whose name, city or GSTIN contains
// search, ordered by name, each with the number of offers made to them.
func ListCustomers(app core.App, search string) (*CustomerList, error) {
	search = strings.TrimSpace(search)
	filter := "1=1"
	var bind map[string]any
	if search != "" {
		filter = "name ~ {:q} || city ~ {:q} || gstin ~ {:q}"
		bind = map[string]any{"q": search}
	}

	records, err := app.FindRecordsByFilter("customers", filter, "name", 0, 0, bind)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}

	offers, err := app.FindAllRecords("offers")
	if err != nil {
		return nil, fmt.Errorf("query offers: %w", err)
	}
	counts := make(map[string]int)
	for _, o := range offers {
		counts[o.GetString("customer")]++
	}

	list := &CustomerList{Search: search, Items: make([]Customer, 0, len(records))}
	for _, rec := range records {
		c := customerFromRecord(rec)
		c.OfferCount = counts[rec.Id]
		list.Items = append(list.Items, c)
	}
	return list, nil
}

// DeleteCustomer removes a customer nobody has tendered or offered to yet.
func DeleteCustomer(app core.App, id string) error {
	rec, err := app.FindRecordById("customers", id)
	if err != nil {
		return &CollaboratorError{Message: "Customer not found", Err: err}
	}

	for _, col := range []string{"offers", "tenders"} {
		refs, err := app.FindRecordsByFilter(col, "customer = {:id}", "", 1, 0, map[string]any{"id": id})
		if err != nil {
			return fmt.Errorf("check %s for customer %s: %w", col, id, err)
		}
		if len(refs) > 0 {
			return &CollaboratorError{
				Message: fmt.Sprintf("%s is used by existing %s and cannot be deleted", rec.GetString("name"), col),
			}
		}
	}

	if err := app.Delete(rec); err != nil {
		return fmt.Errorf("delete customer %s: %w", id, err)
	}
	return nil
}
