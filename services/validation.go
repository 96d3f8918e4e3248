package services

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z]{1}[1-9A-Z]{1}Z[0-9A-Z]{1}$`)
	panPattern   = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]{1}$`)
	pinPattern   = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	phonePattern = regexp.MustCompile(`^[6-9][0-9]{9}$`)
)

// validate is shared by every schema in this package. Validators are safe
// for concurrent use once tags are registered.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	mustRegister(v, "gstin", patternRule(gstinPattern, true))
	mustRegister(v, "pan", patternRule(panPattern, true))
	mustRegister(v, "in_pincode", patternRule(pinPattern, false))
	mustRegister(v, "in_phone", patternRule(phonePattern, false))
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

func patternRule(re *regexp.Regexp, upper bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		if upper {
			s = strings.ToUpper(s)
		}
		return re.MatchString(s)
	}
}

// FieldErrors maps a field path (e.g. "EMD.Amount", "WorkItems[0].TaxRate")
// to a user-facing message.
type FieldErrors map[string]string

// Has reports whether field has an error.
func (fe FieldErrors) Has(field string) bool {
	_, ok := fe[field]
	return ok
}

// Fields returns the failing field paths in sorted order.
func (fe FieldErrors) Fields() []string {
	return slices.Sorted(maps.Keys(fe))
}

// Labels returns the human label of each failing field, sorted and
// de-duplicated, for toast messages.
func (fe FieldErrors) Labels() []string {
	seen := make(map[string]bool)
	var out []string
	for _, path := range fe.Fields() {
		label := labelForPath(path)
		if !seen[label] {
			seen[label] = true
			out = append(out, label)
		}
	}
	return out
}

// Merge copies other into fe without overwriting existing messages.
func (fe FieldErrors) Merge(other FieldErrors) {
	for k, v := range other {
		if _, ok := fe[k]; !ok {
			fe[k] = v
		}
	}
}

var fieldLabels = map[string]string{
	"Title":          "Offer title",
	"TenderID":       "Tender",
	"CustomerID":     "Customer",
	"OfferDate":      "Offer date",
	"WorkItems":      "Work items",
	"Description":    "Description",
	"BasicRate":      "Basic rate",
	"Unit":           "Unit",
	"Quantity":       "Quantity",
	"TaxRate":        "Tax rate",
	"Amount":         "EMD amount",
	"PaymentMode":    "Payment mode",
	"ValidityDays":   "Validity period",
	"BankName":       "Bank name",
	"InstrumentNo":   "Instrument number",
	"InstrumentDate": "Instrument date",
	"ExpiryDate":     "Expiry date",
	"Approver":       "Approver",
	"Remarks":        "Remarks",
	"Name":           "Name",
	"GSTIN":          "GSTIN",
	"PAN":            "PAN",
	"Phone":          "Phone",
	"Email":          "Email",
	"PinCode":        "PIN Code",
	"ContactPerson":  "Contact person",
	"City":           "City",
	"State":          "State",
	"TenderNumber":   "Tender Number",
	"TenderTitle":    "Title",
	"DueDate":        "Due Date",
}

func labelFor(field string) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	return field
}

// labelForPath labels the last segment of a path, so
// "WorkItems[2].TaxRate" becomes "Tax rate".
func labelForPath(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		path = path[i+1:]
	}
	if i := strings.Index(path, "["); i >= 0 {
		path = path[:i]
	}
	return labelFor(path)
}

// collectErrors converts a validator error into FieldErrors. Paths are
// relative to the validated struct, optionally under prefix.
func collectErrors(err error, prefix string, out FieldErrors) {
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out[prefix+"_form"] = err.Error()
		return
	}
	for _, fe := range verrs {
		path := fe.Namespace()
		if i := strings.Index(path, "."); i >= 0 {
			path = path[i+1:]
		}
		path = prefix + path
		if _, exists := out[path]; !exists {
			out[path] = fieldMessage(fe)
		}
	}
}

func fieldMessage(fe validator.FieldError) string {
	label := labelFor(fe.Field())
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		if fe.Field() == "WorkItems" {
			return "Please add at least one work item"
		}
		return fmt.Sprintf("%s must have at least %s entries", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		return label + " must be a date (YYYY-MM-DD)"
	case "email":
		return "Invalid email format"
	case "gstin":
		return "Invalid GSTIN format (expected: 15-character, e.g., 27AAPFU0939F1ZV)"
	case "pan":
		return "Invalid PAN format (expected: 10-character, e.g., ABCDE1234F)"
	case "in_pincode":
		return "Invalid PIN Code (expected: 6 digits, e.g., 400001)"
	case "in_phone":
		return "Invalid phone number (expected: 10 digits starting with 6-9)"
	}
	return label + " is invalid"
}
