package services

// UnitOptions are the units offered for work items.
var UnitOptions = []string{
	"Nos",
	"Set",
	"Lot",
	"Lumpsum",
	"Rmt",
	"Km",
	"Sqm",
	"Cum",
	"Kg",
	"MT",
	"kVA",
	"kW",
	"Day",
	"Month",
	"Visit",
}

// TaxRateOptions are the GST slabs offered for work items.
var TaxRateOptions = []float64{0, 5, 12, 18, 28}

// PaymentMode is one way of furnishing an EMD.
type PaymentMode struct {
	Code  string
	Label string
	// Instrument is true when the mode has a bank instrument with its own
	// number and dates.
	Instrument bool
}

// PaymentModes lists the EMD payment modes accepted by EMDDetails.PaymentMode.
var PaymentModes = []PaymentMode{
	{Code: "DD", Label: "Demand Draft", Instrument: true},
	{Code: "BG", Label: "Bank Guarantee", Instrument: true},
	{Code: "FDR", Label: "Fixed Deposit Receipt", Instrument: true},
	{Code: "ONLINE", Label: "Online Transfer"},
	{Code: "EXEMPT", Label: "Exempted (MSE/NSIC)"},
}

// PaymentModeLabel returns the display label for code, or code itself.
func PaymentModeLabel(code string) string {
	for _, m := range PaymentModes {
		if m.Code == code {
			return m.Label
		}
	}
	return code
}

// IndianStates is the state list for customer addresses.
var IndianStates = []string{
	"Andhra Pradesh", "Arunachal Pradesh", "Assam", "Bihar", "Chhattisgarh",
	"Goa", "Gujarat", "Haryana", "Himachal Pradesh", "Jharkhand",
	"Karnataka", "Kerala", "Madhya Pradesh", "Maharashtra", "Manipur",
	"Meghalaya", "Mizoram", "Nagaland", "Odisha", "Punjab",
	"Rajasthan", "Sikkim", "Tamil Nadu", "Telangana", "Tripura",
	"Uttar Pradesh", "Uttarakhand", "West Bengal",
	"Andaman and Nicobar Islands", "Chandigarh", "Dadra and Nagar Haveli and Daman and Diu",
	"Delhi", "Jammu and Kashmir", "Ladakh", "Lakshadweep", "Puducherry",
}
