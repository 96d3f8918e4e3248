package templates

import (
	"strconv"

	"github.com/a-h/templ"

	"tendertrack/services"
)

// OfferFormData is one render of the multi-step offer form.
type OfferFormData struct {
	Mode              services.FormMode
	OfferNumber       string
	State             string
	Step              int
	Values            services.OfferForm
	Errors            services.FieldErrors
	Options           services.OfferFormOptions
	EMD               services.EMDSummary
	EMDOverridden     bool
	CanReset          bool
	ApproverRequired  bool
	ExtractionEnabled bool
}

func (d OfferFormData) isLast() bool { return d.Step == len(services.OfferSteps)-1 }

func (d OfferFormData) heading() string {
	if d.Mode == services.ModeEdit {
		return "Edit Offer " + d.OfferNumber
	}
	return "New Offer"
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func toOptions(in []services.SelectOption) []option {
	out := make([]option, 0, len(in))
	for _, o := range in {
		out = append(out, option{Value: o.Value, Label: o.Label})
	}
	return out
}

func optionLabel(opts []services.SelectOption, value string) string {
	for _, o := range opts {
		if o.Value == value {
			return o.Label
		}
	}
	return ""
}

// OfferFormContent renders the form body swapped into #main-content.
func OfferFormContent(d OfferFormData) templ.Component {
	return component(func(b *buf) {
		b.raw(`<section class="offer-form">`)
		b.tag("h1", "", d.heading())

		b.raw(`<ol class="steps">`)
		for i, s := range services.OfferSteps {
			cls := "step"
			switch {
			case i == d.Step:
				cls += " current"
			case i < d.Step:
				cls += " done"
			}
			b.tag("li", cls, s.Title)
		}
		b.raw(`</ol>`)

		b.raw(`<form id="offer-form" method="post" action="/offers/form" hx-post="/offers/form" hx-target="#main-content" hx-disabled-elt="find .form-actions button">`)
		b.raw(`<input type="hidden" name="state"`)
		b.attr("value", d.State)
		b.raw(">")

		if len(d.Errors) > 0 {
			b.raw(`<ul class="error-summary">`)
			for _, l := range d.Errors.Labels() {
				b.tag("li", "", l)
			}
			b.raw(`</ul>`)
		}

		switch d.Step {
		case 0:
			offerDetailsStep(b, d)
		case 1:
			workItemsStep(b, d)
		case 2:
			emdStep(b, d)
		default:
			reviewStep(b, d)
		}

		b.raw(`<div class="form-actions">`)
		if d.Step > 0 {
			b.raw(`<button type="submit" name="action" value="previous" class="btn">Previous</button>`)
		}
		b.raw(`<button type="submit" name="action" value="reset" class="btn"`)
		b.flag("disabled", !d.CanReset)
		b.raw(`>Reset</button>`)
		b.raw(`<button type="submit" name="action" value="save_draft" class="btn">Save Draft</button>`)
		if d.isLast() {
			b.raw(`<button type="submit" name="action" value="submit" class="btn btn-primary">Submit for Approval</button>`)
		} else {
			b.raw(`<button type="submit" name="action" value="next" class="btn btn-primary">Next</button>`)
		}
		b.raw(`</div></form></section>`)
	})
}

// OfferFormPage renders the form inside the application shell.
func OfferFormPage(d OfferFormData, header HeaderData, sidebar SidebarData) templ.Component {
	return Page(d.heading(), header, sidebar, OfferFormContent(d))
}

func offerDetailsStep(b *buf, d OfferFormData) {
	b.raw(`<fieldset><legend>Offer Details</legend>`)
	textInput(b, "Offer Title", "text", "title", d.Values.Title, d.Errors, "Title")
	selectInput(b, "Tender", "tender_id", d.Values.TenderID, "Select tender", toOptions(d.Options.Tenders), d.Errors, "TenderID")
	selectInput(b, "Customer", "customer_id", d.Values.CustomerID, "Select customer", toOptions(d.Options.Customers), d.Errors, "CustomerID")
	textInput(b, "Offer Date", "date", "offer_date", d.Values.OfferDate, d.Errors, "OfferDate")
	b.raw(`</fieldset>`)
}

func workItemsStep(b *buf, d OfferFormData) {
	b.raw(`<fieldset><legend>Work Items</legend>`)
	fieldError(b, d.Errors, "WorkItems")

	b.raw(`<table class="work-items"><thead><tr>`)
	for _, h := range []string{"#", "Description", "Basic Rate", "Unit", "Quantity", "Tax %", "Line Value", ""} {
		b.tag("th", "", h)
	}
	b.raw(`</tr></thead><tbody>`)

	for i, it := range d.Values.WorkItems {
		prefix := "WorkItems[" + itoa(i) + "]."
		b.raw(`<tr`)
		b.attr("data-key", it.Key)
		b.raw(`>`)
		b.tag("td", "", itoa(i+1))

		b.raw(`<td><input type="hidden" name="item_key"`)
		b.attr("value", it.Key)
		b.raw(`><input type="text" name="item_description"`)
		b.attr("value", it.Description)
		b.raw(`>`)
		fieldError(b, d.Errors, prefix+"Description")
		b.raw(`</td>`)

		b.raw(`<td><input type="text" inputmode="decimal" name="item_basic_rate" hx-post="/offers/form" hx-trigger="change" hx-vals='{"action":"recalc"}'`)
		b.attr("value", num(it.BasicRate))
		b.raw(`>`)
		fieldError(b, d.Errors, prefix+"BasicRate")
		b.raw(`</td>`)

		b.raw(`<td><select name="item_unit"><option value=""></option>`)
		for _, u := range services.UnitOptions {
			b.raw(`<option`)
			b.attr("value", u)
			b.flag("selected", u == it.Unit)
			b.raw(`>`)
			b.text(u)
			b.raw(`</option>`)
		}
		b.raw(`</select></td>`)

		qty := ""
		if it.Quantity != nil {
			qty = num(*it.Quantity)
		}
		b.raw(`<td><input type="text" inputmode="decimal" name="item_quantity" placeholder="rate only" hx-post="/offers/form" hx-trigger="change" hx-vals='{"action":"recalc"}'`)
		b.attr("value", qty)
		b.raw(`>`)
		fieldError(b, d.Errors, prefix+"Quantity")
		b.raw(`</td>`)

		b.raw(`<td><select name="item_tax_rate" hx-post="/offers/form" hx-trigger="change" hx-vals='{"action":"recalc"}'>`)
		known := false
		for _, r := range services.TaxRateOptions {
			known = known || r == it.TaxRate
			b.raw(`<option`)
			b.attr("value", num(r))
			b.flag("selected", r == it.TaxRate)
			b.raw(`>`)
			b.text(num(r) + "%")
			b.raw(`</option>`)
		}
		if !known {
			b.raw(`<option selected`)
			b.attr("value", num(it.TaxRate))
			b.raw(`>`)
			b.text(num(it.TaxRate) + "%")
			b.raw(`</option>`)
		}
		b.raw(`</select>`)
		fieldError(b, d.Errors, prefix+"TaxRate")
		b.raw(`</td>`)

		b.tag("td", "amount", services.FormatINR(services.LineValue(it)))
		b.raw(`<td><button type="submit" name="action" class="btn-link"`)
		b.attr("value", "remove_item:"+it.Key)
		b.raw(`>Remove</button></td></tr>`)
	}
	b.raw(`</tbody>`)

	totals := services.CalcOfferTotals(d.Values.WorkItems)
	b.raw(`<tfoot>`)
	for _, row := range []struct{ label, value string }{
		{"Before Tax", services.FormatINR(totals.BeforeTax)},
		{"Tax", services.FormatINR(totals.Tax)},
		{"Total", services.FormatINR(totals.Total)},
	} {
		b.raw(`<tr><td colspan="6" class="label">`)
		b.text(row.label)
		b.raw(`</td>`)
		b.tag("td", "amount", row.value)
		b.raw(`<td></td></tr>`)
	}
	b.raw(`</tfoot></table>`)
	b.raw(`<button type="submit" name="action" value="add_item" class="btn">Add Item</button>`)
	b.raw(`</fieldset>`)
}

func emdStep(b *buf, d OfferFormData) {
	b.raw(`<fieldset><legend>Earnest Money Deposit</legend>`)

	b.raw(`<dl class="emd-hints">`)
	b.tag("dt", "", "Offer Total")
	b.tag("dd", "", services.FormatINR(d.EMD.Total))
	b.tag("dt", "", "Suggested ("+num(d.EMD.Percent)+"%)")
	b.tag("dd", "", services.FormatINR(d.EMD.Suggested))
	b.tag("dt", "", "Maximum (5%)")
	b.tag("dd", "", services.FormatINR(d.EMD.Max))
	b.raw(`</dl>`)

	textInput(b, "EMD Amount", "text", "emd_amount", num(d.Values.EMD.Amount), d.Errors, "EMD.Amount")
	if d.EMD.ExceedsMax(d.Values.EMD.Amount) {
		b.tag("p", "hint warning", "Amount is above the usual 5% ceiling")
	}
	if d.EMDOverridden {
		b.raw(`<p class="hint">Amount entered manually. <button type="submit" name="action" value="use_suggested_emd" class="btn-link">Use suggested amount</button></p>`)
	}

	modes := make([]option, 0, len(services.PaymentModes))
	for _, m := range services.PaymentModes {
		modes = append(modes, option{Value: m.Code, Label: m.Label})
	}
	selectInput(b, "Payment Mode", "emd_payment_mode", d.Values.EMD.PaymentMode, "Select mode", modes, d.Errors, "EMD.PaymentMode")
	textInput(b, "Validity (days)", "number", "emd_validity_days", itoa(d.Values.EMD.ValidityDays), d.Errors, "EMD.ValidityDays")
	textInput(b, "Bank Name", "text", "emd_bank_name", d.Values.EMD.BankName, d.Errors, "EMD.BankName")
	textInput(b, "Instrument Number", "text", "emd_instrument_no", d.Values.EMD.InstrumentNo, d.Errors, "EMD.InstrumentNo")
	textInput(b, "Instrument Date", "date", "emd_instrument_date", d.Values.EMD.InstrumentDate, d.Errors, "EMD.InstrumentDate")
	textInput(b, "Expiry Date", "date", "emd_expiry_date", d.Values.EMD.ExpiryDate, d.Errors, "EMD.ExpiryDate")
	textArea(b, "EMD Remarks", "emd_remarks", d.Values.EMD.Remarks, d.Errors, "EMD.Remarks")

	if d.ExtractionEnabled {
		b.raw(`<div class="upload"><label class="field"><span class="field-label">Read from document</span>`)
		b.raw(`<input type="file" name="document" accept=".pdf,.png,.jpg,.jpeg"></label>`)
		b.raw(`<button type="button" class="btn" hx-post="/offers/form/extract" hx-encoding="multipart/form-data" hx-include="#offer-form" hx-target="#main-content">Extract Details</button></div>`)
	}
	b.raw(`</fieldset>`)
}

func reviewStep(b *buf, d OfferFormData) {
	v := d.Values
	totals := services.CalcOfferTotals(v.WorkItems)

	b.raw(`<fieldset><legend>Review</legend><dl class="review">`)
	for _, row := range []struct{ label, value string }{
		{"Title", v.Title},
		{"Tender", optionLabel(d.Options.Tenders, v.TenderID)},
		{"Customer", optionLabel(d.Options.Customers, v.CustomerID)},
		{"Offer Date", v.OfferDate},
		{"Work Items", itoa(len(v.WorkItems))},
		{"Offer Total", services.FormatINR(totals.Total)},
		{"EMD", services.FormatINRFloat(v.EMD.Amount) + " " + services.PaymentModeLabel(v.EMD.PaymentMode)},
	} {
		b.tag("dt", "", row.label)
		b.tag("dd", "", row.value)
	}
	b.raw(`</dl>`)

	label := "Approver"
	if d.ApproverRequired {
		label += " *"
	}
	selectInput(b, label, "approver", v.Approver, "Select approver", toOptions(d.Options.Approvers), d.Errors, "Approver")
	textArea(b, "Remarks", "remarks", v.Remarks, d.Errors, "Remarks")
	b.raw(`</fieldset>`)
}
