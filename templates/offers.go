package templates

import (
	"net/url"

	"github.com/a-h/templ"

	"tendertrack/services"
)

// OfferListData is one page of the offer register.
type OfferListData struct {
	List   *services.OfferList
	Params services.ListParams
}

func (d OfferListData) query(sortBy string) string {
	q := url.Values{}
	if d.Params.Search != "" {
		q.Set("search", d.Params.Search)
	}
	if d.Params.Status != "" {
		q.Set("status", d.Params.Status)
	}
	if sortBy != "" {
		order := "asc"
		if sortBy == d.Params.SortBy && d.Params.SortOrder == "asc" {
			order = "desc"
		}
		q.Set("sort_by", sortBy)
		q.Set("sort_order", order)
	} else {
		q.Set("sort_by", d.Params.SortBy)
		q.Set("sort_order", d.Params.SortOrder)
	}
	return "/offers?" + q.Encode()
}

// OfferListContent renders the offer register.
func OfferListContent(d OfferListData) templ.Component {
	return component(func(b *buf) {
		b.raw(`<section class="offer-list"><div class="page-head">`)
		b.tag("h1", "", "Offers")
		b.raw(`<a class="btn btn-primary" href="/offers/new">New Offer</a>`)
		b.raw(`<a class="btn"`)
		export := url.Values{"search": {d.Params.Search}, "status": {d.Params.Status}}
		b.attr("href", "/offers/export?"+export.Encode())
		b.raw(`>Export Register</a></div>`)

		b.raw(`<form class="filters" method="get" action="/offers" hx-get="/offers" hx-target="#main-content" hx-push-url="true">`)
		b.raw(`<input type="search" name="search" placeholder="Search title or offer number"`)
		b.attr("value", d.Params.Search)
		b.raw(`><select name="status"><option value="">All statuses</option>`)
		for _, s := range services.OfferStatuses {
			b.raw(`<option`)
			b.attr("value", string(s))
			b.flag("selected", string(s) == d.Params.Status)
			b.raw(`>`)
			b.text(s.Label())
			b.raw(`</option>`)
		}
		b.raw(`</select><button type="submit" class="btn">Filter</button></form>`)

		if len(d.List.Items) == 0 {
			b.tag("p", "empty", "No offers found")
			b.raw(`</section>`)
			return
		}

		b.raw(`<table class="data"><thead><tr>`)
		b.tag("th", "", "#")
		for _, col := range []struct{ key, label string }{
			{"offer_number", "Offer Number"},
			{"title", "Title"},
			{"", "Tender"},
			{"", "Customer"},
			{"offer_date", "Date"},
			{"status", "Status"},
			{"", "Total"},
			{"", "EMD"},
		} {
			if col.key == "" {
				b.tag("th", "", col.label)
				continue
			}
			b.raw(`<th><a`)
			href := d.query(col.key)
			b.attr("href", href)
			b.attr("hx-get", href)
			b.raw(` hx-target="#main-content" hx-push-url="true">`)
			b.text(col.label)
			b.raw(`</a></th>`)
		}
		b.raw(`</tr></thead><tbody>`)
		for _, it := range d.List.Items {
			b.raw(`<tr>`)
			b.tag("td", "", itoa(it.Index))
			b.raw(`<td><a`)
			b.attr("href", "/offers/"+it.ID)
			b.raw(`>`)
			b.text(it.OfferNumber)
			b.raw(`</a></td>`)
			b.tag("td", "", it.Title)
			b.tag("td", "", it.TenderNumber)
			b.tag("td", "", it.CustomerName)
			b.tag("td", "", it.OfferDate)
			b.raw(`<td>`)
			statusBadge(b, string(it.Status), it.Status.Label())
			b.raw(`</td>`)
			b.tag("td", "amount", services.FormatINR(it.Total))
			b.tag("td", "amount", services.FormatINRFloat(it.EMDAmount))
			b.raw(`</tr>`)
		}
		b.raw(`</tbody></table>`)
		pager(b, d.query(""), d.List.Pagination)
		b.raw(`</section>`)
	})
}

// OfferListPage renders the register inside the application shell.
func OfferListPage(d OfferListData, header HeaderData, sidebar SidebarData) templ.Component {
	return Page("Offers", header, sidebar, OfferListContent(d))
}

// OfferViewData is a read-only offer with the actions the user may take.
type OfferViewData struct {
	Offer         *services.StoredOffer
	EMD           services.EMDSummary
	AmountInWords string
	CanEdit       bool
	CanDecide     bool
}

// OfferViewContent renders one offer.
func OfferViewContent(d OfferViewData) templ.Component {
	return component(func(b *buf) {
		o := d.Offer
		totals := o.Totals()

		b.raw(`<section class="offer-view"><div class="page-head">`)
		b.tag("h1", "", o.OfferNumber)
		statusBadge(b, string(o.Status), o.Status.Label())
		b.raw(`<div class="actions">`)
		if d.CanEdit {
			b.raw(`<a class="btn"`)
			b.attr("href", "/offers/"+o.ID+"/edit")
			b.raw(`>Edit</a><button class="btn btn-danger" hx-confirm="Delete this offer?"`)
			b.attr("hx-delete", "/offers/"+o.ID)
			b.raw(`>Delete</button>`)
		}
		b.raw(`<a class="btn"`)
		b.attr("href", "/offers/"+o.ID+"/pdf")
		b.raw(`>Download PDF</a></div></div>`)

		b.raw(`<dl class="details">`)
		for _, row := range []struct{ label, value string }{
			{"Title", o.Form.Title},
			{"Tender", o.TenderNumber + " " + o.TenderTitle},
			{"Customer", o.CustomerName},
			{"Offer Date", o.Form.OfferDate},
			{"Approver", o.ApproverName},
			{"Remarks", o.Form.Remarks},
		} {
			if row.value == "" {
				continue
			}
			b.tag("dt", "", row.label)
			b.tag("dd", "", row.value)
		}
		b.raw(`</dl>`)

		b.raw(`<table class="data work-items"><thead><tr>`)
		for _, h := range []string{"#", "Description", "Rate", "Unit", "Qty", "Tax %", "Before Tax", "Tax", "Line Value"} {
			b.tag("th", "", h)
		}
		b.raw(`</tr></thead><tbody>`)
		for i, it := range o.Form.WorkItems {
			line := services.CalcLine(it)
			qty := ""
			if it.Quantity != nil {
				qty = num(*it.Quantity)
			}
			b.raw(`<tr>`)
			b.tag("td", "", itoa(i+1))
			b.tag("td", "", it.Description)
			b.tag("td", "amount", services.FormatINRFloat(it.BasicRate))
			b.tag("td", "", it.Unit)
			b.tag("td", "", qty)
			b.tag("td", "", num(it.TaxRate))
			b.tag("td", "amount", services.FormatINR(line.BeforeTax))
			b.tag("td", "amount", services.FormatINR(line.TaxAmount))
			b.tag("td", "amount", services.FormatINR(line.Total))
			b.raw(`</tr>`)
		}
		b.raw(`</tbody><tfoot><tr><td colspan="6">Total</td>`)
		b.tag("td", "amount", services.FormatINR(totals.BeforeTax))
		b.tag("td", "amount", services.FormatINR(totals.Tax))
		b.tag("td", "amount total", services.FormatINR(totals.Total))
		b.raw(`</tr></tfoot></table>`)
		b.tag("p", "amount-words", d.AmountInWords)

		emd := o.Form.EMD
		b.raw(`<h2>EMD</h2><dl class="details">`)
		for _, row := range []struct{ label, value string }{
			{"Amount", services.FormatINRFloat(emd.Amount)},
			{"Suggested", services.FormatINR(d.EMD.Suggested)},
			{"Payment Mode", services.PaymentModeLabel(emd.PaymentMode)},
			{"Validity", itoa(emd.ValidityDays) + " days"},
			{"Bank", emd.BankName},
			{"Instrument No.", emd.InstrumentNo},
			{"Instrument Date", emd.InstrumentDate},
			{"Expiry Date", emd.ExpiryDate},
			{"Remarks", emd.Remarks},
		} {
			if row.value == "" {
				continue
			}
			b.tag("dt", "", row.label)
			b.tag("dd", "", row.value)
		}
		b.raw(`</dl>`)

		if o.DecidedBy != "" {
			b.raw(`<div class="decision">`)
			b.text(o.Status.Label() + " by " + o.DecidedBy)
			if o.DecisionNote != "" {
				b.raw(`: `)
				b.text(o.DecisionNote)
			}
			b.raw(`</div>`)
		}

		if d.CanDecide {
			b.raw(`<form class="decision-form" method="post"`)
			b.attr("action", "/offers/"+o.ID+"/decision")
			b.attr("hx-post", "/offers/"+o.ID+"/decision")
			b.raw(` hx-target="#main-content">`)
			b.raw(`<textarea name="note" placeholder="Note (required when rejecting)"></textarea>`)
			b.raw(`<button type="submit" name="decision" value="APPROVED" class="btn btn-primary">Approve</button>`)
			b.raw(`<button type="submit" name="decision" value="REJECTED" class="btn btn-danger">Reject</button>`)
			b.raw(`</form>`)
		}
		b.raw(`</section>`)
	})
}

// OfferViewPage renders one offer inside the application shell.
func OfferViewPage(d OfferViewData, header HeaderData, sidebar SidebarData) templ.Component {
	return Page(d.Offer.OfferNumber, header, sidebar, OfferViewContent(d))
}
