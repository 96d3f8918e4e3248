package templates

import (
	"github.com/a-h/templ"

	"tendertrack/services"
)

// DashboardContent renders the landing page figures.
func DashboardContent(d *services.DashboardData) templ.Component {
	return component(func(b *buf) {
		b.raw(`<section class="dashboard">`)
		b.tag("h1", "", "Dashboard")

		b.raw(`<div class="cards">`)
		card := func(label, value string) {
			b.raw(`<div class="card">`)
			b.tag("span", "card-label", label)
			b.tag("strong", "card-value", value)
			b.raw(`</div>`)
		}
		card("Offers", itoa(d.TotalOffers))
		card("Pipeline Value", services.FormatINR(d.PipelineValue))
		card("EMD Committed", services.FormatINR(d.EMDCommitted))
		card("EMD Suggested", services.FormatINR(d.EMDSuggested))
		card("Tenders", itoa(d.TenderCount))
		card("Customers", itoa(d.CustomerCount))
		if d.AwaitingMyVote > 0 {
			card("Awaiting Your Approval", itoa(d.AwaitingMyVote))
		}
		b.raw(`</div>`)

		b.raw(`<table class="data status-summary"><thead><tr><th>Status</th><th>Offers</th><th>Value</th></tr></thead><tbody>`)
		for _, s := range d.Statuses {
			b.raw(`<tr><td><a`)
			b.attr("href", "/offers?status="+string(s.Status))
			b.raw(`>`)
			statusBadge(b, string(s.Status), s.Status.Label())
			b.raw(`</a></td>`)
			b.tag("td", "", itoa(s.Count))
			b.tag("td", "amount", services.FormatINR(s.Value))
			b.raw(`</tr>`)
		}
		b.raw(`</tbody></table>`)

		b.tag("h2", "", "Recent Offers")
		if len(d.RecentOffers) == 0 {
			b.raw(`<p class="empty">No offers yet. <a href="/offers/new">Create the first one</a></p>`)
		} else {
			b.raw(`<ul class="recent">`)
			for _, o := range d.RecentOffers {
				b.raw(`<li><a`)
				b.attr("href", "/offers/"+o.ID)
				b.raw(`>`)
				b.text(o.OfferNumber)
				b.raw(`</a> `)
				b.text(o.Title + " · " + services.FormatINR(o.Total))
				b.raw(` `)
				statusBadge(b, string(o.Status), o.Status.Label())
				b.raw(`</li>`)
			}
			b.raw(`</ul>`)
		}
		b.raw(`</section>`)
	})
}

// DashboardPage renders the dashboard inside the application shell.
func DashboardPage(d *services.DashboardData, header HeaderData, sidebar SidebarData) templ.Component {
	return Page("Dashboard", header, sidebar, DashboardContent(d))
}
