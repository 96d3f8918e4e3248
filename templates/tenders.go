package templates

import (
	"encoding/json"
	"net/url"

	"github.com/a-h/templ"

	"tendertrack/services"
)

// TenderListData is one page of tenders.
type TenderListData struct {
	List   *services.TenderList
	Params services.ListParams
}

// TenderListContent renders the tender list.
func TenderListContent(d TenderListData) templ.Component {
	return component(func(b *buf) {
		b.raw(`<section class="tender-list"><div class="page-head">`)
		b.tag("h1", "", "Tenders")
		b.raw(`<a class="btn" href="/tenders/import">Import Tenders</a></div>`)

		b.raw(`<form class="filters" method="get" action="/tenders" hx-get="/tenders" hx-target="#main-content" hx-push-url="true">`)
		b.raw(`<input type="search" name="search" placeholder="Search tender number or title"`)
		b.attr("value", d.Params.Search)
		b.raw(`><button type="submit" class="btn">Search</button></form>`)

		if len(d.List.Items) == 0 {
			b.tag("p", "empty", "No tenders found")
			b.raw(`</section>`)
			return
		}

		b.raw(`<table class="data"><thead><tr>`)
		for _, h := range []string{"#", "Tender Number", "Title", "Customer", "Estimated Value", "EMD", "Due Date", ""} {
			b.tag("th", "", h)
		}
		b.raw(`</tr></thead><tbody>`)
		for _, t := range d.List.Items {
			b.raw(`<tr>`)
			b.tag("td", "", itoa(t.Index))
			b.tag("td", "", t.TenderNumber)
			b.tag("td", "", t.Title)
			b.tag("td", "", t.CustomerName)
			b.tag("td", "amount", services.FormatINRFloat(t.EstimatedValue))
			b.tag("td", "amount", services.FormatINRFloat(t.EMDAmount))
			b.tag("td", "", t.DueDate)
			b.raw(`<td><a class="btn-link"`)
			b.attr("href", "/offers/new?tender="+url.QueryEscape(t.ID))
			b.raw(`>Prepare Offer</a></td></tr>`)
		}
		b.raw(`</tbody></table>`)

		q := url.Values{}
		if d.Params.Search != "" {
			q.Set("search", d.Params.Search)
		}
		base := "/tenders"
		if len(q) > 0 {
			base += "?" + q.Encode()
		}
		pager(b, base, d.List.Pagination)
		b.raw(`</section>`)
	})
}

// TenderListPage renders the tender list inside the application shell.
func TenderListPage(d TenderListData, header HeaderData, sidebar SidebarData) templ.Component {
	return Page("Tenders", header, sidebar, TenderListContent(d))
}

// TenderImportData is the upload form and, after an upload, its outcome.
type TenderImportData struct {
	Result *services.BulkImportResult
	Error  string
}

// TenderImportContent renders the bulk import page.
func TenderImportContent(d TenderImportData) templ.Component {
	return component(func(b *buf) {
		b.raw(`<section class="tender-import">`)
		b.tag("h1", "", "Import Tenders")
		b.raw(`<p>Upload an Excel (.xlsx) or CSV file. <a href="/tenders/import/template">Download template</a></p>`)
		b.raw(`<form method="post" action="/tenders/import" enctype="multipart/form-data" hx-post="/tenders/import" hx-encoding="multipart/form-data" hx-target="#main-content" hx-disabled-elt="find button">`)
		b.raw(`<input type="file" name="file" accept=".xlsx,.csv" required>`)
		b.raw(`<button type="submit" class="btn btn-primary">Upload</button></form>`)

		if d.Error != "" {
			b.tag("div", "form-error", d.Error)
		}
		if r := d.Result; r != nil {
			b.raw(`<div class="import-result">`)
			b.tag("h2", "", "Results for "+r.FileName)
			b.raw(`<ul class="counts">`)
			b.tag("li", "", itoa(r.TotalRows)+" rows read")
			b.tag("li", "success", itoa(r.SuccessCount)+" imported")
			b.tag("li", "error", itoa(r.FailureCount)+" failed")
			b.tag("li", "", itoa(r.SkippedCount)+" skipped")
			b.raw(`</ul>`)

			if len(r.Errors) > 0 {
				if payload, err := json.Marshal(r.Errors); err == nil {
					b.raw(`<form method="post" action="/tenders/import/errors"><input type="hidden" name="errors"`)
					b.attr("value", string(payload))
					b.raw(`><button type="submit" class="btn">Download error report</button></form>`)
				}
				b.raw(`<table class="data errors"><thead><tr><th>Row</th><th>Tender Number</th><th>Problem</th></tr></thead><tbody>`)
				for _, e := range r.Errors {
					b.raw(`<tr>`)
					b.tag("td", "", itoa(e.Row))
					b.tag("td", "", e.Identifier)
					b.tag("td", "", e.Message)
					b.raw(`</tr>`)
				}
				b.raw(`</tbody></table>`)
			}
			if len(r.Skipped) > 0 {
				b.raw(`<details><summary>Skipped rows</summary><ul>`)
				for _, s := range r.Skipped {
					b.tag("li", "", "Row "+itoa(s.Row)+": "+s.Message)
				}
				b.raw(`</ul></details>`)
			}
			b.raw(`</div>`)
		}
		b.raw(`</section>`)
	})
}

// TenderImportPage renders the import page inside the application shell.
func TenderImportPage(d TenderImportData, header HeaderData, sidebar SidebarData) templ.Component {
	return Page("Import Tenders", header, sidebar, TenderImportContent(d))
}
