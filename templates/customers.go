package templates

import (
	"github.com/a-h/templ"

	"tendertrack/services"
)

// CustomerListContent renders the customer directory.
func CustomerListContent(list *services.CustomerList) templ.Component {
	return component(func(b *buf) {
		b.raw(`<section class="customer-list"><div class="page-head">`)
		b.tag("h1", "", "Customers")
		b.raw(`<a class="btn btn-primary" href="/customers/new">New Customer</a></div>`)

		b.raw(`<form class="filters" method="get" action="/customers" hx-get="/customers" hx-target="#main-content" hx-push-url="true">`)
		b.raw(`<input type="search" name="q" placeholder="Search name, city or GSTIN"`)
		b.attr("value", list.Search)
		b.raw(`><button type="submit" class="btn">Search</button></form>`)

		if len(list.Items) == 0 {
			b.tag("p", "empty", "No customers found")
			b.raw(`</section>`)
			return
		}
		b.raw(`<table class="data"><thead><tr>`)
		for _, h := range []string{"Name", "City", "State", "GSTIN", "Contact", "Phone", "Offers", ""} {
			b.tag("th", "", h)
		}
		b.raw(`</tr></thead><tbody>`)
		for _, c := range list.Items {
			b.raw(`<tr>`)
			b.tag("td", "", c.Name)
			b.tag("td", "", c.City)
			b.tag("td", "", c.State)
			b.tag("td", "", c.GSTIN)
			b.tag("td", "", c.ContactPerson)
			b.tag("td", "", c.Phone)
			b.tag("td", "", itoa(c.OfferCount))
			b.raw(`<td><a class="btn-link"`)
			b.attr("href", "/customers/"+c.ID+"/edit")
			b.raw(`>Edit</a>`)
			if c.OfferCount == 0 {
				b.raw(` <button class="btn-link danger" hx-confirm="Delete this customer?" hx-target="#main-content"`)
				b.attr("hx-delete", "/customers/"+c.ID)
				b.raw(`>Delete</button>`)
			}
			b.raw(`</td></tr>`)
		}
		b.raw(`</tbody></table></section>`)
	})
}

// CustomerListPage renders the directory inside the application shell.
func CustomerListPage(list *services.CustomerList, header HeaderData, sidebar SidebarData) templ.Component {
	return Page("Customers", header, sidebar, CustomerListContent(list))
}

// CustomerFormData is the create/edit customer form.
type CustomerFormData struct {
	ID     string
	Input  services.CustomerInput
	Errors services.FieldErrors
}

func (d CustomerFormData) action() string {
	if d.ID == "" {
		return "/customers"
	}
	return "/customers/" + d.ID
}

func (d CustomerFormData) heading() string {
	if d.ID == "" {
		return "New Customer"
	}
	return "Edit Customer"
}

// CustomerFormContent renders the customer form.
func CustomerFormContent(d CustomerFormData) templ.Component {
	return component(func(b *buf) {
		in := d.Input
		b.raw(`<section class="customer-form">`)
		b.tag("h1", "", d.heading())
		b.raw(`<form method="post"`)
		b.attr("action", d.action())
		b.attr("hx-post", d.action())
		b.raw(` hx-target="#main-content">`)

		b.raw(`<fieldset><legend>Basic Information</legend>`)
		textInput(b, "Customer Name *", "text", "name", in.Name, d.Errors, "Name")
		textInput(b, "Contact Person", "text", "contact_person", in.ContactPerson, d.Errors, "ContactPerson")
		textInput(b, "Phone", "tel", "phone", in.Phone, d.Errors, "Phone")
		textInput(b, "Email", "email", "email", in.Email, d.Errors, "Email")
		b.raw(`</fieldset><fieldset><legend>Tax Details</legend>`)
		textInput(b, "GSTIN", "text", "gstin", in.GSTIN, d.Errors, "GSTIN")
		textInput(b, "PAN", "text", "pan", in.PAN, d.Errors, "PAN")
		b.raw(`</fieldset><fieldset><legend>Address</legend>`)
		textArea(b, "Address", "address", in.Address, d.Errors, "Address")
		textInput(b, "City", "text", "city", in.City, d.Errors, "City")
		states := make([]option, 0, len(services.IndianStates))
		for _, s := range services.IndianStates {
			states = append(states, option{Value: s, Label: s})
		}
		selectInput(b, "State", "state", in.State, "Select state", states, d.Errors, "State")
		textInput(b, "PIN Code", "text", "pin_code", in.PinCode, d.Errors, "PinCode")
		b.raw(`</fieldset>`)

		b.raw(`<div class="form-actions"><a class="btn" href="/customers">Cancel</a><button type="submit" class="btn btn-primary">Save</button></div>`)
		b.raw(`</form></section>`)
	})
}

// CustomerFormPage renders the form inside the application shell.
func CustomerFormPage(d CustomerFormData, header HeaderData, sidebar SidebarData) templ.Component {
	return Page(d.heading(), header, sidebar, CustomerFormContent(d))
}
