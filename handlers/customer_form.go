package handlers

import (
	"log"
	"net/http"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tendertrack/services"
	"tendertrack/templates"
)

func renderCustomerForm(e *core.RequestEvent, data templates.CustomerFormData) error {
	var component templ.Component
	if e.Request.Header.Get("HX-Request") == "true" {
		component = templates.CustomerFormContent(data)
	} else {
		component = templates.CustomerFormPage(data, GetHeaderData(e.Request), GetSidebarData(e.Request))
	}
	return component.Render(e.Request.Context(), e.Response)
}

func customerInputFromForm(e *core.RequestEvent) services.CustomerInput {
	return services.CustomerInput{
		Name:          e.Request.FormValue("name"),
		ContactPerson: e.Request.FormValue("contact_person"),
		Phone:         e.Request.FormValue("phone"),
		Email:         e.Request.FormValue("email"),
		GSTIN:         e.Request.FormValue("gstin"),
		PAN:           e.Request.FormValue("pan"),
		Address:       e.Request.FormValue("address"),
		City:          e.Request.FormValue("city"),
		State:         e.Request.FormValue("state"),
		PinCode:       e.Request.FormValue("pin_code"),
	}
}

// HandleCustomerNew renders an empty customer form.
func HandleCustomerNew(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return renderCustomerForm(e, templates.CustomerFormData{})
	}
}

// HandleCustomerCreate validates and saves a new customer.
func HandleCustomerCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		in := customerInputFromForm(e)
		_, errs, err := services.CreateCustomer(app, in)
		if err != nil {
			log.Printf("customer_form: could not create customer: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		if len(errs) > 0 {
			in.Normalize()
			return renderCustomerForm(e, templates.CustomerFormData{Input: in, Errors: errs})
		}

		SetToast(e, "success", "Customer created")
		return redirect(e, "/customers")
	}
}

// HandleCustomerEdit renders the form for an existing customer.
func HandleCustomerEdit(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		c, err := services.LoadCustomer(app, id)
		if err != nil {
			return ErrorToast(e, http.StatusNotFound, "Customer not found")
		}
		return renderCustomerForm(e, templates.CustomerFormData{ID: c.ID, Input: c.CustomerInput})
	}
}

// HandleCustomerUpdate validates and saves changes to a customer.
func HandleCustomerUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		in := customerInputFromForm(e)
		errs, err := services.UpdateCustomer(app, id, in)
		if err != nil {
			if msg := services.UserMessage(err, ""); msg != "" {
				return ErrorToast(e, http.StatusNotFound, msg)
			}
			log.Printf("customer_form: could not update customer %s: %v", id, err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		if len(errs) > 0 {
			in.Normalize()
			return renderCustomerForm(e, templates.CustomerFormData{ID: id, Input: in, Errors: errs})
		}

		SetToast(e, "success", "Customer updated")
		return redirect(e, "/customers")
	}
}

// HandleCustomerDelete removes a customer that no tender or offer uses.
func HandleCustomerDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if err := services.DeleteCustomer(app, id); err != nil {
			log.Printf("customer_form: could not delete customer %s: %v", id, err)
			return ErrorToast(e, http.StatusConflict, services.UserMessage(err, "Something went wrong. Please try again."))
		}

		SetToast(e, "success", "Customer deleted")
		return redirect(e, "/customers")
	}
}
