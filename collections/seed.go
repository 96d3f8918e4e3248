package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

type customerDef struct {
	name          string
	contactPerson string
	phone         string
	email         string
	gstin         string
	pan           string
	address       string
	city          string
	state         string
	pinCode       string
}

type tenderDef struct {
	tenderNumber   string
	title          string
	customer       int // index into seedCustomers
	estimatedValue float64
	emdAmount      float64
	dueDate        string
}

type workItemDef struct {
	description string
	basicRate   float64
	unit        string
	quantity    float64 // 0 means priced per rate only
	taxRate     float64
}

type offerDef struct {
	offerNumber string
	title       string
	tender      int // index into seedTenders
	offerDate   string
	status      string
	emdAmount   float64
	paymentMode string
	validity    int
	items       []workItemDef
}

var seedCustomers = []customerDef{
	{
		name:          "Maharashtra State Electricity Distribution Co. Ltd.",
		contactPerson: "S. Kulkarni",
		phone:         "9820012345",
		email:         "procurement@mahadiscom.example",
		gstin:         "27AAECM2933K1ZB",
		pan:           "AAECM2933K",
		address:       "Prakashgad, Bandra East",
		city:          "Mumbai",
		state:         "Maharashtra",
		pinCode:       "400051",
	},
	{
		name:          "Odisha Adarsha Vidyalaya Sangathan",
		contactPerson: "P. Mohanty",
		phone:         "9437012345",
		email:         "tenders@oavs.example",
		gstin:         "21AAATO1234F1Z5",
		pan:           "AAATO1234F",
		address:       "N-1/9, Nayapalli",
		city:          "Bhubaneswar",
		state:         "Odisha",
		pinCode:       "751015",
	},
}

var seedTenders = []tenderDef{
	{"MSEDCL/T/2026/114", "Supply and installation of distribution transformers", 0, 2500000, 50000, "2026-06-30"},
	{"OAVS/SC/2026/07", "Smart classroom equipment for 50 schools", 1, 9800000, 196000, "2026-07-15"},
}

var seedOffers = []offerDef{
	{
		offerNumber: "OFR-MSEDCL-T-2026-114-26-27-001",
		title:       "Transformer supply offer",
		tender:      0,
		offerDate:   "2026-05-04",
		status:      "DRAFT",
		emdAmount:   4980,
		paymentMode: "DD",
		validity:    90,
		items: []workItemDef{
			{"Distribution transformer 250 kVA", 100000, "Nos", 0, 18},
			{"Installation and commissioning", 50000, "Lot", 0, 0},
			{"Earthing kit", 25000, "Set", 0, 12},
			{"Transportation", 53000, "Trip", 0, 0},
		},
	},
}

// Seed populates customers, tenders and a sample draft offer. It is safe
// to call on every startup because it returns early if any customer
// already exists.
func Seed(app *pocketbase.PocketBase) error {
	customersCol, err := app.FindCollectionByNameOrId("customers")
	if err != nil {
		return fmt.Errorf("seed: could not find customers collection: %w", err)
	}
	existing, err := app.FindAllRecords(customersCol)
	if err != nil {
		return fmt.Errorf("seed: could not query customers: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	log.Println("seed: customers collection is empty – inserting seed data …")

	tendersCol, err := app.FindCollectionByNameOrId("tenders")
	if err != nil {
		return fmt.Errorf("seed: could not find tenders collection: %w", err)
	}
	offersCol, err := app.FindCollectionByNameOrId("offers")
	if err != nil {
		return fmt.Errorf("seed: could not find offers collection: %w", err)
	}
	itemsCol, err := app.FindCollectionByNameOrId("offer_work_items")
	if err != nil {
		return fmt.Errorf("seed: could not find offer_work_items collection: %w", err)
	}

	return app.RunInTransaction(func(txApp core.App) error {
		customerIDs := make([]string, len(seedCustomers))
		for i, c := range seedCustomers {
			rec := core.NewRecord(customersCol)
			rec.Set("name", c.name)
			rec.Set("contact_person", c.contactPerson)
			rec.Set("phone", c.phone)
			rec.Set("email", c.email)
			rec.Set("gstin", c.gstin)
			rec.Set("pan", c.pan)
			rec.Set("address", c.address)
			rec.Set("city", c.city)
			rec.Set("state", c.state)
			rec.Set("pin_code", c.pinCode)
			if err := txApp.Save(rec); err != nil {
				return fmt.Errorf("seed: customer %q: %w", c.name, err)
			}
			customerIDs[i] = rec.Id
		}

		tenderIDs := make([]string, len(seedTenders))
		for i, t := range seedTenders {
			rec := core.NewRecord(tendersCol)
			rec.Set("tender_number", t.tenderNumber)
			rec.Set("title", t.title)
			rec.Set("customer", customerIDs[t.customer])
			rec.Set("estimated_value", t.estimatedValue)
			rec.Set("emd_amount", t.emdAmount)
			rec.Set("due_date", t.dueDate)
			if err := txApp.Save(rec); err != nil {
				return fmt.Errorf("seed: tender %q: %w", t.tenderNumber, err)
			}
			tenderIDs[i] = rec.Id
		}

		for _, o := range seedOffers {
			rec := core.NewRecord(offersCol)
			rec.Set("offer_number", o.offerNumber)
			rec.Set("title", o.title)
			rec.Set("tender", tenderIDs[o.tender])
			rec.Set("customer", customerIDs[seedTenders[o.tender].customer])
			rec.Set("offer_date", o.offerDate)
			rec.Set("status", o.status)
			rec.Set("emd_amount", o.emdAmount)
			rec.Set("emd_payment_mode", o.paymentMode)
			rec.Set("emd_validity_days", o.validity)
			if err := txApp.Save(rec); err != nil {
				return fmt.Errorf("seed: offer %q: %w", o.offerNumber, err)
			}

			for i, it := range o.items {
				item := core.NewRecord(itemsCol)
				item.Set("offer", rec.Id)
				item.Set("sort_order", i+1)
				item.Set("description", it.description)
				item.Set("basic_rate", it.basicRate)
				item.Set("unit", it.unit)
				item.Set("has_quantity", it.quantity > 0)
				item.Set("quantity", it.quantity)
				item.Set("tax_rate", it.taxRate)
				if err := txApp.Save(item); err != nil {
					return fmt.Errorf("seed: offer item %q: %w", it.description, err)
				}
			}
		}

		log.Printf("seed: inserted %d customers, %d tenders, %d offers\n",
			len(seedCustomers), len(seedTenders), len(seedOffers))
		return nil
	})
}
