package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// OfferStatusValues are the allowed values of offers.status.
var OfferStatusValues = []string{"DRAFT", "PENDING_APPROVAL", "APPROVED", "REJECTED"}

// UserRoleValues are the allowed values of users.role.
var UserRoleValues = []string{"staff", "approver", "admin"}

// Setup programmatically creates/ensures the customers, tenders, offers and
// offer_work_items collections exist, and adds a role to the users
// collection.
func Setup(app *pocketbase.PocketBase) {
	users := ensureUserRole(app)

	customers := ensureCollection(app, "customers", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "contact_person"})
		c.Fields.Add(&core.TextField{Name: "phone"})
		c.Fields.Add(&core.TextField{Name: "email"})
		c.Fields.Add(&core.TextField{Name: "gstin"})
		c.Fields.Add(&core.TextField{Name: "pan"})
		c.Fields.Add(&core.TextField{Name: "address"})
		c.Fields.Add(&core.TextField{Name: "city"})
		c.Fields.Add(&core.TextField{Name: "state"})
		c.Fields.Add(&core.TextField{Name: "pin_code"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	tenders := ensureCollection(app, "tenders", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "tender_number", Required: true})
		c.Fields.Add(&core.TextField{Name: "title", Required: true})
		c.Fields.Add(&core.RelationField{
			Name:         "customer",
			CollectionId: customers.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.NumberField{Name: "estimated_value"})
		c.Fields.Add(&core.NumberField{Name: "emd_amount"})
		c.Fields.Add(&core.TextField{Name: "due_date"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_tenders_tender_number", true, "tender_number", "")
	})

	offers := ensureCollection(app, "offers", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "offer_number", Required: true})
		c.Fields.Add(&core.TextField{Name: "title", Required: true})
		c.Fields.Add(&core.RelationField{
			Name:         "tender",
			Required:     true,
			CollectionId: tenders.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "customer",
			Required:     true,
			CollectionId: customers.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.TextField{Name: "offer_date"})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    OfferStatusValues,
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "emd_amount"})
		c.Fields.Add(&core.TextField{Name: "emd_payment_mode"})
		c.Fields.Add(&core.NumberField{Name: "emd_validity_days", OnlyInt: true})
		c.Fields.Add(&core.TextField{Name: "emd_bank_name"})
		c.Fields.Add(&core.TextField{Name: "emd_instrument_no"})
		c.Fields.Add(&core.TextField{Name: "emd_instrument_date"})
		c.Fields.Add(&core.TextField{Name: "emd_expiry_date"})
		c.Fields.Add(&core.TextField{Name: "emd_remarks"})
		c.Fields.Add(&core.RelationField{Name: "approver", CollectionId: users.Id, MaxSelect: 1})
		c.Fields.Add(&core.RelationField{Name: "created_by", CollectionId: users.Id, MaxSelect: 1})
		c.Fields.Add(&core.RelationField{Name: "decided_by", CollectionId: users.Id, MaxSelect: 1})
		c.Fields.Add(&core.TextField{Name: "decision_note"})
		c.Fields.Add(&core.TextField{Name: "remarks"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_offers_offer_number", true, "offer_number", "")
	})

	ensureCollection(app, "offer_work_items", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "offer",
			Required:      true,
			CollectionId:  offers.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.NumberField{Name: "sort_order"})
		c.Fields.Add(&core.TextField{Name: "description", Required: true})
		c.Fields.Add(&core.NumberField{Name: "basic_rate"})
		c.Fields.Add(&core.TextField{Name: "unit"})
		c.Fields.Add(&core.BoolField{Name: "has_quantity"})
		c.Fields.Add(&core.NumberField{Name: "quantity"})
		c.Fields.Add(&core.NumberField{Name: "tax_rate"})
	})
}

// ensureUserRole adds the role select to the built-in users collection
// when it is missing and returns the collection.
func ensureUserRole(app *pocketbase.PocketBase) *core.Collection {
	users, err := app.FindCollectionByNameOrId("users")
	if err != nil {
		log.Fatalf("Failed to find users collection: %v", err)
	}
	if users.Fields.GetByName("role") != nil {
		return users
	}

	users.Fields.Add(&core.SelectField{
		Name:      "role",
		Values:    UserRoleValues,
		MaxSelect: 1,
	})
	if err := app.Save(users); err != nil {
		log.Fatalf("Failed to add role to users collection: %v", err)
	}
	fmt.Println("Added role field to users collection")
	return users
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
