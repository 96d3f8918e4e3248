package collections_test

import (
	"testing"

	"tendertrack/collections"
	"tendertrack/testhelpers"
)

func TestSeed_CreatesData(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if err := collections.Seed(app); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}

	counts := map[string]int{
		"customers":        2,
		"tenders":          2,
		"offers":           1,
		"offer_work_items": 4,
	}
	for name, want := range counts {
		col, _ := app.FindCollectionByNameOrId(name)
		records, err := app.FindAllRecords(col)
		if err != nil {
			t.Fatalf("query %s error: %v", name, err)
		}
		if len(records) != want {
			t.Errorf("expected %d %s, got %d", want, name, len(records))
		}
	}

	offers, _ := app.FindRecordsByFilter("offers", "status = 'DRAFT'", "", 0, 0, nil)
	if len(offers) != 1 {
		t.Fatalf("expected seeded draft offer, got %d", len(offers))
	}
	if offers[0].GetString("tender") == "" || offers[0].GetString("customer") == "" {
		t.Error("expected seeded offer to reference a tender and customer")
	}
}

func TestSeed_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if err := collections.Seed(app); err != nil {
		t.Fatalf("first Seed() error: %v", err)
	}
	if err := collections.Seed(app); err != nil {
		t.Fatalf("second Seed() error: %v", err)
	}

	col, _ := app.FindCollectionByNameOrId("customers")
	records, _ := app.FindAllRecords(col)
	if len(records) != 2 {
		t.Errorf("expected 2 customers after two seeds, got %d", len(records))
	}
}
