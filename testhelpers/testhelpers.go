// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tendertrack/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// CreateTestCustomer creates a customer record with the given name and returns it.
func CreateTestCustomer(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("customers")
	if err != nil {
		t.Fatalf("failed to find customers collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("city", "Pune")
	record.Set("state", "Maharashtra")
	record.Set("gstin", "27AADCB2230M1ZV")
	record.Set("phone", "9876543210")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test customer: %v", err)
	}

	return record
}

// CreateTestTender creates a tender record for customerID (may be empty).
func CreateTestTender(t *testing.T, app *pocketbase.PocketBase, tenderNumber, customerID string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("tenders")
	if err != nil {
		t.Fatalf("failed to find tenders collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("tender_number", tenderNumber)
	record.Set("title", "Tender "+tenderNumber)
	record.Set("customer", customerID)
	record.Set("estimated_value", 1000000)
	record.Set("due_date", "2026-12-31")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test tender: %v", err)
	}

	return record
}

// CreateTestOffer creates an offer with the given number and status. The
// status is written as given so legacy values can be tested.
func CreateTestOffer(t *testing.T, app *pocketbase.PocketBase, tenderID, customerID, offerNumber, status string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("offers")
	if err != nil {
		t.Fatalf("failed to find offers collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("offer_number", offerNumber)
	record.Set("title", "Offer "+offerNumber)
	record.Set("tender", tenderID)
	record.Set("customer", customerID)
	record.Set("offer_date", "2026-05-04")
	record.Set("status", status)
	record.Set("emd_amount", 2360)
	record.Set("emd_payment_mode", "DD")
	record.Set("emd_validity_days", 90)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test offer: %v", err)
	}

	return record
}

// CreateTestWorkItem adds a work item to offerID. A zero quantity means the
// row is priced per rate only.
func CreateTestWorkItem(t *testing.T, app *pocketbase.PocketBase, offerID string, sortOrder int, description string, basicRate, quantity, taxRate float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("offer_work_items")
	if err != nil {
		t.Fatalf("failed to find offer_work_items collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("offer", offerID)
	record.Set("sort_order", sortOrder)
	record.Set("description", description)
	record.Set("basic_rate", basicRate)
	record.Set("unit", "Nos")
	record.Set("has_quantity", quantity > 0)
	record.Set("quantity", quantity)
	record.Set("tax_rate", taxRate)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test work item: %v", err)
	}

	return record
}

// CreateTestUser creates a user with the given role.
func CreateTestUser(t *testing.T, app *pocketbase.PocketBase, email, name, role string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("users")
	if err != nil {
		t.Fatalf("failed to find users collection: %v", err)
	}

	record := core.NewRecord(col)
	record.SetEmail(email)
	record.SetPassword("test-password-123")
	record.Set("name", name)
	record.Set("role", role)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test user: %v", err)
	}

	return record
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

// AssertHTMLNotContains checks that body contains none of the fragments.
func AssertHTMLNotContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if strings.Contains(body, frag) {
			t.Errorf("expected HTML not to contain %q", frag)
		}
	}
}

// AssertHXRedirect checks that the response has an HX-Redirect header with the expected URL.
func AssertHXRedirect(t *testing.T, headerVal, expectedURL string) {
	t.Helper()

	if headerVal != expectedURL {
		t.Errorf("expected HX-Redirect %q, got %q", expectedURL, headerVal)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
