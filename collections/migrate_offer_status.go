package collections

import (
	"fmt"
	"log"
	"slices"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// legacyOfferStatuses maps status values written by earlier releases to
// their current equivalents.
var legacyOfferStatuses = map[string]string{
	"draft":     "DRAFT",
	"submitted": "PENDING_APPROVAL",
	"pending":   "PENDING_APPROVAL",
	"approved":  "APPROVED",
	"rejected":  "REJECTED",
}

// MigrateLegacyOfferStatuses rewrites lowercase offer statuses to the
// current upper-case values and narrows offers.status to them.
// Safe to call on every startup -- returns early if nothing to migrate.
func MigrateLegacyOfferStatuses(app *pocketbase.PocketBase) error {
	offersCol, err := app.FindCollectionByNameOrId("offers")
	if err != nil {
		return fmt.Errorf("migrate: could not find offers collection: %w", err)
	}

	status, ok := offersCol.Fields.GetByName("status").(*core.SelectField)
	if !ok {
		return fmt.Errorf("migrate: offers.status is not a select field")
	}

	var legacy []string
	for _, v := range status.Values {
		if !slices.Contains(OfferStatusValues, v) {
			legacy = append(legacy, v)
		}
	}
	if len(legacy) == 0 {
		return nil
	}

	log.Printf("migrate: offers.status has legacy values %v -- rewriting...\n", legacy)

	// Widen first so rewritten records validate against the field.
	for _, v := range OfferStatusValues {
		if !slices.Contains(status.Values, v) {
			status.Values = append(status.Values, v)
		}
	}
	if err := app.Save(offersCol); err != nil {
		return fmt.Errorf("migrate: could not widen offers.status: %w", err)
	}

	for _, old := range legacy {
		target, known := legacyOfferStatuses[old]
		if !known {
			target = "DRAFT"
		}

		records, err := app.FindRecordsByFilter(offersCol, "status = {:old}", "", 0, 0,
			map[string]any{"old": old})
		if err != nil {
			return fmt.Errorf("migrate: could not query offers with status %q: %w", old, err)
		}

		for _, rec := range records {
			rec.Set("status", target)
			if err := app.Save(rec); err != nil {
				log.Printf("migrate: failed to rewrite status of offer %s: %v\n", rec.Id, err)
				continue
			}
		}
		log.Printf("migrate: %d offer(s) %q -> %q\n", len(records), old, target)
	}

	status.Values = slices.Clone(OfferStatusValues)
	if err := app.Save(offersCol); err != nil {
		return fmt.Errorf("migrate: could not narrow offers.status: %w", err)
	}

	log.Println("migrate: offer status migration complete.")
	return nil
}
