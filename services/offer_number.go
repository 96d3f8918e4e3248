package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"
)

// GetFiscalYear returns the Indian fiscal year string for a given date.
// Indian fiscal year runs April to March.
// Jan 2026 → "25-26", May 2026 → "26-27"
func GetFiscalYear(t time.Time) string {
	startYear := t.Year()
	if t.Month() < time.April {
		startYear--
	}
	return fmt.Sprintf("%02d-%02d", startYear%100, (startYear+1)%100)
}

var nonRefChars = regexp.MustCompile(`[^A-Za-z0-9]+`)

// tenderRef turns a tender number such as "MSEDCL/T/2026/114" into a
// reference safe for offer numbers ("MSEDCL-T-2026-114").
func tenderRef(tenderNumber string) string {
	return strings.Trim(nonRefChars.ReplaceAllString(strings.ToUpper(tenderNumber), "-"), "-")
}

// formatOfferNumber constructs the offer number string from components.
func formatOfferNumber(ref, fiscalYear string, sequence int) string {
	return fmt.Sprintf("OFR-%s-%s-%03d", ref, fiscalYear, sequence)
}

// GenerateOfferNumber creates the next offer number for a tender.
// Format: OFR-{tender_ref}-{fiscal_year}-{sequence}
//   - tender_ref: tender number with separators collapsed to "-" (falls back to the tender ID)
//   - fiscal_year: Indian fiscal year (Apr-Mar), e.g., "26-27"
//   - sequence: 3-digit zero-padded, one above the highest used for the prefix
func GenerateOfferNumber(app core.App, tenderID string, now time.Time) (string, error) {
	tender, err := app.FindRecordById("tenders", tenderID)
	if err != nil {
		return "", fmt.Errorf("tender not found: %w", err)
	}

	ref := tenderRef(tender.GetString("tender_number"))
	if ref == "" {
		ref = tenderID
	}

	fiscalYear := GetFiscalYear(now)
	prefix := formatOfferNumber(ref, fiscalYear, 0)
	prefix = prefix[:len(prefix)-3]

	existing, err := app.FindRecordsByFilter(
		"offers",
		"offer_number ~ {:prefix}",
		"",
		0,
		0,
		map[string]any{"prefix": prefix + "%"},
	)
	if err != nil {
		existing = nil
	}

	highest := 0
	for _, rec := range existing {
		seq, err := strconv.Atoi(strings.TrimPrefix(rec.GetString("offer_number"), prefix))
		if err == nil && seq > highest {
			highest = seq
		}
	}

	return formatOfferNumber(ref, fiscalYear, highest+1), nil
}
