package services

import (
	"fmt"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

// StatusSummary totals the offers in one status.
type StatusSummary struct {
	Status OfferStatus
	Count  int
	Value  decimal.Decimal
}

// DashboardData is everything the dashboard shows.
type DashboardData struct {
	Statuses       []StatusSummary
	TotalOffers    int
	PipelineValue  decimal.Decimal
	EMDCommitted   decimal.Decimal
	EMDSuggested   decimal.Decimal
	TenderCount    int
	CustomerCount  int
	RecentOffers   []OfferListItem
	AwaitingMyVote int
}

// Summary returns the entry for status, zero valued when absent.
func (d *DashboardData) Summary(status OfferStatus) StatusSummary {
	for _, s := range d.Statuses {
		if s.Status == status {
			return s
		}
	}
	return StatusSummary{Status: status}
}

// LoadDashboard aggregates offer counts and values per status, the EMD
// held against live offers, and the most recent offers. Live means pending
// or approved. awaitingFor, when set, counts pending offers routed to that
// approver.
func LoadDashboard(app core.App, emdPercent float64, recent int, awaitingFor string) (*DashboardData, error) {
	offers, err := app.FindRecordsByFilter("offers", "1=1", "-created", 0, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("query offers: %w", err)
	}

	byStatus := make(map[OfferStatus]*StatusSummary, len(OfferStatuses))
	for _, s := range OfferStatuses {
		byStatus[s] = &StatusSummary{Status: s}
	}

	data := &DashboardData{TotalOffers: len(offers)}
	names := newNameCache(app)
	for i, rec := range offers {
		items, err := loadWorkItems(app, rec.Id)
		if err != nil {
			return nil, err
		}
		total := AggregateTotal(items)
		status := OfferStatus(rec.GetString("status"))

		if sum, ok := byStatus[status]; ok {
			sum.Count++
			sum.Value = sum.Value.Add(total)
		}

		if status == StatusPendingApproval || status == StatusApproved {
			data.PipelineValue = data.PipelineValue.Add(total)
			data.EMDCommitted = data.EMDCommitted.Add(decimal.NewFromFloat(rec.GetFloat("emd_amount")))
			data.EMDSuggested = data.EMDSuggested.Add(SummarizeEMD(items, emdPercent).Suggested)
		}
		if status == StatusPendingApproval && awaitingFor != "" && rec.GetString("approver") == awaitingFor {
			data.AwaitingMyVote++
		}

		if i < recent {
			data.RecentOffers = append(data.RecentOffers, OfferListItem{
				Index:        i + 1,
				ID:           rec.Id,
				OfferNumber:  rec.GetString("offer_number"),
				Title:        rec.GetString("title"),
				TenderNumber: names.get("tenders", rec.GetString("tender"), "tender_number"),
				CustomerName: names.get("customers", rec.GetString("customer"), "name"),
				OfferDate:    rec.GetString("offer_date"),
				Status:       status,
				Total:        total,
				EMDAmount:    rec.GetFloat("emd_amount"),
			})
		}
	}
	for _, s := range OfferStatuses {
		data.Statuses = append(data.Statuses, *byStatus[s])
	}

	if data.TenderCount, err = countRecords(app, "tenders"); err != nil {
		return nil, err
	}
	if data.CustomerCount, err = countRecords(app, "customers"); err != nil {
		return nil, err
	}
	return data, nil
}

func countRecords(app core.App, collection string) (int, error) {
	n, err := app.CountRecords(collection)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return int(n), nil
}
