package services

import (
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

// CompanyInfo is the letterhead printed on exported offers.
type CompanyInfo struct {
	Name    string
	Address string
	Email   string
}

// OfferExportData holds all data needed to print an offer.
type OfferExportData struct {
	Company CompanyInfo

	OfferNumber  string
	OfferDate    string
	Title        string
	Status       OfferStatus
	TenderNumber string
	TenderTitle  string

	Customer OfferExportCustomer
	Lines    []OfferExportLine

	Totals        OfferTotals
	AmountInWords string

	EMD          EMDDetails
	EMDSuggested decimal.Decimal

	ApproverName string
	Remarks      string
}

// OfferExportCustomer is the addressee block.
type OfferExportCustomer struct {
	Name          string
	Address       string
	GSTIN         string
	ContactPerson string
	Phone         string
}

// OfferExportLine is one printed work item.
type OfferExportLine struct {
	SINo        int
	Description string
	Unit        string
	Quantity    string
	Rate        decimal.Decimal
	BeforeTax   decimal.Decimal
	TaxRate     float64
	TaxAmount   decimal.Decimal
	Total       decimal.Decimal
}

// BuildOfferExportData assembles an offer, its customer and computed
// line values for export.
func BuildOfferExportData(app core.App, offerID string, company CompanyInfo, emdPercent float64) (*OfferExportData, error) {
	offer, err := LoadOffer(app, offerID)
	if err != nil {
		return nil, err
	}

	data := &OfferExportData{
		Company:      company,
		OfferNumber:  offer.OfferNumber,
		OfferDate:    offer.Form.OfferDate,
		Title:        offer.Form.Title,
		Status:       offer.Status,
		TenderNumber: offer.TenderNumber,
		TenderTitle:  offer.TenderTitle,
		Totals:       offer.Totals(),
		EMD:          offer.Form.EMD,
		EMDSuggested: SummarizeEMD(offer.Form.WorkItems, emdPercent).Suggested,
		ApproverName: offer.ApproverName,
		Remarks:      offer.Form.Remarks,
	}
	data.AmountInWords = AmountToWords(data.Totals.Total)

	if c, err := app.FindRecordById("customers", offer.Form.CustomerID); err != nil {
		log.Printf("offer_export: could not find customer %s: %v", offer.Form.CustomerID, err)
	} else {
		data.Customer = OfferExportCustomer{
			Name:          c.GetString("name"),
			Address:       joinNonEmpty([]string{c.GetString("address"), c.GetString("city"), c.GetString("state"), c.GetString("pin_code")}, ", "),
			GSTIN:         c.GetString("gstin"),
			ContactPerson: c.GetString("contact_person"),
			Phone:         c.GetString("phone"),
		}
	}

	for i, item := range offer.Form.WorkItems {
		line := CalcLine(item)
		qty := ""
		if item.Quantity != nil {
			qty = formatQty(*item.Quantity)
		}
		data.Lines = append(data.Lines, OfferExportLine{
			SINo:        i + 1,
			Description: item.Description,
			Unit:        item.Unit,
			Quantity:    qty,
			Rate:        decimal.NewFromFloat(item.BasicRate),
			BeforeTax:   line.BeforeTax,
			TaxRate:     item.TaxRate,
			TaxAmount:   line.TaxAmount,
			Total:       line.Total,
		})
	}

	return data, nil
}

// joinNonEmpty joins non-empty strings with the given separator.
func joinNonEmpty(parts []string, sep string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, sep)
}

func formatQty(qty float64) string {
	if qty == math.Trunc(qty) {
		return fmt.Sprintf("%.0f", qty)
	}
	return fmt.Sprintf("%.2f", qty)
}

// fmtField returns "label: value" if value is non-empty, otherwise empty string.
func fmtField(label, value string) string {
	if value == "" {
		return ""
	}
	return fmt.Sprintf("%s: %s", label, value)
}
