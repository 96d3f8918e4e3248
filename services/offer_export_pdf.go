package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	mutedColor = &props.Color{Red: 100, Green: 100, Blue: 100}
	darkColor  = &props.Color{Red: 33, Green: 37, Blue: 41}
	whiteColor = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// GenerateOfferPDF renders an offer letter with its priced work items and
// EMD details.
func GenerateOfferPDF(data *OfferExportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addOfferHeader(m, data)
	addOfferParties(m, data)
	addOfferWorkItems(m, data)
	addOfferTotals(m, data)
	addOfferEMD(m, data)
	addOfferRemarks(m, data)
	addOfferSignature(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate offer PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func addOfferHeader(m core.Maroto, data *OfferExportData) {
	m.AddRows(
		row.New(10).Add(
			col.New(7).Add(text.New(data.Company.Name, props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Left})),
			col.New(5).Add(text.New("COMMERCIAL OFFER", props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Right, Color: darkColor})),
		),
		row.New(8).Add(
			col.New(7).Add(text.New(joinNonEmpty([]string{data.Company.Address, data.Company.Email}, " | "), props.Text{Size: 8, Align: align.Left, Color: mutedColor})),
			col.New(5).Add(text.New("Offer #: "+data.OfferNumber, props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right})),
		),
	)

	if data.Status != StatusApproved {
		m.AddRows(row.New(6).Add(
			col.New(12).Add(text.New(fmt.Sprintf("%s - not yet approved", data.Status.Label()), props.Text{
				Size: 8, Style: fontstyle.Bold, Align: align.Right, Color: &props.Color{Red: 185, Green: 28, Blue: 28},
			})),
		))
	}
	m.AddRows(row.New(3))
}

func addOfferParties(m core.Maroto, data *OfferExportData) {
	label := props.Text{Size: 7, Style: fontstyle.Bold, Align: align.Left, Color: mutedColor}
	rightLabel := props.Text{Size: 7, Style: fontstyle.Bold, Align: align.Right, Color: mutedColor}
	value := props.Text{Size: 8, Align: align.Left}
	rightValue := props.Text{Size: 8, Align: align.Right}

	m.AddRows(
		row.New(6).Add(
			col.New(6).Add(text.New("TO", label)),
			col.New(6).Add(text.New("OFFER DETAILS", rightLabel)),
		),
		row.New(7).Add(
			col.New(6).Add(text.New(data.Customer.Name, props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Left})),
			col.New(3).Add(text.New("Offer Date:", rightLabel)),
			col.New(3).Add(text.New(data.OfferDate, rightValue)),
		),
		row.New(7).Add(
			col.New(6).Add(text.New(data.Customer.Address, value)),
			col.New(3).Add(text.New("Tender:", rightLabel)),
			col.New(3).Add(text.New(data.TenderNumber, rightValue)),
		),
	)

	contact := joinNonEmpty([]string{
		fmtField("GSTIN", data.Customer.GSTIN),
		fmtField("Attn", data.Customer.ContactPerson),
		data.Customer.Phone,
	}, " | ")
	if contact != "" {
		m.AddRows(row.New(7).Add(col.New(12).Add(text.New(contact, value))))
	}

	m.AddRows(
		row.New(4),
		row.New(8).Add(col.New(12).Add(text.New("Subject: "+joinNonEmpty([]string{data.Title, data.TenderTitle}, " - "), props.Text{
			Size: 9, Style: fontstyle.Bold, Align: align.Left,
		}))),
		row.New(3),
	)
}

func addOfferWorkItems(m core.Maroto, data *OfferExportData) {
	headerText := props.Text{Size: 7, Style: fontstyle.Bold, Align: align.Center, Color: whiteColor}
	headerLeft := headerText
	headerLeft.Align = align.Left
	headerCell := &props.Cell{BackgroundColor: darkColor}

	m.AddRows(row.New(8).Add(
		col.New(1).Add(text.New("SI No", headerText)).WithStyle(headerCell),
		col.New(4).Add(text.New("Description", headerLeft)).WithStyle(headerCell),
		col.New(1).Add(text.New("Qty", headerText)).WithStyle(headerCell),
		col.New(1).Add(text.New("Unit", headerText)).WithStyle(headerCell),
		col.New(1).Add(text.New("Rate", headerText)).WithStyle(headerCell),
		col.New(1).Add(text.New("Before Tax", headerText)).WithStyle(headerCell),
		col.New(1).Add(text.New("Tax %", headerText)).WithStyle(headerCell),
		col.New(1).Add(text.New("Tax Amt", headerText)).WithStyle(headerCell),
		col.New(1).Add(text.New("Total", headerText)).WithStyle(headerCell),
	))

	altCell := &props.Cell{BackgroundColor: &props.Color{Red: 248, Green: 249, Blue: 250}}
	center := props.Text{Size: 7, Align: align.Center}
	left := props.Text{Size: 7, Align: align.Left}
	right := props.Text{Size: 7, Align: align.Right}

	for i, line := range data.Lines {
		cols := []core.Col{
			col.New(1).Add(text.New(fmt.Sprintf("%d", line.SINo), center)),
			col.New(4).Add(text.New(line.Description, left)),
			col.New(1).Add(text.New(line.Quantity, right)),
			col.New(1).Add(text.New(line.Unit, center)),
			col.New(1).Add(text.New(FormatINR(line.Rate), right)),
			col.New(1).Add(text.New(FormatINR(line.BeforeTax), right)),
			col.New(1).Add(text.New(fmt.Sprintf("%g%%", line.TaxRate), center)),
			col.New(1).Add(text.New(FormatINR(line.TaxAmount), right)),
			col.New(1).Add(text.New(FormatINR(line.Total), right)),
		}
		if i%2 == 1 {
			for j := range cols {
				cols[j] = cols[j].WithStyle(altCell)
			}
		}
		m.AddRows(row.New(7).Add(cols...))
	}
	m.AddRows(row.New(2))
}

func addOfferTotals(m core.Maroto, data *OfferExportData) {
	summaryCell := &props.Cell{BackgroundColor: &props.Color{Red: 245, Green: 245, Blue: 245}}
	label := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right}
	value := props.Text{Size: 8, Align: align.Right}

	m.AddRows(
		row.New(7).Add(
			col.New(9).Add(text.New("Total Before Tax", label)).WithStyle(summaryCell),
			col.New(3).Add(text.New(FormatINRFixed(data.Totals.BeforeTax), value)).WithStyle(summaryCell),
		),
		row.New(7).Add(
			col.New(9).Add(text.New("GST", label)).WithStyle(summaryCell),
			col.New(3).Add(text.New(FormatINRFixed(data.Totals.Tax), value)).WithStyle(summaryCell),
		),
	)

	grandCell := &props.Cell{BackgroundColor: darkColor}
	grand := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right, Color: whiteColor}
	m.AddRows(
		row.New(8).Add(
			col.New(9).Add(text.New("Grand Total", grand)).WithStyle(grandCell),
			col.New(3).Add(text.New(FormatINRFixed(data.Totals.Total), grand)).WithStyle(grandCell),
		),
		row.New(3),
		row.New(8).Add(col.New(12).Add(text.New("Amount in Words: "+data.AmountInWords, props.Text{
			Size: 8, Style: fontstyle.BoldItalic, Align: align.Left,
		}))),
		row.New(3),
	)
}

func addOfferEMD(m core.Maroto, data *OfferExportData) {
	section := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Left, Color: darkColor}
	label := props.Text{Size: 7, Style: fontstyle.Bold, Align: align.Left, Color: mutedColor}
	value := props.Text{Size: 8, Align: align.Left}

	m.AddRows(row.New(7).Add(col.New(12).Add(text.New("EARNEST MONEY DEPOSIT", section))))

	emd := data.EMD
	rows := []struct{ label, value string }{
		{"Amount", FormatINRFloat(emd.Amount)},
		{"Payment Mode", PaymentModeLabel(emd.PaymentMode)},
		{"Bank", emd.BankName},
		{"Instrument No", emd.InstrumentNo},
		{"Instrument Date", emd.InstrumentDate},
		{"Valid Until", emd.ExpiryDate},
	}
	if emd.ValidityDays > 0 {
		rows = append(rows, struct{ label, value string }{"Validity", fmt.Sprintf("%d days", emd.ValidityDays)})
	}
	for _, r := range rows {
		if r.value == "" {
			continue
		}
		m.AddRows(row.New(6).Add(
			col.New(3).Add(text.New(r.label, label)),
			col.New(9).Add(text.New(r.value, value)),
		))
	}
	m.AddRows(row.New(3))
}

func addOfferRemarks(m core.Maroto, data *OfferExportData) {
	if data.Remarks == "" {
		return
	}
	m.AddRows(
		row.New(6).Add(col.New(12).Add(text.New("REMARKS", props.Text{Size: 7, Style: fontstyle.Bold, Align: align.Left, Color: mutedColor}))),
		row.New(7).Add(col.New(12).Add(text.New(data.Remarks, props.Text{Size: 8, Align: align.Left}))),
		row.New(3),
	)
}

func addOfferSignature(m core.Maroto, data *OfferExportData) {
	line := props.Text{Size: 8, Align: align.Center, Color: mutedColor}
	label := props.Text{Size: 7, Style: fontstyle.Bold, Align: align.Center, Color: mutedColor}

	m.AddRows(
		row.New(12),
		row.New(6).Add(
			col.New(6),
			col.New(6).Add(text.New("____________________________", line)),
		),
		row.New(7).Add(
			col.New(6),
			col.New(6).Add(text.New(joinNonEmpty([]string{"For " + data.Company.Name, data.ApproverName}, " / "), label)),
		),
	)
}
