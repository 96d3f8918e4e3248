package services

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// GenerateOfferRegister writes the offer register (one row per offer) as
// an .xlsx workbook, followed by a totals row.
func GenerateOfferRegister(title string, items []OfferListItem) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Offers"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	headers := []string{"#", "Offer Number", "Title", "Tender", "Customer", "Offer Date", "Status", "Offer Value", "EMD"}
	widths := []float64{6, 26, 40, 22, 30, 12, 18, 18, 14}
	columns := columnLetters(len(headers))
	lastCol := columns[len(columns)-1]
	for i, c := range columns {
		if err := f.SetColWidth(sheet, c, c, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", c, err)
		}
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}
	hdrStyle, err := headerStyle(f, "#333333")
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	bodyStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Size: 10}, Border: thinBorders()})
	if err != nil {
		return nil, fmt.Errorf("create body style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 10},
		Border:    thinBorders(),
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("create amount style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("create total style: %w", err)
	}

	if err := f.MergeCell(sheet, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheet, "A1", sanitizeExcelCell(title))
	f.SetCellStyle(sheet, "A1", lastCol+"1", titleStyle)

	for i, h := range headers {
		f.SetCellValue(sheet, columns[i]+"3", h)
	}
	f.SetCellStyle(sheet, "A3", lastCol+"3", hdrStyle)

	value, emd := decimal.Zero, decimal.Zero
	for i, it := range items {
		r := fmt.Sprintf("%d", i+4)
		f.SetCellValue(sheet, "A"+r, i+1)
		f.SetCellValue(sheet, "B"+r, sanitizeExcelCell(it.OfferNumber))
		f.SetCellValue(sheet, "C"+r, sanitizeExcelCell(it.Title))
		f.SetCellValue(sheet, "D"+r, sanitizeExcelCell(it.TenderNumber))
		f.SetCellValue(sheet, "E"+r, sanitizeExcelCell(it.CustomerName))
		f.SetCellValue(sheet, "F"+r, it.OfferDate)
		f.SetCellValue(sheet, "G"+r, it.Status.Label())
		f.SetCellValue(sheet, "H"+r, FormatINRFixed(it.Total))
		f.SetCellValue(sheet, "I"+r, FormatINRFloat(it.EMDAmount))
		f.SetCellStyle(sheet, "A"+r, "G"+r, bodyStyle)
		f.SetCellStyle(sheet, "H"+r, "I"+r, amountStyle)

		value = value.Add(it.Total)
		emd = emd.Add(decimal.NewFromFloat(it.EMDAmount))
	}

	r := fmt.Sprintf("%d", len(items)+5)
	f.SetCellValue(sheet, "G"+r, "Total:")
	f.SetCellValue(sheet, "H"+r, FormatINRFixed(value))
	f.SetCellValue(sheet, "I"+r, FormatINR(emd))
	f.SetCellStyle(sheet, "G"+r, "I"+r, totalStyle)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}
