package services

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// TenderTemplateFields returns the ordered columns of the tender import sheet.
func TenderTemplateFields() []TemplateField {
	return []TemplateField{
		{Key: "tender_number", Label: "Tender Number", Description: "Tender reference as published; must be unique", ExampleValue: "MSEDCL/T/2026/114", Required: true},
		{Key: "title", Label: "Title", Description: "Short description of the tender", ExampleValue: "Supply of 250 kVA transformers", Required: true},
		{Key: "customer", Label: "Customer", Description: "Name of an existing customer", FormatRule: "Exact name match", ExampleValue: "Maharashtra State Electricity Distribution Co."},
		{Key: "estimated_value", Label: "Estimated Value", Description: "Estimated tender value in rupees", FormatRule: "Number, commas allowed", ExampleValue: "2500000"},
		{Key: "emd_amount", Label: "EMD Amount", Description: "EMD asked for in the tender document", FormatRule: "Number, commas allowed", ExampleValue: "50000"},
		{Key: "due_date", Label: "Due Date", Description: "Bid submission due date", FormatRule: "YYYY-MM-DD", ExampleValue: "2026-06-30"},
	}
}

// ImportRowError is a row that was not imported.
type ImportRowError struct {
	Row        int    `json:"row"`
	Identifier string `json:"identifier"`
	Message    string `json:"message"`
}

// ImportedTender is a row that was saved.
type ImportedTender struct {
	ID           string `json:"id"`
	TenderNumber string `json:"tender_number"`
	Title        string `json:"title"`
}

// BulkImportResult reconciles one upload. Row numbers are spreadsheet rows
// with the header on row 1. SuccessCount + FailureCount + SkippedCount
// equals TotalRows.
type BulkImportResult struct {
	TotalRows    int              `json:"total_rows"`
	SuccessCount int              `json:"success_count"`
	FailureCount int              `json:"failure_count"`
	SkippedCount int              `json:"skipped_count"`
	Errors       []ImportRowError `json:"errors"`
	Skipped      []ImportRowError `json:"skipped"`
	Created      []ImportedTender `json:"created"`
	FileName     string           `json:"-"`
}

type tenderRow struct {
	TenderNumber string `validate:"required,max=100"`
	TenderTitle  string `validate:"required,max=300"`
	DueDate      string `validate:"omitempty,datetime=2006-01-02"`
}

// BulkImportTenders creates one tender per data row of an uploaded .csv or
// .xlsx. Each row is saved on its own, so a bad row never undoes the rows
// around it. Blank rows and tender numbers that already exist, in the
// store or higher up in the same file, are skipped.
func BulkImportTenders(app core.App, file io.Reader, fileName string) (*BulkImportResult, error) {
	headers, dataRows, err := readSheet(file, fileName)
	if err != nil {
		return nil, err
	}

	fields := TenderTemplateFields()
	columnKeys, unrecognized := mapHeadersToFields(headers, fields)
	for _, f := range fields {
		if f.Required && !slices.Contains(columnKeys, f.Key) {
			return nil, fmt.Errorf("missing required column %q", f.Label)
		}
	}

	col, err := app.FindCollectionByNameOrId("tenders")
	if err != nil {
		return nil, fmt.Errorf("tenders collection not found: %w", err)
	}
	seen, err := existingTenderNumbers(app)
	if err != nil {
		return nil, err
	}
	customers, err := customerIDsByName(app)
	if err != nil {
		return nil, err
	}

	result := &BulkImportResult{TotalRows: len(dataRows), FileName: fileName}
	for i, row := range dataRows {
		rowNum := i + 2

		if blankRow(row) {
			result.skip(rowNum, "", "Blank row")
			continue
		}

		values := rowValues(columnKeys, row)
		number := values["tender_number"]
		if number != "" && seen[strings.ToLower(number)] {
			result.skip(rowNum, number, fmt.Sprintf("Tender %s already exists", number))
			continue
		}

		rec := core.NewRecord(col)
		if problems := fillTenderRecord(rec, values, customers); len(problems) > 0 {
			result.fail(rowNum, number, strings.Join(problems, "; "))
			continue
		}
		if err := app.Save(rec); err != nil {
			app.Logger().Warn("tender import row not saved", "row", rowNum, "tender_number", number, "error", err)
			result.fail(rowNum, number, "could not be saved")
			continue
		}

		seen[strings.ToLower(number)] = true
		result.SuccessCount++
		result.Created = append(result.Created, ImportedTender{ID: rec.Id, TenderNumber: number, Title: values["title"]})
	}

	app.Logger().Info("tender import finished",
		"file", fileName,
		"total", result.TotalRows,
		"success", result.SuccessCount,
		"failed", result.FailureCount,
		"skipped", result.SkippedCount,
		"unrecognized_columns", unrecognized,
	)
	return result, nil
}

func (r *BulkImportResult) fail(row int, identifier, reason string) {
	label := identifier
	if label == "" {
		label = "no tender number"
	}
	r.FailureCount++
	r.Errors = append(r.Errors, ImportRowError{
		Row:        row,
		Identifier: identifier,
		Message:    fmt.Sprintf("Row %d (%s): %s", row, label, reason),
	})
}

func (r *BulkImportResult) skip(row int, identifier, reason string) {
	r.SkippedCount++
	r.Skipped = append(r.Skipped, ImportRowError{Row: row, Identifier: identifier, Message: reason})
}

// fillTenderRecord validates one row and copies it onto rec. It returns
// every problem found in the row.
func fillTenderRecord(rec *core.Record, values map[string]string, customers map[string]string) []string {
	row := tenderRow{
		TenderNumber: values["tender_number"],
		TenderTitle:  values["title"],
		DueDate:      normalizeDate(values["due_date"]),
	}

	errs := FieldErrors{}
	collectErrors(validate.Struct(row), "", errs)
	var problems []string
	for _, field := range errs.Fields() {
		problems = append(problems, errs[field])
	}

	amounts := map[string]decimal.Decimal{}
	for _, f := range []struct{ key, label string }{
		{"estimated_value", "Estimated Value"},
		{"emd_amount", "EMD Amount"},
	} {
		amount, err := parseImportAmount(values[f.key])
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s %q is not a valid amount", f.label, values[f.key]))
			continue
		}
		amounts[f.key] = amount
	}

	customerID := ""
	if name := values["customer"]; name != "" {
		id, ok := customers[strings.ToLower(name)]
		if !ok {
			problems = append(problems, fmt.Sprintf("Customer %q not found", name))
		}
		customerID = id
	}

	if len(problems) > 0 {
		return problems
	}

	rec.Set("tender_number", row.TenderNumber)
	rec.Set("title", row.TenderTitle)
	rec.Set("customer", customerID)
	rec.Set("estimated_value", amounts["estimated_value"].InexactFloat64())
	rec.Set("emd_amount", amounts["emd_amount"].InexactFloat64())
	rec.Set("due_date", row.DueDate)
	return nil
}

// parseImportAmount reads a non-negative rupee amount. Blank is zero.
func parseImportAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimPrefix(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), "₹")
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative amount %s", s)
	}
	return d, nil
}

func existingTenderNumbers(app core.App) (map[string]bool, error) {
	records, err := app.FindAllRecords("tenders")
	if err != nil {
		return nil, fmt.Errorf("load tenders: %w", err)
	}
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		seen[strings.ToLower(rec.GetString("tender_number"))] = true
	}
	return seen, nil
}

func customerIDsByName(app core.App) (map[string]string, error) {
	records, err := app.FindAllRecords("customers")
	if err != nil {
		return nil, fmt.Errorf("load customers: %w", err)
	}
	ids := make(map[string]string, len(records))
	for _, rec := range records {
		ids[strings.ToLower(strings.TrimSpace(rec.GetString("name")))] = rec.Id
	}
	return ids, nil
}

// GenerateTenderTemplate builds the downloadable tender import workbook with
// a hidden Instructions sheet.
func GenerateTenderTemplate() ([]byte, error) {
	fields := TenderTemplateFields()

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Tenders"
	f.SetSheetName(f.GetSheetName(0), sheet)

	requiredStyle, err := headerStyle(f, "#1D4ED8")
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	optionalStyle, err := headerStyle(f, "#6B7280")
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	columns := columnLetters(len(fields))
	for i, field := range fields {
		cell := columns[i] + "1"
		text, style := field.Label, optionalStyle
		if field.Required {
			text, style = field.Label+" *", requiredStyle
		}
		f.SetCellValue(sheet, cell, text)
		f.SetCellStyle(sheet, cell, cell, style)
		f.SetColWidth(sheet, columns[i], columns[i], max(15, float64(len(field.Label))*1.3))
	}

	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	inst := "Instructions"
	f.NewSheet(inst)
	f.SetCellValue(inst, "A1", "Tender Import - Instructions")
	instCols := columnLetters(5)
	for i, h := range []string{"Field Name", "Required?", "Format Rule", "Description", "Example"} {
		f.SetCellValue(inst, instCols[i]+"3", h)
	}
	for i, field := range fields {
		row := fmt.Sprintf("%d", i+4)
		req := "Optional"
		if field.Required {
			req = "Required"
		}
		f.SetCellValue(inst, instCols[0]+row, field.Label)
		f.SetCellValue(inst, instCols[1]+row, req)
		f.SetCellValue(inst, instCols[2]+row, field.FormatRule)
		f.SetCellValue(inst, instCols[3]+row, field.Description)
		f.SetCellValue(inst, instCols[4]+row, field.ExampleValue)
	}
	for i, w := range []float64{20, 12, 25, 45, 40} {
		f.SetColWidth(inst, instCols[i], instCols[i], w)
	}
	f.SetSheetVisible(inst, false)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write tender template: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateImportErrorReport creates a downloadable .xlsx listing failed rows.
func GenerateImportErrorReport(errs []ImportRowError) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Errors"
	f.SetSheetName(f.GetSheetName(0), sheet)

	style, err := headerStyle(f, "#DC2626")
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	f.SetCellValue(sheet, "A1", "Row #")
	f.SetCellValue(sheet, "B1", "Tender Number")
	f.SetCellValue(sheet, "C1", "Error")
	f.SetCellStyle(sheet, "A1", "C1", style)
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 24)
	f.SetColWidth(sheet, "C", "C", 70)

	for i, e := range errs {
		row := fmt.Sprintf("%d", i+2)
		f.SetCellValue(sheet, "A"+row, e.Row)
		f.SetCellValue(sheet, "B"+row, sanitizeExcelCell(e.Identifier))
		f.SetCellValue(sheet, "C"+row, sanitizeExcelCell(e.Message))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write error report: %w", err)
	}
	return buf.Bytes(), nil
}
