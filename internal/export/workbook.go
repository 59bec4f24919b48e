// Package export renders quote snapshots as spreadsheets.
package export

import (
	"bytes"
	"fmt"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"

	"github.com/elecmate/quotedesk/internal/money"
	"github.com/elecmate/quotedesk/internal/pricing"
	"github.com/elecmate/quotedesk/internal/quotes"
)

const (
	sheetName  = "Quote"
	gbpFormat  = `"£"#,##0.00`
	lastColumn = "G"
)

// QuoteWorkbook builds an .xlsx workbook for s and returns its bytes.
func QuoteWorkbook(s quotes.Snapshot) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	widths := map[string]float64{"A": 28, "B": 14, "C": 14, "D": 14, "E": 14, "F": 14, "G": 12}
	for col, width := range widths {
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	st, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	title := s.Title
	if title == "" {
		title = fmt.Sprintf("Quote #%d", s.ID)
	}
	if err := f.MergeCell(sheetName, "A1", lastColumn+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", sanitizeExcelCell(title))
	f.SetCellStyle(sheetName, "A1", lastColumn+"1", st.title)

	f.SetCellValue(sheetName, "A2", "Project: "+s.ProjectName)
	f.SetCellValue(sheetName, "A3", "Date: "+s.CreatedAt)
	if until := s.ValidUntil(); until != "" {
		f.SetCellValue(sheetName, "A4", "Valid until: "+until)
	}

	// Cost breakdown.
	f.SetCellValue(sheetName, "A5", "Cost")
	f.SetCellValue(sheetName, "B5", "Amount")
	f.SetCellStyle(sheetName, "A5", "B5", st.header)

	costs := []struct {
		label  string
		amount float64
	}{
		{"Materials (net)", s.Breakdown.Materials.Net},
		{"Materials markup", s.Breakdown.Materials.MarkupAmount},
		{fmt.Sprintf("Labour (%s h)", money.Round(s.Inputs.LabourHours, 2).String()), s.Breakdown.LabourTotal},
		{"Overheads", s.Breakdown.OverheadsTotal},
		{"Contingency (" + money.Percent(s.Inputs.ContingencyPercent) + ")", s.Breakdown.ContingencyAmount},
	}
	row := 6
	for _, c := range costs {
		f.SetCellValue(sheetName, cell("A", row), c.label)
		f.SetCellValue(sheetName, cell("B", row), amount(c.amount))
		f.SetCellStyle(sheetName, cell("A", row), cell("A", row), st.text)
		f.SetCellStyle(sheetName, cell("B", row), cell("B", row), st.money)
		row++
	}
	f.SetCellValue(sheetName, cell("A", row), "Break-even")
	f.SetCellValue(sheetName, cell("B", row), amount(s.Breakdown.BreakEven))
	f.SetCellStyle(sheetName, cell("A", row), cell("A", row), st.label)
	f.SetCellStyle(sheetName, cell("B", row), cell("B", row), st.total)
	row += 2

	// Tier options.
	headers := []string{"Option", "Multiplier", "Net", "VAT", "Gross", "Profit", "Margin %"}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheetName, cell(col, row), h)
	}
	f.SetCellStyle(sheetName, cell("A", row), cell(lastColumn, row), st.header)
	row++

	for _, tier := range s.Tiers {
		totals, _ := lo.Find(s.Totals.Tiers, func(t pricing.TierTotals) bool { return t.Name == tier.Name })

		label := quotes.TierLabel(tier.Name)
		if tier.Overridden {
			label += " (override)"
		}
		f.SetCellValue(sheetName, cell("A", row), label)
		f.SetCellValue(sheetName, cell("B", row), tier.Multiplier)
		f.SetCellValue(sheetName, cell("C", row), amount(tier.Price))
		f.SetCellValue(sheetName, cell("D", row), amount(totals.VAT))
		f.SetCellValue(sheetName, cell("E", row), amount(totals.Gross))
		f.SetCellValue(sheetName, cell("F", row), amount(tier.Profit))
		f.SetCellValue(sheetName, cell("G", row), money.Round(tier.Margin, 1).InexactFloat64())
		f.SetCellStyle(sheetName, cell("A", row), cell("B", row), st.text)
		f.SetCellStyle(sheetName, cell("C", row), cell("F", row), st.money)
		f.SetCellStyle(sheetName, cell("G", row), cell("G", row), st.text)
		row++
	}

	f.SetCellValue(sheetName, cell("A", row), "VAT rate "+money.Percent(s.Totals.VATPercent))
	row++

	if len(s.Warnings) > 0 {
		row++
		f.SetCellValue(sheetName, cell("A", row), "Warnings")
		f.SetCellStyle(sheetName, cell("A", row), cell("A", row), st.label)
		for _, w := range s.Warnings {
			row++
			f.SetCellValue(sheetName, cell("A", row), quotes.WarningText(w))
		}
		row++
	}

	if s.Notes != "" {
		row++
		f.SetCellValue(sheetName, cell("A", row), "Notes")
		f.SetCellStyle(sheetName, cell("A", row), cell("A", row), st.label)
		row++
		if err := f.MergeCell(sheetName, cell("A", row), cell(lastColumn, row)); err != nil {
			return nil, fmt.Errorf("merge notes: %w", err)
		}
		f.SetCellValue(sheetName, cell("A", row), sanitizeExcelCell(s.Notes))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type styles struct {
	title  int
	header int
	text   int
	label  int
	money  int
	total  int
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error
	numFmt := gbpFormat

	if st.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	}); err != nil {
		return st, fmt.Errorf("create title style: %w", err)
	}

	if st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	}); err != nil {
		return st, fmt.Errorf("create header style: %w", err)
	}

	if st.text, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	}); err != nil {
		return st, fmt.Errorf("create text style: %w", err)
	}

	if st.label, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
	}); err != nil {
		return st, fmt.Errorf("create label style: %w", err)
	}

	if st.money, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Size: 10},
		Border:       thinBorders(),
		CustomNumFmt: &numFmt,
	}); err != nil {
		return st, fmt.Errorf("create money style: %w", err)
	}

	if st.total, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true, Size: 11},
		Border:       thinBorders(),
		CustomNumFmt: &numFmt,
	}); err != nil {
		return st, fmt.Errorf("create total style: %w", err)
	}

	return st, nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// amount rounds to pence so the sheet shows the same figure as the screen.
func amount(v float64) float64 {
	return money.Round(v, 2).InexactFloat64()
}

// sanitizeExcelCell neutralises values a spreadsheet would treat as a formula.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
