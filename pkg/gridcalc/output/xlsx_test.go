package output

import (
	"path/filepath"
	"testing"

	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/models"
	"github.com/xuri/excelize/v2"
)

func exportGrid() *models.Grid {
	bold := true
	g := models.NewGrid(26, 100)
	g.Cells[models.Address{Col: 0, Row: 1}] = models.Cell{Value: 10.0, Type: models.CellNumber, Comment: "base"}
	g.Cells[models.Address{Col: 1, Row: 1}] = models.Cell{Value: 20.0, Formula: "=A1*2", Type: models.CellFormula}
	g.Cells[models.Address{Col: 0, Row: 2}] = models.Cell{
		Value: models.Hyperlink{URL: "https://go.dev", Text: "Go"},
		Type:  models.CellLink,
	}
	g.Cells[models.Address{Col: 1, Row: 2}] = models.Cell{
		Value: "Total",
		Type:  models.CellText,
		Style: &models.CellStyle{Bold: &bold, Color: "#f00", Align: "center"},
	}
	g.Cells[models.Address{Col: 2, Row: 2}] = models.Cell{Value: 0.15, Type: models.CellPercentage}
	g.Charts = []models.ChartSpec{{
		ID:         "chart-1",
		Type:       models.ChartColumn,
		Title:      "Values",
		DataRange:  "A1:B1",
		LabelRange: "A2:B2",
	}}
	return g
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.xlsx")
	if err := WriteXLSX(exportGrid(), path, XLSXOptions{SheetName: "Budget", PrintArea: true}); err != nil {
		t.Fatalf("WriteXLSX failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("Failed to open exported file: %v", err)
	}
	defer f.Close()

	if list := f.GetSheetList(); len(list) != 1 || list[0] != "Budget" {
		t.Fatalf("Expected a single Budget sheet, got %v", list)
	}

	if v, _ := f.GetCellValue("Budget", "A1"); v != "10" {
		t.Errorf("Expected A1=10, got %q", v)
	}
	if formula, _ := f.GetCellFormula("Budget", "B1"); formula != "A1*2" {
		t.Errorf("Expected formula A1*2, got %q", formula)
	}
	if v, _ := f.GetCellValue("Budget", "A2"); v != "Go" {
		t.Errorf("Expected hyperlink text Go, got %q", v)
	}
	if ok, target, _ := f.GetCellHyperLink("Budget", "A2"); !ok || target != "https://go.dev" {
		t.Errorf("Expected hyperlink to https://go.dev, got %v %q", ok, target)
	}

	comments, err := f.GetComments("Budget")
	if err != nil {
		t.Fatalf("GetComments failed: %v", err)
	}
	if len(comments) != 1 || comments[0].Cell != "A1" || comments[0].Author != CommentAuthor {
		t.Errorf("Unexpected comments: %+v", comments)
	}

	var printArea string
	for _, dn := range f.GetDefinedName() {
		if dn.Name == printAreaName {
			printArea = dn.RefersTo
		}
	}
	if printArea != "Budget!$A$1:$C$2" {
		t.Errorf("Expected print area Budget!$A$1:$C$2, got %q", printArea)
	}

	styleID, err := f.GetCellStyle("Budget", "B2")
	if err != nil {
		t.Fatalf("GetCellStyle failed: %v", err)
	}
	style, err := f.GetStyle(styleID)
	if err != nil {
		t.Fatalf("GetStyle failed: %v", err)
	}
	if style.Font == nil || !style.Font.Bold {
		t.Errorf("Expected bold font on B2, got %+v", style.Font)
	}
	if style.Alignment == nil || style.Alignment.Horizontal != "center" {
		t.Errorf("Expected centered B2, got %+v", style.Alignment)
	}

	pctID, _ := f.GetCellStyle("Budget", "C2")
	pct, err := f.GetStyle(pctID)
	if err != nil {
		t.Fatalf("GetStyle failed: %v", err)
	}
	if pct.NumFmt != 10 {
		t.Errorf("Expected percentage number format 10, got %d", pct.NumFmt)
	}
}

func TestToXLSXComputedStyles(t *testing.T) {
	g := models.NewGrid(5, 5)
	g.Cells[models.Address{Col: 0, Row: 1}] = models.Cell{Value: 5.0, Type: models.CellNumber}

	f, err := ToXLSX(g, XLSXOptions{
		Computed:   map[models.Address]models.CellStyle{{Col: 0, Row: 1}: {Background: "#00ff00"}},
		SkipCharts: true,
	})
	if err != nil {
		t.Fatalf("ToXLSX failed: %v", err)
	}
	defer f.Close()

	id, err := f.GetCellStyle(DefaultSheetName, "A1")
	if err != nil {
		t.Fatalf("GetCellStyle failed: %v", err)
	}
	style, err := f.GetStyle(id)
	if err != nil {
		t.Fatalf("GetStyle failed: %v", err)
	}
	if style.Fill.Pattern != 1 || len(style.Fill.Color) == 0 {
		t.Errorf("Expected solid fill from computed style, got %+v", style.Fill)
	}
}

func TestHexColor(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"#ff0000", "#FF0000"},
		{"00ff00", "#00FF00"},
		{"#abc", "#AABBCC"},
		{"red", ""},
		{"#12345g", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := hexColor(tt.input); got != tt.expected {
			t.Errorf("hexColor(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestSheetRange(t *testing.T) {
	w := &xlsxWriter{sheet: "My Sheet"}
	got, err := w.sheetRange("b2:a1")
	if err != nil {
		t.Fatalf("sheetRange failed: %v", err)
	}
	if got != "'My Sheet'!$A$1:$B$2" {
		t.Errorf("Unexpected qualified range %q", got)
	}
}
