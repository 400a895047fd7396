package output

import (
	"fmt"
	"strings"

	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/models"
	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/parser"
	"github.com/xuri/excelize/v2"
)

// DefaultSheetName is the worksheet written when XLSXOptions.SheetName is empty.
const DefaultSheetName = "Sheet1"

// CommentAuthor is the author recorded on exported cell comments.
const CommentAuthor = "gridcalc"

// chartTypeMap maps grid chart types to excelize chart types.
var chartTypeMap = map[models.ChartType]excelize.ChartType{
	models.ChartBar:      excelize.Bar,
	models.ChartColumn:   excelize.Col,
	models.ChartLine:     excelize.Line,
	models.ChartPie:      excelize.Pie,
	models.ChartArea:     excelize.Area,
	models.ChartScatter:  excelize.Scatter,
	models.ChartDoughnut: excelize.Doughnut,
}

// XLSXOptions controls workbook export.
type XLSXOptions struct {
	// SheetName is the worksheet name. Defaults to DefaultSheetName.
	SheetName string
	// Computed holds conditional format results, merged over each cell style.
	Computed map[models.Address]models.CellStyle
	// SkipCharts omits chart objects.
	SkipCharts bool
	// PrintArea sets the sheet print area to the used range.
	PrintArea bool
}

// printAreaName is the defined name spreadsheet applications read as the print area.
const printAreaName = "_xlnm.Print_Area"

func (o XLSXOptions) sheet() string {
	if o.SheetName == "" {
		return DefaultSheetName
	}
	return o.SheetName
}

// styleKey identifies an excelize style so equal cell styles share one id.
type styleKey struct {
	bold, italic, underline bool
	color, background       string
	align, numberFormat     string
	fontSize                float64
	locked                  bool
	typ                     models.CellType
}

// ToXLSX builds a workbook holding the cells, styles, comments, hyperlinks
// and charts of g. The caller must close the returned file.
func ToXLSX(g *models.Grid, opts XLSXOptions) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := opts.sheet()
	if sheet != DefaultSheetName {
		if err := f.SetSheetName(DefaultSheetName, sheet); err != nil {
			f.Close()
			return nil, err
		}
	}

	w := &xlsxWriter{f: f, sheet: sheet, styles: make(map[styleKey]int)}
	for _, a := range SortedAddresses(g.Cells) {
		style := g.Cells[a].Style
		if computed, ok := opts.Computed[a]; ok {
			var base models.CellStyle
			if style != nil {
				base = *style
			}
			merged := base.Merge(computed)
			style = &merged
		}
		if err := w.writeCell(a, g.Cells[a], style); err != nil {
			f.Close()
			return nil, fmt.Errorf("write %s: %w", a, err)
		}
	}

	if !opts.SkipCharts {
		anchorCol := 0
		if r, ok := parser.DataBounds(g); ok {
			anchorCol = r.C2 + 2
		}
		for i, spec := range g.Charts {
			anchor := models.Address{Col: anchorCol, Row: 1 + i*16}
			if err := w.addChart(anchor, spec); err != nil {
				f.Close()
				return nil, fmt.Errorf("chart %s: %w", spec.ID, err)
			}
		}
	}

	if opts.PrintArea {
		if r, ok := parser.DataBounds(g); ok {
			ref, err := w.sheetRange(r.String())
			if err == nil {
				err = f.SetDefinedName(&excelize.DefinedName{Name: printAreaName, RefersTo: ref, Scope: sheet})
			}
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("print area: %w", err)
			}
		}
	}
	return f, nil
}

// WriteXLSX exports g to path.
func WriteXLSX(g *models.Grid, path string, opts XLSXOptions) error {
	f, err := ToXLSX(g, opts)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

type xlsxWriter struct {
	f      *excelize.File
	sheet  string
	styles map[styleKey]int
}

func (w *xlsxWriter) writeCell(a models.Address, c models.Cell, style *models.CellStyle) error {
	ref := a.String()

	switch v := c.Value.(type) {
	case nil:
	case models.Hyperlink:
		text := v.Text
		if text == "" {
			text = v.URL
		}
		if err := w.f.SetCellStr(w.sheet, ref, text); err != nil {
			return err
		}
		if err := w.f.SetCellHyperLink(w.sheet, ref, v.URL, "External"); err != nil {
			return err
		}
	case string:
		if err := w.f.SetCellStr(w.sheet, ref, v); err != nil {
			return err
		}
		if c.Type == models.CellLink && c.Formula == "" {
			if err := w.f.SetCellHyperLink(w.sheet, ref, strings.TrimSpace(v), "External"); err != nil {
				return err
			}
		}
	default:
		if err := w.f.SetCellValue(w.sheet, ref, v); err != nil {
			return err
		}
	}

	if c.Formula != "" {
		if err := w.f.SetCellFormula(w.sheet, ref, strings.TrimPrefix(c.Formula, "=")); err != nil {
			return err
		}
	}

	if c.Comment != "" {
		if err := w.f.AddComment(w.sheet, excelize.Comment{
			Cell:   ref,
			Author: CommentAuthor,
			Text:   c.Comment,
		}); err != nil {
			return err
		}
	}

	id, ok, err := w.styleID(c, style)
	if err != nil || !ok {
		return err
	}
	return w.f.SetCellStyle(w.sheet, ref, ref, id)
}

// styleID returns the excelize style for a cell, creating it on first use.
// It reports false when the cell needs no style.
func (w *xlsxWriter) styleID(c models.Cell, style *models.CellStyle) (int, bool, error) {
	var s models.CellStyle
	if style != nil {
		s = *style
	}
	key := styleKey{
		bold:         s.Bold != nil && *s.Bold,
		italic:       s.Italic != nil && *s.Italic,
		underline:    s.Underline != nil && *s.Underline,
		color:        hexColor(s.Color),
		background:   hexColor(s.Background),
		align:        alignment(s.Align),
		numberFormat: s.NumberFormat,
		fontSize:     s.FontSize,
		locked:       c.Locked,
	}
	if key.numberFormat == "" && (c.Type == models.CellCurrency || c.Type == models.CellPercentage) {
		key.typ = c.Type
	}
	if key == (styleKey{}) {
		return 0, false, nil
	}
	if id, ok := w.styles[key]; ok {
		return id, true, nil
	}

	xs := &excelize.Style{}
	if key.bold || key.italic || key.underline || key.color != "" || key.fontSize > 0 {
		font := &excelize.Font{Bold: key.bold, Italic: key.italic, Color: key.color, Size: key.fontSize}
		if key.underline {
			font.Underline = "single"
		}
		xs.Font = font
	}
	if key.background != "" {
		xs.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{key.background}}
	}
	if key.align != "" {
		xs.Alignment = &excelize.Alignment{Horizontal: key.align}
	}
	if key.locked {
		xs.Protection = &excelize.Protection{Locked: true}
	}
	switch {
	case key.numberFormat != "":
		numFmt := key.numberFormat
		xs.CustomNumFmt = &numFmt
	case key.typ == models.CellCurrency:
		numFmt := "$#,##0.00"
		xs.CustomNumFmt = &numFmt
	case key.typ == models.CellPercentage:
		xs.NumFmt = 10 // 0.00%
	}

	id, err := w.f.NewStyle(xs)
	if err != nil {
		return 0, false, err
	}
	w.styles[key] = id
	return id, true, nil
}

func (w *xlsxWriter) addChart(anchor models.Address, spec models.ChartSpec) error {
	typ, ok := chartTypeMap[spec.Type]
	if !ok {
		return fmt.Errorf("unsupported chart type %q", spec.Type)
	}

	var categories string
	if spec.LabelRange != "" {
		ref, err := w.sheetRange(spec.LabelRange)
		if err != nil {
			return err
		}
		categories = ref
	}

	chart := &excelize.Chart{Type: typ}
	if spec.Title != "" {
		chart.Title = []excelize.RichTextRun{{Text: spec.Title}}
	}

	if len(spec.Series) > 0 {
		for _, s := range spec.Series {
			values, err := w.sheetRange(s.Values)
			if err != nil {
				return err
			}
			chart.Series = append(chart.Series, excelize.ChartSeries{Name: s.Name, Categories: categories, Values: values})
		}
	} else {
		// One series per column of the data range.
		r, err := parser.ParseRange(spec.DataRange)
		if err != nil {
			return err
		}
		for col := r.C1; col <= r.C2; col++ {
			column := models.Rect{C1: col, R1: r.R1, C2: col, R2: r.R2}
			values, err := w.sheetRange(column.String())
			if err != nil {
				return err
			}
			name, _ := parser.ColumnName(col)
			chart.Series = append(chart.Series, excelize.ChartSeries{Name: name, Categories: categories, Values: values})
		}
	}
	return w.f.AddChart(w.sheet, anchor.String(), chart)
}

// sheetRange qualifies a range with the sheet name in absolute form, e.g.
// Sheet1!$A$1:$A$4.
func (w *xlsxWriter) sheetRange(text string) (string, error) {
	r, err := parser.ParseRange(text)
	if err != nil {
		return "", err
	}
	start, err := absolute(r.Start())
	if err != nil {
		return "", err
	}
	end, err := absolute(r.End())
	if err != nil {
		return "", err
	}
	sheet := w.sheet
	if strings.ContainsAny(sheet, " -'") {
		sheet = "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	}
	return sheet + "!" + start + ":" + end, nil
}

func absolute(a models.Address) (string, error) {
	col, err := parser.ColumnName(a.Col)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("$%s$%d", col, a.Row), nil
}

// hexColor normalizes "#RGB", "#RRGGBB" or "RRGGBB" to "#RRGGBB". Named
// colors have no xlsx equivalent and yield "".
func hexColor(s string) string {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return ""
	}
	for i := 0; i < len(h); i++ {
		c := h[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return ""
		}
	}
	return "#" + strings.ToUpper(h)
}

func alignment(s string) string {
	switch a := strings.ToLower(strings.TrimSpace(s)); a {
	case "left", "center", "right", "justify":
		return a
	}
	return ""
}
