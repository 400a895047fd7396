package parser

import (
	"strconv"

	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/models"
	"github.com/xuri/excelize/v2"
)

// SheetCell is one non-empty cell read from a worksheet.
type SheetCell struct {
	Addr    models.Address
	Value   any
	Formula string
	Link    string
}

// ReadSheet reads the non-empty cells of a worksheet in row-major order.
// Formulas are returned with a leading "=" so they can be replayed as-is.
func ReadSheet(f *excelize.File, sheetName string) ([]SheetCell, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}

	var result []SheetCell
	for rowIdx, row := range rows {
		rowNum := rowIdx + 1
		for colIdx, cellValue := range row {
			cellName, err := excelize.CoordinatesToCellName(colIdx+1, rowNum)
			if err != nil {
				return nil, err
			}

			formula, err := f.GetCellFormula(sheetName, cellName)
			if err != nil {
				return nil, err
			}
			if cellValue == "" && formula == "" {
				continue
			}

			sc := SheetCell{
				Addr:  models.Address{Col: colIdx, Row: rowNum},
				Value: parseValue(cellValue),
			}
			if formula != "" {
				sc.Formula = "=" + formula
			}
			if hasLink, target, err := f.GetCellHyperLink(sheetName, cellName); err == nil && hasLink {
				sc.Link = target
			}
			result = append(result, sc)
		}
	}

	return result, nil
}

// parseValue attempts to parse a string value as a number or boolean.
// Returns float64 for numbers, bool for TRUE/FALSE, or the original string.
func parseValue(s string) any {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch s {
	case "TRUE":
		return true
	case "FALSE":
		return false
	}
	return s
}
