package gridcalc

import (
	"fmt"
	"log/slog"

	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/models"
	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/parser"
	"github.com/xuri/excelize/v2"
)

// ImportSheet replaces the cells of the grid with the contents of a worksheet
// in an xlsx file. An empty sheet name selects the first sheet. Formulas are
// evaluated once every cell is in place. It returns the number of cells read.
func (e *Engine) ImportSheet(path, sheet string) (int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return 0, fmt.Errorf("%w: %s has no sheets", ErrInvalidArgument, path)
		}
		sheet = list[0]
	}

	cells, err := parser.ReadSheet(f, sheet)
	if err != nil {
		return 0, err
	}
	for _, sc := range cells {
		if !e.grid.InBounds(sc.Addr) {
			return 0, fmt.Errorf("%w: %s!%s (grid is %dx%d)", ErrOutOfBounds, sheet, sc.Addr, e.grid.Columns, e.grid.Rows)
		}
	}

	err = e.mutate("import", func(g *models.Grid) error {
		g.Cells = make(map[models.Address]models.Cell, len(cells))
		var formulas []models.Address
		for _, sc := range cells {
			var cell models.Cell
			switch {
			case sc.Formula != "":
				cell.Formula = sc.Formula
				cell.Type = models.CellFormula
				formulas = append(formulas, sc.Addr)
			case sc.Link != "":
				cell.Value = models.Hyperlink{URL: sc.Link, Text: fmt.Sprint(sc.Value)}
				cell.Type = models.CellLink
			default:
				cell.Value, cell.Type = inferValue(sc.Value)
			}
			g.Cells[sc.Addr] = cell
		}
		// ReadSheet returns cells in row-major order.
		for _, a := range formulas {
			cell := g.Cells[a]
			cell.Value = e.evaluate(cell.Formula, a, g)
			g.Cells[a] = cell
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	e.logger.Info("sheet imported",
		slog.String("path", path),
		slog.String("sheet", sheet),
		slog.Int("cells", len(cells)))
	return len(cells), nil
}
