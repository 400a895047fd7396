package gridcalc

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/models"
	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/parser"
)

// ChartConfig is the createChart payload.
type ChartConfig struct {
	Title      string               `json:"title,omitempty"`
	DataRange  string               `json:"dataRange"`
	LabelRange string               `json:"labelRange,omitempty"`
	Series     []models.ChartSeries `json:"series,omitempty"`
}

// CreateChart validates the chart and appends it to the grid. It returns the new chart id.
func (e *Engine) CreateChart(chartType string, cfg ChartConfig) (string, error) {
	typ := models.ChartType(chartType)
	if !typ.Valid() {
		return "", fmt.Errorf("%w: unsupported type %q", ErrInvalidChart, chartType)
	}
	if cfg.DataRange == "" {
		return "", fmt.Errorf("%w: dataRange is required", ErrInvalidChart)
	}

	ranges := []string{cfg.DataRange}
	if cfg.LabelRange != "" {
		ranges = append(ranges, cfg.LabelRange)
	}
	for _, s := range cfg.Series {
		ranges = append(ranges, s.Values)
	}
	for _, r := range ranges {
		rect, err := parser.ParseRange(r)
		if err != nil {
			return "", err
		}
		if err := e.resolveRect(rect); err != nil {
			return "", err
		}
	}

	spec := models.ChartSpec{
		ID:         uuid.New().String(),
		Type:       typ,
		Title:      cfg.Title,
		DataRange:  cfg.DataRange,
		LabelRange: cfg.LabelRange,
		Series:     append([]models.ChartSeries(nil), cfg.Series...),
	}
	err := e.mutate("createChart", func(g *models.Grid) error {
		g.Charts = append(g.Charts, spec)
		return nil
	})
	if err != nil {
		return "", err
	}
	return spec.ID, nil
}
