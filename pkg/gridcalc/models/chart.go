package models

// ChartType names a chart kind accepted by createChart.
type ChartType string

const (
	ChartBar      ChartType = "bar"
	ChartColumn   ChartType = "column"
	ChartLine     ChartType = "line"
	ChartPie      ChartType = "pie"
	ChartArea     ChartType = "area"
	ChartScatter  ChartType = "scatter"
	ChartDoughnut ChartType = "doughnut"
)

// Valid reports whether t is a supported chart type.
func (t ChartType) Valid() bool {
	switch t {
	case ChartBar, ChartColumn, ChartLine, ChartPie, ChartArea, ChartScatter, ChartDoughnut:
		return true
	}
	return false
}

// ChartSeries represents series metadata for a chart.
type ChartSeries struct {
	// Name is the series display name.
	Name string `json:"name"`
	// Values is the range holding the series values.
	Values string `json:"values"`
}

// ChartSpec describes a chart attached to the grid. Rendering is left to consumers.
type ChartSpec struct {
	// ID is the unique chart id.
	ID string `json:"id"`
	// Type is the chart kind.
	Type ChartType `json:"type"`
	// Title is the chart title.
	Title string `json:"title,omitempty"`
	// DataRange is the range holding the plotted values.
	DataRange string `json:"dataRange"`
	// LabelRange is the range holding category labels (optional).
	LabelRange string `json:"labelRange,omitempty"`
	// Series lists explicit series; when empty, DataRange is one series per column.
	Series []ChartSeries `json:"series,omitempty"`
}
