package models

// CellStyle holds presentational attributes. Unset fields (nil or zero) leave the
// underlying style untouched when merged.
type CellStyle struct {
	Bold         *bool   `json:"bold,omitempty"`
	Italic       *bool   `json:"italic,omitempty"`
	Underline    *bool   `json:"underline,omitempty"`
	Color        string  `json:"color,omitempty"`
	Background   string  `json:"background,omitempty"`
	Align        string  `json:"align,omitempty"`
	NumberFormat string  `json:"numberFormat,omitempty"`
	FontSize     float64 `json:"fontSize,omitempty"`
}

// Merge returns s with every set field of fragment applied over it.
func (s CellStyle) Merge(fragment CellStyle) CellStyle {
	if fragment.Bold != nil {
		s.Bold = boolPtr(*fragment.Bold)
	}
	if fragment.Italic != nil {
		s.Italic = boolPtr(*fragment.Italic)
	}
	if fragment.Underline != nil {
		s.Underline = boolPtr(*fragment.Underline)
	}
	if fragment.Color != "" {
		s.Color = fragment.Color
	}
	if fragment.Background != "" {
		s.Background = fragment.Background
	}
	if fragment.Align != "" {
		s.Align = fragment.Align
	}
	if fragment.NumberFormat != "" {
		s.NumberFormat = fragment.NumberFormat
	}
	if fragment.FontSize != 0 {
		s.FontSize = fragment.FontSize
	}
	return s
}

// IsZero reports whether no attribute is set.
func (s CellStyle) IsZero() bool {
	return s == CellStyle{}
}

func boolPtr(b bool) *bool { return &b }
