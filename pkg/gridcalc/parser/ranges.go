package parser

import (
	"fmt"
	"strings"

	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/models"
)

// ParseRange parses "A1:C10" or a single address into a normalized rectangle.
// Corners may be given in any order; "C1:A1" is the same range as "A1:C1".
// Absolute markers ($A$1) are accepted and ignored.
func ParseRange(text string) (models.Rect, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), "$", "")
	if cleaned == "" {
		return models.Rect{}, fmt.Errorf("%w: empty", ErrInvalidRange)
	}

	parts := strings.Split(cleaned, ":")
	if len(parts) > 2 {
		return models.Rect{}, fmt.Errorf("%w: %q", ErrInvalidRange, text)
	}

	start, err := ParseAddress(parts[0])
	if err != nil {
		return models.Rect{}, fmt.Errorf("%w: %q: %v", ErrInvalidRange, text, err)
	}
	end := start
	if len(parts) == 2 {
		end, err = ParseAddress(parts[1])
		if err != nil {
			return models.Rect{}, fmt.Errorf("%w: %q: %v", ErrInvalidRange, text, err)
		}
	}
	return models.NewRect(start, end), nil
}

// ResolveRange expands a range into its addresses in row-major order.
func ResolveRange(text string) ([]models.Address, error) {
	r, err := ParseRange(text)
	if err != nil {
		return nil, err
	}
	return r.Addresses(), nil
}

// RangeBetween builds the rectangle spanned by two address texts. An empty end
// yields the single start address.
func RangeBetween(start, end string) (models.Rect, error) {
	a, err := ParseAddress(start)
	if err != nil {
		return models.Rect{}, err
	}
	if end == "" {
		return models.NewRect(a, a), nil
	}
	b, err := ParseAddress(end)
	if err != nil {
		return models.Rect{}, err
	}
	return models.NewRect(a, b), nil
}
