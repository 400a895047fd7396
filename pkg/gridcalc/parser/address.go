// Package parser converts between A1-style text and grid coordinates.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/models"
	"github.com/xuri/excelize/v2"
)

// ErrInvalidAddress indicates malformed cell reference text.
var ErrInvalidAddress = errors.New("invalid address")

// ErrInvalidRange indicates malformed range text.
var ErrInvalidRange = errors.New("invalid range")

// ParseAddress parses text like "AB12" into an Address. Column letters are
// case-insensitive; the row must be a positive integer without leading zeros.
func ParseAddress(text string) (models.Address, error) {
	s := strings.TrimSpace(text)
	split := 0
	for split < len(s) && isLetter(s[split]) {
		split++
	}
	letters, digits := s[:split], s[split:]
	if letters == "" || digits == "" || digits[0] == '0' {
		return models.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, text)
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return models.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, text)
		}
	}

	col, err := excelize.ColumnNameToNumber(letters)
	if err != nil {
		return models.Address{}, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, text, err)
	}
	row, err := strconv.Atoi(digits)
	if err != nil || row > excelize.TotalRows {
		return models.Address{}, fmt.Errorf("%w: %q: row out of range", ErrInvalidAddress, text)
	}
	return models.Address{Col: col - 1, Row: row}, nil
}

// FormatAddress renders an Address in canonical upper-case A1 form.
func FormatAddress(addr models.Address) string {
	return addr.String()
}

// ColumnName returns the letters for a 0-based column index.
func ColumnName(col int) (string, error) {
	return excelize.ColumnNumberToName(col + 1)
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
