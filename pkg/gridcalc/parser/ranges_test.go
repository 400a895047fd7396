package parser

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/models"
)

func TestResolveRangeSingleCell(t *testing.T) {
	single, err := ResolveRange("A1")
	if err != nil {
		t.Fatalf("ResolveRange(A1) failed: %v", err)
	}
	degenerate, err := ResolveRange("A1:A1")
	if err != nil {
		t.Fatalf("ResolveRange(A1:A1) failed: %v", err)
	}
	if !reflect.DeepEqual(single, degenerate) {
		t.Errorf("A1 = %v, A1:A1 = %v", single, degenerate)
	}
	if len(single) != 1 || single[0] != (models.Address{Col: 0, Row: 1}) {
		t.Errorf("Expected [A1], got %v", single)
	}
}

func TestResolveRangeReversedCorners(t *testing.T) {
	forward, err := ResolveRange("A1:C1")
	if err != nil {
		t.Fatal(err)
	}
	reversed, err := ResolveRange("C1:A1")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(forward, reversed) {
		t.Errorf("A1:C1 = %v, C1:A1 = %v", forward, reversed)
	}
}

func TestResolveRangeRowMajor(t *testing.T) {
	got, err := ResolveRange("B2:A1")
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, a := range got {
		names = append(names, a.String())
	}
	expected := []string{"A1", "B1", "A2", "B2"}
	if !reflect.DeepEqual(names, expected) {
		t.Errorf("Expected %v, got %v", expected, names)
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		input    string
		expected models.Rect
	}{
		{"A1:D10", models.Rect{C1: 0, R1: 1, C2: 3, R2: 10}},
		{"$A$1:$D$10", models.Rect{C1: 0, R1: 1, C2: 3, R2: 10}},
		{"D10:A1", models.Rect{C1: 0, R1: 1, C2: 3, R2: 10}},
		{"B3", models.Rect{C1: 1, R1: 3, C2: 1, R2: 3}},
	}

	for _, tt := range tests {
		got, err := ParseRange(tt.input)
		if err != nil {
			t.Errorf("ParseRange(%q) failed: %v", tt.input, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseRange(%q) = %+v, expected %+v", tt.input, got, tt.expected)
		}
	}

	for _, input := range []string{"", ":", "A1:", "A1:B2:C3", "A1-B2", "foo"} {
		if _, err := ParseRange(input); !errors.Is(err, ErrInvalidRange) {
			t.Errorf("ParseRange(%q) error = %v, expected ErrInvalidRange", input, err)
		}
	}
}

func TestUsedRange(t *testing.T) {
	g := models.NewGrid(26, 100)
	if got := UsedRange(g); got != "" {
		t.Errorf("Expected empty used range, got %q", got)
	}

	g.Cells[models.Address{Col: 1, Row: 2}] = models.Cell{Value: 1.0, Type: models.CellNumber}
	g.Cells[models.Address{Col: 3, Row: 7}] = models.Cell{Value: "x", Type: models.CellText}
	g.Cells[models.Address{Col: 9, Row: 50}] = models.Cell{Type: models.CellText}

	if got := UsedRange(g); got != "B2:D7" {
		t.Errorf("Expected B2:D7, got %q", got)
	}
}
