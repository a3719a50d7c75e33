package domain

import (
	"errors"
	"testing"
)

func TestSKUString(t *testing.T) {
	got := SKU{Prefix: "MILI", Year: 2025, Number: 7}.String()
	if got != "MILI-2025-0007" {
		t.Fatalf("got %s, want MILI-2025-0007", got)
	}

	// Numbers past 9999 widen instead of wrapping.
	got = SKU{Prefix: "ART", Year: 2025, Number: 10001}.String()
	if got != "ART-2025-10001" {
		t.Fatalf("got %s, want ART-2025-10001", got)
	}
}

func TestStringRoundTripsParse(t *testing.T) {
	// Any string Parse accepts must come back out unchanged, leading
	// zeros in the year included.
	for _, raw := range []string{"MILI-2025-0001", "ABCD-0012-0034"} {
		sku, err := Parse(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got := sku.String(); got != raw {
			t.Errorf("round trip: got %q, want %q", got, raw)
		}
	}
}

func TestValid(t *testing.T) {
	for raw, want := range map[string]bool{
		"MILI-2025-0001":    true,
		"ART-2025-0042":     true,
		"mili-2025-0001":    false,
		"MILI-25-0001":      false,
		"MILI-2025-001":     false,
		"TOOLONG-2025-0001": false,
		"":                  false,
	} {
		if Valid(raw) != want {
			t.Errorf("Valid(%q) = %v, want %v", raw, !want, want)
		}
	}
}

func TestParse(t *testing.T) {
	sku, err := Parse(" mili-2025-0042 ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sku.Prefix != "MILI" || sku.Year != 2025 || sku.Number != 42 {
		t.Fatalf("parse: got %+v", sku)
	}

	if _, err := Parse("BAD-SKU"); !errors.Is(err, ErrInvalidSKU) {
		t.Fatalf("got %v, want ErrInvalidSKU", err)
	}
}
