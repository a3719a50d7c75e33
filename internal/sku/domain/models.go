package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// SKU is the unique product identifier, PREFIX-YEAR-NNNN
// (e.g. MILI-2025-0001). The prefix is 3-4 uppercase letters fixed per
// category, the year is the allocation year, and the number is a
// zero-padded sequence scoped per (prefix, year).
type SKU struct {
	Prefix string
	Year   int
	Number int
}

var pattern = regexp.MustCompile(`^[A-Z]{3,4}-\d{4}-\d{4}$`)

var (
	ErrInvalidSKU      = errors.New("invalid_sku")
	ErrUnknownCategory = errors.New("unknown_category")

	// ErrPersistence means the counter store could not be read or
	// written. Allocation never falls back to an in-memory counter:
	// that would risk duplicate SKUs after a restart.
	ErrPersistence = errors.New("sku_persistence")
)

func (s SKU) String() string {
	return fmt.Sprintf("%s-%04d-%04d", s.Prefix, s.Year, s.Number)
}

// Valid reports whether raw matches the SKU pattern exactly.
func Valid(raw string) bool {
	return pattern.MatchString(raw)
}

// Parse splits a SKU string into its components.
func Parse(raw string) (SKU, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if !pattern.MatchString(raw) {
		return SKU{}, fmt.Errorf("%w: %q", ErrInvalidSKU, raw)
	}
	parts := strings.Split(raw, "-")
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return SKU{}, fmt.Errorf("%w: %q", ErrInvalidSKU, raw)
	}
	number, err := strconv.Atoi(parts[2])
	if err != nil {
		return SKU{}, fmt.Errorf("%w: %q", ErrInvalidSKU, raw)
	}
	return SKU{Prefix: parts[0], Year: year, Number: number}, nil
}

// Counter is one durable sequence row, keyed by (prefix, year).
type Counter struct {
	Prefix     string    `gorm:"primaryKey;size:8" json:"prefix"`
	Year       int       `gorm:"primaryKey" json:"year"`
	LastNumber int       `gorm:"not null" json:"last_number"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (Counter) TableName() string {
	return "sku_counters"
}

// Stats summarizes allocation counts across prefixes and years.
type Stats struct {
	Prefixes   map[string]PrefixStats `json:"prefixes"`
	GrandTotal int                    `json:"grand_total"`
}

type PrefixStats struct {
	Total  int         `json:"total"`
	ByYear map[int]int `json:"by_year"`
}
