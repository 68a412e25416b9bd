// Package barcode decodes raw scanner input into a product identity.
//
// Three shapes are recognized: EAN-13 retail barcodes, GS1 element strings
// (DataMatrix marking codes, including the legacy fixed-width layout) and
// anything else, which is passed through verbatim as an opaque code.
package barcode

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Scheme classifies a decoded scan.
type Scheme string

const (
	SchemeEAN13   Scheme = "EAN13"
	SchemeGS1     Scheme = "GS1"
	SchemeUnknown Scheme = "UNKNOWN"
)

// Decode failure reasons.
const (
	ErrInvalidBarcode = "INVALID BARCODE"
	ErrNoSeparator    = "No GS Separator"
)

// Identity is the result of decoding one scan.
// Optional fields are empty when the corresponding AI was not present.
// When Error is set only Raw and Scheme are reliable.
type Identity struct {
	Scheme Scheme `json:"scheme"`
	Raw    string `json:"raw"`
	GTIN   string `json:"gtin"`

	Serial string `json:"serial,omitempty"`
	Batch  string `json:"batch,omitempty"`
	Expiry string `json:"expiry,omitempty"`
	NHRN   string `json:"nhrn,omitempty"`
	Check  string `json:"check,omitempty"`
	Weight string `json:"weight,omitempty"`
	MRC    string `json:"mrc,omitempty"`

	Error string `json:"error,omitempty"`
}

// Valid reports whether decoding succeeded.
func (i Identity) Valid() bool { return i.Error == "" }

// IsMark reports whether the scan carries a per-unit marking code.
func (i Identity) IsMark() bool {
	return i.Scheme == SchemeGS1 && i.Valid() && i.Serial != ""
}

// Mark returns the marking code key (GTIN followed by serial).
func (i Identity) Mark() string {
	return i.GTIN + i.Serial
}

// LookupCodes returns barcode candidates for catalog lookup, most specific first.
// A GTIN-14 with a leading zero is also tried as the EAN-13 printed on the pack.
func (i Identity) LookupCodes() []string {
	if i.GTIN == "" {
		return nil
	}
	codes := []string{i.GTIN}
	if len(i.GTIN) == 14 && strings.HasPrefix(i.GTIN, "0") {
		codes = append(codes, i.GTIN[1:])
	}
	return codes
}

// ExpiryDate parses the AI 17 value (YYMMDD).
// Day "00" means the last day of the month.
func (i Identity) ExpiryDate() (time.Time, bool) {
	if len(i.Expiry) != 6 || !isDigits(i.Expiry) {
		return time.Time{}, false
	}
	yy, _ := strconv.Atoi(i.Expiry[0:2])
	mm, _ := strconv.Atoi(i.Expiry[2:4])
	dd, _ := strconv.Atoi(i.Expiry[4:6])
	if mm < 1 || mm > 12 {
		return time.Time{}, false
	}

	year := 2000 + yy
	if dd == 0 {
		// day 0 of the next month is the last day of this one
		return time.Date(year, time.Month(mm)+1, 0, 0, 0, 0, 0, time.UTC), true
	}
	t := time.Date(year, time.Month(mm), dd, 0, 0, 0, 0, time.UTC)
	if t.Day() != dd {
		return time.Time{}, false
	}
	return t, true
}

// WeightKg parses the AI 3103 value: net weight in kilograms, three implied decimals.
func (i Identity) WeightKg() (decimal.Decimal, error) {
	if i.Weight == "" {
		return decimal.Zero, fmt.Errorf("no weight in barcode")
	}
	if !isDigits(i.Weight) {
		return decimal.Zero, fmt.Errorf("invalid weight %q", i.Weight)
	}
	v, err := decimal.NewFromString(i.Weight)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse weight: %w", err)
	}
	return v.Shift(-3), nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
