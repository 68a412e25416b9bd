// Package types provides common value types.
package types

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Quantity is a fixed-point quantity with 4 decimal places (scale = 1e4).
//
// Stored as BIGINT (scaled integer) so that pack ratios like 0.25 kg sum
// without floating point drift across devices.
type Quantity int64

const (
	QuantityScale    int64 = 10_000
	quantityExponent int32 = -4
)

// NewQuantity returns a whole-unit quantity.
func NewQuantity(units int64) Quantity { return Quantity(units * QuantityScale) }

// NewQuantityFromDecimal rounds d to 4 fractional digits.
func NewQuantityFromDecimal(d decimal.Decimal) Quantity {
	return Quantity(d.Shift(-quantityExponent).Round(0).IntPart())
}

// ParseQuantity parses a decimal string such as "12.5".
func ParseQuantity(s string) (Quantity, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse quantity: %w", err)
	}
	return NewQuantityFromDecimal(d), nil
}

func NewQuantityFromInt64Scaled(v int64) Quantity { return Quantity(v) }

func (q Quantity) Int64Scaled() int64 { return int64(q) }

// Decimal returns q as an exact decimal value.
func (q Quantity) Decimal() decimal.Decimal { return decimal.New(int64(q), quantityExponent) }

func (q Quantity) IsZero() bool { return q == 0 }

func (q Quantity) IsNegative() bool { return q < 0 }

// Max returns the larger of a and b.
func Max(a, b Quantity) Quantity {
	if a > b {
		return a
	}
	return b
}

// String returns the shortest decimal form ("10", "0.25").
func (q Quantity) String() string {
	return q.Decimal().String()
}

// MarshalJSON encodes Quantity as a JSON number.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalJSON accepts either a JSON number or string.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*q = 0
		return nil
	}

	s := string(data)
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	}

	parsed, err := ParseQuantity(s)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// Value stores the scaled integer.
func (q Quantity) Value() (driver.Value, error) {
	return int64(q), nil
}

// Scan reads a scaled BIGINT column. NULL scans as zero.
func (q *Quantity) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*q = 0
	case int64:
		*q = Quantity(v)
	case int32:
		*q = Quantity(v)
	default:
		return fmt.Errorf("scan quantity: unsupported type %T", src)
	}
	return nil
}
