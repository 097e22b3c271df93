// internal/core/domain/row.go
package domain

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Row is a single query result row, keyed by lower-cased column name.
// Values carry whatever shape the driver produced; the typed accessors
// below normalize the shapes go-ora is known to return for each Oracle type
// (VARCHAR2 as string, NUMBER as float64/int64/string, DATE as time.Time).
type Row map[string]any

// String returns the value for key as a string, or "" when the column is
// NULL or absent.
func (r Row) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

// Time returns the value for key as a *time.Time, or nil when NULL or absent.
func (r Row) Time(key string) *time.Time {
	v, ok := r[key]
	if !ok || v == nil {
		return nil
	}
	if t, ok := v.(time.Time); ok {
		return &t
	}
	return nil
}

// Int64 returns the value for key as an int64, or 0 when NULL, absent, or
// not numeric.
func (r Row) Int64(key string) int64 {
	v, ok := r[key]
	if !ok || v == nil {
		return 0
	}
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Decimal returns the value for key as a *decimal.Decimal, or nil when NULL,
// absent, or unparseable.
func (r Row) Decimal(key string) *decimal.Decimal {
	v, ok := r[key]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case float64:
		d := decimal.NewFromFloat(t)
		return &d
	case int64:
		d := decimal.NewFromInt(t)
		return &d
	case string:
		if d, err := decimal.NewFromString(t); err == nil {
			return &d
		}
		return nil
	case []byte:
		if d, err := decimal.NewFromString(string(t)); err == nil {
			return &d
		}
		return nil
	default:
		if d, err := decimal.NewFromString(fmt.Sprint(v)); err == nil {
			return &d
		}
		return nil
	}
}
