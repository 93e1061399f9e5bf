package schema

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
	"unicode/utf8"

	"pharmacy-store/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxExactFloat is the largest magnitude a JSON number carries without losing
// integer precision.
const maxExactFloat = 1 << 53

// ErrInvalidValue is returned by Coerce and ParseKey.
var ErrInvalidValue = errors.New("invalid column value")

// ParseKey parses the textual form of t's primary key.
func (t *Table) ParseKey(raw string) (interface{}, error) {
	pk := t.PrimaryKeyColumn()
	switch pk.Kind {
	case UUID:
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%s.%s %q: %w", t.Name, pk.Name, raw, ErrInvalidValue)
		}
		return id, nil
	default:
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%s.%s %q: %w", t.Name, pk.Name, raw, ErrInvalidValue)
		}
		return id, nil
	}
}

// Coerce converts a decoded JSON value into the Go value stored in c,
// enforcing nullability, lengths, enumerations and fixed-point bounds.
func (c Column) Coerce(v interface{}) (interface{}, error) {
	invalid := func(reason string) error {
		return fmt.Errorf("%s: %s: %w", c.Name, reason, ErrInvalidValue)
	}

	if v == nil {
		if !c.Nullable {
			return nil, invalid("may not be null")
		}
		return nil, nil
	}

	switch c.Kind {
	case UUID:
		s, ok := v.(string)
		if !ok {
			return nil, invalid("expected uuid string")
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, invalid(err.Error())
		}
		return id, nil

	case Integer, BigInteger, AutoIncrement, BigAutoIncrement:
		switch n := v.(type) {
		case float64:
			if n != math.Trunc(n) {
				return nil, invalid("expected integer")
			}
			if math.Abs(n) > maxExactFloat {
				return nil, invalid("integer out of range")
			}
			return int64(n), nil
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		case string:
			i, err := strconv.ParseInt(n, 10, 64)
			if err != nil {
				return nil, invalid("expected integer")
			}
			return i, nil
		}
		return nil, invalid("expected integer")

	case Varchar:
		s, ok := v.(string)
		if !ok {
			return nil, invalid("expected string")
		}
		if utf8.RuneCountInString(s) > c.Size {
			return nil, invalid(fmt.Sprintf("longer than %d characters", c.Size))
		}
		if c.Enum != "" && !inDomain(models.EnumValues()[c.Enum], s) {
			return nil, fmt.Errorf("%s %q: %w", c.Name, s, models.ErrInvalidEnum)
		}
		return s, nil

	case Decimal:
		var d decimal.Decimal
		switch n := v.(type) {
		case float64:
			d = decimal.NewFromFloat(n)
		case string:
			parsed, err := decimal.NewFromString(n)
			if err != nil {
				return nil, invalid("expected decimal")
			}
			d = parsed
		case decimal.Decimal:
			d = n
		default:
			return nil, invalid("expected decimal")
		}
		if !models.FitsDecimal(d, c.Precision, c.Scale) {
			return nil, invalid(fmt.Sprintf("does not fit NUMERIC(%d,%d)", c.Precision, c.Scale))
		}
		return d, nil

	case Date:
		s, ok := v.(string)
		if !ok {
			return nil, invalid("expected date string")
		}
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, invalid("expected YYYY-MM-DD")
		}
		return d, nil

	case Time:
		s, ok := v.(string)
		if !ok {
			return nil, invalid("expected time string")
		}
		tod, err := models.ParseTimeOfDay(s)
		if err != nil {
			return nil, invalid(err.Error())
		}
		return tod, nil

	case Timestamp:
		s, ok := v.(string)
		if !ok {
			return nil, invalid("expected RFC 3339 timestamp")
		}
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, invalid("expected RFC 3339 timestamp")
		}
		return ts, nil

	case Boolean:
		b, ok := v.(bool)
		if !ok {
			return nil, invalid("expected boolean")
		}
		return b, nil
	}
	return nil, invalid("unsupported column kind " + c.Kind.String())
}

func inDomain(domain []string, s string) bool {
	for _, v := range domain {
		if v == s {
			return true
		}
	}
	return false
}
