package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies what a cell Value holds.
type Kind uint8

const (
	KindMissing Kind = iota
	KindNumber
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	default:
		return "missing"
	}
}

// Value is a single table cell: a number, a string, or missing.
// The zero Value is missing.
type Value struct {
	kind Kind
	num  float64
	str  string
}

// Missing returns the missing Value.
func Missing() Value { return Value{} }

// Number returns a numeric Value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// String returns a string Value. Strings are kept verbatim, including
// surrounding whitespace.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Kind reports what the value holds.
func (v Value) Kind() Kind { return v.kind }

// IsNumber reports whether v holds a number.
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// IsString reports whether v holds a string (possibly blank).
func (v Value) IsString() bool { return v.kind == KindString }

// Float returns the numeric payload; ok is false for non-numbers.
func (v Value) Float() (f float64, ok bool) {
	return v.num, v.kind == KindNumber
}

// Str returns the raw string payload; ok is false for non-strings.
func (v Value) Str() (s string, ok bool) {
	return v.str, v.kind == KindString
}

// IsMissing reports whether v counts as missing data. Absent values and
// strings that are empty after trimming are equivalent.
func (v Value) IsMissing() bool {
	switch v.kind {
	case KindMissing:
		return true
	case KindString:
		return strings.TrimSpace(v.str) == ""
	default:
		return false
	}
}

// Text returns the value stringified the way it is exported and compared
// for uniqueness. Missing values stringify to "".
func (v Value) Text() string {
	switch v.kind {
	case KindNumber:
		return FormatNumber(v.num)
	case KindString:
		return v.str
	default:
		return ""
	}
}

func (v Value) String() string {
	if v.kind == KindMissing {
		return "<missing>"
	}
	return v.Text()
}

// MarshalJSON encodes numbers as JSON numbers, strings as strings and
// missing values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return []byte(FormatNumber(v.num)), nil
	case KindString:
		return json.Marshal(v.str)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a JSON number, string, null, or boolean. Booleans
// are kept as their string form since the table model has no boolean kind.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	switch x := raw.(type) {
	case nil:
		*v = Missing()
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return fmt.Errorf("cell value %s: %w", x, err)
		}
		*v = Number(f)
	case string:
		*v = String(x)
	case bool:
		*v = String(strconv.FormatBool(x))
	default:
		return fmt.Errorf("unsupported cell value %s", string(data))
	}
	return nil
}

// FormatNumber renders f the way a browser's String(n) does: the shortest
// decimal that round-trips, switching to exponent form for very large or
// very small magnitudes.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		// Go pads exponents to two digits ("1e+06"); browsers do not.
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		if digits == "" {
			digits = "0"
		}
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
