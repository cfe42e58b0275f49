package value

import (
	"math"
	"strconv"
)

type Float float64

func (Float) Type() string {
	return "number"
}

func (Float) Kind() ValueKind {
	return KindNumber
}

func (f Float) String() string {
	return strconv.FormatFloat(float64(f), 'f', -1, 64)
}

func (f Float) Scalar() any {
	return float64(f)
}

func (f Float) Equal(other Value) (bool, error) {
	x, ok := other.(Float)
	if !ok {
		return false, nil
	}
	return float64(f) == float64(x), nil
}

func (f Float) Less(other Value) (bool, error) {
	x, ok := other.(Float)
	if !ok {
		return false, typeError(KindNumber, other)
	}
	return float64(f) < float64(x), nil
}

type Text string

func (Text) Type() string {
	return "text"
}

func (Text) Kind() ValueKind {
	return KindText
}

func (t Text) String() string {
	return string(t)
}

func (t Text) Scalar() any {
	return string(t)
}

func (t Text) Equal(other Value) (bool, error) {
	x, ok := other.(Text)
	if !ok {
		return false, nil
	}
	return string(t) == string(x), nil
}

func (t Text) Less(other Value) (bool, error) {
	x, ok := other.(Text)
	if !ok {
		return false, typeError(KindText, other)
	}
	return string(t) < string(x), nil
}

type Boolean bool

func (Boolean) Type() string {
	return "boolean"
}

func (Boolean) Kind() ValueKind {
	return KindBoolean
}

func (b Boolean) String() string {
	return strconv.FormatBool(bool(b))
}

func (b Boolean) Scalar() any {
	return bool(b)
}

func (b Boolean) Equal(other Value) (bool, error) {
	x, ok := other.(Boolean)
	if !ok {
		return false, nil
	}
	return bool(b) == bool(x), nil
}

func (b Boolean) Less(other Value) (bool, error) {
	x, ok := other.(Boolean)
	if !ok {
		return false, typeError(KindBoolean, other)
	}
	return !bool(b) && bool(x), nil
}

// ParseNumber parses str as a decimal number. Spellings of infinity and NaN
// accepted by strconv are rejected.
func ParseNumber(str string) (Float, bool) {
	n, err := strconv.ParseFloat(str, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return Float(n), true
}

// Coerce converts the raw text of a literal cell: empty and non numeric texts
// are kept as is, anything else becomes a number.
func Coerce(raw string) Value {
	if raw == "" {
		return Text(raw)
	}
	if n, ok := ParseNumber(raw); ok {
		return n
	}
	return Text(raw)
}
