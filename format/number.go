package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/midbel/sheetspread/value"
)

const (
	decimalSep  = '.'
	thousandSep = ','
)

// numberFormatter renders numbers with a pattern made of an optional leading
// '+', '0' for mandatory digits, '#' for optional digits, ',' to group the
// integral part by thousands and a '.' before the fractional part.
type numberFormatter struct {
	minInt int
	minDec int
	maxDec int

	signAlways  bool
	hasGrouping bool
}

func ParseNumber(pattern string) (Formatter, error) {
	var nf numberFormatter

	left, right, _ := strings.Cut(pattern, string(decimalSep))
	if strings.HasPrefix(left, "+") {
		nf.signAlways = true
		left = left[1:]
	}
	if left == "" {
		return nil, fmt.Errorf("%w: %q", ErrPattern, pattern)
	}

	optional := false
	for i := 0; i < len(right); i++ {
		switch c := right[i]; {
		case c == '0' && !optional:
			nf.minDec++
		case c == '#':
			optional = true
		default:
			return nil, fmt.Errorf("%w: unexpected character %q in fractional part", ErrPattern, c)
		}
		nf.maxDec++
	}

	optional = false
	for i := len(left) - 1; i >= 0; i-- {
		switch c := left[i]; {
		case c == thousandSep:
			nf.hasGrouping = true
		case c == '0' && !optional:
			nf.minInt++
		case c == '#':
			optional = true
		default:
			return nil, fmt.Errorf("%w: unexpected character %q in integral part", ErrPattern, c)
		}
	}
	return nf, nil
}

func (nf numberFormatter) Format(v value.Value) (string, error) {
	n, ok := v.(value.Float)
	if !ok {
		return "", fmt.Errorf("%s: value is not a number", v.Kind())
	}
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return n.String(), nil
	}
	str := strconv.FormatFloat(math.Abs(f), 'f', nf.maxDec, 64)
	integral, fractional, _ := strings.Cut(str, string(decimalSep))

	fractional = strings.TrimRight(fractional, "0")
	if z := len(fractional); z < nf.minDec {
		fractional += strings.Repeat("0", nf.minDec-z)
	}
	if z := len(integral); z < nf.minInt {
		integral = strings.Repeat("0", nf.minInt-z) + integral
	}
	if nf.hasGrouping {
		integral = group(integral)
	}

	var buf strings.Builder
	switch negative := f < 0 && strings.Trim(integral+fractional, "0,") != ""; {
	case negative:
		buf.WriteByte('-')
	case nf.signAlways:
		buf.WriteByte('+')
	}
	buf.WriteString(integral)
	if fractional != "" {
		buf.WriteByte(decimalSep)
		buf.WriteString(fractional)
	}
	return buf.String(), nil
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var (
		buf  strings.Builder
		head = len(digits) % 3
	)
	if head > 0 {
		buf.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if buf.Len() > 0 {
			buf.WriteByte(thousandSep)
		}
		buf.WriteString(digits[i : i+3])
	}
	return buf.String()
}
