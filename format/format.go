package format

import (
	"errors"

	"github.com/midbel/sheetspread/value"
)

var ErrPattern = errors.New("invalid pattern")

type Formatter interface {
	Format(value.Value) (string, error)
}

// ValueFormatter dispatches on the kind of a value. Values without a
// formatter for their kind are rendered with their String method.
type ValueFormatter struct {
	formatters map[value.ValueKind]Formatter
}

func FormatValue() *ValueFormatter {
	vf := ValueFormatter{
		formatters: make(map[value.ValueKind]Formatter),
	}
	return &vf
}

func (vf *ValueFormatter) Set(kind value.ValueKind, formatter Formatter) {
	vf.formatters[kind] = formatter
}

func (vf *ValueFormatter) Number(pattern string) error {
	f, err := ParseNumber(pattern)
	if err == nil {
		vf.Set(value.KindNumber, f)
	}
	return err
}

func (vf *ValueFormatter) Bool(yes, no string) {
	vf.Set(value.KindBoolean, boolFormatter{yes: yes, no: no})
}

func (vf *ValueFormatter) Format(v value.Value) (string, error) {
	f, ok := vf.formatters[v.Kind()]
	if ok {
		return f.Format(v)
	}
	return v.String(), nil
}

// Display formats v with the number pattern given. Anything that is not a
// number, or a pattern that can not be parsed, gives the default text of v.
func Display(v value.Value, pattern string) string {
	if pattern == "" {
		return v.String()
	}
	vf := FormatValue()
	if err := vf.Number(pattern); err != nil {
		return v.String()
	}
	str, err := vf.Format(v)
	if err != nil {
		return v.String()
	}
	return str
}

type boolFormatter struct {
	yes string
	no  string
}

func (f boolFormatter) Format(v value.Value) (string, error) {
	b, ok := v.(value.Boolean)
	if !ok {
		return "", errors.New("value is not a boolean")
	}
	if b {
		return f.yes, nil
	}
	return f.no, nil
}
