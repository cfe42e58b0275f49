package value

import (
	"errors"
	"fmt"
)

var ErrType = errors.New("invalid type")

type ValueKind int8

const (
	KindNumber ValueKind = 1 << iota
	KindText
	KindBoolean
)

func (k ValueKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// Value is the content of a cell: a number, a text or a boolean.
type Value interface {
	Kind() ValueKind
	Type() string
	Scalar() any
	fmt.Stringer
}

type Comparable interface {
	Equal(Value) (bool, error)
	Less(Value) (bool, error)
}

// TypeError reports a value reaching an operation expecting another kind.
type TypeError struct {
	Want ValueKind
	Got  Value
}

func typeError(want ValueKind, got Value) error {
	return TypeError{
		Want: want,
		Got:  got,
	}
}

func (e TypeError) Error() string {
	if e.Got == nil {
		return fmt.Sprintf("%s expected but got nothing", e.Want)
	}
	return fmt.Sprintf("%s expected but got %s(%q)", e.Want, e.Got.Type(), e.Got.String())
}

func (e TypeError) Is(err error) bool {
	return err == ErrType
}

// Empty is the value of a cell that was never written.
func Empty() Value {
	return Text("")
}

func IsEmpty(val Value) bool {
	t, ok := val.(Text)
	return ok && t == ""
}
