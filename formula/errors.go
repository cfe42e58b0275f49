package formula

import (
	"errors"
	"fmt"

	"github.com/midbel/sheetspread/formula/op"
)

var (
	ErrTokenize    = errors.New("tokenizer error")
	ErrInvalidExpr = errors.New("invalid expression")
	ErrInvalidForm = errors.New("invalid form")
	ErrArgCount    = errors.New("invalid number of arguments")
	ErrUnsupported = errors.New("unsupported operation")
	ErrReference   = errors.New("invalid reference")
)

// ArgCountError reports an operator called with the wrong number of operands.
type ArgCountError struct {
	Op      op.Op
	Got     int
	Want    int
	AtLeast bool
}

func (e ArgCountError) Error() string {
	if e.AtLeast {
		return fmt.Sprintf("%s: %d argument(s) given, at least %d expected", e.Op, e.Got, e.Want)
	}
	return fmt.Sprintf("%s: %d argument(s) given, %d expected", e.Op, e.Got, e.Want)
}

func (e ArgCountError) Is(err error) bool {
	return err == ErrArgCount
}

func tokenizeError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrTokenize, fmt.Sprintf(format, args...))
}
