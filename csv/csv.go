package csv

import (
	"errors"
)

const (
	quote = '"'
	nl    = '\n'
	cr    = '\r'
	space = ' '
)

var (
	ErrQuote        = errors.New("bare quote in unquoted field")
	ErrFieldCount   = errors.New("wrong number of fields")
	ErrCarriage     = errors.New("carriage return not followed by newline")
	ErrAfterQuote   = errors.New("unexpected character after quoted field")
	errUnterminated = errors.New("unterminated quoted field")
)
