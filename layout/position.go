package layout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrAddress = errors.New("invalid cell address")

// Position identifies a cell by its zero-based line and column.
type Position struct {
	Line   int
	Column int
}

func ParsePosition(addr string) (Position, error) {
	pos, ok := parseAddress(addr)
	if !ok {
		return pos, fmt.Errorf("%w: %q", ErrAddress, addr)
	}
	return pos, nil
}

// parseAddress decodes addr, rejecting the lines and columns beyond MaxLines
// and MaxColumns.
func parseAddress(addr string) (Position, bool) {
	var pos Position
	col, offset := ParseIndex(addr)
	if offset == 0 || offset >= len(addr) || col > MaxColumns {
		return pos, false
	}
	digits := addr[offset:]
	if digits[0] == '0' || len(digits) > len(strconv.Itoa(MaxLines)) {
		return pos, false
	}
	for i := range len(digits) {
		if digits[i] < '0' || digits[i] > '9' {
			return pos, false
		}
	}
	line, err := strconv.Atoi(digits)
	if err != nil || line > MaxLines {
		return pos, false
	}
	pos.Line = line - 1
	pos.Column = col - 1
	return pos, true
}

func (p Position) Equal(other Position) bool {
	return p.Line == other.Line && p.Column == other.Column
}

func (p Position) Compare(other Position) int {
	switch {
	case p.Line < other.Line:
		return -1
	case p.Line > other.Line:
		return 1
	case p.Column < other.Column:
		return -1
	case p.Column > other.Column:
		return 1
	default:
		return 0
	}
}

func (p Position) Valid() bool {
	return p.Line >= 0 && p.Column >= 0
}

func (p Position) Shift(lines, columns int) Position {
	p.Line += lines
	p.Column += columns
	return p
}

func (p Position) Addr() string {
	var buf strings.Builder
	buf.WriteString(ColumnName(p.Column))
	buf.WriteString(strconv.Itoa(p.Line + 1))
	return buf.String()
}

// Key returns the "line,column" form used in debug output.
func (p Position) Key() string {
	return fmt.Sprintf("%d,%d", p.Line, p.Column)
}

func (p Position) String() string {
	return p.Addr()
}

func IsAddress(addr string) bool {
	_, ok := parseAddress(addr)
	return ok
}

// ParseIndex decodes the leading column letters of str as a bijective base 26
// number (A=1) and returns it with the number of bytes consumed. Past
// MaxColumns the index stops growing but stays above MaxColumns.
func ParseIndex(str string) (int, int) {
	var (
		offset int
		index  int
	)
	for offset < len(str) && isLetter(rune(str[offset])) {
		delta := byte('A')
		if isLower(rune(str[offset])) {
			delta = 'a'
		}
		if index <= MaxColumns {
			index = index*26 + int(str[offset]-delta+1)
		}
		offset++
	}
	return index, offset
}

// ColumnIndex returns the zero-based index of the column named by name, or -1.
func ColumnIndex(name string) int {
	ix, offset := ParseIndex(name)
	if offset == 0 || offset != len(name) || ix > MaxColumns {
		return -1
	}
	return ix - 1
}

// ColumnName returns the letters naming the zero-based column ix.
func ColumnName(ix int) string {
	if ix < 0 {
		return ""
	}
	var (
		chars []byte
		n     = ix + 1
	)
	for n > 0 {
		n--
		chars = append(chars, byte('A'+n%26))
		n /= 26
	}
	for i, j := 0, len(chars)-1; i < j; i, j = i+1, j-1 {
		chars[i], chars[j] = chars[j], chars[i]
	}
	return string(chars)
}

func isLower(c rune) bool {
	return c >= 'a' && c <= 'z'
}

func isUpper(c rune) bool {
	return c >= 'A' && c <= 'Z'
}

func isLetter(c rune) bool {
	return isLower(c) || isUpper(c)
}
