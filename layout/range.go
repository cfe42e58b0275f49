package layout

import (
	"fmt"
	"iter"
	"strings"
)

// Range is the inclusive rectangle between two positions.
type Range struct {
	Starts Position
	Ends   Position
}

func NewRange(starts, ends Position) *Range {
	return &Range{
		Starts: starts,
		Ends:   ends,
	}
}

func ParseRange(str string) (*Range, error) {
	fst, lst, ok := strings.Cut(str, ":")
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a range", ErrAddress, str)
	}
	starts, err := ParsePosition(fst)
	if err != nil {
		return nil, err
	}
	ends, err := ParsePosition(lst)
	if err != nil {
		return nil, err
	}
	return NewRange(starts, ends).Normalize(), nil
}

func IsRange(str string) bool {
	fst, lst, ok := strings.Cut(str, ":")
	return ok && IsAddress(fst) && IsAddress(lst)
}

func (r *Range) Contains(pos Position) bool {
	ok := pos.Line >= r.Starts.Line && pos.Line <= r.Ends.Line
	if !ok {
		return false
	}
	return pos.Column >= r.Starts.Column && pos.Column <= r.Ends.Column
}

func (r *Range) Width() int {
	return r.Ends.Column - r.Starts.Column + 1
}

func (r *Range) Height() int {
	return r.Ends.Line - r.Starts.Line + 1
}

func (r *Range) Len() int {
	return r.Width() * r.Height()
}

func (r *Range) Normalize() *Range {
	x := NewRange(r.Starts, r.Ends)
	x.Starts.Line = min(r.Starts.Line, r.Ends.Line)
	x.Starts.Column = min(r.Starts.Column, r.Ends.Column)
	x.Ends.Line = max(r.Starts.Line, r.Ends.Line)
	x.Ends.Column = max(r.Starts.Column, r.Ends.Column)
	return x
}

// Positions walks the range line by line, from the top left corner to the
// bottom right corner.
func (r *Range) Positions() iter.Seq[Position] {
	return func(yield func(Position) bool) {
		for i := r.Starts.Line; i <= r.Ends.Line; i++ {
			for j := r.Starts.Column; j <= r.Ends.Column; j++ {
				pos := Position{
					Line:   i,
					Column: j,
				}
				if !yield(pos) {
					return
				}
			}
		}
	}
}

func (r *Range) String() string {
	return fmt.Sprintf("%s:%s", r.Starts.Addr(), r.Ends.Addr())
}
