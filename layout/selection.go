package layout

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Selection picks zero-based column indices out of a sheet of the given size.
type Selection interface {
	Indices(Dimension) []int
}

// SelectionFromString parses a list of column specifications separated by
// semicolons: "B", "A:C" or "A:H:2" (with a step).
func SelectionFromString(str string) (Selection, error) {
	var (
		list  []Selection
		parts = strings.Split(str, ";")
	)
	for _, str := range parts {
		parts := strings.Split(strings.TrimSpace(str), ":")
		switch n := len(parts); n {
		case 1:
			ix := ColumnIndex(parts[0])
			if ix < 0 {
				return nil, fmt.Errorf("selection: invalid column %q", parts[0])
			}
			list = append(list, columnRef{
				Index: ix,
			})
		case 2, 3:
			ref := columnSpan{
				Starts: -1,
				Ends:   -1,
				Step:   1,
			}
			for i, ptr := range []*int{&ref.Starts, &ref.Ends} {
				if parts[i] == "" {
					continue
				}
				if *ptr = ColumnIndex(parts[i]); *ptr < 0 {
					return nil, fmt.Errorf("selection: invalid column %q", parts[i])
				}
			}
			if n == 3 && parts[2] != "" {
				st, err := strconv.Atoi(parts[2])
				if err != nil {
					return nil, err
				}
				ref.Step = st
			}
			list = append(list, ref)
		default:
			return nil, fmt.Errorf("selection: invalid syntax")
		}
	}
	if len(list) == 1 {
		return list[0], nil
	}
	combined := combinedRef{
		list: list,
	}
	return combined, nil
}

// SelectAll keeps every column.
func SelectAll() Selection {
	return columnSpan{
		Starts: -1,
		Ends:   -1,
		Step:   1,
	}
}

type columnRef struct {
	Index int
}

func (c columnRef) Indices(dim Dimension) []int {
	if c.Index >= 0 && c.Index < dim.Columns {
		return []int{c.Index}
	}
	return nil
}

type columnSpan struct {
	Starts int
	Ends   int
	Step   int
}

func (c columnSpan) Indices(dim Dimension) []int {
	var (
		all     []int
		step    = c.Step
		starts  = c.Starts
		ends    = c.Ends
		last    = dim.Columns - 1
		forward bool
	)
	if step == 0 {
		step = 1
	}
	forward = step > 0

	if starts < 0 {
		if forward {
			starts = 0
		} else {
			starts = last
		}
	}
	if ends < 0 {
		if forward {
			ends = last
		} else {
			ends = 0
		}
	}

	if forward {
		starts = max(starts, 0)
		ends = min(ends, last)

		for i := starts; i <= ends; i += step {
			all = append(all, i)
		}
	} else {
		starts = min(starts, last)
		ends = max(ends, 0)

		for i := starts; i >= ends; i += step {
			all = append(all, i)
		}
	}
	return all
}

type combinedRef struct {
	list []Selection
}

func (r combinedRef) Indices(dim Dimension) []int {
	var all []int
	for i := range r.list {
		all = slices.Concat(all, r.list[i].Indices(dim))
	}
	return all
}
