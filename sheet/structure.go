package sheet

import (
	"fmt"
	"slices"

	"github.com/midbel/sheetspread/layout"
)

// Side tells where a line is inserted or deleted relative to the selected
// cell.
type Side int8

const (
	Current Side = iota
	Before
	After
)

func (s Side) String() string {
	switch s {
	case Before:
		return "before"
	case After:
		return "after"
	default:
		return "current"
	}
}

func SideFromString(str string) (Side, error) {
	switch str {
	case "", "current":
		return Current, nil
	case "before", "above", "left":
		return Before, nil
	case "after", "below", "right":
		return After, nil
	default:
		return Current, fmt.Errorf("%s invalid value for side", str)
	}
}

type axis int8

const (
	lineAxis axis = iota
	columnAxis
)

func (a axis) index(pos layout.Position) int {
	if a == lineAxis {
		return pos.Line
	}
	return pos.Column
}

func (a axis) shift(pos layout.Position, n int) layout.Position {
	if a == lineAxis {
		return pos.Shift(n, 0)
	}
	return pos.Shift(0, n)
}

func (a axis) size(dim layout.Dimension) int {
	if a == lineAxis {
		return dim.Lines
	}
	return dim.Columns
}

func (a axis) String() string {
	if a == lineAxis {
		return "row"
	}
	return "column"
}

// InsertRow adds an empty row above (Before, Current) or below (After) the
// selected cell.
func (s *Sheet) InsertRow(side Side) error {
	return s.insert(lineAxis, side)
}

// InsertColumn adds an empty column on the left (Before, Current) or on the
// right (After) of the selected cell.
func (s *Sheet) InsertColumn(side Side) error {
	return s.insert(columnAxis, side)
}

// DeleteRow removes the selected row (Current), the one above it (Before) or
// the one below it (After).
func (s *Sheet) DeleteRow(side Side) error {
	return s.delete(lineAxis, side)
}

// DeleteColumn removes the selected column (Current), the one on its left
// (Before) or the one on its right (After).
func (s *Sheet) DeleteColumn(side Side) error {
	return s.delete(columnAxis, side)
}

func (s *Sheet) insert(ax axis, side Side) error {
	at := ax.index(s.selected)
	if side == After {
		at++
	}
	s.logger.Debug("insert", "axis", ax.String(), "index", at)

	var moved []layout.Position
	for _, n := range s.deps.Nodes() {
		if ax.index(n) >= at {
			moved = append(moved, n)
		}
	}
	slices.SortFunc(moved, func(a, b layout.Position) int {
		return ax.index(b) - ax.index(a)
	})
	for _, n := range moved {
		s.deps.Remap(n, ax.shift(n, 1))
	}

	if ax == lineAxis {
		s.cells = slices.Insert(s.cells, at, make([]*cell, s.Size.Columns))
		s.Size.Lines++
	} else {
		for i := range s.cells {
			s.cells[i] = slices.Insert(s.cells[i], at, nil)
		}
		s.Size.Columns++
	}
	if ax.index(s.selected) >= at {
		s.selected = ax.shift(s.selected, 1)
	}
	s.rewrite(func(pos layout.Position) (layout.Position, bool) {
		if ax.index(pos) >= at {
			return ax.shift(pos, 1), true
		}
		return pos, true
	})
	return nil
}

func (s *Sheet) delete(ax axis, side Side) error {
	at := ax.index(s.selected)
	switch side {
	case Before:
		at--
	case After:
		at++
	}
	size := ax.size(s.Size)
	if at < 0 || at >= size {
		return fmt.Errorf("%w: %s %d", ErrOutOfBounds, ax, at+1)
	}
	if size == 1 {
		return ErrLastLine
	}
	s.logger.Debug("delete", "axis", ax.String(), "index", at)

	var moved []layout.Position
	for _, n := range s.deps.Nodes() {
		switch ix := ax.index(n); {
		case ix == at:
			s.deps.RemoveNode(n)
		case ix > at:
			moved = append(moved, n)
		}
	}
	slices.SortFunc(moved, func(a, b layout.Position) int {
		return ax.index(a) - ax.index(b)
	})
	for _, n := range moved {
		s.deps.Remap(n, ax.shift(n, -1))
	}

	if ax == lineAxis {
		s.cells = slices.Delete(s.cells, at, at+1)
		s.Size.Lines--
	} else {
		for i := range s.cells {
			s.cells[i] = slices.Delete(s.cells[i], at, at+1)
		}
		s.Size.Columns--
	}
	if ix := ax.index(s.selected); ix > at || ix >= ax.size(s.Size) {
		s.selected = ax.shift(s.selected, -1)
	}
	s.rewrite(func(pos layout.Position) (layout.Position, bool) {
		switch ix := ax.index(pos); {
		case ix == at:
			return pos, false
		case ix > at:
			return ax.shift(pos, -1), true
		default:
			return pos, true
		}
	})
	return nil
}

// rewrite updates the references of every formula after the cells of the
// sheet have been moved. Formulas referencing a deleted cell lose their
// compiled expression and their dependencies but keep their text and last
// value. Rewritten formulas are edited again in dependency order. The text of
// a cell that failed to compile is never replaced.
func (s *Sheet) rewrite(fn func(layout.Position) (layout.Position, bool)) {
	changed := make(map[layout.Position]struct{})
	for pos, c := range s.formulas() {
		x, err := c.expr.Rewrite(fn)
		if err != nil {
			c.expr = nil
			if c.invalid == nil {
				c.invalid = err
			}
			s.deps.Remove(pos)
			s.logger.Info("reference deleted", "cell", pos.Addr(), "err", err)
			continue
		}
		if x.String() == c.expr.String() {
			continue
		}
		c.expr = x
		if c.invalid != nil {
			continue
		}
		c.raw = "=" + x.String()
		changed[pos] = struct{}{}
	}
	for _, pos := range s.deps.TopologicalSort() {
		if _, ok := changed[pos]; !ok {
			continue
		}
		s.Edit(pos, s.cells[pos.Line][pos.Column].raw)
	}
}
