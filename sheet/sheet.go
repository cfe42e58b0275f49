package sheet

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/midbel/sheetspread/format"
	"github.com/midbel/sheetspread/formula"
	"github.com/midbel/sheetspread/graph"
	"github.com/midbel/sheetspread/layout"
	"github.com/midbel/sheetspread/value"
)

const (
	DefaultLines   = 58
	DefaultColumns = 58
)

var (
	ErrOutOfBounds = errors.New("position out of bounds")
	ErrLastLine    = errors.New("last line can not be deleted")
	ErrSize        = errors.New("invalid sheet size")
	ErrUpstream    = errors.New("referenced cell in error")
)

type Option func(*Sheet)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sheet) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Sheet stores the cells of a grid, the dependencies between them and keeps
// their values up to date on every edit.
type Sheet struct {
	Size layout.Dimension

	cells    [][]*cell
	deps     *graph.Graph
	selected layout.Position
	logger   *slog.Logger
}

func New(lines, columns int, opts ...Option) (*Sheet, error) {
	if lines <= 0 || columns <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrSize, lines, columns)
	}
	s := Sheet{
		logger: slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(&s)
	}
	s.reset(lines, columns)
	return &s, nil
}

func Default(opts ...Option) *Sheet {
	s, _ := New(DefaultLines, DefaultColumns, opts...)
	return s
}

func (s *Sheet) reset(lines, columns int) {
	s.Size = layout.Dimension{
		Lines:   lines,
		Columns: columns,
	}
	s.cells = make([][]*cell, lines)
	for i := range s.cells {
		s.cells[i] = make([]*cell, columns)
	}
	s.deps = graph.New()
	s.selected = layout.Position{}
}

// Dependencies gives access to the dependency graph of the sheet for
// inspection.
func (s *Sheet) Dependencies() *graph.Graph {
	return s.deps
}

// At returns the current value of the cell at pos. It is what formulas see
// when they read a cell. Reading a cell holding an error fails.
func (s *Sheet) At(pos layout.Position) (value.Value, error) {
	if !s.Size.Contains(pos) {
		return nil, fmt.Errorf("%w: %s is outside of the sheet", formula.ErrReference, pos.Addr())
	}
	c := s.cells[pos.Line][pos.Column]
	if c == nil {
		return value.Empty(), nil
	}
	if c.failure() != nil {
		return nil, fmt.Errorf("%w: %s", ErrUpstream, pos.Addr())
	}
	return c.value, nil
}

func (s *Sheet) Select(pos layout.Position) error {
	if !s.Size.Contains(pos) {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, pos.Addr())
	}
	s.selected = pos
	return nil
}

func (s *Sheet) Selected() layout.Position {
	return s.selected
}

// SelectAndFlush runs again the edit of the selected cell with its current
// text before moving the selection to pos. The error returned is the one of
// the flushed cell.
func (s *Sheet) SelectAndFlush(pos layout.Position) error {
	if !s.Size.Contains(pos) {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, pos.Addr())
	}
	var err error
	if c := s.cell(s.selected); c != nil {
		err = s.Edit(s.selected, c.raw)
	}
	s.selected = pos
	return err
}

func (s *Sheet) ReadCell(pos layout.Position) CellData {
	c := s.cell(pos)
	if c == nil {
		return emptyCell().data()
	}
	return c.data()
}

func (s *Sheet) FormulaText(pos layout.Position) string {
	if c := s.cell(pos); c != nil {
		return c.raw
	}
	return ""
}

func (s *Sheet) SetFormat(pos layout.Position, patch FormatPatch) error {
	if !s.Size.Contains(pos) {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, pos.Addr())
	}
	if patch.Number != nil && *patch.Number != "" {
		if _, err := format.ParseNumber(*patch.Number); err != nil {
			return err
		}
	}
	c := s.ensure(pos)
	c.format = patch.Apply(c.format)
	return nil
}

// Edit replaces the text of the cell at pos. Formulas (text starting with
// '=') are compiled and their dependencies registered, any other text is a
// literal. The value of the cell and of every cell depending on it are then
// recomputed. On failure the error is recorded on the cell and returned while
// the cell keeps its previous value. A text that can not be compiled leaves
// the previous expression and dependencies of the cell in place but they are
// not evaluated anymore until the cell is edited again.
func (s *Sheet) Edit(pos layout.Position, raw string) error {
	if !s.Size.Contains(pos) {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, pos.Addr())
	}
	s.logger.Debug("edit", "cell", pos.Addr(), "raw", raw)

	c := s.ensure(pos)
	c.raw = raw
	err := s.update(pos, c)
	if err != nil {
		c.invalid = err
	} else {
		c.invalid = nil
		c.err = s.evaluate(c)
		err = c.err
	}
	if err != nil {
		s.logger.Info("edit failed", "cell", pos.Addr(), "err", err)
	}
	s.propagate(pos)
	return err
}

// Recompute evaluates again the cell at pos and the cells depending on it
// without compiling its formula again.
func (s *Sheet) Recompute(pos layout.Position) error {
	if !s.Size.Contains(pos) {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, pos.Addr())
	}
	c := s.cell(pos)
	if c == nil {
		return nil
	}
	if c.invalid != nil {
		return c.invalid
	}
	c.err = s.evaluate(c)
	if c.err != nil {
		s.logger.Info("recompute failed", "cell", pos.Addr(), "err", c.err)
	}
	s.propagate(pos)
	return c.err
}

// update stores the compiled form of the text of c. Nothing is changed on the
// cell besides its text when it fails.
func (s *Sheet) update(pos layout.Position, c *cell) error {
	if !isFormula(c.raw) {
		c.expr = nil
		s.deps.Remove(pos)
		c.value = value.Coerce(c.raw)
		return nil
	}
	expr, deps, err := formula.CompileString(c.raw[1:])
	if err != nil {
		return err
	}
	s.logger.Debug("compile", "cell", pos.Addr(), "expr", expr.String())
	if err := s.deps.Replace(pos, deps.List()); err != nil {
		return err
	}
	s.logger.Debug("dependencies", "cell", pos.Addr(), "graph", s.deps.String())

	c.expr = expr
	c.raw = "=" + expr.String()
	return nil
}

func (s *Sheet) evaluate(c *cell) error {
	if !c.isFormula() {
		return nil
	}
	val, err := formula.Eval(c.expr, s)
	if err != nil {
		return err
	}
	c.value = val
	return nil
}

// propagate evaluates again the cells depending on pos. Cells whose text
// failed to compile keep their value and their error.
func (s *Sheet) propagate(pos layout.Position) {
	order := s.deps.SortFrom(pos)
	if len(order) <= 1 {
		return
	}
	for _, p := range order[1:] {
		c := s.cell(p)
		if c == nil || !c.isFormula() || c.invalid != nil {
			continue
		}
		s.logger.Debug("recompute", "cell", p.Addr(), "from", pos.Addr())
		if c.err = s.evaluate(c); c.err != nil {
			s.logger.Info("recompute failed", "cell", p.Addr(), "err", c.err)
		}
	}
}

func (s *Sheet) cell(pos layout.Position) *cell {
	if !s.Size.Contains(pos) {
		return nil
	}
	return s.cells[pos.Line][pos.Column]
}

func (s *Sheet) ensure(pos layout.Position) *cell {
	c := s.cells[pos.Line][pos.Column]
	if c == nil {
		c = emptyCell()
		s.cells[pos.Line][pos.Column] = c
	}
	return c
}
