package sheet

import (
	"iter"

	"github.com/midbel/sheetspread/layout"
	"github.com/midbel/sheetspread/value"
)

type Encoder interface {
	EncodeSheet(View) error
}

// View is the read only side of a sheet used by the encoders.
type View interface {
	Dimension() layout.Dimension
	Bounds() *layout.Range
	Rows() iter.Seq[[]value.Value]
	Lines(Mode) iter.Seq[[]string]
	Cells() iter.Seq2[layout.Position, CellData]
	Encode(Encoder) error
}

func (s *Sheet) Encode(e Encoder) error {
	return e.EncodeSheet(s)
}

func (s *Sheet) Dimension() layout.Dimension {
	return s.Size
}

// Bounds returns the smallest range starting at A1 holding every non blank
// cell. It is nil for a blank sheet.
func (s *Sheet) Bounds() *layout.Range {
	var (
		end   layout.Position
		found bool
	)
	for pos := range s.Cells() {
		end.Line = max(end.Line, pos.Line)
		end.Column = max(end.Column, pos.Column)
		found = true
	}
	if !found {
		return nil
	}
	return layout.NewRange(layout.Position{}, end)
}

// Rows yields the values of the lines of the sheet within its bounds.
func (s *Sheet) Rows() iter.Seq[[]value.Value] {
	return func(yield func([]value.Value) bool) {
		rg := s.Bounds()
		if rg == nil {
			return
		}
		for i := 0; i <= rg.Ends.Line; i++ {
			row := make([]value.Value, 0, rg.Width())
			for j := 0; j <= rg.Ends.Column; j++ {
				row = append(row, s.ReadCell(layout.Position{Line: i, Column: j}).Value)
			}
			if !yield(row) {
				return
			}
		}
	}
}

// Lines yields the text of the lines of the sheet within its bounds: the
// displayed values or the raw texts depending on mode.
func (s *Sheet) Lines(mode Mode) iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		rg := s.Bounds()
		if rg == nil {
			return
		}
		for i := 0; i <= rg.Ends.Line; i++ {
			line := make([]string, 0, rg.Width())
			for j := 0; j <= rg.Ends.Column; j++ {
				data := s.ReadCell(layout.Position{Line: i, Column: j})
				if mode&ModeFormula != 0 {
					line = append(line, data.Raw)
				} else {
					line = append(line, data.Display())
				}
			}
			if !yield(line) {
				return
			}
		}
	}
}

// Cells yields the non blank cells in line then column order.
func (s *Sheet) Cells() iter.Seq2[layout.Position, CellData] {
	return func(yield func(layout.Position, CellData) bool) {
		for i := range s.cells {
			for j, c := range s.cells[i] {
				if c == nil || c.blank() {
					continue
				}
				if !yield(layout.Position{Line: i, Column: j}, c.data()) {
					return
				}
			}
		}
	}
}

func (s *Sheet) formulas() iter.Seq2[layout.Position, *cell] {
	return func(yield func(layout.Position, *cell) bool) {
		for i := range s.cells {
			for j, c := range s.cells[i] {
				if c == nil || !c.isFormula() {
					continue
				}
				if !yield(layout.Position{Line: i, Column: j}, c) {
					return
				}
			}
		}
	}
}
