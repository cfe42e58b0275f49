package sheet

import (
	"fmt"

	"github.com/midbel/sheetspread/layout"
)

// Record is the persisted part of a cell: the text typed by the user and its
// format. Values are always computed again on load.
type Record struct {
	Position layout.Position
	Raw      string
	Format   Format
}

type Snapshot struct {
	Size    layout.Dimension
	Records []Record
}

// Snapshot returns the records of the non blank cells of the sheet.
func (s *Sheet) Snapshot() Snapshot {
	snap := Snapshot{
		Size: s.Size,
	}
	for pos, data := range s.Cells() {
		r := Record{
			Position: pos,
			Raw:      data.Raw,
			Format:   data.Format,
		}
		snap.Records = append(snap.Records, r)
	}
	return snap
}

// Load replaces the content of the sheet by the one of snap. Literals are
// edited before formulas. Errors recorded on cells by the edits are not
// reported: only a record outside of the size of the snapshot is.
func (s *Sheet) Load(snap Snapshot) error {
	if snap.Size.Lines <= 0 || snap.Size.Columns <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrSize, snap.Size.Lines, snap.Size.Columns)
	}
	for _, r := range snap.Records {
		if !snap.Size.Contains(r.Position) {
			return fmt.Errorf("%w: %s", ErrOutOfBounds, r.Position.Addr())
		}
	}
	s.reset(snap.Size.Lines, snap.Size.Columns)

	var formulas []Record
	for _, r := range snap.Records {
		c := s.ensure(r.Position)
		c.format = r.Format
		if isFormula(r.Raw) {
			formulas = append(formulas, r)
			continue
		}
		s.Edit(r.Position, r.Raw)
	}
	for _, r := range formulas {
		s.Edit(r.Position, r.Raw)
	}
	s.logger.Debug("load", "cells", len(snap.Records), "formulas", len(formulas))
	return nil
}
