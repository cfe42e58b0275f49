package doc

import (
	"io"

	"github.com/midbel/sheetspread/csv"
	"github.com/midbel/sheetspread/layout"
	"github.com/midbel/sheetspread/sheet"
)

// ReadCSV turns every non empty field of r into the raw text of the cell at
// the same place. The size of the snapshot is at least the default size of a
// sheet.
func ReadCSV(r io.Reader, comma byte) (sheet.Snapshot, error) {
	rs := csv.NewReader(r)
	rs.Comma = comma

	snap := sheet.Snapshot{
		Size: layout.Dimension{
			Lines:   sheet.DefaultLines,
			Columns: sheet.DefaultColumns,
		},
	}
	rows, err := rs.ReadAll()
	if err != nil {
		return snap, err
	}
	for i, row := range rows {
		for j, str := range row {
			if str == "" {
				continue
			}
			rec := sheet.Record{
				Position: layout.Position{Line: i, Column: j},
				Raw:      str,
				Format:   sheet.DefaultFormat(),
			}
			snap.Records = append(snap.Records, rec)
		}
		snap.Size = snap.Size.Max(layout.Dimension{
			Lines:   i + 1,
			Columns: len(row),
		})
	}
	return snap, nil
}

// WriteCSV writes the lines of a snapshot: the raw texts of the cells within
// the bounds of the used area.
func WriteCSV(w io.Writer, snap sheet.Snapshot, comma byte) error {
	var end layout.Position
	for _, r := range snap.Records {
		end.Line = max(end.Line, r.Position.Line)
		end.Column = max(end.Column, r.Position.Column)
	}
	if len(snap.Records) == 0 {
		return nil
	}
	data := make([][]string, end.Line+1)
	for i := range data {
		data[i] = make([]string, end.Column+1)
	}
	for _, r := range snap.Records {
		data[r.Position.Line][r.Position.Column] = r.Raw
	}
	ws := csv.NewWriter(w)
	ws.Comma = comma
	return ws.WriteAll(data)
}
