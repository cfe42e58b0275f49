package doc

import (
	"encoding/json"
	"io"

	"github.com/midbel/sheetspread/csv"
	"github.com/midbel/sheetspread/sheet"
)

type csvEncoder struct {
	writer io.Writer
	comma  byte
	mode   sheet.Mode
}

// EncodeCSV writes the lines of a sheet, as displayed or as typed depending
// on mode.
func EncodeCSV(w io.Writer, comma byte, mode sheet.Mode) sheet.Encoder {
	return &csvEncoder{
		writer: w,
		comma:  comma,
		mode:   mode,
	}
}

func (e *csvEncoder) EncodeSheet(view sheet.View) error {
	writer := csv.NewWriter(e.writer)
	writer.Comma = e.comma
	for line := range view.Lines(e.mode) {
		if err := writer.Write(line); err != nil {
			return err
		}
	}
	return writer.Flush()
}

type jsonCell struct {
	Cell   string `json:"cell"`
	Raw    string `json:"raw,omitempty"`
	Value  any    `json:"value,omitempty"`
	Error  string `json:"error,omitempty"`
	Font   string `json:"font,omitempty"`
	Size   int    `json:"size,omitempty"`
	Bold   bool   `json:"bold,omitempty"`
	Italic bool   `json:"italic,omitempty"`
	Color  string `json:"color,omitempty"`
	Number string `json:"number,omitempty"`
}

type jsonEncoder struct {
	writer io.Writer
	mode   sheet.Mode
}

// EncodeJSON writes the non blank cells of a sheet as an array of objects.
// mode selects the fields written.
func EncodeJSON(w io.Writer, mode sheet.Mode) sheet.Encoder {
	return &jsonEncoder{
		writer: w,
		mode:   mode,
	}
}

func (e *jsonEncoder) EncodeSheet(view sheet.View) error {
	list := []jsonCell{}
	for pos, data := range view.Cells() {
		c := jsonCell{
			Cell: pos.Addr(),
		}
		if e.mode&sheet.ModeValue != 0 {
			if data.Err != nil {
				c.Error = sheet.ErrorLine(data.Err)
			} else if data.Value != nil {
				c.Value = data.Value.Scalar()
			}
		}
		if e.mode&sheet.ModeFormula != 0 {
			c.Raw = data.Raw
		}
		if e.mode&sheet.ModeFormat != 0 {
			c.Font = data.Format.Font
			c.Size = data.Format.Size
			c.Bold = data.Format.Bold
			c.Italic = data.Format.Italic
			c.Color = data.Format.Color
			c.Number = data.Format.Number
		}
		list = append(list, c)
	}
	enc := json.NewEncoder(e.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(list)
}

type xmlEncoder struct {
	writer io.Writer
}

// EncodeXML writes the snapshot of a sheet in the format read by ReadXML.
func EncodeXML(w io.Writer) sheet.Encoder {
	return &xmlEncoder{
		writer: w,
	}
}

func (e *xmlEncoder) EncodeSheet(view sheet.View) error {
	snap := sheet.Snapshot{
		Size: view.Dimension(),
	}
	for pos, data := range view.Cells() {
		snap.Records = append(snap.Records, sheet.Record{
			Position: pos,
			Raw:      data.Raw,
			Format:   data.Format,
		})
	}
	return WriteXML(e.writer, snap)
}
