package doc

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	sax "github.com/midbel/codecs/xml"

	"github.com/midbel/sheetspread/format"
	"github.com/midbel/sheetspread/layout"
	"github.com/midbel/sheetspread/sheet"
)

type xmlCell struct {
	Ref    string `xml:"r,attr"`
	Font   string `xml:"font,attr,omitempty"`
	Size   int    `xml:"size,attr,omitempty"`
	Bold   bool   `xml:"bold,attr,omitempty"`
	Italic bool   `xml:"italic,attr,omitempty"`
	Color  string `xml:"color,attr,omitempty"`
	Number string `xml:"number,attr,omitempty"`
	Raw    string `xml:",chardata"`
}

type xmlSheet struct {
	XMLName xml.Name  `xml:"sheet"`
	Lines   int       `xml:"lines,attr"`
	Columns int       `xml:"columns,attr"`
	Cells   []xmlCell `xml:"cell"`
}

// WriteXML writes the raw texts and formats of snap. Format attributes equal
// to the default ones are left out.
func WriteXML(w io.Writer, snap sheet.Snapshot) error {
	doc := xmlSheet{
		Lines:   snap.Size.Lines,
		Columns: snap.Size.Columns,
	}
	def := sheet.DefaultFormat()
	for _, r := range snap.Records {
		c := xmlCell{
			Ref:    r.Position.Addr(),
			Raw:    r.Raw,
			Bold:   r.Format.Bold,
			Italic: r.Format.Italic,
			Number: r.Format.Number,
		}
		if r.Format.Font != def.Font {
			c.Font = r.Format.Font
		}
		if r.Format.Size != def.Size {
			c.Size = r.Format.Size
		}
		if r.Format.Color != def.Color {
			c.Color = r.Format.Color
		}
		doc.Cells = append(doc.Cells, c)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

type xmlReader struct {
	reader  *sax.Reader
	size    layout.Dimension
	records []*sheet.Record
}

// ReadXML reads a snapshot written by WriteXML.
func ReadXML(r io.Reader) (sheet.Snapshot, error) {
	rs := xmlReader{
		reader: sax.NewReader(r),
	}
	rs.reader.Element(sax.LocalName("sheet"), rs.onSheet)
	rs.reader.Element(sax.LocalName("cell"), rs.onCell)

	var snap sheet.Snapshot
	if err := rs.reader.Start(); err != nil {
		return snap, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	snap.Size = rs.size
	for _, r := range rs.records {
		if !snap.Size.Contains(r.Position) {
			snap.Size = snap.Size.Max(layout.Dimension{
				Lines:   r.Position.Line + 1,
				Columns: r.Position.Column + 1,
			})
		}
		snap.Records = append(snap.Records, *r)
	}
	return snap, nil
}

func (r *xmlReader) onSheet(_ *sax.Reader, el sax.E) error {
	var err error
	if r.size.Lines, err = strconv.Atoi(el.GetAttributeValue("lines")); err != nil {
		return fmt.Errorf("invalid number of lines: %w", err)
	}
	if r.size.Columns, err = strconv.Atoi(el.GetAttributeValue("columns")); err != nil {
		return fmt.Errorf("invalid number of columns: %w", err)
	}
	return nil
}

func (r *xmlReader) onCell(rs *sax.Reader, el sax.E) error {
	pos, err := layout.ParsePosition(el.GetAttributeValue("r"))
	if err != nil {
		return err
	}
	rec := sheet.Record{
		Position: pos,
		Format:   sheet.DefaultFormat(),
	}
	if err := parseFormat(&rec.Format, el); err != nil {
		return fmt.Errorf("%s: %w", pos.Addr(), err)
	}
	r.records = append(r.records, &rec)
	if el.SelfClosed {
		return nil
	}
	rs.OnText(func(_ *sax.Reader, str string) error {
		rec.Raw += str
		return nil
	})
	return nil
}

func parseFormat(f *sheet.Format, el sax.E) error {
	if str := el.GetAttributeValue("font"); str != "" {
		f.Font = str
	}
	if str := el.GetAttributeValue("color"); str != "" {
		f.Color = str
	}
	if str := el.GetAttributeValue("number"); str != "" {
		if _, err := format.ParseNumber(str); err != nil {
			return err
		}
		f.Number = str
	}
	if str := el.GetAttributeValue("size"); str != "" {
		n, err := strconv.Atoi(str)
		if err != nil {
			return fmt.Errorf("invalid size: %w", err)
		}
		f.Size = n
	}
	var err error
	if str := el.GetAttributeValue("bold"); str != "" {
		if f.Bold, err = strconv.ParseBool(str); err != nil {
			return fmt.Errorf("invalid bold: %w", err)
		}
	}
	if str := el.GetAttributeValue("italic"); str != "" {
		if f.Italic, err = strconv.ParseBool(str); err != nil {
			return fmt.Errorf("invalid italic: %w", err)
		}
	}
	return nil
}
