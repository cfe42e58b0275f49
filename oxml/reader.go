package oxml

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	sax "github.com/midbel/codecs/xml"

	"github.com/midbel/sheetspread/formula/excel"
	"github.com/midbel/sheetspread/layout"
	"github.com/midbel/sheetspread/sheet"
)

// Reader imports one worksheet of a xlsx file as a snapshot. Excel formulas
// are converted to the prefix syntax. A formula that can not be converted
// is replaced by its cached value and its position added to Skipped, unless
// Strict is set.
type Reader struct {
	// Sheet is the name of the worksheet to read, the first one when empty.
	Sheet  string
	Strict bool

	Skipped []layout.Position
}

func ReadFile(file string) (sheet.Snapshot, error) {
	var r Reader
	return r.ReadFile(file)
}

func (r *Reader) ReadFile(file string) (sheet.Snapshot, error) {
	z, err := zip.OpenReader(file)
	if err != nil {
		return sheet.Snapshot{}, err
	}
	defer z.Close()
	return r.read(&z.Reader)
}

func (r *Reader) Read(rs io.ReaderAt, size int64) (sheet.Snapshot, error) {
	z, err := zip.NewReader(rs, size)
	if err != nil {
		return sheet.Snapshot{}, fmt.Errorf("%w: %w", ErrFile, err)
	}
	return r.read(z)
}

func (r *Reader) read(z *zip.Reader) (sheet.Snapshot, error) {
	pr := packageReader{
		reader: z,
		base:   wbBaseDir,
	}
	shared := pr.readSharedStrings()
	addr := pr.readWorksheetLocation(r.Sheet)
	if pr.err != nil {
		return sheet.Snapshot{}, pr.err
	}
	rs, err := pr.openFile(addr)
	if err != nil {
		return sheet.Snapshot{}, err
	}
	defer rs.Close()

	sr := sheetReader{
		reader:  sax.NewReader(rs),
		shared:  shared,
		masters: make(map[string]*cellData),
	}
	if err := sr.Read(); err != nil {
		return sheet.Snapshot{}, fmt.Errorf("%w: %w", ErrFile, err)
	}
	return r.snapshot(&sr)
}

func (r *Reader) snapshot(sr *sheetReader) (sheet.Snapshot, error) {
	snap := sheet.Snapshot{
		Size: sr.size,
	}
	r.Skipped = r.Skipped[:0]
	for _, c := range sr.cells {
		raw, err := sr.resolve(c)
		if err != nil {
			if r.Strict {
				return snap, fmt.Errorf("%s: %w", c.pos.Addr(), err)
			}
			r.Skipped = append(r.Skipped, c.pos)
			raw = c.literal()
		}
		if raw == "" {
			continue
		}
		rec := sheet.Record{
			Position: c.pos,
			Raw:      raw,
			Format:   sheet.DefaultFormat(),
		}
		snap.Records = append(snap.Records, rec)
		snap.Size = snap.Size.Max(layout.Dimension{
			Lines:   c.pos.Line + 1,
			Columns: c.pos.Column + 1,
		})
	}
	return snap, nil
}

type packageReader struct {
	reader *zip.Reader
	base   string
	err    error
}

func (r *packageReader) readSharedStrings() []string {
	root := struct {
		XMLName xml.Name `xml:"sst"`
		Shared  []string `xml:"si>t"`
	}{}
	if err := r.decodeXML(r.fromBase("sharedStrings.xml"), &root); err != nil {
		// shared strings are optional
		r.err = nil
	}
	return root.Shared
}

func (r *packageReader) readWorksheetLocation(name string) string {
	var (
		workbook  xmlWorkbook
		relations xmlRelations
	)
	r.decodeXML(r.fromBase("workbook.xml"), &workbook)
	r.decodeXML(r.fromBase("_rels/workbook.xml.rels"), &relations)
	if r.err != nil {
		return ""
	}
	ix := 0
	if name != "" {
		ix = slices.IndexFunc(workbook.Sheets, func(s xmlSheet) bool {
			return s.Name == name
		})
	}
	if ix < 0 || ix >= len(workbook.Sheets) {
		r.err = fmt.Errorf("%w: %s", ErrFound, name)
		return ""
	}
	id := workbook.Sheets[ix].Id
	ix = slices.IndexFunc(relations.Relations, func(r xmlRelation) bool {
		return r.Id == id
	})
	if ix < 0 {
		r.err = fmt.Errorf("%w: missing relation %s", ErrFile, id)
		return ""
	}
	target := relations.Relations[ix].Target
	if strings.HasPrefix(target, "/") {
		return target[1:]
	}
	return r.fromBase(target)
}

func (r *packageReader) decodeXML(name string, ptr any) error {
	if r.err != nil {
		return r.err
	}
	rs, err := r.openFile(name)
	if err != nil {
		r.err = err
		return r.err
	}
	defer rs.Close()
	if err := xml.NewDecoder(rs).Decode(ptr); err != nil {
		r.err = fmt.Errorf("%w: fail to read data from %s", ErrFile, name)
	}
	return r.err
}

func (r *packageReader) openFile(name string) (io.ReadCloser, error) {
	ix := slices.IndexFunc(r.reader.File, func(f *zip.File) bool {
		return f.Name == name
	})
	if ix < 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrFile, name)
	}
	return r.reader.File[ix].Open()
}

func (r *packageReader) fromBase(name string) string {
	return r.base + "/" + name
}

type cellData struct {
	pos   layout.Position
	kind  string
	value string

	formula string
	shared  string
}

// literal gives the raw text of the cached value of the cell.
func (c *cellData) literal() string {
	switch c.kind {
	case typeBool:
		if c.value == "1" {
			return "=#t"
		}
		return "=#f"
	default:
		return c.value
	}
}

type sheetReader struct {
	reader  *sax.Reader
	shared  []string
	size    layout.Dimension
	cells   []*cellData
	masters map[string]*cellData
}

func (r *sheetReader) Read() error {
	r.reader.Element(sax.LocalName("dimension"), r.onDimension)
	r.reader.Element(sax.LocalName("c"), r.onCell)
	return r.reader.Start()
}

// resolve gives the raw text of a cell: its converted formula or its value.
func (r *sheetReader) resolve(c *cellData) (string, error) {
	if c.formula != "" {
		return excel.Convert("=" + c.formula)
	}
	if c.shared == "" {
		return c.literal(), nil
	}
	master, ok := r.masters[c.shared]
	if !ok {
		return "", fmt.Errorf("%w: unknown shared formula %s", ErrFile, c.shared)
	}
	expr, _, err := excel.Compile(master.formula)
	if err != nil {
		return "", err
	}
	var (
		lines   = c.pos.Line - master.pos.Line
		columns = c.pos.Column - master.pos.Column
	)
	expr, err = expr.Rewrite(func(p layout.Position) (layout.Position, bool) {
		p = p.Shift(lines, columns)
		return p, p.Valid()
	})
	if err != nil {
		return "", err
	}
	return "=" + expr.String(), nil
}

func (r *sheetReader) parseValue(c *cellData, str string) error {
	switch c.kind {
	case typeSharedStr:
		n, err := strconv.Atoi(str)
		if err != nil {
			return fmt.Errorf("invalid shared string index: %s", str)
		}
		if n < 0 || n >= len(r.shared) {
			return fmt.Errorf("shared string index out of bounds")
		}
		c.value = r.shared[n]
	case typeBool, typeError, typeFormula, typeInlineStr:
		c.value = str
	default:
		c.value = strings.TrimSpace(str)
	}
	return nil
}

func (r *sheetReader) onCell(rs *sax.Reader, el sax.E) error {
	pos, err := layout.ParsePosition(el.GetAttributeValue("r"))
	if err != nil {
		return err
	}
	c := &cellData{
		pos:  pos,
		kind: el.GetAttributeValue("t"),
	}
	r.cells = append(r.cells, c)
	if el.SelfClosed {
		return nil
	}
	rs.Element(sax.LocalName("v"), func(rs *sax.Reader, _ sax.E) error {
		rs.OnText(func(_ *sax.Reader, str string) error {
			return r.parseValue(c, str)
		})
		return nil
	})
	rs.Element(sax.LocalName("is"), func(rs *sax.Reader, _ sax.E) error {
		rs.Element(sax.LocalName("t"), func(rs *sax.Reader, _ sax.E) error {
			rs.OnText(func(_ *sax.Reader, str string) error {
				c.value += str
				return nil
			})
			return nil
		})
		return nil
	})
	rs.Element(sax.LocalName("f"), func(rs *sax.Reader, el sax.E) error {
		return r.onFormula(c, rs, el)
	})
	return nil
}

func (r *sheetReader) onFormula(c *cellData, rs *sax.Reader, el sax.E) error {
	if el.GetAttributeValue("t") == formulaShared {
		c.shared = el.GetAttributeValue("si")
	}
	if el.SelfClosed {
		return nil
	}
	rs.OnText(func(_ *sax.Reader, str string) error {
		c.formula += str
		if c.shared != "" {
			r.masters[c.shared] = c
		}
		return nil
	})
	return nil
}

func (r *sheetReader) onDimension(_ *sax.Reader, el sax.E) error {
	ref := el.GetAttributeValue("ref")
	if !strings.Contains(ref, ":") {
		ref = ref + ":" + ref
	}
	rg, err := layout.ParseRange(ref)
	if err != nil {
		return err
	}
	r.size = r.size.Max(layout.Dimension{
		Lines:   rg.Ends.Line + 1,
		Columns: rg.Ends.Column + 1,
	})
	return nil
}
