package oxml

import (
	"archive/zip"
	"compress/flate"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/midbel/sheetspread/formula"
	"github.com/midbel/sheetspread/layout"
	"github.com/midbel/sheetspread/sheet"
	"github.com/midbel/sheetspread/value"
)

const DefaultSheetName = "Sheet1"

const sheetId = "rId1"

// WriteFile writes the computed values of view into file as a workbook with
// one worksheet. Formulas are not exported.
func WriteFile(file, name string, view sheet.View) error {
	w, err := os.Create(file)
	if err != nil {
		return err
	}
	defer w.Close()
	return Write(w, name, view)
}

func Write(w io.Writer, name string, view sheet.View) error {
	if name == "" {
		name = DefaultSheetName
	}
	z := writer{
		writer: zip.NewWriter(w),
		base:   wbBaseDir,
	}
	z.writer.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})
	z.writeWorksheet(view)
	z.writeWorkbook(name)
	z.writeRelationForSheets()
	z.writeRelations()
	z.writeStyles()
	z.writeContentTypes()
	if err := z.writer.Close(); z.err == nil {
		z.err = err
	}
	return z.err
}

type writer struct {
	base   string
	writer *zip.Writer
	err    error
}

func (z *writer) writeContentTypes() {
	type xmlDefault struct {
		XMLName     xml.Name `xml:"Default"`
		Extension   string   `xml:"Extension,attr"`
		ContentType string   `xml:"ContentType,attr"`
	}

	type xmlOverride struct {
		XMLName     xml.Name `xml:"Override"`
		PartName    string   `xml:"PartName,attr"`
		ContentType string   `xml:"ContentType,attr"`
	}

	root := struct {
		XMLName   xml.Name      `xml:"Types"`
		Xmlns     string        `xml:"xmlns,attr"`
		Defaults  []xmlDefault  `xml:"Default"`
		Overrides []xmlOverride `xml:"Override"`
	}{
		Xmlns: typeCtUrl,
		Defaults: []xmlDefault{
			{
				Extension:   "rels",
				ContentType: mimeRels,
			},
			{
				Extension:   "xml",
				ContentType: mimeXml,
			},
		},
		Overrides: []xmlOverride{
			{
				PartName:    "/xl/workbook.xml",
				ContentType: mimeWorkbook,
			},
			{
				PartName:    "/xl/styles.xml",
				ContentType: mimeStyle,
			},
			{
				PartName:    "/xl/worksheets/sheet1.xml",
				ContentType: mimeWorksheet,
			},
		},
	}
	z.encodeXML("[Content_Types].xml", &root)
}

func (z *writer) writeStyles() {
	root := struct {
		XMLName xml.Name `xml:"styleSheet"`
		Xmlns   string   `xml:"xmlns,attr"`
	}{
		Xmlns: typeMainUrl,
	}
	z.encodeXML(z.fromBase("styles.xml"), root)
}

func (z *writer) writeRelations() {
	root := xmlRelations{
		Xmlns: typePkgRelUrl,
		Relations: []xmlRelation{
			{
				Id:     "rId1",
				Type:   typeDocUrl,
				Target: "xl/workbook.xml",
			},
		},
	}
	z.encodeXML("_rels/.rels", &root)
}

func (z *writer) writeRelationForSheets() {
	root := xmlRelations{
		Xmlns: typePkgRelUrl,
		Relations: []xmlRelation{
			{
				Id:     sheetId,
				Type:   typeSheetUrl,
				Target: "worksheets/sheet1.xml",
			},
		},
	}
	z.encodeXML(z.fromBase("_rels/workbook.xml.rels"), &root)
}

func (z *writer) writeWorkbook(name string) {
	type xmlSheet struct {
		XMLName xml.Name `xml:"sheet"`
		Id      string   `xml:"r:id,attr"`
		Name    string   `xml:"name,attr"`
		Index   int      `xml:"sheetId,attr"`
	}

	root := struct {
		XMLName  xml.Name   `xml:"workbook"`
		Xmlns    string     `xml:"xmlns,attr"`
		RelXmlns string     `xml:"xmlns:r,attr"`
		Sheets   []xmlSheet `xml:"sheets>sheet"`
	}{
		Xmlns:    typeMainUrl,
		RelXmlns: typeRelUrl,
		Sheets: []xmlSheet{
			{
				Id:    sheetId,
				Name:  name,
				Index: 1,
			},
		},
	}
	z.encodeXML(z.fromBase("workbook.xml"), root)
}

func (z *writer) writeWorksheet(view sheet.View) {
	root := struct {
		XMLName   xml.Name `xml:"worksheet"`
		Xmlns     string   `xml:"xmlns,attr"`
		RelXmlns  string   `xml:"xmlns:r,attr"`
		Dimension struct {
			Ref string `xml:"ref,attr"`
		} `xml:"dimension"`
		Rows []xmlRow `xml:"sheetData>row"`
	}{
		Xmlns:    typeMainUrl,
		RelXmlns: typeRelUrl,
	}
	root.Dimension.Ref = "A1"
	if rg := view.Bounds(); rg != nil {
		root.Dimension.Ref = rg.String()
	}
	for pos, data := range view.Cells() {
		c, ok := encodeCell(pos, data)
		if !ok {
			continue
		}
		if n := len(root.Rows); n == 0 || root.Rows[n-1].Line != pos.Line+1 {
			root.Rows = append(root.Rows, xmlRow{Line: pos.Line + 1})
		}
		last := &root.Rows[len(root.Rows)-1]
		last.Cells = append(last.Cells, c)
	}
	z.encodeXML(z.fromBase("worksheets/sheet1.xml"), &root)
}

func encodeCell(pos layout.Position, data sheet.CellData) (xmlCell, bool) {
	c := xmlCell{
		Ref: pos.Addr(),
	}
	if data.Err != nil {
		c.Type = typeError
		c.Value = errorCode(data.Err)
		return c, true
	}
	switch v := data.Value.(type) {
	case value.Float:
		if f := float64(v); math.IsNaN(f) || math.IsInf(f, 0) {
			c.Type = typeError
			c.Value = "#DIV/0!"
			break
		}
		c.Value = v.String()
	case value.Boolean:
		c.Type = typeBool
		c.Value = "0"
		if v {
			c.Value = "1"
		}
	case value.Text:
		if v == "" {
			return c, false
		}
		c.Type = typeInlineStr
		c.Inline = &xmlInline{
			Text: string(v),
		}
	default:
		return c, false
	}
	return c, true
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, formula.ErrReference):
		return "#REF!"
	case errors.Is(err, formula.ErrArgCount):
		return "#N/A"
	default:
		return "#VALUE!"
	}
}

func (z *writer) encodeXML(name string, ptr any) {
	if z.err != nil {
		return
	}
	w, err := z.writer.Create(name)
	if err != nil {
		z.err = err
		return
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		z.err = err
		return
	}
	if err := xml.NewEncoder(w).Encode(ptr); err != nil {
		z.err = fmt.Errorf("%w: fail to write data to %s", err, name)
	}
}

func (z *writer) fromBase(name string) string {
	return z.base + "/" + name
}


type encoder struct {
	writer io.Writer
	name   string
}

// Encode returns an encoder writing a sheet as a workbook whose only
// worksheet is called name.
func Encode(w io.Writer, name string) sheet.Encoder {
	return encoder{
		writer: w,
		name:   name,
	}
}

func (e encoder) EncodeSheet(view sheet.View) error {
	return Write(e.writer, e.name, view)
}
