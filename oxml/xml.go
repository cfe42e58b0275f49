package oxml

import (
	"encoding/xml"
	"errors"
)

var (
	ErrFile  = errors.New("invalid spreadsheet")
	ErrFound = errors.New("sheet not found")
)

const wbBaseDir = "xl"

const (
	typeSheetUrl  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet"
	typeDocUrl    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	typeMainUrl   = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	typeRelUrl    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	typePkgRelUrl = "http://schemas.openxmlformats.org/package/2006/relationships"
	typeCtUrl     = "http://schemas.openxmlformats.org/package/2006/content-types"
)

const (
	mimeRels      = "application/vnd.openxmlformats-package.relationships+xml"
	mimeXml       = "application/xml"
	mimeWorkbook  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"
	mimeWorksheet = "application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"
	mimeStyle     = "application/vnd.openxmlformats-officedocument.spreadsheetml.styles+xml"
)

// cell types as found in the t attribute of a c element.
const (
	typeSharedStr = "s"
	typeInlineStr = "inlineStr"
	typeFormula   = "str"
	typeError     = "e"
	typeBool      = "b"
	typeNumber    = "n"
)

const formulaShared = "shared"

type xmlWorkbook struct {
	XMLName xml.Name   `xml:"workbook"`
	Sheets  []xmlSheet `xml:"sheets>sheet"`
}

type xmlSheet struct {
	XMLName xml.Name `xml:"sheet"`
	Id      string   `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	Name    string   `xml:"name,attr"`
	Index   int      `xml:"sheetId,attr"`
}

type xmlRelations struct {
	XMLName   xml.Name      `xml:"Relationships"`
	Xmlns     string        `xml:"xmlns,attr"`
	Relations []xmlRelation `xml:"Relationship"`
}

type xmlRelation struct {
	XMLName xml.Name `xml:"Relationship"`
	Target  string   `xml:",attr"`
	Id      string   `xml:",attr"`
	Type    string   `xml:",attr"`
}

type xmlRow struct {
	XMLName xml.Name  `xml:"row"`
	Line    int       `xml:"r,attr"`
	Cells   []xmlCell `xml:"c"`
}

type xmlCell struct {
	XMLName xml.Name   `xml:"c"`
	Ref     string     `xml:"r,attr"`
	Type    string     `xml:"t,attr,omitempty"`
	Value   string     `xml:"v,omitempty"`
	Inline  *xmlInline `xml:"is,omitempty"`
}

type xmlInline struct {
	Text string `xml:"t"`
}
