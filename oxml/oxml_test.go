package oxml

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"github.com/midbel/sheetspread/layout"
	"github.com/midbel/sheetspread/sheet"
)

const (
	testWorkbook = `<?xml version="1.0" encoding="UTF-8"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets><sheet name="Data" sheetId="1" r:id="rId1"/></sheets>
</workbook>`

	testRelations = `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/>
</Relationships>`

	testShared = `<?xml version="1.0" encoding="UTF-8"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><si><t>hello</t></si></sst>`

	testWorksheet = `<?xml version="1.0" encoding="UTF-8"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<dimension ref="A1:C3"/>
<sheetData>
<row r="1"><c r="A1"><v>1</v></c><c r="B1" t="s"><v>0</v></c><c r="C1" t="b"><v>1</v></c></row>
<row r="2"><c r="A2"><v>2</v></c><c r="B2"><f t="shared" ref="B2:B3" si="0">A2*10</f><v>20</v></c><c r="C2" t="str"><f>SUM(A1:A3)&amp;"x"</f><v>6x</v></c></row>
<row r="3"><c r="A3"><v>3</v></c><c r="B3"><f t="shared" si="0"/><v>30</v></c><c r="C3" t="str"><f>VLOOKUP(A1,A1:B3,2)</f><v>hello</v></c></row>
</sheetData>
</worksheet>`
)

func makeWorkbook(t *testing.T) []byte {
	t.Helper()
	var (
		buf   bytes.Buffer
		z     = zip.NewWriter(&buf)
		files = map[string]string{
			"xl/workbook.xml":            testWorkbook,
			"xl/_rels/workbook.xml.rels": testRelations,
			"xl/sharedStrings.xml":       testShared,
			"xl/worksheets/sheet1.xml":   testWorksheet,
		}
	)
	for name, content := range files {
		w, err := z.Create(name)
		if err != nil {
			t.Fatalf("fail to create %s: %s", name, err)
		}
		w.Write([]byte(content))
	}
	if err := z.Close(); err != nil {
		t.Fatalf("fail to close archive: %s", err)
	}
	return buf.Bytes()
}

func records(snap sheet.Snapshot) map[string]string {
	all := make(map[string]string)
	for _, r := range snap.Records {
		all[r.Position.Addr()] = r.Raw
	}
	return all
}

func TestRead(t *testing.T) {
	data := makeWorkbook(t)

	var r Reader
	snap, err := r.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("fail to read workbook: %s", err)
	}
	want := map[string]string{
		"A1": "1",
		"A2": "2",
		"A3": "3",
		"B1": "hello",
		"B2": "=(* A2 10)",
		"B3": "=(* A3 10)",
		"C1": "=#t",
		"C2": `=(CONCAT (SUM A1:A3) "x")`,
		"C3": "hello",
	}
	got := records(snap)
	for addr, raw := range want {
		if got[addr] != raw {
			t.Errorf("%s: raw mismatched! want %s, got %s", addr, raw, got[addr])
		}
	}
	if len(got) != len(want) {
		t.Errorf("records mismatched! want %d, got %d", len(want), len(got))
	}
	if snap.Size != (layout.Dimension{Lines: 3, Columns: 3}) {
		t.Errorf("size mismatched! got %v", snap.Size)
	}
	if len(r.Skipped) != 1 || r.Skipped[0].Addr() != "C3" {
		t.Errorf("skipped mismatched! got %v", r.Skipped)
	}

	sh, _ := sheet.New(3, 3)
	if err := sh.Load(snap); err != nil {
		t.Fatalf("fail to load snapshot: %s", err)
	}
	if got := sh.ReadCell(layout.Position{Line: 1, Column: 2}).Display(); got != "6x" {
		t.Errorf("C2: value mismatched! want 6x, got %s", got)
	}
}

func TestReadStrict(t *testing.T) {
	data := makeWorkbook(t)
	r := Reader{
		Strict: true,
	}
	if _, err := r.Read(bytes.NewReader(data), int64(len(data))); err == nil {
		t.Fatalf("expected error for unsupported function")
	}
}

func TestReadMissingSheet(t *testing.T) {
	data := makeWorkbook(t)
	r := Reader{
		Sheet: "Other",
	}
	_, err := r.Read(bytes.NewReader(data), int64(len(data)))
	if !errors.Is(err, ErrFound) {
		t.Fatalf("expected ErrFound, got %v", err)
	}
}

func TestWriteRead(t *testing.T) {
	sh, _ := sheet.New(5, 5)
	cells := []struct {
		Addr string
		Raw  string
	}{
		{"A1", "1"},
		{"A2", "=(+ A1 1)"},
		{"B1", "some text"},
		{"C1", "=#t"},
		{"D1", "=(+ B1 1)"},
	}
	for _, c := range cells {
		pos, _ := layout.ParsePosition(c.Addr)
		sh.Edit(pos, c.Raw)
	}
	var buf bytes.Buffer
	if err := sh.Encode(Encode(&buf, "Data")); err != nil {
		t.Fatalf("fail to write workbook: %s", err)
	}

	r := Reader{
		Sheet: "Data",
	}
	snap, err := r.Read(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("fail to read workbook: %s", err)
	}
	want := map[string]string{
		"A1": "1",
		"A2": "2",
		"B1": "some text",
		"C1": "=#t",
		"D1": "#VALUE!",
	}
	got := records(snap)
	for addr, raw := range want {
		if got[addr] != raw {
			t.Errorf("%s: raw mismatched! want %s, got %s", addr, raw, got[addr])
		}
	}
	if snap.Size != (layout.Dimension{Lines: 2, Columns: 4}) {
		t.Errorf("size mismatched! got %v", snap.Size)
	}
}

func TestReadInvalid(t *testing.T) {
	data := []byte("not a zip file")
	var r Reader
	if _, err := r.Read(bytes.NewReader(data), int64(len(data))); !errors.Is(err, ErrFile) {
		t.Fatalf("expected ErrFile, got %v", err)
	}
}
