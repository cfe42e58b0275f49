package sheet

import (
	"errors"
	"slices"
	"testing"

	"github.com/midbel/sheetspread/format"
	"github.com/midbel/sheetspread/formula"
	"github.com/midbel/sheetspread/graph"
	"github.com/midbel/sheetspread/layout"
	"github.com/midbel/sheetspread/value"
)

func pos(addr string) layout.Position {
	p, err := layout.ParsePosition(addr)
	if err != nil {
		panic(err)
	}
	return p
}

func edit(t *testing.T, s *Sheet, addr, raw string) {
	t.Helper()
	if err := s.Edit(pos(addr), raw); err != nil {
		t.Fatalf("%s: fail to edit cell with %q: %s", addr, raw, err)
	}
}

func checkValue(t *testing.T, s *Sheet, addr, want string) {
	t.Helper()
	data := s.ReadCell(pos(addr))
	if data.Err != nil {
		t.Errorf("%s: unexpected error: %s", addr, data.Err)
		return
	}
	if got := data.Value.String(); got != want {
		t.Errorf("%s: value mismatched! want %s, got %s", addr, want, got)
	}
}

func TestEditScenarios(t *testing.T) {
	s := Default()

	edit(t, s, "A1", "5")
	if v := s.ReadCell(pos("A1")).Value; v != value.Float(5) {
		t.Errorf("A1: expected number 5, got %v", v)
	}

	edit(t, s, "B1", "=(+ A1 3)")
	checkValue(t, s, "B1", "8")
	if deps := s.Dependencies().Dependents(pos("A1")); !slices.Contains(deps, pos("B1")) {
		t.Errorf("edge A1 -> B1 missing: %s", s.Dependencies())
	}

	edit(t, s, "A1", "10")
	checkValue(t, s, "B1", "13")

	before := s.ReadCell(pos("A1"))
	err := s.Edit(pos("A1"), "=(+ B1 1)")
	if !errors.Is(err, graph.ErrCircular) {
		t.Fatalf("A1: expected circular reference, got %v", err)
	}
	after := s.ReadCell(pos("A1"))
	if after.Value != before.Value {
		t.Errorf("A1: value changed after failed edit! want %s, got %s", before.Value, after.Value)
	}
	if !errors.Is(after.Err, graph.ErrCircular) {
		t.Errorf("A1: error not recorded: %v", after.Err)
	}
	if deps := s.Dependencies().Dependencies(pos("A1")); len(deps) != 0 {
		t.Errorf("A1: dependencies added after failed edit: %v", deps)
	}
}

func TestEditRange(t *testing.T) {
	s := Default()
	edit(t, s, "A1", "1")
	edit(t, s, "A2", "2")
	edit(t, s, "A3", "3")
	edit(t, s, "C1", "=(SUM A1:A3)")
	checkValue(t, s, "C1", "6")
	for _, addr := range []string{"A1", "A2", "A3"} {
		if deps := s.Dependencies().Dependents(pos(addr)); !slices.Contains(deps, pos("C1")) {
			t.Errorf("edge %s -> C1 missing", addr)
		}
	}
	if got := s.FormulaText(pos("C1")); got != "=(SUM A1:A3)" {
		t.Errorf("C1: formula mismatched! want =(SUM A1:A3), got %s", got)
	}
}

func TestEditConditional(t *testing.T) {
	s := Default()
	edit(t, s, "A1", "10")
	edit(t, s, "D1", `=(IF (> A1 5) "big" "small")`)
	checkValue(t, s, "D1", "big")

	edit(t, s, "A1", "1")
	if err := s.Recompute(pos("D1")); err != nil {
		t.Fatalf("D1: fail to recompute: %s", err)
	}
	checkValue(t, s, "D1", "small")
}

func TestEditCanonicalText(t *testing.T) {
	s := Default()
	edit(t, s, "A1", "=(  +  1   (sum b1:b2) )")
	if got := s.FormulaText(pos("A1")); got != "=(+ 1 (SUM B1:B2))" {
		t.Errorf("A1: formula mismatched! want =(+ 1 (SUM B1:B2)), got %s", got)
	}
}

func TestEditIdempotent(t *testing.T) {
	s := Default()
	edit(t, s, "A1", "2")
	edit(t, s, "B1", "=(* A1 A1)")
	first := s.ReadCell(pos("B1"))
	edges := s.Dependencies().String()

	edit(t, s, "B1", "=(* A1 A1)")
	second := s.ReadCell(pos("B1"))
	if first.Value != second.Value || first.Raw != second.Raw || first.Err != second.Err {
		t.Errorf("B1: cell changed after second edit! want %+v, got %+v", first, second)
	}
	if got := s.Dependencies().String(); got != edges {
		t.Errorf("graph changed after second edit! want %s, got %s", edges, got)
	}
}

func TestEditLiteral(t *testing.T) {
	s := Default()
	tests := []struct {
		Raw  string
		Want value.Value
	}{
		{
			Raw:  "",
			Want: value.Text(""),
		},
		{
			Raw:  "42",
			Want: value.Float(42),
		},
		{
			Raw:  "-1.5",
			Want: value.Float(-1.5),
		},
		{
			Raw:  "hello",
			Want: value.Text("hello"),
		},
		{
			Raw:  "Inf",
			Want: value.Text("Inf"),
		},
	}
	for _, c := range tests {
		edit(t, s, "A1", c.Raw)
		if got := s.ReadCell(pos("A1")).Value; got != c.Want {
			t.Errorf("%q: value mismatched! want %v, got %v", c.Raw, c.Want, got)
		}
	}
}

func TestEditFormulaToLiteral(t *testing.T) {
	s := Default()
	edit(t, s, "A1", "1")
	edit(t, s, "B1", "=(+ A1 1)")
	edit(t, s, "B1", "7")
	if deps := s.Dependencies().Dependents(pos("A1")); len(deps) != 0 {
		t.Errorf("A1: dependents left after literal edit: %v", deps)
	}
	edit(t, s, "A1", "100")
	checkValue(t, s, "B1", "7")
}

func TestErrorKeepsValue(t *testing.T) {
	s := Default()
	edit(t, s, "A1", "1")
	edit(t, s, "B1", "=(+ A1 1)")

	err := s.Edit(pos("B1"), "=(+ A1")
	if !errors.Is(err, formula.ErrTokenize) {
		t.Fatalf("B1: expected tokenizer error, got %v", err)
	}
	data := s.ReadCell(pos("B1"))
	if data.Raw != "=(+ A1" {
		t.Errorf("B1: raw text not kept: %s", data.Raw)
	}
	if data.Value != value.Float(2) {
		t.Errorf("B1: value not kept: %v", data.Value)
	}
	if data.Display() != ErrorMark {
		t.Errorf("B1: expected error mark, got %s", data.Display())
	}

	edit(t, s, "B1", "=(+ A1 2)")
	checkValue(t, s, "B1", "3")
}

func TestInvalidTextNotEvaluated(t *testing.T) {
	s := Default()
	edit(t, s, "A1", "1")
	edit(t, s, "B1", "=(+ A1 3)")

	if err := s.Edit(pos("B1"), "=(* A1"); !errors.Is(err, formula.ErrTokenize) {
		t.Fatalf("B1: expected tokenizer error, got %v", err)
	}
	edit(t, s, "A1", "10")

	data := s.ReadCell(pos("B1"))
	if data.Raw != "=(* A1" {
		t.Errorf("B1: raw text mismatched! want =(* A1, got %s", data.Raw)
	}
	if data.Value != value.Float(4) {
		t.Errorf("B1: value mismatched! want 4, got %v", data.Value)
	}
	if !errors.Is(data.Err, formula.ErrTokenize) {
		t.Errorf("B1: expected tokenizer error, got %v", data.Err)
	}
	if err := s.Recompute(pos("B1")); !errors.Is(err, formula.ErrTokenize) {
		t.Errorf("B1: expected tokenizer error on recompute, got %v", err)
	}
	if data := s.ReadCell(pos("B1")); data.Err == nil || data.Value != value.Float(4) {
		t.Errorf("B1: recompute evaluated the previous formula: %+v", data)
	}

	edit(t, s, "B1", "=(* A1 2)")
	checkValue(t, s, "B1", "20")
}

func TestFailedEditFlowsDown(t *testing.T) {
	s := Default()
	edit(t, s, "A1", "1")
	edit(t, s, "B1", "=(+ A1 1)")
	edit(t, s, "C1", "=(* B1 2)")

	if err := s.Edit(pos("B1"), "=(+ A1"); err == nil {
		t.Fatalf("B1: expected edit to fail")
	}
	data := s.ReadCell(pos("C1"))
	if !errors.Is(data.Err, ErrUpstream) {
		t.Errorf("C1: expected upstream error, got %v", data.Err)
	}
	if data.Value != value.Float(4) {
		t.Errorf("C1: value not kept: %v", data.Value)
	}

	edit(t, s, "B1", "=(+ A1 2)")
	checkValue(t, s, "C1", "6")
}

func TestDependentErrors(t *testing.T) {
	s := Default()
	edit(t, s, "A1", "1")
	edit(t, s, "B1", "=(+ A1 1)")
	edit(t, s, "C1", "=(* B1 2)")

	edit(t, s, "A1", "foo")
	if data := s.ReadCell(pos("B1")); !errors.Is(data.Err, value.ErrType) {
		t.Errorf("B1: expected type error, got %v", data.Err)
	}
	if data := s.ReadCell(pos("C1")); !errors.Is(data.Err, ErrUpstream) {
		t.Errorf("C1: expected upstream error, got %v", data.Err)
	}
	if data := s.ReadCell(pos("B1")); data.Value != value.Float(2) {
		t.Errorf("B1: value not kept: %v", data.Value)
	}

	edit(t, s, "A1", "2")
	checkValue(t, s, "B1", "3")
	checkValue(t, s, "C1", "6")
}

func TestChainOrder(t *testing.T) {
	s := Default()
	edit(t, s, "A1", "1")
	edit(t, s, "B1", "=(+ A1 1)")
	edit(t, s, "C1", "=(+ A1 B1)")
	edit(t, s, "D1", "=(+ B1 C1)")

	edit(t, s, "A1", "10")
	checkValue(t, s, "B1", "11")
	checkValue(t, s, "C1", "21")
	checkValue(t, s, "D1", "32")
}

func TestOutOfBounds(t *testing.T) {
	s, err := New(2, 2)
	if err != nil {
		t.Fatalf("fail to create sheet: %s", err)
	}
	if err := s.Edit(pos("C1"), "1"); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("C1: expected out of bounds error, got %v", err)
	}
	if len(s.Snapshot().Records) != 0 {
		t.Errorf("cell stored after out of bounds edit")
	}
	err = s.Edit(pos("A1"), "=(+ Z9 1)")
	if !errors.Is(err, formula.ErrReference) {
		t.Errorf("A1: expected reference error, got %v", err)
	}
	if _, err := New(0, 2); !errors.Is(err, ErrSize) {
		t.Errorf("expected size error, got %v", err)
	}
}

func TestEditOversizedRange(t *testing.T) {
	s := Default()
	tests := []string{
		"=(SUM B1:ZZZ99999)",
		"=(SUM B1:Z99999)",
		"=(+ AAAAAAAAAAAAAAAAAAAAAAAAAAAAA1 1)",
	}
	for _, raw := range tests {
		err := s.Edit(pos("A1"), raw)
		if !errors.Is(err, formula.ErrInvalidExpr) {
			t.Errorf("%s: expected invalid expression, got %v", raw, err)
		}
		if got := s.FormulaText(pos("A1")); got != raw {
			t.Errorf("%s: raw text mismatched! got %s", raw, got)
		}
	}
	if n := s.Dependencies().Len(); n != 0 {
		t.Errorf("graph should be empty, got %d node(s)", n)
	}
}

func TestSelectAndFlush(t *testing.T) {
	s := Default()
	edit(t, s, "A1", "1")
	edit(t, s, "B1", "=(+ A1 1)")
	if err := s.Select(pos("B1")); err != nil {
		t.Fatalf("fail to select B1: %s", err)
	}
	if err := s.SelectAndFlush(pos("C3")); err != nil {
		t.Fatalf("fail to flush B1: %s", err)
	}
	if sel := s.Selected(); !sel.Equal(pos("C3")) {
		t.Errorf("selection mismatched! want C3, got %s", sel)
	}
	checkValue(t, s, "B1", "2")
	if err := s.SelectAndFlush(pos("A99")); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected out of bounds error, got %v", err)
	}
}

func TestSetFormat(t *testing.T) {
	s := Default()
	if f := s.ReadCell(pos("A1")).Format; f != DefaultFormat() {
		t.Errorf("default format mismatched: %+v", f)
	}
	var (
		bold = true
		size = 14
	)
	if err := s.SetFormat(pos("A1"), FormatPatch{Bold: &bold}); err != nil {
		t.Fatalf("fail to set format: %s", err)
	}
	if err := s.SetFormat(pos("A1"), FormatPatch{Size: &size}); err != nil {
		t.Fatalf("fail to set format: %s", err)
	}
	want := DefaultFormat()
	want.Bold = true
	want.Size = 14
	if f := s.ReadCell(pos("A1")).Format; f != want {
		t.Errorf("format mismatched! want %+v, got %+v", want, f)
	}
}

func TestNumberFormat(t *testing.T) {
	s := Default()
	edit(t, s, "A1", "1234.5")
	edit(t, s, "A2", "=(* A1 2)")

	pattern := "#,##0.00"
	if err := s.SetFormat(pos("A2"), FormatPatch{Number: &pattern}); err != nil {
		t.Fatalf("fail to set format: %s", err)
	}
	if got := s.ReadCell(pos("A2")).Display(); got != "2,469.00" {
		t.Errorf("display mismatched! want 2,469.00, got %s", got)
	}
	checkValue(t, s, "A2", "2469")

	invalid := "0.x"
	if err := s.SetFormat(pos("A1"), FormatPatch{Number: &invalid}); !errors.Is(err, format.ErrPattern) {
		t.Errorf("expected ErrPattern, got %v", err)
	}
	if f := s.ReadCell(pos("A1")).Format; f.Number != "" {
		t.Errorf("invalid pattern should not be stored: %s", f.Number)
	}
}

func TestSnapshot(t *testing.T) {
	s := Default()
	edit(t, s, "C1", "=(* B1 2)")
	edit(t, s, "B1", "=(+ A1 1)")
	edit(t, s, "A1", "4")
	italic := true
	s.SetFormat(pos("D4"), FormatPatch{Italic: &italic})

	other, _ := New(2, 2)
	if err := other.Load(s.Snapshot()); err != nil {
		t.Fatalf("fail to load snapshot: %s", err)
	}
	if other.Size != s.Size {
		t.Errorf("size mismatched! want %v, got %v", s.Size, other.Size)
	}
	checkValue(t, other, "B1", "5")
	checkValue(t, other, "C1", "10")
	if f := other.ReadCell(pos("D4")).Format; !f.Italic {
		t.Errorf("D4: format not restored")
	}
}

func TestErrorLine(t *testing.T) {
	err := errors.New("first line\nsecond line")
	if got := ErrorLine(err); got != "first line" {
		t.Errorf("error line mismatched! want %q, got %q", "first line", got)
	}
	if got := ErrorLine(nil); got != "" {
		t.Errorf("expected empty line, got %q", got)
	}
}
