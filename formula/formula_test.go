package formula

import (
	"errors"
	"testing"

	"github.com/midbel/sheetspread/layout"
	"github.com/midbel/sheetspread/value"
)

type fakeGrid struct {
	cells map[string]value.Value
}

func (g fakeGrid) At(pos layout.Position) (value.Value, error) {
	val, ok := g.cells[pos.Addr()]
	if !ok {
		return value.Empty(), nil
	}
	return val, nil
}

func fake() Grid {
	grid := fakeGrid{
		cells: make(map[string]value.Value),
	}
	grid.cells["A1"] = value.Float(1)
	grid.cells["A2"] = value.Float(2)
	grid.cells["A3"] = value.Float(3)
	grid.cells["B1"] = value.Text("foo")
	grid.cells["B2"] = value.Text("bar")
	grid.cells["C1"] = value.Boolean(true)
	return grid
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		Input string
		Want  string
	}{
		{
			Input: "42",
			Want:  "42",
		},
		{
			Input: "(+ 1 2)",
			Want:  "(+ 1 2)",
		},
		{
			Input: "  ( +   1\t(* 2 3) )",
			Want:  "(+ 1 (* 2 3))",
		},
		{
			Input: `(CONCAT "foo bar" "(x)")`,
			Want:  `(CONCAT "foo bar" "(x)")`,
		},
		{
			Input: "(SUM)",
			Want:  "(SUM)",
		},
	}
	for _, c := range tests {
		tok, err := Tokenize(c.Input)
		if err != nil {
			t.Errorf("%s: fail to tokenize: %s", c.Input, err)
			continue
		}
		if got := tok.String(); got != c.Want {
			t.Errorf("%s: tokens mismatched! want %s, got %s", c.Input, c.Want, got)
		}
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []string{
		"",
		"(+ 1 2",
		"(+ 1 2))",
		`"foo`,
		"1 2",
		"(+ 1 2) (+ 3 4)",
	}
	for _, str := range tests {
		_, err := Tokenize(str)
		if !errors.Is(err, ErrTokenize) {
			t.Errorf("%q: expected tokenizer error, got %v", str, err)
		}
	}
}

func TestCompileString(t *testing.T) {
	tests := []struct {
		Expr string
		Want string
	}{
		{
			Expr: "(+ 1 2)",
			Want: "(+ 1 2)",
		},
		{
			Expr: "(sum a1:a3)",
			Want: "(SUM A1:A3)",
		},
		{
			Expr: "(SUM A3:A1)",
			Want: "(SUM A1:A3)",
		},
		{
			Expr: `(if #true "a" "b")`,
			Want: `(IF #t "a" "b")`,
		},
		{
			Expr: "(NOT #false)",
			Want: "(NOT #f)",
		},
		{
			Expr: "(* B2 (- 1.5 c10))",
			Want: "(* B2 (- 1.5 C10))",
		},
		{
			Expr: "A1",
			Want: "A1",
		},
		{
			Expr: `(if (> a2 1) (concat b1:b2) "small")`,
			Want: `(IF (> A2 1) (CONCAT B1:B2) "small")`,
		},
		{
			Expr: "(avg a3:a1)",
			Want: "(AVG A1:A3)",
		},
	}
	grid := fake()
	for _, c := range tests {
		expr, _, err := CompileString(c.Expr)
		if err != nil {
			t.Errorf("%s: fail to compile formula: %s", c.Expr, err)
			continue
		}
		got := expr.String()
		if got != c.Want {
			t.Errorf("%s: result mismatched! want %s, got %s", c.Expr, c.Want, got)
			continue
		}
		again, _, err := CompileString(got)
		if err != nil {
			t.Errorf("%s: fail to compile canonical form: %s", got, err)
			continue
		}
		if again.String() != got {
			t.Errorf("%s: canonical form not stable! want %s, got %s", c.Expr, got, again)
		}
		want, wantErr := Eval(expr, grid)
		res, err := Eval(again, grid)
		if (wantErr == nil) != (err == nil) {
			t.Errorf("%s: evaluation mismatched! want error %v, got %v", c.Expr, wantErr, err)
			continue
		}
		if wantErr == nil && res != want {
			t.Errorf("%s: evaluation mismatched! want %s, got %s", c.Expr, want, res)
		}
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		Expr string
		Err  error
	}{
		{
			Expr: "(MIN)",
			Err:  ErrArgCount,
		},
		{
			Expr: "(AVG)",
			Err:  ErrArgCount,
		},
		{
			Expr: "(+ 1)",
			Err:  ErrArgCount,
		},
		{
			Expr: "(NOT #t #f)",
			Err:  ErrArgCount,
		},
		{
			Expr: "(IF #t 1)",
			Err:  ErrArgCount,
		},
		{
			Expr: "(FOO 1)",
			Err:  ErrUnsupported,
		},
		{
			Expr: "((+ 1 2) 1)",
			Err:  ErrUnsupported,
		},
		{
			Expr: "()",
			Err:  ErrInvalidForm,
		},
		{
			Expr: "(NOT 1)",
			Err:  ErrInvalidForm,
		},
		{
			Expr: "(+ A1:A2 1)",
			Err:  ErrInvalidExpr,
		},
		{
			Expr: "(SUM A1:A2 1)",
			Err:  ErrInvalidExpr,
		},
		{
			Expr: "(+ foo 1)",
			Err:  ErrInvalidExpr,
		},
		{
			Expr: "(SUM A1:Z99999)",
			Err:  ErrInvalidExpr,
		},
		{
			Expr: "(SUM B1:ZZZ99999)",
			Err:  ErrInvalidExpr,
		},
		{
			Expr: "(+ AAAAAAAAAAAAAAAAAAAAAAAAAAAAA1 1)",
			Err:  ErrInvalidExpr,
		},
		{
			Expr: "(+ A99999999999 1)",
			Err:  ErrInvalidExpr,
		},
		{
			Expr: "(+ 1 2",
			Err:  ErrTokenize,
		},
	}
	for _, c := range tests {
		_, _, err := CompileString(c.Expr)
		if !errors.Is(err, c.Err) {
			t.Errorf("%s: error mismatched! want %s, got %v", c.Expr, c.Err, err)
		}
	}
}

func TestArgCountError(t *testing.T) {
	_, _, err := CompileString("(MAX)")
	var ac ArgCountError
	if !errors.As(err, &ac) {
		t.Fatalf("expected ArgCountError, got %v", err)
	}
	if ac.Want != 1 || ac.Got != 0 || !ac.AtLeast {
		t.Errorf("unexpected error details: %+v", ac)
	}
}

func TestDeps(t *testing.T) {
	tests := []struct {
		Expr string
		Want []string
	}{
		{
			Expr: "(+ 1 2)",
		},
		{
			Expr: "(+ B1 A1)",
			Want: []string{"A1", "B1"},
		},
		{
			Expr: "(SUM A1:B2)",
			Want: []string{"A1", "B1", "A2", "B2"},
		},
		{
			Expr: "(IF C1 A1 (+ A1 A2))",
			Want: []string{"A1", "C1", "A2"},
		},
	}
	for _, c := range tests {
		_, deps, err := CompileString(c.Expr)
		if err != nil {
			t.Errorf("%s: fail to compile formula: %s", c.Expr, err)
			continue
		}
		list := deps.List()
		if len(list) != len(c.Want) {
			t.Errorf("%s: number of dependencies mismatched! want %d, got %d", c.Expr, len(c.Want), len(list))
			continue
		}
		for i := range list {
			if got := list[i].Addr(); got != c.Want[i] {
				t.Errorf("%s: dependency mismatched! want %s, got %s", c.Expr, c.Want[i], got)
			}
		}
	}
}

func TestEval(t *testing.T) {
	grid := fake()
	tests := []struct {
		Expr string
		Want string
	}{
		{
			Expr: "42",
			Want: "42",
		},
		{
			Expr: "(+ 1 2)",
			Want: "3",
		},
		{
			Expr: "(- 10 4)",
			Want: "6",
		},
		{
			Expr: "(/ 1 4)",
			Want: "0.25",
		},
		{
			Expr: "(^ 2 10)",
			Want: "1024",
		},
		{
			Expr: "(* A2 (+ A1 A3))",
			Want: "8",
		},
		{
			Expr: "(< 1 2)",
			Want: "true",
		},
		{
			Expr: "(>= A1 A2)",
			Want: "false",
		},
		{
			Expr: `(= "a" 1)`,
			Want: "false",
		},
		{
			Expr: `(= B1 "foo")`,
			Want: "true",
		},
		{
			Expr: "(NOT (= 1 1))",
			Want: "false",
		},
		{
			Expr: "(XOR #t #f)",
			Want: "true",
		},
		{
			Expr: "(SUM A1:A3)",
			Want: "6",
		},
		{
			Expr: "(SUM)",
			Want: "0",
		},
		{
			Expr: "(SUM A1:A5)",
			Want: "6",
		},
		{
			Expr: "(AVG A1:A5)",
			Want: "2",
		},
		{
			Expr: "(PRODUCT A1:A3)",
			Want: "6",
		},
		{
			Expr: "(PRODUCT)",
			Want: "1",
		},
		{
			Expr: "(AVG A1:A3)",
			Want: "2",
		},
		{
			Expr: "(MIN 3 1 2)",
			Want: "1",
		},
		{
			Expr: "(MAX A1:A3)",
			Want: "3",
		},
		{
			Expr: "(CONCAT B1 B2 1)",
			Want: "foobar1",
		},
		{
			Expr: "(ALL #t C1 #f)",
			Want: "false",
		},
		{
			Expr: "(ANY #f C1)",
			Want: "true",
		},
		{
			Expr: `(IF (> A2 A1) "up" "down")`,
			Want: "up",
		},
		{
			Expr: `(IF #t 1 (+ 1 "x"))`,
			Want: "1",
		},
	}
	for _, c := range tests {
		expr, _, err := CompileString(c.Expr)
		if err != nil {
			t.Errorf("%s: fail to compile formula: %s", c.Expr, err)
			continue
		}
		got, err := Eval(expr, grid)
		if err != nil {
			t.Errorf("%s: error while evaluating formula: %s", c.Expr, err)
			continue
		}
		if got.String() != c.Want {
			t.Errorf("%s: result mismatched! want %s, got %s", c.Expr, c.Want, got)
		}
	}
}

func TestEvalErrors(t *testing.T) {
	grid := fake()
	tests := []struct {
		Expr string
		Err  error
	}{
		{
			Expr: `(+ 1 "a")`,
			Err:  value.ErrType,
		},
		{
			Expr: "(+ B1 1)",
			Err:  value.ErrType,
		},
		{
			Expr: `(< 1 "a")`,
			Err:  value.ErrType,
		},
		{
			Expr: "(IF 1 2 3)",
			Err:  ErrInvalidForm,
		},
		{
			Expr: "(NOT A1)",
			Err:  value.ErrType,
		},
		{
			Expr: "(AND #t 1)",
			Err:  value.ErrType,
		},
		{
			Expr: "(MAX D1:D3)",
			Err:  ErrArgCount,
		},
		{
			Expr: "(SUM A1:B1)",
			Err:  value.ErrType,
		},
	}
	for _, c := range tests {
		expr, _, err := CompileString(c.Expr)
		if err != nil {
			t.Errorf("%s: fail to compile formula: %s", c.Expr, err)
			continue
		}
		_, err = Eval(expr, grid)
		if !errors.Is(err, c.Err) {
			t.Errorf("%s: error mismatched! want %s, got %v", c.Expr, c.Err, err)
		}
	}
}

func TestRewrite(t *testing.T) {
	down := func(pos layout.Position) (layout.Position, bool) {
		return pos.Shift(1, 0), true
	}
	expr, _, err := CompileString("(+ A1 (SUM B1:B2))")
	if err != nil {
		t.Fatalf("fail to compile formula: %s", err)
	}
	got, err := expr.Rewrite(down)
	if err != nil {
		t.Fatalf("fail to rewrite formula: %s", err)
	}
	if want := "(+ A2 (SUM B2:B3))"; got.String() != want {
		t.Errorf("rewrite mismatched! want %s, got %s", want, got)
	}

	gone := func(pos layout.Position) (layout.Position, bool) {
		return pos, pos.Line != 1
	}
	if _, err := expr.Rewrite(gone); !errors.Is(err, ErrReference) {
		t.Errorf("expected reference error, got %v", err)
	}
}

func TestReplace(t *testing.T) {
	expr, _, err := CompileString("(+ A1 (* A1 B1))")
	if err != nil {
		t.Fatalf("fail to compile formula: %s", err)
	}
	old, _ := layout.ParsePosition("A1")
	pos, _ := layout.ParsePosition("C3")
	got := Replace(expr, old, pos)
	if want := "(+ C3 (* C3 B1))"; got.String() != want {
		t.Errorf("replace mismatched! want %s, got %s", want, got)
	}
	if want := "(+ A1 (* A1 B1))"; expr.String() != want {
		t.Errorf("original expression modified! want %s, got %s", want, expr)
	}
}
