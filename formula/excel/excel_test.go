package excel

import (
	"errors"
	"testing"

	"github.com/midbel/sheetspread/formula"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		Input string
		Want  string
	}{
		{
			Input: "=1+2",
			Want:  "=(+ 1 2)",
		},
		{
			Input: "1+2*3",
			Want:  "(+ 1 (* 2 3))",
		},
		{
			Input: "=(1+2)*3",
			Want:  "=(* (+ 1 2) 3)",
		},
		{
			Input: "=2^3^2",
			Want:  "=(^ 2 (^ 3 2))",
		},
		{
			Input: "=-A1+1",
			Want:  "=(+ (- 0 A1) 1)",
		},
		{
			Input: "=SUM(A1:A3)+2",
			Want:  "=(+ (SUM A1:A3) 2)",
		},
		{
			Input: "=average($b$1:b4)",
			Want:  "=(AVG B1:B4)",
		},
		{
			Input: `=A1&" "&B1`,
			Want:  `=(CONCAT (CONCAT A1 " ") B1)`,
		},
		{
			Input: "=A1<>B1",
			Want:  "=(NOT (= A1 B1))",
		},
		{
			Input: `=IF(A1>5,"big","small")`,
			Want:  `=(IF (> A1 5) "big" "small")`,
		},
		{
			Input: "=AND(TRUE,A1>=1,FALSE)",
			Want:  "=(ALL #t (>= A1 1) #f)",
		},
		{
			Input: "=MAX(1, MIN(A1, 2))",
			Want:  "=(MAX 1 (MIN A1 2))",
		},
	}
	for _, c := range tests {
		got, err := Convert(c.Input)
		if err != nil {
			t.Errorf("%s: fail to convert formula: %s", c.Input, err)
			continue
		}
		if got != c.Want {
			t.Errorf("%s: result mismatched! want %s, got %s", c.Input, c.Want, got)
		}
	}
}

func TestConvertErrors(t *testing.T) {
	tests := []struct {
		Input string
		Err   error
	}{
		{
			Input: "=VLOOKUP(A1,B1:C4,2)",
			Err:   formula.ErrUnsupported,
		},
		{
			Input: "=Sheet2!A1+1",
			Err:   formula.ErrUnsupported,
		},
		{
			Input: "=10%",
			Err:   formula.ErrUnsupported,
		},
		{
			Input: "=",
			Err:   formula.ErrInvalidExpr,
		},
	}
	for _, c := range tests {
		_, err := Convert(c.Input)
		if !errors.Is(err, c.Err) {
			t.Errorf("%s: error mismatched! want %s, got %v", c.Input, c.Err, err)
		}
	}
}

func TestCompile(t *testing.T) {
	expr, deps, err := Compile("=SUM(A1:A2)*B1")
	if err != nil {
		t.Fatalf("fail to compile formula: %s", err)
	}
	if want := "(* (SUM A1:A2) B1)"; expr.String() != want {
		t.Errorf("expression mismatched! want %s, got %s", want, expr)
	}
	if len(deps) != 3 {
		t.Errorf("expected 3 dependencies, got %d", len(deps))
	}
}
