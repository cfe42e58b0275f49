package formula

import (
	"fmt"
	"slices"
	"strings"

	"github.com/midbel/sheetspread/formula/op"
	"github.com/midbel/sheetspread/layout"
	"github.com/midbel/sheetspread/value"
)

// MaxRangeSize is the largest number of cells a range can cover.
const MaxRangeSize = 1 << 16

// Deps is the set of cells read by a formula.
type Deps map[layout.Position]struct{}

func (d Deps) Add(pos layout.Position) {
	d[pos] = struct{}{}
}

func (d Deps) Has(pos layout.Position) bool {
	_, ok := d[pos]
	return ok
}

// List returns the positions of the set in line then column order.
func (d Deps) List() []layout.Position {
	list := make([]layout.Position, 0, len(d))
	for pos := range d {
		list = append(list, pos)
	}
	slices.SortFunc(list, func(a, b layout.Position) int {
		return a.Compare(b)
	})
	return list
}

// CompileString tokenizes and compiles str (without its leading '=').
func CompileString(str string) (Expr, Deps, error) {
	tok, err := Tokenize(str)
	if err != nil {
		return nil, nil, err
	}
	deps := make(Deps)
	expr, err := Compile(tok, deps)
	if err != nil {
		return nil, nil, err
	}
	return expr, deps, nil
}

// Compile builds the expression described by tok. Every cell read by the
// expression is added to deps while the tree is walked.
func Compile(tok Token, deps Deps) (Expr, error) {
	switch t := tok.(type) {
	case Atom:
		return compileAtom(string(t), deps)
	case List:
		return compileList(t, deps)
	default:
		return nil, fmt.Errorf("%w: unexpected token %v", ErrInvalidExpr, tok)
	}
}

type leafParser func(string, Deps) (Expr, bool)

var leafParsers = []leafParser{
	parseNumber,
	parseString,
	parseBoolean,
	parseCellRef,
}

func compileAtom(str string, deps Deps) (Expr, error) {
	for _, parse := range leafParsers {
		if expr, ok := parse(str, deps); ok {
			return expr, nil
		}
	}
	if layout.IsRange(str) {
		return nil, fmt.Errorf("%w: cell range %s is only allowed as the sole argument of an aggregate", ErrInvalidExpr, str)
	}
	return nil, fmt.Errorf("%w: %s", ErrInvalidExpr, str)
}

func parseNumber(str string, _ Deps) (Expr, bool) {
	n, ok := value.ParseNumber(str)
	if !ok {
		return nil, false
	}
	return literal{value: n}, true
}

func parseString(str string, _ Deps) (Expr, bool) {
	if len(str) < 2 || str[0] != dquote || str[len(str)-1] != dquote {
		return nil, false
	}
	return literal{value: value.Text(str[1 : len(str)-1])}, true
}

func parseBoolean(str string, _ Deps) (Expr, bool) {
	switch strings.ToLower(str) {
	case "#t", "#true":
		return literal{value: value.Boolean(true)}, true
	case "#f", "#false":
		return literal{value: value.Boolean(false)}, true
	default:
		return nil, false
	}
}

func parseCellRef(str string, deps Deps) (Expr, bool) {
	pos, err := layout.ParsePosition(str)
	if err != nil {
		return nil, false
	}
	deps.Add(pos)
	return cellRef{Position: pos}, true
}

func compileList(list List, deps Deps) (Expr, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: empty operation", ErrInvalidForm)
	}
	name, ok := list[0].(Atom)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, list[0])
	}
	var (
		oper = op.Lookup(string(name))
		args = list[1:]
	)
	switch oper.Category() {
	case op.Unary, op.Binary:
		return compileFixed(oper, args, deps)
	case op.Aggregate:
		return compileAggregate(oper, args, deps)
	case op.Conditional:
		return compileConditional(oper, args, deps)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, name)
	}
}

func compileArgs(args []Token, deps Deps) ([]Expr, error) {
	var list []Expr
	for _, a := range args {
		expr, err := Compile(a, deps)
		if err != nil {
			return nil, err
		}
		list = append(list, expr)
	}
	return list, nil
}

func compileFixed(oper op.Op, args []Token, deps Deps) (Expr, error) {
	if len(args) != oper.Arity() {
		return nil, ArgCountError{
			Op:   oper,
			Got:  len(args),
			Want: oper.Arity(),
		}
	}
	list, err := compileArgs(args, deps)
	if err != nil {
		return nil, err
	}
	if oper == op.Not {
		if i, ok := list[0].(literal); ok && i.value.Kind() != value.KindBoolean {
			return nil, fmt.Errorf("%w: %s expects a boolean operand, got %s", ErrInvalidForm, oper, i)
		}
	}
	expr := operation{
		op:   oper,
		args: list,
	}
	return expr, nil
}

func compileAggregate(oper op.Op, args []Token, deps Deps) (Expr, error) {
	if len(args) == 1 {
		if a, ok := args[0].(Atom); ok && layout.IsRange(string(a)) {
			return expandRange(oper, string(a), deps)
		}
	}
	if len(args) < oper.Arity() {
		return nil, ArgCountError{
			Op:      oper,
			Got:     len(args),
			Want:    oper.Arity(),
			AtLeast: true,
		}
	}
	list, err := compileArgs(args, deps)
	if err != nil {
		return nil, err
	}
	expr := operation{
		op:   oper,
		args: list,
	}
	return expr, nil
}

func expandRange(oper op.Op, str string, deps Deps) (Expr, error) {
	rg, err := layout.ParseRange(str)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidExpr, err)
	}
	if n := rg.Len(); n > MaxRangeSize {
		return nil, fmt.Errorf("%w: range %s covers %d cells, at most %d allowed", ErrInvalidExpr, rg, n, MaxRangeSize)
	}
	expr := operation{
		op:   oper,
		span: rg,
	}
	for pos := range rg.Positions() {
		deps.Add(pos)
		expr.args = append(expr.args, cellRef{Position: pos})
	}
	return expr, nil
}

func compileConditional(oper op.Op, args []Token, deps Deps) (Expr, error) {
	if len(args) != oper.Arity() {
		return nil, ArgCountError{
			Op:   oper,
			Got:  len(args),
			Want: oper.Arity(),
		}
	}
	list, err := compileArgs(args, deps)
	if err != nil {
		return nil, err
	}
	expr := conditional{
		op:   oper,
		args: list,
	}
	return expr, nil
}
