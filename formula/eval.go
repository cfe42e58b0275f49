package formula

import (
	"fmt"

	"github.com/midbel/sheetspread/formula/op"
	"github.com/midbel/sheetspread/layout"
	"github.com/midbel/sheetspread/value"
)

// Grid gives the current value of the cells of a sheet.
type Grid interface {
	At(layout.Position) (value.Value, error)
}

func Eval(expr Expr, grid Grid) (value.Value, error) {
	switch e := expr.(type) {
	case literal:
		return e.value, nil
	case cellRef:
		return grid.At(e.Position)
	case operation:
		return evalOperation(e, grid)
	case conditional:
		return evalConditional(e, grid)
	default:
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpr, expr)
	}
}

func evalOperation(e operation, grid Grid) (value.Value, error) {
	switch e.op.Category() {
	case op.Unary:
		return evalUnary(e, grid)
	case op.Binary:
		return evalBinary(e, grid)
	case op.Aggregate:
		return evalAggregate(e, grid)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, e.op)
	}
}

func evalUnary(e operation, grid Grid) (value.Value, error) {
	val, err := Eval(e.args[0], grid)
	if err != nil {
		return nil, err
	}
	switch e.op {
	case op.Not:
		return value.Not(val)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, e.op)
	}
}

func evalBinary(e operation, grid Grid) (value.Value, error) {
	left, err := Eval(e.args[0], grid)
	if err != nil {
		return nil, err
	}
	right, err := Eval(e.args[1], grid)
	if err != nil {
		return nil, err
	}
	switch e.op {
	case op.Add:
		return value.Add(left, right)
	case op.Sub:
		return value.Sub(left, right)
	case op.Mul:
		return value.Mul(left, right)
	case op.Div:
		return value.Div(left, right)
	case op.Pow:
		return value.Pow(left, right)
	case op.Eq:
		return value.Eq(left, right)
	case op.Lt:
		return value.Lt(left, right)
	case op.Le:
		return value.Le(left, right)
	case op.Gt:
		return value.Gt(left, right)
	case op.Ge:
		return value.Ge(left, right)
	case op.And:
		return value.And(left, right)
	case op.Or:
		return value.Or(left, right)
	case op.Xor:
		return value.Xor(left, right)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, e.op)
	}
}

type reducer func(value.Value, value.Value) (value.Value, error)

// Empty cells are skipped by every aggregate but CONCAT. Averages, minimums
// and maximums of nothing but empty cells fail.
func evalAggregate(e operation, grid Grid) (value.Value, error) {
	var args []value.Value
	for i := range e.args {
		v, err := Eval(e.args[i], grid)
		if err != nil {
			return nil, err
		}
		if value.IsEmpty(v) && e.op != op.Concat {
			continue
		}
		args = append(args, v)
	}
	switch e.op {
	case op.Sum:
		return reduce(value.Float(0), args, value.Add)
	case op.Product:
		return reduce(value.Float(1), args, value.Mul)
	case op.Avg:
		if len(args) == 0 {
			return nil, emptyAggregate(e.op)
		}
		sum, err := reduce(value.Float(0), args, value.Add)
		if err != nil {
			return nil, err
		}
		return value.Div(sum, value.Float(len(args)))
	case op.Concat:
		return reduce(value.Text(""), args, value.Concat)
	case op.All:
		return reduce(value.Boolean(true), args, value.And)
	case op.Any:
		return reduce(value.Boolean(false), args, value.Or)
	case op.Min:
		return reduceFirst(e.op, args, pick(value.Lt))
	case op.Max:
		return reduceFirst(e.op, args, pick(value.Gt))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, e.op)
	}
}

func reduce(acc value.Value, args []value.Value, do reducer) (value.Value, error) {
	var err error
	for _, a := range args {
		if acc, err = do(acc, a); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func reduceFirst(oper op.Op, args []value.Value, do reducer) (value.Value, error) {
	if len(args) == 0 {
		return nil, emptyAggregate(oper)
	}
	return reduce(args[0], args[1:], do)
}

func emptyAggregate(oper op.Op) error {
	return ArgCountError{
		Op:      oper,
		Want:    1,
		AtLeast: true,
	}
}

// pick keeps the candidate when cmp(candidate, acc) holds.
func pick(cmp reducer) reducer {
	return func(acc, candidate value.Value) (value.Value, error) {
		res, err := cmp(candidate, acc)
		if err != nil {
			return nil, err
		}
		if value.Boolean(true) == res {
			return candidate, nil
		}
		return acc, nil
	}
}

func evalConditional(e conditional, grid Grid) (value.Value, error) {
	pred, err := Eval(e.args[0], grid)
	if err != nil {
		return nil, err
	}
	ok, err := value.CastToBool(pred)
	if err != nil {
		return nil, fmt.Errorf("%w: %s predicate must be a boolean: %w", ErrInvalidForm, e.op, err)
	}
	if ok {
		return Eval(e.args[1], grid)
	}
	return Eval(e.args[2], grid)
}
