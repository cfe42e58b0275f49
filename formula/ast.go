package formula

import (
	"fmt"
	"strings"

	"github.com/midbel/sheetspread/formula/op"
	"github.com/midbel/sheetspread/layout"
	"github.com/midbel/sheetspread/value"
)

// Expr is a compiled formula. Its String method gives back the canonical
// prefix form of the formula.
type Expr interface {
	fmt.Stringer
	Rewrite(Mapper) (Expr, error)
}

// Mapper gives the new position of a referenced cell. It returns false when
// the cell does not exist anymore.
type Mapper func(layout.Position) (layout.Position, bool)

// Replace returns a copy of expr where every reference to old points to pos.
func Replace(expr Expr, old, pos layout.Position) Expr {
	x, err := expr.Rewrite(func(p layout.Position) (layout.Position, bool) {
		if p.Equal(old) {
			return pos, true
		}
		return p, true
	})
	if err != nil {
		return expr
	}
	return x
}

type literal struct {
	value value.Value
}

func (i literal) String() string {
	switch v := i.value.(type) {
	case value.Text:
		return fmt.Sprintf("%c%s%c", dquote, string(v), dquote)
	case value.Boolean:
		if v {
			return "#t"
		}
		return "#f"
	default:
		return v.String()
	}
}

func (i literal) Rewrite(_ Mapper) (Expr, error) {
	return i, nil
}

type cellRef struct {
	layout.Position
}

func (c cellRef) String() string {
	return c.Addr()
}

func (c cellRef) Rewrite(fn Mapper) (Expr, error) {
	pos, ok := fn(c.Position)
	if !ok {
		return nil, fmt.Errorf("%w: %s has been deleted", ErrReference, c.Addr())
	}
	return cellRef{Position: pos}, nil
}

type operation struct {
	op   op.Op
	args []Expr
	// set when the operands come from the expansion of a cell range
	span *layout.Range
}

func (o operation) String() string {
	var parts []string
	parts = append(parts, op.Symbol(o.op))
	if o.span != nil {
		parts = append(parts, o.span.String())
	} else {
		for i := range o.args {
			parts = append(parts, o.args[i].String())
		}
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, " "))
}

func (o operation) Rewrite(fn Mapper) (Expr, error) {
	if o.span != nil {
		return o.rewriteSpan(fn)
	}
	x := operation{
		op: o.op,
	}
	for i := range o.args {
		a, err := o.args[i].Rewrite(fn)
		if err != nil {
			return nil, err
		}
		x.args = append(x.args, a)
	}
	return x, nil
}

func (o operation) rewriteSpan(fn Mapper) (Expr, error) {
	starts, ok := fn(o.span.Starts)
	if !ok {
		return nil, fmt.Errorf("%w: %s has been deleted", ErrReference, o.span.Starts.Addr())
	}
	ends, ok := fn(o.span.Ends)
	if !ok {
		return nil, fmt.Errorf("%w: %s has been deleted", ErrReference, o.span.Ends.Addr())
	}
	rg := layout.NewRange(starts, ends).Normalize()
	x := operation{
		op:   o.op,
		span: rg,
	}
	for pos := range rg.Positions() {
		x.args = append(x.args, cellRef{Position: pos})
	}
	return x, nil
}

type conditional struct {
	op   op.Op
	args []Expr
}

func (c conditional) String() string {
	var parts []string
	parts = append(parts, op.Symbol(c.op))
	for i := range c.args {
		parts = append(parts, c.args[i].String())
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, " "))
}

func (c conditional) Rewrite(fn Mapper) (Expr, error) {
	x := conditional{
		op: c.op,
	}
	for i := range c.args {
		a, err := c.args[i].Rewrite(fn)
		if err != nil {
			return nil, err
		}
		x.args = append(x.args, a)
	}
	return x, nil
}
