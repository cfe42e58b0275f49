package op

import (
	"strings"
)

type Op rune

const (
	Invalid Op = iota
	Not
	Add
	Sub
	Mul
	Div
	Pow
	Gt
	Ge
	Lt
	Le
	Eq
	And
	Or
	Xor
	Sum
	Product
	Avg
	Concat
	All
	Any
	Min
	Max
	If
)

type Category int8

const (
	None Category = iota
	Unary
	Binary
	Aggregate
	Conditional
)

func (c Category) String() string {
	switch c {
	case Unary:
		return "unary"
	case Binary:
		return "binary"
	case Aggregate:
		return "aggregate"
	case Conditional:
		return "conditional"
	default:
		return "none"
	}
}

var mapping = map[Op]string{
	Not:     "NOT",
	Add:     "+",
	Sub:     "-",
	Mul:     "*",
	Div:     "/",
	Pow:     "^",
	Gt:      ">",
	Ge:      ">=",
	Lt:      "<",
	Le:      "<=",
	Eq:      "=",
	And:     "AND",
	Or:      "OR",
	Xor:     "XOR",
	Sum:     "SUM",
	Product: "PRODUCT",
	Avg:     "AVG",
	Concat:  "CONCAT",
	All:     "ALL",
	Any:     "ANY",
	Min:     "MIN",
	Max:     "MAX",
	If:      "IF",
}

var symbols map[string]Op

func init() {
	symbols = make(map[string]Op, len(mapping))
	for o, s := range mapping {
		symbols[s] = o
	}
}

// Lookup returns the operator named by str. Names are case insensitive.
func Lookup(str string) Op {
	return symbols[strings.ToUpper(str)]
}

func Symbol(oper Op) string {
	return mapping[oper]
}

func (o Op) String() string {
	if s, ok := mapping[o]; ok {
		return s
	}
	return "invalid"
}

func (o Op) Category() Category {
	switch o {
	case Not:
		return Unary
	case Add, Sub, Mul, Div, Pow, Gt, Ge, Lt, Le, Eq, And, Or, Xor:
		return Binary
	case Sum, Product, Avg, Concat, All, Any, Min, Max:
		return Aggregate
	case If:
		return Conditional
	default:
		return None
	}
}

// Arity gives the exact number of operands of fixed arity operators and the
// minimum number of operands of aggregates.
func (o Op) Arity() int {
	switch o.Category() {
	case Unary:
		return 1
	case Binary:
		return 2
	case Conditional:
		return 3
	case Aggregate:
		if o == Avg || o == Min || o == Max {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func (o Op) Variadic() bool {
	return o.Category() == Aggregate
}
