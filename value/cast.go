package value

import (
	"math"
)

func CastToFloat(val Value) (Float, error) {
	f, ok := val.(Float)
	if !ok {
		return 0, typeError(KindNumber, val)
	}
	return f, nil
}

func CastToBool(val Value) (Boolean, error) {
	b, ok := val.(Boolean)
	if !ok {
		return false, typeError(KindBoolean, val)
	}
	return b, nil
}

func CastToText(val Value) Text {
	if t, ok := val.(Text); ok {
		return t
	}
	return Text(val.String())
}

func Add(left, right Value) (Value, error) {
	return doMath(left, right, func(left, right float64) float64 {
		return left + right
	})
}

func Sub(left, right Value) (Value, error) {
	return doMath(left, right, func(left, right float64) float64 {
		return left - right
	})
}

func Mul(left, right Value) (Value, error) {
	return doMath(left, right, func(left, right float64) float64 {
		return left * right
	})
}

// Div follows floating point semantics: a zero divisor gives an infinity or NaN.
func Div(left, right Value) (Value, error) {
	return doMath(left, right, func(left, right float64) float64 {
		return left / right
	})
}

func Pow(left, right Value) (Value, error) {
	return doMath(left, right, math.Pow)
}

func Concat(left, right Value) (Value, error) {
	return CastToText(left) + CastToText(right), nil
}

func Eq(left, right Value) (Value, error) {
	c, ok := left.(Comparable)
	if !ok {
		return Boolean(false), nil
	}
	res, err := c.Equal(right)
	return Boolean(res), err
}

func Lt(left, right Value) (Value, error) {
	return doCmp(left, right, func(left Comparable, right Value) (bool, error) {
		return left.Less(right)
	})
}

func Le(left, right Value) (Value, error) {
	return doCmp(left, right, func(left Comparable, right Value) (bool, error) {
		ok, err := left.Less(right)
		if ok || err != nil {
			return ok, err
		}
		return left.Equal(right)
	})
}

func Gt(left, right Value) (Value, error) {
	return doCmp(right, left, func(left Comparable, right Value) (bool, error) {
		return left.Less(right)
	})
}

func Ge(left, right Value) (Value, error) {
	return doCmp(right, left, func(left Comparable, right Value) (bool, error) {
		ok, err := left.Less(right)
		if ok || err != nil {
			return ok, err
		}
		return left.Equal(right)
	})
}

func And(left, right Value) (Value, error) {
	return doBool(left, right, func(left, right bool) bool {
		return left && right
	})
}

func Or(left, right Value) (Value, error) {
	return doBool(left, right, func(left, right bool) bool {
		return left || right
	})
}

func Xor(left, right Value) (Value, error) {
	return doBool(left, right, func(left, right bool) bool {
		return left != right
	})
}

func Not(val Value) (Value, error) {
	b, err := CastToBool(val)
	if err != nil {
		return nil, err
	}
	return !b, nil
}

func doMath(left, right Value, do func(float64, float64) float64) (Value, error) {
	x, err := CastToFloat(left)
	if err != nil {
		return nil, err
	}
	y, err := CastToFloat(right)
	if err != nil {
		return nil, err
	}
	return Float(do(float64(x), float64(y))), nil
}

func doCmp(left, right Value, do func(Comparable, Value) (bool, error)) (Value, error) {
	c, ok := left.(Comparable)
	if !ok {
		return nil, typeError(right.Kind(), left)
	}
	if left.Kind() != right.Kind() {
		return nil, typeError(left.Kind(), right)
	}
	res, err := do(c, right)
	if err != nil {
		return nil, err
	}
	return Boolean(res), nil
}

func doBool(left, right Value, do func(bool, bool) bool) (Value, error) {
	x, err := CastToBool(left)
	if err != nil {
		return nil, err
	}
	y, err := CastToBool(right)
	if err != nil {
		return nil, err
	}
	return Boolean(do(bool(x), bool(y))), nil
}
