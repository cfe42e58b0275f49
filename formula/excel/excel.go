package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/efp"

	"github.com/midbel/sheetspread/formula"
	"github.com/midbel/sheetspread/layout"
	"github.com/midbel/sheetspread/value"
)

const (
	powLowest = iota
	powCmp
	powConcat
	powAdd
	powMul
	powPow
	powUnary
)

var bindings = map[string]int{
	"=":  powCmp,
	"<>": powCmp,
	"<":  powCmp,
	"<=": powCmp,
	">":  powCmp,
	">=": powCmp,
	"&":  powConcat,
	"+":  powAdd,
	"-":  powAdd,
	"*":  powMul,
	"/":  powMul,
	"^":  powPow,
}

var functions = map[string]string{
	"SUM":         "SUM",
	"PRODUCT":     "PRODUCT",
	"AVERAGE":     "AVG",
	"AVG":         "AVG",
	"CONCAT":      "CONCAT",
	"CONCATENATE": "CONCAT",
	"MIN":         "MIN",
	"MAX":         "MAX",
	"AND":         "ALL",
	"OR":          "ANY",
	"XOR":         "XOR",
	"NOT":         "NOT",
	"IF":          "IF",
}

// Convert rewrites an Excel formula written with infix operators and function
// calls into the prefix syntax understood by the formula package. The leading
// '=' is optional and kept when present.
func Convert(str string) (string, error) {
	prefix, str := "", strings.TrimSpace(str)
	if strings.HasPrefix(str, "=") {
		prefix, str = "=", str[1:]
	}
	var tokens []efp.Token
	ps := efp.ExcelParser()
	for _, t := range ps.Parse(str) {
		if t.TType == efp.TokenTypeWhitespace {
			continue
		}
		tokens = append(tokens, t)
	}
	if len(tokens) == 0 {
		return "", fmt.Errorf("%w: empty formula", formula.ErrInvalidExpr)
	}
	c := converter{
		tokens: tokens,
	}
	res, err := c.parse(powLowest)
	if err != nil {
		return "", err
	}
	if !c.done() {
		return "", fmt.Errorf("%w: unexpected token %q", formula.ErrInvalidExpr, c.curr().TValue)
	}
	return prefix + res, nil
}

// Compile converts str and compiles the result.
func Compile(str string) (formula.Expr, formula.Deps, error) {
	res, err := Convert(strings.TrimPrefix(strings.TrimSpace(str), "="))
	if err != nil {
		return nil, nil, err
	}
	return formula.CompileString(res)
}

type converter struct {
	tokens []efp.Token
	pos    int
}

func (c *converter) parse(pow int) (string, error) {
	left, err := c.prefix()
	if err != nil {
		return "", err
	}
	for !c.done() {
		tok := c.curr()
		if tok.TType == efp.TokenTypeOperatorPostfix {
			return "", fmt.Errorf("%w: postfix operator %s", formula.ErrUnsupported, tok.TValue)
		}
		if tok.TType != efp.TokenTypeOperatorInfix {
			break
		}
		bp, ok := bindings[tok.TValue]
		if !ok {
			return "", fmt.Errorf("%w: operator %q", formula.ErrUnsupported, tok.TValue)
		}
		if bp <= pow {
			break
		}
		c.next()
		next := bp
		if tok.TValue == "^" {
			next--
		}
		right, err := c.parse(next)
		if err != nil {
			return "", err
		}
		left = infix(tok.TValue, left, right)
	}
	return left, nil
}

func infix(oper, left, right string) string {
	switch oper {
	case "<>":
		return fmt.Sprintf("(NOT (= %s %s))", left, right)
	case "&":
		return fmt.Sprintf("(CONCAT %s %s)", left, right)
	default:
		return fmt.Sprintf("(%s %s %s)", oper, left, right)
	}
}

func (c *converter) prefix() (string, error) {
	if c.done() {
		return "", fmt.Errorf("%w: unexpected end of formula", formula.ErrInvalidExpr)
	}
	tok := c.curr()
	switch tok.TType {
	case efp.TokenTypeOperand:
		c.next()
		return operand(tok)
	case efp.TokenTypeOperatorPrefix:
		c.next()
		expr, err := c.parse(powUnary)
		if err != nil {
			return "", err
		}
		if tok.TValue == "-" {
			return fmt.Sprintf("(- 0 %s)", expr), nil
		}
		return expr, nil
	case efp.TokenTypeSubexpression:
		if tok.TSubType != efp.TokenSubTypeStart {
			break
		}
		c.next()
		expr, err := c.parse(powLowest)
		if err != nil {
			return "", err
		}
		if err := c.expect(efp.TokenTypeSubexpression); err != nil {
			return "", err
		}
		return expr, nil
	case efp.TokenTypeFunction:
		if tok.TSubType != efp.TokenSubTypeStart {
			break
		}
		c.next()
		return c.call(tok.TValue)
	}
	return "", fmt.Errorf("%w: unexpected token %q", formula.ErrInvalidExpr, tok.TValue)
}

func (c *converter) call(name string) (string, error) {
	ident, ok := functions[strings.ToUpper(name)]
	if !ok {
		return "", fmt.Errorf("%w: function %s", formula.ErrUnsupported, name)
	}
	parts := []string{ident}
	if c.stop(efp.TokenTypeFunction) {
		c.next()
		return fmt.Sprintf("(%s)", ident), nil
	}
	for {
		arg, err := c.parse(powLowest)
		if err != nil {
			return "", err
		}
		parts = append(parts, arg)
		if c.done() {
			return "", fmt.Errorf("%w: %s: missing closing parenthesis", formula.ErrInvalidExpr, name)
		}
		if tok := c.curr(); tok.TType == efp.TokenTypeArgument {
			c.next()
			continue
		}
		if err := c.expect(efp.TokenTypeFunction); err != nil {
			return "", err
		}
		break
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, " ")), nil
}

func operand(tok efp.Token) (string, error) {
	switch tok.TSubType {
	case efp.TokenSubTypeNumber:
		if _, ok := value.ParseNumber(tok.TValue); !ok {
			return "", fmt.Errorf("%w: invalid number %s", formula.ErrInvalidExpr, tok.TValue)
		}
		return tok.TValue, nil
	case efp.TokenSubTypeText:
		if strings.ContainsRune(tok.TValue, '"') {
			return "", fmt.Errorf("%w: double quote in text %s", formula.ErrUnsupported, tok.TValue)
		}
		return "\"" + tok.TValue + "\"", nil
	case efp.TokenSubTypeLogical:
		if strings.EqualFold(tok.TValue, "TRUE") {
			return "#t", nil
		}
		return "#f", nil
	case efp.TokenSubTypeRange:
		ref := strings.ToUpper(strings.ReplaceAll(tok.TValue, "$", ""))
		if layout.IsAddress(ref) || layout.IsRange(ref) {
			return ref, nil
		}
		return "", fmt.Errorf("%w: reference %s", formula.ErrUnsupported, tok.TValue)
	default:
		return "", fmt.Errorf("%w: operand %s", formula.ErrUnsupported, tok.TValue)
	}
}

func (c *converter) stop(kind string) bool {
	if c.done() {
		return false
	}
	tok := c.curr()
	return tok.TType == kind && tok.TSubType == efp.TokenSubTypeStop
}

func (c *converter) expect(kind string) error {
	if !c.stop(kind) {
		return fmt.Errorf("%w: missing closing parenthesis", formula.ErrInvalidExpr)
	}
	c.next()
	return nil
}

func (c *converter) curr() efp.Token {
	return c.tokens[c.pos]
}

func (c *converter) next() {
	c.pos++
}

func (c *converter) done() bool {
	return c.pos >= len(c.tokens)
}
