package formula

import (
	"strings"
	"unicode"
)

const (
	lparen = '('
	rparen = ')'
	dquote = '"'
)

// Token is a node of the tree produced by Tokenize: either an Atom or a List.
type Token interface {
	String() string
	token()
}

type Atom string

func (Atom) token() {}

func (a Atom) String() string {
	return string(a)
}

type List []Token

func (List) token() {}

func (l List) String() string {
	var str strings.Builder
	str.WriteRune(lparen)
	for i := range l {
		if i > 0 {
			str.WriteRune(' ')
		}
		str.WriteString(l[i].String())
	}
	str.WriteRune(rparen)
	return str.String()
}

type tokenizer struct {
	stack    []List
	buf      strings.Builder
	inString bool
}

// Tokenize splits input into a tree of atoms and nested lists. Atoms are
// separated by blanks and parentheses except inside double quoted strings
// where every character is kept as is. Exactly one top level atom or list is
// expected.
func Tokenize(input string) (Token, error) {
	tz := tokenizer{
		stack: []List{nil},
	}
	for _, c := range input {
		if err := tz.feed(c); err != nil {
			return nil, err
		}
	}
	if tz.inString {
		return nil, tokenizeError("unterminated string in %q", input)
	}
	tz.flush()
	if len(tz.stack) > 1 {
		return nil, tokenizeError("%d unclosed parenthesis in %q", len(tz.stack)-1, input)
	}
	if top := tz.stack[0]; len(top) != 1 {
		return nil, tokenizeError("input %q invalid: top level operation needed", input)
	}
	return tz.stack[0][0], nil
}

func (t *tokenizer) feed(c rune) error {
	if c == dquote {
		t.inString = !t.inString
		t.buf.WriteRune(c)
		return nil
	}
	if t.inString {
		t.buf.WriteRune(c)
		return nil
	}
	switch {
	case c == lparen:
		t.flush()
		t.stack = append(t.stack, nil)
	case c == rparen:
		t.flush()
		n := len(t.stack)
		if n <= 1 {
			return tokenizeError("unbalanced closing parenthesis")
		}
		list := t.stack[n-1]
		if list == nil {
			list = List{}
		}
		t.stack = t.stack[:n-1]
		t.push(list)
	case unicode.IsSpace(c):
		t.flush()
	default:
		t.buf.WriteRune(c)
	}
	return nil
}

func (t *tokenizer) flush() {
	if t.buf.Len() == 0 {
		return
	}
	t.push(Atom(t.buf.String()))
	t.buf.Reset()
}

func (t *tokenizer) push(tok Token) {
	n := len(t.stack) - 1
	t.stack[n] = append(t.stack[n], tok)
}
