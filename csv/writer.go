package csv

import (
	"bufio"
	"io"
	"strings"
)

type Writer struct {
	inner *bufio.Writer

	ForceQuote bool
	UseCRLF    bool
	Comma      byte
}

func NewWriter(w io.Writer) *Writer {
	ws := Writer{
		inner: bufio.NewWriter(w),
		Comma: ',',
	}
	return &ws
}

func (w *Writer) WriteAll(data [][]string) error {
	for _, d := range data {
		if err := w.Write(d); err != nil {
			return err
		}
	}
	return w.inner.Flush()
}

func (w *Writer) Write(line []string) error {
	for i, str := range line {
		if i > 0 {
			if err := w.inner.WriteByte(w.Comma); err != nil {
				return err
			}
		}
		var err error
		if w.needQuotes(str) {
			err = w.writeQuoted(str)
		} else {
			_, err = w.inner.WriteString(str)
		}
		if err != nil {
			return err
		}
	}
	return w.eol()
}

func (w *Writer) Flush() error {
	return w.inner.Flush()
}

func (w *Writer) eol() error {
	if w.UseCRLF {
		if err := w.inner.WriteByte(cr); err != nil {
			return err
		}
	}
	return w.inner.WriteByte(nl)
}

func (w *Writer) writeQuoted(str string) error {
	w.inner.WriteByte(quote)
	for i := 0; i < len(str); i++ {
		switch c := str[i]; c {
		case quote:
			w.inner.WriteByte(quote)
			w.inner.WriteByte(quote)
		case cr:
			if w.UseCRLF {
				w.inner.WriteByte(c)
			}
		case nl:
			if w.UseCRLF {
				w.inner.WriteByte(cr)
			}
			w.inner.WriteByte(c)
		default:
			w.inner.WriteByte(c)
		}
	}
	return w.inner.WriteByte(quote)
}

func (w *Writer) needQuotes(str string) bool {
	if w.ForceQuote {
		return true
	}
	if str == "" {
		return false
	}
	if str[0] == space {
		return true
	}
	return strings.ContainsAny(str, string([]byte{w.Comma, quote, cr, nl}))
}
