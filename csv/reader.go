package csv

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

type Reader struct {
	inner         *bufio.Reader
	Comma         byte
	FieldsPerLine int

	line  int
	atEOF bool
}

func NewReader(r io.Reader) *Reader {
	rs := Reader{
		inner: bufio.NewReader(r),
		Comma: ',',
	}
	return &rs
}

func (r *Reader) Done() bool {
	return r.atEOF
}

// Line gives the number of the last line read.
func (r *Reader) Line() int {
	return r.line
}

func (r *Reader) ReadAll() ([][]string, error) {
	var all [][]string
	for {
		rs, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		all = append(all, rs)
	}
	return all, nil
}

func (r *Reader) Read() ([]string, error) {
	if r.Done() {
		return nil, io.EOF
	}
	line, err := r.readLine()
	if err != nil {
		return nil, err
	}
	var res []string
	for i := 0; ; {
		var (
			field []byte
			size  int
		)
		if i < len(line) && line[i] == quote {
			for {
				field, size, err = r.readQuotedField(line[i:])
				if !errors.Is(err, errUnterminated) {
					break
				}
				next, err1 := r.readLine()
				if err1 != nil {
					return nil, r.wrap(err)
				}
				line = append(append(line, nl), next...)
			}
		} else {
			field, size, err = r.readDefaultField(line[i:])
		}
		if err != nil {
			return nil, r.wrap(err)
		}
		res = append(res, string(field))
		i += size
		if i >= len(line) {
			break
		}
		if line[i] != r.Comma {
			return nil, r.wrap(ErrAfterQuote)
		}
		i++
	}
	if r.FieldsPerLine > 0 && len(res) != r.FieldsPerLine {
		return nil, r.wrap(ErrFieldCount)
	}
	return res, nil
}

// readLine returns the next line without its end of line marker.
func (r *Reader) readLine() ([]byte, error) {
	line, err := r.inner.ReadBytes(nl)
	if len(line) == 0 && errors.Is(err, io.EOF) {
		r.atEOF = true
		return nil, err
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	r.line++
	line = bytes.TrimSuffix(line, []byte{nl})
	if n := len(line); n > 0 && line[n-1] == cr {
		line = line[:n-1]
	} else if bytes.IndexByte(line, cr) >= 0 && !bytes.Contains(line, []byte{quote}) {
		return nil, r.wrap(ErrCarriage)
	}
	return line, nil
}

func (r *Reader) readQuotedField(line []byte) ([]byte, int, error) {
	var field []byte
	for offset := 1; offset < len(line); offset++ {
		if line[offset] != quote {
			field = append(field, line[offset])
			continue
		}
		if offset+1 < len(line) && line[offset+1] == quote {
			field = append(field, quote)
			offset++
			continue
		}
		return field, offset + 1, nil
	}
	return nil, 0, errUnterminated
}

func (r *Reader) readDefaultField(line []byte) ([]byte, int, error) {
	var offset int
	for offset < len(line) {
		switch line[offset] {
		case quote:
			return nil, 0, ErrQuote
		case r.Comma:
			return line[:offset], offset, nil
		default:
			offset++
		}
	}
	return line[:offset], offset, nil
}

func (r *Reader) wrap(err error) error {
	return fmt.Errorf("line %d: %w", r.line, err)
}
