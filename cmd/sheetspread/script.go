package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/midbel/sheetspread/layout"
	"github.com/midbel/sheetspread/sheet"
)

var errScript = errors.New("invalid instruction")

// script replays a list of instructions on a sheet, one per line:
//
//	A1 some text or =(formula)
//	insert row|column <addr> [before|after]
//	delete row|column <addr> [current|before|after]
//	format <addr> [bold] [italic] [font=<name>] [size=<n>] [color=<hex>] [number=<pattern>]
//	recompute <addr>
//
// Empty lines and lines starting with # are skipped. Errors of edits are
// reported to report and do not stop the script, syntax errors do.
type script struct {
	sheet  *sheet.Sheet
	report io.Writer
}

func (s script) Run(r io.Reader) error {
	var (
		scan = bufio.NewScanner(r)
		lino int
	)
	for scan.Scan() {
		lino++
		line := strings.TrimSpace(scan.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		err := s.exec(line)
		if errors.Is(err, errScript) {
			return fmt.Errorf("line %d: %w", lino, err)
		}
		if err != nil {
			fmt.Fprintf(s.report, "line %d: %s\n", lino, sheet.ErrorLine(err))
		}
	}
	return scan.Err()
}

func (s script) exec(line string) error {
	ident, rest, _ := strings.Cut(line, " ")
	switch ident {
	case "insert", "delete":
		return s.structure(ident, strings.Fields(rest))
	case "format":
		return s.format(strings.Fields(rest))
	case "recompute":
		pos, err := parsePosition(strings.TrimSpace(rest))
		if err != nil {
			return err
		}
		return s.sheet.Recompute(pos)
	default:
		pos, err := parsePosition(ident)
		if err != nil {
			return err
		}
		return s.sheet.Edit(pos, strings.TrimSpace(rest))
	}
}

func (s script) structure(ident string, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("%w: %s: expected 2 or 3 arguments", errScript, ident)
	}
	pos, err := parsePosition(args[1])
	if err != nil {
		return err
	}
	var side sheet.Side
	if len(args) == 3 {
		if side, err = sheet.SideFromString(args[2]); err != nil {
			return fmt.Errorf("%w: %w", errScript, err)
		}
	}
	if err := s.sheet.Select(pos); err != nil {
		return err
	}
	switch ident + " " + args[0] {
	case "insert row":
		return s.sheet.InsertRow(side)
	case "insert column":
		return s.sheet.InsertColumn(side)
	case "delete row":
		return s.sheet.DeleteRow(side)
	case "delete column":
		return s.sheet.DeleteColumn(side)
	default:
		return fmt.Errorf("%w: %s %s", errScript, ident, args[0])
	}
}

func (s script) format(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: format: missing address", errScript)
	}
	pos, err := parsePosition(args[0])
	if err != nil {
		return err
	}
	var patch sheet.FormatPatch
	for _, a := range args[1:] {
		key, val, _ := strings.Cut(a, "=")
		switch key {
		case "bold":
			ok := true
			patch.Bold = &ok
		case "italic":
			ok := true
			patch.Italic = &ok
		case "font":
			patch.Font = &val
		case "color":
			patch.Color = &val
		case "number":
			patch.Number = &val
		case "size":
			n, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("%w: size: %s", errScript, val)
			}
			patch.Size = &n
		default:
			return fmt.Errorf("%w: format: unknown option %s", errScript, key)
		}
	}
	return s.sheet.SetFormat(pos, patch)
}

func parsePosition(addr string) (layout.Position, error) {
	pos, err := layout.ParsePosition(addr)
	if err != nil {
		return pos, fmt.Errorf("%w: %w", errScript, err)
	}
	return pos, nil
}
