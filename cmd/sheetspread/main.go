package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/midbel/cli"

	"github.com/midbel/sheetspread/doc"
	"github.com/midbel/sheetspread/formula"
	"github.com/midbel/sheetspread/formula/excel"
	"github.com/midbel/sheetspread/htmlview"
	"github.com/midbel/sheetspread/layout"
	"github.com/midbel/sheetspread/oxml"
	"github.com/midbel/sheetspread/sheet"
	"github.com/midbel/sheetspread/store"
	"github.com/midbel/sheetspread/tui"
)

var errFail = errors.New("fail")

var (
	summary = "sheetspread"
	help    = "spreadsheet engine with prefix formulas"
)

var (
	lines   = sheet.DefaultLines
	columns = sheet.DefaultColumns
	verbose bool
	logger  = slog.New(slog.DiscardHandler)
)

func main() {
	var (
		set  = cli.NewFlagSet("sheetspread")
		root = prepare()
	)
	set.IntVar(&lines, "r", lines, "number of rows of a new sheet")
	set.IntVar(&columns, "c", columns, "number of columns of a new sheet")
	set.BoolVar(&verbose, "v", false, "verbose")
	root.SetSummary(summary)
	root.SetHelp(help)
	if err := set.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			root.Help()
			os.Exit(2)
		}
	}
	logger = setupLogger(verbose)
	err := root.Execute(set.Args())
	if err != nil {
		if s, ok := err.(cli.SuggestionError); ok && len(s.Others) > 0 {
			fmt.Fprintln(os.Stderr, "similar command(s)")
			for _, n := range s.Others {
				fmt.Fprintln(os.Stderr, "-", n)
			}
		}
		if !errors.Is(err, errFail) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	opts := slog.HandlerOptions{
		Level: level,
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &opts))
}

func prepare() *cli.CommandTrie {
	root := cli.New()
	root.Register([]string{"eval"}, &evalCmd)
	root.Register([]string{"run"}, &runCmd)
	root.Register([]string{"print"}, &printCmd)
	root.Register([]string{"convert"}, &convertCmd)
	root.Register([]string{"export"}, &exportCmd)
	root.Register([]string{"edit"}, &editCmd)
	root.Register([]string{"serve"}, &serveCmd)
	root.Register([]string{"push"}, &pushCmd)
	root.Register([]string{"pull"}, &pullCmd)
	return root
}

var evalCmd = cli.Command{
	Name:    "eval",
	Alias:   []string{"calc"},
	Summary: "evaluate formulas against an empty or a given sheet",
	Usage:   "eval [-x] [-f file] <formula> [<formula>,...]",
	Handler: &EvalCommand{},
}

var runCmd = cli.Command{
	Name:    "run",
	Alias:   []string{"exec"},
	Summary: "replay a script of edits on a sheet",
	Usage:   "run [-f file] [-o file] [-m mode] <script>",
	Handler: &RunScriptCommand{},
}

var printCmd = cli.Command{
	Name:    "print",
	Alias:   []string{"view", "show", "dump"},
	Summary: "print content of a sheet",
	Usage:   "print [-m mode] [-s columns] <file>",
	Handler: &PrintSheetCommand{},
}

var convertCmd = cli.Command{
	Name:    "convert",
	Summary: "convert excel formulas to prefix formulas",
	Usage:   "convert <formula> [<formula>,...]",
	Handler: &ConvertFormulaCommand{},
}

var exportCmd = cli.Command{
	Name:    "export",
	Alias:   []string{"extract"},
	Summary: "export a sheet to csv, json, xml or xlsx",
	Usage:   "export [-f format] [-d delimiter] [-m mode] [-o file] <file>",
	Handler: &ExportSheetCommand{},
}

var editCmd = cli.Command{
	Name:    "edit",
	Alias:   []string{"open"},
	Summary: "edit a sheet in the terminal",
	Usage:   "edit [-o file] [<file>]",
	Handler: &EditSheetCommand{},
}

var serveCmd = cli.Command{
	Name:    "serve",
	Alias:   []string{"http"},
	Summary: "serve a sheet over http",
	Usage:   "serve [-a addr] [<file>]",
	Handler: &ServeSheetCommand{},
}

var pushCmd = cli.Command{
	Name:    "push",
	Summary: "save a sheet into a postgres database",
	Usage:   "push [-d dsn] [-s schema] <file> [<name>]",
	Handler: &PushSheetCommand{},
}

var pullCmd = cli.Command{
	Name:    "pull",
	Summary: "load a sheet from a postgres database",
	Usage:   "pull [-d dsn] [-s schema] [-o file] <name>",
	Handler: &PullSheetCommand{},
}

// openSheet loads file into a new sheet. An empty file name gives an empty
// sheet of the size set on the command line.
func openSheet(file string) (*sheet.Sheet, error) {
	sh, err := sheet.New(lines, columns, sheet.WithLogger(logger))
	if err != nil || file == "" {
		return sh, err
	}
	snap, err := doc.Open(file)
	if err != nil {
		return nil, err
	}
	return loadSheet(sh, snap)
}

func loadSheet(sh *sheet.Sheet, snap sheet.Snapshot) (*sheet.Sheet, error) {
	snap.Size = snap.Size.Max(layout.Dimension{Lines: lines, Columns: columns})
	if err := sh.Load(snap); err != nil {
		return nil, err
	}
	return sh, nil
}

type EvalCommand struct {
	File  string
	Excel bool
}

func (c EvalCommand) Run(args []string) error {
	set := cli.NewFlagSet("eval")
	set.StringVar(&c.File, "f", "", "load sheet from file")
	set.BoolVar(&c.Excel, "x", false, "formulas are written with excel syntax")
	if err := set.Parse(args); err != nil {
		return err
	}
	sh, err := openSheet(c.File)
	if err != nil {
		return err
	}
	var failed bool
	for _, str := range set.Args() {
		res, err := c.eval(sh, str)
		if err != nil {
			failed = true
			fmt.Fprintf(os.Stderr, "%s: %s\n", str, sheet.ErrorLine(err))
			continue
		}
		fmt.Fprintln(os.Stdout, res)
	}
	if failed {
		return errFail
	}
	return nil
}

func (c EvalCommand) eval(sh *sheet.Sheet, str string) (string, error) {
	var (
		expr formula.Expr
		err  error
	)
	if c.Excel {
		expr, _, err = excel.Compile(str)
	} else {
		expr, _, err = formula.CompileString(strings.TrimPrefix(str, "="))
	}
	if err != nil {
		return "", err
	}
	res, err := formula.Eval(expr, sh)
	if err != nil {
		return "", err
	}
	return res.String(), nil
}

type RunScriptCommand struct {
	File    string
	OutFile string
	Mode    string
}

func (c RunScriptCommand) Run(args []string) error {
	set := cli.NewFlagSet("run")
	set.StringVar(&c.File, "f", "", "load sheet from file before running script")
	set.StringVar(&c.OutFile, "o", "", "save result to output file")
	set.StringVar(&c.Mode, "m", "", "print values, formulas or all")
	if err := set.Parse(args); err != nil {
		return err
	}
	sh, err := openSheet(c.File)
	if err != nil {
		return err
	}
	var r io.Reader = os.Stdin
	if set.NArg() > 0 && set.Arg(0) != "-" {
		f, err := os.Open(set.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	s := script{
		sheet:  sh,
		report: os.Stderr,
	}
	if err := s.Run(r); err != nil {
		return err
	}
	if c.OutFile != "" {
		return doc.Save(c.OutFile, sh.Snapshot())
	}
	mode, err := sheet.ModeFromString(c.Mode)
	if err != nil {
		return err
	}
	p := PrintSheetCommand{
		Mode: mode,
	}
	return sh.Encode(p)
}

type PrintSheetCommand struct {
	Columns string
	Mode    sheet.Mode
}

func (c PrintSheetCommand) Run(args []string) error {
	set := cli.NewFlagSet("print")
	set.StringVar(&c.Columns, "s", "", "columns to print (A;C:E;F:K:2)")
	set.Func("m", "print values, formulas or all", func(str string) error {
		mode, err := sheet.ModeFromString(str)
		if err == nil {
			c.Mode = mode
		}
		return err
	})
	if err := set.Parse(args); err != nil {
		return err
	}
	sh, err := openSheet(set.Arg(0))
	if err != nil {
		return err
	}
	return sh.Encode(c)
}

func (c PrintSheetCommand) EncodeSheet(view sheet.View) error {
	sel := layout.SelectAll()
	if c.Columns != "" {
		s, err := layout.SelectionFromString(c.Columns)
		if err != nil {
			return err
		}
		sel = s
	}
	bounds := view.Bounds()
	if bounds == nil {
		return nil
	}
	var (
		indices = sel.Indices(layout.Dimension{
			Lines:   bounds.Height(),
			Columns: bounds.Width(),
		})
		headers = []string{""}
		rows    [][]string
		lino    int
	)
	for _, ix := range indices {
		headers = append(headers, layout.ColumnName(ix))
	}
	for line := range view.Lines(c.Mode) {
		lino++
		row := []string{strconv.Itoa(lino)}
		for _, ix := range indices {
			row = append(row, line[ix])
		}
		rows = append(rows, row)
	}
	var (
		header = lipgloss.NewStyle().Bold(true).Padding(0, 1)
		cell   = lipgloss.NewStyle().Padding(0, 1)
	)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || col == 0 {
				return header
			}
			return cell
		})
	_, err := fmt.Fprintln(os.Stdout, t.String())
	return err
}

type ConvertFormulaCommand struct{}

func (c ConvertFormulaCommand) Run(args []string) error {
	set := cli.NewFlagSet("convert")
	if err := set.Parse(args); err != nil {
		return err
	}
	var failed bool
	for _, str := range set.Args() {
		res, err := excel.Convert(str)
		if err != nil {
			failed = true
			fmt.Fprintf(os.Stderr, "%s: %s\n", str, err)
			continue
		}
		fmt.Fprintln(os.Stdout, res)
	}
	if failed {
		return errFail
	}
	return nil
}

type ExportSheetCommand struct {
	OutFile   string
	Format    string
	Delimiter string
	Mode      string
}

func (c ExportSheetCommand) Run(args []string) error {
	set := cli.NewFlagSet("export")
	set.StringVar(&c.OutFile, "o", "", "write result to output file")
	set.StringVar(&c.Format, "f", "", "export to given format (csv, json, xml, xlsx)")
	set.StringVar(&c.Delimiter, "d", "", "delimiter to use")
	set.StringVar(&c.Mode, "m", "", "export values, formulas, formats or all")
	if err := set.Parse(args); err != nil {
		return err
	}
	sh, err := openSheet(set.Arg(0))
	if err != nil {
		return err
	}
	mode, err := sheet.ModeFromString(c.Mode)
	if err != nil {
		return err
	}
	comma, err := csvSeparator(c.Delimiter)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if c.OutFile != "" {
		if err := os.MkdirAll(filepath.Dir(c.OutFile), 0755); err != nil {
			return err
		}
		f, err := os.Create(c.OutFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	var encoder sheet.Encoder
	switch c.Format {
	case "", "csv":
		encoder = doc.EncodeCSV(w, comma, mode)
	case "json":
		encoder = doc.EncodeJSON(w, mode)
	case "xml":
		encoder = doc.EncodeXML(w)
	case "xlsx":
		var name string
		if file := set.Arg(0); file != "" {
			name = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		}
		encoder = oxml.Encode(w, name)
	default:
		return fmt.Errorf("%s: unsupported format", c.Format)
	}
	return sh.Encode(encoder)
}

type EditSheetCommand struct {
	OutFile string
}

func (c EditSheetCommand) Run(args []string) error {
	set := cli.NewFlagSet("edit")
	set.StringVar(&c.OutFile, "o", "", "save sheet to output file on exit")
	if err := set.Parse(args); err != nil {
		return err
	}
	file := set.Arg(0)
	sh, err := openSheet(file)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if sh == nil {
		if sh, err = openSheet(""); err != nil {
			return err
		}
	}
	if err := tui.Run(sh); err != nil {
		return err
	}
	if c.OutFile == "" {
		c.OutFile = file
	}
	if c.OutFile == "" {
		return nil
	}
	return doc.Save(c.OutFile, sh.Snapshot())
}

type ServeSheetCommand struct {
	Addr string
}

func (c ServeSheetCommand) Run(args []string) error {
	set := cli.NewFlagSet("serve")
	set.StringVar(&c.Addr, "a", ":8080", "listening address")
	if err := set.Parse(args); err != nil {
		return err
	}
	sh, err := openSheet(set.Arg(0))
	if err != nil {
		return err
	}
	logger.Info("listening", "addr", c.Addr)
	return http.ListenAndServe(c.Addr, htmlview.New(sh, logger))
}

type PushSheetCommand struct {
	DSN    string
	Schema string
}

func (c PushSheetCommand) Run(args []string) error {
	set := cli.NewFlagSet("push")
	set.StringVar(&c.DSN, "d", os.Getenv("DATABASE_URL"), "database connection string")
	set.StringVar(&c.Schema, "s", store.DefaultSchema, "database schema")
	if err := set.Parse(args); err != nil {
		return err
	}
	file := set.Arg(0)
	sh, err := openSheet(file)
	if err != nil {
		return err
	}
	name := set.Arg(1)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	}
	db, err := c.open()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Init(ctx); err != nil {
		return err
	}
	return db.Save(ctx, name, sh.Snapshot())
}

func (c PushSheetCommand) open() (*store.Store, error) {
	if c.DSN == "" {
		return nil, fmt.Errorf("missing database connection string")
	}
	return store.Open(c.DSN, store.WithSchema(c.Schema), store.WithLogger(logger))
}

type PullSheetCommand struct {
	PushSheetCommand
	OutFile string
}

func (c PullSheetCommand) Run(args []string) error {
	set := cli.NewFlagSet("pull")
	set.StringVar(&c.DSN, "d", os.Getenv("DATABASE_URL"), "database connection string")
	set.StringVar(&c.Schema, "s", store.DefaultSchema, "database schema")
	set.StringVar(&c.OutFile, "o", "", "write sheet to output file")
	if err := set.Parse(args); err != nil {
		return err
	}
	db, err := c.open()
	if err != nil {
		return err
	}
	defer db.Close()

	snap, err := db.Load(context.Background(), set.Arg(0))
	if err != nil {
		return err
	}
	if c.OutFile != "" {
		return doc.Save(c.OutFile, snap)
	}
	sh, err := openSheet("")
	if err != nil {
		return err
	}
	if sh, err = loadSheet(sh, snap); err != nil {
		return err
	}
	return sh.Encode(PrintSheetCommand{})
}

func csvSeparator(str string) (byte, error) {
	var comma byte
	switch str {
	case "semi", "semicolon", ";":
		comma = ';'
	case "comma", ",", "":
		comma = ','
	case "tab", "\t":
		comma = '\t'
	case "colon", ":":
		comma = ':'
	default:
		return 0, fmt.Errorf("unsupported separator")
	}
	return comma, nil
}
