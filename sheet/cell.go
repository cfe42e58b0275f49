package sheet

import (
	"strings"

	"github.com/midbel/sheetspread/format"
	"github.com/midbel/sheetspread/formula"
	"github.com/midbel/sheetspread/value"
)

const (
	DefaultFont  = "Open Sans"
	DefaultSize  = 10
	DefaultColor = "#000000"
)

// Format holds the presentation attributes of a cell. It plays no role in
// the computation of values.
type Format struct {
	Font   string
	Size   int
	Bold   bool
	Italic bool
	Color  string
	// Number is the pattern used to display numeric values, see
	// format.ParseNumber. Empty means the default display.
	Number string
}

func DefaultFormat() Format {
	return Format{
		Font:  DefaultFont,
		Size:  DefaultSize,
		Color: DefaultColor,
	}
}

func (f Format) IsDefault() bool {
	return f == DefaultFormat()
}

// FormatPatch lists the attributes to change in a Format. Nil fields are left
// untouched.
type FormatPatch struct {
	Font   *string
	Size   *int
	Bold   *bool
	Italic *bool
	Color  *string
	Number *string
}

func (p FormatPatch) Apply(f Format) Format {
	if p.Font != nil {
		f.Font = *p.Font
	}
	if p.Size != nil {
		f.Size = *p.Size
	}
	if p.Bold != nil {
		f.Bold = *p.Bold
	}
	if p.Italic != nil {
		f.Italic = *p.Italic
	}
	if p.Color != nil {
		f.Color = *p.Color
	}
	if p.Number != nil {
		f.Number = *p.Number
	}
	return f
}

const ErrorMark = "ERROR"

// CellData is what is known of a cell from the outside.
type CellData struct {
	Raw    string
	Value  value.Value
	Format Format
	Err    error
}

// Display gives the text shown for the cell in a grid.
func (c CellData) Display() string {
	if c.Err != nil {
		return ErrorMark
	}
	if c.Value == nil {
		return ""
	}
	return format.Display(c.Value, c.Format.Number)
}

type cell struct {
	raw    string
	expr   formula.Expr
	value  value.Value
	format Format
	err    error

	// set when raw could not be compiled: expr is the one of a previous text
	invalid error
}

func emptyCell() *cell {
	return &cell{
		value:  value.Empty(),
		format: DefaultFormat(),
	}
}

func (c *cell) data() CellData {
	return CellData{
		Raw:    c.raw,
		Value:  c.value,
		Format: c.format,
		Err:    c.failure(),
	}
}

func (c *cell) failure() error {
	if c.invalid != nil {
		return c.invalid
	}
	return c.err
}

func (c *cell) isFormula() bool {
	return c.expr != nil
}

func (c *cell) blank() bool {
	return c.raw == "" && c.format.IsDefault()
}

func isFormula(raw string) bool {
	return strings.HasPrefix(raw, "=")
}

// ErrorLine returns the first line of the message of err.
func ErrorLine(err error) string {
	if err == nil {
		return ""
	}
	line, _, _ := strings.Cut(err.Error(), "\n")
	return line
}
