package layout

// Largest addressable sheet, the one of the xlsx format.
const (
	MaxLines   = 1 << 20
	MaxColumns = 1 << 14
)

type Dimension struct {
	Lines   int
	Columns int
}

func (d Dimension) Max(other Dimension) Dimension {
	if other.Lines > d.Lines {
		d.Lines = other.Lines
	}
	if other.Columns > d.Columns {
		d.Columns = other.Columns
	}
	return d
}

func (d Dimension) Contains(pos Position) bool {
	return pos.Valid() && pos.Line < d.Lines && pos.Column < d.Columns
}

func (d Dimension) Bounds() *Range {
	end := Position{
		Line:   max(d.Lines-1, 0),
		Column: max(d.Columns-1, 0),
	}
	return NewRange(Position{}, end)
}
