package sheet

import (
	"fmt"
)

// Mode selects what is written when a sheet is exported.
type Mode int

const (
	ModeValue Mode = 1 << iota
	ModeFormula
	ModeFormat
	ModeAll = ModeValue | ModeFormula | ModeFormat
)

func ModeFromString(str string) (Mode, error) {
	var mode Mode
	switch str {
	case "", "value":
		mode |= ModeValue
	case "formula":
		mode |= ModeFormula
	case "format":
		mode |= ModeFormat
	case "all":
		mode |= ModeAll
	default:
		return mode, fmt.Errorf("%s invalid value for mode", str)
	}
	return mode, nil
}
