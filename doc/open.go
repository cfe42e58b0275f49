package doc

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/midbel/sheetspread/oxml"
	"github.com/midbel/sheetspread/sheet"
)

var ErrFormat = errors.New("unsupported format")

type Format int

const (
	Unknown Format = iota
	CSV
	XML
	XLSX
)

func (f Format) String() string {
	switch f {
	case CSV:
		return "csv"
	case XML:
		return "xml"
	case XLSX:
		return "xlsx"
	default:
		return "unknown"
	}
}

func FormatFromString(str string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(str, ".")) {
	case "csv":
		return CSV, nil
	case "xml":
		return XML, nil
	case "xlsx":
		return XLSX, nil
	default:
		return Unknown, fmt.Errorf("%w: %s", ErrFormat, str)
	}
}

// Open reads the snapshot stored in file. The format is given by the
// extension of the file or guessed from its content.
func Open(file string) (sheet.Snapshot, error) {
	r, err := os.Open(file)
	if err != nil {
		return sheet.Snapshot{}, err
	}
	defer r.Close()

	rs := bufio.NewReader(r)
	format, err := FormatFromString(filepath.Ext(file))
	if err != nil {
		format = sniff(rs)
	}
	return Read(rs, format)
}

func Read(r io.Reader, format Format) (sheet.Snapshot, error) {
	switch format {
	case CSV:
		return ReadCSV(r, ',')
	case XML:
		return ReadXML(r)
	case XLSX:
		buf, err := io.ReadAll(r)
		if err != nil {
			return sheet.Snapshot{}, err
		}
		var rs oxml.Reader
		return rs.Read(bytes.NewReader(buf), int64(len(buf)))
	default:
		return sheet.Snapshot{}, ErrFormat
	}
}

// Save writes snap into file in the format given by the extension of file.
func Save(file string, snap sheet.Snapshot) error {
	format, err := FormatFromString(filepath.Ext(file))
	if err != nil {
		return err
	}
	w, err := os.Create(file)
	if err != nil {
		return err
	}
	defer w.Close()
	return Write(w, snap, format)
}

// Write writes snap in the given format. Workbooks only hold the computed
// values of the cells.
func Write(w io.Writer, snap sheet.Snapshot, format Format) error {
	switch format {
	case CSV:
		return WriteCSV(w, snap, ',')
	case XML:
		return WriteXML(w, snap)
	case XLSX:
		sh, err := sheet.New(snap.Size.Lines, snap.Size.Columns)
		if err != nil {
			return err
		}
		if err := sh.Load(snap); err != nil {
			return err
		}
		return oxml.Write(w, oxml.DefaultSheetName, sh)
	default:
		return ErrFormat
	}
}

var magicZipBytes = [][]byte{
	{0x50, 0x4b, 0x03, 0x04},
	{0x50, 0x4b, 0x05, 0x06},
	{0x50, 0x4b, 0x07, 0x08},
}

func sniff(r *bufio.Reader) Format {
	buf, _ := r.Peek(512)
	for _, magic := range magicZipBytes {
		if bytes.HasPrefix(buf, magic) {
			return XLSX
		}
	}
	if bytes.HasPrefix(bytes.TrimSpace(buf), []byte("<")) {
		return XML
	}
	return CSV
}
