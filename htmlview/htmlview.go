package htmlview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/a-h/templ"

	"github.com/midbel/sheetspread/layout"
	"github.com/midbel/sheetspread/sheet"
)

// Server exposes a sheet over HTTP. Every request is served under a lock
// since a sheet is not safe for concurrent use.
type Server struct {
	mu     sync.Mutex
	sheet  *sheet.Sheet
	logger *slog.Logger
	mux    *http.ServeMux
}

func New(sh *sheet.Sheet, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := Server{
		sheet:  sh,
		logger: logger,
		mux:    http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /table", s.handleTable)
	s.mux.HandleFunc("GET /cells/{addr}", s.handleCell)
	s.mux.HandleFunc("POST /cells/{addr}", s.handleEdit)
	s.mux.HandleFunc("POST /rows/{addr}", s.handleStructure(true))
	s.mux.HandleFunc("POST /columns/{addr}", s.handleStructure(false))
	return &s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	templ.Handler(Page(s.sheet)).ServeHTTP(w, r)
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	templ.Handler(Table(s.sheet)).ServeHTTP(w, r)
}

func (s *Server) handleCell(w http.ResponseWriter, r *http.Request) {
	pos, ok := s.position(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	templ.Handler(Cell(pos, s.sheet.ReadCell(pos))).ServeHTTP(w, r)
}

// handleEdit applies the edit and renders the whole table again since any
// dependent cell may have changed. A failed edit is reported with a 422 and
// the error line of the cell.
func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	pos, ok := s.position(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := r.FormValue("raw")
	if err := s.sheet.Edit(pos, raw); err != nil {
		s.logger.Info("edit failed", "cell", pos.Addr(), "raw", raw, "err", err)
		if errors.Is(err, sheet.ErrOutOfBounds) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusUnprocessableEntity)
		Table(s.sheet).Render(r.Context(), w)
		return
	}
	templ.Handler(Table(s.sheet)).ServeHTTP(w, r)
}

func (s *Server) handleStructure(row bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pos, ok := s.position(w, r)
		if !ok {
			return
		}
		side, err := sheet.SideFromString(r.FormValue("side"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()

		if err := s.sheet.Select(pos); err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		switch op := r.FormValue("op"); {
		case op == "insert" && row:
			err = s.sheet.InsertRow(side)
		case op == "insert":
			err = s.sheet.InsertColumn(side)
		case op == "delete" && row:
			err = s.sheet.DeleteRow(side)
		case op == "delete":
			err = s.sheet.DeleteColumn(side)
		default:
			err = fmt.Errorf("%s: unknown operation", op)
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		templ.Handler(Table(s.sheet)).ServeHTTP(w, r)
	}
}

func (s *Server) position(w http.ResponseWriter, r *http.Request) (layout.Position, bool) {
	pos, err := layout.ParsePosition(r.PathValue("addr"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return pos, false
	}
	return pos, true
}

func writeError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	Failure(sheet.ErrorLine(err)).Render(context.Background(), w)
}

type gridCell struct {
	Position layout.Position
	Data     sheet.CellData
}

func columnNames(dim layout.Dimension) []string {
	names := make([]string, 0, dim.Columns)
	for c := range dim.Columns {
		names = append(names, layout.ColumnName(c))
	}
	return names
}

// gridLines gives every cell of view line by line, blank ones included.
func gridLines(view sheet.View) [][]gridCell {
	var (
		dim   = view.Dimension()
		cells = make(map[layout.Position]sheet.CellData)
		lines = make([][]gridCell, 0, dim.Lines)
	)
	for pos, data := range view.Cells() {
		cells[pos] = data
	}
	for i := range dim.Lines {
		line := make([]gridCell, 0, dim.Columns)
		for j := range dim.Columns {
			pos := layout.Position{Line: i, Column: j}
			line = append(line, gridCell{Position: pos, Data: cells[pos]})
		}
		lines = append(lines, line)
	}
	return lines
}

// cellStyle gives the CSS declarations of a format. It is empty for the
// default one.
func cellStyle(f sheet.Format) string {
	if f.Font == "" || f.IsDefault() {
		return ""
	}
	style := fmt.Sprintf("font-family:%s;font-size:%dpt;color:%s;", f.Font, f.Size, f.Color)
	if f.Bold {
		style += "font-weight:bold;"
	}
	if f.Italic {
		style += "font-style:italic;"
	}
	return style
}
