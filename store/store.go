package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/exp/maps"

	"github.com/midbel/sheetspread/layout"
	"github.com/midbel/sheetspread/sheet"
)

var ErrNotFound = errors.New("sheet not found")

const DefaultSchema = "sheetspread"

type Option func(*Store)

func WithSchema(schema string) Option {
	return func(s *Store) {
		s.schema = schema
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store keeps snapshots of sheets in a Postgres database. A sheet is stored
// as one row of the sheets table and one row per non blank cell in the cells
// table.
type Store struct {
	db     *sqlx.DB
	schema string
	logger *slog.Logger
}

func Open(dsn string, opts ...Option) (*Store, error) {
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return New(db, opts...), nil
}

func New(db *sqlx.DB, opts ...Option) *Store {
	s := Store{
		db:     db,
		schema: DefaultSchema,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(&s)
	}
	return &s
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) table(name string) string {
	return pq.QuoteIdentifier(s.schema) + "." + pq.QuoteIdentifier(name)
}

// Init creates the schema and the tables when they do not exist yet.
func (s *Store) Init(ctx context.Context) error {
	queries := []string{
		fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, pq.QuoteIdentifier(s.schema)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			name VARCHAR(255) PRIMARY KEY
			, lines INT NOT NULL
			, columns INT NOT NULL
		)`, s.table("sheets")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			sheet VARCHAR(255) NOT NULL REFERENCES %s (name) ON DELETE CASCADE
			, line INT NOT NULL
			, col INT NOT NULL
			, raw TEXT NOT NULL
			, font VARCHAR(255) NOT NULL
			, size INT NOT NULL
			, bold BOOLEAN NOT NULL DEFAULT false
			, italic BOOLEAN NOT NULL DEFAULT false
			, color VARCHAR(16) NOT NULL
			, number VARCHAR(64) NOT NULL DEFAULT ''
			, PRIMARY KEY (sheet, line, col)
		)`, s.table("cells"), s.table("sheets")),
	}
	for _, q := range queries {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	s.logger.Debug("schema ready", "schema", s.schema)
	return nil
}

type sheetRow struct {
	Name    string `db:"name"`
	Lines   int    `db:"lines"`
	Columns int    `db:"columns"`
}

type cellRow struct {
	Line   int    `db:"line"`
	Column int    `db:"col"`
	Raw    string `db:"raw"`
	Font   string `db:"font"`
	Size   int    `db:"size"`
	Bold   bool   `db:"bold"`
	Italic bool   `db:"italic"`
	Color  string `db:"color"`
	Number string `db:"number"`
}

// Save replaces the stored content of the sheet name by snap.
func (s *Store) Save(ctx context.Context, name string, snap sheet.Snapshot) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	upsert, err := upsertStmt(s.table("sheets"), "name", sheetValues(name, snap))
	if err != nil {
		return err
	}
	if _, err := tx.NamedExecContext(ctx, upsert, sheetValues(name, snap)); err != nil {
		return err
	}
	q := fmt.Sprintf(`DELETE FROM %s WHERE sheet = $1`, s.table("cells"))
	if _, err := tx.ExecContext(ctx, q, name); err != nil {
		return err
	}
	for _, r := range snap.Records {
		values := cellValues(name, r)
		insert, err := insertStmt(s.table("cells"), values)
		if err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx, insert, values); err != nil {
			return fmt.Errorf("%s: %w", r.Position.Addr(), err)
		}
	}
	s.logger.Debug("sheet saved", "sheet", name, "cells", len(snap.Records))
	return tx.Commit()
}

// Load returns the snapshot stored under name.
func (s *Store) Load(ctx context.Context, name string) (sheet.Snapshot, error) {
	var (
		snap sheet.Snapshot
		row  sheetRow
	)
	q := fmt.Sprintf(`SELECT name, lines, columns FROM %s WHERE name = $1`, s.table("sheets"))
	if err := s.db.GetContext(ctx, &row, q, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return snap, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return snap, err
	}
	snap.Size = layout.Dimension{
		Lines:   row.Lines,
		Columns: row.Columns,
	}

	var cells []cellRow
	q = fmt.Sprintf(`
		SELECT line, col, raw, font, size, bold, italic, color, number
		FROM %s
		WHERE sheet = $1
		ORDER BY line, col`, s.table("cells"))
	if err := s.db.SelectContext(ctx, &cells, q, name); err != nil {
		return snap, err
	}
	for _, c := range cells {
		r := sheet.Record{
			Position: layout.Position{Line: c.Line, Column: c.Column},
			Raw:      c.Raw,
			Format: sheet.Format{
				Font:   c.Font,
				Size:   c.Size,
				Bold:   c.Bold,
				Italic: c.Italic,
				Color:  c.Color,
				Number: c.Number,
			},
		}
		snap.Records = append(snap.Records, r)
	}
	s.logger.Debug("sheet loaded", "sheet", name, "cells", len(snap.Records))
	return snap, nil
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	var names []string
	q := fmt.Sprintf(`SELECT name FROM %s ORDER BY name`, s.table("sheets"))
	if err := s.db.SelectContext(ctx, &names, q); err != nil {
		return nil, err
	}
	return names, nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	q := fmt.Sprintf(`DELETE FROM %s WHERE name = $1`, s.table("sheets"))
	res, err := s.db.ExecContext(ctx, q, name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

func sheetValues(name string, snap sheet.Snapshot) map[string]any {
	return map[string]any{
		"name":    name,
		"lines":   snap.Size.Lines,
		"columns": snap.Size.Columns,
	}
}

func cellValues(name string, r sheet.Record) map[string]any {
	return map[string]any{
		"sheet":  name,
		"line":   r.Position.Line,
		"col":    r.Position.Column,
		"raw":    r.Raw,
		"font":   r.Format.Font,
		"size":   r.Format.Size,
		"bold":   r.Format.Bold,
		"italic": r.Format.Italic,
		"color":  r.Format.Color,
		"number": r.Format.Number,
	}
}

func columns(values map[string]any) ([]string, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("no value to write")
	}
	keys := maps.Keys(values)
	slices.Sort(keys)
	for _, k := range keys {
		if !isLabel(k) {
			return nil, fmt.Errorf("invalid column name: %s", k)
		}
	}
	return keys, nil
}

func insertStmt(table string, values map[string]any) (string, error) {
	keys, err := columns(values)
	if err != nil {
		return "", err
	}
	labels := make([]string, len(keys))
	for i, k := range keys {
		labels[i] = ":" + k
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(keys, ", "),
		strings.Join(labels, ", "))
	return query, nil
}

func upsertStmt(table, key string, values map[string]any) (string, error) {
	query, err := insertStmt(table, values)
	if err != nil {
		return "", err
	}
	keys, _ := columns(values)
	var assignments []string
	for _, k := range keys {
		if k == key {
			continue
		}
		assignments = append(assignments, fmt.Sprintf("%s = :%s", k, k))
	}
	if len(assignments) == 0 {
		return query + fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", key), nil
	}
	query += fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s", key, strings.Join(assignments, ", "))
	return query, nil
}

func isLabel(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !(r >= 'a' && r <= 'z' || r == '_') {
			return false
		}
	}
	return true
}
