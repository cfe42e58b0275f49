package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/midbel/sheetspread/layout"
	"github.com/midbel/sheetspread/sheet"
)

func TestInsertStmt(t *testing.T) {
	values := map[string]any{
		"raw":  "=(+ A1 B1)",
		"line": 0,
		"col":  2,
	}
	got, err := insertStmt(`"s"."cells"`, values)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := `INSERT INTO "s"."cells" (col, line, raw) VALUES (:col, :line, :raw)`
	if got != want {
		t.Errorf("query mismatched! want %s, got %s", want, got)
	}
}

func TestUpsertStmt(t *testing.T) {
	values := map[string]any{
		"name":    "budget",
		"lines":   58,
		"columns": 58,
	}
	got, err := upsertStmt(`"s"."sheets"`, "name", values)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := `INSERT INTO "s"."sheets" (columns, lines, name) VALUES (:columns, :lines, :name)` +
		` ON CONFLICT (name) DO UPDATE SET columns = :columns, lines = :lines`
	if got != want {
		t.Errorf("query mismatched! want %s, got %s", want, got)
	}
}

func TestStmtErrors(t *testing.T) {
	tests := []map[string]any{
		{},
		{"name; DROP TABLE": 1},
		{"Name": 1},
	}
	for _, values := range tests {
		if _, err := insertStmt("cells", values); err == nil {
			t.Errorf("%v: expected error but got none", values)
		}
	}
}

func TestStore(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	db, err := Open(dsn, WithSchema("sheetspread_test"))
	if err != nil {
		t.Fatalf("fail to connect: %s", err)
	}
	defer db.Close()
	defer db.db.Exec(`DROP SCHEMA IF EXISTS sheetspread_test CASCADE`)

	ctx := context.Background()
	if err := db.Init(ctx); err != nil {
		t.Fatalf("fail to init schema: %s", err)
	}

	snap := sheet.Snapshot{
		Size: layout.Dimension{Lines: 10, Columns: 5},
		Records: []sheet.Record{
			{Position: layout.Position{Line: 0, Column: 0}, Raw: "1", Format: sheet.DefaultFormat()},
			{Position: layout.Position{Line: 0, Column: 1}, Raw: "=(+ A1 1)", Format: sheet.DefaultFormat()},
		},
	}
	if err := db.Save(ctx, "test", snap); err != nil {
		t.Fatalf("fail to save sheet: %s", err)
	}
	snap.Records = snap.Records[1:]
	if err := db.Save(ctx, "test", snap); err != nil {
		t.Fatalf("fail to save sheet again: %s", err)
	}
	got, err := db.Load(ctx, "test")
	if err != nil {
		t.Fatalf("fail to load sheet: %s", err)
	}
	if got.Size != snap.Size {
		t.Errorf("size mismatched! want %v, got %v", snap.Size, got.Size)
	}
	if len(got.Records) != 1 || got.Records[0].Raw != "=(+ A1 1)" {
		t.Errorf("records mismatched! got %v", got.Records)
	}
	names, err := db.List(ctx)
	if err != nil || len(names) != 1 || names[0] != "test" {
		t.Errorf("list mismatched! got %v (%v)", names, err)
	}
	if err := db.Delete(ctx, "test"); err != nil {
		t.Fatalf("fail to delete sheet: %s", err)
	}
	if _, err := db.Load(ctx, "test"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
