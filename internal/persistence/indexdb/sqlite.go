package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"emergence.ai/internal/sim/catalogs"
)

// SQLiteIndex is a read model of loaded manifests for tooling: name/handle
// tables and canonical catalog JSON with digests. The simulation never reads
// it.
type SQLiteIndex struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteIndex{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS names (
			category TEXT NOT NULL,
			handle INTEGER NOT NULL,
			name TEXT NOT NULL,
			defined INTEGER NOT NULL,
			data_json TEXT,
			PRIMARY KEY (category, handle)
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_names_category_name ON names(category, name);`,
		`CREATE TABLE IF NOT EXISTS findings (
			kind TEXT NOT NULL,
			category TEXT NOT NULL,
			subject TEXT NOT NULL,
			detail TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

// UpsertCatalogs replaces the indexed world with cats.
func (s *SQLiteIndex) UpsertCatalogs(ctx context.Context, cats *catalogs.Catalogs) error {
	if s == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	records := cats.Records()

	type kv struct {
		name   string
		digest string
		json   []byte
	}
	var rows []kv
	byCategory := map[string][]catalogs.Record{}
	for _, r := range records {
		byCategory[r.Category] = append(byCategory[r.Category], r)
	}
	for _, c := range []struct {
		name   string
		digest string
		value  any
	}{
		{"items", cats.Digests.Items, byCategory["item"]},
		{"recipes", cats.Digests.Recipes, byCategory["recipe"]},
		{"item_palette", cats.Digests.ItemPalette, cats.Items.Names().Names()},
		{"recipe_palette", cats.Digests.RecipePalette, cats.Recipes.Names().Names()},
	} {
		b, err := json.Marshal(c.value)
		if err != nil {
			return fmt.Errorf("catalog %s: %w", c.name, err)
		}
		rows = append(rows, kv{name: c.name, digest: c.digest, json: b})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO meta(key,value) VALUES('loaded_at',?)`, now); err != nil {
		return err
	}
	for _, table := range []string{"catalogs", "names", "findings"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	catStmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer catStmt.Close()
	for _, r := range rows {
		// Build leaves source digests empty; palettes are always present.
		if r.name == "" || r.digest == "" || len(r.json) == 0 {
			continue
		}
		if _, err := catStmt.ExecContext(ctx, r.name, r.digest, string(r.json), now); err != nil {
			return err
		}
	}

	nameStmt, err := tx.PrepareContext(ctx, `INSERT INTO names(category,handle,name,defined,data_json) VALUES(?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer nameStmt.Close()
	for _, r := range records {
		var data any
		if r.Defined {
			b, err := json.Marshal(r.Data)
			if err != nil {
				return fmt.Errorf("%s %q: %w", r.Category, r.Name, err)
			}
			data = string(b)
		}
		if _, err := nameStmt.ExecContext(ctx, r.Category, int64(r.Handle), r.Name, boolInt(r.Defined), data); err != nil {
			return err
		}
	}

	findStmt, err := tx.PrepareContext(ctx, `INSERT INTO findings(kind,category,subject,detail) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer findStmt.Close()
	for _, d := range cats.Report.Duplicates {
		if _, err := findStmt.ExecContext(ctx, "duplicate", d.Category, d.Name, fmt.Sprintf("defined %d times", d.Count)); err != nil {
			return err
		}
	}
	for _, d := range cats.Report.Dangling {
		if _, err := findStmt.ExecContext(ctx, "dangling", "recipe", d.Recipe, d.Role+" "+d.Item); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LookupHandle returns the handle indexed for name in category.
func (s *SQLiteIndex) LookupHandle(ctx context.Context, category, name string) (uint32, bool, error) {
	var h int64
	err := s.db.QueryRowContext(ctx, `SELECT handle FROM names WHERE category=? AND name=?`, category, name).Scan(&h)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return uint32(h), true, nil
}

// CatalogDigest returns the digest stored for a catalog row.
func (s *SQLiteIndex) CatalogDigest(ctx context.Context, name string) (string, bool, error) {
	var d string
	err := s.db.QueryRowContext(ctx, `SELECT digest FROM catalogs WHERE name=?`, name).Scan(&d)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return d, true, nil
}

// Findings counts indexed integrity findings by kind.
func (s *SQLiteIndex) Findings(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM findings GROUP BY kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		out[kind] = n
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
