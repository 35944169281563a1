package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/meur/buildforge/internal/models"
)

// ErrNotFound is returned when a row does not exist
var ErrNotFound = errors.New("not found")

// Store handles all database operations
type Store struct {
	db *sql.DB
}

// New creates a new Store with SQLite
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate runs database migrations
func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS catalog_meta (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			version TEXT NOT NULL,
			item_count INTEGER NOT NULL,
			imported_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS items (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			icon TEXT,
			price INTEGER NOT NULL DEFAULT 0,
			from_ids TEXT NOT NULL,
			to_ids TEXT NOT NULL,
			tags TEXT NOT NULL,
			maps TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_items_name ON items(name)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// --- Catalog ---

// CatalogInfo describes the imported catalog
type CatalogInfo struct {
	Version    string    `json:"version"`
	ItemCount  int       `json:"item_count"`
	ImportedAt time.Time `json:"imported_at"`
}

// ReplaceCatalog swaps the whole catalog for items in one transaction
func (s *Store) ReplaceCatalog(ctx context.Context, version string, items []models.Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return fmt.Errorf("failed to clear items: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO items (id, name, icon, price, from_ids, to_ids, tags, maps)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, item := range items {
		from, to, tags, maps, err := encodeItemLists(item)
		if err != nil {
			return fmt.Errorf("failed to encode item %d: %w", item.ID, err)
		}
		_, err = stmt.ExecContext(ctx, item.ID, item.Name, item.Icon, item.Price,
			string(from), string(to), string(tags), string(maps))
		if err != nil {
			return fmt.Errorf("failed to insert item %d: %w", item.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO catalog_meta (id, version, item_count, imported_at) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET version = excluded.version,
			item_count = excluded.item_count, imported_at = excluded.imported_at
	`, version, len(items), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record catalog version: %w", err)
	}

	return tx.Commit()
}

// CatalogInfo returns the version of the imported catalog
func (s *Store) CatalogInfo(ctx context.Context) (*CatalogInfo, error) {
	var info CatalogInfo
	err := s.db.QueryRowContext(ctx, `
		SELECT version, item_count, imported_at FROM catalog_meta WHERE id = 1
	`).Scan(&info.Version, &info.ItemCount, &info.ImportedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// GetItems returns every catalog item ordered by id
func (s *Store) GetItems(ctx context.Context) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, icon, price, from_ids, to_ids, tags, maps
		FROM items ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// GetItem returns a catalog item by id
func (s *Store) GetItem(ctx context.Context, id int) (*models.Item, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, icon, price, from_ids, to_ids, tags, maps
		FROM items WHERE id = ?
	`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row scanner) (*models.Item, error) {
	var item models.Item
	var icon sql.NullString
	var from, to, tags, maps string
	if err := row.Scan(&item.ID, &item.Name, &icon, &item.Price, &from, &to, &tags, &maps); err != nil {
		return nil, err
	}
	item.Icon = icon.String

	for _, col := range []struct {
		raw  string
		dest interface{}
	}{
		{from, &item.From},
		{to, &item.To},
		{tags, &item.Tags},
		{maps, &item.Maps},
	} {
		if err := json.Unmarshal([]byte(col.raw), col.dest); err != nil {
			return nil, fmt.Errorf("failed to decode item %d: %w", item.ID, err)
		}
	}
	return &item, nil
}

func encodeItemLists(item models.Item) (from, to, tags, maps []byte, err error) {
	if from, err = json.Marshal(nonNilInts(item.From)); err != nil {
		return
	}
	if to, err = json.Marshal(nonNilInts(item.To)); err != nil {
		return
	}
	t := item.Tags
	if t == nil {
		t = []string{}
	}
	if tags, err = json.Marshal(t); err != nil {
		return
	}
	// nil stays null: no map data is not the same as no maps
	maps, err = json.Marshal(item.Maps)
	return
}

func nonNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}
