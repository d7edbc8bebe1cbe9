package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteDatabase struct {
	db               *sql.DB
	connectionString string
}

func NewSQLiteDatabase(connectionString string) (DatabaseService, error) {
	db, err := sql.Open("sqlite", connectionString)
	if err != nil {
		return nil, err
	}
	// Every new connection to ":memory:" opens a fresh, empty database, and
	// SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)

	return &SQLiteDatabase{
		db:               db,
		connectionString: connectionString,
	}, nil
}

func (s *SQLiteDatabase) CreateDatabase() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS draft_images (
			id TEXT PRIMARY KEY,
			draft_id TEXT NOT NULL,
			preview TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			category TEXT NOT NULL,
			price_minor INTEGER NOT NULL DEFAULT 0,
			rank TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_draft_images_draft_rank ON draft_images (draft_id, rank)`,
		`CREATE TABLE IF NOT EXISTS entries (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteDatabase) DoesDatabaseExist() bool {
	// In SQLite, the database file is created when you connect to it.
	// So we can assume it exists if we can successfully ping the database.
	err := s.db.Ping()
	return err == nil
}

func (s *SQLiteDatabase) CreateDraftImages(ctx context.Context, draftID string, images []*Image) ([]string, error) {
	if len(images) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	var last sql.NullString
	if err := tx.QueryRowContext(ctx,
		"SELECT MAX(rank) FROM draft_images WHERE draft_id = ?", draftID).Scan(&last); err != nil {
		return nil, fmt.Errorf("failed to read last rank: %w", err)
	}

	ranks := NextN(last.String, len(images))
	now := time.Now().UTC()
	ids := make([]string, 0, len(images))
	for i, img := range images {
		id, err := generateID()
		if err != nil {
			return nil, err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO draft_images
			(id, draft_id, preview, title, description, category, price_minor, rank, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, draftID, img.Preview, img.Title, img.Description, img.Category, img.PriceMinor, ranks[i], now.UnixNano())
		if err != nil {
			return nil, fmt.Errorf("failed to insert draft image: %w", err)
		}
		img.ID = id
		img.Rank = ranks[i]
		img.CreatedAt = now
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *SQLiteDatabase) GetDraftImages(ctx context.Context, draftID string) ([]*Image, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, preview, title, description, category, price_minor, rank, created_at
		FROM draft_images WHERE draft_id = ? ORDER BY rank ASC, created_at ASC`, draftID)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close() // Explicitly ignore error as we're already returning an error from the function
	}()

	var images []*Image
	for rows.Next() {
		var img Image
		var created int64
		if err := rows.Scan(&img.ID, &img.Preview, &img.Title, &img.Description, &img.Category,
			&img.PriceMinor, &img.Rank, &created); err != nil {
			return nil, err
		}
		img.CreatedAt = time.Unix(0, created).UTC()
		images = append(images, &img)
	}
	return images, rows.Err()
}

func (s *SQLiteDatabase) DeleteDraftImage(ctx context.Context, draftID string, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM draft_images WHERE draft_id = ? AND id = ?", draftID, id)
	return err
}

func (s *SQLiteDatabase) UpdateDraftImageRanks(ctx context.Context, draftID string, ranks map[string]string) error {
	if len(ranks) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for id, rank := range ranks {
		if _, err := tx.ExecContext(ctx,
			"UPDATE draft_images SET rank = ? WHERE draft_id = ? AND id = ?", rank, draftID, id); err != nil {
			return fmt.Errorf("failed to update rank of %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteDatabase) ClearDraft(ctx context.Context, draftID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM draft_images WHERE draft_id = ?", draftID)
	return err
}

func (s *SQLiteDatabase) PutEntry(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO entries (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value), time.Now().UTC().UnixNano())
	return err
}

func (s *SQLiteDatabase) GetEntry(ctx context.Context, key string) ([]byte, error) {
	row := s.db.QueryRowContext(ctx, "SELECT value FROM entries WHERE key = ?", key)
	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return []byte(value), nil
}

func (s *SQLiteDatabase) ListEntryKeys(ctx context.Context, prefix string) ([]string, error) {
	// substr comparison avoids LIKE wildcards hidden in the prefix
	rows, err := s.db.QueryContext(ctx,
		"SELECT key FROM entries WHERE substr(key, 1, ?) = ? ORDER BY key ASC", len(prefix), prefix)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
