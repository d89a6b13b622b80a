package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements DocumentStore using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	collection TEXT NOT NULL,
	kind       TEXT NOT NULL DEFAULT '',
	osm_id     TEXT,
	body       TEXT NOT NULL,
	lon        REAL,
	lat        REAL,
	loaded_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);
CREATE INDEX IF NOT EXISTS idx_documents_osm_id ON documents(collection, kind, osm_id);
`

// Migrate creates the documents table.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	return nil
}

// InsertDocuments writes recs in a single transaction.
func (s *SQLiteStore) InsertDocuments(ctx context.Context, collection string, recs []Record) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin insert")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO documents (id, collection, kind, osm_id, body, lon, lat) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close() //nolint:errcheck

	for _, rec := range recs {
		if _, err := stmt.ExecContext(ctx,
			rec.ID.String(), collection, rec.Kind, nullString(rec.OSMID), string(rec.Body), rec.Lon, rec.Lat,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert document %s", rec.OSMID)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit insert")
	}
	return int64(len(recs)), nil
}

// CountDocuments groups stored documents by collection and kind.
func (s *SQLiteStore) CountDocuments(ctx context.Context) ([]CollectionCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT collection, kind, COUNT(*) FROM documents GROUP BY collection, kind ORDER BY collection, kind`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: count documents")
	}
	defer rows.Close() //nolint:errcheck

	var counts []CollectionCount
	for rows.Next() {
		var c CollectionCount
		if err := rows.Scan(&c.Collection, &c.Kind, &c.Count); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan count")
		}
		counts = append(counts, c)
	}
	return counts, eris.Wrap(rows.Err(), "sqlite: iterate counts")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
