package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/osm-audit/internal/db"
)

const documentsTable = "osm.documents"

var documentColumns = []string{"id", "collection", "kind", "osm_id", "body", "geom"}

// PostgresStore implements DocumentStore using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE EXTENSION IF NOT EXISTS postgis;
CREATE SCHEMA IF NOT EXISTS osm;

CREATE TABLE IF NOT EXISTS osm.documents (
	id         TEXT PRIMARY KEY,
	collection TEXT NOT NULL,
	kind       TEXT NOT NULL DEFAULT '',
	osm_id     TEXT,
	body       JSONB NOT NULL,
	geom       geometry(Point, 4326),
	loaded_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_documents_collection ON osm.documents(collection);
CREATE INDEX IF NOT EXISTS idx_documents_osm_id ON osm.documents(collection, kind, osm_id);
CREATE INDEX IF NOT EXISTS idx_documents_geom ON osm.documents USING GIST (geom);
`

// Migrate creates the osm schema and documents table.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}

// InsertDocuments COPYs recs into osm.documents.
func (s *PostgresStore) InsertDocuments(ctx context.Context, collection string, recs []Record) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(recs))
	for _, rec := range recs {
		point, err := pointEWKB(rec)
		if err != nil {
			zap.L().Warn("postgres: skipping geometry",
				zap.String("osm_id", rec.OSMID),
				zap.Error(err),
			)
		}

		var geomVal any
		if point != nil {
			geomVal = point
		}

		rows = append(rows, []any{
			rec.ID.String(), collection, rec.Kind, nullString(rec.OSMID), string(rec.Body), geomVal,
		})
	}

	n, err := db.CopyFrom(ctx, s.pool, documentsTable, documentColumns, rows, db.DefaultBatchSize)
	if err != nil {
		return n, eris.Wrap(err, "postgres: insert documents")
	}
	return n, nil
}

// CountDocuments groups stored documents by collection and kind.
func (s *PostgresStore) CountDocuments(ctx context.Context) ([]CollectionCount, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT collection, kind, COUNT(*) FROM osm.documents GROUP BY collection, kind ORDER BY collection, kind`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: count documents")
	}
	defer rows.Close()

	var counts []CollectionCount
	for rows.Next() {
		var c CollectionCount
		if err := rows.Scan(&c.Collection, &c.Kind, &c.Count); err != nil {
			return nil, eris.Wrap(err, "postgres: scan count")
		}
		counts = append(counts, c)
	}
	return counts, eris.Wrap(rows.Err(), "postgres: iterate counts")
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}
