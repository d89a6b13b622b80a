// Package store persists converted OSM documents.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/osm-audit/internal/config"
	"github.com/sells-group/osm-audit/internal/document"
)

// DocumentStore is a collection-oriented sink for converted documents.
type DocumentStore interface {
	// Migrate creates the documents table if needed.
	Migrate(ctx context.Context) error
	// InsertDocuments adds recs to collection and reports how many were written.
	InsertDocuments(ctx context.Context, collection string, recs []Record) (int64, error)
	// CountDocuments reports stored documents per collection and record kind.
	CountDocuments(ctx context.Context) ([]CollectionCount, error)
	Close() error
}

// Record is one stored document.
type Record struct {
	ID    uuid.UUID
	Kind  string
	OSMID string
	Body  json.RawMessage
	Lon   *float64
	Lat   *float64
}

// HasPoint reports whether both coordinates are present.
func (r Record) HasPoint() bool {
	return r.Lon != nil && r.Lat != nil
}

// CollectionCount is one row of CountDocuments.
type CollectionCount struct {
	Collection string
	Kind       string
	Count      int64
}

// NewRecord builds a Record from one encoded document. The body must be a
// JSON object; kind, id and coordinates are lifted from its top-level keys.
func NewRecord(line []byte) (Record, error) {
	body := bytes.TrimSpace(line)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return Record{}, eris.Wrap(err, "store: decode document")
	}
	if fields == nil {
		return Record{}, eris.New("store: document is not an object")
	}

	rec := Record{
		ID:    uuid.New(),
		Kind:  stringField(fields, document.KeyTagType),
		OSMID: stringField(fields, "id"),
		Body:  json.RawMessage(append([]byte(nil), body...)),
	}
	rec.Lon = floatField(fields, "lon")
	rec.Lat = floatField(fields, "lat")
	return rec, nil
}

func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// floatField parses coordinates, which documents carry as attribute strings.
func floatField(fields map[string]json.RawMessage, key string) *float64 {
	s := stringField(fields, key)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// Open returns the backend named by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (DocumentStore, error) {
	switch cfg.Driver {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, eris.New("store: database_url is required for postgres")
		}
		return NewPostgres(ctx, cfg.DatabaseURL, &PoolConfig{MaxConns: cfg.MaxConns})
	case "sqlite", "":
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = "osm.db"
		}
		return NewSQLite(dsn)
	default:
		return nil, eris.Errorf("store: unsupported driver %q", cfg.Driver)
	}
}
