// Package sqlitedoc persists documents as JSON rows in SQLite and serves the
// bunquery Collection contract. Lookups on the native key are pushed down to
// the primary key; all other conditions are evaluated per row, the same way
// the in-memory backend filters.
package sqlitedoc

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/kartikbazzad/bunbase/bunquery"
	"github.com/kartikbazzad/bunbase/bunquery/internal/cursor"
	"github.com/kartikbazzad/bunbase/bunquery/internal/match"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	body       TEXT NOT NULL,
	PRIMARY KEY (collection, id)
);`

// Store is a SQLite-backed document store. Safe for concurrent use; SQLite
// serializes writers internally.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store at path. Use ":memory:" for a throwaway
// store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize store schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Collection returns a handle to the named collection. Collections exist
// implicitly; inserting creates them.
func (s *Store) Collection(name string) *Collection {
	return &Collection{store: s, name: name}
}

// Collection is a named document set inside a Store.
type Collection struct {
	store *Store
	name  string
}

// Insert stores the document, assigning a fresh native key when none is
// present, and returns the key. An existing document with the same key is
// replaced.
func (c *Collection) Insert(ctx context.Context, doc bunquery.Document) (uuid.UUID, error) {
	stored := make(bunquery.Document, len(doc))
	for k, v := range doc {
		stored[k] = v
	}

	key := uuid.New()
	if raw, ok := stored[bunquery.NativeKeyField]; ok {
		parsed, err := uuid.Parse(bunquery.NativeKeyString(raw))
		if err != nil {
			return uuid.Nil, validationKeyError(raw)
		}
		key = parsed
	}
	// The key is stored in its string form so the JSON body round-trips.
	stored[bunquery.NativeKeyField] = key.String()

	body, err := json.Marshal(stored)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode document: %w", err)
	}

	_, err = c.store.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO documents (collection, id, body) VALUES (?, ?, ?)`,
		c.name, key.String(), string(body))
	if err != nil {
		return uuid.Nil, &bunquery.BackendError{Message: err.Error()}
	}
	return key, nil
}

// Get returns the document with the given public id string.
func (c *Collection) Get(ctx context.Context, id string) (bunquery.Document, error) {
	row := c.store.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`, c.name, id)

	var body string
	if err := row.Scan(&body); err != nil {
		if err == sql.ErrNoRows {
			return nil, bunquery.ErrNotFound
		}
		return nil, &bunquery.BackendError{Message: err.Error()}
	}
	return decodeDocument(body)
}

// Find loads the documents matching conditions and returns a cursor over
// them.
func (c *Collection) Find(ctx context.Context, conditions map[string]any) (bunquery.Cursor, error) {
	docs, err := c.load(ctx, conditions)
	if err != nil {
		return nil, err
	}
	return cursor.Over(docs), nil
}

// CountDocuments counts the documents matching conditions. The empty
// condition set counts in SQL without decoding bodies.
func (c *Collection) CountDocuments(ctx context.Context, conditions map[string]any) (int64, error) {
	if len(conditions) == 0 {
		row := c.store.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM documents WHERE collection = ?`, c.name)
		var n int64
		if err := row.Scan(&n); err != nil {
			return 0, &bunquery.BackendError{Message: err.Error()}
		}
		return n, nil
	}

	docs, err := c.load(ctx, conditions)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

func (c *Collection) load(ctx context.Context, conditions map[string]any) ([]bunquery.Document, error) {
	query := `SELECT body FROM documents WHERE collection = ?`
	args := []any{c.name}

	// Native-key equality is the primary-key lookup; push it down instead of
	// scanning the collection.
	if key, ok := nativeKeyEquality(conditions); ok {
		query += ` AND id = ?`
		args = append(args, key)
	}

	rows, err := c.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &bunquery.BackendError{Message: err.Error()}
	}
	defer rows.Close()

	var docs []bunquery.Document
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, &bunquery.BackendError{Message: err.Error()}
		}
		doc, err := decodeDocument(body)
		if err != nil {
			return nil, err
		}
		if match.Matches(doc, conditions) {
			docs = append(docs, doc)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, &bunquery.BackendError{Message: err.Error()}
	}
	return docs, nil
}

// nativeKeyEquality extracts the key string of an equality predicate on the
// native key field, when the conditions carry one.
func nativeKeyEquality(conditions map[string]any) (string, bool) {
	predicate, ok := conditions[bunquery.NativeKeyField]
	if !ok {
		return "", false
	}
	ops, ok := predicate.(map[string]any)
	if !ok {
		return bunquery.NativeKeyString(predicate), true
	}
	if expected, ok := ops["$eq"]; ok && len(ops) == 1 {
		return bunquery.NativeKeyString(expected), true
	}
	return "", false
}

func decodeDocument(body string) (bunquery.Document, error) {
	var doc bunquery.Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}

func validationKeyError(raw any) error {
	return &bunquery.ValidationError{
		Message: fmt.Sprintf("document key %v is not a valid native key", raw),
	}
}
