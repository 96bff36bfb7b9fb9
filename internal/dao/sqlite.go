package dao

import (
	"bufio"
	"context"
	"database/sql"
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

const (
	cursorPrefix = "seq:"
	maxLineSize  = 4 << 20
)

// SQLiteStore keeps connection nodes offline. Pages are keyset-paged on
// the insertion sequence, so edges come back in import order.
type SQLiteStore struct {
	db  *sql.DB
	log *zap.Logger
}

// OpenSQLiteStore creates or opens the store at path.
func OpenSQLiteStore(path string, log *zap.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db, log: log}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Fetch returns up to req.First nodes inserted after the cursor.
func (s *SQLiteStore) Fetch(ctx context.Context, rid ResourceID, req PageRequest) (*Page, error) {
	after, err := decodeCursor(req.After)
	if err != nil {
		return nil, err
	}
	first := req.First
	if first <= 0 {
		first = DefaultPageSize
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, body FROM nodes
		 WHERE resource = ? AND scope = ? AND seq > ?
		 ORDER BY seq LIMIT ?`,
		rid.Resource, rid.Scope, after, first+1,
	)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", rid, err)
	}
	defer rows.Close()

	edges := make([]Edge, 0, first)
	more := false
	for rows.Next() {
		if len(edges) == first {
			more = true
			break
		}
		var (
			seq  int64
			body string
		)
		if err := rows.Scan(&seq, &body); err != nil {
			return nil, fmt.Errorf("scan %s: %w", rid, err)
		}
		edges = append(edges, Edge{Cursor: encodeCursor(seq), Node: json.RawMessage(body)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", rid, err)
	}

	page := Page{Edges: edges, PageInfo: &PageInfo{HasNextPage: more}}
	if n := len(edges); n > 0 {
		page.PageInfo.EndCursor = &edges[n-1].Cursor
	}

	return &page, nil
}

// Import loads newline-delimited JSON nodes into a connection. Nodes
// already present, by id, are skipped. Returns the number of new nodes.
func (s *SQLiteStore) Import(ctx context.Context, rid ResourceID, r io.Reader) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO nodes (resource, scope, node_id, body) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	var count, line int
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		if !json.Valid([]byte(raw)) {
			return 0, fmt.Errorf("line %d: invalid JSON", line)
		}
		id := nodeID(raw)
		if id == "" {
			id = uuid.NewString()
		}
		res, err := stmt.ExecContext(ctx, rid.Resource, rid.Scope, id, raw)
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", line, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			count++
		}
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("read nodes: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	s.log.Info("nodes imported", zap.String("rid", rid.String()), zap.Int("count", count))

	return count, nil
}

// Count returns the number of nodes of a connection.
func (s *SQLiteStore) Count(ctx context.Context, rid ResourceID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM nodes WHERE resource = ? AND scope = ?`,
		rid.Resource, rid.Scope,
	).Scan(&n)

	return n, err
}

func nodeID(raw string) string {
	var n struct {
		ID any `json:"id"`
	}
	if err := json.Unmarshal([]byte(raw), &n); err != nil || n.ID == nil {
		return ""
	}
	return fmt.Sprint(n.ID)
}

func encodeCursor(seq int64) string {
	return base64.StdEncoding.EncodeToString([]byte(cursorPrefix + strconv.FormatInt(seq, 10)))
}

func decodeCursor(c string) (int64, error) {
	if c == "" {
		return 0, nil
	}
	bb, err := base64.StdEncoding.DecodeString(c)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadCursor, c)
	}
	seq, err := strconv.ParseInt(strings.TrimPrefix(string(bb), cursorPrefix), 10, 64)
	if err != nil || !strings.HasPrefix(string(bb), cursorPrefix) {
		return 0, fmt.Errorf("%w: %q", ErrBadCursor, c)
	}

	return seq, nil
}
