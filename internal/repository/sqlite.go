package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/docfields/constants"
	"github.com/joseph-ayodele/docfields/internal/pipeline"
)

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS extractions (
	id          TEXT PRIMARY KEY,
	file_name   TEXT NOT NULL,
	source_type TEXT NOT NULL,
	status      TEXT NOT NULL,
	total_pages INTEGER NOT NULL,
	confidence  REAL NOT NULL,
	elapsed_ms  INTEGER NOT NULL,
	warnings    TEXT NOT NULL DEFAULT '[]',
	created_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS extraction_pages (
	extraction_id TEXT NOT NULL REFERENCES extractions(id) ON DELETE CASCADE,
	page          INTEGER NOT NULL,
	doc_type      TEXT NOT NULL,
	method        TEXT NOT NULL,
	confidence    REAL NOT NULL,
	llm_merged    INTEGER NOT NULL DEFAULT 0,
	record        TEXT NOT NULL,
	PRIMARY KEY (extraction_id, page)
);
CREATE INDEX IF NOT EXISTS idx_extraction_pages_doc_type ON extraction_pages(doc_type);
CREATE INDEX IF NOT EXISTS idx_extractions_created_at ON extractions(created_at);
`

// SQLiteStore keeps results in an embedded database file.
type SQLiteStore struct {
	db  *sql.DB
	log *slog.Logger
}

// uriPathEscaper percent-encodes the bytes SQLite URI parsing treats specially.
var uriPathEscaper = strings.NewReplacer("%", "%25", "?", "%3F", "#", "%23")

// sqliteDSN builds a file: URI for path so characters such as '?' and '#'
// stay part of the file name.
func sqliteDSN(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	u := url.URL{Scheme: "file", Opaque: uriPathEscaper.Replace(filepath.ToSlash(path)), RawQuery: q.Encode()}
	return u.String()
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string, log *slog.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, dbError("open sqlite", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, dbError("apply schema", err)
	}
	log.Info("sqlite store ready", "path", path)
	return &SQLiteStore{db: db, log: log}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// Save writes res, replacing any earlier result with the same id.
func (s *SQLiteStore) Save(ctx context.Context, res pipeline.DocumentResult) error {
	warnings, err := encodeWarnings(res.Warnings)
	if err != nil {
		return fmt.Errorf("encode warnings: %w", err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return dbError("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM extractions WHERE id = ?`, res.ID.String()); err != nil {
		return dbError("delete extraction", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO extractions (id, file_name, source_type, status, total_pages, confidence, elapsed_ms, warnings, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID.String(), res.FileName, res.SourceType, string(res.Status), res.TotalPages,
		res.Confidence, res.ElapsedMS, string(warnings), res.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return dbError("insert extraction", err)
	}
	for _, p := range res.Pages {
		rec, err := encodeRecord(p.Record)
		if err != nil {
			return fmt.Errorf("encode page %d: %w", p.Number, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO extraction_pages (extraction_id, page, doc_type, method, confidence, llm_merged, record)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			res.ID.String(), p.Number, string(p.Record.Type), p.Method, p.Confidence, p.LLMMerged, string(rec),
		)
		if err != nil {
			return dbError("insert page", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return dbError("commit", err)
	}
	s.log.Debug("extraction saved", "id", res.ID, "pages", len(res.Pages))
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id uuid.UUID) (pipeline.DocumentResult, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, file_name, source_type, status, total_pages, confidence, elapsed_ms, warnings, created_at
		FROM extractions WHERE id = ?`, id.String())
	res, err := scanSQLiteExtraction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return pipeline.DocumentResult{}, notFound(id)
	}
	if err != nil {
		return pipeline.DocumentResult{}, err
	}
	if res.Pages, err = s.pages(ctx, id); err != nil {
		return pipeline.DocumentResult{}, err
	}
	return res, nil
}

// List returns the newest results first.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]pipeline.DocumentResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file_name, source_type, status, total_pages, confidence, elapsed_ms, warnings, created_at
		FROM extractions e
		WHERE ? = '' OR EXISTS (
			SELECT 1 FROM extraction_pages p WHERE p.extraction_id = e.id AND p.doc_type = ?
		)
		ORDER BY created_at DESC, id
		LIMIT ?`,
		string(filter.DocType), string(filter.DocType), filter.limit(),
	)
	if err != nil {
		return nil, dbError("list extractions", err)
	}
	var out []pipeline.DocumentResult
	for rows.Next() {
		res, err := scanSQLiteExtraction(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Close(); err != nil {
		return nil, dbError("list extractions", err)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list extractions", err)
	}
	for i := range out {
		if out[i].Pages, err = s.pages(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *SQLiteStore) pages(ctx context.Context, id uuid.UUID) ([]pipeline.PageResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT page, method, confidence, llm_merged, record
		FROM extraction_pages WHERE extraction_id = ? ORDER BY page`, id.String())
	if err != nil {
		return nil, dbError("load pages", err)
	}
	defer rows.Close()

	pages := make([]pipeline.PageResult, 0)
	for rows.Next() {
		var (
			p   pipeline.PageResult
			rec string
		)
		if err := rows.Scan(&p.Number, &p.Method, &p.Confidence, &p.LLMMerged, &rec); err != nil {
			return nil, dbError("scan page", err)
		}
		if p.Record, err = decodeRecord([]byte(rec)); err != nil {
			return nil, fmt.Errorf("decode page %d of %s: %w", p.Number, id, err)
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("load pages", err)
	}
	return pages, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteExtraction(row rowScanner) (pipeline.DocumentResult, error) {
	var (
		res                       pipeline.DocumentResult
		id, status, warns, create string
	)
	err := row.Scan(&id, &res.FileName, &res.SourceType, &status, &res.TotalPages,
		&res.Confidence, &res.ElapsedMS, &warns, &create)
	if errors.Is(err, sql.ErrNoRows) {
		return res, err
	}
	if err != nil {
		return res, dbError("scan extraction", err)
	}
	if res.ID, err = uuid.Parse(id); err != nil {
		return res, fmt.Errorf("stored id %q: %w", id, err)
	}
	if res.CreatedAt, err = time.Parse(timeLayout, create); err != nil {
		return res, fmt.Errorf("stored created_at %q: %w", create, err)
	}
	if res.Warnings, err = decodeWarnings([]byte(warns)); err != nil {
		return res, fmt.Errorf("stored warnings: %w", err)
	}
	res.Status = constants.JobStatus(status)
	return res, nil
}
