package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/docfields/constants"
	"github.com/joseph-ayodele/docfields/internal/pipeline"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS extractions (
	id          UUID PRIMARY KEY,
	file_name   TEXT NOT NULL,
	source_type TEXT NOT NULL,
	status      TEXT NOT NULL,
	total_pages INTEGER NOT NULL,
	confidence  DOUBLE PRECISION NOT NULL,
	elapsed_ms  BIGINT NOT NULL,
	warnings    JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS extraction_pages (
	extraction_id UUID NOT NULL REFERENCES extractions(id) ON DELETE CASCADE,
	page          INTEGER NOT NULL,
	doc_type      TEXT NOT NULL,
	method        TEXT NOT NULL,
	confidence    DOUBLE PRECISION NOT NULL,
	llm_merged    BOOLEAN NOT NULL DEFAULT FALSE,
	record        JSONB NOT NULL,
	PRIMARY KEY (extraction_id, page)
);
CREATE INDEX IF NOT EXISTS idx_extraction_pages_doc_type ON extraction_pages(doc_type);
CREATE INDEX IF NOT EXISTS idx_extractions_created_at ON extractions(created_at);
`

// PostgresStore keeps results in Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewPostgresStore(pool *pgxpool.Pool, log *slog.Logger) *PostgresStore {
	if log == nil {
		log = slog.Default()
	}
	return &PostgresStore{pool: pool, log: log}
}

// Migrate creates the tables when they are missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return dbError("apply schema", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, res pipeline.DocumentResult) error {
	warnings, err := encodeWarnings(res.Warnings)
	if err != nil {
		return fmt.Errorf("encode warnings: %w", err)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return dbError("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM extractions WHERE id = $1`, res.ID)
	batch.Queue(`
		INSERT INTO extractions (id, file_name, source_type, status, total_pages, confidence, elapsed_ms, warnings, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		res.ID, res.FileName, res.SourceType, string(res.Status), res.TotalPages,
		res.Confidence, res.ElapsedMS, warnings, res.CreatedAt,
	)
	for _, p := range res.Pages {
		rec, err := encodeRecord(p.Record)
		if err != nil {
			return fmt.Errorf("encode page %d: %w", p.Number, err)
		}
		batch.Queue(`
			INSERT INTO extraction_pages (extraction_id, page, doc_type, method, confidence, llm_merged, record)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			res.ID, p.Number, string(p.Record.Type), p.Method, p.Confidence, p.LLMMerged, rec,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		s.log.Error("extraction save failed", "id", res.ID, "err", err)
		return dbError("save extraction", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return dbError("commit", err)
	}
	s.log.Debug("extraction saved", "id", res.ID, "pages", len(res.Pages))
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (pipeline.DocumentResult, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, file_name, source_type, status, total_pages, confidence, elapsed_ms, warnings, created_at
		FROM extractions WHERE id = $1`, id)
	res, err := scanPostgresExtraction(row)
	if errors.Is(err, pgx.ErrNoRows) {
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

func (s *PostgresStore) List(ctx context.Context, filter ListFilter) ([]pipeline.DocumentResult, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, file_name, source_type, status, total_pages, confidence, elapsed_ms, warnings, created_at
		FROM extractions e
		WHERE $1 = '' OR EXISTS (
			SELECT 1 FROM extraction_pages p WHERE p.extraction_id = e.id AND p.doc_type = $1
		)
		ORDER BY created_at DESC, id
		LIMIT $2`,
		string(filter.DocType), filter.limit(),
	)
	if err != nil {
		return nil, dbError("list extractions", err)
	}
	var out []pipeline.DocumentResult
	for rows.Next() {
		res, err := scanPostgresExtraction(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, res)
	}
	rows.Close()
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

func (s *PostgresStore) pages(ctx context.Context, id uuid.UUID) ([]pipeline.PageResult, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT page, method, confidence, llm_merged, record
		FROM extraction_pages WHERE extraction_id = $1 ORDER BY page`, id)
	if err != nil {
		return nil, dbError("load pages", err)
	}
	defer rows.Close()

	pages := make([]pipeline.PageResult, 0)
	for rows.Next() {
		var (
			p   pipeline.PageResult
			rec []byte
		)
		if err := rows.Scan(&p.Number, &p.Method, &p.Confidence, &p.LLMMerged, &rec); err != nil {
			return nil, dbError("scan page", err)
		}
		if p.Record, err = decodeRecord(rec); err != nil {
			return nil, fmt.Errorf("decode page %d of %s: %w", p.Number, id, err)
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("load pages", err)
	}
	return pages, nil
}

func scanPostgresExtraction(row pgx.Row) (pipeline.DocumentResult, error) {
	var (
		res    pipeline.DocumentResult
		status string
		warns  []byte
	)
	err := row.Scan(&res.ID, &res.FileName, &res.SourceType, &status, &res.TotalPages,
		&res.Confidence, &res.ElapsedMS, &warns, &res.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return res, err
	}
	if err != nil {
		return res, dbError("scan extraction", err)
	}
	if res.Warnings, err = decodeWarnings(warns); err != nil {
		return res, fmt.Errorf("stored warnings: %w", err)
	}
	res.Status = constants.JobStatus(status)
	res.CreatedAt = res.CreatedAt.UTC()
	return res, nil
}
