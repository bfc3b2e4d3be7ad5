package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docfields/constants"
	"github.com/joseph-ayodele/docfields/internal/common"
	"github.com/joseph-ayodele/docfields/internal/parse"
	"github.com/joseph-ayodele/docfields/internal/pipeline"
)

// ExtractionRepository persists pipeline results.
type ExtractionRepository interface {
	Save(ctx context.Context, res pipeline.DocumentResult) error
	Get(ctx context.Context, id uuid.UUID) (pipeline.DocumentResult, error)
	List(ctx context.Context, filter ListFilter) ([]pipeline.DocumentResult, error)
}

// ListFilter narrows List. A zero DocType matches every document; Limit 0
// means defaultListLimit.
type ListFilter struct {
	DocType constants.DocumentType
	Limit   int
}

const defaultListLimit = 50

func (f ListFilter) limit() int {
	if f.Limit <= 0 {
		return defaultListLimit
	}
	return f.Limit
}

func notFound(id uuid.UUID) error {
	return fmt.Errorf("extraction %s: %w", id, common.ErrNotFound)
}

func dbError(op string, err error) error {
	return common.NewAppError("DB_ERROR", op, fmt.Errorf("%w: %w", common.ErrDatabase, err))
}

func encodeWarnings(w []string) ([]byte, error) {
	if w == nil {
		w = []string{}
	}
	return json.Marshal(w)
}

func decodeWarnings(b []byte) ([]string, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var w []string
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, err
	}
	if len(w) == 0 {
		return nil, nil
	}
	return w, nil
}

func encodeRecord(r parse.Record) ([]byte, error) {
	return json.Marshal(r)
}

func decodeRecord(b []byte) (parse.Record, error) {
	var r parse.Record
	err := json.Unmarshal(b, &r)
	return r, err
}
