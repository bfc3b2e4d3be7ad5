package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docfields/constants"
	"github.com/joseph-ayodele/docfields/internal/parse"
)

// PageResult is the extraction of one source page.
type PageResult struct {
	Number     int          `json:"page"`
	Method     string       `json:"method"`
	Confidence float64      `json:"confidence"`
	Record     parse.Record `json:"record"`
	// LLMMerged is set when the alternate filler contributed to Record.
	LLMMerged bool   `json:"llm_merged,omitempty"`
	Text      string `json:"text,omitempty"`
}

// DocumentResult is everything extracted from one file or text submission.
type DocumentResult struct {
	ID         uuid.UUID           `json:"id"`
	FileName   string              `json:"file_name"`
	SourceType string              `json:"source_type"`
	TotalPages int                 `json:"total_pages"`
	Confidence float64             `json:"confidence"`
	Status     constants.JobStatus `json:"status"`
	Pages      []PageResult        `json:"pages"`
	Warnings   []string            `json:"warnings,omitempty"`
	ElapsedMS  int64               `json:"elapsed_ms"`
	CreatedAt  time.Time           `json:"created_at"`
}

// DocTypes lists the type assigned to each page, in page order.
func (r DocumentResult) DocTypes() []constants.DocumentType {
	out := make([]constants.DocumentType, len(r.Pages))
	for i, p := range r.Pages {
		out[i] = p.Record.Type
	}
	return out
}
