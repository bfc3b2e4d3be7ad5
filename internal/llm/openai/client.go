package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docfields/internal/common"
	"github.com/joseph-ayodele/docfields/internal/llm"
)

// ExtractInvoice implements llm.FieldExtractor using text-only chat/completions.
func (c *Client) ExtractInvoice(ctx context.Context, req llm.ExtractRequest) (llm.InvoiceFields, []byte, error) {
	if c.cfg.APIKey == "" {
		return llm.InvoiceFields{}, nil, common.ErrLLMDisabled
	}
	rid := uuid.NewString()
	start := time.Now()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(req.Text),
		"file", req.FileName,
		"page", req.Page,
	)

	schema := llm.BuildInvoiceJSONSchema()
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt()},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
			{"role": "user", "content": llm.BuildUserPrompt(req)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, _, err := llm.SendJSON(ctx, c.httpClient, endpoint, body, headers, c.log)
	if err != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.InvoiceFields{}, nil, fmt.Errorf("openai: %w", err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return llm.InvoiceFields{}, raw, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.extract.no_choices", "req_id", rid, "raw_bytes", len(raw))
		return llm.InvoiceFields{}, raw, fmt.Errorf("no choices in openai response")
	}

	content := []byte(llm.StripCodeFences(cc.Choices[0].Message.Content))
	content, _, err = llm.NormalizeAndSanitizeJSON(content, c.log)
	if err != nil {
		c.log.Error("llm.extract.sanitize_failed", "req_id", rid, "error", err)
		return llm.InvoiceFields{}, content, err
	}

	validator, err := llm.InvoiceSchema()
	if err != nil {
		return llm.InvoiceFields{}, content, err
	}
	if err := validator.Validate(content); err != nil {
		if !c.cfg.LenientItems {
			c.log.Error("llm.extract.schema_validation_failed", "req_id", rid, "error", err)
			return llm.InvoiceFields{}, content, fmt.Errorf("schema validation failed: %w", err)
		}
		cleaned, dropped, sErr := llm.SanitizeItems(content)
		if sErr != nil {
			return llm.InvoiceFields{}, content, fmt.Errorf("sanitize items: %w", sErr)
		}
		if vErr := validator.Validate(cleaned); vErr != nil {
			c.log.Error("llm.extract.schema_validation_failed",
				"req_id", rid, "error", vErr,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return llm.InvoiceFields{}, cleaned, fmt.Errorf("schema validation failed: %w", vErr)
		}
		c.log.Warn("llm.extract.lenient_sanitize_applied", "req_id", rid, "dropped", dropped)
		content = cleaned
	}

	var out llm.InvoiceFields
	if err := json.Unmarshal(content, &out); err != nil {
		return llm.InvoiceFields{}, content, fmt.Errorf("unmarshal fields: %w", err)
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"items", len(out.Items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, content, nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
