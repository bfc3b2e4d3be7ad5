package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/docfields/internal/parse"
)

var reCodeFence = regexp.MustCompile("```(?:json|JSON)?")

// StripCodeFences removes markdown fences some models wrap around JSON.
func StripCodeFences(s string) string {
	return strings.TrimSpace(reCodeFence.ReplaceAllString(s, ""))
}

var (
	textFields  = []string{"invoice_number", "date", "vendor"}
	moneyFields = []string{"total_amount", "gst"}
	itemMoney   = []string{"unit_price", "total"}
)

// NormalizeAndSanitizeJSON
// - Coerces numbers to strings and cleans money fields like the rule extractor
// - Turns "", "null" and "n/a" into null
// - Removes unknown keys (strict additionalProperties = false friendliness)
// - Guarantees an items array
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 4)
	for _, k := range textFields {
		if v, ok := m[k]; ok {
			m[k] = nullableText(v)
		}
	}
	for _, k := range moneyFields {
		if v, ok := m[k]; ok {
			m[k] = nullableMoney(v)
		}
	}

	items, _ := m["items"].([]any)
	if _, ok := m["items"]; ok && items == nil {
		dropped = append(dropped, "items(type)")
	}
	cleaned := make([]any, 0, len(items))
	for _, it := range items {
		row, ok := it.(map[string]any)
		if !ok {
			dropped = append(dropped, "items[](type)")
			continue
		}
		for _, k := range itemMoney {
			if v, ok := row[k]; ok {
				if s := nullableMoney(v); s != nil {
					row[k] = s
				} else {
					delete(row, k)
				}
			}
		}
		if q, ok := row["quantity"]; ok {
			if s := nullableText(q); s != nil {
				row["quantity"] = s
			} else {
				delete(row, "quantity")
			}
		}
		for _, k := range []string{"hsn", "unit"} {
			if v, ok := row[k]; ok {
				row[k] = nullableText(v)
			}
		}
		if n, ok := row["name"].(string); ok {
			row["name"] = strings.TrimSpace(n)
		}
		cleaned = append(cleaned, row)
	}
	m["items"] = cleaned

	allowed := map[string]struct{}{
		"invoice_number": {}, "date": {}, "vendor": {}, "total_amount": {}, "gst": {}, "items": {},
	}
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.normalize_sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}

func nullableText(v any) any {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "n/a") {
			return nil
		}
		return s
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return nil
	}
}

func nullableMoney(v any) any {
	switch t := v.(type) {
	case float64:
		return strconv.FormatFloat(t, 'f', 2, 64)
	case string:
		s := parse.CleanAmount(t)
		if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "n/a") {
			return nil
		}
		return s
	default:
		return nil
	}
}
