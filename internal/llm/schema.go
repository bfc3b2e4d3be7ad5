package llm

// BuildInvoiceJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// It is sent to the model as the output contract and used locally to validate.
func BuildInvoiceJSONSchema() map[string]any {
	item := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":       map[string]any{"type": "string", "minLength": 1},
			"hsn":        nullableString(),
			"quantity":   map[string]any{"type": "string", "pattern": `^\d+(\.\d+)?$`},
			"unit":       nullableString(),
			"unit_price": decimalProp(),
			"total":      decimalProp(),
		},
		"required": []string{"name", "unit_price"},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"invoice_number": nullableString(),
			"date":           nullableString(),
			"vendor":         nullableString(),
			"total_amount":   nullableDecimal(),
			"gst":            nullableDecimal(),
			"items":          map[string]any{"type": "array", "items": item},
		},
		"required": []string{"items"},
	}
}

func nullableString() map[string]any {
	return map[string]any{"type": []string{"string", "null"}}
}

func decimalProp() map[string]any {
	return map[string]any{
		"type":    "string",
		"pattern": `^-?\d+(\.\d+)?$`,
	}
}

func nullableDecimal() map[string]any {
	return map[string]any{
		"anyOf": []any{decimalProp(), map[string]any{"type": "null"}},
	}
}
