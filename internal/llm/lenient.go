package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
)

var reDecimal = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// SanitizeItems applies the table row rules to model items so the document
// can still validate: rows without a name or a numeric unit price are
// dropped, quantity defaults to "1" and total defaults to the unit price.
func SanitizeItems(doc []byte) ([]byte, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, nil, err
	}

	var dropped []string
	items, _ := m["items"].([]any)
	kept := make([]any, 0, len(items))
	for i, it := range items {
		row, ok := it.(map[string]any)
		if !ok {
			dropped = append(dropped, fmt.Sprintf("items[%d]", i))
			continue
		}
		name, _ := row["name"].(string)
		price, _ := row["unit_price"].(string)
		if name == "" || !reDecimal.MatchString(price) {
			dropped = append(dropped, fmt.Sprintf("items[%d]", i))
			continue
		}
		if q, _ := row["quantity"].(string); !reDecimal.MatchString(q) {
			row["quantity"] = "1"
		}
		if t, _ := row["total"].(string); !reDecimal.MatchString(t) {
			row["total"] = price
		}
		kept = append(kept, row)
	}
	m["items"] = kept

	b, err := json.Marshal(m)
	if err != nil {
		return nil, nil, err
	}
	return b, dropped, nil
}
