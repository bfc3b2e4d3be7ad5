package constants

import (
	"strings"
)

// DocumentType is the closed set of document kinds the extractors understand.
type DocumentType string

const (
	Invoice       DocumentType = "invoice"
	PurchaseOrder DocumentType = "purchase_order"
	Resume        DocumentType = "resume"
	IDCard        DocumentType = "id_card"
	General       DocumentType = "general"
)

// allDocumentTypes is also the classifier tie-break order.
var allDocumentTypes = []DocumentType{
	Invoice,
	PurchaseOrder,
	Resume,
	IDCard,
	General,
}

// DocumentTypes returns every type in tie-break order, general last.
func DocumentTypes() []DocumentType {
	out := make([]DocumentType, len(allDocumentTypes))
	copy(out, allDocumentTypes)
	return out
}

func AsStringSlice() []string {
	result := make([]string, len(allDocumentTypes))
	for i, dt := range allDocumentTypes {
		result[i] = string(dt)
	}
	return result
}

// ParseDocumentType maps user input onto a DocumentType. Unknown input yields
// General and false.
func ParseDocumentType(input string) (DocumentType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return General, false
	}

	synonyms := map[string]DocumentType{
		"id":             IDCard,
		"idcard":         IDCard,
		"id-card":        IDCard,
		"po":             PurchaseOrder,
		"purchase-order": PurchaseOrder,
		"cv":             Resume,
		"bill":           Invoice,
	}
	if dt, ok := synonyms[normalized]; ok {
		return dt, true
	}

	for _, dt := range allDocumentTypes {
		if normalized == string(dt) {
			return dt, true
		}
	}
	return General, false
}

// HasLineItems reports whether documents of this type carry a line-item table.
func (d DocumentType) HasLineItems() bool {
	return d == Invoice || d == PurchaseOrder
}
