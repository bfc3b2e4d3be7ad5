package parse

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joseph-ayodele/docfields/constants"
)

// Extractor bundles a classifier with table options. It is immutable after
// construction and safe for concurrent use.
type Extractor struct {
	classifier *Classifier
	opts       Options
}

// NewExtractor returns an Extractor. A nil classifier means the standard scheme.
func NewExtractor(classifier *Classifier, opts Options) *Extractor {
	if classifier == nil {
		classifier = NewClassifier(ClassifierConfig{})
	}
	return &Extractor{classifier: classifier, opts: opts}
}

var defaultExtractor = NewExtractor(nil, Options{})

// Extract runs the extractor for docType with the default options.
func Extract(docType constants.DocumentType, text string, lineItems []LineItem) Record {
	return defaultExtractor.Extract(docType, text, lineItems)
}

func (e *Extractor) Classifier() *Classifier { return e.classifier }

func (e *Extractor) Classify(text string) constants.DocumentType {
	return e.classifier.Classify(text)
}

// Extract builds the record for docType. When lineItems are given, each
// resolved scalar is paired with the polygon of the OCR line it came from.
func (e *Extractor) Extract(docType constants.DocumentType, text string, lineItems []LineItem) Record {
	fields := e.fields(docType, text)
	rec := Record{Type: fields.DocumentType(), Fields: fields}
	if len(lineItems) > 0 {
		rec.Boxes = FieldBoxes(fields, lineItems)
	}
	return rec
}

// ExtractAuto classifies text and then extracts it.
func (e *Extractor) ExtractAuto(text string, lineItems []LineItem) Record {
	return e.Extract(e.Classify(text), text, lineItems)
}

func (e *Extractor) fields(docType constants.DocumentType, text string) Fields {
	switch docType {
	case constants.Invoice:
		return e.opts.ExtractInvoice(text)
	case constants.PurchaseOrder:
		return e.opts.ExtractPurchaseOrder(text)
	case constants.Resume:
		return ExtractResume(text)
	case constants.IDCard:
		return ExtractIDCard(text)
	case constants.General:
		return ExtractGeneral(text)
	default:
		return ExtractGeneral(text)
	}
}

// LocateBoundingBox returns the polygon of the first line item whose text
// contains value, ignoring case, or nil.
func LocateBoundingBox(value string, lineItems []LineItem) Polygon {
	needle := strings.ToLower(strings.TrimSpace(value))
	if needle == "" {
		return nil
	}
	for _, li := range lineItems {
		if strings.Contains(strings.ToLower(li.Text), needle) {
			return li.Polygon
		}
	}
	return nil
}

// FieldBoxes locates every resolved scalar of fields among lineItems. Fields
// that resolve to no polygon are left out.
func FieldBoxes(fields Fields, lineItems []LineItem) map[string]Polygon {
	boxes := make(map[string]Polygon)
	for name, v := range fields.Scalars() {
		if v == nil {
			continue
		}
		if p := LocateBoundingBox(*v, lineItems); len(p) > 0 {
			boxes[name] = p
		}
	}
	return boxes
}

// MergeInvoice combines rule-extracted invoice fields with an alternate
// filler's. Rule values win; the alternate only fills scalars the rules left
// null. Reconstructed table rows are kept whenever there are any.
func MergeInvoice(rules, alt InvoiceFields) InvoiceFields {
	out := rules
	out.InvoiceNumber = coalesce(rules.InvoiceNumber, alt.InvoiceNumber)
	out.Date = coalesce(rules.Date, alt.Date)
	out.Vendor = coalesce(rules.Vendor, alt.Vendor)
	out.TotalAmount = coalesce(rules.TotalAmount, alt.TotalAmount)
	out.GST = coalesce(rules.GST, alt.GST)
	if len(rules.Items) == 0 && len(alt.Items) > 0 {
		out.Items = alt.Items
	}
	if out.Items == nil {
		out.Items = make([]TableRow, 0)
	}
	return out
}

func coalesce(a, b *string) *string {
	if a != nil {
		return a
	}
	return b
}

// UnmarshalJSON decodes doc_type first and then the matching fields struct.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type   constants.DocumentType `json:"doc_type"`
		Fields json.RawMessage        `json:"fields"`
		Boxes  map[string]Polygon     `json:"boxes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	fields, err := decodeFields(raw.Type, raw.Fields)
	if err != nil {
		return err
	}
	r.Type = raw.Type
	r.Fields = fields
	r.Boxes = raw.Boxes
	return nil
}

func decodeFields(docType constants.DocumentType, data json.RawMessage) (Fields, error) {
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	switch docType {
	case constants.Invoice:
		var f InvoiceFields
		err := json.Unmarshal(data, &f)
		return f, err
	case constants.PurchaseOrder:
		var f PurchaseOrderFields
		err := json.Unmarshal(data, &f)
		return f, err
	case constants.Resume:
		var f ResumeFields
		err := json.Unmarshal(data, &f)
		return f, err
	case constants.IDCard:
		var f IDCardFields
		err := json.Unmarshal(data, &f)
		return f, err
	case constants.General:
		var f GeneralFields
		err := json.Unmarshal(data, &f)
		return f, err
	default:
		return nil, fmt.Errorf("unknown doc_type %q", docType)
	}
}
