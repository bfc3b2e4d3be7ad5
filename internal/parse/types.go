package parse

import (
	"strings"

	"github.com/joseph-ayodele/docfields/constants"
)

// TextLine is one non-empty, trimmed line of extracted text. Ordinal is the
// line's position among the kept lines and is the only ordering signal.
type TextLine struct {
	Content string
	Ordinal int
}

// SplitLines splits text on newlines, trims each line and drops empty ones.
func SplitLines(text string) []TextLine {
	raw := strings.Split(text, "\n")
	lines := make([]TextLine, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		lines = append(lines, TextLine{Content: l, Ordinal: len(lines)})
	}
	return lines
}

func firstLine(text string) *string {
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			return &l
		}
	}
	return nil
}

// Point is a vertex of an OCR bounding polygon, in source pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Polygon []Point

// LineItem is an OCR line with its recognition confidence (0..1) and optional
// bounding polygon. It never drives parsing; it only locates fields for audit.
type LineItem struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Polygon    Polygon `json:"bbox,omitempty"`
}

// TableRow is one reconstructed line item of an invoice or purchase order.
type TableRow struct {
	Name      string  `json:"name"`
	HSN       string  `json:"hsn"`
	Quantity  string  `json:"quantity"`
	Unit      *string `json:"unit"`
	UnitPrice string  `json:"unit_price"`
	Total     string  `json:"total"`
}

// Fields is the structured output of one per-type extractor.
type Fields interface {
	DocumentType() constants.DocumentType
	// Scalars lists the single-valued fields by JSON name, nil when unresolved.
	Scalars() map[string]*string
}

type InvoiceFields struct {
	InvoiceNumber *string    `json:"invoice_number"`
	Date          *string    `json:"date"`
	Vendor        *string    `json:"vendor"`
	TotalAmount   *string    `json:"total_amount"`
	GST           *string    `json:"gst"`
	Items         []TableRow `json:"items"`
}

func (InvoiceFields) DocumentType() constants.DocumentType { return constants.Invoice }

func (f InvoiceFields) Scalars() map[string]*string {
	return map[string]*string{
		"invoice_number": f.InvoiceNumber,
		"date":           f.Date,
		"vendor":         f.Vendor,
		"total_amount":   f.TotalAmount,
		"gst":            f.GST,
	}
}

type PurchaseOrderFields struct {
	PONumber     *string    `json:"po_number"`
	Date         *string    `json:"date"`
	DeliveryDate *string    `json:"delivery_date"`
	Vendor       *string    `json:"vendor"`
	PaymentTerms *string    `json:"payment_terms"`
	TotalAmount  *string    `json:"total_amount"`
	GST          *string    `json:"gst"`
	Items        []TableRow `json:"items"`
}

func (PurchaseOrderFields) DocumentType() constants.DocumentType { return constants.PurchaseOrder }

func (f PurchaseOrderFields) Scalars() map[string]*string {
	return map[string]*string{
		"po_number":     f.PONumber,
		"date":          f.Date,
		"delivery_date": f.DeliveryDate,
		"vendor":        f.Vendor,
		"payment_terms": f.PaymentTerms,
		"total_amount":  f.TotalAmount,
		"gst":           f.GST,
	}
}

type ResumeFields struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
	Score *string `json:"score"`
}

func (ResumeFields) DocumentType() constants.DocumentType { return constants.Resume }

func (f ResumeFields) Scalars() map[string]*string {
	return map[string]*string{
		"name":  f.Name,
		"email": f.Email,
		"phone": f.Phone,
		"score": f.Score,
	}
}

type IDCardFields struct {
	Name          *string `json:"name"`
	EmployeeID    *string `json:"employee_id"`
	Designation   *string `json:"designation"`
	Department    *string `json:"department"`
	DateOfJoining *string `json:"date_of_joining"`
	ValidUntil    *string `json:"valid_until"`
	BloodGroup    *string `json:"blood_group"`
}

func (IDCardFields) DocumentType() constants.DocumentType { return constants.IDCard }

func (f IDCardFields) Scalars() map[string]*string {
	return map[string]*string{
		"name":            f.Name,
		"employee_id":     f.EmployeeID,
		"designation":     f.Designation,
		"department":      f.Department,
		"date_of_joining": f.DateOfJoining,
		"valid_until":     f.ValidUntil,
		"blood_group":     f.BloodGroup,
	}
}

type GeneralFields struct {
	PossibleName *string  `json:"possible_name"`
	Emails       []string `json:"emails"`
	Phones       []string `json:"phones"`
	Amounts      []string `json:"amounts"`
}

func (GeneralFields) DocumentType() constants.DocumentType { return constants.General }

func (f GeneralFields) Scalars() map[string]*string {
	return map[string]*string{"possible_name": f.PossibleName}
}

// Record is the result of one extraction call.
type Record struct {
	Type   constants.DocumentType `json:"doc_type"`
	Fields Fields                 `json:"fields"`
	// Boxes maps a scalar field name to the OCR polygon it was found on.
	Boxes map[string]Polygon `json:"boxes,omitempty"`
}

func strPtr(s string) *string { return &s }
