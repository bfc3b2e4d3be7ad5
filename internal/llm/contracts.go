package llm

import (
	"context"

	"github.com/joseph-ayodele/docfields/internal/parse"
)

// Item is one invoice line as returned by the model.
type Item struct {
	Name      string  `json:"name"`
	HSN       *string `json:"hsn"`
	Quantity  string  `json:"quantity"`
	Unit      *string `json:"unit"`
	UnitPrice string  `json:"unit_price"`
	Total     string  `json:"total"`
}

// InvoiceFields is the normalized shape we want from the LLM.
type InvoiceFields struct {
	InvoiceNumber *string `json:"invoice_number"`
	Date          *string `json:"date"`
	Vendor        *string `json:"vendor"`
	TotalAmount   *string `json:"total_amount"`
	GST           *string `json:"gst"`
	Items         []Item  `json:"items"`
}

// ToParse converts the model output into the rule extractor's record shape.
func (f InvoiceFields) ToParse() parse.InvoiceFields {
	items := make([]parse.TableRow, 0, len(f.Items))
	for _, it := range f.Items {
		row := parse.TableRow{
			Name:      it.Name,
			Quantity:  it.Quantity,
			Unit:      it.Unit,
			UnitPrice: it.UnitPrice,
			Total:     it.Total,
		}
		if it.HSN != nil {
			row.HSN = *it.HSN
		}
		items = append(items, row)
	}
	return parse.InvoiceFields{
		InvoiceNumber: f.InvoiceNumber,
		Date:          f.Date,
		Vendor:        f.Vendor,
		TotalAmount:   f.TotalAmount,
		GST:           f.GST,
		Items:         items,
	}
}

type ExtractRequest struct {
	Text     string
	FileName string
	Page     int
}

// FieldExtractor is the interface the pipeline depends on.
type FieldExtractor interface {
	ExtractInvoice(ctx context.Context, req ExtractRequest) (InvoiceFields, []byte /*rawJSON*/, error)
}
