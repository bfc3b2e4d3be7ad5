package parse

import (
	"regexp"
	"strings"
)

var (
	poNumberRule     = NewPattern(`PO[\s\-]*(?:Number|No|#)[:\s]*([A-Za-z0-9\-/]+)`)
	poDateRule       = NewPattern(`PO\s*Date[:\s]*` + dateExpr)
	deliveryDateRule = NewPattern(`Delivery\s*Date[:\s]*` + dateExpr)
	paymentTermsRule = NewPattern(`Payment\s*Terms[:\s]*([^\n]{3,40})`)

	reVendorMarker = regexp.MustCompile(`(?i)vendor\s*:`)
	reVendorSkip   = regexp.MustCompile(`(?i)^(po |invoice|date|delivery|payment|shipping|gstin|gst)`)
)

// vendorWindow is how many lines after "Vendor:" may hold the vendor name.
const vendorWindow = 5

// ExtractPurchaseOrder pulls purchase order scalars and line items from text.
// Totals and GST follow the invoice rules.
func (o Options) ExtractPurchaseOrder(text string) PurchaseOrderFields {
	return PurchaseOrderFields{
		PONumber:     poNumberRule.Find(text),
		Date:         poDateRule.Find(text),
		DeliveryDate: deliveryDateRule.Find(text),
		Vendor:       markedVendor(SplitLines(text)),
		PaymentTerms: paymentTermsRule.Find(text),
		TotalAmount:  findTotal(text),
		GST:          findGST(text),
		Items:        o.ParseTable(text),
	}
}

func markedVendor(lines []TextLine) *string {
	for i, l := range lines {
		if !reVendorMarker.MatchString(l.Content) {
			continue
		}
		end := min(i+1+vendorWindow, len(lines))
		for _, next := range lines[i+1 : end] {
			c := next.Content
			if reVendorSkip.MatchString(c) || strings.HasSuffix(c, ":") {
				continue
			}
			if reLetterRun.MatchString(c) && len(c) > 4 {
				return strPtr(c)
			}
		}
		return nil
	}
	return nil
}
