package parse

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	amountExpr = `(?:Rs\.?|₹|\$)\s*([\d,]+(?:\.\d+)?)`
	dateExpr   = `(\d{1,2}[\s\-/][A-Za-z]{3,9}[\s\-/]\d{2,4}|\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`
)

var (
	invoiceNumberRule = NewPattern(`Invoice\s*(?:Number|No|#|Num|No\.)[:\s/]*([A-Za-z0-9\-/]+)`)
	invoiceDateRule   = NewPattern(`\b(?:Invoice\s*Date|Date)\b[\s:]*` + dateExpr)

	grandTotalRule = Money(NewPattern(`Grand\s*Total[:\s]*` + amountExpr))
	reTotal        = regexp.MustCompile(`(?i)\bTotal\b[\s:]*` + amountExpr)

	statedGSTRule = FirstOf(
		Money(NewPattern(`Total\s*GST[:\s]*`+amountExpr)),
		Money(NewPattern(`IGST[^:\n]*[:\s]*`+amountExpr)),
	)
	cgstRule = NewPattern(`CGST[^:\n]*[:\s]*` + amountExpr)
	sgstRule = NewPattern(`SGST[^:\n]*[:\s]*` + amountExpr)

	reBillTo          = regexp.MustCompile(`(?i)bill\s*to`)
	reInvoiceLabel    = regexp.MustCompile(`(?i)^(invoice|due|gstin|gst|po |phone|email|date|payment|bill|no\.|number|#|inv[/\-])`)
	reSlashIdentifier = regexp.MustCompile(`^[A-Za-z0-9/\-]+$`)
)

// billToWindow is how many lines after "Bill To" may hold the vendor.
const billToWindow = 7

// ExtractInvoice pulls invoice scalars from text and the line items from its
// table.
func (o Options) ExtractInvoice(text string) InvoiceFields {
	return InvoiceFields{
		InvoiceNumber: invoiceNumberRule.Find(text),
		Date:          invoiceDateRule.Find(text),
		Vendor:        billToVendor(SplitLines(text)),
		TotalAmount:   findTotal(text),
		GST:           findGST(text),
		Items:         o.ParseTable(text),
	}
}

// findTotal prefers the Grand Total; otherwise the last Total-labelled amount.
func findTotal(text string) *string {
	if v := grandTotalRule.Find(text); v != nil {
		return v
	}
	all := reTotal.FindAllStringSubmatch(text, -1)
	if len(all) == 0 {
		return nil
	}
	v := CleanAmount(all[len(all)-1][1])
	if v == "" {
		return nil
	}
	return &v
}

// findGST prefers an explicit Total GST, then IGST, then CGST + SGST. A label
// whose amount cleans to nothing counts as unmatched.
func findGST(text string) *string {
	if v := statedGSTRule.Find(text); v != nil {
		return v
	}
	cgst, sgst := cgstRule.Find(text), sgstRule.Find(text)
	if cgst == nil || sgst == nil {
		return nil
	}
	cgstAmount := CleanAmount(*cgst)
	if cgstAmount == "" {
		return nil
	}
	c, errC := strconv.ParseFloat(cgstAmount, 64)
	s, errS := strconv.ParseFloat(CleanAmount(*sgst), 64)
	if errC != nil || errS != nil {
		return &cgstAmount
	}
	return strPtr(strconv.FormatFloat(c+s, 'f', 2, 64))
}

// billToVendor takes the first plausible name after the first "Bill To" line,
// skipping label lines and invoice-number-like tokens such as INV/2025/0118.
func billToVendor(lines []TextLine) *string {
	for i, l := range lines {
		if !reBillTo.MatchString(l.Content) {
			continue
		}
		end := min(i+1+billToWindow, len(lines))
		for _, next := range lines[i+1 : end] {
			c := next.Content
			if reInvoiceLabel.MatchString(c) {
				continue
			}
			if reSlashIdentifier.MatchString(c) && strings.Contains(c, "/") {
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
