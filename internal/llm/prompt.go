package llm

import (
	"strconv"
	"strings"
)

// maxPromptChars bounds the page text sent to the model.
const maxPromptChars = 6000

// BuildSystemPrompt describes the output contract and the formatting rules.
func BuildSystemPrompt() string {
	parts := []string{
		"You are an invoice data extraction AI.",
		"Extract structured data from invoice OCR text and return ONLY valid JSON matching the provided JSON Schema.",
		"No explanation. No markdown. No extra text.",
		"Extract ALL line items from the invoice table.",
		"unit_price and total are plain numbers without currency symbols or thousands separators (e.g. \"3500.00\").",
		"quantity is a plain number (e.g. \"10\").",
		"If a field is not found, use null.",
		"Do not include subtotal or tax rows in items.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the page text with its file name and page hints.
func BuildUserPrompt(req ExtractRequest) string {
	var b strings.Builder
	if name := strings.TrimSpace(req.FileName); name != "" {
		b.WriteString("File: ")
		b.WriteString(name)
		b.WriteString("\n")
	}
	if req.Page > 0 {
		b.WriteString("Page: ")
		b.WriteString(strconv.Itoa(req.Page))
		b.WriteString("\n")
	}
	b.WriteString("\nExtract invoice data from this text:\n\n")
	text := strings.TrimSpace(req.Text)
	if r := []rune(text); len(r) > maxPromptChars {
		b.WriteString(string(r[:maxPromptChars]))
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(text)
	}
	return b.String()
}
