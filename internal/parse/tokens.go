package parse

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

var (
	reCode       = regexp.MustCompile(`^\d{6,8}$`)
	reDigitRun   = regexp.MustCompile(`\d{3,}`)
	rePercentage = regexp.MustCompile(`^\d{1,2}%$`)
	reQuantity   = regexp.MustCompile(`^\d{1,3}$`)
	reRowOrdinal = regexp.MustCompile(`^\d{1,2}$`)
	reLetterRun  = regexp.MustCompile(`[A-Za-z]{3,}`)
	reMoneyNoise = regexp.MustCompile(`[₹$\s]|Rs\.?`)
)

var unitWords = map[string]struct{}{
	"roll": {}, "spool": {}, "litre": {}, "liter": {}, "box": {}, "kg": {},
	"piece": {}, "pack": {}, "nos": {}, "set": {}, "mtr": {}, "pcs": {},
	"unit": {}, "bag": {}, "bottle": {}, "sheet": {}, "pair": {},
}

var headerWords = []string{
	"description", "particulars", "hsn", "hsn code", "qty", "quantity",
	"unit price", "amount", "rate", "item", "s.no", "sno", "unit",
}

var exactStops = map[string]struct{}{
	"subtotal:": {}, "sub total:": {}, "grand total:": {}, "round off:": {},
	"total gst:": {}, "payment terms:": {}, "bank details:": {}, "thank you": {},
}

var (
	summaryKeywords = []string{"subtotal", "sub total", "grand total", "round off", "total gst", "bank", "thank"}
	taxKeywords     = []string{"cgst", "sgst", "igst"}
)

// IsCode reports whether the line is a 6–8 digit HSN/tariff code.
func IsCode(line string) bool {
	return reCode.MatchString(strings.TrimSpace(line))
}

// IsAmount reports whether the line looks like money: a thousands separator or
// a decimal point on a token of at least four characters, plus a 3+ digit run.
func IsAmount(line string) bool {
	shaped := strings.Contains(line, ",") || (strings.Contains(line, ".") && utf8.RuneCountInString(line) >= 4)
	return shaped && reDigitRun.MatchString(line)
}

func IsPercentage(line string) bool {
	return rePercentage.MatchString(strings.TrimSpace(line))
}

func IsUnitWord(line string) bool {
	_, ok := unitWords[strings.ToLower(strings.TrimSpace(line))]
	return ok
}

// IsQuantity reports whether the line is a bare 1–3 digit count.
func IsQuantity(line string) bool {
	return reQuantity.MatchString(strings.TrimSpace(line)) && !IsCode(line) && !IsAmount(line)
}

// IsName reports whether the line can carry an item or person name.
func IsName(line string) bool {
	return reLetterRun.MatchString(line) && !IsUnitWord(line) && !IsPercentage(line)
}

// IsRowOrdinal reports whether the line is a stray serial number column value.
func IsRowOrdinal(line string) bool {
	return reRowOrdinal.MatchString(line) && !IsAmount(line)
}

// IsStopMarker reports whether the line closes a line-item table. Summary and
// tax rows are colon-terminated in the source documents; item names never are.
func IsStopMarker(line string) bool {
	t := strings.ToLower(strings.TrimSpace(line))
	if _, ok := exactStops[t]; ok {
		return true
	}
	if !strings.HasSuffix(t, ":") {
		return false
	}
	return containsAny(t, summaryKeywords) || containsAny(t, taxKeywords)
}

// isBareTaxLine matches GST summary rows that lack the trailing colon.
func isBareTaxLine(line string) bool {
	t := strings.ToLower(strings.TrimSpace(line))
	for _, kw := range taxKeywords {
		if strings.HasPrefix(t, kw) {
			return true
		}
	}
	return false
}

// IsHeaderWord reports whether the line is, or contains, a table header word.
func IsHeaderWord(line string) bool {
	t := strings.ToLower(line)
	if slices.Contains(headerWords, strings.Trim(t, "(). ")) {
		return true
	}
	return containsAny(t, headerWords)
}

// CleanAmount strips currency markers, whitespace and thousands separators.
func CleanAmount(s string) string {
	s = reMoneyNoise.ReplaceAllString(s, "")
	return strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
