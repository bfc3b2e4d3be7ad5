package parse

import (
	"regexp"

	mapset "github.com/deckarep/golang-set/v2"
)

var reCurrencyAmount = regexp.MustCompile(`(?:Rs\.?|₹|\$)\s?\d[\d,]+(?:\.\d+)?`)

// ExtractGeneral is the fallback for unclassified text: the first line as a
// possible name plus every distinct email, phone number and currency amount,
// in order of first appearance.
func ExtractGeneral(text string) GeneralFields {
	return GeneralFields{
		PossibleName: firstLine(text),
		Emails:       distinct(reEmail.FindAllString(text, -1)),
		Phones:       distinct(rePhone.FindAllString(text, -1)),
		Amounts:      distinct(reCurrencyAmount.FindAllString(text, -1)),
	}
}

func distinct(values []string) []string {
	seen := mapset.NewThreadUnsafeSet[string]()
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen.Add(v) {
			out = append(out, v)
		}
	}
	return out
}
