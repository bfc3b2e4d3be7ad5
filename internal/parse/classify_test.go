package parse

import (
	"strings"
	"testing"

	"github.com/joseph-ayodele/docfields/constants"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want constants.DocumentType
	}{
		{"invoice", invoiceText, constants.Invoice},
		{"purchase order", purchaseOrderText, constants.PurchaseOrder},
		{"resume", resumeText, constants.Resume},
		{"id card", idCardText, constants.IDCard},
		{"no keywords", plainText, constants.General},
		{"empty", "", constants.General},
		{"single weak signal", "certifications", constants.General},
		{"student card year range", "Student\nBatch 2021 - 2025\nGPA 3.2", constants.Resume},
		{"year range alone", "Valid 2023–2027", constants.IDCard},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.text); got != tc.want {
				t.Errorf("Classify() = %v, want %v (scores %v)", got, tc.want, defaultClassifier.Score(tc.text))
			}
		})
	}
}

func TestClassifyTieBreak(t *testing.T) {
	// invoice +3, purchase_order +3
	text := "invoice\npo number"
	scores := defaultClassifier.Score(text)
	if scores[constants.Invoice] != scores[constants.PurchaseOrder] {
		t.Fatalf("scores = %v, want invoice and purchase_order tied", scores)
	}
	if got := Classify(text); got != constants.Invoice {
		t.Errorf("Classify() = %v, want %v", got, constants.Invoice)
	}
}

func TestClassifyLegacyScheme(t *testing.T) {
	c := NewClassifier(ClassifierConfig{Scheme: SchemeLegacy})
	if c.Scheme() != SchemeLegacy {
		t.Fatalf("Scheme() = %v, want %v", c.Scheme(), SchemeLegacy)
	}
	tests := []struct {
		text string
		want constants.DocumentType
	}{
		{"Total amount due", constants.Invoice},
		{"Roll No 42", constants.IDCard},
		{"Skills: Go", constants.Resume},
		{"purchase order", constants.General},
		{"", constants.General},
	}
	for _, tc := range tests {
		if got := c.Classify(tc.text); got != tc.want {
			t.Errorf("Classify(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
	if _, ok := c.Score("purchase order")[constants.PurchaseOrder]; ok {
		t.Errorf("legacy scores contain purchase_order")
	}
}

func TestParseScheme(t *testing.T) {
	for in, want := range map[string]Scheme{"": SchemeStandard, "Standard": SchemeStandard, " legacy ": SchemeLegacy} {
		got, err := ParseScheme(in)
		if err != nil || got != want {
			t.Errorf("ParseScheme(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseScheme("bayes"); err == nil {
		t.Errorf("ParseScheme(bayes) error = nil, want error")
	}
}

func TestScoreMonotonic(t *testing.T) {
	keywords := map[constants.DocumentType][]string{
		constants.Invoice:       {"invoice", "bill to", "invoice no", "invoice number"},
		constants.PurchaseOrder: {"purchase order", "po number", "po-1", "delivery date"},
		constants.Resume:        {"curriculum vitae", "work experience", "education skills", "cgpa", "certifications"},
		constants.IDCard:        {"identity card", "employee id", "valid until", "designation department", "blood group", "2020-2024"},
	}
	for _, base := range []string{"", plainText, invoiceText, resumeText} {
		for dt, kws := range keywords {
			text := base
			prev := defaultClassifier.Score(text)[dt]
			for _, kw := range kws {
				text += "\n" + strings.ToUpper(kw)
				got := defaultClassifier.Score(text)[dt]
				if got < prev {
					t.Errorf("score[%v] dropped from %d to %d after adding %q", dt, prev, got, kw)
				}
				prev = got
			}
		}
	}
}

func TestScoreDeterministic(t *testing.T) {
	for _, text := range []string{invoiceText, purchaseOrderText, resumeText, idCardText, plainText} {
		a, b := defaultClassifier.Score(text), defaultClassifier.Score(text)
		for dt, v := range a {
			if b[dt] != v {
				t.Errorf("Score()[%v] = %d then %d", dt, v, b[dt])
			}
		}
	}
}
