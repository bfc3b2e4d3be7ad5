package llm

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestStripCodeFences(t *testing.T) {
	tests := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{}\n```":            `{}`,
		`  {"a":1} `:              `{"a":1}`,
	}
	for in, want := range tests {
		if got := StripCodeFences(in); got != want {
			t.Errorf("StripCodeFences(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeAndSanitizeJSON(t *testing.T) {
	raw := []byte(`{
		"invoice_number": " INV-7 ",
		"date": "",
		"vendor": "N/A",
		"total_amount": "Rs. 1,500.00",
		"gst": 270,
		"items": [{"name": " Widget ", "quantity": 2, "unit_price": "₹750", "total": 1500}],
		"notes": "thanks"
	}`)
	out, dropped, err := NormalizeAndSanitizeJSON(raw, nil)
	if err != nil {
		t.Fatalf("NormalizeAndSanitizeJSON() = %v", err)
	}
	if len(dropped) != 1 || dropped[0] != "notes(unknown)" {
		t.Errorf("dropped = %v, want [notes(unknown)]", dropped)
	}
	var f InvoiceFields
	if err := json.Unmarshal(out, &f); err != nil {
		t.Fatal(err)
	}
	if f.InvoiceNumber == nil || *f.InvoiceNumber != "INV-7" {
		t.Errorf("invoice_number = %v", f.InvoiceNumber)
	}
	if f.Date != nil || f.Vendor != nil {
		t.Errorf("date, vendor = %v, %v, want nil", f.Date, f.Vendor)
	}
	if *f.TotalAmount != "1500.00" || *f.GST != "270.00" {
		t.Errorf("total_amount, gst = %q, %q", *f.TotalAmount, *f.GST)
	}
	want := Item{Name: "Widget", Quantity: "2", UnitPrice: "750", Total: "1500.00"}
	if len(f.Items) != 1 || f.Items[0].Name != want.Name || f.Items[0].Quantity != want.Quantity ||
		f.Items[0].UnitPrice != want.UnitPrice || f.Items[0].Total != want.Total {
		t.Errorf("items = %+v, want [%+v]", f.Items, want)
	}
	if err := ValidateJSONAgainstSchema(BuildInvoiceJSONSchema(), out); err != nil {
		t.Errorf("sanitized document does not validate: %v", err)
	}
}

func TestSanitizeItems(t *testing.T) {
	doc := []byte(`{"items":[{"name":"Widget","unit_price":"10.00"},{"name":"Subtotal"},{"name":"","unit_price":"1"},"junk"]}`)
	out, dropped, err := SanitizeItems(doc)
	if err != nil {
		t.Fatalf("SanitizeItems() = %v", err)
	}
	if len(dropped) != 3 {
		t.Errorf("dropped = %v, want 3 entries", dropped)
	}
	var f InvoiceFields
	if err := json.Unmarshal(out, &f); err != nil {
		t.Fatal(err)
	}
	if len(f.Items) != 1 || f.Items[0].Quantity != "1" || f.Items[0].Total != "10.00" {
		t.Errorf("items = %+v, want defaulted Widget row", f.Items)
	}
}

func TestValidateJSONAgainstSchema(t *testing.T) {
	schema := BuildInvoiceJSONSchema()
	if err := ValidateJSONAgainstSchema(schema, []byte(`{"invoice_number":null,"items":[]}`)); err != nil {
		t.Errorf("valid document rejected: %v", err)
	}
	if err := ValidateJSONAgainstSchema(schema, []byte(`{"items":[{"name":"x"}]}`)); err == nil {
		t.Errorf("item without unit_price accepted")
	}
	if err := ValidateJSONAgainstSchema(schema, []byte(`{"items":[],"extra":1}`)); err == nil {
		t.Errorf("unknown key accepted")
	}
}

func TestInvoiceSchemaValidate(t *testing.T) {
	s, err := InvoiceSchema()
	if err != nil {
		t.Fatalf("InvoiceSchema() error = %v", err)
	}
	if again, _ := InvoiceSchema(); again != s {
		t.Errorf("InvoiceSchema() compiled twice")
	}
	tests := []struct {
		name     string
		data     string
		mismatch bool
		ok       bool
	}{
		{"valid", `{"invoice_number":"INV-1","items":[]}`, false, true},
		{"missing unit price", `{"items":[{"name":"x"}]}`, true, false},
		{"not json", `{"items":`, false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := s.Validate([]byte(tc.data))
			if tc.ok {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if got := errors.Is(err, ErrSchemaMismatch); got != tc.mismatch {
				t.Errorf("errors.Is(ErrSchemaMismatch) = %v, want %v (err %v)", got, tc.mismatch, err)
			}
		})
	}
}

func TestInvoiceFieldsToParse(t *testing.T) {
	hsn := "520811"
	f := InvoiceFields{Items: []Item{{Name: "Cotton", HSN: &hsn, Quantity: "1", UnitPrice: "5", Total: "5"}}}
	got := f.ToParse()
	if len(got.Items) != 1 || got.Items[0].HSN != "520811" {
		t.Errorf("ToParse().Items = %+v", got.Items)
	}
	if got := (InvoiceFields{}).ToParse(); got.Items == nil {
		t.Errorf("ToParse().Items = nil, want empty slice")
	}
}

func TestBuildUserPromptTruncates(t *testing.T) {
	p := BuildUserPrompt(ExtractRequest{Text: strings.Repeat("x", maxPromptChars+10), FileName: "a.pdf", Page: 2})
	if !strings.Contains(p, "File: a.pdf\nPage: 2\n") || !strings.HasSuffix(p, "…(truncated)") {
		t.Errorf("BuildUserPrompt() = %q...", p[:40])
	}
}
