package parse

import "testing"

func TestTokenPredicates(t *testing.T) {
	tests := []struct {
		line       string
		code       bool
		amount     bool
		percentage bool
		unit       bool
		quantity   bool
		name       bool
	}{
		{line: "520811", code: true},
		{line: "85444910", code: true},
		{line: "12345"},
		{line: "3500.00", amount: true},
		{line: "1,200.00", amount: true},
		{line: "₹1,500", amount: true},
		{line: "2.5"},
		{line: "18%", percentage: true},
		{line: "100%"},
		{line: "Roll", unit: true},
		{line: "pcs", unit: true},
		{line: "10", quantity: true},
		{line: "999", quantity: true},
		{line: "1000"},
		{line: "Cotton Fabric", name: true},
		{line: "Copper Wire 2.5mm", name: true},
		{line: "ab"},
	}
	for _, tc := range tests {
		t.Run(tc.line, func(t *testing.T) {
			if got := IsCode(tc.line); got != tc.code {
				t.Errorf("IsCode(%q) = %v, want %v", tc.line, got, tc.code)
			}
			if got := IsAmount(tc.line); got != tc.amount {
				t.Errorf("IsAmount(%q) = %v, want %v", tc.line, got, tc.amount)
			}
			if got := IsPercentage(tc.line); got != tc.percentage {
				t.Errorf("IsPercentage(%q) = %v, want %v", tc.line, got, tc.percentage)
			}
			if got := IsUnitWord(tc.line); got != tc.unit {
				t.Errorf("IsUnitWord(%q) = %v, want %v", tc.line, got, tc.unit)
			}
			if got := IsQuantity(tc.line); got != tc.quantity {
				t.Errorf("IsQuantity(%q) = %v, want %v", tc.line, got, tc.quantity)
			}
			if got := IsName(tc.line); got != tc.name {
				t.Errorf("IsName(%q) = %v, want %v", tc.line, got, tc.name)
			}
		})
	}
}

func TestIsStopMarker(t *testing.T) {
	tests := map[string]bool{
		"Subtotal:":          true,
		"GRAND TOTAL:":       true,
		"Thank you":          true,
		"Bank Details:":      true,
		"CGST @ 9%:":         true,
		"IGST (18%):":        true,
		"CGST 9%":            false,
		"Thank you for your": false,
		"Cotton Fabric":      false,
		"Total":              false,
	}
	for line, want := range tests {
		if got := IsStopMarker(line); got != want {
			t.Errorf("IsStopMarker(%q) = %v, want %v", line, got, want)
		}
	}
}

func TestIsHeaderWord(t *testing.T) {
	tests := map[string]bool{
		"Description":            true,
		"(Qty)":                  true,
		"S.No":                   true,
		"Description Qty Amount": true,
		"HSN Code":               true,
		"Cotton Fabric":          false,
		"520811":                 false,
	}
	for line, want := range tests {
		if got := IsHeaderWord(line); got != want {
			t.Errorf("IsHeaderWord(%q) = %v, want %v", line, got, want)
		}
	}
}

func TestCleanAmount(t *testing.T) {
	tests := map[string]string{
		"Rs. 1,500.00": "1500.00",
		"Rs 250":       "250",
		"₹ 12,34,567":  "1234567",
		"$99.99":       "99.99",
		"3500.00":      "3500.00",
	}
	for in, want := range tests {
		if got := CleanAmount(in); got != want {
			t.Errorf("CleanAmount(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSplitLines(t *testing.T) {
	lines := SplitLines("  first \n\n\t\nsecond\r\n third")
	want := []string{"first", "second", "third"}
	if len(lines) != len(want) {
		t.Fatalf("len(lines) = %d, want %d", len(lines), len(want))
	}
	for i, l := range lines {
		if l.Content != want[i] {
			t.Errorf("lines[%d].Content = %q, want %q", i, l.Content, want[i])
		}
		if l.Ordinal != i {
			t.Errorf("lines[%d].Ordinal = %d, want %d", i, l.Ordinal, i)
		}
	}
}
