package parse

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/joseph-ayodele/docfields/constants"
)

func deref(p *string) string {
	if p == nil {
		return "<nil>"
	}
	return *p
}

func checkScalars(t *testing.T, fields Fields, want map[string]string) {
	t.Helper()
	got := fields.Scalars()
	for name, w := range want {
		if g := deref(got[name]); g != w {
			t.Errorf("%s = %q, want %q", name, g, w)
		}
	}
}

func TestExtractInvoice(t *testing.T) {
	rec := Extract(Classify(invoiceText), invoiceText, nil)
	if rec.Type != constants.Invoice {
		t.Fatalf("Type = %v, want %v", rec.Type, constants.Invoice)
	}
	checkScalars(t, rec.Fields, map[string]string{
		"invoice_number": "INV/2025/0118",
		"date":           "12-Mar-2025",
		"vendor":         "Sharma Textiles Pvt Ltd",
		"total_amount":   "48380.00",
		"gst":            "7380.00",
	})
	if got := len(rec.Fields.(InvoiceFields).Items); got != 2 {
		t.Errorf("len(items) = %d, want 2", got)
	}
}

func TestExtractInvoiceScenario(t *testing.T) {
	text := "Invoice No: INV/2025/0118\nGrand Total: Rs. 1,500.00"
	if got := Classify(text); got != constants.Invoice {
		t.Fatalf("Classify() = %v, want %v", got, constants.Invoice)
	}
	rec := Extract(constants.Invoice, text, nil)
	checkScalars(t, rec.Fields, map[string]string{
		"invoice_number": "INV/2025/0118",
		"total_amount":   "1500.00",
		"gst":            "<nil>",
		"vendor":         "<nil>",
	})
}

func TestInvoiceTotalAndGSTFallbacks(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantTotal string
		wantGST   string
	}{
		{"last total", "Total: Rs. 100.00\nTotal: Rs. 250.00", "250.00", "<nil>"},
		{"total gst first", "IGST: Rs. 10\nTotal GST: Rs. 18.00", "<nil>", "18.00"},
		{"igst", "IGST @ 18%: ₹ 1,800.00", "<nil>", "1800.00"},
		{"cgst only", "CGST: Rs. 45.00", "<nil>", "<nil>"},
		{"cgst plus sgst", "CGST: Rs. 45.00\nSGST: Rs. 45.50", "<nil>", "90.50"},
		{"blank total gst falls to igst", "Total GST: Rs. ,\nIGST: Rs. 1,800.00", "<nil>", "1800.00"},
		{"blank igst falls to cgst sgst", "IGST: Rs. ,\nCGST: Rs. 9.00\nSGST: Rs. 9.00", "<nil>", "18.00"},
		{"blank total gst alone", "Total GST: Rs. ,", "<nil>", "<nil>"},
		{"blank igst alone", "IGST: Rs. ,", "<nil>", "<nil>"},
		{"blank cgst", "CGST: Rs. ,\nSGST: Rs. 5.00", "<nil>", "<nil>"},
		{"unparsable sgst keeps cgst", "CGST: Rs. 45.00\nSGST: Rs. ,", "<nil>", "45.00"},
		{"blank grand total", "Grand Total: Rs. ,", "<nil>", "<nil>"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := Options{}.ExtractInvoice(tc.text)
			if got := deref(f.TotalAmount); got != tc.wantTotal {
				t.Errorf("total_amount = %q, want %q", got, tc.wantTotal)
			}
			if got := deref(f.GST); got != tc.wantGST {
				t.Errorf("gst = %q, want %q", got, tc.wantGST)
			}
		})
	}
}

func TestBillToVendorSkipsIdentifiers(t *testing.T) {
	text := "Bill To:\nINV/2025/0118\nInvoice Date: 01/01/2025\nAcme Corp Ltd"
	if got := deref(Options{}.ExtractInvoice(text).Vendor); got != "Acme Corp Ltd" {
		t.Errorf("vendor = %q, want %q", got, "Acme Corp Ltd")
	}
}

func TestExtractPurchaseOrder(t *testing.T) {
	rec := Extract(Classify(purchaseOrderText), purchaseOrderText, nil)
	if rec.Type != constants.PurchaseOrder {
		t.Fatalf("Type = %v, want %v", rec.Type, constants.PurchaseOrder)
	}
	checkScalars(t, rec.Fields, map[string]string{
		"po_number":     "PO-2025-0031",
		"date":          "05/02/2025",
		"delivery_date": "20/02/2025",
		"vendor":        "Bharat Cable Industries",
		"payment_terms": "Net 30 days",
		"total_amount":  "57820.00",
		"gst":           "8820.00",
	})
	items := rec.Fields.(PurchaseOrderFields).Items
	want := []TableRow{{Name: "Copper Wire 2.5mm", HSN: "854449", Quantity: "20", Unit: strPtr("roll"), UnitPrice: "2450.00", Total: "49000.00"}}
	if !reflect.DeepEqual(items, want) {
		t.Errorf("items = %+v, want %+v", items, want)
	}
}

func TestExtractResume(t *testing.T) {
	rec := Extract(Classify(resumeText), resumeText, nil)
	if rec.Type != constants.Resume {
		t.Fatalf("Type = %v, want %v", rec.Type, constants.Resume)
	}
	checkScalars(t, rec.Fields, map[string]string{
		"name":  "Priya Sharma",
		"email": "priya.sharma@example.com",
		"phone": "+91 98765 43210",
		"score": "8.7/10",
	})
}

func TestExtractIDCard(t *testing.T) {
	rec := Extract(Classify(idCardText), idCardText, nil)
	if rec.Type != constants.IDCard {
		t.Fatalf("Type = %v, want %v", rec.Type, constants.IDCard)
	}
	checkScalars(t, rec.Fields, map[string]string{
		"name":            "Ananya Rao",
		"employee_id":     "NS-EMP-2024-0042",
		"designation":     "Senior Analyst",
		"department":      "Finance",
		"date_of_joining": "01/04/2024",
		"valid_until":     "31/03/2027",
		"blood_group":     "B+",
	})
}

func TestIDCardLabelThenNextLine(t *testing.T) {
	tests := []struct {
		name string
		text string
		want map[string]string
	}{
		{
			name: "employee id on next line",
			text: "Employee ID:\nNS-EMP-2024-0042",
			want: map[string]string{"employee_id": "NS-EMP-2024-0042"},
		},
		{
			name: "value on label line is not read",
			text: "Employee ID: NS-1\nDepartment: Sales",
			want: map[string]string{"employee_id": "<nil>", "department": "<nil>"},
		},
		{
			name: "alternate labels",
			text: "Name:\nRavi Kumar\nRoll No:\n21CS042\nValidity:\nJune 2026",
			want: map[string]string{"name": "Ravi Kumar", "employee_id": "21CS042", "valid_until": "June 2026"},
		},
		{
			name: "validity range fallback",
			text: "STUDENT IDENTITY CARD\nBatch 2022 - 2026",
			want: map[string]string{"valid_until": "2022 - 2026"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			checkScalars(t, ExtractIDCard(tc.text), tc.want)
		})
	}
}

func TestExtractGeneral(t *testing.T) {
	text := "Contact: a@x.com, a@x.com, b@y.org\nPhone 9876543210\nPaid Rs. 1,200 and $ 45.50 and Rs. 1,200"
	rec := Extract(Classify(text), text, nil)
	if rec.Type != constants.General {
		t.Fatalf("Type = %v, want %v", rec.Type, constants.General)
	}
	f := rec.Fields.(GeneralFields)
	if got := deref(f.PossibleName); got != "Contact: a@x.com, a@x.com, b@y.org" {
		t.Errorf("possible_name = %q", got)
	}
	if want := []string{"a@x.com", "b@y.org"}; !reflect.DeepEqual(f.Emails, want) {
		t.Errorf("emails = %v, want %v", f.Emails, want)
	}
	if want := []string{"9876543210"}; !reflect.DeepEqual(f.Phones, want) {
		t.Errorf("phones = %v, want %v", f.Phones, want)
	}
	if want := []string{"Rs. 1,200", "$ 45.50"}; !reflect.DeepEqual(f.Amounts, want) {
		t.Errorf("amounts = %v, want %v", f.Amounts, want)
	}
}

func TestExtractNoKeywords(t *testing.T) {
	rec := Extract(Classify(plainText), plainText, nil)
	if rec.Type != constants.General {
		t.Fatalf("Type = %v, want %v", rec.Type, constants.General)
	}
	f := rec.Fields.(GeneralFields)
	if deref(f.PossibleName) != "Meeting notes" {
		t.Errorf("possible_name = %q, want %q", deref(f.PossibleName), "Meeting notes")
	}
	if len(f.Emails) != 0 || len(f.Phones) != 0 || len(f.Amounts) != 0 {
		t.Errorf("lists = %v %v %v, want empty", f.Emails, f.Phones, f.Amounts)
	}
}

func TestExtractEmptyInput(t *testing.T) {
	for _, dt := range constants.DocumentTypes() {
		t.Run(string(dt), func(t *testing.T) {
			rec := Extract(dt, "", nil)
			if rec.Type != dt {
				t.Errorf("Type = %v, want %v", rec.Type, dt)
			}
			for name, v := range rec.Fields.Scalars() {
				if v != nil {
					t.Errorf("%s = %q, want nil", name, *v)
				}
			}
			switch f := rec.Fields.(type) {
			case InvoiceFields:
				if f.Items == nil || len(f.Items) != 0 {
					t.Errorf("items = %#v, want empty", f.Items)
				}
			case PurchaseOrderFields:
				if f.Items == nil || len(f.Items) != 0 {
					t.Errorf("items = %#v, want empty", f.Items)
				}
			case GeneralFields:
				for _, l := range [][]string{f.Emails, f.Phones, f.Amounts} {
					if l == nil || len(l) != 0 {
						t.Errorf("list = %#v, want empty", l)
					}
				}
			}

			data, err := json.Marshal(rec)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if dt.HasLineItems() && !strings.Contains(string(data), `"items":[]`) {
				t.Errorf("json %s has no empty items list", data)
			}
			for name := range rec.Fields.Scalars() {
				if !strings.Contains(string(data), `"`+name+`":null`) {
					t.Errorf("json %s lacks %q: null", data, name)
				}
			}
		})
	}
}

func TestExtractDeterministic(t *testing.T) {
	for _, text := range []string{invoiceText, purchaseOrderText, resumeText, idCardText, plainText, ""} {
		for _, dt := range constants.DocumentTypes() {
			a, b := Extract(dt, text, nil), Extract(dt, text, nil)
			if !reflect.DeepEqual(a, b) {
				t.Errorf("Extract(%v) not deterministic: %+v vs %+v", dt, a, b)
			}
		}
	}
}

func TestExtractBoxes(t *testing.T) {
	numberBox := Polygon{{X: 10, Y: 20}, {X: 200, Y: 20}, {X: 200, Y: 40}, {X: 10, Y: 40}}
	vendorBox := Polygon{{X: 10, Y: 80}, {X: 220, Y: 80}, {X: 220, Y: 100}, {X: 10, Y: 100}}
	items := []LineItem{
		{Text: "TAX INVOICE", Confidence: 0.98},
		{Text: "Invoice No: INV/2025/0118", Confidence: 0.93, Polygon: numberBox},
		{Text: "SHARMA TEXTILES PVT LTD", Confidence: 0.88, Polygon: vendorBox},
	}
	rec := Extract(constants.Invoice, invoiceText, items)
	if !reflect.DeepEqual(rec.Boxes["invoice_number"], numberBox) {
		t.Errorf("boxes[invoice_number] = %v, want %v", rec.Boxes["invoice_number"], numberBox)
	}
	if !reflect.DeepEqual(rec.Boxes["vendor"], vendorBox) {
		t.Errorf("boxes[vendor] = %v, want %v", rec.Boxes["vendor"], vendorBox)
	}
	if _, ok := rec.Boxes["total_amount"]; ok {
		t.Errorf("boxes[total_amount] present, want absent")
	}
	if rec := Extract(constants.Invoice, invoiceText, nil); rec.Boxes != nil {
		t.Errorf("Boxes = %v without line items, want nil", rec.Boxes)
	}
}

func TestLocateBoundingBox(t *testing.T) {
	box := Polygon{{X: 1, Y: 2}}
	items := []LineItem{{Text: "Blood Group: B+", Polygon: box}}
	if got := LocateBoundingBox("blood group", items); !reflect.DeepEqual(got, box) {
		t.Errorf("LocateBoundingBox() = %v, want %v", got, box)
	}
	if got := LocateBoundingBox("missing", items); got != nil {
		t.Errorf("LocateBoundingBox(missing) = %v, want nil", got)
	}
	if got := LocateBoundingBox("", items); got != nil {
		t.Errorf("LocateBoundingBox(empty) = %v, want nil", got)
	}
}

func TestMergeInvoice(t *testing.T) {
	rules := Options{}.ExtractInvoice("Invoice No: INV-1\n" + "Description\nWidget\n100.00")
	alt := InvoiceFields{
		InvoiceNumber: strPtr("INV-9"),
		Vendor:        strPtr("Acme Corp"),
		Items:         []TableRow{{Name: "Other", Quantity: "1", UnitPrice: "1.00", Total: "1.00"}},
	}
	got := MergeInvoice(rules, alt)
	if deref(got.InvoiceNumber) != "INV-1" {
		t.Errorf("invoice_number = %q, want rule value INV-1", deref(got.InvoiceNumber))
	}
	if deref(got.Vendor) != "Acme Corp" {
		t.Errorf("vendor = %q, want filled from alternate", deref(got.Vendor))
	}
	if len(got.Items) != 1 || got.Items[0].Name != "Widget" {
		t.Errorf("items = %+v, want rule rows", got.Items)
	}

	empty := MergeInvoice(Options{}.ExtractInvoice(""), alt)
	if len(empty.Items) != 1 || empty.Items[0].Name != "Other" {
		t.Errorf("items = %+v, want alternate rows when rules found none", empty.Items)
	}
}

func TestRecordJSON(t *testing.T) {
	rec := Extract(constants.IDCard, idCardText, nil)
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back Record
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(back, rec) {
		t.Errorf("round trip = %+v, want %+v", back, rec)
	}
	if err := json.Unmarshal([]byte(`{"doc_type":"passport","fields":{}}`), &back); err == nil {
		t.Errorf("Unmarshal(unknown doc_type) error = nil, want error")
	}
}
