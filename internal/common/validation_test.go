package common

import (
	"strings"
	"testing"
)

func TestValidator(t *testing.T) {
	v := NewValidator().
		Field("text", "", Required).
		Field("doc_type", "passport", DocumentType).
		Field("file_name", "scan.bmp", FileExtension).
		Field("id", "not-a-uuid", UUID)
	if got := len(v.Errors()); got != 4 {
		t.Fatalf("len(Errors()) = %d, want 4: %s", got, v.ErrorMessage())
	}
	if !IsValidation(v.Error()) {
		t.Errorf("Error() does not wrap ErrValidation")
	}
}

func TestValidatorAccepts(t *testing.T) {
	v := NewValidator().
		Field("text", "Invoice No: 1", Required, MaxLength(100)).
		Field("doc_type", "", DocumentType).
		Field("doc_type", "id", DocumentType).
		Field("file_name", "Scan.JPEG", FileExtension).
		Field("id", "7f3c1f7e-4a0b-4f61-9d6e-0c2b8f9e5a11", UUID)
	if v.HasErrors() {
		t.Errorf("unexpected errors: %s", v.ErrorMessage())
	}
	if v.Error() != nil {
		t.Errorf("Error() = %v, want nil", v.Error())
	}
}

func TestMaxLength(t *testing.T) {
	err := MaxLength(3)("text", "abcd")
	if err == nil || !strings.Contains(err.Message, "at most 3") {
		t.Errorf("MaxLength(3)(abcd) = %v", err)
	}
}
