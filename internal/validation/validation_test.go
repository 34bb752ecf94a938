package validation

import "testing"

func TestValidators(t *testing.T) {
	v := Violations{}
	Required("name", "  ", v)
	MaxLen("note", "abcdef", 5, v)
	NonNegativeInt("quantity", -1, v)
	if len(v) != 3 {
		t.Fatalf("expected 3 violations, got %v", v)
	}
	if v["name"] != "required" || v["note"] != "too_long" || v["quantity"] != "must_not_be_negative" {
		t.Fatalf("unexpected violations: %v", v)
	}

	ok := Violations{}
	Required("name", "Engine 7", ok)
	MaxLen("note", "ok", 5, ok)
	NonNegativeInt("quantity", 0, ok)
	if !ok.Empty() {
		t.Fatalf("expected no violations, got %v", ok)
	}
}
