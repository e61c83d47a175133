package money

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"1234", "1234"},
		{"12.50", "12.50"},
		{"12.5.0", "12.50"}, // second point dropped
		{"abc", ""},
		{"1a2b3", "123"},
		{"₹500", "500"},
		{"-42", "42"},
		{"12.", "12."},
	}
	for _, tt := range tests {
		if got := SanitizeInput(tt.in); got != tt.want {
			t.Errorf("SanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	d, err := Parse("750.25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Equal(dec("750.25")) {
		t.Errorf("expected 750.25, got %s", d)
	}

	d, err = Parse("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.IsZero() {
		t.Errorf("empty input should parse as zero, got %s", d)
	}

	// Trailing point is valid mid-typing input.
	d, err = Parse("12.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Equal(dec("12")) {
		t.Errorf("expected 12, got %s", d)
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, in := range []string{"12a", "-5", "1,000", "1.2.3", "1e5"} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) should fail", in)
		}
	}
}

func TestParse_RoundsToCents(t *testing.T) {
	d, err := Parse("10.005")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Exponent() < -2 {
		t.Errorf("expected at most 2 decimal places, got %s", d)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(dec("-10")); !got.IsZero() {
		t.Errorf("expected 0, got %s", got)
	}
	if got := Clamp(dec("600000")); !got.Equal(MaxAmount) {
		t.Errorf("expected %s, got %s", MaxAmount, got)
	}
	if got := Clamp(dec("499999.99")); !got.Equal(dec("499999.99")) {
		t.Errorf("expected passthrough, got %s", got)
	}
}

func TestInRange(t *testing.T) {
	if InRange(dec("-0.01")) {
		t.Error("negative amount should be out of range")
	}
	if !InRange(dec("500000")) {
		t.Error("exactly the ceiling should be in range")
	}
	if InRange(dec("500000.01")) {
		t.Error("above the ceiling should be out of range")
	}
}

func TestValidatePayment(t *testing.T) {
	// 500 + 200 = 700: exactly the ceiling is accepted.
	if err := ValidatePayment(dec("500"), dec("700"), dec("200")); err != nil {
		t.Errorf("paid == total+balance should be accepted: %v", err)
	}
	// 750 > 700: rejected, message names the maximum.
	err := ValidatePayment(dec("500"), dec("750"), dec("200"))
	if err == nil {
		t.Fatal("paid > total+balance should be rejected")
	}
	if !strings.Contains(err.Error(), "cannot exceed 700") {
		t.Errorf("error should cite the 700 ceiling, got: %v", err)
	}
}

func TestValidatePayment_NoFloatArtifacts(t *testing.T) {
	// 0.1 + 0.2 must equal exactly 0.3 at the ceiling.
	if err := ValidatePayment(dec("0.1"), dec("0.3"), dec("0.2")); err != nil {
		t.Errorf("decimal arithmetic should be exact: %v", err)
	}
	if err := ValidatePayment(dec("0.1"), dec("0.31"), dec("0.2")); err == nil {
		t.Error("0.31 > 0.30 should be rejected")
	}
}

func TestPending(t *testing.T) {
	if got := Pending(dec("500"), dec("300")); !got.Equal(dec("200")) {
		t.Errorf("expected 200, got %s", got)
	}
	// Overpayment never shows as negative debt.
	if got := Pending(dec("500"), dec("700")); !got.IsZero() {
		t.Errorf("expected 0, got %s", got)
	}
}
