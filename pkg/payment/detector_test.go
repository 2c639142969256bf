package payment

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseCardNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"4111 1111 1111 1111", "4111111111111111", true},
		{"4111-1111-1111-1111", "4111111111111111", true},
		{"4111111111111111", "4111111111111111", true},
		{" 4111  1111 1111 1111 ", "4111111111111111", true},
		{"378282246310005", "378282246310005", true},
		{"123", "", false},
		{"4111 1111 1111", "", false},
		{"4111-1111-1111-111a", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseCardNumber(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseCardNumber(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseExpiry(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"12/25", "1225", true},
		{"0127", "0127", true},
		{"13/25", "", false},
		{"00/25", "", false},
		{"12/2025", "", false},
		{"1/25", "", false},
		{"ab/cd", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseExpiry(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseExpiry(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDetect_FullCard(t *testing.T) {
	fields := map[string]string{
		"fname":       "Jane",
		"card_number": "4111 1111 1111 1111",
		"cardCvv":     "123",
		"cardExpiry":  "12/25",
		"card_type":   "3",
	}

	got := Detect(fields)

	want := Fragment{CardNumber: "4111111111111111", CVV: "123", Expiry: "1225", CardType: 3, PaymentFieldsPresent: true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Fragment mismatch (-want +got):\n%s", diff)
	}
	if !got.HasPaymentInfo() {
		t.Error("expected payment info")
	}
}

func TestDetect_NoPayment(t *testing.T) {
	got := Detect(map[string]string{"fname": "Jane", "lname": "Doe", "email": "j@x.com", "zip": "78701"})
	if got.HasPaymentInfo() {
		t.Fatalf("unexpected payment info %+v", got)
	}
	if got.CardType != DefaultCardType {
		t.Errorf("CardType = %d, want default", got.CardType)
	}
}

func TestDetect_KnownFieldNames(t *testing.T) {
	got := Detect(map[string]string{
		"cardNumber":   "4111111111111111",
		"cvv":          "9876",
		"expiryDate":   "0130",
		"paymentToken": "tok_abc",
	})
	want := Fragment{
		CardNumber:           "4111111111111111",
		CVV:                  "9876",
		Expiry:               "0130",
		CardType:             DefaultCardType,
		PaymentToken:         "tok_abc",
		PaymentFieldsPresent: true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Fragment mismatch (-want +got):\n%s", diff)
	}
}

func TestDetect_CardShapeWithoutHint(t *testing.T) {
	got := Detect(map[string]string{"field_7": "5555-5555-5555-4444"})
	if got.CardNumber != "5555555555554444" {
		t.Fatalf("CardNumber = %q", got.CardNumber)
	}
}

func TestDetect_ValueShapesWithoutHint(t *testing.T) {
	got := Detect(map[string]string{"fname": "Jane", "field_9": "0130", "field_10": "123"})

	want := Fragment{CVV: "123", Expiry: "0130", CardType: DefaultCardType, PaymentFieldsPresent: true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Fragment mismatch (-want +got):\n%s", diff)
	}
	if !got.HasPaymentInfo() {
		t.Error("expected payment info")
	}
}

func TestDetect_MalformedPaymentFieldsStillCount(t *testing.T) {
	got := Detect(map[string]string{
		"cardNumber": "4111 1111 1111",
		"cvv":        "12",
		"expiry":     "13/25",
		"cardtype":   "visa",
	})

	want := Fragment{CardType: DefaultCardType, PaymentFieldsPresent: true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Fragment mismatch (-want +got):\n%s", diff)
	}
	if !got.HasPaymentInfo() {
		t.Error("a payment key with a bad value is still payment info")
	}
}

func TestDetect_CardTypeAloneIsNotPayment(t *testing.T) {
	got := Detect(map[string]string{"card_type": "3"})
	if got.HasPaymentInfo() {
		t.Fatalf("unexpected payment info %+v", got)
	}
	if got.CardType != 3 {
		t.Errorf("CardType = %d, want 3", got.CardType)
	}
}

func TestDetect_EmptyPaymentFieldIgnored(t *testing.T) {
	got := Detect(map[string]string{"cardNumber": "  ", "cvv": ""})
	if got.HasPaymentInfo() {
		t.Fatalf("unexpected payment info %+v", got)
	}
}

func TestDetect_MappedBeforeOriginal(t *testing.T) {
	mapped := map[string]string{"cardNumber": "4111111111111111"}
	original := map[string]string{"field_3": "5555555555554444"}
	if got := Detect(mapped, original).CardNumber; got != "4111111111111111" {
		t.Fatalf("CardNumber = %q, want mapped value", got)
	}
}

func TestDetect_Idempotent(t *testing.T) {
	fields := map[string]string{
		"card_a":  "4111111111111111",
		"card_b":  "5555555555554444",
		"cvv":     "123",
		"expiry":  "01/30",
		"f_email": "x@y.z",
	}
	first := Detect(fields)
	for i := 0; i < 10; i++ {
		if diff := cmp.Diff(first, Detect(fields)); diff != "" {
			t.Fatalf("detection not stable (-first +again):\n%s", diff)
		}
	}
	if first.CardNumber != "4111111111111111" {
		t.Errorf("CardNumber = %q, want first key in order", first.CardNumber)
	}
}

func TestIsCVV(t *testing.T) {
	if !IsCVV("123") || !IsCVV("1234") || IsCVV("12") || IsCVV("12345") {
		t.Error("IsCVV shape mismatch")
	}
}

func TestDetect_LongPhoneIsNotACard(t *testing.T) {
	got := Detect(map[string]string{"phone": "+49 151 1234 5678"})
	if got.HasPaymentInfo() {
		t.Fatalf("unexpected payment info %+v", got)
	}
}
