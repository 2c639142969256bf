// Package payment finds card data in a free-form submission.
package payment

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// DefaultCardType is the processor's payment method code for Visa
const DefaultCardType = 2

// Placeholder values submitted when placeholders are allowed and the form
// lacks the corresponding field.
const (
	PlaceholderCardNumber = "4111111111111111"
	PlaceholderExpiry     = "0123"
	PlaceholderPhone      = "5555555555"
)

// Fragment is the payment data extracted from a submission.
// Empty strings mean the piece was not found.
type Fragment struct {
	CardNumber   string
	CVV          string
	Expiry       string // MMYY
	CardType     int
	PaymentToken string

	// PaymentFieldsPresent is set when any card, CVV, expiry or token field
	// carried a value, even one too malformed to extract.
	PaymentFieldsPresent bool
}

// HasPaymentInfo reports whether the submission carries payment data,
// usable or not. Card type alone does not count since it is always defaulted.
func (f Fragment) HasPaymentInfo() bool {
	return f.PaymentFieldsPresent || f.CardNumber != "" || f.CVV != "" || f.Expiry != "" || f.PaymentToken != ""
}

var (
	cardGroupsRe = regexp.MustCompile(`^\d{4}(?:[ -]?\d{4}){3}$`)
	cardDigitsRe = regexp.MustCompile(`^\d{13,16}$`)
	cvvRe        = regexp.MustCompile(`^\d{3,4}$`)
	expiryRe     = regexp.MustCompile(`^(0[1-9]|1[0-2])/?\d{2,}$`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// knownFields are processor field names treated as payment data
// regardless of substring matching.
var knownFields = map[string]fieldKind{
	"cardNumber":   kindCardNumber,
	"creditCard":   kindCardNumber,
	"cvv":          kindCVV,
	"expiry":       kindExpiry,
	"expiryDate":   kindExpiry,
	"paymentToken": kindToken,
}

type fieldKind int

const (
	kindNone fieldKind = iota
	kindCardNumber
	kindCVV
	kindExpiry
	kindCardType
	kindToken
)

func classify(key string) fieldKind {
	if kind, ok := knownFields[key]; ok {
		return kind
	}

	k := strings.ToLower(key)
	switch {
	case strings.Contains(k, "cardtype") || strings.Contains(k, "card_type"):
		return kindCardType
	case strings.Contains(k, "paymenttoken") || strings.Contains(k, "payment_token"):
		return kindToken
	case strings.Contains(k, "cvv") || strings.Contains(k, "cvc") || strings.Contains(k, "securitycode"):
		return kindCVV
	case strings.Contains(k, "expir") || strings.Contains(k, "expdate") || strings.Contains(k, "exp_date"):
		return kindExpiry
	case strings.Contains(k, "credit") || strings.Contains(k, "card"):
		return kindCardNumber
	}
	return kindNone
}

// Detect scans the field sets in order and keeps the first value found for
// each piece. A payment-related key marks the submission as carrying payment
// data even when its value is malformed; other keys count only when the value
// has a card, expiry or CVV shape. It is pure: the same input always yields
// the same Fragment.
func Detect(fieldSets ...map[string]string) Fragment {
	f := Fragment{CardType: DefaultCardType}
	cardTypeSet := false

	for _, fields := range fieldSets {
		for _, key := range sortedKeys(fields) {
			value := strings.TrimSpace(fields[key])
			if value == "" {
				continue
			}

			kind := classify(key)
			if kind != kindNone && kind != kindCardType {
				f.PaymentFieldsPresent = true
			}

			switch kind {
			case kindCardType:
				if n, err := strconv.Atoi(value); err == nil && !cardTypeSet {
					f.CardType = n
					cardTypeSet = true
				}
			case kindToken:
				if f.PaymentToken == "" {
					f.PaymentToken = value
				}
			case kindCVV:
				if f.CVV == "" && IsCVV(value) {
					f.CVV = value
				}
			case kindExpiry:
				if exp, ok := ParseExpiry(value); ok && f.Expiry == "" {
					f.Expiry = exp
				}
			case kindCardNumber:
				if num, ok := ParseCardNumber(value); ok && f.CardNumber == "" {
					f.CardNumber = num
				}
			default:
				if matchShape(&f, value) {
					f.PaymentFieldsPresent = true
				}
			}
		}
	}
	return f
}

// matchShape takes an unhinted value by shape alone. Only the grouped card
// shape is accepted since bare digit runs are often phones. Expiry is tried
// before CVV because "0130" fits both.
func matchShape(f *Fragment, value string) bool {
	if looksLikeCard(value) {
		if f.CardNumber == "" {
			f.CardNumber, _ = ParseCardNumber(value)
		}
		return true
	}
	if exp, ok := ParseExpiry(value); ok {
		if f.Expiry == "" {
			f.Expiry = exp
		}
		return true
	}
	if IsCVV(value) {
		if f.CVV == "" {
			f.CVV = value
		}
		return true
	}
	return false
}

// ParseCardNumber accepts four groups of four digits with optional space or
// dash separators, or a plain 13-16 digit run. The result has no separators.
func ParseCardNumber(value string) (string, bool) {
	v := whitespaceRe.ReplaceAllString(strings.TrimSpace(value), "")
	if cardGroupsRe.MatchString(value) || cardGroupsRe.MatchString(v) {
		return strings.ReplaceAll(v, "-", ""), true
	}
	if cardDigitsRe.MatchString(v) {
		return v, true
	}
	return "", false
}

func looksLikeCard(value string) bool {
	return cardGroupsRe.MatchString(whitespaceRe.ReplaceAllString(value, ""))
}

// ParseExpiry accepts MM/YY or MMYY with MM in 01-12 and returns MMYY.
func ParseExpiry(value string) (string, bool) {
	v := strings.TrimSpace(value)
	if !expiryRe.MatchString(v) {
		return "", false
	}
	v = strings.Replace(v, "/", "", 1)
	if len(v) != 4 {
		return "", false
	}
	return v, true
}

// IsCVV reports whether value has the 3-4 digit CVV shape
func IsCVV(value string) bool {
	return cvvRe.MatchString(strings.TrimSpace(value))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
