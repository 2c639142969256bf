package payment

import "github.com/joshbakergf/lead-manager-sub001/pkg/utils"

const (
	minPhoneDigits = 5
	maxPhoneDigits = 15
)

// NormalizePhone reduces a phone to the 5-15 digits the processor accepts.
// Too short a number is replaced by PlaceholderPhone.
func NormalizePhone(phone string) string {
	digits := utils.DigitsOnly(phone)
	if len(digits) < minPhoneDigits {
		return PlaceholderPhone
	}
	if len(digits) > maxPhoneDigits {
		return digits[:maxPhoneDigits]
	}
	return digits
}
