package payment

import (
	"regexp"
	"strings"
)

// Kenyan mobile numbers: optional 254 / +254 / 0 prefix, then a Safaricom or
// Airtel subscriber number.
var phonePattern = regexp.MustCompile(`^(254|\+254|0)?([17]\d{8})$`)

// NormalizePhoneNumber validates a mobile money phone number and rewrites it
// to the international 254... form the network expects. The second return is
// false for malformed input.
func NormalizePhoneNumber(phone string) (string, bool) {
	trimmed := strings.TrimSpace(phone)
	m := phonePattern.FindStringSubmatch(trimmed)
	if m == nil {
		return "", false
	}
	return "254" + m[2], true
}
