// Package card holds format checks for payment cards. They are guards run
// before a payment is forwarded, not authorization.
package card

// IsValidNumber reports whether s is a non-empty string of digits that passes
// the Luhn checksum.
func IsValidNumber(s string) bool {
	if s == "" {
		return false
	}

	sum := 0
	double := false
	for i := len(s) - 1; i >= 0; i-- {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
