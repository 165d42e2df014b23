package domain

// Cents converts a decimal currency amount to integer minor units.
// Fractions beyond the cent are truncated toward zero, matching how
// inbound prices have always been interpreted.
func Cents(amount float64) int64 {
	return int64(amount * 100)
}

// Decimal converts integer minor units to a decimal display amount.
// Used only when building outward-facing payloads.
func Decimal(cents int64) float64 {
	return float64(cents) / 100.0
}
