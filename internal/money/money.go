// Package money provides deterministic arithmetic for order totals in
// integer minor currency units.
package money

import "math"

// Total computes the chargeable amount for an order in minor units.
//
// subtotal, shippingFee and the derived tax are expressed in major units
// (dollars); discountMinorUnits is already in minor units (cents) because
// checkout transmits the discount in cents even though it is entered as a
// whole-currency amount. The result is clamped at minimumMinorUnits and is
// never negative.
func Total(subtotal, shippingFee, taxRate float64, discountMinorUnits, minimumMinorUnits int64) int64 {
	tax := subtotal * taxRate
	total := subtotal + tax + shippingFee

	minor := ToMinorUnits(total) - discountMinorUnits
	if minor < minimumMinorUnits {
		return minimumMinorUnits
	}
	return minor
}

// ToMinorUnits converts a major-unit amount to integer minor units,
// rounding half up.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Floor(amount*100 + 0.5))
}
