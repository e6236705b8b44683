package booking

import "github.com/example/hotel-booking/internal/money"

// ComputePrice is nights times the nightly rate. No discounts, taxes or minimums.
func ComputePrice(nights int, nightlyRate money.Amount) money.Amount {
	return nightlyRate.Times(nights)
}
