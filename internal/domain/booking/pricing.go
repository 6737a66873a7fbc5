package booking

import (
	"math"
	"time"
)

// Quote is the result of pricing a rental window against a daily rate.
type Quote struct {
	Days   int
	Amount int64
}

// ChargeableDays computes the number of billable days for a rental window.
// Duration is billed in 24-hour cycles: any partial day rounds up to a full
// day, and any positive window bills at least one day. A non-positive window
// yields zero days; callers reject that before pricing.
func ChargeableDays(pickup, drop time.Time) int {
	hours := drop.Sub(pickup).Hours()
	if hours <= 0 {
		return 0
	}

	days := int(math.Ceil(hours / 24))
	if days < 1 {
		days = 1
	}
	return days
}

// Price computes the chargeable day count and base amount for the window at
// the given daily rate.
func Price(pickup, drop time.Time, dailyRate int64) Quote {
	days := ChargeableDays(pickup, drop)
	return Quote{
		Days:   days,
		Amount: int64(days) * dailyRate,
	}
}

// Overlaps reports whether two rental windows conflict in the closed-interval
// sense: touching endpoints count as a conflict, so a same-instant handover
// between two bookings is not allowed.
func Overlaps(pickupA, dropA, pickupB, dropB time.Time) bool {
	return !pickupA.After(dropB) && !dropA.Before(pickupB)
}
