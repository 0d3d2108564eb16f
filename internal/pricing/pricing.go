// Package pricing computes the discounted price of a seat purchase.
//
// Discounts are applied one after another, each on the amount left by the
// previous step: quantity, then customer tier, then advance purchase. Every
// monetary value is rounded to cents where it is computed so that an invoice
// can itemise the steps and add up to the same cents.
package pricing

import (
	"math"
	"time"

	"github.com/Domenick1991/airreservation/internal/domain"
)

const (
	MinSeats = 1
	MaxSeats = 10

	advanceMinDays         = 5
	advanceDiscountPercent = 8
)

type Input struct {
	BasePricePerSeat  float64
	SeatCount         int
	BookingsLastMonth int
	DepartureTime     *time.Time
}

// Quote returns the price breakdown for in. now only decides which calendar
// day counts as "today" for the advance-purchase discount.
func Quote(in Input, now time.Time) (domain.PriceBreakdown, error) {
	if in.BasePricePerSeat <= 0 || math.IsNaN(in.BasePricePerSeat) || math.IsInf(in.BasePricePerSeat, 0) {
		return domain.PriceBreakdown{}, domain.InvalidInput("base price per seat must be greater than 0")
	}
	if in.SeatCount < MinSeats || in.SeatCount > MaxSeats {
		return domain.PriceBreakdown{}, domain.InvalidInput("seat count must be between %d and %d", MinSeats, MaxSeats)
	}
	if in.BookingsLastMonth < 0 {
		return domain.PriceBreakdown{}, domain.InvalidInput("bookings last month cannot be negative")
	}

	baseTotal := Round2(in.BasePricePerSeat * float64(in.SeatCount))

	qtyPercent := QuantityDiscountPercent(in.SeatCount)
	qtyAmount := Round2(baseTotal * qtyPercent / 100)
	afterQty := Round2(baseTotal - qtyAmount)

	tier := CustomerTier(in.BookingsLastMonth)
	tierPercent := TierDiscountPercent(tier)
	tierAmount := Round2(afterQty * tierPercent / 100)
	afterTier := Round2(afterQty - tierAmount)

	days, advance := advanceDays(in.DepartureTime, now)
	var advPercent float64
	if advance {
		advPercent = advanceDiscountPercent
	}
	advAmount := Round2(afterTier * advPercent / 100)
	finalTotal := Round2(afterTier - advAmount)

	totalDiscount := Round2(qtyAmount + tierAmount + advAmount)

	out := domain.PriceBreakdown{
		BasePricePerSeat: in.BasePricePerSeat,
		SeatCount:        in.SeatCount,
		BaseTotal:        baseTotal,
		QuantityDiscount: domain.QuantityDiscount{
			Percent: qtyPercent,
			Amount:  qtyAmount,
			Applied: qtyPercent > 0,
		},
		TierDiscount: domain.TierDiscount{
			Tier:              tier,
			Percent:           tierPercent,
			Amount:            tierAmount,
			Applied:           tierPercent > 0,
			BookingsLastMonth: in.BookingsLastMonth,
		},
		AdvanceDiscount: domain.AdvanceDiscount{
			Percent: advPercent,
			Amount:  advAmount,
			Applied: advance,
		},
		TotalDiscountAmount:  totalDiscount,
		TotalDiscountPercent: Round2(totalDiscount / baseTotal * 100),
		FinalTotal:           finalTotal,
		Savings:              Round2(baseTotal - finalTotal),
	}
	if advance {
		out.AdvanceDiscount.DaysInAdvance = &days
	}
	return out, nil
}

// QuantityDiscountPercent returns the bulk discount for a seat count.
func QuantityDiscountPercent(seatCount int) float64 {
	switch {
	case seatCount >= 2 && seatCount <= 4:
		return 3
	case seatCount >= 5 && seatCount <= 7:
		return 7
	case seatCount >= 8 && seatCount <= 10:
		return 12
	default:
		return 0
	}
}

// CustomerTier maps last month's confirmed bookings to a loyalty tier.
func CustomerTier(bookingsLastMonth int) domain.CustomerTier {
	switch {
	case bookingsLastMonth >= 15:
		return domain.TierPlatinum
	case bookingsLastMonth >= 10:
		return domain.TierGold
	case bookingsLastMonth >= 5:
		return domain.TierSilver
	default:
		return domain.TierNone
	}
}

func TierDiscountPercent(tier domain.CustomerTier) float64 {
	switch tier {
	case domain.TierPlatinum:
		return 15
	case domain.TierGold:
		return 10
	case domain.TierSilver:
		return 5
	case domain.TierNone:
		return 0
	default:
		return 0
	}
}

// IsAdvanceBooking reports whether departure is at least five whole days
// after midnight of now's calendar day.
func IsAdvanceBooking(departure time.Time, now time.Time) bool {
	_, ok := advanceDays(&departure, now)
	return ok
}

func advanceDays(departure *time.Time, now time.Time) (int, bool) {
	if departure == nil || departure.IsZero() {
		return 0, false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	days := int(math.Floor(departure.Sub(today).Hours() / 24))
	return days, days >= advanceMinDays
}

// Round2 rounds to cents.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
