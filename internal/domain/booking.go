package domain

import (
	"math"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled:
		return true
	default:
		return false
	}
}

// Active reports whether the booking still owns its seat.
func (s BookingStatus) Active() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed:
		return true
	case BookingStatusCancelled:
		return false
	default:
		return false
	}
}

// Booking is one passenger on one seat. Every seat bought in the same purchase
// shares TransactionKey and the transaction-level price fields.
type Booking struct {
	ID             int64
	TransactionKey string
	ClientID       int64
	FlightNo       int64
	AirportCode    string
	SeatNo         string
	SeatClass      SeatClass
	PassengerName  string
	PassengerAge   int
	FarePerSeat    float64
	SeatCount      int

	BaseTotal               float64
	QuantityDiscountPercent float64
	QuantityDiscountAmount  float64
	Tier                    CustomerTier
	TierDiscountPercent     float64
	TierDiscountAmount      float64
	AdvanceDiscountPercent  float64
	AdvanceDiscountAmount   float64
	TotalDiscountAmount     float64
	FinalTotal              float64
	ShareAmount             float64

	Status                    BookingStatus
	PNR                       string
	CancellationChargePercent float64
	CancellationChargeAmount  float64
	RefundAmount              float64
	CancellationReason        string

	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ApplyBreakdown copies the transaction-level price onto the booking.
func (b *Booking) ApplyBreakdown(p PriceBreakdown) {
	b.FarePerSeat = p.BasePricePerSeat
	b.SeatCount = p.SeatCount
	b.BaseTotal = p.BaseTotal
	b.QuantityDiscountPercent = p.QuantityDiscount.Percent
	b.QuantityDiscountAmount = p.QuantityDiscount.Amount
	b.Tier = p.TierDiscount.Tier
	b.TierDiscountPercent = p.TierDiscount.Percent
	b.TierDiscountAmount = p.TierDiscount.Amount
	b.AdvanceDiscountPercent = p.AdvanceDiscount.Percent
	b.AdvanceDiscountAmount = p.AdvanceDiscount.Amount
	b.TotalDiscountAmount = p.TotalDiscountAmount
	b.FinalTotal = p.FinalTotal
}

// CancellationResult is what a cancel (or its preview) reports back.
type CancellationResult struct {
	Booking              *Booking            `json:"-"`
	Charges              CancellationCharges `json:"cancellationCharges"`
	HoursBeforeDeparture float64             `json:"hoursBeforeDeparture"`
	BeforeDeparture      bool                `json:"beforeDeparture"`
	Refund               *Refund             `json:"refund"`
}

type CancellationCharges struct {
	ChargePercent float64 `json:"chargePercent"`
	ChargeAmount  float64 `json:"chargeAmount"`
	RefundAmount  float64 `json:"refundAmount"`
	BookingAmount float64 `json:"bookingAmount"`
}

// Breakdown rebuilds the transaction-level price stored on the booking.
// History and day counts are not stored and stay zero.
func (b Booking) Breakdown() PriceBreakdown {
	p := PriceBreakdown{
		BasePricePerSeat: b.FarePerSeat,
		SeatCount:        b.SeatCount,
		BaseTotal:        b.BaseTotal,
		QuantityDiscount: QuantityDiscount{
			Percent: b.QuantityDiscountPercent,
			Amount:  b.QuantityDiscountAmount,
			Applied: b.QuantityDiscountPercent > 0,
		},
		TierDiscount: TierDiscount{
			Tier:    b.Tier,
			Percent: b.TierDiscountPercent,
			Amount:  b.TierDiscountAmount,
			Applied: b.TierDiscountPercent > 0,
		},
		AdvanceDiscount: AdvanceDiscount{
			Percent: b.AdvanceDiscountPercent,
			Amount:  b.AdvanceDiscountAmount,
			Applied: b.AdvanceDiscountPercent > 0,
		},
		TotalDiscountAmount: b.TotalDiscountAmount,
		FinalTotal:          b.FinalTotal,
		Savings:             b.TotalDiscountAmount,
	}
	if b.BaseTotal > 0 {
		p.TotalDiscountPercent = math.Round(b.TotalDiscountAmount/b.BaseTotal*100*100) / 100
	}
	return p
}

type RefundType string

const (
	RefundInstant RefundType = "instant"
	RefundDelayed RefundType = "delayed"
)

type Refund struct {
	Type    RefundType    `json:"type"`
	Method  PaymentMethod `json:"method"`
	Status  PaymentStatus `json:"status"`
	Amount  float64       `json:"amount"`
	EtaDays int           `json:"eta_days,omitempty"`
}
