package domain

type CustomerTier string

const (
	TierNone     CustomerTier = "None"
	TierSilver   CustomerTier = "Silver"
	TierGold     CustomerTier = "Gold"
	TierPlatinum CustomerTier = "Platinum"
)

type QuantityDiscount struct {
	Percent float64 `json:"percent"`
	Amount  float64 `json:"amount"`
	Applied bool    `json:"applied"`
}

type TierDiscount struct {
	Tier              CustomerTier `json:"tier"`
	Percent           float64      `json:"percent"`
	Amount            float64      `json:"amount"`
	Applied           bool         `json:"applied"`
	BookingsLastMonth int          `json:"bookingsLastMonth"`
}

type AdvanceDiscount struct {
	Percent       float64 `json:"percent"`
	Amount        float64 `json:"amount"`
	Applied       bool    `json:"applied"`
	DaysInAdvance *int    `json:"daysInAdvance"`
}

// PriceBreakdown is derived from its inputs and never mutated.
type PriceBreakdown struct {
	BasePricePerSeat     float64          `json:"basePricePerSeat"`
	SeatCount            int              `json:"seatCount"`
	BaseTotal            float64          `json:"baseTotal"`
	QuantityDiscount     QuantityDiscount `json:"quantityDiscount"`
	TierDiscount         TierDiscount     `json:"tierDiscount"`
	AdvanceDiscount      AdvanceDiscount  `json:"advanceDiscount"`
	TotalDiscountAmount  float64          `json:"totalDiscountAmount"`
	TotalDiscountPercent float64          `json:"totalDiscountPercent"`
	FinalTotal           float64          `json:"finalTotal"`
	Savings              float64          `json:"savings"`
}
