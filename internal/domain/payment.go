package domain

import (
	"strings"
	"time"
)

type PaymentStatus string

const (
	PaymentStatusInitiated     PaymentStatus = "initiated"
	PaymentStatusSuccess       PaymentStatus = "success"
	PaymentStatusFailed        PaymentStatus = "failed"
	PaymentStatusRefundPending PaymentStatus = "refund_pending"
	PaymentStatusRefunded      PaymentStatus = "refunded"
)

// Terminal reports whether confirm can no longer change the payment.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case PaymentStatusInitiated:
		return false
	case PaymentStatusSuccess, PaymentStatusFailed, PaymentStatusRefundPending, PaymentStatusRefunded:
		return true
	default:
		return false
	}
}

// Paid reports whether money was captured for the group at some point.
func (s PaymentStatus) Paid() bool {
	switch s {
	case PaymentStatusSuccess, PaymentStatusRefundPending, PaymentStatusRefunded:
		return true
	case PaymentStatusInitiated, PaymentStatusFailed:
		return false
	default:
		return false
	}
}

type PaymentMethod string

const (
	PaymentMethodUPI        PaymentMethod = "UPI"
	PaymentMethodCard       PaymentMethod = "CARD"
	PaymentMethodDebit      PaymentMethod = "DEBIT"
	PaymentMethodCredit     PaymentMethod = "CREDIT"
	PaymentMethodNetBanking PaymentMethod = "NETBANKING"
	PaymentMethodWallet     PaymentMethod = "WALLET"
)

// ParsePaymentMethod normalises the client-supplied method. Empty means UPI.
func ParsePaymentMethod(raw string) (PaymentMethod, bool) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(raw)))
	switch m {
	case "":
		return PaymentMethodUPI, true
	case PaymentMethodUPI, PaymentMethodCard, PaymentMethodDebit, PaymentMethodCredit, PaymentMethodNetBanking, PaymentMethodWallet:
		return m, true
	default:
		return "", false
	}
}

// InstantSettlement reports whether refunds on this method land immediately.
func (m PaymentMethod) InstantSettlement() bool {
	return m == PaymentMethodUPI
}

// Payment is the single logical payment of a booking group.
type Payment struct {
	ID             int64
	BookingID      int64
	TransactionKey string
	Amount         float64
	Method         PaymentMethod
	TransactionRef string
	Status         PaymentStatus
	RefundAmount   float64
	RefundEtaDays  int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
