package booking

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	pnrAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	pnrLength      = 6
	pnrMaxAttempts = 20
)

func randomPNR() (string, error) {
	max := big.NewInt(int64(len(pnrAlphabet)))
	buf := make([]byte, pnrLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = pnrAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// uniquePNR draws PNRs until one is not used by any booking.
func (s *BookingService) uniquePNR(ctx context.Context) (string, error) {
	for attempt := 0; attempt < pnrMaxAttempts; attempt++ {
		pnr, err := s.newPNR()
		if err != nil {
			return "", fmt.Errorf("generate pnr: %w", err)
		}
		exists, err := s.bookings.PNRExists(ctx, pnr)
		if err != nil {
			return "", fmt.Errorf("check pnr: %w", err)
		}
		if !exists {
			return pnr, nil
		}
	}
	return "", fmt.Errorf("generate pnr: no unused code after %d attempts", pnrMaxAttempts)
}
