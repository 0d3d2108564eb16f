package api

import (
	"net/http"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	SeatNo string `json:"seat_no,omitempty"`
}

func statusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeInvalidInput, domain.CodeClassMismatch:
		return http.StatusBadRequest
	case domain.CodeNotFound, domain.CodeBookingNotFound, domain.CodePaymentNotFound:
		return http.StatusNotFound
	case domain.CodeSeatUnavailable, domain.CodeSeatConflict, domain.CodeSeatNotHeld, domain.CodeReconciliationFailure:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as the JSON error body. Errors without a business
// code are reported as INTERNAL without their message.
func respondError(c *gin.Context, err error) {
	code := domain.CodeOf(err)
	if code == "" {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "INTERNAL"})
		return
	}
	c.JSON(statusFor(code), errorResponse{Error: err.Error(), Code: string(code), SeatNo: domain.SeatOf(err)})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: msg, Code: string(domain.CodeInvalidInput)})
}
