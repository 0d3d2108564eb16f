package api

import (
	"net/http"

	"github.com/Domenick1991/airreservation/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	service booking.BookingUseCase
}

type initPaymentRequest struct {
	BookingID int64   `json:"booking_id"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
}

type confirmPaymentRequest struct {
	BookingID int64 `json:"booking_id"`
	Success   bool  `json:"success"`
}

type confirmPaymentResponse struct {
	Booking    bookingResponse   `json:"booking"`
	Bookings   []bookingResponse `json:"bookings"`
	PNR        string            `json:"pnr,omitempty"`
	Payment    *paymentResponse  `json:"payment"`
	InvoiceURL string            `json:"invoiceUrl"`
}

type paymentStatusResponse struct {
	BookingID     int64            `json:"booking_id"`
	BookingStatus string           `json:"booking_status"`
	PNR           string           `json:"pnr,omitempty"`
	LatestPayment *paymentResponse `json:"latest_payment"`
}

func NewPaymentHandler(service booking.BookingUseCase) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) Register(router gin.IRouter) {
	g := router.Group("/payment")
	g.POST("/init", h.initPayment)
	g.POST("/confirm", h.confirmPayment)
	g.GET("/status/:booking_id", h.status)
}

func (h *PaymentHandler) initPayment(c *gin.Context) {
	var req initPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.BookingID <= 0 {
		badRequest(c, "booking_id and amount are required")
		return
	}

	payment, err := h.service.InitPayment(c.Request.Context(), req.BookingID, req.Amount, req.Method)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"msg": "Payment initiated", "payment": toPaymentResponse(payment)})
}

func (h *PaymentHandler) confirmPayment(c *gin.Context) {
	var req confirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.BookingID <= 0 {
		badRequest(c, "booking_id is required")
		return
	}

	result, err := h.service.ConfirmPayment(c.Request.Context(), req.BookingID, req.Success)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, confirmPaymentResponse{
		Booking:    toBookingResponse(*result.Booking),
		Bookings:   toBookingResponses(result.Bookings),
		PNR:        result.Booking.PNR,
		Payment:    toPaymentResponse(result.Payment),
		InvoiceURL: result.InvoiceURL,
	})
}

func (h *PaymentHandler) status(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}
	result, err := h.service.PaymentStatus(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paymentStatusResponse{
		BookingID:     result.BookingID,
		BookingStatus: string(result.BookingStatus),
		PNR:           result.PNR,
		LatestPayment: toPaymentResponse(result.LatestPayment),
	})
}
