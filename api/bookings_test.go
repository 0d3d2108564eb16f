package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateGroup(ctx context.Context, input booking.CreateGroupInput) (*booking.GroupResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.GroupResult), args.Error(1)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetGroup(ctx context.Context, bookingID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) PreviewPrice(ctx context.Context, query booking.PriceQuery) (*booking.PriceQuote, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.PriceQuote), args.Error(1)
}

func (m *MockBookingUseCase) ReconcileOnPaymentSuccess(ctx context.Context, primaryBookingID int64, pnr string) ([]domain.Booking, error) {
	args := m.Called(ctx, primaryBookingID, pnr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ReconcileOnPaymentFailure(ctx context.Context, primaryBookingID int64, reason string) ([]domain.Booking, error) {
	args := m.Called(ctx, primaryBookingID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) InitPayment(ctx context.Context, bookingID int64, amount float64, method string) (*domain.Payment, error) {
	args := m.Called(ctx, bookingID, amount, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockBookingUseCase) ConfirmPayment(ctx context.Context, bookingID int64, success bool) (*booking.ConfirmResult, error) {
	args := m.Called(ctx, bookingID, success)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.ConfirmResult), args.Error(1)
}

func (m *MockBookingUseCase) PaymentStatus(ctx context.Context, bookingID int64) (*booking.PaymentStatusResult, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.PaymentStatusResult), args.Error(1)
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, bookingID int64, reason string) (*domain.CancellationResult, error) {
	args := m.Called(ctx, bookingID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CancellationResult), args.Error(1)
}

func (m *MockBookingUseCase) PreviewCancellation(ctx context.Context, bookingID int64) (*domain.CancellationResult, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CancellationResult), args.Error(1)
}

func (m *MockBookingUseCase) ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) Invoice(ctx context.Context, bookingID int64) (*booking.Invoice, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Invoice), args.Error(1)
}

func (m *MockBookingUseCase) BoardingPass(ctx context.Context, bookingID int64) (*booking.BoardingPass, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.BoardingPass), args.Error(1)
}

func newBookingRouter(service booking.BookingUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewBookingHandler(service).Register(router)
	NewPaymentHandler(service).Register(router)
	return router
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func pendingBooking(id int64, seatNo string) domain.Booking {
	return domain.Booking{
		ID:             id,
		TransactionKey: "tx-1",
		ClientID:       1,
		FlightNo:       101,
		AirportCode:    "DEL",
		SeatNo:         seatNo,
		SeatClass:      domain.SeatClassEconomy,
		PassengerName:  "Asha Rao",
		ShareAmount:    4015.8,
		FinalTotal:     12047.4,
		Status:         domain.BookingStatusPending,
		ExpiresAt:      time.Date(2025, 3, 10, 12, 15, 0, 0, time.UTC),
	}
}

func TestBookingHandler_createWithSeat(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest("POST", "/booking/createWithSeat", map[string]interface{}{
		"client_id":      1,
		"flight_no":      101,
		"airport_code":   "DEL",
		"fares":          5000,
		"seat_no":        "12A",
		"seat_class":     "Economy",
		"passenger_name": "Asha Rao",
		"passenger_age":  31,
	})

	expected := booking.CreateGroupInput{
		ClientID:         1,
		FlightNo:         101,
		AirportCode:      "DEL",
		BasePricePerSeat: 5000,
		Seats: []booking.SeatRequest{
			{SeatNo: "12A", SeatClass: "Economy", PassengerName: "Asha Rao", PassengerAge: 31},
		},
	}
	result := &booking.GroupResult{
		TransactionKey: "tx-1",
		Bookings:       []domain.Booking{pendingBooking(7, "12A")},
		PriceBreakdown: domain.PriceBreakdown{FinalTotal: 5000},
	}
	mockService.On("CreateGroup", c.Request.Context(), expected).Return(result, nil)

	handler.createWithSeat(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response groupResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "tx-1", response.TransactionKey)
	assert.Equal(t, int64(7), response.PrimaryBookingID)
	assert.Equal(t, string(domain.BookingStatusPending), response.Bookings[0].Status)
	assert.Equal(t, 5000.0, response.PriceBreakdown.FinalTotal)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_createWithSeat_rejectsGroups(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newBookingRouter(mockService)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/booking/createWithSeat", map[string]interface{}{
		"client_id": 1, "flight_no": 101, "airport_code": "DEL",
		"seats": []map[string]string{{"seat_no": "12A"}, {"seat_no": "12B"}},
	}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"INVALID_INPUT"`)
	mockService.AssertNotCalled(t, "CreateGroup", mock.Anything, mock.Anything)
}

func TestBookingHandler_createMultipleSeats_errors(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status int
		code   string
		seat   string
	}{
		{"conflict", domain.SeatError(domain.CodeSeatConflict, "12B", "seat is held by another transaction"), http.StatusConflict, "SEAT_CONFLICT", "12B"},
		{"unavailable", domain.SeatError(domain.CodeSeatUnavailable, "12C", "seat is already booked"), http.StatusConflict, "SEAT_UNAVAILABLE", "12C"},
		{"class mismatch", domain.SeatError(domain.CodeClassMismatch, "1A", "seat belongs to Business class"), http.StatusBadRequest, "CLASS_MISMATCH", "1A"},
		{"invalid", domain.InvalidInput("must book between 1 and 10 seats"), http.StatusBadRequest, "INVALID_INPUT", ""},
		{"unknown flight", domain.NotFound("flight 5 not found"), http.StatusNotFound, "NOT_FOUND", ""},
		{"infrastructure", errors.New("connection refused"), http.StatusInternalServerError, "INTERNAL", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := &MockBookingUseCase{}
			router := newBookingRouter(mockService)
			mockService.On("CreateGroup", mock.Anything, mock.Anything).Return(nil, tc.err)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, jsonRequest("POST", "/booking/createMultipleSeats", map[string]interface{}{
				"client_id": 1, "flight_no": 101, "airport_code": "DEL", "basePricePerSeat": 5000,
				"seats": []map[string]string{{"seat_no": "12A"}, {"seat_no": "12B"}},
			}))

			assert.Equal(t, tc.status, w.Code)
			var body errorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Code)
			assert.Equal(t, tc.seat, body.SeatNo)
			assert.NotContains(t, body.Error, "connection refused")
		})
	}
}

func TestBookingHandler_calculatePrice(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newBookingRouter(mockService)

	query := booking.PriceQuery{BasePricePerSeat: 5000, SeatCount: 3, ClientID: 1, FlightNo: 101}
	quote := &booking.PriceQuote{
		PriceBreakdown:    domain.PriceBreakdown{FinalTotal: 12047.4, Savings: 2952.6},
		ClientTier:        domain.TierGold,
		BookingsLastMonth: 12,
	}
	mockService.On("PreviewPrice", mock.Anything, query).Return(quote, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/booking/calculatePrice?basePricePerSeat=5000&seatCount=3&clientId=1&flightNo=101", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"finalTotal":12047.4`)
	assert.Contains(t, w.Body.String(), `"clientTier":"Gold"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/booking/calculatePrice?basePricePerSeat=abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancel(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newBookingRouter(mockService)

	cancelled := pendingBooking(7, "12A")
	cancelled.Status = domain.BookingStatusCancelled
	result := &domain.CancellationResult{
		Booking:              &cancelled,
		Charges:              domain.CancellationCharges{ChargePercent: 75, ChargeAmount: 7500, RefundAmount: 2500, BookingAmount: 10000},
		HoursBeforeDeparture: 6,
		BeforeDeparture:      true,
		Refund:               &domain.Refund{Type: domain.RefundDelayed, Method: domain.PaymentMethodCard, Status: domain.PaymentStatusRefundPending, Amount: 2500, EtaDays: 5},
	}
	mockService.On("CancelBooking", mock.Anything, int64(7), "plans changed").Return(result, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/booking/cancel", map[string]interface{}{"booking_id": 7, "reason": "plans changed"}))

	assert.Equal(t, http.StatusOK, w.Code)
	var body cancellationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 7500.0, body.Charges.ChargeAmount)
	assert.Equal(t, 2500.0, body.Charges.RefundAmount)
	require.NotNil(t, body.Refund)
	assert.Equal(t, 5, body.Refund.EtaDays)
	assert.Equal(t, string(domain.BookingStatusCancelled), body.Booking.Status)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/booking/cancel", map[string]interface{}{"reason": "no id"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancellationCharges(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newBookingRouter(mockService)

	b := pendingBooking(7, "12A")
	mockService.On("PreviewCancellation", mock.Anything, int64(7)).Return(&domain.CancellationResult{
		Booking: &b,
		Charges: domain.CancellationCharges{ChargePercent: 10, ChargeAmount: 401.58, RefundAmount: 3614.22, BookingAmount: 4015.8},
	}, nil)
	mockService.On("PreviewCancellation", mock.Anything, int64(8)).Return(nil, domain.ErrBookingNotFound)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/booking/cancellationCharges/7", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"refundAmount":3614.22`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/booking/cancellationCharges/8", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"BOOKING_NOT_FOUND"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/booking/cancellationCharges/x", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandler_groupInvoiceAndBoardingPass(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newBookingRouter(mockService)

	group := []domain.Booking{pendingBooking(7, "12A"), pendingBooking(8, "12B")}
	mockService.On("GetGroup", mock.Anything, int64(8)).Return(group, nil)
	mockService.On("Invoice", mock.Anything, int64(7)).Return(&booking.Invoice{BookingID: 7, PNR: "K3X9QZ"}, nil)
	mockService.On("BoardingPass", mock.Anything, int64(7)).Return(nil, domain.InvalidInput("booking 7 is pending"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/booking/group/8", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"seat_no":"12B"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/invoice/7", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pnr":"K3X9QZ"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/boardingpass/7", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	mockService.AssertExpectations(t)
}
