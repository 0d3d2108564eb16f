package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

// createWithSeatRequest accepts the seat either top-level or as a
// one-element seats list.
type createWithSeatRequest struct {
	ClientID         int64                 `json:"client_id"`
	FlightNo         int64                 `json:"flight_no"`
	AirportCode      string                `json:"airport_code"`
	Fares            float64               `json:"fares"`
	BasePricePerSeat float64               `json:"basePricePerSeat"`
	SeatNo           string                `json:"seat_no"`
	SeatClass        string                `json:"seat_class"`
	PassengerName    string                `json:"passenger_name"`
	PassengerAge     int                   `json:"passenger_age"`
	Seats            []booking.SeatRequest `json:"seats"`
}

type createMultipleSeatsRequest struct {
	ClientID         int64                 `json:"client_id"`
	FlightNo         int64                 `json:"flight_no"`
	AirportCode      string                `json:"airport_code"`
	BasePricePerSeat float64               `json:"basePricePerSeat"`
	Seats            []booking.SeatRequest `json:"seats"`
}

type groupResponse struct {
	TransactionKey   string                `json:"transaction_key"`
	PrimaryBookingID int64                 `json:"booking_id"`
	BookingIDs       []int64               `json:"booking_ids"`
	Bookings         []bookingResponse     `json:"bookings"`
	PriceBreakdown   domain.PriceBreakdown `json:"priceBreakdown"`
}

type cancelRequest struct {
	BookingID int64  `json:"booking_id"`
	Reason    string `json:"reason"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router gin.IRouter) {
	g := router.Group("/booking")
	g.POST("/createWithSeat", h.createWithSeat)
	g.POST("/createMultipleSeats", h.createMultipleSeats)
	g.GET("/calculatePrice", h.calculatePrice)
	g.POST("/cancel", h.cancel)
	g.GET("/cancellationCharges/:booking_id", h.cancellationCharges)
	g.GET("/group/:booking_id", h.group)

	router.GET("/invoice/:booking_id", h.invoice)
	router.GET("/boardingpass/:booking_id", h.boardingPass)
}

func (h *BookingHandler) createWithSeat(c *gin.Context) {
	var req createWithSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	seats := req.Seats
	if len(seats) == 0 && req.SeatNo != "" {
		seats = []booking.SeatRequest{{
			SeatNo:        req.SeatNo,
			SeatClass:     req.SeatClass,
			PassengerName: req.PassengerName,
			PassengerAge:  req.PassengerAge,
		}}
	}
	if len(seats) != 1 {
		badRequest(c, "exactly one seat is required, use /booking/createMultipleSeats for groups")
		return
	}
	price := req.BasePricePerSeat
	if price == 0 {
		price = req.Fares
	}

	h.create(c, booking.CreateGroupInput{
		ClientID:         req.ClientID,
		FlightNo:         req.FlightNo,
		AirportCode:      req.AirportCode,
		BasePricePerSeat: price,
		Seats:            seats,
	})
}

func (h *BookingHandler) createMultipleSeats(c *gin.Context) {
	var req createMultipleSeatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.create(c, booking.CreateGroupInput{
		ClientID:         req.ClientID,
		FlightNo:         req.FlightNo,
		AirportCode:      req.AirportCode,
		BasePricePerSeat: req.BasePricePerSeat,
		Seats:            req.Seats,
	})
}

func (h *BookingHandler) create(c *gin.Context, input booking.CreateGroupInput) {
	result, err := h.service.CreateGroup(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := groupResponse{
		TransactionKey: result.TransactionKey,
		Bookings:       toBookingResponses(result.Bookings),
		PriceBreakdown: result.PriceBreakdown,
	}
	for _, b := range result.Bookings {
		resp.BookingIDs = append(resp.BookingIDs, b.ID)
	}
	if len(resp.BookingIDs) > 0 {
		resp.PrimaryBookingID = resp.BookingIDs[0]
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *BookingHandler) calculatePrice(c *gin.Context) {
	var q booking.PriceQuery
	var err error

	if q.BasePricePerSeat, err = strconv.ParseFloat(c.Query("basePricePerSeat"), 64); err != nil {
		badRequest(c, "basePricePerSeat must be a number")
		return
	}
	if q.SeatCount, err = strconv.Atoi(c.DefaultQuery("seatCount", "1")); err != nil {
		badRequest(c, "seatCount must be an integer")
		return
	}
	if raw := c.Query("clientId"); raw != "" {
		if q.ClientID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			badRequest(c, "clientId must be an integer")
			return
		}
	}
	if raw := c.Query("flightNo"); raw != "" {
		if q.FlightNo, err = strconv.ParseInt(raw, 10, 64); err != nil {
			badRequest(c, "flightNo must be an integer")
			return
		}
	}

	quote, err := h.service.PreviewPrice(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.BookingID <= 0 {
		badRequest(c, "booking_id is required")
		return
	}

	result, err := h.service.CancelBooking(c.Request.Context(), req.BookingID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCancellationResponse(result))
}

func (h *BookingHandler) cancellationCharges(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}
	result, err := h.service.PreviewCancellation(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCancellationResponse(result))
}

func (h *BookingHandler) group(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}
	group, err := h.service.GetGroup(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": toBookingResponses(group)})
}

func (h *BookingHandler) invoice(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}
	inv, err := h.service.Invoice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *BookingHandler) boardingPass(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}
	pass, err := h.service.BoardingPass(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pass)
}

func bookingIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("booking_id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid booking_id")
		return 0, false
	}
	return id, true
}
