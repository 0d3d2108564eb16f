package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/airreservation/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router gin.IRouter) {
	router.GET("/flights", h.list)
	router.GET("/flights/:flight_no", h.get)
	router.GET("/SeatMap/:flight_no", h.seatMap)
}

func (h *FlightHandler) list(c *gin.Context) {
	flights, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flights)
}

func (h *FlightHandler) get(c *gin.Context) {
	flightNo, ok := flightNoParam(c)
	if !ok {
		return
	}
	flight, err := h.service.GetByNo(c.Request.Context(), flightNo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) seatMap(c *gin.Context) {
	flightNo, ok := flightNoParam(c)
	if !ok {
		return
	}
	seatMap, err := h.service.SeatMap(c.Request.Context(), flightNo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, seatMap)
}

func flightNoParam(c *gin.Context) (int64, bool) {
	flightNo, err := strconv.ParseInt(c.Param("flight_no"), 10, 64)
	if err != nil {
		badRequest(c, "invalid flight_no")
		return 0, false
	}
	return flightNo, true
}
