package api

import (
	"errors"
	"net/http"

	resdto "childcare-booking/internal/handler/dto/response"
	"childcare-booking/internal/handler/httperr"
	"childcare-booking/internal/usecase"

	"github.com/gin-gonic/gin"
)

type AvailabilityHandler struct {
	availabilityUseCase usecase.AvailabilityUseCase
}

func NewAvailabilityHandler(availabilityUseCase usecase.AvailabilityUseCase) *AvailabilityHandler {
	return &AvailabilityHandler{
		availabilityUseCase: availabilityUseCase,
	}
}

// @Summary Get slot availability
// @Description Get remaining per-hour capacity for one day
// @Tags availability
// @Produce json
// @Param date query string true "Day to query (YYYY-MM-DD)"
// @Success 200 {object} resdto.AvailabilityResponse
// @Failure 400 {object} httperr.Response
// @Router /availability [get]
func (h *AvailabilityHandler) GetAvailability(c *gin.Context) {
	date := c.Query("date")

	hours, err := h.availabilityUseCase.GetAvailability(c.Request.Context(), date)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidDate):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Date must be YYYY-MM-DD")
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromAvailability(date, hours))
}
