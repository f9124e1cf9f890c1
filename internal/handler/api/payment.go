package api

import (
	"errors"
	"net/http"

	"childcare-booking/internal/domain/reservation"
	reqdto "childcare-booking/internal/handler/dto/request"
	resdto "childcare-booking/internal/handler/dto/response"
	"childcare-booking/internal/handler/httperr"
	"childcare-booking/internal/usecase"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	checkoutUseCase  usecase.CheckoutUseCase
	reconcileUseCase usecase.ReconcileUseCase
}

func NewPaymentHandler(checkoutUseCase usecase.CheckoutUseCase, reconcileUseCase usecase.ReconcileUseCase) *PaymentHandler {
	return &PaymentHandler{
		checkoutUseCase:  checkoutUseCase,
		reconcileUseCase: reconcileUseCase,
	}
}

// @Summary Create checkout preference
// @Description Create a provider checkout preference for the reservation deposit
// @Tags payments
// @Accept json
// @Produce json
// @Param request body reqdto.CreatePreferenceRequest true "Preference request"
// @Success 201 {object} resdto.CheckoutResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /payments/preference [post]
func (h *PaymentHandler) CreatePreference(c *gin.Context) {
	var req reqdto.CreatePreferenceRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format")
		return
	}

	result, err := h.checkoutUseCase.CreatePreference(c.Request.Context(), req.ReservationID)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrReservationNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Reservation not found")
		case errors.Is(err, usecase.ErrReservationCompleted):
			httperr.AbortWithError(c, http.StatusConflict, err, "Reservation is already completed")
		case errors.Is(err, reservation.ErrNoHoursOrAmount):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Reservation has no hours or amount to charge")
		default:
			httperr.AbortWithError(c, http.StatusBadGateway, err, "Payment provider is unavailable")
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromCheckoutResult(result))
}

// @Summary Finalize checkout return
// @Description Confirm a payment from the provider return redirect
// @Tags payments
// @Accept json
// @Produce json
// @Param request body reqdto.FinalizeRequest true "Return parameters"
// @Success 200 {object} resdto.ReconcileResponse
// @Failure 202 {object} resdto.ReconcileResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /payments/finalize [post]
func (h *PaymentHandler) Finalize(c *gin.Context) {
	var req reqdto.FinalizeRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format")
		return
	}

	result, err := h.reconcileUseCase.Finalize(c.Request.Context(), req)
	h.respond(c, result, err)
}

// @Summary Reconcile a payment
// @Description Operator replay of a payment that was never confirmed
// @Tags payments
// @Accept json
// @Produce json
// @Param request body reqdto.ReconcileRequest true "Provider identifiers"
// @Success 200 {object} resdto.ReconcileResponse
// @Failure 202 {object} resdto.ReconcileResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /payments/reconcile [post]
func (h *PaymentHandler) Reconcile(c *gin.Context) {
	var req reqdto.ReconcileRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format")
		return
	}

	result, err := h.reconcileUseCase.Reconcile(c.Request.Context(), req)
	h.respond(c, result, err)
}

// respond maps a confirmation outcome to HTTP. Not-ready is 202 so the
// caller knows to retry; capacity and consistency conflicts are 409.
func (h *PaymentHandler) respond(c *gin.Context, result *usecase.ReconcileResult, err error) {
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrPaymentNotReady):
			resp := &usecase.ReconcileResult{Outcome: usecase.OutcomeNotReady}
			if result != nil {
				resp = result
			}
			c.JSON(http.StatusAccepted, resdto.FromReconcileResult(resp))
		case errors.Is(err, usecase.ErrReservationNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Reservation not found")
		case errors.Is(err, usecase.ErrIncompleteReservation):
			httperr.AbortWithError(c, http.StatusConflict, err, "Reservation has no children to reconcile")
		case errors.Is(err, usecase.ErrNoCapacity):
			httperr.AbortWithError(c, http.StatusConflict, err, "Slot capacity exceeded")
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromReconcileResult(result))
}
