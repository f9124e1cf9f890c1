//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"testing"

	"childcare-booking/internal/domain/reservation"
	"childcare-booking/internal/handler/api"
	reqdto "childcare-booking/internal/handler/dto/request"
	resdto "childcare-booking/internal/handler/dto/response"
	"childcare-booking/internal/usecase"
	"childcare-booking/tests/common/httptest"
	usecasemock "childcare-booking/tests/mock/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

var errDatabase = errors.New("database error")

type PaymentHandlerTestSuite struct {
	suite.Suite
	router        *gin.Engine
	mockCtrl      *gomock.Controller
	mockCheckout  *usecasemock.MockCheckoutUseCase
	mockReconcile *usecasemock.MockReconcileUseCase
	handler       *api.PaymentHandler
}

func (s *PaymentHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCheckout = usecasemock.NewMockCheckoutUseCase(s.mockCtrl)
	s.mockReconcile = usecasemock.NewMockReconcileUseCase(s.mockCtrl)
	s.handler = api.NewPaymentHandler(s.mockCheckout, s.mockReconcile)

	s.router.POST("/payments/preference", s.handler.CreatePreference)
	s.router.POST("/payments/finalize", s.handler.Finalize)
	s.router.POST("/payments/reconcile", s.handler.Reconcile)
}

func (s *PaymentHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestPaymentHandlerSuite(t *testing.T) {
	suite.Run(t, new(PaymentHandlerTestSuite))
}

// ================================================================================
// TestCreatePreference
// ================================================================================

func (s *PaymentHandlerTestSuite) TestCreatePreference() {
	url := "/payments/preference"
	reservationID := uuid.New()
	reqBody := reqdto.CreatePreferenceRequest{ReservationID: reservationID}

	s.Run("success: returns 201 Created with checkout data", func() {
		s.mockCheckout.EXPECT().CreatePreference(gomock.Any(), reservationID).
			Return(&usecase.CheckoutResult{
				PreferenceID:  "pref-1",
				InitPoint:     "https://mp/init",
				ReservationID: reservationID,
				DepositAmount: 21000,
			}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody)

		var body resdto.CheckoutResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal("pref-1", body.PreferenceID)
		s.Equal(int64(21000), body.DepositAmount)
	})

	s.Run("error: 400 Bad Request without a reservation id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			usecaseError   error
			expectedStatus int
			expectedMsg    string
		}{
			{
				name:           "reservation not found",
				usecaseError:   usecase.ErrReservationNotFound,
				expectedStatus: http.StatusNotFound,
				expectedMsg:    "Reservation not found",
			},
			{
				name:           "reservation already completed",
				usecaseError:   usecase.ErrReservationCompleted,
				expectedStatus: http.StatusConflict,
				expectedMsg:    "already completed",
			},
			{
				name:           "nothing to charge",
				usecaseError:   reservation.ErrNoHoursOrAmount,
				expectedStatus: http.StatusBadRequest,
				expectedMsg:    "no hours or amount",
			},
			{
				name:           "provider failure",
				usecaseError:   errDatabase,
				expectedStatus: http.StatusBadGateway,
				expectedMsg:    "Payment provider is unavailable",
			},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCheckout.EXPECT().CreatePreference(gomock.Any(), reservationID).
					Return(nil, tc.usecaseError).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody)
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
			})
		}
	})
}

// ================================================================================
// TestFinalize
// ================================================================================

func (s *PaymentHandlerTestSuite) TestFinalize() {
	url := "/payments/finalize"
	reqBody := reqdto.FinalizeRequest{PaymentID: "pay-1", Status: "approved"}

	s.Run("success: returns 200 OK with the reconciliation result", func() {
		s.mockReconcile.EXPECT().Finalize(gomock.Any(), reqBody).
			Return(&usecase.ReconcileResult{
				Outcome:    usecase.OutcomeResolved,
				ProviderID: "pay-1",
				Kind:       "deposit",
				Applied:    true,
			}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody)

		var body resdto.ReconcileResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.True(body.Applied)
		s.Equal("resolved", body.Outcome)
	})

	s.Run("202: payment not visible yet", func() {
		s.mockReconcile.EXPECT().Finalize(gomock.Any(), reqBody).
			Return(&usecase.ReconcileResult{Outcome: usecase.OutcomeNotReady, Reason: "payment not found yet"},
				usecase.ErrPaymentNotReady).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody)

		var body resdto.ReconcileResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusAccepted, &body)
		s.Equal("not_ready", body.Outcome)
		s.Equal("payment not found yet", body.Reason)
	})

	s.Run("202: not ready without a result still answers a body", func() {
		s.mockReconcile.EXPECT().Finalize(gomock.Any(), reqBody).
			Return(nil, usecase.ErrPaymentNotReady).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody)

		var body resdto.ReconcileResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusAccepted, &body)
		s.Equal("not_ready", body.Outcome)
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			usecaseError   error
			expectedStatus int
			expectedMsg    string
		}{
			{
				name:           "reservation not found",
				usecaseError:   usecase.ErrReservationNotFound,
				expectedStatus: http.StatusNotFound,
				expectedMsg:    "Reservation not found",
			},
			{
				name:           "no children to reconcile",
				usecaseError:   usecase.ErrIncompleteReservation,
				expectedStatus: http.StatusConflict,
				expectedMsg:    "no children",
			},
			{
				name:           "capacity exceeded",
				usecaseError:   usecase.ErrNoCapacity,
				expectedStatus: http.StatusConflict,
				expectedMsg:    "capacity",
			},
			{
				name:           "internal server error",
				usecaseError:   errDatabase,
				expectedStatus: http.StatusInternalServerError,
				expectedMsg:    "Internal server error",
			},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockReconcile.EXPECT().Finalize(gomock.Any(), reqBody).
					Return(nil, tc.usecaseError).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody)
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
			})
		}
	})
}

// ================================================================================
// TestReconcile
// ================================================================================

func (s *PaymentHandlerTestSuite) TestReconcile() {
	url := "/payments/reconcile"
	reqBody := reqdto.ReconcileRequest{MerchantOrderID: "55"}

	s.Run("success: operator replay resolves by order id", func() {
		s.mockReconcile.EXPECT().Reconcile(gomock.Any(), reqBody).
			Return(&usecase.ReconcileResult{
				Outcome:    usecase.OutcomeResolved,
				ProviderID: "pay-9",
				Applied:    false,
			}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody)

		var body resdto.ReconcileResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("resolved", body.Outcome)
		s.Equal("pay-9", body.ProviderID)
	})

	s.Run("202: nothing resolvable yet", func() {
		s.mockReconcile.EXPECT().Reconcile(gomock.Any(), reqBody).
			Return(&usecase.ReconcileResult{Outcome: usecase.OutcomeNotReady}, usecase.ErrPaymentNotReady).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody)
		s.Equal(http.StatusAccepted, rec.Code)
	})
}
