//go:build unit

package api_test

import (
	"net/http"
	"testing"

	"childcare-booking/internal/handler/api"
	resdto "childcare-booking/internal/handler/dto/response"
	"childcare-booking/internal/usecase"
	"childcare-booking/tests/common/httptest"
	usecasemock "childcare-booking/tests/mock/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type WebhookHandlerTestSuite struct {
	suite.Suite
	router        *gin.Engine
	mockCtrl      *gomock.Controller
	mockReconcile *usecasemock.MockReconcileUseCase
	handler       *api.WebhookHandler
}

func (s *WebhookHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockReconcile = usecasemock.NewMockReconcileUseCase(s.mockCtrl)
	s.handler = api.NewWebhookHandler(s.mockReconcile)

	s.router.POST("/payments/webhook", s.handler.Receive)
	s.router.GET("/payments/webhook", s.handler.Ping)
}

func (s *WebhookHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestWebhookHandlerSuite(t *testing.T) {
	suite.Run(t, new(WebhookHandlerTestSuite))
}

func (s *WebhookHandlerTestSuite) TestReceive() {
	applied := &usecase.ReconcileResult{
		Outcome:    usecase.OutcomeResolved,
		ProviderID: "pay-1",
		Kind:       "deposit",
		Applied:    true,
	}

	s.Run("success: IPN query parameters drive the reconciliation", func() {
		s.mockReconcile.EXPECT().
			HandleWebhook(gomock.Any(), usecase.WebhookInput{Topic: "payment", DataID: "pay-1"}).
			Return(applied, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/payments/webhook?topic=payment&id=pay-1", nil)

		var body resdto.ReconcileResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.True(body.Applied)
		s.Equal("deposit", body.Kind)
	})

	s.Run("success: webhooks API body with unmodeled fields still decodes", func() {
		s.mockReconcile.EXPECT().
			HandleWebhook(gomock.Any(), usecase.WebhookInput{Topic: "payment", DataID: "pay-1"}).
			Return(applied, nil).Times(1)

		raw := []byte(`{
			"action": "payment.updated",
			"api_version": "v1",
			"type": "payment",
			"live_mode": false,
			"user_id": 12345,
			"data": {"id": "pay-1"}
		}`)
		rec := httptest.PerformRawRequest(s.T(), s.router, http.MethodPost, "/payments/webhook", raw)
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("success: merchant_order topic carries the order id", func() {
		s.mockReconcile.EXPECT().
			HandleWebhook(gomock.Any(), usecase.WebhookInput{Topic: "merchant_order", DataID: "55", OrderID: "55"}).
			Return(applied, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/payments/webhook?topic=merchant_order&id=55", nil)
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("success: query parameters win over the body", func() {
		s.mockReconcile.EXPECT().
			HandleWebhook(gomock.Any(), usecase.WebhookInput{Topic: "payment", DataID: "pay-query"}).
			Return(applied, nil).Times(1)

		raw := []byte(`{"type": "payment", "data": {"id": "pay-body"}}`)
		rec := httptest.PerformRawRequest(s.T(), s.router, http.MethodPost, "/payments/webhook?topic=payment&data.id=pay-query", raw)
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("success: notification without identifiers is acknowledged as ignored", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/payments/webhook", nil)

		var body map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("ignored", body["outcome"])
	})

	s.Run("202: payment not visible yet asks the provider to retry", func() {
		s.mockReconcile.EXPECT().
			HandleWebhook(gomock.Any(), gomock.Any()).
			Return(&usecase.ReconcileResult{Outcome: usecase.OutcomeNotReady}, usecase.ErrPaymentNotReady).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/payments/webhook?topic=payment&id=pay-1", nil)
		s.Equal(http.StatusAccepted, rec.Code)
	})

	s.Run("200: unknown reservation is terminal for the provider", func() {
		s.mockReconcile.EXPECT().
			HandleWebhook(gomock.Any(), gomock.Any()).
			Return(nil, usecase.ErrReservationNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/payments/webhook?topic=payment&id=pay-1", nil)

		var body map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("ignored", body["outcome"])
	})

	s.Run("200: capacity exhaustion is terminal but flagged", func() {
		s.mockReconcile.EXPECT().
			HandleWebhook(gomock.Any(), gomock.Any()).
			Return(nil, usecase.ErrNoCapacity).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/payments/webhook?topic=payment&id=pay-1", nil)

		var body map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("error", body["outcome"])
	})

	s.Run("500: infra failures let the provider retry", func() {
		s.mockReconcile.EXPECT().
			HandleWebhook(gomock.Any(), gomock.Any()).
			Return(nil, errDatabase).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/payments/webhook?topic=payment&id=pay-1", nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusInternalServerError, "Internal server error")
	})
}

func (s *WebhookHandlerTestSuite) TestPing() {
	rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/payments/webhook", nil)

	var body map[string]string
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
	s.Equal("ok", body["status"])
}
