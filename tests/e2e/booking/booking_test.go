//go:build e2e

package booking_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	reqdto "childcare-booking/internal/handler/dto/request"
	resdto "childcare-booking/internal/handler/dto/response"
	"childcare-booking/tests/e2e"

	commonhttp "childcare-booking/tests/common/httptest"

	"github.com/stretchr/testify/suite"
)

// fakeProvider simulates the MercadoPago REST API: preferences are accepted
// and remembered, payments become visible only after the test approves them.
type fakeProvider struct {
	mu          sync.Mutex
	server      *httptest.Server
	preferences map[string]map[string]any // preference id -> request body
	payments    map[string]map[string]any // payment id -> payment document
	prefSeq     int
}

func newFakeProvider() *fakeProvider {
	fp := &fakeProvider{
		preferences: map[string]map[string]any{},
		payments:    map[string]map[string]any{},
	}
	fp.server = httptest.NewServer(http.HandlerFunc(fp.handle))
	return fp
}

func (fp *fakeProvider) handle(w http.ResponseWriter, r *http.Request) {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/checkout/preferences":
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fp.prefSeq++
		id := fmt.Sprintf("pref-%d", fp.prefSeq)
		fp.preferences[id] = body
		json.NewEncoder(w).Encode(map[string]any{
			"id":                 id,
			"init_point":         fp.server.URL + "/checkout/" + id,
			"sandbox_init_point": fp.server.URL + "/sandbox/" + id,
		})

	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1/payments/"):
		id := strings.TrimPrefix(r.URL.Path, "/v1/payments/")
		payment, ok := fp.payments[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(payment)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// approvePayment makes an approved payment visible, carrying the reference
// and slot metadata of the given preference like the real provider does.
func (fp *fakeProvider) approvePayment(paymentID, preferenceID string, amount float64) {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	pref := fp.preferences[preferenceID]
	fp.payments[paymentID] = map[string]any{
		"id":                 paymentID,
		"status":             "approved",
		"external_reference": pref["external_reference"],
		"transaction_amount": amount,
		"metadata":           pref["metadata"],
	}
}

func (fp *fakeProvider) Close() { fp.server.Close() }

type BookingE2ETestSuite struct {
	e2e.SharedSuite
	provider *fakeProvider
}

func (s *BookingE2ETestSuite) SetupSuite() {
	s.provider = newFakeProvider()
	s.ProviderURL = s.provider.server.URL
	s.SetupSharedSuite(s.T())
}

func (s *BookingE2ETestSuite) TearDownSuite() {
	if s.provider != nil {
		s.provider.Close()
	}
}

func TestBookingE2E(t *testing.T) {
	suite.Run(t, new(BookingE2ETestSuite))
}

func createReservationRequest() reqdto.CreateReservationRequest {
	phone := "+549115555555"
	dni := "51222333"
	return reqdto.CreateReservationRequest{
		Guardian: reqdto.GuardianPayload{
			Name:  "Ana García",
			Email: "ana@example.com",
			Phone: &phone,
		},
		Date: "2026-10-01",
		Hour: 10,
		Children: []reqdto.ChildPayload{
			{FullName: "Luz García", AgeYears: 4, DNI: &dni, Hours: 2},
			{FullName: "Teo García", AgeYears: 6, Hours: 1},
		},
	}
}

func (s *BookingE2ETestSuite) createDraft() resdto.ReservationResponse {
	rec := commonhttp.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/reservations", createReservationRequest())

	var created resdto.ReservationResponse
	commonhttp.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &created)
	return created
}

func (s *BookingE2ETestSuite) createPreference(reservation resdto.ReservationResponse) resdto.CheckoutResponse {
	rec := commonhttp.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/payments/preference",
		reqdto.CreatePreferenceRequest{ReservationID: reservation.ID})

	var checkout resdto.CheckoutResponse
	commonhttp.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &checkout)
	return checkout
}

func (s *BookingE2ETestSuite) getReservation(id string) resdto.ReservationResponse {
	rec := commonhttp.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/reservations/"+id, nil)

	var view resdto.ReservationResponse
	commonhttp.AssertSuccessResponse(s.T(), rec, http.StatusOK, &view)
	return view
}

func (s *BookingE2ETestSuite) getAvailability(date string) resdto.AvailabilityResponse {
	rec := commonhttp.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/availability?date="+date, nil)

	var availability resdto.AvailabilityResponse
	commonhttp.AssertSuccessResponse(s.T(), rec, http.StatusOK, &availability)
	return availability
}

func availabilityFor(a resdto.AvailabilityResponse, hour string) *resdto.HourAvailabilityResponse {
	for i := range a.Hours {
		if a.Hours[i].Hour == hour {
			return &a.Hours[i]
		}
	}
	return nil
}

func (s *BookingE2ETestSuite) TestBookingFlow() {
	s.Run("draft is priced from the settings row", func() {
		created := s.createDraft()

		s.Equal("draft", created.Status)
		s.Equal(3, created.TotalHours)
		s.Equal(int64(42000), created.TotalAmount)
		s.Equal(int64(21000), created.DepositAmount)
		s.Len(created.Children, 2)
	})

	s.Run("editing children reprices the reservation", func() {
		created := s.createDraft()

		update := reqdto.UpdateChildrenRequest{
			Children: []reqdto.ChildPayload{
				{FullName: "Luz García", AgeYears: 4, Hours: 4},
			},
		}
		rec := commonhttp.PerformRequest(s.T(), s.Router, http.MethodPut,
			"/api/reservations/"+created.ID.String()+"/children", update)

		var updated resdto.ReservationResponse
		commonhttp.AssertSuccessResponse(s.T(), rec, http.StatusOK, &updated)
		s.Equal(4, updated.TotalHours)
		s.Equal(int64(56000), updated.TotalAmount)
		s.Len(updated.Children, 1)
	})

	s.Run("preference creation moves the reservation to pending_payment", func() {
		created := s.createDraft()
		checkout := s.createPreference(created)

		s.NotEmpty(checkout.PreferenceID)
		s.Equal(int64(21000), checkout.DepositAmount)

		view := s.getReservation(created.ID.String())
		s.Equal("pending_payment", view.Status)
		s.NotNil(view.PreferenceID)
	})

	s.Run("webhook confirms the payment and consumes capacity", func() {
		created := s.createDraft()
		checkout := s.createPreference(created)
		s.provider.approvePayment("777", checkout.PreferenceID, 21000)

		rec := commonhttp.PerformRequest(s.T(), s.Router, http.MethodPost,
			"/api/payments/webhook?topic=payment&id=777", nil)

		var result resdto.ReconcileResponse
		commonhttp.AssertSuccessResponse(s.T(), rec, http.StatusOK, &result)
		s.True(result.Applied)
		s.Equal("deposit", result.Kind)

		view := s.getReservation(created.ID.String())
		s.Equal("completed", view.Status)
		s.Require().Len(view.Payments, 1)
		s.Equal("777", view.Payments[0].ProviderID)
		s.True(view.Payments[0].Verified)

		availability := s.getAvailability("2026-10-01")
		s.Require().NotNil(availabilityFor(availability, "10:00"))
		s.Equal(2, availabilityFor(availability, "10:00").Used)
		s.Equal(8, availabilityFor(availability, "10:00").Available)
		s.Equal(1, availabilityFor(availability, "11:00").Used)
	})

	s.Run("replayed webhook does not double-book", func() {
		created := s.createDraft()
		checkout := s.createPreference(created)
		s.provider.approvePayment("778", checkout.PreferenceID, 21000)

		first := commonhttp.PerformRequest(s.T(), s.Router, http.MethodPost,
			"/api/payments/webhook?topic=payment&id=778", nil)
		s.Equal(http.StatusOK, first.Code)

		second := commonhttp.PerformRequest(s.T(), s.Router, http.MethodPost,
			"/api/payments/webhook?topic=payment&id=778", nil)

		var result resdto.ReconcileResponse
		commonhttp.AssertSuccessResponse(s.T(), second, http.StatusOK, &result)
		s.False(result.Applied)

		availability := s.getAvailability("2026-10-01")
		s.Equal(2, availabilityFor(availability, "10:00").Used)

		view := s.getReservation(created.ID.String())
		s.Len(view.Payments, 1)
	})

	s.Run("webhook for an invisible payment answers 202", func() {
		created := s.createDraft()
		s.createPreference(created)

		rec := commonhttp.PerformRequest(s.T(), s.Router, http.MethodPost,
			"/api/payments/webhook?topic=payment&id=does-not-exist", nil)
		s.Equal(http.StatusAccepted, rec.Code)

		view := s.getReservation(created.ID.String())
		s.Equal("pending_payment", view.Status)
	})

	s.Run("webhook cannot oversell an almost-full slot", func() {
		created := s.createDraft() // needs 2 places at 10:00
		checkout := s.createPreference(created)

		_, err := s.DB.Exec(context.Background(),
			`INSERT INTO slot_stock (date, hour, used) VALUES ('2026-10-01', 10, 9)`)
		s.Require().NoError(err)

		s.provider.approvePayment("780", checkout.PreferenceID, 21000)
		rec := commonhttp.PerformRequest(s.T(), s.Router, http.MethodPost,
			"/api/payments/webhook?topic=payment&id=780", nil)

		var body map[string]any
		commonhttp.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("error", body["outcome"])

		availability := s.getAvailability("2026-10-01")
		s.Equal(9, availabilityFor(availability, "10:00").Used, "rejected increment must not land")

		view := s.getReservation(created.ID.String())
		s.Equal("pending_payment", view.Status)
	})

	s.Run("finalize confirms from the return redirect", func() {
		created := s.createDraft()
		checkout := s.createPreference(created)
		s.provider.approvePayment("779", checkout.PreferenceID, 21000)

		rec := commonhttp.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/payments/finalize",
			reqdto.FinalizeRequest{PaymentID: "779", Status: "approved"})

		var result resdto.ReconcileResponse
		commonhttp.AssertSuccessResponse(s.T(), rec, http.StatusOK, &result)
		s.True(result.Applied)

		view := s.getReservation(created.ID.String())
		s.Equal("completed", view.Status)
	})
}
