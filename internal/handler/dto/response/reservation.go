package response

import (
	"time"

	"childcare-booking/internal/usecase"
	"childcare-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type ReservationResponse struct {
	ID              uuid.UUID         `json:"id"`
	Status          string            `json:"status"`
	Date            string            `json:"date"`
	Hour            string            `json:"hour"`
	Guardian        GuardianResponse  `json:"guardian"`
	Children        []ChildResponse   `json:"children"`
	Payments        []PaymentResponse `json:"payments"`
	TotalHours      int               `json:"totalHours"`
	TotalAmount     int64             `json:"totalAmount"`
	DepositAmount   int64             `json:"depositAmount"`
	RemainingAmount int64             `json:"remainingAmount"`
	HourlyRate      int64             `json:"hourlyRate"`
	DepositPct      int               `json:"depositPct"`
	PreferenceID    *string           `json:"preferenceId,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

type GuardianResponse struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone,omitempty"`
	DocNumber *string `json:"docNumber,omitempty"`
}

type ChildResponse struct {
	ID            uuid.UUID `json:"id"`
	FullName      string    `json:"fullName"`
	AgeYears      int       `json:"ageYears"`
	Hours         int       `json:"hours"`
	HasConditions bool      `json:"hasConditions"`
	Conditions    *string   `json:"conditions,omitempty"`
	DNI           *string   `json:"dni,omitempty"`
}

type PaymentResponse struct {
	ID         uuid.UUID `json:"id"`
	Provider   string    `json:"provider"`
	ProviderID string    `json:"providerId"`
	Amount     int64     `json:"amount"`
	Kind       string    `json:"kind"`
	Status     string    `json:"status"`
	Verified   bool      `json:"verified"`
	CreatedAt  time.Time `json:"createdAt"`
}

func FromReservationView(v *shared.ReservationView) *ReservationResponse {
	resp := &ReservationResponse{
		ID:     v.ID,
		Status: v.Status,
		Date:   v.Date,
		Hour:   v.HourHHMM,
		Guardian: GuardianResponse{
			Name:      v.Guardian.Name,
			Email:     v.Guardian.Email,
			Phone:     v.Guardian.Phone,
			DocNumber: v.Guardian.DocNumber,
		},
		TotalHours:      v.Totals.TotalHours,
		TotalAmount:     v.Totals.TotalAmount,
		DepositAmount:   v.Totals.DepositAmount,
		RemainingAmount: v.Totals.RemainingAmount,
		HourlyRate:      v.HourlyRate,
		DepositPct:      v.DepositPct,
		PreferenceID:    v.PreferenceID,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
	for _, c := range v.Children {
		resp.Children = append(resp.Children, ChildResponse{
			ID:            c.ID,
			FullName:      c.FullName,
			AgeYears:      c.AgeYears,
			Hours:         c.Hours,
			HasConditions: c.HasConditions,
			Conditions:    c.Conditions,
			DNI:           c.DNI,
		})
	}
	for _, p := range v.Payments {
		resp.Payments = append(resp.Payments, PaymentResponse{
			ID:         p.ID,
			Provider:   p.Provider,
			ProviderID: p.ProviderID,
			Amount:     p.Amount,
			Kind:       p.Kind,
			Status:     p.Status,
			Verified:   p.Verified,
			CreatedAt:  p.CreatedAt,
		})
	}
	return resp
}

type HourAvailabilityResponse struct {
	Hour      string `json:"hour"`
	Used      int    `json:"used"`
	Capacity  int    `json:"capacity"`
	Available int    `json:"available"`
}

type AvailabilityResponse struct {
	Date  string                     `json:"date"`
	Hours []HourAvailabilityResponse `json:"hours"`
}

func FromAvailability(date string, hours []usecase.HourAvailability) *AvailabilityResponse {
	resp := &AvailabilityResponse{Date: date}
	for _, h := range hours {
		resp.Hours = append(resp.Hours, HourAvailabilityResponse{
			Hour:      h.HourHHMM,
			Used:      h.Used,
			Capacity:  h.Capacity,
			Available: h.Available,
		})
	}
	return resp
}
