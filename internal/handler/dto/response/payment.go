package response

import (
	"childcare-booking/internal/usecase"

	"github.com/google/uuid"
)

type CheckoutResponse struct {
	PreferenceID     string    `json:"preferenceId"`
	InitPoint        string    `json:"initPoint"`
	SandboxInitPoint string    `json:"sandboxInitPoint,omitempty"`
	ReservationID    uuid.UUID `json:"reservationId"`
	DepositAmount    int64     `json:"depositAmount"`
}

func FromCheckoutResult(r *usecase.CheckoutResult) *CheckoutResponse {
	return &CheckoutResponse{
		PreferenceID:     r.PreferenceID,
		InitPoint:        r.InitPoint,
		SandboxInitPoint: r.SandboxInitPoint,
		ReservationID:    r.ReservationID,
		DepositAmount:    r.DepositAmount,
	}
}

type ReconcileResponse struct {
	Outcome       string `json:"outcome"`
	Reason        string `json:"reason,omitempty"`
	ReservationID string `json:"reservationId,omitempty"`
	ProviderID    string `json:"providerId,omitempty"`
	Kind          string `json:"kind,omitempty"`
	Applied       bool   `json:"applied"`
}

func FromReconcileResult(r *usecase.ReconcileResult) *ReconcileResponse {
	return &ReconcileResponse{
		Outcome:       string(r.Outcome),
		Reason:        r.Reason,
		ReservationID: r.ReservationID,
		ProviderID:    r.ProviderID,
		Kind:          r.Kind,
		Applied:       r.Applied,
	}
}
