package request

import "github.com/google/uuid"

type CreatePreferenceRequest struct {
	ReservationID uuid.UUID `json:"reservationId" binding:"required"`
}

// FinalizeRequest carries the provider return-URL parameters forwarded by the
// frontend after checkout.
type FinalizeRequest struct {
	PaymentID         string `json:"paymentId"`
	MerchantOrderID   string `json:"merchantOrderId"`
	ExternalReference string `json:"externalReference"`
	Status            string `json:"status"`
}

// ReconcileRequest is the operator-driven replay of a payment that a webhook
// or return never confirmed.
type ReconcileRequest struct {
	PaymentID         string `json:"paymentId"`
	MerchantOrderID   string `json:"merchantOrderId"`
	ExternalReference string `json:"externalReference"`
	Status            string `json:"status"`
}
