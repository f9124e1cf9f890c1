package usecase

import (
	"context"

	"childcare-booking/internal/pkg/errs"
)

// ErrProviderNotFound marks a provider-side 404: the payment or order ID is
// unknown (yet). Callers treat it as "not ready", not as failure.
var ErrProviderNotFound = errs.New("provider resource not found")

// SlotMetadata is the reservation snapshot embedded in the checkout
// preference and echoed back on the payment. The slot part, when present,
// wins over the stored children set, so a payment still reconciles correctly
// after the reservation was edited mid-checkout; the reservation ID is
// preferred over external_reference when identifying the reservation.
type SlotMetadata struct {
	ReservationID string
	Date          string
	Hour          int
	ChildrenHours []int
}

// ProviderPayment is the subset of a provider payment the reconciliation
// needs. Amount is in whole currency units; Raw keeps the provider response
// for audit.
type ProviderPayment struct {
	ID                string
	Status            string
	ExternalReference string
	Amount            int64
	Metadata          *SlotMetadata
	Raw               []byte
}

type OrderPayment struct {
	ID     string
	Status string
	Amount int64
}

// ProviderOrder is a merchant order: the checkout-session-level view that
// aggregates its payments.
type ProviderOrder struct {
	ID                string
	Status            string
	ExternalReference string
	PaidAmount        int64
	Payments          []OrderPayment
	Raw               []byte
}

type PreferenceItem struct {
	Title     string
	Quantity  int
	UnitPrice int64
}

type PreferenceBackURLs struct {
	Success string
	Failure string
	Pending string
}

type PreferenceRequest struct {
	ExternalReference   string
	Items               []PreferenceItem
	PayerEmail          string
	PayerName           string
	Metadata            map[string]any
	BackURLs            PreferenceBackURLs
	NotificationURL     string
	StatementDescriptor string
	BinaryMode          bool
	AutoReturn          string
}

type PreferenceResult struct {
	ID               string
	InitPoint        string
	SandboxInitPoint string
}

// PaymentGateway abstracts the payment provider's REST API.
type PaymentGateway interface {
	Payment(ctx context.Context, id string) (*ProviderPayment, error)
	MerchantOrder(ctx context.Context, id string) (*ProviderOrder, error)
	CreatePreference(ctx context.Context, req PreferenceRequest) (*PreferenceResult, error)
}
