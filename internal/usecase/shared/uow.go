package shared

import (
	"context"
)

// UnitOfWork is the storage transaction boundary. The atomic transaction is
// the only concurrency-control primitive in this system: every
// read-then-write that must be consistent happens inside one Within call.
type UnitOfWork interface {
	// Within: full read-write transaction with retry on serialization failures
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithDB: single-query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx exposes the repositories bound to one transaction (or to the pool for
// WithDB access).
type Tx interface {
	Reservations() ReservationRepository
	Guardians() GuardianRepository
	SlotStock() SlotStockRepository
	Payments() PaymentRepository
	PaymentEvents() PaymentEventRepository
	AppConfig() AppConfigRepository
}
