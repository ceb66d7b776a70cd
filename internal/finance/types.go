package finance

import (
	"context"
	"strings"
	"time"
)

// Record is one stored finance entry. Amounts are whole currency units as the
// frontend submits them.
type Record struct {
	ID          string    `json:"id"`
	AmountPayed int64     `json:"amountPayed"`
	AmountTotal int64     `json:"amountTotal"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// View is a Record with the derived outstanding amount. AmountDue is computed
// on every read and never stored.
type View struct {
	Record
	AmountDue int64 `json:"amountDue"`
}

// Totals aggregates every record.
type Totals struct {
	TotalPayed int64 `json:"totalPayed"`
	TotalTotal int64 `json:"totalTotal"`
	TotalDue   int64 `json:"totalDue"`
}

// Input carries the client-supplied fields for create and update. UpdatedAt
// is accepted for wire compatibility with existing clients; the store's clock
// is authoritative for the persisted timestamps.
type Input struct {
	AmountPayed int64     `json:"amountPayed"`
	AmountTotal int64     `json:"amountTotal"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate checks the cross-field invariants before any write.
func (input Input) Validate() error {
	if input.AmountPayed < 0 {
		return ErrNegativeAmountPayed
	}
	if input.AmountTotal < 0 {
		return ErrNegativeAmountTotal
	}
	if input.AmountPayed > input.AmountTotal {
		return ErrPayedExceedsTotal
	}
	if strings.TrimSpace(input.Description) == "" {
		return ErrMissingDescription
	}
	return nil
}

// Store is the persistence contract used by Service. FindAll returns records
// newest first.
type Store interface {
	FindAll(ctx context.Context) ([]Record, error)
	FindByID(ctx context.Context, id string) (Record, error)
	Create(ctx context.Context, input Input) (Record, error)
	Update(ctx context.Context, id string, input Input) (Record, error)
	Delete(ctx context.Context, id string) (Record, error)
}
