package guest

import (
	"context"
	"strings"
	"time"
)

// Guest is one invited wedding guest.
type Guest struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	PhoneNumber string    `json:"phoneNumber"`
	Address     string    `json:"address"`
	PostalCode  string    `json:"postalCode"`
	City        string    `json:"city"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Input carries the client-supplied fields for create and update. The store
// assigns id and timestamps.
type Input struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	PostalCode  string `json:"postalCode"`
	City        string `json:"city"`
}

// Validate checks the cross-field invariants before any write.
func (input Input) Validate() error {
	if strings.TrimSpace(input.FirstName) == "" {
		return ErrMissingFirstName
	}
	if strings.TrimSpace(input.LastName) == "" {
		return ErrMissingLastName
	}
	return nil
}

// Store is the persistence contract used by Service.
type Store interface {
	FindAll(ctx context.Context) ([]Guest, error)
	FindByID(ctx context.Context, id string) (Guest, error)
	Create(ctx context.Context, input Input) (Guest, error)
	Update(ctx context.Context, id string, input Input) (Guest, error)
	Delete(ctx context.Context, id string) (Guest, error)
}
