package guest

import (
	"context"
	"fmt"

	"wedplan/internal/broadcast"
)

// Service contains the guest business rules over a Store. Successful
// mutations are announced on the notifier; the durable write is authoritative
// and never depends on the broadcast outcome.
type Service struct {
	store    Store
	notifier broadcast.Notifier
}

// NewService wires a Service. The notifier may be nil, in which case change
// notifications are silently skipped.
func NewService(store Store, notifier broadcast.Notifier) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store dependency is nil", ErrInvalidServiceConfig)
	}
	return &Service{store: store, notifier: notifier}, nil
}

// List returns every guest.
func (service *Service) List(ctx context.Context) ([]Guest, error) {
	return service.store.FindAll(ctx)
}

// GetByID returns one guest or ErrNotFound.
func (service *Service) GetByID(ctx context.Context, id string) (Guest, error) {
	return service.store.FindByID(ctx, id)
}

// Create validates and persists a new guest, then announces it.
func (service *Service) Create(ctx context.Context, input Input) (Guest, error) {
	if err := input.Validate(); err != nil {
		return Guest{}, err
	}
	created, err := service.store.Create(ctx, input)
	if err != nil {
		return Guest{}, err
	}
	service.notify(broadcast.ActionAdd, created)
	return created, nil
}

// Update validates the replacement fields, persists them against an existing
// guest, then announces the result. Returns ErrNotFound for an absent id.
func (service *Service) Update(ctx context.Context, id string, input Input) (Guest, error) {
	if err := input.Validate(); err != nil {
		return Guest{}, err
	}
	if _, err := service.store.FindByID(ctx, id); err != nil {
		return Guest{}, err
	}
	updated, err := service.store.Update(ctx, id, input)
	if err != nil {
		return Guest{}, err
	}
	service.notify(broadcast.ActionUpdate, updated)
	return updated, nil
}

// Delete removes an existing guest and announces the removal by id.
func (service *Service) Delete(ctx context.Context, id string) (Guest, error) {
	if _, err := service.store.FindByID(ctx, id); err != nil {
		return Guest{}, err
	}
	deleted, err := service.store.Delete(ctx, id)
	if err != nil {
		return Guest{}, err
	}
	service.notify(broadcast.ActionDelete, broadcast.Deleted{ID: deleted.ID})
	return deleted, nil
}

func (service *Service) notify(action broadcast.Action, record any) {
	if service.notifier == nil {
		return
	}
	service.notifier.Notify(broadcast.Notification{
		Resource: broadcast.ResourceGuest,
		Action:   action,
		Record:   record,
	})
}
