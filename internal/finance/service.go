package finance

import (
	"context"
	"fmt"

	"wedplan/internal/broadcast"
)

// Service contains the finance business rules over a Store. Every read path
// derives AmountDue; every validated write keeps AmountPayed <= AmountTotal,
// so a negative derived due can only come from a corrupted prior write.
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

// List returns every record with its derived amount due, newest first.
func (service *Service) List(ctx context.Context) ([]View, error) {
	records, err := service.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]View, 0, len(records))
	for _, record := range records {
		view, err := derive(record)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// GetByID returns one record with its derived amount due, or ErrNotFound.
func (service *Service) GetByID(ctx context.Context, id string) (View, error) {
	record, err := service.store.FindByID(ctx, id)
	if err != nil {
		return View{}, err
	}
	return derive(record)
}

// Create validates and persists a new record, then announces it.
func (service *Service) Create(ctx context.Context, input Input) (View, error) {
	if err := input.Validate(); err != nil {
		return View{}, err
	}
	created, err := service.store.Create(ctx, input)
	if err != nil {
		return View{}, err
	}
	view, err := derive(created)
	if err != nil {
		return View{}, err
	}
	service.notify(broadcast.ActionAdd, view)
	return view, nil
}

// Update validates the replacement fields, persists them against an existing
// record, then announces the result. Returns ErrNotFound for an absent id.
func (service *Service) Update(ctx context.Context, id string, input Input) (View, error) {
	if err := input.Validate(); err != nil {
		return View{}, err
	}
	if _, err := service.store.FindByID(ctx, id); err != nil {
		return View{}, err
	}
	updated, err := service.store.Update(ctx, id, input)
	if err != nil {
		return View{}, err
	}
	view, err := derive(updated)
	if err != nil {
		return View{}, err
	}
	service.notify(broadcast.ActionUpdate, view)
	return view, nil
}

// Delete removes an existing record and announces the removal by id.
func (service *Service) Delete(ctx context.Context, id string) (View, error) {
	if _, err := service.store.FindByID(ctx, id); err != nil {
		return View{}, err
	}
	deleted, err := service.store.Delete(ctx, id)
	if err != nil {
		return View{}, err
	}
	view, err := derive(deleted)
	if err != nil {
		return View{}, err
	}
	service.notify(broadcast.ActionDelete, broadcast.Deleted{ID: deleted.ID})
	return view, nil
}

// TotalAmounts aggregates payed, total, and due over every record. An empty
// store yields zero totals.
func (service *Service) TotalAmounts(ctx context.Context) (Totals, error) {
	views, err := service.List(ctx)
	if err != nil {
		return Totals{}, err
	}
	totals := Totals{}
	for _, view := range views {
		totals.TotalPayed += view.AmountPayed
		totals.TotalTotal += view.AmountTotal
		totals.TotalDue += view.AmountDue
	}
	if totals.TotalDue < 0 || totals.TotalPayed < 0 || totals.TotalTotal < 0 {
		return Totals{}, fmt.Errorf("%w: negative aggregate", ErrCorruptRecord)
	}
	return totals, nil
}

func derive(record Record) (View, error) {
	due := record.AmountTotal - record.AmountPayed
	if due < 0 {
		return View{}, fmt.Errorf("%w: record %s", ErrCorruptRecord, record.ID)
	}
	return View{Record: record, AmountDue: due}, nil
}

func (service *Service) notify(action broadcast.Action, record any) {
	if service.notifier == nil {
		return
	}
	service.notifier.Notify(broadcast.Notification{
		Resource: broadcast.ResourceFinance,
		Action:   action,
		Record:   record,
	})
}
