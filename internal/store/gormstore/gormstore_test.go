package gormstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"wedplan/internal/finance"
	"wedplan/internal/guest"
)

func newTestDB(test *testing.T) *gorm.DB {
	test.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		test.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		test.Fatalf("migrate: %v", err)
	}
	return db
}

func TestGuestCreateAssignsIDAndTimestamps(test *testing.T) {
	test.Parallel()
	store := NewGuestStore(newTestDB(test))

	created, err := store.Create(context.Background(), guest.Input{
		FirstName:   "Martijn",
		LastName:    "Gortzen",
		PhoneNumber: "+316123456",
		Address:     "Niellerveld 43",
		PostalCode:  "6042TB",
		City:        "Roermond",
	})
	if err != nil {
		test.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		test.Fatalf("expected assigned uuid")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		test.Fatalf("expected assigned timestamps")
	}

	fetched, err := store.FindByID(context.Background(), created.ID)
	if err != nil {
		test.Fatalf("find by id: %v", err)
	}
	if fetched.FirstName != created.FirstName || fetched.City != created.City {
		test.Fatalf("round trip mismatch: %+v vs %+v", fetched, created)
	}
}

func TestGuestFindByIDUnknownReturnsNotFound(test *testing.T) {
	test.Parallel()
	store := NewGuestStore(newTestDB(test))

	_, err := store.FindByID(context.Background(), "999")
	if !errors.Is(err, guest.ErrNotFound) {
		test.Fatalf("expected guest.ErrNotFound, got %v", err)
	}
}

func TestGuestUpdateReplacesFields(test *testing.T) {
	test.Parallel()
	store := NewGuestStore(newTestDB(test))

	created, err := store.Create(context.Background(), guest.Input{FirstName: "Eva", LastName: "Janssen"})
	if err != nil {
		test.Fatalf("create: %v", err)
	}

	updated, err := store.Update(context.Background(), created.ID, guest.Input{
		FirstName: "Eva",
		LastName:  "Janssen",
		City:      "Maastricht",
	})
	if err != nil {
		test.Fatalf("update: %v", err)
	}
	if updated.City != "Maastricht" {
		test.Fatalf("expected replaced city, got %q", updated.City)
	}
	if updated.ID != created.ID {
		test.Fatalf("expected stable id")
	}

	if _, err := store.Update(context.Background(), "missing", guest.Input{FirstName: "a", LastName: "b"}); !errors.Is(err, guest.ErrNotFound) {
		test.Fatalf("expected guest.ErrNotFound for missing id, got %v", err)
	}
}

func TestGuestDeleteReturnsRemovedRecord(test *testing.T) {
	test.Parallel()
	store := NewGuestStore(newTestDB(test))

	created, err := store.Create(context.Background(), guest.Input{FirstName: "Tom", LastName: "Peters"})
	if err != nil {
		test.Fatalf("create: %v", err)
	}

	deleted, err := store.Delete(context.Background(), created.ID)
	if err != nil {
		test.Fatalf("delete: %v", err)
	}
	if deleted.ID != created.ID {
		test.Fatalf("expected removed record returned")
	}
	if _, err := store.FindByID(context.Background(), created.ID); !errors.Is(err, guest.ErrNotFound) {
		test.Fatalf("expected record gone, got %v", err)
	}
	if _, err := store.Delete(context.Background(), created.ID); !errors.Is(err, guest.ErrNotFound) {
		test.Fatalf("expected second delete to report not found, got %v", err)
	}
}

func TestFinanceFindAllReturnsNewestFirst(test *testing.T) {
	test.Parallel()
	db := newTestDB(test)
	store := NewFinanceStore(db)

	older := Finance{AmountPayed: 10, AmountTotal: 100, Description: "older", CreatedAt: time.Now().UTC().Add(-time.Hour), UpdatedAt: time.Now().UTC()}
	newer := Finance{AmountPayed: 20, AmountTotal: 200, Description: "newer", CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	if err := db.Create(&older).Error; err != nil {
		test.Fatalf("seed older: %v", err)
	}
	if err := db.Create(&newer).Error; err != nil {
		test.Fatalf("seed newer: %v", err)
	}

	records, err := store.FindAll(context.Background())
	if err != nil {
		test.Fatalf("find all: %v", err)
	}
	if len(records) != 2 {
		test.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Description != "newer" {
		test.Fatalf("expected newest first, got %q", records[0].Description)
	}
}

func TestFinanceFindAllEmptyStoreReturnsEmptySlice(test *testing.T) {
	test.Parallel()
	store := NewFinanceStore(newTestDB(test))

	records, err := store.FindAll(context.Background())
	if err != nil {
		test.Fatalf("find all: %v", err)
	}
	if records == nil {
		test.Fatalf("expected empty slice, got nil")
	}
	if len(records) != 0 {
		test.Fatalf("expected no records, got %d", len(records))
	}
}

func TestFinanceCreateAndRoundTrip(test *testing.T) {
	test.Parallel()
	store := NewFinanceStore(newTestDB(test))

	created, err := store.Create(context.Background(), finance.Input{
		AmountPayed: 300,
		AmountTotal: 1000,
		Description: "Florist",
	})
	if err != nil {
		test.Fatalf("create: %v", err)
	}

	fetched, err := store.FindByID(context.Background(), created.ID)
	if err != nil {
		test.Fatalf("find by id: %v", err)
	}
	if fetched.AmountPayed != 300 || fetched.AmountTotal != 1000 || fetched.Description != "Florist" {
		test.Fatalf("round trip mismatch: %+v", fetched)
	}
}

func TestFinanceUpdateUnknownReturnsNotFound(test *testing.T) {
	test.Parallel()
	store := NewFinanceStore(newTestDB(test))

	_, err := store.Update(context.Background(), "missing", finance.Input{AmountPayed: 1, AmountTotal: 2, Description: "d"})
	if !errors.Is(err, finance.ErrNotFound) {
		test.Fatalf("expected finance.ErrNotFound, got %v", err)
	}
}

func TestDuplicateIDInsertMapsToDuplicateError(test *testing.T) {
	test.Parallel()
	db := newTestDB(test)

	first := Guest{ID: "fixed-id", FirstName: "A", LastName: "B"}
	if err := db.Create(&first).Error; err != nil {
		test.Fatalf("seed: %v", err)
	}
	second := Guest{ID: "fixed-id", FirstName: "C", LastName: "D"}
	err := db.Create(&second).Error
	if err == nil {
		test.Fatalf("expected duplicate key error")
	}
	if !isDuplicateKey(err) {
		test.Fatalf("expected duplicate key classification, got %v", err)
	}
}
