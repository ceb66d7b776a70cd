// Package gormstore implements the persistence gateways over GORM, backed by
// either PostgreSQL or SQLite.
package gormstore

import (
	"context"
	"errors"

	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"wedplan/internal/finance"
	"wedplan/internal/guest"
)

const (
	pgUniqueViolationCode = "23505"
	sqliteConstraintCode  = 19

	errorOperationStore = "store"
	errorSubjectGuest   = "guest"
	errorSubjectFinance = "finance"
	errorCodeList       = "list"
	errorCodeGet        = "get"
	errorCodeCreate     = "create"
	errorCodeUpdate     = "update"
	errorCodeDelete     = "delete"
	errorCodeDuplicate  = "duplicate"
)

// ErrDuplicateID reports an insert that collided with an existing primary key.
var ErrDuplicateID = errors.New("record id already exists")

// GuestStore implements guest.Store.
type GuestStore struct {
	db *gorm.DB
}

// NewGuestStore returns a GuestStore backed by gorm.DB.
func NewGuestStore(db *gorm.DB) *GuestStore {
	return &GuestStore{db: db}
}

func (store *GuestStore) FindAll(ctx context.Context) ([]guest.Guest, error) {
	var rows []Guest
	err := store.db.WithContext(ctx).Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectGuest, errorCodeList, err)
	}
	guests := make([]guest.Guest, 0, len(rows))
	for _, row := range rows {
		guests = append(guests, toGuest(row))
	}
	return guests, nil
}

func (store *GuestStore) FindByID(ctx context.Context, id string) (guest.Guest, error) {
	var row Guest
	err := store.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return guest.Guest{}, guest.ErrNotFound
	}
	if err != nil {
		return guest.Guest{}, wrapStoreError(errorSubjectGuest, errorCodeGet, err)
	}
	return toGuest(row), nil
}

func (store *GuestStore) Create(ctx context.Context, input guest.Input) (guest.Guest, error) {
	row := Guest{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		PhoneNumber: input.PhoneNumber,
		Address:     input.Address,
		PostalCode:  input.PostalCode,
		City:        input.City,
	}
	err := store.db.WithContext(ctx).Create(&row).Error
	if isDuplicateKey(err) {
		return guest.Guest{}, wrapStoreError(errorSubjectGuest, errorCodeDuplicate, ErrDuplicateID)
	}
	if err != nil {
		return guest.Guest{}, wrapStoreError(errorSubjectGuest, errorCodeCreate, err)
	}
	return toGuest(row), nil
}

func (store *GuestStore) Update(ctx context.Context, id string, input guest.Input) (guest.Guest, error) {
	var row Guest
	err := store.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return guest.Guest{}, guest.ErrNotFound
	}
	if err != nil {
		return guest.Guest{}, wrapStoreError(errorSubjectGuest, errorCodeUpdate, err)
	}
	row.FirstName = input.FirstName
	row.LastName = input.LastName
	row.PhoneNumber = input.PhoneNumber
	row.Address = input.Address
	row.PostalCode = input.PostalCode
	row.City = input.City
	if err := store.db.WithContext(ctx).Save(&row).Error; err != nil {
		return guest.Guest{}, wrapStoreError(errorSubjectGuest, errorCodeUpdate, err)
	}
	return toGuest(row), nil
}

func (store *GuestStore) Delete(ctx context.Context, id string) (guest.Guest, error) {
	var row Guest
	err := store.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return guest.Guest{}, guest.ErrNotFound
	}
	if err != nil {
		return guest.Guest{}, wrapStoreError(errorSubjectGuest, errorCodeDelete, err)
	}
	if err := store.db.WithContext(ctx).Delete(&Guest{}, "id = ?", id).Error; err != nil {
		return guest.Guest{}, wrapStoreError(errorSubjectGuest, errorCodeDelete, err)
	}
	return toGuest(row), nil
}

// FinanceStore implements finance.Store.
type FinanceStore struct {
	db *gorm.DB
}

// NewFinanceStore returns a FinanceStore backed by gorm.DB.
func NewFinanceStore(db *gorm.DB) *FinanceStore {
	return &FinanceStore{db: db}
}

func (store *FinanceStore) FindAll(ctx context.Context) ([]finance.Record, error) {
	var rows []Finance
	err := store.db.WithContext(ctx).Order("created_at desc").Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectFinance, errorCodeList, err)
	}
	records := make([]finance.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, toFinanceRecord(row))
	}
	return records, nil
}

func (store *FinanceStore) FindByID(ctx context.Context, id string) (finance.Record, error) {
	var row Finance
	err := store.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return finance.Record{}, finance.ErrNotFound
	}
	if err != nil {
		return finance.Record{}, wrapStoreError(errorSubjectFinance, errorCodeGet, err)
	}
	return toFinanceRecord(row), nil
}

func (store *FinanceStore) Create(ctx context.Context, input finance.Input) (finance.Record, error) {
	row := Finance{
		AmountPayed: input.AmountPayed,
		AmountTotal: input.AmountTotal,
		Description: input.Description,
	}
	err := store.db.WithContext(ctx).Create(&row).Error
	if isDuplicateKey(err) {
		return finance.Record{}, wrapStoreError(errorSubjectFinance, errorCodeDuplicate, ErrDuplicateID)
	}
	if err != nil {
		return finance.Record{}, wrapStoreError(errorSubjectFinance, errorCodeCreate, err)
	}
	return toFinanceRecord(row), nil
}

func (store *FinanceStore) Update(ctx context.Context, id string, input finance.Input) (finance.Record, error) {
	var row Finance
	err := store.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return finance.Record{}, finance.ErrNotFound
	}
	if err != nil {
		return finance.Record{}, wrapStoreError(errorSubjectFinance, errorCodeUpdate, err)
	}
	row.AmountPayed = input.AmountPayed
	row.AmountTotal = input.AmountTotal
	row.Description = input.Description
	if err := store.db.WithContext(ctx).Save(&row).Error; err != nil {
		return finance.Record{}, wrapStoreError(errorSubjectFinance, errorCodeUpdate, err)
	}
	return toFinanceRecord(row), nil
}

func (store *FinanceStore) Delete(ctx context.Context, id string) (finance.Record, error) {
	var row Finance
	err := store.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return finance.Record{}, finance.ErrNotFound
	}
	if err != nil {
		return finance.Record{}, wrapStoreError(errorSubjectFinance, errorCodeDelete, err)
	}
	if err := store.db.WithContext(ctx).Delete(&Finance{}, "id = ?", id).Error; err != nil {
		return finance.Record{}, wrapStoreError(errorSubjectFinance, errorCodeDelete, err)
	}
	return toFinanceRecord(row), nil
}

func toGuest(row Guest) guest.Guest {
	return guest.Guest{
		ID:          row.ID,
		FirstName:   row.FirstName,
		LastName:    row.LastName,
		PhoneNumber: row.PhoneNumber,
		Address:     row.Address,
		PostalCode:  row.PostalCode,
		City:        row.City,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func toFinanceRecord(row Finance) finance.Record {
	return finance.Record{
		ID:          row.ID,
		AmountPayed: row.AmountPayed,
		AmountTotal: row.AmountTotal,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolationCode
	}
	var sqliteErr *gosqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xFF == sqliteConstraintCode
	}
	return false
}
