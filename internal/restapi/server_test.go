package restapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"wedplan/internal/broadcast"
	"wedplan/internal/finance"
	"wedplan/internal/guest"
	"wedplan/internal/store/gormstore"
)

func newTestRouter(test *testing.T) (*gin.Engine, *broadcast.Registry) {
	test.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		test.Fatalf("open sqlite: %v", err)
	}
	if err := gormstore.AutoMigrate(db); err != nil {
		test.Fatalf("migrate: %v", err)
	}

	registry := broadcast.NewRegistry(zap.NewNop())
	guestService, err := guest.NewService(gormstore.NewGuestStore(db), registry)
	if err != nil {
		test.Fatalf("guest service: %v", err)
	}
	financeService, err := finance.NewService(gormstore.NewFinanceStore(db), registry)
	if err != nil {
		test.Fatalf("finance service: %v", err)
	}

	handler := NewHandler(zap.NewNop(), guestService, financeService, nil)
	return NewRouter(handler, []string{"http://localhost:3000"}), registry
}

func doJSON(test *testing.T, router *gin.Engine, method string, path string, body any) *httptest.ResponseRecorder {
	test.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			test.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func decodeBody(test *testing.T, recorder *httptest.ResponseRecorder, target any) {
	test.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		test.Fatalf("decode response %q: %v", recorder.Body.String(), err)
	}
}

func TestHealthz(test *testing.T) {
	test.Parallel()
	router, _ := newTestRouter(test)
	recorder := doJSON(test, router, http.MethodGet, "/healthz", nil)
	if recorder.Code != http.StatusOK {
		test.Fatalf("healthz status=%d", recorder.Code)
	}
}

func TestListGuestsEmptyReturnsOKWithEmptyArray(test *testing.T) {
	test.Parallel()
	router, _ := newTestRouter(test)

	recorder := doJSON(test, router, http.MethodGet, "/api/guest", nil)
	if recorder.Code != http.StatusOK {
		test.Fatalf("status=%d body=%s", recorder.Code, recorder.Body.String())
	}
	var guests []map[string]any
	decodeBody(test, recorder, &guests)
	if len(guests) != 0 {
		test.Fatalf("expected empty list, got %d", len(guests))
	}
}

func TestGuestCreateThenFetchRoundTrip(test *testing.T) {
	test.Parallel()
	router, _ := newTestRouter(test)

	created := doJSON(test, router, http.MethodPost, "/api/guest", map[string]any{
		"firstName":   "Martijn",
		"lastName":    "Gortzen",
		"phoneNumber": "+316123456",
		"address":     "Niellerveld 43",
		"postalCode":  "6042TB",
		"city":        "Roermond",
	})
	if created.Code != http.StatusCreated {
		test.Fatalf("create status=%d body=%s", created.Code, created.Body.String())
	}
	var createdGuest map[string]any
	decodeBody(test, created, &createdGuest)
	id, _ := createdGuest["id"].(string)
	if id == "" {
		test.Fatalf("expected assigned id, body=%s", created.Body.String())
	}
	if createdGuest["createdAt"] == nil || createdGuest["updatedAt"] == nil {
		test.Fatalf("expected server-assigned timestamps")
	}

	fetched := doJSON(test, router, http.MethodGet, "/api/guest/"+id, nil)
	if fetched.Code != http.StatusOK {
		test.Fatalf("fetch status=%d", fetched.Code)
	}
	var fetchedGuest map[string]any
	decodeBody(test, fetched, &fetchedGuest)
	for _, field := range []string{"firstName", "lastName", "phoneNumber", "address", "postalCode", "city"} {
		if fetchedGuest[field] != createdGuest[field] {
			test.Fatalf("field %s mismatch: %v vs %v", field, fetchedGuest[field], createdGuest[field])
		}
	}
}

func TestGuestCreateMissingNameReturns400(test *testing.T) {
	test.Parallel()
	router, _ := newTestRouter(test)

	recorder := doJSON(test, router, http.MethodPost, "/api/guest", map[string]any{
		"firstName": "",
		"lastName":  "Gortzen",
	})
	if recorder.Code != http.StatusBadRequest {
		test.Fatalf("status=%d body=%s", recorder.Code, recorder.Body.String())
	}
	var body map[string]any
	decodeBody(test, recorder, &body)
	if body["error"] != "invalid_input" {
		test.Fatalf("expected invalid_input, got %v", body["error"])
	}
}

func TestDeleteUnknownGuestReturns404AndLeavesStorageUnchanged(test *testing.T) {
	test.Parallel()
	router, _ := newTestRouter(test)

	seeded := doJSON(test, router, http.MethodPost, "/api/guest", map[string]any{
		"firstName": "Eva", "lastName": "Janssen",
	})
	if seeded.Code != http.StatusCreated {
		test.Fatalf("seed status=%d", seeded.Code)
	}

	recorder := doJSON(test, router, http.MethodDelete, "/api/guest/999", nil)
	if recorder.Code != http.StatusNotFound {
		test.Fatalf("status=%d body=%s", recorder.Code, recorder.Body.String())
	}

	listed := doJSON(test, router, http.MethodGet, "/api/guest", nil)
	var guests []map[string]any
	decodeBody(test, listed, &guests)
	if len(guests) != 1 {
		test.Fatalf("expected storage unchanged, got %d guests", len(guests))
	}
}

func TestFinanceCreateComputesAmountDue(test *testing.T) {
	test.Parallel()
	router, _ := newTestRouter(test)

	recorder := doJSON(test, router, http.MethodPost, "/api/finance", map[string]any{
		"amountPayed": 300,
		"amountTotal": 1000,
		"description": "Florist",
		"updatedAt":   "2026-09-01T12:00:00Z",
	})
	if recorder.Code != http.StatusCreated {
		test.Fatalf("status=%d body=%s", recorder.Code, recorder.Body.String())
	}
	var created map[string]any
	decodeBody(test, recorder, &created)
	if created["amountDue"] != float64(700) {
		test.Fatalf("expected amountDue 700, got %v", created["amountDue"])
	}
}

func TestFinanceCreatePayedExceedsTotalReturns400(test *testing.T) {
	test.Parallel()
	router, _ := newTestRouter(test)

	recorder := doJSON(test, router, http.MethodPost, "/api/finance", map[string]any{
		"amountPayed": 1500,
		"amountTotal": 1000,
		"description": "x",
	})
	if recorder.Code != http.StatusBadRequest {
		test.Fatalf("status=%d body=%s", recorder.Code, recorder.Body.String())
	}

	listed := doJSON(test, router, http.MethodGet, "/api/finance", nil)
	var views []map[string]any
	decodeBody(test, listed, &views)
	if len(views) != 0 {
		test.Fatalf("expected nothing persisted, got %d", len(views))
	}
}

func TestFinanceMalformedDateReturns400(test *testing.T) {
	test.Parallel()
	router, _ := newTestRouter(test)

	recorder := doJSON(test, router, http.MethodPost, "/api/finance", map[string]any{
		"amountPayed": 10,
		"amountTotal": 100,
		"description": "Venue",
		"updatedAt":   "not-a-date",
	})
	if recorder.Code != http.StatusBadRequest {
		test.Fatalf("status=%d body=%s", recorder.Code, recorder.Body.String())
	}
}

func TestFinanceUpdateAndGetByID(test *testing.T) {
	test.Parallel()
	router, _ := newTestRouter(test)

	created := doJSON(test, router, http.MethodPost, "/api/finance", map[string]any{
		"amountPayed": 0, "amountTotal": 500, "description": "Cake",
	})
	var createdView map[string]any
	decodeBody(test, created, &createdView)
	id := createdView["id"].(string)

	updated := doJSON(test, router, http.MethodPut, "/api/finance/"+id, map[string]any{
		"amountPayed": 500, "amountTotal": 500, "description": "Cake",
	})
	if updated.Code != http.StatusOK {
		test.Fatalf("update status=%d body=%s", updated.Code, updated.Body.String())
	}
	var updatedView map[string]any
	decodeBody(test, updated, &updatedView)
	if updatedView["amountDue"] != float64(0) {
		test.Fatalf("expected amountDue 0 after full payment, got %v", updatedView["amountDue"])
	}

	missing := doJSON(test, router, http.MethodPut, "/api/finance/999", map[string]any{
		"amountPayed": 1, "amountTotal": 2, "description": "d",
	})
	if missing.Code != http.StatusNotFound {
		test.Fatalf("expected 404 for unknown id, got %d", missing.Code)
	}
}

func TestFinanceTotals(test *testing.T) {
	test.Parallel()
	router, _ := newTestRouter(test)

	empty := doJSON(test, router, http.MethodGet, "/api/finance/totals", nil)
	if empty.Code != http.StatusOK {
		test.Fatalf("totals on empty store status=%d", empty.Code)
	}
	var emptyTotals map[string]any
	decodeBody(test, empty, &emptyTotals)
	if emptyTotals["totalDue"] != float64(0) {
		test.Fatalf("expected zero totals, got %v", emptyTotals)
	}

	seeds := []map[string]any{
		{"amountPayed": 300, "amountTotal": 1000, "description": "Florist"},
		{"amountPayed": 700, "amountTotal": 700, "description": "Dress"},
	}
	for _, seed := range seeds {
		if recorder := doJSON(test, router, http.MethodPost, "/api/finance", seed); recorder.Code != http.StatusCreated {
			test.Fatalf("seed status=%d", recorder.Code)
		}
	}

	recorder := doJSON(test, router, http.MethodGet, "/api/finance/totals", nil)
	if recorder.Code != http.StatusOK {
		test.Fatalf("totals status=%d body=%s", recorder.Code, recorder.Body.String())
	}
	var totals map[string]any
	decodeBody(test, recorder, &totals)
	if totals["totalPayed"] != float64(1000) || totals["totalTotal"] != float64(1700) || totals["totalDue"] != float64(700) {
		test.Fatalf("unexpected totals %v", totals)
	}
}

func TestMutationsFanOutToRegisteredConnections(test *testing.T) {
	test.Parallel()
	router, registry := newTestRouter(test)

	listener := &countingConn{}
	registry.Register(listener)

	recorder := doJSON(test, router, http.MethodPost, "/api/guest", map[string]any{
		"firstName": "Tom", "lastName": "Peters",
	})
	if recorder.Code != http.StatusCreated {
		test.Fatalf("create status=%d", recorder.Code)
	}
	if listener.count != 1 {
		test.Fatalf("expected 1 notification, got %d", listener.count)
	}
}

type countingConn struct {
	count int
}

func (conn *countingConn) Send(payload []byte) error {
	conn.count++
	return nil
}

func (conn *countingConn) Close() error { return nil }
