package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wealthtrackr/internal/domain/account"
	"wealthtrackr/internal/domain/bankconnection"
	"wealthtrackr/internal/domain/budget"
	"wealthtrackr/internal/domain/reconcile"
	"wealthtrackr/internal/domain/report"
	"wealthtrackr/internal/domain/transaction"
	"wealthtrackr/internal/infrastructure/aggregator"
	"wealthtrackr/internal/infrastructure/crypto"
	"wealthtrackr/internal/infrastructure/events"
	"wealthtrackr/internal/infrastructure/lock"
	"wealthtrackr/internal/infrastructure/memory"
)

const testEncryptionKey = "0123456789abcdef0123456789abcdef"

// testServer wires every handler over a seeded in-memory store
type testServer struct {
	store *memory.Store
	mux   *http.ServeMux
}

func newTestServer(t *testing.T, provider bankconnection.Provider) *testServer {
	t.Helper()

	store := memory.NewStore()
	if err := store.Seed(context.Background()); err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}

	if provider == nil {
		provider = aggregator.NewSandbox(1)
	}
	encryptor, err := crypto.NewEncryptor(testEncryptionKey)
	if err != nil {
		t.Fatalf("failed to create encryptor: %v", err)
	}
	publisher := events.Fallback{}

	accounts := store.Accounts()
	reconcileService := reconcile.NewService(accounts, lock.NewKeyedMutex(), publisher)
	accountService := account.NewService(accounts)
	transactionService := transaction.NewService(store.Transactions(), accounts, reconcileService, publisher)
	budgetService := budget.NewService(store.Budget(), "May 2025")
	reportService := report.NewService(transactionService, accountService)
	bankService := bankconnection.NewService(store.BankConnections(), provider, accounts, transactionService, encryptor, publisher)

	mux := http.NewServeMux()
	RegisterRoutes(mux, Handlers{
		Account:        NewAccountHandler(accountService, reconcileService),
		Transaction:    NewTransactionHandler(transactionService),
		Report:         NewReportHandler(reportService),
		Export:         NewExportHandler(transactionService, reportService),
		Budget:         NewBudgetHandler(budgetService),
		BankConnection: NewBankConnectionHandler(bankService),
	})

	return &testServer{store: store, mux: mux}
}

// do issues a request and returns the recorded response
func (s *testServer) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)
	return rr
}

// decode unmarshals a response body, failing the test on error
func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("handler returned wrong status code: got %v want %v (body %s)", rr.Code, want, rr.Body.String())
	}
}

func expectNotFoundDetail(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	expectStatus(t, rr, http.StatusNotFound)
	resp := decode[ErrorResponse](t, rr)
	if !strings.Contains(strings.ToLower(resp.Detail), "not found") {
		t.Errorf("detail %q does not mention not found", resp.Detail)
	}
}
