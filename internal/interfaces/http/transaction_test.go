package http

import (
	"net/http"
	"testing"

	"wealthtrackr/internal/domain/account"
)

func TestTransactionLifecycle_MaintainsBalance(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := srv.do(t, http.MethodPost, "/api/accounts", map[string]any{
		"name": "Test Checking", "type": "checking", "institution": "chase",
	})
	expectStatus(t, rr, http.StatusCreated)
	acc := decode[account.Account](t, rr)
	if acc.Balance != 0 {
		t.Fatalf("new account balance = %v, want 0", acc.Balance)
	}

	balance := func() float64 {
		t.Helper()
		rr := srv.do(t, http.MethodGet, "/api/accounts/"+acc.ID, nil)
		expectStatus(t, rr, http.StatusOK)
		return decode[account.Account](t, rr).Balance
	}

	rr = srv.do(t, http.MethodPost, "/api/transactions", map[string]any{
		"account_id": acc.ID, "date": "2025-04-15", "amount": -45.67,
		"payee": "Grocer", "category": "Food", "description": "Weekly shop",
	})
	expectStatus(t, rr, http.StatusCreated)
	txn := decode[TransactionResponse](t, rr)
	if txn.AccountName != "Test Checking" || txn.Date != "2025-04-15" {
		t.Errorf("created transaction = %+v", txn)
	}
	if got := balance(); got != -45.67 {
		t.Errorf("balance after create = %v, want -45.67", got)
	}

	rr = srv.do(t, http.MethodPut, "/api/transactions/"+txn.ID, map[string]any{"amount": -75.00})
	expectStatus(t, rr, http.StatusOK)
	updated := decode[TransactionResponse](t, rr)
	if updated.Payee != "Grocer" {
		t.Errorf("partial update cleared payee: %+v", updated)
	}
	if got := balance(); got != -75 {
		t.Errorf("balance after update = %v, want -75", got)
	}

	expectStatus(t, srv.do(t, http.MethodDelete, "/api/transactions/"+txn.ID, nil), http.StatusNoContent)
	if got := balance(); got != 0 {
		t.Errorf("balance after delete = %v, want 0", got)
	}

	expectNotFoundDetail(t, srv.do(t, http.MethodGet, "/api/transactions/"+txn.ID, nil))
}

func TestUpdateTransaction_MoveBetweenAccounts(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := srv.do(t, http.MethodPost, "/api/transactions", map[string]any{
		"account_id": "acc-001", "date": "2025-04-14", "amount": -25,
		"payee": "Metro", "category": "Transport",
	})
	expectStatus(t, rr, http.StatusCreated)
	txn := decode[TransactionResponse](t, rr)

	expectStatus(t, srv.do(t, http.MethodPatch, "/api/transactions/"+txn.ID, map[string]any{"account_id": "acc-004"}), http.StatusOK)

	for id, want := range map[string]float64{"acc-001": 0, "acc-004": -25} {
		rr := srv.do(t, http.MethodGet, "/api/accounts/"+id, nil)
		if got := decode[account.Account](t, rr).Balance; got != want {
			t.Errorf("%s balance = %v, want %v", id, got, want)
		}
	}
}

func TestHandleTransactions_Errors(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name           string
		method         string
		target         string
		body           any
		expectedStatus int
	}{
		{
			name:           "Unknown account",
			method:         http.MethodPost,
			target:         "/api/transactions",
			body:           map[string]any{"account_id": "acc-999", "date": "2025-04-14", "amount": 1, "payee": "Shop", "category": "Misc"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing date",
			method:         http.MethodPost,
			target:         "/api/transactions",
			body:           map[string]any{"account_id": "acc-001", "amount": 1, "payee": "Shop", "category": "Misc"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Malformed date",
			method:         http.MethodPost,
			target:         "/api/transactions",
			body:           map[string]any{"account_id": "acc-001", "date": "14/04/2025", "amount": 1, "payee": "Shop", "category": "Misc"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing amount",
			method:         http.MethodPost,
			target:         "/api/transactions",
			body:           map[string]any{"account_id": "acc-001", "date": "2025-04-14", "payee": "Shop", "category": "Misc"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Null amount",
			method:         http.MethodPost,
			target:         "/api/transactions",
			body:           map[string]any{"account_id": "acc-001", "date": "2025-04-14", "amount": nil, "payee": "Shop", "category": "Misc"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing payee",
			method:         http.MethodPost,
			target:         "/api/transactions",
			body:           map[string]any{"account_id": "acc-001", "date": "2025-04-14", "amount": -5, "category": "Misc"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Blank category",
			method:         http.MethodPost,
			target:         "/api/transactions",
			body:           map[string]any{"account_id": "acc-001", "date": "2025-04-14", "amount": -5, "payee": "Shop", "category": "  "},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Update clears payee",
			method:         http.MethodPut,
			target:         "/api/transactions/missing",
			body:           map[string]any{"payee": ""},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Update missing transaction",
			method:         http.MethodPut,
			target:         "/api/transactions/missing",
			body:           map[string]any{"amount": 1},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Delete missing transaction",
			method:         http.MethodDelete,
			target:         "/api/transactions/missing",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Bad amount filter",
			method:         http.MethodGet,
			target:         "/api/transactions?min_amount=lots",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Inverted date range",
			method:         http.MethodGet,
			target:         "/api/transactions?start_date=2025-05-01&end_date=2025-04-01",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Empty search",
			method:         http.MethodPost,
			target:         "/api/transactions/search",
			body:           map[string]any{"query": ""},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := srv.do(t, tt.method, tt.target, tt.body)
			expectStatus(t, rr, tt.expectedStatus)
		})
	}
}

// seedApril creates the three April transactions used by the filter and report tests
func seedApril(t *testing.T, srv *testServer) {
	t.Helper()

	items := []map[string]any{
		{"account_id": "acc-001", "date": "2025-04-13", "amount": 500, "payee": "Employer", "category": "Salary"},
		{"account_id": "acc-001", "date": "2025-04-14", "amount": -25, "payee": "Test Payee UNIQUE123", "category": "Transport"},
		{"account_id": "acc-001", "date": "2025-04-15", "amount": -45.67, "payee": "Grocer", "category": "Food"},
	}
	for _, item := range items {
		expectStatus(t, srv.do(t, http.MethodPost, "/api/transactions", item), http.StatusCreated)
	}
}

func TestHandleListTransactions_Filter(t *testing.T) {
	srv := newTestServer(t, nil)
	seedApril(t, srv)

	tests := []struct {
		name      string
		query     string
		wantDates []string
	}{
		{name: "No filter, newest first", query: "", wantDates: []string{"2025-04-15", "2025-04-14", "2025-04-13"}},
		{name: "Amount range", query: "?min_amount=-30&max_amount=0", wantDates: []string{"2025-04-14"}},
		{name: "Date range inclusive", query: "?start_date=2025-04-13&end_date=2025-04-14", wantDates: []string{"2025-04-14", "2025-04-13"}},
		{name: "Category", query: "?category=Food", wantDates: []string{"2025-04-15"}},
		{name: "Conjunctive", query: "?category=Food&max_amount=-50", wantDates: nil},
		{name: "Unreconciled", query: "?is_reconciled=false&account_id=acc-001", wantDates: []string{"2025-04-15", "2025-04-14", "2025-04-13"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := srv.do(t, http.MethodGet, "/api/transactions"+tt.query, nil)
			expectStatus(t, rr, http.StatusOK)

			txns := decode[[]TransactionResponse](t, rr)
			if len(txns) != len(tt.wantDates) {
				t.Fatalf("got %d transactions, want %d", len(txns), len(tt.wantDates))
			}
			for i, want := range tt.wantDates {
				if txns[i].Date != want {
					t.Errorf("txns[%d].Date = %s, want %s", i, txns[i].Date, want)
				}
			}
		})
	}
}

func TestHandleSearch(t *testing.T) {
	srv := newTestServer(t, nil)
	seedApril(t, srv)

	post := srv.do(t, http.MethodPost, "/api/transactions/search", map[string]any{"query": "unique123"})
	expectStatus(t, post, http.StatusOK)
	found := decode[[]TransactionResponse](t, post)
	if len(found) != 1 || found[0].Payee != "Test Payee UNIQUE123" {
		t.Errorf("POST search found %+v", found)
	}

	get := srv.do(t, http.MethodGet, "/api/transactions/search?q=FOOD", nil)
	expectStatus(t, get, http.StatusOK)
	if found := decode[[]TransactionResponse](t, get); len(found) != 1 || found[0].Category != "Food" {
		t.Errorf("GET search found %+v", found)
	}
}

func TestHandleCategories(t *testing.T) {
	srv := newTestServer(t, nil)
	seedApril(t, srv)

	rr := srv.do(t, http.MethodGet, "/api/transactions/categories", nil)
	expectStatus(t, rr, http.StatusOK)

	got := decode[[]string](t, rr)
	want := []string{"Food", "Salary", "Transport"}
	if len(got) != len(want) {
		t.Fatalf("categories = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("categories = %v, want %v", got, want)
			break
		}
	}
}

func TestHandleImport_ReconcilesOnce(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := srv.do(t, http.MethodPost, "/api/transactions/import", map[string]any{
		"account_id": "acc-003",
		"transactions": []map[string]any{
			{"date": "2025-04-01", "amount": -100.10, "payee": "Airline", "category": "Travel"},
			{"account_id": "acc-001", "date": "2025-04-02", "amount": -50.05, "payee": "Hotel", "category": "Travel"},
		},
	})
	expectStatus(t, rr, http.StatusCreated)

	created := decode[[]TransactionResponse](t, rr)
	if len(created) != 2 {
		t.Fatalf("imported %d transactions, want 2", len(created))
	}
	for _, txn := range created {
		if txn.AccountID != "acc-003" {
			t.Errorf("import did not force account: %+v", txn)
		}
	}

	acc := decode[account.Account](t, srv.do(t, http.MethodGet, "/api/accounts/acc-003", nil))
	if acc.Balance != -150.15 {
		t.Errorf("balance after import = %v, want -150.15", acc.Balance)
	}
}

func TestHandleTransactions_MissingAmountKeepsBalance(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := srv.do(t, http.MethodPost, "/api/transactions", map[string]any{
		"account_id": "acc-001", "date": "2025-04-14",
	})
	expectStatus(t, rr, http.StatusBadRequest)

	acc := decode[account.Account](t, srv.do(t, http.MethodGet, "/api/accounts/acc-001", nil))
	if acc.Balance != 2500.75 {
		t.Errorf("acc-001 balance = %v after rejected create, want seeded 2500.75", acc.Balance)
	}
	if txns := decode[[]TransactionResponse](t, srv.do(t, http.MethodGet, "/api/transactions/account/acc-001", nil)); len(txns) != 0 {
		t.Errorf("rejected create stored %d transactions", len(txns))
	}
}

func TestHandleImport_RejectsIncompleteItem(t *testing.T) {
	tests := []struct {
		name string
		item map[string]any
	}{
		{"missing amount", map[string]any{"date": "2025-04-02", "payee": "Hotel", "category": "Travel"}},
		{"missing payee", map[string]any{"date": "2025-04-02", "amount": -10, "category": "Travel"}},
		{"missing category", map[string]any{"date": "2025-04-02", "amount": -10, "payee": "Hotel"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, nil)

			rr := srv.do(t, http.MethodPost, "/api/transactions/import", map[string]any{
				"account_id": "acc-003",
				"transactions": []map[string]any{
					{"date": "2025-04-01", "amount": -100.10, "payee": "Airline", "category": "Travel"},
					tt.item,
				},
			})
			expectStatus(t, rr, http.StatusBadRequest)

			acc := decode[account.Account](t, srv.do(t, http.MethodGet, "/api/accounts/acc-003", nil))
			if acc.Balance != -450.25 {
				t.Errorf("acc-003 balance = %v, want seeded -450.25 (nothing imported)", acc.Balance)
			}
		})
	}
}
