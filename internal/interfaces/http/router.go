package http

import "net/http"

// Handlers groups every resource handler the API serves.
type Handlers struct {
	Account        *AccountHandler
	Transaction    *TransactionHandler
	Report         *ReportHandler
	Export         *ExportHandler
	Budget         *BudgetHandler
	BankConnection *BankConnectionHandler
}

// RegisterRoutes mounts the full route table on mux.
func RegisterRoutes(mux *http.ServeMux, h Handlers) {
	mux.HandleFunc("/health", HandleHealth)

	// Accounts
	mux.HandleFunc("/api/accounts", h.Account.HandleAccounts)
	mux.HandleFunc("/api/accounts/{id}", h.Account.HandleAccountByID)
	mux.HandleFunc("/api/accounts/{id}/reconcile", h.Account.HandleReconcile)
	mux.HandleFunc("/api/accounts/stats/total-balance", h.Account.HandleTotalBalance)
	mux.HandleFunc("/api/accounts/stats/net-worth", h.Account.HandleNetWorth)
	mux.HandleFunc("/api/accounts/summary/total-balance", h.Account.HandleTotalBalance)
	mux.HandleFunc("/api/accounts/summary/net-worth", h.Account.HandleNetWorth)
	mux.HandleFunc("/api/accounts/types/all", h.Account.HandleListTypes)
	mux.HandleFunc("/api/accounts/institutions/all", h.Account.HandleListInstitutions)

	// Transactions
	mux.HandleFunc("/api/transactions", h.Transaction.HandleTransactions)
	mux.HandleFunc("/api/transactions/{id}", h.Transaction.HandleTransactionByID)
	mux.HandleFunc("/api/transactions/account/{account_id}", h.Transaction.HandleListByAccount)
	mux.HandleFunc("/api/transactions/categories", h.Transaction.HandleCategories)
	mux.HandleFunc("/api/transactions/search", h.Transaction.HandleSearch)
	mux.HandleFunc("/api/transactions/import", h.Transaction.HandleImport)
	mux.HandleFunc("/api/transactions/export", h.Export.HandleExportTransactions)

	// Reports and export
	mux.HandleFunc("/api/reports/net-worth-history", h.Report.HandleNetWorthHistory)
	mux.HandleFunc("/api/reports/spending-by-category", h.Report.HandleSpendingByCategory)
	mux.HandleFunc("/api/reports/monthly-summary", h.Report.HandleMonthlySummary)
	mux.HandleFunc("/api/export/transactions", h.Export.HandleExportTransactions)
	mux.HandleFunc("/api/export/spending-by-category", h.Export.HandleExportSpending)

	// Budget
	mux.HandleFunc("/api/budget", h.Budget.HandleBudget)
	mux.HandleFunc("/api/budget/{id}", h.Budget.HandleBudgetItem)

	// Bank connections
	mux.HandleFunc("/api/bank-connections", h.BankConnection.HandleConnections)
	mux.HandleFunc("/api/bank-connections/{id}", h.BankConnection.HandleConnectionByID)
	mux.HandleFunc("/api/bank-connections/{id}/accounts", h.BankConnection.HandleLinkAccount)
	mux.HandleFunc("/api/bank-connections/{id}/accounts/{account_id}", h.BankConnection.HandleUnlinkAccount)
	mux.HandleFunc("/api/bank-connections/{id}/accounts/{account_id}/sync", h.BankConnection.HandleSyncAccount)
	mux.HandleFunc("/api/bank-connections/plaid/link-token", h.BankConnection.HandleLinkToken)
	mux.HandleFunc("/api/bank-connections/institutions", h.BankConnection.HandleSupportedInstitutions)
}
