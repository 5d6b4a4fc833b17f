package http

import (
	"bytes"
	"log"
	"net/http"
	"time"

	"wealthtrackr/internal/domain/report"
	"wealthtrackr/internal/domain/transaction"
	"wealthtrackr/internal/export"
)

// ExportHandler renders transactions and report aggregates as downloadable files
type ExportHandler struct {
	transactionService *transaction.Service
	reports            *ReportHandler
	now                func() time.Time
}

// NewExportHandler creates a new export handler
func NewExportHandler(transactionService *transaction.Service, reportService *report.Service) *ExportHandler {
	return &ExportHandler{
		transactionService: transactionService,
		reports:            NewReportHandler(reportService),
		now:                time.Now,
	}
}

// HandleExportTransactions exports the filtered transactions
func (h *ExportHandler) HandleExportTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter, err := parseTransactionFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txns, err := h.transactionService.FilterTransactions(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err, "export transactions", "")
		return
	}

	h.send(w, "transactions", format, export.TransactionsTable(txns))
}

// HandleExportSpending exports the spending-by-category report
func (h *ExportHandler) HandleExportSpending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	categories, err := h.reports.spending(r)
	if err != nil {
		writeServiceError(w, err, "export spending report", "")
		return
	}

	h.send(w, "spending_by_category", format, export.SpendingTable(categories))
}

// send buffers the whole file so a rendering failure can still produce an error response
func (h *ExportHandler) send(w http.ResponseWriter, kind, format string, table export.Table) {
	var buf bytes.Buffer
	if err := export.Write(&buf, format, table); err != nil {
		log.Printf("Error rendering %s export: %v", kind, err)
		writeError(w, http.StatusInternalServerError, "Failed to render export")
		return
	}

	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", "attachment; filename="+export.Filename(kind, format, h.now()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
