package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"wealthtrackr/internal/domain/report"
	"wealthtrackr/internal/domain/transaction"
)

// ReportHandler serves the read-only report endpoints
type ReportHandler struct {
	reportService *report.Service
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *report.Service) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// dateRange reads start_date and end_date. A missing end is today; a missing
// start is end minus defaultDays.
func dateRange(q url.Values, today time.Time, defaultDays int) (time.Time, time.Time, error) {
	end := today
	if s := q.Get("end_date"); s != "" {
		d, err := transaction.ParseDate(s)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = d
	}

	start := end.AddDate(0, 0, -defaultDays)
	if s := q.Get("start_date"); s != "" {
		d, err := transaction.ParseDate(s)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = d
	}

	return start, end, nil
}

// HandleNetWorthHistory returns the synthetic net-worth trend
func (h *ReportHandler) HandleNetWorthHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	q := r.URL.Query()
	start, end, err := dateRange(q, h.reportService.Today(), 365)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	interval := q.Get("interval")
	switch interval {
	case "":
		interval = report.IntervalMonth
	case report.IntervalDay, report.IntervalWeek, report.IntervalMonth, report.IntervalYear:
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid interval %q (expected day, week, month or year)", interval))
		return
	}

	points, err := h.reportService.NetWorthHistory(r.Context(), start, end, interval)
	if err != nil {
		writeServiceError(w, err, "build net worth history", "")
		return
	}

	writeJSON(w, http.StatusOK, points)
}

// HandleSpendingByCategory returns expenses bucketed by category
func (h *ReportHandler) HandleSpendingByCategory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	categories, err := h.spending(r)
	if err != nil {
		writeServiceError(w, err, "build spending report", "")
		return
	}

	writeJSON(w, http.StatusOK, categories)
}

func (h *ReportHandler) spending(r *http.Request) ([]report.CategoryAmount, error) {
	q := r.URL.Query()
	start, end, err := dateRange(q, h.reportService.Today(), 30)
	if err != nil {
		return nil, err
	}
	return h.reportService.SpendingByCategory(r.Context(), start, end, q.Get("account_id"))
}

// HandleMonthlySummary returns income, expenses and top categories of a month
func (h *ReportHandler) HandleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	q := r.URL.Query()
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "year is required and must be an integer")
		return
	}
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "month is required and must be an integer")
		return
	}

	summary, err := h.reportService.MonthlySummary(r.Context(), year, month, q.Get("account_id"))
	if err != nil {
		writeServiceError(w, err, "build monthly summary", "")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
