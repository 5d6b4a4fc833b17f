package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"wealthtrackr/internal/domain/report"
	"wealthtrackr/internal/domain/transaction"
)

// Supported formats
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

// ErrUnknownFormat is returned for formats other than csv, json and xlsx.
var ErrUnknownFormat = errors.New("unsupported export format")

var contentTypes = map[string]string{
	FormatCSV:  "text/csv",
	FormatJSON: "application/json",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// Table is a fully buffered export: a fixed header and one row per record.
type Table struct {
	Sheet  string
	Header []string
	Rows   [][]any
}

// ParseFormat normalizes a requested format. Empty selects CSV.
func ParseFormat(s string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(s))
	if format == "" {
		return FormatCSV, nil
	}
	if _, ok := contentTypes[format]; !ok {
		return "", fmt.Errorf("%w: %q (expected csv, json or xlsx)", ErrUnknownFormat, s)
	}
	return format, nil
}

// ContentType returns the MIME type of format.
func ContentType(format string) string {
	return contentTypes[format]
}

// Filename renders <kind>_YYYYMMDD.<ext> for the given day.
func Filename(kind, format string, at time.Time) string {
	return fmt.Sprintf("%s_%s.%s", kind, at.Format("20060102"), format)
}

// TransactionsTable lays out transactions with the fixed transaction columns.
func TransactionsTable(txns []*transaction.Transaction) Table {
	t := Table{
		Sheet:  "Transactions",
		Header: []string{"id", "account_id", "account_name", "date", "amount", "payee", "category", "description", "is_reconciled"},
		Rows:   make([][]any, 0, len(txns)),
	}
	for _, tx := range txns {
		t.Rows = append(t.Rows, []any{
			tx.ID, tx.AccountID, tx.AccountName, tx.Date.Format(transaction.DateLayout),
			tx.Amount, tx.Payee, tx.Category, tx.Description, tx.IsReconciled,
		})
	}
	return t
}

// SpendingTable lays out a spending-by-category report.
func SpendingTable(categories []report.CategoryAmount) Table {
	t := Table{
		Sheet:  "Spending",
		Header: []string{"category", "amount", "percentage"},
		Rows:   make([][]any, 0, len(categories)),
	}
	for _, c := range categories {
		t.Rows = append(t.Rows, []any{c.Category, c.Amount, c.Percentage})
	}
	return t
}

// Write renders table to w in format.
func Write(w io.Writer, format string, table Table) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, table)
	case FormatJSON:
		return WriteJSON(w, table)
	case FormatXLSX:
		return WriteXLSX(w, table)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteCSV writes the header followed by every row.
func WriteCSV(w io.Writer, table Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	record := make([]string, len(table.Header))
	for _, row := range table.Rows {
		for i, v := range row {
			record[i] = formatCell(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes an array of objects keyed by the header columns.
func WriteJSON(w io.Writer, table Table) error {
	records := make([]map[string]any, 0, len(table.Rows))
	for _, row := range table.Rows {
		record := make(map[string]any, len(table.Header))
		for i, col := range table.Header {
			record[col] = row[i]
		}
		records = append(records, record)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// WriteXLSX writes a single-sheet workbook.
func WriteXLSX(w io.Writer, table Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	if table.Sheet != "" {
		if err := f.SetSheetName(sheet, table.Sheet); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
		sheet = table.Sheet
	}

	for i, header := range table.Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for r, row := range table.Rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func formatCell(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', 2, 64)
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}
