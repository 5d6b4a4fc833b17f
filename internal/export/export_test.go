package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"wealthtrackr/internal/domain/report"
	"wealthtrackr/internal/domain/transaction"
)

func sampleTransactions() []*transaction.Transaction {
	return []*transaction.Transaction{
		{
			ID:          "tx-1",
			AccountID:   "acc-001",
			AccountName: "Primary Checking",
			Date:        time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC),
			Amount:      -45.67,
			Payee:       "Grocer, Inc",
			Category:    "Food",
			Description: "Weekly shop",
		},
		{
			ID:           "tx-2",
			AccountID:    "acc-001",
			AccountName:  "Primary Checking",
			Date:         time.Date(2025, 4, 13, 0, 0, 0, 0, time.UTC),
			Amount:       500,
			Payee:        "Employer",
			Category:     "Income",
			IsReconciled: true,
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: FormatCSV},
		{in: "CSV", want: FormatCSV},
		{in: "json", want: FormatJSON},
		{in: " xlsx ", want: FormatXLSX},
		{in: "pdf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFormat) {
					t.Fatalf("ParseFormat(%q) error = %v, want ErrUnknownFormat", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFormat(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFilename(t *testing.T) {
	at := time.Date(2025, 5, 3, 14, 0, 0, 0, time.UTC)
	if got := Filename("transactions", FormatCSV, at); got != "transactions_20250503.csv" {
		t.Errorf("Filename() = %q", got)
	}
}

func TestWriteCSV_Transactions(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, TransactionsTable(sampleTransactions())); err != nil {
		t.Fatalf("WriteCSV() error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if lines[0] != "id,account_id,account_name,date,amount,payee,category,description,is_reconciled" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != `tx-1,acc-001,Primary Checking,2025-04-15,-45.67,"Grocer, Inc",Food,Weekly shop,false` {
		t.Errorf("row 1 = %q", lines[1])
	}
	if lines[2] != "tx-2,acc-001,Primary Checking,2025-04-13,500.00,Employer,Income,,true" {
		t.Errorf("row 2 = %q", lines[2])
	}
}

func TestWriteJSON_Spending(t *testing.T) {
	cats := []report.CategoryAmount{
		{Category: "Food", Amount: 45.67, Percentage: 64.62},
		{Category: "Transport", Amount: 25, Percentage: 35.38},
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, SpendingTable(cats)); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}

	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0]["category"] != "Food" || got[0]["amount"] != 45.67 {
		t.Errorf("first record = %v", got[0])
	}
}

func TestWriteXLSX_Transactions(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, TransactionsTable(sampleTransactions())); err != nil {
		t.Fatalf("WriteXLSX() error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Transactions")
	if err != nil {
		t.Fatalf("GetRows() error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0][0] != "id" || rows[1][0] != "tx-1" || rows[2][3] != "2025-04-13" {
		t.Errorf("unexpected rows: %v", rows)
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, "pdf", Table{})
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Write() error = %v, want ErrUnknownFormat", err)
	}
}
