package transaction

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2025-04-15", want: time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)},
		{in: " 2025-04-15 ", want: time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)},
		{in: "2025-04-15T18:30:00Z", want: time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)},
		{in: "15/04/2025", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("ParseDate(%q) error = %v, want ErrInvalidInput", tt.in, err)
				}
				return
			}
			if err != nil || !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestFilter_Matches(t *testing.T) {
	txn := &Transaction{
		AccountID: "acc-001", Category: "Food", Amount: -45.67, IsReconciled: false,
		Date: time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC),
	}
	day := func(d int) *time.Time { v := time.Date(2025, 4, d, 0, 0, 0, 0, time.UTC); return &v }
	amount := func(v float64) *float64 { return &v }
	yes := true

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{name: "Empty filter", filter: Filter{}, want: true},
		{name: "Account match", filter: Filter{AccountID: "acc-001"}, want: true},
		{name: "Account mismatch", filter: Filter{AccountID: "acc-002"}, want: false},
		{name: "Category mismatch", filter: Filter{Category: "Transport"}, want: false},
		{name: "Inclusive end date", filter: Filter{StartDate: day(14), EndDate: day(15)}, want: true},
		{name: "Before start", filter: Filter{StartDate: day(16)}, want: false},
		{name: "Amount in range", filter: Filter{MinAmount: amount(-50), MaxAmount: amount(0)}, want: true},
		{name: "Below min", filter: Filter{MinAmount: amount(-40)}, want: false},
		{name: "Reconciled only", filter: Filter{IsReconciled: &yes}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(txn); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchesText(t *testing.T) {
	txn := &Transaction{Payee: "Test Payee UNIQUE123", Category: "Transport", Description: "Bus fare"}

	for _, q := range []string{"unique123", "TRANS", "bus"} {
		if !MatchesText(txn, q) {
			t.Errorf("MatchesText(%q) = false, want true", q)
		}
	}
	if MatchesText(txn, "grocer") {
		t.Error("MatchesText(grocer) = true, want false")
	}
}

func TestUpdateParams_Validate(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		name    string
		params  UpdateParams
		wantErr error
	}{
		{name: "Empty patch", params: UpdateParams{}},
		{name: "Rename payee", params: UpdateParams{Payee: str("Grocer")}},
		{name: "Blank account", params: UpdateParams{AccountID: str(" ")}, wantErr: ErrAccountRequired},
		{name: "Blank payee", params: UpdateParams{Payee: str("  ")}, wantErr: ErrPayeeRequired},
		{name: "Blank category", params: UpdateParams{Category: str("")}, wantErr: ErrCategoryRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.params.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
