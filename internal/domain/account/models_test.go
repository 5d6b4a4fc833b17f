package account

import (
	"errors"
	"testing"
)

func TestNextID(t *testing.T) {
	tests := []struct {
		last string
		want string
	}{
		{last: "", want: "acc-001"},
		{last: "acc-005", want: "acc-006"},
		{last: "acc-099", want: "acc-100"},
		{last: "acc-999", want: "acc-1000"},
		{last: "acc-1000", want: "acc-1001"},
		{last: "checking-1", want: "acc-001"},
		{last: "acc-abc", want: "acc-001"},
	}

	for _, tt := range tests {
		t.Run(tt.last, func(t *testing.T) {
			if got := NextID(tt.last); got != tt.want {
				t.Errorf("NextID(%q) = %q, want %q", tt.last, got, tt.want)
			}
		})
	}
}

func TestIsValidCurrency(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"USD", true},
		{"EUR", true},
		{"usd", false},
		{"US", false},
		{"USDT", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsValidCurrency(tt.code); got != tt.want {
			t.Errorf("IsValidCurrency(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestCreateParams_Validate(t *testing.T) {
	valid := CreateParams{Name: "Checking", Type: "checking", Institution: "chase", Currency: "USD"}

	tests := []struct {
		name    string
		mutate  func(p *CreateParams)
		wantErr error
	}{
		{name: "Valid", mutate: func(p *CreateParams) {}},
		{name: "Blank name", mutate: func(p *CreateParams) { p.Name = "  " }, wantErr: ErrAccountNameRequired},
		{name: "Missing type", mutate: func(p *CreateParams) { p.Type = "" }, wantErr: ErrInvalidInput},
		{name: "Missing institution", mutate: func(p *CreateParams) { p.Institution = "" }, wantErr: ErrInvalidInput},
		{name: "Bad currency", mutate: func(p *CreateParams) { p.Currency = "dollars" }, wantErr: ErrInvalidCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUpdateParams(t *testing.T) {
	if !(UpdateParams{}).IsEmpty() {
		t.Error("empty patch reported non-empty")
	}

	active := false
	if (UpdateParams{IsActive: &active}).IsEmpty() {
		t.Error("IsActive patch reported empty")
	}

	blank := ""
	if err := (UpdateParams{Type: &blank}).Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Validate() = %v, want ErrInvalidInput", err)
	}
	lower := "eur"
	if err := (UpdateParams{Currency: &lower}).Validate(); !errors.Is(err, ErrInvalidCurrency) {
		t.Errorf("Validate() = %v, want ErrInvalidCurrency", err)
	}
}

func TestAccount_IsLiability(t *testing.T) {
	if !(&Account{Balance: -0.01}).IsLiability() {
		t.Error("negative balance should be a liability")
	}
	if (&Account{Balance: 0}).IsLiability() {
		t.Error("zero balance should not be a liability")
	}
	if (&Account{Type: "credit", Balance: 12.5}).IsLiability() {
		t.Error("credit account in credit should not be a liability")
	}
}
