package aggregator

import (
	"context"
	"strings"
	"testing"
	"time"

	"wealthtrackr/internal/domain/bankconnection"
)

func TestSandbox_IssueLinkToken(t *testing.T) {
	s := NewSandbox(1)
	fixed := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	token, err := s.IssueLinkToken(context.Background())
	if err != nil {
		t.Fatalf("IssueLinkToken() failed: %v", err)
	}
	if !strings.HasPrefix(token.LinkToken, "link-sandbox-") || len(token.LinkToken) != len("link-sandbox-")+32 {
		t.Errorf("unexpected link token %q", token.LinkToken)
	}
	if !token.Expiration.Equal(fixed.Add(30 * time.Minute)) {
		t.Errorf("Expiration = %v, want %v", token.Expiration, fixed.Add(30*time.Minute))
	}
}

func TestSandbox_ExchangePublicToken(t *testing.T) {
	s := NewSandbox(1)

	creds, err := s.ExchangePublicToken(context.Background(), "public-sandbox-123")
	if err != nil {
		t.Fatalf("ExchangePublicToken() failed: %v", err)
	}
	if !strings.HasPrefix(creds.AccessToken, "access-token-") || !strings.HasPrefix(creds.ItemID, "item-") {
		t.Errorf("unexpected credentials %+v", creds)
	}

	if _, err := s.ExchangePublicToken(context.Background(), "  "); err == nil {
		t.Error("ExchangePublicToken() accepted an empty token")
	}
}

func TestSandbox_FetchTransactions(t *testing.T) {
	s := NewSandbox(42)
	today := time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return today.Add(15 * time.Hour) }

	conn := &bankconnection.Connection{ID: "conn-1", AccessToken: "access-token-abc"}
	link := &bankconnection.Link{ID: "link-1", ExternalAccountID: "ext-1"}

	for round := 0; round < 20; round++ {
		txns, err := s.FetchTransactions(context.Background(), conn, link)
		if err != nil {
			t.Fatalf("FetchTransactions() failed: %v", err)
		}
		if len(txns) < 5 || len(txns) > 10 {
			t.Fatalf("got %d transactions, want 5..10", len(txns))
		}

		for _, tx := range txns {
			if tx.Date.After(today) || tx.Date.Before(today.AddDate(0, 0, -30)) {
				t.Errorf("date %v outside the last 30 days", tx.Date)
			}
			abs := tx.Amount
			if abs < 0 {
				abs = -abs
			}
			if abs < 5 || abs > 200 {
				t.Errorf("amount %v outside 5..200", tx.Amount)
			}
			if (tx.Amount > 0) != (tx.Category == "Income") {
				t.Errorf("amount %v does not agree with category %q", tx.Amount, tx.Category)
			}
			if tx.Description != "Transaction at "+tx.Payee {
				t.Errorf("description %q does not name payee %q", tx.Description, tx.Payee)
			}
		}
	}
}

func TestSandbox_FetchTransactions_RequiresToken(t *testing.T) {
	s := NewSandbox(1)
	_, err := s.FetchTransactions(context.Background(), &bankconnection.Connection{ID: "conn-1"}, &bankconnection.Link{})
	if err == nil {
		t.Error("FetchTransactions() succeeded without an access token")
	}
}

func TestSandbox_SupportedInstitutions(t *testing.T) {
	s := NewSandbox(1)
	institutions, err := s.SupportedInstitutions(context.Background())
	if err != nil {
		t.Fatalf("SupportedInstitutions() failed: %v", err)
	}
	if len(institutions) != 10 {
		t.Fatalf("got %d institutions, want 10", len(institutions))
	}
	if institutions[0].ID != "ins_1" || institutions[0].Name != "Chase" || institutions[9].Name != "TD Bank" {
		t.Errorf("unexpected institutions %+v", institutions)
	}
}
