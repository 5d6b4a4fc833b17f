package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"wealthtrackr/internal/domain/account"
	"wealthtrackr/internal/domain/bankconnection"
	"wealthtrackr/internal/domain/transaction"
)

func seededStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	if err := s.Seed(context.Background()); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	return s
}

func TestAccountRepo(t *testing.T) {
	ctx := context.Background()
	repo := seededStore(t).Accounts()

	all, err := repo.List(ctx, account.Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != len(account.SampleAccounts) || all[0].ID != "acc-001" {
		t.Fatalf("List() = %d accounts starting %s, want %d starting acc-001", len(all), all[0].ID, len(account.SampleAccounts))
	}
	if all[0].InstitutionName != "Chase" {
		t.Errorf("InstitutionName = %q, want Chase", all[0].InstitutionName)
	}

	credit, _ := repo.List(ctx, account.Filter{Type: "credit"})
	if len(credit) != 1 || credit[0].ID != "acc-003" {
		t.Errorf("List(type=credit) = %v, want acc-003 only", credit)
	}

	last, _ := repo.LastSequentialID(ctx)
	if last != "acc-005" {
		t.Errorf("LastSequentialID() = %q, want acc-005", last)
	}

	if a, err := repo.GetByID(ctx, "acc-999"); a != nil || err != nil {
		t.Errorf("GetByID(missing) = %v, %v, want nil, nil", a, err)
	}
	name := "Renamed"
	if a, err := repo.Update(ctx, "acc-999", account.UpdateParams{Name: &name}); a != nil || err != nil {
		t.Errorf("Update(missing) = %v, %v, want nil, nil", a, err)
	}
	if _, err := repo.Create(ctx, account.SampleAccounts[0]); !errors.Is(err, account.ErrInvalidInput) {
		t.Errorf("Create(duplicate) error = %v, want ErrInvalidInput", err)
	}
	if err := repo.Touch(ctx, "acc-999"); !errors.Is(err, account.ErrAccountNotFound) {
		t.Errorf("Touch(missing) error = %v, want ErrAccountNotFound", err)
	}
}

func TestAccountRepo_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)
	txns := s.Transactions()
	conns := s.BankConnections()

	if _, err := txns.Create(ctx, transaction.CreateParams{ID: "txn-1", AccountID: "acc-001", Date: time.Now(), Amount: -5, Payee: "Cafe", Category: "Food"}); err != nil {
		t.Fatalf("Create transaction: %v", err)
	}
	if _, err := conns.Create(ctx, bankconnection.CreateParams{ID: "conn-1", InstitutionID: "chase", Status: bankconnection.StatusActive}); err != nil {
		t.Fatalf("Create connection: %v", err)
	}
	if _, err := conns.CreateLink(ctx, bankconnection.LinkParams{ID: "link-1", ConnectionID: "conn-1", AccountID: "acc-001"}); err != nil {
		t.Fatalf("CreateLink: %v", err)
	}

	if err := s.Accounts().Delete(ctx, "acc-001"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if left, _ := txns.ListByAccount(ctx, "acc-001"); len(left) != 0 {
		t.Errorf("%d transactions survived the account", len(left))
	}
	if l, _ := conns.GetLink(ctx, "conn-1", "acc-001"); l != nil {
		t.Error("link survived the account")
	}
}

func TestTransactionRepo(t *testing.T) {
	ctx := context.Background()
	repo := seededStore(t).Transactions()
	day := func(s string) time.Time {
		d, _ := time.Parse(transaction.DateLayout, s)
		return d
	}

	for _, p := range []transaction.CreateParams{
		{ID: "txn-a", AccountID: "acc-001", Date: day("2025-04-01"), Amount: -20, Payee: "Grocer", Category: "Groceries"},
		{ID: "txn-b", AccountID: "acc-002", Date: day("2025-04-03"), Amount: 100, Payee: "Employer", Category: "Salary"},
		{ID: "txn-c", AccountID: "acc-001", Date: day("2025-04-02"), Amount: -8, Payee: "Cafe", Category: "Dining"},
	} {
		if _, err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create(%s) error = %v", p.ID, err)
		}
	}

	if _, err := repo.Create(ctx, transaction.CreateParams{ID: "txn-x", AccountID: "acc-999"}); !errors.Is(err, transaction.ErrInvalidInput) {
		t.Errorf("Create(unknown account) error = %v, want ErrInvalidInput", err)
	}

	all, _ := repo.List(ctx)
	if len(all) != 3 || all[0].ID != "txn-b" || all[2].ID != "txn-a" {
		t.Errorf("List() not newest first: %v", ids(all))
	}
	if all[0].AccountName != "Savings Account" {
		t.Errorf("AccountName = %q, want Savings Account", all[0].AccountName)
	}

	found, _ := repo.Search(ctx, "CAFE")
	if len(found) != 1 || found[0].ID != "txn-c" {
		t.Errorf("Search(CAFE) = %v, want txn-c", ids(found))
	}

	cats, _ := repo.DistinctCategories(ctx)
	if len(cats) != 3 || cats[0] != "Dining" {
		t.Errorf("DistinctCategories() = %v", cats)
	}

	other := "acc-999"
	if _, err := repo.Update(ctx, "txn-a", transaction.UpdateParams{AccountID: &other}); !errors.Is(err, transaction.ErrInvalidInput) {
		t.Errorf("Update(move to unknown account) error = %v, want ErrInvalidInput", err)
	}
	if got, err := repo.Update(ctx, "txn-missing", transaction.UpdateParams{}); got != nil || err != nil {
		t.Errorf("Update(missing) = %v, %v, want nil, nil", got, err)
	}
	if err := repo.Delete(ctx, "txn-missing"); !errors.Is(err, transaction.ErrTransactionNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrTransactionNotFound", err)
	}
}

func TestBankConnectionRepo_ActiveLinks(t *testing.T) {
	ctx := context.Background()
	repo := seededStore(t).BankConnections()

	for _, c := range []bankconnection.CreateParams{
		{ID: "conn-a", InstitutionID: "chase", Status: bankconnection.StatusActive},
		{ID: "conn-b", InstitutionID: "citi", Status: "error"},
	} {
		if _, err := repo.Create(ctx, c); err != nil {
			t.Fatalf("Create(%s) error = %v", c.ID, err)
		}
	}
	repo.CreateLink(ctx, bankconnection.LinkParams{ID: "link-a", ConnectionID: "conn-a", AccountID: "acc-001"})
	repo.CreateLink(ctx, bankconnection.LinkParams{ID: "link-b", ConnectionID: "conn-b", AccountID: "acc-003"})

	if _, err := repo.CreateLink(ctx, bankconnection.LinkParams{ID: "link-c", ConnectionID: "conn-a", AccountID: "acc-001"}); !errors.Is(err, bankconnection.ErrLinkExists) {
		t.Errorf("CreateLink(duplicate) error = %v, want ErrLinkExists", err)
	}

	links, _ := repo.ListActiveLinks(ctx)
	if len(links) != 1 || links[0].ID != "link-a" {
		t.Errorf("ListActiveLinks() = %d links, want link-a only", len(links))
	}

	conn, _ := repo.GetByID(ctx, "conn-a")
	if len(conn.ConnectedAccounts) != 1 || conn.ConnectedAccounts[0] != "acc-001" {
		t.Errorf("ConnectedAccounts = %v, want [acc-001]", conn.ConnectedAccounts)
	}

	if err := repo.Delete(ctx, "conn-a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if l, _ := repo.GetLink(ctx, "conn-a", "acc-001"); l != nil {
		t.Error("link survived its connection")
	}
}

func ids(txns []*transaction.Transaction) []string {
	out := make([]string, len(txns))
	for i, t := range txns {
		out[i] = t.ID
	}
	return out
}
