package budget_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"wealthtrackr/internal/domain/budget"
	"wealthtrackr/internal/infrastructure/memory"
)

func newSeededService(t *testing.T, defaultMonth string) *budget.Service {
	t.Helper()
	store := memory.NewStore()
	if err := store.Seed(context.Background()); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	return budget.NewService(store.Budget(), defaultMonth)
}

func TestService_GetBudget(t *testing.T) {
	svc := newSeededService(t, "May 2025")
	ctx := context.Background()

	b, err := svc.GetBudget(ctx, "")
	if err != nil {
		t.Fatalf("GetBudget() error = %v", err)
	}
	if b.Month != "May 2025" || len(b.Items) != len(budget.SampleItems) {
		t.Errorf("GetBudget() = %s with %d items", b.Month, len(b.Items))
	}

	empty, err := svc.GetBudget(ctx, "June 2025")
	if err != nil {
		t.Fatalf("GetBudget() error = %v", err)
	}
	if empty.Items == nil || len(empty.Items) != 0 {
		t.Errorf("GetBudget(June) items = %#v, want empty slice", empty.Items)
	}
}

func TestService_ItemLifecycle(t *testing.T) {
	svc := newSeededService(t, "May 2025")
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, budget.CreateParams{Amount: -60, Type: "Gym", Section: " Subscriptions "})
	if err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}
	if item.Section != budget.SectionSubscriptions || item.Month != "May 2025" || item.ID == 0 {
		t.Errorf("created = %+v", item)
	}

	amount := -75.5
	section := "BILLS"
	updated, err := svc.UpdateItem(ctx, item.ID, budget.UpdateParams{Amount: &amount, Section: &section})
	if err != nil {
		t.Fatalf("UpdateItem() error = %v", err)
	}
	if updated.Amount != -75.5 || updated.Section != budget.SectionBills || updated.Type != "Gym" {
		t.Errorf("updated = %+v", updated)
	}

	if err := svc.DeleteItem(ctx, item.ID); err != nil {
		t.Fatalf("DeleteItem() error = %v", err)
	}
	if err := svc.DeleteItem(ctx, item.ID); !errors.Is(err, budget.ErrBudgetItemNotFound) {
		t.Errorf("second DeleteItem() = %v, want ErrBudgetItemNotFound", err)
	}
	if _, err := svc.UpdateItem(ctx, item.ID, budget.UpdateParams{Amount: &amount}); !errors.Is(err, budget.ErrBudgetItemNotFound) {
		t.Errorf("UpdateItem() on deleted = %v, want ErrBudgetItemNotFound", err)
	}
}

func TestService_Validation(t *testing.T) {
	svc := newSeededService(t, "")
	ctx := context.Background()

	tests := []struct {
		name    string
		params  budget.CreateParams
		wantErr error
	}{
		{name: "Missing type", params: budget.CreateParams{Amount: 1, Section: "income"}, wantErr: budget.ErrTypeRequired},
		{name: "Unknown section", params: budget.CreateParams{Amount: 1, Type: "Bonus", Section: "windfall"}, wantErr: budget.ErrInvalidSection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateItem(ctx, tt.params); !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateItem() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	blank := "  "
	if _, err := svc.UpdateItem(ctx, 1, budget.UpdateParams{Month: &blank}); !errors.Is(err, budget.ErrMonthRequired) {
		t.Errorf("UpdateItem() blank month = %v, want ErrMonthRequired", err)
	}
}

func TestService_DefaultsToCurrentMonth(t *testing.T) {
	svc := newSeededService(t, "")

	want := budget.MonthLabel(time.Now())
	b, err := svc.GetBudget(context.Background(), "")
	if err != nil {
		t.Fatalf("GetBudget() error = %v", err)
	}
	if b.Month != want {
		t.Errorf("GetBudget() month = %q, want %q", b.Month, want)
	}
}
