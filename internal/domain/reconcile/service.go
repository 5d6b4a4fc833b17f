package reconcile

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DefaultWorkerCount bounds concurrent accounts in ReconcileAll.
const DefaultWorkerCount = 4

// EventBalanceReconciled is the routing key of published reconciliation events.
const EventBalanceReconciled = "account.balance.reconciled"

var (
	reconcileMeter       = otel.Meter("wealthtrackr/reconcile")
	reconcileTotal, _    = reconcileMeter.Int64Counter("reconcile.total", metric.WithDescription("Balance reconciliations by status"))
	reconcileDuration, _ = reconcileMeter.Float64Histogram("reconcile.duration", metric.WithDescription("Balance reconciliation duration in seconds"), metric.WithUnit("s"))
)

// Ledger re-derives stored balances from transactions.
type Ledger interface {
	// RecomputeBalance sets the account's balance to the sum of its transactions
	// and returns it. Returns account.ErrAccountNotFound for unknown accounts.
	RecomputeBalance(ctx context.Context, accountID string) (decimal.Decimal, error)

	// ListAccountIDs returns every account id.
	ListAccountIDs(ctx context.Context) ([]string, error)
}

// Locker provides mutual exclusion per key.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Publisher emits ledger events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// BalanceReconciled is published after every successful reconciliation.
type BalanceReconciled struct {
	AccountID    string    `json:"account_id"`
	Balance      float64   `json:"balance"`
	ReconciledAt time.Time `json:"reconciled_at"`
}

// Result summarizes a ReconcileAll run.
type Result struct {
	AccountsChecked int
	Balances        map[string]float64
	Errors          []string
}

// Service centralizes balance reconciliation. Callers mutating transactions take
// the account locks with Lock, mutate, then call ReconcileHeld exactly once for
// the affected accounts before releasing.
type Service struct {
	ledger      Ledger
	locker      Locker
	publisher   Publisher
	workerCount int
	now         func() time.Time
}

// NewService creates a reconciliation service. publisher may be nil.
func NewService(ledger Ledger, locker Locker, publisher Publisher) *Service {
	return &Service{
		ledger:      ledger,
		locker:      locker,
		publisher:   publisher,
		workerCount: DefaultWorkerCount,
		now:         time.Now,
	}
}

// WithWorkers sets the concurrency used by ReconcileAll.
func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workerCount = n
	}
	return s
}

// Lock acquires the locks of every distinct account in sorted order and returns
// a function releasing them in reverse order.
func (s *Service) Lock(ctx context.Context, accountIDs ...string) (func(), error) {
	ids := distinct(accountIDs)
	unlocks := make([]func(), 0, len(ids))

	release := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}

	for _, id := range ids {
		unlock, err := s.locker.Lock(ctx, lockKey(id))
		if err != nil {
			release()
			return func() {}, fmt.Errorf("failed to lock account %s: %w", id, err)
		}
		unlocks = append(unlocks, unlock)
	}

	return release, nil
}

// ReconcileHeld re-derives the balance of each distinct account once. The caller
// must hold the accounts' locks.
func (s *Service) ReconcileHeld(ctx context.Context, accountIDs ...string) (map[string]float64, error) {
	balances := make(map[string]float64, len(accountIDs))
	for _, id := range distinct(accountIDs) {
		balance, err := s.recompute(ctx, id)
		if err != nil {
			return balances, err
		}
		balances[id] = balance
	}
	return balances, nil
}

// Reconcile locks and re-derives the balance of a single account.
func (s *Service) Reconcile(ctx context.Context, accountID string) (float64, error) {
	release, err := s.Lock(ctx, accountID)
	if err != nil {
		return 0, err
	}
	defer release()

	return s.recompute(ctx, accountID)
}

// ReconcileAll re-derives every account balance with bounded concurrency.
func (s *Service) ReconcileAll(ctx context.Context) (*Result, error) {
	ids, err := s.ledger.ListAccountIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	result := &Result{Balances: make(map[string]float64, len(ids))}
	var mu sync.Mutex
	var wg sync.WaitGroup

	sem := make(chan struct{}, s.workerCount)

	for _, id := range ids {
		wg.Add(1)
		go func(accountID string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				mu.Lock()
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", accountID, ctx.Err()))
				mu.Unlock()
				return
			}

			balance, err := s.Reconcile(ctx, accountID)

			mu.Lock()
			defer mu.Unlock()
			result.AccountsChecked++
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", accountID, err))
				return
			}
			result.Balances[accountID] = balance
		}(id)
	}

	wg.Wait()
	sort.Strings(result.Errors)
	return result, nil
}

func (s *Service) recompute(ctx context.Context, accountID string) (float64, error) {
	start := time.Now()

	balance, err := s.ledger.RecomputeBalance(ctx, accountID)
	if err != nil {
		reconcileTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "error")))
		return 0, fmt.Errorf("failed to reconcile account %s: %w", accountID, err)
	}

	reconcileTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "success")))
	reconcileDuration.Record(ctx, time.Since(start).Seconds())

	value := balance.Round(2).InexactFloat64()
	if s.publisher != nil {
		event := BalanceReconciled{AccountID: accountID, Balance: value, ReconciledAt: s.now().UTC()}
		if err := s.publisher.Publish(ctx, EventBalanceReconciled, event); err != nil {
			log.Printf("Failed to publish reconciliation event for account %s: %v", accountID, err)
		}
	}

	return value, nil
}

func lockKey(accountID string) string {
	return "account:" + accountID
}

func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
