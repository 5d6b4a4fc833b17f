package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"wealthtrackr/internal/domain/account"
	"wealthtrackr/internal/domain/bankconnection"
	"wealthtrackr/internal/domain/budget"
	"wealthtrackr/internal/domain/reconcile"
	"wealthtrackr/internal/domain/report"
	"wealthtrackr/internal/domain/transaction"
	"wealthtrackr/internal/infrastructure/aggregator"
	"wealthtrackr/internal/infrastructure/crypto"
	"wealthtrackr/internal/infrastructure/events"
	"wealthtrackr/internal/infrastructure/lock"
	"wealthtrackr/internal/infrastructure/memory"
	"wealthtrackr/internal/infrastructure/postgres"
	httphandlers "wealthtrackr/internal/interfaces/http"
	"wealthtrackr/internal/shared/config"
)

// accountStore is what both storage drivers provide for accounts.
type accountStore interface {
	account.Repository
	reconcile.Ledger
}

// stores holds the repositories of the selected storage driver.
type stores struct {
	accounts     accountStore
	transactions transaction.Repository
	budget       budget.Repository
	connections  bankconnection.Repository
	close        func()
}

// Dependencies holds all initialized application components.
type Dependencies struct {
	AccountHandler        *httphandlers.AccountHandler
	TransactionHandler    *httphandlers.TransactionHandler
	ReportHandler         *httphandlers.ReportHandler
	ExportHandler         *httphandlers.ExportHandler
	BudgetHandler         *httphandlers.BudgetHandler
	BankConnectionHandler *httphandlers.BankConnectionHandler

	// for the scheduler job provider
	BankConnectionService *bankconnection.Service

	closers []func()
}

// NewDependencies initializes all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	deps := &Dependencies{}

	st, err := openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	deps.closers = append(deps.closers, st.close)

	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		deps.Close()
		return nil, err
	}

	locker, closeLocker := newLocker(ctx, cfg.Redis)
	deps.closers = append(deps.closers, closeLocker)

	publisher := newPublisher(cfg.RabbitMQ)
	deps.closers = append(deps.closers, publisher.Close)

	provider := aggregator.NewSandbox(time.Now().UnixNano())

	reconcileService := reconcile.NewService(st.accounts, locker, publisher)
	accountService := account.NewService(st.accounts)
	transactionService := transaction.NewService(st.transactions, st.accounts, reconcileService, publisher)
	budgetService := budget.NewService(st.budget, cfg.Reports.BudgetDefaultMonth)
	reportService := report.NewService(transactionService, accountService)
	bankService := bankconnection.NewService(st.connections, provider, st.accounts, transactionService, encryptor, publisher)

	deps.AccountHandler = httphandlers.NewAccountHandler(accountService, reconcileService)
	deps.TransactionHandler = httphandlers.NewTransactionHandler(transactionService)
	deps.ReportHandler = httphandlers.NewReportHandler(reportService)
	deps.ExportHandler = httphandlers.NewExportHandler(transactionService, reportService)
	deps.BudgetHandler = httphandlers.NewBudgetHandler(budgetService)
	deps.BankConnectionHandler = httphandlers.NewBankConnectionHandler(bankService)
	deps.BankConnectionService = bankService

	return deps, nil
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		store := memory.NewStore()
		if cfg.Database.Seed {
			if err := store.Seed(ctx); err != nil {
				return nil, fmt.Errorf("failed to seed memory store: %w", err)
			}
		}
		log.Println("Using in-memory storage")
		return &stores{
			accounts:     store.Accounts(),
			transactions: store.Transactions(),
			budget:       store.Budget(),
			connections:  store.BankConnections(),
			close:        func() {},
		}, nil

	default:
		db, err := postgres.New(cfg.Database.ConnectionString())
		if err != nil {
			return nil, err
		}
		log.Println("Connected to database")

		if cfg.Database.AutoMigrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				db.Close()
				return nil, err
			}
		}
		if cfg.Database.Seed {
			if err := postgres.Seed(ctx, db); err != nil {
				db.Close()
				return nil, err
			}
		}

		return &stores{
			accounts:     postgres.NewAccountRepository(db),
			transactions: postgres.NewTransactionRepository(db),
			budget:       postgres.NewBudgetRepository(db),
			connections:  postgres.NewBankConnectionRepository(db),
			close:        func() { db.Close() },
		}, nil
	}
}

// newLocker uses Redis leases when configured and reachable, otherwise
// in-process locks.
func newLocker(ctx context.Context, cfg config.RedisConfig) (reconcile.Locker, func()) {
	if cfg.URL == "" {
		return lock.NewKeyedMutex(), func() {}
	}

	client, err := lock.Connect(ctx, cfg.URL)
	if err != nil {
		log.Printf("level=warn component=redis_lock msg=\"redis unavailable, using in-process locks\" err=%v", err)
		return lock.NewKeyedMutex(), func() {}
	}

	log.Println("Using Redis account locks")
	return lock.NewRedisLocker(client, cfg.LockPrefix, cfg.LockTTL), func() { client.Close() }
}

// newPublisher uses RabbitMQ when configured and reachable, otherwise the
// logging fallback.
func newPublisher(cfg config.RabbitMQConfig) events.Publisher {
	if cfg.URL == "" {
		log.Println("RABBITMQ_URL not set, ledger events are not published")
		return events.Fallback{}
	}

	producer, err := events.NewProducer(cfg.URL, cfg.Exchange)
	if err != nil {
		log.Printf("level=warn component=event_producer msg=\"rabbitmq unavailable, events will be dropped\" err=%v", err)
		return events.Fallback{}
	}

	log.Printf("Publishing ledger events to exchange %s", cfg.Exchange)
	return producer
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}
