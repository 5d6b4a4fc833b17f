package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"wealthtrackr/internal/domain/reconcile"
	"wealthtrackr/internal/infrastructure/events"
	"wealthtrackr/internal/infrastructure/lock"
	"wealthtrackr/internal/infrastructure/postgres"
	"wealthtrackr/internal/shared/config"
)

const usage = `WealthTrackr Admin CLI - Management commands for the WealthTrackr API

Usage:
  admin <command> [options]

Commands:
  migrate     Apply pending database migrations
  seed        Insert reference accounts and budget items into empty tables
  reconcile   Re-derive account balances from their transactions

Examples:
  # Reconcile a single account
  admin reconcile --account-id=acc-001

  # Reconcile several accounts
  admin reconcile --account-id=acc-001,acc-003

  # Reconcile every account with higher concurrency
  admin reconcile --all --workers=8 --timeout=10m
`

func printUsage(w io.Writer) {
	fmt.Fprint(w, usage)
}

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "migrate":
		runMigrate()
	case "seed":
		runSeed()
	case "reconcile":
		runReconcile(os.Args[2:])
	case "help", "-h", "--help":
		printUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage(os.Stderr)
		os.Exit(1)
	}
}

func connect() (*config.Config, *postgres.DB) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")
	return cfg, db
}

func runMigrate() {
	_, db := connect()
	defer db.Close()

	if err := postgres.Migrate(context.Background(), db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations applied")
}

func runSeed() {
	_, db := connect()
	defer db.Close()

	if err := postgres.Seed(context.Background(), db); err != nil {
		log.Fatalf("Seed failed: %v", err)
	}
	log.Println("Seed complete")
}

func runReconcile(args []string) {
	fs := flag.NewFlagSet("reconcile", flag.ExitOnError)

	accountIDStr := fs.String("account-id", "", "Account ID(s) to reconcile (comma-separated for multiple)")
	all := fs.Bool("all", false, "Reconcile every account")
	workers := fs.Int("workers", reconcile.DefaultWorkerCount, "Number of concurrent workers")
	timeoutStr := fs.String("timeout", "30m", "Timeout for the operation (e.g., 5m, 1h)")

	fs.Usage = func() {
		fmt.Println("Usage: admin reconcile [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	accountIDs := splitIDs(*accountIDStr)
	if len(accountIDs) == 0 && !*all {
		fmt.Println("Error: must specify --account-id or --all")
		fs.Usage()
		os.Exit(1)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatalf("Invalid timeout format: %v", err)
	}

	cfg, db := connect()
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Share the API's Redis leases so a running server and this command
	// never reconcile the same account at once.
	var locker reconcile.Locker = lock.NewKeyedMutex()
	if cfg.Redis.URL != "" {
		client, err := lock.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer client.Close()
		locker = lock.NewRedisLocker(client, cfg.Redis.LockPrefix, cfg.Redis.LockTTL)
	}

	var publisher events.Publisher = events.Fallback{}
	if cfg.RabbitMQ.URL != "" {
		producer, err := events.NewProducer(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Printf("level=warn component=event_producer msg=\"rabbitmq unavailable, events will be dropped\" err=%v", err)
		} else {
			publisher = producer
		}
	}
	defer publisher.Close()

	service := reconcile.NewService(postgres.NewAccountRepository(db), locker, publisher).WithWorkers(*workers)
	startTime := time.Now()

	if *all {
		log.Printf("Reconciling all accounts with %d workers", *workers)
		result, err := service.ReconcileAll(ctx)
		if err != nil {
			log.Fatalf("Reconciliation failed: %v", err)
		}
		printResult(result)
	} else {
		result := &reconcile.Result{Balances: make(map[string]float64, len(accountIDs))}
		for _, id := range accountIDs {
			balance, err := service.Reconcile(ctx, id)
			result.AccountsChecked++
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", id, err))
				continue
			}
			result.Balances[id] = balance
		}
		printResult(result)
	}

	log.Printf("Reconciliation completed in %v", time.Since(startTime))
}

func printResult(result *reconcile.Result) {
	fmt.Printf("\n=== Reconciliation ===\n")
	fmt.Printf("  Accounts checked: %d\n", result.AccountsChecked)

	ids := make([]string, 0, len(result.Balances))
	for id := range result.Balances {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Printf("    %-10s %12.2f\n", id, result.Balances[id])
	}

	if len(result.Errors) > 0 {
		fmt.Printf("  Errors:           %d\n", len(result.Errors))
		for i, e := range result.Errors {
			if i >= 5 {
				fmt.Printf("    ... and %d more errors\n", len(result.Errors)-5)
				break
			}
			fmt.Printf("    - %s\n", e)
		}
	}
}

func splitIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}
