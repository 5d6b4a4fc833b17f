package scheduler

import (
	"context"
	"fmt"
	"log"

	"wealthtrackr/internal/domain/bankconnection"
)

// SyncService is the part of bankconnection.Service the sync jobs drive.
type SyncService interface {
	ListSyncTargets(ctx context.Context) ([]*bankconnection.Link, error)
	SyncAccount(ctx context.Context, connectionID, accountID string) (*bankconnection.SyncResult, error)
}

// SyncJob pulls provider transactions for one linked account
type SyncJob struct {
	connectionID string
	accountID    string
	service      SyncService
}

func NewSyncJob(link *bankconnection.Link, service SyncService) *SyncJob {
	return &SyncJob{
		connectionID: link.ConnectionID,
		accountID:    link.AccountID,
		service:      service,
	}
}

func (j *SyncJob) Execute(ctx context.Context) error {
	result, err := j.service.SyncAccount(ctx, j.connectionID, j.accountID)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	log.Printf("Sync for account %s via %s completed: Created=%d, Balance=%.2f",
		j.accountID, j.connectionID, result.TransactionsCreated, result.NewBalance)
	return nil
}

func (j *SyncJob) Target() string {
	return j.connectionID + "/" + j.accountID
}

func (j *SyncJob) Description() string {
	return fmt.Sprintf("Bank sync for account %s", j.accountID)
}

// SyncJobs returns a JobProvider yielding one SyncJob per link of every
// active connection.
func SyncJobs(service SyncService) JobProvider {
	return func(ctx context.Context) ([]Job, error) {
		links, err := service.ListSyncTargets(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list sync targets: %w", err)
		}

		jobs := make([]Job, 0, len(links))
		for _, link := range links {
			jobs = append(jobs, NewSyncJob(link, service))
		}
		return jobs, nil
	}
}
