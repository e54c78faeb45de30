/**
 * @description
 * This file contains the bulk reconciliation job. It snapshots the full
 * Method account list and replays it into the relational store as one
 * transactional, idempotent three-table upsert pass.
 *
 * Key features:
 * - Atomic: any persistence failure rolls back the whole batch; a run never
 *   leaves partial state behind.
 * - Idempotent: rows are keyed by the provider-assigned account id, so two
 *   back-to-back runs with no upstream change write identical state.
 * - Accounts removed upstream are never purged here; they simply stop being
 *   refreshed.
 *
 * @dependencies
 * - context, fmt, log, time: Standard Go libraries.
 * - The store repository and the ProviderClient interface from sync.go.
 */
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/wealthloop/aggregator-service/internal/domain"
	"github.com/wealthloop/aggregator-service/internal/store"
)

// ReconcileResult summarizes one reconciliation run.
type ReconcileResult struct {
	AccountsListed int `json:"accounts_listed"`
	RowsWritten    int `json:"rows_written"`
}

// ReconcileService runs the bulk reconciliation job.
type ReconcileService struct {
	provider  ProviderClient
	repo      store.Repository
	publisher EventPublisher
}

// NewReconcileService creates a new instance of ReconcileService. The
// publisher may be nil when no broker is configured.
func NewReconcileService(provider ProviderClient, repo store.Repository, publisher EventPublisher) *ReconcileService {
	return &ReconcileService{
		provider:  provider,
		repo:      repo,
		publisher: publisher,
	}
}

// Reconcile lists the full remote account set (one bounded page) and upserts
// account, liability, and credit-card rows for every account in list order.
func (s *ReconcileService) Reconcile(ctx context.Context) (*ReconcileResult, error) {
	accounts, err := s.provider.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("reconcile: list accounts: %w", err)
	}
	log.Printf("Reconciling %d accounts", len(accounts))

	rows, err := s.repo.UpsertAccounts(ctx, accounts)
	if err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}

	result := &ReconcileResult{
		AccountsListed: len(accounts),
		RowsWritten:    rows,
	}
	log.Printf("Reconciliation complete: %d accounts listed, %d rows written", result.AccountsListed, result.RowsWritten)

	if s.publisher != nil {
		event := domain.AccountsReconciledEvent{
			AccountsListed: result.AccountsListed,
			RowsWritten:    result.RowsWritten,
			CompletedAt:    time.Now().UTC(),
		}
		if err := s.publisher.Publish(ctx, eventsExchange, "accounts.reconciled", event); err != nil {
			log.Printf("WARN: Failed to publish accounts.reconciled: %v", err)
		}
	}

	return result, nil
}
