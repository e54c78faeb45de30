/**
 * @description
 * This file contains the account sync workflow: the multi-step process that
 * turns a newly aggregated external account into a verified Method account.
 *
 * Steps, in order: fetch ACH numbers -> fetch account metadata -> normalize
 * the raw subtype -> fetch transactions -> create the Method account ->
 * attach a verification carrying the fetched evidence bundle. Any step
 * failure is wrapped with the external account id and the failing step and
 * returned to the caller; nothing is swallowed.
 *
 * The balance-evidence variant reuses the tail of the same shape: it
 * terminates at the same verification-create call with a different type tag
 * and payload.
 *
 * @dependencies
 * - context, fmt, log, strings: Standard Go libraries.
 * - The service's internal domain package and the provider client interfaces
 *   defined below.
 */
package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/wealthloop/aggregator-service/internal/domain"
)

// eventsExchange is the topic exchange internal pipeline events are published to.
const eventsExchange = "aggregation_events"

// RemoteDataFetcher is the read API against the data-aggregation provider.
type RemoteDataFetcher interface {
	GetAccountNumbers(ctx context.Context, accountID string) (*domain.QuilttAccountNumbers, error)
	GetAccount(ctx context.Context, accountID string) (*domain.QuilttAccount, error)
	GetTransactions(ctx context.Context, accountID string) (*domain.TransactionSet, error)
}

// ProviderClient is the capability surface against the banking-connectivity
// provider.
type ProviderClient interface {
	CreateAccount(ctx context.Context, req domain.CreateAccountRequest) (*domain.MethodAccount, error)
	CreateVerification(ctx context.Context, accountID string, req domain.CreateVerificationRequest) (*domain.Verification, error)
	ListAccounts(ctx context.Context) ([]domain.MethodAccount, error)
	UpdateAccount(ctx context.Context, accountID string, req domain.UpdateAccountRequest) (*domain.MethodAccount, error)
}

// EventPublisher publishes internal events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, payload interface{}) error
}

// InvalidAccountTypeError is returned when a provider-supplied account subtype
// is not in the closed {checking, savings} set. There is no fallback subtype:
// downstream ACH routing depends on the exact value.
type InvalidAccountTypeError struct {
	Raw string
}

func (e *InvalidAccountTypeError) Error() string {
	return fmt.Sprintf("invalid account type: %s", e.Raw)
}

// NormalizeAccountType maps a raw provider subtype onto the closed enum,
// case-insensitively. Any other value is a hard failure.
func NormalizeAccountType(raw string) (domain.AccountType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(domain.AccountTypeChecking):
		return domain.AccountTypeChecking, nil
	case string(domain.AccountTypeSavings):
		return domain.AccountTypeSavings, nil
	default:
		return "", &InvalidAccountTypeError{Raw: raw}
	}
}

// SyncService orchestrates the account sync workflow.
type SyncService struct {
	fetcher   RemoteDataFetcher
	provider  ProviderClient
	publisher EventPublisher
}

// NewSyncService creates a new instance of SyncService. The publisher may be
// nil when no broker is configured; post-sync events are then skipped.
func NewSyncService(fetcher RemoteDataFetcher, provider ProviderClient, publisher EventPublisher) *SyncService {
	return &SyncService{
		fetcher:   fetcher,
		provider:  provider,
		publisher: publisher,
	}
}

// SyncAccount runs the full workflow for one external account. The holder id
// is caller-supplied input: the workflow does not resolve holder identity
// itself. On success it returns the created Method account.
func (s *SyncService) SyncAccount(ctx context.Context, holderID, externalAccountID string) (*domain.MethodAccount, error) {
	numbers, err := s.fetcher.GetAccountNumbers(ctx, externalAccountID)
	if err != nil {
		return nil, fmt.Errorf("sync account %s: fetch account numbers: %w", externalAccountID, err)
	}

	info, err := s.fetcher.GetAccount(ctx, externalAccountID)
	if err != nil {
		return nil, fmt.Errorf("sync account %s: fetch account info: %w", externalAccountID, err)
	}

	rawType := ""
	if len(info.Sources) > 0 {
		rawType = info.Sources[0].Type
	}
	accountType, err := NormalizeAccountType(rawType)
	if err != nil {
		return nil, fmt.Errorf("sync account %s: %w", externalAccountID, err)
	}

	transactions, err := s.fetcher.GetTransactions(ctx, externalAccountID)
	if err != nil {
		return nil, fmt.Errorf("sync account %s: fetch transactions: %w", externalAccountID, err)
	}

	created, err := s.provider.CreateAccount(ctx, domain.CreateAccountRequest{
		HolderID: holderID,
		ACH: &domain.ACH{
			Routing: numbers.Routing,
			Number:  numbers.Number,
			Type:    string(accountType),
		},
		Metadata: map[string]string{"quiltt_account_id": externalAccountID},
	})
	if err != nil {
		return nil, fmt.Errorf("sync account %s: create provider account: %w", externalAccountID, err)
	}
	log.Printf("Created Method account %s for holder %s (external account %s)", created.ID, holderID, externalAccountID)

	verification, err := s.provider.CreateVerification(ctx, created.ID, domain.CreateVerificationRequest{
		Type: domain.VerificationTypeAggregator,
		Aggregator: &domain.AggregatorEvidence{
			Account:      *info,
			Transactions: transactions.Transactions,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sync account %s: create verification for %s: %w", externalAccountID, created.ID, err)
	}
	log.Printf("Created verification %s for Method account %s", verification.ID, created.ID)

	s.publishSynced(ctx, domain.AccountSyncedEvent{
		HolderID:          holderID,
		MethodAccountID:   created.ID,
		ExternalAccountID: externalAccountID,
		AccountType:       string(accountType),
		VerificationID:    verification.ID,
	})

	return created, nil
}

// VerifyWithBalance attaches an instant-auth verification carrying a balance
// evidence bundle to an existing Method account.
func (s *SyncService) VerifyWithBalance(ctx context.Context, methodAccountID string, balance domain.BalanceRecord, currencyCode string) error {
	verification, err := s.provider.CreateVerification(ctx, methodAccountID, domain.CreateVerificationRequest{
		Type: domain.VerificationTypeInstant,
		Balance: &domain.BalanceEvidence{
			Current:      balance.Current,
			Available:    balance.Available,
			Limit:        balance.Limit,
			CurrencyCode: currencyCode,
		},
	})
	if err != nil {
		return fmt.Errorf("verify account %s with balance: %w", methodAccountID, err)
	}
	log.Printf("Created balance verification %s for Method account %s", verification.ID, methodAccountID)
	return nil
}

// publishSynced emits the post-sync internal event. Publishing is best-effort:
// a broker failure must not fail a sync that already completed upstream.
func (s *SyncService) publishSynced(ctx context.Context, event domain.AccountSyncedEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, eventsExchange, "account.synced", event); err != nil {
		log.Printf("WARN: Failed to publish account.synced for %s: %v", event.MethodAccountID, err)
	}
}
