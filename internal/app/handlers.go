/**
 * @description
 * This file defines the webhook event handlers and their registration in the
 * dispatch table. Each handler decodes the event's raw record into the type
 * it expects before doing any work, resolves the inputs the workflows need
 * (e.g. holder identity), bounds the work with a deadline, and returns an
 * explicit error for the dispatcher to aggregate.
 *
 * @dependencies
 * - context, encoding/json, errors, fmt, log, time: Standard Go libraries.
 * - The service's internal packages for domain models, storage, and the sync
 *   workflow.
 */
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/wealthloop/aggregator-service/internal/domain"
	"github.com/wealthloop/aggregator-service/internal/store"
)

// handlerTimeout bounds every handler invocation. External calls inside the
// workflow inherit this deadline.
const handlerTimeout = 45 * time.Second

// EventHandlers groups the webhook event handlers and their dependencies.
type EventHandlers struct {
	sync    *SyncService
	fetcher RemoteDataFetcher
	repo    store.Repository
}

// NewEventHandlers creates a new instance of EventHandlers.
func NewEventHandlers(sync *SyncService, fetcher RemoteDataFetcher, repo store.Repository) *EventHandlers {
	return &EventHandlers{
		sync:    sync,
		fetcher: fetcher,
		repo:    repo,
	}
}

// RegisterAll binds every supported event type to its handler.
func (h *EventHandlers) RegisterAll(d *Dispatcher) {
	d.Register("profile.created", h.HandleProfileCreated)
	d.Register("connection.synced", h.HandleConnectionSynced)
	d.Register("account.created", h.HandleAccountCreated)
	d.Register("balance.created", h.HandleBalanceCreated)
}

// HandleProfileCreated acknowledges a new aggregation profile. Holder linking
// happens during onboarding outside this service, so the handler only checks
// whether the link already exists and logs the outcome.
func (h *EventHandlers) HandleProfileCreated(ctx context.Context, event domain.Event) error {
	var record domain.ProfileRecord
	if err := json.Unmarshal(event.Record, &record); err != nil {
		return fmt.Errorf("profile.created %s: malformed record: %w", event.ID, err)
	}
	if record.ID == "" {
		return fmt.Errorf("profile.created %s: record missing profile id", event.ID)
	}

	ctx, cancel := context.WithTimeout(ctx, handlerTimeout)
	defer cancel()

	if _, err := h.repo.FindHolderByQuilttProfileID(ctx, record.ID); err != nil {
		if errors.Is(err, store.ErrHolderNotFound) {
			log.Printf("Profile %s created with no holder link yet; waiting for onboarding", record.ID)
			return nil
		}
		return fmt.Errorf("profile.created %s: holder lookup: %w", event.ID, err)
	}
	log.Printf("Profile %s created and already linked to a holder", record.ID)
	return nil
}

// HandleConnectionSynced records a connection status transition.
func (h *EventHandlers) HandleConnectionSynced(ctx context.Context, event domain.Event) error {
	var record domain.ConnectionRecord
	if err := json.Unmarshal(event.Record, &record); err != nil {
		return fmt.Errorf("connection.synced %s: malformed record: %w", event.ID, err)
	}
	if record.ID == "" {
		return fmt.Errorf("connection.synced %s: record missing connection id", event.ID)
	}

	log.Printf("Connection %s (profile %s) synced with status %q", record.ID, record.ProfileID, record.Status)
	return nil
}

// HandleAccountCreated runs the account sync workflow for a newly aggregated
// account. The holder is resolved here, from the persisted profile link, and
// passed to the workflow as explicit input.
func (h *EventHandlers) HandleAccountCreated(ctx context.Context, event domain.Event) error {
	var record domain.AccountRecord
	if err := json.Unmarshal(event.Record, &record); err != nil {
		return fmt.Errorf("account.created %s: malformed record: %w", event.ID, err)
	}
	if record.ID == "" || record.ProfileID == "" {
		return fmt.Errorf("account.created %s: record missing account or profile id", event.ID)
	}

	ctx, cancel := context.WithTimeout(ctx, handlerTimeout)
	defer cancel()

	holder, err := h.repo.FindHolderByQuilttProfileID(ctx, record.ProfileID)
	if err != nil {
		return fmt.Errorf("account.created %s: resolve holder for profile %s: %w", event.ID, record.ProfileID, err)
	}

	if _, err := h.sync.SyncAccount(ctx, holder.MethodEntityID, record.ID); err != nil {
		return fmt.Errorf("account.created %s: %w", event.ID, err)
	}
	return nil
}

// HandleBalanceCreated attaches a balance-evidence verification to the Method
// account previously created for the balance's external account.
func (h *EventHandlers) HandleBalanceCreated(ctx context.Context, event domain.Event) error {
	var record domain.BalanceRecord
	if err := json.Unmarshal(event.Record, &record); err != nil {
		return fmt.Errorf("balance.created %s: malformed record: %w", event.ID, err)
	}
	if record.AccountID == "" {
		return fmt.Errorf("balance.created %s: record missing account id", event.ID)
	}

	ctx, cancel := context.WithTimeout(ctx, handlerTimeout)
	defer cancel()

	methodAccountID, err := h.repo.FindAccountIDByExternalID(ctx, record.AccountID)
	if err != nil {
		return fmt.Errorf("balance.created %s: resolve account %s: %w", event.ID, record.AccountID, err)
	}

	currencyCode := ""
	if info, err := h.fetcher.GetAccount(ctx, record.AccountID); err == nil {
		currencyCode = info.CurrencyCode
	} else {
		log.Printf("WARN: Could not fetch currency for account %s: %v", record.AccountID, err)
	}

	if err := h.sync.VerifyWithBalance(ctx, methodAccountID, record, currencyCode); err != nil {
		return fmt.Errorf("balance.created %s: %w", event.ID, err)
	}
	return nil
}
