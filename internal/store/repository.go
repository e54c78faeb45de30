/**
 * @description
 * This file defines the repository interface for the aggregation pipeline and
 * the sentinel errors the persistence layer surfaces to callers.
 *
 * @notes
 * - The three persisted tables (accounts, liabilities, credit_cards) are owned
 *   exclusively by the reconciliation pass: rows are created on first pass,
 *   refreshed on every subsequent pass, and never deleted here.
 */
package store

import (
	"context"
	"errors"

	"github.com/wealthloop/aggregator-service/internal/domain"
)

var (
	ErrHolderNotFound  = errors.New("holder not found")
	ErrAccountNotFound = errors.New("account not found")
)

// Repository defines the persistence operations used by the pipeline.
type Repository interface {
	// FindHolderByQuilttProfileID resolves the holder record linked to a
	// Quiltt profile, giving the event handlers the Method entity id that the
	// sync workflow needs as caller-supplied input.
	FindHolderByQuilttProfileID(ctx context.Context, profileID string) (*domain.Holder, error)

	// FindAccountIDByExternalID resolves the Method account id previously
	// created for an external (Quiltt) account id, via the metadata link the
	// sync workflow writes at creation time.
	FindAccountIDByExternalID(ctx context.Context, externalAccountID string) (string, error)

	// UpsertAccounts writes one reconciliation snapshot in a single
	// transaction: per account an account row, a liability row, and a
	// credit-card row, in that order. It returns the number of rows written.
	// Any failure rolls the whole batch back.
	UpsertAccounts(ctx context.Context, accounts []domain.MethodAccount) (int, error)
}
