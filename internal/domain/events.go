/**
 * @description
 * This file defines the domain models for internal events published by the
 * aggregation pipeline. These structs are the contract for messages sent to
 * the message broker (RabbitMQ) for downstream consumers such as the
 * notification service.
 */
package domain

import "time"

// AccountSyncedEvent is published after the sync workflow has created a Method
// account and attached its verification.
type AccountSyncedEvent struct {
	HolderID          string `json:"holder_id"`
	MethodAccountID   string `json:"method_account_id"`
	ExternalAccountID string `json:"external_account_id"`
	AccountType       string `json:"account_type"`
	VerificationID    string `json:"verification_id"`
}

// AccountsReconciledEvent is published after a successful bulk reconciliation
// run.
type AccountsReconciledEvent struct {
	AccountsListed int       `json:"accounts_listed"`
	RowsWritten    int       `json:"rows_written"`
	CompletedAt    time.Time `json:"completed_at"`
}
