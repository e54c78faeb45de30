/**
 * @description
 * This file implements the data access layer for the reconciliation pass and
 * the holder lookup. It provides the PostgreSQL implementation of the
 * `Repository` interface.
 *
 * Key features:
 * - Three-table upsert (accounts, liabilities, credit_cards) keyed by the
 *   provider-assigned account id, executed inside one transaction per
 *   reconciliation run.
 * - Insert-or-update semantics: identity columns are never rewritten on
 *   conflict, mutable state and timestamps are.
 * - Facet upserts always execute. An account without a liability (or a
 *   liability without a credit-card facet) still gets its row, with NULL
 *   facet columns.
 *
 * @dependencies
 * - context, encoding/json, errors: Standard Go libraries.
 * - github.com/jackc/pgx/v5/pgxpool: The PostgreSQL driver.
 * - The service's internal domain package for the Method account model.
 */
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wealthloop/aggregator-service/internal/domain"
)

// PostgresRepository is the PostgreSQL implementation of the Repository.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindHolderByQuilttProfileID retrieves the holder linked to a Quiltt profile.
func (r *PostgresRepository) FindHolderByQuilttProfileID(ctx context.Context, profileID string) (*domain.Holder, error) {
	query := `
        SELECT id, quiltt_profile_id, method_entity_id, created_at, updated_at
        FROM holders
        WHERE quiltt_profile_id = $1
    `
	var holder domain.Holder
	err := r.db.QueryRow(ctx, query, profileID).Scan(
		&holder.ID,
		&holder.QuilttProfileID,
		&holder.MethodEntityID,
		&holder.CreatedAt,
		&holder.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrHolderNotFound
		}
		log.Printf("Error finding holder by quiltt_profile_id: %v", err)
		return nil, err
	}
	return &holder, nil
}

// FindAccountIDByExternalID resolves the Method account id linked to an
// external Quiltt account id through the metadata written at creation time.
func (r *PostgresRepository) FindAccountIDByExternalID(ctx context.Context, externalAccountID string) (string, error) {
	query := `SELECT id FROM accounts WHERE metadata->>'quiltt_account_id' = $1`
	var accountID string
	err := r.db.QueryRow(ctx, query, externalAccountID).Scan(&accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrAccountNotFound
		}
		log.Printf("Error finding account by external id: %v", err)
		return "", err
	}
	return accountID, nil
}

const upsertAccountSQL = `
    INSERT INTO accounts (
        id, holder_id, status, type, clearing, capabilities,
        available_capabilities, error, metadata, created_at, updated_at
    )
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
    ON CONFLICT (id) DO UPDATE SET
        status                 = EXCLUDED.status,
        type                   = EXCLUDED.type,
        clearing               = EXCLUDED.clearing,
        capabilities           = EXCLUDED.capabilities,
        available_capabilities = EXCLUDED.available_capabilities,
        error                  = EXCLUDED.error,
        metadata               = EXCLUDED.metadata,
        updated_at             = now()
`

const upsertLiabilitySQL = `
    INSERT INTO liabilities (
        account_id, mch_id, mask, type, payment_status, data_status,
        data_sync_type, data_last_successful_sync, data_source,
        data_updated_at, ownership, data_status_error, hash, updated_at
    )
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now())
    ON CONFLICT (account_id) DO UPDATE SET
        mch_id                    = EXCLUDED.mch_id,
        mask                      = EXCLUDED.mask,
        type                      = EXCLUDED.type,
        payment_status            = EXCLUDED.payment_status,
        data_status               = EXCLUDED.data_status,
        data_sync_type            = EXCLUDED.data_sync_type,
        data_last_successful_sync = EXCLUDED.data_last_successful_sync,
        data_source               = EXCLUDED.data_source,
        data_updated_at           = EXCLUDED.data_updated_at,
        ownership                 = EXCLUDED.ownership,
        data_status_error         = EXCLUDED.data_status_error,
        hash                      = EXCLUDED.hash,
        updated_at                = now()
`

const upsertCreditCardSQL = `
    INSERT INTO credit_cards (
        account_id, name, balance, opened_at, closed_at, last_payment_date,
        last_payment_amount, next_payment_due_date, next_payment_minimum_amount,
        last_statement_balance, remaining_statement_balance, next_statement_date,
        available_credit, credit_limit, pending_purchase_amount,
        pending_credit_amount, interest_rate_percentage, interest_rate_type,
        interest_rate_source, past_due_status, past_due_balance, past_due_date,
        auto_pay_status, auto_pay_amount, auto_pay_date, sub_type, term_length,
        delinquent_status, delinquent_amount, updated_at
    )
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
            $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28,
            $29, now())
    ON CONFLICT (account_id) DO UPDATE SET
        name                        = EXCLUDED.name,
        balance                     = EXCLUDED.balance,
        opened_at                   = EXCLUDED.opened_at,
        closed_at                   = EXCLUDED.closed_at,
        last_payment_date           = EXCLUDED.last_payment_date,
        last_payment_amount         = EXCLUDED.last_payment_amount,
        next_payment_due_date       = EXCLUDED.next_payment_due_date,
        next_payment_minimum_amount = EXCLUDED.next_payment_minimum_amount,
        last_statement_balance      = EXCLUDED.last_statement_balance,
        remaining_statement_balance = EXCLUDED.remaining_statement_balance,
        next_statement_date         = EXCLUDED.next_statement_date,
        available_credit            = EXCLUDED.available_credit,
        credit_limit                = EXCLUDED.credit_limit,
        pending_purchase_amount     = EXCLUDED.pending_purchase_amount,
        pending_credit_amount       = EXCLUDED.pending_credit_amount,
        interest_rate_percentage    = EXCLUDED.interest_rate_percentage,
        interest_rate_type          = EXCLUDED.interest_rate_type,
        interest_rate_source        = EXCLUDED.interest_rate_source,
        past_due_status             = EXCLUDED.past_due_status,
        past_due_balance            = EXCLUDED.past_due_balance,
        past_due_date               = EXCLUDED.past_due_date,
        auto_pay_status             = EXCLUDED.auto_pay_status,
        auto_pay_amount             = EXCLUDED.auto_pay_amount,
        auto_pay_date               = EXCLUDED.auto_pay_date,
        sub_type                    = EXCLUDED.sub_type,
        term_length                 = EXCLUDED.term_length,
        delinquent_status           = EXCLUDED.delinquent_status,
        delinquent_amount           = EXCLUDED.delinquent_amount,
        updated_at                  = now()
`

// UpsertAccounts writes one reconciliation snapshot inside a single
// transaction and returns the number of rows written. On any failure the
// whole batch is rolled back and no partial state is committed.
func (r *PostgresRepository) UpsertAccounts(ctx context.Context, accounts []domain.MethodAccount) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin reconciliation transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows := 0
	for _, account := range accounts {
		accountArgs, err := accountUpsertArgs(account)
		if err != nil {
			return 0, fmt.Errorf("account %s: %w", account.ID, err)
		}
		if _, err := tx.Exec(ctx, upsertAccountSQL, accountArgs...); err != nil {
			log.Printf("Error upserting account %s: %v", account.ID, err)
			return 0, fmt.Errorf("account %s: %w", account.ID, err)
		}
		rows++

		if _, err := tx.Exec(ctx, upsertLiabilitySQL, liabilityUpsertArgs(account)...); err != nil {
			log.Printf("Error upserting liability for account %s: %v", account.ID, err)
			return 0, fmt.Errorf("liability for account %s: %w", account.ID, err)
		}
		rows++

		if _, err := tx.Exec(ctx, upsertCreditCardSQL, creditCardUpsertArgs(account)...); err != nil {
			log.Printf("Error upserting credit card for account %s: %v", account.ID, err)
			return 0, fmt.Errorf("credit card for account %s: %w", account.ID, err)
		}
		rows++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit reconciliation transaction: %w", err)
	}
	return rows, nil
}

// accountUpsertArgs builds the positional parameters for the account upsert.
func accountUpsertArgs(account domain.MethodAccount) ([]interface{}, error) {
	metadata, err := json.Marshal(account.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal account metadata: %w", err)
	}
	return []interface{}{
		account.ID,
		account.HolderID,
		account.Status,
		account.Type,
		account.Clearing,
		account.Capabilities,
		account.AvailableCapabilities,
		account.Error,
		metadata,
		account.CreatedAt,
	}, nil
}

// liabilityUpsertArgs builds the positional parameters for the liability
// upsert. When the account carries no liability facet every facet column is
// NULL; the row is still written.
func liabilityUpsertArgs(account domain.MethodAccount) []interface{} {
	args := make([]interface{}, 13)
	args[0] = account.ID
	liability := account.Liability
	if liability == nil {
		return args
	}

	args[1] = liability.MchID
	args[2] = liability.Mask
	args[3] = liability.Type
	args[4] = liability.PaymentStatus
	args[5] = liability.DataStatus
	args[6] = liability.DataSyncType
	args[7] = liability.DataLastSuccessfulSync
	args[8] = liability.DataSource
	args[9] = liability.DataUpdatedAt
	args[10] = liability.Ownership
	args[11] = liability.DataStatusError
	args[12] = liability.Hash
	return args
}

// creditCardUpsertArgs builds the positional parameters for the credit-card
// upsert. As with liabilities, the row is always written; absent facets yield
// NULL columns.
func creditCardUpsertArgs(account domain.MethodAccount) []interface{} {
	args := make([]interface{}, 29)
	args[0] = account.ID
	if account.Liability == nil || account.Liability.CreditCard == nil {
		return args
	}

	card := account.Liability.CreditCard
	args[1] = card.Name
	args[2] = card.Balance
	args[3] = card.OpenedAt
	args[4] = card.ClosedAt
	args[5] = card.LastPaymentDate
	args[6] = card.LastPaymentAmount
	args[7] = card.NextPaymentDueDate
	args[8] = card.NextPaymentMinimumAmount
	args[9] = card.LastStatementBalance
	args[10] = card.RemainingStatementBalance
	args[11] = card.NextStatementDate
	args[12] = card.AvailableCredit
	args[13] = card.CreditLimit
	args[14] = card.PendingPurchaseAmount
	args[15] = card.PendingCreditAmount
	args[16] = card.InterestRatePercentage
	args[17] = card.InterestRateType
	args[18] = card.InterestRateSource
	args[19] = card.PastDueStatus
	args[20] = card.PastDueBalance
	args[21] = card.PastDueDate
	args[22] = card.AutoPayStatus
	args[23] = card.AutoPayAmount
	args[24] = card.AutoPayDate
	args[25] = card.SubType
	args[26] = card.TermLength
	args[27] = card.DelinquentStatus
	args[28] = card.DelinquentAmount
	return args
}
