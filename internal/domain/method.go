/**
 * @description
 * This file defines the Go structs that map to the Method banking-connectivity
 * API: account creation, verification attachment, and the account resource
 * (with its optional liability and credit-card facets) returned by list calls.
 *
 * @notes
 * - Facets are pointers: an account with no liability has Liability == nil,
 *   and a liability that is not a credit card has CreditCard == nil. The
 *   persistence layer still writes facet rows for these (all-NULL columns).
 */
package domain

import "time"

// AccountType is the closed set of ACH account subtypes Method accepts.
type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
)

// ACH is the routing/account/subtype triple used to create an ACH account.
type ACH struct {
	Routing string `json:"routing"`
	Number  string `json:"number"`
	Type    string `json:"type"`
}

// CreateAccountRequest is the payload for creating an account on Method.
// HolderID is the Method entity that owns the account and must be supplied by
// the caller.
type CreateAccountRequest struct {
	HolderID string            `json:"holder_id"`
	ACH      *ACH              `json:"ach,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// MethodAccount is the account resource as returned by the Method API.
type MethodAccount struct {
	ID                    string            `json:"id"`
	HolderID              string            `json:"holder_id"`
	Status                string            `json:"status"`
	Type                  string            `json:"type"`
	Clearing              *string           `json:"clearing"`
	Capabilities          []string          `json:"capabilities"`
	AvailableCapabilities []string          `json:"available_capabilities"`
	Error                 *string           `json:"error"`
	Metadata              map[string]string `json:"metadata"`
	Liability             *Liability        `json:"liability,omitempty"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
}

// Liability is the liability facet of a Method account.
type Liability struct {
	MchID                  *string     `json:"mch_id"`
	Mask                   *string     `json:"mask"`
	Type                   *string     `json:"type"`
	PaymentStatus          *string     `json:"payment_status"`
	DataStatus             *string     `json:"data_status"`
	DataSyncType           *string     `json:"data_sync_type"`
	DataLastSuccessfulSync *time.Time  `json:"data_last_successful_sync"`
	DataSource             *string     `json:"data_source"`
	DataUpdatedAt          *time.Time  `json:"data_updated_at"`
	Ownership              *string     `json:"ownership"`
	DataStatusError        *string     `json:"data_status_error"`
	Hash                   *string     `json:"hash"`
	CreditCard             *CreditCard `json:"credit_card,omitempty"`
}

// CreditCard is the credit-card facet of a liability, describing balance,
// statement, and auto-pay state.
type CreditCard struct {
	Name                      *string    `json:"name"`
	Balance                   *int64     `json:"balance"`
	OpenedAt                  *time.Time `json:"opened_at"`
	ClosedAt                  *time.Time `json:"closed_at"`
	LastPaymentDate           *time.Time `json:"last_payment_date"`
	LastPaymentAmount         *int64     `json:"last_payment_amount"`
	NextPaymentDueDate        *time.Time `json:"next_payment_due_date"`
	NextPaymentMinimumAmount  *int64     `json:"next_payment_minimum_amount"`
	LastStatementBalance      *int64     `json:"last_statement_balance"`
	RemainingStatementBalance *int64     `json:"remaining_statement_balance"`
	NextStatementDate         *time.Time `json:"next_statement_date"`
	AvailableCredit           *int64     `json:"available_credit"`
	CreditLimit               *int64     `json:"credit_limit"`
	PendingPurchaseAmount     *int64     `json:"pending_purchase_amount"`
	PendingCreditAmount       *int64     `json:"pending_credit_amount"`
	InterestRatePercentage    *float64   `json:"interest_rate_percentage"`
	InterestRateType          *string    `json:"interest_rate_type"`
	InterestRateSource        *string    `json:"interest_rate_source"`
	PastDueStatus             *string    `json:"past_due_status"`
	PastDueBalance            *int64     `json:"past_due_balance"`
	PastDueDate               *time.Time `json:"past_due_date"`
	AutoPayStatus             *string    `json:"auto_pay_status"`
	AutoPayAmount             *int64     `json:"auto_pay_amount"`
	AutoPayDate               *time.Time `json:"auto_pay_date"`
	SubType                   *string    `json:"sub_type"`
	TermLength                *int       `json:"term_length"`
	DelinquentStatus          *string    `json:"delinquent_status"`
	DelinquentAmount          *int64     `json:"delinquent_amount"`
}

// Verification evidence source tags. The tag identifies where the attached
// evidence bundle came from.
const (
	VerificationTypeAggregator = "mx"
	VerificationTypeInstant    = "instant"
)

// AggregatorEvidence bundles the fetched account metadata and transaction
// history attached to an aggregator-sourced verification.
type AggregatorEvidence struct {
	Account      QuilttAccount       `json:"account"`
	Transactions []QuilttTransaction `json:"transactions"`
}

// BalanceEvidence bundles a point-in-time balance attached to an
// instant-auth-sourced verification.
type BalanceEvidence struct {
	Current      float64 `json:"current"`
	Available    float64 `json:"available"`
	Limit        float64 `json:"limit"`
	CurrencyCode string  `json:"currency_code"`
}

// CreateVerificationRequest is the payload for attaching a verification object
// to a Method account. Exactly one evidence field is set, matching Type.
type CreateVerificationRequest struct {
	Type       string              `json:"type"`
	Aggregator *AggregatorEvidence `json:"aggregator,omitempty"`
	Balance    *BalanceEvidence    `json:"balance,omitempty"`
}

// Verification is the verification resource returned by Method.
type Verification struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Status    string    `json:"status"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateAccountRequest carries the mutable account fields Method allows
// updating after creation.
type UpdateAccountRequest struct {
	Metadata map[string]string `json:"metadata,omitempty"`
}
