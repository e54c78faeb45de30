/**
 * @description
 * This file defines the Go structs for the Quiltt webhook contract and for the
 * resources returned by the Quiltt data-aggregation API.
 *
 * @notes
 * - `Event.Record` is kept as raw JSON at the boundary. Each registered handler
 *   decodes it into the record type it expects before doing any work, so a
 *   malformed payload fails at the top of the handler, not mid-workflow.
 */
package domain

import "encoding/json"

// WebhookEnvelope is one inbound Quiltt webhook delivery: an ordered batch of events.
type WebhookEnvelope struct {
	Environment Environment `json:"environment"`
	EventTypes  []string    `json:"eventTypes"`
	Events      []Event     `json:"events"`
}

// Environment carries provider metadata about the Quiltt environment that
// emitted the webhook. It is informational and is not validated against the
// event contents.
type Environment struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Mode     string            `json:"mode"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Event is a single webhook event. Type is dot-namespaced ("<entity>.<verb>",
// e.g. "account.created"); the dispatch table's registration for Type decides
// how Record is interpreted.
type Event struct {
	ID     string          `json:"id"`
	Type   string          `json:"type"`
	Record json.RawMessage `json:"record"`
}

// ProfileRecord is the record payload for profile.* events.
type ProfileRecord struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// ConnectionRecord is the record payload for connection.* events.
type ConnectionRecord struct {
	ID        string `json:"id"`
	ProfileID string `json:"profileId"`
	Status    string `json:"status"`
}

// AccountRecord is the record payload for account.* events.
type AccountRecord struct {
	ID           string `json:"id"`
	ProfileID    string `json:"profileId"`
	ConnectionID string `json:"connectionId,omitempty"`
	Name         string `json:"name,omitempty"`
	Verified     bool   `json:"verified,omitempty"`
}

// BalanceRecord is the record payload for balance.* events.
type BalanceRecord struct {
	ID        string  `json:"id"`
	AccountID string  `json:"accountId"`
	Current   float64 `json:"current"`
	Available float64 `json:"available"`
	Limit     float64 `json:"limit"`
	At        string  `json:"at,omitempty"`
}

// --- Quiltt read API resources ---

// QuilttAccountNumbers is the sensitive ACH numbers pair returned by the
// dedicated numbers endpoint. Quiltt splits these from descriptive metadata.
type QuilttAccountNumbers struct {
	Number  string `json:"number"`
	Routing string `json:"routing"`
}

// AccountSource identifies one upstream source backing a Quiltt account. The
// first source's Type carries the raw, non-normalized account subtype.
type AccountSource struct {
	Type string `json:"type"`
}

// QuilttAccount is the descriptive metadata for an aggregated account.
type QuilttAccount struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Kind         string          `json:"kind,omitempty"`
	CurrencyCode string          `json:"currencyCode,omitempty"`
	Sources      []AccountSource `json:"sources"`
}

// QuilttTransaction is a single provider-shaped transaction.
type QuilttTransaction struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status,omitempty"`
}

// TransactionSet is the transaction history for one account. The fetcher reads
// a single bounded page; see quilttclient for the page limit.
type TransactionSet struct {
	AccountID    string              `json:"accountId"`
	Transactions []QuilttTransaction `json:"transactions"`
}
