package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/wealthloop/aggregator-service/internal/domain"
)

func strPtr(s string) *string        { return &s }
func int64Ptr(n int64) *int64        { return &n }
func timePtr(t time.Time) *time.Time { return &t }

func TestAccountUpsertArgsMarshalsMetadata(t *testing.T) {
	account := domain.MethodAccount{
		ID:       "acc_1",
		HolderID: "ent_1",
		Status:   "active",
		Type:     "ach",
		Metadata: map[string]string{"quiltt_account_id": "qacc_1"},
	}

	args, err := accountUpsertArgs(account)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(args) != 10 {
		t.Fatalf("expected 10 positional parameters, got %d", len(args))
	}
	if args[0] != "acc_1" || args[1] != "ent_1" {
		t.Fatalf("expected identity columns first, got %v and %v", args[0], args[1])
	}

	raw, ok := args[8].([]byte)
	if !ok {
		t.Fatalf("expected metadata as JSON bytes, got %T", args[8])
	}
	var metadata map[string]string
	if err := json.Unmarshal(raw, &metadata); err != nil {
		t.Fatalf("metadata is not valid JSON: %v", err)
	}
	if metadata["quiltt_account_id"] != "qacc_1" {
		t.Fatalf("expected the external account id in metadata, got %v", metadata)
	}
}

func TestLiabilityUpsertArgsWithoutFacetYieldsNullColumns(t *testing.T) {
	account := domain.MethodAccount{ID: "acc_1"}

	args := liabilityUpsertArgs(account)
	if len(args) != 13 {
		t.Fatalf("expected 13 positional parameters, got %d", len(args))
	}
	if args[0] != "acc_1" {
		t.Fatalf("expected the account id as the row key, got %v", args[0])
	}
	// The row is still written for facet-less accounts; every facet column
	// must be NULL.
	for i := 1; i < len(args); i++ {
		if args[i] != nil {
			t.Fatalf("expected NULL at position %d, got %v", i, args[i])
		}
	}
}

func TestLiabilityUpsertArgsWithFacet(t *testing.T) {
	account := domain.MethodAccount{
		ID: "acc_1",
		Liability: &domain.Liability{
			MchID:         strPtr("mch_42"),
			Mask:          strPtr("1234"),
			Type:          strPtr("credit_card"),
			PaymentStatus: strPtr("active"),
			Hash:          strPtr("abc123"),
		},
	}

	args := liabilityUpsertArgs(account)
	if args[0] != "acc_1" {
		t.Fatalf("expected the account id as the row key, got %v", args[0])
	}
	if got := args[1].(*string); got == nil || *got != "mch_42" {
		t.Fatalf("expected mch_id mch_42, got %v", args[1])
	}
	if got := args[3].(*string); got == nil || *got != "credit_card" {
		t.Fatalf("expected type credit_card, got %v", args[3])
	}
	if got := args[12].(*string); got == nil || *got != "abc123" {
		t.Fatalf("expected hash abc123, got %v", args[12])
	}
}

func TestCreditCardUpsertArgsWithoutFacetYieldsNullColumns(t *testing.T) {
	tests := []struct {
		name    string
		account domain.MethodAccount
	}{
		{name: "no liability", account: domain.MethodAccount{ID: "acc_1"}},
		{name: "liability without card", account: domain.MethodAccount{
			ID:        "acc_1",
			Liability: &domain.Liability{Type: strPtr("mortgage")},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := creditCardUpsertArgs(tt.account)
			if len(args) != 29 {
				t.Fatalf("expected 29 positional parameters, got %d", len(args))
			}
			if args[0] != "acc_1" {
				t.Fatalf("expected the account id as the row key, got %v", args[0])
			}
			for i := 1; i < len(args); i++ {
				if args[i] != nil {
					t.Fatalf("expected NULL at position %d, got %v", i, args[i])
				}
			}
		})
	}
}

func TestCreditCardUpsertArgsWithFacet(t *testing.T) {
	opened := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	account := domain.MethodAccount{
		ID: "acc_1",
		Liability: &domain.Liability{
			Type: strPtr("credit_card"),
			CreditCard: &domain.CreditCard{
				Name:            strPtr("Platinum Card"),
				Balance:         int64Ptr(152340),
				OpenedAt:        timePtr(opened),
				CreditLimit:     int64Ptr(1000000),
				AvailableCredit: int64Ptr(847660),
			},
		},
	}

	args := creditCardUpsertArgs(account)
	if args[0] != "acc_1" {
		t.Fatalf("expected the account id as the row key, got %v", args[0])
	}
	if got := args[1].(*string); got == nil || *got != "Platinum Card" {
		t.Fatalf("expected card name, got %v", args[1])
	}
	if got := args[2].(*int64); got == nil || *got != 152340 {
		t.Fatalf("expected balance 152340, got %v", args[2])
	}
	if got := args[3].(*time.Time); got == nil || !got.Equal(opened) {
		t.Fatalf("expected opened_at %v, got %v", opened, args[3])
	}
	if got := args[13].(*int64); got == nil || *got != 1000000 {
		t.Fatalf("expected credit_limit 1000000, got %v", args[13])
	}
}
