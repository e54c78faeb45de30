package quilttclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGetAccountNumbers(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"number":"12345678","routing":"021000021"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test")
	numbers, err := client.GetAccountNumbers(context.Background(), "qacc_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/accounts/qacc_1/ach" {
		t.Fatalf("expected the dedicated numbers endpoint, got %q", gotPath)
	}
	if gotAuth != "Bearer sk_test" {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	if numbers.Number != "12345678" || numbers.Routing != "021000021" {
		t.Fatalf("unexpected numbers: %+v", numbers)
	}
}

func TestGetAccountNumbersMissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing account number", body: `{"data":{"number":"","routing":"021000021"}}`},
		{name: "missing routing number", body: `{"data":{"number":"12345678","routing":""}}`},
		{name: "empty payload", body: `{"data":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, "sk_test")
			_, err := client.GetAccountNumbers(context.Background(), "qacc_1")
			if !errors.Is(err, ErrAccountNumbersMissing) {
				t.Fatalf("expected ErrAccountNumbersMissing, got %v", err)
			}
		})
	}
}

func TestGetAccount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/accounts/qacc_1" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"data":{"id":"qacc_1","name":"Everyday Checking","currencyCode":"USD","sources":[{"type":"CHECKING"}]}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test")
	account, err := client.GetAccount(context.Background(), "qacc_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if account.Name != "Everyday Checking" || account.CurrencyCode != "USD" {
		t.Fatalf("unexpected account: %+v", account)
	}
	if len(account.Sources) != 1 || account.Sources[0].Type != "CHECKING" {
		t.Fatalf("expected the raw subtype in the first source, got %+v", account.Sources)
	}
}

func TestGetTransactionsRequestsBoundedPage(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"data":[{"id":"txn_1","amount":-42.5,"description":"Coffee"},{"id":"txn_2","amount":1200,"description":"Payroll"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test")
	set, err := client.GetTransactions(context.Background(), "qacc_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotQuery != "limit=500" {
		t.Fatalf("expected an explicit page bound, got query %q", gotQuery)
	}
	if set.AccountID != "qacc_1" {
		t.Fatalf("expected the requested account id on the set, got %q", set.AccountID)
	}
	if len(set.Transactions) != 2 || set.Transactions[0].ID != "txn_1" {
		t.Fatalf("unexpected transactions: %+v", set.Transactions)
	}
}

func TestNonSuccessStatusPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test")
	_, err := client.GetAccount(context.Background(), "qacc_missing")
	if err == nil {
		t.Fatal("expected an error for a non-2xx response")
	}
	if !strings.Contains(err.Error(), "status 404") {
		t.Fatalf("expected the status code in the error, got %v", err)
	}
}
