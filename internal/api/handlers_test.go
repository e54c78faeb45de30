package api

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wealthloop/aggregator-service/internal/app"
	"github.com/wealthloop/aggregator-service/internal/domain"
)

func noopDispatcher() *app.Dispatcher {
	dispatcher := app.NewDispatcher()
	dispatcher.Register("account.created", func(ctx context.Context, event domain.Event) error {
		return nil
	})
	return dispatcher
}

func envelopeBody(t *testing.T, events ...domain.Event) []byte {
	t.Helper()
	body, err := json.Marshal(domain.WebhookEnvelope{
		Environment: domain.Environment{ID: "env_1", Mode: "sandbox"},
		Events:      events,
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return body
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestWebhookHandlerAcknowledgesProcessedEnvelope(t *testing.T) {
	handler := NewWebhookHandler(noopDispatcher(), "")

	body := envelopeBody(t, domain.Event{ID: "evt_1", Type: "account.created", Record: json.RawMessage(`{}`)})
	req := httptest.NewRequest(http.MethodPost, "/webhooks/quiltt", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var resp webhookResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "webhook received" {
		t.Fatalf("expected acknowledgement message, got %q", resp.Message)
	}
	if resp.Error != "" {
		t.Fatalf("expected no error detail on success, got %q", resp.Error)
	}
}

func TestWebhookHandlerUnknownEventTypeReturns500(t *testing.T) {
	handler := NewWebhookHandler(noopDispatcher(), "")

	body := envelopeBody(t, domain.Event{ID: "evt_1", Type: "account.mystery", Record: json.RawMessage(`{}`)})
	req := httptest.NewRequest(http.MethodPost, "/webhooks/quiltt", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for an unregistered event type, got %d", rec.Code)
	}
	var resp webhookResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "webhook processing failed" {
		t.Fatalf("expected failure message, got %q", resp.Message)
	}
	if !strings.Contains(resp.Error, "account.mystery") {
		t.Fatalf("expected the offending type in the error detail, got %q", resp.Error)
	}
}

func TestWebhookHandlerHandlerFailureReturns500WithDetail(t *testing.T) {
	dispatcher := app.NewDispatcher()
	dispatcher.Register("account.created", func(ctx context.Context, event domain.Event) error {
		return errors.New("provider unavailable")
	})
	handler := NewWebhookHandler(dispatcher, "")

	body := envelopeBody(t, domain.Event{ID: "evt_1", Type: "account.created", Record: json.RawMessage(`{}`)})
	req := httptest.NewRequest(http.MethodPost, "/webhooks/quiltt", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for a failed handler, got %d", rec.Code)
	}
	var resp webhookResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(resp.Error, "evt_1") || !strings.Contains(resp.Error, "provider unavailable") {
		t.Fatalf("expected the failed event and cause in the error detail, got %q", resp.Error)
	}
}

func TestWebhookHandlerInvalidJSONReturns400(t *testing.T) {
	handler := NewWebhookHandler(noopDispatcher(), "")

	req := httptest.NewRequest(http.MethodPost, "/webhooks/quiltt", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a malformed payload, got %d", rec.Code)
	}
}

func TestWebhookHandlerSignatureValidation(t *testing.T) {
	const secret = "whsec_test"
	body := []byte(`{"events":[]}`)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	digest := mac.Sum(nil)

	tests := []struct {
		name       string
		signature  string
		wantStatus int
	}{
		{name: "valid base64 signature", signature: base64.StdEncoding.EncodeToString(digest), wantStatus: http.StatusOK},
		{name: "valid hex signature", signature: hex.EncodeToString(digest), wantStatus: http.StatusOK},
		{name: "wrong signature", signature: sign("other_secret", body), wantStatus: http.StatusUnauthorized},
		{name: "missing signature", signature: "", wantStatus: http.StatusUnauthorized},
		{name: "garbage signature", signature: "not-a-digest", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewWebhookHandler(noopDispatcher(), secret)

			req := httptest.NewRequest(http.MethodPost, "/webhooks/quiltt", bytes.NewReader(body))
			if tt.signature != "" {
				req.Header.Set("Quiltt-Signature", tt.signature)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d (%s)", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestWebhookHandlerSkipsValidationWithoutSecret(t *testing.T) {
	handler := NewWebhookHandler(noopDispatcher(), "")

	body := envelopeBody(t)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/quiltt", bytes.NewReader(body))
	req.Header.Set("Quiltt-Signature", "whatever")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 when no secret is configured, got %d", rec.Code)
	}
}
