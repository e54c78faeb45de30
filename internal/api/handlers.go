/**
 * @description
 * This file contains the HTTP handlers at the top of the stack: the webhook
 * ingress for Quiltt deliveries and the operator endpoint that triggers a
 * reconciliation run on demand.
 *
 * Key features:
 * - Security: validates the HMAC-SHA256 signature of incoming webhooks.
 * - Parsing: decodes the JSON payload into the envelope model.
 * - Dispatch: hands the envelope to the dispatch table and maps the
 *   aggregated per-event outcomes to response codes: 200 on full success,
 *   500 with the failure detail otherwise.
 *
 * @dependencies
 * - crypto/hmac, crypto/sha256, encoding/base64, encoding/hex: Signature validation.
 * - encoding/json, net/http: Standard HTTP plumbing.
 * - github.com/google/uuid: Request ids for log correlation.
 * - The service's internal app package for the dispatcher and reconciliation job.
 */
package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wealthloop/aggregator-service/internal/app"
	"github.com/wealthloop/aggregator-service/internal/domain"
)

// webhookResponse is the JSON body returned by the webhook endpoint.
type webhookResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// WebhookHandler processes incoming webhooks from Quiltt.
type WebhookHandler struct {
	dispatcher *app.Dispatcher
	secret     string
}

// NewWebhookHandler creates a new handler for the webhook endpoint.
func NewWebhookHandler(dispatcher *app.Dispatcher, secret string) *WebhookHandler {
	return &WebhookHandler{
		dispatcher: dispatcher,
		secret:     secret,
	}
}

// ServeHTTP implements the http.Handler interface.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	requestID := r.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}

	log.Printf("[%s] Webhook request started from %s", requestID, r.RemoteAddr)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("[%s] Error reading webhook body: %v", requestID, err)
		writeJSON(w, http.StatusBadRequest, webhookResponse{Message: "cannot read request body"})
		return
	}

	if !h.isValidSignature(r.Header.Get("Quiltt-Signature"), body) {
		log.Printf("[%s] Error: Invalid webhook signature", requestID)
		writeJSON(w, http.StatusUnauthorized, webhookResponse{Message: "invalid signature"})
		return
	}

	var envelope domain.WebhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		log.Printf("[%s] Error decoding webhook JSON: %v", requestID, err)
		writeJSON(w, http.StatusBadRequest, webhookResponse{Message: "invalid JSON payload"})
		return
	}

	log.Printf("[%s] Received envelope from environment %q with %d events (%s)",
		requestID, envelope.Environment.ID, len(envelope.Events), strings.Join(envelope.EventTypes, ","))

	results, err := h.dispatcher.Dispatch(r.Context(), envelope)
	if err != nil {
		log.Printf("[%s] Dispatch aborted: %v", requestID, err)
		writeJSON(w, http.StatusInternalServerError, webhookResponse{
			Message: "webhook processing failed",
			Error:   err.Error(),
		})
		return
	}

	var failures []string
	for _, result := range results {
		if result.Err != nil {
			failures = append(failures, fmt.Sprintf("%s (%s): %v", result.EventID, result.EventType, result.Err))
		}
	}
	if len(failures) > 0 {
		log.Printf("[%s] %d of %d events failed", requestID, len(failures), len(results))
		writeJSON(w, http.StatusInternalServerError, webhookResponse{
			Message: "webhook processing failed",
			Error:   strings.Join(failures, "; "),
		})
		return
	}

	log.Printf("[%s] Webhook processed successfully in %v", requestID, time.Since(startTime))
	writeJSON(w, http.StatusOK, webhookResponse{Message: "webhook received"})
}

// isValidSignature validates the HMAC-SHA256 signature of the webhook body.
// Both base64 and hex encodings of the digest are accepted.
func (h *WebhookHandler) isValidSignature(signatureHeader string, body []byte) bool {
	if h.secret == "" {
		log.Println("Warning: QUILTT_WEBHOOK_SECRET is not set. Skipping signature validation.")
		return true
	}

	header := strings.TrimSpace(signatureHeader)
	if header == "" {
		log.Println("Missing Quiltt-Signature header")
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := mac.Sum(nil)

	if decoded, err := base64.StdEncoding.DecodeString(header); err == nil && hmac.Equal(decoded, expected) {
		return true
	}
	if decoded, err := hex.DecodeString(header); err == nil && hmac.Equal(decoded, expected) {
		return true
	}

	log.Printf("Signature mismatch. Provided header: %s", header)
	return false
}

// ReconcileHandler exposes the reconciliation job to operators.
type ReconcileHandler struct {
	reconciler *app.ReconcileService
}

// NewReconcileHandler creates a new handler for the reconcile endpoint.
func NewReconcileHandler(reconciler *app.ReconcileService) *ReconcileHandler {
	return &ReconcileHandler{reconciler: reconciler}
}

// Reconcile triggers a full reconciliation run and reports its result.
func (h *ReconcileHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	result, err := h.reconciler.Reconcile(r.Context())
	if err != nil {
		log.Printf("Manual reconciliation failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, webhookResponse{
			Message: "reconciliation failed",
			Error:   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Message        string `json:"message"`
		AccountsListed int    `json:"accounts_listed"`
		RowsWritten    int    `json:"rows_written"`
	}{
		Message:        "reconciliation complete",
		AccountsListed: result.AccountsListed,
		RowsWritten:    result.RowsWritten,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error writing JSON response: %v", err)
	}
}
