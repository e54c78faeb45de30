/**
 * @description
 * This file sets up the HTTP router for the aggregator-service using the `chi`
 * routing library. It defines all the API routes and applies necessary middleware.
 *
 * @dependencies
 * - github.com/go-chi/chi/v5: The routing library.
 * - github.com/go-chi/cors: CORS middleware.
 * - The service's internal packages for handlers and middleware.
 */
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/wealthloop/aggregator-service/internal/app"
	"github.com/wealthloop/aggregator-service/internal/config"
	"github.com/wealthloop/aggregator-service/pkg/middleware"
)

// NewRouter creates and configures a new HTTP router.
func NewRouter(cfg *config.Config, dispatcher *app.Dispatcher, reconciler *app.ReconcileService) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Quiltt-Signature"},
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	webhookHandler := NewWebhookHandler(dispatcher, cfg.QuilttWebhookSecret)
	r.Post("/webhooks/quiltt", webhookHandler.ServeHTTP)

	// Operator routes require authentication
	reconcileHandler := NewReconcileHandler(reconciler)
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg))
		r.Post("/reconcile", reconcileHandler.Reconcile)
	})

	return r
}
