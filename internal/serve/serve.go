// Package serve is the HTTP surface spec.md §1 describes as an external
// collaborator (quote issuance, status reads) and SPEC_FULL.md §6 adds
// as a concrete, runnable implementation of that contract: quote
// issuance, transaction creation/status, and inbound provider webhooks.
// It never touches the onramp/offramp engine loops directly; webhooks
// call into onramp.Engine.HandlePaymentConfirmed synchronously, the
// same call the scheduler-driven poll path would eventually make.
package serve

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stellar/go/support/http"
	"github.com/stellar/go/support/log"

	"github.com/bitstarkbridge/aframp-backend/db"
	"github.com/bitstarkbridge/aframp-backend/internal/crashtracker"
	"github.com/bitstarkbridge/aframp-backend/internal/serve/httperror"
	"github.com/bitstarkbridge/aframp-backend/internal/serve/httphandler"
	"github.com/bitstarkbridge/aframp-backend/internal/serve/middleware"
	"github.com/bitstarkbridge/aframp-backend/internal/store"
	"github.com/bitstarkbridge/aframp-backend/internal/webhook"
)

// HTTPServerInterface lets tests substitute a fake listener for
// supporthttp.Run, the same seam the teacher's ServeOptions uses.
type HTTPServerInterface interface {
	Run(conf http.Config)
}

type HTTPServer struct{}

func (HTTPServer) Run(conf http.Config) {
	http.Run(conf)
}

type ServeOptions struct {
	Environment         string
	GitCommit           string
	Version             string
	Port                int
	CorsAllowedOrigins  []string
	DBConnectionPool    db.DBConnectionPool
	QuoteCacheSize      int
	CrashTrackerClient  crashtracker.CrashTrackerClient
	WebhookIngester     *webhook.Ingester
}

// Serve builds the router and blocks serving HTTP until shutdown.
func Serve(opts ServeOptions, httpServer HTTPServerInterface) error {
	defer opts.CrashTrackerClient.FlushEvents(2 * time.Second)
	defer opts.CrashTrackerClient.Recover()
	httperror.SetDefaultReportErrorFunc(opts.CrashTrackerClient.LogAndReportErrors)

	listenAddr := fmt.Sprintf(":%d", opts.Port)
	serverConfig := http.Config{
		ListenAddr:          listenAddr,
		Handler:             handleHTTP(opts),
		TCPKeepAlive:        3 * time.Minute,
		ShutdownGracePeriod: 50 * time.Second,
		ReadTimeout:         5 * time.Second,
		WriteTimeout:        35 * time.Second,
		IdleTimeout:         2 * time.Minute,
		OnStarting: func() {
			log.Info("Starting aframp-backend API server")
			log.Infof("Listening on %s", listenAddr)
		},
		OnStopping: func() {
			log.Info("Closing aframp-backend database connection pool")
			if err := db.CloseConnectionPoolIfNeeded(context.Background(), opts.DBConnectionPool); err != nil {
				log.Errorf("error closing database connection: %v", err)
			}
			log.Info("Stopping aframp-backend API server")
		},
	}

	httpServer.Run(serverConfig)
	return nil
}

func handleHTTP(o ServeOptions) *chi.Mux {
	quotes := store.NewQuoteCache(o.QuoteCacheSize, store.DefaultQuoteTTL)
	transactions := store.NewTransactionRepository(o.DBConnectionPool)

	mux := chi.NewMux()
	mux.Use(middleware.CorsMiddleware(o.CorsAllowedOrigins))
	mux.Use(chimiddleware.RequestID)
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.RecoverHandler)
	mux.Use(chimiddleware.CleanPath)

	mux.Get("/health", httphandler.HealthHandler{Version: o.Version, ServiceID: "aframp-backend"}.ServeHTTP)

	mux.Route("/onramp", func(r chi.Router) {
		r.Post("/quote", httphandler.QuoteHandler{Quotes: quotes}.ServeHTTP)

		txHandler := httphandler.TransactionHandler{Quotes: quotes, Transactions: transactions}
		r.Post("/transactions", txHandler.PostTransaction)
	})

	mux.Route("/transactions", func(r chi.Router) {
		txHandler := httphandler.TransactionHandler{Quotes: quotes, Transactions: transactions}
		r.Get("/{id}", txHandler.GetTransaction)
	})

	mux.Route("/webhooks", func(r chi.Router) {
		r.Post("/{provider}", httphandler.WebhookHandler{Ingester: o.WebhookIngester}.ServeHTTP)
	})

	return mux
}
