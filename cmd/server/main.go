/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the shop back-office server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags and environment
  2. Initialize SQLite store (auto-migrate, seed demo accounts)
  3. Build planner, dispatcher, and API handler
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: toko.db)
           Use ":memory:" for an in-memory database

ENVIRONMENT:
  OPENAI_API_KEY    Chat-completions API key. When empty the server
                    still runs; the chat replies that AI is not
                    configured.
  OPENAI_MODEL      Model name (default gpt-4.1)
  OPENAI_BASE_URL   Alternative OpenAI-compatible endpoint

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  OPENAI_API_KEY=sk-... ./server -db="./data/toko.db"

  # Run with in-memory database
  ./server -db=":memory:"

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wproject-studio/toko-admin/api"
	"github.com/wproject-studio/toko-admin/dispatch"
	"github.com/wproject-studio/toko-admin/planner"
	"github.com/wproject-studio/toko-admin/shop"
	"github.com/wproject-studio/toko-admin/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "toko.db", "SQLite database path")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	if err := seedUsers(context.Background(), store); err != nil {
		logger.Fatal("failed to seed demo accounts", zap.Error(err))
	}

	// Chat planner. A missing key is not fatal: the planner degrades
	// to a "not configured" reply.
	cfg := planner.DefaultConfig(os.Getenv("OPENAI_API_KEY"))
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if cfg.APIKey == "" {
		logger.Warn("OPENAI_API_KEY is empty, chat will answer without AI")
	}
	pl := planner.New(planner.NewOpenAIClient(cfg), logger)

	// Dispatcher + handler
	svc := dispatch.NewService(store, logger)
	d := dispatch.NewDispatcher(svc, logger)
	handler := api.NewHandler(svc, pl, d, logger)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // chat turns wait on the model
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting",
			zap.String("addr", fmt.Sprintf("http://localhost:%d", *port)),
			zap.String("db", *dbPath))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}

// seedUsers creates the demo operator accounts on first run.
func seedUsers(ctx context.Context, store *sqlite.Store) error {
	n, err := store.CountUsers(ctx)
	if err != nil || n > 0 {
		return err
	}

	seeds := []struct {
		user     shop.User
		password string
	}{
		{shop.User{Email: "admin@toko.dev", FullName: "Toko Admin", Role: shop.RoleAdmin}, "admin123"},
		{shop.User{Email: "staff@toko.dev", FullName: "Toko Staff", Role: shop.RoleStaff}, "staff123"},
	}
	for _, s := range seeds {
		if err := store.SaveUser(ctx, s.user, s.password); err != nil {
			return err
		}
	}
	return nil
}
