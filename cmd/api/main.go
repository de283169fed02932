package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/divvy/internal/balance"
	"github.com/MrJamesThe3rd/divvy/internal/chat"
	"github.com/MrJamesThe3rd/divvy/internal/config"
	"github.com/MrJamesThe3rd/divvy/internal/database"
	"github.com/MrJamesThe3rd/divvy/internal/event"
	"github.com/MrJamesThe3rd/divvy/internal/export"
	"github.com/MrJamesThe3rd/divvy/internal/group"
	groupStore "github.com/MrJamesThe3rd/divvy/internal/group/store"
	divvyHttp "github.com/MrJamesThe3rd/divvy/internal/http"
	balanceHandler "github.com/MrJamesThe3rd/divvy/internal/http/balance"
	chatHandler "github.com/MrJamesThe3rd/divvy/internal/http/chat"
	expenseHandler "github.com/MrJamesThe3rd/divvy/internal/http/expense"
	exportHandler "github.com/MrJamesThe3rd/divvy/internal/http/export"
	groupHandler "github.com/MrJamesThe3rd/divvy/internal/http/group"
	importHandler "github.com/MrJamesThe3rd/divvy/internal/http/importcsv"
	"github.com/MrJamesThe3rd/divvy/internal/importer"
	"github.com/MrJamesThe3rd/divvy/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/divvy/internal/ledger/store"
	"github.com/MrJamesThe3rd/divvy/internal/money"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()})))

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.ConnectionString(), cfg.Pool())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	formatter, err := money.NewFormatter(cfg.App.Currency)
	if err != nil {
		return err
	}

	groupService := group.NewService(groupStore.New(db))

	opts := []ledger.Option{ledger.WithJournal(ledgerStore.New(db))}

	if cfg.AMQP.URL != "" {
		publisher, err := event.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.RoutingKey)
		if err != nil {
			return fmt.Errorf("connecting to broker: %w", err)
		}
		defer publisher.Close()

		opts = append(opts, ledger.WithPublisher(publisher))
	}

	expenseLedger := ledger.New(groupService, opts...)

	var (
		balanceService = balance.NewService(groupService, expenseLedger)
		exportService  = export.NewService(expenseLedger, balanceService, formatter)
		chatClient     = chat.NewClient(cfg.Chat.URL, cfg.Chat.Token, cfg.Chat.Model, cfg.Chat.Timeout)
		chatService    = chat.NewService(groupService, expenseLedger, balanceService, chatClient, formatter)
		importService  = importer.NewService(groupService, expenseLedger, formatter)
	)

	router := divvyHttp.New(cfg.CORS.AllowedOrigins, divvyHttp.Handlers{
		Groups:   groupHandler.NewHandler(groupService, expenseLedger),
		Expenses: expenseHandler.NewHandler(groupService, expenseLedger),
		Balances: balanceHandler.NewHandler(balanceService),
		Export:   exportHandler.NewHandler(exportService),
		Chat:     chatHandler.NewHandler(chatService),
		Import:   importHandler.NewHandler(importService),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout + cfg.Chat.Timeout,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "name", cfg.App.Name, "addr", srv.Addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
