// Package server initializes and runs the ArdhiHub server: it wires the
// database, vault, ledger client, and application services together,
// starts the HTTP API, and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/IscoRuta98/ArdhiHub-server/internal/ledger"
	"github.com/IscoRuta98/ArdhiHub-server/internal/logging"
	"github.com/IscoRuta98/ArdhiHub-server/internal/server/config"
	"github.com/IscoRuta98/ArdhiHub-server/internal/server/httpapi"
	"github.com/IscoRuta98/ArdhiHub-server/internal/server/repositories/repomanager"
	"github.com/IscoRuta98/ArdhiHub-server/internal/server/services"
	"github.com/IscoRuta98/ArdhiHub-server/internal/vault"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	api    *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	masterKey, err := resolveMasterKey(cfg)
	if err != nil {
		return nil, err
	}
	v, err := vault.New(masterKey)
	if err != nil {
		return nil, fmt.Errorf("vault init error: %w", err)
	}

	algodClient, err := ledger.NewAlgodClient(cfg.AlgodAddress, cfg.AlgodToken)
	if err != nil {
		return nil, err
	}
	orchestrator := ledger.NewOrchestrator(algodClient, cfg.ConfirmationMaxRounds, logger)

	userService := services.NewUserService(db, rm, v, cfg)
	recordService := services.NewRecordService(db, rm)
	tokenizationService := services.NewTokenizationService(db, rm, v, orchestrator, logger)
	documentService := services.NewDocumentService(cfg)

	api := httpapi.NewServer(userService, recordService, tokenizationService, documentService, cfg.SecretKey, logger)

	return &App{config: cfg, logger: logger, db: db, api: api}, nil
}

// resolveMasterKey produces the vault master key from configuration:
// either the explicit hex form or an argon2id derivation from the
// configured passphrase and salt.
func resolveMasterKey(cfg *config.Config) ([]byte, error) {
	if cfg.MasterKeyHex != "" {
		key, err := hex.DecodeString(cfg.MasterKeyHex)
		if err != nil {
			return nil, fmt.Errorf("master key decode error: %w", err)
		}
		return key, nil
	}

	if cfg.MasterKeyPassphrase == "" || cfg.MasterKeySalt == "" {
		return nil, errors.New("no vault master key configured")
	}

	return vault.DeriveMasterKey([]byte(cfg.MasterKeyPassphrase), []byte(cfg.MasterKeySalt)), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	server := &http.Server{
		Addr:    app.config.EndpointAddrHTTP,
		Handler: app.api.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "http shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "http server listening", "addr", app.config.EndpointAddrHTTP)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
