// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/insuretech-labs/oipa-mcp/internal/adapters/db"
	"github.com/insuretech-labs/oipa-mcp/internal/core/services"
	"github.com/insuretech-labs/oipa-mcp/internal/handlers"
	"github.com/insuretech-labs/oipa-mcp/internal/pkg/config"
	"github.com/insuretech-labs/oipa-mcp/internal/pkg/logger"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Initialize structured logger
	slogger := logger.SetupLogger("info", "json")

	slogger.Info("starting OIPA MCP server",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
	)

	// Load configuration
	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("log_level", cfg.App.LogLevel),
		slog.Bool("wallet", cfg.UsesWallet()),
	)

	ctx := context.Background()

	// Resolve credentials from Secrets Manager when configured
	if cfg.AWS.UseSecrets {
		sm, err := config.NewAWSSecretsManager(cfg.AWS.Region, cfg.AWS.SecretName, slogger)
		if err != nil {
			slogger.Error("failed to initialize secrets manager", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := cfg.ResolveSecrets(ctx, sm); err != nil {
			slogger.Error("failed to resolve secrets", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// Initialize dependencies
	deps, err := initializeDependencies(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	// Verify connectivity up front; the server still starts when the probe
	// fails so tools can report a useful error once the database recovers.
	if !deps.database.TestConnection(ctx) {
		slogger.Warn("database connectivity check failed at startup")
	}

	mcpServer := setupMCPServer(cfg, deps)

	// Serve the stdio transport until stdin closes or a signal arrives
	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("serving MCP over stdio",
			slog.String("server", cfg.App.Name),
			slog.String("version", cfg.App.Version))
		serverErrors <- server.ServeStdio(mcpServer)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	slogger.Info("server shutdown complete")
}

// dependencies holds all application dependencies
type dependencies struct {
	database      *db.Database
	policyService *services.PolicyService
	policyTools   *handlers.PolicyToolHandler
}

func (d *dependencies) cleanup() {
	if d.database != nil {
		d.database.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	var strategy db.ConnectionStrategy
	if cfg.UsesWallet() {
		strategy = &db.WalletStrategy{
			Host:       cfg.Database.Host,
			Port:       cfg.Database.Port,
			Service:    cfg.Database.ServiceName,
			Location:   cfg.Wallet.Location,
			Passphrase: cfg.Wallet.Passphrase,
		}
	} else {
		strategy = &db.DirectStrategy{
			Host:    cfg.Database.Host,
			Port:    cfg.Database.Port,
			Service: cfg.Database.ServiceName,
		}
	}

	logger.Info("connecting to OIPA database",
		slog.String("host", cfg.Database.Host),
		slog.String("service", cfg.Database.ServiceName),
		slog.String("strategy", strategy.Name()),
	)

	database, err := db.NewDatabase(ctx, &db.Config{
		Strategy:        strategy,
		Username:        cfg.Database.Username,
		Password:        cfg.Database.Password,
		DefaultSchema:   cfg.Database.DefaultSchema,
		PoolMaxSize:     cfg.Database.PoolMaxSize,
		PoolMinSize:     cfg.Database.PoolMinSize,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  cfg.Database.ConnectTimeout,
		QueryTimeout:    cfg.Query.Timeout,
		RetryCount:      cfg.Database.RetryCount,
		RetryDelay:      cfg.Database.RetryDelay,
		DefaultMaxRows:  cfg.Query.DefaultMaxRows,
		MaxQueryResults: cfg.Query.MaxQueryResults,
		LogBindParams:   cfg.Database.LogBindParams,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.database = database

	policyRepo := db.NewPolicyRepository(database, logger)
	deps.policyService = services.NewPolicyService(policyRepo, logger)
	deps.policyTools = handlers.NewPolicyToolHandler(deps.policyService, logger)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

func setupMCPServer(cfg *config.Config, deps *dependencies) *server.MCPServer {
	s := server.NewMCPServer(
		cfg.App.Name,
		cfg.App.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	deps.policyTools.Register(s)

	return s
}
