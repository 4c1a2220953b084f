package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/promptsentry/prompt-sentry/internal/audit"
	"github.com/promptsentry/prompt-sentry/internal/config"
	"github.com/promptsentry/prompt-sentry/internal/credit"
	"github.com/promptsentry/prompt-sentry/internal/crypto"
	"github.com/promptsentry/prompt-sentry/internal/firewall"
	"github.com/promptsentry/prompt-sentry/internal/gateway"
	"github.com/promptsentry/prompt-sentry/internal/handler"
	handlerhttp "github.com/promptsentry/prompt-sentry/internal/handler/http"
	"github.com/promptsentry/prompt-sentry/internal/logger"
	"github.com/promptsentry/prompt-sentry/internal/policy"
	"github.com/promptsentry/prompt-sentry/internal/redactor"
	"github.com/promptsentry/prompt-sentry/internal/router"
	"github.com/promptsentry/prompt-sentry/internal/server"
	"github.com/promptsentry/prompt-sentry/internal/simulator"
	"github.com/promptsentry/prompt-sentry/internal/store"
	"github.com/promptsentry/prompt-sentry/internal/workers"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("prompt-sentry")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 15*time.Second)
	db, err := store.NewConnect(connectCtx, cfg.Storage.DB, log)
	cancelConnect()
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("error applying migrations")
	}

	storages := store.NewStorages(db, log)

	policies := policy.NewLoader(cfg.Firewall.PolicyPath, cfg.Firewall.WorkspaceRoot)
	if _, err := policies.LoadGlobal(); err != nil {
		log.Fatal().Err(err).Msg("error loading global policy")
	}

	var vault *redactor.VaultService
	cipher, err := crypto.NewCipherService(cfg.App.MasterSecret)
	switch {
	case err == nil:
		vault = redactor.NewVaultService(cipher, storages.Vault, log)
	case errors.Is(err, crypto.ErrNoMasterSecret):
		log.Warn().Msg("no master secret configured: reversible redaction and provider key encryption are disabled")
	default:
		log.Fatal().Err(err).Msg("error initializing cipher")
	}

	ledger := credit.NewLedger(storages.Credits, log)
	version := cfg.App.Version
	if version == "" {
		version = buildVersion
	}

	handlers := handler.NewHandlers(handlerhttp.Deps{
		Firewall:   firewall.NewService(policies, storages.Logs, cfg.Firewall.WorkspaceRoot, cfg.App.LogHashKey, log),
		Gateway:    gateway.NewRouter(storages.Providers, storages.Models, ledger, cipher, log),
		Dispatcher: gateway.NewDispatcher(cfg.Server.UpstreamTimeout, log),
		Smart:      router.NewSmartRouter("https://api.openai.com/v1/chat/completions", log),
		Ledger:     ledger,
		Vault:      vault,
		Analyzer:   audit.NewAnalyzer(cfg.Firewall.CodeSearchURL, 0.5, log),
		Simulator:  simulator.NewSimulator(log),
		Policies:   policies,
		Cipher:     cipher,
		Store:      storages,

		Version:        version,
		VaultTTL:       cfg.Workers.VaultTTL,
		StrictLocalEnv: strictLocalFromEnv(),
	}, log)

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	if vault != nil {
		workers.NewWorkers(
			workers.NewVaultPurgeWorker(workerCtx, vault, cfg.Workers.VaultPurgeInterval, log),
		).Run()
	}

	srv.RunServer()
}

func strictLocalFromEnv() bool {
	switch os.Getenv("STRICT_LOCAL") {
	case "1", "true", "TRUE", "True":
		return true
	}
	return false
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
