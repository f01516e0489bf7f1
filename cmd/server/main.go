package main

import (
	"chat-relay/auth"
	"chat-relay/internal"
	"chat-relay/moderation"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Relay terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and owns their lifecycle, so deferred cleanup
// always happens before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}
	hasher, err := auth.NewHasher(config.PasswordHasher)
	if err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Credentials
	repository, closeRepository, err := openCredentialRepository(config, log)
	if err != nil {
		return exitRuntime, err
	}
	defer closeRepository()

	store, err := services.NewCredentialStore(log, repository, hasher)
	if err != nil {
		return exitRuntime, err
	}

	moderator, err := moderation.NewModerator(config.Words(), charReplacement, log)
	if err != nil {
		return exitRuntime, fmt.Errorf("moderator init failed: %w", err)
	}

	// 3. Relay
	server := runtime.NewRelayServer(log, runtime.ServerConfig{
		Host:               config.Host,
		Port:               config.Port,
		HandshakeTimeout:   config.HandshakeTimeout,
		WriteTimeout:       config.WriteTimeout,
		SenderPollInterval: config.SenderPollInterval,
	}, store, moderator)
	if err := server.Start(); err != nil {
		return exitRuntime, err
	}
	defer server.Stop()

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Background workers
	sup := workers.NewSupervisor(log, config.RestartInterval)
	if config.MetricInterval > 0 {
		sup.Add(workers.NewStatsReporter(log, server, config.MetricInterval))
	}
	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()

	if config.Interactive {
		console := newConsole(os.Stdin, os.Stdout, server, stop)
		go console.Run()
	}

	// 6. Wait for a signal or the console stop command
	<-ctx.Done()
	log.Info("Shutting down gracefully...")

	server.Stop()
	sup.Stop()
	<-supDone
	log.Info("Relay stopped cleanly")
	return exitOK, nil
}

// openCredentialRepository returns the configured backend and its cleanup.
func openCredentialRepository(config internal.Config, log *slog.Logger) (repositories.ICredentialRepository, func(), error) {
	switch config.CredentialsBackend {
	case internal.BackendBadger:
		db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
			WithLoggingLevel(badger.WARNING))
		if err != nil {
			return nil, nil, fmt.Errorf("database opening failed: %w", err)
		}
		closeDB := func() {
			log.Info("Closing BadgerDB...")
			_ = db.Close()
		}
		return repositories.NewBadgerCredentialRepository(db, log), closeDB, nil
	default:
		return repositories.NewFileCredentialRepository(config.CredentialsFile, log), func() {}, nil
	}
}
