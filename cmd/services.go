package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/xvierd/tec-office/internal/adapters/notification"
	"github.com/xvierd/tec-office/internal/adapters/storage"
	"github.com/xvierd/tec-office/internal/adapters/tui"
	"github.com/xvierd/tec-office/internal/config"
	"github.com/xvierd/tec-office/internal/domain"
	"github.com/xvierd/tec-office/internal/logging"
	"github.com/xvierd/tec-office/internal/persona"
	"github.com/xvierd/tec-office/internal/ports"
	"github.com/xvierd/tec-office/internal/services"
)

// appDeps groups all service-layer dependencies initialized at startup.
type appDeps struct {
	config   *config.Config
	logger   *log.Logger
	storage  ports.Storage
	notifier *notification.Notifier
	persona  *persona.Persona
	timers   *services.TimerService
}

// app holds all initialized service dependencies.
// Populated by initializeServices() and accessible to all commands.
var app appDeps

// initializeServices sets up all the required services and adapters.
func initializeServices() error {
	var err error
	app.config, err = config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app.logger, err = logging.New(os.Stderr, app.config.Log.Level, app.config.Log.Format)
	if err != nil {
		return err
	}

	app.storage, err = openStorage(app.config, app.logger)
	if err != nil {
		return err
	}

	app.notifier = notification.New(&app.config.Notifications)

	app.persona = persona.Default()
	if app.config.Persona.File != "" {
		app.persona, err = persona.Load(app.config.Persona.File)
		if err != nil {
			return fmt.Errorf("failed to load persona: %w", err)
		}
	}

	app.timers, err = services.NewTimerService(
		app.config.ToPomodoroDomainConfig(),
		services.WithStore(app.storage),
		services.WithNotifier(app.notifier),
		services.WithPersona(app.persona),
		services.WithLogger(app.logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create timer service: %w", err)
	}
	app.timers.OnCompletion(func(c services.Completion) {
		app.logger.Info("timer complete", "user", c.UserID, "timer", c.TimerType, "name", c.Name)
	})

	return nil
}

// openStorage opens the configured store. With the sqlite backend the
// file store takes over whenever the database is unusable.
func openStorage(cfg *config.Config, logger *log.Logger) (ports.Storage, error) {
	files, err := storage.NewFileStore(config.GetStateDir(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}
	if cfg.Storage.Backend == config.BackendFile {
		return files, nil
	}

	if dbPath == "" {
		dbPath = config.GetDBPath(cfg)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := storage.New(dbPath)
	if err != nil {
		logger.Warn("sqlite unavailable, using file storage", "path", dbPath, "err", err)
		return storage.NewFallback(nil, files, logger), nil
	}
	return storage.NewFallback(db, files, logger), nil
}

// cleanupServices closes all resources.
func cleanupServices() error {
	if app.timers != nil {
		app.timers.Close()
		app.timers = nil
	}
	if app.storage != nil {
		err := app.storage.Close()
		app.storage = nil
		return err
	}
	return nil
}

// setupSignalHandler sets up a context that cancels on interrupt signals.
func setupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	return ctx
}

// currentUser returns --user, falling back to the configured user.
func currentUser() string {
	if u := strings.TrimSpace(userFlag); u != "" {
		return u
	}
	return app.config.UserID
}

// resultError marks a command whose Result was already printed.
type resultError struct {
	message string
}

func (e *resultError) Error() string { return e.message }

// printResult writes a Result as JSON or text. A failed Result becomes
// a resultError so the process exits non-zero.
func printResult(cmd *cobra.Command, result domain.Result) error {
	out := cmd.OutOrStdout()
	if jsonOutput {
		jsonData, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		fmt.Fprintln(out, string(jsonData))
	} else {
		tui.ShowStatus(out, result)
	}

	if !result.Success {
		return &resultError{message: result.Message}
	}
	return nil
}

// isResultError reports whether err came from printResult.
func isResultError(err error) bool {
	var re *resultError
	return errors.As(err, &re)
}
