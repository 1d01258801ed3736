package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/engine"
	"github.com/tartampluch/go-contacts/internal/metrics"
	"github.com/tartampluch/go-contacts/internal/server"
	"github.com/tartampluch/go-contacts/internal/store"
	"github.com/tartampluch/go-contacts/internal/ui"
)

// main is the application entry point.
// It delegates execution to runMain so that deferred calls (closing the log
// file, the store) run before the process exits.
func main() {
	os.Exit(runMain())
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
func runMain() int {
	// -------------------------------------------------------------------------
	// 1. CLI Argument Parsing
	// -------------------------------------------------------------------------
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := flag.Bool(config.FlagDebug, false, config.FlagDescDebug)
	addr := flag.String(config.FlagAddr, "", config.FlagDescAddr)
	envFile := flag.String(config.FlagEnvFile, config.DefaultEnvFile, config.FlagDescEnvFile)
	flag.Parse()

	if *showVersion {
		printVersion()
		return config.ExitCodeSuccess
	}

	// -------------------------------------------------------------------------
	// 2. Logging Initialization
	// -------------------------------------------------------------------------
	logCloser := setupLogging(*debugMode)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close()
		}()
	}

	// -------------------------------------------------------------------------
	// 3. Context & Signal Handling
	// -------------------------------------------------------------------------
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	// -------------------------------------------------------------------------
	// 4. Application Logic
	// -------------------------------------------------------------------------
	if err := run(ctx, *envFile, *addr); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// run loads the settings, opens the store, wires the server and blocks until
// ctx is cancelled.
func run(ctx context.Context, envFile, addr string) error {
	settings, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if addr != "" {
		settings.Addr = addr
	}

	backend, err := store.Open(ctx, settings.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			slog.Warn(config.ErrStoreClose, config.LogKeyComponent, config.CompMain, config.LogKeyError, err)
		}
	}()

	fetcher := engine.NewHTTPFetcher()
	if err := seed(ctx, backend, settings.SeedFile); err != nil {
		return err
	}

	render, err := ui.NewRenderer()
	if err != nil {
		return err
	}

	srv := server.New(settings, server.Deps{
		Store:      backend,
		Renderer:   render,
		Translator: ui.NewTranslator(settings.Language),
		Metrics:    metrics.New(),
		Fetcher:    fetcher,
		Secret:     config.LookupImportSecret,
	})
	return srv.Start(ctx)
}

// seed imports path into st when st is empty. An empty path is a no-op.
func seed(ctx context.Context, st engine.ContactStore, path string) error {
	if path == "" {
		return nil
	}
	existing, err := st.List(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrSeed, err)
	}
	if len(existing) > 0 {
		slog.Info(config.MsgSeedSkipped,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyCount, len(existing))
		return nil
	}

	im := &engine.Importer{Store: st}
	report, err := im.Run(ctx, engine.ImportSource{Path: path})
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrSeed, err)
	}
	slog.Info(config.MsgSeeded,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyFile, path,
		config.LogKeyImported, report.Imported,
		config.LogKeySkipped, report.Skipped)
	return nil
}

// printVersion outputs the build information to stdout.
func printVersion() {
	fmt.Printf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging configures the default slog logger: JSON to stdout and to a
// log file in the user cache directory when one can be created.
func setupLogging(debugMode bool) io.Closer {
	writers := []io.Writer{os.Stdout}
	var logFile *os.File

	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
