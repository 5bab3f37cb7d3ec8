package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/tartampluch/go-timeline/internal/config"
	"github.com/tartampluch/go-timeline/internal/engine"
	"github.com/tartampluch/go-timeline/internal/locale"
	"github.com/tartampluch/go-timeline/internal/metrics"
	"github.com/tartampluch/go-timeline/internal/server"
	"github.com/tartampluch/go-timeline/internal/timeline"
	"github.com/tartampluch/go-timeline/internal/worker"
)

// cliOptions holds the parsed command line.
type cliOptions struct {
	configPath string
	source     string
	delimiter  string
	port       string
	lang       string
	once       bool
	out        string
	ics        bool
}

// main is the application entry point.
// It delegates execution to runMain so that deferred calls (like closing log
// files) run before the process terminates.
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

	var opts cliOptions
	flag.StringVar(&opts.configPath, config.FlagConfig, "", config.FlagDescConfig)
	flag.StringVar(&opts.source, config.FlagSource, "", config.FlagDescSource)
	flag.StringVar(&opts.delimiter, config.FlagDelimiter, "", config.FlagDescDelimiter)
	flag.StringVar(&opts.port, config.FlagPort, "", config.FlagDescPort)
	flag.StringVar(&opts.lang, config.FlagLang, "", config.FlagDescLang)
	flag.BoolVar(&opts.once, config.FlagOnce, false, config.FlagDescOnce)
	flag.StringVar(&opts.out, config.FlagOut, "", config.FlagDescOut)
	flag.BoolVar(&opts.ics, config.FlagICS, false, config.FlagDescICS)
	flag.Parse()

	if *showVersion {
		printVersion()
		return config.ExitCodeSuccess
	}

	// -------------------------------------------------------------------------
	// 2. Logging Initialization
	// -------------------------------------------------------------------------
	// In -once mode stdout may carry the document, so logs go to stderr.
	console := io.Writer(os.Stdout)
	if opts.once {
		console = os.Stderr
	}
	logCloser := setupLogging(console, *debugMode)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close() // Best effort close
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
	if err := run(ctx, opts); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// run loads the settings, wires dependencies, and either converts once or
// serves until ctx is cancelled.
func run(ctx context.Context, opts cliOptions) error {
	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	tr := locale.New(settings.Language)
	m := metrics.New()
	gen := &engine.Generator{
		Fetcher: engine.NewHTTPFetcher(),
		Options: timeline.Options{TitleHeadline: headline(settings, tr)},
		Metrics: m,
	}

	if opts.once {
		return runOnce(ctx, gen, settings, tr, opts)
	}

	srv := server.NewTimelineServer(settings.Server.Port, gen, m)
	srv.DefaultLanguage = settings.Language

	if settings.Source.Mode == "" {
		slog.Warn(config.MsgSyncDisabled, config.LogKeyComponent, config.CompMain)
	} else {
		w := worker.New(gen, srv, settings, tr)
		go w.Run(ctx)
		go watchReload(ctx, w, opts)
	}

	return srv.Start(ctx)
}

// runOnce converts the configured source a single time and writes the result.
func runOnce(ctx context.Context, gen *engine.Generator, settings config.Settings, tr *locale.Translator, opts cliOptions) error {
	if settings.Source.Mode == "" {
		return errors.New(config.ErrSourceRequired)
	}

	w := worker.New(gen, nil, settings, tr)
	res, err := gen.RunSync(ctx, w.SyncConfig())
	if err != nil {
		return fmt.Errorf("%s: %w", tr.ErrorMessage(err), err)
	}

	data := res.JSON
	if opts.ics {
		data = res.ICS
	}
	if err := writeOutput(opts.out, data); err != nil {
		return err
	}

	slog.Info(config.MsgOutputWritten,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyFile, opts.out,
		config.LogKeySizeBytes, len(data),
		config.LogKeyValue, tr.SyncSummary(len(res.Document.Events), res.Rejected),
	)
	return nil
}

// loadSettings reads the settings file, then applies command line overrides.
func loadSettings(opts cliOptions) (config.Settings, error) {
	settings, err := config.LoadSettings(opts.configPath)
	if err != nil {
		return settings, err
	}
	applyFlags(&settings, opts)
	if err := settings.Validate(); err != nil {
		return settings, err
	}
	return settings, nil
}

// applyFlags overrides settings with the flags that were actually given.
func applyFlags(s *config.Settings, opts cliOptions) {
	if opts.source != "" {
		s.SetSource(opts.source)
	}
	if opts.delimiter != "" {
		s.Source.Delimiter = opts.delimiter
	}
	if opts.port != "" {
		s.Server.Port = opts.port
	}
	if opts.lang != "" {
		s.Language = locale.Match(opts.lang)
	}
}

// headline returns the configured title headline or the localized default.
func headline(s config.Settings, tr *locale.Translator) string {
	if s.TitleHeadline != "" {
		return s.TitleHeadline
	}
	return tr.TitleHeadline()
}

// watchReload re-reads the settings on SIGHUP and applies the new refresh
// interval. Source and port changes need a restart.
func watchReload(ctx context.Context, w *worker.Worker, opts cliOptions) {
	hup := make(chan os.Signal, config.ChannelBufferSize)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			slog.Info(config.MsgReload,
				config.LogKeyComponent, config.CompMain,
				config.LogKeyFile, opts.configPath,
			)
			settings, err := loadSettings(opts)
			if err != nil {
				slog.Error(config.MsgReloadFailed,
					config.LogKeyComponent, config.CompMain,
					config.LogKeyError, err,
				)
				continue
			}
			w.SetInterval(settings.RefreshInterval())
			w.TriggerSync()
		}
	}
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			return fmt.Errorf("%s: %w", config.ErrWriteOut, err)
		}
		return nil
	}
	if err := os.WriteFile(path, data, config.FilePermPublic); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWriteOut, err)
	}
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

// setupLogging configures the default slog logger to write JSON to console
// and to a log file in the user cache directory.
func setupLogging(console io.Writer, debugMode bool) io.Closer {
	writers := []io.Writer{console}
	var logFile *os.File

	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
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

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts))
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
