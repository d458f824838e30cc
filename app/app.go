// app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/dalemusser/libgate/config"
	"github.com/dalemusser/libgate/entry"
	"github.com/dalemusser/libgate/internal/termpage"
	"github.com/dalemusser/libgate/logging"
	"github.com/dalemusser/libgate/metrics"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

// Options are the process surroundings Run needs. Tests substitute buffers.
type Options struct {
	Name        string
	Args        []string
	Stdin       io.Reader
	Stdout      io.Writer
	Interactive bool
	// Logger, when set, replaces the config-built logger.
	Logger *zap.Logger
	// RuntimeMetrics adds Go/process collectors to the metrics file.
	RuntimeMetrics bool
}

// Run executes the gate's lifecycle:
//
//  1. Bootstrap logger
//  2. Load config (flags, env, config file, defaults)
//  3. Build final logger
//  4. Create the metrics recorder
//  5. Build the HTTP client (cookie jar, metrics, request logging)
//  6. Build the controller
//  7. Wire shutdown signals to a context
//  8. Wire the terminal page and run its event loop
//  9. Wait for in-flight submissions, then write metrics
func Run(ctx context.Context, opts Options) error {
	// 1) Bootstrap logger for early startup
	bootstrap := logging.BootstrapLogger()
	defer func() { _ = bootstrap.Sync() }()

	// 2) Load config
	fs := pflag.NewFlagSet(opts.Name, pflag.ContinueOnError)
	config.DefineFlags(fs)
	cfg, err := config.Load(bootstrap, fs, opts.Args)
	if errors.Is(err, pflag.ErrHelp) {
		// usage already printed by the flag set
		return err
	}
	if err != nil {
		bootstrap.Error("config load failed", zap.Error(err))
		return err
	}

	// 3) Build final logger
	logger := opts.Logger
	if logger == nil {
		logger, err = logging.BuildLogger(cfg.LogLevel, cfg.Env)
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()
	}
	logger = logger.Named(opts.Name)
	logger.Debug("config loaded", zap.String("config", cfg.Dump()))

	// 4) Metrics
	rec := metrics.New(opts.RuntimeMetrics)

	// 5) HTTP client
	client, err := newClient(rec, logger)
	if err != nil {
		return err
	}

	// 6) Controller
	dispatcher, err := entry.NewDispatcher(cfg.BaseURL, cfg.UserPath, client)
	if err != nil {
		return err
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	page := termpage.New(opts.Stdin, opts.Stdout, base, opts.Interactive)
	ctrl, err := entry.NewController(entry.Options{
		Navigator:     page,
		Alerter:       page,
		Dispatcher:    dispatcher,
		LibrarianPath: cfg.LibrarianPath,
		Messages:      cfg.MessageSet(),
		Logger:        logger,
		Observer:      rec,
	})
	if err != nil {
		return err
	}

	// 7) Shutdown signals → context
	ctx, cancel := WithShutdownSignals(ctx, logger)
	defer cancel()

	// 8) Page
	binding := entry.Wire(ctx, ctrl, page.Elements())
	logger.Info("entry page ready",
		zap.String("endpoint", dispatcher.Endpoint()),
		zap.String("librarian_path", cfg.LibrarianPath),
		zap.String("locale", cfg.Locale),
	)
	runErr := page.Run(ctx)

	// 9) Drain and report
	binding.Wait()
	if err := rec.WriteTextfile(cfg.MetricsFile, logger); err != nil {
		logger.Error("metrics write failed", zap.String("file", cfg.MetricsFile), zap.Error(err))
	}
	if runErr != nil {
		logger.Error("page input failed", zap.Error(runErr))
		return runErr
	}
	logger.Info("entry page closed", zap.String("navigated", page.Navigated()))
	return nil
}

// newClient follows redirects like a browser: cookies set along the chain
// are replayed on later hops.
func newClient(rec *metrics.Recorder, logger *zap.Logger) (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	return &http.Client{
		Jar:       jar,
		Transport: rec.InstrumentTransport(logging.Transport(http.DefaultTransport, logger)),
	}, nil
}
