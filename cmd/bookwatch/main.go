// bookwatch streams the Polymarket CLOB market channel for one market and
// renders the live order book of each outcome.
//
// Usage:
//
//	bookwatch --event-url https://polymarket.com/event/us-strikes-iran-by --date-text "March 31"
//	bookwatch --config configs/bookwatch.yaml --headless
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/polymarket-book/internal/api"
	"github.com/rickgao/polymarket-book/internal/book"
	"github.com/rickgao/polymarket-book/internal/config"
	"github.com/rickgao/polymarket-book/internal/connection"
	"github.com/rickgao/polymarket-book/internal/database"
	"github.com/rickgao/polymarket-book/internal/display"
	"github.com/rickgao/polymarket-book/internal/market"
	"github.com/rickgao/polymarket-book/internal/metrics"
	"github.com/rickgao/polymarket-book/internal/poller"
	"github.com/rickgao/polymarket-book/internal/router"
	"github.com/rickgao/polymarket-book/internal/status"
	"github.com/rickgao/polymarket-book/internal/version"
	"github.com/rickgao/polymarket-book/internal/writer"
)

const initialStatus = "waiting for feed..."

type options struct {
	configPath string
	envFile    string
	eventURL   string
	marketSlug string
	dateText   string
	depth      int
	logLevel   string
	headless   bool
	version    bool
}

func parseFlags(args []string) (*options, *flag.FlagSet, error) {
	var o options
	fs := flag.NewFlagSet("bookwatch", flag.ContinueOnError)
	fs.StringVarP(&o.configPath, "config", "c", "", "path to YAML config file (defaults only when empty)")
	fs.StringVar(&o.envFile, "env-file", ".env", "optional .env file loaded before the config")
	fs.StringVar(&o.eventURL, "event-url", "", "Polymarket event URL")
	fs.StringVar(&o.marketSlug, "market-slug", "", "exact market slug when the event has several markets")
	fs.StringVar(&o.dateText, "date-text", "", "text contained in the market question, e.g. \"March 31\"")
	fs.IntVar(&o.depth, "depth", 0, "price levels per side")
	fs.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error")
	fs.BoolVar(&o.headless, "headless", false, "disable the console display")
	fs.BoolVar(&o.version, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}
	return &o, fs, nil
}

// applyOverrides copies explicitly set flags over config values.
func applyOverrides(cfg *config.Config, o *options, fs *flag.FlagSet) {
	if fs.Changed("event-url") {
		cfg.Market.EventURL = o.eventURL
	}
	if fs.Changed("market-slug") {
		cfg.Market.MarketSlug = o.marketSlug
	}
	if fs.Changed("date-text") {
		cfg.Market.DateText = o.dateText
	}
	if fs.Changed("depth") {
		cfg.Book.Depth = o.depth
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if fs.Changed("headless") {
		cfg.Display.Headless = o.headless
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func loadConfig(o *options, fs *flag.FlagSet) (*config.Config, error) {
	if err := config.LoadEnvFile(o.envFile); err != nil {
		return nil, err
	}
	cfg, err := config.LoadWithDefaults(o.configPath)
	if err != nil {
		return nil, err
	}
	applyOverrides(cfg, o, fs)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func run(args []string) int {
	o, fs, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprint(os.Stdout, fs.FlagUsages())
			return 0
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 2
	}
	if o.version {
		fmt.Println(version.String())
		return 0
	}

	cfg, err := loadConfig(o, fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting bookwatch",
		"version", version.Version,
		"commit", version.Commit,
		"config", o.configPath,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gamma := api.NewClient(cfg.API.GammaURL,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, 200*time.Millisecond),
	)

	sel := market.Selection{MarketSlug: cfg.Market.MarketSlug, DateText: cfg.Market.DateText}
	registry, err := market.Resolve(ctx, gamma, cfg.Market.EventURL, sel, logger)
	if err != nil {
		logger.Error("failed to resolve market", "error", err, "event_url", cfg.Market.EventURL)
		return 1
	}

	instruments := registry.Instruments()
	logger.Info("market resolved",
		"event", registry.Event().Title,
		"market", registry.Market().Slug,
		"instruments", len(instruments),
	)

	board := status.NewBoard(initialStatus)
	frames := router.NewQueue[connection.RawMessage]()
	store := book.NewStore(registry.TokenIDs(), book.Options{
		ClearBestOnEmpty: cfg.Book.ClearBestOnEmptySnapshot,
	})

	sessCfg := connection.SessionConfig{
		Client: connection.ClientConfig{
			URL:          cfg.API.WSURL,
			PingInterval: cfg.Stream.PingInterval,
			PongTimeout:  cfg.Stream.PongTimeout,
			WriteTimeout: cfg.Stream.WriteTimeout,
			BufferSize:   cfg.Stream.BufferSize,
		},
		ReconnectBaseDelay: cfg.Stream.ReconnectBaseDelay,
		ReconnectMaxDelay:  cfg.Stream.ReconnectMaxDelay,
	}
	sessCfg.Client.HandshakeTimeout = connection.DefaultClientConfig().HandshakeTimeout

	session, err := connection.NewSession(sessCfg, connection.Subscription{AssetIDs: registry.TokenIDs()}, frames, board, logger)
	if err != nil {
		logger.Error("failed to create session", "error", err)
		return 1
	}

	rtr := router.NewRouter(frames, store, board, logger)

	var sinks []display.Sink
	depth := cfg.Book.Depth
	if !cfg.Display.Headless {
		depth = display.FitDepth(depth)
		sinks = append(sinks, display.NewConsole(os.Stdout, display.WithClearScreen(true)))
	}

	var archive *writer.Archive
	if cfg.Archive.Enabled {
		logger.Info("connecting to archive database",
			"host", cfg.Archive.Database.Host,
			"port", cfg.Archive.Database.Port,
			"database", cfg.Archive.Database.Name,
		)
		pool, err := database.Connect(ctx, cfg.Archive.Database)
		if err != nil {
			logger.Error("failed to connect to archive database", "error", err)
			return 1
		}
		defer pool.Close()
		if err := database.EnsureSchema(ctx, pool); err != nil {
			logger.Error("failed to prepare archive schema", "error", err)
			return 1
		}
		archive = writer.NewArchive(writer.Config{
			BatchSize:     cfg.Archive.BatchSize,
			FlushInterval: cfg.Archive.FlushInterval,
		}, pool, logger)
		sinks = append(sinks, archive)
	}

	sampler := display.NewSampler(display.SamplerConfig{
		Title:    registry.Event().Title,
		Question: registry.Market().Question,
		Depth:    depth,
		Interval: cfg.Display.RefreshInterval,
	}, rtr, board, instruments, logger, sinks...)

	clob := api.NewClient(cfg.API.CLOBURL,
		api.WithLogger(logger),
		api.WithTimeout(cfg.Poller.Timeout),
		api.WithRetries(cfg.API.MaxRetries, 200*time.Millisecond),
	)
	poll := poller.New(poller.Config{
		Interval:    cfg.Poller.Interval,
		Concurrency: cfg.Poller.Concurrency,
		Timeout:     cfg.Poller.Timeout,
	}, clob, registry, frames, logger)

	reg := metrics.NewRegistry()
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:           newHandler(cfg.Metrics.Path, metrics.Handler(reg), session, rtr, board),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return session.Run(gctx) })
	g.Go(func() error { return rtr.Run(gctx) })
	g.Go(func() error { return sampler.Run(gctx) })
	g.Go(func() error { return poll.Run(gctx) })
	if archive != nil {
		g.Go(func() error { return archive.Run(gctx) })
	}
	g.Go(func() error {
		logger.Info("starting metrics server", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("bookwatch stopped with error", "error", err)
		return 1
	}

	stats := rtr.Stats()
	logger.Info("bookwatch stopped",
		"frames", stats.FramesReceived,
		"parse_errors", stats.ParseErrors,
		"connection_attempts", session.Attempts(),
	)
	return 0
}

// newHandler serves health and metrics.
func newHandler(metricsPath string, metricsHandler http.Handler, session *connection.Session, rtr *router.Router, board *status.Board) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(metricsPath, metricsHandler)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		stats := rtr.Stats()
		line := board.Get()

		health := struct {
			Status    string       `json:"status"`
			Session   string       `json:"session"`
			Line      string       `json:"status_line"`
			UpdatedAt time.Time    `json:"updated_at"`
			Frames    int64        `json:"frames"`
			Attempts  int64        `json:"attempts"`
			Build     version.Info `json:"build"`
			Router    router.Stats `json:"router"`
		}{
			Status:    "healthy",
			Session:   session.State().String(),
			Line:      line.Text,
			UpdatedAt: line.PostedAt,
			Frames:    session.Frames(),
			Attempts:  session.Attempts(),
			Build:     version.Get(),
			Router:    stats,
		}
		if session.State() != connection.StateStreaming {
			health.Status = "degraded"
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	return mux
}

func main() {
	os.Exit(run(os.Args[1:]))
}
