package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/SweetSugar16/AdguardBrowserExtension/internal/api"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/assistant"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/background"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/browser"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/cdp"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/cdpcontrol"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/config"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/engine"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/events"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/filters"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/journal"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/messaging"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/netutil"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/subscription"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/tabs"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/types"
)

func main() {
	cfg, err := config.LoadService()
	if err != nil {
		slog.Error("failed to load service config", "error", err)
		os.Exit(1)
	}

	if err := setupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		if _, writeErr := io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n"); writeErr != nil {
			slog.Debug("logger setup stderr write failed", "error", writeErr)
		}
		os.Exit(1)
	}

	slog.Info("bgservice config loaded",
		"bind_addr", cfg.BindAddr,
		"cdp_url", cfg.CDPURL(),
		"data_dir", cfg.DataDir,
		"engine_debounce_ms", cfg.EngineDebounceMS,
		"eval_timeout_ms", cfg.EvalTimeoutMS,
		"auto_launch", cfg.AutoLaunch,
		"log_level", cfg.LogLevel,
	)

	bindAddr, err := netutil.SelectBindAddr(cfg.BindAddr, cfg.PortCandidates, cfg.PortAutoFallback)
	if err != nil {
		slog.Error("failed to select bind address", "preferred", cfg.BindAddr, "error", err)
		os.Exit(1)
	}

	var launcher *browser.Launcher
	if cfg.AutoLaunch {
		launcher = browser.NewLauncher(browser.Config{
			CDPAddress: cfg.CDPAddress,
			CDPPort:    cfg.CDPPort,
			ProfileDir: cfg.BrowserProfile,
		})
		if err := launcher.Launch(context.Background()); err != nil {
			slog.Error("failed to launch browser", "error", err)
			os.Exit(1)
		}
		defer launcher.Stop()
	}

	store, err := filters.NewStore(cfg.DataDir)
	if err != nil {
		slog.Error("failed to open filter store", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}

	filterSvc := filters.NewService(store, filters.NewLoader(nil))
	broker := events.NewBroker()
	jrnl := journal.New(cfg.JournalDir, cfg.JournalBufferSize, cfg.JournalMaxSizeMB)
	defer func() {
		if err := jrnl.Close(); err != nil {
			slog.Debug("journal close failed", "error", err)
		}
	}()

	control := cdpcontrol.NewClient(cfg.CDPURL(), time.Duration(cfg.EvalTimeoutMS)*time.Millisecond)
	if err := control.Connect(context.Background()); err != nil {
		slog.Error("failed to connect CDP control plane", "cdp_url", cfg.CDPURL(), "error", err)
		os.Exit(1)
	}
	defer control.Close()

	updater := engine.NewUpdater(func(ctx context.Context) error {
		var patterns []string
		for _, f := range filterSvc.EnabledFilters() {
			rules, err := filterSvc.Rules(f.ID)
			if err != nil {
				slog.Warn("skipping filter without rules", "filter_id", f.ID, "error", err)
				continue
			}
			patterns = append(patterns, engine.BlockedPatterns(rules)...)
		}
		if err := control.SetBlockedURLs(ctx, patterns); err != nil {
			return err
		}
		jrnl.Record(events.KindEngineRefreshed, 0, "", "")
		broker.Publish(events.NewEvent(events.KindEngineRefreshed, map[string]int{"patterns": len(patterns)}))
		return nil
	}, time.Duration(cfg.EngineDebounceMS)*time.Millisecond)
	updater.Start()
	defer updater.Stop()

	dispatcher := messaging.NewDispatcher()
	handler := subscription.NewHandler(filterSvc, updater, jrnl, broker)
	if err := handler.RegisterMessageHandlers(dispatcher); err != nil {
		slog.Error("failed to register message handlers", "error", err)
		os.Exit(1)
	}

	registry := tabs.NewRegistry()
	navWatcher := subscription.NewWatcher(registry, nil, subscription.HelperScript("http://"+bindAddr), jrnl, broker)

	watcher := cdp.NewWatcher(cfg.CDPURL(), time.Duration(cfg.TabSyncMS)*time.Millisecond, registry, func(details types.NavigationDetails) {
		navWatcher.OnNavigationCommitted(details)
	})
	navWatcher.SetInjector(watcher)
	if err := watcher.Connect(context.Background()); err != nil {
		slog.Error("failed to connect CDP watcher", "cdp_url", cfg.CDPURL(), "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			slog.Debug("CDP watcher close failed", "error", err)
		}
	}()

	// Apply whatever filters are already on disk.
	updater.Request()

	svc := background.NewService(dispatcher, handler, filterSvc, registry, assistant.NewLauncher(control))
	h := api.NewServer(svc, broker)

	srv := &http.Server{Addr: bindAddr, Handler: h}

	go func() {
		slog.Info("bgservice listening", "addr", bindAddr, "docs", "http://"+bindAddr+"/docs")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("bgservice server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("bgservice shutdown failed", "error", err)
	}
}

func setupLogger(level, filename string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return err
	}

	logWriter := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}

	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	h := slog.NewTextHandler(io.MultiWriter(os.Stdout, logWriter), &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(h))
	return nil
}
