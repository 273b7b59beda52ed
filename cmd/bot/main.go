package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"TrendSentry/internal/config"
	"TrendSentry/internal/gateway"
	"TrendSentry/internal/notifier"
	"TrendSentry/internal/orchestrator"
	"TrendSentry/internal/regime"
	"TrendSentry/internal/scheduler"
	"TrendSentry/internal/store"
)

func main() {
	_ = godotenv.Load()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Info().Msg("TrendSentry starting")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	// Init store
	var st store.Store
	if sqliteStore, err := store.NewSQLiteStore(cfg.Database.SQLitePath); err != nil {
		log.Warn().Err(err).Msg("sqlite store unavailable, using in-memory store")
		st = store.NewMemoryStore()
	} else {
		st = sqliteStore
	}
	defer st.Close()

	// Init exchange gateway
	binanceGw := gateway.NewBinanceGateway(
		cfg.Exchange.APIKey, cfg.Exchange.SecretKey,
		cfg.Exchange.BaseAsset, cfg.Exchange.QuoteAsset,
	)
	var gw gateway.ExchangeGateway = binanceGw
	if cfg.PaperMode() {
		paperGw, err := gateway.NewPaperGateway(binanceGw, cfg.Paper.WalletFile, cfg.Paper.StartingQuote)
		if err != nil {
			log.Fatal().Err(err).Msg("init paper gateway")
		}
		gw = paperGw
	}
	log.Info().Str("gateway", gw.Name()).Msg("exchange gateway ready")

	// Init regime cache
	advisory := regime.NewHTTPAdvisory(cfg.Advisory.BaseURL, cfg.Advisory.APIKey, cfg.Proxy, cfg.Advisory.Timeout)
	regimeCache := regime.NewCache(advisory, st, cfg.Advisory.Timeout, nil)

	// Init notifier
	var sink notifier.Notifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		sink = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	} else {
		log.Warn().Msg("telegram not configured, events go to log only")
		sink = notifier.NewLogNotifier()
	}

	// Init orchestrator
	orch, err := orchestrator.New(orchestrator.Config{
		Pair:              cfg.Exchange.BaseAsset + cfg.Exchange.QuoteAsset,
		IntervalMinutes:   cfg.Exchange.IntervalMinutes,
		CandleCount:       cfg.Exchange.CandleCount,
		MinOrderNotional:  cfg.Risk.MinOrderNotional,
		MinReservePercent: cfg.Risk.MinReservePercent,
		ReadTimeout:       cfg.Timeouts.Read,
		OrderTimeout:      cfg.Timeouts.Order,
	}, gw, regimeCache, st, sink, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("init orchestrator")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, orch)
	if err := sched.Register(cfg.Schedule.CycleCron); err != nil {
		log.Fatal().Err(err).Msg("register cycle cron")
	}
	sched.Start()
	defer sched.Stop()

	sink.Notify(ctx, notifier.EventStartup, "TrendSentry started")

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, executing cycle now")
		go sched.RunNow()
	}

	log.Info().Str("cron", cfg.Schedule.CycleCron).Msg("TrendSentry is running")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()
	log.Info().Msg("TrendSentry stopped")
}
