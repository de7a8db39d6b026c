// Package main is the entry point for the guild progression bot.
//
// The process owns the authoritative guild state: the XP ledger, the chat and
// voice activity trackers, and the role application workflow. Platform events
// arrive over HTTP webhooks from the connector, periodic voice sweeps run on
// the internal scheduler, and notifications flow back out through the event
// bus.
//
// Architecture follows Clean Architecture and DDD:
// - Domain: pure business logic without external dependencies
// - Application: use case orchestration (Commands/Queries/Event handlers)
// - Infrastructure: snapshot stores, caches, scheduler, event bus
// - Interface: HTTP ingress and outbound notifications
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/guildhub/guild-progression-bot/config"

	// Application layer
	"github.com/guildhub/guild-progression-bot/internal/application/command"
	"github.com/guildhub/guild-progression-bot/internal/application/eventhandler"
	"github.com/guildhub/guild-progression-bot/internal/application/query"

	// Domain layer
	"github.com/guildhub/guild-progression-bot/internal/domain/guildstate"
	"github.com/guildhub/guild-progression-bot/internal/domain/ledger"

	// Infrastructure layer
	"github.com/guildhub/guild-progression-bot/internal/infrastructure/messaging"
	"github.com/guildhub/guild-progression-bot/internal/infrastructure/persistence/file"
	"github.com/guildhub/guild-progression-bot/internal/infrastructure/persistence/memory"
	"github.com/guildhub/guild-progression-bot/internal/infrastructure/persistence/postgres"
	"github.com/guildhub/guild-progression-bot/internal/infrastructure/persistence/redis"
	"github.com/guildhub/guild-progression-bot/internal/infrastructure/scheduler"
	"github.com/guildhub/guild-progression-bot/internal/infrastructure/scheduler/jobs"

	// Interface layer
	"github.com/guildhub/guild-progression-bot/internal/interface/gateway"
	httpserver "github.com/guildhub/guild-progression-bot/internal/interface/http"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. Configuration and logging
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg)
	log.Info("starting guild progression bot",
		"env", string(cfg.App.Environment),
		"version", cfg.App.Version,
		"snapshot_backend", cfg.Snapshot.Backend,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. Snapshot store
	// ─────────────────────────────────────────────────────────────────────────
	var store guildstate.SnapshotStore
	var dbConn *postgres.Connection

	switch cfg.Snapshot.Backend {
	case config.SnapshotBackendPostgres:
		log.Info("connecting to database...")
		dbConn, err = postgres.NewConnectionFromURL(ctx, cfg.Snapshot.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			log.Info("closing database connection...")
			dbConn.Close()
		}()

		store, err = postgres.NewStore(ctx, dbConn, cfg.Snapshot.Key)
		if err != nil {
			return fmt.Errorf("failed to initialize snapshot store: %w", err)
		}
		log.Info("database connection established")

	case config.SnapshotBackendMemory:
		log.Warn("using in-memory snapshot store, state will not survive restarts")
		store = memory.NewStore()

	default:
		fileStore, err := file.NewStore(cfg.Snapshot.FilePath)
		if err != nil {
			return fmt.Errorf("failed to initialize snapshot file: %w", err)
		}
		store = fileStore
		log.Info("using file snapshot store", "path", cfg.Snapshot.FilePath)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. State manager
	// ─────────────────────────────────────────────────────────────────────────
	manager, err := guildstate.NewManager(ctx, store)
	if err != nil {
		return fmt.Errorf("failed to load guild state: %w", err)
	}
	log.Info("guild state loaded")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. Redis (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var leaderboardCache ledger.LeaderboardCache
	var presenceMirror *redis.PresenceMirror

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err := redis.NewCache(ctx, redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", "error", err)
		} else {
			defer redisCache.Close()
			leaderboardCache = redis.NewLeaderboardCache(redisCache)
			presenceMirror = redis.NewPresenceMirror(redisCache)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. Event bus
	// ─────────────────────────────────────────────────────────────────────────
	eventBusConfig := messaging.DefaultInMemoryEventBusConfig()
	eventBusConfig.Logger = log
	eventBus := messaging.NewInMemoryEventBus(eventBusConfig)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 6. Application layer
	// ─────────────────────────────────────────────────────────────────────────
	chatCfg := cfg.Tracker.ChatConfig()
	voiceCfg := cfg.Tracker.VoiceConfig()

	handlers := gateway.Handlers{
		TrackMessage:      command.NewTrackMessageHandler(manager, eventBus, chatCfg),
		UpdateVoiceState:  command.NewUpdateVoiceStateHandler(manager, eventBus),
		SubmitApplication: command.NewSubmitApplicationHandler(manager, eventBus),
		DecideApplication: command.NewDecideApplicationHandler(manager, eventBus),
		TriggerPanic:      command.NewTriggerPanicHandler(manager, eventBus),
		ConfigureGuild:    command.NewConfigureGuildHandler(manager),
		SetRequirement:    command.NewSetRoleRequirementHandler(manager),
		RemoveRequirement: command.NewRemoveRoleRequirementHandler(manager),
	}
	tickVoiceHandler := command.NewTickVoiceHandler(manager, eventBus, voiceCfg)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. Projections and notifications
	// ─────────────────────────────────────────────────────────────────────────
	if leaderboardCache != nil {
		projection := eventhandler.NewLeaderboardProjection(leaderboardCache, log)
		if err := projection.Register(eventBus); err != nil {
			return fmt.Errorf("failed to register leaderboard projection: %w", err)
		}
	}
	if presenceMirror != nil {
		projection := eventhandler.NewPresenceProjection(presenceMirror, log)
		if err := projection.Register(eventBus); err != nil {
			return fmt.Errorf("failed to register presence projection: %w", err)
		}
	}

	var sender gateway.Sender
	if cfg.Notify.WebhookURL != "" {
		sender = gateway.NewWebhookSender(cfg.Notify.WebhookURL)
		log.Info("notifications delivered via connector webhook", "url", cfg.Notify.WebhookURL)
	} else {
		sender = gateway.NewLogSender(log)
		log.Info("no connector webhook configured, notifications go to the log")
	}
	notifier := gateway.NewNotifier(manager, sender, log)
	if err := notifier.Register(eventBus); err != nil {
		return fmt.Errorf("failed to register notifier: %w", err)
	}

	gw := gateway.New(manager, handlers, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. Scheduler
	// ─────────────────────────────────────────────────────────────────────────
	sched := scheduler.NewScheduler(log)

	voiceTickJob := jobs.NewVoiceTickJob(tickVoiceHandler, log)
	if err := sched.Register(voiceTickJob, scheduler.NewIntervalSchedule(cfg.Scheduler.VoiceTickInterval)); err != nil {
		return fmt.Errorf("failed to register voice tick job: %w", err)
	}

	if leaderboardCache != nil {
		rebuildJob := jobs.NewRebuildLeaderboardJob(manager, leaderboardCache, log)
		if err := sched.Register(rebuildJob, scheduler.NewIntervalSchedule(cfg.Scheduler.LeaderboardRebuildInterval)); err != nil {
			return fmt.Errorf("failed to register leaderboard rebuild job: %w", err)
		}
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer func() {
		log.Info("stopping scheduler...")
		_ = sched.Stop()
	}()
	log.Info("scheduler started", "voice_tick_interval", cfg.Scheduler.VoiceTickInterval.String())

	// ─────────────────────────────────────────────────────────────────────────
	// 9. HTTP server
	// ─────────────────────────────────────────────────────────────────────────
	var httpErrCh <-chan error
	var httpSrv *httpserver.Server

	if cfg.HTTP.Enabled {
		serverCfg := httpserver.DefaultConfig()
		serverCfg.Host = cfg.HTTP.Host
		serverCfg.Port = cfg.HTTP.Port

		httpSrv = httpserver.NewServer(serverCfg, httpserver.Dependencies{
			GetLeaderboardHandler:        query.NewGetLeaderboardHandler(manager, leaderboardCache),
			GetBalanceHandler:            query.NewGetBalanceHandler(manager),
			GetAuditLogHandler:           query.NewGetAuditLogHandler(manager),
			GetPendingApplicationHandler: query.NewGetPendingApplicationHandler(manager),
			Gateway:                      gw,
			Logger:                       log,
		})
		httpErrCh = httpSrv.StartAsync()
	} else {
		log.Warn("HTTP server disabled, no event ingress is available")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. Wait for shutdown
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received signal", "signal", sig.String())
	case err := <-httpErrCh:
		if err != nil {
			log.Error("HTTP server failed", "error", err)
		}
	case <-ctx.Done():
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if httpSrv != nil {
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Warn("HTTP server shutdown error", "error", err)
		}
	}

	// Scheduler, event bus, and connections close via the deferred calls.
	log.Info("shutdown complete")
	return nil
}

// setupLogger configures the process-wide structured logger.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}
