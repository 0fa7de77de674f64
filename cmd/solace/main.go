package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/solace-labs/solace/internal/compose"
	"github.com/solace-labs/solace/internal/config"
	"github.com/solace-labs/solace/internal/dialogue"
	"github.com/solace-labs/solace/internal/httpapi"
	"github.com/solace-labs/solace/internal/memory"
	"github.com/solace-labs/solace/internal/observability"
	"github.com/solace-labs/solace/internal/session"
	"github.com/solace-labs/solace/internal/trace"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("config error")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Str("service", "solace").Logger()

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	archive, err := memory.NewArchive(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("archive init failed")
	}
	defer archive.Close()
	if cfg.DatabaseURL == "" {
		logger.Info().Msg("transcript archive: in-memory")
	} else {
		logger.Info().Msg("transcript archive: postgres")
	}

	sessions := session.NewManager(cfg.SessionInactivityTimeout)

	hub := dialogue.NewHub(func(sessionID string, sink func(any)) *dialogue.Engine {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		return dialogue.NewEngine(dialogue.Config{
			SessionID:        sessionID,
			DebounceWindow:   cfg.DebounceWindow,
			MinLiveTraceLen:  cfg.MinLiveTraceLen,
			EscalationDelay:  cfg.EscalationDelay,
			MemoryFlagWindow: cfg.MemoryFlagWindow,
			EmergencyRoute:   cfg.EmergencyRoute,
		}, dialogue.Deps{
			Store:    memory.NewStore(),
			Composer: compose.NewComposer(rng),
			Tracer:   trace.NewBuilder(rng),
			Speaker:  dialogue.NewMockSpeaker(cfg.SpeakingPace),
			Mic:      dialogue.AllowMic{},
			Mode:     func() compose.Mode { return sessions.Mode(sessionID) },
			Metrics:  metrics,
			Archive:  archive,
			Logger:   logger.With().Str("component", "dialogue").Logger(),
			Sink:     sink,
			OnEscalation: func() {
				if err := sessions.RecordEscalation(sessionID); err != nil {
					logger.Warn().Str("session_id", sessionID).Err(err).Msg("escalation count not recorded")
				}
			},
		})
	})

	sessions.SetExpireHook(func(s *session.Session) {
		hub.Shutdown(s.ID)
		metrics.SessionEvents.WithLabelValues("expired").Inc()
		metrics.ActiveSessions.Set(float64(sessions.ActiveCount()))
		logger.Info().Str("session_id", s.ID).Msg("session expired")
	})

	api := httpapi.New(cfg, sessions, hub, archive, metrics, logger.With().Str("component", "httpapi").Logger())
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	sessions.StartJanitor(runCtx, 5*time.Second)

	go func() {
		logger.Info().Str("addr", cfg.BindAddr).Msg("server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("listen error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info().Msg("shutdown signal received")

	runCancel()
	hub.ShutdownAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		_ = httpServer.Close()
	}

	logger.Info().Msg("shutdown complete")
}
