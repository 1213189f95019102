package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pevans/seminarfed/config"
	"github.com/pevans/seminarfed/dialect"
	"github.com/pevans/seminarfed/fetch"
	"github.com/pevans/seminarfed/importer"
	"github.com/pevans/seminarfed/scheduler"
	"github.com/pevans/seminarfed/seminars"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	addr := flag.String("addr", "localhost:8081", "Address to listen on")
	watch := flag.Bool("watch", false, "Also re-import seminars on the stored import_schedule")
	flag.Parse()

	settings := config.Load()
	if level, err := zerolog.ParseLevel(settings.LogLevel); err == nil && level != zerolog.NoLevel {
		zerolog.SetGlobalLevel(level)
	}

	registry, err := dialect.NewRegistry(settings.Dialects)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid dialect configuration")
	}

	seminarStore, err := seminars.NewStore(settings.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create seminar store")
	}
	defer seminarStore.Close()

	configStore, err := config.NewConfigStore(settings.DSN, config.Config{
		DefaultDialect: dialect.PlainID,
		ImportSchedule: settings.Schedule,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create config store")
	}
	defer configStore.Close()

	client := fetch.NewClient(settings.Fetch.Timeout, settings.Fetch.Attempts, settings.Fetch.UserAgent)
	runner := importer.NewRunner(seminarStore, registry, client)

	router := gin.Default()
	router.Use(config.CORS())

	seminars.NewSeminarAPIServer(seminarStore, config.NewDialectPolicy(configStore, registry)).RegisterRoutes(router)
	importer.NewImportAPIServer(runner).RegisterRoutes(router)
	config.NewConfigAPIServer(configStore, registry).RegisterRoutes(router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *watch {
		cfg, err := configStore.GetConfig()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to read configuration")
		}
		s := scheduler.NewImportScheduler(seminarStore, runner, cfg.ImportSchedule)
		if err := s.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to start import scheduler")
		}
		defer s.Stop()
	}

	srv := &http.Server{Addr: *addr, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	log.Info().Str("addr", "http://"+*addr+"/api/v1").Msg("starting seminarfed API server")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server failed")
	}
}
