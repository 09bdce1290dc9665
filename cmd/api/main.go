package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"rutanorte/api/internal/app"
	"rutanorte/api/internal/auth"
	"rutanorte/api/internal/club"
	"rutanorte/api/internal/config"
	"rutanorte/api/internal/notion"
	"rutanorte/api/internal/web"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := log.Logger

	if cfg.NotionToken == "" {
		logger.Fatal().Msg("NOTION_API_KEY is required")
	}

	client := notion.NewClient(cfg.NotionBaseURL, cfg.NotionToken, cfg.NotionVersion,
		notion.WithLogger(logger))
	resolver := notion.NewResolver(client, notion.NewDataSourceCache())

	collections := []club.Collection{
		{
			Key:                 club.CollectionMembers,
			DatabaseID:          cfg.MembersDatabaseID,
			FallbackTitle:       "Miembros",
			FallbackDescription: "Los miembros del club",
		},
		{
			Key:                 club.CollectionAchievements,
			DatabaseID:          cfg.AchievementsDatabaseID,
			FallbackTitle:       "Logros",
			FallbackDescription: "Logros de los miembros",
		},
	}
	if cfg.RoutesDatabaseID != "" {
		collections = append(collections, club.Collection{
			Key:                 club.CollectionRoutes,
			DatabaseID:          cfg.RoutesDatabaseID,
			FallbackTitle:       "Rutas",
			FallbackDescription: "Rutas del club",
		})
	}

	clubSvc := club.NewService(client, resolver, collections, cfg.PrivatePageID, logger)

	var sessionStore auth.SessionStore
	if strings.TrimSpace(cfg.RedisURL) != "" {
		logger.Info().Msg("using Redis for session storage")
		redisStore, err := auth.NewRedisStore(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisStore.Close()
		sessionStore = redisStore
	} else {
		logger.Info().Msg("using in-memory session storage")
		sessionStore = auth.NewMemoryStore()
	}
	authSvc := auth.NewService(sessionStore, cfg.SitePasswordHash, cfg.SessionTTL)

	views, err := web.NewRenderer()
	if err != nil {
		logger.Fatal().Err(err).Msg("template parsing failed")
	}

	httpServer := app.NewHTTPServer(clubSvc, authSvc, views, cfg.CORSOrigin, logger)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("Ruta Norte API listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
}
