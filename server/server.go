package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Blockbuster/cache"
	"Blockbuster/config"
	"Blockbuster/core/auth"
	"Blockbuster/core/channel"
	"Blockbuster/core/emby"
	"Blockbuster/core/playback"
	"Blockbuster/core/roku"
	"Blockbuster/core/search"
	"Blockbuster/db"
	"Blockbuster/logger"
	"Blockbuster/repository"
	"Blockbuster/storage"

	"github.com/gorilla/mux"
)

// Start initializes every subsystem and runs the HTTP server until SIGTERM.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})
	auth.SetSecret(cfg.JWTSecret)

	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("failed to connect to database", logger.ErrorField(err))
	}
	defer db.DB.Close()
	if err := db.InitDB(); err != nil {
		logger.Fatal("failed to initialize database", logger.ErrorField(err))
	}
	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("failed to connect GORM", logger.ErrorField(err))
	}
	defer db.CloseGormDB()

	if err := cache.ConnectRedis(cfg); err != nil {
		// degraded mode: no debounce, no search cache
		logger.Warn("redis unavailable, running without cache", logger.ErrorField(err))
	} else {
		defer cache.CloseRedis()
	}

	if err := storage.InitMinio(cfg); err != nil {
		// degraded mode: cover uploads and fetches fail until restart
		logger.Warn("minio unavailable, running without cover storage", logger.ErrorField(err))
	}

	registry := buildRegistry(cfg)
	executor := playback.NewExecutor(roku.NewClient())
	aggregator := search.NewAggregator(
		registry,
		webProvider(cfg),
		time.Duration(cfg.SearchTimeoutMs)*time.Millisecond,
	)
	hub := NewEventHub()

	entryRepo := repository.NewMySQLEntryRepository()
	userRepo := repository.NewMySQLUserRepository(db.DB)
	readerRepo := repository.NewGormReaderRepository(db.GormDB)

	apiHandler := NewAPIHandler(cfg, entryRepo, userRepo, readerRepo, registry, executor, aggregator, hub)

	router := mux.NewRouter()
	router.Use(corsMiddleware)

	// firmware endpoint: bare POST from an NFC reader
	router.HandleFunc("/play/{id}", apiHandler.PlayHandler).Methods(http.MethodPost)

	// auth
	router.HandleFunc("/api/auth/register", apiHandler.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)

	// library entries
	router.HandleFunc("/api/entries", apiHandler.AuthMiddleware(apiHandler.GetEntriesHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/entries", apiHandler.AuthMiddleware(apiHandler.CreateEntryHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/entries/{id}", apiHandler.AuthMiddleware(apiHandler.GetEntryHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/entries/{id}", apiHandler.AuthMiddleware(apiHandler.UpdateEntryHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/entries/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteEntryHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/entries/{id}/cover", apiHandler.AuthMiddleware(apiHandler.UploadCoverHandler)).Methods(http.MethodPost)

	// search and URL extraction
	router.HandleFunc("/api/search", apiHandler.AuthMiddleware(apiHandler.SearchHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/extract", apiHandler.AuthMiddleware(apiHandler.ExtractHandler)).Methods(http.MethodPost)

	// devices and readers
	router.HandleFunc("/api/devices", apiHandler.AuthMiddleware(apiHandler.DiscoverDevicesHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/readers", apiHandler.AuthMiddleware(apiHandler.GetReadersHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/readers/{deviceId}", apiHandler.AuthMiddleware(apiHandler.UpsertReaderHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/readers/{deviceId}", apiHandler.AuthMiddleware(apiHandler.DeleteReaderHandler)).Methods(http.MethodDelete)

	// live event feed
	router.HandleFunc("/api/events", apiHandler.EventsHandler)

	// stored cover art
	router.PathPrefix("/static/").HandlerFunc(apiHandler.ServeCoverHandler).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second, // play requests block through Wait steps
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server listening", logger.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", logger.ErrorField(err))
	}
}

// buildRegistry wires the channel plugins once at startup. The registry is
// immutable afterwards.
func buildRegistry(cfg *config.Config) *channel.Registry {
	var embyClient *emby.Client
	if cfg.EmbyServerURL != "" {
		embyClient = emby.NewClient(cfg.EmbyServerURL, cfg.EmbyAPIKey, cfg.EmbyUserID)
	} else {
		logger.Warn("no Emby server configured, Emby search disabled")
	}
	return channel.NewRegistry(
		channel.NewEmby(cfg.EmbyChannelID, embyClient),
		channel.NewNetflix(),
		channel.NewPrimeVideo(),
		channel.NewDisneyPlus(),
	)
}

// webProvider returns nil (disabled) when no API key is configured. The
// concrete-nil check matters: a typed nil inside the interface would not
// compare equal to nil in the aggregator.
func webProvider(cfg *config.Config) search.WebProvider {
	p := search.NewBraveProvider(cfg.BraveAPIKey)
	if p == nil {
		logger.Warn("no web search API key configured, web results disabled")
		return nil
	}
	return p
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
