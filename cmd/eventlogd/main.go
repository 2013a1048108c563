// Command eventlogd runs the ingestion and query HTTP server: it loads
// configuration from the environment, opens the event store and the
// reference-data store, wires the query engine, and serves the §6.2
// HTTP surface until it receives SIGINT or SIGTERM.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventlog.dev/service/authtoken"
	"eventlog.dev/service/config"
	"eventlog.dev/service/httpapi"
	"eventlog.dev/service/logging"
	"eventlog.dev/service/query"
	"eventlog.dev/service/store"
	"eventlog.dev/service/version"
)

func main() {
	log := logging.New(logging.DefaultConfig("eventlogd"))

	cfg, err := config.LoadEventLogConfig("EVENTLOG")
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	log.WithField("version", version.GetServiceVersion()).Info("starting eventlogd")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eventStore, err := store.NewStore(ctx, cfg.Database.URL)
	if err != nil {
		log.WithError(err).Fatal("failed to open event store")
	}
	defer eventStore.Close()

	linkStore, err := store.NewLinkStore(cfg.Database.URL)
	if err != nil {
		log.WithError(err).Fatal("failed to open reference-data store")
	}
	defer linkStore.Close()

	var cache *query.DashboardCache
	if cfg.RedisURL != "" {
		cache, err = query.NewDashboardCache(ctx, query.CacheConfig{
			RedisURL:  cfg.RedisURL,
			KeyPrefix: "eventlog:dashboard",
			TTL:       30 * time.Second,
		})
		if err != nil {
			log.WithError(err).Fatal("failed to connect to dashboard cache")
		}
		defer cache.Close()
	}

	engine := query.New(eventStore.Pool(), cache, cfg.FulltextEnabled, log)

	serverCfg := httpapi.DefaultServerConfig()
	serverCfg.Port = cfg.Server.Port
	serverCfg.Debug = cfg.Server.Debug
	serverCfg.ReadTimeout = cfg.Server.ReadTimeout
	serverCfg.WriteTimeout = cfg.Server.WriteTimeout
	serverCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	serverCfg.AllowedOrigins = cfg.CORS.AllowedOrigins
	serverCfg.MaxPayloadSizeBytes = cfg.MaxPayloadSizeBytes

	if cfg.Auth.JWTSecret != "" {
		serverCfg.JWTValidator = authtoken.NewValidator(cfg.Auth.JWTSecret, "eventlogd")
	}

	e := httpapi.NewServer(serverCfg, &httpapi.Handlers{
		Store: eventStore,
		Links: linkStore,
		Query: engine,
		Log:   log,
	})

	go func() {
		if err := httpapi.StartServer(e, serverCfg); err != nil {
			log.WithError(err).Info("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down eventlogd")
	if err := httpapi.GracefulShutdown(e, serverCfg.ShutdownTimeout); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
