package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"ProductCatalog/internal/auth"
	"ProductCatalog/internal/catalog"
	"ProductCatalog/internal/config"
	"ProductCatalog/pkg/kit"
)

const (
	startupTimeout = 15 * time.Second
	flushTimeout   = 10 * time.Second
)

func main() {
	service := "catalog"

	cfg, err := config.Load()
	if err != nil {
		kit.NewLogger(service, "info").Fatal("load config failed", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	persister, closeDB := openPersister(ctx, cfg, log)
	store := catalog.LoadStore(ctx, persister, log)
	cancel()
	defer closeDB()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := catalog.NewMetrics(reg, store)

	saves := catalog.NewSaveQueue(store, persister, cfg.FlushInterval, log, metrics)

	var tokens *auth.TokenMaker
	if cfg.WriteTokenSecret != "" {
		tokens = auth.NewTokenMaker(cfg.WriteTokenSecret)
		log.Info("write routes require admin token")
	}

	s := &catalog.Server{
		Store:          store,
		Saves:          saves,
		Persister:      persister,
		Log:            log,
		MaxUploadBytes: cfg.UploadMaxBytes,
	}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:               log,
		Service:           service,
		Registry:          reg,
		MetricsEnabled:    cfg.MetricsEnabled,
		MetricsToken:      cfg.MetricsToken,
		CORSOrigin:        cfg.CORSOrigin,
		Tokens:            tokens,
		UploadLimitPerMin: cfg.UploadRateLimit,
	})

	ln, err := kit.Listen(cfg.Addr(), cfg.FallbackAddr(), log)
	if err != nil {
		log.Fatal("listen failed", zap.Error(err))
	}

	if err := kit.RunHTTPServer(ln, h, log); err != nil {
		log.Error("http server stopped", zap.Error(err))
	}

	fctx, fcancel := context.WithTimeout(context.Background(), flushTimeout)
	defer fcancel()
	if err := saves.Close(fctx); err != nil {
		log.Error("final save failed", zap.Error(err))
		return
	}
	log.Info("products saved on shutdown", zap.Int("count", store.Len()))
}

func openPersister(ctx context.Context, cfg config.Config, log *zap.Logger) (catalog.Persister, func()) {
	if cfg.Persistence != config.PersistencePostgres {
		log.Info("using json file storage", zap.String("file", cfg.DataFile))
		return catalog.NewFileStore(cfg.DataFile), func() {}
	}

	db, err := catalog.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("open postgres failed", zap.Error(err))
	}

	pg := catalog.NewPostgresStore(db)
	if err := pg.EnsureSchema(ctx); err != nil {
		log.Fatal("ensure schema failed", zap.Error(err))
	}

	log.Info("using postgres storage")
	return pg, func() { _ = db.Close() }
}
