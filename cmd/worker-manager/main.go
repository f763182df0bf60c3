// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"jobposting-workers/internal/common/auth"
	"jobposting-workers/internal/common/aws"
	"jobposting-workers/internal/common/camunda"
	"jobposting-workers/internal/common/config"
	"jobposting-workers/internal/common/database"
	"jobposting-workers/internal/common/logger"
	"jobposting-workers/internal/common/observability"
	"jobposting-workers/internal/common/sharepoint"
	"jobposting-workers/internal/jobposting"

	cds "jobposting-workers/internal/workers/jobposting/create-document-set"
	ld "jobposting-workers/internal/workers/jobposting/list-departments"
	ljt "jobposting-workers/internal/workers/jobposting/list-job-templates"
	sjn "jobposting-workers/internal/workers/jobposting/send-job-posting-notification"
)

const serviceName = "jobposting-workers"

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("site", cfg.SharePoint.SiteURL),
		zap.Strings("departmentLibraries", cfg.JobPosting.DepartmentLibraries),
	)

	obs, err := observability.New(serviceName, cfg.Observability.TraceSampleRatio)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Zeebe ---
	zeebe, err := camunda.Connect(ctx, cfg.Camunda, camunda.DefaultRetryConfig, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- SharePoint ---
	var httpClient *http.Client
	if cfg.SharePoint.ClientID == "" {
		zapLog.Warn("sharepoint client credentials not configured, requests are unauthenticated")
		httpClient = auth.NewHTTPClient(ctx, nil)
	} else {
		ts, err := auth.NewTokenSource(ctx, cfg.SharePoint)
		if err != nil {
			zapLog.Fatal("sharepoint token source failed", zap.Error(err))
		}
		httpClient = auth.NewHTTPClient(ctx, ts)
	}
	sp, err := sharepoint.NewClient(cfg.SharePoint.SiteURL, httpClient, config.GetDuration(cfg.SharePoint.Timeout), log)
	if err != nil {
		zapLog.Fatal("sharepoint client failed", zap.Error(err))
	}

	// --- Optional stores ---
	retry := camunda.RetryConfig{MaxAttempts: 15, InitialDelay: 2 * time.Second, MaxDelay: 30 * time.Second}

	var audit cds.AuditRecorder
	var pg *database.PostgresClient
	if cfg.Database.Postgres.Enabled() {
		err = camunda.Retry(ctx, retry, log, "postgres connection", func(ctx context.Context) error {
			var err error
			if pg == nil {
				if pg, err = database.NewPostgres(cfg.Database.Postgres); err != nil {
					return err
				}
			}
			return pg.Ping(ctx)
		})
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		store := jobposting.NewAuditStore(pg.DB)
		if err := store.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("audit schema failed", zap.Error(err))
		}
		audit = store
		zapLog.Info("PostgreSQL audit store ready")
	}

	var cache jobposting.DivisionCache
	var rdb *database.RedisClient
	if cfg.Database.Redis.Enabled() {
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			zapLog.Fatal("redis client failed", zap.Error(err))
		}
		if err := camunda.Retry(ctx, retry, log, "redis connection", rdb.Ping); err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		cache = jobposting.NewRedisDivisionCache(rdb.Client, cfg.JobPosting.DivisionCacheDuration())
		zapLog.Info("Redis division cache ready")
	}

	var catalog cds.Indexer
	if cfg.Database.Elasticsearch.Enabled() {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch, nil)
		if err != nil {
			zapLog.Fatal("elasticsearch client failed", zap.Error(err))
		}
		if err := camunda.Retry(ctx, retry, log, "elasticsearch connection", es.Ping); err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		catalog = jobposting.NewCatalog(es.Client, cfg.Database.Elasticsearch.Index)
		zapLog.Info("Elasticsearch catalog ready")
	}

	// --- Notifications ---
	var mailer sjn.EmailSender
	var publisher sjn.EventPublisher
	if cfg.Notifications.FromEmail != "" || cfg.Notifications.TopicARN != "" {
		awsCfg, err := aws.LoadConfig(ctx, cfg.Notifications.AWSRegion)
		if err != nil {
			zapLog.Fatal("aws config failed", zap.Error(err))
		}
		if cfg.Notifications.FromEmail != "" {
			mailer = aws.NewSESMailer(awsCfg, cfg.Notifications.FromEmail)
		}
		if cfg.Notifications.TopicARN != "" {
			publisher = aws.NewSNSPublisher(awsCfg, cfg.Notifications.TopicARN)
		}
	}

	// --- Job posting components ---
	jp := cfg.JobPosting
	access := jobposting.NewAccessResolver(sp, jp.DepartmentLibraries, jp.TemplateLibrary, log)
	taxonomy := jobposting.NewTaxonomyLoader(sp, jp.DivisionField, cache, log)
	templates := jobposting.NewTemplateLocator(sp, jp.TemplateLibrary, jp.TemplateFolder, jp.ExtraTemplateSuffix, log)
	provisioner := jobposting.NewProvisioner(sp, templates, jobposting.ProvisionerConfig{
		ContentTypeGroups: jp.ContentTypeGroups,
		RequisitionMarker: jp.RequisitionMarker,
		CopyConcurrency:   jp.CopyConcurrency,
	}, log)

	// --- Workers ---
	workers := camunda.NewWorkers(zeebe.Zeebe(), log)

	{
		wcfg := config.GetWorkerConfig(cfg, ld.TaskType)
		hcfg := ld.LoadConfig()
		hcfg.Timeout = jobTimeout(wcfg, hcfg.Timeout)
		workers.Start(ld.TaskType, wcfg, ld.NewHandler(hcfg, access, taxonomy, obs, log))
	}
	{
		wcfg := config.GetWorkerConfig(cfg, ljt.TaskType)
		hcfg := ljt.LoadConfig()
		hcfg.Timeout = jobTimeout(wcfg, hcfg.Timeout)
		workers.Start(ljt.TaskType, wcfg, ljt.NewHandler(hcfg, templates, obs, log))
	}
	{
		wcfg := config.GetWorkerConfig(cfg, cds.TaskType)
		hcfg := cds.LoadConfig()
		hcfg.Timeout = jobTimeout(wcfg, hcfg.Timeout)
		workers.Start(cds.TaskType, wcfg, cds.NewHandler(hcfg, provisioner, audit, catalog, obs, log))
	}
	{
		wcfg := config.GetWorkerConfig(cfg, sjn.TaskType)
		hcfg := sjn.LoadConfig()
		hcfg.Timeout = jobTimeout(wcfg, hcfg.Timeout)
		hcfg.EmailEnabled = mailer != nil
		hcfg.EventEnabled = publisher != nil
		workers.Start(sjn.TaskType, wcfg, sjn.NewHandler(hcfg, mailer, publisher, obs, log))
	}
	zapLog.Info("Workers registered", zap.Strings("taskTypes", workers.Running()))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := zeebe.HealthCheck(r.Context()); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.Observability.MetricsAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	workers.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing telemetry", zap.Error(err))
	}
	if pg != nil {
		_ = pg.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// jobTimeout prefers the per-worker timeout from config over the handler default.
func jobTimeout(wcfg config.WorkerConfig, fallback time.Duration) time.Duration {
	if wcfg.Timeout > 0 {
		return config.GetDuration(wcfg.Timeout)
	}
	return fallback
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}
