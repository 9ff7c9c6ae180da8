// cmd/advisor-api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"solar-advisor/internal/api"
	"solar-advisor/internal/common/auth"
	awsclient "solar-advisor/internal/common/aws"
	"solar-advisor/internal/common/camunda"
	"solar-advisor/internal/common/config"
	"solar-advisor/internal/common/database"
	"solar-advisor/internal/common/embedding"
	"solar-advisor/internal/common/erp"
	"solar-advisor/internal/common/llm"
	"solar-advisor/internal/common/logger"
	"solar-advisor/internal/common/observability"
	"solar-advisor/internal/common/solar"
	"solar-advisor/internal/common/vectorstore"
	"solar-advisor/internal/login"
	"solar-advisor/internal/manual"
	"solar-advisor/internal/proposals"
	"solar-advisor/internal/quotation"
	"solar-advisor/internal/recommendation"
	"solar-advisor/internal/triage"
	"solar-advisor/pkg/catalog"

	rs "solar-advisor/internal/workers/recommendation/recommend-system"
	gq "solar-advisor/internal/workers/sales/generate-quotation"
)

const (
	connectRetries  = 10
	connectInterval = 2 * time.Second
	pingTimeout     = 5 * time.Second
	shutdownTimeout = 30 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// the real logger depends on config
		logger.New("info", "console").Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	zapLog.Info("Starting advisor API...", zap.String("environment", cfg.App.Environment))

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("observability disabled", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres client failed", zap.Error(err))
	}
	defer pg.Close()
	if err := database.WaitFor(ctx, pg, connectRetries, connectInterval, pingTimeout); err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	rdb := database.NewRedis(cfg.Database.Redis)
	defer rdb.Close()
	if err := database.WaitFor(ctx, rdb, connectRetries, connectInterval, pingTimeout); err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	zapLog.Info("Redis connected successfully")

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		zapLog.Fatal("elasticsearch client failed", zap.Error(err))
	}
	if err := database.WaitFor(ctx, es, connectRetries, connectInterval, pingTimeout); err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	proposalStore := proposals.NewStore(pg.DB, log)
	if err := proposalStore.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("proposals schema failed", zap.Error(err))
	}

	// --- Outbound clients ---
	llmClient := llm.NewClient(cfg.LLM)

	embedClient, err := embedding.NewClient(cfg.Embedding)
	if err != nil {
		zapLog.Fatal("embedding client failed", zap.Error(err))
	}
	var embedder embedding.Embedder = embedClient
	if cfg.Embedding.CacheTTL > 0 {
		embedder = embedding.NewCachedEmbedder(embedClient, rdb.Client, embedClient.Model(),
			time.Duration(cfg.Embedding.CacheTTL)*time.Second, log)
	}

	erpClient := erp.NewClient(cfg.ERP)
	solarClient := solar.NewClient(cfg.Solar)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)

	var mailer login.Mailer = login.LogMailer{Logger: log}
	if cfg.Integrations.AWS.SES.Enabled {
		ses, err := awsclient.NewSESMailer(ctx, cfg.Integrations.AWS.Region, cfg.Integrations.AWS.SES.FromEmail)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		mailer = ses
	}
	loginOpts := login.Options{
		CodeLength:       cfg.Auth.CodeLength,
		TestAccountEmail: cfg.Auth.TestAccountEmail,
	}
	if cfg.Integrations.AWS.SNS.Enabled {
		sns, err := awsclient.NewSNSSender(ctx, cfg.Integrations.AWS.Region, cfg.Integrations.AWS.SNS.DefaultSMSSenderID)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		loginOpts.SMS = sns
	}

	zapLog.Info("All external service clients initialized")

	// --- Domain services ---
	cat, err := catalog.Load(cfg.Recommendation.CatalogPath)
	if err != nil {
		zapLog.Fatal("catalog load failed", zap.Error(err))
	}

	searchTimeout := config.GetDuration(cfg.Recommendation.SearchTimeout)
	llmTimeout := config.GetDuration(cfg.LLM.Timeout)

	productRetriever := recommendation.NewRetriever(embedder,
		vectorstore.NewStore(es.Client, cfg.Database.Elasticsearch.Index, cfg.Embedding.Dimensions),
		searchTimeout, log)
	manualRetriever := recommendation.NewRetriever(embedder,
		vectorstore.NewStore(es.Client, cfg.Database.Elasticsearch.ManualIndex, cfg.Embedding.Dimensions),
		searchTimeout, log)

	synthesisLLM := llmClient
	if cfg.Recommendation.SynthesisModel != "" {
		synthesisLLM = llmClient.WithModel(cfg.Recommendation.SynthesisModel)
	}
	recommender := recommendation.NewService(
		productRetriever,
		recommendation.NewSynthesizer(synthesisLLM, cat, llmTimeout, log),
		cat, cfg.Recommendation.TopK, obs, log,
	)
	quoter := quotation.NewService(erpClient, log)
	codes := login.NewCodeStore(rdb.Client, time.Duration(cfg.Auth.CodeTTLSeconds)*time.Second)

	server := api.NewServer(api.Deps{
		Recommender: recommender,
		Triage:      triage.NewService(llmClient, llmTimeout, log),
		Manual:      manual.NewService(manualRetriever, llmClient, llmTimeout, log),
		Solar:       solarClient,
		ERP:         erpClient,
		Quotation:   quoter,
		Login:       login.NewService(erpClient, codes, mailer, tokens, loginOpts, log),
		Proposals:   proposalStore,
		Tokens:      tokens,
		ReadinessChecks: map[string]database.Pinger{
			"postgres":      pg,
			"redis":         rdb,
			"elasticsearch": es,
		},
	}, api.Options{
		ServiceName:    cfg.App.Name,
		Version:        cfg.App.Version,
		RequestTimeout: config.GetDuration(cfg.Server.RequestTimeout),
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, log)

	// --- Job workers ---
	var workers []worker.JobWorker
	if cfg.Camunda.Enabled {
		zeebe, err := camunda.Connect(ctx, cfg.Camunda, connectRetries, log)
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer zeebe.Close()
		zapLog.Info("Zeebe client connected successfully")

		server.ReadinessChecks["zeebe"] = zeebe

		if wcfg, ok := cfg.Workers[rs.TaskType]; ok {
			handler := rs.NewHandler(&rs.Config{Timeout: config.GetDuration(wcfg.Timeout)}, recommender, log)
			if w := camunda.StartWorker(zeebe.Zeebe(), rs.TaskType, wcfg, handler, log); w != nil {
				workers = append(workers, w)
			}
		}
		if wcfg, ok := cfg.Workers[gq.TaskType]; ok {
			handler := gq.NewHandler(&gq.Config{Timeout: config.GetDuration(wcfg.Timeout)}, quoter, log)
			if w := camunda.StartWorker(zeebe.Zeebe(), gq.TaskType, wcfg, handler, log); w != nil {
				workers = append(workers, w)
			}
		}
		zapLog.Info("Job workers started", zap.Int("count", len(workers)))
	}

	// --- HTTP ---
	httpServer := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLog.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}
	for _, w := range workers {
		w.Close()
		w.AwaitClose()
	}
	if obs != nil {
		if err := obs.Shutdown(shutdownCtx); err != nil {
			zapLog.Warn("observability shutdown failed", zap.Error(err))
		}
	}

	zapLog.Info("Advisor API stopped")
}
