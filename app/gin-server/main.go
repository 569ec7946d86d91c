package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yoockh/leadintake/config"
	"github.com/yoockh/leadintake/internal/api/handlers"
	"github.com/yoockh/leadintake/internal/api/middleware"
	"github.com/yoockh/leadintake/internal/api/routes"
	"github.com/yoockh/leadintake/internal/cache"
	"github.com/yoockh/leadintake/internal/delivery"
	"github.com/yoockh/leadintake/internal/logger"
	"github.com/yoockh/leadintake/internal/metrics"
	mongorepo "github.com/yoockh/leadintake/internal/repositories/mongo"
	pgrepo "github.com/yoockh/leadintake/internal/repositories/postgres"
	"github.com/yoockh/leadintake/internal/services"
	"github.com/yoockh/leadintake/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Every backend is optional; interfaces stay nil when one is missing.
	var apps pgrepo.ApplicationRepository
	db, err := config.NewPostgres(cfg.DatabaseURL)
	switch {
	case errors.Is(err, config.ErrNotConfigured):
		log.Warn("DATABASE_URL not set; applications will not be stored")
	case err != nil:
		log.WithError(err).Error("postgres unavailable; applications will not be stored")
	default:
		defer func() { _ = config.ClosePostgres(db) }()
		apps = pgrepo.NewApplicationRepo(db)
		log.Info("postgres connected")
	}

	var audit mongorepo.DeliveryLogRepository
	mc, err := config.NewMongo(ctx, cfg.MongoURI)
	switch {
	case errors.Is(err, config.ErrNotConfigured):
		log.Info("MONGO_URI not set; delivery audit log disabled")
	case err != nil:
		log.WithError(err).Warn("mongo unavailable; delivery audit log disabled")
	default:
		defer disconnectMongo(mc, log)
		mdb := mc.Database(cfg.MongoDB)
		if err := config.EnsureMongoIndexes(ctx, mdb); err != nil {
			log.WithError(err).Warn("mongo index setup failed")
		}
		audit = mongorepo.NewDeliveryRepo(mdb, config.DeliveryLogCollection)
		log.Info("mongo connected")
	}

	var listing cache.Cache = cache.NewMemoryCache(0)
	rdb, err := config.NewRedis(ctx, cfg.RedisURL)
	switch {
	case errors.Is(err, config.ErrNotConfigured):
	case err != nil:
		log.WithError(err).Warn("redis unavailable; admin listing cache is in-process")
	default:
		defer rdb.Close()
		listing = cache.NewRedisCache(rdb)
		log.Info("redis connected")
	}

	presigner := newPresigner(ctx, cfg.Storage, log)
	if c, ok := presigner.(io.Closer); ok {
		defer c.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.MustNewMetrics(reg)

	httpClient := &http.Client{Timeout: delivery.DefaultTimeout}
	var email delivery.Sender
	if cfg.Email.Configured() {
		email = delivery.NewEmail(cfg.Email.APIURL, cfg.Email.APIKey, cfg.Email.From, splitRecipients(cfg.Email.To), httpClient)
	}
	fanout := func(webhookURL string) *delivery.Fanout {
		f := &delivery.Fanout{Email: email, Timeout: delivery.DefaultTimeout, Logger: log, Metrics: m}
		if webhookURL != "" {
			f.Webhook = delivery.NewWebhook(webhookURL, httpClient)
		}
		return f
	}

	intake := services.NewIntakeService(services.IntakeConfig{
		TenantID:             cfg.TenantID,
		ResumeMaxBytes:       cfg.ResumeMaxBytes,
		SubjectPrefix:        cfg.Email.SubjectPrefix,
		ReplyToFallback:      cfg.Email.ReplyToFallback,
		PublicBaseURL:        cfg.PublicBaseURL,
		DeliveryLogRetention: cfg.DeliveryLogRetention,
	}, services.IntakeDeps{
		Applications: apps,
		Audit:        audit,
		Cache:        listing,
		Quotes:       fanout(cfg.QuoteWebhookURL),
		Careers:      fanout(cfg.CareersWebhookURL),
		Logger:       log,
		Metrics:      m,
	})
	upload := services.NewUploadService(presigner, cfg.ResumeMaxBytes, log, m)
	review := services.NewReviewService(cfg.TenantID, apps, audit, presigner, listing, log)

	if !cfg.AdminConfigured() {
		log.Warn("ADMIN_USERNAME/ADMIN_PASSWORD not set; admin routes will return 503")
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	err = routes.RegisterRoutes(r, routes.Deps{
		Quote:         handlers.NewQuoteHandler(intake),
		Careers:       handlers.NewCareersHandler(intake, upload),
		Admin:         handlers.NewAdminHandler(review),
		AdminUsername: cfg.AdminUsername,
		AdminPassword: cfg.AdminPassword,
		RateLimit: middleware.RateLimitConfig{
			RequestsPerMinute: cfg.RateLimitPerMinute,
			Burst:             cfg.RateLimitBurst,
		},
		AllowedOrigins: cfg.CORSAllowedOrigins,
		TrustedProxies: cfg.TrustedProxies,
		Gatherer:       reg,
	})
	if err != nil {
		log.WithError(err).Fatal("invalid TRUSTED_PROXIES")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

// newPresigner returns nil when storage is not configured so upload and
// download paths answer 503 instead of failing later.
func newPresigner(ctx context.Context, sc config.StorageConfig, log *logrus.Logger) storage.Presigner {
	if !sc.Configured() {
		log.Warn("resume storage not configured; uploads disabled")
		return nil
	}

	switch sc.Provider {
	case "gcs":
		p, err := storage.NewGCSPresigner(ctx, sc.Bucket, sc.GCSCredentialsFile)
		if err != nil {
			log.WithError(err).Error("gcs presigner unavailable; uploads disabled")
			return nil
		}
		return p
	case "s3":
		p, err := storage.NewS3Presigner(ctx, storage.S3Options{
			Bucket:          sc.Bucket,
			Region:          sc.Region,
			Endpoint:        sc.Endpoint,
			AccessKeyID:     sc.AccessKeyID,
			SecretAccessKey: sc.SecretAccessKey,
		})
		if err != nil {
			log.WithError(err).Error("s3 presigner unavailable; uploads disabled")
			return nil
		}
		return p
	default:
		log.WithField("provider", sc.Provider).Error("unknown STORAGE_PROVIDER; uploads disabled")
		return nil
	}
}

func disconnectMongo(c *mongo.Client, log *logrus.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Disconnect(ctx); err != nil {
		log.WithError(err).Warn("mongo disconnect failed")
	}
}

func splitRecipients(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
