package main

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"rdbackup/config"
	"rdbackup/services"
	"rdbackup/storage"
)

var (
	snapshotsCounter      prometheus.Counter
	snapshotErrorsCounter prometheus.Counter
	triplesWrittenCounter prometheus.Counter
	recordsFailedCounter  prometheus.Counter
)

func init() {
	snapshotsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "snapshots_completed_total",
		Help: "Total number of completed snapshot runs.",
	})
	snapshotErrorsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "snapshots_failed_total",
		Help: "Total number of failed snapshot runs.",
	})
	triplesWrittenCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "snapshot_triples_written_total",
		Help: "Total number of triples written across all snapshot runs.",
	})
	recordsFailedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "snapshot_records_failed_total",
		Help: "Total number of records skipped across all snapshot runs.",
	})
	prometheus.MustRegister(snapshotsCounter, snapshotErrorsCounter, triplesWrittenCounter, recordsFailedCounter)
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Lauf-Historie ist optional; ohne DB-Konfiguration läuft der Dienst
	// zustandslos weiter.
	var ledger *storage.Ledger
	if cfg.LedgerEnabled() {
		db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			logging.Fatal("Failed to connect to ledger database", zap.Error(err))
		}
		ledger, err = storage.NewLedger(db)
		if err != nil {
			logging.Fatal("Ledger migration failed", zap.Error(err))
		}
		logging.Info("Successfully connected to ledger database.")
	}

	ingest := services.NewIngestService(cfg, logging, ledger)

	// Höchstens ein Lauf zur gleichen Zeit; Cron und API teilen sich das Flag.
	var running atomic.Bool
	runSnapshot := func(trigger string) {
		if !running.CompareAndSwap(false, true) {
			logging.Warn("Snapshot läuft bereits, Auslöser ignoriert", zap.String("trigger", trigger))
			return
		}
		defer running.Store(false)

		logging.Info("Snapshot gestartet", zap.String("trigger", trigger))
		result, err := ingest.Run(context.Background())
		if err != nil {
			snapshotErrorsCounter.Inc()
			logging.Error("Snapshot fehlgeschlagen", zap.Error(err))
			return
		}
		snapshotsCounter.Inc()
		triplesWrittenCounter.Add(float64(result.Triples))
		recordsFailedCounter.Add(float64(result.Tally.AccountsFailed + result.Tally.DatasetsFailed +
			result.Tally.CollectionsFailed + result.Tally.GroupsFailed))
	}

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "running": running.Load()})
	})

	router.POST("/snapshot", func(c *gin.Context) {
		if running.Load() {
			c.JSON(http.StatusConflict, gin.H{"error": "snapshot already running"})
			return
		}
		go runSnapshot("api")
		c.JSON(http.StatusAccepted, gin.H{"status": "started"})
	})

	router.GET("/runs", func(c *gin.Context) {
		if ledger == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no ledger database configured"})
			return
		}
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if err != nil || limit <= 0 {
			limit = 20
		}
		runs, err := ledger.Recent(limit)
		if err != nil {
			logging.Error("Database query for runs failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, runs)
	})

	// Setup Cron
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.CronSchedule, func() {
		runSnapshot("cron")
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}
