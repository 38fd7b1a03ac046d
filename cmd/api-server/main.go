package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/optihealth/platform/pkg/analytics/continuity"
	"github.com/optihealth/platform/pkg/analytics/dashboard"
	"github.com/optihealth/platform/pkg/clinical"
	"github.com/optihealth/platform/pkg/common/config"
	"github.com/optihealth/platform/pkg/common/database"
	"github.com/optihealth/platform/pkg/common/kafka"
	"github.com/optihealth/platform/pkg/common/logger"
	"github.com/optihealth/platform/pkg/dlp"
	"github.com/optihealth/platform/pkg/gateway/middleware"
	"github.com/optihealth/platform/pkg/governance"
	"github.com/optihealth/platform/pkg/ml"
	"github.com/optihealth/platform/pkg/observability/metrics"
	"github.com/optihealth/platform/pkg/patients"
	"github.com/optihealth/platform/pkg/risk"
	"github.com/optihealth/platform/pkg/support"
)

const version = "v2.0.0"

func main() {
	logger.Init()
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to connect to database")
	}
	defer database.ClosePostgres()

	patientRepo := patients.NewRepository(db)
	predictionLogs := risk.NewRepository(db)
	ticketRepo := support.NewTicketRepository(db)
	for name, migrate := range map[string]func() error{
		"patients":        patientRepo.AutoMigrate,
		"prediction_logs": predictionLogs.AutoMigrate,
		"tickets":         ticketRepo.AutoMigrate,
	} {
		if err := migrate(); err != nil {
			logger.Log.WithError(err).WithField("table", name).Fatal("Failed to migrate table")
		}
	}

	redisClient := database.GetRedis()
	defer database.CloseRedis()

	producer := kafka.NewProducer(cfg.RiskEventsTopic)
	defer producer.Close()

	dictionaries, err := clinical.LoadDictionaries(cfg.DictionaryPath)
	if err != nil {
		if len(dictionaries.Dictionaries) == 0 {
			logger.Log.WithError(err).Fatal("Failed to load keyword dictionaries")
		}
		logger.Log.WithError(err).Warn("Using built-in keyword dictionaries")
	}
	analyzer, err := clinical.NewAnalyzer(dictionaries)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to compile keyword dictionaries")
	}
	riskExtractor, ok := analyzer.Extractor(clinical.DictionaryRisk)
	if !ok {
		logger.Log.WithField("dictionary", clinical.DictionaryRisk).Fatal("Risk keyword dictionary not configured")
	}
	engine := risk.NewEngine(riskExtractor)

	phiRules, err := dlp.LoadRules(cfg.PHIRulesPath)
	if err != nil {
		if len(phiRules.Rules) == 0 {
			logger.Log.WithError(err).Fatal("Failed to load PHI rules")
		}
		logger.Log.WithError(err).Warn("Using built-in PHI rules")
	}
	detector, err := dlp.NewDetector(phiRules)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to compile PHI rules")
	}

	riskService := risk.NewService(engine, producer, risk.WithSanitizer(detector))
	patientService := patients.NewService(patientRepo, engine, cfg.PatientsPageLimit)

	builder := continuity.NewBuilder(
		continuity.WithWindow(cfg.CensusWindowDays),
		continuity.WithHorizon(cfg.CensusHorizonDays),
		continuity.WithCapacity(cfg.CensusCapacity),
		continuity.WithProjector(continuity.NewProjector(cfg.CensusProjector, cfg.CensusTrend, continuity.UniformNoise(cfg.CensusNoiseSpread))),
	)
	modelStore := ml.NewStore(cfg.ModelArtifactPath)
	dashboardService := dashboard.NewService(patientRepo, builder, modelStore, dashboard.NewRedisCache(redisClient), dashboard.Options{
		BedCapacity:  cfg.BedCapacity,
		CacheTTL:     cfg.DashboardCacheTTL,
		ExcludeToday: cfg.CensusExcludeToday,
	})

	kb, err := support.LoadKnowledgeBase(cfg.KnowledgeBasePath)
	if err != nil {
		if len(kb.Answers) == 0 {
			logger.Log.WithError(err).Fatal("Failed to load support knowledge base")
		}
		logger.Log.WithError(err).Warn("Using built-in support knowledge base")
	}
	supportService := support.NewService(kb, support.NewStatusBoard(), ticketRepo)

	qualityRules, err := governance.LoadQualityRules(cfg.QualityRulesPath)
	if err != nil {
		if len(qualityRules.Rules) == 0 {
			logger.Log.WithError(err).Fatal("Failed to load quality rules")
		}
		logger.Log.WithError(err).Warn("Using built-in quality rules")
	}
	governanceRepo := governance.NewRepository(db)
	monitor := governance.NewMonitor(cfg.ProbeTimeout, dependencyProbes(cfg, modelStore)...)

	router := mux.NewRouter()

	// Middleware
	router.Use(middleware.Logging)
	router.Use(middleware.Recovery)
	router.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	router.Use(middleware.BodyLimit(cfg.MaxRequestBody))

	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "operational",
			"version": version,
			"env":     cfg.Environment,
		})
	}).Methods("GET")

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods("GET")

	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	// API routes
	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(middleware.Metrics)
	dashboard.NewHTTPHandler(dashboardService).Register(apiRouter)
	patients.NewHTTPHandler(patientService, cfg.MaxRequestBody).Register(apiRouter)
	risk.NewHTTPHandler(riskService, predictionLogs, cfg.MaxRequestBody, cfg.PredictionLogLimit).Register(apiRouter)
	clinical.NewHTTPHandler(analyzer, cfg.MaxRequestBody).Register(apiRouter)
	support.NewHTTPHandler(supportService, cfg.MaxRequestBody).Register(apiRouter)
	governance.NewHTTPHandler(
		monitor,
		governance.NewQualityChecker(governanceRepo, qualityRules),
		governance.NewDriftAnalyzer(governanceRepo, cfg.DriftWindowDays, cfg.DriftThreshold),
		detector,
		cfg.MaxRequestBody,
	).Register(apiRouter)

	// CORS wraps the router so preflight requests never reach route matching.
	handler := middleware.CORS(cfg.CORSOrigins, cfg.CORSOriginPattern)(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
			"env":  cfg.Environment,
		}).Info("OptiHealth API started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down OptiHealth API...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	logger.Log.Info("OptiHealth API stopped")
}
