package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64
	Environment    string

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	PostgresMaxConns int

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisPoolSize int
	RedisTimeout  time.Duration

	// Kafka
	KafkaBrokers    []string
	KafkaGroupID    string
	RiskEventsTopic string

	// HTTP policy
	CORSOrigins        []string
	CORSOriginPattern  string
	RateLimitRPS       int
	RateLimitBurst     int
	PatientsPageLimit  int
	PredictionLogLimit int

	// Dashboard / census continuity
	DashboardCacheTTL  time.Duration
	CensusWindowDays   int
	CensusHorizonDays  int
	CensusCapacity     int
	CensusTrend        int
	CensusNoiseSpread  int
	CensusProjector    string
	CensusExcludeToday bool
	BedCapacity        int

	// Risk scoring / NLP
	DictionaryPath    string
	KnowledgeBasePath string
	ModelArtifactPath string

	// Governance
	PHIRulesPath     string
	QualityRulesPath string
	DriftWindowDays  int
	DriftThreshold   float64
	ProbeTimeout     time.Duration
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8000"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 1024*1024)),
		Environment:    getEnv("ENV", "dev"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "optihealth"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "optihealth"),
		PostgresDB:       getEnv("POSTGRES_DB", "optihealth"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresMaxConns: getIntEnv("POSTGRES_MAX_CONNS", 20),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),
		RedisPoolSize: getIntEnv("REDIS_POOL_SIZE", 10),
		RedisTimeout:  getDuration("REDIS_TIMEOUT", 500*time.Millisecond),

		KafkaBrokers:    getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:    getEnv("KAFKA_GROUP_ID", "optihealth-platform"),
		RiskEventsTopic: getEnv("KAFKA_RISK_TOPIC", "risk.scored"),

		CORSOrigins: getStringSliceEnv("CORS_ORIGINS", []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		}),
		CORSOriginPattern:  getEnv("CORS_ORIGIN_PATTERN", `^https://.*\.vercel\.app$`),
		RateLimitRPS:       getIntEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst:     getIntEnv("RATE_LIMIT_BURST", 100),
		PatientsPageLimit:  getIntEnv("PATIENTS_PAGE_LIMIT", 200),
		PredictionLogLimit: getIntEnv("PREDICTION_LOG_LIMIT", 50),

		DashboardCacheTTL:  getDuration("DASHBOARD_CACHE_TTL", time.Minute),
		CensusWindowDays:   getIntEnv("CENSUS_WINDOW_DAYS", 30),
		CensusHorizonDays:  getIntEnv("CENSUS_HORIZON_DAYS", 7),
		CensusCapacity:     getIntEnv("CENSUS_CAPACITY", 2000),
		CensusTrend:        getIntEnv("CENSUS_TREND", 2),
		CensusNoiseSpread:  getIntEnv("CENSUS_NOISE_SPREAD", 10),
		CensusProjector:    getEnv("CENSUS_PROJECTOR", "drift"),
		CensusExcludeToday: getBoolEnv("CENSUS_EXCLUDE_TODAY", false),
		BedCapacity:        getIntEnv("BED_CAPACITY", 5000),

		DictionaryPath:    getEnv("NLP_DICTIONARY_PATH", ""),
		KnowledgeBasePath: getEnv("SUPPORT_KB_PATH", ""),
		ModelArtifactPath: getEnv("MODEL_ARTIFACT_PATH", "artifacts/risk_model.json"),

		PHIRulesPath:     getEnv("PHI_RULES_PATH", ""),
		QualityRulesPath: getEnv("QUALITY_RULES_PATH", ""),
		DriftWindowDays:  getIntEnv("DRIFT_WINDOW_DAYS", 14),
		DriftThreshold:   getFloatEnv("DRIFT_THRESHOLD", 0.1),
		ProbeTimeout:     getDuration("PROBE_TIMEOUT", 2*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getStringSliceEnv splits a comma separated value, dropping empty entries.
func getStringSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
