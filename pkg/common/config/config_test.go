package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8000", cfg.ServerPort)
	assert.Equal(t, 30, cfg.CensusWindowDays)
	assert.Equal(t, 7, cfg.CensusHorizonDays)
	assert.Equal(t, 2000, cfg.CensusCapacity)
	assert.Equal(t, 2, cfg.CensusTrend)
	assert.Equal(t, "drift", cfg.CensusProjector)
	assert.False(t, cfg.CensusExcludeToday)
	assert.Equal(t, time.Minute, cfg.DashboardCacheTTL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CENSUS_WINDOW_DAYS", "14")
	t.Setenv("CENSUS_EXCLUDE_TODAY", "true")
	t.Setenv("DASHBOARD_CACHE_TTL", "5s")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("CENSUS_CAPACITY", "not-a-number")

	cfg := Load()

	assert.Equal(t, 14, cfg.CensusWindowDays)
	assert.True(t, cfg.CensusExcludeToday)
	assert.Equal(t, 5*time.Second, cfg.DashboardCacheTTL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2000, cfg.CensusCapacity)
}

func TestLoadGovernance(t *testing.T) {
	t.Setenv("DRIFT_THRESHOLD", "0.25")
	t.Setenv("PROBE_TIMEOUT", "bogus")

	cfg := Load()

	assert.Equal(t, 0.25, cfg.DriftThreshold)
	assert.Equal(t, 14, cfg.DriftWindowDays)
	assert.Equal(t, 2*time.Second, cfg.ProbeTimeout)
}

func TestLoadPools(t *testing.T) {
	t.Setenv("POSTGRES_MAX_CONNS", "40")
	t.Setenv("REDIS_TIMEOUT", "250ms")

	cfg := Load()

	assert.Equal(t, 40, cfg.PostgresMaxConns)
	assert.Equal(t, 10, cfg.RedisPoolSize)
	assert.Equal(t, 250*time.Millisecond, cfg.RedisTimeout)
}
