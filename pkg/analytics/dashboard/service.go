// Package dashboard assembles the hospital operations dashboard.
package dashboard

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/optihealth/platform/pkg/analytics/continuity"
	"github.com/optihealth/platform/pkg/common/logger"
	"github.com/optihealth/platform/pkg/common/models"
	"github.com/optihealth/platform/pkg/observability/metrics"
)

const (
	cacheKey          = "dashboard:v1"
	activeWindowDays  = 14
	defaultAvgLOS     = 4.2
	defaultReadmitPct = 12.4
)

var riskLevels = []string{"Low", "Medium", "High", "Critical"}

var readmissionTrend = []models.TrendPoint{
	{Month: "Jul", Rate: 14.2},
	{Month: "Aug", Rate: 13.8},
	{Month: "Sep", Rate: 13.5},
	{Month: "Oct", Rate: 12.9},
	{Month: "Nov", Rate: 12.4},
	{Month: "Dec", Rate: 11.8},
}

// AdmissionStore is the read side of the patients table.
type AdmissionStore interface {
	LatestAdmissionDate(ctx context.Context) (time.Time, bool, error)
	DailyAdmissions(ctx context.Context, from, to time.Time) ([]models.Observation, error)
	CountAdmittedSince(ctx context.Context, since time.Time) (int, error)
	RiskDistribution(ctx context.Context) (map[string]int, error)
}

type FeatureImportanceSource interface {
	FeatureImportance() ([]models.FeatureImportance, error)
}

type Options struct {
	BedCapacity  int
	CacheTTL     time.Duration
	ExcludeToday bool
}

type Service struct {
	store    AdmissionStore
	builder  *continuity.Builder
	features FeatureImportanceSource
	cache    Cache
	opts     Options
	now      func() time.Time
}

// NewService wires the dashboard. features and cache may be nil.
func NewService(store AdmissionStore, builder *continuity.Builder, features FeatureImportanceSource, cache Cache, opts Options) *Service {
	if opts.BedCapacity <= 0 {
		opts.BedCapacity = 5000
	}
	return &Service{store: store, builder: builder, features: features, cache: cache, opts: opts, now: time.Now}
}

// Dashboard never fails: each section falls back to its zero value on error.
func (s *Service) Dashboard(ctx context.Context) models.Dashboard {
	if cached, ok := s.fromCache(ctx); ok {
		return cached
	}

	degraded := false
	anchor, ok, err := s.anchor(ctx)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to resolve dashboard anchor date")
		degraded = true
	}

	d := models.Dashboard{
		CensusData:        []models.CensusPoint{},
		PopulationRisk:    []models.RiskBucket{},
		FeatureImportance: []models.FeatureImportance{},
		ReadmissionTrend:  append([]models.TrendPoint(nil), readmissionTrend...),
	}

	if ok {
		if kpi, err := s.kpi(ctx, anchor); err != nil {
			logger.Log.WithError(err).Error("Failed to compute KPI metrics")
			degraded = true
		} else {
			d.KPI = kpi
		}

		if census, err := s.census(ctx, anchor); err != nil {
			logger.Log.WithError(err).Error("Failed to build census series")
			degraded = true
		} else {
			d.CensusData = census
		}
	}

	if buckets, err := s.populationRisk(ctx); err != nil {
		logger.Log.WithError(err).Error("Failed to aggregate population risk")
		degraded = true
	} else {
		d.PopulationRisk = buckets
	}

	if s.features != nil {
		if fi, err := s.features.FeatureImportance(); err != nil {
			logger.Log.WithError(err).Warn("Failed to load feature importance")
			degraded = true
		} else if fi != nil {
			d.FeatureImportance = fi
		}
	}

	if !degraded {
		s.toCache(ctx, d)
	}
	return d
}

// anchor is the latest admission day, capped at yesterday when today is
// excluded.
func (s *Service) anchor(ctx context.Context) (time.Time, bool, error) {
	latest, ok, err := s.store.LatestAdmissionDate(ctx)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	anchor := day(latest)
	if s.opts.ExcludeToday {
		yesterday := day(s.now().UTC()).AddDate(0, 0, -1)
		if anchor.After(yesterday) {
			anchor = yesterday
		}
	}
	return anchor, true, nil
}

func (s *Service) kpi(ctx context.Context, anchor time.Time) (models.KPIMetrics, error) {
	census, err := s.store.CountAdmittedSince(ctx, anchor.AddDate(0, 0, -activeWindowDays))
	if err != nil {
		return models.KPIMetrics{}, err
	}
	return models.KPIMetrics{
		ActivePatients:        census,
		AvgLOS:                defaultAvgLOS,
		ReadmissionRate:       defaultReadmitPct,
		VirtualBedUtilization: math.Round(float64(census)/float64(s.opts.BedCapacity)*1000) / 10,
	}, nil
}

func (s *Service) census(ctx context.Context, anchor time.Time) ([]models.CensusPoint, error) {
	from := anchor.AddDate(0, 0, -(s.builder.Window() - 1))
	observations, err := s.store.DailyAdmissions(ctx, from, anchor)
	if err != nil {
		return nil, err
	}
	return s.builder.Build(observations, anchor), nil
}

func (s *Service) populationRisk(ctx context.Context) ([]models.RiskBucket, error) {
	dist, err := s.store.RiskDistribution(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(riskLevels))
	for level, n := range dist {
		counts[NormalizeLevel(level)] += n
	}
	buckets := make([]models.RiskBucket, 0, len(riskLevels))
	for _, level := range riskLevels {
		buckets = append(buckets, models.RiskBucket{Name: level, Value: counts[level]})
	}
	return buckets, nil
}

// NormalizeLevel capitalises a stored level and maps "Moderate" to "Medium".
func NormalizeLevel(level string) string {
	level = strings.TrimSpace(level)
	if level == "" {
		return ""
	}
	level = strings.ToUpper(level[:1]) + strings.ToLower(level[1:])
	if level == "Moderate" {
		return "Medium"
	}
	return level
}

func (s *Service) fromCache(ctx context.Context) (models.Dashboard, bool) {
	if s.cache == nil {
		return models.Dashboard{}, false
	}
	raw, ok, err := s.cache.Get(ctx, cacheKey)
	if err != nil {
		metrics.ObserveDashboardCache(metrics.CacheError)
		logger.Log.WithError(err).Warn("Dashboard cache read failed")
		return models.Dashboard{}, false
	}
	if !ok {
		metrics.ObserveDashboardCache(metrics.CacheMiss)
		return models.Dashboard{}, false
	}
	var d models.Dashboard
	if err := json.Unmarshal(raw, &d); err != nil {
		metrics.ObserveDashboardCache(metrics.CacheError)
		logger.Log.WithError(err).Warn("Discarding undecodable dashboard cache entry")
		return models.Dashboard{}, false
	}
	metrics.ObserveDashboardCache(metrics.CacheHit)
	return d, true
}

func (s *Service) toCache(ctx context.Context, d models.Dashboard) {
	if s.cache == nil || s.opts.CacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(d)
	if err != nil {
		logger.Log.WithError(err).Warn("Failed to encode dashboard for cache")
		return
	}
	if err := s.cache.Set(ctx, cacheKey, raw, s.opts.CacheTTL); err != nil {
		logger.Log.WithError(err).Warn("Dashboard cache write failed")
	}
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
