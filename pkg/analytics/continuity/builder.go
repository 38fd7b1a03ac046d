// Package continuity turns sparse daily admission counts into a gap-free
// census history followed by a bridged forward projection.
package continuity

import (
	"fmt"
	"time"

	"github.com/optihealth/platform/pkg/common/logger"
	"github.com/optihealth/platform/pkg/common/models"
	"github.com/optihealth/platform/pkg/observability/metrics"
)

// Defaults applied by NewBuilder when no option overrides them.
const (
	DefaultWindowDays  = 30
	DefaultHorizonDays = 7
	DefaultCapacity    = 2000
	DefaultTrend       = 2
	DefaultNoiseSpread = 10
)

// Option configures a Builder.
type Option func(*Builder)

// WithWindow sets the number of historical days; non-positive values are ignored.
func WithWindow(days int) Option {
	return func(b *Builder) {
		if days > 0 {
			b.windowDays = days
		}
	}
}

// WithHorizon sets the number of projected days; zero disables projection.
func WithHorizon(days int) Option {
	return func(b *Builder) {
		if days >= 0 {
			b.horizonDays = days
		}
	}
}

// WithCapacity sets the capacity line stamped on every point.
func WithCapacity(capacity int) Option {
	return func(b *Builder) { b.capacity = capacity }
}

// WithProjector replaces the default drift projector.
func WithProjector(p Projector) Option {
	return func(b *Builder) {
		if p != nil {
			b.projector = p
		}
	}
}

// WithNoise pins the noise source of a drift projector, keeping its trend.
// Other projectors are left untouched regardless of option order.
func WithNoise(noise NoiseSource) Option {
	return func(b *Builder) {
		if p, ok := b.projector.(DriftProjector); ok {
			p.Noise = noise
			b.projector = p
		}
	}
}

// Builder is immutable after construction and safe for concurrent use as
// long as its projector is.
type Builder struct {
	windowDays  int
	horizonDays int
	capacity    int
	projector   Projector
}

// NewBuilder applies opts over the defaults: 30-day window, 7-day horizon
// and a drift projector with uniform noise.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		windowDays:  DefaultWindowDays,
		horizonDays: DefaultHorizonDays,
		capacity:    DefaultCapacity,
		projector:   DriftProjector{Trend: DefaultTrend, Noise: UniformNoise(DefaultNoiseSpread)},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Window is the number of historical days in every non-empty series.
func (b *Builder) Window() int {
	return b.windowDays
}

// Build returns windowDays of carried-forward history ending at anchor, the
// last of which also carries the first predicted value, followed by
// horizonDays of projection. No observations yields an empty series; so does
// any internal fault.
func (b *Builder) Build(observations []models.Observation, anchor time.Time) (points []models.CensusPoint) {
	if len(observations) == 0 {
		metrics.ObserveCensusBuild(metrics.OutcomeEmpty)
		return []models.CensusPoint{}
	}

	defer func() {
		if r := recover(); r != nil {
			logger.WithFields(map[string]interface{}{
				"panic":        fmt.Sprint(r),
				"observations": len(observations),
				"anchor":       anchor.Format(models.DateLayout),
			}).Error("Census continuity build failed")
			metrics.ObserveCensusBuild(metrics.OutcomeDegraded)
			points = []models.CensusPoint{}
		}
	}()

	end := calendarDay(anchor)
	start := end.AddDate(0, 0, -(b.windowDays - 1))

	counts := make(map[time.Time]int, len(observations))
	for _, obs := range observations {
		day := calendarDay(obs.Date)
		if day.Before(start) || day.After(end) {
			continue
		}
		counts[day] = obs.Count
	}

	history := carryForward(start, b.windowDays, counts)

	points = make([]models.CensusPoint, 0, len(history)+b.horizonDays)
	for i, v := range history {
		points = append(points, models.CensusPoint{
			Date:     start.AddDate(0, 0, i),
			Actual:   intPtr(v),
			Capacity: b.capacity,
		})
	}

	last := history[len(history)-1]
	points[len(points)-1].Predicted = intPtr(last)

	projected := b.projector.Project(history, b.horizonDays)
	for i, v := range projected {
		points = append(points, models.CensusPoint{
			Date:      end.AddDate(0, 0, i+1),
			Predicted: intPtr(v),
			Capacity:  b.capacity,
		})
	}

	metrics.ObserveCensusBuild(metrics.OutcomeOK)
	return points
}

// carryForward resolves each day of the window as a left fold: a missing or
// zero count takes the previous day's resolved value, and the fold starts at 0.
func carryForward(start time.Time, days int, counts map[time.Time]int) []int {
	resolved := make([]int, 0, days)
	carried := 0
	for i := 0; i < days; i++ {
		v, ok := counts[start.AddDate(0, 0, i)]
		if !ok || v == 0 {
			v = carried
		}
		resolved = append(resolved, v)
		carried = v
	}
	return resolved
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int {
	return &v
}
