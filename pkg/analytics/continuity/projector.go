package continuity

import (
	"math"

	"github.com/optihealth/platform/pkg/ml/linear"
)

// Projector extends a resolved history by horizon days. Implementations only
// produce the predicted values; dates and bridging are handled by the Builder.
type Projector interface {
	Project(history []int, horizon int) []int
}

// DriftProjector is a random walk: each day is the previous day plus a fixed
// trend plus noise, floored at zero.
type DriftProjector struct {
	Trend int
	Noise NoiseSource
}

func (p DriftProjector) Project(history []int, horizon int) []int {
	if len(history) == 0 || horizon <= 0 {
		return nil
	}
	noise := p.Noise
	if noise == nil {
		noise = FixedNoise(0)
	}
	out := make([]int, 0, horizon)
	last := history[len(history)-1]
	for i := 0; i < horizon; i++ {
		next := max(0, last+p.Trend+noise.Next())
		out = append(out, next)
		last = next
	}
	return out
}

// LinearProjector extrapolates a least-squares line fitted through the history.
type LinearProjector struct{}

func (LinearProjector) Project(history []int, horizon int) []int {
	if len(history) == 0 || horizon <= 0 {
		return nil
	}
	values := make([]float64, len(history))
	for i, v := range history {
		values[i] = float64(v)
	}
	line := linear.FitTrend(values)
	out := make([]int, 0, horizon)
	for i := 1; i <= horizon; i++ {
		x := float64(len(history) - 1 + i)
		out = append(out, max(0, int(math.Round(line.At(x)))))
	}
	return out
}

// NewProjector resolves a projector by name ("drift" or "linear").
func NewProjector(name string, trend int, noise NoiseSource) Projector {
	if name == "linear" {
		return LinearProjector{}
	}
	return DriftProjector{Trend: trend, Noise: noise}
}
