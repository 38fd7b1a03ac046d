package governance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/optihealth/platform/pkg/common/logger"
)

// Node statuses.
const (
	NodeHealthy = "healthy"
	NodeWarning = "warning"
	NodeError   = "error"
)

const (
	defaultProbeTimeout = 2 * time.Second
	historySize         = 20
)

// Probe checks one dependency. A failing Optional probe degrades to a warning.
type Probe struct {
	ID          string
	Label       string
	Type        string
	TechStack   string
	Description string
	Optional    bool
	Check       func(ctx context.Context) error
}

type NodeMetrics struct {
	Latency   string `json:"latency"`
	ErrorRate string `json:"errorRate"`
	Uptime    string `json:"uptime"`
}

type PipelineNode struct {
	ID           string      `json:"id"`
	Label        string      `json:"label"`
	Type         string      `json:"type"`
	Status       string      `json:"status"`
	Metrics      NodeMetrics `json:"metrics"`
	TechStack    string      `json:"techStack"`
	Description  string      `json:"description"`
	LastIncident string      `json:"lastIncident,omitempty"`
}

type probeHistory struct {
	outcomes     []bool
	lastIncident string
}

func (h *probeHistory) record(ok bool) {
	h.outcomes = append(h.outcomes, ok)
	if len(h.outcomes) > historySize {
		h.outcomes = h.outcomes[len(h.outcomes)-historySize:]
	}
}

func (h *probeHistory) uptime() float64 {
	if len(h.outcomes) == 0 {
		return 100
	}
	up := 0
	for _, ok := range h.outcomes {
		if ok {
			up++
		}
	}
	return float64(up) / float64(len(h.outcomes)) * 100
}

// Monitor probes every dependency on demand and keeps a short rolling
// history per probe. Safe for concurrent use.
type Monitor struct {
	probes  []Probe
	timeout time.Duration
	now     func() time.Time

	mu      sync.Mutex
	history map[string]*probeHistory
}

func NewMonitor(timeout time.Duration, probes ...Probe) *Monitor {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &Monitor{
		probes:  probes,
		timeout: timeout,
		now:     time.Now,
		history: make(map[string]*probeHistory, len(probes)),
	}
}

// Check runs all probes concurrently and returns nodes in probe order.
func (m *Monitor) Check(ctx context.Context) []PipelineNode {
	nodes := make([]PipelineNode, len(m.probes))
	var wg sync.WaitGroup
	for i, p := range m.probes {
		wg.Add(1)
		go func(i int, p Probe) {
			defer wg.Done()
			nodes[i] = m.run(ctx, p)
		}(i, p)
	}
	wg.Wait()
	return nodes
}

func (m *Monitor) run(ctx context.Context, p Probe) PipelineNode {
	probeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()
	var err error
	if p.Check != nil {
		err = p.Check(probeCtx)
	}
	elapsed := time.Since(start)

	status := NodeHealthy
	if err != nil {
		status = NodeError
		if p.Optional {
			status = NodeWarning
		}
		logger.Log.WithError(err).WithField("probe", p.ID).Warn("Dependency probe failed")
	}

	m.mu.Lock()
	h, ok := m.history[p.ID]
	if !ok {
		h = &probeHistory{}
		m.history[p.ID] = h
	}
	h.record(err == nil)
	if err != nil {
		h.lastIncident = fmt.Sprintf("%s (%s)", err.Error(), m.now().UTC().Format("15:04 UTC"))
	}
	uptime := h.uptime()
	incident := h.lastIncident
	m.mu.Unlock()

	return PipelineNode{
		ID:     p.ID,
		Label:  p.Label,
		Type:   p.Type,
		Status: status,
		Metrics: NodeMetrics{
			Latency:   fmt.Sprintf("%dms", elapsed.Milliseconds()),
			ErrorRate: fmt.Sprintf("%.2f%%", 100-uptime),
			Uptime:    fmt.Sprintf("%.2f%%", uptime),
		},
		TechStack:    p.TechStack,
		Description:  p.Description,
		LastIncident: incident,
	}
}
