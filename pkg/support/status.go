package support

import (
	"math/rand/v2"
	"time"
)

const (
	StatusOperational = "operational"
	StatusDegraded    = "degraded"
	StatusOutage      = "outage"

	historyPoints   = 10
	historyInterval = 2 * time.Minute
)

type LatencyPoint struct {
	Time    string `json:"time"`
	Latency int    `json:"latency"`
}

type SystemService struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Status       string         `json:"status"`
	Uptime       string         `json:"uptime"`
	Latency      int            `json:"latency"`
	Description  string         `json:"description"`
	Dependencies []string       `json:"dependencies"`
	History      []LatencyPoint `json:"history"`
}

type serviceProfile struct {
	id, name, status, uptime, description string
	dependencies                          []string
	minLatency, maxLatency                int
}

var profiles = []serviceProfile{
	{"srv-1", "EMR Integration (FHIR)", StatusOperational, "99.98%", "Bi-directional sync with hospital EMR systems.", []string{"VPN Gateway", "Auth Provider"}, 35, 55},
	{"srv-2", "Telehealth Video Bridge", StatusOperational, "99.95%", "WebRTC signalling for virtual visits.", []string{"Media Cluster", "CDN"}, 110, 130},
	{"srv-3", "Auth Provider (SSO)", StatusOperational, "100%", "OAuth2/OIDC identity provider.", []string{"Active Directory"}, 15, 25},
	{"srv-4", "IoT Device Gateway", StatusDegraded, "98.50%", "Ingestion point for wearable biosensors.", []string{"Kafka", "MQTT"}, 350, 480},
}

// StatusBoard simulates live telemetry for the help desk console.
type StatusBoard struct {
	latency func(lo, hi int) int
	now     func() time.Time
}

func NewStatusBoard() *StatusBoard {
	return &StatusBoard{
		latency: func(lo, hi int) int { return lo + rand.IntN(hi-lo+1) },
		now:     time.Now,
	}
}

// Services returns every monitored service. All services share one latency
// history sampled every two minutes up to now.
func (b *StatusBoard) Services() []SystemService {
	now := b.now()
	history := make([]LatencyPoint, 0, historyPoints)
	for i := historyPoints; i > 0; i-- {
		history = append(history, LatencyPoint{
			Time:    now.Add(-time.Duration(i) * historyInterval).Format("15:04"),
			Latency: b.latency(20, 100),
		})
	}

	out := make([]SystemService, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, SystemService{
			ID:           p.id,
			Name:         p.name,
			Status:       p.status,
			Uptime:       p.uptime,
			Latency:      b.latency(p.minLatency, p.maxLatency),
			Description:  p.description,
			Dependencies: append([]string(nil), p.dependencies...),
			History:      history,
		})
	}
	return out
}
