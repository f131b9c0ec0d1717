package monitoring

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roomieradar/roomieradar/internal/telemetry"
)

// HealthStatus represents the overall health status
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// ComponentHealth represents the health of a single component
type ComponentHealth struct {
	Status      HealthStatus `json:"status"`
	Message     string       `json:"message,omitempty"`
	Latency     int64        `json:"latency_ms"`
	LastChecked time.Time    `json:"last_checked"`
}

type HealthResponse struct {
	Status     HealthStatus               `json:"status"`
	Service    string                     `json:"service"`
	Version    string                     `json:"version"`
	Timestamp  time.Time                  `json:"timestamp"`
	Uptime     string                     `json:"uptime"`
	Components map[string]ComponentHealth `json:"components"`
	Goroutines int                        `json:"goroutines"`
	GoVersion  string                     `json:"go_version"`
}

// Pinger is a context-aware liveness probe such as *database.DB.
type Pinger interface {
	Health(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Health(ctx context.Context) error { return f(ctx) }

type check struct {
	pinger     Pinger
	degradedAt time.Duration
}

// HealthChecker probes registered dependencies and caches the result for
// checkInterval.
type HealthChecker struct {
	mu            sync.Mutex
	startTime     time.Time
	service       string
	version       string
	checks        map[string]check
	components    map[string]ComponentHealth
	lastCheck     time.Time
	checkInterval time.Duration
	timeout       time.Duration
	now           func() time.Time
}

func NewHealthChecker(service, version string) *HealthChecker {
	return &HealthChecker{
		startTime:     time.Now(),
		service:       service,
		version:       version,
		checks:        make(map[string]check),
		components:    make(map[string]ComponentHealth),
		checkInterval: 10 * time.Second,
		timeout:       5 * time.Second,
		now:           time.Now,
	}
}

// Register adds a dependency. A probe slower than degradedAt marks it degraded.
func (hc *HealthChecker) Register(name string, p Pinger, degradedAt time.Duration) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[name] = check{pinger: p, degradedAt: degradedAt}
	hc.lastCheck = time.Time{}
}

// RunChecks probes every dependency now.
func (hc *HealthChecker) RunChecks(ctx context.Context) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.runLocked(ctx)
}

func (hc *HealthChecker) runLocked(ctx context.Context) {
	for name, c := range hc.checks {
		checkCtx, cancel := context.WithTimeout(ctx, hc.timeout)
		start := time.Now()
		err := c.pinger.Health(checkCtx)
		latency := time.Since(start)
		cancel()

		component := ComponentHealth{
			Status:      HealthStatusHealthy,
			Latency:     latency.Milliseconds(),
			LastChecked: hc.now(),
		}
		switch {
		case err != nil:
			component.Status = HealthStatusUnhealthy
			component.Message = err.Error()
			telemetry.GetContextualLogger(ctx).WithField("component", name).WithError(err).Warn("Health check failed")
		case c.degradedAt > 0 && latency > c.degradedAt:
			component.Status = HealthStatusDegraded
			component.Message = "slow response"
		}
		hc.components[name] = component
	}
	hc.lastCheck = hc.now()
}

// GetHealth returns the cached status, probing first when it is stale.
func (hc *HealthChecker) GetHealth(ctx context.Context) HealthResponse {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	if hc.now().Sub(hc.lastCheck) > hc.checkInterval {
		hc.runLocked(ctx)
	}

	overall := HealthStatusHealthy
	components := make(map[string]ComponentHealth, len(hc.components))
	for name, component := range hc.components {
		components[name] = component
		switch component.Status {
		case HealthStatusUnhealthy:
			overall = HealthStatusUnhealthy
		case HealthStatusDegraded:
			if overall == HealthStatusHealthy {
				overall = HealthStatusDegraded
			}
		}
	}

	return HealthResponse{
		Status:     overall,
		Service:    hc.service,
		Version:    hc.version,
		Timestamp:  hc.now(),
		Uptime:     time.Since(hc.startTime).Round(time.Second).String(),
		Components: components,
		Goroutines: runtime.NumGoroutine(),
		GoVersion:  runtime.Version(),
	}
}

// HealthHandler answers 200 while healthy or degraded and 503 otherwise.
func (hc *HealthChecker) HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		health := hc.GetHealth(c.Request.Context())
		status := http.StatusOK
		if health.Status == HealthStatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, health)
	}
}

func (hc *HealthChecker) LivenessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "alive",
			"uptime": time.Since(hc.startTime).Round(time.Second).String(),
		})
	}
}
