package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pawmatch/pawmatch-backend/internal/jobs"
)

const healthProbeTimeout = 2 * time.Second

// Pinger is a dependency health probe
type Pinger func(ctx context.Context) error

// HealthHandler reports dependency and job health
type HealthHandler struct {
	probes    map[string]Pinger
	scheduler *jobs.Scheduler
}

// NewHealthHandler creates a HealthHandler. scheduler may be nil.
func NewHealthHandler(probes map[string]Pinger, scheduler *jobs.Scheduler) *HealthHandler {
	return &HealthHandler{probes: probes, scheduler: scheduler}
}

// Health handles GET /health. The database probe is the only one that
// fails the check; redis is optional.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthProbeTimeout)
	defer cancel()

	status := http.StatusOK
	checks := make(gin.H, len(h.probes))
	for name, probe := range h.probes {
		if err := probe(ctx); err != nil {
			checks[name] = err.Error()
			if name == "database" {
				status = http.StatusServiceUnavailable
			}
			continue
		}
		checks[name] = "ok"
	}

	body := gin.H{"status": "ok", "checks": checks}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	if h.scheduler != nil {
		body["jobs"] = h.scheduler.GetTasks()
	}
	c.JSON(status, body)
}
