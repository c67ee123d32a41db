package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type healthCheck struct {
	name   string
	pinger Pinger
}

// HealthController pings the catalog database and any other registered
// dependency on every request. A nil pinger is reported as not configured
// and does not make the service unhealthy.
type HealthController struct {
	version string
	checks  []healthCheck
}

func NewHealthController(db Pinger, version string) *HealthController {
	return &HealthController{
		version: version,
		checks:  []healthCheck{{name: "database", pinger: db}},
	}
}

// AddCheck registers another dependency reported under name.
func (h *HealthController) AddCheck(name string, p Pinger) {
	h.checks = append(h.checks, healthCheck{name: name, pinger: p})
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string, len(h.checks))
	healthy := true
	for _, chk := range h.checks {
		result, ok := check(chk.pinger)
		checks[chk.name] = result
		healthy = healthy && ok
	}

	health := HealthResponse{
		Status:  "healthy",
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}
	statusCode := http.StatusOK
	if !healthy {
		health.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}

func check(p Pinger) (string, bool) {
	if p == nil {
		return "not configured", true
	}
	if err := p.Ping(); err != nil {
		return "error: " + err.Error(), false
	}
	return "ok", true
}
