package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/photoproos/platform/utils"
	"go.uber.org/zap"
)

const readinessTimeout = 5 * time.Second

// CheckFunc reports whether a dependency is reachable
type CheckFunc func(ctx context.Context) error

type namedCheck struct {
	name  string
	check CheckFunc
}

// CheckResult is the outcome of one readiness probe
type CheckResult struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// HealthResponse is the body of /healthz and /readyz
type HealthResponse struct {
	Status        string                 `json:"status"`
	Timestamp     string                 `json:"timestamp"`
	UptimeSeconds int64                  `json:"uptime_seconds"`
	Checks        map[string]CheckResult `json:"checks,omitempty"`
}

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	checks  []namedCheck
	started time.Time
	now     func() time.Time
	logger  *zap.Logger
}

// NewHealthHandler creates a HealthHandler. A non-nil db is probed as "database".
func NewHealthHandler(db *sql.DB, logger *zap.Logger) *HealthHandler {
	h := &HealthHandler{
		started: time.Now(),
		now:     time.Now,
		logger:  logger,
	}
	if db != nil {
		h.WithCheck("database", pingDatabase(db))
	}
	return h
}

// WithCheck appends a readiness probe; probes run in registration order
func (h *HealthHandler) WithCheck(name string, check CheckFunc) *HealthHandler {
	h.checks = append(h.checks, namedCheck{name: name, check: check})
	return h
}

// HandleHealth handles GET /healthz
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, h.response("healthy", nil))
}

// HandleReadiness handles GET /readyz
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	results := make(map[string]CheckResult, len(h.checks))
	ready := true
	for _, c := range h.checks {
		start := h.now()
		err := c.check(ctx)
		res := CheckResult{Status: "healthy", LatencyMS: h.now().Sub(start).Milliseconds()}
		if err != nil {
			h.logger.Warn("readiness check failed", zap.String("check", c.name), zap.Error(err))
			res.Status = "unhealthy"
			res.Error = err.Error()
			ready = false
		}
		results[c.name] = res
	}

	status, code := "ready", http.StatusOK
	if !ready {
		status, code = "unavailable", http.StatusServiceUnavailable
	}

	body := utils.SuccessResponse{Success: ready, Data: h.response(status, results)}
	if err := utils.WriteJSON(w, code, body); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}

func (h *HealthHandler) response(status string, checks map[string]CheckResult) HealthResponse {
	now := h.now()
	return HealthResponse{
		Status:        status,
		Timestamp:     now.UTC().Format(time.RFC3339),
		UptimeSeconds: int64(now.Sub(h.started).Seconds()),
		Checks:        checks,
	}
}

func pingDatabase(db *sql.DB) CheckFunc {
	return func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		var one int
		return db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
	}
}
