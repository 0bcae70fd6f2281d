package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/photoproos/platform/middleware"
	"github.com/photoproos/platform/services/scheduler"
	"github.com/photoproos/platform/utils"
	"go.uber.org/zap"
)

// JobRunner lists and triggers housekeeping jobs
type JobRunner interface {
	Jobs() []scheduler.JobInfo
	RunNow(name string) error
}

// JobHandler exposes the scheduler to super admins
type JobHandler struct {
	runner JobRunner
	logger *zap.Logger
}

// NewJobHandler creates a new JobHandler
func NewJobHandler(runner JobRunner, logger *zap.Logger) *JobHandler {
	return &JobHandler{
		runner: runner,
		logger: logger,
	}
}

// HandleListJobs handles GET /api/v1/admin/jobs
func (h *JobHandler) HandleListJobs(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, h.runner.Jobs())
}

// HandleRunJob handles POST /api/v1/admin/jobs/{name}/run
func (h *JobHandler) HandleRunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	requestID := middleware.GetRequestIDFromContext(r.Context())

	known := false
	for _, j := range h.runner.Jobs() {
		if j.Name == name {
			known = true
			break
		}
	}
	if !known {
		_ = utils.WriteNotFound(w, "Unknown job")
		return
	}

	h.logger.Info("running job on demand", zap.String("request_id", requestID), zap.String("job", name))

	if err := h.runner.RunNow(name); err != nil {
		h.logger.Error("job failed", zap.String("request_id", requestID), zap.String("job", name), zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteMessage(w, "Job "+name+" completed")
}
