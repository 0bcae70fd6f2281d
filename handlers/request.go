package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/photoproos/platform/middleware"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/utils"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// page holds limit/offset pagination parsed from the query string
type page struct {
	Limit  int
	Offset int
}

// parsePage reads limit and offset, clamping limit to maxPageSize
func parsePage(r *http.Request) (page, error) {
	p := page{Limit: defaultPageSize}
	q := r.URL.Query()

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, errInvalidParam("limit")
		}
		if n > maxPageSize {
			n = maxPageSize
		}
		p.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return p, errInvalidParam("offset")
		}
		p.Offset = n
	}
	return p, nil
}

type paramError struct {
	name string
}

func (e *paramError) Error() string {
	return "Invalid " + e.name
}

func errInvalidParam(name string) error {
	return &paramError{name: name}
}

// pathUUID parses a UUID route parameter, writing 400 when malformed
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid "+name+" format", nil)
		return uuid.Nil, false
	}
	return id, true
}

// queryUUID parses an optional UUID query parameter
func queryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, errInvalidParam(name)
	}
	return &id, nil
}

// queryTime parses an optional RFC3339 or YYYY-MM-DD query parameter
func queryTime(r *http.Request, name string) (*time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, errInvalidParam(name)
	}
	return &t, nil
}

// dateRange reads start/end, defaulting to the last 30 days
func dateRange(r *http.Request, now time.Time) (time.Time, time.Time, error) {
	end := now.UTC()
	start := end.AddDate(0, 0, -30)

	s, err := queryTime(r, "start")
	if err != nil {
		return start, end, err
	}
	e, err := queryTime(r, "end")
	if err != nil {
		return start, end, err
	}
	if s != nil {
		start = *s
	}
	if e != nil {
		end = *e
	}
	return start, end, nil
}

// decodeRequest decodes and validates a JSON body, writing 400 on failure
func decodeRequest(w http.ResponseWriter, r *http.Request, dst interface{}, logger *zap.Logger) bool {
	requestID := middleware.GetRequestIDFromContext(r.Context())

	if err := utils.DecodeJSON(r, dst); err != nil {
		logger.Warn("failed to parse request body",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return false
	}

	if err := utils.ValidateStruct(dst); err != nil {
		logger.Warn("request validation failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleValidationError(w, err, logger)
		return false
	}
	return true
}

// tenant returns the organization and acting user of an authenticated request
func tenant(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, *models.User, bool) {
	ctx := r.Context()
	orgID := middleware.GetOrgIDFromContext(ctx)
	user := middleware.GetUserFromContext(ctx)
	if orgID == uuid.Nil || user == nil {
		logger.Error("missing tenant in context",
			zap.String("request_id", middleware.GetRequestIDFromContext(ctx)))
		_ = utils.WriteUnauthorized(w, "Missing organization information")
		return uuid.Nil, nil, false
	}
	return orgID, user, true
}

// currentUser returns the authenticated user, writing 401 when absent
func currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return nil, false
	}
	return user, true
}
