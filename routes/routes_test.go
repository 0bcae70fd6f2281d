package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/photoproos/platform/app"
	"github.com/photoproos/platform/config"
	"github.com/photoproos/platform/repositories/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	cfg := &config.Config{
		Environment: "test",
		Server:      config.ServerConfig{AllowedOrigins: []string{"https://app.photoproos.com"}},
		Stripe:      config.StripeConfig{BaseURL: "https://api.stripe.com", Timeout: time.Second},
		Payouts:     config.PayoutConfig{MinPayoutCents: 100, Currency: "usd"},
		RateLimit:   config.RateLimitConfig{RequestsPerSecond: 100, Burst: 100, SupportPerMinute: 6},
		Observability: config.ObservabilityConfig{
			LogLevel:       "info",
			MetricsEnabled: true,
		},
	}

	logger := zap.NewNop()
	factory := postgres.NewRepositoryFactoryFromDB(postgres.NewDBFromConn(conn, logger), logger)
	deps, err := app.NewDependenciesFromFactory(context.Background(), cfg, factory, logger)
	require.NoError(t, err)

	t.Cleanup(func() {
		mock.ExpectClose()
		_ = deps.Close(context.Background())
	})

	return SetupRoutes(deps), mock
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func serve(router http.Handler, method, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthRoutes(t *testing.T) {
	router, mock := newTestRouter(t)

	w := serve(router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	mock.ExpectPing()
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	w = serve(router, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMetricsRoute(t *testing.T) {
	router, _ := newTestRouter(t)

	serve(router, http.MethodGet, "/healthz", nil)
	w := serve(router, http.MethodGet, "/metrics", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "photoproos_http_requests_total")
	assert.Contains(t, w.Body.String(), `route="/healthz"`)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/users/me"},
		{http.MethodGet, "/api/v1/clients"},
		{http.MethodPost, "/api/v1/organizations"},
		{http.MethodGet, "/api/v1/payouts"},
		{http.MethodGet, "/api/v1/admin/organizations"},
		{http.MethodPost, "/api/v1/admin/jobs/payouts/run"},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			w := serve(router, p.method, p.path, nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	// Clerk is not configured in tests, so every token is rejected
	w := serve(router, http.MethodGet, "/api/v1/clients", map[string]string{"Authorization": "Bearer abc.def.ghi"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestExternalRoutesRequireAPIKey(t *testing.T) {
	router, _ := newTestRouter(t)

	w := serve(router, http.MethodGet, "/api/external/v1/clients", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Missing API key", body.Message)
}

func TestExternalRoutesThrottleBeforeKeyCheck(t *testing.T) {
	router, _ := newTestRouter(t)

	throttled := 0
	for i := 0; i < 200; i++ {
		w := serve(router, http.MethodGet, "/api/external/v1/clients", nil)
		if w.Code == http.StatusTooManyRequests {
			throttled++
		}
	}
	assert.Positive(t, throttled)
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	router, _ := newTestRouter(t)

	w := serve(router, http.MethodGet, "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "not_found", body.Error)

	w = serve(router, http.MethodDelete, "/healthz", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "method_not_allowed", body.Error)
}

func TestCORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t)

	w := serve(router, http.MethodOptions, "/api/v1/clients", map[string]string{
		"Origin":                        "https://app.photoproos.com",
		"Access-Control-Request-Method": http.MethodPost,
	})

	assert.Equal(t, "https://app.photoproos.com", w.Header().Get("Access-Control-Allow-Origin"))
}
