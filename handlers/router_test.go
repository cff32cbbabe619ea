package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"route-traffic-api/config"
	"route-traffic-api/services"
	"route-traffic-api/traffic"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT:   config.JWTConfig{Secret: "router-test", ExpiryHours: 1},
		CORS:  config.CORSConfig{AllowedOrigins: "*"},
		Model: config.ModelConfig{PredictionCacheSec: 30},
	}
}

func TestRouterWithoutDatabase(t *testing.T) {
	log, _ := test.NewNullLogger()
	r := NewRouter(Dependencies{
		Config:  testConfig(),
		Service: traffic.NewService(&stubEstimator{speed: 60, ready: true}, log),
		Cache:   services.NewCacheServiceWithClient(nil),
		Log:     log,
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = postJSON(r, "/predict", morningRoute)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "routeflow_api_predictions_total")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/history", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPredictionStreamRejects(t *testing.T) {
	log, _ := test.NewNullLogger()
	auth := services.NewAuthService(nil, config.JWTConfig{Secret: "ws-test", ExpiryHours: 1})
	token, err := auth.GenerateToken(3, "ws@route.flow", "user")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/ws/predictions", PredictionStream(services.NewCacheServiceWithClient(nil), auth, log))

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"invalid token", "?token=nope", http.StatusUnauthorized},
		{"no redis", "?token=" + token, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws/predictions"+tt.query, nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestParsePagination(t *testing.T) {
	parse := func(query string) (PaginationParams, error) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/history"+query, nil)
		return ParsePagination(c)
	}

	p, err := parse("")
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Nil(t, p.Before)

	p, err = parse("?limit=500&before=2024-12-02T08:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, p.Limit)
	require.NotNil(t, p.Before)
	assert.Equal(t, 8, p.Before.Hour())

	for _, bad := range []string{"?limit=0", "?limit=ten", "?before=yesterday"} {
		_, err := parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestPage(t *testing.T) {
	type row struct{ n int }
	created := func(r row) time.Time { return time.Date(2024, 1, r.n, 0, 0, 0, 0, time.UTC) }

	resp := page([]row{{3}, {2}, {1}}, 2, created)
	assert.True(t, resp.HasMore)
	assert.Len(t, resp.Data, 2)
	assert.True(t, strings.HasPrefix(resp.NextCursor, "2024-01-02T"))

	resp = page([]row{{3}}, 2, created)
	assert.False(t, resp.HasMore)
	assert.Empty(t, resp.NextCursor)
}
