package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NuralamMRH/soletradeproject-sub004/pkg/metrics"
	"github.com/NuralamMRH/soletradeproject-sub004/pkg/util"
)

func TestMetricsMiddlewareObservesRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)

	before := testutil.CollectAndCount(metrics.HTTPRequestDuration)

	r := gin.New()
	r.Use(MetricsMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Greater(t, testutil.CollectAndCount(metrics.HTTPRequestDuration), before)
}

func TestMetricsMiddlewareBoundsUnmatchedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(MetricsMiddleware())

	before := testutil.CollectAndCount(metrics.HTTPRequestDuration)

	// Random paths must not each become a new label value.
	for _, path := range []string{"/nope", "/also-nope", "/still-nope"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusNotFound, w.Code)
	}

	assert.Equal(t, before+1, testutil.CollectAndCount(metrics.HTTPRequestDuration))
}

func TestAuthMiddlewareScopesUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(AuthMiddleware("secret"))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetInt64("user_id")})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/whoami", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := util.GenerateJWT(7, "secret")
	require.NoError(t, err)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":7}`, w.Body.String())
}
