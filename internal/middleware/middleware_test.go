package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubValidator map[string]string

func (s stubValidator) ValidateToken(token string) (string, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return "", errors.New("bad token")
}

func serve(r *gin.Engine, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func echoUser(c *gin.Context) {
	c.String(http.StatusOK, UserID(c))
}

func TestAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/", AuthMiddleware(stubValidator{"good": "user-1"}), echoUser)

	w := serve(r, map[string]string{"Authorization": "Bearer good"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())

	for _, h := range []string{"", "good", "Basic good", "Bearer bad"} {
		w := serve(r, map[string]string{"Authorization": h})
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", h)
	}
}

func TestOptionalAuth(t *testing.T) {
	r := gin.New()
	r.GET("/", OptionalAuth(stubValidator{"good": "user-1"}), echoUser)

	assert.Equal(t, "user-1", serve(r, map[string]string{"Authorization": "Bearer good"}).Body.String())

	w := serve(r, map[string]string{"Authorization": "Bearer bad"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestCronSecret(t *testing.T) {
	r := gin.New()
	r.GET("/", CronSecret("s3cret"), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, serve(r, map[string]string{"Authorization": "Bearer s3cret"}).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, map[string]string{"Authorization": "Bearer nope"}).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, nil).Code)

	empty := gin.New()
	empty.GET("/", CronSecret(""), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	assert.Equal(t, http.StatusUnauthorized, serve(empty, map[string]string{"Authorization": "Bearer "}).Code)
}

func TestRequestFreshness(t *testing.T) {
	now := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	r := gin.New()
	r.GET("/", RequestFreshness(5*time.Minute, func() time.Time { return now }), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	ts := func(d time.Duration) map[string]string {
		return map[string]string{TimestampHeader: strconv.FormatInt(now.Add(d).UnixMilli(), 10)}
	}

	assert.Equal(t, http.StatusNoContent, serve(r, ts(0)).Code)
	assert.Equal(t, http.StatusNoContent, serve(r, ts(-4*time.Minute)).Code)
	assert.Equal(t, http.StatusNoContent, serve(r, ts(5*time.Minute)).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, ts(-6*time.Minute)).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, ts(6*time.Minute)).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, map[string]string{TimestampHeader: "yesterday"}).Code)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	serve(r, nil)

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zap.WarnLevel, entries[0].Level)
		assert.EqualValues(t, http.StatusTeapot, entries[0].ContextMap()["status"])
	}
}
