package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdclab/mdc-service/internal/platform/logging"
	"github.com/mdclab/mdc-service/internal/platform/mdc"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestLogger returns a logger that writes JSON lines, with the
// diagnostic-context decorator applied, and the buffer it writes to.
func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	handler := logging.NewMDCHandler(slog.NewJSONHandler(buf, nil))

	return slog.New(handler), buf
}

func performRequest(router *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestMDC_GeneratesRequestID(t *testing.T) {
	logger, _ := newTestLogger()

	router := gin.New()
	router.Use(MDC(logger))
	router.GET("/test", func(c *gin.Context) {
		requestID, ok := mdc.Get(c.Request.Context(), mdc.KeyRequestID)
		assert.True(t, ok)
		assert.Len(t, requestID, generatedIDLength)
		c.Status(http.StatusOK)
	})

	w := performRequest(router, http.MethodGet, "/test", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, w.Header().Get(HeaderRequestID), generatedIDLength)
}

func TestMDC_AdoptsProvidedRequestID(t *testing.T) {
	logger, _ := newTestLogger()

	router := gin.New()
	router.Use(MDC(logger))
	router.GET("/test", func(c *gin.Context) {
		requestID, _ := mdc.Get(c.Request.Context(), mdc.KeyRequestID)
		assert.Equal(t, "abc123", requestID)
		c.Status(http.StatusOK)
	})

	w := performRequest(router, http.MethodGet, "/test", map[string]string{
		HeaderRequestID: "abc123",
	})

	assert.Equal(t, "abc123", w.Header().Get(HeaderRequestID))
}

func TestMDC_UserIDDefaultsToAnonymous(t *testing.T) {
	logger, _ := newTestLogger()

	router := gin.New()
	router.Use(MDC(logger))
	router.GET("/test", func(c *gin.Context) {
		userID, _ := mdc.Get(c.Request.Context(), mdc.KeyUserID)
		assert.Equal(t, AnonymousUser, userID)
		c.Status(http.StatusOK)
	})

	performRequest(router, http.MethodGet, "/test", nil)
}

func TestMDC_UserIDFromHeader(t *testing.T) {
	logger, _ := newTestLogger()

	router := gin.New()
	router.Use(MDC(logger))
	router.GET("/test", func(c *gin.Context) {
		userID, _ := mdc.Get(c.Request.Context(), mdc.KeyUserID)
		assert.Equal(t, "u-7", userID)
		c.Status(http.StatusOK)
	})

	performRequest(router, http.MethodGet, "/test", map[string]string{
		HeaderUserID: "u-7",
	})
}

func TestMDC_StoreClearedAfterRequest(t *testing.T) {
	logger, _ := newTestLogger()

	var captured context.Context

	router := gin.New()
	router.Use(MDC(logger))
	router.GET("/test", func(c *gin.Context) {
		captured = c.Request.Context()
		c.Status(http.StatusOK)
	})

	performRequest(router, http.MethodGet, "/test", nil)

	require.NotNil(t, captured)

	_, ok := mdc.Get(captured, mdc.KeyRequestID)
	assert.False(t, ok, "store must be cleared after the request completes")
	assert.True(t, mdc.Capture(captured).Absent())
}

func TestMDC_StoreClearedAfterErrorStatus(t *testing.T) {
	logger, _ := newTestLogger()

	var captured context.Context

	router := gin.New()
	router.Use(MDC(logger))
	router.GET("/test", func(c *gin.Context) {
		captured = c.Request.Context()
		c.Status(http.StatusInternalServerError)
	})

	w := performRequest(router, http.MethodGet, "/test", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, mdc.Capture(captured).Absent())
}

func TestMDC_LogLinesCarryRequestID(t *testing.T) {
	logger, buf := newTestLogger()

	router := gin.New()
	router.Use(MDC(logger))
	router.GET("/test", func(c *gin.Context) {
		ctx := c.Request.Context()
		logging.FromContext(ctx).InfoContext(ctx, "handler line")
		c.Status(http.StatusOK)
	})

	performRequest(router, http.MethodGet, "/test", map[string]string{
		HeaderRequestID: "req-log-1",
		HeaderUserID:    "u-1",
	})

	output := buf.String()
	lines := bytes.Count([]byte(output), []byte("\n"))

	assert.Equal(t, 3, lines, "entry, handler and exit lines expected")
	assert.Equal(t, 3, bytes.Count([]byte(output), []byte(`"requestId":"req-log-1"`)))
	assert.Equal(t, 3, bytes.Count([]byte(output), []byte(`"userId":"u-1"`)))
	assert.Contains(t, output, "request started")
	assert.Contains(t, output, "request completed")
}

func TestMDC_SkipsLoggingForHealthEndpoints(t *testing.T) {
	logger, buf := newTestLogger()

	router := gin.New()
	router.Use(MDC(logger))
	router.GET("/-/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	performRequest(router, http.MethodGet, "/-/live", nil)

	assert.Empty(t, buf.String())
}

func TestMDC_ConcurrentRequestsGetDistinctIDs(t *testing.T) {
	logger, _ := newTestLogger()

	ids := make(chan string, 2)
	barrier := make(chan struct{})

	router := gin.New()
	router.Use(MDC(logger))
	router.GET("/test", func(c *gin.Context) {
		requestID, _ := mdc.Get(c.Request.Context(), mdc.KeyRequestID)
		ids <- requestID
		<-barrier
		c.Status(http.StatusOK)
	})

	var wg sync.WaitGroup

	for range 2 {
		wg.Go(func() {
			performRequest(router, http.MethodGet, "/test", nil)
		})
	}

	first := <-ids
	second := <-ids
	close(barrier)
	wg.Wait()

	assert.NotEqual(t, first, second)
}

func TestRecovery_PanicLogsCarryRequestID(t *testing.T) {
	logger, buf := newTestLogger()

	router := gin.New()
	router.Use(MDC(logger), Recovery(logger))
	router.GET("/panic", func(_ *gin.Context) {
		panic("handler exploded")
	})

	w := performRequest(router, http.MethodGet, "/panic", map[string]string{
		HeaderRequestID: "req-panic",
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	assert.Contains(t, w.Body.String(), "req-panic")

	output := buf.String()
	assert.Contains(t, output, "panic recovered")
	assert.Contains(t, output, "handler exploded")

	// The panic log line, emitted inside the recovery middleware, still
	// carries the request's diagnostic fields.
	assert.Contains(t, output, `"requestId":"req-panic"`)
}

func TestRecovery_StoreClearedAfterPanic(t *testing.T) {
	logger, _ := newTestLogger()

	var captured context.Context

	router := gin.New()
	router.Use(MDC(logger), Recovery(logger))
	router.GET("/panic", func(c *gin.Context) {
		captured = c.Request.Context()
		panic("handler exploded")
	})

	performRequest(router, http.MethodGet, "/panic", nil)

	require.NotNil(t, captured)
	assert.True(t, mdc.Capture(captured).Absent())
}

func TestSimpleTimeout_SetsDeadline(t *testing.T) {
	router := gin.New()
	router.Use(SimpleTimeout(50 * time.Millisecond))
	router.GET("/test", func(c *gin.Context) {
		deadline, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 25*time.Millisecond)
		c.Status(http.StatusOK)
	})

	w := performRequest(router, http.MethodGet, "/test", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
