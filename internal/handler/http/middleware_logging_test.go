package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/internal/service"
)

// makeLoggedRequest creates a test request carrying a buffer-backed logger,
// the same way withTraceID seeds the context in production.
func makeLoggedRequest(method, path string, buf *bytes.Buffer) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	l := zerolog.New(buf).With().Timestamp().Logger()
	return req.WithContext(l.WithContext(req.Context()))
}

// loggingHandler wires withLogging over next with a nop base logger.
func loggingHandler(next http.Handler) http.Handler {
	h := newTestHandler(&service.Services{})
	return h.withLogging(next)
}

// ---- Table test ----

func TestWithLogging_TableTest(t *testing.T) {
	tests := []struct {
		name             string
		method           string
		path             string
		handlerStatus    int
		handlerResponse  string
		checkLogContains []string
	}{
		{
			name:            "GET 200",
			method:          http.MethodGet,
			path:            "/api/v1/plans",
			handlerStatus:   http.StatusOK,
			handlerResponse: "OK",
			checkLogContains: []string{
				`"method":"GET"`,
				`"uri":"/api/v1/plans"`,
				`"status":200`,
				`"duration":`,
				`"size":2`,
			},
		},
		{
			name:            "POST 201",
			method:          http.MethodPost,
			path:            "/api/v1/subscriptions",
			handlerStatus:   http.StatusCreated,
			handlerResponse: "Created",
			checkLogContains: []string{
				`"method":"POST"`,
				`"uri":"/api/v1/subscriptions"`,
				`"status":201`,
			},
		},
		{
			name:          "DELETE 204 no body",
			method:        http.MethodDelete,
			path:          "/api/v1/subscriptions/me",
			handlerStatus: http.StatusNoContent,
			checkLogContains: []string{
				`"method":"DELETE"`,
				`"status":204`,
				`"size":0`,
			},
		},
		{
			name:            "GET 500 error",
			method:          http.MethodGet,
			path:            "/api/v1/users/me",
			handlerStatus:   http.StatusInternalServerError,
			handlerResponse: "Internal Server Error",
			checkLogContains: []string{
				`"status":500`,
			},
		},
		{
			name:            "query parameters preserved in uri",
			method:          http.MethodDelete,
			path:            "/api/v1/subscriptions/me?immediate=true",
			handlerStatus:   http.StatusOK,
			handlerResponse: "{}",
			checkLogContains: []string{
				`"uri":"/api/v1/subscriptions/me?immediate=true"`,
				`"status":200`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logBuf bytes.Buffer

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.handlerStatus)
				if tt.handlerResponse != "" {
					_, _ = w.Write([]byte(tt.handlerResponse))
				}
			})

			mw := loggingHandler(next)

			req := makeLoggedRequest(tt.method, tt.path, &logBuf)
			rec := httptest.NewRecorder()
			mw.ServeHTTP(rec, req)

			assert.Equal(t, tt.handlerStatus, rec.Code)

			logOutput := logBuf.String()
			assert.NotEmpty(t, logOutput, "log should not be empty")

			for _, expected := range tt.checkLogContains {
				assert.Contains(t, logOutput, expected, "log should contain: %s", expected)
			}
		})
	}
}

// ---- Response size ----

func TestWithLogging_ResponseSize(t *testing.T) {
	var logBuf bytes.Buffer

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(strings.Repeat("a", 1024)))
	})

	mw := loggingHandler(next)

	req := makeLoggedRequest(http.MethodGet, "/api/v1/plans", &logBuf)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	logOutput := logBuf.String()
	assert.Contains(t, logOutput, `"size":1024`)
}

// ---- No explicit WriteHeader should log 200 ----

func TestWithLogging_NoStatusWritten(t *testing.T) {
	var logBuf bytes.Buffer

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("implicit 200"))
	})

	mw := loggingHandler(next)

	req := makeLoggedRequest(http.MethodGet, "/api/v1/plans", &logBuf)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, logBuf.String(), `"status":200`)
}

// ---- Concurrent requests: no races ----

func TestWithLogging_ConcurrentRequests(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mw := loggingHandler(next)

	const n = 50
	done := make(chan struct{}, n)

	for i := 0; i < n; i++ {
		go func() {
			var buf bytes.Buffer
			req := makeLoggedRequest(http.MethodGet, "/api/v1/health", &buf)
			rec := httptest.NewRecorder()
			mw.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, buf.String(), `"status":200`)
			done <- struct{}{}
		}()
	}

	for i := 0; i < n; i++ {
		<-done
	}
}

// ---- Panic is not suppressed ----

func TestWithLogging_PanicNotSuppressed(t *testing.T) {
	var logBuf bytes.Buffer

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	})
	mw := loggingHandler(next)

	req := makeLoggedRequest(http.MethodGet, "/api/v1/health", &logBuf)
	rec := httptest.NewRecorder()

	assert.Panics(t, func() {
		mw.ServeHTTP(rec, req)
	}, "withLogging should not recover panics; Recoverer runs above it")
}

// ---- Duration accuracy ----

func TestWithLogging_DurationAccuracy(t *testing.T) {
	delay := 80 * time.Millisecond
	var logBuf bytes.Buffer

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(delay)
		w.WriteHeader(http.StatusOK)
	})
	mw := loggingHandler(next)

	req := makeLoggedRequest(http.MethodGet, "/api/v1/health", &logBuf)
	rec := httptest.NewRecorder()

	start := time.Now()
	mw.ServeHTTP(rec, req)
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, delay, "handler delay should be observed")
	assert.Contains(t, logBuf.String(), `"duration":`)
}

// ---- logger.Nop(): middleware works without a real logger ----

func TestWithLogging_NopLogger(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mw := loggingHandler(next)

	nop := logger.Nop()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req = req.WithContext(nop.Logger.WithContext(req.Context()))

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		mw.ServeHTTP(rec, req)
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}
