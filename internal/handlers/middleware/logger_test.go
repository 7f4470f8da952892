package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type record struct {
	level string
	msg   string
	args  []any
}

type recordLogger struct {
	records []record
}

func (l *recordLogger) Info(msg string, v ...any)  { l.records = append(l.records, record{"info", msg, v}) }
func (l *recordLogger) Error(msg string, v ...any) { l.records = append(l.records, record{"error", msg, v}) }

func TestLoggerMiddleware(t *testing.T) {
	t.Run("log fields", func(t *testing.T) {
		logger := &recordLogger{}

		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			_, err := w.Write([]byte("hi"))
			require.NoError(t, err, "should write response")
		})

		middleware := LoggerMiddleware(logger)
		srv := httptest.NewServer(middleware(h))
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/test?secret=1")
		require.NoError(t, err, "should make request to test server")
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err, "should read response body")
		defer resp.Body.Close() // nolint:errcheck

		require.Equalf(t, http.StatusTeapot, resp.StatusCode, "should return status Teapot. Resp: %s", string(body))
		require.Equal(t, "hi", string(body), "should return 'hi' in response")

		require.Len(t, logger.records, 1, "logger should be called once")
		rec := logger.records[0]
		require.Equal(t, "info", rec.level)
		require.Equal(t, "got HTTP request", rec.msg, "logger should log 'got HTTP request'")

		args := rec.args
		require.Len(t, args, 10, "logger should log 10 fields")
		require.Equal(t, "method", args[0])
		require.Equal(t, "GET", args[1])
		require.Equal(t, "uri", args[2])
		require.Equal(t, "/test", args[3], "query string is not logged")
		require.Equal(t, "duration", args[4])
		require.NotEmpty(t, args[5], "duration should not be empty")
		require.Equal(t, "status", args[6])
		require.Equal(t, http.StatusTeapot, args[7])
		require.Equal(t, "size", args[8])
		require.Equal(t, 2, args[9], "size should be 2 (length of 'hi')")
	})

	t.Run("server errors logged as errors", func(t *testing.T) {
		logger := &recordLogger{}

		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		srv := httptest.NewServer(LoggerMiddleware(logger)(h))
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/boom")
		require.NoError(t, err)
		defer resp.Body.Close() // nolint:errcheck

		require.Len(t, logger.records, 1)
		require.Equal(t, "error", logger.records[0].level)
	})
}
