package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestLoggerLevels(t *testing.T) {
	cases := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "level=INFO"},
		{http.StatusConflict, "level=WARN"},
		{http.StatusInternalServerError, "level=ERROR"},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/tasks", nil))

		out := buf.String()
		if !strings.Contains(out, tc.level) {
			t.Errorf("status %d: log = %s, want %s", tc.status, out, tc.level)
		}
		if !strings.Contains(out, "path=/api/tasks") {
			t.Errorf("status %d: missing path in %s", tc.status, out)
		}
	}
}
