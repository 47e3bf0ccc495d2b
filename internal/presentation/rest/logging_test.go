package rest_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Emmyme/hids-cli/internal/presentation/rest"
)

func TestLoggingMiddleware(t *testing.T) {
	h := rest.NewHealthHandler(testLogger())
	h.AddCheck("model", func(context.Context) error { return errors.New("model not loaded") })

	tests := []struct {
		name      string
		path      string
		wantLevel string
		wantCode  string
	}{
		{name: "healthy probe at debug", path: "/healthz", wantLevel: "level=DEBUG", wantCode: "status=200"},
		{name: "failing probe at info", path: "/readyz", wantLevel: "level=INFO", wantCode: "status=503"},
		{name: "unknown path at info", path: "/nope", wantLevel: "level=INFO", wantCode: "status=404"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			handler := rest.LoggingMiddleware(logger)(newMux(h))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			out := buf.String()
			assert.Contains(t, out, tt.wantLevel)
			assert.Contains(t, out, tt.wantCode)
			assert.Contains(t, out, "path="+tt.path)
		})
	}
}
