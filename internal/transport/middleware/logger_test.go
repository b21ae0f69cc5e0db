package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/mindump-backend/pkg/ctxutil"
)

func TestLogger(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{name: "ok", status: http.StatusOK, wantLevel: "INFO"},
		{name: "client error", status: http.StatusNotFound, wantLevel: "WARN"},
		{name: "server error", status: http.StatusBadGateway, wantLevel: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte("hello")) //nolint:errcheck
			})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/dumps", nil)
			ctx := ctxutil.WithRequestID(req.Context(), "req-1")
			ctx = ctxutil.WithUserID(ctx, userID)
			rec := httptest.NewRecorder()

			Logger(logger)(handler).ServeHTTP(rec, req.WithContext(ctx))

			var line map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
			assert.Equal(t, "http.request", line["msg"])
			assert.Equal(t, tt.wantLevel, line["level"])
			assert.Equal(t, "POST", line["method"])
			assert.Equal(t, "/api/v1/dumps", line["path"])
			assert.EqualValues(t, tt.status, line["status"])
			assert.EqualValues(t, 5, line["bytes"])
			assert.Equal(t, "req-1", line["request_id"])
			assert.Equal(t, userID.String(), line["user_id"])
		})
	}
}

func TestLogger_ImplicitOK(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{}")) //nolint:errcheck
	})

	Logger(logger)(handler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.EqualValues(t, http.StatusOK, line["status"])
	assert.NotContains(t, line, "user_id")
}
