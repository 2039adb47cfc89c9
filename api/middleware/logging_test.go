package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/angelmondragon/catalog-discounts/pkg/enums"
	"github.com/angelmondragon/catalog-discounts/pkg/logger"
)

func lastLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", lines[len(lines)-1], err)
	}
	return entry
}

func TestLoggingRecordsStatusAndBytes(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.InfoLevel, Output: &buf})

	handler := Logging(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))

	entry := lastLogLine(t, &buf)
	if entry["message"] != "request.complete" || entry["level"] != "info" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if entry["status"] != float64(http.StatusOK) || entry["bytes"] != float64(5) {
		t.Fatalf("expected implicit 200 with 5 bytes, got %v", entry)
	}
	if entry["path"] != "/api/v1/products" {
		t.Fatalf("missing path field: %v", entry)
	}
	if strings.Contains(buf.String(), "request.start") {
		t.Fatalf("start line should only appear at debug level")
	}
}

func TestLoggingWarnsOnErrorStatus(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.InfoLevel, Output: &buf})

	handler := Logging(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	entry := lastLogLine(t, &buf)
	if entry["level"] != "warn" || entry["status"] != float64(http.StatusNotFound) {
		t.Fatalf("expected first status at warn level, got %v", entry)
	}
}

func TestRequireRoleWithoutActorIsForbidden(t *testing.T) {
	handler := RequireRole(nil, enums.AdminRoleAdmin, enums.AdminRoleEditor)(okHandler())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}

	ctx := WithActor(httptest.NewRequest(http.MethodGet, "/", nil).Context(), Actor{AdminID: "ops", Role: enums.AdminRoleEditor})
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected editor to pass, got %d", resp.Code)
	}
}
