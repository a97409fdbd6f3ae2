package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestHealthHandler_Liveness(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(nil).Liveness(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	t.Run("all checks pass", func(t *testing.T) {
		handler := NewHealthHandler(map[string]Check{"redis": RedisCheck(client)})

		rec := httptest.NewRecorder()
		handler.Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body["redis"] != "ok" || body["status"] != "ready" {
			t.Fatalf("unexpected body %+v", body)
		}
	})

	t.Run("failing check", func(t *testing.T) {
		handler := NewHealthHandler(map[string]Check{
			"redis":    RedisCheck(client),
			"postgres": func(ctx context.Context) error { return errors.New("connection refused") },
		})

		rec := httptest.NewRecorder()
		handler.Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
	})

	t.Run("no checks", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealthHandler(nil).Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}
