package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dkeye/meshcall/internal/adapters/rtc"
	"github.com/dkeye/meshcall/internal/adapters/signal"
	"github.com/dkeye/meshcall/internal/app"
	"github.com/dkeye/meshcall/internal/app/orch"
	"github.com/dkeye/meshcall/internal/config"
	"github.com/dkeye/meshcall/internal/domain"
	"github.com/gin-gonic/gin"
)

func setupTestRouter(t *testing.T) (http.Handler, *orch.Orchestrator) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Mode:           "test",
		StaticPath:     t.TempDir(),
		Secret:         "test-secret",
		AllowedOrigins: []string{"https://call.example.com"},
		ICEServers:     []config.ICEServer{{URLs: []string{"stun:stun.example.com:3478"}}},
	}
	media, err := rtc.NewMediaConfig(cfg)
	if err != nil {
		t.Fatalf("NewMediaConfig failed: %v", err)
	}

	reg := app.NewRegistry()
	hub := signal.NewHub(nil)
	o := orch.New(reg, hub, domain.DefaultMeshMax)
	ctl := signal.NewSignalWSController(o, hub, signal.Options{})

	r := SetupRouter(context.Background(), cfg, reg, ctl, media)
	return WithCORS(cfg, r), o
}

func TestHealthEndpoint(t *testing.T) {
	h, o := setupTestRouter(t)
	o.Join("r1", "a", "")
	o.Join("r2", "b", "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, rec.Code)
	}
	var got Health
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("Failed to decode health: %v", err)
	}
	if got.Status != "ok" || got.RoomCount != 2 || got.ActiveConnections != 0 {
		t.Errorf("Unexpected health %+v", got)
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), "MeshcallSessions") {
		t.Error("Expected session cookie to be issued")
	}
}

func TestRoomsEndpoint(t *testing.T) {
	h, o := setupTestRouter(t)
	o.Join("beta", "a", "")
	o.Join("alpha", "b", "")
	o.Join("alpha", "c", "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rooms", nil))

	var body struct {
		Rooms []domain.RoomInfo `json:"rooms"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode rooms: %v", err)
	}
	if len(body.Rooms) != 2 {
		t.Fatalf("Expected 2 rooms, got %d", len(body.Rooms))
	}
	if body.Rooms[0].ID != "alpha" || body.Rooms[0].ParticipantCount != 2 || body.Rooms[0].Mode != domain.ModeMesh {
		t.Errorf("Unexpected first room %+v", body.Rooms[0])
	}
}

func TestRTCEndpoint(t *testing.T) {
	h, _ := setupTestRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rtc", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "stun:stun.example.com:3478") {
		t.Errorf("Expected ICE server in body, got %s", rec.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	h, _ := setupTestRouter(t)

	allowed := httptest.NewRequest(http.MethodOptions, "/api/rooms", nil)
	allowed.Header.Set("Origin", "https://call.example.com")
	allowed.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, allowed)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://call.example.com" {
		t.Errorf("Expected allowed origin echoed, got %q", got)
	}

	denied := httptest.NewRequest(http.MethodOptions, "/api/rooms", nil)
	denied.Header.Set("Origin", "https://evil.example.com")
	denied.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, denied)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Expected no CORS header for foreign origin, got %q", got)
	}
}
