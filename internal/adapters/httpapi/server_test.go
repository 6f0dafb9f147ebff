package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/bellhop/internal/adapters/sqlite"
	"github.com/example/bellhop/internal/app"
	"github.com/example/bellhop/internal/core/effects"
	"github.com/example/bellhop/internal/core/policy"
	"github.com/example/bellhop/internal/db"
)

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, policy.Channel, string, effects.Payload) error { return nil }
func (nopNotifier) Broadcast(context.Context, effects.Payload) error                   { return nil }

func newTestServer(t *testing.T) *Server {
	t.Helper()

	conn, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })
	_, err = conn.Exec(db.GetSchemaSQL())
	require.NoError(t, err)

	policies := sqlite.NewPolicyRepository(conn)
	requests := sqlite.NewRequestRepository(conn)
	transitions := sqlite.NewTransitionRepository(conn)

	settings := app.NewSettingsService(policies, policy.PresetStandard, nil)
	executor := app.NewEffectExecutor(nopNotifier{}, requests, nil)

	return NewServer(Services{
		Settings:  settings,
		Requests:  app.NewRequestService(requests, transitions, settings, executor, nil),
		Analytics: app.NewAnalyticsService(transitions),
	}, 7*24*time.Hour, nil)
}

func do(t *testing.T, s *Server, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func TestGetSettings_DefaultWithAnalytics(t *testing.T) {
	s := newTestServer(t)

	code, body := do(t, s, "GET", "/api/settings/escalation?tenantId=hotel-1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])

	settings := body["settings"].(map[string]any)
	assert.Equal(t, "standard", settings["active_preset"])
	assert.Equal(t, true, settings["reminder_enabled"])
	assert.EqualValues(t, 180, settings["reminder_after_seconds"])
	assert.Equal(t, true, settings["notify_dashboard"])

	analytics := body["analytics"].(map[string]any)
	assert.EqualValues(t, 0, analytics["totalRequests"])
	assert.Contains(t, analytics, "within2minPercent")
}

func TestGetSettings_MerchantIDAlias(t *testing.T) {
	s := newTestServer(t)
	code, _ := do(t, s, "GET", "/api/settings/escalation?merchantId=hotel-1", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestGetSettings_MissingTenant(t *testing.T) {
	s := newTestServer(t)

	code, body := do(t, s, "GET", "/api/settings/escalation", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error"])
}

func TestPutSettings_Preset(t *testing.T) {
	s := newTestServer(t)

	code, body := do(t, s, "PUT", "/api/settings/escalation", map[string]any{"tenantId": "hotel-1", "preset": "strict"})
	require.Equal(t, http.StatusOK, code)
	settings := body["settings"].(map[string]any)
	assert.Equal(t, "strict", settings["active_preset"])
	assert.EqualValues(t, 60, settings["reminder_after_seconds"])
	assert.EqualValues(t, 1, body["version"])

	code, body = do(t, s, "PUT", "/api/settings/escalation", map[string]any{"tenantId": "hotel-1", "preset": "aggressive"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])
}

func TestPutSettings_CustomPolicy(t *testing.T) {
	s := newTestServer(t)

	custom := toPayload(policy.MustResolve(policy.PresetSoft))
	custom.ActivePreset = "custom"
	custom.ReminderAfterSeconds = 400
	custom.EscalationEnabled = true
	custom.EscalationAfterSeconds = 300

	code, body := do(t, s, "PUT", "/api/settings/escalation", map[string]any{"merchantId": "hotel-1", "settings": custom})
	require.Equal(t, http.StatusOK, code)
	settings := body["settings"].(map[string]any)
	assert.Equal(t, "custom", settings["active_preset"])
	assert.EqualValues(t, 400, settings["reminder_after_seconds"])
	assert.Len(t, body["warnings"], 1, "out-of-order delays are accepted with a warning")

	custom.ReminderAfterSeconds = -1
	code, _ = do(t, s, "PUT", "/api/settings/escalation", map[string]any{"tenantId": "hotel-1", "settings": custom})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestPutSettings_EditedPresetBecomesCustom(t *testing.T) {
	s := newTestServer(t)

	edited := toPayload(policy.MustResolve(policy.PresetStrict))
	edited.ReminderAfterSeconds = 999

	code, body := do(t, s, "PUT", "/api/settings/escalation", map[string]any{"tenantId": "hotel-1", "settings": edited})
	require.Equal(t, http.StatusOK, code)
	settings := body["settings"].(map[string]any)
	assert.Equal(t, "custom", settings["active_preset"])
	assert.EqualValues(t, 999, settings["reminder_after_seconds"])

	code, body = do(t, s, "GET", "/api/settings/escalation?tenantId=hotel-1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "custom", body["settings"].(map[string]any)["active_preset"])
}

func TestPutSettings_RequiresPresetOrSettings(t *testing.T) {
	s := newTestServer(t)
	code, _ := do(t, s, "PUT", "/api/settings/escalation", map[string]any{"tenantId": "hotel-1"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestPatchSettingsField(t *testing.T) {
	s := newTestServer(t)

	code, body := do(t, s, "PATCH", "/api/settings/escalation/field",
		map[string]any{"tenantId": "hotel-1", "path": "escalation.notifySms", "value": true})
	require.Equal(t, http.StatusOK, code)
	settings := body["settings"].(map[string]any)
	assert.Equal(t, true, settings["escalation_notify_sms"])
	assert.Equal(t, "custom", settings["active_preset"])

	code, _ = do(t, s, "PATCH", "/api/settings/escalation/field",
		map[string]any{"tenantId": "hotel-1", "path": "reminder.colour", "value": "red"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestListPresets(t *testing.T) {
	s := newTestServer(t)

	code, body := do(t, s, "GET", "/api/settings/escalation/presets", nil)
	require.Equal(t, http.StatusOK, code)
	presets := body["presets"].([]any)
	require.Len(t, presets, 4)
	assert.Equal(t, "minimal", presets[0].(map[string]any)["name"])
}

func TestRequestLifecycle(t *testing.T) {
	s := newTestServer(t)

	code, body := do(t, s, "POST", "/api/requests", map[string]any{"id": "REQ-1", "tenantId": "hotel-1", "handlerId": "staff-1"})
	require.Equal(t, http.StatusCreated, code)
	req := body["request"].(map[string]any)
	assert.Equal(t, "open", req["status"])
	assert.Equal(t, "push", req["channel"])

	code, body = do(t, s, "GET", "/api/requests/REQ-1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "reminder", body["nextStage"])

	code, body = do(t, s, "GET", "/api/requests?tenantId=hotel-1&status=open", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["requests"], 1)

	code, body = do(t, s, "POST", "/api/requests/REQ-1/acknowledge", map[string]any{"handlerId": "staff-2"})
	require.Equal(t, http.StatusOK, code)
	req = body["request"].(map[string]any)
	assert.Equal(t, "acknowledged", req["status"])
	assert.Equal(t, "staff-2", req["acknowledgedBy"])

	code, _ = do(t, s, "POST", "/api/requests/REQ-1/acknowledge", nil)
	assert.Equal(t, http.StatusConflict, code)

	code, body = do(t, s, "POST", "/api/requests/REQ-1/close", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "closed", body["request"].(map[string]any)["status"])

	code, _ = do(t, s, "POST", "/api/requests/REQ-1/close", nil)
	assert.Equal(t, http.StatusConflict, code)

	code, body = do(t, s, "GET", "/api/analytics/escalation?tenantId=hotel-1&days=1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["analytics"].(map[string]any)["totalRequests"])
}

func TestRequestErrors(t *testing.T) {
	s := newTestServer(t)

	code, _ := do(t, s, "GET", "/api/requests/REQ-404", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, s, "POST", "/api/requests", map[string]any{"handlerId": "staff-1"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, s, "POST", "/api/requests", map[string]any{"tenantId": "hotel-1", "channel": "pigeon"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, s, "POST", "/api/requests", map[string]any{"tenantId": "hotel-1", "colour": "red"})
	assert.Equal(t, http.StatusBadRequest, code, "unknown fields are rejected")
}

func TestAnalytics_InvalidDays(t *testing.T) {
	s := newTestServer(t)

	for _, days := range []string{"0", "abc", "1000"} {
		code, _ := do(t, s, "GET", "/api/analytics/escalation?tenantId=hotel-1&days="+days, nil)
		assert.Equal(t, http.StatusBadRequest, code, "days=%s", days)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	code, body := do(t, s, "GET", "/healthz", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body, "version")

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bellhop_http_requests_total")
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
