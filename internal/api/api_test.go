package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gametwin/gaming-twin/server/internal/services"
	"github.com/gametwin/gaming-twin/server/internal/store/memory"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestServer(t *testing.T, hour int, storeHealthy bool) *httptest.Server {
	t.Helper()
	st := memory.New()
	clk := fixedClock{t: time.Date(2025, time.March, 14, hour, 0, 0, 0, time.UTC)}
	log := zerolog.Nop()

	router := NewRouter(
		services.NewTwinService(st, clk, 5),
		services.NewThresholdService(st, 5),
		services.NewReportService(st),
		func() bool { return storeHealthy },
		log,
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestIngestEvent_ProcessedEnvelope(t *testing.T) {
	srv := newTestServer(t, 12, true)

	resp, body := postJSON(t, srv.URL+"/events", map[string]interface{}{
		"user_id":   "kid-1",
		"game_name": "fortnite",
		"duration":  45,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "processed", body["status"])
	assert.Equal(t, "kid-1", body["user_id"])
	assert.Equal(t, "fortnite", body["game"])
	assert.Equal(t, float64(45), body["today_minutes"])
	assert.Equal(t, float64(45), body["weekly_minutes"])
	assert.Equal(t, "Healthy", body["state"])
}

func TestIngestEvent_AccumulatesAndReclassifies(t *testing.T) {
	srv := newTestServer(t, 12, true)

	for i := 0; i < 3; i++ {
		resp, _ := postJSON(t, srv.URL+"/events", map[string]interface{}{
			"user_id": "kid-2", "game_name": "minecraft", "duration": 50,
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, body := getJSON(t, srv.URL+"/reports/kid-2")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(150), body["today_minutes"])
	assert.Equal(t, "Excessive", body["state"])
}

func TestIngestEvent_RejectsMalformedBody(t *testing.T) {
	srv := newTestServer(t, 12, true)

	resp, body := postJSON(t, srv.URL+"/events", map[string]interface{}{
		"user_id": "", "game_name": "x", "duration": 10,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "error", body["status"])
	assert.NotEmpty(t, body["message"])

	resp2, err := http.Post(srv.URL+"/events", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	body2 := decodeBody(t, resp2)
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
	assert.Equal(t, "error", body2["status"])
}

func TestGetTwin_ShapeAndNotFound(t *testing.T) {
	srv := newTestServer(t, 23, true)

	resp, body := getJSON(t, srv.URL+"/digital-twin/ghost")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User not found", body["error"])

	_, _ = postJSON(t, srv.URL+"/events", map[string]interface{}{
		"user_id": "kid-3", "game_name": "roblox", "duration": 70,
	})

	resp, body = getJSON(t, srv.URL+"/digital-twin/kid-3")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "kid-3", body["user_id"])
	assert.Equal(t, "Moderate", body["state"])

	th, ok := body["thresholds"].(map[string]interface{})
	require.True(t, ok, "thresholds object missing: %v", body)
	assert.Equal(t, float64(120), th["daily"])
	assert.Equal(t, float64(60), th["night"])

	agg, ok := body["aggregates"].(map[string]interface{})
	require.True(t, ok, "aggregates object missing: %v", body)
	assert.Equal(t, float64(70), agg["today_minutes"])
	// processed at 23:00, so the night counter moved too
	assert.Equal(t, float64(70), agg["night_minutes"])
}

func TestGetReport_FlattenedViewAndNotFound(t *testing.T) {
	srv := newTestServer(t, 12, true)

	resp, body := getJSON(t, srv.URL+"/reports/ghost")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User not found", body["error"])

	_, _ = postJSON(t, srv.URL+"/events", map[string]interface{}{
		"user_id": "kid-4", "game_name": "zelda", "duration": 20,
	})

	resp, body = getJSON(t, srv.URL+"/reports/kid-4")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "kid-4", body["user_id"])
	assert.Equal(t, float64(20), body["today_minutes"])
	assert.Equal(t, float64(20), body["weekly_minutes"])
	assert.Equal(t, float64(0), body["night_minutes"])
	assert.Equal(t, "Healthy", body["state"])
	assert.Equal(t, float64(120), body["daily_threshold"])
	assert.Equal(t, float64(60), body["night_threshold"])
}

func TestUpdateThresholds_PartialMerge(t *testing.T) {
	srv := newTestServer(t, 12, true)
	url := srv.URL + "/digital-twin/kid-5/threshold"

	resp, body := postJSON(t, url, map[string]interface{}{"daily": 150, "night": 50})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "kid-5", body["user_id"])
	th := body["thresholds"].(map[string]interface{})
	assert.Equal(t, float64(150), th["daily"])
	assert.Equal(t, float64(50), th["night"])

	resp, body = postJSON(t, url, map[string]interface{}{"night": 40})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	th = body["thresholds"].(map[string]interface{})
	assert.Equal(t, float64(150), th["daily"])
	assert.Equal(t, float64(40), th["night"])
}

func TestUpdateThresholds_RejectsNonPositive(t *testing.T) {
	srv := newTestServer(t, 12, true)

	resp, body := postJSON(t, srv.URL+"/digital-twin/kid-6/threshold", map[string]interface{}{"daily": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "error", body["status"])
}

func TestHealth_UpAndDown(t *testing.T) {
	up := newTestServer(t, 12, true)
	resp, body := getJSON(t, up.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "connected", body["database"])

	down := newTestServer(t, 12, false)
	resp, body = getJSON(t, down.URL+"/health")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "error", body["status"])
}

func TestRoutes_MethodDiscipline(t *testing.T) {
	srv := newTestServer(t, 12, true)

	resp, err := http.Get(srv.URL + "/events")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Post(fmt.Sprintf("%s/reports/kid-7", srv.URL), "application/json", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
