package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/duelscope/internal/config"
	"github.com/ramonehamilton/duelscope/internal/facade"
)

var testNow = time.Date(2023, 11, 14, 23, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, cfg *Config) (*Server, string) {
	t.Helper()
	dataDir := t.TempDir()

	appConfig := config.DefaultConfig()
	appConfig.Data.Dir = dataDir
	appConfig.Cache.Watch = false
	appConfig.Classes = []config.ClassConfig{
		{Level: 10, ClassID: 3, Name: "Mage"},
		{Level: 20, ClassID: 7, Name: "Warrior"},
	}

	services, err := facade.NewServices(appConfig, facade.ServicesOptions{
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
	})
	require.NoError(t, err)

	return NewServer(cfg, facade.NewStatsFacade(services)), dataDir
}

func writeLog(t *testing.T, dataDir, mode, name string, lines ...string) {
	t.Helper()
	dir := filepath.Join(dataDir, mode)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestNewServer_NilConfig(t *testing.T) {
	s := NewServer(nil, nil)

	assert.Equal(t, 5000, s.Port())
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := get(t, s, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)
}

func TestStats_EmptyMode(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := get(t, s, "/api/stats?mode=unranked")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"stats":[],"total_matches":0}`, rec.Body.String())
}

func TestStats_DefaultMode(t *testing.T) {
	s, dataDir := newTestServer(t, nil)
	writeLog(t, dataDir, "ranked", "a.txt",
		"1700000000:ranked:5:3:10:7:20:1",
		"1700000001:ranked:5:3:10:7:20:2",
		"1700000002:ranked:5:3:10:7:20:1",
	)

	rec := get(t, s, "/api/stats")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"stats": [
			{"class_name": "Mage", "winrate": 66.67, "matches": 3},
			{"class_name": "Warrior", "winrate": 33.33, "matches": 3}
		],
		"total_matches": 3
	}`, rec.Body.String())
}

func TestStats_BadRequests(t *testing.T) {
	s, _ := newTestServer(t, nil)

	for _, target := range []string{
		"/api/stats?start_date=14/11/2023",
		"/api/stats?end_date=tomorrow",
		"/api/stats?last_matches=0",
		"/api/stats?level=high",
		"/api/stats?latest_only=maybe",
		"/api/stats?mode=..",
		"/api/matchups?last_matches=x",
	} {
		rec := get(t, s, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), target)
		assert.Equal(t, float64(http.StatusBadRequest), body["code"], target)
	}
}

func TestMatchupsAndModes(t *testing.T) {
	s, dataDir := newTestServer(t, nil)
	writeLog(t, dataDir, "ranked", "a.txt", "1700000000:ranked:5:3:10:7:20:1")

	rec := get(t, s, "/api/matchups")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"classes":["Mage","Warrior"]`)

	rec = get(t, s, "/api/modes")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"default_mode": "ranked",
		"modes": [{"key": "ranked", "label": "Ranked"}, {"key": "casual", "label": "Casual"}]
	}`, rec.Body.String())
}

func TestTodayAndRefresh(t *testing.T) {
	s, dataDir := newTestServer(t, nil)
	writeLog(t, dataDir, "ranked", "a.txt", "1700000000:ranked:5:3:10:7:20:1")

	rec := get(t, s, "/api/stats/today")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/stats/refresh?mode=ranked", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"today_matches":1`)

	rec = get(t, s, "/api/stats/today?mode=ranked")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"period_label":"This Week"`)

	req = httptest.NewRequest(http.MethodPost, "/api/stats/refresh?mode=arena", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetrics(t *testing.T) {
	s, _ := newTestServer(t, nil)
	get(t, s, "/api/stats?mode=ranked")

	rec := get(t, s, "/api/system/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"scans":1`)
}

func TestDashboard(t *testing.T) {
	s, dataDir := newTestServer(t, nil)
	writeLog(t, dataDir, "ranked", "a.txt", "1700000000:ranked:5:3:10:7:20:1")

	rec := get(t, s, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Mage")
	assert.Contains(t, body, `href="/?mode=casual"`)
	assert.Contains(t, body, `/charts/winrates?latest_only=true&amp;mode=ranked`)
}

func TestCharts(t *testing.T) {
	s, dataDir := newTestServer(t, nil)
	writeLog(t, dataDir, "ranked", "a.txt", "1700000000:ranked:5:3:10:7:20:1")

	for _, target := range []string{"/charts/winrates", "/charts/matchups?latest_only=true"} {
		rec := get(t, s, target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, rec.Body.String(), "echarts")
	}

	rec := get(t, s, "/charts/winrates?start_date=bad")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimit(t *testing.T) {
	s, _ := newTestServer(t, &Config{Port: 5000, RateLimit: 0.001, RateBurst: 2})

	assert.Equal(t, http.StatusOK, get(t, s, "/api/modes").Code)
	assert.Equal(t, http.StatusOK, get(t, s, "/api/modes").Code)

	rec := get(t, s, "/api/modes")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Non-API routes are not limited.
	assert.Equal(t, http.StatusOK, get(t, s, "/health").Code)
}

func TestJSONContentType(t *testing.T) {
	s, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/stats/refresh", strings.NewReader("mode=ranked"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}
