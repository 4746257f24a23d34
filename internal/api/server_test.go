package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayaneofficial/soccer-career-sim/internal/engine"
	"github.com/hayaneofficial/soccer-career-sim/internal/persistence"
	"github.com/hayaneofficial/soccer-career-sim/internal/session"
)

func newTestServer(t *testing.T, rate int) *httptest.Server {
	t.Helper()
	db, err := persistence.Open(filepath.Join(t.TempDir(), "careers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sessions := &session.Manager{DB: db, Seed: 21}
	s := &Server{
		Sessions:   sessions,
		Metrics:    NewMetrics(sessions.Active),
		AdminKey:   "secret",
		RateLimit:  rate,
		RateWindow: time.Minute,
	}
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string, headers ...string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func createCareer(t *testing.T, base string) session.View {
	t.Helper()
	resp, body := do(t, http.MethodPost, base+"/api/v1/careers", `{
		"name": "Yuto Araki",
		"position": "CB",
		"category": "Professional",
		"formation": "4-4-2",
		"seeds": {"players": [
			{"name": "Veteran", "position": "CB", "market_value": "3億", "age": "31"},
			{"name": "Keeper", "pos": "GK", "value": 50000000, "number": 1, "foot": "左"}
		]}
	}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var v session.View
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Equal(t, "/api/v1/career/"+v.ID, resp.Header.Get("Location"))
	return v
}

func TestCreateAndReadCareer(t *testing.T) {
	srv := newTestServer(t, 100)
	v := createCareer(t, srv.URL)
	assert.Equal(t, "Professional", v.Category)
	assert.Equal(t, "4-4-2", v.Formation)
	assert.Equal(t, 22, v.Player.Age)
	assert.Equal(t, 27, v.Squad)

	resp, body := do(t, http.MethodGet, srv.URL+"/api/v1/career/"+v.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got session.View
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, v.ID, got.ID)
	assert.True(t, strings.HasPrefix(got.Player.MarketValueText, "¥"))

	resp, body = do(t, http.MethodGet, srv.URL+"/api/v1/career/"+v.ID+"/roster", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var r session.RosterView
	require.NoError(t, json.Unmarshal(body, &r))
	require.Len(t, r.Members, 27)
	names := map[string]session.MemberView{}
	for _, m := range r.Members {
		names[m.Name] = m
	}
	assert.Equal(t, 1, names["Keeper"].Number)
	assert.Equal(t, "Left", names["Keeper"].Foot)
	assert.Contains(t, names, "Veteran")

	resp, body = do(t, http.MethodGet, srv.URL+"/api/v1/careers", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []persistence.CareerSummary
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Yuto Araki", list[0].Player)
}

func TestUnknownCareer(t *testing.T) {
	srv := newTestServer(t, 100)
	resp, _ := do(t, http.MethodGet, srv.URL+"/api/v1/career/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = do(t, http.MethodPost, srv.URL+"/api/v1/career/nope/activity", `{"action":"rest"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateValidation(t *testing.T) {
	srv := newTestServer(t, 100)
	resp, _ := do(t, http.MethodPost, srv.URL+"/api/v1/careers", `{"name":"X","category":"Sunday"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = do(t, http.MethodPost, srv.URL+"/api/v1/careers", `{`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = do(t, http.MethodPost, srv.URL+"/api/v1/careers", `{"name":"X","seeds":"lots"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestActivityMatchAndAptitude(t *testing.T) {
	srv := newTestServer(t, 100)
	v := createCareer(t, srv.URL)
	base := srv.URL + "/api/v1/career/" + v.ID

	resp, body := do(t, http.MethodPost, base+"/activity", `{"action":"defend set pieces"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out engine.Outcome
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, 1, out.Day)
	assert.Equal(t, 88, out.HP)

	resp, body = do(t, http.MethodPost, base+"/activity",
		`{"activity":{"story":"Rest.","hp_cost":-40,"mp_cost":-40}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, 100, out.HP)

	resp, _ = do(t, http.MethodPost, base+"/activity", `{"activity":"nonsense"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, base+"/match", `{}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = do(t, http.MethodPost, base+"/match", `{}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = do(t, http.MethodPost, base+"/aptitude", `{"position":"rsb","points":25}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var apt struct {
		Used     float64            `json:"used"`
		Aptitude map[string]float64 `json:"aptitude"`
	}
	require.NoError(t, json.Unmarshal(body, &apt))
	assert.Equal(t, 25.0, apt.Used)
	assert.InDelta(t, 2.5, apt.Aptitude["RSB"], 1e-9)

	resp, _ = do(t, http.MethodPost, base+"/aptitude", `{"position":"SW","points":5}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = do(t, http.MethodGet, base+"/events?limit=3", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var events []engine.Event
	require.NoError(t, json.Unmarshal(body, &events))
	require.Len(t, events, 3)
	assert.Equal(t, "aptitude", events[0].Category)
	assert.Equal(t, "match", events[1].Category)

	resp, _ = do(t, http.MethodGet, base+"/events?limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteNeedsAdmin(t *testing.T) {
	srv := newTestServer(t, 100)
	v := createCareer(t, srv.URL)
	url := srv.URL + "/api/v1/career/" + v.ID

	resp, _ := do(t, http.MethodDelete, url, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, _ = do(t, http.MethodDelete, url, "", "Authorization", "Bearer secret")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = do(t, http.MethodGet, url, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRateLimitedCreate(t *testing.T) {
	srv := newTestServer(t, 1)
	createCareer(t, srv.URL)
	resp, _ := do(t, http.MethodPost, srv.URL+"/api/v1/careers", `{"name":"Again"}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, 100)
	createCareer(t, srv.URL)
	do(t, http.MethodGet, srv.URL+"/api/v1/status", "")

	resp, body := do(t, http.MethodGet, srv.URL+"/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	text := string(body)
	assert.Contains(t, text, "careersim_http_requests_total")
	assert.Contains(t, text, `careersim_actions_total{kind="create"} 1`)
	assert.Contains(t, text, "careersim_careers_live 1")
}

func TestRateLimiterWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"))
	assert.Equal(t, 61, rl.RetryAfter("1.2.3.4"))

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("1.2.3.4"))
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", clientIP(r))
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(r))
}
