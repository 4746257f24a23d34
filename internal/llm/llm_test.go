package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayaneofficial/soccer-career-sim/internal/attributes"
	"github.com/hayaneofficial/soccer-career-sim/internal/intake"
)

func fakeAPI(t *testing.T, status int, text string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))

		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req.Model)
		assert.NotEmpty(t, req.System)

		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"error":"boom"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"text": text}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClientDisabledWithoutKey(t *testing.T) {
	c := NewClient(Options{})
	assert.Nil(t, c)
	assert.False(t, c.Enabled())

	_, err := c.ProposeActivity(context.Background(), ActivityRequest{})
	assert.ErrorIs(t, err, ErrDisabled)
	_, isRuleBook := NewAuthor(c).(RuleBook)
	assert.True(t, isRuleBook)
}

func TestProposeActivity(t *testing.T) {
	srv := fakeAPI(t, http.StatusOK, "Here you go:\n```json\n"+
		`{"story":"Ran the hills.","grow_stats":{"Stamina":"0.3"},"hp_cost":"20","mp_cost":0,"base_intensity":0.9}`+
		"\n```")
	c := NewClient(Options{APIKey: "test-key", Endpoint: srv.URL})

	a, err := c.ProposeActivity(context.Background(), ActivityRequest{Name: "Ren", Action: "hill runs"})
	require.NoError(t, err)
	assert.Equal(t, "Ran the hills.", a.Story)
	assert.InDelta(t, 0.3, a.GrowStats["Stamina"], 1e-9)
	assert.Equal(t, 20, a.HPCost)
	assert.Equal(t, intake.MaxBaseIntensity, a.BaseIntensity)
	assert.Equal(t, intake.DefaultPerformance, a.Performance)
}

func TestProposeAttributes(t *testing.T) {
	srv := fakeAPI(t, http.StatusOK, `{"attributes":{"Pace":"18","Finishing":15.5},"comment":"Quick striker."}`)
	c := NewClient(Options{APIKey: "test-key", Endpoint: srv.URL})

	attrs, comment, err := c.ProposeAttributes(context.Background(), Profile{Name: "Ren", Age: 17, Position: "CF"})
	require.NoError(t, err)
	assert.Equal(t, 18.0, attrs["Pace"])
	assert.Equal(t, 15.5, attrs["Finishing"])
	assert.Equal(t, "Quick striker.", comment)
}

func TestAPIErrorFallsBackToRuleBook(t *testing.T) {
	srv := fakeAPI(t, http.StatusInternalServerError, "")
	c := NewClient(Options{APIKey: "test-key", Endpoint: srv.URL})

	_, err := c.ProposeActivity(context.Background(), ActivityRequest{})
	require.Error(t, err)

	a, err := NewAuthor(c).ProposeActivity(context.Background(), ActivityRequest{Name: "Ren", Action: "rest at home", HP: 40, MP: 80})
	require.NoError(t, err)
	assert.Equal(t, -25, a.HPCost)
	assert.Contains(t, a.Story, "Rest day")
}

func TestGarbageResponseIsAnError(t *testing.T) {
	srv := fakeAPI(t, http.StatusOK, "I'd rather not.")
	c := NewClient(Options{APIKey: "test-key", Endpoint: srv.URL})
	_, err := c.ProposeActivity(context.Background(), ActivityRequest{})
	assert.Error(t, err)
}

func TestRateLimit(t *testing.T) {
	srv := fakeAPI(t, http.StatusOK, "{}")
	c := NewClient(Options{APIKey: "test-key", Endpoint: srv.URL, MaxPerMinute: 1})

	_, err := c.Complete(context.Background(), "sys", "hi", 10)
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), "sys", "hi", 10)
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestAPIErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(529)
		w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`))
	}))
	t.Cleanup(srv.Close)
	c := NewClient(Options{APIKey: "test-key", Endpoint: srv.URL})

	_, err := c.Complete(context.Background(), "sys", "hi", 10)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 529, apiErr.StatusCode)
	assert.Equal(t, "overloaded_error", apiErr.Type)
	assert.Equal(t, "Overloaded", apiErr.Message)
}

func TestCompleteJoinsTextBlocks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[{"type":"text","text":"{\"story\":"},{"type":"text","text":"\"ok\"}"}],"stop_reason":"end_turn"}`))
	}))
	t.Cleanup(srv.Close)
	c := NewClient(Options{APIKey: "test-key", Endpoint: srv.URL})

	text, err := c.Complete(context.Background(), "sys", "hi", 10)
	require.NoError(t, err)
	assert.Equal(t, `{"story":"ok"}`, text)
}

func TestRuleBookActivity(t *testing.T) {
	rb := RuleBook{}
	ctx := context.Background()

	cases := []struct {
		action string
		hp     int
		stat   string
	}{
		{"走り込み 10km", 20, "Stamina"},
		{"Shooting practice after school", 10, "Finishing"},
		{"gym session", 15, "Strength"},
		{"no idea", 10, "Technique"},
	}
	for _, tc := range cases {
		a, err := rb.ProposeActivity(ctx, ActivityRequest{Name: "Ren", Action: tc.action, HP: 100, MP: 100})
		require.NoError(t, err, tc.action)
		assert.Equal(t, tc.hp, a.HPCost, tc.action)
		assert.Contains(t, a.GrowStats, tc.stat, tc.action)
		assert.Equal(t, 1.0, a.Performance, tc.action)
	}

	a, err := rb.ProposeActivity(ctx, ActivityRequest{Name: "Ren", Action: "dinner with the team", HP: 50, MP: 20})
	require.NoError(t, err)
	assert.Equal(t, 3.0, a.RelationChange[intake.TeamRelation])
	assert.Equal(t, 0.7, a.Performance)

	m, err := rb.ProposeActivity(ctx, ActivityRequest{Name: "Ren", Action: "rest", Match: true, HP: 100, MP: 100})
	require.NoError(t, err)
	assert.Contains(t, m.GrowStats, "Composure")
}

func TestRuleBookAttributes(t *testing.T) {
	attrs, comment, err := RuleBook{}.ProposeAttributes(context.Background(), Profile{
		Position:   "CF",
		Background: "A fast captain from Osaka",
	})
	require.NoError(t, err)
	assert.Len(t, attrs, len(attributes.Keys()))
	assert.Equal(t, 15.0, attrs["Pace"])
	assert.Equal(t, 13.0, attrs["Leadership"])
	assert.Equal(t, 12.0, attrs["Finishing"])
	assert.Equal(t, 10.0, attrs["Tackling"])
	assert.Contains(t, comment, "FW")
}
