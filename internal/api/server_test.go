package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/dota/heroes"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/dota/history"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/dota/opendota"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/events"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/gui"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/mining"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/recommend"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/refresh"
)

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Code    int             `json:"code"`
}

func testServices(t *testing.T) *gui.Services {
	t.Helper()

	catalog := recommend.NewCatalog([]recommend.Item{
		{ID: "1", Name: "Anti-Mage", AttackType: "Melee", PrimaryAttribute: "Agility", Role: "Carry"},
		{ID: "2", Name: "Axe", AttackType: "Melee", PrimaryAttribute: "Strength", Role: "Initiator"},
		{ID: "8", Name: "Juggernaut", AttackType: "Melee", PrimaryAttribute: "Agility", Role: "Carry"},
		{ID: "14", Name: "Pudge", AttackType: "Melee", PrimaryAttribute: "Strength", Role: "Disabler"},
	})
	set, err := recommend.NewPatternSet([]recommend.Pattern{
		{Items: []string{"1", "2", "14"}, Support: 4},
		{Items: []string{"1", "2"}, Support: 6},
	})
	require.NoError(t, err)

	patterns := recommend.NewPatternStore(set)
	first := recommend.RandFunc(func(int) int { return 0 })
	dispatcher := events.NewEventDispatcher()

	provider := refresh.SequenceFunc(func(context.Context, int) ([]history.Sequence, error) {
		return []history.Sequence{
			{MatchID: 1, Picks: []string{"2", "1", "8"}},
			{MatchID: 2, Picks: []string{"2", "1", "8"}},
		}, nil
	})

	return &gui.Services{
		Context:     context.Background(),
		Recommender: recommend.NewRecommender(patterns, recommend.NewCatalogStore(catalog), first),
		Refresh:     refresh.NewService(provider, &mining.PrefixSpan{}, patterns, nil, dispatcher, refresh.Options{MinSupport: 0.5}),
		Dispatcher:  dispatcher,
	}
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	server := NewServer(nil, testServices(t), nil)
	go server.wsHub.Run()
	t.Cleanup(server.wsHub.Stop)

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return server, ts
}

func postJSON(t *testing.T, url, body string) (*http.Response, envelope) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func getJSON(t *testing.T, url string) (*http.Response, envelope) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 8080, cfg.Port)
	assert.Contains(t, cfg.AllowedOrigins, "http://localhost:*")
}

func TestNewServer_NilArguments(t *testing.T) {
	server := NewServer(nil, nil, nil)
	require.NotNil(t, server)
	assert.Equal(t, 8080, server.Port())
	assert.NotNil(t, server.WebSocketHub())
	assert.NoError(t, server.Shutdown(context.Background()))
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
	assert.EqualValues(t, 2, body["patterns"])
	assert.EqualValues(t, 1, body["observers"], "websocket observer")
	assert.NotContains(t, body, "opendota")
}

func TestHealth_ReportsOpenDotaClient(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer upstream.Close()

	client := opendota.NewClient(opendota.ClientOptions{
		BaseURL:        upstream.URL,
		RateLimit:      rate.Inf,
		InitialBackoff: time.Millisecond,
	})
	_, err := client.GetPublicMatches(context.Background())
	require.Error(t, err)

	services := testServices(t)
	services.OpenDota = client
	server := NewServer(nil, services, nil)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		OpenDota struct {
			Breaker           string `json:"breaker"`
			TotalRequests     int    `json:"total_requests"`
			FailedRequests    int    `json:"failed_requests"`
			ConsecutiveErrors int    `json:"consecutive_errors"`
		} `json:"opendota"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "closed", body.OpenDota.Breaker)
	assert.Equal(t, 1, body.OpenDota.TotalRequests)
	assert.Equal(t, 1, body.OpenDota.FailedRequests)
	assert.Equal(t, 1, body.OpenDota.ConsecutiveErrors)
}

func TestShutdown_UnregistersWebSocketObserver(t *testing.T) {
	services := testServices(t)
	server := NewServer(nil, services, nil)
	require.Equal(t, 1, services.Dispatcher.ObserverCount())

	require.NoError(t, server.Shutdown(context.Background()))
	assert.Equal(t, 0, services.Dispatcher.ObserverCount())
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	postJSON(t, ts.URL+"/api/v1/recommendations", `{"picks":["1","2"]}`)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "draft_recommendations_total")
}

func TestRecommend_Pattern(t *testing.T) {
	_, ts := newTestServer(t)

	resp, env := postJSON(t, ts.URL+"/api/v1/recommendations", `{"picks":["Anti-Mage","Axe"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result recommend.Result
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, recommend.Result{ItemID: "14", ItemName: "Pudge", Source: "pattern", Score: 1}, result)

	var view struct {
		PortraitURL string `json:"portrait_url"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, heroes.PortraitBaseURL+"pudge.png", view.PortraitURL)
}

func TestRecommend_Similarity(t *testing.T) {
	_, ts := newTestServer(t)

	resp, env := postJSON(t, ts.URL+"/api/v1/recommendations", `{"picks":["2","1"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result recommend.Result
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "8", result.ItemID)
	assert.Equal(t, "similarity", result.Source)
	assert.Equal(t, 0, result.Score)
}

func TestRecommend_NoResult(t *testing.T) {
	_, ts := newTestServer(t)

	resp, env := postJSON(t, ts.URL+"/api/v1/recommendations", `{"picks":["1","14"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "null", string(env.Data))
	assert.Equal(t, recommend.NoResultMessage, env.Message)
}

func TestRecommend_BadRequests(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"too few picks", `{"picks":["1"]}`},
		{"too many picks", `{"picks":["1","2","8","14","5"]}`},
		{"malformed body", `{"picks":`},
		{"unknown field", `{"heroes":["1","2"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, env := postJSON(t, ts.URL+"/api/v1/recommendations", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, http.StatusBadRequest, env.Code)
			assert.NotEmpty(t, env.Message)
		})
	}
}

func TestRecommend_RequiresJSONContentType(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/v1/recommendations", "text/plain", strings.NewReader(`{"picks":["1","2"]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestTally(t *testing.T) {
	_, ts := newTestServer(t)

	_, env := postJSON(t, ts.URL+"/api/v1/recommendations/tally", `{"picks":["1","2"]}`)

	var candidates []recommend.Candidate
	require.NoError(t, json.Unmarshal(env.Data, &candidates))
	assert.Equal(t, []recommend.Candidate{{ItemID: "14", Score: 1}}, candidates)
}

func TestHeroes(t *testing.T) {
	_, ts := newTestServer(t)

	resp, env := getJSON(t, ts.URL+"/api/v1/heroes")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var items []recommend.Item
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 4)
	assert.Equal(t, "Anti-Mage", items[0].Name)

	resp, env = getJSON(t, ts.URL+"/api/v1/heroes/search?q=pudg")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var results []struct {
		Hero  recommend.Item `json:"hero"`
		Score int            `json:"score"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &results))
	require.NotEmpty(t, results)
	assert.Equal(t, "14", results[0].Hero.ID)

	resp, _ = getJSON(t, ts.URL+"/api/v1/heroes/search")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPatterns(t *testing.T) {
	_, ts := newTestServer(t)

	resp, env := getJSON(t, ts.URL+"/api/v1/patterns?limit=1")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list gui.PatternListResponse
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, 2, list.Status.Patterns)
	require.Len(t, list.Patterns, 1)
	assert.Equal(t, 6, list.Patterns[0].Support)
	assert.Equal(t, []string{"Anti-Mage", "Axe"}, list.Patterns[0].Names)
}

func TestRefreshPatterns_Wait(t *testing.T) {
	_, ts := newTestServer(t)

	resp, env := postJSON(t, ts.URL+"/api/v1/patterns/refresh?wait=true", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report refresh.Report
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, 2, report.Sequences)
	assert.Equal(t, mining.MinerBuiltin, report.Miner)
	assert.False(t, report.Degraded)

	// The refreshed set replaces the seeded one: 2, 1 -> 8 is now a pattern.
	_, env = postJSON(t, ts.URL+"/api/v1/recommendations", `{"picks":["2","1"]}`)
	var result recommend.Result
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "pattern", result.Source)
	assert.Equal(t, "8", result.ItemID)
}

func TestRefreshPatterns_BroadcastsOverWebSocket(t *testing.T) {
	server, ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return server.WebSocketHub().ClientCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	resp, err := http.Post(ts.URL+"/api/v1/patterns/refresh", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		_, message, err := conn.ReadMessage()
		require.NoError(t, err)

		var event struct {
			Type string `json:"type"`
		}
		require.NoError(t, json.Unmarshal(message, &event))
		if event.Type == events.TypePatternsRefreshed {
			return
		}
	}
}
