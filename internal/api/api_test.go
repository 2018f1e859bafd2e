package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BTreeMap/JourneyMap/internal/models"
	"github.com/BTreeMap/JourneyMap/internal/provider"
	"github.com/BTreeMap/JourneyMap/internal/session"
	"github.com/BTreeMap/JourneyMap/internal/store"
)

type stubGenerator struct{}

func (stubGenerator) Generate(ctx context.Context, p models.Provider, req provider.GenerateRequest) (*models.JourneyData, error) {
	return &models.JourneyData{
		Title:       "测试旅程",
		Summary:     "概述",
		PersonaName: "测试用户",
		Stages: []models.JourneyStage{
			{StageName: "阶段一", Goal: "目标", EmotionScore: 5},
			{StageName: "阶段二", Goal: "目标", EmotionScore: 7},
		},
	}, nil
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func newTestServer(t *testing.T) (*httptest.Server, store.Store) {
	t.Helper()
	st := store.NewInMemoryStore()
	mgr, err := session.NewManager(16,
		session.WithGenerator(stubGenerator{}),
		session.WithRecorder(st),
		session.WithDebounceDelay(10*time.Millisecond),
	)
	require.NoError(t, err)
	t.Cleanup(mgr.Close)

	srv := httptest.NewServer(NewServer(mgr, st).Handler())
	t.Cleanup(srv.Close)
	return srv, st
}

func doJSON(t *testing.T, method, url string, body interface{}) (*http.Response, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func createSession(t *testing.T, base string) string {
	t.Helper()
	resp, env := doJSON(t, http.MethodPost, base+"/sessions", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(env.Result, &snap))
	require.NotEmpty(t, snap.ID)
	return snap.ID
}

func setKey(t *testing.T, base, id string) {
	t.Helper()
	resp, _ := doJSON(t, http.MethodPut, base+"/sessions/"+id+"/key",
		map[string]string{"provider": "gemini", "api_key": "test-key"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func waitForStatus(t *testing.T, base, id string, want session.Status) session.Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, env := doJSON(t, http.MethodGet, base+"/sessions/"+id, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var snap session.Snapshot
		require.NoError(t, json.Unmarshal(env.Result, &snap))
		if snap.Status == want {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("session %s never reached status %s", id, want)
	return session.Snapshot{}
}

func TestSessionLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createSession(t, srv.URL)

	resp, env := doJSON(t, http.MethodGet, srv.URL+"/sessions/"+id, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(env.Result, &snap))
	assert.Equal(t, id, snap.ID)
	assert.Equal(t, session.StatusIdle, snap.Status)
	assert.Equal(t, models.DefaultVariables(), snap.Variables)

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/sessions/"+id, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUnknownSession(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, env := doJSON(t, http.MethodGet, srv.URL+"/sessions/no-such-id", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "error", env.Status)
}

func TestGenerateFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createSession(t, srv.URL)
	setKey(t, srv.URL, id)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/generate",
		map[string]string{"prompt": "为都市白领设计减压产品"})
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	snap := waitForStatus(t, srv.URL, id, session.StatusSuccess)
	require.NotNil(t, snap.Journey)
	assert.Equal(t, "测试旅程", snap.Journey.Title)

	resp, env := doJSON(t, http.MethodGet, srv.URL+"/sessions/"+id+"/journey", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var journey models.JourneyData
	require.NoError(t, json.Unmarshal(env.Result, &journey))
	assert.Len(t, journey.Stages, 2)
}

func TestGenerateValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createSession(t, srv.URL)

	// Empty prompt.
	resp, env := doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/generate",
		map[string]string{"prompt": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, models.MsgPromptRequired, env.Message)

	// Missing API key.
	resp, env = doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/generate",
		map[string]string{"prompt": "设计产品"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Message, "API 密钥")
}

func TestVariableEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createSession(t, srv.URL)

	resp, env := doJSON(t, http.MethodPut, srv.URL+"/sessions/"+id+"/variables",
		map[string]string{"axis": "location", "value": "travel"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(env.Result, &snap))
	assert.Equal(t, models.LocationTravel, snap.Variables.Location)

	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/sessions/"+id+"/variables",
		map[string]string{"axis": "weather", "value": "rainy"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/sessions/"+id+"/variables",
		map[string]string{"axis": "mood", "value": "melancholy"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProviderEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createSession(t, srv.URL)

	resp, env := doJSON(t, http.MethodPut, srv.URL+"/sessions/"+id+"/provider",
		map[string]string{"provider": "deepseek"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(env.Result, &snap))
	assert.Equal(t, models.ProviderDeepSeek, snap.Provider)
	assert.True(t, snap.NeedsKey)

	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/sessions/"+id+"/provider",
		map[string]string{"provider": "claude"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStageEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createSession(t, srv.URL)
	setKey(t, srv.URL, id)
	doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/generate", map[string]string{"prompt": "设计产品"})
	waitForStatus(t, srv.URL, id, session.StatusSuccess)

	// Add.
	resp, env := doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/stages", nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var added map[string]int
	require.NoError(t, json.Unmarshal(env.Result, &added))
	assert.Equal(t, 2, added["index"])

	// Edit.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/stages/edit",
		map[string]interface{}{"index": 0, "field": "goal", "value": "新目标"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/stages/edit",
		map[string]interface{}{"index": 0, "field": "emotionScore", "value": "9"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/stages/edit",
		map[string]interface{}{"index": 99, "field": "goal", "value": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Delete down to one stage, then refuse.
	for i := 0; i < 2; i++ {
		resp, _ = doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/stages/delete",
			map[string]int{"index": 0})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, env = doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/stages/delete",
		map[string]int{"index": 0})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "error", env.Status)

	// The edit survived the deletions around it.
	_, env = doJSON(t, http.MethodGet, srv.URL+"/sessions/"+id+"/journey", nil)
	var journey models.JourneyData
	require.NoError(t, json.Unmarshal(env.Result, &journey))
	require.Len(t, journey.Stages, 1)
}

func TestJourneyBeforeGeneration(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createSession(t, srv.URL)
	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/sessions/"+id+"/journey", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListJourneys(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createSession(t, srv.URL)
	setKey(t, srv.URL, id)
	doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/generate", map[string]string{"prompt": "设计产品"})
	waitForStatus(t, srv.URL, id, session.StatusSuccess)

	// The recorder runs asynchronously after success.
	var records []store.JourneyRecord
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, env := doJSON(t, http.MethodGet, fmt.Sprintf("%s/journeys?session_id=%s", srv.URL, id), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		records = nil
		require.NoError(t, json.Unmarshal(env.Result, &records))
		if len(records) > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].SessionID)
	assert.Equal(t, "测试旅程", records[0].Title)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/journeys", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWatchStream(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createSession(t, srv.URL)
	setKey(t, srv.URL, id)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/sessions/" + id + "/watch"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Initial snapshot arrives immediately.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var snap session.Snapshot
	require.NoError(t, conn.ReadJSON(&snap))
	assert.Equal(t, id, snap.ID)
	assert.Equal(t, session.StatusIdle, snap.Status)

	doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/generate", map[string]string{"prompt": "设计产品"})

	var sawSuccess bool
	for i := 0; i < 10 && !sawSuccess; i++ {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		require.NoError(t, conn.ReadJSON(&snap))
		if snap.Status == session.StatusSuccess {
			sawSuccess = true
		}
	}
	assert.True(t, sawSuccess, "watcher never saw the generation succeed")
	require.NotNil(t, snap.Journey)
	assert.Equal(t, "测试旅程", snap.Journey.Title)
}
