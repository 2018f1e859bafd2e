package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BTreeMap/JourneyMap/internal/models"
)

const sampleJourneyJSON = `{
	"title": "深夜独处的放松之旅",
	"summary": "一位用户在深夜独处时使用 App 控制设备放松身心。",
	"personaName": "小雨 · 28岁 设计师",
	"stages": [
		{
			"stageName": "期待",
			"goal": "放松",
			"userAction": "1. **调暗灯光**",
			"touchpoints": "手机、台灯",
			"thinking": "终于可以休息了",
			"feeling": "期待",
			"painPoints": "1. 担心 **噪音**",
			"designOpportunities": "1. 加入 **静音模式**",
			"technicalSupport": "1. **无刷马达**",
			"emotionScore": 7
		}
	]
}`

// newChatCompletionStub returns a server speaking just enough of the chat
// completions API for the OpenAI-compatible path, recording each request
// body it receives.
func newChatCompletionStub(t *testing.T, content string, bodies *[]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read request body: %v", err)
		}
		if bodies != nil {
			*bodies = append(*bodies, string(raw))
		}
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  "stub",
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]any{"role": "assistant", "content": content},
				},
			},
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
}

func TestGenerateRejectsBadInput(t *testing.T) {
	c := NewClient()
	ctx := context.Background()

	_, err := c.Generate(ctx, models.Provider("claude"), GenerateRequest{Prompt: "p", APIKey: "k"})
	assert.ErrorIs(t, err, models.ErrInvalidProvider)

	_, err = c.Generate(ctx, models.ProviderChatGPT, GenerateRequest{Prompt: "   ", APIKey: "k"})
	assert.ErrorIs(t, err, models.ErrEmptyPrompt)

	_, err = c.Generate(ctx, models.ProviderChatGPT, GenerateRequest{Prompt: "p"})
	assert.ErrorIs(t, err, models.ErrMissingAPIKey)

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, models.ProviderChatGPT, perr.Provider)
}

func TestGenerateChatGPT(t *testing.T) {
	var bodies []string
	srv := newChatCompletionStub(t, sampleJourneyJSON, &bodies)
	defer srv.Close()

	c := NewClient(WithChatGPTBaseURL(srv.URL))
	data, err := c.Generate(context.Background(), models.ProviderChatGPT, GenerateRequest{
		Prompt:    "为都市白领设计减压产品",
		Variables: models.DefaultVariables(),
		APIKey:    "test-key",
	})
	require.NoError(t, err)
	assert.Equal(t, "深夜独处的放松之旅", data.Title)
	assert.False(t, data.IsFallback)
	require.Len(t, data.Stages, 1)
	assert.Equal(t, 7, data.Stages[0].EmotionScore)

	require.Len(t, bodies, 1)
	body := bodies[0]
	assert.Contains(t, body, `"model":"gpt-4o"`)
	assert.Contains(t, body, "json_schema")
	assert.Contains(t, body, "journey_map")
	// English instruction set with the Chinese variable labels interpolated.
	assert.Contains(t, body, "User Prompt:")
	assert.Contains(t, body, "卧室")
}

func TestGenerateDeepSeek(t *testing.T) {
	var bodies []string
	srv := newChatCompletionStub(t, sampleJourneyJSON, &bodies)
	defer srv.Close()

	c := NewClient(WithDeepSeekBaseURL(srv.URL))
	data, err := c.Generate(context.Background(), models.ProviderDeepSeek, GenerateRequest{
		Prompt:    "为异地情侣设计远程互动产品",
		Variables: models.DefaultVariables(),
		APIKey:    "test-key",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, data.Stages)

	require.Len(t, bodies, 1)
	body := bodies[0]
	assert.Contains(t, body, `"model":"deepseek-chat"`)
	// Chinese instruction set end to end.
	assert.Contains(t, body, "用户需求:")
	assert.Contains(t, body, "你是一位资深的用户体验研究员")
}

func TestGenerateBackgroundIncluded(t *testing.T) {
	var bodies []string
	srv := newChatCompletionStub(t, sampleJourneyJSON, &bodies)
	defer srv.Close()

	c := NewClient(WithChatGPTBaseURL(srv.URL))
	_, err := c.Generate(context.Background(), models.ProviderChatGPT, GenerateRequest{
		Prompt:     "设计静音产品",
		Variables:  models.DefaultVariables(),
		APIKey:     "test-key",
		Background: "--- File: notes.md ---\n访谈记录",
	})
	require.NoError(t, err)
	require.Len(t, bodies, 1)
	assert.Contains(t, bodies[0], "notes.md")
	assert.Contains(t, bodies[0], "访谈记录")
}

func TestGenerateEmptyCompletion(t *testing.T) {
	srv := newChatCompletionStub(t, "", nil)
	defer srv.Close()

	c := NewClient(WithChatGPTBaseURL(srv.URL))
	_, err := c.Generate(context.Background(), models.ProviderChatGPT, GenerateRequest{
		Prompt:    "p",
		Variables: models.DefaultVariables(),
		APIKey:    "k",
	})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGenerateCancelledContext(t *testing.T) {
	srv := newChatCompletionStub(t, sampleJourneyJSON, nil)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(WithChatGPTBaseURL(srv.URL))
	_, err := c.Generate(ctx, models.ProviderChatGPT, GenerateRequest{
		Prompt:    "p",
		Variables: models.DefaultVariables(),
		APIKey:    "k",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecodeJourneyStripsFences(t *testing.T) {
	fenced := "```json\n" + sampleJourneyJSON + "\n```"
	data, err := decodeJourney(fenced)
	require.NoError(t, err)
	assert.Equal(t, "深夜独处的放松之旅", data.Title)
}

func TestDecodeJourneyRejectsBadShape(t *testing.T) {
	_, err := decodeJourney(`{"title":"t","summary":"s","personaName":"p","stages":[]}`)
	assert.ErrorIs(t, err, ErrBadShape)

	_, err = decodeJourney("not json")
	assert.ErrorIs(t, err, ErrBadShape)

	_, err = decodeJourney("   ")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestDecodeJourneyClampsEmotionScore(t *testing.T) {
	raw := fmt.Sprintf(`{"title":"t","summary":"s","personaName":"p","stages":[
		{"stageName":"a","goal":"g","userAction":"u","touchpoints":"t","thinking":"t","feeling":"f",
		 "painPoints":"p","designOpportunities":"d","technicalSupport":"t","emotionScore":%d},
		{"stageName":"b","goal":"g","userAction":"u","touchpoints":"t","thinking":"t","feeling":"f",
		 "painPoints":"p","designOpportunities":"d","technicalSupport":"t","emotionScore":%d}
	]}`, 0, 15)
	data, err := decodeJourney(raw)
	require.NoError(t, err)
	assert.Equal(t, 1, data.Stages[0].EmotionScore)
	assert.Equal(t, 10, data.Stages[1].EmotionScore)
}

func TestDecodeJourneyClearsFallbackFlag(t *testing.T) {
	raw := strings.Replace(sampleJourneyJSON, `"title"`, `"isFallback": true, "title"`, 1)
	data, err := decodeJourney(raw)
	require.NoError(t, err)
	assert.False(t, data.IsFallback, "provider output must never be marked as fallback")
}

func TestProviderErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &ProviderError{Provider: models.ProviderGemini, Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "gemini")
}
