package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BTreeMap/JourneyMap/internal/models"
)

func TestSystemInstructionDeterministic(t *testing.T) {
	vars := models.DefaultVariables()
	a := SystemInstruction(vars, models.ProviderGemini)
	b := SystemInstruction(vars, models.ProviderGemini)
	require.Equal(t, a, b, "same inputs must produce identical instructions")
}

func TestSystemInstructionInterpolatesLabels(t *testing.T) {
	vars := models.ContextVariables{
		Location: models.LocationTravel,
		Social:   models.SocialPartnered,
		Time:     models.TimeLateNight,
		Mood:     models.MoodAdventurous,
	}
	for _, p := range []models.Provider{models.ProviderGemini, models.ProviderChatGPT, models.ProviderDeepSeek} {
		out := SystemInstruction(vars, p)
		assert.Contains(t, out, "旅行/酒店", "provider %s missing location label", p)
		assert.Contains(t, out, "伴侣互动", "provider %s missing social label", p)
		assert.Contains(t, out, "深夜", "provider %s missing time label", p)
		assert.Contains(t, out, "探索/冒险", "provider %s missing mood label", p)
		assert.NotContains(t, out, "%s", "provider %s left an unfilled placeholder", p)
	}
}

func TestSystemInstructionProviderBranching(t *testing.T) {
	vars := models.DefaultVariables()
	ds := SystemInstruction(vars, models.ProviderDeepSeek)
	gm := SystemInstruction(vars, models.ProviderGemini)
	gpt := SystemInstruction(vars, models.ProviderChatGPT)

	assert.Equal(t, gm, gpt, "gemini and chatgpt share the default instruction set")
	assert.NotEqual(t, ds, gm, "deepseek uses its own instruction set")
	assert.Contains(t, ds, "你是一位资深的用户体验研究员")
	assert.Contains(t, gm, "You are a seasoned user experience researcher")
	// Both still demand Simplified Chinese output.
	assert.Contains(t, ds, "简体中文")
	assert.Contains(t, gm, "简体中文")
}

func TestUserMessage(t *testing.T) {
	out := UserMessage("为异地情侣设计的远程互动产品", "", models.ProviderChatGPT)
	assert.True(t, strings.HasPrefix(out, `User Prompt: "为异地情侣设计的远程互动产品"`), "prompt must be quoted up front: %q", out)
	assert.NotContains(t, out, "Background Context")
	assert.Contains(t, out, "Respond in Simplified Chinese")

	ds := UserMessage("为异地情侣设计的远程互动产品", "", models.ProviderDeepSeek)
	assert.True(t, strings.HasPrefix(ds, `用户需求: "为异地情侣设计的远程互动产品"`))
	assert.Contains(t, ds, "使用简体中文")
}

func TestUserMessageInterpolatesVerbatim(t *testing.T) {
	// Inner quotes and backslashes pass through untouched.
	raw := `一款"安静"的产品\设计`
	out := UserMessage(raw, "", models.ProviderChatGPT)
	assert.Contains(t, out, `User Prompt: "`+raw+`"`)
	assert.NotContains(t, out, `\"`)

	ds := UserMessage(raw, "", models.ProviderDeepSeek)
	assert.Contains(t, ds, `用户需求: "`+raw+`"`)
}

func TestUserMessageWithBackground(t *testing.T) {
	bg := AppendBackgroundFile("", "research.md", "竞品分析：市场上主流产品对比")
	bg = AppendBackgroundFile(bg, "", "用户访谈摘要")

	require.Equal(t, "--- File: research.md ---\n竞品分析：市场上主流产品对比\n\n用户访谈摘要", bg)

	out := UserMessage("设计一款静音产品", bg, models.ProviderGemini)
	assert.Contains(t, out, "Background Context / Reference Material:")
	assert.Contains(t, out, "--- File: research.md ---")
	assert.Contains(t, out, "用户访谈摘要")
}
