package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/modelarena/arena-platform/internal/llm"
)

func models(ids ...string) []llm.ModelInfo {
	out := make([]llm.ModelInfo, len(ids))
	for i, id := range ids {
		out[i] = llm.ModelInfo{ID: id}
	}
	return out
}

func TestPickJudgeHonorsUserChoice(t *testing.T) {
	sel := PickJudgeModel("deepseek:deepseek-chat", []string{"llama-8b"}, models("llama-8b"))
	assert.Equal(t, "deepseek:deepseek-chat", sel.ID)
	assert.False(t, sel.Fallback)
	assert.Empty(t, sel.Error)
}

func TestPickJudgeRejectsContestantChoice(t *testing.T) {
	sel := PickJudgeModel("llama-8b", []string{"llama-8b"}, models("llama-8b", "qwen-32b"))
	assert.Equal(t, "qwen-32b", sel.ID)
	assert.True(t, sel.Fallback)
}

func TestPickJudgeContestantChoiceCaseInsensitive(t *testing.T) {
	sel := PickJudgeModel("LLaMA-8B", []string{"llama-8b"}, models("llama-8b", "qwen-32b"))
	assert.Equal(t, "qwen-32b", sel.ID)
}

func TestPickJudgePrefersCloudOverLocal(t *testing.T) {
	sel := PickJudgeModel("", []string{"llama-8b"},
		models("llama-8b", "qwen-72b-instruct", "grok:grok-3-mini"))
	assert.Equal(t, "grok:grok-3-mini", sel.ID)
	assert.True(t, sel.Fallback)
}

func TestPickJudgeCloudProviderPriority(t *testing.T) {
	sel := PickJudgeModel("", nil,
		models("grok:grok-3-mini", "deepseek:deepseek-chat"))
	assert.Equal(t, "deepseek:deepseek-chat", sel.ID)
}

func TestPickJudgeUnknownCloudProviderStillUsable(t *testing.T) {
	sel := PickJudgeModel("", nil, models("openai:gpt-4o"))
	assert.Equal(t, "openai:gpt-4o", sel.ID)
}

func TestPickJudgeLocalRankedByParamSize(t *testing.T) {
	sel := PickJudgeModel("", nil, models("mistral-7b", "llama-3.1-70b", "phi-3b"))
	assert.Equal(t, "llama-3.1-70b", sel.ID)
}

func TestPickJudgeInstructBonusOutweighsSize(t *testing.T) {
	sel := PickJudgeModel("", nil, models("big-70b", "small-1b-instruct"))
	assert.Equal(t, "small-1b-instruct", sel.ID)
}

func TestPickJudgeNoCandidates(t *testing.T) {
	sel := PickJudgeModel("", []string{"llama-8b", "qwen-32b"}, models("llama-8b", "qwen-32b"))
	assert.Empty(t, sel.ID)
	assert.Contains(t, sel.Error, "No judge model available")
}

func TestPickJudgeEmptyRoster(t *testing.T) {
	sel := PickJudgeModel("", nil, nil)
	assert.Empty(t, sel.ID)
	assert.NotEmpty(t, sel.Error)
}

func TestPickJudgeNeverReturnsContestant(t *testing.T) {
	roster := models("a-7b", "b-13b", "deepseek:deepseek-chat", "c-70b-instruct")
	contestants := []string{"a-7b", "deepseek:deepseek-chat"}
	sel := PickJudgeModel("", contestants, roster)
	assert.NotEmpty(t, sel.ID)
	for _, c := range contestants {
		assert.NotEqual(t, c, sel.ID)
	}
}

func TestExtractParamSize(t *testing.T) {
	assert.Equal(t, 32.0, extractParamSize("qwen3-32b-instruct"))
	assert.Equal(t, 70.0, extractParamSize("llama-3.1-70B"))
	assert.Equal(t, 1.5, extractParamSize("qwen2-1.5b"))
	assert.Equal(t, 0.0, extractParamSize("no-size-here"))
}
