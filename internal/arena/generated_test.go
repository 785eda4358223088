package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/modelarena/arena-platform/internal/llm"
)

func TestParseGeneratedQuestionSetBareJSON(t *testing.T) {
	raw := `[{"question":"Q1","answer":"A1"},{"question":"Q2","answer":"A2"}]`
	set := ParseGeneratedQuestionSet(raw)
	assert.NotNil(t, set)
	assert.Equal(t, []string{"Q1", "Q2"}, set.Questions)
	assert.Equal(t, []string{"A1", "A2"}, set.Answers)
}

func TestParseGeneratedQuestionSetCodeFence(t *testing.T) {
	raw := "Here you go:\n```json\n[{\"question\":\"Q1\",\"answer\":\"A1\"}]\n```\nHope that helps!"
	set := ParseGeneratedQuestionSet(raw)
	assert.NotNil(t, set)
	assert.Equal(t, []string{"Q1"}, set.Questions)
}

func TestParseGeneratedQuestionSetPlainFence(t *testing.T) {
	raw := "```\n[{\"question\":\"Q1\",\"answer\":\"A1\"}]\n```"
	set := ParseGeneratedQuestionSet(raw)
	assert.NotNil(t, set)
	assert.Equal(t, []string{"Q1"}, set.Questions)
}

func TestParseGeneratedQuestionSetFailures(t *testing.T) {
	assert.Nil(t, ParseGeneratedQuestionSet(""))
	assert.Nil(t, ParseGeneratedQuestionSet("not json"))
	assert.Nil(t, ParseGeneratedQuestionSet("[]"))
	assert.Nil(t, ParseGeneratedQuestionSet(`{"question":"not an array"}`))
	assert.Nil(t, ParseGeneratedQuestionSet(`[{"answer":"no question key"}]`))
}

func TestParseGeneratedQuestionSetSkipsEmptyQuestions(t *testing.T) {
	raw := `[{"question":"","answer":"x"},{"question":"Real?","answer":"yes"}]`
	set := ParseGeneratedQuestionSet(raw)
	assert.NotNil(t, set)
	assert.Equal(t, []string{"Real?"}, set.Questions)
	assert.Equal(t, []string{"yes"}, set.Answers)
}

func TestNormalizeGeneratedQuestionSetIDs(t *testing.T) {
	set := &QuestionAnswerSet{
		Questions: []string{" First? ", "Second?"},
		Answers:   []string{"one", "two"},
	}
	questions := NormalizeGeneratedQuestionSet(set)
	assert.Len(t, questions, 2)
	assert.Equal(t, "q-0", questions[0].ID)
	assert.Equal(t, "First?", questions[0].Text)
	assert.Equal(t, "one", questions[0].CorrectAnswer)
	assert.Equal(t, "q-1", questions[1].ID)
}

func TestNormalizeGeneratedQuestionSetNil(t *testing.T) {
	assert.Empty(t, NormalizeGeneratedQuestionSet(nil))
	assert.Empty(t, NormalizeGeneratedQuestionSet(&QuestionAnswerSet{}))
}

func TestNormalizeGeneratedDuplicateTextKeepsDistinctIDs(t *testing.T) {
	set := &QuestionAnswerSet{
		Questions: []string{"Same?", "Same?"},
		Answers:   []string{"a", "b"},
	}
	questions := NormalizeGeneratedQuestionSet(set)
	assert.Len(t, questions, 2)
	assert.NotEqual(t, questions[0].ID, questions[1].ID)
}

func TestBuildQuestionGenerationPromptDefaults(t *testing.T) {
	messages := BuildQuestionGenerationPrompt(GenerationRequest{})
	assert.Len(t, messages, 2)
	assert.Equal(t, llm.RoleSystem, messages[0].Role)
	assert.Contains(t, messages[0].Content, "Output ONLY a valid JSON array")
	assert.Contains(t, messages[1].Content, "Generate exactly 10 questions.")
	assert.Contains(t, messages[1].Content, "general knowledge")
	assert.Contains(t, messages[1].Content, "DIFFICULTY LEVEL: 3")
}

func TestBuildQuestionGenerationPromptCategoriesAndLevel(t *testing.T) {
	messages := BuildQuestionGenerationPrompt(GenerationRequest{
		Categories:      []string{"physics", " history "},
		QuestionCount:   7,
		DifficultyLevel: 5,
	})
	user := messages[1].Content
	assert.Contains(t, user, "Generate exactly 7 questions.")
	assert.Contains(t, user, "physics, history")
	assert.Contains(t, user, "DIFFICULTY LEVEL: 5")
	assert.Contains(t, user, "frontier-level")
}

func TestBuildQuestionGenerationPromptClampsLevel(t *testing.T) {
	messages := BuildQuestionGenerationPrompt(GenerationRequest{DifficultyLevel: 9})
	assert.Contains(t, messages[1].Content, "DIFFICULTY LEVEL: 5")
}

func TestBuildQuestionGenerationPromptWebContext(t *testing.T) {
	messages := BuildQuestionGenerationPrompt(GenerationRequest{
		WebContext: "Recent discovery: element 120 synthesized.",
	})
	assert.Contains(t, messages[1].Content, "WEB SEARCH CONTEXT")
	assert.Contains(t, messages[1].Content, "element 120")
}
