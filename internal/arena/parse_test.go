package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuestionsEmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\n\t"} {
		set := ParseQuestionsAndAnswers(input)
		assert.Empty(t, set.Questions)
		assert.Empty(t, set.Answers)
	}
}

func TestParseQuestionsJSONArray(t *testing.T) {
	input := `[{"question":"What is 2+2?","answer":"4"},{"q":"Capital of France?","a":"Paris"}]`
	set := ParseQuestionsAndAnswers(input)
	assert.Equal(t, []string{"What is 2+2?", "Capital of France?"}, set.Questions)
	assert.Equal(t, []string{"4", "Paris"}, set.Answers)
}

func TestParseQuestionsJSONNumericAnswer(t *testing.T) {
	input := `[{"question":"How many planets?","answer":8}]`
	set := ParseQuestionsAndAnswers(input)
	assert.Equal(t, []string{"How many planets?"}, set.Questions)
	assert.Equal(t, []string{"8"}, set.Answers)
}

func TestParseQuestionsJSONSkipsNonObjectMembers(t *testing.T) {
	input := `[{"question":"Q1","answer":"A1"}, "stray note", {"question":"Q2"}]`
	set := ParseQuestionsAndAnswers(input)
	assert.Equal(t, []string{"Q1", "Q2"}, set.Questions)
	assert.Equal(t, []string{"A1", ""}, set.Answers)
}

func TestParseQuestionsMalformedJSONFallsThrough(t *testing.T) {
	input := "[not json at all"
	set := ParseQuestionsAndAnswers(input)
	assert.Equal(t, 1, set.Len())
	assert.Equal(t, "[not json at all", set.Questions[0])
}

func TestParseQuestionsSeparateBlocks(t *testing.T) {
	input := `Questions:
1. What is the speed of light?
2. Who wrote Hamlet?

Answers:
1. 299792458 m/s
2. Shakespeare`
	set := ParseQuestionsAndAnswers(input)
	assert.Equal(t, []string{"What is the speed of light?", "Who wrote Hamlet?"}, set.Questions)
	assert.Equal(t, []string{"299792458 m/s", "Shakespeare"}, set.Answers)
}

func TestParseQuestionsSeparateBlocksAnswerKeyHeader(t *testing.T) {
	input := `1. First?
2. Second?

Answer Key:
1. one
2. two`
	set := ParseQuestionsAndAnswers(input)
	assert.Equal(t, []string{"First?", "Second?"}, set.Questions)
	assert.Equal(t, []string{"one", "two"}, set.Answers)
}

func TestParseQuestionsSeparateBlocksMissingTrailingAnswers(t *testing.T) {
	input := `1. First?
2. Second?
3. Third?

Answers:
1. one`
	set := ParseQuestionsAndAnswers(input)
	assert.Equal(t, 3, set.Len())
	assert.Equal(t, "one", set.Answers[0])
	assert.Equal(t, "", set.Answers[1])
	assert.Equal(t, "", set.Answers[2])
}

func TestParseQuestionsNumberedInterleaved(t *testing.T) {
	input := `1. What is 2+2?
Answer: 4

2) Capital of France?
Answer: Paris`
	set := ParseQuestionsAndAnswers(input)
	assert.Equal(t, []string{"What is 2+2?", "Capital of France?"}, set.Questions)
	assert.Equal(t, []string{"4", "Paris"}, set.Answers)
}

func TestParseQuestionsNumberedMultiLineAnswer(t *testing.T) {
	input := `1. Explain photosynthesis.
Answer: Plants convert light to energy.
Carbon dioxide and water become glucose.

2. What is gravity?
Answer: Attraction between masses.`
	set := ParseQuestionsAndAnswers(input)
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, "Plants convert light to energy.\nCarbon dioxide and water become glucose.", set.Answers[0])
	assert.Equal(t, "Attraction between masses.", set.Answers[1])
}

func TestParseQuestionsNumberedWithoutAnswers(t *testing.T) {
	input := `1. First question?
2. Second question?
3. Third question?`
	set := ParseQuestionsAndAnswers(input)
	assert.Equal(t, []string{"First question?", "Second question?", "Third question?"}, set.Questions)
	assert.Equal(t, []string{"", "", ""}, set.Answers)
}

func TestParseQuestionsMarkdownDashList(t *testing.T) {
	input := `- What is entropy?
- Who discovered penicillin?`
	set := ParseQuestionsAndAnswers(input)
	assert.Equal(t, []string{"What is entropy?", "Who discovered penicillin?"}, set.Questions)
}

func TestParseQuestionsMarkdownStarList(t *testing.T) {
	input := `* First star question?
* Second star question?`
	set := ParseQuestionsAndAnswers(input)
	assert.Equal(t, []string{"First star question?", "Second star question?"}, set.Questions)
}

func TestParseQuestionsQALabeled(t *testing.T) {
	input := `Q: What is the boiling point of water?
A: 100C
Q: Largest planet?
A: Jupiter`
	set := ParseQuestionsAndAnswers(input)
	assert.Equal(t, []string{"What is the boiling point of water?", "Largest planet?"}, set.Questions)
	assert.Equal(t, []string{"100C", "Jupiter"}, set.Answers)
}

func TestParseQuestionsQuestionAnswerLabeled(t *testing.T) {
	input := `Question: Who painted the Mona Lisa?
Answer: Leonardo da Vinci
Question: Smallest prime?
Answer: 2`
	set := ParseQuestionsAndAnswers(input)
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, "Leonardo da Vinci", set.Answers[0])
}

func TestParseQuestionsParagraphBlocks(t *testing.T) {
	input := `Describe the water cycle in one sentence.

Name three noble gases.`
	set := ParseQuestionsAndAnswers(input)
	assert.Equal(t, []string{"Describe the water cycle in one sentence.", "Name three noble gases."}, set.Questions)
	assert.Equal(t, []string{"", ""}, set.Answers)
}

func TestParseQuestionsSingleLineFallback(t *testing.T) {
	set := ParseQuestionsAndAnswers("Just one plain question without any structure")
	assert.Equal(t, []string{"Just one plain question without any structure"}, set.Questions)
	assert.Equal(t, []string{""}, set.Answers)
}

func TestParseQuestionsCRLFInput(t *testing.T) {
	input := "1. First?\r\nAnswer: one\r\n\r\n2. Second?\r\nAnswer: two"
	set := ParseQuestionsAndAnswers(input)
	assert.Equal(t, []string{"First?", "Second?"}, set.Questions)
	assert.Equal(t, []string{"one", "two"}, set.Answers)
}

func TestAnswerAtOutOfRange(t *testing.T) {
	set := QuestionAnswerSet{Questions: []string{"q"}, Answers: []string{"a"}}
	assert.Equal(t, "a", set.AnswerAt(0))
	assert.Equal(t, "", set.AnswerAt(1))
	assert.Equal(t, "", set.AnswerAt(-1))
}

func TestMigrateQuestionsAndAnswers(t *testing.T) {
	combined := MigrateQuestionsAndAnswers("1. Alpha?\n2. Beta?", "1. first\n2. second")
	assert.Equal(t, "1. Alpha?\nAnswer: first\n\n2. Beta?\nAnswer: second", combined)

	set := ParseQuestionsAndAnswers(combined)
	assert.Equal(t, []string{"Alpha?", "Beta?"}, set.Questions)
	assert.Equal(t, []string{"first", "second"}, set.Answers)
}

func TestMigrateQuestionsWithoutAnswers(t *testing.T) {
	combined := MigrateQuestionsAndAnswers("Alpha?\nBeta?", "")
	assert.Equal(t, "1. Alpha?\n\n2. Beta?", combined)
}

func TestMigrateEmptyQuestions(t *testing.T) {
	assert.Equal(t, "", MigrateQuestionsAndAnswers("", "1. orphan answer"))
	assert.Equal(t, "", MigrateQuestionsAndAnswers("   \n  ", ""))
}

func TestMigrateMoreQuestionsThanAnswers(t *testing.T) {
	combined := MigrateQuestionsAndAnswers("1. Alpha?\n2. Beta?", "1. only")
	assert.Equal(t, "1. Alpha?\nAnswer: only\n\n2. Beta?", combined)
}
