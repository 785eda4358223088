package arena

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/modelarena/arena-platform/internal/llm"
)

// Builder phase: the judge model writes the question bank before the
// contestants ever see it.

// GenerationRequest configures a question-bank generation call.
type GenerationRequest struct {
	Categories      []string `json:"categories"`
	QuestionCount   int      `json:"question_count"`
	DifficultyLevel int      `json:"difficulty_level"`
	WebContext      string   `json:"-"`
}

var difficultyInstructions = map[int]string{
	1: "Difficulty level 1 (easiest): Questions should be solvable by most capable models. Straightforward, widely known facts or simple reasoning.",
	2: "Difficulty level 2: Moderately easy. Clear questions with well-established answers; may require a bit of reasoning or common knowledge.",
	3: "Difficulty level 3 (medium): Moderate difficulty. Mix of factual and reasoning questions that a strong model can handle with care.",
	4: "Difficulty level 4: Hard. Questions that require deep knowledge, multi-step reasoning, or nuance; challenging for many models.",
	5: "Difficulty level 5 (frontier only): Highest difficulty. Questions that would typically only be solvable by frontier-level models: subtle, expert-level, or cutting-edge knowledge; complex reasoning; ambiguous or multi-valid-answer cases where only the best models distinguish correctly.",
}

// BuildQuestionGenerationPrompt builds the messages asking the judge
// to produce a JSON question bank.
func BuildQuestionGenerationPrompt(req GenerationRequest) []llm.Message {
	level := req.DifficultyLevel
	if level < 1 {
		level = 3
	}
	if level > 5 {
		level = 5
	}
	count := req.QuestionCount
	if count <= 0 {
		count = 10
	}

	var categories []string
	for _, c := range req.Categories {
		if c = strings.TrimSpace(c); c != "" {
			categories = append(categories, c)
		}
	}
	categoriesText := "general knowledge"
	if len(categories) > 0 {
		categoriesText = strings.Join(categories, ", ")
	}

	userParts := []string{
		fmt.Sprintf("Generate exactly %d questions.", count),
		fmt.Sprintf("Topics or categories: %s.", categoriesText),
		"",
		fmt.Sprintf("DIFFICULTY LEVEL: %d (of 5). %s", level, difficultyInstructions[level]),
		"Generate all questions at this difficulty. Do not mix easier and harder; keep the set consistent.",
		"",
		"Each question should be clear and answerable in a short phrase or sentence. Provide a concise correct answer for each.",
		`Output format: [{"question":"...","answer":"..."}, ...]`,
	}
	if web := strings.TrimSpace(req.WebContext); web != "" {
		userParts = append(userParts,
			"",
			"--- WEB SEARCH CONTEXT (use to inform questions and answers) ---",
			web,
		)
	}

	return []llm.Message{
		{Role: llm.RoleSystem, Content: `You are generating a set of quiz questions for an AI model competition. Output ONLY a valid JSON array. Each element must have exactly "question" and "answer" keys (strings). No markdown, no code fence, no explanation—only the raw JSON array.`},
		{Role: llm.RoleUser, Content: strings.Join(userParts, "\n")},
	}
}

var codeFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ParseGeneratedQuestionSet parses the judge's reply into a question
// set. The reply may be a bare JSON array or one fenced in a markdown
// code block. Malformed JSON, an empty array, or a non-array result
// all return nil: the caller treats nil as "generation failed, retry",
// never as a crash.
func ParseGeneratedQuestionSet(rawContent string) *QuestionAnswerSet {
	jsonStr := strings.TrimSpace(rawContent)
	if jsonStr == "" {
		return nil
	}
	if m := codeFenceRe.FindStringSubmatch(jsonStr); m != nil {
		jsonStr = strings.TrimSpace(m[1])
	}

	var items []map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &items); err != nil || len(items) == 0 {
		return nil
	}
	set := QuestionAnswerSet{Questions: []string{}, Answers: []string{}}
	for _, item := range items {
		q := firstStringValue(item, "question")
		a := firstStringValue(item, "answer")
		if q != "" {
			set.Questions = append(set.Questions, q)
			set.Answers = append(set.Answers, a)
		}
	}
	if len(set.Questions) == 0 {
		return nil
	}
	return &set
}

// NormalizeGeneratedQuestionSet assigns stable q-<index> ids so the UI
// can track questions by id even when two questions share text.
func NormalizeGeneratedQuestionSet(set *QuestionAnswerSet) []GeneratedQuestion {
	if set == nil || len(set.Questions) == 0 {
		return []GeneratedQuestion{}
	}
	questions := make([]GeneratedQuestion, 0, len(set.Questions))
	for i, raw := range set.Questions {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		questions = append(questions, GeneratedQuestion{
			ID:            fmt.Sprintf("q-%d", i),
			Text:          text,
			CorrectAnswer: strings.TrimSpace(set.AnswerAt(i)),
		})
	}
	return questions
}
