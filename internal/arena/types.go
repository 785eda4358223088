package arena

import (
	"time"
)

// Slot identifiers for the four contestant positions.
const (
	SlotA = "A"
	SlotB = "B"
	SlotC = "C"
	SlotD = "D"
)

// AllSlots lists every slot the arena supports, in display order.
var AllSlots = []string{SlotA, SlotB, SlotC, SlotD}

// QuestionAnswerSet holds index-aligned questions and answers parsed
// from user-pasted text. An empty answer means no answer key was
// supplied for that question.
type QuestionAnswerSet struct {
	Questions []string `json:"questions"`
	Answers   []string `json:"answers"`
}

// Len returns the number of questions in the set.
func (s QuestionAnswerSet) Len() int { return len(s.Questions) }

// AnswerAt returns the answer for question i, or "" when none exists.
func (s QuestionAnswerSet) AnswerAt(i int) string {
	if i < 0 || i >= len(s.Answers) {
		return ""
	}
	return s.Answers[i]
}

// GeneratedQuestion is one entry of a judge-generated question bank.
// IDs are stable across re-renders so clients can hide the current
// question by id rather than by string equality.
type GeneratedQuestion struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	CorrectAnswer string `json:"correct_answer,omitempty"`
	Category      string `json:"category,omitempty"`
	GradingRubric string `json:"grading_rubric,omitempty"`
}

// ScoreRound records the judge's scores for one question. Rounds are
// append-only; corrections create a new round.
type ScoreRound struct {
	QuestionIndex int            `json:"questionIndex"`
	QuestionText  string         `json:"questionText"`
	Scores        map[string]int `json:"scores"`
	Timestamp     int64          `json:"timestamp"`
}

// NewScoreRound copies the scores map so the round stays immutable
// even if the caller keeps mutating its own map.
func NewScoreRound(questionIndex int, questionText string, scores map[string]int) ScoreRound {
	copied := make(map[string]int, len(scores))
	for slot, n := range scores {
		copied[slot] = n
	}
	return ScoreRound{
		QuestionIndex: questionIndex,
		QuestionText:  questionText,
		Scores:        copied,
		Timestamp:     time.Now().UnixMilli(),
	}
}

// SlotResponse pairs a contestant slot with its final (sanitized)
// answer text for the current question. Empty text means the
// contestant produced no response.
type SlotResponse struct {
	Slot string
	Text string
}

// JudgePromptSpec carries everything one judge invocation needs. It
// is built per call and never persisted.
type JudgePromptSpec struct {
	Responses          []SlotResponse
	AnswerKey          string
	WebContext         string
	QuestionText       string
	UserCorrection     string
	CustomInstructions string
	// NumericPrecision, when in [0,5], tells the judge how many
	// decimal places to compare numeric answers to. Negative means
	// unset.
	NumericPrecision int
}

// RunConfig is the per-session arena configuration supplied by the
// client before a run starts.
type RunConfig struct {
	// SlotModels maps slot -> model id for each configured contestant.
	SlotModels map[string]string `json:"slot_models"`
	// JudgeModel is the user's explicit judge choice; empty = auto.
	JudgeModel string `json:"judge_model"`
	// Blind enables anonymized, shuffled judge review.
	Blind bool `json:"blind"`
	// NumericPrecision in [0,5]; nil when the client omitted it. A
	// pointer because 0 is a meaningful value (compare as integers) and
	// must stay distinguishable from an absent key.
	NumericPrecision *int `json:"numeric_precision,omitempty"`
	// JudgeInstructions optionally replaces the stock judge preamble.
	JudgeInstructions string `json:"judge_instructions"`
	// WebSearch enables judge fact-checking context when no answer
	// key is available.
	WebSearch bool `json:"web_search"`
}

// ContestantIDs returns the configured model ids in slot order,
// skipping empty slots.
func (c RunConfig) ContestantIDs() []string {
	ids := make([]string, 0, len(AllSlots))
	for _, slot := range AllSlots {
		if id := c.SlotModels[slot]; id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// NumericPrecisionValue returns the configured precision, or -1 when
// the field was omitted.
func (c RunConfig) NumericPrecisionValue() int {
	if c.NumericPrecision == nil {
		return -1
	}
	return *c.NumericPrecision
}
