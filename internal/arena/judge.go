package arena

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/modelarena/arena-platform/internal/llm"
)

// ContestantSystemPrompt is the hardcoded system prompt for Arena
// contestants. It must never mention judges, scoring, competition,
// other models, or evaluation; any persisted per-model system prompt
// is ignored while a slot is competing.
const ContestantSystemPrompt = `Answer the question directly and concisely. Follow any instructions or constraints given. Do not discuss how you would be evaluated. End your response with "Final Answer: " followed by your concise answer.`

// SeededRand is a deterministic random source for the blind-review
// shuffle. The seed string is folded with a 31-multiplier 32-bit hash
// and advanced with the numerical-recipes LCG (1664525, 1013904223);
// both are fixed here bit-for-bit because blind-mode reproducibility
// depends on the exact sequence.
type SeededRand struct {
	state uint32
}

// NewSeededRand builds a generator from a string seed, typically
// "<runID>:<questionIndex>" so each round shuffles differently while
// repeated judge calls for the same round keep the same order.
func NewSeededRand(seed string) *SeededRand {
	var h uint32
	for _, b := range []byte(seed) {
		h = 31*h + uint32(b)
	}
	return &SeededRand{state: h}
}

// Next returns the next value in [0, 1).
func (r *SeededRand) Next() float64 {
	r.state = 1664525*r.state + 1013904223
	return float64(r.state) / 4294967296.0
}

// ShuffleResponses returns a Fisher–Yates shuffled copy; the input
// slice is left untouched.
func ShuffleResponses(responses []SlotResponse, random func() float64) []SlotResponse {
	out := make([]SlotResponse, len(responses))
	copy(out, responses)
	for i := len(out) - 1; i > 0; i-- {
		j := int(random() * float64(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// JudgePrompt is the assembled instruction set for one judge call.
// ResponseOrder is populated in blind mode: ResponseOrder[i] is the
// slot whose answer was presented as "Response i+1".
type JudgePrompt struct {
	Messages      []llm.Message
	ResponseOrder []string
}

func numericPrecisionNote(precision int) string {
	if precision < 0 || precision > 5 {
		return ""
	}
	if precision == 0 {
		return "NUMERIC ANSWERS: When the answer key or any response is numeric, compare values as integers (no decimal places). Score as correct if the numeric value matches when rounded to the specified precision."
	}
	return fmt.Sprintf("NUMERIC ANSWERS: When the answer key or any response is numeric, compare values to %d decimal place(s). Score as correct if the numeric value matches when rounded to that precision.", precision)
}

// BuildJudgePrompt assembles the direct (named-slot) judge prompt. The
// judge is told the exact competing set and must reply with one
// "Model X: N/10 - reason" line per slot, nothing else.
func BuildJudgePrompt(spec JudgePromptSpec) JudgePrompt {
	slots := make([]string, len(spec.Responses))
	for i, r := range spec.Responses {
		slots[i] = r.Slot
	}
	competingList := strings.Join(slots, ", ")
	firstSlot := SlotA
	if len(slots) > 0 {
		firstSlot = slots[0]
	}
	feedback := strings.TrimSpace(spec.UserCorrection)
	customInstr := strings.TrimSpace(spec.CustomInstructions)
	answerKey := strings.TrimSpace(spec.AnswerKey)

	instr := customInstr
	if instr == "" {
		instr = "You are a judge. Score each model response 1-10 (10 = best) with one short reason."
	}

	parts := []string{
		instr,
		"",
		fmt.Sprintf("COMPETING MODELS (authoritative—do not guess): This round has exactly %d model(s): %s. You must output exactly one line for each of these, in this order: %s. Do not add or mention Model E or any other model. Only %s. If a model has no response below, write: Model X: 0/10 - No response.",
			len(slots), competingList, competingList, competingList),
		"",
	}
	if note := numericPrecisionNote(spec.NumericPrecision); note != "" {
		parts = append(parts, note, "")
	}
	if answerKey != "" {
		parts = append(parts, directAnswerKeyBasis)
	} else {
		parts = append(parts, directOwnKnowledgeBasis)
	}
	parts = append(parts,
		"",
		fmt.Sprintf(`CRITICAL OUTPUT FORMAT: Do NOT output <think> tags, chain-of-thought, reasoning, or any analysis. Do NOT write paragraphs. Your ENTIRE reply must be ONLY the score lines—nothing before them, nothing after. Start your very first character with "Model %s:". Any text before the first "Model" line is a format violation.`, firstSlot),
		"",
		fmt.Sprintf("Output exactly these lines, in this order (%d line(s)):", len(slots)),
	)
	for _, slot := range slots {
		parts = append(parts, fmt.Sprintf("Model %s: X/10 - one short sentence why right or wrong", slot))
	}
	parts = append(parts, "If a model has no response in the sections below: Model X: 0/10 - No response.", "")

	if answerKey != "" {
		parts = append(parts, "--- ANSWER KEY (base your scoring on this) ---", answerKey, "")
	}
	if spec.WebContext != "" {
		parts = append(parts, "--- WEB SEARCH (use only when no answer key and your own knowledge is not definitive) ---", spec.WebContext, "")
	}
	question := spec.QuestionText
	if question == "" {
		question = "(none)"
	}
	parts = append(parts, "--- ORIGINAL PROMPT ---", question, "")
	for _, r := range spec.Responses {
		text := strings.TrimSpace(r.Text)
		if text == "" {
			text = "(no response)"
		}
		parts = append(parts, fmt.Sprintf("--- MODEL %s ---", r.Slot), text, "")
	}
	userContent := strings.Join(parts, "\n")

	var system string
	if answerKey != "" {
		system = fmt.Sprintf(directAnswerKeySystem, len(slots), competingList, firstSlot)
	}

	var messages []llm.Message
	switch {
	case feedback != "" && system != "":
		messages = []llm.Message{
			{Role: llm.RoleSystem, Content: system + "\n\nUser correction to apply when scoring:\n" + feedback},
			{Role: llm.RoleUser, Content: userContent},
		}
	case feedback != "":
		messages = []llm.Message{
			{Role: llm.RoleSystem, Content: "You are a judge. Use the user correction below when scoring. Your reply must be ONLY the score lines (Model B: X/10 - comment, etc.). No reasoning, no <think>, no other text.\n\nUser correction:\n" + feedback},
			{Role: llm.RoleUser, Content: userContent},
		}
	case system != "":
		messages = []llm.Message{
			{Role: llm.RoleSystem, Content: system},
			{Role: llm.RoleUser, Content: userContent},
		}
	default:
		messages = []llm.Message{{Role: llm.RoleUser, Content: userContent}}
	}
	return JudgePrompt{Messages: messages}
}

// judgeCriteria are read to the judge in blind mode, where per-slot
// identity cues must not influence scoring.
var judgeCriteria = []string{
	"correctness_against_answer_key",
	"logical_validity",
	"constraint_compliance",
	"clarity",
	"completeness",
}

// BuildBlindJudgePrompt assembles the anonymized judge prompt:
// responses are shuffled with random (pass NewSeededRand(...).Next for
// reproducible order; nil falls back to the global source) and
// relabeled "Response 1..N". The returned ResponseOrder lets the
// caller map the judge's per-position scores back to slots.
func BuildBlindJudgePrompt(spec JudgePromptSpec, random func() float64) JudgePrompt {
	if random == nil {
		random = rand.Float64
	}
	shuffled := ShuffleResponses(spec.Responses, random)
	order := make([]string, len(shuffled))
	for i, r := range shuffled {
		order[i] = r.Slot
	}
	n := len(order)
	feedback := strings.TrimSpace(spec.UserCorrection)
	customInstr := strings.TrimSpace(spec.CustomInstructions)
	answerKey := strings.TrimSpace(spec.AnswerKey)
	criteriaLine := strings.Join(judgeCriteria, ", ")

	instr := customInstr
	if instr == "" {
		instr = fmt.Sprintf("You are a judge. Score each response 0-10 (10 = best) with one short reason. Consider: %s. Do NOT identify or guess which model wrote which response.", criteriaLine)
	}

	parts := []string{
		instr,
		"",
		fmt.Sprintf(`There are exactly %d responses, labeled Response 1 through Response %d. You must output exactly one line per response, in order. Format: "Response 1: X/10 - one short reason." then "Response 2: X/10 - ..." and so on. If a response is missing or empty, write: Response N: 0/10 - No response.`, n, n),
		"",
	}
	if note := numericPrecisionNote(spec.NumericPrecision); note != "" {
		parts = append(parts, note, "")
	}
	if answerKey != "" {
		parts = append(parts, blindAnswerKeyBasis)
	} else {
		parts = append(parts, blindOwnKnowledgeBasis)
	}
	parts = append(parts,
		"",
		`CRITICAL: Your ENTIRE reply must be ONLY the score lines. No <think>, no preamble, no analysis. Start with "Response 1:".`,
		"",
	)
	if answerKey != "" {
		parts = append(parts, "--- ANSWER KEY ---", answerKey, "")
	}
	if spec.WebContext != "" {
		parts = append(parts, "--- WEB SEARCH (use only when no answer key and your own knowledge is not definitive) ---", spec.WebContext, "")
	}
	question := spec.QuestionText
	if question == "" {
		question = "(none)"
	}
	parts = append(parts, "--- ORIGINAL PROMPT ---", question, "")
	for i, r := range shuffled {
		text := strings.TrimSpace(r.Text)
		if text == "" {
			text = "(no response)"
		}
		parts = append(parts, fmt.Sprintf("--- Response %d ---", i+1), text, "")
	}
	userContent := strings.Join(parts, "\n")

	var system string
	if answerKey != "" {
		system = fmt.Sprintf(blindAnswerKeySystem, criteriaLine, n)
	} else {
		system = fmt.Sprintf(blindOwnKnowledgeSystem, criteriaLine, n)
	}
	if feedback != "" {
		system += "\n\nUser correction:\n" + feedback
	}

	return JudgePrompt{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: system},
			{Role: llm.RoleUser, Content: userContent},
		},
		ResponseOrder: order,
	}
}

const directAnswerKeyBasis = `BASIS FOR SCORING: An ANSWER KEY is provided below. Use it as the reference for the correct result. Your job is to decide whether each model's response is FUNCTIONALLY EQUIVALENT to the answer key—i.e. does it reach the same end result? Different wording, phrasing, or structure is fine as long as the meaning or result is the same. For math, the value or expression should be equivalent; for concepts, the same idea. If a model's response contains a line starting with "Final Answer:", use THAT line as the model's answer (or the same answer stated elsewhere)—ignore any extra reasoning above it. If there is no "Final Answer:" line, evaluate the full response.

Examples of equivalences: "3" and "x=3"; "Max Planck", "Planck" and "Final Answer: Max P"; "ampere" and "Ampere"; "H2O" and "water". Do NOT require word-for-word match. Do NOT penalize concise or minimal phrasing when the answer is correct. Same correct answer = same score band (e.g. both 10/10 or both 9/10).

SCORING BANDS: Same result or same idea as key = 8-10 (do NOT give 1/10 for correct-but-different wording). Partially correct or close = 5-7. Clearly wrong, irrelevant, or no response = 1-3 (0 for no response). Reserve 1/10 only for no response or answers that are plainly wrong—not for answers that are right in substance but phrased differently.`

const directOwnKnowledgeBasis = `BASIS FOR SCORING: No answer key was provided. First use your own knowledge to evaluate correctness. If your own knowledge is not definitive, then use the WEB SEARCH section below (if present) to fact-check. Do not rely on web alone when your knowledge is sufficient. IMPORTANT: If a model's response contains a line starting with "Final Answer:", use THAT line as the model's answer—ignore any verbose reasoning above it. Do NOT penalize concise phrasing. Same correct answer = same score; do not reward repetition or verbosity. Focus on factual accuracy. Do NOT penalize for formatting, capitalization, phrasing, or omitting variable names (e.g. "3" and "x=3" are the same answer).`

const directAnswerKeySystem = `You are a judge. An ANSWER KEY is provided—use it as the reference for the correct result. A response is CORRECT if it is functionally equivalent to the key (same end result), not necessarily word-for-word. Use your judgment to equate different phrasings, formats, or explanations that yield the same result (e.g. "Max Planck", "Planck", or a truncated "Max P" when the key is Max Planck). Do NOT give a higher score for repetition, verbosity, or "matching format"—if two models give the same correct answer, they must receive the same score. Do NOT penalize concise or minimal phrasing. For math, same value or expression; for concepts, same meaning.

CALIBRATION: Reserve 1/10 only for no response, completely wrong, or irrelevant answers. If a response expresses the same idea or condition as the answer key (even in different words or with different structure), score at least 6-10. Do NOT give 1/10 merely because the wording differs from the key. Same substantive answer = 8-10; partial or close = 5-7; wrong or missing = 1-3.

Score exactly %d model(s): %s. Output exactly one line for each, in that order. No other models. No <think>, no chain-of-thought, no analysis. Start with "Model %s:".`

const blindAnswerKeyBasis = `BASIS FOR SCORING: An ANSWER KEY is provided—use it as the reference for the correct result. Judge whether each response is FUNCTIONALLY EQUIVALENT (same end result), not word-for-word. Equate "Max Planck", "Planck", or truncated "Max P" when the key is Max Planck. If a response contains "Final Answer:", use that line (or the same answer elsewhere). Do NOT give a higher score for repetition or verbosity; do NOT penalize concise phrasing. Same correct answer = same score band.

SCORING BANDS: Same result or same idea as key = 8-10 (do NOT give 1/10 for correct-but-different wording). Partial or close = 5-7. Wrong, irrelevant, or no response = 1-3 (0 for no response). Reserve 1/10 only for no response or plainly wrong answers.`

const blindOwnKnowledgeBasis = `BASIS FOR SCORING: No answer key was provided. First use your own knowledge to evaluate correctness. If your own knowledge is not definitive, then use the WEB SEARCH section below (if present) to fact-check. Do not rely on web alone when your knowledge is sufficient. Same correct answer = same score; do not reward verbosity or penalize conciseness. Focus on factual accuracy. Score 0-10 with a brief reason.`

const blindAnswerKeySystem = `You are a judge. An ANSWER KEY is provided—use it as the reference for the correct result. Score each response 0-10 by whether it is functionally equivalent (same end result) to the key. Equate different phrasings or formats (e.g. "Max Planck", "Planck", truncated "Max P"). Do NOT give a higher score for repetition or verbosity; do NOT penalize concise phrasing. Same correct answer = same score.

CALIBRATION: Reserve 1/10 only for no response or plainly wrong/irrelevant answers. If a response expresses the same idea as the key (even in different words), score at least 6-10. Do NOT give 1/10 for correct-but-different wording. Same substantive answer = 8-10; partial = 5-7; wrong/missing = 1-3. Consider: %s. Output ONLY "Response 1: X/10 - reason" through "Response %d: X/10 - reason". No other text.`

const blindOwnKnowledgeSystem = `You are a judge. No answer key was provided. First use your own knowledge to evaluate correctness. If your knowledge is not definitive, then use the web search section (if present) to fact-check. Same correct answer = same score; do not reward verbosity or penalize conciseness. Score each response 0-10. Consider: %s. Output ONLY the Response 1..%d score lines. No other text.`
