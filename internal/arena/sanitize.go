package arena

import (
	"regexp"
	"strings"
)

var (
	thinkBlockRe     = regexp.MustCompile(`(?is)<think>.*?</think>`)
	reasoningBlockRe = regexp.MustCompile(`(?is)<(?:reasoning|thought)>.*?</(?:reasoning|thought)>`)

	// Hallucinated judge output inside a contestant answer, e.g.
	// "Model B: 7/10 - reason" or "Response 2: 9/10".
	judgePatternLineRe = regexp.MustCompile(`(?im)^.*(?:Model\s+[A-D]|Response\s+\d+)\s*:\s*\d+\s*/\s*10.*$`)

	blankRunRe = regexp.MustCompile(`\n{3,}`)
)

// StripThinkBlocks removes <think>...</think> regions, which some
// models emit despite instructions. Must run before score extraction:
// judges occasionally draft speculative scores inside think blocks.
func StripThinkBlocks(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(thinkBlockRe.ReplaceAllString(text, ""))
}

// SanitizeContestantResponse cleans a contestant's answer before it is
// displayed or sent to the judge: think/reasoning blocks go first,
// then any line that imitates the judge's scoring format, then runs of
// blank lines collapse. Idempotent.
func SanitizeContestantResponse(text string) string {
	if text == "" {
		return ""
	}
	cleaned := StripThinkBlocks(text)
	cleaned = reasoningBlockRe.ReplaceAllString(cleaned, "")
	cleaned = judgePatternLineRe.ReplaceAllString(cleaned, "")
	cleaned = blankRunRe.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}

const (
	loopTailLen    = 80
	loopMinContent = 200
)

// DetectLoop reports whether a generation in progress has entered a
// runaway repetition: the final 80 characters already appear at least
// twice earlier in the string. Content shorter than 200 characters (or
// with less than two tail-lengths before the tail) cannot exhibit the
// pattern and always reports false. Lengths count runes, not bytes, so
// multibyte output gets the same tail window as ASCII.
func DetectLoop(content string) bool {
	runes := []rune(content)
	if len(runes) < loopMinContent {
		return false
	}
	tail := string(runes[len(runes)-loopTailLen:])
	beforeTail := string(runes[:len(runes)-loopTailLen])
	if len(runes)-loopTailLen < loopTailLen*2 {
		return false
	}
	// Literal substring count; the tail routinely contains regex
	// metacharacters.
	return strings.Count(beforeTail, tail) >= 2
}
