package arena

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripThinkBlocks(t *testing.T) {
	input := "<think>let me reason about this</think>The answer is 4."
	assert.Equal(t, "The answer is 4.", StripThinkBlocks(input))
}

func TestStripThinkBlocksMultipleAndMultiline(t *testing.T) {
	input := "<think>first\nblock</think>Answer<THINK>second</THINK> done"
	assert.Equal(t, "Answer done", StripThinkBlocks(input))
}

func TestStripThinkBlocksNoOp(t *testing.T) {
	assert.Equal(t, "plain text", StripThinkBlocks("plain text"))
	assert.Equal(t, "", StripThinkBlocks(""))
}

func TestSanitizeRemovesJudgeScoreLines(t *testing.T) {
	input := "The answer is Paris.\nModel B: 7/10 - good answer\nFinal Answer: Paris"
	got := SanitizeContestantResponse(input)
	assert.NotContains(t, got, "Model B")
	assert.Contains(t, got, "The answer is Paris.")
	assert.Contains(t, got, "Final Answer: Paris")
}

func TestSanitizeRemovesBlindScoreLines(t *testing.T) {
	input := "Response 2: 9/10 - solid\nActual content here"
	got := SanitizeContestantResponse(input)
	assert.NotContains(t, got, "Response 2")
	assert.Contains(t, got, "Actual content here")
}

func TestSanitizeRemovesReasoningBlocks(t *testing.T) {
	input := "<reasoning>internal</reasoning>visible<thought>more</thought>"
	assert.Equal(t, "visible", SanitizeContestantResponse(input))
}

func TestSanitizeCollapsesBlankRuns(t *testing.T) {
	input := "first\n\n\n\n\nsecond"
	assert.Equal(t, "first\n\nsecond", SanitizeContestantResponse(input))
}

func TestSanitizeIdempotent(t *testing.T) {
	input := "<think>x</think>Answer\n\n\n\nModel A: 3/10 - weak\nmore text"
	once := SanitizeContestantResponse(input)
	twice := SanitizeContestantResponse(once)
	assert.Equal(t, once, twice)
}

func TestSanitizeKeepsScoreMentionMidSentence(t *testing.T) {
	// "7/10 doctors" has no Model/Response marker and must survive.
	input := "About 7/10 doctors agree with this."
	assert.Equal(t, input, SanitizeContestantResponse(input))
}

func TestDetectLoopShortContent(t *testing.T) {
	assert.False(t, DetectLoop(""))
	assert.False(t, DetectLoop(strings.Repeat("ab", 90)))
}

func TestDetectLoopRepetition(t *testing.T) {
	unit := strings.Repeat("ab", 40)
	content := strings.Repeat(unit, 4)
	assert.True(t, DetectLoop(content))
}

func TestDetectLoopRepeatedSentence(t *testing.T) {
	sentence := "The answer is the answer is the answer which repeats without stopping here now. "
	content := strings.Repeat(sentence, 6)
	assert.True(t, DetectLoop(content))
}

func TestDetectLoopVariedContent(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 60; i++ {
		fmt.Fprintf(&sb, "unique segment number %03d with distinct text ", i)
	}
	assert.False(t, DetectLoop(sb.String()))
}

func TestDetectLoopMultibyteRepetition(t *testing.T) {
	unit := "模型陷入循环重复输出相同文字"
	content := strings.Repeat(unit, 30)
	assert.True(t, DetectLoop(content))
}

func TestDetectLoopMultibyteShortContent(t *testing.T) {
	// 190 runes but 570 bytes; length thresholds count runes, so this
	// is still below the minimum.
	unit := "重复重复重复重复重复"
	content := strings.Repeat(unit, 19)
	assert.False(t, DetectLoop(content))
}

func TestDetectLoopRegexMetacharacters(t *testing.T) {
	unit := strings.Repeat("(a+b)*[c]?", 8)
	content := strings.Repeat(unit, 4)
	assert.True(t, DetectLoop(content))
}
