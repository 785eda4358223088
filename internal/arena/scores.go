package arena

import (
	"regexp"
	"strconv"
	"strings"
)

// Judges are unreliable text generators: these regexes are the
// contract for interpreting their output and are pinned by tests.
// Out-of-range scores are dropped (a garbled number means a parse
// problem, not a real 11/10) and when a slot is scored twice the last
// occurrence wins.
var (
	directScoreRe = regexp.MustCompile(`(?i)Model\s+([A-D])\s*:\s*(\d+)\s*/\s*10`)
	blindScoreRe  = regexp.MustCompile(`(?i)Response\s+(\d+)\s*:\s*(\d+)\s*/\s*10`)
)

// ParseJudgeScores extracts "Model X: N/10" scores from a direct-mode
// judge reply. Think blocks are stripped first so speculative scores
// inside them never leak into the result. A reply with no matching
// lines yields an empty map, not an error.
func ParseJudgeScores(text string) map[string]int {
	scores, _ := ParseJudgeScoresAndExplanations(text)
	return scores
}

// ParseJudgeScoresAndExplanations extracts scores plus the rationale
// text following each score line (up to the next "Model X:" marker or
// end of reply).
func ParseJudgeScoresAndExplanations(text string) (map[string]int, map[string]string) {
	scores := map[string]int{}
	explanations := map[string]string{}
	if text == "" {
		return scores, explanations
	}
	cleaned := StripThinkBlocks(text)

	matches := directScoreRe.FindAllStringSubmatchIndex(cleaned, -1)
	for i, m := range matches {
		slot := strings.ToUpper(cleaned[m[2]:m[3]])
		n, err := strconv.Atoi(cleaned[m[4]:m[5]])
		if err != nil || n < 0 || n > 10 {
			continue
		}
		scores[slot] = n
		explanations[slot] = rationaleBetween(cleaned, m[1], nextMatchStart(matches, i))
	}
	return scores, explanations
}

// ParseBlindJudgeScores extracts "Response N: X/10" scores and maps
// each 1-based position through responseOrder back to its true slot.
// Positions outside the known order are ignored.
func ParseBlindJudgeScores(text string, responseOrder []string) (map[string]int, map[string]string) {
	scores := map[string]int{}
	explanations := map[string]string{}
	if text == "" || len(responseOrder) == 0 {
		return scores, explanations
	}
	cleaned := StripThinkBlocks(text)

	matches := blindScoreRe.FindAllStringSubmatchIndex(cleaned, -1)
	for i, m := range matches {
		pos, err := strconv.Atoi(cleaned[m[2]:m[3]])
		if err != nil || pos < 1 || pos > len(responseOrder) {
			continue
		}
		n, err := strconv.Atoi(cleaned[m[4]:m[5]])
		if err != nil || n < 0 || n > 10 {
			continue
		}
		slot := responseOrder[pos-1]
		scores[slot] = n
		explanations[slot] = rationaleBetween(cleaned, m[1], nextMatchStart(matches, i))
	}
	return scores, explanations
}

func nextMatchStart(matches [][]int, i int) int {
	if i+1 < len(matches) {
		return matches[i+1][0]
	}
	return -1
}

// rationaleBetween returns the explanation text between the end of a
// score match and the start of the next one, minus the leading "-"
// separator.
func rationaleBetween(text string, from, to int) string {
	var segment string
	if to >= 0 {
		segment = text[from:to]
	} else {
		segment = text[from:]
	}
	segment = strings.TrimSpace(segment)
	segment = strings.TrimPrefix(segment, "-")
	return strings.TrimSpace(segment)
}
