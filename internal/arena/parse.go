package arena

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// The question-set parser auto-detects one of several pasted formats,
// first match wins:
//
//  1. JSON array of objects with question/q and answer/a keys
//  2. Separate blocks: questions, then an "Answers:"/"Answer Key:" header
//  3. Numbered interleaved: "1. Question\nAnswer: answer\n\n2. ..."
//  4. Markdown list ("-" or "*" bullets)
//  5. Q:/A: or Question:/Answer: labeled pairs
//  6. Blank-line separated paragraphs
//  7. Fallback: the whole input as a single question
//
// Parsing never fails: unrecognized input degrades to the fallback so
// a paste mistake cannot block a run.

var (
	numPrefixRe  = regexp.MustCompile(`^\s*\d+[.)]\s+`)
	dashBulletRe = regexp.MustCompile(`^\s*-\s+`)
	starBulletRe = regexp.MustCompile(`^\s*\*\s+`)

	// Plural "Answers:" or two-word "Answer Key:" only. Singular
	// "Answer:" belongs to the interleaved format and must not
	// trigger the separate-blocks detector.
	answerHeaderRe    = regexp.MustCompile(`(?im)^(?:answers|answer\s+key)\s*:`)
	questionsHeaderRe = regexp.MustCompile(`(?i)^questions?\s*:\s*`)

	// "Answer:", "A:", "Answer 2:" etc. inside an interleaved block.
	answerLabelRe = regexp.MustCompile(`(?i)^\s*(?:Answer|A)\s*(?:\d+\s*)?:\s*`)

	questionLineRe = regexp.MustCompile(`(?i)^\s*(?:Q|Question)\s*:\s*(.*)`)
	answerLineRe   = regexp.MustCompile(`(?i)^\s*(?:A|Answer)\s*:\s*(.*)`)

	paragraphSplitRe = regexp.MustCompile(`\n\s*\n`)
	migrateNumRe     = regexp.MustCompile(`^\s*\d+[.)]\s*`)
)

// NormalizeText converts \r\n and bare \r line endings to \n and trims
// surrounding whitespace. Shared by every parser in this package.
func NormalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(text)
}

// ParseQuestionsAndAnswers parses pasted Q&A text into an index-aligned
// question/answer set. Empty or unparseable input yields an empty set,
// never an error.
func ParseQuestionsAndAnswers(text string) QuestionAnswerSet {
	normalized := NormalizeText(text)
	if normalized == "" {
		return QuestionAnswerSet{Questions: []string{}, Answers: []string{}}
	}

	if strings.HasPrefix(strings.TrimLeft(normalized, " \t"), "[") {
		if set, ok := tryParseJSON(normalized); ok {
			return set
		}
	}
	if set, ok := tryParseSeparateBlocks(normalized); ok {
		return set
	}
	// Numbered before Q/A labeled: "Question:" + "Answer:" prefixes can
	// look like the labeled format, but numbering takes priority.
	if set, ok := tryParseNumbered(normalized); ok {
		return set
	}
	if set, ok := tryParseMarkdownList(normalized); ok {
		return set
	}
	if set, ok := tryParseQALabeled(normalized); ok {
		return set
	}
	if set, ok := tryParseParagraphBlocks(normalized); ok {
		return set
	}
	return QuestionAnswerSet{Questions: []string{normalized}, Answers: []string{""}}
}

func tryParseJSON(text string) (QuestionAnswerSet, bool) {
	var raws []json.RawMessage
	if err := json.Unmarshal([]byte(text), &raws); err != nil || len(raws) == 0 {
		return QuestionAnswerSet{}, false
	}
	set := QuestionAnswerSet{Questions: []string{}, Answers: []string{}}
	for _, raw := range raws {
		// Stray non-object members (notes, numbers) are skipped, not
		// fatal.
		var item map[string]any
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		q := firstStringValue(item, "question", "q", "Q", "Question")
		a := firstStringValue(item, "answer", "a", "A", "Answer")
		if q != "" {
			set.Questions = append(set.Questions, q)
			set.Answers = append(set.Answers, a)
		}
	}
	return set, len(set.Questions) > 0
}

func firstStringValue(item map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := item[key]; ok && v != nil {
			return strings.TrimSpace(anyToString(v))
		}
	}
	return ""
}

func anyToString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func tryParseSeparateBlocks(text string) (QuestionAnswerSet, bool) {
	loc := answerHeaderRe.FindStringIndex(text)
	if loc == nil {
		return QuestionAnswerSet{}, false
	}
	questionSection := strings.TrimSpace(text[:loc[0]])
	answerSection := strings.TrimSpace(text[loc[1]:])
	questionSection = strings.TrimSpace(questionsHeaderRe.ReplaceAllString(questionSection, ""))

	questions := extractNumberedItems(questionSection)
	answersRaw := extractNumberedItems(answerSection)
	if len(questions) == 0 {
		return QuestionAnswerSet{}, false
	}

	// Answers are index-aligned; missing trailing answers are empty.
	answers := make([]string, len(questions))
	for i := range questions {
		if i < len(answersRaw) {
			answers[i] = strings.TrimSpace(answersRaw[i])
		}
	}
	return QuestionAnswerSet{Questions: questions, Answers: answers}, true
}

func tryParseNumbered(text string) (QuestionAnswerSet, bool) {
	blocks := splitAtLines(text, numPrefixRe)
	if len(blocks) == 0 || !numPrefixRe.MatchString(blocks[0]) {
		return QuestionAnswerSet{}, false
	}
	return parseBlocksToQA(blocks, numPrefixRe)
}

func tryParseMarkdownList(text string) (QuestionAnswerSet, bool) {
	blocks := splitAtLines(text, dashBulletRe)
	if len(blocks) > 0 && dashBulletRe.MatchString(blocks[0]) {
		return parseBlocksToQA(blocks, dashBulletRe)
	}
	blocks = splitAtLines(text, starBulletRe)
	if len(blocks) > 0 && starBulletRe.MatchString(blocks[0]) {
		return parseBlocksToQA(blocks, starBulletRe)
	}
	return QuestionAnswerSet{}, false
}

func tryParseQALabeled(text string) (QuestionAnswerSet, bool) {
	lines := strings.Split(text, "\n")

	// Require at least 2 Q: lines, or 1 Q: plus 1 A:, so prose that
	// merely contains a colon does not false-positive.
	qCount, aCount := 0, 0
	for _, line := range lines {
		if questionLineRe.MatchString(line) {
			qCount++
		}
		if answerLineRe.MatchString(line) {
			aCount++
		}
	}
	if qCount < 1 || (qCount < 2 && aCount < 1) {
		return QuestionAnswerSet{}, false
	}

	set := QuestionAnswerSet{Questions: []string{}, Answers: []string{}}
	var currentQ, currentA strings.Builder
	hasQ, hasA := false, false

	flush := func() {
		if hasQ {
			set.Questions = append(set.Questions, strings.TrimSpace(currentQ.String()))
			set.Answers = append(set.Answers, strings.TrimSpace(currentA.String()))
		}
		currentQ.Reset()
		currentA.Reset()
		hasQ, hasA = false, false
	}

	for _, line := range lines {
		if m := questionLineRe.FindStringSubmatch(line); m != nil {
			flush()
			currentQ.WriteString(strings.TrimSpace(m[1]))
			hasQ = true
		} else if m := answerLineRe.FindStringSubmatch(line); m != nil && hasQ {
			currentA.Reset()
			currentA.WriteString(strings.TrimSpace(m[1]))
			hasA = true
		} else if hasA {
			currentA.WriteString("\n")
			currentA.WriteString(line)
		} else if hasQ {
			currentQ.WriteString("\n")
			currentQ.WriteString(line)
		}
	}
	flush()

	return set, len(set.Questions) > 0
}

func tryParseParagraphBlocks(text string) (QuestionAnswerSet, bool) {
	raw := paragraphSplitRe.Split(text, -1)
	blocks := make([]string, 0, len(raw))
	for _, b := range raw {
		if strings.TrimSpace(b) != "" {
			blocks = append(blocks, b)
		}
	}
	// A single paragraph is handled by the single-question fallback.
	if len(blocks) < 2 {
		return QuestionAnswerSet{}, false
	}
	return parseBlocksToQA(blocks, nil)
}

// splitAtLines splits text into blocks, starting a new block at every
// line matching start. Lines before the first match form the leading
// block so callers can reject input that does not open with one.
func splitAtLines(text string, start *regexp.Regexp) []string {
	lines := strings.Split(text, "\n")
	var blocks []string
	var current []string
	for _, line := range lines {
		if start.MatchString(line) && len(current) > 0 {
			if block := strings.Join(current, "\n"); strings.TrimSpace(block) != "" {
				blocks = append(blocks, block)
			}
			current = nil
		}
		current = append(current, line)
	}
	if block := strings.Join(current, "\n"); strings.TrimSpace(block) != "" {
		blocks = append(blocks, block)
	}
	return blocks
}

// parseBlocksToQA turns raw item blocks into Q/A pairs. The first line
// (minus the numbering or bullet prefix) starts the question; an
// "Answer:" label switches the rest of the block into a multi-line
// answer.
func parseBlocksToQA(blocks []string, stripPrefix *regexp.Regexp) (QuestionAnswerSet, bool) {
	set := QuestionAnswerSet{Questions: []string{}, Answers: []string{}}
	for _, block := range blocks {
		lines := strings.Split(block, "\n")
		first := lines[0]
		if stripPrefix != nil {
			first = stripPrefix.ReplaceAllString(first, "")
		}
		first = strings.TrimSpace(first)

		var questionLines, answerLines []string
		inAnswer := false
		for i, line := range lines {
			if answerLabelRe.MatchString(line) {
				inAnswer = true
				answerLines = append(answerLines, strings.TrimSpace(answerLabelRe.ReplaceAllString(line, "")))
			} else if inAnswer {
				answerLines = append(answerLines, line)
			} else if i == 0 {
				questionLines = append(questionLines, first)
			} else {
				questionLines = append(questionLines, line)
			}
		}
		q := strings.TrimSpace(strings.Join(questionLines, "\n"))
		a := strings.TrimSpace(strings.Join(answerLines, "\n"))
		if q != "" {
			set.Questions = append(set.Questions, q)
			set.Answers = append(set.Answers, a)
		}
	}
	return set, len(set.Questions) > 0
}

// extractNumberedItems pulls items out of one section of a
// separate-blocks paste: numbered lines when present, otherwise one
// item per non-empty line.
func extractNumberedItems(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	var numbered []string
	for _, line := range lines {
		if numPrefixRe.MatchString(line) {
			numbered = append(numbered, strings.TrimSpace(numPrefixRe.ReplaceAllString(line, "")))
		}
	}
	if len(numbered) > 0 {
		return numbered
	}
	items := make([]string, len(lines))
	for i, line := range lines {
		items[i] = strings.TrimSpace(line)
	}
	return items
}

// MigrateQuestionsAndAnswers converts the legacy two-box layout
// (question list + separate answer key) into the combined interleaved
// format ParseQuestionsAndAnswers understands.
func MigrateQuestionsAndAnswers(oldQuestions, oldAnswers string) string {
	if strings.TrimSpace(oldQuestions) == "" {
		return ""
	}
	qLines := nonEmptyLines(oldQuestions)
	aLines := nonEmptyLines(oldAnswers)

	parts := make([]string, 0, len(qLines))
	for i, line := range qLines {
		q := strings.TrimSpace(migrateNumRe.ReplaceAllString(line, ""))
		a := ""
		if i < len(aLines) {
			a = strings.TrimSpace(migrateNumRe.ReplaceAllString(aLines[i], ""))
		}
		if a != "" {
			parts = append(parts, fmt.Sprintf("%d. %s\nAnswer: %s", i+1, q, a))
		} else {
			parts = append(parts, fmt.Sprintf("%d. %s", i+1, q))
		}
	}
	return strings.Join(parts, "\n\n")
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(NormalizeText(text), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
