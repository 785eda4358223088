package arena

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/modelarena/arena-platform/internal/llm"
)

// Judge auto-selection prefers cloud models: they cost no local VRAM
// and stay loaded no matter how many contestants are running.

// cloudJudgePriority orders cloud providers when several are eligible.
var cloudJudgePriority = []string{"deepseek", "grok"}

const instructBonus = 100

var paramSizeRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*[bB]\b`)
var instructRe = regexp.MustCompile(`instruct|chat`)

// JudgeSelection is the outcome of PickJudgeModel. ID is empty when no
// eligible judge exists; Error then carries a remediation hint for the
// user. Fallback marks an auto-picked (not user-chosen) judge.
type JudgeSelection struct {
	ID       string `json:"id"`
	Error    string `json:"error,omitempty"`
	Fallback bool   `json:"fallback,omitempty"`
}

// PickJudgeModel chooses a judge that is not one of the contestants.
//
// Policy, in order: honor the user's explicit choice unless it is a
// contestant; otherwise auto-pick a cloud model by provider priority;
// otherwise the best local model ranked by parameter count plus an
// instruct/chat bonus. When every model is a contestant the result is
// a typed "no judge" selection, never an error value; that state is
// reachable from normal configuration.
func PickJudgeModel(userChoice string, contestantIDs []string, availableModels []llm.ModelInfo) JudgeSelection {
	contestants := make(map[string]bool, len(contestantIDs))
	for _, id := range contestantIDs {
		if id = strings.ToLower(strings.TrimSpace(id)); id != "" {
			contestants[id] = true
		}
	}
	isContestant := func(id string) bool {
		return contestants[strings.ToLower(strings.TrimSpace(id))]
	}

	if choice := strings.TrimSpace(userChoice); choice != "" && !isContestant(choice) {
		return JudgeSelection{ID: choice}
	}
	// A user choice that is itself a contestant falls through to
	// auto-pick.

	var candidates []string
	for _, m := range availableModels {
		if m.ID != "" && !isContestant(m.ID) {
			candidates = append(candidates, m.ID)
		}
	}
	if len(candidates) == 0 {
		return JudgeSelection{
			Error: "No judge model available. Add a DeepSeek or Grok API key in Settings, or load a model in LM Studio that is not assigned to any Arena slot.",
		}
	}

	var cloud []string
	for _, id := range candidates {
		if llm.IsCloudModel(id) {
			cloud = append(cloud, id)
		}
	}
	if len(cloud) > 0 {
		for _, provider := range cloudJudgePriority {
			for _, id := range cloud {
				if strings.HasPrefix(id, provider+":") {
					return JudgeSelection{ID: id, Fallback: true}
				}
			}
		}
		return JudgeSelection{ID: cloud[0], Fallback: true}
	}

	type ranked struct {
		id    string
		score float64
	}
	scored := make([]ranked, len(candidates))
	for i, id := range candidates {
		score := extractParamSize(id)
		if instructRe.MatchString(strings.ToLower(id)) {
			score += instructBonus
		}
		scored[i] = ranked{id: id, score: score}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	return JudgeSelection{ID: scored[0].id, Fallback: true}
}

// extractParamSize parses a trailing parameter-count token from a
// model id: "qwen3-32b-instruct" -> 32, "llama-3.1-70b" -> 70.
// Missing sizes rank as 0 so an unsized model never outranks a sized
// one by default.
func extractParamSize(id string) float64 {
	m := paramSizeRe.FindStringSubmatch(id)
	if m == nil {
		return 0
	}
	size, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return size
}
