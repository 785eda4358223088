package arena

import (
	"fmt"
	"sort"
)

// ComputeTotals folds score history into cumulative per-slot totals.
// Every slot key A-D is always present (defaulting to 0) so consumers
// never need to nil-check; totals are recomputed from the full history
// rather than kept incrementally, so they can never drift from it.
func ComputeTotals(history []ScoreRound) map[string]int {
	totals := make(map[string]int, len(AllSlots))
	for _, slot := range AllSlots {
		totals[slot] = 0
	}
	for _, round := range history {
		for slot, score := range round.Scores {
			if _, known := totals[slot]; known {
				totals[slot] += score
			}
		}
	}
	return totals
}

var ordinalLabels = []string{"1st", "2nd", "3rd", "4th"}

// StandingLabel returns the rank label for a slot given the current
// cumulative scores. Only slots present in scores are ranked; a slot
// with no recorded score gets "—" regardless of the others. Slots
// sharing a score share a rank ("Tied 1st", "Tied 2nd", ...); a sole
// top scorer is the "Leader". All-zero scores mean no meaningful
// leader yet.
func StandingLabel(slot string, scores map[string]int) string {
	myScore, recorded := scores[slot]
	if !recorded {
		return "—"
	}

	active := make([]int, 0, len(AllSlots))
	countAtMyScore := 0
	for _, s := range AllSlots {
		v, ok := scores[s]
		if !ok {
			continue
		}
		active = append(active, v)
		if v == myScore {
			countAtMyScore++
		}
	}
	if len(active) == 0 {
		return "—"
	}

	distinct := distinctDescending(active)
	if len(distinct) == 1 && distinct[0] == 0 {
		return "—"
	}

	rankIndex := 0
	for i, v := range distinct {
		if v == myScore {
			rankIndex = i
			break
		}
	}
	tied := countAtMyScore > 1

	if rankIndex == 0 {
		if tied {
			return "Tied 1st"
		}
		return "Leader"
	}
	label := ordinal(rankIndex)
	if tied {
		return "Tied " + label
	}
	return label
}

func ordinal(rankIndex int) string {
	if rankIndex < len(ordinalLabels) {
		return ordinalLabels[rankIndex]
	}
	return fmt.Sprintf("%dth", rankIndex+1)
}

func distinctDescending(values []int) []int {
	seen := map[int]bool{}
	var out []int
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}
