package council

import "sort"

// Aggregate converts per-evaluator rankings into per-model average rank and
// vote count. Each label's 1-indexed position in a parsed ranking is one
// observation for that label's model. Models with zero observations are
// excluded. The result is sorted ascending by average rank (lower is
// better); ties break on higher vote count, then on the model's stage-one
// position — never on arrival order of concurrent calls, so the output is
// invariant under reordering the evaluator list.
func Aggregate(rankings []Stage2Ranking, lm *LabelMap) []AggregateRanking {
	type tally struct {
		sum   int
		count int
	}
	tallies := make(map[string]*tally)

	for _, r := range rankings {
		for pos, label := range r.ParsedRanking {
			t, ok := tallies[label]
			if !ok {
				t = &tally{}
				tallies[label] = t
			}
			t.sum += pos + 1
			t.count++
		}
	}

	// Build in label (stage-one) order so the stable sort's final tie-break
	// is the original model position.
	out := make([]AggregateRanking, 0, len(tallies))
	for _, label := range lm.Labels() {
		t, ok := tallies[label]
		if !ok {
			continue
		}
		model, _ := lm.Model(label)
		out = append(out, AggregateRanking{
			Model:         model,
			AverageRank:   float64(t.sum) / float64(t.count),
			RankingsCount: t.count,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AverageRank != out[j].AverageRank {
			return out[i].AverageRank < out[j].AverageRank
		}
		return out[i].RankingsCount > out[j].RankingsCount
	})

	return out
}
