package council

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLabelMap(t *testing.T, models ...string) *LabelMap {
	t.Helper()
	responses := make([]Stage1Response, len(models))
	for i, m := range models {
		responses[i] = Stage1Response{Model: m, Response: "answer"}
	}
	lm, _ := Anonymize(responses)
	return lm
}

func TestAggregate_UnanimousRanking(t *testing.T) {
	// Three evaluators all rank X (label A) first and Y (label C) last.
	lm := mustLabelMap(t, "model-x", "model-m", "model-y")
	rankings := []Stage2Ranking{
		{Model: "model-x", ParsedRanking: []string{"A", "B", "C"}},
		{Model: "model-m", ParsedRanking: []string{"A", "B", "C"}},
		{Model: "model-y", ParsedRanking: []string{"A", "B", "C"}},
	}

	agg := Aggregate(rankings, lm)
	require.Len(t, agg, 3)

	assert.Equal(t, "model-x", agg[0].Model)
	assert.Equal(t, 1.00, agg[0].AverageRank)
	assert.Equal(t, 3, agg[0].RankingsCount)

	assert.Equal(t, "model-y", agg[2].Model)
	assert.Equal(t, 3.00, agg[2].AverageRank)
	assert.Equal(t, 3, agg[2].RankingsCount)
}

func TestAggregate_EvaluatorOrderInvariance(t *testing.T) {
	lm := mustLabelMap(t, "m1", "m2", "m3", "m4")
	rankings := []Stage2Ranking{
		{Model: "m1", ParsedRanking: []string{"B", "A", "D", "C"}},
		{Model: "m2", ParsedRanking: []string{"A", "B", "C"}},
		{Model: "m3", ParsedRanking: []string{"D", "C", "B", "A"}},
		{Model: "m4", ParsedRanking: []string{"C"}},
	}

	want := Aggregate(rankings, lm)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := append([]Stage2Ranking(nil), rankings...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		assert.Equal(t, want, Aggregate(shuffled, lm))
	}
}

func TestAggregate_PartialRankingsAndExclusion(t *testing.T) {
	lm := mustLabelMap(t, "m1", "m2", "m3")
	rankings := []Stage2Ranking{
		{Model: "m1", ParsedRanking: []string{"B", "A"}},
		{Model: "m2", ParsedRanking: nil}, // parse failure: contributes no votes
	}

	agg := Aggregate(rankings, lm)
	require.Len(t, agg, 2) // m3 (label C) got zero observations

	assert.Equal(t, "m2", agg[0].Model)
	assert.Equal(t, 1.00, agg[0].AverageRank)
	assert.Equal(t, 1, agg[0].RankingsCount)
	assert.Equal(t, "m1", agg[1].Model)
	assert.Equal(t, 2.00, agg[1].AverageRank)
}

func TestAggregate_TieBreaks(t *testing.T) {
	lm := mustLabelMap(t, "m1", "m2", "m3")

	// All three average 1.5, but m3 has more votes; m1 and m2 then fall
	// back to stage-one position.
	rankings := []Stage2Ranking{
		{Model: "a", ParsedRanking: []string{"C", "B"}},
		{Model: "b", ParsedRanking: []string{"B", "C"}},
		{Model: "c", ParsedRanking: []string{"C", "A"}},
		{Model: "d", ParsedRanking: []string{"A", "C"}},
	}

	agg := Aggregate(rankings, lm)
	require.Len(t, agg, 3)
	assert.Equal(t, "m3", agg[0].Model)
	assert.Equal(t, 4, agg[0].RankingsCount)
	assert.Equal(t, "m1", agg[1].Model)
	assert.Equal(t, "m2", agg[2].Model)

	// Equal average and equal count: stage-one position decides.
	even := []Stage2Ranking{
		{Model: "a", ParsedRanking: []string{"B", "A"}},
		{Model: "b", ParsedRanking: []string{"A", "B"}},
	}
	agg = Aggregate(even, lm)
	require.Len(t, agg, 2)
	assert.Equal(t, "m1", agg[0].Model)
	assert.Equal(t, "m2", agg[1].Model)
}

func TestAggregate_Empty(t *testing.T) {
	lm := mustLabelMap(t, "m1", "m2")
	assert.Empty(t, Aggregate(nil, lm))
}
