package council

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var abcLabels = []string{"A", "B", "C"}

func TestParseRanking_NumberedListAfterAnchor(t *testing.T) {
	raw := "Response B is thorough while A has gaps.\n\nFINAL RANKING:\n1. Response B\n2. Response A\n3. Response C"
	assert.Equal(t, []string{"B", "A", "C"}, ParseRanking(raw, abcLabels))
}

func TestParseRanking_FirstItemOnAnchorLine(t *testing.T) {
	raw := "FINAL RANKING: 1. Response B\n2. Response A\n3. Response C"
	assert.Equal(t, []string{"B", "A", "C"}, ParseRanking(raw, abcLabels))
}

func TestParseRanking_SingleLineNumberedList(t *testing.T) {
	raw := "FINAL RANKING: 1. Response C"
	assert.Equal(t, []string{"C"}, ParseRanking(raw, abcLabels))
}

func TestParseRanking_TrailingCommentaryStopsScan(t *testing.T) {
	raw := "FINAL RANKING:\n1. Response C\n2. Response A\nThat said, Response B was close behind.\n3. Response B"
	// The commentary line ends the numbered list; B is never collected by
	// the strict tier and the tier already produced a result.
	assert.Equal(t, []string{"C", "A"}, ParseRanking(raw, abcLabels))
}

func TestParseRanking_BlankLinesBeforeList(t *testing.T) {
	raw := "Here is my final ranking:\n\n\n1. Response A\n2) Response C\n3. Response B"
	assert.Equal(t, []string{"A", "C", "B"}, ParseRanking(raw, abcLabels))
}

func TestParseRanking_TokensAfterAnchorWithoutNumbers(t *testing.T) {
	raw := "FINAL RANKING: I would put Response C first, then Response A, and Response B last."
	assert.Equal(t, []string{"C", "A", "B"}, ParseRanking(raw, abcLabels))
}

func TestParseRanking_NoAnchorScansWholeText(t *testing.T) {
	raw := "Overall I think Response C is best, then Response A comes second."
	assert.Equal(t, []string{"C", "A"}, ParseRanking(raw, abcLabels))
}

func TestParseRanking_Deduplicates(t *testing.T) {
	raw := "Response A beats Response B, yes, Response A wins and Response B loses."
	assert.Equal(t, []string{"A", "B"}, ParseRanking(raw, abcLabels))
}

func TestParseRanking_DropsHallucinatedLabels(t *testing.T) {
	raw := "FINAL RANKING:\n1. Response B\n2. Response X\n3. Response A"
	assert.Equal(t, []string{"B", "A"}, ParseRanking(raw, abcLabels))
}

func TestParseRanking_CaseInsensitiveAnchor(t *testing.T) {
	raw := "my Final Ranking is:\n1. response B\n2. response A"
	assert.Equal(t, []string{"B", "A"}, ParseRanking(raw, abcLabels))
}

func TestParseRanking_NothingExtractable(t *testing.T) {
	assert.Empty(t, ParseRanking("I refuse to rank these answers.", abcLabels))
	assert.Empty(t, ParseRanking("", abcLabels))
}

func TestParseRanking_AnchorButNoLabelsAnywhereAfter(t *testing.T) {
	// Tokens before the anchor must not leak into the tier-2 result.
	raw := "Response A was fine. FINAL RANKING: none, they were all equally bad."
	assert.Empty(t, ParseRanking(raw, abcLabels))
}

func TestParseRanking_Pure(t *testing.T) {
	raw := "FINAL RANKING:\n1. Response B\n2. Response A"
	first := ParseRanking(raw, abcLabels)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ParseRanking(raw, abcLabels))
	}
}
