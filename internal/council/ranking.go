package council

import (
	"regexp"
	"strings"
)

// Evaluators are instructed to end with a "FINAL RANKING:" section of
// numbered "N. Response X" lines (see prompts.go), but model output drifts.
// Parsing falls back through three tiers, strictest first; the first tier
// yielding anything wins.
var (
	rankingAnchor = regexp.MustCompile(`(?i)final ranking`)
	numberedLine  = regexp.MustCompile(`^\d+[.)]\s*(?i:response)\s+([A-Z])\b`)
	responseToken = regexp.MustCompile(`(?i:response)\s+([A-Z])\b`)
)

// ParseRanking extracts an ordered list of labels from an evaluator's raw
// text, deduplicated and filtered to validLabels. Deterministic and pure.
// An empty result means the evaluator contributes no votes.
func ParseRanking(raw string, validLabels []string) []string {
	valid := make(map[string]bool, len(validLabels))
	for _, l := range validLabels {
		valid[l] = true
	}

	loc := rankingAnchor.FindStringIndex(raw)
	if loc == nil {
		// Tier 3: no anchor anywhere, scan the whole text for tokens.
		return dedupeValid(tokenLabels(raw), valid)
	}

	after := raw[loc[1]:]

	// Tier 1: numbered list lines following the anchor.
	if labels := numberedLabels(after); len(labels) > 0 {
		if out := dedupeValid(labels, valid); len(out) > 0 {
			return out
		}
	}

	// Tier 2: any "Response X" token after the anchor, in order.
	return dedupeValid(tokenLabels(after), valid)
}

// numberedLabels scans the text after the anchor for "N. Response X"
// entries, stopping at the first line that breaks the list. Blank lines
// before the list are tolerated; anything after the list is trailing
// commentary and ends the scan.
func numberedLabels(after string) []string {
	lines := strings.Split(after, "\n")

	var labels []string
	started := false

	// The first numbered item may sit on the anchor line itself:
	// "FINAL RANKING: 1. Response B". The remainder belongs to the
	// anchor, so a non-matching remainder is skipped, never a list end.
	head := strings.TrimLeft(lines[0], ": \t")
	if m := numberedLine.FindStringSubmatch(head); m != nil {
		labels = append(labels, m[1])
		started = true
	}

	for _, line := range lines[1:] {
		trimmed := strings.TrimSpace(line)
		if m := numberedLine.FindStringSubmatch(trimmed); m != nil {
			labels = append(labels, m[1])
			started = true
			continue
		}
		if !started && trimmed == "" {
			continue
		}
		break
	}
	return labels
}

func tokenLabels(text string) []string {
	var labels []string
	for _, m := range responseToken.FindAllStringSubmatch(text, -1) {
		labels = append(labels, m[1])
	}
	return labels
}

// dedupeValid keeps the first occurrence of each label and drops labels
// outside the valid set (hallucinated letters).
func dedupeValid(labels []string, valid map[string]bool) []string {
	var out []string
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if !valid[l] || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}
