// Package council runs one user query through three sequential stages:
// every council model answers independently, the successful answers are
// anonymized and peer-ranked by the same models, and a chairman model
// synthesizes the final answer from everything gathered.
package council

import "errors"

// ErrAllModelsFailed is the only fatal pipeline error: no council model
// produced a stage-one answer. Every other failure degrades the result
// instead of aborting the run.
var ErrAllModelsFailed = errors.New("all council models failed")

// SynthesisUnavailable marks a Stage3Response whose chairman call failed.
const SynthesisUnavailable = "(synthesis unavailable)"

// Stage1Response is one model's answer to the user query. Only successful
// models are represented; failures are dropped.
type Stage1Response struct {
	Model    string `json:"model"`
	Response string `json:"response"`
}

// Stage2Ranking is one evaluator's verdict over the anonymized answers.
// ParsedRanking is empty when no ranking could be extracted from the raw
// text; the raw text is kept either way for audit.
type Stage2Ranking struct {
	Model         string   `json:"model"`
	Ranking       string   `json:"ranking"`
	ParsedRanking []string `json:"parsed_ranking"`
}

// Stage3Response is the chairman's synthesis, or SynthesisUnavailable.
type Stage3Response struct {
	Model    string `json:"model"`
	Response string `json:"response"`
}

// AggregateRanking is one model's standing across all evaluators.
type AggregateRanking struct {
	Model         string  `json:"model"`
	AverageRank   float64 `json:"average_rank"`
	RankingsCount int     `json:"rankings_count"`
}

// Metadata carries per-run derived data. It is never persisted: both the
// label map and the aggregate table are recomputable from the ordered
// stage-one list.
type Metadata struct {
	LabelToModel      map[string]string  `json:"label_to_model"`
	AggregateRankings []AggregateRanking `json:"aggregate_rankings"`
}

// Result is the complete outcome of one pipeline run.
type Result struct {
	Stage1   []Stage1Response `json:"stage1"`
	Stage2   []Stage2Ranking  `json:"stage2"`
	Stage3   Stage3Response   `json:"stage3"`
	Metadata Metadata         `json:"metadata"`
}
