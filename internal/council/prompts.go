package council

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// The ranking prompt and the parser grammar (ranking.go) live in the same
// package on purpose: the anchor phrase and line format must not drift apart.

const rankingPromptTemplate = `You are evaluating anonymized answers to a user's question. You also wrote one of them, but you do not know which label is whose — judge all of them on merit alone.

User's question:
{{.Query}}

Anonymized answers:
{{.Transcript}}

Task
Evaluate each answer for accuracy, depth, clarity, and how directly it addresses the question. Briefly justify your judgment of each one.

Then end your reply with a section in EXACTLY this format:

FINAL RANKING:
{{range $i, $l := .Labels}}{{add $i 1}}. Response {{$l}}
{{end}}
(replace the order above with your actual ranking, best first; one line per answer, no other text between the lines)`

const chairmanPromptTemplate = `You are the chairman of a council of AI models. The council members each answered the user's question independently, then ranked each other's answers anonymously. Your job is to deliver the single best final answer.

User's question:
{{.Query}}

Council answers:
{{range .Stage1}}
--- {{.Model}} ---
{{.Response}}
{{end}}

Peer evaluations (answers were anonymized as "Response A", "Response B", ... during review):
{{range .Stage2}}
--- Evaluator: {{.Model}} ---
{{.Ranking}}
{{end}}

Aggregate peer ranking (lower average rank is better):
{{range .Aggregate}}
- {{.Model}}: average rank {{printf "%.2f" .AverageRank}} across {{.RankingsCount}} ballots
{{end}}

Task
Synthesize ONE final answer to the user's question. Lean on the answers the council ranked highest, correct any mistakes the evaluations exposed, and merge complementary points. Output only the final answer — no meta-commentary about the council, the ranking, or individual models.`

var (
	rankingTmpl = template.Must(template.New("ranking").Funcs(template.FuncMap{
		"add": func(a, b int) int { return a + b },
	}).Parse(rankingPromptTemplate))
	chairmanTmpl = template.Must(template.New("chairman").Parse(chairmanPromptTemplate))
)

// RankingPrompt builds the stage-two instruction sent to each evaluator.
// Like template.Must, execution failure on these static templates is a
// programmer error and panics.
func RankingPrompt(query, transcript string, labels []string) string {
	data := struct {
		Query      string
		Transcript string
		Labels     []string
	}{
		Query:      query,
		Transcript: transcript,
		Labels:     labels,
	}
	return mustExecute(rankingTmpl, data)
}

// ChairmanPrompt builds the stage-three synthesis request: de-anonymized
// answers, full evaluation texts, the aggregate table, and the query.
func ChairmanPrompt(query string, stage1 []Stage1Response, stage2 []Stage2Ranking, aggregate []AggregateRanking) string {
	data := struct {
		Query     string
		Stage1    []Stage1Response
		Stage2    []Stage2Ranking
		Aggregate []AggregateRanking
	}{
		Query:     query,
		Stage1:    stage1,
		Stage2:    stage2,
		Aggregate: aggregate,
	}
	return strings.TrimSpace(mustExecute(chairmanTmpl, data))
}

func mustExecute(tmpl *template.Template, data any) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		panic(fmt.Sprintf("executing %s template: %v", tmpl.Name(), err))
	}
	return buf.String()
}
