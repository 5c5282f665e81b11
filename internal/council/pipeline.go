package council

import (
	"context"
	"fmt"
	"log"

	"github.com/agenthands/council/internal/llm"
)

// State is the pipeline's position in the three-stage chain. Only stage one
// can fail the whole run; stages two and three degrade instead.
type State int

const (
	StateIdle State = iota
	StateStage1Running
	StateStage1Done
	StateStage2Running
	StateStage2Done
	StateStage3Running
	StateStage3Done
	StateCompleted
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:          "idle",
	StateStage1Running: "stage1_running",
	StateStage1Done:    "stage1_done",
	StateStage2Running: "stage2_running",
	StateStage2Done:    "stage2_done",
	StateStage3Running: "stage3_running",
	StateStage3Done:    "stage3_done",
	StateCompleted:     "completed",
	StateFailed:        "failed",
}

func (s State) String() string {
	return stateNames[s]
}

// Event types emitted at stage boundaries, in the order a successful run
// produces them. "…_complete" events carry that stage's output.
const (
	EventStage1Start    = "stage1_start"
	EventStage1Complete = "stage1_complete"
	EventStage2Start    = "stage2_start"
	EventStage2Complete = "stage2_complete"
	EventStage3Start    = "stage3_start"
	EventStage3Complete = "stage3_complete"
	EventComplete       = "complete"
	EventError          = "error"
)

type Event struct {
	Type     string           `json:"type"`
	Stage1   []Stage1Response `json:"stage1,omitempty"`
	Stage2   []Stage2Ranking  `json:"stage2,omitempty"`
	Stage3   *Stage3Response  `json:"stage3,omitempty"`
	Metadata *Metadata        `json:"metadata,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// Emitter receives one event per state transition. Called synchronously
// from Run, in order.
type Emitter func(Event)

// Caller is the model gateway surface the pipeline needs. *llm.Gateway
// implements it; tests substitute fakes.
type Caller interface {
	Query(ctx context.Context, model string, messages []llm.Message) llm.Outcome
	QueryAll(ctx context.Context, models []string, messages []llm.Message) []llm.Outcome
}

// Pipeline runs one query through the council. A Pipeline value is cheap;
// construct one per run. The council model list and chairman are immutable
// for the lifetime of the run.
type Pipeline struct {
	caller   Caller
	council  []string
	chairman string
	emit     Emitter
	state    State
}

func New(caller Caller, council []string, chairman string) *Pipeline {
	return &Pipeline{
		caller:   caller,
		council:  council,
		chairman: chairman,
		state:    StateIdle,
	}
}

// WithEmitter registers a stage-boundary callback and returns the pipeline.
func (p *Pipeline) WithEmitter(e Emitter) *Pipeline {
	p.emit = e
	return p
}

func (p *Pipeline) State() State {
	return p.state
}

func (p *Pipeline) transition(s State, ev Event) {
	p.state = s
	if p.emit != nil {
		p.emit(ev)
	}
}

// Run executes the three stages as a strict barrier chain: a stage never
// starts until every call of the previous stage has settled. An oversized
// council is rejected before any model is queried, so once stage one has
// started no code path past it can fail the run.
func (p *Pipeline) Run(ctx context.Context, messages []llm.Message) (*Result, error) {
	if len(p.council) > len(labelAlphabet) {
		return nil, fmt.Errorf("council of %d exceeds the %d-label alphabet", len(p.council), len(labelAlphabet))
	}
	query := lastUserContent(messages)

	// Stage one: every council model answers the user independently.
	p.transition(StateStage1Running, Event{Type: EventStage1Start})

	outcomes := p.caller.QueryAll(ctx, p.council, messages)
	var stage1 []Stage1Response
	for _, o := range outcomes {
		if !o.OK() {
			log.Printf("stage1: dropping %s: %v", o.Model, o.Err)
			continue
		}
		stage1 = append(stage1, Stage1Response{Model: o.Model, Response: o.Content})
	}
	if len(stage1) == 0 {
		err := fmt.Errorf("%w: %d models queried, 0 succeeded", ErrAllModelsFailed, len(p.council))
		p.transition(StateFailed, Event{Type: EventError, Error: err.Error()})
		return nil, err
	}
	p.transition(StateStage1Done, Event{Type: EventStage1Complete, Stage1: stage1})

	// Stage two: survivors rank the anonymized answers. Failures here are
	// non-fatal; an empty result just leaves the aggregate empty.
	p.transition(StateStage2Running, Event{Type: EventStage2Start})

	lm, transcript := Anonymize(stage1)
	rankingPrompt := RankingPrompt(query, transcript, lm.Labels())

	evaluators := make([]string, len(stage1))
	for i, r := range stage1 {
		evaluators[i] = r.Model
	}
	rankingMessages := []llm.Message{{Role: llm.RoleUser, Content: rankingPrompt}}

	var stage2 []Stage2Ranking
	for _, o := range p.caller.QueryAll(ctx, evaluators, rankingMessages) {
		if !o.OK() {
			log.Printf("stage2: dropping evaluator %s: %v", o.Model, o.Err)
			continue
		}
		stage2 = append(stage2, Stage2Ranking{
			Model:         o.Model,
			Ranking:       o.Content,
			ParsedRanking: ParseRanking(o.Content, lm.Labels()),
		})
	}

	metadata := Metadata{
		LabelToModel:      lm.LabelToModel(),
		AggregateRankings: Aggregate(stage2, lm),
	}
	p.transition(StateStage2Done, Event{Type: EventStage2Complete, Stage2: stage2, Metadata: &metadata})

	// Stage three: the chairman synthesizes. A failed chairman call yields
	// the unavailable marker, never an error.
	p.transition(StateStage3Running, Event{Type: EventStage3Start})

	chairmanPrompt := ChairmanPrompt(query, stage1, stage2, metadata.AggregateRankings)
	stage3 := Stage3Response{Model: p.chairman}
	if o := p.caller.Query(ctx, p.chairman, []llm.Message{{Role: llm.RoleUser, Content: chairmanPrompt}}); o.OK() {
		stage3.Response = o.Content
	} else {
		log.Printf("stage3: chairman %s failed: %v", p.chairman, o.Err)
		stage3.Response = SynthesisUnavailable
	}
	p.transition(StateStage3Done, Event{Type: EventStage3Complete, Stage3: &stage3})

	p.transition(StateCompleted, Event{Type: EventComplete})

	return &Result{
		Stage1:   stage1,
		Stage2:   stage2,
		Stage3:   stage3,
		Metadata: metadata,
	}, nil
}

func lastUserContent(messages []llm.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llm.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
