package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Outcome is the normalized result of one model call. Failures are carried
// in Err rather than raised; a Gateway call never panics past this boundary.
type Outcome struct {
	Model   string
	Content string
	Err     error
}

func (o Outcome) OK() bool {
	return o.Err == nil
}

// Gateway issues chat calls against registered models with a per-call timeout.
type Gateway struct {
	registry *Registry
	timeout  time.Duration
}

func NewGateway(registry *Registry, timeout time.Duration) *Gateway {
	return &Gateway{
		registry: registry,
		timeout:  timeout,
	}
}

// Query sends one request to one model, bounded by the per-call timeout.
func (g *Gateway) Query(ctx context.Context, model string, messages []Message) Outcome {
	client, err := g.registry.Get(model)
	if err != nil {
		return Outcome{Model: model, Err: err}
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	content, err := client.Chat(callCtx, model, messages)
	if err != nil {
		return Outcome{Model: model, Err: fmt.Errorf("failed to query %s: %w", model, err)}
	}
	if strings.TrimSpace(content) == "" {
		return Outcome{Model: model, Err: fmt.Errorf("empty response from %s", model)}
	}
	return Outcome{Model: model, Content: content}
}

// QueryAll fans one request out to every model concurrently and waits for
// all calls to settle. The returned slice is in the given model order, not
// completion order; each goroutine writes only its own slot. Timeouts are
// per call, so one slow model cannot delay its peers beyond its own budget.
// Cancelling ctx cancels every in-flight call.
func (g *Gateway) QueryAll(ctx context.Context, models []string, messages []Message) []Outcome {
	outcomes := make([]Outcome, len(models))

	grp, ctx := errgroup.WithContext(ctx)
	for i, model := range models {
		i, model := i, model
		grp.Go(func() error {
			outcomes[i] = g.Query(ctx, model, messages)
			return nil
		})
	}
	// Goroutines never return errors; Wait is purely the stage barrier.
	_ = grp.Wait()

	return outcomes
}
