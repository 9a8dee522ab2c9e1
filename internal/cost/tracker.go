// Package cost accumulates vision token usage across a matching run and
// attributes estimated spend per phase.
package cost

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/cliplens/match-cli/pkg/vision"
)

// Tracker accumulates token usage for one matching run. Safe for concurrent
// use by the extraction fan-out.
type Tracker struct {
	model string

	mu           sync.Mutex
	extract      vision.TokenUsage
	compare      vision.TokenUsage
	extractCalls int
	compareCalls int
}

// NewTracker creates a Tracker billed against the given model.
func NewTracker(model string) *Tracker {
	return &Tracker{model: model}
}

// Wrap decorates a vision client so every call is accounted for.
func (t *Tracker) Wrap(c vision.Client) vision.Client {
	return &trackedClient{inner: c, tracker: t}
}

// Total returns accumulated usage across all phases.
func (t *Tracker) Total() vision.TokenUsage {
	t.mu.Lock()
	defer t.mu.Unlock()
	total := t.extract
	total.Add(t.compare)
	return total
}

// EstimatedCost returns the estimated spend in USD so far.
func (t *Tracker) EstimatedCost() float64 {
	return t.Total().EstimateCost(t.model)
}

// Log emits one structured cost summary line for the run.
func (t *Tracker) Log(product string) {
	t.mu.Lock()
	extract, compare := t.extract, t.compare
	extractCalls, compareCalls := t.extractCalls, t.compareCalls
	t.mu.Unlock()

	total := extract
	total.Add(compare)

	zap.L().Info("cost: run summary",
		zap.String("product", product),
		zap.String("model", t.model),
		zap.Int("extract_calls", extractCalls),
		zap.Int("compare_calls", compareCalls),
		zap.Int64("input_tokens", total.InputTokens),
		zap.Int64("output_tokens", total.OutputTokens),
		zap.Float64("estimated_cost_usd", total.EstimateCost(t.model)))
}

func (t *Tracker) addExtract(u vision.TokenUsage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.extract.Add(u)
	t.extractCalls++
}

func (t *Tracker) addCompare(u vision.TokenUsage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.compare.Add(u)
	t.compareCalls++
}

type trackedClient struct {
	inner   vision.Client
	tracker *Tracker
}

func (c *trackedClient) ExtractAttributes(ctx context.Context, req vision.ExtractRequest) (*vision.ExtractResult, error) {
	res, err := c.inner.ExtractAttributes(ctx, req)
	if res != nil {
		c.tracker.addExtract(res.Usage)
	}
	return res, err
}

func (c *trackedClient) CompareProducts(ctx context.Context, req vision.CompareRequest) (*vision.CompareResult, error) {
	res, err := c.inner.CompareProducts(ctx, req)
	if res != nil {
		c.tracker.addCompare(res.Usage)
	}
	return res, err
}
