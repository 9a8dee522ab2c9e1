// Package vision provides a client for the multimodal LLM that
// extracts product attributes from images and compares product images.
package vision

import (
	"context"

	"go.uber.org/zap"
)

// Client defines the vision operations used by the matching pipeline.
type Client interface {
	// ExtractAttributes reads one product image and returns a flat map of
	// attribute name → value plus an overall confidence in [0,1]. The
	// model may omit or mis-identify attributes.
	ExtractAttributes(ctx context.Context, req ExtractRequest) (*ExtractResult, error)
	// CompareProducts judges which of two candidate images better matches a
	// reference image, with an independent 0-100 visual score per candidate.
	CompareProducts(ctx context.Context, req CompareRequest) (*CompareResult, error)
}

// ExtractRequest describes one extraction call.
type ExtractRequest struct {
	ImageURL    string
	Category    string
	Subcategory string
	Attributes  []string // rubric attribute names to extract
	Context     string   // optional free-text hint (e.g. the listing title)
}

// ExtractResult is the parsed extraction response.
type ExtractResult struct {
	Attributes map[string]any
	Confidence float64
	Usage      TokenUsage
}

// CompareRequest describes one visual comparison call.
type CompareRequest struct {
	ReferenceImageURL string
	ImageA            string
	ImageB            string
}

// CompareResult is the parsed comparison response. Winner is "a" or "b".
type CompareResult struct {
	ScoreA    float64
	ScoreB    float64
	Winner    string
	Reasoning string
	Usage     TokenUsage
}

// TokenUsage tracks token consumption of a vision call.
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
}

// Add accumulates usage from another call.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// modelPricing holds per-million-token pricing for known models.
var modelPricing = map[string][2]float64{
	// model → {input $/MTok, output $/MTok}
	"claude-haiku-4-5-20251001":  {0.80, 4.00},
	"claude-sonnet-4-5-20250929": {3.00, 15.00},
}

// EstimateCost computes an estimated cost in USD from a TokenUsage and model
// ID. Returns 0 for unknown models.
func (u TokenUsage) EstimateCost(model string) float64 {
	pricing, ok := modelPricing[model]
	if !ok {
		return 0
	}
	inCost := (float64(u.InputTokens) / 1e6) * pricing[0]
	outCost := (float64(u.OutputTokens) / 1e6) * pricing[1]
	return inCost + outCost
}

// LogCost logs token usage and estimated cost with structured fields.
func (u TokenUsage) LogCost(model, phase string) {
	zap.L().Info("cost attribution",
		zap.String("model", model),
		zap.String("phase", phase),
		zap.Int64("input_tokens", u.InputTokens),
		zap.Int64("output_tokens", u.OutputTokens),
		zap.Float64("estimated_cost_usd", u.EstimateCost(model)),
	)
}
