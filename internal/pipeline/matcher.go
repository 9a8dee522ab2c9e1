// Package pipeline orchestrates the end-to-end matching flow: fuse frame
// observations, search shopping listings, extract candidate attributes,
// score, rank, and tiebreak.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/cliplens/match-cli/internal/fusion"
	"github.com/cliplens/match-cli/internal/model"
	"github.com/cliplens/match-cli/internal/schema"
	"github.com/cliplens/match-cli/internal/scoring"
	"github.com/cliplens/match-cli/pkg/shopsearch"
	"github.com/cliplens/match-cli/pkg/vision"
)

// Item identifies the product to match: the name detected in the video plus
// optional category hints and a representative frame for visual tiebreaks.
type Item struct {
	Name           string
	Category       string
	Subcategory    string
	ReferenceImage string
}

// Options tunes a single Rank call.
type Options struct {
	// MaxCandidates bounds how many listings are scored. Zero means the
	// default of 10.
	MaxCandidates int
	// SearchTerms caps how many fused attributes are folded into the search
	// query. Zero means the default of 5.
	SearchTerms int
	// DisableTiebreak skips the visual comparison pass entirely.
	DisableTiebreak bool
	// ExtractConcurrency bounds parallel candidate extractions. Zero means 4.
	ExtractConcurrency int
	// TiebreakMinScore and TiebreakMaxGap gate the visual pass: the top
	// candidate must reach MinScore and the runner-up must be within MaxGap.
	TiebreakMinScore float64
	TiebreakMaxGap   float64
	// SearchTimeout and ExtractTimeout bound the search call and the whole
	// extraction fan-out. Zero means 30s and 60s.
	SearchTimeout  time.Duration
	ExtractTimeout time.Duration
}

const (
	defaultMaxCandidates      = 10
	defaultSearchTerms        = 5
	defaultExtractConcurrency = 4
	defaultTiebreakMinScore   = 75.0
	defaultTiebreakMaxGap     = 5.0
	defaultSearchTimeout      = 30 * time.Second
	defaultExtractTimeout     = 60 * time.Second
)

func (o Options) withDefaults() Options {
	if o.MaxCandidates <= 0 {
		o.MaxCandidates = defaultMaxCandidates
	}
	if o.SearchTerms <= 0 {
		o.SearchTerms = defaultSearchTerms
	}
	if o.ExtractConcurrency <= 0 {
		o.ExtractConcurrency = defaultExtractConcurrency
	}
	if o.TiebreakMinScore <= 0 {
		o.TiebreakMinScore = defaultTiebreakMinScore
	}
	if o.TiebreakMaxGap <= 0 {
		o.TiebreakMaxGap = defaultTiebreakMaxGap
	}
	if o.SearchTimeout <= 0 {
		o.SearchTimeout = defaultSearchTimeout
	}
	if o.ExtractTimeout <= 0 {
		o.ExtractTimeout = defaultExtractTimeout
	}
	return o
}

// Matcher wires the collaborating services behind the ranking flow.
type Matcher struct {
	registry *schema.Registry
	engine   *scoring.Engine
	vision   vision.Client
	search   shopsearch.Client
}

// NewMatcher builds a Matcher over its collaborating services. A nil vision
// client disables extraction, so every searched candidate is dropped before
// scoring.
func NewMatcher(registry *schema.Registry, engine *scoring.Engine, vc vision.Client, sc shopsearch.Client) *Matcher {
	return &Matcher{
		registry: registry,
		engine:   engine,
		vision:   vc,
		search:   sc,
	}
}

// Rank runs the full matching flow for one item. An empty search result, a
// search provider failure, or a run where no candidate yields an extraction
// all produce an empty MatchingOutput, not an error: no rankable candidates
// is a normal outcome for obscure products.
func (m *Matcher) Rank(ctx context.Context, item Item, observations []model.ExtractionRecord, opts Options) (*model.MatchingOutput, error) {
	start := time.Now()
	opts = opts.withDefaults()

	rubric := m.resolveRubric(item, observations)
	profile, err := fusion.Fuse(rubric, observations)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: fuse observations")
	}

	query := BuildQuery(item.Name, profile, opts.SearchTerms)
	out := &model.MatchingOutput{
		ProductName: item.Name,
		SearchQuery: query,
		Profile:     profile,
		FramesUsed:  len(observations),
	}

	candidates := m.searchCandidates(ctx, query, opts.MaxCandidates, opts.SearchTimeout)
	if len(candidates) == 0 {
		zap.L().Info("pipeline: no candidates found",
			zap.String("product", item.Name),
			zap.String("query", query))
		out.DurationMillis = time.Since(start).Milliseconds()
		return out, nil
	}

	extractCtx, cancel := context.WithTimeout(ctx, opts.ExtractTimeout)
	candidates = m.extractCandidates(extractCtx, rubric, candidates, opts.ExtractConcurrency)
	cancel()
	if len(candidates) == 0 {
		zap.L().Info("pipeline: no candidates with extractable attributes",
			zap.String("product", item.Name),
			zap.String("query", query))
		out.DurationMillis = time.Since(start).Milliseconds()
		return out, nil
	}

	results := make([]model.MatchResult, 0, len(candidates))
	for _, cand := range candidates {
		results = append(results, *m.engine.Score(profile, cand, rubric))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})

	if !opts.DisableTiebreak && len(results) >= 2 {
		swapped := m.tiebreak(ctx, item, results, opts)
		out.TiebreakerUsed = swapped
	}

	for i := range results {
		results[i].Rank = i + 1
	}

	out.Candidates = results
	out.TopMatch = &results[0]
	out.DurationMillis = time.Since(start).Milliseconds()

	zap.L().Info("pipeline: ranking complete",
		zap.String("product", item.Name),
		zap.Int("candidates", len(results)),
		zap.Float64("top_score", results[0].FinalScore),
		zap.Bool("tiebreaker", out.TiebreakerUsed),
		zap.Int64("duration_ms", out.DurationMillis))

	return out, nil
}

// resolveRubric picks the scoring rubric for an item. Explicit subcategory
// wins, then keyword inference from the item name, then the category default.
func (m *Matcher) resolveRubric(item Item, observations []model.ExtractionRecord) *schema.Rubric {
	category := item.Category
	subcategory := item.Subcategory
	if category == "" && len(observations) > 0 {
		category = observations[0].Category
		if subcategory == "" {
			subcategory = observations[0].Subcategory
		}
	}
	if subcategory == "" {
		subcategory = m.registry.InferSubcategory(item.Name, category)
	}
	return m.registry.GetOrDefault(category, subcategory)
}

func (m *Matcher) searchCandidates(ctx context.Context, query string, limit int, timeout time.Duration) []model.Candidate {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := m.search.Search(ctx, query, shopsearch.WithLimit(limit))
	if err != nil {
		zap.L().Warn("pipeline: shopping search failed", zap.String("query", query), zap.Error(err))
		return nil
	}

	candidates := make([]model.Candidate, 0, len(resp.Results))
	for _, l := range resp.Results {
		id := l.ProductID
		if id == "" {
			id = fmt.Sprintf("pos-%d", l.Position)
		}
		candidates = append(candidates, model.Candidate{
			ID:        id,
			Title:     l.Title,
			Price:     l.Price,
			Source:    l.Source,
			Link:      l.Link,
			Thumbnail: l.Thumbnail,
		})
	}
	return candidates
}
