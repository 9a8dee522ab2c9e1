package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/cliplens/match-cli/internal/model"
	"github.com/cliplens/match-cli/pkg/vision"
)

// tiebreak runs a visual comparison between the top two candidates when their
// attribute scores are too close to call. results must already be sorted by
// FinalScore descending. Returns true whenever the comparison ran, whether or
// not it reordered the top two. Any failure falls back silently to the
// attribute ordering.
func (m *Matcher) tiebreak(ctx context.Context, item Item, results []model.MatchResult, opts Options) bool {
	top, second := &results[0], &results[1]

	if !tiebreakEligible(top.FinalScore, second.FinalScore, opts.TiebreakMinScore, opts.TiebreakMaxGap) {
		return false
	}
	if m.vision == nil || item.ReferenceImage == "" ||
		top.Candidate.Thumbnail == "" || second.Candidate.Thumbnail == "" {
		return false
	}

	res, err := m.vision.CompareProducts(ctx, vision.CompareRequest{
		ReferenceImageURL: item.ReferenceImage,
		ImageA:            top.Candidate.Thumbnail,
		ImageB:            second.Candidate.Thumbnail,
	})
	if err != nil {
		zap.L().Warn("pipeline: visual tiebreak failed, keeping attribute order",
			zap.String("product", item.Name),
			zap.Error(err))
		return false
	}

	top.TiebreakerUsed = true
	second.TiebreakerUsed = true
	top.VisualScore = &res.ScoreA
	second.VisualScore = &res.ScoreB

	zap.L().Info("pipeline: visual tiebreak",
		zap.String("product", item.Name),
		zap.Float64("score_a", res.ScoreA),
		zap.Float64("score_b", res.ScoreB),
		zap.String("winner", res.Winner),
		zap.String("reasoning", res.Reasoning))

	if res.Winner == "b" {
		results[0], results[1] = results[1], results[0]
	}
	return true
}

// tiebreakEligible reports whether the top two scores are close enough, and
// the top score high enough, to justify a visual comparison call.
func tiebreakEligible(top, second, minScore, maxGap float64) bool {
	return top >= minScore && top-second <= maxGap
}
