package pipeline

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cliplens/match-cli/internal/model"
	"github.com/cliplens/match-cli/internal/schema"
	"github.com/cliplens/match-cli/pkg/vision"
)

// extractCandidates runs attribute extraction over every candidate thumbnail
// in parallel and returns only the candidates that produced an extraction.
// Failed extractions and thumbnail-less listings are dropped: a candidate
// with no readable attributes cannot be ranked on evidence.
func (m *Matcher) extractCandidates(ctx context.Context, rubric *schema.Rubric, candidates []model.Candidate, concurrency int) []model.Candidate {
	if m.vision != nil {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)

		for i := range candidates {
			g.Go(func() error {
				cand := &candidates[i]
				if cand.Thumbnail == "" {
					zap.L().Warn("pipeline: candidate has no thumbnail",
						zap.String("candidate", cand.ID))
					return nil
				}

				res, err := m.vision.ExtractAttributes(gctx, vision.ExtractRequest{
					ImageURL:    cand.Thumbnail,
					Category:    rubric.Category,
					Subcategory: rubric.Subcategory,
					Attributes:  rubric.AttributeNames(),
					Context:     cand.Title,
				})
				if err != nil {
					zap.L().Warn("pipeline: candidate extraction failed",
						zap.String("candidate", cand.ID),
						zap.Error(err))
					return nil
				}

				cand.Extraction = candidateRecord(cand.ID, rubric, res)
				return nil
			})
		}

		// Workers never return errors, so Wait only surfaces context cancellation.
		if err := g.Wait(); err != nil {
			zap.L().Warn("pipeline: candidate extraction interrupted", zap.Error(err))
		}
	}

	extracted := make([]model.Candidate, 0, len(candidates))
	for _, cand := range candidates {
		if cand.Extraction != nil {
			extracted = append(extracted, cand)
		}
	}
	if dropped := len(candidates) - len(extracted); dropped > 0 {
		zap.L().Info("pipeline: dropped candidates without extractions",
			zap.Int("dropped", dropped),
			zap.Int("kept", len(extracted)))
	}
	return extracted
}

// candidateRecord converts a raw extraction result into an observation record
// attributed to the candidate listing.
func candidateRecord(id string, rubric *schema.Rubric, res *vision.ExtractResult) *model.ExtractionRecord {
	attrs := make(map[string]model.AttributeValue, len(res.Attributes))
	for name, value := range res.Attributes {
		attrs[name] = model.AttributeValue{Value: value, Confidence: res.Confidence}
	}
	return &model.ExtractionRecord{
		Source:      id,
		Category:    rubric.Category,
		Subcategory: rubric.Subcategory,
		Attributes:  attrs,
		Confidence:  res.Confidence,
	}
}
