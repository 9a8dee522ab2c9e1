// Package fusion combines noisy per-frame extractions of one reference item
// into a single confident profile.
package fusion

import (
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/cliplens/match-cli/internal/model"
	"github.com/cliplens/match-cli/internal/schema"
)

// ErrNoObservations is returned when Fuse is called with an empty record
// list. Callers must supply at least one observation.
var ErrNoObservations = eris.New("fusion: no observations to fuse")

// Fuse picks, for each rubric attribute, the highest-confidence value across
// all observations, with provenance. Ties break on original observation
// order, so fusion is deterministic for a fixed input. Attributes no record
// supplies are marked unknown with confidence 0.
func Fuse(rubric *schema.Rubric, records []model.ExtractionRecord) (*model.FusedProfile, error) {
	if len(records) == 0 {
		return nil, ErrNoObservations
	}

	profile := &model.FusedProfile{
		Category:         rubric.Category,
		Subcategory:      rubric.Subcategory,
		Attributes:       make(map[string]model.FusedAttribute, len(rubric.Attributes)),
		ObservationCount: len(records),
	}

	type candidate struct {
		value      any
		source     string
		confidence float64
		order      int
	}

	known := 0
	var confidenceSum float64

	for _, attr := range rubric.Attributes {
		var candidates []candidate
		for i := range records {
			av, ok := records[i].Lookup(attr.Name)
			if !ok {
				continue
			}
			candidates = append(candidates, candidate{
				value:      av.Value,
				source:     records[i].Source,
				confidence: av.Confidence,
				order:      i,
			})
		}

		if len(candidates) == 0 {
			profile.Attributes[attr.Name] = model.FusedAttribute{Known: false}
			continue
		}

		// Highest confidence wins; first observation wins exact ties.
		sort.SliceStable(candidates, func(a, b int) bool {
			if candidates[a].confidence != candidates[b].confidence {
				return candidates[a].confidence > candidates[b].confidence
			}
			return candidates[a].order < candidates[b].order
		})

		best := candidates[0]
		profile.Attributes[attr.Name] = model.FusedAttribute{
			Value:      best.value,
			Source:     best.source,
			Confidence: best.confidence,
			Known:      true,
		}
		known++
		confidenceSum += best.confidence
	}

	profile.Completeness = float64(known) / float64(len(rubric.Attributes))
	if known > 0 {
		profile.OverallConfidence = confidenceSum / float64(known)
	}

	zap.L().Debug("fusion: profile built",
		zap.String("rubric", rubric.Key()),
		zap.Int("observations", len(records)),
		zap.Int("known_attributes", known),
		zap.Float64("completeness", profile.Completeness),
		zap.Float64("overall_confidence", profile.OverallConfidence),
	)

	return profile, nil
}
