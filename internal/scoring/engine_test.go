package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cliplens/match-cli/internal/fusion"
	"github.com/cliplens/match-cli/internal/model"
	"github.com/cliplens/match-cli/internal/schema"
)

var colorFamilies = map[string][]string{
	"green": {"green", "olive", "sage", "olive green", "sage green"},
	"blue":  {"blue", "navy", "teal"},
}

func capRubric(t *testing.T) *schema.Rubric {
	t.Helper()
	r, err := schema.NewRubric("fashion", "tops", []schema.Attribute{
		{Name: "primary_color", MaxPoints: 30, Critical: true, Family: colorFamilies},
		{Name: "sleeve_length", MaxPoints: 30},
		{Name: "neckline", MaxPoints: 10, Critical: true},
		{Name: "material", MaxPoints: 15},
		{Name: "pattern", MaxPoints: 15},
	})
	require.NoError(t, err)
	return r
}

func profileFor(t *testing.T, rubric *schema.Rubric, attrs map[string]any) *model.FusedProfile {
	t.Helper()
	values := make(map[string]model.AttributeValue, len(attrs))
	for k, v := range attrs {
		values[k] = model.AttributeValue{Value: v, Confidence: 0.9}
	}
	profile, err := fusion.Fuse(rubric, []model.ExtractionRecord{{
		Source:     "frame-0",
		Category:   rubric.Category,
		Attributes: values,
		Confidence: 0.9,
	}})
	require.NoError(t, err)
	return profile
}

func candidateWith(id string, attrs map[string]any) model.Candidate {
	values := make(map[string]model.AttributeValue, len(attrs))
	for k, v := range attrs {
		values[k] = model.AttributeValue{Value: v, Confidence: 0.8}
	}
	return model.Candidate{
		ID:    id,
		Title: id,
		Extraction: &model.ExtractionRecord{
			Source:     id,
			Attributes: values,
			Confidence: 0.8,
		},
	}
}

func TestScore_CriticalCapApplied(t *testing.T) {
	t.Parallel()
	rubric := capRubric(t)
	engine := NewEngine(DefaultConfig())

	profile := profileFor(t, rubric, map[string]any{
		"primary_color": "olive",
		"sleeve_length": "long",
		"neckline":      "crew",
		"material":      "knit",
		"pattern":       "striped",
	})

	// Family-level color, exact sleeve and material, pattern miss, and a
	// critical neckline mismatch: raw 21+30+0+15+0 = 66.
	cand := candidateWith("cand-1", map[string]any{
		"primary_color": "sage",
		"sleeve_length": "long",
		"neckline":      "v-neck",
		"material":      "knit",
		"pattern":       "floral",
	})

	result := engine.Score(profile, cand, rubric)

	assert.InDelta(t, 66.0, result.RawScore, 1e-9)
	assert.True(t, result.WasCapped)
	assert.InDelta(t, 65.0, result.FinalScore, 1e-9)
	assert.Contains(t, result.CappedReason, "neckline")
	assert.Equal(t, []string{"neckline"}, result.CriticalMismatches)
	assert.Contains(t, result.MismatchFlags, "Neckline: crew ≠ v-neck")
}

func TestScore_NoCapWhenRawBelowCap(t *testing.T) {
	t.Parallel()
	rubric := capRubric(t)
	engine := NewEngine(DefaultConfig())

	profile := profileFor(t, rubric, map[string]any{
		"primary_color": "olive",
		"neckline":      "crew",
	})
	cand := candidateWith("cand-1", map[string]any{
		"primary_color": "navy",
		"neckline":      "crew",
	})

	result := engine.Score(profile, cand, rubric)

	// Color is a critical mismatch but the raw score is already under the cap.
	assert.NotEmpty(t, result.CriticalMismatches)
	assert.False(t, result.WasCapped)
	assert.Equal(t, result.RawScore, result.FinalScore)
}

func TestScore_MissingReferenceNeutralCredit(t *testing.T) {
	t.Parallel()
	rubric := capRubric(t)
	engine := NewEngine(DefaultConfig())

	profile := profileFor(t, rubric, map[string]any{
		"primary_color": "olive",
	})
	cand := candidateWith("cand-1", map[string]any{
		"primary_color": "olive",
		"sleeve_length": "long",
	})

	result := engine.Score(profile, cand, rubric)

	var sleeve model.AttributeScore
	for _, row := range result.Breakdown {
		if row.Attribute == "sleeve_length" {
			sleeve = row
		}
	}
	assert.InDelta(t, 15.0, sleeve.Points, 1e-9) // 30 * 0.50
	assert.Equal(t, "reference value unknown, neutral credit", sleeve.Reason)
	assert.Empty(t, result.MismatchFlags)
}

func TestScore_MissingCandidatePartialCredit(t *testing.T) {
	t.Parallel()
	rubric := capRubric(t)
	engine := NewEngine(DefaultConfig())

	profile := profileFor(t, rubric, map[string]any{
		"primary_color": "olive",
		"sleeve_length": "long",
		"neckline":      "crew",
		"material":      "knit",
		"pattern":       "striped",
	})

	// No extraction at all: every attribute takes the candidate-unknown
	// credit, never a mismatch flag.
	cand := model.Candidate{ID: "cand-1", Title: "mystery listing"}

	result := engine.Score(profile, cand, rubric)

	assert.InDelta(t, 45.0, result.RawScore, 1e-9) // 100 * 0.45
	assert.Empty(t, result.MismatchFlags)
	assert.Empty(t, result.CriticalMismatches)
	assert.False(t, result.WasCapped)
}

func TestScore_Bounds(t *testing.T) {
	t.Parallel()
	rubric := capRubric(t)
	engine := NewEngine(DefaultConfig())

	profiles := []*model.FusedProfile{
		profileFor(t, rubric, map[string]any{
			"primary_color": "olive", "sleeve_length": "long", "neckline": "crew",
			"material": "knit", "pattern": "striped",
		}),
		profileFor(t, rubric, map[string]any{"primary_color": "olive"}),
		profileFor(t, rubric, map[string]any{}),
	}
	candidates := []model.Candidate{
		candidateWith("exact", map[string]any{
			"primary_color": "olive", "sleeve_length": "long", "neckline": "crew",
			"material": "knit", "pattern": "striped",
		}),
		candidateWith("partial", map[string]any{"primary_color": "sage"}),
		{ID: "empty"},
	}

	for _, p := range profiles {
		for _, c := range candidates {
			r := engine.Score(p, c, rubric)
			assert.GreaterOrEqual(t, r.FinalScore, 0.0)
			assert.LessOrEqual(t, r.FinalScore, r.RawScore)
			assert.LessOrEqual(t, r.RawScore, 100.0)
		}
	}
}

func TestScore_PerfectMatch(t *testing.T) {
	t.Parallel()
	rubric := capRubric(t)
	engine := NewEngine(DefaultConfig())

	attrs := map[string]any{
		"primary_color": "olive", "sleeve_length": "long", "neckline": "crew",
		"material": "knit", "pattern": "striped",
	}
	result := engine.Score(profileFor(t, rubric, attrs), candidateWith("cand-1", attrs), rubric)

	assert.InDelta(t, 100.0, result.RawScore, 1e-9)
	assert.Equal(t, model.TierAutoHigh, result.Verification.Tier)
	assert.InDelta(t, 100.0, result.Verification.Confidence, 1e-9)
}

func TestScore_InitialTier(t *testing.T) {
	t.Parallel()
	rubric := capRubric(t)
	engine := NewEngine(DefaultConfig())

	profile := profileFor(t, rubric, map[string]any{
		"primary_color": "olive", "sleeve_length": "long", "neckline": "crew",
		"material": "knit", "pattern": "striped",
	})

	// One non-critical miss keeps the score under the auto-high threshold.
	cand := candidateWith("cand-1", map[string]any{
		"primary_color": "olive", "sleeve_length": "short", "neckline": "crew",
		"material": "knit", "pattern": "striped",
	})
	result := engine.Score(profile, cand, rubric)

	assert.InDelta(t, 70.0, result.FinalScore, 1e-9)
	assert.Equal(t, model.TierAuto, result.Verification.Tier)
	assert.NotNil(t, result.Verification.VerifiedAt)
}

func TestHumanize(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Primary Color", humanize("primary_color"))
	assert.Equal(t, "Neckline", humanize("neckline"))
}
