package scoring

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cliplens/match-cli/internal/fuzzy"
	"github.com/cliplens/match-cli/internal/model"
	"github.com/cliplens/match-cli/internal/schema"
)

// Engine scores candidates against a fused profile using a rubric. It is
// stateless and safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine creates a scoring engine with the given constants.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Score computes a candidate's MatchResult against the reference profile.
// Rank is left unset; the ranking pipeline assigns it after sorting.
func (e *Engine) Score(profile *model.FusedProfile, cand model.Candidate, rubric *schema.Rubric) *model.MatchResult {
	result := &model.MatchResult{
		Candidate: cand,
		Breakdown: make([]model.AttributeScore, 0, len(rubric.Attributes)),
	}

	for _, attr := range rubric.Attributes {
		row := model.AttributeScore{
			Attribute: attr.Name,
			MaxPoints: attr.MaxPoints,
			Critical:  attr.Critical,
		}

		ref, refKnown := profile.Known(attr.Name)
		if refKnown {
			row.ReferenceValue = ref.Value
		}

		var candVal model.AttributeValue
		candKnown := false
		if cand.Extraction != nil {
			candVal, candKnown = cand.Extraction.Lookup(attr.Name)
		}
		if candKnown {
			row.CandidateValue = candVal.Value
		}

		switch {
		case !refKnown:
			// Neutral credit: absence of reference data must not penalize.
			row.Points = attr.MaxPoints * e.cfg.MissingReferenceCredit
			row.Reason = "reference value unknown, neutral credit"

		case !candKnown:
			row.Points = attr.MaxPoints * e.cfg.MissingCandidateCredit
			row.Reason = "not detected on candidate, partial credit"

		default:
			sim, reason := fuzzy.Similarity(attr.Name, ref.Value, candVal.Value, rubric)
			row.Points = attr.MaxPoints * sim
			row.Reason = reason

			if sim == 0 {
				flag := fmt.Sprintf("%s: %v ≠ %v", humanize(attr.Name), ref.Value, candVal.Value)
				result.MismatchFlags = append(result.MismatchFlags, flag)
				if attr.Critical {
					result.CriticalMismatches = append(result.CriticalMismatches, attr.Name)
				}
			}
		}

		result.RawScore += row.Points
		result.Breakdown = append(result.Breakdown, row)
	}

	result.RawScore = round2(result.RawScore)
	result.FinalScore = result.RawScore

	// Deal-breaker cap: strong scores on minor attributes cannot outrank a
	// failed defining trait.
	if len(result.CriticalMismatches) > 0 && result.RawScore > e.cfg.CriticalCap {
		result.FinalScore = e.cfg.CriticalCap
		result.WasCapped = true
		result.CappedReason = fmt.Sprintf("critical mismatch on %s",
			strings.Join(result.CriticalMismatches, ", "))

		zap.L().Debug("scoring: deal-breaker cap applied",
			zap.String("candidate", cand.Title),
			zap.Float64("raw_score", result.RawScore),
			zap.Float64("cap", e.cfg.CriticalCap),
			zap.Strings("critical_mismatches", result.CriticalMismatches),
		)
	}

	result.Verification = e.initialVerification(result.FinalScore)
	return result
}

// initialVerification derives the starting trust tier from the final score.
func (e *Engine) initialVerification(score float64) model.VerificationState {
	tier := model.TierAuto
	if score >= e.cfg.AutoHighThreshold {
		tier = model.TierAutoHigh
	}
	now := time.Now().UTC()
	return model.VerificationState{
		Tier:       tier,
		Confidence: score,
		VerifiedAt: &now,
	}
}

// humanize turns snake_case attribute names into display form.
func humanize(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
