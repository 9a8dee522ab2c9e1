// Package verify implements the trust-tier transitions a human or brand can
// apply to a match result. Transitions are pure: they return an updated copy
// and never touch storage.
package verify

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/cliplens/match-cli/internal/model"
)

// confirmBonus is added to a match's confidence on confirmation, capped at 100.
const confirmBonus = 10

// ErrInvalidTier is returned when a confirmation names a tier that is not a
// human/brand confirmation tier.
var ErrInvalidTier = eris.New("verify: tier must be creator_confirmed or brand_verified")

// Confirm escalates the match's verification to the given tier, raising
// confidence by the confirmation bonus and stamping the verifier identity.
func Confirm(match model.MatchResult, tier model.VerificationTier, verifiedBy string) (model.MatchResult, error) {
	if tier != model.TierCreatorConfirmed && tier != model.TierBrandVerified {
		return match, ErrInvalidTier
	}
	if verifiedBy == "" {
		return match, eris.New("verify: verifiedBy is required")
	}

	now := time.Now().UTC()
	confidence := match.Verification.Confidence + confirmBonus
	if confidence > 100 {
		confidence = 100
	}

	match.Verification = model.VerificationState{
		Tier:       tier,
		Confidence: confidence,
		VerifiedBy: verifiedBy,
		VerifiedAt: &now,
	}
	return match, nil
}

// Dispute marks the match as disputed, retaining the prior confidence and
// stamping the reason.
func Dispute(match model.MatchResult, reason, disputedBy string) (model.MatchResult, error) {
	if reason == "" {
		return match, eris.New("verify: dispute reason is required")
	}

	now := time.Now().UTC()
	match.Verification = model.VerificationState{
		Tier:          model.TierDisputed,
		Confidence:    match.Verification.Confidence,
		DisputeReason: reason,
		DisputedBy:    disputedBy,
		DisputedAt:    &now,
	}
	return match, nil
}
