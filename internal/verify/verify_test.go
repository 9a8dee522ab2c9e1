package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cliplens/match-cli/internal/model"
)

func autoMatch(confidence float64) model.MatchResult {
	return model.MatchResult{
		Candidate:  model.Candidate{ID: "cand-1", Title: "olive knit top"},
		FinalScore: confidence,
		Verification: model.VerificationState{
			Tier:       model.TierAuto,
			Confidence: confidence,
		},
	}
}

func TestConfirm_CreatorBonus(t *testing.T) {
	t.Parallel()

	updated, err := Confirm(autoMatch(72), model.TierCreatorConfirmed, "creator-42")
	require.NoError(t, err)

	assert.Equal(t, model.TierCreatorConfirmed, updated.Verification.Tier)
	assert.InDelta(t, 82.0, updated.Verification.Confidence, 1e-9)
	assert.Equal(t, "creator-42", updated.Verification.VerifiedBy)
	assert.NotNil(t, updated.Verification.VerifiedAt)
}

func TestConfirm_BonusCappedAt100(t *testing.T) {
	t.Parallel()

	updated, err := Confirm(autoMatch(95), model.TierBrandVerified, "brand-ops")
	require.NoError(t, err)
	assert.InDelta(t, 100.0, updated.Verification.Confidence, 1e-9)
}

func TestConfirm_RejectsInvalidTier(t *testing.T) {
	t.Parallel()

	_, err := Confirm(autoMatch(72), model.TierDisputed, "creator-42")
	assert.ErrorIs(t, err, ErrInvalidTier)

	_, err = Confirm(autoMatch(72), model.TierAuto, "creator-42")
	assert.ErrorIs(t, err, ErrInvalidTier)
}

func TestConfirm_RequiresVerifier(t *testing.T) {
	t.Parallel()

	_, err := Confirm(autoMatch(72), model.TierCreatorConfirmed, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verifiedBy")
}

func TestDispute_RetainsConfidence(t *testing.T) {
	t.Parallel()

	updated, err := Dispute(autoMatch(88), "wrong color entirely", "creator-42")
	require.NoError(t, err)

	assert.Equal(t, model.TierDisputed, updated.Verification.Tier)
	assert.InDelta(t, 88.0, updated.Verification.Confidence, 1e-9)
	assert.Equal(t, "wrong color entirely", updated.Verification.DisputeReason)
	assert.Equal(t, "creator-42", updated.Verification.DisputedBy)
	assert.NotNil(t, updated.Verification.DisputedAt)
}

func TestDispute_RequiresReason(t *testing.T) {
	t.Parallel()

	_, err := Dispute(autoMatch(88), "", "creator-42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reason")
}

func TestTransitions_DoNotMutateInput(t *testing.T) {
	t.Parallel()

	original := autoMatch(72)
	_, err := Confirm(original, model.TierCreatorConfirmed, "creator-42")
	require.NoError(t, err)

	assert.Equal(t, model.TierAuto, original.Verification.Tier)
	assert.InDelta(t, 72.0, original.Verification.Confidence, 1e-9)
}
