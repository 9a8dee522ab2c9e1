package model

import "time"

// VerificationTier labels how much trust a match result carries.
type VerificationTier string

// Verification tiers, from automatic scoring to human/brand confirmation.
const (
	TierAuto             VerificationTier = "auto"
	TierAutoHigh         VerificationTier = "auto_high"
	TierCreatorConfirmed VerificationTier = "creator_confirmed"
	TierBrandVerified    VerificationTier = "brand_verified"
	TierDisputed         VerificationTier = "disputed"
)

// VerificationState is the trust label on a match result. Transitions produce
// a new state; the previous one is discarded.
type VerificationState struct {
	Tier          VerificationTier `json:"tier"`
	Confidence    float64          `json:"confidence"` // 0-100
	VerifiedBy    string           `json:"verified_by,omitempty"`
	VerifiedAt    *time.Time       `json:"verified_at,omitempty"`
	DisputeReason string           `json:"dispute_reason,omitempty"`
	DisputedBy    string           `json:"disputed_by,omitempty"`
	DisputedAt    *time.Time       `json:"disputed_at,omitempty"`
}
