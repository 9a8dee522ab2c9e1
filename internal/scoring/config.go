// Package scoring computes capped weighted match scores for shopping
// candidates against a fused reference profile.
package scoring

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Config holds the globally tunable scoring constants. These are deliberately
// rubric-independent so they can be tuned in one place.
type Config struct {
	// CriticalCap clamps the final score of any candidate with at least one
	// critical-attribute mismatch.
	CriticalCap float64 `yaml:"critical_cap" mapstructure:"critical_cap"`
	// MissingReferenceCredit is the fraction of an attribute's points awarded
	// when the reference value is unknown. Absence of reference data should
	// not penalize candidates.
	MissingReferenceCredit float64 `yaml:"missing_reference_credit" mapstructure:"missing_reference_credit"`
	// MissingCandidateCredit is the fraction awarded when the candidate value
	// is unknown. A failed extraction is not a true mismatch, so it earns
	// slightly less than reference absence.
	MissingCandidateCredit float64 `yaml:"missing_candidate_credit" mapstructure:"missing_candidate_credit"`
	// AutoHighThreshold is the final score at or above which a match starts
	// in the auto_high verification tier.
	AutoHighThreshold float64 `yaml:"auto_high_threshold" mapstructure:"auto_high_threshold"`
}

// DefaultConfig returns the working scoring constants.
func DefaultConfig() Config {
	return Config{
		CriticalCap:            65,
		MissingReferenceCredit: 0.50,
		MissingCandidateCredit: 0.45,
		AutoHighThreshold:      85,
	}
}

// Validate checks that a Config is internally consistent.
func Validate(c Config) error {
	var errs []string

	if c.CriticalCap <= 0 || c.CriticalCap > 100 {
		errs = append(errs, fmt.Sprintf("critical_cap must be in (0,100], got %.1f", c.CriticalCap))
	}
	if c.MissingReferenceCredit < 0 || c.MissingReferenceCredit > 1 {
		errs = append(errs, "missing_reference_credit must be in [0,1]")
	}
	if c.MissingCandidateCredit < 0 || c.MissingCandidateCredit > 1 {
		errs = append(errs, "missing_candidate_credit must be in [0,1]")
	}
	if c.MissingCandidateCredit > c.MissingReferenceCredit {
		errs = append(errs, "missing_candidate_credit must not exceed missing_reference_credit")
	}
	if c.AutoHighThreshold < 0 || c.AutoHighThreshold > 100 {
		errs = append(errs, "auto_high_threshold must be between 0 and 100")
	}

	if len(errs) > 0 {
		return eris.Errorf("scoring: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
