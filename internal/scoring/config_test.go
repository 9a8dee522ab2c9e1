package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Defaults(t *testing.T) {
	t.Parallel()
	require.NoError(t, Validate(DefaultConfig()))
}

func TestValidate_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero cap", func(c *Config) { c.CriticalCap = 0 }, "critical_cap"},
		{"cap over 100", func(c *Config) { c.CriticalCap = 120 }, "critical_cap"},
		{"negative reference credit", func(c *Config) { c.MissingReferenceCredit = -0.1 }, "missing_reference_credit"},
		{"candidate credit over 1", func(c *Config) { c.MissingCandidateCredit = 1.5 }, "missing_candidate_credit"},
		{"candidate credit above reference", func(c *Config) {
			c.MissingCandidateCredit = 0.8
			c.MissingReferenceCredit = 0.5
		}, "must not exceed"},
		{"threshold out of range", func(c *Config) { c.AutoHighThreshold = 101 }, "auto_high_threshold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
