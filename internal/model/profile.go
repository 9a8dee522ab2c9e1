package model

// FusedAttribute is the winning value for one rubric attribute after fusing
// all observations, with provenance back to the observation that supplied it.
type FusedAttribute struct {
	Value      any     `json:"value"`
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
	Known      bool    `json:"known"`
}

// FusedProfile is the single best-estimate attribute set for a reference
// item, derived from multiple noisy observations. Never mutated after
// creation; re-fusion produces a new profile.
type FusedProfile struct {
	Category          string                    `json:"category"`
	Subcategory       string                    `json:"subcategory"`
	Attributes        map[string]FusedAttribute `json:"attributes"`
	Completeness      float64                   `json:"completeness"`
	OverallConfidence float64                   `json:"overall_confidence"`
	ObservationCount  int                       `json:"observation_count"`
}

// Known returns the fused attribute for name only if a real value was
// observed for it.
func (p *FusedProfile) Known(name string) (FusedAttribute, bool) {
	fa, ok := p.Attributes[name]
	if !ok || !fa.Known {
		return FusedAttribute{}, false
	}
	return fa, true
}
