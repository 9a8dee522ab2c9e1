package model

// Candidate is a shopping listing returned by the shopping search API, plus
// its own extraction record once the listing image has been processed.
type Candidate struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Price      string            `json:"price,omitempty"`
	Source     string            `json:"source,omitempty"`
	Link       string            `json:"link,omitempty"`
	Thumbnail  string            `json:"thumbnail,omitempty"`
	Extraction *ExtractionRecord `json:"extraction,omitempty"`
}

// AttributeScore is one row of a match's per-attribute breakdown.
type AttributeScore struct {
	Attribute      string  `json:"attribute"`
	ReferenceValue any     `json:"reference_value"`
	CandidateValue any     `json:"candidate_value"`
	Points         float64 `json:"points"`
	MaxPoints      float64 `json:"max_points"`
	Reason         string  `json:"reason"`
	Critical       bool    `json:"critical"`
}

// MatchResult is one candidate's scoring outcome. Rank is assigned by the
// ranking pipeline after sorting; everything else is set by the scoring
// engine. FinalScore never exceeds RawScore, and neither exceeds 100.
type MatchResult struct {
	Rank               int               `json:"rank"`
	Candidate          Candidate         `json:"candidate"`
	RawScore           float64           `json:"raw_score"`
	FinalScore         float64           `json:"final_score"`
	WasCapped          bool              `json:"was_capped"`
	CappedReason       string            `json:"capped_reason,omitempty"`
	Breakdown          []AttributeScore  `json:"breakdown"`
	MismatchFlags      []string          `json:"mismatch_flags,omitempty"`
	CriticalMismatches []string          `json:"critical_mismatches,omitempty"`
	TiebreakerUsed     bool              `json:"tiebreaker_used"`
	VisualScore        *float64          `json:"visual_score,omitempty"`
	Verification       VerificationState `json:"verification"`
}

// MatchingOutput aggregates everything one ranking run produced.
type MatchingOutput struct {
	ProductName    string        `json:"product_name"`
	SearchQuery    string        `json:"search_query"`
	Profile        *FusedProfile `json:"profile"`
	Candidates     []MatchResult `json:"candidates"`
	TopMatch       *MatchResult  `json:"top_match,omitempty"`
	TiebreakerUsed bool          `json:"tiebreaker_used"`
	FramesUsed     int           `json:"frames_used"`
	DurationMillis int64         `json:"duration_ms"`
}
