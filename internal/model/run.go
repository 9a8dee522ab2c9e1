package model

import "time"

// RunStatus tracks a match run through its lifecycle.
type RunStatus string

// Run statuses.
const (
	RunStatusQueued     RunStatus = "queued"
	RunStatusSearching  RunStatus = "searching"
	RunStatusExtracting RunStatus = "extracting"
	RunStatusScoring    RunStatus = "scoring"
	RunStatusComplete   RunStatus = "complete"
	RunStatusFailed     RunStatus = "failed"
)

// Run is one persisted match run for one reference item.
type Run struct {
	ID        string          `json:"id"`
	Product   string          `json:"product"`
	Status    RunStatus       `json:"status"`
	Result    *MatchingOutput `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
