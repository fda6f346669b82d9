package model

import "time"

// RunStatus represents the current state of an enrichment run.
type RunStatus string

const (
	RunStatusQueued     RunStatus = "queued"
	RunStatusScraping   RunStatus = "scraping"
	RunStatusSearching  RunStatus = "searching"
	RunStatusEvaluating RunStatus = "evaluating"
	RunStatusMerging    RunStatus = "merging"
	RunStatusComplete   RunStatus = "complete"
	RunStatusFailed     RunStatus = "failed"
)

// Run represents a single enrichment run for a restaurant.
type Run struct {
	ID         string     `json:"id"`
	Restaurant Restaurant `json:"restaurant"`
	Status     RunStatus  `json:"status"`
	Result     *RunResult `json:"result,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// RunResult holds the final outcome of a run.
type RunResult struct {
	DirectoryStatus DirectoryStatus   `json:"directory_status"`
	Confidence      float64           `json:"confidence,omitempty"`
	WebsiteFills    int               `json:"website_fills"`
	DirectoryFills  int               `json:"directory_fills"`
	Filled          map[string]string `json:"filled,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	DurationMS      int64             `json:"duration_ms"`
	Error           string            `json:"error,omitempty"`
}
