package domain

import "time"

// Execution is an uploaded log: the raw alternating (log, timestamp) lines of
// one distributed run, plus a summary of the graph built from it.
type Execution struct {
	ID         string    `json:"id"`
	Name       string    `json:"name,omitempty"`
	Lines      []string  `json:"lines"`
	Hosts      []string  `json:"hosts"`
	NodeCount  int       `json:"node_count"`
	UploadedAt time.Time `json:"uploaded_at"`
}
