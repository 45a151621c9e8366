package types

import "time"

// EventRow is one row of the events table after namespace insertion.
type EventRow struct {
	LastSeen  string `json:"last_seen"`
	Namespace string `json:"namespace"`
	Object    string `json:"object"`
	Reason    string `json:"reason"`
	Message   string `json:"message"`
}

// Cells returns the row in display order; the message is always last.
func (r EventRow) Cells() []string {
	return []string{r.LastSeen, r.Namespace, r.Object, r.Reason, r.Message}
}

// EventSnapshot is the formatted output of one polling tick
type EventSnapshot struct {
	CollectedAt time.Time `json:"collected_at"`
	Namespaces  []string  `json:"namespaces"`
	Rows        []string  `json:"rows"`
}
