// Package ingest holds what every import source reports back.
package ingest

// Result holds the outcome of an ingest operation.
type Result struct {
	SessionsReceived int `json:"sessions_received"`
	SessionsInserted int `json:"sessions_inserted"`
	SessionsSkipped  int `json:"sessions_skipped"`

	ExercisesCreated int `json:"exercises_created,omitempty"`

	SetsReceived   int   `json:"sets_received"`
	SetsInserted   int64 `json:"sets_inserted"`
	WarmupsSkipped int   `json:"warmups_skipped,omitempty"`

	Message string `json:"message,omitempty"`
}

// Add accumulates o into r.
func (r *Result) Add(o *Result) {
	r.SessionsReceived += o.SessionsReceived
	r.SessionsInserted += o.SessionsInserted
	r.SessionsSkipped += o.SessionsSkipped
	r.ExercisesCreated += o.ExercisesCreated
	r.SetsReceived += o.SetsReceived
	r.SetsInserted += o.SetsInserted
	r.WarmupsSkipped += o.WarmupsSkipped
}
