package alpha

import "time"

// Session is one workout parsed from an Alpha Progression export.
type Session struct {
	// Title is the full header, e.g. "Legs · Day 2 · Week 4 · Push-Pull-Legs".
	Title     string
	Date      time.Time
	Duration  time.Duration
	Exercises []Exercise
}

// Name is the routine part of the title, the text before the first " · ".
func (s Session) Name() string {
	name, _, _ := cutSeparator(s.Title)
	return name
}

// Exercise is one numbered exercise block within a session.
type Exercise struct {
	Number     int
	Name       string
	Equipment  string
	TargetReps int
	Sets       []Set
}

// Set is a single logged set. RIR is -1 when the app did not track it.
type Set struct {
	Number     int
	Weight     float64
	Bodyweight bool
	Reps       int
	RIR        float64
	Warmup     bool
}
