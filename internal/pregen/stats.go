package pregen

import (
	"github.com/stylrsa/seo-pregen/internal"
	"time"
)

// Outcome is how a task settled. The zero value means the task failed.
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeCreated
	OutcomeUpdated
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	case OutcomeSkipped:
		return "skipped"
	}

	return "failed"
}

// Result is one settled task.
type Result struct {
	Task    internal.PageTask
	Outcome Outcome
	Err     error
}

type BatchStats struct {
	Created int
	Updated int
	Skipped int
	Errors  int
}

func (s *BatchStats) Record(r Result) {
	if r.Err != nil {
		s.Errors++
		return
	}

	switch r.Outcome {
	case OutcomeCreated:
		s.Created++
	case OutcomeUpdated:
		s.Updated++
	case OutcomeSkipped:
		s.Skipped++
	default:
		s.Errors++
	}
}

func (s *BatchStats) Add(other BatchStats) {
	s.Created += other.Created
	s.Updated += other.Updated
	s.Skipped += other.Skipped
	s.Errors += other.Errors
}

// Total counts every settled task, failures included.
func (s BatchStats) Total() int {
	return s.Created + s.Updated + s.Skipped + s.Errors
}

type PhaseStats struct {
	BatchStats
	Name        string
	Locations   int
	Pages       int
	FailedPages int
}

type RunStats struct {
	Keywords    int
	Phases      []PhaseStats
	Total       BatchStats
	FailedPages int
	Duration    time.Duration
}

func (r *RunStats) addPhase(p PhaseStats) {
	r.Phases = append(r.Phases, p)
	r.Total.Add(p.BatchStats)
	r.FailedPages += p.FailedPages
}
