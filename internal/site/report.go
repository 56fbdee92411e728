package site

import (
	"sync"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

// Report summarizes one build.
type Report struct {
	BuildID        string
	Start          time.Time
	End            time.Time
	StageDurations map[StageName]time.Duration
	StageResults   map[StageName]StageResult
	Posts          int      // posts rendered
	Rejected       int      // documents skipped by the parser
	Pages          int      // index pages written
	FeedEntries    int      // 0 when the feed was skipped
	AboutWritten   bool     // false when about.markdown is absent
	SlugConflicts  []string // slugs produced by more than one source
	SourceRevision string   // HEAD of the content repository, if any
	Warnings       []string
	Outcome        metrics.BuildOutcome

	mu sync.Mutex
}

func newReport(id string, start time.Time) *Report {
	return &Report{
		BuildID:        id,
		Start:          start,
		StageDurations: make(map[StageName]time.Duration),
		StageResults:   make(map[StageName]StageResult),
	}
}

// Duration returns the wall time of the build.
func (r *Report) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

func (r *Report) setStage(name StageName, d time.Duration, res StageResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.StageDurations[name] = d
	r.StageResults[name] = res
}

func (r *Report) addWarning(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Warnings = append(r.Warnings, err.Error())
}
