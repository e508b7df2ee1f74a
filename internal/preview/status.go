package preview

import (
	"context"
	"sync"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
)

// BuildFunc runs one build.
type BuildFunc func(ctx context.Context) (*build.Result, error)

// Snapshot is the state of the latest build as reported by /healthz.
type Snapshot struct {
	Builds     int       `json:"builds"`
	BuildID    string    `json:"build_id,omitempty"`
	Outcome    string    `json:"outcome,omitempty"`
	Version    int       `json:"version,omitempty"`
	Pages      int       `json:"pages"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
	// GoodBuild is set once any build has produced a site.
	GoodBuild bool `json:"good_build"`
}

// Status tracks the latest build.
type Status struct {
	mu   sync.RWMutex
	snap Snapshot
}

// Record stores the outcome of a build.
func (s *Status) Record(res *build.Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	good := s.snap.GoodBuild
	s.snap = Snapshot{Builds: s.snap.Builds + 1}
	if res != nil {
		s.snap.BuildID = res.BuildID
		s.snap.Outcome = string(res.Status)
		s.snap.Version = res.Version
		s.snap.Pages = res.Pages
		s.snap.FinishedAt = res.EndTime
		good = good || res.Status.IsSuccess()
	}
	if err != nil {
		s.snap.Error = err.Error()
		if s.snap.Outcome == "" {
			s.snap.Outcome = string(build.StatusFailed)
		}
	}
	s.snap.GoodBuild = good
}

// Snapshot returns a copy of the latest state.
func (s *Status) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Healthy reports whether the latest build did not fail.
func (s Snapshot) Healthy() bool {
	return s.Builds > 0 && s.Outcome != string(build.StatusFailed) && s.Outcome != string(build.StatusCanceled)
}
