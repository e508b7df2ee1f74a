package preview

import (
	"context"
	"time"
)

// maxDelayFactor bounds how long a stream of changes can postpone a build,
// as a multiple of the quiet window.
const maxDelayFactor = 10

// Rebuilder coalesces bursts of change requests into single builds.
//
// A build starts once no request arrived for the quiet window, or at the
// latest after maxDelayFactor quiet windows. Builds run one at a time;
// requests arriving during a build cause exactly one follow-up build.
type Rebuilder struct {
	quiet    time.Duration
	maxDelay time.Duration
	build    func(ctx context.Context)
	requests chan struct{}
}

// NewRebuilder returns a Rebuilder calling build.
func NewRebuilder(quiet time.Duration, build func(ctx context.Context)) *Rebuilder {
	if quiet <= 0 {
		quiet = time.Millisecond
	}
	return &Rebuilder{
		quiet:    quiet,
		maxDelay: maxDelayFactor * quiet,
		build:    build,
		requests: make(chan struct{}, 1),
	}
}

// Request asks for a build. It never blocks.
func (r *Rebuilder) Request() {
	select {
	case r.requests <- struct{}{}:
	default:
	}
}

// Run processes requests until ctx is done.
func (r *Rebuilder) Run(ctx context.Context) {
	quiet := time.NewTimer(time.Hour)
	quiet.Stop()
	defer quiet.Stop()
	maxT := time.NewTimer(time.Hour)
	maxT.Stop()
	defer maxT.Stop()

	var quietC, maxC <-chan time.Time
	fire := func() {
		quiet.Stop()
		maxT.Stop()
		quietC, maxC = nil, nil
		r.build(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.requests:
			quiet.Reset(r.quiet)
			quietC = quiet.C
			if maxC == nil {
				maxT.Reset(r.maxDelay)
				maxC = maxT.C
			}
		case <-quietC:
			fire()
		case <-maxC:
			fire()
		}
	}
}
