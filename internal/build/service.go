package build

import (
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

// Request contains the inputs of one build.
type Request struct {
	Config *config.Config
	// Increment bumps the site version before building.
	Increment bool
	// Strict fails the build on structure warnings, in addition to
	// config.Structure.Strict.
	Strict bool
}

// Result is the outcome of a build.
type Result struct {
	Status      Status
	BuildID     string
	Site        string
	Version     int
	Pages       int
	Ignored     int // content files without a known page id
	Failures    int // sections that failed to render
	BrokenLinks int
	Stylesheets []string // optional stylesheets used by some page
	OutputPath  string
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
}

// Status is the overall outcome of a build.
type Status string

const (
	StatusSuccess Status = "success"
	// StatusWarning means the site was written but sections failed or links are broken.
	StatusWarning  Status = "warning"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

// IsSuccess reports whether the site was written.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess || s == StatusWarning
}

func (s Status) outcome() metrics.BuildOutcome {
	switch s {
	case StatusSuccess:
		return metrics.OutcomeSuccess
	case StatusWarning:
		return metrics.OutcomeWarning
	case StatusCanceled:
		return metrics.OutcomeCanceled
	default:
		return metrics.OutcomeFailed
	}
}
