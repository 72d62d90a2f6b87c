package ports

import "time"

// Resolution outcomes reported to Metrics.
const (
	ResolutionSubmitted = "submitted"
	ResolutionSkipped   = "skipped"
	ResolutionFailed    = "failed"
	ResolutionDryRun    = "dry_run"
)

type Metrics interface {
	CacheLookup(hit bool)
	CredentialRefreshed()
	Remaining(ms int64)
	Resolution(outcome string)
	Run(err error, elapsed time.Duration)
}
