package ports

import "time"

// Metrics records export activity.
//
//go:generate go run go.uber.org/mock/mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks
type Metrics interface {
	// JobStarted counts a new baking job, i.e. one converter run.
	JobStarted(format string)
	// RequestCoalesced counts a request attached to an already running job.
	RequestCoalesced(format string)
	// RequestCanceled counts a request whose client went away.
	RequestCanceled(format string)
	// JobFinished records how long generation took and whether it failed.
	JobFinished(format string, elapsed time.Duration, err error)
}
