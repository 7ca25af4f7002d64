package contracts

import "errors"

// Recoverable evaluation errors. Each one skips the day without touching state.
var (
	// ErrInsufficientHistory: too few complete rows to smooth or rank
	ErrInsufficientHistory = errors.New("insufficient price history")

	// ErrDegenerateStatistic: too few samples for a stable percentile
	ErrDegenerateStatistic = errors.New("degenerate statistic")

	// ErrUpstreamDataUnavailable: price history or holdings request failed
	ErrUpstreamDataUnavailable = errors.New("upstream data unavailable")

	// ErrNoNewSession: the newest price row was already evaluated (holiday, rerun)
	ErrNoNewSession = errors.New("no new trading session")
)

// ErrStateNotFound is returned by a StateStore that has nothing persisted yet
var ErrStateNotFound = errors.New("engine state not found")

// SkipReason maps an evaluation error onto a short, stable label for metrics
func SkipReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInsufficientHistory):
		return "insufficient_history"
	case errors.Is(err, ErrDegenerateStatistic):
		return "degenerate_statistic"
	case errors.Is(err, ErrUpstreamDataUnavailable):
		return "upstream_unavailable"
	case errors.Is(err, ErrNoNewSession):
		return "no_new_session"
	default:
		return "internal"
	}
}
