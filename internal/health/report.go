package health

import "github.com/kebairia/wikiops/internal/logger"

// Tally counts check outcomes by severity. Counters only ever increase
// within a run; INFO lines are not tallied.
type Tally struct {
	OK    int
	Warn  int
	Error int
}

// Reporter classifies every reported line exactly once and keeps the tally.
type Reporter struct {
	log   logger.Logger
	tally Tally
}

// NewReporter wraps log for severity-tagged check reporting.
func NewReporter(log logger.Logger) *Reporter {
	return &Reporter{log: log}
}

// OK records a passing check.
func (r *Reporter) OK(msg string, keysAndValues ...any) {
	r.tally.OK++
	r.log.Info(msg, append(keysAndValues, "status", "OK")...)
}

// Warn records a soft failure; the run continues.
func (r *Reporter) Warn(msg string, keysAndValues ...any) {
	r.tally.Warn++
	r.log.Warn(msg, keysAndValues...)
}

// Error records a hard failure.
func (r *Reporter) Error(msg string, keysAndValues ...any) {
	r.tally.Error++
	r.log.Error(msg, keysAndValues...)
}

// Info logs context without affecting the tally.
func (r *Reporter) Info(msg string, keysAndValues ...any) {
	r.log.Info(msg, keysAndValues...)
}

// Tally returns the counters accumulated so far.
func (r *Reporter) Tally() Tally {
	return r.tally
}
