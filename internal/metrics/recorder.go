// Package metrics records build telemetry. The builder talks to the Recorder
// interface; the preview server exposes the Prometheus implementation.
package metrics

// Recorder receives build lifecycle events.
type Recorder interface {
	BuildStarted()
	BuildCompleted(outcome string, seconds float64)
	StageCompleted(stage, outcome string, seconds float64)
	PagesRendered(n int)
}

// Noop discards all events. It is the default when metrics are disabled.
type Noop struct{}

func (Noop) BuildStarted()                          {}
func (Noop) BuildCompleted(string, float64)         {}
func (Noop) StageCompleted(string, string, float64) {}
func (Noop) PagesRendered(int)                      {}
