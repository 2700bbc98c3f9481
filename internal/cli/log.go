package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// withLogger attaches the CLI logger to the context. The layout engine
// reads it back with log.FromContext, so debug lines from deep inside
// the multilevel solver show up under --verbose.
func (c *CLI) withLogger(ctx context.Context) context.Context {
	return log.WithContext(ctx, c.Logger)
}

// progress tracks the start time of an operation and logs completion
// with elapsed duration. It is safe for sequential use by a single
// goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time
// as start. The returned progress should call done when the operation
// completes.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Laid out 1200 nodes (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
