// Package execprobe periodically checks that the configured player
// executable is still on disk, so a broken install shows up in the logs and
// metrics before the next push fails.
package execprobe

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/czha8903/fnplayer/pkg/config"
)

// ConfigSource supplies the configuration to check.
type ConfigSource interface {
	Snapshot() config.Config
}

// Gauge receives 1 when the executable exists and 0 otherwise.
type Gauge interface {
	Set(float64)
}

// Probe holds what a check needs.
type Probe struct {
	Source ConfigSource
	Exists func(path string) bool
	Gauge  Gauge // optional
	Logger *slog.Logger

	present *bool // last observed state, nil before the first check
}

// Start begins the background check. It returns a function that stops the
// probe and waits for it to finish. A non-positive interval disables the
// probe.
func Start(ctx context.Context, interval time.Duration, p *Probe) (stopFunc func()) {
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	if interval <= 0 {
		p.Logger.Info("player executable probe disabled")
		return func() {}
	}

	p.Logger.Info("starting player executable probe", "interval", interval)
	ticker := time.NewTicker(interval)
	stopChan := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer ticker.Stop()

		p.Check()
		for {
			select {
			case <-ticker.C:
				p.Check()
			case <-stopChan:
				p.Logger.Debug("stopping player executable probe")
				return
			case <-ctx.Done():
				p.Logger.Debug("stopping player executable probe due to context cancellation")
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(stopChan) })
		<-done
	}
}

// Check runs one probe and reports whether the executable was found.
// Only changes of state are logged.
func (p *Probe) Check() bool {
	exe := p.Source.Snapshot().PlayerExecutable
	ok := p.Exists(exe)

	if p.Gauge != nil {
		if ok {
			p.Gauge.Set(1)
		} else {
			p.Gauge.Set(0)
		}
	}

	if p.present == nil || *p.present != ok {
		if ok {
			p.Logger.Info("player executable found", "path", exe)
		} else {
			p.Logger.Warn("player executable missing, pushes will fail until it is fixed", "path", exe)
		}
	}
	p.present = &ok
	return ok
}
