package merge

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/flarebyte/shoggoth/internal/stage"
)

const defaultProgressInterval = 2 * time.Second

// progressReporter prints the running stage and its elapsed time while
// stages run. Linking libv8 can take minutes with no other output.
type progressReporter struct {
	interval time.Duration
	w        io.Writer

	mu        sync.Mutex
	stageName string
	started   time.Time
}

func newProgressReporter(w io.Writer, interval time.Duration) *progressReporter {
	if interval <= 0 {
		interval = defaultProgressInterval
	}
	return &progressReporter{interval: interval, w: w}
}

func (p *progressReporter) runStage(name string, _ stage.Envelope, next func() (stage.Envelope, error)) (stage.Envelope, error) {
	p.setSnapshot(name, time.Now())
	p.emit("start")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		for {
			select {
			case <-ticker.C:
				p.emit("running")
			case <-done:
				return
			}
		}
	}()

	out, err := next()
	close(done)
	// no tick may print after the final state
	<-stopped
	if err != nil {
		p.emit("failed")
	} else {
		p.emit("done")
	}
	return out, err
}

func (p *progressReporter) setSnapshot(stageName string, started time.Time) {
	p.mu.Lock()
	p.stageName = stageName
	p.started = started
	p.mu.Unlock()
}

func (p *progressReporter) emit(state string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	elapsed := time.Since(p.started).Round(time.Millisecond)
	_, _ = fmt.Fprintf(p.w, "progress stage=%s state=%s elapsed=%s\n", p.stageName, state, elapsed)
}
