package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/term"
)

const (
	progressUpdateInterval = 100 * time.Millisecond
	clearLineSequence      = "\r\033[K"
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ProgressPrinter redraws a single status line with elapsed or remaining
// seconds. It prints nothing when the output is not a terminal.
//
//	p := NewCountdownProgressPrinter(out, "Scanning for analyzers", "Scanning", 10*time.Second)
//	p.Start()
//	defer p.Stop()
//
// A ProgressPrinter is single-use.
type ProgressPrinter struct {
	out      io.Writer
	enabled  bool
	prefix   string
	phase    atomic.Value // string
	countUp  bool
	duration time.Duration

	startOnce sync.Once
	stopOnce  sync.Once
	stopChan  chan struct{}
	done      chan struct{}
	startTime time.Time
}

// NewProgressPrinter creates a progress printer that counts up (shows elapsed time).
func NewProgressPrinter(out io.Writer, prefix, phase string) *ProgressPrinter {
	return newProgressPrinter(out, prefix, phase, true, 0)
}

// NewCountdownProgressPrinter creates a progress printer that counts down from duration.
func NewCountdownProgressPrinter(out io.Writer, prefix, phase string, duration time.Duration) *ProgressPrinter {
	return newProgressPrinter(out, prefix, phase, false, duration)
}

func newProgressPrinter(out io.Writer, prefix, phase string, countUp bool, duration time.Duration) *ProgressPrinter {
	p := &ProgressPrinter{
		out:      out,
		enabled:  isTerminal(out),
		prefix:   prefix,
		countUp:  countUp,
		duration: duration,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
	p.phase.Store(phase)
	return p
}

// Start begins redrawing in a background goroutine.
func (p *ProgressPrinter) Start() {
	p.startOnce.Do(func() {
		p.startTime = time.Now()
		if !p.enabled {
			close(p.done)
			return
		}
		fmt.Fprintf(p.out, "\r%s (%s...)   ", p.prefix, p.phase.Load().(string))
		go p.loop()
	})
}

// SetPhase changes the phase shown in parentheses.
func (p *ProgressPrinter) SetPhase(phase string) {
	p.phase.Store(phase)
}

// Stop ends the display and clears the line. Safe to call more than once.
func (p *ProgressPrinter) Stop() {
	p.startOnce.Do(func() { close(p.done) })
	p.stopOnce.Do(func() {
		close(p.stopChan)
		<-p.done
		if p.enabled {
			fmt.Fprint(p.out, clearLineSequence)
		}
	})
}

func (p *ProgressPrinter) loop() {
	defer close(p.done)

	ticker := time.NewTicker(progressUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			fmt.Fprint(p.out, p.line(time.Since(p.startTime)))
		}
	}
}

// line renders the status for the given elapsed time.
func (p *ProgressPrinter) line(elapsed time.Duration) string {
	phase := p.phase.Load().(string)

	var seconds int
	if p.countUp {
		seconds = int(elapsed.Seconds())
	} else if remaining := p.duration - elapsed; remaining > 0 {
		// Round to the nearest second, e.g. 3.7s -> 4s
		seconds = int(remaining.Seconds() + 0.5)
	}

	if seconds > 0 {
		return fmt.Sprintf("\r%s (%s %ds)   ", p.prefix, phase, seconds)
	}
	return fmt.Sprintf("\r%s (%s...)   ", p.prefix, phase)
}
