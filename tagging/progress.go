package tagging

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports the progress of a tagging run. Every image that
// leaves the run counts as processed, whether a tag-set file was written or
// the image was lost; Fail attributes the losses so the progress line shows
// the split the run Summary will carry.
type ProgressTracker struct {
	writer         io.Writer
	total          int
	processed      int
	failed         int
	reportInterval int
	lastReported   int
	startTime      time.Time
	started        bool
	mu             sync.Mutex
}

// NewProgressTracker creates a progress tracker over total images, writing
// a progress line to writer every reportInterval processed images.
func NewProgressTracker(writer io.Writer, total, reportInterval int) *ProgressTracker {
	return &ProgressTracker{
		writer:         writer,
		total:          total,
		reportInterval: reportInterval,
	}
}

// Start begins a run, resetting all counters.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.processed = 0
	p.failed = 0
	p.lastReported = 0
}

// Update sets the processed count to the specified value.
func (p *ProgressTracker) Update(processed int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	if processed > p.total {
		processed = p.total
	}
	p.processed = processed
	p.maybeReport()
}

// Increment advances the processed count by delta, capped at the total.
func (p *ProgressTracker) Increment(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.processed += delta
	if p.processed > p.total {
		p.processed = p.total
	}
	p.maybeReport()
}

// Fail attributes delta processed images to failures. Fail does not advance
// the processed count; callers still Increment for the same images.
func (p *ProgressTracker) Fail(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	p.failed += delta
}

// Finish sets the processed count to the total, prints the final progress
// line, and terminates it with a newline.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.processed = p.total
	p.report()
	fmt.Fprintln(p.writer)
}

// Elapsed returns the time elapsed since Start was called.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}

	return time.Since(p.startTime)
}

// maybeReport prints a progress line when a report interval has been
// crossed. Must be called with lock held.
func (p *ProgressTracker) maybeReport() {
	if p.processed-p.lastReported < p.reportInterval {
		return
	}
	p.report()
	p.lastReported = p.processed
}

// report prints the current progress. Must be called with lock held.
func (p *ProgressTracker) report() {
	elapsed := time.Since(p.startTime)
	rate := float64(p.processed) / elapsed.Seconds()

	percentage := 0.0
	if p.total > 0 {
		percentage = float64(p.processed) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\rProgress: %d/%d (%.1f%%), %d failed - %.1f images/s",
		p.processed, p.total, percentage, p.failed, rate)
}
