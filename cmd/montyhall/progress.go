package main

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// DotProgressReporter prints a dot per progress tick instead of verbose
// logging, with a running percentage at the end of each line.
type DotProgressReporter struct {
	mu          sync.Mutex
	out         io.Writer
	dots        int
	dotsPerLine int
	startTime   time.Time
}

// NewDotProgressReporter creates a progress reporter that shows dots.
func NewDotProgressReporter(out io.Writer) *DotProgressReporter {
	return &DotProgressReporter{
		out:         out,
		dotsPerLine: 50,
		startTime:   time.Now(),
	}
}

// OnProgress is called periodically with trials completed so far.
func (r *DotProgressReporter) OnProgress(completed, total uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if total == 0 {
		return
	}

	if completed >= total {
		// Final update for this batch.
		if r.dots%r.dotsPerLine != 0 {
			fmt.Fprintln(r.out)
		}
		elapsed := time.Since(r.startTime)
		rate := float64(completed) / elapsed.Seconds()
		fmt.Fprintf(r.out, "✓ %d trials in %.1fs (%.0f trials/sec)\n",
			completed, elapsed.Seconds(), rate)
		r.dots = 0
		// The reporter is reused across batches; the next batch starts
		// its own clock here rather than at construction.
		r.startTime = time.Now()
		return
	}

	fmt.Fprint(r.out, ".")
	r.dots++
	if r.dots%r.dotsPerLine == 0 {
		pct := float64(completed) * 100 / float64(total)
		fmt.Fprintf(r.out, " %d/%d (%.0f%%)\n", completed, total, pct)
	}
}
