// Package progress reports how much of an input has been consumed.
package progress

import (
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v5"
	"github.com/vbauerster/mpb/v5/decor"
	"golang.org/x/term"
)

// Bar is a byte-counting progress bar. Add matches the signature of
// source.Options.OnRead so a Bar can be fed directly by an opened source.
type Bar struct {
	progress *mpb.Progress
	bar      *mpb.Bar
	count    int64
}

// New renders a bar to out for an input of total bytes. A total of 0 or less
// means the size is unknown; the bar then completes when Finish is called.
func New(out io.Writer, total int64, prefix string) *Bar {
	progress := mpb.New(
		mpb.WithOutput(out),
		mpb.WithWidth(60),
		mpb.WithRefreshRate(180*time.Millisecond),
	)
	if total < 0 {
		total = 0
	}
	bar := progress.AddBar(total, mpb.BarStyle(mpb.DefaultBarStyle),
		mpb.PrependDecorators(decor.Name(prefix+" "), decor.CountersKibiByte("% .1f / % .1f")),
		mpb.AppendDecorators(decor.Percentage()),
	)
	return &Bar{progress: progress, bar: bar}
}

// Add records n more bytes read.
func (b *Bar) Add(n int) {
	atomic.AddInt64(&b.count, int64(n))
	b.bar.IncrBy(n)
}

// Count returns the bytes recorded so far.
func (b *Bar) Count() int64 {
	return atomic.LoadInt64(&b.count)
}

// Finish completes the bar at the current count and waits for it to render.
func (b *Bar) Finish() {
	b.bar.SetTotal(-1, true)
	b.progress.Wait()
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}
