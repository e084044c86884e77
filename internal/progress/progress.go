// Package progress reports how far a long pass has come. Reporting is purely
// observational: nothing in the pipeline depends on what a Reporter does.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Reporter receives progress for one phase at a time.
type Reporter interface {
	// Start begins a phase. A total of zero or less means unknown.
	Start(label string, total int64)
	// Update reports the number of units done so far.
	Update(done int64, status string)
	// Finish ends the current phase.
	Finish()
}

// Nop discards everything.
type Nop struct{}

func (Nop) Start(string, int64)  {}
func (Nop) Update(int64, string) {}
func (Nop) Finish()              {}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Options configures a Console reporter.
type Options struct {
	// Width of the bar in cells.
	Width int
	// Interval is the minimum time between two redraws.
	Interval time.Duration
	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

var (
	labelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Console draws a single-line bar, redrawn in place at most once per
// Interval. The final state of each phase is always drawn.
type Console struct {
	mu       sync.Mutex
	w        io.Writer
	bar      progress.Model
	interval time.Duration
	now      func() time.Time

	label  string
	total  int64
	done   int64
	status string
	last   time.Time
	active bool
}

// NewConsole creates a console reporter writing to w.
func NewConsole(w io.Writer, opts Options) *Console {
	bar := progress.New(progress.WithDefaultGradient())
	if opts.Width > 0 {
		bar.Width = opts.Width
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Console{w: w, bar: bar, interval: opts.Interval, now: now}
}

// ForStderr returns a Console on stderr when it is a terminal, Nop otherwise.
func ForStderr(enabled bool, opts Options) Reporter {
	if !enabled || !IsTerminal(os.Stderr) {
		return Nop{}
	}
	return NewConsole(os.Stderr, opts)
}

func (c *Console) Start(label string, total int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.label = label
	c.total = total
	c.done = 0
	c.status = ""
	c.active = true
	c.draw()
}

func (c *Console) Update(done int64, status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	c.done = done
	c.status = status
	if c.now().Sub(c.last) < c.interval {
		return
	}
	c.draw()
}

func (c *Console) Finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	if c.total > 0 {
		c.done = c.total
	}
	c.draw()
	fmt.Fprintln(c.w)
	c.active = false
}

// Line renders the current state without writing it.
func (c *Console) Line() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.line()
}

func (c *Console) line() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render(c.label))
	b.WriteString(" ")
	if c.total > 0 {
		pct := float64(c.done) / float64(c.total)
		if pct > 1 {
			pct = 1
		}
		b.WriteString(c.bar.ViewAs(pct))
		fmt.Fprintf(&b, " %d/%d", c.done, c.total)
	} else {
		fmt.Fprintf(&b, "%d", c.done)
	}
	if c.status != "" {
		b.WriteString(" ")
		b.WriteString(statusStyle.Render(c.status))
	}
	return b.String()
}

func (c *Console) draw() {
	c.last = c.now()
	fmt.Fprintf(c.w, "\r\x1b[2K%s", c.line())
}
