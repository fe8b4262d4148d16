package guidemovie

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Bar prints a single-line terminal progress bar. Each call to Print
// overwrites the previous line with a carriage return; a newline is only
// written once the final iteration is reached.
type Bar struct {
	Writer io.Writer
	Width  int       // bar width in characters, 100 if zero
	Fill   rune      // fill character, '█' if zero
	Start  time.Time // if set, an estimated time remaining is appended

	now func() time.Time
}

// Print renders the bar for iteration of total, prefixed with prefix.
// The time remaining is extrapolated linearly from the elapsed time per
// completed iteration.
func (b *Bar) Print(iteration, total int, prefix string) {
	if total <= 0 || iteration < 0 {
		return
	}
	width := b.Width
	if width <= 0 {
		width = 100
	}
	fill := b.Fill
	if fill == 0 {
		fill = '█'
	}

	percent := 100 * float64(iteration) / float64(total)
	filled := width * iteration / total
	bar := strings.Repeat(string(fill), filled) + strings.Repeat("-", width-filled)

	remaining := " "
	if !b.Start.IsZero() && iteration > 0 {
		now := time.Now
		if b.now != nil {
			now = b.now
		}
		elapsed := now().Sub(b.Start).Seconds()
		left := elapsed / float64(iteration) * float64(total-iteration)
		switch {
		case left > 5400:
			remaining = fmt.Sprintf("| %.1f hrs remaining |", left/60/60)
		case left > 90:
			remaining = fmt.Sprintf("| %.1f min remaining |", left/60)
		default:
			remaining = fmt.Sprintf("| %.1f sec remaining |", left)
		}
	}

	fmt.Fprintf(b.Writer, "\r%s |%s| %.1f%%%s", prefix, bar, percent, remaining)
	if iteration == total {
		fmt.Fprintln(b.Writer)
	}
}
