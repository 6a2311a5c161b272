// Package display turns progress snapshots into human-readable text.
package display

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yearprogress/yearprogress/internal/progress"
	"github.com/yearprogress/yearprogress/pkg/dateutil"
)

const (
	barFill   = '█'
	barEmpty  = '░'
	markerMid = '│'
)

// FormatDate renders a civil date in long form, e.g. "3 January 2026"
func FormatDate(c dateutil.CivilDate) string {
	return fmt.Sprintf("%d %s %d", c.Day, c.Month, c.Year)
}

// FormatDayOfYear zero-pads the day ordinal to three digits
func FormatDayOfYear(day int) string {
	return fmt.Sprintf("%03d", day)
}

// FormatProgress renders a percentage with one decimal
func FormatProgress(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// MarkerLabel describes how far an event is from today
func MarkerLabel(m progress.EventMarker) string {
	switch {
	case m.IsToday:
		return "Today"
	case m.IsPast:
		return fmt.Sprintf("%dd ago", -m.DaysRemaining)
	default:
		return fmt.Sprintf("%dd remaining", m.DaysRemaining)
	}
}

// Summary is the one-line form used for tray tooltips and daemon output
func Summary(snap progress.Snapshot) string {
	info := snap.Info
	line := fmt.Sprintf("%d: day %s/%d, %d left, %s",
		info.Year, FormatDayOfYear(info.DayOfYear), info.TotalDays, info.DaysRemaining, FormatProgress(info.Progress))
	if next, ok := progress.NextEvent(snap.Markers); ok {
		line += fmt.Sprintf(" | next: %s (%s)", next.Name, MarkerLabel(next))
	}
	return line
}

// Bar draws a progress bar of width cells with event markers overlaid.
// Each marker is drawn as the first letter of its name.
func Bar(width int, pct float64, markers []progress.EventMarker) string {
	if width <= 0 {
		return ""
	}

	cells := make([]rune, width)
	filled := int(math.Round(math.Max(0, math.Min(100, pct)) / 100 * float64(width)))
	for i := range cells {
		if i < filled {
			cells[i] = barFill
		} else {
			cells[i] = barEmpty
		}
	}

	for _, m := range markers {
		cells[cellFor(width, m.Position)] = markerGlyph(m)
	}

	return string(cells)
}

// Axis draws the JAN 01 / MIDWAY / DEC 31 legend under a bar of width cells
func Axis(width int) string {
	const left, mid, right = "JAN 01", "MIDWAY", "DEC 31"
	if width < len(left)+len(mid)+len(right)+2 {
		return left + " " + right
	}

	line := []byte(strings.Repeat(" ", width))
	copy(line, left)
	midStart := cellFor(width, progress.MidwayPosition) - len(mid)/2
	copy(line[midStart:], mid)
	copy(line[width-len(right):], right)
	return string(line)
}

// Card writes the full status card for a snapshot
func Card(w io.Writer, snap progress.Snapshot, width int) error {
	info := snap.Info
	var b strings.Builder

	fmt.Fprintf(&b, "%d COUNTDOWN\n", info.Year)
	fmt.Fprintf(&b, "%s\n\n", FormatDate(info.Date))
	fmt.Fprintf(&b, "Day of year     %s\n", FormatDayOfYear(info.DayOfYear))
	fmt.Fprintf(&b, "Days remaining  %d\n", info.DaysRemaining)
	fmt.Fprintf(&b, "Progress        %s\n\n", FormatProgress(info.Progress))
	fmt.Fprintf(&b, "%s\n", Bar(width, info.Progress, snap.Markers))
	fmt.Fprintf(&b, "%s\n", Axis(width))

	if len(snap.Markers) > 0 {
		b.WriteString("\nEvents\n")
		for _, m := range snap.Markers {
			fmt.Fprintf(&b, "  %c %-20s %s  %s  %s\n",
				markerGlyph(m), m.Name, m.Date.In(dateLocation(snap)).Format("Jan 02"), m.Color, MarkerLabel(m))
		}
	}

	fmt.Fprintf(&b, "\nTimezone %s\n", snap.Timezone)

	_, err := io.WriteString(w, b.String())
	return err
}

func cellFor(width int, position float64) int {
	i := int(position / 100 * float64(width))
	if i >= width {
		i = width - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func markerGlyph(m progress.EventMarker) rune {
	r, size := utf8.DecodeRuneInString(strings.ToUpper(strings.TrimSpace(m.Name)))
	if size == 0 || r == utf8.RuneError {
		return markerMid
	}
	return r
}

func dateLocation(snap progress.Snapshot) *time.Location {
	loc, err := progress.ResolveZone(snap.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
