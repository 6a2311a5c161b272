package events

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
)

// ImportICS converts the VEVENTs of an iCalendar stream into new events.
// Each VEVENT contributes its SUMMARY and the first DTSTART; recurrence rules
// are not expanded. Floating and all-day times are read in loc.
func ImportICS(r io.Reader, loc *time.Location, color string) ([]NewEvent, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar: %w", err)
	}

	out := make([]NewEvent, 0)
	for _, ve := range cal.Events() {
		ev, err := fromVEvent(ve, loc)
		if err != nil {
			return nil, err
		}
		ev.Color = color
		out = append(out, ev)
	}
	return out, nil
}

func fromVEvent(ve *ical.VEvent, loc *time.Location) (NewEvent, error) {
	var ev NewEvent

	uid := ""
	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		uid = p.Value
	}

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		ev.Name = strings.TrimSpace(p.Value)
	}
	if ev.Name == "" {
		return ev, fmt.Errorf("%w: vevent %q has no summary", ErrInvalidEvent, uid)
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return ev, fmt.Errorf("%w: vevent %q has no DTSTART", ErrInvalidEvent, uid)
	}

	if tzids, ok := dtStart.ICalParameters["TZID"]; ok && len(tzids) > 0 {
		start, err := ve.GetStartAt()
		if err != nil {
			return ev, fmt.Errorf("vevent %q: %w", uid, err)
		}
		ev.Date = start
		return ev, nil
	}

	start, err := parseICSTime(dtStart.Value, loc)
	if err != nil {
		return ev, fmt.Errorf("vevent %q: %w", uid, err)
	}
	ev.Date = start
	return ev, nil
}

// parseICSTime handles UTC, floating and date-only DTSTART values
func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}

	// UTC form, e.g., 20260220T090000Z
	if strings.HasSuffix(v, "Z") {
		return time.Parse("20060102T150405Z", v)
	}

	// Floating date-time, e.g., 20260220T090000
	if strings.Contains(v, "T") {
		return time.ParseInLocation("20060102T150405", v, loc)
	}

	// Date-only (all-day), e.g., 20260220
	return time.ParseInLocation("20060102", v, loc)
}
