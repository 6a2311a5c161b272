// Package progress answers how far through a target year the current moment
// is and where user events sit on that year's timeline. Every function here
// is a pure transform over its arguments.
package progress

import (
	"math"
	"time"

	"github.com/yearprogress/yearprogress/internal/events"
	"github.com/yearprogress/yearprogress/pkg/dateutil"
)

// MidwayPosition is the timeline position labelled as the middle of the year
const MidwayPosition = 50.0

// DateInfo is the aggregate result for one instant and target year.
//
// TotalDays and IsLeapYear describe Year, while DayOfYear and DaysRemaining
// describe the civil date of the instant. When Year differs from Date.Year the
// two halves are not reconciled.
type DateInfo struct {
	Date          dateutil.CivilDate `json:"date"`
	Year          int                `json:"year"`
	DayOfYear     int                `json:"dayOfYear"`
	DaysRemaining int                `json:"daysRemaining"`
	TotalDays     int                `json:"totalDays"`
	Progress      float64            `json:"progress"`
	IsLeapYear    bool               `json:"isLeapYear"`
}

// EventMarker is the derived timeline placement of one event
type EventMarker struct {
	events.Event
	DayOfYear     int     `json:"dayOfYear"`
	DaysRemaining int     `json:"daysRemaining"`
	Position      float64 `json:"position"`
	IsPast        bool    `json:"isPast"`
	IsToday       bool    `json:"isToday"`
}

// Snapshot bundles everything a renderer needs for one evaluation
type Snapshot struct {
	Timezone string        `json:"timezone"`
	Info     DateInfo      `json:"info"`
	Markers  []EventMarker `json:"markers"`
}

// GetDateInfo evaluates now in loc against targetYear.
// A targetYear of 0 selects the civil year of now.
func GetDateInfo(now time.Time, loc *time.Location, targetYear int) DateInfo {
	civil := dateutil.Civil(now, loc)
	year := targetYear
	if year == 0 {
		year = civil.Year
	}

	dayOfYear := dateutil.DayOfYear(now, loc)
	totalDays := dateutil.DaysInYear(year)

	return DateInfo{
		Date:          civil,
		Year:          year,
		DayOfYear:     dayOfYear,
		DaysRemaining: dateutil.DaysRemainingInYear(now, loc),
		TotalDays:     totalDays,
		Progress:      float64(dayOfYear) / float64(totalDays) * 100,
		IsLeapYear:    dateutil.IsLeapYear(year),
	}
}

// EventDayOfYear returns the 1-based day of the event's civil date counted
// from January 1st of year. Dates outside year yield values below 1 or above
// the year length.
func EventDayOfYear(date time.Time, loc *time.Location, year int) int {
	return dateutil.Civil(date, loc).DayNumber() - dateutil.DayNumber(year, time.January, 1) + 1
}

// PositionEvents places each event on the timeline of info.Year.
// The result has one marker per event in input order.
func PositionEvents(info DateInfo, loc *time.Location, evs []events.Event) []EventMarker {
	markers := make([]EventMarker, 0, len(evs))
	for _, ev := range evs {
		doy := EventDayOfYear(ev.Date, loc, info.Year)
		remaining := doy - info.DayOfYear

		markers = append(markers, EventMarker{
			Event:         ev,
			DayOfYear:     doy,
			DaysRemaining: remaining,
			Position:      clamp(float64(doy)/float64(info.TotalDays)*100, 0, 100),
			IsPast:        remaining < 0,
			IsToday:       remaining == 0,
		})
	}
	return markers
}

// Evaluate runs the aggregator and the positioner for one instant
func Evaluate(now time.Time, zone string, loc *time.Location, targetYear int, evs []events.Event) Snapshot {
	info := GetDateInfo(now, loc, targetYear)
	return Snapshot{
		Timezone: zone,
		Info:     info,
		Markers:  PositionEvents(info, loc, evs),
	}
}

// NextEvent returns the closest marker that is today or in the future
func NextEvent(markers []EventMarker) (EventMarker, bool) {
	var (
		next  EventMarker
		found bool
	)
	for _, m := range markers {
		if m.IsPast {
			continue
		}
		if !found || m.DaysRemaining < next.DaysRemaining {
			next = m
			found = true
		}
	}
	return next, found
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
