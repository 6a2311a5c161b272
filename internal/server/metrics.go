package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// registerMetrics registers gauges evaluated at scrape time
func (s *Server) registerMetrics() {
	value := func(pick func(info snapshotInfo) float64) func() float64 {
		return func() float64 {
			snap, err := s.snapshot(s.opts.TargetYear)
			if err != nil {
				s.logger.Warn("Metrics evaluation failed", zap.Error(err))
				return 0
			}
			return pick(snapshotInfo{
				progress:      snap.Info.Progress,
				dayOfYear:     snap.Info.DayOfYear,
				daysRemaining: snap.Info.DaysRemaining,
				events:        len(snap.Markers),
			})
		}
	}

	s.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "yearprogress_progress_percent",
			Help: "Percentage of the target year elapsed.",
		}, value(func(i snapshotInfo) float64 { return i.progress })),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "yearprogress_day_of_year",
			Help: "Current 1-based day of year in the progress timezone.",
		}, value(func(i snapshotInfo) float64 { return float64(i.dayOfYear) })),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "yearprogress_days_remaining",
			Help: "Days remaining in the current civil year.",
		}, value(func(i snapshotInfo) float64 { return float64(i.daysRemaining) })),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "yearprogress_events_total",
			Help: "Number of events on the timeline.",
		}, value(func(i snapshotInfo) float64 { return float64(i.events) })),
	)
}

type snapshotInfo struct {
	progress      float64
	dayOfYear     int
	daysRemaining int
	events        int
}
