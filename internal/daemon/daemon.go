package daemon

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/yearprogress/yearprogress/internal/display"
	"github.com/yearprogress/yearprogress/internal/events"
	"github.com/yearprogress/yearprogress/internal/progress"
)

// EventSource provides the current event list snapshot
type EventSource interface {
	Load() ([]events.Event, error)
}

// Sink receives every fresh evaluation
type Sink interface {
	Publish(snap progress.Snapshot)
}

// WriterSink prints the one-line summary of each evaluation
type WriterSink struct {
	W io.Writer
}

// Publish writes the summary line
func (s WriterSink) Publish(snap progress.Snapshot) {
	fmt.Fprintln(s.W, display.Summary(snap))
}

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Options configures a Daemon
type Options struct {
	Zone       string
	Location   *time.Location
	TargetYear int
	Schedule   string
	SystemTray bool
	Clock      func() time.Time
}

// Daemon re-evaluates year progress on a schedule
type Daemon struct {
	source   EventSource
	sinks    []Sink
	opts     Options
	schedule cron.Schedule
	logger   *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	trayApp  *TrayApp

	mu   sync.Mutex // serializes evaluations
	last *progress.Snapshot
}

// New creates a daemon instance
func New(source EventSource, opts Options, logger *zap.Logger, sinks ...Sink) (*Daemon, error) {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Location == nil {
		return nil, fmt.Errorf("location is required")
	}

	schedule, err := scheduleParser.Parse(opts.Schedule)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", opts.Schedule, err)
	}
	// Specs are evaluated in the progress timezone, not the host zone.
	if spec, ok := schedule.(*cron.SpecSchedule); ok {
		spec.Location = opts.Location
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		source:   source,
		sinks:    sinks,
		opts:     opts,
		schedule: schedule,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start runs the daemon until Stop, a signal, or ctx cancellation
func (d *Daemon) Start(ctx context.Context) error {
	go func() {
		select {
		case <-ctx.Done():
			d.Stop()
		case <-d.ctx.Done():
		}
	}()

	if d.opts.SystemTray {
		d.logger.Info("Initializing system tray")
		trayApp, err := NewTrayApp(d, d.logger)
		if err != nil {
			d.logger.Warn("Failed to initialize system tray", zap.Error(err))
			return d.run()
		}
		d.trayApp = trayApp
		d.sinks = append(d.sinks, trayApp)
		// Run tray (blocks until Quit)
		d.trayApp.Run()
		return nil
	}

	return d.run()
}

// run drives the cron scheduler until the daemon context ends
func (d *Daemon) run() error {
	d.logger.Info("Daemon started",
		zap.String("schedule", d.opts.Schedule),
		zap.String("timezone", d.opts.Zone),
		zap.Int("target_year", d.opts.TargetYear))

	c := cron.New(
		cron.WithLocation(d.opts.Location),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	c.Schedule(d.schedule, cron.FuncJob(func() {
		if _, err := d.Evaluate(); err != nil {
			d.logger.Error("Evaluation failed", zap.Error(err))
		}
	}))

	// Run initial evaluation immediately
	if _, err := d.Evaluate(); err != nil {
		d.logger.Error("Initial evaluation failed", zap.Error(err))
	}

	c.Start()
	defer func() {
		<-c.Stop().Done()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-d.ctx.Done():
		d.logger.Info("Daemon stopped")
	case sig := <-sigChan:
		d.logger.Info("Received signal, shutting down",
			zap.String("signal", sig.String()))
		d.Stop()
	}

	if d.trayApp != nil {
		d.trayApp.Stop()
	}
	return nil
}

// Stop stops the daemon
func (d *Daemon) Stop() {
	d.cancel()
}

// Evaluate loads the event list, computes a fresh snapshot and publishes it
func (d *Daemon) Evaluate() (progress.Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	evs, err := d.source.Load()
	if err != nil {
		return progress.Snapshot{}, fmt.Errorf("failed to load events: %w", err)
	}

	now := d.opts.Clock()
	snap := progress.Evaluate(now, d.opts.Zone, d.opts.Location, d.opts.TargetYear, evs)

	d.logTransitions(snap)
	d.last = &snap

	for _, sink := range d.sinks {
		sink.Publish(snap)
	}

	d.logger.Debug("Progress evaluated",
		zap.Time("now", now),
		zap.Int("day_of_year", snap.Info.DayOfYear),
		zap.Float64("progress", snap.Info.Progress))

	return snap, nil
}

// Last returns the most recent snapshot, if any
func (d *Daemon) Last() (progress.Snapshot, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.last == nil {
		return progress.Snapshot{}, false
	}
	return *d.last, true
}

// logTransitions reports day rollover and events becoming due
func (d *Daemon) logTransitions(snap progress.Snapshot) {
	if d.last == nil {
		d.logger.Info("Year progress",
			zap.Int("year", snap.Info.Year),
			zap.Int("day_of_year", snap.Info.DayOfYear),
			zap.Int("days_remaining", snap.Info.DaysRemaining),
			zap.Float64("progress", snap.Info.Progress),
			zap.Int("events", len(snap.Markers)))
		return
	}

	if snap.Info.DayOfYear == d.last.Info.DayOfYear && snap.Info.Year == d.last.Info.Year {
		return
	}

	d.logger.Info("Day rollover",
		zap.String("date", snap.Info.Date.String()),
		zap.Int("day_of_year", snap.Info.DayOfYear),
		zap.Int("days_remaining", snap.Info.DaysRemaining),
		zap.Float64("progress", snap.Info.Progress))

	for _, m := range snap.Markers {
		if m.IsToday {
			d.logger.Info("Event is today",
				zap.String("id", m.ID),
				zap.String("name", m.Name))
		}
	}
}

// NextRun returns when the schedule fires next after the current clock
func (d *Daemon) NextRun() time.Time {
	return d.schedule.Next(d.opts.Clock().In(d.opts.Location))
}

// GetStatus returns daemon status
func (d *Daemon) GetStatus() map[string]interface{} {
	status := map[string]interface{}{
		"running":  d.ctx.Err() == nil,
		"schedule": d.opts.Schedule,
		"next_run": d.NextRun().Format(time.RFC3339),
	}

	if snap, ok := d.Last(); ok {
		status["summary"] = display.Summary(snap)
		status["progress_percent"] = snap.Info.Progress
	}

	return status
}
