package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yearprogress/yearprogress/internal/daemon"
	"github.com/yearprogress/yearprogress/internal/display"
	"github.com/yearprogress/yearprogress/internal/events"
	"github.com/yearprogress/yearprogress/internal/progress"
	"github.com/yearprogress/yearprogress/internal/server"
	"github.com/yearprogress/yearprogress/pkg/dateutil"
)

func statusCmd() *cobra.Command {
	var asJSON bool
	var width int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show year progress and event markers",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			clock, err := a.clock()
			if err != nil {
				return err
			}

			evs, err := a.store.Load()
			if err != nil {
				return err
			}

			snap := progress.Evaluate(clock(), a.cfg.Progress.Timezone, a.cfg.Location(), a.year, evs)

			if asJSON {
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(snap)
			}
			return display.Card(stdout, snap, width)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the snapshot as JSON")
	cmd.Flags().IntVar(&width, "width", 50, "Progress bar width")

	return cmd
}

func eventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Manage timeline events",
	}

	cmd.AddCommand(eventsListCmd())
	cmd.AddCommand(eventsAddCmd())
	cmd.AddCommand(eventsRemoveCmd())
	cmd.AddCommand(eventsImportCmd())

	return cmd
}

func eventsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved events",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			evs, err := a.store.Load()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tDATE\tCOLOR")
			for _, ev := range evs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					ev.ID, ev.Name, dateutil.Civil(ev.Date, a.cfg.Location()).String(), ev.Color)
			}
			return tw.Flush()
		},
	}
}

func eventsAddCmd() *cobra.Command {
	var name, date, color, id string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an event",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}

			input := events.NewEvent{ID: id, Name: name, Color: color}
			if date != "" {
				parsed, err := dateutil.ParseDate(date, a.cfg.Location())
				if err != nil {
					return err
				}
				input.Date = parsed
			}

			created, err := a.store.Add(input)
			if err != nil {
				return err
			}

			logger.Info("Event added",
				zap.String("id", created.ID),
				zap.String("name", created.Name),
				zap.Time("date", created.Date))
			fmt.Fprintf(stdout, "Added %s (%s) on %s\n",
				created.Name, created.ID, dateutil.Civil(created.Date, a.cfg.Location()).String())
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Event name")
	cmd.Flags().StringVar(&date, "date", "", "Event date (YYYY-MM-DD, DD.MM.YYYY or RFC3339)")
	cmd.Flags().StringVar(&color, "color", events.DefaultColor, "Marker color (hex)")
	cmd.Flags().StringVar(&id, "id", "", "Event id (generated when empty)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func eventsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an event by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}

			removed, err := a.store.Remove(args[0])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("event %q not found", args[0])
			}

			logger.Info("Event removed", zap.String("id", args[0]))
			fmt.Fprintf(stdout, "Removed %s\n", args[0])
			return nil
		},
	}
}

func eventsImportCmd() *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "import <file.ics>",
		Short: "Import events from an iCalendar file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open calendar: %w", err)
			}
			defer f.Close()

			imported, err := events.ImportICS(f, a.cfg.Location(), color)
			if err != nil {
				return err
			}

			for _, ev := range imported {
				if _, err := a.store.Add(ev); err != nil {
					return fmt.Errorf("failed to add %q: %w", ev.Name, err)
				}
			}

			logger.Info("Calendar imported",
				zap.String("file", args[0]),
				zap.Int("count", len(imported)))
			fmt.Fprintf(stdout, "Imported %d event(s) from %s\n", len(imported), args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&color, "color", events.DefaultColor, "Marker color for imported events (hex)")

	return cmd
}

func watchCmd() *cobra.Command {
	var schedule string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-evaluate progress on a schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			clock, err := a.clock()
			if err != nil {
				return err
			}
			if schedule == "" {
				schedule = a.cfg.Daemon.Schedule
			}

			d, err := daemon.New(a.store, daemon.Options{
				Zone:       a.cfg.Progress.Timezone,
				Location:   a.cfg.Location(),
				TargetYear: a.year,
				Schedule:   schedule,
				SystemTray: a.cfg.Daemon.SystemTray,
				Clock:      clock,
			}, logger, daemon.WriterSink{W: stdout})
			if err != nil {
				return err
			}

			return d.Start(context.Background())
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron schedule (overrides daemon.schedule)")

	return cmd
}

func serveCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API and metrics over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			clock, err := a.clock()
			if err != nil {
				return err
			}
			if listen == "" {
				listen = a.cfg.Server.Listen
			}

			srv := server.New(a.store, server.Options{
				Zone:       a.cfg.Progress.Timezone,
				Location:   a.cfg.Location(),
				TargetYear: a.year,
				Clock:      clock,
			}, logger)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return srv.ListenAndServe(ctx, listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (overrides server.listen)")

	return cmd
}
