package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/yearprogress/yearprogress/internal/config"
	"github.com/yearprogress/yearprogress/internal/events"
	"github.com/yearprogress/yearprogress/pkg/dateutil"
)

var (
	configPath string
	targetYear int
	nowFlag    string
	logger     *zap.Logger
	stdout     io.Writer = os.Stdout
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "yearprogress",
		Short:         "Year progress countdown",
		Long:          "Track how far through the year we are in a fixed timezone, with custom events on the timeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load config to get log file path
			cfg, err := config.Load(configPath)
			if err == nil && cfg.Daemon.LogFile != "" {
				logger, err = initFileLogger(cfg.Daemon.LogFile, cfg.Daemon.LogLevel)
				if err != nil {
					initLogger("info") // Fallback to console
				}
			} else if err == nil {
				initLogger(cfg.Daemon.LogLevel)
			} else {
				initLogger("info")
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Config file path")
	rootCmd.PersistentFlags().IntVar(&targetYear, "year", 0, "Target year (overrides progress.target_year)")
	rootCmd.PersistentFlags().StringVar(&nowFlag, "now", "", "Evaluate at this instant instead of the current time (RFC3339 or YYYY-MM-DD)")

	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(eventsCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(serveCmd())

	return rootCmd
}

// app bundles the loaded configuration with the event store
type app struct {
	cfg   *config.Config
	store *events.Store
	year  int
}

func loadApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ExpandEnvVars()

	year := cfg.Progress.TargetYear
	if targetYear != 0 {
		if targetYear < 1 || targetYear > 9999 {
			return nil, fmt.Errorf("--year must be between 1 and 9999, got %d", targetYear)
		}
		year = targetYear
	}

	var seed []events.Event
	if cfg.Events.SeedDefaults {
		seed = events.DefaultEvents()
	}

	return &app{
		cfg:   cfg,
		store: events.NewStore(cfg.Events.File, seed, logger),
		year:  year,
	}, nil
}

// clock returns the evaluation clock, fixed when --now is given
func (a *app) clock() (func() time.Time, error) {
	if nowFlag == "" {
		return time.Now, nil
	}
	fixed, err := dateutil.ParseDate(nowFlag, a.cfg.Location())
	if err != nil {
		return nil, fmt.Errorf("invalid --now: %w", err)
	}
	return func() time.Time { return fixed }, nil
}

func initLogger(level string) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err == nil {
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	}

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10,   // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}
