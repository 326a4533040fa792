package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fpang/takeout-exif/internal/cli"
	"github.com/fpang/takeout-exif/internal/config"
	"github.com/fpang/takeout-exif/internal/filehandler"
	"github.com/fpang/takeout-exif/internal/logging"
	"github.com/fpang/takeout-exif/internal/pipeline"
	"github.com/fpang/takeout-exif/internal/report"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// CLI flags
var (
	workersFlag     int
	dryRunFlag      bool
	stayOpenFlag    bool
	exiftoolFlag    string
	toolTimeoutFlag time.Duration
	reportFlag      string
	verboseFlag     bool
	pickFlag        bool
	maxDepthFlag    int
	limitFlag       int
)

// rootCmd is the main Cobra command for the takeout-exif CLI.
var rootCmd = &cobra.Command{
	Use:   "takeout-exif [directory]",
	Short: "Restore capture dates on Google Takeout photos and videos",
	Long: `takeout-exif walks a Google Takeout export, pairs every
*.supplemental-metadata.json sidecar with its photo or video, and writes the
sidecar's photoTakenTime into the media file when the file has no capture date
of its own. Files that already carry a date are left untouched, so the tool can
be re-run safely.

Dates are written with exiftool (https://exiftool.org), which must be installed.
Files are modified in place; no backup copies are kept.

Examples:
  takeout-exif ~/Takeout/Google\ Photos
  takeout-exif --dry-run ./Takeout
  takeout-exif --max-depth 2 --limit 100 ./Takeout
  takeout-exif -w 8 --stay-open --report run.jsonl.zst ./Takeout
  takeout-exif --pick   # Choose the folder in a native dialog
  takeout-exif          # Interactive mode - prompts for directory`,
	Args: cobra.MaximumNArgs(1),
	Run:  runMain,
}

func init() {
	defaults := config.Default()
	rootCmd.Flags().IntVarP(&workersFlag, "workers", "w", defaults.Workers, "Number of files processed in parallel (env "+config.EnvWorkers+")")
	rootCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Report what would be updated without writing anything")
	rootCmd.Flags().BoolVar(&stayOpenFlag, "stay-open", false, "Keep one exiftool process per worker running (env "+config.EnvStayOpen+")")
	rootCmd.Flags().StringVar(&exiftoolFlag, "exiftool", "", "Path to the exiftool executable (env "+config.EnvExiftool+")")
	rootCmd.Flags().DurationVar(&toolTimeoutFlag, "tool-timeout", defaults.ToolTimeout, "Time limit for each exiftool call (env "+config.EnvToolTimeout+")")
	rootCmd.Flags().StringVar(&reportFlag, "report", "", "Write a JSON Lines outcome report to this file (.zst suffix compresses it)")
	rootCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging (overrides "+logging.LevelEnv+")")
	rootCmd.Flags().BoolVar(&pickFlag, "pick", false, "Choose the directory with a native folder dialog")
	rootCmd.Flags().IntVar(&maxDepthFlag, "max-depth", 0, "Maximum recursion depth (0 = unlimited)")
	rootCmd.Flags().IntVar(&limitFlag, "limit", 0, "Maximum sidecar files to process (0 = unlimited)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runMain is the main execution logic called by Cobra.
func runMain(cmd *cobra.Command, args []string) {
	initStart := time.Now()
	logging.Init(verboseFlag)

	cfg, err := resolveConfig(cmd)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	dirPath := resolveTarget(args)
	dirPath = cli.ValidateAndResolveDirectory(dirPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := report.NewRunID()
	tools := cli.InitTools(cfg)

	logging.NewStartupLogger("takeout-exif").
		RunID(runID).
		Target(dirPath).
		Tool(tools.Path, tools.Version).
		Feature("dryRun", cfg.DryRun).
		Feature("stayOpen", cfg.StayOpen).
		Config("workers", strconv.Itoa(cfg.Workers)).
		Config("toolTimeout", cfg.ToolTimeout.String()).
		Config("report", cfg.ReportPath).
		Config("maxDepth", strconv.Itoa(cfg.MaxDepth)).
		Config("limit", strconv.Itoa(cfg.Limit)).
		InitDuration(time.Since(initStart)).
		Log()

	run(ctx, cfg, dirPath, runID, tools)
}

// resolveConfig layers explicitly set flags over environment and defaults.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Workers = workersFlag
	}
	if flags.Changed("stay-open") {
		cfg.StayOpen = stayOpenFlag
	}
	if flags.Changed("exiftool") {
		cfg.Exiftool = exiftoolFlag
	}
	if flags.Changed("tool-timeout") {
		cfg.ToolTimeout = toolTimeoutFlag
	}
	cfg.DryRun = dryRunFlag
	cfg.MaxDepth = maxDepthFlag
	cfg.Limit = limitFlag
	cfg.ReportPath = reportFlag
	cfg.Verbose = verboseFlag

	return cfg, cfg.Validate()
}

// resolveTarget picks the directory from the argument, the folder dialog or
// an interactive prompt, in that order.
func resolveTarget(args []string) string {
	if len(args) == 1 {
		return args[0]
	}

	if pickFlag {
		dir, err := cli.PickDirectory()
		if err != nil {
			if errors.Is(err, cli.ErrPickCanceled) {
				log.Fatal().Msg("No directory selected")
			}
			log.Fatal().Err(err).Msg("Failed to pick directory")
		}
		return dir
	}

	if !cli.IsInteractive(os.Stdin) {
		log.Fatal().Msg("Missing directory argument. Usage: takeout-exif <directory>")
	}
	return cli.PromptForDirectory(os.Stdin, os.Stdout)
}

// run discovers sidecars, processes them and prints the summary. Per-file
// failures never change the exit code.
func run(ctx context.Context, cfg config.Config, dirPath, runID string, tools cli.Tools) {
	sidecars, err := filehandler.ScanSidecarsWithOptions(dirPath, filehandler.ScanOptions{
		MaxDepth: cfg.MaxDepth,
		Limit:    cfg.Limit,
	})
	if err != nil {
		log.Fatal().Err(err).Str("path", dirPath).Msg("Failed to scan directory")
	}

	con := newConsole(os.Stdout, os.Stderr)
	observers := pipeline.Observers{pipeline.Serialized(con)}

	var rep *report.Writer
	if cfg.ReportPath != "" {
		rep, err = report.Create(cfg.ReportPath, runID)
		if err != nil {
			log.Error().Err(err).Str("path", cfg.ReportPath).Msg("Report disabled")
		} else {
			observers = append(observers, rep)
		}
	}

	summary, err := pipeline.Run(ctx, sidecars, pipeline.Options{
		Workers:  cfg.Workers,
		DryRun:   cfg.DryRun,
		Tools:    tools.Factory,
		Prober:   tools.Prober,
		Observer: observers,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Run interrupted, remaining files were not processed")
	}

	if rep != nil {
		rep.WriteSummary(summary)
		if err := rep.Close(); err != nil {
			log.Error().Err(err).Str("path", cfg.ReportPath).Msg("Failed to finish report")
		} else {
			log.Info().Str("path", cfg.ReportPath).Msg("Report written")
		}
	}

	printSummary(os.Stdout, summary, cfg.DryRun, con.wouldUpdate())
}
