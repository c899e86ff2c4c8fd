package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"dashprep/internal/config"
	"dashprep/internal/logging"
	"dashprep/internal/pipeline"
	"dashprep/internal/reporter"
	"dashprep/internal/util"
)

// prepareFlags holds the parsed flags for the prepare command.
type prepareFlags struct {
	input      string
	videosDir  string
	logDir     string
	configFile string
	rates      []int
	ladder     string
	segment    int
	fps        int
	preset     string
	vmaf       bool
	vmafBin    string
	vmafModel  string
	workers    int
	jsonOutput bool
	verbose    bool
	noLog      bool
}

func newPrepareCommand() *cobra.Command {
	var pf prepareFlags

	cmd := &cobra.Command{
		Use:   "prepare <video-name>",
		Short: "Encode, segment and merge one video into an adaptive-bitrate track set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrepare(args[0], pf)
		},
	}

	cmd.Flags().StringVarP(&pf.input, "input", "i", "", "Source video file (required)")
	cmd.Flags().StringVar(&pf.videosDir, "videos-dir", "", "Root directory for per-video working trees")
	cmd.Flags().StringVarP(&pf.logDir, "log-dir", "l", "", "Log directory (defaults to <video dir>/logs)")
	cmd.Flags().StringVarP(&pf.configFile, "config", "c", "", "TOML configuration file")
	cmd.Flags().IntSliceVarP(&pf.rates, "rates", "r", nil, "Target bitrates in kbps (e.g. 300,600,1200)")
	cmd.Flags().StringVar(&pf.ladder, "ladder", "", "Named bitrate ladder (mobile, web, full)")
	cmd.Flags().IntVarP(&pf.segment, "segment", "s", 0, "Segment duration in seconds")
	cmd.Flags().IntVar(&pf.fps, "fps", 0, "Output frame rate")
	cmd.Flags().StringVar(&pf.preset, "preset", "", "libx264 encoder preset")
	cmd.Flags().BoolVar(&pf.vmaf, "vmaf", false, "Score each segment against the highest bitrate")
	cmd.Flags().StringVar(&pf.vmafBin, "vmaf-bin", "", "Path to the vmafossexec binary")
	cmd.Flags().StringVar(&pf.vmafModel, "vmaf-model", "", "Path to the VMAF model file")
	cmd.Flags().IntVarP(&pf.workers, "workers", "w", 0, "Representations processed in parallel")
	cmd.Flags().BoolVar(&pf.jsonOutput, "json", false, "Emit NDJSON events instead of terminal output")
	cmd.Flags().BoolVarP(&pf.verbose, "verbose", "v", false, "Enable verbose output")
	cmd.Flags().BoolVar(&pf.noLog, "no-log", false, "Disable log file creation")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runPrepare(videoName string, pf prepareFlags) error {
	inputPath, err := filepath.Abs(pf.input)
	if err != nil {
		return fmt.Errorf("invalid input path: %w", err)
	}
	if !util.FileExists(inputPath) {
		return fmt.Errorf("input file does not exist: %s", inputPath)
	}

	cfg, err := buildConfig(videoName, inputPath, pf)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Setup file logging
	fileLogger, err := logging.Setup(cfg.GetLogDir(), pf.verbose, pf.noLog)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer func() { _ = fileLogger.Close() }()

	// Structured log records go to the same file as the run log.
	slogLevel := logging.LevelInfo
	if pf.verbose {
		slogLevel = logging.LevelDebug
	}
	logging.Init(slogLevel, fileLogger.Writer())
	fileLogger.Info("Preparing %s from %s", videoName, inputPath)
	fileLogger.Info("Rates: %v, segment: %ds, fps: %d, workers: %d",
		cfg.SortedRates(), cfg.SegmentSeconds, cfg.FrameRate, cfg.Workers)

	var rep reporter.Reporter
	if pf.jsonOutput {
		rep = reporter.NewJSONReporter()
	} else {
		rep = reporter.NewTerminalReporter()
	}

	// Setup context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	_, err = pipeline.Run(ctx, cfg, rep)
	if err != nil {
		fileLogger.Error("Preparation failed: %v", err)
		return err
	}
	fileLogger.Info("Preparation complete")
	return nil
}

// buildConfig layers the configuration sources: defaults, then the config
// file, then explicit flags.
func buildConfig(videoName, inputPath string, pf prepareFlags) (*config.Config, error) {
	cfg := config.NewConfig(videoName, inputPath)

	if pf.configFile != "" {
		if err := config.LoadFile(pf.configFile, cfg); err != nil {
			return nil, err
		}
	}

	if pf.ladder != "" {
		ladder, err := config.ParseLadder(pf.ladder)
		if err != nil {
			return nil, err
		}
		cfg.ApplyLadder(ladder)
	}
	// An explicit rate list wins over the ladder.
	if len(pf.rates) > 0 {
		cfg.Rates = pf.rates
	}

	if pf.videosDir != "" {
		cfg.VideosDir = pf.videosDir
	}
	if pf.logDir != "" {
		cfg.LogDir = pf.logDir
	}
	if pf.segment != 0 {
		cfg.SegmentSeconds = pf.segment
	}
	if pf.fps != 0 {
		cfg.FrameRate = pf.fps
	}
	if pf.preset != "" {
		cfg.EncoderPreset = pf.preset
	}
	if pf.vmaf {
		cfg.EnableVMAF = true
	}
	if pf.vmafBin != "" {
		cfg.VMAFBin = pf.vmafBin
	}
	if pf.vmafModel != "" {
		cfg.VMAFModel = pf.vmafModel
	}
	if pf.workers != 0 {
		cfg.Workers = pf.workers
	}

	return cfg, nil
}
