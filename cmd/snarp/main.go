package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/anthrax3/snarp/internal/cli"
	"github.com/anthrax3/snarp/internal/logging"
	"github.com/anthrax3/snarp/internal/pcm"
	"github.com/anthrax3/snarp/internal/processor"
	"github.com/anthrax3/snarp/internal/ui"
)

var (
	version = "0.0.1"
)

// CLI defines the command-line interface
type CLI struct {
	Version bool `short:"v" help:"Show version information"`

	Preset   string   `short:"p" default:"quiet" enum:"conversational,quiet,whisper" help:"Detection sensitivity preset"`
	PeakDbfs *float64 `name:"peak-dbfs" help:"Override the peak threshold in dBFS"`
	IqrDbfs  *float64 `name:"iqr-dbfs" help:"Override the interquartile threshold in dBFS"`

	ChunkMs      int `name:"chunk-ms" default:"100" help:"Analysis chunk size in milliseconds"`
	HysteresisMs int `name:"hysteresis-ms" default:"1000" help:"Silence required before trimming starts, in milliseconds"`
	PreRollMs    int `name:"pre-roll-ms" default:"200" help:"Silence kept before each audible segment, in milliseconds"`
	PostRollMs   int `name:"post-roll-ms" default:"200" help:"Silence kept after each audible segment, in milliseconds"`

	Endianness string `default:"little" enum:"little,big" help:"Sample byte order of the input"`
	Signedness string `default:"auto" enum:"auto,signed,unsigned" help:"Sample signedness (auto: unsigned 8-bit, signed wider)"`

	Output string `short:"o" help:"Output path, '-' for stdout (single input only)"`
	Bypass string `short:"b" help:"Write an untrimmed copy of the full stream to this WAV file (single input only)"`
	Stats  string `short:"s" help:"Write per-chunk levels as CSV to this file (single input only)"`
	Logs   bool   `help:"Save a trimming report alongside each output"`
	Quiet  bool   `short:"q" help:"Disable the interactive interface"`

	Files []string `arg:"" name:"files" optional:"" help:"WAV files to trim, '-' for stdin"`
}

func main() {
	cliArgs := &CLI{}
	kctx := kong.Parse(cliArgs,
		kong.Name("snarp"),
		kong.Description("Adaptive silence trimmer for WAV recordings"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	// Handle version flag
	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	// Validate input
	if len(cliArgs.Files) == 0 {
		cli.PrintError("No input files specified")
		kctx.PrintUsage(false)
		os.Exit(1)
	}
	if len(cliArgs.Files) > 1 {
		for flagName, value := range map[string]string{
			"--output": cliArgs.Output,
			"--bypass": cliArgs.Bypass,
			"--stats":  cliArgs.Stats,
		} {
			if value != "" {
				cli.PrintError(fmt.Sprintf("%s only applies to a single input file", flagName))
				os.Exit(1)
			}
		}
	}

	cfg, err := buildConfig(cliArgs)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if useInteractive(cliArgs) {
		runInteractive(ctx, cliArgs, cfg)
		return
	}
	runPlain(ctx, cliArgs, cfg)
}

// buildConfig translates flags into an engine configuration.
func buildConfig(cliArgs *CLI) (*processor.Config, error) {
	cfg := processor.DefaultConfig()
	cfg.Preset = cliArgs.Preset
	cfg.PeakDBFS = cliArgs.PeakDbfs
	cfg.IQRDBFS = cliArgs.IqrDbfs
	cfg.ChunkMs = cliArgs.ChunkMs
	cfg.HysteresisMs = cliArgs.HysteresisMs
	cfg.PreRollMs = cliArgs.PreRollMs
	cfg.PostRollMs = cliArgs.PostRollMs
	cfg.BigEndian = cliArgs.Endianness == "big"

	switch cliArgs.Signedness {
	case "signed":
		cfg.Signedness = pcm.SignednessSigned
	case "unsigned":
		cfg.Signedness = pcm.SignednessUnsigned
	default:
		cfg.Signedness = pcm.SignednessAuto
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// useInteractive decides between the TUI and plain stderr output. Piped
// streams and explicit stdout output force plain mode so the terminal stays
// free for the data.
func useInteractive(cliArgs *CLI) bool {
	if cliArgs.Quiet {
		return false
	}
	if cliArgs.Output == processor.StdioPath {
		return false
	}
	for _, f := range cliArgs.Files {
		if f == processor.StdioPath {
			return false
		}
	}
	return true
}

// runPlain processes each file sequentially, reporting to stderr.
func runPlain(ctx context.Context, cliArgs *CLI, cfg *processor.Config) {
	failed := 0
	for _, inputPath := range cliArgs.Files {
		startTime := time.Now()

		opts := processor.RunOptions{
			InputPath:  inputPath,
			OutputPath: cliArgs.Output,
			BypassPath: cliArgs.Bypass,
		}

		var statsW *logging.StatsWriter
		if cliArgs.Stats != "" {
			var err error
			statsW, err = logging.NewStatsWriter(cliArgs.Stats)
			if err != nil {
				cli.PrintError(err.Error())
				os.Exit(1)
			}
			opts.Observer = statsW.Record
		}

		result, err := processor.Run(ctx, cfg, opts)
		if statsW != nil {
			if closeErr := statsW.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}
		if err != nil {
			cli.PrintError(fmt.Sprintf("%s: %v", inputPath, err))
			failed++
			continue
		}

		fmt.Fprintf(os.Stderr, "%s: removed %.1f%% silence, %d segment(s), %d/%d audible chunks\n",
			inputPath, result.RemovedPercent(), len(result.Segments),
			result.AudibleChunks, result.TotalChunks)
		if result.Interrupted {
			fmt.Fprintln(os.Stderr, "interrupted; output covers the stream up to the interrupt")
		}

		if cliArgs.Logs && result.OutputPath != processor.StdioPath {
			reportData := logging.ReportData{
				InputPath:  inputPath,
				OutputPath: result.OutputPath,
				BypassPath: result.BypassPath,
				StatsPath:  cliArgs.Stats,
				StartTime:  startTime,
				EndTime:    time.Now(),
				Config:     cfg,
				Meta:       result.Meta,
				Result:     result.Result,
			}
			if err := logging.GenerateReport(reportData); err != nil {
				cli.PrintError(err.Error())
			}
		}

		if result.Interrupted {
			break
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// runInteractive drives the Bubbletea queue UI, processing files in a
// background goroutine and streaming updates into the program.
func runInteractive(ctx context.Context, cliArgs *CLI, cfg *processor.Config) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := ui.NewModel(cliArgs.Files)
	model.Cancel = cancel
	p := tea.NewProgram(model, tea.WithAltScreen())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i, inputPath := range cliArgs.Files {
			fileStartTime := time.Now()

			outputPath := cliArgs.Output
			if outputPath == "" {
				outputPath = processor.DefaultOutputPath(inputPath)
			}
			p.Send(ui.FileStartMsg{
				FileIndex:  i,
				FileName:   inputPath,
				OutputPath: outputPath,
			})

			opts := processor.RunOptions{
				InputPath:  inputPath,
				OutputPath: cliArgs.Output,
				BypassPath: cliArgs.Bypass,
				Progress: func(progress, level float64) {
					p.Send(ui.ProgressMsg{Progress: progress, Level: level})
				},
			}

			var statsW *logging.StatsWriter
			if cliArgs.Stats != "" {
				var err error
				statsW, err = logging.NewStatsWriter(cliArgs.Stats)
				if err != nil {
					p.Send(ui.FileCompleteMsg{FileIndex: i, Error: err})
					continue
				}
				opts.Observer = statsW.Record
			}

			result, err := processor.Run(ctx, cfg, opts)
			if statsW != nil {
				if closeErr := statsW.Close(); closeErr != nil && err == nil {
					err = closeErr
				}
			}
			if err != nil {
				p.Send(ui.FileCompleteMsg{
					FileIndex: i,
					Error:     err,
				})
				continue
			}

			if cliArgs.Logs {
				reportData := logging.ReportData{
					InputPath:  inputPath,
					OutputPath: result.OutputPath,
					BypassPath: result.BypassPath,
					StatsPath:  cliArgs.Stats,
					StartTime:  fileStartTime,
					EndTime:    time.Now(),
					Config:     cfg,
					Meta:       result.Meta,
					Result:     result.Result,
				}
				if err := logging.GenerateReport(reportData); err != nil {
					p.Send(ui.FileCompleteMsg{FileIndex: i, Error: err})
					continue
				}
			}

			p.Send(ui.FileCompleteMsg{
				FileIndex:      i,
				OutputPath:     result.OutputPath,
				RemovedPercent: result.RemovedPercent(),
				Segments:       len(result.Segments),
				AudibleChunks:  result.AudibleChunks,
				TotalChunks:    result.TotalChunks,
			})

			if result.Interrupted {
				break
			}
		}

		p.Send(ui.AllCompleteMsg{})
	}()

	_, runErr := p.Run()

	// Make sure the worker finishes flushing before we exit, whatever
	// ended the UI loop.
	cancel()
	<-done

	if runErr != nil {
		cli.PrintError(fmt.Sprintf("UI error: %v", runErr))
		os.Exit(1)
	}
}
