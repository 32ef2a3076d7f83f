// Package cmd wires the queueing-system simulator to a command line,
// using cobra only as the process shell (argument count and exit-code
// plumbing): the actual flag grammar is parsed by ParseArguments, a
// single left-to-right scan that interleaves the positional input file
// with option flags, rather than cobra's usual any-order
// flags-then-positionals convention.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/smo-sim/smo/autocalibrate"
	"github.com/smo-sim/smo/config"
	"github.com/smo-sim/smo/qnet"
)

// Process exit codes.
const (
	ExitSuccess          = 0
	ExitInvalidArguments = 1
	ExitOutputFileError  = 2
	ExitConfigError      = 3
	ExitIncorrectGuess   = 4
)

var rootCmd = &cobra.Command{
	Use:                   "smo [-r|-i|-a] [-o [outfile]] [-m max_requests] infile",
	Short:                 "Discrete-event simulator for a queueing system with refusals",
	DisableFlagParsing:    true,
	SilenceUsage:          true,
	SilenceErrors:         true,
	Args:                  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, rawArgs []string) error {
		return run(rawArgs, os.Stdout)
	},
}

// Execute parses os.Args, runs the simulator, and exits the process with
// the code matching the outcome.
func Execute() {
	os.Exit(executeArgs(os.Args[1:]))
}

func executeArgs(rawArgs []string) int {
	rootCmd.SetArgs(rawArgs)
	if err := rootCmd.Execute(); err != nil {
		return exitCodeFor(err)
	}
	return ExitSuccess
}

func exitCodeFor(err error) int {
	switch err.(type) {
	case *ArgError:
		return ExitInvalidArguments
	case *config.Error:
		return ExitConfigError
	case *outputFileErr:
		return ExitOutputFileError
	case *incorrectGuessErr:
		return ExitIncorrectGuess
	default:
		return ExitInvalidArguments
	}
}

type outputFileErr struct{ err error }

func (e *outputFileErr) Error() string { return e.err.Error() }

type incorrectGuessErr struct{ err error }

func (e *incorrectGuessErr) Error() string { return e.err.Error() }

func run(rawArgs []string, out io.Writer) error {
	args, err := ParseArguments(rawArgs)
	if err != nil {
		return err
	}

	cfg, err := config.Load(args.InputFile)
	if err != nil {
		return err
	}

	logrus.Infof("loaded configuration: %d sources, %d devices, buffer=%d, target=%d",
		len(cfg.SourcePeriods), len(cfg.DeviceCoefficients), cfg.BufferCapacity, cfg.Target)

	var reportWriter io.Writer
	if args.NeedOutput && args.ReportPath != "" {
		f, err := os.Create(args.ReportPath)
		if err != nil {
			return &outputFileErr{err: err}
		}
		defer f.Close()
		reportWriter = f
	}

	switch args.Mode {
	case ModeRunToCompletion:
		logrus.Info("mode: run-to-completion")
		sim := newSimulator(cfg)
		sim.RunToCompletion()
		writeSimulationOutput(args, out, reportWriter, sim)
	case ModeInteractive:
		logrus.Info("mode: interactive")
		sim := newSimulator(cfg)
		RunInteractive(os.Stdin, out, sim)
		if args.NeedOutput {
			writeSimulationOutput(args, out, reportWriter, sim)
		}
	case ModeAutomatic:
		logrus.Info("mode: auto-calibration")
		return runAutomatic(cfg, args, out, reportWriter)
	}
	return nil
}

func writeSimulationOutput(args *Arguments, out io.Writer, reportWriter io.Writer, sim *qnet.Simulator) {
	if !args.NeedOutput {
		return
	}
	if reportWriter != nil {
		WriteReport(reportWriter, sim)
		return
	}
	WriteReport(out, sim)
}

func newSimulator(cfg *config.Config) *qnet.Simulator {
	return qnet.NewSimulator(
		qnet.FixedPeriods(cfg.SourcePeriods),
		&qnet.DeterministicProcessingTime{Coefficients: cfg.DeviceCoefficients},
		len(cfg.SourcePeriods), len(cfg.DeviceCoefficients),
		cfg.BufferCapacity, cfg.Target,
	)
}

func runAutomatic(cfg *config.Config, args *Arguments, out io.Writer, reportWriter io.Writer) error {
	factory := func(target int64) *qnet.Simulator {
		return qnet.NewSimulator(
			qnet.FixedPeriods(cfg.SourcePeriods),
			&qnet.DeterministicProcessingTime{Coefficients: cfg.DeviceCoefficients},
			len(cfg.SourcePeriods), len(cfg.DeviceCoefficients),
			cfg.BufferCapacity, target,
		)
	}

	result, err := autocalibrate.Run(factory, cfg.Target, autocalibrate.Config{MaxRequests: args.MaxRequests})
	if err != nil {
		logrus.Warnf("auto-calibration did not converge: %v", err)
		return &incorrectGuessErr{err: err}
	}

	logrus.Infof("auto-calibration converged at target=%d after %d stage(s)", result.FinalTarget, len(result.Stages))
	if args.NeedOutput {
		w := out
		if reportWriter != nil {
			w = reportWriter
		}
		fmt.Fprintf(w, "Converged target: %d\n", result.FinalTarget)
		fmt.Fprintf(w, "Rejection probability: %v\n", result.RejectionProbability)
	}
	return nil
}
