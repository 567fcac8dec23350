package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"time"

	"github.com/akademiaqa/api-contract-tests/apitests"
	"github.com/akademiaqa/api-contract-tests/config"
	"github.com/akademiaqa/api-contract-tests/framework"

	"github.com/spf13/cobra"
)

const (
	exitOK       = 0
	exitFailures = 1
	exitSetup    = 2
)

// errTestsFailed is returned by the root command when the run completed but some tests failed.
var errTestsFailed = errors.New("some tests failed")

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errTestsFailed):
		return exitFailures
	default:
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return exitSetup
	}
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var params commandParams
	cmd := &cobra.Command{
		Use:   commandName,
		Short: "Run contract tests against a posts/users REST API",
		Long: `Runs every contract test against the API at the configured base URI and reports
which tests passed and why the others failed.

Configuration is read from --set overrides, then CONTRACT_* environment variables, then
the --env-file dotenv file, then the defaults file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuite(&params, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	params.register(cmd.Flags())
	cmd.AddCommand(newFakeServerCommand(stderr))
	return cmd
}

func runSuite(params *commandParams, stdout, stderr io.Writer) error {
	resolver, err := params.resolver()
	if err != nil {
		return err
	}
	cfg, err := resolver.Resolve()
	if err != nil {
		return err
	}
	logging := cfg.Logging
	if params.debug {
		logging.Level = "debug"
	}
	logger := config.NewLogger(logging, stderr)

	tracing := framework.NoTracing()
	if params.tracePath != "" {
		f, err := os.Create(params.tracePath)
		if err != nil {
			return fmt.Errorf("cannot create trace file: %w", err)
		}
		defer f.Close()
		if tracing, err = framework.NewTracing(f); err != nil {
			return err
		}
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(ctx); err != nil {
			logger.Warn().Err(err).Msg("trace shutdown failed")
		}
	}()

	harness, err := framework.GlobalSetup(resolver, framework.HarnessOptions{Logger: &logger, Tracing: tracing})
	if err != nil {
		return err
	}

	seed := params.seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	logger.Info().Uint64("seed", seed).Int("parallel", params.parallel).Msg("starting test run")

	fmt.Fprintln(stdout)
	framework.PrintFilterDescription(stdout, params.filters)
	fmt.Fprintln(stdout, "Running test suite")

	testLogger := &ConsoleTestLogger{
		Out:                  stdout,
		DebugOutputOnFailure: true,
		DebugOutputOnSuccess: params.debugAll,
	}
	info := runInfo{cfg: cfg, seed: seed, started: time.Now()}
	results := apitests.RunTestSuite(harness, params.filters.AsFilter, testLogger, apitests.SuiteOptions{
		Parallel: params.parallel,
		Seed:     seed,
	})
	info.finished = time.Now()

	fmt.Fprintln(stdout)
	framework.PrintResults(stdout, results)

	if params.reportPath != "" {
		if err := writeReport(params.reportPath, info, results); err != nil {
			return fmt.Errorf("cannot write report: %w", err)
		}
		logger.Info().Str("path", params.reportPath).Msg("report written")
	}

	if !results.OK() {
		fmt.Fprintln(stdout, "\nTo rerun a failed test:")
		for _, r := range results.Failures {
			fmt.Fprintf(stdout, "  %s\n", params.rerunCommand(r.TestID, seed))
		}
		return errTestsFailed
	}
	return nil
}
