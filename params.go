package main

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/akademiaqa/api-contract-tests/config"
	"github.com/akademiaqa/api-contract-tests/framework"

	"github.com/alessio/shellescape"
	"github.com/spf13/pflag"
)

const commandName = "api-contract-tests"

type commandParams struct {
	overrides  []string
	configPath string
	envFile    string
	filters    framework.RegexFilters
	parallel   int
	seed       uint64
	debug      bool
	debugAll   bool
	reportPath string
	tracePath  string
}

func (c *commandParams) register(fs *pflag.FlagSet) {
	fs.StringArrayVar(&c.overrides, "set", nil, "configuration override as key=value (repeatable)")
	fs.StringVar(&c.configPath, "config", "", "defaults file (YAML) to use instead of the packaged one")
	fs.StringVar(&c.envFile, "env-file", "", "dotenv file consulted after the process environment")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.IntVar(&c.parallel, "parallel", 1, "number of tests within a group to run concurrently")
	fs.Uint64Var(&c.seed, "seed", 0, "seed for generated request data (0 picks one at random)")
	fs.BoolVar(&c.debug, "debug", false, "log at debug level, overriding log.level")
	fs.BoolVar(&c.debugAll, "debug-all", false, "dump captured output for passed tests too")
	fs.StringVar(&c.reportPath, "report", "", "write a JSON results report to this file")
	fs.StringVar(&c.tracePath, "trace-file", "", "write OpenTelemetry spans to this file")
}

func (c *commandParams) layers() (config.Layers, error) {
	overrides, err := config.ParseOverrides(c.overrides)
	if err != nil {
		return config.Layers{}, err
	}
	return config.Layers{
		Overrides:    overrides,
		DotEnvPath:   c.envFile,
		DefaultsPath: c.configPath,
	}, nil
}

// resolver returns the process-wide configuration when no source was given on the command
// line, and a resolver for the requested layers otherwise.
func (c *commandParams) resolver() (*config.Resolver, error) {
	if len(c.overrides) == 0 && c.configPath == "" && c.envFile == "" {
		return config.Default()
	}
	layers, err := c.layers()
	if err != nil {
		return nil, err
	}
	return layers.Resolver()
}

// rerunCommand builds a command line that repeats this run for a single test, with the same
// configuration sources and seed.
func (c *commandParams) rerunCommand(id framework.TestID, seed uint64) string {
	var b commandBuilder
	b.add(commandName)
	for _, o := range c.overrides {
		b.add("--set", o)
	}
	if c.configPath != "" {
		b.add("--config", c.configPath)
	}
	if c.envFile != "" {
		b.add("--env-file", c.envFile)
	}
	b.add("--seed", fmt.Sprint(seed))
	b.add("--run", "^"+regexp.QuoteMeta(id.String())+"$")
	b.add("--debug")
	return b.String()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
