package apitests

import (
	"github.com/akademiaqa/api-contract-tests/framework"
)

type SuiteOptions struct {
	// Parallel is the number of scenarios within a group that may run at once.
	Parallel int
	// Seed makes generated request data reproducible. Zero picks a random seed.
	Seed uint64
}

func RunTestSuite(
	harness *framework.Harness,
	filter framework.Filter,
	testLogger framework.TestLogger,
	opts SuiteOptions,
) framework.Results {
	env := &suiteEnv{harness: harness, seed: opts.Seed, parallel: opts.Parallel}
	return framework.Run(filter, testLogger, func(c *framework.Context) {
		t := newTestScope(c, env)

		t.Group("posts", DoPostTests)
		t.Group("users", DoUserTests)
	})
}
