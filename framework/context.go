package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

type environment struct {
	results    Results
	testLogger TestLogger
	filter     Filter
	lock       sync.Mutex
}

// Context is the framework's equivalent of *testing.T: it identifies one test, accumulates
// its failures, and captures its debug output. A failing test stops only itself; the
// panic raised by FailNow is recovered at the test boundary and siblings keep running.
type Context struct {
	env         *environment
	id          TestID
	debugLogger CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	failures    []Failure
	lock        sync.Mutex
}

// Subtest is a named test action for RunAll.
type Subtest struct {
	Name   string
	Action func(*Context)
}

func Run(
	filter func(TestID) bool,
	testLogger TestLogger,
	action func(*Context),
) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{
		filter:     filter,
		testLogger: &lockedTestLogger{target: testLogger},
	}
	c := &Context{env: env}
	c.run(action)
	return env.results
}

func (c *Context) run(action func(*Context)) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			if c.skipped {
				c.env.lock.Lock()
				c.env.results.Tests = append(c.env.results.Tests, TestResult{TestID: c.id, Skipped: true})
				c.env.lock.Unlock()
				return
			}
			var addError error
			if _, ok := r.(*Context); ok {
				if len(c.Failures()) == 0 {
					addError = errors.New("test failed with no failure message")
				}
			} else {
				addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
			}
			if addError != nil {
				c.Fail(NewFailure(KindContract, addError))
			}
		}
		result := TestResult{
			TestID:   c.id,
			Errors:   c.Failures(),
			Output:   c.debugLogger.Output(),
			Duration: time.Since(start),
		}
		c.env.lock.Lock()
		c.env.results.Tests = append(c.env.results.Tests, result)
		if c.Failed() {
			c.env.results.Failures = append(c.env.results.Failures, result)
		}
		c.env.lock.Unlock()
	}()

	action(c)
}

func (c *Context) ID() TestID {
	return c.id
}

// Run runs a subtest and waits for it to finish.
func (c *Context) Run(name string, action func(*Context)) {
	id := c.id.Plus(name)

	c.env.testLogger.TestStarted(id)
	if c.env.filter != nil && !c.env.filter(id) {
		c.env.testLogger.TestSkipped(id, "excluded by filter parameters")
		c.env.lock.Lock()
		c.env.results.Tests = append(c.env.results.Tests, TestResult{TestID: id, Skipped: true})
		c.env.lock.Unlock()
		return
	}
	c1 := &Context{
		id:  id,
		env: c.env,
	}
	c1.run(action)
	if c1.skipped {
		c.env.testLogger.TestSkipped(id, c1.skipReason)
	} else {
		c.env.testLogger.TestFinished(id, c1.Failed(), c1.debugLogger.Output())
	}
}

// Group runs action as a container of subtests. Unlike Run it ignores the filter, so that
// a pattern naming a test inside the group still reaches it; the subtests are filtered
// individually.
func (c *Context) Group(name string, action func(*Context)) {
	id := c.id.Plus(name)
	c.env.testLogger.TestStarted(id)
	c1 := &Context{
		id:  id,
		env: c.env,
	}
	c1.run(action)
	c.env.testLogger.TestFinished(id, c1.Failed(), c1.debugLogger.Output())
}

// RunAll runs subtests with at most parallel of them in flight at a time, and waits for
// all of them. With parallel <= 1 they run one after another in the given order.
func (c *Context) RunAll(parallel int, subtests ...Subtest) {
	if parallel <= 1 {
		for _, s := range subtests {
			c.Run(s.Name, s.Action)
		}
		return
	}
	var g errgroup.Group
	g.SetLimit(parallel)
	for _, s := range subtests {
		s := s
		g.Go(func() error {
			c.Run(s.Name, s.Action)
			return nil
		})
	}
	_ = g.Wait()
}

// Fail records a failure without stopping the test.
func (c *Context) Fail(f Failure) {
	f = reformatError(f)
	c.lock.Lock()
	c.failed = true
	c.failures = append(c.failures, f)
	c.lock.Unlock()
	c.env.testLogger.TestError(c.id, f)
}

func (c *Context) Failed() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.failed
}

func (c *Context) Failures() []Failure {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]Failure(nil), c.failures...)
}

// Errorf records a contract failure. Assertions from testify call this.
func (c *Context) Errorf(format string, args ...interface{}) {
	c.Fail(NewFailure(KindContract, fmt.Errorf(format, args...)))
}

func (c *Context) FailNow() {
	panic(c)
}

func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}
