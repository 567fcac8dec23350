package framework

import (
	"fmt"
	"strings"
	"time"
)

type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID   TestID
	Errors   []Failure
	Skipped  bool
	Duration time.Duration
	// Output is the test's captured debug output, including the HTTP exchanges it made.
	Output CapturedOutput
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// Counts returns how many tests passed, failed and were skipped. Only leaf tests are
// counted; a group that contains other tests is not a test of its own.
func (r Results) Counts() (passed, failed, skipped int) {
	for _, t := range r.leaves() {
		switch {
		case t.Skipped:
			skipped++
		case len(t.Errors) > 0:
			failed++
		default:
			passed++
		}
	}
	return
}

// FailuresByKind counts failed tests by the kind of their first failure.
func (r Results) FailuresByKind() map[FailureKind]int {
	ret := make(map[FailureKind]int)
	for _, t := range r.Failures {
		if len(t.Errors) > 0 {
			ret[t.Errors[0].Kind]++
		}
	}
	return ret
}

// FailureList flattens the failures of every failed test.
func (r Results) FailureList() []TestFailure {
	var ret []TestFailure
	for _, t := range r.Failures {
		for _, e := range t.Errors {
			ret = append(ret, TestFailure{ID: t.TestID, Err: e})
		}
	}
	return ret
}

// Find returns the result for a test ID, if that test ran or was skipped.
func (r Results) Find(id string) (TestResult, bool) {
	for _, t := range r.Tests {
		if t.TestID.String() == id {
			return t, true
		}
	}
	return TestResult{}, false
}

func (r Results) leaves() []TestResult {
	parents := make(map[string]bool)
	for _, t := range r.Tests {
		if len(t.TestID.Path) > 1 {
			parents[TestID{Path: t.TestID.Path[:len(t.TestID.Path)-1]}.String()] = true
		}
	}
	var ret []TestResult
	for _, t := range r.Tests {
		if len(t.TestID.Path) > 0 && !parents[t.TestID.String()] {
			ret = append(ret, t)
		}
	}
	return ret
}

type TestID struct {
	Path []string
}

// Plus returns the ID of a subtest of this test.
func (t TestID) Plus(name string) TestID {
	path := make([]string, 0, len(t.Path)+1)
	path = append(path, t.Path...)
	return TestID{Path: append(path, name)}
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

type TestFailure struct {
	ID  TestID
	Err error
}

func (f TestFailure) Error() string {
	return fmt.Sprintf("[%s]: %s", f.ID, f.Err)
}
