package framework

import (
	"strings"
	"sync"
)

type TestLogger interface {
	TestStarted(id TestID)
	TestError(id TestID, err error)
	TestFinished(id TestID, failed bool, debugOutput CapturedOutput)
	TestSkipped(id TestID, reason string)
}

type nullTestLogger struct{}

func (n nullTestLogger) TestStarted(TestID)                        {}
func (n nullTestLogger) TestError(TestID, error)                   {}
func (n nullTestLogger) TestFinished(TestID, bool, CapturedOutput) {}
func (n nullTestLogger) TestSkipped(TestID, string)                {}

// lockedTestLogger serializes calls so that tests running in parallel cannot interleave
// within a single logger call.
type lockedTestLogger struct {
	target TestLogger
	lock   sync.Mutex
}

func (l *lockedTestLogger) TestStarted(id TestID) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.target.TestStarted(id)
}

func (l *lockedTestLogger) TestError(id TestID, err error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.target.TestError(id, err)
}

func (l *lockedTestLogger) TestFinished(id TestID, failed bool, debugOutput CapturedOutput) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.target.TestFinished(id, failed, debugOutput)
}

func (l *lockedTestLogger) TestSkipped(id TestID, reason string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.target.TestSkipped(id, reason)
}

// reformatError drops the "Error Trace" block that testify puts in front of its messages,
// since the stack locations are in our own test code and only add noise to the output.
func reformatError(f Failure) Failure {
	lines := strings.Split(f.Message, "\n")
	var out []string
	inTrace := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		content := strings.TrimPrefix(strings.TrimLeft(strings.TrimLeft(line, "\t"), " "), "\t")
		content = strings.TrimRight(content, " \t")
		switch {
		case strings.HasPrefix(trimmed, "Error Trace:"):
			inTrace = true
			continue
		case strings.HasPrefix(trimmed, "Error:"):
			inTrace = false
			content = strings.TrimSpace(strings.TrimPrefix(trimmed, "Error:"))
		case strings.HasPrefix(trimmed, "Test:"), strings.HasPrefix(trimmed, "Messages:"):
			inTrace = false
		}
		if inTrace || trimmed == "" {
			continue
		}
		out = append(out, content)
	}
	if len(out) > 0 {
		f.Message = strings.Join(out, "\n")
	}
	return f
}
