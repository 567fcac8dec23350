package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/akademiaqa/api-contract-tests/framework"

	"github.com/fatih/color"
)

var (
	passedLabel  = color.New(color.FgGreen).SprintFunc()
	failedLabel  = color.New(color.FgRed, color.Bold).SprintFunc()
	skippedLabel = color.New(color.FgYellow).SprintFunc()
	kindLabel    = color.New(color.FgMagenta).SprintFunc()
)

// ConsoleTestLogger writes test progress to Out. Each test's lines are held back until the
// test finishes and are then written as one block, so tests running in parallel never
// interleave. A top-level group's header is written as soon as its first test starts.
type ConsoleTestLogger struct {
	Out                  io.Writer
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool

	lock    sync.Mutex
	pending map[string]*bytes.Buffer
}

func (c *ConsoleTestLogger) TestStarted(id framework.TestID) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.pending == nil {
		c.pending = make(map[string]*bytes.Buffer)
	}
	if len(id.Path) > 1 {
		top := framework.TestID{Path: id.Path[:1]}.String()
		if buf := c.pending[top]; buf != nil {
			_, _ = c.Out.Write(buf.Bytes())
			delete(c.pending, top)
		}
	}
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "[%s]\n", id)
	c.pending[id.String()] = buf
}

func (c *ConsoleTestLogger) TestError(id framework.TestID, err error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	buf := c.bufferFor(id)
	message := err.Error()
	if f, ok := err.(framework.Failure); ok {
		fmt.Fprintf(buf, "  %s\n", kindLabel(f.Kind))
		message = f.Message
	}
	for _, line := range strings.Split(message, "\n") {
		fmt.Fprintf(buf, "  %s\n", line)
	}
}

func (c *ConsoleTestLogger) TestFinished(id framework.TestID, failed bool, debugOutput framework.CapturedOutput) {
	c.lock.Lock()
	defer c.lock.Unlock()
	buf := c.bufferFor(id)
	if failed {
		fmt.Fprintf(buf, "  %s: %s\n", failedLabel("FAILED"), id)
	} else if len(id.Path) > 1 {
		fmt.Fprintf(buf, "  %s\n", passedLabel("ok"))
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(buf, "    DEBUG ")
	}
	c.flush(id)
}

func (c *ConsoleTestLogger) TestSkipped(id framework.TestID, reason string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	buf := c.bufferFor(id)
	if reason == "" {
		fmt.Fprintf(buf, "  %s: %s\n", skippedLabel("SKIPPED"), id)
	} else {
		fmt.Fprintf(buf, "  %s: %s (%s)\n", skippedLabel("SKIPPED"), id, reason)
	}
	c.flush(id)
}

func (c *ConsoleTestLogger) bufferFor(id framework.TestID) *bytes.Buffer {
	if c.pending == nil {
		c.pending = make(map[string]*bytes.Buffer)
	}
	key := id.String()
	buf := c.pending[key]
	if buf == nil {
		buf = &bytes.Buffer{}
		c.pending[key] = buf
	}
	return buf
}

// flush hands a finished test's block to the nearest ancestor that is still buffered, or
// writes it out if there is none.
func (c *ConsoleTestLogger) flush(id framework.TestID) {
	key := id.String()
	buf := c.pending[key]
	delete(c.pending, key)
	if buf == nil || buf.Len() == 0 {
		return
	}
	for n := len(id.Path) - 1; n > 0; n-- {
		if parent := c.pending[framework.TestID{Path: id.Path[:n]}.String()]; parent != nil {
			_, _ = parent.Write(buf.Bytes())
			return
		}
	}
	_, _ = c.Out.Write(buf.Bytes())
}
