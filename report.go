package main

import (
	"os"
	"strconv"
	"time"

	"github.com/akademiaqa/api-contract-tests/config"
	"github.com/akademiaqa/api-contract-tests/framework"

	"gopkg.in/launchdarkly/go-jsonstream.v1/jwriter"
)

type runInfo struct {
	cfg      config.Configuration
	seed     uint64
	started  time.Time
	finished time.Time
}

// writeReport writes the results of a run as a JSON document. Group entries are omitted; only
// the tests themselves are listed. A failed test carries its captured HTTP exchanges.
func writeReport(path string, info runInfo, results framework.Results) error {
	data, err := renderReport(info, results)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func renderReport(info runInfo, results framework.Results) ([]byte, error) {
	passed, failed, skipped := results.Counts()
	groups := make(map[string]bool)
	for _, t := range results.Tests {
		if len(t.TestID.Path) > 1 {
			groups[framework.TestID{Path: t.TestID.Path[:len(t.TestID.Path)-1]}.String()] = true
		}
	}

	w := jwriter.NewWriter()
	obj := w.Object()
	obj.Name("baseUrl").String(info.cfg.BaseURL())
	obj.Name("environment").String(info.cfg.Environment)
	obj.Name("seed").String(strconv.FormatUint(info.seed, 10))
	obj.Name("started").String(info.started.UTC().Format(time.RFC3339))
	obj.Name("durationMs").Int(int(info.finished.Sub(info.started).Milliseconds()))

	summary := obj.Name("summary").Object()
	summary.Name("passed").Int(passed)
	summary.Name("failed").Int(failed)
	summary.Name("skipped").Int(skipped)
	byKind := summary.Name("failuresByKind").Object()
	counts := results.FailuresByKind()
	for _, kind := range framework.AllFailureKinds {
		if n := counts[kind]; n > 0 {
			byKind.Name(string(kind)).Int(n)
		}
	}
	byKind.End()
	summary.End()

	tests := obj.Name("tests").Array()
	for _, t := range results.Tests {
		id := t.TestID.String()
		if len(t.TestID.Path) == 0 || groups[id] {
			continue
		}
		to := tests.Object()
		to.Name("id").String(id)
		switch {
		case t.Skipped:
			to.Name("outcome").String("skipped")
		case len(t.Errors) > 0:
			to.Name("outcome").String("failed")
		default:
			to.Name("outcome").String("passed")
		}
		to.Name("durationMs").Int(int(t.Duration.Milliseconds()))
		if len(t.Errors) > 0 {
			failures := to.Name("failures").Array()
			for _, f := range t.Errors {
				fo := failures.Object()
				fo.Name("kind").String(string(f.Kind))
				fo.Name("message").String(f.Message)
				fo.End()
			}
			failures.End()
			if len(t.Output) > 0 {
				capture := to.Name("capture").Array()
				for _, m := range t.Output {
					capture.String(m.Message)
				}
				capture.End()
			}
		}
		to.End()
	}
	tests.End()
	obj.End()

	if err := w.Error(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}
