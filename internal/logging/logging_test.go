package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	cases := []struct {
		name      string
		debug     bool
		expectDbg bool
	}{
		{name: "info level hides debug entries", debug: false, expectDbg: false},
		{name: "debug level shows debug entries", debug: true, expectDbg: true},
	}

	for _, c := range cases {
		var buf bytes.Buffer

		logger := New(&buf, c.debug)
		logger.Debug("debug entry")
		logger.Info("info entry")
		_ = logger.Sync()

		out := buf.String()
		if got := strings.Contains(out, "debug entry"); got != c.expectDbg {
			t.Errorf("%v\n\tExpected debug entry present=%v but got %v instead", c.name, c.expectDbg, got)
		}
		if !strings.Contains(out, "info entry") {
			t.Errorf("%v\n\tExpected the info entry to be written:\n%v", c.name, out)
		}
		if !strings.Contains(out, "run_id") {
			t.Errorf("%v\n\tExpected entries to carry a run_id:\n%v", c.name, out)
		}
		if strings.Contains(out, "\x1b[") {
			t.Errorf("%v\n\tExpected no colour codes when not writing to a terminal", c.name)
		}
	}
}
