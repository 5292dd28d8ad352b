//go:build !rp2040 && !rp2350

package diag

import "os"

// StdoutSink writes lines to standard output on host builds.
type StdoutSink struct{}

func NewStdoutSink() StdoutSink { return StdoutSink{} }

func (StdoutSink) WriteLine(line string) {
	_, _ = os.Stdout.WriteString(line + "\n")
}
