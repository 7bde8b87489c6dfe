package cli

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// Progress shows a spinner on w while a slow call runs. In quiet mode it is
// a no-op.
type Progress struct {
	s *spinner.Spinner
}

// StartProgress starts a spinner with the given message.
func StartProgress(w io.Writer, message string, quiet bool) *Progress {
	if quiet {
		return &Progress{}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + message
	s.Start()
	return &Progress{s: s}
}

// Stop halts the spinner and clears its line. Safe to call more than once.
func (p *Progress) Stop() {
	if p == nil || p.s == nil {
		return
	}
	p.s.Stop()
}
