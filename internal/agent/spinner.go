package agent

import (
	"fmt"
	"io"
	"strings"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner animates a progress indicator on its own goroutine while a
// blocking call is pending. stop joins the goroutine and clears the
// line before returning.
type spinner struct {
	w       io.Writer
	msg     string
	done    chan struct{}
	stopped chan struct{}
}

func startSpinner(w io.Writer, msg string) *spinner {
	s := &spinner{
		w:       w,
		msg:     msg,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.spin()
	return s
}

func (s *spinner) spin() {
	defer close(s.stopped)
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()
	i := 0
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			frame := spinnerFrames[i%len(spinnerFrames)]
			fmt.Fprintf(s.w, "\r  %s %s…   ", frame, s.msg)
			i++
		}
	}
}

func (s *spinner) stop() {
	close(s.done)
	<-s.stopped
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", 60))
}

// withSpinner runs fn with a spinner active, guaranteeing the spinner
// is fully stopped before fn's result is returned, even on error. A
// nil writer disables the indicator.
func withSpinner[T any](w io.Writer, msg string, fn func() (T, error)) (T, error) {
	if w == nil {
		return fn()
	}
	s := startSpinner(w, msg)
	defer s.stop()
	return fn()
}
