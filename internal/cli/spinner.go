package cli

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

var spinnerFrames = [...]string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// Spinner animates a status line with the elapsed time while a render or a
// remote store call is in flight. It stops on Stop or when its context ends.
type Spinner struct {
	w       io.Writer
	message string
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	start   sync.Once
	stop    sync.Once
	width   int
}

func newSpinner(ctx context.Context, w io.Writer, message string) *Spinner {
	ctx, cancel := context.WithCancel(ctx)
	return &Spinner{w: w, message: message, ctx: ctx, cancel: cancel, done: make(chan struct{})}
}

// Start begins drawing. Calls after the first do nothing.
func (s *Spinner) Start() {
	s.start.Do(func() { go s.run(time.Now()) })
}

func (s *Spinner) run(began time.Time) {
	defer close(s.done)
	tick := time.NewTicker(spinnerInterval)
	defer tick.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-s.ctx.Done():
			fmt.Fprintf(s.w, "\r%*s\r", s.width, "")
			return
		case <-tick.C:
			elapsed := time.Since(began).Truncate(100 * time.Millisecond)
			line := fmt.Sprintf("%s %s %s",
				styleIconSpinner.Render(spinnerFrames[frame%len(spinnerFrames)]),
				s.message, StyleDim.Render(elapsed.String()))
			s.width = max(s.width, len(line))
			fmt.Fprint(s.w, "\r"+line)
		}
	}
}

// Stop clears the line and waits for the animation to exit. It may be called
// more than once, and without Start.
func (s *Spinner) Stop() {
	s.stop.Do(func() {
		s.cancel()
		s.start.Do(func() { close(s.done) })
		<-s.done
	})
}

// Canceled reports whether the spinner has been stopped or its context ended.
func (s *Spinner) Canceled() bool {
	return s.ctx.Err() != nil
}
