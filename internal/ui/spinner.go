package ui

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Mohsinsiddi/tokenforge/internal/state"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a loading line on w. It is a lightweight indicator for
// non-TUI commands.
type Spinner struct {
	w        io.Writer
	msg      string
	interval time.Duration

	started   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// NewSpinner creates a spinner with the given message.
func NewSpinner(w io.Writer, msg string) *Spinner {
	return &Spinner{
		w:        w,
		msg:      msg,
		interval: 80 * time.Millisecond,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the animation. Calling it again has no effect.
func (s *Spinner) Start() {
	s.startOnce.Do(func() {
		s.started.Store(true)
		go s.loop()
	})
}

func (s *Spinner) loop() {
	defer close(s.done)
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for i := 0; ; i++ {
		fmt.Fprintf(s.w, "\r%s  %s", StyleChain.Render(spinnerFrames[i%len(spinnerFrames)]), s.msg)
		select {
		case <-s.stop:
			fmt.Fprintf(s.w, "\r%-60s\r", "")
			return
		case <-t.C:
		}
	}
}

// Stop halts the spinner and waits for the line to clear. Safe to call more
// than once, and before Start.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.startOnce.Do(func() {}) // later Start calls become no-ops
		if s.started.Load() {
			<-s.done
		}
	})
}

// StopWithMsg halts the spinner and prints msg on its own line.
func (s *Spinner) StopWithMsg(msg string) {
	s.Stop()
	fmt.Fprintln(s.w, msg)
}

// WatchDeploy shows a spinner on w while the store reports a deploy in
// progress. The returned function detaches it.
func WatchDeploy(store *state.Store, w io.Writer, msg string) (detach func()) {
	var mu sync.Mutex
	var cur *Spinner
	unsubscribe := store.SubscribeFunc(state.PathDeployInProgress, func(newValue, _ any, _ state.Path) {
		busy, _ := newValue.(bool)
		mu.Lock()
		defer mu.Unlock()
		switch {
		case busy && cur == nil:
			cur = NewSpinner(w, msg)
			cur.Start()
		case !busy && cur != nil:
			cur.Stop()
			cur = nil
		}
	})
	return func() {
		unsubscribe()
		mu.Lock()
		defer mu.Unlock()
		if cur != nil {
			cur.Stop()
			cur = nil
		}
	}
}
