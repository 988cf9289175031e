package chronosync

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/pkg/errors"
)

// DefaultInterval is how long the Syncer sleeps between clock samples.
const DefaultInterval = 500 * time.Millisecond

// State is the position of a Syncer in its single-shot lifecycle.
type State int

const (
	Waiting State = iota // polling for second zero
	Fired                // command written
	Done                 // terminal
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Fired:
		return "fired"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Syncer waits for the next minute boundary and sends one sync command.
type Syncer struct {
	// Port receives the command. It is not closed by the Syncer.
	Port io.Writer
	// Clock defaults to SystemClock.
	Clock Clock
	// Interval defaults to DefaultInterval.
	Interval time.Duration
	// Trace receives the "currently:" and "setting chronograph to" lines.
	Trace  io.Writer
	Logger *slog.Logger

	state State
}

// State returns the current state.
func (s *Syncer) State() State {
	return s.state
}

// Run blocks until the clock reads second zero, writes the command for that
// hour and minute, and returns the time it fired at. A Syncer fires at most
// once; calling Run again after it finished is an error.
//
// The write is checked but never retried: a failed or short write is
// returned and the Syncer still ends in Done.
func (s *Syncer) Run(ctx context.Context) (time.Time, error) {
	if s.state != Waiting {
		return time.Time{}, errors.Errorf("syncer already %s", s.state)
	}

	clock := s.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	for {
		now := clock.Now()
		s.tracef("currently: %02d:%02d:%02d\n", now.Hour(), now.Minute(), now.Second())

		if now.Second() == 0 {
			return now, s.fire(now, logger)
		}

		select {
		case <-ctx.Done():
			return time.Time{}, ctx.Err()
		case <-clock.After(interval):
		}
	}
}

func (s *Syncer) fire(now time.Time, logger *slog.Logger) error {
	defer func() { s.state = Done }()

	cmd, err := Command(now.Hour(), now.Minute())
	if err != nil {
		return err
	}

	s.tracef("setting chronograph to %02d%02d00\n", now.Hour(), now.Minute())
	s.state = Fired

	n, err := s.Port.Write(cmd)
	if err != nil {
		return errors.Wrap(err, "failed to send sync command")
	}
	if n != len(cmd) {
		return errors.Wrapf(io.ErrShortWrite, "sent %d of %d bytes", n, len(cmd))
	}

	logger.Debug("chronograph synchronized", "time", now.Format("15:04:00"))
	return nil
}

func (s *Syncer) tracef(format string, args ...any) {
	if s.Trace != nil {
		fmt.Fprintf(s.Trace, format, args...)
	}
}
