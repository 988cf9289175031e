package chronosync

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock returns times in order, advancing on every After.
type fakeClock struct {
	times  []time.Time
	i      int
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time {
	return c.times[c.i]
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.sleeps = append(c.sleeps, d)
	if c.i < len(c.times)-1 {
		c.i++
	}
	ch := make(chan time.Time, 1)
	ch <- c.times[c.i]
	return ch
}

// fakePort records every write.
type fakePort struct {
	writes [][]byte
	n      int // if > 0, bytes accepted per write
	err    error
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.writes = append(p.writes, append([]byte(nil), b...))
	if p.err != nil {
		return 0, p.err
	}
	if p.n > 0 {
		return p.n, nil
	}
	return len(b), nil
}

func at(h, m, s, ms int) time.Time {
	return time.Date(2026, 10, 19, h, m, s, ms*int(time.Millisecond), time.Local)
}

func TestSyncer_FiresOnMinuteBoundary(t *testing.T) {
	clock := &fakeClock{times: []time.Time{
		at(14, 35, 59, 0),
		at(14, 35, 59, 500),
		at(14, 36, 0, 0),
		at(14, 36, 0, 500),
	}}
	port := &fakePort{}
	var trace bytes.Buffer

	s := &Syncer{Port: port, Clock: clock, Trace: &trace}
	require.Equal(t, Waiting, s.State())

	fired, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, at(14, 36, 0, 0), fired)
	require.Equal(t, Done, s.State())

	require.Equal(t, [][]byte{[]byte("\rATST143600\r")}, port.writes)
	require.Equal(t, []time.Duration{DefaultInterval, DefaultInterval}, clock.sleeps)
	require.Equal(t,
		"currently: 14:35:59\n"+
			"currently: 14:35:59\n"+
			"currently: 14:36:00\n"+
			"setting chronograph to 143600\n",
		trace.String())
}

func TestSyncer_FiresImmediatelyAtSecondZero(t *testing.T) {
	clock := &fakeClock{times: []time.Time{at(3, 7, 0, 250)}}
	port := &fakePort{}

	s := &Syncer{Port: port, Clock: clock}
	_, err := s.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, [][]byte{[]byte("\rATST030700\r")}, port.writes)
	require.Empty(t, clock.sleeps)
}

func TestSyncer_SendsExactlyOnce(t *testing.T) {
	times := make([]time.Time, 0, 120)
	for i := 1; i < 60; i++ {
		times = append(times, at(23, 59, i, 0))
	}
	times = append(times, at(0, 0, 0, 0), at(0, 0, 0, 500), at(0, 0, 1, 0))
	clock := &fakeClock{times: times}
	port := &fakePort{}

	s := &Syncer{Port: port, Clock: clock, Interval: time.Second}
	_, err := s.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, port.writes, 1)
	require.Equal(t, []byte("\rATST000000\r"), port.writes[0])
	require.Len(t, clock.sleeps, 59)
	require.Equal(t, time.Second, clock.sleeps[0])

	_, err = s.Run(context.Background())
	require.Error(t, err)
	require.Len(t, port.writes, 1)
}

func TestSyncer_WriteError(t *testing.T) {
	boom := errors.New("boom")
	clock := &fakeClock{times: []time.Time{at(9, 0, 0, 0)}}
	port := &fakePort{err: boom}

	s := &Syncer{Port: port, Clock: clock}
	_, err := s.Run(context.Background())
	require.ErrorIs(t, err, boom)
	require.Len(t, port.writes, 1)
	require.Equal(t, Done, s.State())
}

func TestSyncer_ShortWrite(t *testing.T) {
	clock := &fakeClock{times: []time.Time{at(9, 0, 0, 0)}}
	port := &fakePort{n: 4}

	s := &Syncer{Port: port, Clock: clock}
	_, err := s.Run(context.Background())
	require.ErrorIs(t, err, io.ErrShortWrite)
	require.Len(t, port.writes, 1)
}

func TestSyncer_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	port := &fakePort{}
	s := &Syncer{Port: port, Clock: blockingClock{at(9, 0, 30, 0)}}
	_, err := s.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, port.writes)
	require.Equal(t, Waiting, s.State())
}

type blockingClock struct{ now time.Time }

func (c blockingClock) Now() time.Time                     { return c.now }
func (blockingClock) After(time.Duration) <-chan time.Time { return nil }

func TestState_String(t *testing.T) {
	require.Equal(t, "waiting", Waiting.String())
	require.Equal(t, "fired", Fired.String())
	require.Equal(t, "done", Done.String())
	require.Equal(t, "State(7)", State(7).String())
}
