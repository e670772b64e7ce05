package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRunIncrementsSequence(t *testing.T) {
	s := New(Options{Interval: 10 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var seqs []uint64
	err := s.Run(ctx, func(_ context.Context, seq uint64, _ time.Time) error {
		seqs = append(seqs, seq)
		if len(seqs) == 3 {
			cancel()
		}
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if len(seqs) < 3 {
		t.Fatalf("expected at least 3 ticks, got %d", len(seqs))
	}
	for i, seq := range seqs[:3] {
		if seq != uint64(i) {
			t.Fatalf("tick %d carried seq %d", i, seq)
		}
	}
}

func TestRunSurvivesTickFailure(t *testing.T) {
	s := New(Options{Interval: 10 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticks := 0
	err := s.Run(ctx, func(_ context.Context, _ uint64, _ time.Time) error {
		ticks++
		if ticks >= 2 {
			cancel()
			return nil
		}
		return errors.New("epoch blew up")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if ticks < 2 {
		t.Fatalf("loop stopped after a failed tick, got %d ticks", ticks)
	}
}

func TestRunHonorsStartupDelayCancel(t *testing.T) {
	s := New(Options{Interval: time.Hour, StartupDelay: time.Hour}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, func(context.Context, uint64, time.Time) error { return nil })
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler ignored cancellation during startup delay")
	}
}

func TestNewRejectsZeroInterval(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for zero interval")
		}
	}()
	New(Options{}, zerolog.Nop())
}
