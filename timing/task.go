package timing

import (
	"context"
	"time"
)

type opcode uint8

const (
	opPause opcode = iota
	opResume
	opReset
	opPeriod
)

type control struct {
	op     opcode
	at     time.Time
	gen    uint64
	period time.Duration
	level  int
}

// task is the coordinator's handle on a running timer goroutine.
type task struct {
	kind   Kind
	gen    uint64
	period time.Duration
	count  int
	cancel context.CancelFunc
	ctrl   chan control
	done   chan struct{}
}

// runner is the goroutine side of a task. Only run touches it.
type runner struct {
	kind      Kind
	clock     Clock
	out       chan<- Event
	ctrl      <-chan control
	timer     Timer
	gen       uint64
	period    time.Duration
	count     int
	oneShot   bool
	armed     bool
	paused    bool
	pausedAt  time.Time
	lastReset time.Time
}

func (r *runner) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	defer r.timer.Stop()
	for {
		// control messages win over a tick that is ready at the same time
		select {
		case <-ctx.Done():
			return
		case msg := <-r.ctrl:
			if !r.apply(ctx, msg) {
				return
			}
			continue
		default:
		}

		select {
		case <-ctx.Done():
			return
		case msg := <-r.ctrl:
			if !r.apply(ctx, msg) {
				return
			}
		case <-r.timer.C():
			if r.paused || !r.armed {
				continue
			}
			if !r.fire(ctx) {
				return
			}
		}
	}
}

func (r *runner) apply(ctx context.Context, msg control) bool {
	switch msg.op {
	case opPause:
		if r.paused {
			return true
		}
		r.paused = true
		r.pausedAt = msg.at
		r.timer.Stop()
	case opResume:
		if !r.paused {
			return true
		}
		r.paused = false
		r.gen = msg.gen
		if !r.armed {
			// A one-shot that fired just before the pause. Its event went
			// stale with the new generation, so it gets a fresh period.
			r.armed = true
			r.lastReset = msg.at
			r.timer.Reset(r.period)
			return true
		}
		elapsed := r.pausedAt.Sub(r.lastReset)
		wait := Remaining(r.period, elapsed)
		if wait < r.period {
			r.lastReset = msg.at.Add(-elapsed)
		} else {
			r.lastReset = msg.at
		}
		r.timer.Reset(wait)
	case opReset, opPeriod:
		r.gen = msg.gen
		if msg.op == opPeriod {
			r.period = msg.period
		}
		r.armed = true
		r.lastReset = msg.at
		if r.paused {
			r.pausedAt = msg.at
		} else {
			r.timer.Reset(r.period)
		}
		if msg.op == opPeriod {
			return r.emit(ctx, Event{Type: EventLevelChanged, Level: msg.level})
		}
	}
	return true
}

// fire emits the tick event and rearms the timer. It returns false when the
// task has nothing left to do.
func (r *runner) fire(ctx context.Context) bool {
	ev := Event{}
	switch r.kind {
	case Gravity:
		ev.Type = EventGravity
	case Lock:
		ev.Type = EventLockEnd
	case Blink:
		ev.Type = EventBlink
	case LineClear:
		ev.Type = EventLineClearFrame
	case Countdown:
		r.count--
		ev.Type = EventCountdownTick
		ev.Remaining = r.count
	}
	if !r.emit(ctx, ev) {
		return false
	}
	if r.kind == Countdown && r.count <= 0 {
		return false
	}
	if r.oneShot {
		r.armed = false
		return true
	}
	r.lastReset = r.clock.Now()
	r.timer.Reset(r.period)
	return true
}

func (r *runner) emit(ctx context.Context, ev Event) bool {
	ev.Timer = r.kind
	ev.Gen = r.gen
	select {
	case r.out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// Remaining is how long a timer with the given period still has to run when
// elapsed has passed since it was last reset. Overdue timers get a full
// period.
func Remaining(period, elapsed time.Duration) time.Duration {
	if elapsed < 0 || elapsed >= period {
		return period
	}
	return period - elapsed
}
