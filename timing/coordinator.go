package timing

import (
	"context"
	"math"
	"time"
)

const (
	LockDelay        = 500 * time.Millisecond
	MaxLockRefreshes = 15
	BlinkInterval    = 150 * time.Millisecond
	FrameInterval    = 30 * time.Millisecond
	CountdownStep    = time.Second
	MaxGravityLevel  = 20

	eventBuffer   = 64
	controlBuffer = 8
)

// GravityInterval is the time between gravity drops at the given level.
// Levels outside [1, MaxGravityLevel] are clamped.
func GravityInterval(level int) time.Duration {
	if level < 1 {
		level = 1
	}
	if level > MaxGravityLevel {
		level = MaxGravityLevel
	}
	n := float64(level - 1)
	seconds := math.Pow(0.8-n*0.007, n)
	return time.Duration(seconds * float64(time.Second))
}

// Coordinator supervises the game timers. Each running timer is a goroutine
// keyed by its Kind; every tick arrives on Events.
//
// A Coordinator is owned by the game loop. Its methods are not safe for
// concurrent use.
type Coordinator struct {
	clock  Clock
	ctx    context.Context
	cancel context.CancelFunc
	events chan Event
	tasks  map[Kind]*task
	gen    uint64
	level  int
	budget int
	paused bool
	logf   func(format string, args ...any)
}

func NewCoordinator(clock Clock, logf func(format string, args ...any)) *Coordinator {
	if clock == nil {
		clock = RealClock()
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		clock:  clock,
		ctx:    ctx,
		cancel: cancel,
		events: make(chan Event, eventBuffer),
		tasks:  make(map[Kind]*task),
		level:  1,
		budget: MaxLockRefreshes,
		logf:   logf,
	}
}

func (c *Coordinator) Events() <-chan Event {
	return c.events
}

// Live reports whether ev should still be acted on. Events from a timer that
// has since been cancelled, reset or resumed are stale, pausable timers are
// silent while paused, and gravity yields to an armed lock.
func (c *Coordinator) Live(ev Event) bool {
	t, ok := c.tasks[ev.Timer]
	if !ok || t.gen != ev.Gen {
		return false
	}
	if c.paused && ev.Timer.pausable() {
		return false
	}
	if ev.Type == EventGravity && c.LockArmed() {
		return false
	}
	return true
}

func (c *Coordinator) start(kind Kind, period time.Duration, count int) {
	c.stop(kind)
	c.gen++
	ctx, cancel := context.WithCancel(c.ctx)
	now := c.clock.Now()
	t := &task{
		kind:   kind,
		gen:    c.gen,
		period: period,
		count:  count,
		cancel: cancel,
		ctrl:   make(chan control, controlBuffer),
		done:   make(chan struct{}),
	}
	r := &runner{
		kind:      kind,
		clock:     c.clock,
		out:       c.events,
		ctrl:      t.ctrl,
		timer:     c.clock.NewTimer(period),
		gen:       t.gen,
		period:    period,
		count:     count,
		oneShot:   kind == Lock,
		armed:     true,
		lastReset: now,
	}
	if c.paused && kind.pausable() {
		r.paused = true
		r.pausedAt = now
		r.timer.Stop()
	}
	c.tasks[kind] = t
	c.logf("timer %s start gen=%d period=%s", kind, t.gen, period)
	go r.run(ctx, t.done)
}

func (c *Coordinator) stop(kind Kind) {
	t, ok := c.tasks[kind]
	if !ok {
		return
	}
	t.cancel()
	delete(c.tasks, kind)
	c.logf("timer %s stop gen=%d", kind, t.gen)
}

func (c *Coordinator) deliver(t *task, msg control) {
	if msg.gen != 0 {
		t.gen = msg.gen
	}
	select {
	case t.ctrl <- msg:
	case <-t.done:
	}
}

func (c *Coordinator) restart(kind Kind) bool {
	t, ok := c.tasks[kind]
	if !ok {
		return false
	}
	c.gen++
	c.deliver(t, control{op: opReset, at: c.clock.Now(), gen: c.gen})
	return true
}

func (c *Coordinator) StartGravity(level int) {
	c.level = level
	c.start(Gravity, GravityInterval(level), 0)
}

// ResetGravity restarts the gravity period from now, starting gravity if it
// is not running.
func (c *Coordinator) ResetGravity() {
	if !c.restart(Gravity) {
		c.start(Gravity, GravityInterval(c.level), 0)
	}
}

func (c *Coordinator) CancelGravity() {
	c.stop(Gravity)
}

// SetLevel retunes gravity. The gravity timer answers with a LevelChanged
// event.
func (c *Coordinator) SetLevel(level int) {
	c.level = level
	t, ok := c.tasks[Gravity]
	if !ok {
		return
	}
	c.gen++
	t.period = GravityInterval(level)
	c.deliver(t, control{
		op:     opPeriod,
		at:     c.clock.Now(),
		gen:    c.gen,
		period: t.period,
		level:  level,
	})
}

func (c *Coordinator) Level() int {
	return c.level
}

// ResetLockBudget restores the allowance shared by arming and refreshing the
// lock delay. Call it once per piece.
func (c *Coordinator) ResetLockBudget() {
	c.budget = MaxLockRefreshes
}

func (c *Coordinator) LockBudget() int {
	return c.budget
}

// ArmLock starts the lock delay and its blink, spending one unit of the
// budget. It returns false when the lock is already armed or the budget is
// gone; in the second case the piece should lock at once.
func (c *Coordinator) ArmLock() bool {
	if c.LockArmed() || c.budget <= 0 {
		return false
	}
	c.budget--
	c.start(Lock, LockDelay, 0)
	c.start(Blink, BlinkInterval, 0)
	return true
}

// RefreshLock restarts an armed lock delay while the budget lasts.
func (c *Coordinator) RefreshLock() bool {
	if !c.LockArmed() || c.budget <= 0 {
		return false
	}
	c.budget--
	return c.restart(Lock)
}

func (c *Coordinator) CancelLock() {
	c.stop(Lock)
	c.stop(Blink)
}

func (c *Coordinator) LockArmed() bool {
	_, ok := c.tasks[Lock]
	return ok
}

func (c *Coordinator) StartLineClear() {
	c.start(LineClear, FrameInterval, 0)
}

func (c *Coordinator) StopLineClear() {
	c.stop(LineClear)
}

// StartCountdown ticks once per second, n times. The countdown keeps running
// while the coordinator is paused.
func (c *Coordinator) StartCountdown(n int) {
	if n <= 0 {
		return
	}
	c.start(Countdown, CountdownStep, n)
}

func (c *Coordinator) CancelCountdown() {
	c.stop(Countdown)
}

// Pause freezes every pausable timer, remembering how far into its period
// each one was.
func (c *Coordinator) Pause() {
	if c.paused {
		return
	}
	c.paused = true
	at := c.clock.Now()
	for kind, t := range c.tasks {
		if kind.pausable() {
			c.deliver(t, control{op: opPause, at: at})
		}
	}
	c.logf("timers paused at %s", at.Format(time.StampMilli))
}

// Resume rearms each paused timer for the rest of its period.
func (c *Coordinator) Resume() {
	if !c.paused {
		return
	}
	c.paused = false
	at := c.clock.Now()
	for kind, t := range c.tasks {
		if kind.pausable() {
			c.gen++
			c.deliver(t, control{op: opResume, at: at, gen: c.gen})
		}
	}
	c.logf("timers resumed at %s", at.Format(time.StampMilli))
}

func (c *Coordinator) Paused() bool {
	return c.paused
}

// Running reports whether a timer of the given kind is in the table.
func (c *Coordinator) Running(kind Kind) bool {
	_, ok := c.tasks[kind]
	return ok
}

// CancelAll stops every timer and clears the paused flag.
func (c *Coordinator) CancelAll() {
	for kind := range c.tasks {
		c.stop(kind)
	}
	c.paused = false
}

// Close cancels every timer and waits for the goroutines to exit.
func (c *Coordinator) Close() {
	c.cancel()
	for kind, t := range c.tasks {
		<-t.done
		delete(c.tasks, kind)
	}
}
