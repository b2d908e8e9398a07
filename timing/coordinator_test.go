package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

const wait = time.Second

func newTestCoordinator(t *testing.T) (*Coordinator, *FakeClock) {
	t.Helper()
	clock := NewFakeClock(epoch)
	c := NewCoordinator(clock, t.Logf)
	t.Cleanup(c.Close)
	return c, clock
}

func nextEvent(t *testing.T, c *Coordinator) Event {
	t.Helper()
	select {
	case ev := <-c.Events():
		return ev
	case <-time.After(wait):
		t.Fatal("timed out waiting for a timer event")
		return Event{}
	}
}

// collect gathers everything that arrives within d.
func collect(c *Coordinator, d time.Duration) []Event {
	var out []Event
	deadline := time.After(d)
	for {
		select {
		case ev := <-c.Events():
			out = append(out, ev)
		case <-deadline:
			return out
		}
	}
}

func TestGravityInterval(t *testing.T) {
	assert.Equal(t, time.Second, GravityInterval(1))
	assert.Equal(t, GravityInterval(1), GravityInterval(0))
	assert.Equal(t, GravityInterval(1), GravityInterval(-3))
	assert.Equal(t, GravityInterval(MaxGravityLevel), GravityInterval(MaxGravityLevel+5))
	for level := 2; level <= MaxGravityLevel; level++ {
		assert.Less(t, GravityInterval(level), GravityInterval(level-1), "level %d", level)
	}
	assert.InDelta(t, 793, GravityInterval(2).Milliseconds(), 1)
}

func TestRemaining(t *testing.T) {
	tests := []struct {
		period, elapsed, want time.Duration
	}{
		{time.Second, 300 * time.Millisecond, 700 * time.Millisecond},
		{time.Second, 0, time.Second},
		{time.Second, time.Second, time.Second},
		{time.Second, 3 * time.Second, time.Second},
		{time.Second, -time.Millisecond, time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Remaining(tt.period, tt.elapsed), "elapsed %s", tt.elapsed)
	}
}

func TestGravityTicksRepeatedly(t *testing.T) {
	c, clock := newTestCoordinator(t)
	period := GravityInterval(1)
	c.StartGravity(1)

	for i := 1; i <= 3; i++ {
		require.True(t, clock.WaitForDeadline(epoch.Add(time.Duration(i)*period), wait))
		clock.Advance(period)
		ev := nextEvent(t, c)
		assert.Equal(t, EventGravity, ev.Type)
		assert.True(t, c.Live(ev))
	}
}

func TestPauseResumeKeepsRemainingTime(t *testing.T) {
	c, clock := newTestCoordinator(t)
	period := GravityInterval(1)
	c.StartGravity(1)

	elapsed := 300 * time.Millisecond
	clock.Advance(elapsed)
	c.Pause()
	require.True(t, clock.WaitForTimers(0, wait), "pause stops the gravity timer")

	clock.Advance(5 * time.Second)
	assert.Empty(t, collect(c, 20*time.Millisecond))

	resumedAt := clock.Now()
	c.Resume()
	require.True(t, clock.WaitForDeadline(resumedAt.Add(period-elapsed), wait))

	clock.Advance(period - elapsed - time.Millisecond)
	assert.Empty(t, collect(c, 20*time.Millisecond))

	clock.Advance(time.Millisecond)
	ev := nextEvent(t, c)
	assert.Equal(t, EventGravity, ev.Type)
	assert.True(t, c.Live(ev))
}

func TestTimerStartedWhilePausedWaitsForResume(t *testing.T) {
	c, clock := newTestCoordinator(t)
	c.Pause()
	c.StartGravity(1)

	assert.Empty(t, clock.Deadlines())
	clock.Advance(2 * time.Second)

	c.Resume()
	assert.True(t, clock.WaitForDeadline(clock.Now().Add(GravityInterval(1)), wait))
}

func TestResetMakesPendingEventsStale(t *testing.T) {
	c, clock := newTestCoordinator(t)
	c.StartGravity(1)
	clock.Advance(GravityInterval(1))
	ev := nextEvent(t, c)
	require.True(t, c.Live(ev))

	c.ResetGravity()
	assert.False(t, c.Live(ev))

	c.CancelGravity()
	assert.False(t, c.Running(Gravity))
}

func TestGravityYieldsToLock(t *testing.T) {
	c, clock := newTestCoordinator(t)
	c.StartGravity(1)
	clock.Advance(GravityInterval(1))
	ev := nextEvent(t, c)

	c.ResetLockBudget()
	require.True(t, c.ArmLock())
	assert.False(t, c.Live(ev))

	c.CancelLock()
	assert.True(t, c.Live(ev))
}

func TestSetLevelRetunesGravity(t *testing.T) {
	c, clock := newTestCoordinator(t)
	c.StartGravity(1)

	c.SetLevel(6)
	ev := nextEvent(t, c)
	assert.Equal(t, EventLevelChanged, ev.Type)
	assert.Equal(t, 6, ev.Level)
	assert.True(t, c.Live(ev))
	assert.Equal(t, 6, c.Level())

	require.True(t, clock.WaitForDeadline(epoch.Add(GravityInterval(6)), wait))
	clock.Advance(GravityInterval(6))
	assert.Equal(t, EventGravity, nextEvent(t, c).Type)
}

func TestLockRefreshBudget(t *testing.T) {
	c, _ := newTestCoordinator(t)
	c.ResetLockBudget()

	assert.False(t, c.RefreshLock(), "nothing to refresh")
	assert.True(t, c.ArmLock())
	assert.False(t, c.ArmLock())
	assert.True(t, c.Running(Blink))

	for i := 1; i < MaxLockRefreshes; i++ {
		assert.True(t, c.RefreshLock(), "refresh %d", i)
	}
	assert.False(t, c.RefreshLock())
	assert.Zero(t, c.LockBudget())

	c.CancelLock()
	assert.False(t, c.LockArmed())
	assert.False(t, c.Running(Blink))
	assert.False(t, c.ArmLock(), "a spent budget cannot buy a fresh delay")
	assert.False(t, c.LockArmed())

	c.ResetLockBudget()
	assert.Equal(t, MaxLockRefreshes, c.LockBudget())
}

func TestRefreshPostponesLockEnd(t *testing.T) {
	c, clock := newTestCoordinator(t)
	c.ResetLockBudget()
	c.ArmLock()

	clock.Advance(400 * time.Millisecond)
	require.True(t, c.RefreshLock())
	require.True(t, clock.WaitForDeadline(epoch.Add(900*time.Millisecond), wait))

	clock.Advance(200 * time.Millisecond)
	for _, ev := range collect(c, 20*time.Millisecond) {
		assert.NotEqual(t, EventLockEnd, ev.Type)
	}

	clock.Advance(300 * time.Millisecond)
	var end Event
	assert.Eventually(t, func() bool {
		select {
		case ev := <-c.Events():
			if ev.Type == EventLockEnd {
				end = ev
				return true
			}
		default:
		}
		return false
	}, wait, time.Millisecond)
	assert.True(t, c.Live(end))
	assert.True(t, c.LockArmed(), "the lock stays armed until the loop cancels it")
}

func TestCountdownIgnoresPause(t *testing.T) {
	c, clock := newTestCoordinator(t)
	c.Pause()
	c.StartCountdown(3)

	for remaining := 2; remaining >= 0; remaining-- {
		require.True(t, clock.WaitForDeadline(clock.Now().Add(CountdownStep), wait))
		clock.Advance(CountdownStep)
		ev := nextEvent(t, c)
		assert.Equal(t, EventCountdownTick, ev.Type)
		assert.Equal(t, remaining, ev.Remaining)
		assert.True(t, c.Live(ev))
	}
	assert.True(t, clock.WaitForTimers(0, wait), "countdown stops after the last tick")
}

func TestCancelledTimerEventsAreStale(t *testing.T) {
	c, clock := newTestCoordinator(t)
	c.StartGravity(1)
	c.StartLineClear()

	c.CancelAll()
	clock.Advance(GravityInterval(1))

	for _, ev := range collect(c, 20*time.Millisecond) {
		assert.False(t, c.Live(ev), "%s", ev)
	}
	assert.False(t, c.Paused())
}

func TestCloseStopsEveryTimer(t *testing.T) {
	clock := NewFakeClock(epoch)
	c := NewCoordinator(clock, nil)
	c.StartGravity(3)
	c.ArmLock()
	c.StartCountdown(3)

	c.Close()

	assert.Empty(t, clock.Deadlines())
	assert.False(t, c.LockArmed())
}

func TestLineClearFramesUntilStopped(t *testing.T) {
	c, clock := newTestCoordinator(t)
	c.StartLineClear()

	for i := 0; i < 3; i++ {
		require.True(t, clock.WaitForDeadline(clock.Now().Add(FrameInterval), wait))
		clock.Advance(FrameInterval)
		ev := nextEvent(t, c)
		assert.Equal(t, EventLineClearFrame, ev.Type)
		assert.True(t, c.Live(ev))
	}

	c.StopLineClear()
	assert.False(t, c.Running(LineClear))
	assert.True(t, clock.WaitForTimers(0, wait))
}

func TestBlinkRunsWhileLockArmed(t *testing.T) {
	c, clock := newTestCoordinator(t)
	c.ResetLockBudget()
	require.True(t, c.ArmLock())

	require.True(t, clock.WaitForDeadline(epoch.Add(BlinkInterval), wait))
	clock.Advance(BlinkInterval)
	ev := nextEvent(t, c)
	assert.Equal(t, EventBlink, ev.Type)
	assert.True(t, c.Live(ev))

	c.CancelLock()
	assert.False(t, c.Live(ev))
}

func TestArmingSpendsLockBudget(t *testing.T) {
	c, _ := newTestCoordinator(t)
	c.ResetLockBudget()

	for i := 0; i < MaxLockRefreshes; i++ {
		require.True(t, c.ArmLock(), "arm %d", i+1)
		c.CancelLock()
	}
	assert.Zero(t, c.LockBudget())
	assert.False(t, c.ArmLock())
	assert.False(t, c.Running(Lock))
	assert.False(t, c.Running(Blink))
}

func nextOfType(t *testing.T, c *Coordinator, typ EventType) Event {
	t.Helper()
	deadline := time.After(wait)
	for {
		select {
		case ev := <-c.Events():
			if ev.Type == typ {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", typ)
			return Event{}
		}
	}
}

func TestFiredLockRearmsOnResume(t *testing.T) {
	c, clock := newTestCoordinator(t)
	c.ResetLockBudget()
	require.True(t, c.ArmLock())

	clock.Advance(LockDelay)
	pending := nextOfType(t, c, EventLockEnd)
	c.Pause()
	assert.False(t, c.Live(pending))

	clock.Advance(2 * time.Second)
	resumedAt := clock.Now()
	c.Resume()
	assert.False(t, c.Live(pending), "resume makes the fired lock end stale")
	assert.True(t, c.LockArmed())
	require.True(t, clock.WaitForDeadline(resumedAt.Add(LockDelay), wait), "the lock gets a fresh period")

	clock.Advance(LockDelay - time.Millisecond)
	for _, ev := range collect(c, 20*time.Millisecond) {
		assert.NotEqual(t, EventLockEnd, ev.Type)
	}
	clock.Advance(time.Millisecond)
	ev := nextOfType(t, c, EventLockEnd)
	assert.True(t, c.Live(ev))
	assert.Equal(t, MaxLockRefreshes-1, c.LockBudget(), "rearming after a pause is free")
}
