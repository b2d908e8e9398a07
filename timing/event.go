package timing

import "fmt"

// Kind names one of the timers a coordinator can run.
type Kind uint8

const (
	Gravity Kind = iota
	Lock
	Blink
	LineClear
	Countdown
)

func (k Kind) String() string {
	switch k {
	case Gravity:
		return "gravity"
	case Lock:
		return "lock"
	case Blink:
		return "blink"
	case LineClear:
		return "lineclear"
	case Countdown:
		return "countdown"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// pausable timers freeze while the coordinator is paused.
func (k Kind) pausable() bool {
	return k != Countdown
}

type EventType uint8

const (
	EventGravity EventType = iota
	EventLockEnd
	EventBlink
	EventLineClearFrame
	EventCountdownTick
	EventLevelChanged
)

func (t EventType) String() string {
	switch t {
	case EventGravity:
		return "Gravity"
	case EventLockEnd:
		return "LockEnd"
	case EventBlink:
		return "Blink"
	case EventLineClearFrame:
		return "LineClearFrame"
	case EventCountdownTick:
		return "CountdownTick"
	case EventLevelChanged:
		return "LevelChanged"
	}
	return fmt.Sprintf("event(%d)", uint8(t))
}

// Event is delivered on the coordinator channel. Gen identifies the run of
// the timer that produced it; see Coordinator.Live.
type Event struct {
	Type      EventType
	Timer     Kind
	Gen       uint64
	Remaining int
	Level     int
}

func (e Event) String() string {
	switch e.Type {
	case EventCountdownTick:
		return fmt.Sprintf("%s(%d)#%d", e.Type, e.Remaining, e.Gen)
	case EventLevelChanged:
		return fmt.Sprintf("%s(%d)#%d", e.Type, e.Level, e.Gen)
	}
	return fmt.Sprintf("%s#%d", e.Type, e.Gen)
}
