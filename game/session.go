package game

import (
	"fmt"

	"github.com/shixinhuang99/sxtetris/timing"
)

// CountdownSeconds is the countdown shown before play continues after a
// pause or a restored session.
const CountdownSeconds = 3

// Logf receives debug output from the session. main points it at the
// debug log.
var Logf = func(format string, args ...any) {}

type Phase uint8

const (
	Idle Phase = iota
	Playing
	Paused
	Countdown
	Clearing
	Over
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Countdown:
		return "countdown"
	case Clearing:
		return "clearing"
	case Over:
		return "over"
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// Input is an abstract player action. Key decoding happens elsewhere.
type Input uint8

const (
	InputLeft Input = iota
	InputRight
	InputSoftDrop
	InputHardDrop
	InputRotateRight
	InputRotateLeft
	InputPause
	InputFocusLost
	InputConfirm
	InputBack
)

// Feedback reports what a call to Handle or HandleTimer did, so the UI can
// play sounds.
type Feedback uint16

const (
	FeedbackMove Feedback = 1 << iota
	FeedbackRotate
	FeedbackSoftDrop
	FeedbackHardDrop
	FeedbackLock
	FeedbackClear
	FeedbackLevelUp
	FeedbackPause
	FeedbackTick
	FeedbackResume
	FeedbackGameOver
)

func (f Feedback) Has(flag Feedback) bool {
	return f&flag != 0
}

// Timers is the part of the timing coordinator the session drives.
type Timers interface {
	StartGravity(level int)
	ResetGravity()
	CancelGravity()
	SetLevel(level int)
	ArmLock() bool
	RefreshLock() bool
	CancelLock()
	LockArmed() bool
	ResetLockBudget()
	StartLineClear()
	StopLineClear()
	StartCountdown(n int)
	CancelCountdown()
	Pause()
	Resume()
	CancelAll()
	Live(ev timing.Event) bool
}

var _ Timers = (*timing.Coordinator)(nil)

// Session is the game loop state. It is the only writer of the board, the
// bag, the pieces and the stats.
type Session struct {
	timers      Timers
	board       *Board
	bag         *Bag
	active      ActivePiece
	ghost       GhostPiece
	next        Kind
	stats       Stats
	phase       Phase
	resumeTo    Phase
	countdown   int
	lastCleared int
}

func NewSession(timers Timers, seed int64) *Session {
	return &Session{
		timers: timers,
		board:  NewBoard(),
		bag:    NewBag(seed),
		stats:  NewStats(),
	}
}

// NewGame tears down any running game and spawns the first piece.
func (s *Session) NewGame() Feedback {
	s.timers.CancelAll()
	s.board.Reset()
	s.bag.Reset()
	s.stats = NewStats()
	s.countdown = 0
	s.lastCleared = 0
	s.next = s.bag.Next()
	s.phase = Playing
	s.timers.StartGravity(s.stats.Level)
	Logf("new game")
	return s.spawn()
}

// End stops the timers without touching the board.
func (s *Session) End() {
	s.timers.CancelAll()
	s.phase = Idle
}

func (s *Session) Board() *Board       { return s.board }
func (s *Session) Active() ActivePiece { return s.active }
func (s *Session) Ghost() GhostPiece   { return s.ghost }
func (s *Session) Next() Kind          { return s.next }
func (s *Session) Stats() Stats        { return s.stats }
func (s *Session) Phase() Phase        { return s.phase }
func (s *Session) Countdown() int      { return s.countdown }
func (s *Session) LastCleared() int    { return s.lastCleared }

// InProgress reports whether there is a game worth saving or resuming.
func (s *Session) InProgress() bool {
	switch s.phase {
	case Playing, Paused, Countdown, Clearing:
		return true
	}
	return false
}

func (s *Session) Handle(in Input) Feedback {
	switch in {
	case InputPause:
		return s.togglePause()
	case InputFocusLost, InputBack:
		switch s.phase {
		case Playing, Clearing:
			return s.pause()
		case Countdown:
			return s.togglePause()
		}
		return 0
	case InputConfirm:
		return 0
	}

	if s.phase != Playing {
		return 0
	}
	switch in {
	case InputLeft:
		return s.walk(MoveLeft, FeedbackMove)
	case InputRight:
		return s.walk(MoveRight, FeedbackMove)
	case InputSoftDrop:
		return s.walk(MoveDown, FeedbackSoftDrop)
	case InputHardDrop:
		return s.hardDrop()
	case InputRotateRight:
		return s.rotate(RotateCW)
	case InputRotateLeft:
		return s.rotate(RotateCCW)
	}
	return 0
}

func (s *Session) HandleTimer(ev timing.Event) Feedback {
	if !s.timers.Live(ev) {
		return 0
	}
	switch ev.Type {
	case timing.EventGravity:
		if s.phase == Playing {
			return s.walk(MoveDown, 0)
		}
	case timing.EventLockEnd:
		if s.phase != Playing || !s.timers.LockArmed() {
			return 0
		}
		if !s.resting() {
			s.cancelLock()
			return 0
		}
		return s.commit()
	case timing.EventBlink:
		if s.phase == Playing && s.timers.LockArmed() {
			s.active.Blink = !s.active.Blink
		}
	case timing.EventLineClearFrame:
		if s.phase != Clearing {
			return 0
		}
		if s.board.AdvanceLineClear() {
			s.timers.StopLineClear()
			s.phase = Playing
			return s.spawn()
		}
	case timing.EventCountdownTick:
		if s.phase != Countdown {
			return 0
		}
		s.countdown = ev.Remaining
		if ev.Remaining > 0 {
			return FeedbackTick
		}
		s.timers.CancelCountdown()
		s.phase = s.resumeTo
		s.timers.Resume()
		Logf("resumed into %s", s.phase)
		return FeedbackResume
	case timing.EventLevelChanged:
		Logf("gravity retuned for level %d", ev.Level)
	}
	return 0
}

func (s *Session) pause() Feedback {
	s.resumeTo = s.phase
	s.phase = Paused
	s.timers.Pause()
	return FeedbackPause
}

func (s *Session) togglePause() Feedback {
	switch s.phase {
	case Playing, Clearing:
		return s.pause()
	case Paused:
		s.phase = Countdown
		s.countdown = CountdownSeconds
		s.timers.StartCountdown(CountdownSeconds)
		return FeedbackTick
	case Countdown:
		s.timers.CancelCountdown()
		s.countdown = 0
		s.phase = Paused
		return FeedbackPause
	}
	return 0
}

func (s *Session) resting() bool {
	return s.ghost.Valid() && s.active.Points == s.ghost.Points
}

func (s *Session) refreshGhost() {
	s.ghost = newGhost(GhostPoints(s.active, s.board))
}

// walk moves the piece one cell and reports fb on success. Every cell gained
// downwards scores a point.
func (s *Session) walk(dir Direction, fb Feedback) Feedback {
	points, ok := Walk(s.active, dir, s.board)
	if !ok {
		return s.blocked()
	}
	s.active.Points = points
	if dir == MoveDown {
		s.stats.Score++
	}
	return fb | s.moved()
}

func (s *Session) rotate(dir Direction) Feedback {
	points, orientation, ok := Rotate(s.active, dir, s.board)
	if !ok {
		return s.blocked()
	}
	s.active.Points = points
	s.active.Orientation = orientation
	return FeedbackRotate | s.moved()
}

// moved keeps the lock delay in step with a successful move.
func (s *Session) moved() Feedback {
	s.refreshGhost()
	switch {
	case s.resting() && s.timers.LockArmed():
		s.timers.RefreshLock()
	case s.resting():
		return s.armLock()
	case s.timers.LockArmed():
		s.cancelLock()
	}
	return 0
}

func (s *Session) blocked() Feedback {
	if s.resting() && !s.timers.LockArmed() {
		return s.armLock()
	}
	return 0
}

// armLock starts the lock delay. A piece that has spent its whole budget on
// earlier lock delays locks straight away.
func (s *Session) armLock() Feedback {
	if s.timers.ArmLock() {
		return 0
	}
	Logf("lock budget spent, locking %s", s.active.Kind)
	return s.commit()
}

func (s *Session) cancelLock() {
	s.timers.CancelLock()
	s.active.Blink = false
}

func (s *Session) hardDrop() Feedback {
	distance := DropDistance(s.active, s.ghost.Points)
	s.active.Points = s.ghost.Points
	s.stats.Score += 2 * distance
	return FeedbackHardDrop | s.commit()
}

func (s *Session) commit() Feedback {
	s.cancelLock()
	if hidden(s.active.Points) {
		return s.gameOver()
	}
	level := s.stats.Level
	cleared := s.board.Lock(s.active)
	s.stats.Update(cleared)
	s.lastCleared = cleared
	s.active = ActivePiece{}
	s.ghost = GhostPiece{}

	fb := FeedbackLock
	if s.stats.Level != level {
		s.timers.SetLevel(s.stats.Level)
		fb |= FeedbackLevelUp
	}
	if cleared > 0 {
		s.phase = Clearing
		s.timers.StartLineClear()
		return fb | FeedbackClear
	}
	return fb | s.spawn()
}

// hidden reports whether every cell is above the visible field.
func hidden(points PointSet) bool {
	for _, p := range points {
		if p.Y >= BufferRows {
			return false
		}
	}
	return true
}

func (s *Session) spawn() Feedback {
	kind := s.next
	s.next = s.bag.Next()
	s.active = NewActivePiece(kind)
	if s.board.IsCollision(s.active.Points) {
		return s.gameOver()
	}
	s.refreshGhost()
	s.timers.ResetLockBudget()
	s.timers.ResetGravity()
	return 0
}

func (s *Session) gameOver() Feedback {
	s.timers.CancelAll()
	s.phase = Over
	s.ghost = GhostPiece{}
	Logf("game over score=%d lines=%d level=%d", s.stats.Score, s.stats.Lines, s.stats.Level)
	return FeedbackGameOver
}

// PieceState is the persisted form of the falling piece.
type PieceState struct {
	Kind        string    `json:"kind"`
	Points      [4][2]int `json:"points"`
	Orientation int       `json:"orientation"`
}

// Snapshot holds everything needed to resume a game.
type Snapshot struct {
	Board  string     `json:"board"`
	Bag    BagState   `json:"bag"`
	Active PieceState `json:"active"`
	Next   string     `json:"next"`
	Stats  Stats      `json:"stats"`
}

// Snapshot captures the game. It returns false when no piece is falling,
// which is the case mid line clear and after game over.
func (s *Session) Snapshot() (Snapshot, bool) {
	if !s.InProgress() || !s.active.Kind.Solid() {
		return Snapshot{}, false
	}
	var points [4][2]int
	for i, p := range s.active.Points {
		points[i] = [2]int{p.X, p.Y}
	}
	return Snapshot{
		Board: s.board.Encode(),
		Bag:   s.bag.State(),
		Active: PieceState{
			Kind:        string(s.active.Kind.Rune()),
			Points:      points,
			Orientation: int(s.active.Orientation),
		},
		Next:  string(s.next.Rune()),
		Stats: s.stats,
	}, true
}

// Restore loads a snapshot and starts the resume countdown. On error the
// session is left untouched.
func (s *Session) Restore(snap Snapshot) error {
	board, err := DecodeBoard(snap.Board)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	kind, err := kindFromString(snap.Active.Kind)
	if err != nil {
		return fmt.Errorf("restore session: active piece: %w", err)
	}
	next, err := kindFromString(snap.Next)
	if err != nil {
		return fmt.Errorf("restore session: next piece: %w", err)
	}
	if snap.Active.Orientation < int(Spawn) || snap.Active.Orientation > int(Left) {
		return fmt.Errorf("restore session: orientation %d out of range", snap.Active.Orientation)
	}
	var points PointSet
	for i, p := range snap.Active.Points {
		points[i] = Point{X: p[0], Y: p[1]}
	}
	if !board.InBounds(points) || board.IsCollision(points) {
		return fmt.Errorf("restore session: active piece does not fit the board")
	}
	if snap.Stats.Level < 1 || snap.Stats.Lines < 0 || snap.Stats.Score < 0 {
		return fmt.Errorf("restore session: invalid stats %+v", snap.Stats)
	}
	bag := NewBag(0)
	*bag = *s.bag
	if err := bag.Restore(snap.Bag); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	s.timers.CancelAll()
	s.board = board
	s.bag = bag
	s.active = ActivePiece{Kind: kind, Points: points, Orientation: Orientation(snap.Active.Orientation)}
	s.next = next
	s.stats = snap.Stats
	s.lastCleared = 0
	s.refreshGhost()

	s.timers.Pause()
	s.timers.ResetLockBudget()
	s.timers.StartGravity(s.stats.Level)
	s.phase = Countdown
	s.resumeTo = Playing
	s.countdown = CountdownSeconds
	s.timers.StartCountdown(CountdownSeconds)
	Logf("restored session score=%d level=%d", s.stats.Score, s.stats.Level)
	return nil
}

func kindFromString(str string) (Kind, error) {
	runes := []rune(str)
	if len(runes) != 1 {
		return None, fmt.Errorf("invalid kind %q", str)
	}
	kind := KindFromRune(runes[0])
	if !kind.Solid() {
		return None, fmt.Errorf("invalid kind %q", str)
	}
	return kind, nil
}
