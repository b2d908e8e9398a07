package game

import (
	"fmt"
	"strings"
)

// LineClearState tracks a column-by-column wipe of completed rows.
type LineClearState struct {
	InProgress bool
	Rows       []int
	Cursor     int
}

// Board is the locked-cell grid. The falling piece is never stored here.
type Board struct {
	cells [][]Kind
	clear LineClearState
}

func NewBoard() *Board {
	b := &Board{}
	b.Reset()
	return b
}

func (b *Board) Reset() {
	b.cells = make([][]Kind, Rows)
	for y := range b.cells {
		b.cells[y] = make([]Kind, Cols)
	}
	b.clear = LineClearState{}
}

func (b *Board) Rows() int { return len(b.cells) }
func (b *Board) Cols() int { return Cols }

// Cell returns the kind locked at (x, y), or None when empty or out of range.
func (b *Board) Cell(x, y int) Kind {
	if y < 0 || y >= len(b.cells) || x < 0 || x >= Cols {
		return None
	}
	return b.cells[y][x]
}

func (b *Board) InBounds(ps PointSet) bool {
	for _, p := range ps {
		if p.X < 0 || p.X >= Cols || p.Y < 0 || p.Y >= len(b.cells) {
			return false
		}
	}
	return true
}

// IsCollision reports whether any point lands on a solid cell.
func (b *Board) IsCollision(ps PointSet) bool {
	for _, p := range ps {
		if b.Cell(p.X, p.Y).Solid() {
			return true
		}
	}
	return false
}

// IsCollisionIgnoring is IsCollision with the points in ignore skipped.
func (b *Board) IsCollisionIgnoring(ps, ignore PointSet) bool {
	for _, p := range ps {
		if ignore.Contains(p.X, p.Y) {
			continue
		}
		if b.Cell(p.X, p.Y).Solid() {
			return true
		}
	}
	return false
}

// Lock commits the piece and returns how many rows are now pending a clear.
func (b *Board) Lock(piece ActivePiece) int {
	for _, p := range piece.Points {
		if p.Y < 0 || p.Y >= len(b.cells) || p.X < 0 || p.X >= Cols {
			continue
		}
		b.cells[p.Y][p.X] = piece.Kind
	}
	b.clear.Rows = b.clear.Rows[:0]
	for y, row := range b.cells {
		if rowFull(row) {
			b.clear.Rows = append(b.clear.Rows, y)
		}
	}
	b.clear.Cursor = 0
	b.clear.InProgress = len(b.clear.Rows) > 0
	return len(b.clear.Rows)
}

func rowFull(row []Kind) bool {
	for _, cell := range row {
		if !cell.Solid() {
			return false
		}
	}
	return true
}

// AdvanceLineClear wipes one column of every pending row. It returns true on
// the call that finishes the wipe and compacts the board.
func (b *Board) AdvanceLineClear() bool {
	if !b.clear.InProgress {
		return false
	}
	for _, y := range b.clear.Rows {
		b.cells[y][b.clear.Cursor] = None
	}
	b.clear.Cursor++
	if b.clear.Cursor < Cols {
		return false
	}
	b.compact()
	b.clear = LineClearState{}
	return true
}

func (b *Board) compact() {
	removed := make(map[int]struct{}, len(b.clear.Rows))
	for _, y := range b.clear.Rows {
		removed[y] = struct{}{}
	}
	next := make([][]Kind, 0, len(b.cells))
	for range b.clear.Rows {
		next = append(next, make([]Kind, Cols))
	}
	for y, row := range b.cells {
		if _, ok := removed[y]; ok {
			continue
		}
		next = append(next, row)
	}
	b.cells = next
}

// LineClear returns a copy of the current line clear state.
func (b *Board) LineClear() LineClearState {
	state := b.clear
	state.Rows = append([]int(nil), b.clear.Rows...)
	return state
}

// Encode writes the grid row by row, one rune per cell.
func (b *Board) Encode() string {
	var sb strings.Builder
	sb.Grow(len(b.cells) * Cols)
	for _, row := range b.cells {
		for _, cell := range row {
			sb.WriteRune(cell.Rune())
		}
	}
	return sb.String()
}

func DecodeBoard(encoded string) (*Board, error) {
	if len(encoded) != Rows*Cols {
		return nil, fmt.Errorf("decode board: want %d cells, got %d", Rows*Cols, len(encoded))
	}
	b := NewBoard()
	for i, r := range encoded {
		b.cells[i/Cols][i%Cols] = KindFromRune(r)
	}
	return b, nil
}
