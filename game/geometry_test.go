package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func dropped(kind Kind, rows int) ActivePiece {
	p := NewActivePiece(kind)
	p.Points = p.Points.Translate(0, rows)
	return p
}

func TestRotateFullTurnRestoresPiece(t *testing.T) {
	board := NewBoard()
	for _, kind := range Kinds {
		t.Run(kind.String(), func(t *testing.T) {
			start := dropped(kind, 8)
			p := start
			for i := 0; i < 4; i++ {
				points, o, ok := Rotate(p, RotateCW, board)
				if kind == O {
					assert.False(t, ok)
					return
				}
				assert.True(t, ok)
				p.Points, p.Orientation = points, o
			}
			assert.Equal(t, start.Points, p.Points)
			assert.Equal(t, Spawn, p.Orientation)
		})
	}
}

func TestRotateLeftUndoesRotateRight(t *testing.T) {
	board := NewBoard()
	for _, kind := range []Kind{I, J, L, S, T, Z} {
		start := dropped(kind, 8)
		points, o, ok := Rotate(start, RotateCW, board)
		assert.True(t, ok)
		back, o2, ok := Rotate(ActivePiece{Kind: kind, Points: points, Orientation: o}, RotateCCW, board)
		assert.True(t, ok)
		assert.Equal(t, start.Points, back, kind.String())
		assert.Equal(t, Spawn, o2)
	}
}

func TestRotateUsesFirstFittingKick(t *testing.T) {
	board := NewBoard()
	// T standing in orientation R, hugging the left wall
	piece := ActivePiece{
		Kind:        T,
		Orientation: Right,
		Points:      PointSet{{1, 11}, {0, 10}, {0, 11}, {0, 12}},
	}

	points, o, ok := Rotate(piece, RotateCW, board)

	assert.True(t, ok)
	assert.Equal(t, Two, o)
	assert.Equal(t, PointSet{{1, 12}, {2, 11}, {1, 11}, {0, 11}}, points)
}

func TestRotateFailsWhenEveryKickCollides(t *testing.T) {
	board := NewBoard()
	for y := range board.cells {
		for x := range board.cells[y] {
			board.cells[y][x] = Z
		}
	}
	piece := dropped(T, 8)
	for _, p := range piece.Points {
		board.cells[p.Y][p.X] = None
	}

	points, o, ok := Rotate(piece, RotateCW, board)

	assert.False(t, ok)
	assert.Equal(t, piece.Points, points)
	assert.Equal(t, Spawn, o)
}

func TestWalkStopsAtWalls(t *testing.T) {
	board := NewBoard()
	piece := NewActivePiece(I)

	for i := 0; i < 3; i++ {
		points, ok := Walk(piece, MoveRight, board)
		assert.True(t, ok)
		piece.Points = points
	}
	points, ok := Walk(piece, MoveRight, board)
	assert.False(t, ok)
	assert.Equal(t, piece.Points, points)
	assert.Equal(t, Cols-1, piece.Points[3].X)

	for i := 0; i < 6; i++ {
		points, ok := Walk(piece, MoveLeft, board)
		assert.True(t, ok)
		piece.Points = points
	}
	_, ok = Walk(piece, MoveLeft, board)
	assert.False(t, ok)
	assert.Equal(t, 0, piece.Points[0].X)
}

func TestWalkBlockedByLockedCell(t *testing.T) {
	board := NewBoard()
	piece := NewActivePiece(O)
	below := piece.Points.Bottom()
	board.cells[below.Y+1][below.X] = J

	points, ok := Walk(piece, MoveDown, board)

	assert.False(t, ok)
	assert.Equal(t, piece.Points, points)
}

func TestGhostRestsOnFloorAndStack(t *testing.T) {
	board := NewBoard()
	piece := NewActivePiece(I)

	ghost := GhostPoints(piece, board)
	assert.Equal(t, Rows-1, ghost.Bottom().Y)
	assert.Equal(t, Rows-1-piece.Points.Bottom().Y, DropDistance(piece, ghost))

	board.cells[15][4] = S
	ghost = GhostPoints(piece, board)
	assert.Equal(t, 14, ghost.Bottom().Y)
}

// scatteredBoard fills part of the lower field in a fixed pattern.
func scatteredBoard() *Board {
	board := NewBoard()
	for y := Rows / 2; y < Rows; y++ {
		for x := 0; x < Cols; x++ {
			if (x*7+y*3)%5 == 0 {
				board.cells[y][x] = Z
			}
		}
	}
	return board
}

func TestRotateAlwaysLandsOnFreeCells(t *testing.T) {
	boards := map[string]*Board{"empty": NewBoard(), "scattered": scatteredBoard()}
	for name, board := range boards {
		for _, kind := range Kinds {
			for o := Spawn; o <= Left; o++ {
				for dx := -3; dx < Cols; dx++ {
					for dy := -3; dy < Rows; dy++ {
						points := Shape(kind, o).Translate(dx, dy)
						if !board.InBounds(points) || board.IsCollision(points) {
							continue
						}
						piece := ActivePiece{Kind: kind, Points: points, Orientation: o}
						for _, dir := range []Direction{RotateCW, RotateCCW} {
							got, orientation, ok := Rotate(piece, dir, board)
							again, againOrientation, againOK := Rotate(piece, dir, board)
							assert.Equal(t, ok, againOK)
							assert.Equal(t, got, again)
							assert.Equal(t, orientation, againOrientation)
							if !ok {
								continue
							}
							assert.True(t, board.InBounds(got), "%s %s %s at %d,%d", name, kind, o, dx, dy)
							assert.False(t, board.IsCollision(got), "%s %s %s at %d,%d", name, kind, o, dx, dy)
							want := o.Next()
							if dir == RotateCCW {
								want = o.Prev()
							}
							assert.Equal(t, want, orientation)
						}
					}
				}
			}
		}
	}
}
