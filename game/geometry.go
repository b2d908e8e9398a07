package game

// Direction selects a walk or rotation.
type Direction uint8

const (
	MoveLeft Direction = iota
	MoveRight
	MoveDown
	RotateCW
	RotateCCW
)

// Walk returns the piece's cells shifted one step in dir, or false when the
// step would leave the board or hit a locked cell. The piece is not modified.
func Walk(piece ActivePiece, dir Direction, board *Board) (PointSet, bool) {
	points := piece.Points
	switch dir {
	case MoveLeft:
		if points.touchesLeft() {
			return points, false
		}
		points = points.Translate(-1, 0)
	case MoveRight:
		if points.touchesRight(board.Cols()) {
			return points, false
		}
		points = points.Translate(1, 0)
	case MoveDown:
		if points.touchesBottom(board.Rows()) {
			return points, false
		}
		points = points.Translate(0, 1)
	default:
		return points, false
	}
	if board.IsCollision(points) {
		return piece.Points, false
	}
	return points, true
}

// Rotate applies SRS rotation. The naive rotation keeps the piece's offset
// from its canonical shape; when that fails the kick offsets are tried in
// table order and the first legal one wins.
func Rotate(piece ActivePiece, dir Direction, board *Board) (PointSet, Orientation, bool) {
	if piece.Kind == O || !piece.Kind.Solid() {
		return piece.Points, piece.Orientation, false
	}
	var next Orientation
	switch dir {
	case RotateCW:
		next = piece.Orientation.Next()
	case RotateCCW:
		next = piece.Orientation.Prev()
	default:
		return piece.Points, piece.Orientation, false
	}

	current := Shape(piece.Kind, piece.Orientation)
	dx := piece.Points[0].X - current[0].X
	dy := piece.Points[0].Y - current[0].Y
	rotated := Shape(piece.Kind, next).Translate(dx, dy)

	if fits(rotated, board) {
		return rotated, next, true
	}
	for _, kick := range Kicks(piece.Kind, piece.Orientation, next) {
		kicked := rotated.Translate(kick.X, kick.Y)
		if fits(kicked, board) {
			return kicked, next, true
		}
	}
	return piece.Points, piece.Orientation, false
}

func fits(points PointSet, board *Board) bool {
	return board.InBounds(points) && !board.IsCollision(points)
}

// GhostPoints returns the lowest resting cells straight below the piece.
func GhostPoints(piece ActivePiece, board *Board) PointSet {
	falling := piece
	for {
		points, ok := walkIgnoring(falling, board, piece.Points)
		if !ok {
			return falling.Points
		}
		falling.Points = points
	}
}

func walkIgnoring(piece ActivePiece, board *Board, ignore PointSet) (PointSet, bool) {
	if piece.Points.touchesBottom(board.Rows()) {
		return piece.Points, false
	}
	points := piece.Points.Translate(0, 1)
	if board.IsCollisionIgnoring(points, ignore) {
		return piece.Points, false
	}
	return points, true
}

// DropDistance is how many rows separate the piece from its ghost.
func DropDistance(piece ActivePiece, ghost PointSet) int {
	return ghost.Bottom().Y - piece.Points.Bottom().Y
}
