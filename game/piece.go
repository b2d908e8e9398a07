package game

// ActivePiece is the falling piece owned by the session.
type ActivePiece struct {
	Kind        Kind
	Points      PointSet
	Orientation Orientation
	Blink       bool
}

func NewActivePiece(kind Kind) ActivePiece {
	return ActivePiece{
		Kind:        kind,
		Points:      SpawnPoints(kind),
		Orientation: Spawn,
	}
}

func (p ActivePiece) Occupies(x, y int) bool {
	if !p.Kind.Solid() {
		return false
	}
	return p.Points.Contains(x, y)
}

// GhostPiece previews where the active piece would land.
type GhostPiece struct {
	Kind   Kind
	Points PointSet
	valid  bool
}

func (g GhostPiece) Occupies(x, y int) bool {
	return g.valid && g.Points.Contains(x, y)
}

// Valid reports whether the ghost belongs to a live piece.
func (g GhostPiece) Valid() bool {
	return g.valid
}

func newGhost(points PointSet) GhostPiece {
	return GhostPiece{Kind: Ghost, Points: points, valid: true}
}
