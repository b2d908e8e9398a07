package game

type Point struct {
	X int
	Y int
}

// PointSet holds the four occupied cells of a piece.
type PointSet [4]Point

func (ps PointSet) Translate(dx, dy int) PointSet {
	for i := range ps {
		ps[i].X += dx
		ps[i].Y += dy
	}
	return ps
}

func (ps PointSet) Contains(x, y int) bool {
	for _, p := range ps {
		if p.X == x && p.Y == y {
			return true
		}
	}
	return false
}

// Bottom returns the point with the largest Y.
func (ps PointSet) Bottom() Point {
	bottom := ps[0]
	for _, p := range ps[1:] {
		if p.Y > bottom.Y {
			bottom = p
		}
	}
	return bottom
}

// Top returns the point with the smallest Y.
func (ps PointSet) Top() Point {
	top := ps[0]
	for _, p := range ps[1:] {
		if p.Y < top.Y {
			top = p
		}
	}
	return top
}

func (ps PointSet) touchesLeft() bool {
	for _, p := range ps {
		if p.X <= 0 {
			return true
		}
	}
	return false
}

func (ps PointSet) touchesRight(cols int) bool {
	for _, p := range ps {
		if p.X >= cols-1 {
			return true
		}
	}
	return false
}

func (ps PointSet) touchesBottom(rows int) bool {
	for _, p := range ps {
		if p.Y >= rows-1 {
			return true
		}
	}
	return false
}
