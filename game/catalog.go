package game

const (
	Cols        = 10
	VisibleRows = 20
	BufferRows  = 5
	Rows        = VisibleRows + BufferRows

	spawnOffsetX = 3
	spawnOffsetY = BufferRows
)

// pieceRotations holds the canonical cells of each piece inside its local
// 4x4 box, indexed by [kind-1][orientation]. The point order inside a set is
// stable across orientations of the same piece.
var pieceRotations = [7][4]PointSet{
	// I
	{
		{{0, 1}, {1, 1}, {2, 1}, {3, 1}},
		{{2, 0}, {2, 1}, {2, 2}, {2, 3}},
		{{0, 2}, {1, 2}, {2, 2}, {3, 2}},
		{{1, 0}, {1, 1}, {1, 2}, {1, 3}},
	},
	// J
	{
		{{0, 0}, {0, 1}, {1, 1}, {2, 1}},
		{{2, 0}, {1, 0}, {1, 1}, {1, 2}},
		{{2, 2}, {2, 1}, {1, 1}, {0, 1}},
		{{0, 2}, {1, 2}, {1, 1}, {1, 0}},
	},
	// L
	{
		{{2, 0}, {0, 1}, {1, 1}, {2, 1}},
		{{2, 2}, {1, 0}, {1, 1}, {1, 2}},
		{{0, 2}, {2, 1}, {1, 1}, {0, 1}},
		{{0, 0}, {1, 2}, {1, 1}, {1, 0}},
	},
	// O
	{
		{{1, 0}, {2, 0}, {1, 1}, {2, 1}},
		{{1, 0}, {2, 0}, {1, 1}, {2, 1}},
		{{1, 0}, {2, 0}, {1, 1}, {2, 1}},
		{{1, 0}, {2, 0}, {1, 1}, {2, 1}},
	},
	// S
	{
		{{1, 0}, {2, 0}, {0, 1}, {1, 1}},
		{{2, 1}, {2, 2}, {1, 0}, {1, 1}},
		{{1, 2}, {0, 2}, {2, 1}, {1, 1}},
		{{0, 1}, {0, 0}, {1, 2}, {1, 1}},
	},
	// T
	{
		{{1, 0}, {0, 1}, {1, 1}, {2, 1}},
		{{2, 1}, {1, 0}, {1, 1}, {1, 2}},
		{{1, 2}, {2, 1}, {1, 1}, {0, 1}},
		{{0, 1}, {1, 2}, {1, 1}, {1, 0}},
	},
	// Z
	{
		{{0, 0}, {1, 0}, {1, 1}, {2, 1}},
		{{2, 0}, {2, 1}, {1, 1}, {1, 2}},
		{{2, 2}, {1, 2}, {1, 1}, {0, 1}},
		{{0, 2}, {0, 1}, {1, 1}, {1, 0}},
	},
}

// Shape returns the canonical, untranslated cells of kind in orientation o.
func Shape(kind Kind, o Orientation) PointSet {
	if !kind.Solid() {
		return PointSet{}
	}
	return pieceRotations[kind-1][o%4]
}

// SpawnPoints returns the cells of a freshly spawned piece on the main board.
func SpawnPoints(kind Kind) PointSet {
	return Shape(kind, Spawn).Translate(spawnOffsetX, spawnOffsetY)
}

type rotation struct {
	from Orientation
	to   Orientation
}

// Wall kick offsets in board coordinates, tried in order after the naive
// rotation fails.
var kicksJLSTZ = map[rotation][4]Point{
	{Spawn, Right}: {{-1, 0}, {-1, 1}, {0, -2}, {-1, -2}},
	{Right, Spawn}: {{1, 0}, {1, -1}, {0, 2}, {1, 2}},
	{Right, Two}:   {{1, 0}, {1, -1}, {0, 2}, {1, 2}},
	{Two, Right}:   {{-1, 0}, {-1, 1}, {0, -2}, {-1, -2}},
	{Two, Left}:    {{1, 0}, {1, 1}, {0, -2}, {1, -2}},
	{Left, Two}:    {{-1, 0}, {-1, -1}, {0, 2}, {-1, 2}},
	{Left, Spawn}:  {{-1, 0}, {-1, -1}, {0, 2}, {-1, 2}},
	{Spawn, Left}:  {{1, 0}, {1, 1}, {0, -2}, {1, -2}},
}

var kicksI = map[rotation][4]Point{
	{Spawn, Right}: {{-2, 0}, {1, 0}, {-2, -1}, {1, 2}},
	{Right, Spawn}: {{2, 0}, {-1, 0}, {2, 1}, {-1, -2}},
	{Right, Two}:   {{-1, 0}, {2, 0}, {-1, 2}, {2, -1}},
	{Two, Right}:   {{1, 0}, {-2, 0}, {1, -2}, {-2, 1}},
	{Two, Left}:    {{2, 0}, {-1, 0}, {2, 1}, {-1, -2}},
	{Left, Two}:    {{-2, 0}, {1, 0}, {-2, -1}, {1, 2}},
	{Left, Spawn}:  {{1, 0}, {-2, 0}, {1, -2}, {-2, 1}},
	{Spawn, Left}:  {{-1, 0}, {2, 0}, {-1, 2}, {2, -1}},
}

// Kicks returns the ordered wall kick offsets for rotating kind from one
// orientation to an adjacent one. O has none.
func Kicks(kind Kind, from, to Orientation) []Point {
	var table map[rotation][4]Point
	switch kind {
	case I:
		table = kicksI
	case J, L, S, T, Z:
		table = kicksJLSTZ
	default:
		return nil
	}
	offsets, ok := table[rotation{from, to}]
	if !ok {
		return nil
	}
	return offsets[:]
}
