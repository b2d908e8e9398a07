package game

// Kind identifies a tetromino or a board cell marker.
type Kind uint8

const (
	None Kind = iota
	I
	J
	L
	O
	S
	T
	Z
	Ghost
)

// Kinds lists the seven playable pieces in catalog order.
var Kinds = [7]Kind{I, J, L, O, S, T, Z}

// Solid reports whether k is a real piece rather than an empty or ghost marker.
func (k Kind) Solid() bool {
	return k >= I && k <= Z
}

func (k Kind) String() string {
	return string(k.Rune())
}

// Rune is the one-character form used by saved boards. Ghost cells are never
// persisted and encode as empty.
func (k Kind) Rune() rune {
	switch k {
	case I:
		return 'I'
	case J:
		return 'J'
	case L:
		return 'L'
	case O:
		return 'O'
	case S:
		return 'S'
	case T:
		return 'T'
	case Z:
		return 'Z'
	default:
		return '-'
	}
}

func KindFromRune(r rune) Kind {
	switch r {
	case 'I':
		return I
	case 'J':
		return J
	case 'L':
		return L
	case 'O':
		return O
	case 'S':
		return S
	case 'T':
		return T
	case 'Z':
		return Z
	default:
		return None
	}
}

// Orientation is one of the four SRS rotation states.
type Orientation uint8

const (
	Spawn Orientation = iota
	Right
	Two
	Left
)

func (o Orientation) Next() Orientation {
	return (o + 1) % 4
}

func (o Orientation) Prev() Orientation {
	return (o + 3) % 4
}

func (o Orientation) String() string {
	switch o {
	case Spawn:
		return "0"
	case Right:
		return "R"
	case Two:
		return "2"
	default:
		return "L"
	}
}
