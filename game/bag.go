package game

import (
	"fmt"
	"math/rand"
)

// Bag deals the seven pieces in shuffled batches. A batch never starts with
// the piece that ended the previous one.
type Bag struct {
	kinds    [7]Kind
	cursor   int
	last     Kind
	seed     int64
	shuffles int
	rng      *rand.Rand
}

func NewBag(seed int64) *Bag {
	return &Bag{
		kinds:  Kinds,
		cursor: len(Kinds),
		seed:   seed,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

func (b *Bag) shuffle() {
	b.cursor = 0
	b.shuffles++
	b.rng.Shuffle(len(b.kinds), func(i, j int) {
		b.kinds[i], b.kinds[j] = b.kinds[j], b.kinds[i]
	})
	if b.last.Solid() && b.kinds[0] == b.last {
		b.kinds[0], b.kinds[1] = b.kinds[1], b.kinds[0]
	}
}

func (b *Bag) Next() Kind {
	if b.cursor >= len(b.kinds) {
		b.shuffle()
	}
	kind := b.kinds[b.cursor]
	b.cursor++
	b.last = kind
	return kind
}

// Reset discards the current batch; the next call to Next reshuffles.
func (b *Bag) Reset() {
	b.kinds = Kinds
	b.cursor = len(b.kinds)
	b.last = None
}

// BagState is the persisted form of a bag.
type BagState struct {
	Kinds    string `json:"kinds"`
	Cursor   int    `json:"cursor"`
	Last     string `json:"last"`
	Seed     int64  `json:"seed"`
	Shuffles int    `json:"shuffles"`
}

func (b *Bag) State() BagState {
	runes := make([]rune, len(b.kinds))
	for i, k := range b.kinds {
		runes[i] = k.Rune()
	}
	return BagState{
		Kinds:    string(runes),
		Cursor:   b.cursor,
		Last:     string(b.last.Rune()),
		Seed:     b.seed,
		Shuffles: b.shuffles,
	}
}

// Restore loads a saved permutation and winds a fresh random source forward
// past every shuffle already dealt, so later batches match the saved game.
func (b *Bag) Restore(state BagState) error {
	if len(state.Kinds) != len(b.kinds) {
		return fmt.Errorf("restore bag: want %d kinds, got %d", len(b.kinds), len(state.Kinds))
	}
	seen := make(map[Kind]bool, len(b.kinds))
	var kinds [7]Kind
	for i, r := range state.Kinds {
		kind := KindFromRune(r)
		if !kind.Solid() || seen[kind] {
			return fmt.Errorf("restore bag: invalid permutation %q", state.Kinds)
		}
		seen[kind] = true
		kinds[i] = kind
	}
	if state.Cursor < 0 || state.Cursor > len(kinds) {
		return fmt.Errorf("restore bag: cursor %d out of range", state.Cursor)
	}
	if state.Shuffles < 0 {
		return fmt.Errorf("restore bag: shuffle count %d is negative", state.Shuffles)
	}
	rng := rand.New(rand.NewSource(state.Seed))
	scratch := Kinds
	for n := 0; n < state.Shuffles; n++ {
		rng.Shuffle(len(scratch), func(i, j int) {
			scratch[i], scratch[j] = scratch[j], scratch[i]
		})
	}
	b.seed = state.Seed
	b.shuffles = state.Shuffles
	b.rng = rng
	b.kinds = kinds
	b.cursor = state.Cursor
	b.last = None
	for _, r := range state.Last {
		b.last = KindFromRune(r)
	}
	return nil
}
