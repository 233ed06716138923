package supply

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"math/rand"
	"sync"

	"github.com/hatokurandom/hatokurandom/internal/cards"
)

// Generator defines the interface for producing supplies.
type Generator interface {
	Generate(ctx context.Context) (*Supply, error)
}

// RandomGenerator picks Size distinct kingdom cards from a pool.
type RandomGenerator struct {
	mu   sync.Mutex
	rng  *rand.Rand
	pool []int
}

// NewRandomGenerator draws from the kingdom cards of expansion, or from every
// expansion when it is empty.
func NewRandomGenerator(seed int64, expansion string) (*RandomGenerator, error) {
	var pool []int
	for _, c := range cards.KingdomCards(expansion) {
		pool = append(pool, c.CID)
	}
	if len(pool) < Size {
		return nil, errors.New("not enough kingdom cards for a supply")
	}
	return &RandomGenerator{
		rng:  rand.New(rand.NewSource(seed)),
		pool: pool,
	}, nil
}

func (g *RandomGenerator) Generate(ctx context.Context) (*Supply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	perm := g.rng.Perm(len(g.pool))
	g.mu.Unlock()

	cids := make([]int, Size)
	for i := range cids {
		cids[i] = g.pool[perm[i]]
	}
	return New(cids)
}

// PhraseGenerator derives a supply deterministically from a phrase: the same
// phrase always yields the same supply for the same pool. Useful for sharing
// a "supply of the day" by name.
type PhraseGenerator struct {
	expansion string
}

func NewPhraseGenerator(expansion string) *PhraseGenerator {
	return &PhraseGenerator{expansion: expansion}
}

// FromPhrase hashes phrase (SHA256) and seeds a RandomGenerator with the first
// 8 bytes of the digest.
func (g *PhraseGenerator) FromPhrase(ctx context.Context, phrase string) (*Supply, error) {
	hash := sha256.Sum256([]byte(phrase))
	seed := int64(binary.BigEndian.Uint64(hash[:8]))

	rg, err := NewRandomGenerator(seed, g.expansion)
	if err != nil {
		return nil, err
	}
	return rg.Generate(ctx)
}
