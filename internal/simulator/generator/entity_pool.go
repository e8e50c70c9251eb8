package generator

import (
	"errors"
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
)

var ErrInvalidPoolSize = errors.New("entity pool size must be greater than 0")

// Identity is a synthetic customer reused across generated transactions
type Identity struct {
	Name          string
	AccountNumber string // 12 digits
	WalletID      string // WALLET followed by 4 digits
}

// EntityPool is a fixed set of identities built at construction time.
// It is never mutated afterwards, so Sample can be called from any goroutine.
type EntityPool struct {
	identities []Identity
	faker      *gofakeit.Faker
}

// NewEntityPool builds size independent identities
func NewEntityPool(size int, faker *gofakeit.Faker) (*EntityPool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPoolSize, size)
	}

	identities := make([]Identity, size)
	for i := range identities {
		identities[i] = Identity{
			Name:          faker.Name(),
			AccountNumber: faker.Numerify("############"),
			WalletID:      fmt.Sprintf("WALLET%d", faker.Number(1000, 9999)),
		}
	}

	return &EntityPool{identities: identities, faker: faker}, nil
}

// Sample returns one identity chosen uniformly at random, with replacement
func (p *EntityPool) Sample() Identity {
	return p.identities[p.faker.Number(0, len(p.identities)-1)]
}

// Size returns the number of identities in the pool
func (p *EntityPool) Size() int {
	return len(p.identities)
}

// Identities returns a copy of the pool contents
func (p *EntityPool) Identities() []Identity {
	out := make([]Identity, len(p.identities))
	copy(out, p.identities)
	return out
}
