// Package id provides the identifier generators injected into the engine.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Generator hands out unique identifiers for accounts and trades.
type Generator interface {
	New() string
}

// ULID generates time-sortable ULIDs. IDs generated within the same
// millisecond stay lexicographically increasing.
type ULID struct {
	mu   sync.Mutex
	mono io.Reader
	now  func() time.Time
}

func NewULID() *ULID {
	// Seed a PRNG from crypto/rand so ULID entropy is unpredictable.
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &ULID{
		mono: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0),
		now:  time.Now,
	}
}

func (g *ULID) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(g.now().UTC()), g.mono)
	if err != nil {
		// Only possible if entropy overflows within one millisecond.
		panic(err)
	}
	return id.String()
}

// UUID generates random (v4) UUIDs.
type UUID struct{}

func (UUID) New() string { return uuid.New().String() }

// Sequence is a deterministic generator for tests: prefix-1, prefix-2, ...
type Sequence struct {
	mu     sync.Mutex
	Prefix string
	n      int
}

func (s *Sequence) New() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%d", s.Prefix, s.n)
}

// ForScheme returns the generator named by a config id_scheme.
func ForScheme(scheme string) (Generator, error) {
	switch scheme {
	case "", "ulid":
		return NewULID(), nil
	case "uuid":
		return UUID{}, nil
	}
	return nil, fmt.Errorf("unknown id scheme %q", scheme)
}
