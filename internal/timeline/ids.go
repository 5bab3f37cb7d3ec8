package timeline

import (
	"math/rand/v2"
	"strconv"
	"sync"

	"github.com/tartampluch/go-timeline/internal/config"
)

// IDSource produces the random token used when a row has neither a
// unique id nor a headline. Tokens are not guaranteed to be unique.
type IDSource interface {
	Token() string
}

// globalIDSource draws from the process-wide math/rand/v2 generator,
// which is safe for concurrent use.
type globalIDSource struct{}

func (globalIDSource) Token() string {
	return token(rand.Uint64)
}

// DefaultIDSource returns the process-level random source.
func DefaultIDSource() IDSource {
	return globalIDSource{}
}

// SeededIDSource is a deterministic IDSource for tests and reproducible runs.
type SeededIDSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededIDSource returns a source whose token sequence depends only on seed.
func NewSeededIDSource(seed uint64) *SeededIDSource {
	return &SeededIDSource{rng: rand.New(rand.NewPCG(seed, seed))}
}

// Token returns the next token of the seeded sequence.
func (s *SeededIDSource) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return token(s.rng.Uint64)
}

// token renders a fixed-length base-36 string, one random draw per character.
func token(next func() uint64) string {
	buf := make([]byte, 0, config.RandomTokenLength)
	for len(buf) < config.RandomTokenLength {
		digit := next() % config.RandomTokenBase
		buf = strconv.AppendUint(buf, digit, config.RandomTokenBase)
	}
	return string(buf)
}
