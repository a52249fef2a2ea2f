package password

import (
	"crypto/rand"
	"io"
	"math/big"
	"sync"

	"github.com/cockroachdb/errors"
)

// RandomSource supplies uniformly distributed integers. Generators consume it
// one bounded draw at a time, so a deterministic implementation can stand in
// for the system entropy source in tests.
type RandomSource interface {
	// Intn returns a uniformly distributed integer in [0, bound).
	Intn(bound int) (int, error)
}

type cryptoSource struct {
	r io.Reader
}

// NewCryptoSource returns a RandomSource backed by r. A nil reader uses
// crypto/rand.Reader. The returned source is safe for concurrent use as long
// as r is.
func NewCryptoSource(r io.Reader) RandomSource {
	if r == nil {
		r = rand.Reader
	}
	return cryptoSource{r: r}
}

func (s cryptoSource) Intn(bound int) (int, error) {
	if bound < 1 {
		return 0, errors.Wrapf(ErrRange, "bound %d", bound)
	}

	n, err := rand.Int(s.r, big.NewInt(int64(bound)))
	if err != nil {
		return 0, &entropyError{cause: errors.Wrap(err, "read random index")}
	}
	return int(n.Int64()), nil
}

// SequenceSource replays a fixed list of values. It is meant for tests that
// need to pin every draw the generator makes.
type SequenceSource struct {
	mu     sync.Mutex
	values []int
	pos    int
}

// NewSequenceSource returns a source that yields values in order.
func NewSequenceSource(values ...int) *SequenceSource {
	return &SequenceSource{values: values}
}

func (s *SequenceSource) Intn(bound int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bound < 1 {
		return 0, errors.Wrapf(ErrRange, "bound %d", bound)
	}
	if s.pos >= len(s.values) {
		return 0, &entropyError{cause: errors.Newf("sequence exhausted after %d draws", s.pos)}
	}

	v := s.values[s.pos]
	s.pos++
	if v < 0 || v >= bound {
		return 0, errors.Wrapf(ErrRange, "value %d outside [0, %d)", v, bound)
	}
	return v, nil
}

// Draws reports how many values have been consumed.
func (s *SequenceSource) Draws() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}
