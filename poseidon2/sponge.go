package poseidon2

import "github.com/eth2030/leansig/field"

// Capacity is the number of state lanes reserved by the sponge; the rate is
// the permutation width minus Capacity.
const Capacity = 8

// Sponge is an overwrite-free additive sponge over a Poseidon2 permutation,
// used for inputs that do not fit a single compression call (the message hash
// and leaf compression). Not safe for concurrent use.
type Sponge struct {
	perm  *Permutation
	state []field.Element
	buf   []field.Element
	rate  int
}

// NewSponge creates a sponge over the given permutation width.
func NewSponge(width int) *Sponge {
	p := NewPermutation(width)
	return &Sponge{
		perm:  p,
		state: make([]field.Element, width),
		rate:  width - Capacity,
	}
}

// Absorb adds elements into the sponge rate, permuting on each full block.
func (s *Sponge) Absorb(elems ...field.Element) {
	for _, e := range elems {
		s.buf = append(s.buf, e)
		if len(s.buf) == s.rate {
			s.absorbBlock()
		}
	}
}

func (s *Sponge) absorbBlock() {
	for i, e := range s.buf {
		s.state[i] = field.Add(s.state[i], e)
	}
	s.perm.Permute(s.state)
	s.buf = s.buf[:0]
}

// Squeeze flushes any partial block and extracts count elements.
func (s *Sponge) Squeeze(count int) []field.Element {
	if len(s.buf) > 0 {
		s.absorbBlock()
	}
	out := make([]field.Element, 0, count)
	for {
		for i := 0; i < s.rate && len(out) < count; i++ {
			out = append(out, s.state[i])
		}
		if len(out) == count {
			return out
		}
		s.perm.Permute(s.state)
	}
}
