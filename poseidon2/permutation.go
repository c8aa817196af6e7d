package poseidon2

import "github.com/eth2030/leansig/field"

// Permutation is a fixed-width Poseidon2 permutation instance. Instances are
// stateless and safe for concurrent use.
type Permutation struct {
	c *constants
}

// NewPermutation returns the permutation for the given width (Width16 or
// Width24).
func NewPermutation(width int) *Permutation {
	return &Permutation{c: constantsFor(width)}
}

// Width returns the state width.
func (p *Permutation) Width() int { return p.c.width }

// Permute applies the Poseidon2 permutation to state in place. len(state)
// must equal Width().
func (p *Permutation) Permute(state []field.Element) {
	if len(state) != p.c.width {
		panic("poseidon2: state width mismatch")
	}

	// Initial external linear layer.
	externalLayer(state)

	half := ExternalRounds / 2

	for r := 0; r < half; r++ {
		addRoundConstants(state, p.c.externalRC[r])
		for i := range state {
			state[i] = field.Cube(state[i])
		}
		externalLayer(state)
	}

	for r := 0; r < p.c.internal; r++ {
		state[0] = field.Add(state[0], p.c.internalRC[r])
		state[0] = field.Cube(state[0])
		p.internalLayer(state)
	}

	for r := half; r < ExternalRounds; r++ {
		addRoundConstants(state, p.c.externalRC[r])
		for i := range state {
			state[i] = field.Cube(state[i])
		}
		externalLayer(state)
	}
}

func addRoundConstants(state, rc []field.Element) {
	for i := range state {
		state[i] = field.Add(state[i], rc[i])
	}
}

// externalLayer applies the Poseidon2 external matrix: the 4x4 block matrix
// M4 on each aligned quadruple, then each lane adds the column sum across
// blocks.
func externalLayer(state []field.Element) {
	n := len(state)
	for i := 0; i < n; i += 4 {
		applyM4(state[i : i+4])
	}
	var sums [4]field.Element
	for i := 0; i < n; i++ {
		sums[i&3] = field.Add(sums[i&3], state[i])
	}
	for i := 0; i < n; i++ {
		state[i] = field.Add(state[i], sums[i&3])
	}
}

// applyM4 multiplies a quadruple by the matrix
//
//	[5 7 1 3]
//	[4 6 1 1]
//	[1 3 5 7]
//	[1 1 4 6]
func applyM4(s []field.Element) {
	t0 := field.Add(s[0], s[1])
	t1 := field.Add(s[2], s[3])
	t2 := field.Add(field.Double(s[1]), t1)
	t3 := field.Add(field.Double(s[3]), t0)
	t4 := field.Add(field.Double(field.Double(t1)), t3)
	t5 := field.Add(field.Double(field.Double(t0)), t2)
	s[0] = field.Add(t3, t5)
	s[1] = t5
	s[2] = field.Add(t2, t4)
	s[3] = t4
}

// internalLayer applies the Poseidon2 internal matrix 1*J + diag: every lane
// becomes the state sum plus its diagonal-scaled value.
func (p *Permutation) internalLayer(state []field.Element) {
	var sum field.Element
	for _, v := range state {
		sum = field.Add(sum, v)
	}
	for i := range state {
		state[i] = field.Add(sum, field.Mul(p.c.diag[i], state[i]))
	}
}

// Compress hashes an input of at most Width() elements into outLen elements
// with a single permutation call and a feed-forward add. Inputs shorter than
// the width are zero padded; outLen must not exceed the width.
func (p *Permutation) Compress(input []field.Element, outLen int) []field.Element {
	w := p.c.width
	if len(input) > w || outLen > w {
		panic("poseidon2: compress size out of range")
	}
	state := make([]field.Element, w)
	copy(state, input)
	p.Permute(state)
	out := make([]field.Element, outLen)
	for i := 0; i < outLen; i++ {
		if i < len(input) {
			out[i] = field.Add(state[i], input[i])
		} else {
			out[i] = state[i]
		}
	}
	return out
}
