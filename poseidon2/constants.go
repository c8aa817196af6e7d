// Package poseidon2 implements the Poseidon2 permutation over the KoalaBear
// field at widths 16 and 24, together with the compression and sponge modes
// used by the tweakable hash layer.
//
// The round schedule follows the Plonky3 KoalaBear instantiations: S-box x^3,
// 8 external rounds at both widths, 20 internal rounds at width 16 and 23 at
// width 24.
package poseidon2

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"github.com/eth2030/leansig/field"
)

// Supported permutation widths.
const (
	Width16 = 16
	Width24 = 24
)

// Round counts per width.
const (
	ExternalRounds   = 8
	InternalRounds16 = 20
	InternalRounds24 = 23
)

// constants holds the immutable per-width round tables. They are generated
// once at package init and never mutated afterwards.
type constants struct {
	width      int
	internal   int
	externalRC [][]field.Element // ExternalRounds rows of width elements
	internalRC []field.Element   // one per internal round
	diag       []field.Element   // internal-layer diagonal, width elements
}

var (
	consts16 = generateConstants(Width16, InternalRounds16, "poseidon2-koalabear-w16")
	consts24 = generateConstants(Width24, InternalRounds24, "poseidon2-koalabear-w24")
)

// generateConstants expands a domain-separated SHAKE128 stream into the round
// constant tables for one width. Candidate 4-byte windows are rejection
// sampled to the canonical range so the tables are uniform field elements.
// The derivation is fixed; the tables are process-wide read-only data.
func generateConstants(width, internal int, domain string) *constants {
	h := sha3.NewShake128()
	h.Write([]byte(domain))
	var sizing [8]byte
	binary.LittleEndian.PutUint32(sizing[0:4], uint32(width))
	binary.LittleEndian.PutUint32(sizing[4:8], uint32(internal))
	h.Write(sizing[:])

	next := func() field.Element {
		var w [4]byte
		for {
			h.Read(w[:])
			v := binary.LittleEndian.Uint32(w[:]) & 0x7fffffff
			if v < field.Modulus {
				return field.Element(v)
			}
		}
	}

	c := &constants{width: width, internal: internal}
	c.externalRC = make([][]field.Element, ExternalRounds)
	for r := range c.externalRC {
		row := make([]field.Element, width)
		for i := range row {
			row[i] = next()
		}
		c.externalRC[r] = row
	}
	c.internalRC = make([]field.Element, internal)
	for i := range c.internalRC {
		c.internalRC[i] = next()
	}
	c.diag = make([]field.Element, width)
	for i := range c.diag {
		c.diag[i] = next()
	}
	return c
}

// constantsFor returns the table set for a width. Unsupported widths are a
// programming error, not an input error.
func constantsFor(width int) *constants {
	switch width {
	case Width16:
		return consts16
	case Width24:
		return consts24
	default:
		panic("poseidon2: unsupported width")
	}
}
