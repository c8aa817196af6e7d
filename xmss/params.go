// Package xmss implements the generalized XMSS signature scheme: Winternitz
// one-time signatures with PRF-derived chain heads, bound under a Merkle tree
// over the epoch space, with a staged key-preparation engine amortising
// subtree materialisation across the activation interval.
package xmss

import (
	"fmt"

	"github.com/eth2030/leansig/encoding"
	"github.com/eth2030/leansig/poseidon2"
)

// Fixed scheme dimensions shared by every parameter set.
const (
	// ChainLength is w, the length of each Winternitz chain.
	ChainLength = 256

	// ChunkBits is the digit width, log2(ChainLength).
	ChunkBits = 8

	// NumChains is v, the number of chains per one-time key.
	NumChains = 22

	// numMessageChunks is the number of digest digits in the Winternitz
	// construction; the remaining NumChains - numMessageChunks digits
	// carry the checksum.
	numMessageChunks = 20

	// HashLenFE is the hash output length in field elements.
	HashLenFE = 8

	// RhoLenFE is the per-signature randomness length in field elements.
	RhoLenFE = 5

	// SubtreeWidth is the preparation window granularity in leaves: a
	// power of two small enough that one subtree's chain computations
	// stay memory-resident.
	SubtreeWidth = 64
)

// HashVariant selects the Poseidon2 instantiation.
type HashVariant uint8

// Recognized hash variants.
const (
	HashPoseidon2W16 HashVariant = 1
	HashPoseidon2W24 HashVariant = 2
)

// EncodingKind selects the message-to-chunk encoding.
type EncodingKind uint8

// Recognized encodings.
const (
	EncodingWinternitz EncodingKind = 0
	EncodingTargetSum  EncodingKind = 1
)

// lifetimes enumerates the recognized lifetime_log2 choices; the index is
// what the parameter tag stores.
var lifetimes = []int{8, 10, 16, 18, 20, 28, 32}

// Parameters is the immutable configuration chosen at keygen and embedded in
// every serialized object. Operations reject operands whose parameters
// differ.
type Parameters struct {
	Hash         HashVariant
	Encoding     EncodingKind
	LifetimeLog2 int
}

// String implements fmt.Stringer for log and inspect output.
func (p Parameters) String() string {
	hash := "poseidon2-w16"
	if p.Hash == HashPoseidon2W24 {
		hash = "poseidon2-w24"
	}
	enc := "winternitz"
	if p.Encoding == EncodingTargetSum {
		enc = "target-sum"
	}
	return fmt.Sprintf("%s/%s/lifetime-2^%d", hash, enc, p.LifetimeLog2)
}

// Lifetime returns 2^lifetime_log2, the total number of epochs.
func (p Parameters) Lifetime() uint64 {
	return 1 << p.LifetimeLog2
}

// width returns the Poseidon2 permutation width for the hash variant.
func (p Parameters) width() int {
	if p.Hash == HashPoseidon2W16 {
		return poseidon2.Width16
	}
	return poseidon2.Width24
}

// Valid reports whether every field holds a recognized value.
func (p Parameters) Valid() bool {
	if p.Hash != HashPoseidon2W16 && p.Hash != HashPoseidon2W24 {
		return false
	}
	if p.Encoding != EncodingWinternitz && p.Encoding != EncodingTargetSum {
		return false
	}
	return lifetimeIndex(p.LifetimeLog2) >= 0
}

func lifetimeIndex(logLifetime int) int {
	for i, l := range lifetimes {
		if l == logLifetime {
			return i
		}
	}
	return -1
}

// Tag packs the parameter set into the 1-byte wire tag: hash variant in the
// high nibble, encoding in bit 3, lifetime index in the low 3 bits.
func (p Parameters) Tag() (byte, error) {
	if !p.Valid() {
		return 0, ErrParameterMismatch
	}
	idx := lifetimeIndex(p.LifetimeLog2)
	return byte(p.Hash)<<4 | byte(p.Encoding)<<3 | byte(idx), nil
}

// ParamsFromTag reverses Tag, rejecting unknown values.
func ParamsFromTag(tag byte) (Parameters, error) {
	p := Parameters{
		Hash:     HashVariant(tag >> 4),
		Encoding: EncodingKind(tag >> 3 & 1),
	}
	idx := int(tag & 7)
	if idx >= len(lifetimes) {
		return Parameters{}, ErrDeserialization
	}
	p.LifetimeLog2 = lifetimes[idx]
	if !p.Valid() {
		return Parameters{}, ErrDeserialization
	}
	return p, nil
}

// newEncoding builds the codeword construction for the parameter set.
func (p Parameters) newEncoding() encoding.Encoding {
	if p.Encoding == EncodingTargetSum {
		return encoding.NewTargetSum(ChunkBits, NumChains,
			encoding.DefaultTarget(ChunkBits, NumChains))
	}
	return encoding.NewWinternitz(ChunkBits, numMessageChunks)
}
