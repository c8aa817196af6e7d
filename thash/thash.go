// Package thash provides the tweakable hash layer of the signature scheme:
// domain-separated Poseidon2 calls for chain steps, tree nodes, leaf
// compression and message digests. The domain tag is absorbed as the first
// rate element, ahead of the tweak and payload, so the three uses of the same
// permutation cannot collide.
package thash

import (
	"github.com/eth2030/leansig/field"
	"github.com/eth2030/leansig/poseidon2"
)

// Domain separation tags.
const (
	TagChain field.Element = 0x00
	TagTree  field.Element = 0x01
	TagMsg   field.Element = 0x02
)

// Hasher binds a Poseidon2 width to a fixed hash output length in field
// elements. Hashers are stateless and safe for concurrent use.
type Hasher struct {
	perm    *poseidon2.Permutation
	width   int
	hashLen int
}

// NewHasher returns a hasher over the given permutation width producing
// hashLen-element outputs.
func NewHasher(width, hashLen int) *Hasher {
	return &Hasher{
		perm:    poseidon2.NewPermutation(width),
		width:   width,
		hashLen: hashLen,
	}
}

// HashLen returns the output length in field elements.
func (h *Hasher) HashLen() int { return h.hashLen }

// Width returns the underlying permutation width.
func (h *Hasher) Width() int { return h.width }

// hash compresses when the input fits one permutation state and falls back to
// the sponge otherwise. Both paths are deterministic per parameter set.
func (h *Hasher) hash(input []field.Element) []field.Element {
	if len(input) <= h.width {
		return h.perm.Compress(input, h.hashLen)
	}
	sp := poseidon2.NewSponge(h.width)
	sp.Absorb(input...)
	return sp.Squeeze(h.hashLen)
}

// ChainStep computes one step of a Winternitz chain: the hash of the current
// chain state under the (epoch, chainIndex, pos) chain tweak. pos is the
// position being produced, in [1, w).
func (h *Hasher) ChainStep(epoch uint64, chainIndex, pos int, state []field.Element) []field.Element {
	input := make([]field.Element, 0, 4+len(state))
	input = append(input, TagChain, field.FromUint64(epoch),
		field.Element(chainIndex), field.Element(pos))
	input = append(input, state...)
	return h.hash(input)
}

// TreeNode computes an internal Merkle node from its two children under the
// (level, index) tree tweak. level is at least 1.
func (h *Hasher) TreeNode(level int, index uint64, left, right []field.Element) []field.Element {
	input := make([]field.Element, 0, 3+len(left)+len(right))
	input = append(input, TagTree, field.Element(level), field.FromUint64(index))
	input = append(input, left...)
	input = append(input, right...)
	return h.hash(input)
}

// LeafHash compresses the v chain tails of one epoch into the Merkle leaf,
// under the (level 0, epoch) tree tweak.
func (h *Hasher) LeafHash(epoch uint64, chainEnds [][]field.Element) []field.Element {
	input := make([]field.Element, 0, 3+len(chainEnds)*h.hashLen)
	input = append(input, TagTree, 0, field.FromUint64(epoch))
	for _, end := range chainEnds {
		input = append(input, end...)
	}
	return h.hash(input)
}

// PlaceholderLeaf is the deterministic stand-in for a leaf outside the active
// epoch range: the tree hash of an all-zero payload at (level 0, index). The
// root therefore commits to the whole epoch space even when only a subset of
// leaves is ever materialised.
func (h *Hasher) PlaceholderLeaf(index uint64) []field.Element {
	input := make([]field.Element, 3+h.hashLen)
	input[0] = TagTree
	input[1] = 0
	input[2] = field.FromUint64(index)
	return h.hash(input)
}

// MessageDigest absorbs (epoch, rho, message, root) under the message tag and
// returns numChunks digits in base 2^chunkBits. Two bytes are drawn from each
// squeezed element, then sliced into chunkBits-wide digits; the message length
// is absorbed ahead of the message so distinct-length messages cannot alias.
func (h *Hasher) MessageDigest(epoch uint64, rho, root []field.Element, msg []byte, numChunks, chunkBits int) []uint16 {
	sp := poseidon2.NewSponge(h.width)
	sp.Absorb(TagMsg, field.FromUint64(epoch))
	sp.Absorb(rho...)
	sp.Absorb(field.FromUint64(uint64(len(msg))))
	sp.Absorb(field.ElementsFromBytes2LE(msg)...)
	sp.Absorb(root...)

	digitsPerByte := 8 / chunkBits
	numBytes := (numChunks + digitsPerByte - 1) / digitsPerByte
	numElems := (numBytes + 1) / 2
	elems := sp.Squeeze(numElems)

	stream := make([]byte, 0, numElems*2)
	for _, e := range elems {
		stream = append(stream, byte(e), byte(e>>8))
	}

	digits := make([]uint16, 0, numChunks)
	mask := byte(1<<chunkBits - 1)
	for _, b := range stream {
		for off := 0; off < 8; off += chunkBits {
			digits = append(digits, uint16((b>>off)&mask))
			if len(digits) == numChunks {
				return digits
			}
		}
	}
	return digits
}

// Chain walks a Winternitz chain forward by steps applications of ChainStep,
// starting from state at position startPos. A single buffer is reused across
// the walk; the input slice is not modified.
func Chain(h *Hasher, epoch uint64, chainIndex, startPos, steps int, state []field.Element) []field.Element {
	cur := make([]field.Element, len(state))
	copy(cur, state)
	for j := 0; j < steps; j++ {
		out := h.ChainStep(epoch, chainIndex, startPos+j+1, cur)
		copy(cur, out)
	}
	return cur
}
