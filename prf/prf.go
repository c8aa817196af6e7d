// Package prf expands the 32-byte secret key into per-epoch chain heads and
// per-signature randomness using SHAKE128. Field elements are consumed from
// the XOF at exactly 16 bytes each (little-endian window, excess entropy
// discarded); that rate is a cross-implementation compatibility requirement
// and must not be narrowed even though 4 bytes would suffice cryptographically.
package prf

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	"golang.org/x/crypto/sha3"

	"github.com/eth2030/leansig/field"
)

// KeySize is the PRF key length in bytes.
const KeySize = 32

// Domain prefixes for the two expansion uses.
var (
	domainChain = []byte("leansig-prf-chain")
	domainRho   = []byte("leansig-prf-rho")
)

// Key is a 32-byte uniformly random PRF key.
type Key [KeySize]byte

// GenerateKey draws a fresh key from rng (crypto/rand.Reader when nil).
func GenerateKey(rng io.Reader) (Key, error) {
	if rng == nil {
		rng = rand.Reader
	}
	var k Key
	if _, err := io.ReadFull(rng, k[:]); err != nil {
		return Key{}, err
	}
	return k, nil
}

// ChainHead derives the head of chain chainIndex at the given epoch: outLen
// field elements, one per 16-byte XOF window. The derivation is a pure
// function of (key, epoch, chainIndex).
func ChainHead(key Key, epoch uint64, chainIndex uint32, outLen int) []field.Element {
	h := sha3.NewShake128()
	h.Write(domainChain)
	h.Write(key[:])
	var idx [12]byte
	binary.LittleEndian.PutUint64(idx[0:8], epoch)
	binary.LittleEndian.PutUint32(idx[8:12], chainIndex)
	h.Write(idx[:])
	return readElements(h, outLen)
}

// Rho derives the per-signature randomness for (key, epoch, message) and a
// retry counter. Counter 0 is the first candidate; target-sum rejection
// sampling increments it, so signatures stay deterministic in
// (key, epoch, message).
func Rho(key Key, epoch uint64, message []byte, counter uint32, outLen int) []field.Element {
	h := sha3.NewShake128()
	h.Write(domainRho)
	h.Write(key[:])
	var idx [12]byte
	binary.LittleEndian.PutUint64(idx[0:8], epoch)
	binary.LittleEndian.PutUint32(idx[8:12], counter)
	h.Write(idx[:])
	h.Write(message)
	return readElements(h, outLen)
}

func readElements(xof io.Reader, n int) []field.Element {
	out := make([]field.Element, n)
	var window [16]byte
	for i := 0; i < n; i++ {
		io.ReadFull(xof, window[:])
		out[i] = field.FromBytes16LE(window[:])
	}
	return out
}
