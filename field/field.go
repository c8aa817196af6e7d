// Package field implements arithmetic in the KoalaBear prime field,
// p = 2^31 - 2^24 + 1. Elements are stored canonically in [0, p), and every
// operation reduces its result before returning. All hash input and output in
// the signature scheme is expressed as sequences of these elements.
package field

import (
	"encoding/binary"
	"errors"
	"math/bits"
)

// Modulus is the KoalaBear prime p = 2^31 - 2^24 + 1.
const Modulus = 2130706433

// Bytes is the serialized width of one element: ceil(log2(p) / 8) = 4 bytes,
// little-endian.
const Bytes = 4

// ErrNonCanonical is returned when decoding bytes that do not represent an
// element in [0, p).
var ErrNonCanonical = errors.New("field: value not in canonical range")

// Element is a KoalaBear field element in canonical form.
type Element uint32

// Add returns a + b mod p.
func Add(a, b Element) Element {
	s := uint32(a) + uint32(b)
	if s >= Modulus {
		s -= Modulus
	}
	return Element(s)
}

// Sub returns a - b mod p.
func Sub(a, b Element) Element {
	if a >= b {
		return a - b
	}
	return Element(uint32(a) + Modulus - uint32(b))
}

// Mul returns a * b mod p.
func Mul(a, b Element) Element {
	return Element(uint64(a) * uint64(b) % uint64(Modulus))
}

// Neg returns -a mod p.
func Neg(a Element) Element {
	if a == 0 {
		return 0
	}
	return Element(Modulus - uint32(a))
}

// Double returns 2a mod p.
func Double(a Element) Element { return Add(a, a) }

// Cube returns a^3 mod p, the Poseidon2 S-box over this field.
func Cube(a Element) Element {
	sq := uint64(a) * uint64(a) % uint64(Modulus)
	return Element(sq * uint64(a) % uint64(Modulus))
}

// FromUint64 reduces v mod p.
func FromUint64(v uint64) Element {
	return Element(v % uint64(Modulus))
}

// FromUint32 reduces v mod p.
func FromUint32(v uint32) Element {
	if v >= Modulus {
		v -= Modulus
		if v >= Modulus {
			v %= Modulus
		}
	}
	return Element(v)
}

// FromBytes16LE interprets a 16-byte window as a little-endian integer and
// reduces it mod p. This is the PRF consumption rule: one element per 16-byte
// window, exactly, regardless of how few bytes would suffice. The window
// length is fixed by cross-implementation compatibility.
func FromBytes16LE(window []byte) Element {
	lo := binary.LittleEndian.Uint64(window[0:8])
	hi := binary.LittleEndian.Uint64(window[8:16])
	// (hi * 2^64 + lo) mod p via 128/64 division.
	_, rem := bits.Div64(hi%uint64(Modulus), lo, uint64(Modulus))
	return Element(rem)
}

// AppendBytes4LE appends the canonical 4-byte little-endian encoding of e.
func AppendBytes4LE(dst []byte, e Element) []byte {
	return binary.LittleEndian.AppendUint32(dst, uint32(e))
}

// FromBytes4LE decodes a canonical 4-byte little-endian element. Values at or
// above the modulus are rejected so that serialized forms round-trip exactly.
func FromBytes4LE(b []byte) (Element, error) {
	if len(b) < Bytes {
		return 0, ErrNonCanonical
	}
	v := binary.LittleEndian.Uint32(b[:Bytes])
	if v >= Modulus {
		return 0, ErrNonCanonical
	}
	return Element(v), nil
}

// AppendSlice4LE appends the packed little-endian encoding of a vector.
func AppendSlice4LE(dst []byte, elems []Element) []byte {
	for _, e := range elems {
		dst = AppendBytes4LE(dst, e)
	}
	return dst
}

// SliceFromBytes4LE decodes n packed elements from b.
func SliceFromBytes4LE(b []byte, n int) ([]Element, error) {
	if len(b) < n*Bytes {
		return nil, ErrNonCanonical
	}
	out := make([]Element, n)
	for i := 0; i < n; i++ {
		e, err := FromBytes4LE(b[i*Bytes:])
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// ElementsFromBytes2LE maps a byte string into elements two bytes at a time,
// little-endian. Each element is below 2^16, well inside the canonical range,
// so the mapping is injective among inputs of equal length; an odd-length
// input and the same input with a zero byte appended map to the same
// elements. Used to absorb raw message bytes into the sponge.
func ElementsFromBytes2LE(b []byte) []Element {
	out := make([]Element, 0, (len(b)+1)/2)
	for i := 0; i < len(b); i += 2 {
		v := uint32(b[i])
		if i+1 < len(b) {
			v |= uint32(b[i+1]) << 8
		}
		out = append(out, Element(v))
	}
	return out
}

// Equal reports whether two vectors are identical.
func Equal(a, b []Element) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
