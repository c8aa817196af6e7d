package encoding

import "math"

// Winternitz is the checksum construction: the message digits are extended
// with base-w digits of the checksum sum(w-1-d_i), so lowering any message
// digit raises the checksum and no codeword dominates another.
type Winternitz struct {
	chunkBits   int
	numMessage  int
	numChecksum int
}

// NewWinternitz builds the encoding for chunkBits-wide digits and numMessage
// message chunks. The checksum length is fixed by those two choices.
func NewWinternitz(chunkBits, numMessage int) *Winternitz {
	if chunkBits != 1 && chunkBits != 2 && chunkBits != 4 && chunkBits != 8 {
		panic("encoding: chunk size must be 1, 2, 4 or 8 bits")
	}
	return &Winternitz{
		chunkBits:   chunkBits,
		numMessage:  numMessage,
		numChecksum: ChecksumChunks(numMessage, chunkBits),
	}
}

// ChecksumChunks returns the number of base-2^chunkBits digits needed to
// carry the maximum checksum numMessage*(2^chunkBits - 1).
func ChecksumChunks(numMessage, chunkBits int) int {
	base := 1 << chunkBits
	maxChecksum := numMessage * (base - 1)
	return int(math.Floor(math.Log(float64(maxChecksum))/math.Log(float64(base)))) + 1
}

// Encode appends the checksum digits to the message digits, little-endian in
// base w.
func (e *Winternitz) Encode(digits []uint16) (Codeword, error) {
	base := uint32(1) << e.chunkBits
	if len(digits) != e.numMessage {
		return nil, ErrDigitRange
	}
	var checksum uint32
	for _, d := range digits {
		if uint32(d) >= base {
			return nil, ErrDigitRange
		}
		checksum += base - 1 - uint32(d)
	}

	cw := make(Codeword, 0, e.Dimension())
	cw = append(cw, digits...)
	for i := 0; i < e.numChecksum; i++ {
		cw = append(cw, uint16(checksum%base))
		checksum /= base
	}
	return cw, nil
}

// Dimension returns v = numMessage + numChecksum.
func (e *Winternitz) Dimension() int { return e.numMessage + e.numChecksum }

// Base returns 2^chunkBits.
func (e *Winternitz) Base() int { return 1 << e.chunkBits }

// MessageChunks returns the number of message digits consumed.
func (e *Winternitz) MessageChunks() int { return e.numMessage }

// MaxTries returns 1: Winternitz encoding never rejects.
func (e *Winternitz) MaxTries() int { return 1 }
