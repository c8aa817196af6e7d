package ssz

import "encoding/binary"

// AppendUint8 appends a uint8.
func AppendUint8(dst []byte, v uint8) []byte {
	return append(dst, v)
}

// AppendUint32 appends a uint32, 4 bytes little-endian.
func AppendUint32(dst []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(dst, v)
}

// AppendUint64 appends a uint64, 8 bytes little-endian.
func AppendUint64(dst []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(dst, v)
}

// AppendVector appends a fixed-length byte vector verbatim.
func AppendVector(dst, v []byte) []byte {
	return append(dst, v...)
}

// Reader consumes an SSZ byte stream front to back. Reads after a failure
// keep returning the zero value with the sticky error.
type Reader struct {
	buf []byte
	off int
	err error
}

// NewReader wraps a byte stream.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Err returns the first decode error, if any.
func (r *Reader) Err() error { return r.err }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.off }

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.Remaining() < n {
		r.err = ErrBufferTooSmall
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

// Uint8 reads one byte.
func (r *Reader) Uint8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// Uint32 reads 4 bytes little-endian.
func (r *Reader) Uint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// Uint64 reads 8 bytes little-endian.
func (r *Reader) Uint64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// Vector reads a fixed-length byte vector.
func (r *Reader) Vector(n int) []byte {
	return r.take(n)
}

// Finish returns ErrSize when unread bytes remain, otherwise the sticky
// error.
func (r *Reader) Finish() error {
	if r.err != nil {
		return r.err
	}
	if r.Remaining() != 0 {
		return ErrSize
	}
	return nil
}
