package ssz

import (
	"bytes"
	"errors"
	"testing"
)

func TestAppendRoundTrip(t *testing.T) {
	var buf []byte
	buf = AppendUint8(buf, 0xab)
	buf = AppendUint32(buf, 0xdeadbeef)
	buf = AppendUint64(buf, 0x1122334455667788)
	buf = AppendVector(buf, []byte{1, 2, 3})

	r := NewReader(buf)
	if got := r.Uint8(); got != 0xab {
		t.Errorf("Uint8 = %#x", got)
	}
	if got := r.Uint32(); got != 0xdeadbeef {
		t.Errorf("Uint32 = %#x", got)
	}
	if got := r.Uint64(); got != 0x1122334455667788 {
		t.Errorf("Uint64 = %#x", got)
	}
	if got := r.Vector(3); !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Errorf("Vector = %v", got)
	}
	if err := r.Finish(); err != nil {
		t.Errorf("Finish: %v", err)
	}
}

func TestLittleEndianLayout(t *testing.T) {
	buf := AppendUint32(nil, 1)
	if !bytes.Equal(buf, []byte{1, 0, 0, 0}) {
		t.Errorf("uint32 layout = %v, want little-endian", buf)
	}
	buf = AppendUint64(nil, 0x0102030405060708)
	if !bytes.Equal(buf, []byte{8, 7, 6, 5, 4, 3, 2, 1}) {
		t.Errorf("uint64 layout = %v, want little-endian", buf)
	}
}

func TestReaderShortBuffer(t *testing.T) {
	r := NewReader([]byte{1, 2})
	_ = r.Uint32()
	if !errors.Is(r.Err(), ErrBufferTooSmall) {
		t.Errorf("err = %v, want ErrBufferTooSmall", r.Err())
	}
	// Sticky: further reads keep the error and return zero.
	if got := r.Uint64(); got != 0 {
		t.Errorf("read after error = %d, want 0", got)
	}
	if err := r.Finish(); !errors.Is(err, ErrBufferTooSmall) {
		t.Errorf("Finish = %v", err)
	}
}

func TestFinishRejectsTrailingBytes(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	_ = r.Uint8()
	if err := r.Finish(); !errors.Is(err, ErrSize) {
		t.Errorf("Finish = %v, want ErrSize", err)
	}
}
