package xmss

import (
	"errors"
	"testing"
)

func TestTagRoundTrip(t *testing.T) {
	for _, hash := range []HashVariant{HashPoseidon2W16, HashPoseidon2W24} {
		for _, enc := range []EncodingKind{EncodingWinternitz, EncodingTargetSum} {
			for _, l := range []int{8, 10, 16, 18, 20, 28, 32} {
				p := Parameters{Hash: hash, Encoding: enc, LifetimeLog2: l}
				tag, err := p.Tag()
				if err != nil {
					t.Fatalf("%v: Tag: %v", p, err)
				}
				got, err := ParamsFromTag(tag)
				if err != nil {
					t.Fatalf("%v: ParamsFromTag(%#x): %v", p, tag, err)
				}
				if got != p {
					t.Errorf("tag round trip: %v -> %#x -> %v", p, tag, got)
				}
			}
		}
	}
}

func TestTagRejectsUnknown(t *testing.T) {
	for _, tag := range []byte{0x00, 0x07, 0x37, 0xff, 0x1f} {
		if _, err := ParamsFromTag(tag); !errors.Is(err, ErrDeserialization) {
			t.Errorf("ParamsFromTag(%#x) err = %v, want ErrDeserialization", tag, err)
		}
	}
}

func TestInvalidParameters(t *testing.T) {
	bad := []Parameters{
		{Hash: 0, Encoding: EncodingWinternitz, LifetimeLog2: 8},
		{Hash: HashPoseidon2W16, Encoding: 7, LifetimeLog2: 8},
		{Hash: HashPoseidon2W16, Encoding: EncodingWinternitz, LifetimeLog2: 9},
	}
	for _, p := range bad {
		if p.Valid() {
			t.Errorf("%+v reported valid", p)
		}
		if _, err := p.Tag(); err == nil {
			t.Errorf("%+v: Tag succeeded", p)
		}
		if _, err := NewScheme(p); !errors.Is(err, ErrParameterMismatch) {
			t.Errorf("%+v: NewScheme err = %v", p, err)
		}
	}
}

func TestLifetime(t *testing.T) {
	p := Parameters{Hash: HashPoseidon2W24, Encoding: EncodingTargetSum, LifetimeLog2: 10}
	if p.Lifetime() != 1024 {
		t.Errorf("Lifetime = %d, want 1024", p.Lifetime())
	}
}

func TestParametersString(t *testing.T) {
	p := Parameters{Hash: HashPoseidon2W24, Encoding: EncodingTargetSum, LifetimeLog2: 18}
	want := "poseidon2-w24/target-sum/lifetime-2^18"
	if p.String() != want {
		t.Errorf("String = %q, want %q", p.String(), want)
	}
}
