package xmss

import (
	"github.com/eth2030/leansig/field"
	"github.com/eth2030/leansig/merkle"
	"github.com/eth2030/leansig/ssz"
)

// SSZ framing. The SSZ forms carry the same field layouts as the raw binary
// forms; public keys are a fixed-length vector plus tag, signatures a
// fixed-field container once the parameter set fixes the path length.

var (
	_ ssz.Marshaler   = (*PublicKey)(nil)
	_ ssz.Unmarshaler = (*PublicKey)(nil)
	_ ssz.Marshaler   = (*Signature)(nil)
	_ ssz.Unmarshaler = (*Signature)(nil)
)

// SizeSSZ returns the fixed public key size.
func (pk *PublicKey) SizeSSZ() int { return PublicKeySize }

// MarshalSSZ wraps the public key wire form.
func (pk *PublicKey) MarshalSSZ() ([]byte, error) {
	return EncodePublicKey(pk)
}

// UnmarshalSSZ reverses MarshalSSZ in place.
func (pk *PublicKey) UnmarshalSSZ(b []byte) error {
	decoded, err := DecodePublicKey(b)
	if err != nil {
		return err
	}
	*pk = *decoded
	return nil
}

// SizeSSZ returns the signature size implied by the held path length.
func (sig *Signature) SizeSSZ() int {
	nodeBytes := HashLenFE * field.Bytes
	return 8 + 4 + len(sig.Path)*nodeBytes + RhoLenFE*field.Bytes + 4 + NumChains*nodeBytes
}

// MarshalSSZ serializes the signature container.
func (sig *Signature) MarshalSSZ() ([]byte, error) {
	if len(sig.Hashes) != NumChains || len(sig.Rho) != RhoLenFE {
		return nil, ErrParameterMismatch
	}
	out := make([]byte, 0, sig.SizeSSZ())
	out = ssz.AppendUint64(out, sig.Epoch)
	out = ssz.AppendUint32(out, uint32(len(sig.Path)))
	for _, n := range sig.Path {
		out = field.AppendSlice4LE(out, n)
	}
	out = field.AppendSlice4LE(out, sig.Rho)
	out = ssz.AppendUint32(out, uint32(len(sig.Hashes)))
	for _, n := range sig.Hashes {
		out = field.AppendSlice4LE(out, n)
	}
	return out, nil
}

// UnmarshalSSZ reverses MarshalSSZ. The path length is read from the stream,
// so no parameter set is needed; consumers still match the decoded object
// against their parameters before use.
func (sig *Signature) UnmarshalSSZ(b []byte) error {
	r := ssz.NewReader(b)
	epoch := r.Uint64()
	pathLen := int(r.Uint32())
	if r.Err() != nil || pathLen > 64 {
		return ErrDeserialization
	}
	nodeBytes := HashLenFE * field.Bytes

	path := make([]merkle.Node, pathLen)
	for i := range path {
		node, err := field.SliceFromBytes4LE(r.Vector(nodeBytes), HashLenFE)
		if err != nil {
			return ErrDeserialization
		}
		path[i] = node
	}
	rho, err := field.SliceFromBytes4LE(r.Vector(RhoLenFE*field.Bytes), RhoLenFE)
	if err != nil {
		return ErrDeserialization
	}
	if int(r.Uint32()) != NumChains {
		return ErrDeserialization
	}
	hashes := make([]merkle.Node, NumChains)
	for i := range hashes {
		node, err := field.SliceFromBytes4LE(r.Vector(nodeBytes), HashLenFE)
		if err != nil {
			return ErrDeserialization
		}
		hashes[i] = node
	}
	if err := r.Finish(); err != nil {
		return ErrDeserialization
	}

	sig.Epoch = epoch
	sig.Path = path
	sig.Rho = rho
	sig.Hashes = hashes
	return nil
}
