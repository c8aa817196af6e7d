package xmss

import (
	"github.com/eth2030/leansig/field"
	"github.com/eth2030/leansig/merkle"
	"github.com/eth2030/leansig/prf"
	"github.com/eth2030/leansig/ssz"
)

// PublicKey commits to the whole epoch space of one key pair.
type PublicKey struct {
	Root   merkle.Node
	Params Parameters
}

// SecretKey holds the PRF key, the activation interval, and the preparation
// state. A full key additionally owns the materialised tree; the signer
// borrows it read-only, and only AdvancePreparation mutates the preparation
// state.
type SecretKey struct {
	PRFKey          prf.Key
	ActivationEpoch uint64
	NumActiveEpochs uint64
	Params          Parameters
	Prep            PreparationState

	tree    *merkle.HashTree
	root    merkle.Node
	minimal bool
}

// Root returns the Merkle root this key signs under.
func (sk *SecretKey) Root() merkle.Node { return sk.root }

// Minimal reports whether the key was restored from the minimal wire form;
// minimal keys slide their preparation window forward on advancement instead
// of retaining old subtrees.
func (sk *SecretKey) Minimal() bool { return sk.minimal }

// Signature is one one-time signature: the epoch it consumes, the encoding
// randomness, the chain stopping points, and the Merkle authentication path.
type Signature struct {
	Epoch  uint64
	Rho    []field.Element
	Hashes []merkle.Node
	Path   []merkle.Node
}

// --- binary serialization ---
//
// The layouts below are the cross-implementation wire forms; every integer is
// little-endian and every field element packs into 4 bytes.

// PublicKeySize is the serialized public key length in bytes.
const PublicKeySize = HashLenFE*field.Bytes + 1

// EncodePublicKey serializes root elements followed by the parameter tag.
func EncodePublicKey(pk *PublicKey) ([]byte, error) {
	tag, err := pk.Params.Tag()
	if err != nil {
		return nil, err
	}
	if len(pk.Root) != HashLenFE {
		return nil, ErrParameterMismatch
	}
	out := make([]byte, 0, PublicKeySize)
	out = field.AppendSlice4LE(out, pk.Root)
	return append(out, tag), nil
}

// DecodePublicKey reverses EncodePublicKey.
func DecodePublicKey(b []byte) (*PublicKey, error) {
	if len(b) != PublicKeySize {
		return nil, ErrDeserialization
	}
	root, err := field.SliceFromBytes4LE(b, HashLenFE)
	if err != nil {
		return nil, ErrDeserialization
	}
	params, err := ParamsFromTag(b[len(b)-1])
	if err != nil {
		return nil, err
	}
	return &PublicKey{Root: root, Params: params}, nil
}

// secretKeyHeaderSize covers prf_key, activation_epoch, num_active_epochs
// and the parameter tag.
const secretKeyHeaderSize = prf.KeySize + 8 + 8 + 1

func encodeSecretKeyHeader(sk *SecretKey) ([]byte, error) {
	tag, err := sk.Params.Tag()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, secretKeyHeaderSize)
	out = append(out, sk.PRFKey[:]...)
	out = ssz.AppendUint64(out, sk.ActivationEpoch)
	out = ssz.AppendUint64(out, sk.NumActiveEpochs)
	return append(out, tag), nil
}

// EncodeSecretKey serializes the full form: header plus every materialised
// tree node, level 0 upward.
func EncodeSecretKey(sk *SecretKey) ([]byte, error) {
	out, err := encodeSecretKeyHeader(sk)
	if err != nil {
		return nil, err
	}
	if sk.tree == nil {
		return nil, ErrDeserialization
	}
	return field.AppendSlice4LE(out, sk.tree.FlattenNodes()), nil
}

// EncodeSecretKeyMinimal serializes the minimal form: the header only.
// DecodeSecretKey rebuilds the tree over the whole activation interval from
// the PRF key at decode time; it is not limited to the preparation window.
func EncodeSecretKeyMinimal(sk *SecretKey) ([]byte, error) {
	return encodeSecretKeyHeader(sk)
}

// DecodeSecretKey reverses both secret key forms. The minimal form triggers
// re-materialisation of the tree from the PRF key, which costs one full leaf
// computation pass over the activation interval; the full form only unpacks
// nodes. The preparation window restarts at the head of the activation
// interval in both cases.
func DecodeSecretKey(b []byte) (*SecretKey, error) {
	if len(b) < secretKeyHeaderSize {
		return nil, ErrDeserialization
	}
	sk := &SecretKey{}
	copy(sk.PRFKey[:], b[:prf.KeySize])
	r := ssz.NewReader(b[prf.KeySize:secretKeyHeaderSize])
	sk.ActivationEpoch = r.Uint64()
	sk.NumActiveEpochs = r.Uint64()
	tag := r.Uint8()
	if err := r.Finish(); err != nil {
		return nil, ErrDeserialization
	}
	params, err := ParamsFromTag(tag)
	if err != nil {
		return nil, err
	}
	sk.Params = params

	s, err := NewScheme(params)
	if err != nil {
		return nil, err
	}
	if sk.NumActiveEpochs == 0 ||
		sk.ActivationEpoch+sk.NumActiveEpochs > params.Lifetime() {
		return nil, ErrDeserialization
	}

	rest := b[secretKeyHeaderSize:]
	if len(rest) == 0 {
		// Minimal form: rebuild the tree from the PRF key.
		sk.minimal = true
		tree, err := s.materialiseTree(sk.PRFKey, sk.ActivationEpoch, sk.NumActiveEpochs)
		if err != nil {
			return nil, err
		}
		sk.tree = tree
	} else {
		count := merkle.NodeCount(params.LifetimeLog2, sk.ActivationEpoch, sk.NumActiveEpochs)
		elems, err := field.SliceFromBytes4LE(rest, count*HashLenFE)
		if err != nil || len(rest) != count*HashLenFE*field.Bytes {
			return nil, ErrDeserialization
		}
		tree, err := merkle.RebuildFromNodes(s.hasher, params.LifetimeLog2,
			sk.ActivationEpoch, sk.NumActiveEpochs, elems)
		if err != nil {
			return nil, ErrDeserialization
		}
		sk.tree = tree
	}
	sk.root = sk.tree.Root()
	sk.Prep = initialPreparation(sk.ActivationEpoch, sk.NumActiveEpochs)
	return sk, nil
}

// signatureSize returns the wire length of a signature under p.
func signatureSize(p Parameters) int {
	nodeBytes := HashLenFE * field.Bytes
	return 8 + 4 + p.LifetimeLog2*nodeBytes + RhoLenFE*field.Bytes + 4 + NumChains*nodeBytes
}

// EncodeSignature serializes epoch, auth path, rho and the chain outputs.
func EncodeSignature(sig *Signature, p Parameters) ([]byte, error) {
	if len(sig.Path) != p.LifetimeLog2 || len(sig.Hashes) != NumChains ||
		len(sig.Rho) != RhoLenFE {
		return nil, ErrParameterMismatch
	}
	out := make([]byte, 0, signatureSize(p))
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

// DecodeSignature reverses EncodeSignature.
func DecodeSignature(b []byte, p Parameters) (*Signature, error) {
	if !p.Valid() || len(b) != signatureSize(p) {
		return nil, ErrDeserialization
	}
	sig := &Signature{}
	r := ssz.NewReader(b)
	sig.Epoch = r.Uint64()
	if int(r.Uint32()) != p.LifetimeLog2 {
		return nil, ErrDeserialization
	}
	nodeBytes := HashLenFE * field.Bytes
	sig.Path = make([]merkle.Node, p.LifetimeLog2)
	for i := range sig.Path {
		node, err := field.SliceFromBytes4LE(r.Vector(nodeBytes), HashLenFE)
		if err != nil {
			return nil, ErrDeserialization
		}
		sig.Path[i] = node
	}
	rho, err := field.SliceFromBytes4LE(r.Vector(RhoLenFE*field.Bytes), RhoLenFE)
	if err != nil {
		return nil, ErrDeserialization
	}
	sig.Rho = rho
	if int(r.Uint32()) != NumChains {
		return nil, ErrDeserialization
	}
	sig.Hashes = make([]merkle.Node, NumChains)
	for i := range sig.Hashes {
		node, err := field.SliceFromBytes4LE(r.Vector(nodeBytes), HashLenFE)
		if err != nil {
			return nil, ErrDeserialization
		}
		sig.Hashes[i] = node
	}
	if err := r.Finish(); err != nil {
		return nil, ErrDeserialization
	}
	return sig, nil
}
