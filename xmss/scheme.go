package xmss

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/eth2030/leansig/encoding"
	"github.com/eth2030/leansig/field"
	"github.com/eth2030/leansig/internal/pool"
	"github.com/eth2030/leansig/log"
	"github.com/eth2030/leansig/merkle"
	"github.com/eth2030/leansig/metrics"
	"github.com/eth2030/leansig/prf"
	"github.com/eth2030/leansig/thash"
)

var (
	keygenLeaves = metrics.GetCounter("leansig/keygen/leaves")
	signTotal    = metrics.GetCounter("leansig/sign/total")
	signRetries  = metrics.GetCounter("leansig/sign/retries")
)

// Scheme binds a parameter set to its hasher and encoding. Schemes are
// stateless and safe for concurrent use; all mutable state lives in the
// secret key.
type Scheme struct {
	params  Parameters
	hasher  *thash.Hasher
	enc     encoding.Encoding
	workers int
}

// NewScheme builds the scheme for a parameter set.
func NewScheme(p Parameters) (*Scheme, error) {
	if !p.Valid() {
		return nil, ErrParameterMismatch
	}
	return &Scheme{
		params: p,
		hasher: thash.NewHasher(p.width(), HashLenFE),
		enc:    p.newEncoding(),
	}, nil
}

// SetWorkers overrides the worker count used for parallel leaf and chain
// computation. Zero restores the default. The produced bytes never depend on
// the worker count.
func (s *Scheme) SetWorkers(n int) { s.workers = n }

// Params returns the parameter set.
func (s *Scheme) Params() Parameters { return s.params }

// KeyGen draws a fresh PRF key from rng (crypto/rand when nil) and derives
// the key pair active on [activation, activation+numActive).
func (s *Scheme) KeyGen(rng io.Reader, activation, numActive uint64) (*PublicKey, *SecretKey, error) {
	key, err := prf.GenerateKey(rng)
	if err != nil {
		return nil, nil, err
	}
	return s.KeyGenFromKey(key, activation, numActive)
}

// KeyGenFromKey derives the key pair deterministically from an existing PRF
// key. The whole activation interval's leaves are materialised, so the cost
// is numActive * v chain walks; leaves are computed in parallel but the
// resulting bytes are independent of scheduling.
func (s *Scheme) KeyGenFromKey(key prf.Key, activation, numActive uint64) (*PublicKey, *SecretKey, error) {
	if numActive == 0 || activation+numActive > s.params.Lifetime() {
		return nil, nil, ErrEpochOutOfRange
	}

	start := time.Now()
	tree, err := s.materialiseTree(key, activation, numActive)
	if err != nil {
		return nil, nil, err
	}
	log.Default().Module("keygen").Info("key pair generated",
		"params", s.params.String(),
		"activation", activation,
		"epochs", numActive,
		"elapsed", time.Since(start).String(),
	)

	sk := &SecretKey{
		PRFKey:          key,
		ActivationEpoch: activation,
		NumActiveEpochs: numActive,
		Params:          s.params,
		Prep:            initialPreparation(activation, numActive),
		tree:            tree,
		root:            tree.Root(),
	}
	pk := &PublicKey{Root: tree.Root(), Params: s.params}
	return pk, sk, nil
}

// materialiseTree computes every leaf of the activation interval and folds
// the hash tree over the full epoch space.
func (s *Scheme) materialiseTree(key prf.Key, activation, numActive uint64) (*merkle.HashTree, error) {
	leaves := make([]merkle.Node, numActive)
	err := pool.Map(context.Background(), int(numActive), s.workers, func(i int) error {
		leaves[i] = s.leafHash(key, activation+uint64(i))
		keygenLeaves.Inc()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return merkle.NewHashTree(s.hasher, s.params.LifetimeLog2, activation, leaves), nil
}

// leafHash derives the v chain heads for one epoch, walks each chain to its
// tail, and compresses the tails into the Merkle leaf.
func (s *Scheme) leafHash(key prf.Key, epoch uint64) merkle.Node {
	ends := make([][]field.Element, NumChains)
	for i := 0; i < NumChains; i++ {
		head := prf.ChainHead(key, epoch, uint32(i), HashLenFE)
		ends[i] = thash.Chain(s.hasher, epoch, i, 0, ChainLength-1, head)
	}
	return s.hasher.LeafHash(epoch, ends)
}

// Sign produces the one-time signature for (epoch, message). The epoch must
// lie in the activation interval and inside the prepared window; callers
// wanting automatic window movement use PrepareFor first. The result is
// deterministic in (PRF key, epoch, message).
func (s *Scheme) Sign(sk *SecretKey, epoch uint64, message []byte) (*Signature, error) {
	if sk.Params != s.params {
		return nil, ErrParameterMismatch
	}
	if epoch < sk.ActivationEpoch ||
		epoch >= sk.ActivationEpoch+sk.NumActiveEpochs {
		return nil, ErrEpochOutOfRange
	}
	if !sk.Prep.Contains(epoch) {
		return nil, ErrEpochNotPrepared
	}

	path, err := sk.tree.Path(epoch)
	if err != nil {
		return nil, ErrEpochNotPrepared
	}

	var (
		rho []field.Element
		cw  encoding.Codeword
	)
	maxTries := s.enc.MaxTries()
	for attempt := 0; ; attempt++ {
		if attempt == maxTries {
			return nil, ErrEncodingRejected
		}
		rho = prf.Rho(sk.PRFKey, epoch, message, uint32(attempt), RhoLenFE)
		digits := s.hasher.MessageDigest(epoch, rho, sk.root, message,
			s.enc.MessageChunks(), ChunkBits)
		cw, err = s.enc.Encode(digits)
		if err == nil {
			break
		}
		if !errors.Is(err, encoding.ErrSumMismatch) {
			return nil, err
		}
		signRetries.Inc()
	}

	hashes := make([]merkle.Node, NumChains)
	for i := 0; i < NumChains; i++ {
		head := prf.ChainHead(sk.PRFKey, epoch, uint32(i), HashLenFE)
		hashes[i] = thash.Chain(s.hasher, epoch, i, 0, int(cw[i]), head)
	}

	signTotal.Inc()
	return &Signature{
		Epoch:  epoch,
		Rho:    rho,
		Hashes: hashes,
		Path:   path,
	}, nil
}

// Verify checks a signature against the public key. Cryptographic mismatch
// returns (false, nil); structural and range failures return an error. The
// function is pure.
func (s *Scheme) Verify(pk *PublicKey, epoch uint64, message []byte, sig *Signature) (bool, error) {
	if pk.Params != s.params {
		return false, ErrParameterMismatch
	}
	if epoch >= s.params.Lifetime() {
		return false, ErrEpochTooLarge
	}
	if sig == nil || sig.Epoch != epoch {
		return false, nil
	}
	if len(sig.Path) != s.params.LifetimeLog2 ||
		len(sig.Hashes) != NumChains || len(sig.Rho) != RhoLenFE {
		return false, ErrParameterMismatch
	}
	for _, n := range sig.Hashes {
		if len(n) != HashLenFE {
			return false, ErrParameterMismatch
		}
	}

	digits := s.hasher.MessageDigest(epoch, sig.Rho, pk.Root, message,
		s.enc.MessageChunks(), ChunkBits)
	cw, err := s.enc.Encode(digits)
	if err != nil {
		// The encoding no longer accepts this rho; the signature cannot
		// be genuine.
		return false, nil
	}

	// Complete each chain from its stopping point to the tail. The walks
	// are independent; fan them out.
	ends := make([]merkle.Node, NumChains)
	err = pool.Map(context.Background(), NumChains, s.workers, func(i int) error {
		k := int(cw[i])
		ends[i] = thash.Chain(s.hasher, epoch, i, k, ChainLength-1-k, sig.Hashes[i])
		return nil
	})
	if err != nil {
		return false, err
	}

	leaf := s.hasher.LeafHash(epoch, ends)
	return merkle.VerifyPath(s.hasher, pk.Root, s.params.LifetimeLog2,
		epoch, leaf, sig.Path), nil
}
