package main

import (
	"errors"
	"flag"
	"fmt"
	"math/bits"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/eth2030/leansig/prf"
	"github.com/eth2030/leansig/xmss"
)

// parseLifetime converts an epoch count (256, 1024, ...) into its log2,
// rejecting values outside the recognized set.
func parseLifetime(epochs uint64) (int, error) {
	if epochs == 0 || epochs&(epochs-1) != 0 {
		return 0, fmt.Errorf("lifetime %d is not a power of two", epochs)
	}
	logLifetime := bits.TrailingZeros64(epochs)
	p := xmss.Parameters{
		Hash:         xmss.HashPoseidon2W24,
		Encoding:     xmss.EncodingTargetSum,
		LifetimeLog2: logLifetime,
	}
	if !p.Valid() {
		return 0, fmt.Errorf("lifetime 2^%d is not a recognized choice", logLifetime)
	}
	return logLifetime, nil
}

func parseEncoding(name string) (xmss.EncodingKind, error) {
	switch name {
	case "target-sum", "targetsum":
		return xmss.EncodingTargetSum, nil
	case "winternitz":
		return xmss.EncodingWinternitz, nil
	default:
		return 0, fmt.Errorf("unknown encoding %q", name)
	}
}

// parseMessage decodes the --msg hex argument, tolerating a missing 0x
// prefix.
func parseMessage(s string) ([]byte, error) {
	if s == "" {
		return nil, errors.New("empty message")
	}
	if len(s) < 2 || s[0:2] != "0x" {
		s = "0x" + s
	}
	return hexutil.Decode(s)
}

func cmdKeygen(args []string) error {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	lifetime := fs.Uint64("lifetime", 1024, "total number of epochs (power of two)")
	activation := fs.Uint64("activation", 0, "first active epoch")
	count := fs.Uint64("count", 0, "number of active epochs (default: lifetime - activation)")
	encodingName := fs.String("encoding", "target-sum", "message encoding: target-sum or winternitz")
	seedHex := fs.String("seed", "", "optional 32-byte PRF key in hex for reproducible keys")
	out := fs.String("out", "", "output path for the secret key; the public key lands at <out>.pub")
	minimal := fs.Bool("minimal", false, "write the minimal secret key form (no tree nodes)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return errors.New("keygen: --out is required")
	}

	logLifetime, err := parseLifetime(*lifetime)
	if err != nil {
		return err
	}
	enc, err := parseEncoding(*encodingName)
	if err != nil {
		return err
	}
	numActive := *count
	if numActive == 0 {
		numActive = *lifetime - *activation
	}

	params := xmss.Parameters{
		Hash:         xmss.HashPoseidon2W24,
		Encoding:     enc,
		LifetimeLog2: logLifetime,
	}
	scheme, err := xmss.NewScheme(params)
	if err != nil {
		return err
	}

	var (
		pk *xmss.PublicKey
		sk *xmss.SecretKey
	)
	if *seedHex != "" {
		seed, err := parseMessage(*seedHex)
		if err != nil || len(seed) != prf.KeySize {
			return errors.New("keygen: --seed must be 32 bytes of hex")
		}
		var key prf.Key
		copy(key[:], seed)
		pk, sk, err = scheme.KeyGenFromKey(key, *activation, numActive)
		if err != nil {
			return err
		}
	} else {
		pk, sk, err = scheme.KeyGen(nil, *activation, numActive)
		if err != nil {
			return err
		}
	}

	skBytes, err := encodeKey(sk, *minimal)
	if err != nil {
		return err
	}
	pkBytes, err := xmss.EncodePublicKey(pk)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, skBytes, 0600); err != nil {
		return err
	}
	if err := os.WriteFile(*out+".pub", pkBytes, 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d bytes) and %s.pub (%d bytes)\n", *out, len(skBytes), *out, len(pkBytes))
	return nil
}

func encodeKey(sk *xmss.SecretKey, minimal bool) ([]byte, error) {
	if minimal {
		return xmss.EncodeSecretKeyMinimal(sk)
	}
	return xmss.EncodeSecretKey(sk)
}

func cmdSign(args []string) error {
	fs := flag.NewFlagSet("sign", flag.ContinueOnError)
	skPath := fs.String("sk", "", "secret key path")
	epoch := fs.Uint64("epoch", 0, "epoch to sign at")
	msgHex := fs.String("msg", "", "message in hex")
	out := fs.String("out", "", "signature output path")
	autoAdvance := fs.Bool("auto-advance", false, "advance the preparation window to cover the epoch")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *skPath == "" || *out == "" {
		return errors.New("sign: --sk and --out are required")
	}
	msg, err := parseMessage(*msgHex)
	if err != nil {
		return err
	}

	skBytes, err := os.ReadFile(*skPath)
	if err != nil {
		return err
	}
	sk, err := xmss.DecodeSecretKey(skBytes)
	if err != nil {
		return err
	}
	scheme, err := xmss.NewScheme(sk.Params)
	if err != nil {
		return err
	}

	if *autoAdvance {
		if err := scheme.PrepareFor(sk, *epoch); err != nil {
			return err
		}
	}
	sig, err := scheme.Sign(sk, *epoch, msg)
	if err != nil {
		return err
	}
	sigBytes, err := xmss.EncodeSignature(sig, sk.Params)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, sigBytes, 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d bytes)\n", *out, len(sigBytes))
	return nil
}

func cmdVerify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	pkPath := fs.String("pk", "", "public key path")
	epoch := fs.Uint64("epoch", 0, "epoch the signature claims")
	msgHex := fs.String("msg", "", "message in hex")
	sigPath := fs.String("sig", "", "signature path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *pkPath == "" || *sigPath == "" {
		return errors.New("verify: --pk and --sig are required")
	}
	msg, err := parseMessage(*msgHex)
	if err != nil {
		return err
	}

	pkBytes, err := os.ReadFile(*pkPath)
	if err != nil {
		return err
	}
	pk, err := xmss.DecodePublicKey(pkBytes)
	if err != nil {
		return err
	}
	scheme, err := xmss.NewScheme(pk.Params)
	if err != nil {
		return err
	}

	sigBytes, err := os.ReadFile(*sigPath)
	if err != nil {
		return err
	}
	sig, err := xmss.DecodeSignature(sigBytes, pk.Params)
	if err != nil {
		return err
	}

	ok, err := scheme.Verify(pk, *epoch, msg, sig)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("signature is invalid")
	}
	fmt.Println("signature is valid")
	return nil
}

func cmdInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	keyPath := fs.String("key", "", "key path (public or secret)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *keyPath == "" {
		return errors.New("inspect: --key is required")
	}
	b, err := os.ReadFile(*keyPath)
	if err != nil {
		return err
	}

	if pk, err := xmss.DecodePublicKey(b); err == nil {
		root, _ := xmss.EncodePublicKey(pk)
		fmt.Printf("public key\n  params: %s\n  root:   %s\n",
			pk.Params, hexutil.Encode(root[:len(root)-1]))
		return nil
	}

	sk, err := xmss.DecodeSecretKey(b)
	if err != nil {
		return fmt.Errorf("not a recognized key: %w", err)
	}
	form := "full"
	if sk.Minimal() {
		form = "minimal"
	}
	fmt.Printf("secret key (%s)\n  params:     %s\n  activation: %d\n  epochs:     %d\n  window:     [%d, %d)\n",
		form, sk.Params, sk.ActivationEpoch, sk.NumActiveEpochs,
		sk.Prep.WindowStart, sk.Prep.WindowEnd)
	return nil
}
