package xmss

import "errors"

// Error kinds surfaced by the scheme. Verification returns a plain false for
// cryptographic mismatch; these errors cover structural and state failures
// only.
var (
	// ErrParameterMismatch reports operands carrying incompatible
	// parameter sets.
	ErrParameterMismatch = errors.New("xmss: operands carry incompatible parameters")

	// ErrEpochOutOfRange reports an epoch outside the key's activation
	// interval.
	ErrEpochOutOfRange = errors.New("xmss: epoch outside the key's activation interval")

	// ErrEpochTooLarge reports an epoch at or beyond 2^lifetime_log2.
	ErrEpochTooLarge = errors.New("xmss: epoch beyond the scheme lifetime")

	// ErrEpochNotPrepared reports a sign attempt outside the preparation
	// window when auto-advance is not in play.
	ErrEpochNotPrepared = errors.New("xmss: preparation window does not contain epoch")

	// ErrLifetimeExhausted reports advancement past the end of the active
	// range. The condition is terminal; callers must not retry.
	ErrLifetimeExhausted = errors.New("xmss: preparation advanced past the active range")

	// ErrEncodingRejected reports a target-sum sampler that exhausted its
	// retry budget.
	ErrEncodingRejected = errors.New("xmss: target-sum sampler exhausted its retry budget")

	// ErrDeserialization reports a byte stream that does not match the
	// expected layout or carries an unknown tag.
	ErrDeserialization = errors.New("xmss: malformed serialized object")
)
