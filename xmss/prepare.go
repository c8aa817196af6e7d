package xmss

import (
	"github.com/eth2030/leansig/metrics"
)

// SubtreeDescriptor identifies one materialised subtree of the activation
// interval, [Start, End).
type SubtreeDescriptor struct {
	Start uint64
	End   uint64
}

// PreparationState tracks the sliding window of epochs a key can currently
// sign at. The window widens by one subtree per advancement; a full key
// retains every materialised subtree while a minimal key drops the oldest.
// Invariant: WindowStart <= epoch_to_sign < WindowEnd for every sign call.
type PreparationState struct {
	WindowStart uint64
	WindowEnd   uint64
	Subtrees    []SubtreeDescriptor
}

// Contains reports whether epoch lies inside the prepared window.
func (p *PreparationState) Contains(epoch uint64) bool {
	return epoch >= p.WindowStart && epoch < p.WindowEnd
}

var prepareAdvances = metrics.GetCounter("leansig/prepare/advances")

// initialPreparation covers the first subtree of the activation interval.
func initialPreparation(activation, numActive uint64) PreparationState {
	end := activation + numActive
	windowEnd := activation + SubtreeWidth
	if windowEnd > end {
		windowEnd = end
	}
	return PreparationState{
		WindowStart: activation,
		WindowEnd:   windowEnd,
		Subtrees:    []SubtreeDescriptor{{Start: activation, End: windowEnd}},
	}
}

// AdvancePreparation extends the prepared window by one subtree. Advancing a
// window that already reaches the end of the activation interval returns
// ErrLifetimeExhausted; the state is terminal and callers must treat the
// error as such rather than retry. Concurrent calls on one key are a data
// race; callers serialise externally.
func (s *Scheme) AdvancePreparation(sk *SecretKey) error {
	if sk.Params != s.params {
		return ErrParameterMismatch
	}
	limit := sk.ActivationEpoch + sk.NumActiveEpochs
	if sk.Prep.WindowEnd >= limit {
		return ErrLifetimeExhausted
	}

	start := sk.Prep.WindowEnd
	end := start + SubtreeWidth
	if end > limit {
		end = limit
	}
	sk.Prep.Subtrees = append(sk.Prep.Subtrees, SubtreeDescriptor{Start: start, End: end})
	sk.Prep.WindowEnd = end
	if sk.minimal {
		// Minimal keys hold one subtree at a time; the window slides.
		sk.Prep.WindowStart = start
		sk.Prep.Subtrees = sk.Prep.Subtrees[len(sk.Prep.Subtrees)-1:]
	}
	prepareAdvances.Inc()
	return nil
}

// PrepareFor advances the window until it contains epoch. At most one
// advancement per subtree between the current window end and the epoch is
// performed, so the loop is bounded by the subtree count of the activation
// interval. Epochs the window has already slid past (minimal keys only)
// return ErrEpochNotPrepared.
func (s *Scheme) PrepareFor(sk *SecretKey, epoch uint64) error {
	if epoch < sk.ActivationEpoch ||
		epoch >= sk.ActivationEpoch+sk.NumActiveEpochs {
		return ErrEpochOutOfRange
	}
	if epoch < sk.Prep.WindowStart {
		return ErrEpochNotPrepared
	}
	for !sk.Prep.Contains(epoch) {
		if err := s.AdvancePreparation(sk); err != nil {
			return err
		}
	}
	return nil
}
