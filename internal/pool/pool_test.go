package pool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestMapPreservesOrder(t *testing.T) {
	out := make([]int, 100)
	err := Map(context.Background(), 100, 8, func(i int) error {
		out[i] = i * i
		return nil
	})
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	for i, v := range out {
		if v != i*i {
			t.Fatalf("out[%d] = %d, want %d", i, v, i*i)
		}
	}
}

func TestMapPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	err := Map(context.Background(), 50, 4, func(i int) error {
		if i == 17 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestMapSequentialFallback(t *testing.T) {
	var calls atomic.Int64
	err := Map(context.Background(), 1, 0, func(i int) error {
		calls.Add(1)
		return nil
	})
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestMapHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Map(ctx, 10, 1, func(i int) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
