package metrics

import (
	"sync"
	"testing"
)

func TestCounterBasics(t *testing.T) {
	c := NewCounter("test/counter")
	c.Inc()
	c.Add(5)
	c.Add(-3) // ignored
	if c.Value() != 6 {
		t.Errorf("Value = %d, want 6", c.Value())
	}
	if c.Name() != "test/counter" {
		t.Errorf("Name = %q", c.Name())
	}
}

func TestCounterConcurrent(t *testing.T) {
	c := NewCounter("test/concurrent")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				c.Inc()
			}
		}()
	}
	wg.Wait()
	if c.Value() != 8000 {
		t.Errorf("Value = %d, want 8000", c.Value())
	}
}

func TestGauge(t *testing.T) {
	g := NewGauge("test/gauge")
	g.Set(42)
	if g.Value() != 42 {
		t.Errorf("Value = %d, want 42", g.Value())
	}
	g.Set(-7)
	if g.Value() != -7 {
		t.Errorf("Value = %d, want -7", g.Value())
	}
}

func TestRegistryReuse(t *testing.T) {
	r := NewRegistry()
	a := r.Counter("x")
	b := r.Counter("x")
	if a != b {
		t.Error("registry created duplicate counters for one name")
	}
	a.Inc()
	if r.Counter("x").Value() != 1 {
		t.Error("counter state not shared through registry")
	}
}

func TestRegistrySnapshotAndNames(t *testing.T) {
	r := NewRegistry()
	r.Counter("b/count").Add(3)
	r.Gauge("a/window").Set(10)

	snap := r.Snapshot()
	if snap["b/count"] != 3 || snap["a/window"] != 10 {
		t.Errorf("Snapshot = %v", snap)
	}

	names := r.Names()
	if len(names) != 2 || names[0] != "a/window" || names[1] != "b/count" {
		t.Errorf("Names = %v", names)
	}
}

func TestDefaultRegistryHelpers(t *testing.T) {
	c := GetCounter("pkg/helper")
	c.Inc()
	if DefaultRegistry().Counter("pkg/helper").Value() < 1 {
		t.Error("default registry helper not wired to default registry")
	}
	GetGauge("pkg/gauge").Set(2)
	if DefaultRegistry().Gauge("pkg/gauge").Value() != 2 {
		t.Error("gauge helper not wired")
	}
}
