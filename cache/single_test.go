package cache

import (
	"sync"
	"testing"
	"time"
)

func TestSingle_EmptyMisses(t *testing.T) {
	c := NewSingle[string](time.Second)

	if _, ok := c.Get(); ok {
		t.Error("expected miss on empty cache")
	}
	if c.HasEntry() {
		t.Error("expected no entry on empty cache")
	}
	if _, ok := c.Age(); ok {
		t.Error("expected no age on empty cache")
	}
}

func TestSingle_SetAndGet(t *testing.T) {
	c := NewSingle[string](time.Second)
	c.Set("snapshot-a")

	got, ok := c.Get()
	if !ok {
		t.Fatal("expected hit after set")
	}
	if got != "snapshot-a" {
		t.Errorf("expected snapshot-a, got %q", got)
	}
	if !c.HasEntry() {
		t.Error("expected entry to be present")
	}
	if age, ok := c.Age(); !ok || age < 0 {
		t.Errorf("expected non-negative age, got %v (present=%v)", age, ok)
	}
}

func TestSingle_Expiration(t *testing.T) {
	c := NewSingle[string](50 * time.Millisecond)
	c.Set("snapshot-a")

	if _, ok := c.Get(); !ok {
		t.Fatal("expected hit before TTL")
	}

	time.Sleep(100 * time.Millisecond)

	if _, ok := c.Get(); ok {
		t.Error("expected miss after TTL")
	}
	// Expires in place: the stale entry is still there until overwritten.
	if !c.HasEntry() {
		t.Error("expected stale entry to remain present")
	}

	c.Set("snapshot-b")
	got, ok := c.Get()
	if !ok || got != "snapshot-b" {
		t.Errorf("expected snapshot-b after re-set, got %q (hit=%v)", got, ok)
	}
}

func TestSingle_SetReplaces(t *testing.T) {
	c := NewSingle[string](time.Second)
	c.Set("a")
	c.Set("b")

	got, ok := c.Get()
	if !ok || got != "b" {
		t.Errorf("expected latest value b, got %q (hit=%v)", got, ok)
	}
}

func TestSingle_Clear(t *testing.T) {
	c := NewSingle[int](time.Second)
	c.Set(7)
	c.Clear()

	if c.HasEntry() {
		t.Error("expected no entry after clear")
	}
	if _, ok := c.Get(); ok {
		t.Error("expected miss after clear")
	}
}

func TestSingle_ConcurrentGetSet(t *testing.T) {
	c := NewSingle[int](time.Second)
	c.Set(0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(v int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set(v)
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if v, ok := c.Get(); ok && (v < 0 || v >= 8) {
					t.Errorf("observed torn value %d", v)
					return
				}
			}
		}()
	}
	wg.Wait()
}
