package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/PablitoTheChicken/ForReal-Server/internal/testutil"
)

type recordingObserver struct {
	mu        sync.Mutex
	hits      int
	misses    int
	evictions int
}

func (o *recordingObserver) RecordCacheLookup(_ string, hit bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if hit {
		o.hits++
	} else {
		o.misses++
	}
}

func (o *recordingObserver) RecordCacheEviction(_ string, count int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.evictions += count
}

func newClock() *testutil.ManualClock {
	return testutil.NewManualClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
}

func TestGetAfterPutWithinTTL(t *testing.T) {
	clock := newClock()
	c := New[string]("fixtures", 5*time.Minute, WithClock(clock.Now))

	c.Put("k", "payload")
	clock.Advance(5*time.Minute - time.Nanosecond)

	got, ok := c.Get("k")
	if !ok || got != "payload" {
		t.Fatalf("expected hit with stored payload, got %q ok=%v", got, ok)
	}
}

func TestGetAtTTLIsMiss(t *testing.T) {
	clock := newClock()
	c := New[string]("scores", time.Minute, WithClock(clock.Now))

	c.Put("k", "payload")
	clock.Advance(time.Minute)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss once ttl elapsed")
	}
	if c.Len() != 1 {
		t.Fatalf("expected expired entry kept until sweep, got len %d", c.Len())
	}
}

func TestPutOverwritesAndRefreshes(t *testing.T) {
	clock := newClock()
	c := New[int]("x", time.Minute, WithClock(clock.Now))

	c.Put("k", 1)
	clock.Advance(50 * time.Second)
	c.Put("k", 2)
	clock.Advance(50 * time.Second)

	got, ok := c.Get("k")
	if !ok || got != 2 {
		t.Fatalf("expected refreshed value 2, got %d ok=%v", got, ok)
	}
}

func TestSweepRemovesExpired(t *testing.T) {
	clock := newClock()
	obs := &recordingObserver{}
	c := New[int]("x", time.Minute, WithClock(clock.Now), WithObserver(obs))

	c.Put("old", 1)
	clock.Advance(2 * time.Minute)
	c.Put("new", 2)

	if removed := c.Sweep(); removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 entry left, got %d", c.Len())
	}
	if obs.evictions != 1 {
		t.Fatalf("expected eviction reported, got %d", obs.evictions)
	}
}

func TestMaxEntriesEvictsOldest(t *testing.T) {
	clock := newClock()
	c := New[int]("x", time.Hour, WithClock(clock.Now), WithMaxEntries(2))

	c.Put("a", 1)
	clock.Advance(time.Second)
	c.Put("b", 2)
	clock.Advance(time.Second)
	c.Put("c", 3)

	if c.Len() != 2 {
		t.Fatalf("expected cap of 2, got %d", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected oldest entry evicted")
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatal("expected newest entry present")
	}

	// overwriting an existing key never evicts
	c.Put("b", 20)
	if _, ok := c.Get("c"); !ok {
		t.Fatal("expected overwrite to keep other entries")
	}
}

func TestObserverCountsHitsAndMisses(t *testing.T) {
	obs := &recordingObserver{}
	c := New[int]("x", time.Minute, WithObserver(obs))

	c.Get("missing")
	c.Put("k", 1)
	c.Get("k")

	if obs.hits != 1 || obs.misses != 1 {
		t.Fatalf("expected 1 hit and 1 miss, got %d/%d", obs.hits, obs.misses)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New[int]("x", time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Put("k", i)
			c.Get("k")
			c.Sweep()
		}(i)
	}
	wg.Wait()
	if _, ok := c.Get("k"); !ok {
		t.Fatal("expected last writer to be stored")
	}
}

func TestKeyIsDeterministic(t *testing.T) {
	type k struct {
		Date    string   `json:"date"`
		Leagues []string `json:"leagues"`
	}
	a := Key("fixtures", k{Date: "2024-05-01", Leagues: []string{"1", "2"}})
	b := Key("fixtures", k{Date: "2024-05-01", Leagues: []string{"1", "2"}})
	if a != b {
		t.Fatalf("expected equal keys, got %s vs %s", a, b)
	}
	if a != `fixtures:{"date":"2024-05-01","leagues":["1","2"]}` {
		t.Fatalf("unexpected key encoding %s", a)
	}
}
