package genstore

import (
	"context"
	"sync"
	"testing"
)

func TestLocalSnapshotManyIncludesAllAndZeroForMissing(t *testing.T) {
	ctx := context.Background()
	s := NewLocalGenStore()
	t.Cleanup(func() { _ = s.Close(ctx) })

	// bump b twice -> epoch=2
	for i := 0; i < 2; i++ {
		if _, err := s.Bump(ctx, "b"); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.SnapshotMany(ctx, []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if got["a"] != 0 || got["b"] != 2 || got["c"] != 0 {
		t.Fatalf("got=%v want a=0,b=2,c=0", got)
	}
	if len(got) != 3 {
		t.Fatalf("missing keys must be present with 0, got %v", got)
	}
}

func TestLocalSnapshotManyDoesNotMutateInput(t *testing.T) {
	ctx := context.Background()
	s := NewLocalGenStore()

	in := []string{"y", "x"}
	cp := append([]string(nil), in...)
	if _, err := s.SnapshotMany(ctx, in); err != nil {
		t.Fatal(err)
	}
	for i := range in {
		if in[i] != cp[i] {
			t.Fatalf("input mutated at %d: %q -> %q", i, cp[i], in[i])
		}
	}
}

func TestLocalBumpStartsAtOneAndIsMonotonic(t *testing.T) {
	ctx := context.Background()
	s := NewLocalGenStore()

	g, _ := s.Bump(ctx, "k")
	if g != 1 {
		t.Fatalf("first bump should create epoch 1, got %d", g)
	}

	const workers, per = 8, 250
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < per; j++ {
				_, _ = s.Bump(ctx, "k")
			}
		}()
	}
	wg.Wait()

	if g, _ := s.Snapshot(ctx, "k"); g != 1+workers*per {
		t.Fatalf("lost increments: got %d want %d", g, 1+workers*per)
	}
	if s.Len() != 1 {
		t.Fatalf("Len=%d", s.Len())
	}
}
