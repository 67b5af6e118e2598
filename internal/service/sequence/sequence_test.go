package sequence

import (
	"sync"
	"testing"
)

func TestGenerator_Next(t *testing.T) {
	g := New()

	if got := g.Next("http"); got != "http-val-1" {
		t.Errorf("expected http-val-1, got %s", got)
	}
	if got := g.Next("kafka"); got != "kafka-val-2" {
		t.Errorf("expected kafka-val-2, got %s", got)
	}
}

func TestGenerator_ConcurrentUnique(t *testing.T) {
	g := New()

	const workers, perWorker = 8, 100
	ids := make(chan string, workers*perWorker)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				ids <- g.Next("src")
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
	if len(seen) != workers*perWorker {
		t.Errorf("expected %d ids, got %d", workers*perWorker, len(seen))
	}
}
