// Package internal contains integration tests that exercise the spool
// engine the way deployed producers and consumers use it: several
// goroutines, independent spool handles over one directory tree, and a
// watcher observing the traffic.
package internal

import (
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/spoolio/spoolio/internal/errors"
	"github.com/spoolio/spoolio/internal/spool"
)

// TestProducerConsumerPipeline runs concurrent producers and consumers
// against one spool directory and verifies every payload is processed
// exactly once.
func TestProducerConsumerPipeline(t *testing.T) {
	const (
		producers        = 4
		consumers        = 4
		perProducer      = 25
		expectedElements = producers * perProducer
	)

	root := t.TempDir()

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			s, err := spool.Create(root, 0o755)
			if err != nil {
				t.Errorf("producer %d: Create() error = %v", p, err)
				return
			}
			defer s.Close()

			for i := 0; i < perProducer; i++ {
				txn, err := s.Add()
				if err != nil {
					t.Errorf("producer %d: Add() error = %v", p, err)
					return
				}
				payload := fmt.Sprintf("job-%d-%d", p, i)
				if _, err := txn.File().WriteString(payload); err != nil {
					t.Errorf("producer %d: write error = %v", p, err)
					return
				}
				if err := s.Commit(txn); err != nil {
					t.Errorf("producer %d: Commit() error = %v", p, err)
					return
				}
			}
		}(p)
	}
	wg.Wait()

	var (
		mu       sync.Mutex
		payloads = make(map[string]int, expectedElements)
	)
	for c := 0; c < consumers; c++ {
		wg.Add(1)
		go func(c int) {
			defer wg.Done()
			s, err := spool.Open(root)
			if err != nil {
				t.Errorf("consumer %d: Open() error = %v", c, err)
				return
			}
			defer s.Close()

			for {
				txn, err := s.Pick()
				if errors.Is(err, errors.ErrSpoolEmpty) {
					return
				}
				if err != nil {
					t.Errorf("consumer %d: Pick() error = %v", c, err)
					return
				}
				data, err := io.ReadAll(txn.File())
				if err != nil {
					t.Errorf("consumer %d: read error = %v", c, err)
					return
				}
				if err := s.Commit(txn); err != nil {
					t.Errorf("consumer %d: Commit() error = %v", c, err)
					return
				}
				mu.Lock()
				payloads[string(data)]++
				mu.Unlock()
			}
		}(c)
	}
	wg.Wait()

	if len(payloads) != expectedElements {
		t.Fatalf("processed %d distinct payloads, want %d", len(payloads), expectedElements)
	}
	for payload, n := range payloads {
		if n != 1 {
			t.Fatalf("payload %q processed %d times", payload, n)
		}
	}
}

// TestConsumerRetryAfterRollback verifies that a failed consumer's
// rollback makes the element claimable by a different consumer handle.
func TestConsumerRetryAfterRollback(t *testing.T) {
	root := t.TempDir()

	producer, err := spool.Create(root, 0o755)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer producer.Close()

	txn, err := producer.Add()
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := txn.File().WriteString("flaky job"); err != nil {
		t.Fatal(err)
	}
	if err := producer.Commit(txn); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	key := txn.Key()

	// First consumer claims and gives up.
	c1, err := spool.Open(root)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer c1.Close()
	claimed, err := c1.Pick()
	if err != nil {
		t.Fatalf("Pick() error = %v", err)
	}
	if err := c1.Rollback(claimed); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	// Second consumer finds the element again.
	c2, err := spool.Open(root)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer c2.Close()
	retried, err := c2.Pick()
	if err != nil {
		t.Fatalf("Pick() after rollback error = %v", err)
	}
	if retried.Key() != key {
		t.Fatalf("retried key = %s, want %s", retried.Key(), key)
	}
	data, err := io.ReadAll(retried.File())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "flaky job" {
		t.Fatalf("retried payload = %q, want %q", data, "flaky job")
	}
	if err := c2.Commit(retried); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
}

// TestWatcherObservesPipeline verifies that a watcher on one handle sees
// elements published through another handle.
func TestWatcherObservesPipeline(t *testing.T) {
	root := t.TempDir()

	observer, err := spool.Create(root, 0o755)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer observer.Close()

	arrivals := make(chan spool.Event, 16)
	cancel, err := observer.Watch(func(ev spool.Event) {
		if ev.Status == spool.StatusNew {
			arrivals <- ev
		}
	})
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer cancel()

	producer, err := spool.Open(root)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer producer.Close()

	txn, err := producer.Add()
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := txn.File().WriteString("observed"); err != nil {
		t.Fatal(err)
	}
	if err := producer.Commit(txn); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	select {
	case ev := <-arrivals:
		if ev.Key != txn.Key() {
			t.Fatalf("observed key = %s, want %s", ev.Key, txn.Key())
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watcher saw no arrival for a cross-handle commit")
	}
}
