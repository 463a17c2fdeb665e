package service

import (
	"sync"
	"testing"
	"time"
)

func TestRoomLocks(t *testing.T) {
	locks := NewRoomLocks()

	t.Run("same room serializes", func(t *testing.T) {
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			inside  int
			maxSeen int
		)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := locks.Lock("room-1")
				defer unlock()

				mu.Lock()
				inside++
				if inside > maxSeen {
					maxSeen = inside
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				inside--
				mu.Unlock()
			}()
		}
		wg.Wait()

		if maxSeen != 1 {
			t.Errorf("expected one holder at a time, saw %d", maxSeen)
		}
	})

	t.Run("different rooms do not block", func(t *testing.T) {
		unlockA := locks.Lock("room-a")
		defer unlockA()

		done := make(chan struct{})
		go func() {
			unlock := locks.Lock("room-b")
			unlock()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("locking room-b blocked on room-a")
		}
	})

	t.Run("entries are released", func(t *testing.T) {
		unlock := locks.Lock("room-c")
		unlock()

		if n := locks.size(); n != 0 {
			t.Errorf("expected empty lock table, got %d entries", n)
		}
	})
}
