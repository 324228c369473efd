package sessions_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-frontdoor/sessions"
	"github.com/stretchr/testify/require"
)

func TestLocker_SerializesSameBrowser(t *testing.T) {
	l := sessions.NewLocker()

	var inFlight, maxInFlight int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("browser-1")
			defer unlock()

			n := atomic.AddInt32(&inFlight, 1)
			for {
				m := atomic.LoadInt32(&maxInFlight)
				if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), maxInFlight)
	require.Zero(t, l.Len(), "idle browsers should not keep lock entries")
}

func TestLocker_DistinctBrowsersDoNotBlock(t *testing.T) {
	l := sessions.NewLocker()

	unlockA := l.Lock("browser-a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := l.Lock("browser-b")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different browser blocked")
	}
}

func TestLocker_UnlockIsIdempotent(t *testing.T) {
	l := sessions.NewLocker()

	unlock := l.Lock("browser-1")
	unlock()
	unlock()

	require.Zero(t, l.Len())
	l.Lock("browser-1")()
}
