package task

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGoClosesDoneAfterRun(t *testing.T) {
	ran := make(chan struct{})
	h := Go(context.Background(), func(h *Handle) {
		close(ran)
	})
	h.Wait()

	select {
	case <-ran:
	default:
		t.Fatal("function did not run before Done closed")
	}
	require.NotEmpty(t, h.ID())
	require.False(t, h.Cancelled())
}

func TestContextCancelSetsFlag(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})

	h := Go(ctx, func(h *Handle) {
		<-release
	})
	cancel()

	require.Eventually(t, h.Cancelled, time.Second, 5*time.Millisecond)
	close(release)
	h.Wait()
}

func TestDrain(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	require.False(t, Drain(&wg, 20*time.Millisecond))

	wg.Done()
	require.True(t, Drain(&wg, time.Second))
}

func TestHandleIDsAreUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := NewHandle().ID()
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}

func TestCancelClosesStopping(t *testing.T) {
	h := NewHandle()
	select {
	case <-h.Stopping():
		t.Fatal("stopping closed before cancel")
	default:
	}

	h.Cancel()
	h.Cancel()
	require.True(t, h.Cancelled())
	select {
	case <-h.Stopping():
	default:
		t.Fatal("stopping not closed after cancel")
	}
}

func TestContextCancelClosesStopping(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := Go(ctx, func(h *Handle) {
		<-h.Stopping()
	})
	cancel()

	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("run did not observe the context cancel")
	}
}
