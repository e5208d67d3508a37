package anchor

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentReleaseFinalizesExactlyOnce(t *testing.T) {
	// The last two handles in a two-node component are dropped from
	// different goroutines; every payload must finalize exactly once.
	for i := 0; i < 200; i++ {
		fin := &atomic.Int64{}
		mk := func(name string) *Node[*entity] {
			e := newEntity(name)
			e.finalized = fin
			return New(e)
		}
		a, b := mk("a"), mk("b")
		link(a.Downgrade(), b.Downgrade())

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, a.Release())
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, b.Release())
		}()
		wg.Wait()

		assert.EqualValues(t, 2, fin.Load(), "iteration %d", i)
	}
}

func TestUpgradeNeverResurrectsCollectedCell(t *testing.T) {
	// Hammer Upgrade against the release of the last handle. Every upgrade
	// either wins (and must then be releasable) or observes the cell dead;
	// it must never obtain a handle to an already-finalized payload.
	for i := 0; i < 200; i++ {
		fin := &atomic.Int64{}
		e := newEntity("x")
		e.finalized = fin
		n := New(e)
		weak := n.Downgrade()

		var wg sync.WaitGroup
		wg.Add(2)
		var winners []*Node[*entity]
		var mu sync.Mutex
		go func() {
			defer wg.Done()
			assert.NoError(t, n.Release())
		}()
		go func() {
			defer wg.Done()
			for {
				h, ok := weak.Upgrade()
				if !ok {
					return
				}
				assert.Zero(t, fin.Load(), "upgraded a finalized cell")
				mu.Lock()
				winners = append(winners, h)
				mu.Unlock()
				if len(winners) > 4 {
					return
				}
			}
		}()
		wg.Wait()

		for _, h := range winners {
			require.NoError(t, h.Release())
		}
		_, ok := weak.Upgrade()
		assert.False(t, ok)
		assert.EqualValues(t, 1, fin.Load())
	}
}

func TestGuardExcludesConcurrentAccess(t *testing.T) {
	a := New(newEntity("a"))
	defer a.Release()
	weak := a.Downgrade()

	var inside atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.NoError(t, weak.With(func(e *entity) error {
					assert.EqualValues(t, 1, inside.Add(1), "two guards held at once")
					inside.Add(-1)
					return nil
				}))
			}
		}()
	}
	wg.Wait()
}

func TestLinkCannotReanchorScannedComponent(t *testing.T) {
	// m1 -> m2 is being collected; the sweep is paused from inside m2's
	// adjacency enumeration, after m1 has already been scanned. A Link from
	// the live node l into m1 must not land in that window: the sweep holds
	// m1's payload lock, so the link's target half blocks until the
	// collection commits and then fails with ErrCollected. The source half
	// is rolled back, leaving no edge into freed cells.
	fin := &atomic.Int64{}
	mk := func(name string) *Node[*entity] {
		e := newEntity(name)
		e.finalized = fin
		return New(e)
	}
	m1, m2, l := mk("m1"), mk("m2"), mk("l")
	m1w, m2w, lw := m1.Downgrade(), m2.Downgrade(), l.Downgrade()
	link(m1w, m2w)

	armed := &atomic.Bool{}
	hit := make(chan struct{})
	gate := make(chan struct{})
	require.NoError(t, m2w.With(func(e *entity) error {
		e.onIncoming = func() {
			if armed.CompareAndSwap(true, false) {
				hit <- struct{}{}
				<-gate
			}
		}
		return nil
	}))

	// Drop m2's handle first so m1's release seeds the sweep; m2 is then the
	// second cell scanned.
	require.NoError(t, m2.Release())
	armed.Store(true)

	releaseDone := make(chan error, 1)
	go func() {
		releaseDone <- m1.Release()
	}()
	<-hit

	// The sweep is parked holding m1's and m2's payload locks. Start the
	// link; its source half lands on l, its target half blocks on m1.
	linkDone := make(chan error, 1)
	go func() {
		linkDone <- func() error {
			if err := lw.With(func(e *entity) error {
				e.succs = append(e.succs, m1w)
				return nil
			}); err != nil {
				return err
			}
			if err := m1w.With(func(e *entity) error {
				e.preds = append(e.preds, lw)
				return nil
			}); err != nil {
				_ = lw.With(func(e *entity) error {
					e.succs = e.succs[:len(e.succs)-1]
					return nil
				})
				return err
			}
			return nil
		}()
	}()

	close(gate)
	require.NoError(t, <-releaseDone)
	assert.ErrorIs(t, <-linkDone, ErrCollected)

	assert.EqualValues(t, 2, fin.Load(), "m1 and m2 were freed together")
	_, ok := m1w.Upgrade()
	assert.False(t, ok)

	outgoing := 0
	for range lw.Outgoing() {
		outgoing++
	}
	assert.Zero(t, outgoing, "the half-landed edge was rolled back")
	require.NoError(t, l.Release())
}

func TestConcurrentEdgeMutationAndCollection(t *testing.T) {
	// Writers keep linking fresh nodes onto a hub while handles drop; edge
	// mutation happens under payload locks, so collector walks must always
	// see a consistent adjacency and tear each node down exactly once.
	fin := &atomic.Int64{}
	hubE := newEntity("hub")
	hubE.finalized = fin
	hub := New(hubE)
	hubRef := hub.Downgrade()

	const spokes = 32
	var wg sync.WaitGroup
	for i := 0; i < spokes; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e := newEntity("spoke")
			e.finalized = fin
			n := New(e)
			link(hubRef, n.Downgrade())
			assert.NoError(t, n.Release())
		}()
	}
	wg.Wait()

	require.NoError(t, hub.Release())
	assert.EqualValues(t, spokes+1, fin.Load(), "hub and every spoke finalize once")
}
