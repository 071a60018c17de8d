package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/framewm/internal/platform"
)

var (
	winA = platform.NewWindowID(1, 1)
	winB = platform.NewWindowID(2, 1)
)

func TestDrainReturnsEventsInPublishOrder(t *testing.T) {
	r := NewRouter(64, 8)
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		require.NoError(t, r.Publish(ctx, Event{Target: winA, Kind: User, P1: i}))
		require.NoError(t, r.Publish(ctx, Event{Target: winB, Kind: User, P1: -i}))
	}

	got := r.Take(winA, 0)
	require.Len(t, got, 10)
	for i, ev := range got {
		assert.Equal(t, winA, ev.Target)
		assert.Equal(t, i+1, ev.P1)
	}
	assert.Equal(t, 10, r.Pending(winB.Slot()))

	gotB := r.Take(winB, 0)
	require.Len(t, gotB, 10)
	for _, ev := range gotB {
		assert.Equal(t, winB, ev.Target)
		assert.Less(t, ev.P1, 0)
	}
	assert.Equal(t, 0, r.Len())
}

func TestTakeWithLimitResumesWhereItStopped(t *testing.T) {
	r := NewRouter(16, 4)
	for i := 0; i < 5; i++ {
		require.True(t, r.TryPublish(Event{Target: winA, Kind: User, P1: i}))
	}
	first := r.Take(winA, 2)
	rest := r.Take(winA, 0)
	require.Len(t, first, 2)
	require.Len(t, rest, 3)
	assert.Equal(t, 2, rest[0].P1)
}

func TestFullRingAppliesBackpressure(t *testing.T) {
	r := NewRouter(4, 4)
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		require.True(t, r.TryPublish(Event{Target: winA, Kind: User, P1: i}))
	}
	assert.False(t, r.TryPublish(Event{Target: winB, Kind: User}))

	published := make(chan error, 1)
	go func() {
		published <- r.Publish(ctx, Event{Target: winB, Kind: User, P1: 99})
	}()

	select {
	case <-published:
		t.Fatal("publish should wait while the ring is full")
	case <-time.After(20 * time.Millisecond):
	}

	require.Len(t, r.Take(winA, 0), 4)
	select {
	case err := <-published:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("publish did not complete after space freed")
	}
	got := r.Take(winB, 0)
	require.Len(t, got, 1)
	assert.Equal(t, 99, got[0].P1)
}

func TestPublishGivesUpWhenContextEnds(t *testing.T) {
	r := NewRouter(1, 4)
	require.True(t, r.TryPublish(Event{Target: winA, Kind: User}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, r.Publish(ctx, Event{Target: winA, Kind: User}))
}

func TestFlushAndStaleGenerations(t *testing.T) {
	r := NewRouter(16, 4)
	old := platform.NewWindowID(1, 1)
	fresh := platform.NewWindowID(1, 2)

	require.True(t, r.TryPublish(Event{Target: old, Kind: User, P1: 1}))
	require.True(t, r.TryPublish(Event{Target: fresh, Kind: User, P1: 2}))

	got := r.Take(fresh, 0)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].P1)

	require.True(t, r.TryPublish(Event{Target: fresh, Kind: User, P1: 3}))
	assert.Equal(t, 1, r.Flush(1))
	assert.Empty(t, r.Take(fresh, 0))
}

func TestPublishWithoutTargetFails(t *testing.T) {
	r := NewRouter(4, 4)
	assert.ErrorIs(t, r.Publish(context.Background(), Event{Kind: User}), ErrNoTarget)
}

func TestSlowWindowDoesNotBlockOthers(t *testing.T) {
	r := NewRouter(4, 4)
	require.True(t, r.TryPublish(Event{Target: winA, Kind: User}))

	for round := 0; round < 5; round++ {
		for i := 0; i < 3; i++ {
			require.True(t, r.TryPublish(Event{Target: winB, Kind: User, P1: round*3 + i}),
				"round %d event %d", round, i)
		}
		assert.False(t, r.TryPublish(Event{Target: winB, Kind: User}), "ring is full")
		got := r.Take(winB, 0)
		require.Len(t, got, 3)
		assert.Equal(t, round*3, got[0].P1)
		assert.Equal(t, 1, r.Len())
	}

	assert.Equal(t, 1, r.Pending(winA.Slot()))
	assert.Len(t, r.Take(winA, 0), 1)
	assert.Equal(t, 0, r.Len())
}
