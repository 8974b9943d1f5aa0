package coordinator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/cache"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/inbox"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/messaging"
)

func TestRouter_RoutesAreDeduplicated(t *testing.T) {
	ctx := context.Background()
	bus := messaging.NewMemoryBus()
	router := NewRouter(bus, inbox.New(cache.NewMemoryCache("test"), time.Hour))

	calls := 0
	router.Handle("t", "test", func(context.Context, messaging.Message) error {
		calls++
		return nil
	})
	for _, route := range router.Routes() {
		bus.Register(route.Topic, route.Handler)
	}

	msg := messaging.Message{ID: "m1", Topic: "t", Headers: map[string]string{}}
	require.NoError(t, bus.Publish(ctx, msg))
	require.NoError(t, bus.Publish(ctx, msg))
	assert.Equal(t, 1, calls)
}

func TestRouter_RunStopsWhenWorkerFails(t *testing.T) {
	router := NewRouter(messaging.NewMemoryBus(), nil)
	router.Handle("t", "test", func(context.Context, messaging.Message) error { return nil })

	boom := errors.New("boom")
	router.Go("failing", func(context.Context) error { return boom })

	done := make(chan error, 1)
	go func() { done <- router.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, boom)
	case <-time.After(5 * time.Second):
		t.Fatal("router did not stop")
	}
}

func TestRouter_RunReturnsOnCancel(t *testing.T) {
	router := NewRouter(messaging.NewMemoryBus(), nil)
	router.Handle("t", "test", func(context.Context, messaging.Message) error { return nil })
	router.Go("idle", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- router.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("router did not stop")
	}
}
