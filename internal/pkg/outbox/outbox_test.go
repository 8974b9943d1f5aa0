package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/messaging"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/sqlstore"
)

type tickClock struct{ t time.Time }

func (c *tickClock) Now() time.Time {
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func newTestStore(t *testing.T) (*sqlstore.DB, *Store) {
	t.Helper()
	ctx := context.Background()

	db, err := sqlstore.Open(ctx, sqlstore.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(ctx, Schema...))

	return db, NewStore(db, &tickClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)})
}

func msg(id, key string) messaging.Message {
	return messaging.Message{ID: id, Topic: messaging.TopicPaymentRequest, Key: key, Payload: []byte(`{}`)}
}

type recordingPublisher struct {
	published []string
	failIDs   map[string]bool
}

func (p *recordingPublisher) Publish(_ context.Context, m messaging.Message) error {
	if p.failIDs[m.ID] {
		return errors.New("broker down")
	}
	p.published = append(p.published, m.ID)
	return nil
}

func TestStore_RolledBackMessageIsNeverRelayed(t *testing.T) {
	db, store := newTestStore(t)
	ctx := context.Background()

	err := db.WithinTx(ctx, func(ctx context.Context) error {
		require.NoError(t, store.Publish(ctx, msg("m1", "o1")))
		return errors.New("rollback")
	})
	require.Error(t, err)

	n, err := store.CountPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRelay_FlushPublishesInOrderAndMarks(t *testing.T) {
	db, store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, db.WithinTx(ctx, func(ctx context.Context) error {
		for _, id := range []string{"m1", "m2", "m3"} {
			if err := store.Publish(ctx, msg(id, "o-"+id)); err != nil {
				return err
			}
		}
		return nil
	}))

	pub := &recordingPublisher{}
	relay := NewRelay(store, pub, time.Second)

	delivered, err := relay.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, delivered)
	assert.Equal(t, []string{"m1", "m2", "m3"}, pub.published)

	delivered, err = relay.Flush(ctx)
	require.NoError(t, err)
	assert.Zero(t, delivered)
}

func TestRelay_FailedPublishHoldsBackSameKey(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Publish(ctx, msg("a1", "order-a")))
	require.NoError(t, store.Publish(ctx, msg("b1", "order-b")))
	require.NoError(t, store.Publish(ctx, msg("a2", "order-a")))

	pub := &recordingPublisher{failIDs: map[string]bool{"a1": true}}
	relay := NewRelay(store, pub, time.Second)

	delivered, err := relay.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, delivered)
	assert.Equal(t, []string{"b1"}, pub.published)

	pub.failIDs = nil
	delivered, err = relay.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, delivered)
	assert.Equal(t, []string{"b1", "a1", "a2"}, pub.published)
}

func TestStore_KeepsHeaders(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	m := msg("m1", "o1")
	m.Headers = map[string]string{"x-request-id": "req-1"}
	require.NoError(t, store.Publish(ctx, m))

	pending, err := store.Pending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "req-1", pending[0].Headers["x-request-id"])
	assert.Equal(t, "o1", pending[0].Key)
}

var _ domain.Clock = (*tickClock)(nil)
