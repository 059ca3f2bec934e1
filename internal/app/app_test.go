package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/GoArmGo/UsersAPI/internal/config"
	"github.com/GoArmGo/UsersAPI/internal/logger"
	"github.com/GoArmGo/UsersAPI/internal/messaging/payloads"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeArchive struct {
	keys   []string
	bodies [][]byte
	err    error
}

func (f *fakeArchive) ArchiveEvent(_ context.Context, key string, body []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	f.bodies = append(f.bodies, body)
	return "mem://" + key, nil
}

type closeCounter struct {
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return nil
}

// fakeQueue публикатор и потребитель одновременно, как rabbitmq.Client
type fakeQueue struct {
	closeCounter
	done chan error
}

func (*fakeQueue) PublishUserEvent(context.Context, payloads.UserEventPayload) error { return nil }

func (q *fakeQueue) StartConsumingUserEvents(context.Context, func(context.Context, payloads.UserEventPayload) error) (<-chan error, error) {
	return q.done, nil
}

func TestArchiveEventHandler(t *testing.T) {
	archive := &fakeArchive{}
	handle := archiveEventHandler(archive, logger.Discard())

	userID := uuid.New()
	at := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	event := payloads.NewUserEvent(payloads.UserUpdated, userID, "ana@x.com", at)

	require.NoError(t, handle(context.Background(), event))
	require.Len(t, archive.keys, 1)
	assert.Equal(t, "user-events/"+userID.String()+"/20250301T103000.000Z-user.updated.json", archive.keys[0])

	var stored payloads.UserEventPayload
	require.NoError(t, json.Unmarshal(archive.bodies[0], &stored))
	assert.Equal(t, event.EventID, stored.EventID)
}

func TestArchiveEventHandler_PropagatesError(t *testing.T) {
	archive := &fakeArchive{err: errors.New("bucket unavailable")}
	handle := archiveEventHandler(archive, logger.Discard())

	event := payloads.NewUserEvent(payloads.UserCreated, uuid.New(), "ana@x.com", time.Now())
	assert.Error(t, handle(context.Background(), event))
}

func TestRun_UnknownModeClosesResources(t *testing.T) {
	db := &closeCounter{}
	a := NewApp(&config.Config{}, logger.Discard(), Components{DB: db})

	err := a.Run(context.Background(), "batch")
	assert.ErrorContains(t, err, "unknown mode")
	assert.Equal(t, 1, db.closed)
}

func TestRun_WorkerRequiresQueue(t *testing.T) {
	a := NewApp(&config.Config{}, logger.Discard(), Components{})

	err := a.Run(context.Background(), ModeWorker)
	assert.ErrorContains(t, err, "RABBITMQ_URL")
}

func TestShutdown_ClosesSharedQueueOnce(t *testing.T) {
	queue := &fakeQueue{}
	db := &closeCounter{}
	a := NewApp(&config.Config{}, logger.Discard(), Components{DB: db, Publisher: queue, Consumer: queue})

	require.NoError(t, a.Shutdown())
	assert.Equal(t, 1, queue.closed)
	assert.Equal(t, 1, db.closed)
}

func TestRun_WorkerExitsWhenDeliveriesStop(t *testing.T) {
	queue := &fakeQueue{done: make(chan error, 1)}
	queue.done <- errors.New("delivery channel closed")
	close(queue.done)

	a := NewApp(&config.Config{}, logger.Discard(), Components{Publisher: queue, Consumer: queue})

	errCh := make(chan error, 1)
	go func() { errCh <- a.Run(context.Background(), ModeWorker) }()

	select {
	case err := <-errCh:
		assert.ErrorContains(t, err, "delivery channel closed")
	case <-time.After(5 * time.Second):
		t.Fatal("worker kept running after the consumer stopped")
	}
	assert.Equal(t, 1, queue.closed)
}

func TestRun_WorkerStopsOnContextCancel(t *testing.T) {
	queue := &fakeQueue{done: make(chan error)}
	a := NewApp(&config.Config{}, logger.Discard(), Components{Publisher: queue, Consumer: queue})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- a.Run(ctx, ModeWorker) }()

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
