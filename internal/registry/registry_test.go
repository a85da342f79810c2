package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	streamv1 "github.com/quantick/barpipe/internal/domain/stream/v1"
	"github.com/quantick/barpipe/internal/registry/mock"
	"github.com/quantick/barpipe/pkg/logger"
)

func newTestLogger(t *testing.T) logger.Interface {
	t.Helper()
	log, err := logger.NewLogger(logger.WithLoggingLevel(logger.ErrorLevel))
	require.NoError(t, err)
	return log
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reg := New(newTestLogger(t))
	conn := &Connection{ID: "conn-1", Client: mock.NewMockStreamClient(ctrl), Events: make(chan streamv1.Event, 1)}

	require.NoError(t, reg.Register(conn))
	assert.Error(t, reg.Register(conn))
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_TeardownIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mock.NewMockStreamClient(ctrl)
	client.EXPECT().Close().Times(1).Return(nil)

	reg := New(newTestLogger(t))
	events := make(chan streamv1.Event, 4)
	require.NoError(t, reg.Register(&Connection{ID: "conn-1", Client: client, Events: events}))

	reg.Teardown("conn-1")
	reg.Teardown("conn-1")
	reg.Teardown("missing")

	assert.Equal(t, 0, reg.Len())

	// The subscriber sees one final disconnected event and then the closed
	// channel.
	ev, open := <-events
	require.True(t, open)
	assert.Equal(t, streamv1.EventDisconnected, ev.Type)
	_, open = <-events
	assert.False(t, open)
}

func TestRegistry_TeardownWithFullEventChannel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mock.NewMockStreamClient(ctrl)
	client.EXPECT().Close().Return(nil)

	reg := New(newTestLogger(t))
	events := make(chan streamv1.Event) // unbuffered, nobody reading
	require.NoError(t, reg.Register(&Connection{ID: "conn-1", Client: client, Events: events}))

	// Must not block even though the final event cannot be delivered.
	reg.Teardown("conn-1")
	_, open := <-events
	assert.False(t, open)
}

func TestRegistry_ReconnectAllDisconnectsAndDrops(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	clean := mock.NewMockStreamClient(ctrl)
	clean.EXPECT().ActiveSymbols().Return([]string{"RELIANCE", "TCS"})
	clean.EXPECT().Close().Return(nil)

	stuck := mock.NewMockStreamClient(ctrl)
	stuck.EXPECT().ActiveSymbols().Return([]string{"INFY"})
	stuck.EXPECT().Close().Return(errors.New("socket already gone"))

	reg := New(newTestLogger(t))
	eventsA := make(chan streamv1.Event, 2)
	eventsB := make(chan streamv1.Event, 2)
	require.NoError(t, reg.Register(&Connection{ID: "a", Client: clean, Events: eventsA}))
	require.NoError(t, reg.Register(&Connection{ID: "b", Client: stuck, Events: eventsB}))

	statuses := reg.ReconnectAll()
	require.Len(t, statuses, 2)

	byID := map[string]Status{}
	for _, s := range statuses {
		byID[s.ID] = s
	}
	assert.Equal(t, "disconnected", byID["a"].Result)
	assert.Equal(t, 2, byID["a"].Symbols)
	assert.Equal(t, "error", byID["b"].Result)
	assert.Equal(t, "socket already gone", byID["b"].Error)

	// Every record is dropped, even when closing the client failed; nothing
	// is redialed on the connection's behalf.
	assert.Equal(t, 0, reg.Len())

	for _, events := range []chan streamv1.Event{eventsA, eventsB} {
		ev, open := <-events
		require.True(t, open)
		assert.Equal(t, streamv1.EventDisconnected, ev.Type)
		_, open = <-events
		assert.False(t, open)
	}
}

func TestRegistry_ResubscribeAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	subscribed := mock.NewMockStreamClient(ctrl)
	subscribed.EXPECT().ActiveSymbols().Return([]string{"RELIANCE"})
	subscribed.EXPECT().Resubscribe().Return(nil)

	empty := mock.NewMockStreamClient(ctrl)
	empty.EXPECT().ActiveSymbols().Return(nil)

	failing := mock.NewMockStreamClient(ctrl)
	failing.EXPECT().ActiveSymbols().Return([]string{"INFY"})
	failing.EXPECT().Resubscribe().Return(errors.New("write failed"))

	reg := New(newTestLogger(t))
	require.NoError(t, reg.Register(&Connection{ID: "a", Client: subscribed, Events: make(chan streamv1.Event, 1)}))
	require.NoError(t, reg.Register(&Connection{ID: "b", Client: empty, Events: make(chan streamv1.Event, 1)}))
	require.NoError(t, reg.Register(&Connection{ID: "c", Client: failing, Events: make(chan streamv1.Event, 1)}))

	statuses := reg.ResubscribeAll()
	require.Len(t, statuses, 3)

	byID := map[string]Status{}
	for _, s := range statuses {
		byID[s.ID] = s
	}
	assert.Equal(t, "resubscribed", byID["a"].Result)
	assert.Equal(t, "no_symbols", byID["b"].Result)
	assert.Equal(t, "error", byID["c"].Result)
}

func TestRegistry_TeardownAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reg := New(newTestLogger(t))
	for _, id := range []string{"a", "b", "c"} {
		client := mock.NewMockStreamClient(ctrl)
		client.EXPECT().Close().Return(nil)
		require.NoError(t, reg.Register(&Connection{ID: id, Client: client, Events: make(chan streamv1.Event, 2)}))
	}

	reg.TeardownAll()
	assert.Equal(t, 0, reg.Len())
}
