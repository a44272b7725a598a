package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/ALeexsd/jobChat/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// registryFixture registers fake connections for users 1..3 and puts all of
// them in conversation 10.
func registryFixture(t *testing.T) (*hubFixture, map[int64]*fakeConn) {
	t.Helper()
	f := newHubFixture(t, testTokens, nil)
	conns := map[int64]*fakeConn{}
	for _, id := range []int64{1, 2, 3} {
		c := newFakeConn(string(rune('a' + id - 1)))
		conns[id] = c
		f.registry.Register(id, c)
		f.registry.JoinConversation(id, 10)
	}
	return f, conns
}

func TestHub_NotifyNewMessage(t *testing.T) {
	t.Parallel()

	f, conns := registryFixture(t)
	delivered := f.hub.NotifyNewMessage(context.Background(), 10, MessageSummary{
		ID: 5, Content: "hello", SenderID: 1, CreatedAt: testClock, MessageType: "text",
	})

	assert.Equal(t, 2, delivered)
	assert.Zero(t, conns[1].countOf(TypeNewMessage), "sender is excluded")
	for _, id := range []int64{2, 3} {
		got := conns[id].eventsOfType(TypeNewMessage)
		require.Len(t, got, 1)
		assert.Equal(t, float64(10), got[0]["chat_id"])
	}
}

func TestHub_NotifyMessageEditsReachEveryone(t *testing.T) {
	t.Parallel()

	f, conns := registryFixture(t)
	assert.Equal(t, 3, f.hub.NotifyMessageUpdated(context.Background(), 10, 5, "edited"))
	assert.Equal(t, 3, f.hub.NotifyMessageDeleted(context.Background(), 10, 5))

	for _, c := range conns {
		updated := c.eventsOfType(TypeMessageUpdated)
		require.Len(t, updated, 1)
		assert.Equal(t, "edited", updated[0]["content"])
		assert.Equal(t, 1, c.countOf(TypeMessageDeleted))
	}
}

func TestHub_NotifyAssignments(t *testing.T) {
	t.Parallel()

	f, conns := registryFixture(t)

	assert.Equal(t, 2, f.hub.NotifyTaskAssigned(context.Background(), 7, "Inventory", 1, 2, 3, 404))
	assert.Zero(t, conns[1].countOf(TypeTaskAssigned))
	task := conns[2].eventsOfType(TypeTaskAssigned)
	require.Len(t, task, 1)
	assert.Equal(t, float64(7), task[0]["task_id"])
	assert.Equal(t, "Inventory", task[0]["task_title"])
	assert.Equal(t, float64(1), task[0]["assigned_by"])

	assert.Equal(t, 1, f.hub.NotifyRouteAssigned(context.Background(), 8, "North loop", 2, 3))
	route := conns[3].eventsOfType(TypeRouteAssigned)
	require.Len(t, route, 1)
	assert.Equal(t, float64(8), route[0]["route_id"])
	assert.Equal(t, "North loop", route[0]["route_title"])
}

func TestHub_NotifyEmptyTarget(t *testing.T) {
	t.Parallel()

	f, conns := registryFixture(t)
	assert.Zero(t, f.hub.Notify(context.Background(), testPayload, ToUsers()))
	assert.Zero(t, f.hub.Notify(context.Background(), testPayload, ToConversation(99, 0)))
	for _, c := range conns {
		assert.Zero(t, c.sendAttempts())
	}
}

func TestBridge_HandleEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		eventType string
		payload   any
		wantType  string
		wantUsers []int64
	}{
		{
			name:      "message created",
			eventType: events.TypeMessageCreated,
			payload: events.MessageCreated{
				ChatID: 10, MessageID: 1, SenderID: 2, Content: "hi", MessageType: "text", CreatedAt: testClock,
			},
			wantType:  TypeNewMessage,
			wantUsers: []int64{1, 3},
		},
		{
			name:      "message updated",
			eventType: events.TypeMessageUpdated,
			payload:   events.MessageUpdated{ChatID: 10, MessageID: 1, Content: "fixed"},
			wantType:  TypeMessageUpdated,
			wantUsers: []int64{1, 2, 3},
		},
		{
			name:      "message deleted",
			eventType: events.TypeMessageDeleted,
			payload:   events.MessageDeleted{ChatID: 10, MessageID: 1},
			wantType:  TypeMessageDeleted,
			wantUsers: []int64{1, 2, 3},
		},
		{
			name:      "task assigned",
			eventType: events.TypeTaskAssigned,
			payload:   events.Assigned{ID: 4, Title: "Count stock", AssignedBy: 1, AssigneeIDs: []int64{3}},
			wantType:  TypeTaskAssigned,
			wantUsers: []int64{3},
		},
		{
			name:      "route assigned",
			eventType: events.TypeRouteAssigned,
			payload:   events.Assigned{ID: 5, Title: "Depot run", AssignedBy: 1, AssigneeIDs: []int64{1, 2}},
			wantType:  TypeRouteAssigned,
			wantUsers: []int64{1, 2},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f, conns := registryFixture(t)
			bridge := NewBridge(f.hub, discardLogger())

			event, err := events.NewEvent(tc.eventType, tc.payload)
			require.NoError(t, err)
			require.NoError(t, bridge.HandleEvent(context.Background(), event))

			for id, c := range conns {
				want := 0
				for _, u := range tc.wantUsers {
					if u == id {
						want = 1
					}
				}
				assert.Equal(t, want, c.countOf(tc.wantType), "user %d", id)
			}
		})
	}
}

func TestBridge_IgnoresUnrelatedEvents(t *testing.T) {
	t.Parallel()

	f, conns := registryFixture(t)
	bridge := NewBridge(f.hub, nil)

	event, err := events.NewEvent("user.created", map[string]int{"id": 1})
	require.NoError(t, err)
	require.NoError(t, bridge.HandleEvent(context.Background(), event))
	for _, c := range conns {
		assert.Zero(t, c.sendAttempts())
	}
}

func TestBridge_BadPayload(t *testing.T) {
	t.Parallel()

	f, _ := registryFixture(t)
	bridge := NewBridge(f.hub, nil)

	event := &events.Event{
		Type:      events.TypeMessageCreated,
		Payload:   []byte(`"not an object"`),
		CreatedAt: time.Now(),
	}
	assert.Error(t, bridge.HandleEvent(context.Background(), event))
}

func TestBridge_WithEmitter(t *testing.T) {
	t.Parallel()

	f, conns := registryFixture(t)
	emitter := events.NewInMemoryEventEmitter(discardLogger())
	bridge := NewBridge(f.hub, discardLogger())
	emitter.RegisterHandler(bridge, bridge.EventTypes()...)
	assert.Equal(t, 1, emitter.HandlerCount(events.TypeRouteAssigned))
	assert.Zero(t, emitter.HandlerCount("user.created"))

	err := events.Emit(context.Background(), emitter, events.TypeMessageDeleted, events.MessageDeleted{ChatID: 10, MessageID: 3})
	require.NoError(t, err)
	for _, c := range conns {
		assert.Equal(t, 1, c.countOf(TypeMessageDeleted))
	}
}
