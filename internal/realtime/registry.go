package realtime

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
)

// DefaultSendTimeout bounds one delivery attempt when the registry is built
// without an explicit timeout.
const DefaultSendTimeout = 5 * time.Second

// Conn is a live outbound channel to one client connection. The registry
// holds non-owning references; the session that accepted the connection owns
// it. An implementation whose Send fails is expected to close itself.
type Conn interface {
	// ID identifies the handle for the lifetime of the process.
	ID() string

	// Send delivers one serialized event. It must honor ctx cancellation.
	Send(ctx context.Context, payload []byte) error
}

// presence is one user's set of live handles.
type presence struct {
	conns map[string]Conn
	count int
}

// Departure describes the outcome of Deregister.
type Departure struct {
	// Offline is true when the call removed the user's presence entry.
	Offline bool

	// Conversations holds the user's conversation ids at the moment it went
	// offline, sorted ascending. Empty unless Offline.
	Conversations []int64
}

// Registry tracks which users are connected, through which handles, and
// which conversations each connected user belongs to. It is safe for
// concurrent use. No network I/O happens while its lock is held.
type Registry struct {
	mu sync.RWMutex

	users map[int64]*presence

	// members and joined are mutual inverses: conversation -> users and
	// user -> conversations.
	members map[int64]map[int64]struct{}
	joined  map[int64]map[int64]struct{}

	sendTimeout time.Duration
	logger      *slog.Logger
}

type target struct {
	userID int64
	conn   Conn
}

// NewRegistry creates an empty registry. Each send to a handle is bounded by
// sendTimeout; a non-positive value selects DefaultSendTimeout.
func NewRegistry(logger *slog.Logger, sendTimeout time.Duration) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if sendTimeout <= 0 {
		sendTimeout = DefaultSendTimeout
	}
	return &Registry{
		users:       make(map[int64]*presence),
		members:     make(map[int64]map[int64]struct{}),
		joined:      make(map[int64]map[int64]struct{}),
		sendTimeout: sendTimeout,
		logger:      logger.With("component", "realtime_registry"),
	}
}

// Register adds conn to the user's live handles. It reports whether this
// created the user's presence entry, i.e. the user just came online.
// A drained entry still awaits its owner's Deregister and was never announced
// offline, so registering on it does not report first.
// Registering the same handle twice is a no-op.
func (r *Registry) Register(userID int64, conn Conn) (first bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.users[userID]
	if p == nil {
		p = &presence{conns: make(map[string]Conn)}
		r.users[userID] = p
		first = true
	}
	if _, ok := p.conns[conn.ID()]; ok {
		return false
	}

	p.conns[conn.ID()] = conn
	p.count++

	r.logger.Debug("connection registered",
		"user_id", userID,
		"conn_id", conn.ID(),
		"connections", p.count)
	return first
}

// Deregister removes conn from the user's live handles. When no handle is
// left the presence entry is torn down, the user's conversation memberships
// are purged in the same critical section and the returned Departure
// reports Offline with the purged conversations.
//
// An unknown handle is a no-op while the user still has live handles. If a
// failed send already removed the handle and drained the set, this call
// performs the teardown.
func (r *Registry) Deregister(userID int64, conn Conn) Departure {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.users[userID]
	if p == nil {
		return Departure{}
	}

	if _, ok := p.conns[conn.ID()]; ok {
		delete(p.conns, conn.ID())
		p.count--
	}
	if p.count > 0 {
		return Departure{}
	}

	delete(r.users, userID)
	convs := r.purgeMembershipLocked(userID)

	r.logger.Debug("user went offline",
		"user_id", userID,
		"conn_id", conn.ID(),
		"conversations", len(convs))
	return Departure{Offline: true, Conversations: convs}
}

func (r *Registry) purgeMembershipLocked(userID int64) []int64 {
	convSet := r.joined[userID]
	delete(r.joined, userID)

	convs := make([]int64, 0, len(convSet))
	for convID := range convSet {
		convs = append(convs, convID)
		if users := r.members[convID]; users != nil {
			delete(users, userID)
			if len(users) == 0 {
				delete(r.members, convID)
			}
		}
	}
	slices.Sort(convs)
	return convs
}

// drop removes a handle whose send failed. It never tears down the presence
// entry; the owning session's Deregister does.
func (r *Registry) drop(userID int64, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.users[userID]
	if p == nil {
		return
	}
	if _, ok := p.conns[conn.ID()]; !ok {
		return
	}
	delete(p.conns, conn.ID())
	p.count--
}

// IsOnline reports whether the user has at least one live handle.
func (r *Registry) IsOnline(userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p := r.users[userID]
	return p != nil && p.count > 0
}

// OnlineUsers returns the ids of all users with a live handle, sorted.
func (r *Registry) OnlineUsers() []int64 {
	r.mu.RLock()
	ids := make([]int64, 0, len(r.users))
	for id, p := range r.users {
		if p.count > 0 {
			ids = append(ids, id)
		}
	}
	r.mu.RUnlock()

	slices.Sort(ids)
	return ids
}

// ConnectionCount returns the number of live handles of the user.
func (r *Registry) ConnectionCount(userID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p := r.users[userID]; p != nil {
		return p.count
	}
	return 0
}

// JoinConversation adds the user to a conversation's membership. It is
// refused (returns false) for a user without a presence entry, so the index
// only ever tracks connected users.
func (r *Registry) JoinConversation(userID, conversationID int64) bool {
	return r.JoinConversations(userID, conversationID)
}

// JoinConversations adds the user to every given conversation atomically.
// Non-positive ids are skipped.
func (r *Registry) JoinConversations(userID int64, conversationIDs ...int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[userID]; !ok {
		return false
	}
	for _, convID := range conversationIDs {
		if convID <= 0 {
			continue
		}
		users := r.members[convID]
		if users == nil {
			users = make(map[int64]struct{})
			r.members[convID] = users
		}
		users[userID] = struct{}{}

		convs := r.joined[userID]
		if convs == nil {
			convs = make(map[int64]struct{})
			r.joined[userID] = convs
		}
		convs[convID] = struct{}{}
	}
	return true
}

// LeaveConversation removes the user from a conversation's membership.
// Unknown pairs are a no-op.
func (r *Registry) LeaveConversation(userID, conversationID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if users := r.members[conversationID]; users != nil {
		delete(users, userID)
		if len(users) == 0 {
			delete(r.members, conversationID)
		}
	}
	if convs := r.joined[userID]; convs != nil {
		delete(convs, conversationID)
		if len(convs) == 0 {
			delete(r.joined, userID)
		}
	}
}

// ConversationsOf returns the user's tracked conversation ids, sorted.
func (r *Registry) ConversationsOf(userID int64) []int64 {
	r.mu.RLock()
	ids := lo.Keys(r.joined[userID])
	r.mu.RUnlock()

	slices.Sort(ids)
	return ids
}

// MembersOf returns the tracked members of a conversation, sorted.
func (r *Registry) MembersOf(conversationID int64) []int64 {
	r.mu.RLock()
	ids := lo.Keys(r.members[conversationID])
	r.mu.RUnlock()

	slices.Sort(ids)
	return ids
}

// SendToUser delivers payload to every live handle of the user and returns
// the number of successful deliveries. Failing handles are removed.
func (r *Registry) SendToUser(ctx context.Context, payload []byte, userID int64) int {
	return r.SendToUsers(ctx, payload, userID)
}

// SendToUsers delivers payload to every live handle of each distinct user.
func (r *Registry) SendToUsers(ctx context.Context, payload []byte, userIDs ...int64) int {
	r.mu.RLock()
	targets := r.targetsLocked(lo.Uniq(userIDs), 0)
	r.mu.RUnlock()

	return r.deliver(ctx, payload, targets)
}

// BroadcastToConversation delivers payload to the conversation's members as
// indexed at call time, except excludeUserID (0 excludes nobody). A
// conversation with no tracked members is a no-op.
func (r *Registry) BroadcastToConversation(ctx context.Context, payload []byte, conversationID, excludeUserID int64) int {
	return r.BroadcastToConversations(ctx, payload, []int64{conversationID}, excludeUserID)
}

// BroadcastToConversations delivers payload once to every member of the
// union of the given conversations, except excludeUserID.
func (r *Registry) BroadcastToConversations(ctx context.Context, payload []byte, conversationIDs []int64, excludeUserID int64) int {
	r.mu.RLock()
	recipients := make(map[int64]struct{})
	for _, convID := range conversationIDs {
		for userID := range r.members[convID] {
			recipients[userID] = struct{}{}
		}
	}
	targets := r.targetsLocked(lo.Keys(recipients), excludeUserID)
	r.mu.RUnlock()

	if len(targets) == 0 {
		return 0
	}
	return r.deliver(ctx, payload, targets)
}

func (r *Registry) targetsLocked(userIDs []int64, excludeUserID int64) []target {
	var targets []target
	for _, userID := range userIDs {
		if excludeUserID != 0 && userID == excludeUserID {
			continue
		}
		p := r.users[userID]
		if p == nil {
			continue
		}
		for _, conn := range p.conns {
			targets = append(targets, target{userID: userID, conn: conn})
		}
	}
	return targets
}

// deliver sends to every target concurrently and waits for all attempts.
// Each send is bounded by the send timeout only; cancellation of ctx does not
// reach the handles.
func (r *Registry) deliver(ctx context.Context, payload []byte, targets []target) int {
	if len(targets) == 0 {
		return 0
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		delivered int
	)
	base := context.WithoutCancel(ctx)
	for _, t := range targets {
		wg.Add(1)
		go func(t target) {
			defer wg.Done()

			sendCtx, cancel := context.WithTimeout(base, r.sendTimeout)
			defer cancel()

			if err := t.conn.Send(sendCtx, payload); err != nil {
				if errors.Is(err, context.Canceled) {
					r.logger.Debug("send canceled",
						"user_id", t.userID,
						"conn_id", t.conn.ID())
					return
				}
				r.logger.Warn("send failed, dropping connection",
					"user_id", t.userID,
					"conn_id", t.conn.ID(),
					"error", err)
				r.drop(t.userID, t.conn)
				return
			}
			mu.Lock()
			delivered++
			mu.Unlock()
		}(t)
	}
	wg.Wait()
	return delivered
}
