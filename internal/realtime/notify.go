package realtime

import "context"

// Target selects the recipients of Notify.
type Target struct {
	conversationID int64
	excludeUserID  int64
	userIDs        []int64
}

// ToConversation targets the tracked members of a conversation except
// excludeUserID (0 excludes nobody).
func ToConversation(conversationID, excludeUserID int64) Target {
	return Target{conversationID: conversationID, excludeUserID: excludeUserID}
}

// ToUsers targets every live connection of the given users.
func ToUsers(userIDs ...int64) Target {
	return Target{userIDs: userIDs}
}

// Notify delivers an already serialized event to target and returns the
// number of successful deliveries. Offline recipients are skipped.
func (h *Hub) Notify(ctx context.Context, payload []byte, target Target) int {
	if target.conversationID != 0 {
		return h.registry.BroadcastToConversation(ctx, payload, target.conversationID, target.excludeUserID)
	}
	if len(target.userIDs) == 0 {
		return 0
	}
	return h.registry.SendToUsers(ctx, payload, target.userIDs...)
}

// NotifyNewMessage announces msg to the chat's members except its sender.
func (h *Hub) NotifyNewMessage(ctx context.Context, chatID int64, msg MessageSummary) int {
	return h.broadcast(ctx, NewMessageEvent{
		Type:      TypeNewMessage,
		ChatID:    chatID,
		Message:   msg,
		Timestamp: h.timestamp(),
	}, ToConversation(chatID, msg.SenderID))
}

// NotifyMessageUpdated announces an edit to every member of the chat.
func (h *Hub) NotifyMessageUpdated(ctx context.Context, chatID, messageID int64, content string) int {
	return h.broadcast(ctx, MessageUpdatedEvent{
		Type:      TypeMessageUpdated,
		ChatID:    chatID,
		MessageID: messageID,
		Content:   content,
		Timestamp: h.timestamp(),
	}, ToConversation(chatID, 0))
}

// NotifyMessageDeleted announces a deletion to every member of the chat.
func (h *Hub) NotifyMessageDeleted(ctx context.Context, chatID, messageID int64) int {
	return h.broadcast(ctx, MessageDeletedEvent{
		Type:      TypeMessageDeleted,
		ChatID:    chatID,
		MessageID: messageID,
		Timestamp: h.timestamp(),
	}, ToConversation(chatID, 0))
}

// NotifyTaskAssigned tells each assignee about a new task.
func (h *Hub) NotifyTaskAssigned(ctx context.Context, taskID int64, title string, assignedBy int64, assignees ...int64) int {
	return h.broadcast(ctx, TaskAssignedEvent{
		Type:       TypeTaskAssigned,
		TaskID:     taskID,
		TaskTitle:  title,
		AssignedBy: assignedBy,
		Timestamp:  h.timestamp(),
	}, ToUsers(assignees...))
}

// NotifyRouteAssigned tells each assignee about a new route.
func (h *Hub) NotifyRouteAssigned(ctx context.Context, routeID int64, title string, assignedBy int64, assignees ...int64) int {
	return h.broadcast(ctx, RouteAssignedEvent{
		Type:       TypeRouteAssigned,
		RouteID:    routeID,
		RouteTitle: title,
		AssignedBy: assignedBy,
		Timestamp:  h.timestamp(),
	}, ToUsers(assignees...))
}
