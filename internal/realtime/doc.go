// Package realtime implements the websocket channel: an in-memory registry
// of connected users, their connections and conversation memberships, the
// per-connection session protocol, and fan-out of domain events to
// connected clients.
//
// Delivery is best effort. A connection whose send fails is dropped from the
// registry and closes itself; nothing is queued for offline users.
package realtime
