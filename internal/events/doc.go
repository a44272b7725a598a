// Package events carries domain changes (messages created, edited or
// deleted, tasks and routes assigned) from the REST handlers to the
// components that react to them, chiefly the realtime fan-out bridge.
package events
