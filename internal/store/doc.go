// Package store defines the persistence interfaces of the collaboration
// backend (users, chat membership, messages, tasks, routes) together with the
// sentinel errors every implementation maps its failures to.
package store
