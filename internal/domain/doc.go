// Package domain contains the core business entities of the collaboration
// backend: users and their presence status, chats, messages, and the tasks
// and routes assigned to employees. It is independent of storage and
// transport.
package domain
