package mocks

import (
	"context"
	"time"

	"github.com/ALeexsd/jobChat/internal/domain"
	"github.com/ALeexsd/jobChat/internal/store"
)

// MockTaskStore implements store.TaskStore for testing
type MockTaskStore struct {
	CreateFn func(ctx context.Context, task *domain.Task) error

	// Created records every task passed to Create.
	Created []*domain.Task
	nextID  int64
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// Create implements store.TaskStore
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	m.Created = append(m.Created, task)
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	m.nextID++
	task.ID = m.nextID
	task.CreatedAt = time.Now().UTC()
	return nil
}

// MockRouteStore implements store.RouteStore for testing
type MockRouteStore struct {
	CreateFn func(ctx context.Context, route *domain.Route) error

	// Created records every route passed to Create.
	Created []*domain.Route
	nextID  int64
}

var _ store.RouteStore = (*MockRouteStore)(nil)

// Create implements store.RouteStore
func (m *MockRouteStore) Create(ctx context.Context, route *domain.Route) error {
	m.Created = append(m.Created, route)
	if m.CreateFn != nil {
		return m.CreateFn(ctx, route)
	}
	m.nextID++
	route.ID = m.nextID
	route.CreatedAt = time.Now().UTC()
	return nil
}
