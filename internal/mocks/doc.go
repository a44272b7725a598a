// Package mocks provides hand-written test doubles for the store, auth and
// event interfaces.
//
// Each mock has a function field per method. When the field is nil the mock
// falls back to simple in-memory behavior (seeded users, chat members,
// stored messages), so most tests only override the call under test:
//
//	users := mocks.NewMockUserStore(&domain.User{ID: 1, Username: "ivanov", IsActive: true})
//	users.SetStatusFn = func(ctx context.Context, id int64, s domain.UserStatus, at time.Time) error {
//	    return errors.New("db down")
//	}
//
// Recording mocks (MockEventEmitter, MockTaskStore, MockRouteStore) keep
// what they were given for later assertions.
package mocks
