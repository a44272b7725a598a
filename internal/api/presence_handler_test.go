package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type staticPresence []int64

func (p staticPresence) OnlineUsers() []int64 { return p }

func TestPresenceHandler_OnlineUsers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		presence staticPresence
		want     string
	}{
		{name: "some online", presence: staticPresence{2, 5, 9}, want: `{"user_ids":[2,5,9]}`},
		{name: "nobody online", presence: nil, want: `{"user_ids":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			NewPresenceHandler(tt.presence).OnlineUsers(rec,
				newRequest(t, http.MethodGet, "/api/users/online", nil, requestOpts{userID: 1}))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}
