package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ravin009/chatfun-sub000/internal/services"
	"github.com/ravin009/chatfun-sub000/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func TestWriteServiceErrorStatusMapping(t *testing.T) {
	logger.InitLogger()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"user not found", services.ErrUserNotFound, http.StatusNotFound},
		{"room not found", services.ErrRoomNotFound, http.StatusNotFound},
		{"banned", services.ErrBannedFromSending, http.StatusForbidden},
		{"private room access", services.ErrPrivateRoomAccess, http.StatusForbidden},
		{"read only", services.ErrReadOnly, http.StatusForbidden},
		{"blocked", services.ErrBlockedByRecipient, http.StatusForbidden},
		{"insufficient rating", services.ErrInsufficientRating, http.StatusForbidden},
		{"not authorized", services.ErrNotAuthorized, http.StatusForbidden},
		{"message too long", services.ErrMessageTooLong, http.StatusBadRequest},
		{"empty message", services.ErrEmptyMessage, http.StatusBadRequest},
		{"name taken", services.ErrRoomNameTaken, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, tc.err)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestBannedErrorBodyIsExactMessage(t *testing.T) {
	logger.InitLogger()

	rec := httptest.NewRecorder()
	writeServiceError(rec, services.ErrBannedFromSending)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "You are banned from sending messages.\n", rec.Body.String())
}
