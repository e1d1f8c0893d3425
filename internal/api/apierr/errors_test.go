package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/lighthouse/internal/matchproto"
	"github.com/mcoot/lighthouse/internal/model"
	"github.com/mcoot/lighthouse/internal/services/auth"
	"github.com/mcoot/lighthouse/internal/services/match"
	"github.com/mcoot/lighthouse/internal/services/publish"
	"github.com/mcoot/lighthouse/internal/services/resource"
)

func TestStatusMapping(t *testing.T) {
	_, decodeErr := matchproto.Decode("nope")

	cases := []struct {
		err  error
		want int
	}{
		{auth.ErrSessionMissing, http.StatusForbidden},
		{auth.ErrSessionUnapproved, http.StatusUnauthorized},
		{auth.ErrUnknownUser, http.StatusForbidden},
		{auth.ErrInvalidPassword, http.StatusForbidden},
		{fmt.Errorf("login: %w", auth.ErrUnsupportedClientVersion), http.StatusBadRequest},
		{decodeErr, http.StatusBadRequest},
		{fmt.Errorf("%w: %q", match.ErrUnknownPlayer, "ghost"), http.StatusBadRequest},
		{match.ErrNoRoomFound, http.StatusNotFound},
		{publish.ErrQuotaExceeded, http.StatusBadRequest},
		{publish.ErrMissingRootLevel, http.StatusBadRequest},
		{publish.ErrNotOwner, http.StatusBadRequest},
		{model.ErrSlotNotFound, http.StatusNotFound},
		{model.ErrResourceExists, http.StatusConflict},
		{resource.ErrUnsafeResource, http.StatusConflict},
		{model.ErrTokenAlreadyApproved, http.StatusConflict},
		{NewForbiddenError("no"), http.StatusForbidden},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Status(tc.err), tc.err.Error())
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, auth.ErrSessionUnapproved)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, CodeUnapprovedSession, body.Error.Code)
}

func TestWriteGameErrorHasNoBody(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteGameError(rec, auth.ErrSessionMissing)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Body.String())
}
