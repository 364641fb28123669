package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuebook/venue-booking-api/internal/booking"
	"github.com/venuebook/venue-booking-api/internal/repository"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestEngineErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"validation", booking.NewError(booking.KindValidation, "bad input"), http.StatusBadRequest, "VALIDATION"},
		{"not found", booking.NewError(booking.KindNotFound, "missing"), http.StatusNotFound, "NOT_FOUND"},
		{"slot conflict", booking.NewError(booking.KindSlotConflict, "taken"), http.StatusConflict, "SLOT_CONFLICT"},
		{"invalid transition", booking.NewError(booking.KindInvalidTransition, "nope"), http.StatusConflict, "INVALID_TRANSITION"},
		{"already cancelled", booking.NewError(booking.KindAlreadyCancelled, "gone"), http.StatusConflict, "ALREADY_CANCELLED"},
		{"still active", booking.NewError(booking.KindStillActive, "active"), http.StatusConflict, "STILL_ACTIVE"},
		{"forbidden", booking.NewError(booking.KindForbidden, "not yours"), http.StatusForbidden, "FORBIDDEN"},
		{"dependency", booking.NewError(booking.KindDependency, "db down"), http.StatusInternalServerError, "DEPENDENCY"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newTestContext(t)
			require.NoError(t, engineError(c, tc.err))
			assert.Equal(t, tc.status, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.kind, body["kind"])
		})
	}
}

func TestEngineErrorRepositorySentinels(t *testing.T) {
	c, rec := newTestContext(t)
	require.NoError(t, engineError(c, repository.ErrNotFound))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = newTestContext(t)
	require.NoError(t, engineError(c, repository.ErrConflict))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetUserIDClaimShapes(t *testing.T) {
	c, _ := newTestContext(t)
	c.Set("user_id", float64(42))
	id, err := getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	c, _ = newTestContext(t)
	c.Set("user_id", "7")
	id, err = getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)

	c, _ = newTestContext(t)
	_, err = getUserID(c)
	assert.Error(t, err)
}

func TestPathID(t *testing.T) {
	c, _ := newTestContext(t)
	c.SetParamNames("id")
	c.SetParamValues("15")
	id, ok := pathID(c, "id")
	assert.True(t, ok)
	assert.Equal(t, uint64(15), id)

	c, _ = newTestContext(t)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	_, ok = pathID(c, "id")
	assert.False(t, ok)

	c, _ = newTestContext(t)
	c.SetParamNames("id")
	c.SetParamValues("0")
	_, ok = pathID(c, "id")
	assert.False(t, ok)
}
