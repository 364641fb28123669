package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserContext(t *testing.T, method, body string, callerID uint64, paramID string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, "/", nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", float64(callerID))
	if paramID != "" {
		c.SetParamNames("id")
		c.SetParamValues(paramID)
	}
	return c, rec
}

// Admins can never deactivate or delete themselves, so the guard
// must fire before any storage access.
func TestUserSelfGuards(t *testing.T) {
	h := &UserHandler{}

	c, rec := newUserContext(t, http.MethodPut,
		`{"name":"Ana","email":"ana@example.com","role":"ADMIN","is_active":false}`, 7, "7")
	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusConflict, rec.Code)

	c, rec = newUserContext(t, http.MethodDelete, "", 7, "7")
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusConflict, rec.Code)

	c, rec = newUserContext(t, http.MethodDelete, "", 7, "7")
	require.NoError(t, h.Purge(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUserUpdateValidation(t *testing.T) {
	h := &UserHandler{}

	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"email":"ana@example.com","role":"STAFF"}`},
		{"missing email", `{"name":"Ana","role":"STAFF"}`},
		{"unknown role", `{"name":"Ana","email":"ana@example.com","role":"OWNER"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newUserContext(t, http.MethodPut, tc.body, 7, "8")
			require.NoError(t, h.Update(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestUserListRejectsUnknownRoleFilter(t *testing.T) {
	h := &UserHandler{}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?role=OWNER", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.List(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
