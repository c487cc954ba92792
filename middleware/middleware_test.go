package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"slotboard/globals"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func token(t *testing.T, roles []string) string {
	t.Helper()
	claims := Claims{
		UserID: "u1",
		Role:   roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(globals.JwtSecret)
	require.NoError(t, err)
	return "Bearer " + s
}

func callThrough(handler httprouter.Handle, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	handler(rec, req, nil)
	return rec
}

func TestAuthenticatePopulatesContext(t *testing.T) {
	var gotUser string
	var gotRoles []string
	handler := Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gotUser, _ = r.Context().Value(globals.UserIDKey).(string)
		gotRoles, _ = r.Context().Value(globals.RoleKey).([]string)
	})

	rec := callThrough(handler, token(t, []string{"member"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", gotUser)
	assert.Equal(t, []string{"member"}, gotRoles)
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	handler := Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		t.Fatal("handler must not run")
	})

	assert.Equal(t, http.StatusUnauthorized, callThrough(handler, "").Code)
	assert.Equal(t, http.StatusUnauthorized, callThrough(handler, "Bearer garbage").Code)
	assert.Equal(t, http.StatusUnauthorized, callThrough(handler, "notbearer x").Code)
}

func TestRequireStaff(t *testing.T) {
	ran := false
	handler := Authenticate(RequireStaff(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		ran = true
	}))

	rec := callThrough(handler, token(t, []string{"member"}))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, ran)

	rec = callThrough(handler, token(t, []string{"member", StaffRole}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ran)
}
