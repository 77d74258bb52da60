package controller_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/vibast-solutions/ms-go-sessionauth/app/auth"
	"github.com/vibast-solutions/ms-go-sessionauth/app/controller"
	"github.com/vibast-solutions/ms-go-sessionauth/app/entity"
	"github.com/vibast-solutions/ms-go-sessionauth/app/password"
	"github.com/vibast-solutions/ms-go-sessionauth/app/repository"
	"github.com/vibast-solutions/ms-go-sessionauth/app/session"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const sessionCookieName = "_my_session_id"

type fakeUserDirectory struct {
	users []*entity.User
}

func (f *fakeUserDirectory) FindUsersBy(_ context.Context, criteria repository.Criteria) ([]*entity.User, error) {
	matched := []*entity.User{}
	for _, u := range f.users {
		if email, ok := criteria["email"]; ok && email != u.Email {
			continue
		}
		matched = append(matched, u)
	}
	return matched, nil
}

func (f *fakeUserDirectory) FindUserBy(_ context.Context, criteria repository.Criteria) (*entity.User, error) {
	for _, u := range f.users {
		if id, ok := criteria["id"]; ok && id == u.ID {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func newSessionAuthController(t *testing.T) (*controller.SessionAuthController, *auth.SessionAuth, *session.MemoryStore) {
	t.Helper()

	hasher := password.NewBcryptHasher(bcrypt.MinCost)
	digest, err := hasher.Hash("pwd")
	require.NoError(t, err)

	users := &fakeUserDirectory{users: []*entity.User{{ID: 5, Email: "bob@me.com", HashedPassword: digest}}}
	store := session.NewMemoryStore()
	sessionAuth := auth.NewSessionAuth(store, users, sessionCookieName)
	return controller.NewSessionAuthController(sessionAuth, users, hasher), sessionAuth, store
}

func postLogin(t *testing.T, c *controller.SessionAuthController, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req, rec := newFormRequest(http.MethodPost, "/api/v1/auth_session/login", form)
	require.NoError(t, c.Login(echo.New().NewContext(req, rec)))
	return rec
}

func TestSessionLogin_MissingFields(t *testing.T) {
	c, _, _ := newSessionAuthController(t)

	rec := postLogin(t, c, url.Values{"password": {"pwd"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email missing", decodeBody(t, rec)["error"])

	rec = postLogin(t, c, url.Values{"email": {"bob@me.com"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "password missing", decodeBody(t, rec)["error"])
}

func TestSessionLogin_UnknownEmail(t *testing.T) {
	c, _, _ := newSessionAuthController(t)

	rec := postLogin(t, c, url.Values{"email": {"nobody@me.com"}, "password": {"pwd"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no user found for this email", decodeBody(t, rec)["error"])
}

func TestSessionLogin_WrongPassword(t *testing.T) {
	c, _, store := newSessionAuthController(t)

	rec := postLogin(t, c, url.Values{"email": {"bob@me.com"}, "password": {"nope"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "wrong password", decodeBody(t, rec)["error"])
	assert.Zero(t, store.Len())
}

func TestSessionLogin_Success(t *testing.T) {
	c, sessionAuth, store := newSessionAuthController(t)

	rec := postLogin(t, c, url.Values{"email": {"bob@me.com"}, "password": {"pwd"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":5,"email":"bob@me.com"}`, rec.Body.String())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookieName, cookies[0].Name)

	userID, ok := sessionAuth.UserIDForSessionID(context.Background(), cookies[0].Value)
	require.True(t, ok)
	assert.Equal(t, uint64(5), userID)
	assert.Equal(t, 1, store.Len())
}

func TestSessionLogout(t *testing.T) {
	c, sessionAuth, store := newSessionAuthController(t)
	token, err := sessionAuth.CreateSession(context.Background(), 5)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/auth_session/logout", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	require.NoError(t, c.Logout(echo.New().NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
	assert.Zero(t, store.Len())

	// The token is gone, so a second logout finds nothing.
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/auth_session/logout", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	rec = httptest.NewRecorder()
	require.NoError(t, c.Logout(echo.New().NewContext(req, rec)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
