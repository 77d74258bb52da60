package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/vibast-solutions/ms-go-sessionauth/app/entity"
	"github.com/vibast-solutions/ms-go-sessionauth/app/repository"
	"github.com/vibast-solutions/ms-go-sessionauth/app/session"

	"github.com/sirupsen/logrus"
)

// SessionAuth authenticates requests by a session cookie resolved through a
// session.Store. Tokens are independent: creating a new session for a user
// leaves earlier ones valid until they are destroyed.
type SessionAuth struct {
	base
	store session.Store
	users userFinder
}

func NewSessionAuth(store session.Store, users userFinder, cookieName string) *SessionAuth {
	return &SessionAuth{
		base:  base{cookieName: cookieName},
		store: store,
		users: users,
	}
}

func (a *SessionAuth) CookieName() string {
	return a.cookieName
}

// CreateSession returns "" without error when userID is zero.
func (a *SessionAuth) CreateSession(ctx context.Context, userID uint64) (string, error) {
	if userID == 0 {
		return "", nil
	}
	token := session.NewToken()
	if err := a.store.Set(ctx, token, userID); err != nil {
		return "", err
	}
	return token, nil
}

func (a *SessionAuth) UserIDForSessionID(ctx context.Context, token string) (uint64, bool) {
	if token == "" {
		return 0, false
	}
	userID, err := a.store.Get(ctx, token)
	if err != nil {
		if !errors.Is(err, session.ErrSessionNotFound) {
			logrus.WithError(err).Warn("Session lookup failed")
		}
		return 0, false
	}
	return userID, true
}

func (a *SessionAuth) CurrentUser(r *http.Request) *entity.User {
	if r == nil {
		return nil
	}
	userID, ok := a.UserIDForSessionID(r.Context(), a.SessionCookie(r))
	if !ok {
		return nil
	}
	user, err := a.users.FindUserBy(r.Context(), repository.Criteria{"id": userID})
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logrus.WithError(err).WithField("user_id", userID).Warn("Session user lookup failed")
		}
		return nil
	}
	return user
}

// DestroySession removes the session named by the request cookie. It reports
// false when the request has no cookie or the session does not exist.
func (a *SessionAuth) DestroySession(r *http.Request) bool {
	if r == nil {
		return false
	}
	token := a.SessionCookie(r)
	if token == "" {
		return false
	}
	if _, ok := a.UserIDForSessionID(r.Context(), token); !ok {
		return false
	}
	deleted, err := a.store.Delete(r.Context(), token)
	if err != nil {
		logrus.WithError(err).Warn("Session delete failed")
		return false
	}
	return deleted
}
