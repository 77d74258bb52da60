// Package auth decides whether a request needs authentication and resolves
// the credential it carries to a user.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/vibast-solutions/ms-go-sessionauth/app/entity"
	"github.com/vibast-solutions/ms-go-sessionauth/app/repository"
)

const (
	TypeBasic   = "basic_auth"
	TypeSession = "session_auth"
)

// Authenticator is implemented by every credential scheme the API accepts.
type Authenticator interface {
	RequireAuth(path string, excludedPaths []string) bool
	AuthorizationHeader(r *http.Request) string
	SessionCookie(r *http.Request) string
	CurrentUser(r *http.Request) *entity.User
}

type userFinder interface {
	FindUserBy(ctx context.Context, criteria repository.Criteria) (*entity.User, error)
}

type usersFinder interface {
	FindUsersBy(ctx context.Context, criteria repository.Criteria) ([]*entity.User, error)
}

// RequireAuth reports whether path is protected. Patterns ending in '*' match
// any path starting with the text before the '*'; other patterns match the
// path with or without its trailing slash.
func RequireAuth(path string, excludedPaths []string) bool {
	if path == "" || len(excludedPaths) == 0 {
		return true
	}
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}

	for _, pattern := range excludedPaths {
		if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
			if strings.HasPrefix(path, prefix) {
				return false
			}
			continue
		}
		if path == pattern || path+"/" == pattern {
			return false
		}
	}
	return true
}

// AuthorizationHeader returns the raw Authorization header, or "" when the
// request or header is missing.
func AuthorizationHeader(r *http.Request) string {
	if r == nil {
		return ""
	}
	return r.Header.Get("Authorization")
}

// SessionCookie returns the value of the named cookie, or "" when absent.
func SessionCookie(r *http.Request, name string) string {
	if r == nil || name == "" {
		return ""
	}
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

type base struct {
	cookieName string
}

func (b base) RequireAuth(path string, excludedPaths []string) bool {
	return RequireAuth(path, excludedPaths)
}

func (b base) AuthorizationHeader(r *http.Request) string {
	return AuthorizationHeader(r)
}

func (b base) SessionCookie(r *http.Request) string {
	return SessionCookie(r, b.cookieName)
}
