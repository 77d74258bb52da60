package auth

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/vibast-solutions/ms-go-sessionauth/app/entity"
	"github.com/vibast-solutions/ms-go-sessionauth/app/metrics"
	"github.com/vibast-solutions/ms-go-sessionauth/app/password"
	"github.com/vibast-solutions/ms-go-sessionauth/app/repository"

	"github.com/sirupsen/logrus"
)

const basicPrefix = "Basic "

// BasicAuth authenticates requests carrying RFC 7617 Basic credentials.
type BasicAuth struct {
	base
	users  usersFinder
	hasher password.Hasher
}

func NewBasicAuth(users usersFinder, hasher password.Hasher) *BasicAuth {
	return &BasicAuth{users: users, hasher: hasher}
}

// ExtractBase64AuthorizationHeader returns the still-encoded part of a Basic
// header, or "" for any other scheme.
func (a *BasicAuth) ExtractBase64AuthorizationHeader(header string) string {
	blob, ok := strings.CutPrefix(header, basicPrefix)
	if !ok {
		return ""
	}
	return blob
}

// DecodeBase64AuthorizationHeader decodes blob as UTF-8 text. An empty blob
// decodes to the empty string.
func (a *BasicAuth) DecodeBase64AuthorizationHeader(blob string) (string, bool) {
	decoded, err := base64.StdEncoding.DecodeString(blob)
	if err != nil || !utf8.Valid(decoded) {
		return "", false
	}
	return string(decoded), true
}

// ExtractUserCredentials splits on the first colon only; the password may
// contain further colons.
func (a *BasicAuth) ExtractUserCredentials(decoded string) (string, string, bool) {
	email, pwd, ok := strings.Cut(decoded, ":")
	if !ok {
		return "", "", false
	}
	return email, pwd, true
}

// UserObjectFromCredentials returns the first user with the given email whose
// password verifies, or nil. An empty email or password counts as absent and
// never reaches the store.
func (a *BasicAuth) UserObjectFromCredentials(ctx context.Context, email, pwd string) *entity.User {
	if email == "" || pwd == "" {
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.VariantBasic, metrics.ResultMissingInput).Inc()
		return nil
	}

	users, err := a.users.FindUsersBy(ctx, repository.Criteria{"email": email})
	if err != nil {
		logrus.WithError(err).Debug("Basic auth user lookup failed")
		return nil
	}
	if len(users) == 0 {
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.VariantBasic, metrics.ResultUnknownUser).Inc()
		return nil
	}

	for _, user := range users {
		if a.hasher.Verify(user.HashedPassword, pwd) {
			metrics.LoginAttemptsTotal.WithLabelValues(metrics.VariantBasic, metrics.ResultSuccess).Inc()
			return user
		}
	}
	metrics.LoginAttemptsTotal.WithLabelValues(metrics.VariantBasic, metrics.ResultWrongPassword).Inc()
	return nil
}

func (a *BasicAuth) CurrentUser(r *http.Request) *entity.User {
	blob := a.ExtractBase64AuthorizationHeader(a.AuthorizationHeader(r))
	if blob == "" {
		return nil
	}
	decoded, ok := a.DecodeBase64AuthorizationHeader(blob)
	if !ok {
		logrus.Debug("Malformed basic authorization header")
		return nil
	}
	email, pwd, ok := a.ExtractUserCredentials(decoded)
	if !ok {
		return nil
	}
	return a.UserObjectFromCredentials(r.Context(), email, pwd)
}
