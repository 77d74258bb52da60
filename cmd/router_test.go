package cmd

import (
	"context"
	"database/sql"
	"net/http"
	"sync"
	"testing"

	"github.com/vibast-solutions/ms-go-sessionauth/app/auth"
	"github.com/vibast-solutions/ms-go-sessionauth/app/entity"
	"github.com/vibast-solutions/ms-go-sessionauth/app/password"
	"github.com/vibast-solutions/ms-go-sessionauth/app/repository"
	"github.com/vibast-solutions/ms-go-sessionauth/app/service"
	"github.com/vibast-solutions/ms-go-sessionauth/app/session"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/steinfletcher/apitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memoryUsers struct {
	mu    sync.Mutex
	users []*entity.User
}

func nullableString(v sql.NullString) any {
	if !v.Valid {
		return nil
	}
	return v.String
}

func (m *memoryUsers) match(u *entity.User, criteria repository.Criteria) bool {
	for key, want := range criteria {
		var got any
		switch key {
		case "id":
			got = u.ID
		case "email":
			got = u.Email
		case "session_id":
			got = nullableString(u.SessionID)
		case "reset_token":
			got = nullableString(u.ResetToken)
		default:
			return false
		}
		if got != want {
			return false
		}
	}
	return true
}

func (m *memoryUsers) FindUsersBy(_ context.Context, criteria repository.Criteria) ([]*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []*entity.User{}
	for _, u := range m.users {
		if m.match(u, criteria) {
			clone := *u
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memoryUsers) FindUserBy(ctx context.Context, criteria repository.Criteria) (*entity.User, error) {
	users, _ := m.FindUsersBy(ctx, criteria)
	if len(users) == 0 {
		return nil, repository.ErrNotFound
	}
	return users[0], nil
}

func (m *memoryUsers) AddUser(_ context.Context, email, hashedPassword string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			return nil, repository.ErrUserExists
		}
	}
	u := &entity.User{ID: uint64(len(m.users) + 1), Email: email, HashedPassword: hashedPassword}
	m.users = append(m.users, u)
	clone := *u
	return &clone, nil
}

func (m *memoryUsers) UpdateUser(_ context.Context, id uint64, attrs repository.Attributes) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.ID != id {
			continue
		}
		for key, value := range attrs {
			s, _ := value.(string)
			valid := value != nil
			switch key {
			case "session_id":
				u.SessionID = sql.NullString{String: s, Valid: valid}
			case "reset_token":
				u.ResetToken = sql.NullString{String: s, Valid: valid}
			case "hashed_password":
				u.HashedPassword = s
			case "email":
				u.Email = s
			default:
				return repository.ErrUnknownAttribute
			}
		}
	}
	return nil
}

func (m *memoryUsers) ConsumeResetToken(_ context.Context, id uint64, resetToken, hashedPassword string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.ID != id || !u.ResetToken.Valid || u.ResetToken.String != resetToken {
			continue
		}
		u.HashedPassword = hashedPassword
		u.ResetToken = sql.NullString{}
		return true, nil
	}
	return false, nil
}

func newTestServer(t *testing.T, authType string) http.Handler {
	t.Helper()

	users := &memoryUsers{}
	hasher := password.NewBcryptHasher(bcrypt.MinCost)
	registry := prometheus.NewRegistry()

	deps := httpDeps{
		userAuthService: service.NewUserAuthService(users, hasher),
		users:           users,
		hasher:          hasher,
		excludedPaths:   []string{"/api/v1/status/", "/api/v1/unauthorized/", "/api/v1/forbidden/", "/api/v1/auth_session/login/"},
		registerer:      registry,
		gatherer:        registry,
	}
	if authType == auth.TypeSession {
		deps.sessionAuth = auth.NewSessionAuth(session.NewMemoryStore(), users, "_my_session_id")
		deps.authenticator = deps.sessionAuth
	} else {
		deps.authenticator = auth.NewBasicAuth(users, hasher)
	}
	return newHTTPServer(deps)
}

func cookieValue(t *testing.T, result apitest.Result, name string) string {
	t.Helper()

	for _, c := range result.Response.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	t.Fatalf("cookie %q not set", name)
	return ""
}

func TestUserServiceFlow(t *testing.T) {
	handler := newTestServer(t, auth.TypeSession)

	apitest.New().Handler(handler).
		Get("/").
		Expect(t).Status(http.StatusOK).Body(`{"message":"Bienvenue"}`).End()

	apitest.New().Handler(handler).
		Post("/users").FormData("email", "guillaume@example.com").FormData("password", "b4l0u").
		Expect(t).Status(http.StatusOK).Body(`{"email":"guillaume@example.com","message":"user created"}`).End()

	apitest.New().Handler(handler).
		Post("/users").FormData("email", "guillaume@example.com").FormData("password", "b4l0u").
		Expect(t).Status(http.StatusBadRequest).Body(`{"message":"email already registered"}`).End()

	apitest.New().Handler(handler).
		Post("/sessions").FormData("email", "guillaume@example.com").FormData("password", "wrong").
		Expect(t).Status(http.StatusUnauthorized).End()

	apitest.New().Handler(handler).
		Get("/profile").
		Expect(t).Status(http.StatusForbidden).End()

	login := apitest.New().Handler(handler).
		Post("/sessions").FormData("email", "guillaume@example.com").FormData("password", "b4l0u").
		Expect(t).Status(http.StatusOK).Body(`{"email":"guillaume@example.com","message":"logged in"}`).End()
	sessionID := cookieValue(t, login, "session_id")

	apitest.New().Handler(handler).
		Get("/profile").Cookie("session_id", sessionID).
		Expect(t).Status(http.StatusOK).Body(`{"email":"guillaume@example.com"}`).End()

	apitest.New().Handler(handler).
		Delete("/sessions").Cookie("session_id", sessionID).
		Expect(t).Status(http.StatusFound).Header("Location", "/").End()

	apitest.New().Handler(handler).
		Get("/profile").Cookie("session_id", sessionID).
		Expect(t).Status(http.StatusForbidden).End()

	apitest.New().Handler(handler).
		Post("/reset_password").FormData("email", "nobody@example.com").
		Expect(t).Status(http.StatusForbidden).End()

	issued := apitest.New().Handler(handler).
		Post("/reset_password").FormData("email", "guillaume@example.com").
		Expect(t).Status(http.StatusOK).End()
	var reset struct {
		ResetToken string `json:"reset_token"`
	}
	issued.JSON(&reset)
	require.NotEmpty(t, reset.ResetToken)

	apitest.New().Handler(handler).
		Put("/reset_password").
		FormData("email", "guillaume@example.com").
		FormData("reset_token", reset.ResetToken).
		FormData("new_password", "t4rt1fl3tt3").
		Expect(t).Status(http.StatusOK).Body(`{"email":"guillaume@example.com","message":"Password updated"}`).End()

	// The token is single use.
	apitest.New().Handler(handler).
		Put("/reset_password").
		FormData("email", "guillaume@example.com").
		FormData("reset_token", reset.ResetToken).
		FormData("new_password", "again").
		Expect(t).Status(http.StatusForbidden).End()

	apitest.New().Handler(handler).
		Post("/sessions").FormData("email", "guillaume@example.com").FormData("password", "t4rt1fl3tt3").
		Expect(t).Status(http.StatusOK).End()
}

func TestSessionAuthAPIFlow(t *testing.T) {
	handler := newTestServer(t, auth.TypeSession)

	apitest.New().Handler(handler).
		Post("/users").FormData("email", "bob@example.com").FormData("password", "H0lberton").
		Expect(t).Status(http.StatusOK).End()

	apitest.New().Handler(handler).
		Get("/api/v1/status").
		Expect(t).Status(http.StatusOK).Body(`{"status":"OK"}`).End()

	apitest.New().Handler(handler).
		Get("/api/v1/unauthorized").
		Expect(t).Status(http.StatusUnauthorized).End()

	apitest.New().Handler(handler).
		Get("/api/v1/users/me").
		Expect(t).Status(http.StatusUnauthorized).End()

	apitest.New().Handler(handler).
		Get("/api/v1/users/me").Cookie("_my_session_id", "unknown").
		Expect(t).Status(http.StatusForbidden).End()

	apitest.New().Handler(handler).
		Post("/api/v1/auth_session/login").FormData("email", "bob@example.com").
		Expect(t).Status(http.StatusBadRequest).Body(`{"error":"password missing"}`).End()

	apitest.New().Handler(handler).
		Post("/api/v1/auth_session/login").FormData("email", "nobody@example.com").FormData("password", "x").
		Expect(t).Status(http.StatusNotFound).End()

	apitest.New().Handler(handler).
		Post("/api/v1/auth_session/login").FormData("email", "bob@example.com").FormData("password", "wrong").
		Expect(t).Status(http.StatusUnauthorized).Body(`{"error":"wrong password"}`).End()

	first := apitest.New().Handler(handler).
		Post("/api/v1/auth_session/login").FormData("email", "bob@example.com").FormData("password", "H0lberton").
		Expect(t).Status(http.StatusOK).Body(`{"id":1,"email":"bob@example.com"}`).End()
	firstToken := cookieValue(t, first, "_my_session_id")

	second := apitest.New().Handler(handler).
		Post("/api/v1/auth_session/login").FormData("email", "bob@example.com").FormData("password", "H0lberton").
		Expect(t).Status(http.StatusOK).End()
	secondToken := cookieValue(t, second, "_my_session_id")
	assert.NotEqual(t, firstToken, secondToken)

	// Both registry sessions stay valid until destroyed.
	for _, token := range []string{firstToken, secondToken} {
		apitest.New().Handler(handler).
			Get("/api/v1/users/me").Cookie("_my_session_id", token).
			Expect(t).Status(http.StatusOK).Body(`{"id":1,"email":"bob@example.com"}`).End()
	}

	apitest.New().Handler(handler).
		Delete("/api/v1/auth_session/logout").Cookie("_my_session_id", firstToken).
		Expect(t).Status(http.StatusOK).Body(`{}`).End()

	apitest.New().Handler(handler).
		Get("/api/v1/users/me").Cookie("_my_session_id", firstToken).
		Expect(t).Status(http.StatusForbidden).End()

	apitest.New().Handler(handler).
		Get("/api/v1/users/me").Cookie("_my_session_id", secondToken).
		Expect(t).Status(http.StatusOK).End()
}

func TestBasicAuthAPIFlow(t *testing.T) {
	handler := newTestServer(t, auth.TypeBasic)

	apitest.New().Handler(handler).
		Post("/users").FormData("email", "bob@example.com").FormData("password", "H0lberton").
		Expect(t).Status(http.StatusOK).End()

	apitest.New().Handler(handler).
		Get("/api/v1/users/me").
		Expect(t).Status(http.StatusUnauthorized).End()

	apitest.New().Handler(handler).
		Get("/api/v1/users/me").BasicAuth("bob@example.com", "nope").
		Expect(t).Status(http.StatusForbidden).End()

	apitest.New().Handler(handler).
		Get("/api/v1/users/me").BasicAuth("bob@example.com", "H0lberton").
		Expect(t).Status(http.StatusOK).Body(`{"id":1,"email":"bob@example.com"}`).End()

	// Session views are only mounted for session_auth.
	apitest.New().Handler(handler).
		Post("/api/v1/auth_session/login").FormData("email", "bob@example.com").FormData("password", "H0lberton").
		Expect(t).Status(http.StatusNotFound).End()
}

func TestMetricsEndpoint(t *testing.T) {
	handler := newTestServer(t, auth.TypeSession)

	apitest.New().Handler(handler).
		Get("/api/v1/status").
		Expect(t).Status(http.StatusOK).End()

	result := apitest.New().Handler(handler).
		Get("/metrics").
		Expect(t).Status(http.StatusOK).End()
	assert.Contains(t, result.Response.Header.Get("Content-Type"), "text/plain")
}
