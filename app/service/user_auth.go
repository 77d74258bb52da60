package service

import (
	"context"
	"errors"

	"github.com/vibast-solutions/ms-go-sessionauth/app/entity"
	"github.com/vibast-solutions/ms-go-sessionauth/app/metrics"
	"github.com/vibast-solutions/ms-go-sessionauth/app/password"
	"github.com/vibast-solutions/ms-go-sessionauth/app/repository"
	"github.com/vibast-solutions/ms-go-sessionauth/app/session"

	"github.com/sirupsen/logrus"
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidToken = errors.New("invalid token")
)

type userStore interface {
	FindUserBy(ctx context.Context, criteria repository.Criteria) (*entity.User, error)
	AddUser(ctx context.Context, email, hashedPassword string) (*entity.User, error)
	UpdateUser(ctx context.Context, id uint64, attrs repository.Attributes) error
	ConsumeResetToken(ctx context.Context, id uint64, resetToken, hashedPassword string) (bool, error)
}

// UserAuthService keeps at most one session per user: the token lives on the
// user row and every login replaces it.
type UserAuthService interface {
	RegisterUser(ctx context.Context, email, pwd string) (*entity.User, error)
	ValidLogin(ctx context.Context, email, pwd string) bool
	CreateSession(ctx context.Context, email string) (string, error)
	GetUserFromSessionID(ctx context.Context, sessionID string) (*entity.User, error)
	DestroySession(ctx context.Context, userID uint64) error
	GetResetPasswordToken(ctx context.Context, email string) (string, error)
	UpdatePassword(ctx context.Context, resetToken, newPassword string) error
	ResetPassword(ctx context.Context, email, resetToken, newPassword string) error
}

type userAuthService struct {
	userRepo userStore
	hasher   password.Hasher
}

func NewUserAuthService(userRepo userStore, hasher password.Hasher) UserAuthService {
	return &userAuthService{
		userRepo: userRepo,
		hasher:   hasher,
	}
}

// RegisterUser checks for an existing email before inserting. The unique
// index on users.email closes the window between the two statements.
func (s *userAuthService) RegisterUser(ctx context.Context, email, pwd string) (*entity.User, error) {
	_, err := s.userRepo.FindUserBy(ctx, repository.Criteria{"email": email})
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := s.hasher.Hash(pwd)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.AddUser(ctx, email, hashedPassword)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	metrics.UsersRegisteredTotal.Inc()
	return user, nil
}

func (s *userAuthService) ValidLogin(ctx context.Context, email, pwd string) bool {
	user, err := s.userRepo.FindUserBy(ctx, repository.Criteria{"email": email})
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logrus.WithError(err).Warn("Login lookup failed")
		}
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.VariantUserService, metrics.ResultUnknownUser).Inc()
		return false
	}

	if !s.hasher.Verify(user.HashedPassword, pwd) {
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.VariantUserService, metrics.ResultWrongPassword).Inc()
		return false
	}

	metrics.LoginAttemptsTotal.WithLabelValues(metrics.VariantUserService, metrics.ResultSuccess).Inc()
	return true
}

// CreateSession returns "" and no error when email is unknown.
func (s *userAuthService) CreateSession(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.FindUserBy(ctx, repository.Criteria{"email": email})
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	sessionID := session.NewToken()
	if err = s.userRepo.UpdateUser(ctx, user.ID, repository.Attributes{"session_id": sessionID}); err != nil {
		return "", err
	}

	metrics.SessionsCreatedTotal.WithLabelValues(metrics.VariantUserService).Inc()
	return sessionID, nil
}

func (s *userAuthService) GetUserFromSessionID(ctx context.Context, sessionID string) (*entity.User, error) {
	if sessionID == "" {
		return nil, nil
	}

	user, err := s.userRepo.FindUserBy(ctx, repository.Criteria{"session_id": sessionID})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// DestroySession is idempotent.
func (s *userAuthService) DestroySession(ctx context.Context, userID uint64) error {
	if err := s.userRepo.UpdateUser(ctx, userID, repository.Attributes{"session_id": nil}); err != nil {
		return err
	}

	metrics.SessionsDestroyedTotal.WithLabelValues(metrics.VariantUserService).Inc()
	return nil
}

// GetResetPasswordToken issues a new token on every call, replacing any token
// issued before.
func (s *userAuthService) GetResetPasswordToken(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.FindUserBy(ctx, repository.Criteria{"email": email})
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}

	resetToken := session.NewToken()
	if err = s.userRepo.UpdateUser(ctx, user.ID, repository.Attributes{"reset_token": resetToken}); err != nil {
		return "", err
	}

	metrics.PasswordResetsTotal.WithLabelValues(metrics.ResetStageIssued).Inc()
	return resetToken, nil
}

// UpdatePassword consumes resetToken: the new hash and the cleared token are
// written in one statement.
func (s *userAuthService) UpdatePassword(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" {
		return ErrInvalidToken
	}
	return s.consumeResetToken(ctx, repository.Criteria{"reset_token": resetToken}, resetToken, newPassword)
}

// ResetPassword is UpdatePassword restricted to the user owning email.
func (s *userAuthService) ResetPassword(ctx context.Context, email, resetToken, newPassword string) error {
	if resetToken == "" {
		return ErrInvalidToken
	}
	return s.consumeResetToken(ctx, repository.Criteria{"email": email, "reset_token": resetToken}, resetToken, newPassword)
}

// consumeResetToken re-checks the token in the UPDATE itself, so two requests
// racing on the same token cannot both change the password.
func (s *userAuthService) consumeResetToken(ctx context.Context, criteria repository.Criteria, resetToken, newPassword string) error {
	user, err := s.userRepo.FindUserBy(ctx, criteria)
	if errors.Is(err, repository.ErrNotFound) {
		metrics.PasswordResetsTotal.WithLabelValues(metrics.ResetStageRejected).Inc()
		return ErrInvalidToken
	}
	if err != nil {
		return err
	}

	hashedPassword, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	consumed, err := s.userRepo.ConsumeResetToken(ctx, user.ID, resetToken, hashedPassword)
	if err != nil {
		return err
	}
	if !consumed {
		metrics.PasswordResetsTotal.WithLabelValues(metrics.ResetStageRejected).Inc()
		return ErrInvalidToken
	}

	metrics.PasswordResetsTotal.WithLabelValues(metrics.ResetStageCompleted).Inc()
	return nil
}
