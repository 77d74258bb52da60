package service_test

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/vibast-solutions/ms-go-sessionauth/app/entity"
	"github.com/vibast-solutions/ms-go-sessionauth/app/repository"
)

// memoryUserStore mirrors the repository contract, including the unique
// email index, without a database.
type memoryUserStore struct {
	mu     sync.Mutex
	users  []*entity.User
	nextID uint64

	addErr    error
	updateErr error
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{nextID: 1}
}

func (s *memoryUserStore) FindUserBy(_ context.Context, criteria repository.Criteria) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(criteria) == 0 {
		return nil, repository.ErrInvalidCriteria
	}
	for _, user := range s.users {
		matched := true
		for key, value := range criteria {
			ok, err := matches(user, key, value)
			if err != nil {
				return nil, err
			}
			if !ok {
				matched = false
				break
			}
		}
		if matched {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memoryUserStore) AddUser(_ context.Context, email, hashedPassword string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.addErr != nil {
		return nil, s.addErr
	}
	for _, user := range s.users {
		if user.Email == email {
			return nil, repository.ErrUserExists
		}
	}
	now := time.Now()
	user := &entity.User{
		ID:             s.nextID,
		Email:          email,
		HashedPassword: hashedPassword,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.nextID++
	s.users = append(s.users, user)
	clone := *user
	return &clone, nil
}

func (s *memoryUserStore) UpdateUser(_ context.Context, id uint64, attrs repository.Attributes) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.updateErr != nil {
		return s.updateErr
	}
	var target *entity.User
	for _, user := range s.users {
		if user.ID == id {
			target = user
		}
	}
	if target == nil {
		return repository.ErrNotFound
	}

	updated := *target
	for key, value := range attrs {
		switch key {
		case "email":
			updated.Email = value.(string)
		case "hashed_password":
			updated.HashedPassword = value.(string)
		case "session_id":
			updated.SessionID = nullString(value)
		case "reset_token":
			updated.ResetToken = nullString(value)
		default:
			return fmt.Errorf("%w: %s", repository.ErrUnknownAttribute, key)
		}
	}
	updated.UpdatedAt = time.Now()
	*target = updated
	return nil
}

func (s *memoryUserStore) ConsumeResetToken(_ context.Context, id uint64, resetToken, hashedPassword string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.updateErr != nil {
		return false, s.updateErr
	}
	for _, user := range s.users {
		if user.ID != id || !user.ResetToken.Valid || user.ResetToken.String != resetToken {
			continue
		}
		user.HashedPassword = hashedPassword
		user.ResetToken = sql.NullString{}
		user.UpdatedAt = time.Now()
		return true, nil
	}
	return false, nil
}

func (s *memoryUserStore) get(id uint64) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.ID == id {
			clone := *user
			return &clone
		}
	}
	return nil
}

func matches(user *entity.User, key string, value any) (bool, error) {
	switch key {
	case "id":
		return user.ID == value, nil
	case "email":
		return user.Email == value, nil
	case "hashed_password":
		return user.HashedPassword == value, nil
	case "session_id":
		return nullString(value) == user.SessionID, nil
	case "reset_token":
		return nullString(value) == user.ResetToken, nil
	default:
		return false, fmt.Errorf("%w: %s", repository.ErrInvalidCriteria, key)
	}
}

func nullString(value any) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: value.(string), Valid: true}
}

// gatedUserStore holds every reset token lookup until the expected number of
// callers have read the row, so their updates race on the same token.
type gatedUserStore struct {
	*memoryUserStore
	lookups sync.WaitGroup
}

func newGatedUserStore(callers int) *gatedUserStore {
	store := &gatedUserStore{memoryUserStore: newMemoryUserStore()}
	store.lookups.Add(callers)
	return store
}

func (s *gatedUserStore) FindUserBy(ctx context.Context, criteria repository.Criteria) (*entity.User, error) {
	user, err := s.memoryUserStore.FindUserBy(ctx, criteria)
	if _, ok := criteria["reset_token"]; ok {
		s.lookups.Done()
		s.lookups.Wait()
	}
	return user, err
}
