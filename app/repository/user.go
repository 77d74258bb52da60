package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-sessionauth/app/entity"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrNotFound         = errors.New("no user found with the specified attributes")
	ErrUserExists       = errors.New("user already exists")
	ErrInvalidCriteria  = errors.New("invalid search criteria")
	ErrUnknownAttribute = errors.New("unknown user attribute")
)

const mysqlErrDuplicateEntry = 1062

const selectUserColumns = `id, email, hashed_password, session_id, reset_token, created_at, updated_at`

// Criteria maps column names to the values a user row must hold. A nil value
// matches NULL.
type Criteria map[string]any

// Attributes maps column names to new values. A nil value stores NULL.
type Attributes map[string]any

var searchableColumns = map[string]struct{}{
	"id":              {},
	"email":           {},
	"hashed_password": {},
	"session_id":      {},
	"reset_token":     {},
}

var updatableColumns = map[string]struct{}{
	"email":           {},
	"hashed_password": {},
	"session_id":      {},
	"reset_token":     {},
}

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) AddUser(ctx context.Context, email, hashedPassword string) (*entity.User, error) {
	query := `
		INSERT INTO users (email, hashed_password, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`
	now := time.Now()
	result, err := r.db.ExecContext(ctx, query, email, hashedPassword, now, now)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry {
			return nil, ErrUserExists
		}
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &entity.User{
		ID:             uint64(id),
		Email:          email,
		HashedPassword: hashedPassword,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// FindUserBy returns the first user, in insertion order, matching every
// criterion.
func (r *UserRepository) FindUserBy(ctx context.Context, criteria Criteria) (*entity.User, error) {
	where, args, err := buildWhere(criteria)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + selectUserColumns + `
		FROM users WHERE ` + where + ` ORDER BY id LIMIT 1
	`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) FindUsersBy(ctx context.Context, criteria Criteria) ([]*entity.User, error) {
	where, args, err := buildWhere(criteria)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + selectUserColumns + `
		FROM users WHERE ` + where + ` ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*entity.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser applies all attributes to the user row in a single statement.
func (r *UserRepository) UpdateUser(ctx context.Context, id uint64, attrs Attributes) error {
	if len(attrs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		if _, ok := updatableColumns[key]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownAttribute, key)
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	assignments := make([]string, 0, len(keys)+1)
	args := make([]any, 0, len(keys)+2)
	for _, key := range keys {
		assignments = append(assignments, key+" = ?")
		args = append(args, attrs[key])
	}
	assignments = append(assignments, "updated_at = ?")
	args = append(args, time.Now(), id)

	query := `UPDATE users SET ` + strings.Join(assignments, ", ") + ` WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// ConsumeResetToken stores the new password hash and clears the reset token,
// but only while the row still holds resetToken. It reports whether the token
// was consumed by this call.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, id uint64, resetToken, hashedPassword string) (bool, error) {
	query := `UPDATE users SET hashed_password = ?, reset_token = NULL, updated_at = ? WHERE id = ? AND reset_token = ?`
	result, err := r.db.ExecContext(ctx, query, hashedPassword, time.Now(), id, resetToken)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func buildWhere(criteria Criteria) (string, []any, error) {
	if len(criteria) == 0 {
		return "", nil, ErrInvalidCriteria
	}

	keys := make([]string, 0, len(criteria))
	for key := range criteria {
		if _, ok := searchableColumns[key]; !ok {
			return "", nil, fmt.Errorf("%w: %s", ErrInvalidCriteria, key)
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	conditions := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, key := range keys {
		value := criteria[key]
		if value == nil {
			conditions = append(conditions, key+" IS NULL")
			continue
		}
		conditions = append(conditions, key+" = ?")
		args = append(args, value)
	}
	return strings.Join(conditions, " AND "), args, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*entity.User, error) {
	user := &entity.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.HashedPassword,
		&user.SessionID,
		&user.ResetToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}
