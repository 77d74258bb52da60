package entity

import (
	"database/sql"
	"time"
)

type User struct {
	ID             uint64
	Email          string
	HashedPassword string
	SessionID      sql.NullString
	ResetToken     sql.NullString
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
