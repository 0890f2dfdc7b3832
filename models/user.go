package models

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
)

type User struct {
	tableName struct{} `pg:"\"user\""`

	UserID       uuid.UUID `pg:"user_id,pk,type:uuid"`
	Username     string    `pg:"username,notnull"`
	PasswordHash string    `pg:"password_hash,notnull"`
	CreatedAt    time.Time `pg:"created_at,default:now()"`
	UpdatedAt    time.Time `pg:"updated_at,default:now()"`
}

var ErrUsernameTaken = errors.New("username already taken")

func GetUserByUsername(ctx context.Context, db *pg.DB, username string) (*User, error) {
	var user User
	err := db.Model(&user).
		Context(ctx).
		Where("username = ?", username).
		Limit(1).
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch user")
	}
	return &user, nil
}

func GetUserByID(ctx context.Context, db *pg.DB, userID uuid.UUID) (*User, error) {
	var user User
	err := db.Model(&user).
		Context(ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch user")
	}
	return &user, nil
}

// CreateUser inserts a new user with a generated id. The unique index on
// username turns concurrent registrations of the same name into
// ErrUsernameTaken rather than duplicate rows.
func CreateUser(ctx context.Context, db *pg.DB, username string, passwordHash string) (*User, error) {
	user := &User{
		UserID:       uuid.NewV4(),
		Username:     username,
		PasswordHash: passwordHash,
	}
	_, err := db.Model(user).
		Context(ctx).
		Insert()
	if err != nil {
		var pgErr pg.Error
		if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
			return nil, ErrUsernameTaken
		}
		return nil, errors.Wrap(err, "failed to create user")
	}
	return user, nil
}
