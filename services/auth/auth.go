package auth

import (
	"context"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"
	cs "github.com/webtor-io/common-services"

	"github.com/showlog-io/showlog/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidInput       = errors.New("username and password are required")
)

const (
	sessionUserKey = "user_id"
	userContextKey = "auth_user"
)

// UserStore is the durable side of account management.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	Create(ctx context.Context, username string, passwordHash string) (*models.User, error)
}

type Auth struct {
	store    UserStore
	verifier Verifier
}

func New(pg *cs.PG) *Auth {
	return &Auth{
		store:    NewPGUserStore(pg),
		verifier: NewBcryptVerifier(),
	}
}

func NewWith(store UserStore, verifier Verifier) *Auth {
	return &Auth{
		store:    store,
		verifier: verifier,
	}
}

// Register creates an account. The password never reaches storage; only
// the collaborator-produced hash does.
func (s *Auth) Register(ctx context.Context, username string, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}
	hash, err := s.verifier.Hash(password)
	if err != nil {
		return nil, err
	}
	return s.store.Create(ctx, username, hash)
}

// Login verifies credentials through the collaborator and returns the
// account. Unknown usernames and wrong passwords are indistinguishable.
func (s *Auth) Login(ctx context.Context, username string, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}
	user, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.verifier.Verify(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// User is the request-scoped identity threaded through every overlay
// operation. Never ambient: handlers pass it explicitly.
type User struct {
	ID       uuid.UUID
	Username string
}

func (s *User) HasAuth() bool {
	return s != nil && s.ID != uuid.Nil
}

// Middleware resolves the session cookie to a User and stores it in the
// request context. Requests without a valid session proceed anonymous.
func (s *Auth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		v := sess.Get(sessionUserKey)
		id, ok := v.(string)
		if !ok {
			return
		}
		uID, err := uuid.FromString(id)
		if err != nil {
			return
		}
		user, err := s.store.GetByID(c.Request.Context(), uID)
		if err != nil {
			log.WithError(err).Error("failed to load session user")
			return
		}
		if user == nil {
			return
		}
		SetContextUser(c, &User{
			ID:       user.UserID,
			Username: user.Username,
		})
	}
}

func SetContextUser(c *gin.Context, u *User) {
	c.Set(userContextKey, u)
}

func GetUserFromContext(c *gin.Context) *User {
	if v, ok := c.Get(userContextKey); ok {
		if u, ok := v.(*User); ok {
			return u
		}
	}
	return &User{}
}

// StartSession binds the session cookie to the user.
func StartSession(c *gin.Context, user *models.User) error {
	sess := sessions.Default(c)
	sess.Set(sessionUserKey, user.UserID.String())
	return sess.Save()
}

// EndSession clears the session cookie.
func EndSession(c *gin.Context) error {
	sess := sessions.Default(c)
	sess.Clear()
	return sess.Save()
}
