package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	uuid "github.com/satori/go.uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/showlog-io/showlog/models"
	"github.com/showlog-io/showlog/services/auth"
)

type fakeUserStore struct {
	users map[string]*models.User
}

func (f *fakeUserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return f.users[username], nil
}

func (f *fakeUserStore) GetByID(_ context.Context, userID uuid.UUID) (*models.User, error) {
	for _, u := range f.users {
		if uuid.Equal(u.UserID, userID) {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) Create(_ context.Context, username string, passwordHash string) (*models.User, error) {
	if _, ok := f.users[username]; ok {
		return nil, models.ErrUsernameTaken
	}
	u := &models.User{
		UserID:       uuid.NewV4(),
		Username:     username,
		PasswordHash: passwordHash,
	}
	f.users[username] = u
	return u, nil
}

type plainVerifier struct{}

func (s plainVerifier) Hash(password string) (string, error) {
	return password, nil
}

func (s plainVerifier) Verify(hash string, password string) error {
	if hash != password {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return nil
}

func newTestRouter() (*gin.Engine, *fakeUserStore) {
	gin.SetMode(gin.TestMode)
	store := &fakeUserStore{users: make(map[string]*models.User)}
	r := gin.New()
	r.Use(sessions.Sessions("showlog", cookie.NewStore([]byte("test-secret"))))
	RegisterHandler(r, auth.NewWith(store, plainVerifier{}))
	return r, store
}

func postForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegister(t *testing.T) {
	t.Run("creates the account and starts a session", func(t *testing.T) {
		r, store := newTestRouter()

		w := postForm(r, "/register", url.Values{"username": {"alice"}, "password": {"sekret"}})
		require.Equal(t, http.StatusOK, w.Code)

		var res userResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, "alice", res.Username)
		assert.NotEmpty(t, res.ID)
		assert.Contains(t, store.users, "alice")
		assert.NotEmpty(t, w.Result().Cookies())
	})

	t.Run("missing credentials are rejected", func(t *testing.T) {
		r, _ := newTestRouter()
		w := postForm(r, "/register", url.Values{"username": {"alice"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		r, _ := newTestRouter()
		w := postForm(r, "/register", url.Values{"username": {"alice"}, "password": {"sekret"}})
		require.Equal(t, http.StatusOK, w.Code)
		w = postForm(r, "/register", url.Values{"username": {"alice"}, "password": {"other"}})
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestLogin(t *testing.T) {
	t.Run("succeeds with registered credentials", func(t *testing.T) {
		r, _ := newTestRouter()
		w := postForm(r, "/register", url.Values{"username": {"alice"}, "password": {"sekret"}})
		require.Equal(t, http.StatusOK, w.Code)

		w = postForm(r, "/login", url.Values{"username": {"alice"}, "password": {"sekret"}})
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Result().Cookies())
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		r, _ := newTestRouter()
		w := postForm(r, "/register", url.Values{"username": {"alice"}, "password": {"sekret"}})
		require.Equal(t, http.StatusOK, w.Code)

		w = postForm(r, "/login", url.Values{"username": {"alice"}, "password": {"wrong"}})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown user is unauthorized", func(t *testing.T) {
		r, _ := newTestRouter()
		w := postForm(r, "/login", url.Values{"username": {"nobody"}, "password": {"sekret"}})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestLogout(t *testing.T) {
	r, _ := newTestRouter()
	w := postForm(r, "/logout", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
