package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"studybud/internal/models"
	"studybud/internal/repository"
	"studybud/pkg/config"
	"studybud/pkg/logger"
)

type stubUsers struct {
	users map[uint]*models.User
	err   error
}

func (s *stubUsers) GetUser(ctx context.Context, id uint) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func newTestSessions(users UserLoader) *SessionManager {
	return NewSessionManager(config.SessionConfig{
		Secret:     "test-secret",
		CookieName: "sessionid",
		TTL:        time.Hour,
	}, users, logger.NewNop())
}

// newTestRouter 提供登入、登出與查詢目前訪客的路由
func newTestRouter(sessions *SessionManager, login *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Resolve())

	r.GET("/login", func(c *gin.Context) {
		if err := sessions.Login(c, login); err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, "ok")
	})
	r.GET("/logout", func(c *gin.Context) {
		sessions.Logout(c)
		c.String(http.StatusOK, "bye")
	})
	r.GET("/whoami", func(c *gin.Context) {
		visitor := CurrentVisitor(c)
		if !visitor.Authenticated() {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, visitor.User.Username)
	})
	r.GET("/private/page", LoginRequired("/login/"), func(c *gin.Context) {
		c.String(http.StatusOK, "secret")
	})
	return r
}

func get(r *gin.Engine, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func cookieFrom(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == "sessionid" {
			return c
		}
	}
	return nil
}

func TestSessionLifecycle(t *testing.T) {
	alice := &models.User{Model: gorm.Model{ID: 1}, Username: "alice"}
	sessions := newTestSessions(&stubUsers{users: map[uint]*models.User{1: alice}})
	r := newTestRouter(sessions, alice)

	w := get(r, "/whoami", nil)
	assert.Equal(t, "anonymous", w.Body.String())

	w = get(r, "/login", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookie := cookieFrom(w)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	w = get(r, "/whoami", cookie)
	assert.Equal(t, "alice", w.Body.String())

	w = get(r, "/private/page", cookie)
	assert.Equal(t, "secret", w.Body.String())

	w = get(r, "/logout", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	cleared := cookieFrom(w)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	w = get(r, "/whoami", cookie)
	assert.Equal(t, "anonymous", w.Body.String(), "revoked session id is rejected")
}

func TestLoginRequiredRedirect(t *testing.T) {
	sessions := newTestSessions(&stubUsers{})
	r := newTestRouter(sessions, nil)

	w := get(r, "/private/page?tab=2", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login/?next=%2Fprivate%2Fpage%3Ftab%3D2", w.Header().Get("Location"))
}

func TestResolveDiscardsStaleSessions(t *testing.T) {
	alice := &models.User{Model: gorm.Model{ID: 1}, Username: "alice"}
	users := &stubUsers{users: map[uint]*models.User{1: alice}}
	sessions := newTestSessions(users)
	r := newTestRouter(sessions, alice)

	cookie := cookieFrom(get(r, "/login", nil))
	require.NotNil(t, cookie)

	// 資料庫故障時不清除 cookie
	users.err = errors.New("database is down")
	w := get(r, "/whoami", cookie)
	assert.Equal(t, "anonymous", w.Body.String())
	assert.Nil(t, cookieFrom(w))

	// 用戶已被刪除時清除 cookie
	users.err = nil
	delete(users.users, 1)
	w = get(r, "/whoami", cookie)
	assert.Equal(t, "anonymous", w.Body.String())
	cleared := cookieFrom(w)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	w = get(r, "/whoami", &http.Cookie{Name: "sessionid", Value: "garbage"})
	assert.Equal(t, "anonymous", w.Body.String())
	assert.NotNil(t, cookieFrom(w))
}
