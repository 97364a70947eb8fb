package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"studybud/internal/models"
	"studybud/internal/repository"
	"studybud/internal/utils"
	"studybud/pkg/config"
	"studybud/pkg/logger"
)

const visitorKey = "visitor"

var errInvalidSession = errors.New("invalid session")

// Visitor 是每個請求解析出的目前用戶；匿名訪客的 User 為 nil
type Visitor struct {
	User      *models.User
	SessionID string
	ExpiresAt time.Time
}

func (v *Visitor) Authenticated() bool {
	return v != nil && v.User != nil
}

// CurrentVisitor 取得 SessionManager.Resolve 放入的訪客，沒有時視為匿名
func CurrentVisitor(c *gin.Context) *Visitor {
	if value, ok := c.Get(visitorKey); ok {
		if visitor, ok := value.(*Visitor); ok {
			return visitor
		}
	}
	return &Visitor{}
}

// UserLoader 依 id 載入用戶
type UserLoader interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
}

// SessionManager 以 HttpOnly cookie 保存簽名的 JWT，登出的 session id 記錄在記憶體直到過期
type SessionManager struct {
	issuer     *utils.TokenIssuer
	users      UserLoader
	revoked    *cache.Cache
	cookieName string
	secure     bool
	log        logger.Logger
}

func NewSessionManager(cfg config.SessionConfig, users UserLoader, log logger.Logger) *SessionManager {
	issuer := utils.NewTokenIssuer(cfg.Secret, cfg.TTL)

	return &SessionManager{
		issuer:     issuer,
		users:      users,
		revoked:    cache.New(cfg.TTL, 10*time.Minute),
		cookieName: cfg.CookieName,
		secure:     cfg.Secure,
		log:        log,
	}
}

// Login 簽發新的 session 並寫入 cookie
func (m *SessionManager) Login(c *gin.Context, user *models.User) error {
	token, claims, err := m.issuer.GenerateToken(user.ID)
	if err != nil {
		return err
	}

	m.setCookie(c, token, int(m.issuer.TTL().Seconds()))
	c.Set(visitorKey, &Visitor{
		User:      user,
		SessionID: claims.Id,
		ExpiresAt: time.Unix(claims.ExpiresAt, 0),
	})

	m.log.Info("auth", "session started", map[string]interface{}{"user_id": user.ID, "session_id": claims.Id})
	return nil
}

// Logout 撤銷目前的 session 並清除 cookie
func (m *SessionManager) Logout(c *gin.Context) {
	visitor := CurrentVisitor(c)
	if visitor.SessionID != "" {
		if remaining := time.Until(visitor.ExpiresAt); remaining > 0 {
			m.revoked.Set(visitor.SessionID, true, remaining)
		}
		m.log.Info("auth", "session ended", map[string]interface{}{"session_id": visitor.SessionID})
	}

	m.setCookie(c, "", -1)
	c.Set(visitorKey, &Visitor{})
}

// Revoked 回報 session id 是否已登出
func (m *SessionManager) Revoked(sessionID string) bool {
	_, found := m.revoked.Get(sessionID)
	return found
}

// Resolve 解析 cookie 並把 Visitor 放入 context；無效的 cookie 會被清除
func (m *SessionManager) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		visitor := &Visitor{}

		if token, err := c.Cookie(m.cookieName); err == nil && token != "" {
			resolved, err := m.resolve(c.Request.Context(), token)
			switch {
			case err == nil:
				visitor = resolved
			case errors.Is(err, errInvalidSession):
				m.log.Debug("auth", "discarding session cookie", map[string]interface{}{"reason": err.Error()})
				m.setCookie(c, "", -1)
			default:
				m.log.Error("auth", "failed to load session user", map[string]interface{}{"error": err})
			}
		}

		c.Set(visitorKey, visitor)
		c.Next()
	}
}

func (m *SessionManager) resolve(ctx context.Context, token string) (*Visitor, error) {
	claims, err := m.issuer.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidSession, err)
	}
	if m.Revoked(claims.Id) {
		return nil, fmt.Errorf("%w: revoked", errInvalidSession)
	}

	user, err := m.users.GetUser(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: user %d no longer exists", errInvalidSession, claims.UserID)
	}
	if err != nil {
		return nil, err
	}

	return &Visitor{
		User:      user,
		SessionID: claims.Id,
		ExpiresAt: time.Unix(claims.ExpiresAt, 0),
	}, nil
}

func (m *SessionManager) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, value, maxAge, "/", "", m.secure, true)
}

// LoginRequired 把匿名訪客以 302 導向登入頁，並以 next 帶上原本的路徑
func LoginRequired(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentVisitor(c).Authenticated() {
			c.Next()
			return
		}

		target := loginPath + "?" + url.Values{"next": {c.Request.URL.RequestURI()}}.Encode()
		c.Redirect(http.StatusFound, target)
		c.Abort()
	}
}
