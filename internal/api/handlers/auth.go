package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"studybud/internal/middleware"
	"studybud/internal/service"
	"studybud/internal/view"
	"studybud/pkg/logger"
)

const (
	noticeUserMissing        = "User does not exist"
	noticeInvalidCredentials = "Username OR password does not exist"
	noticeRegistrationFailed = "An error occured during registration"
)

// AuthHandler 處理登入、註冊與登出
type AuthHandler struct {
	responder
	users    *service.UserService
	sessions *middleware.SessionManager
}

func NewAuthHandler(users *service.UserService, sessions *middleware.SessionManager, renderer view.Renderer, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		responder: responder{view: renderer, log: log},
		users:     users,
		sessions:  sessions,
	}
}

// LoginPage 已登入的用戶直接導回首頁
func (h *AuthHandler) LoginPage(c *gin.Context) {
	if middleware.CurrentVisitor(c).Authenticated() {
		redirect(c, "/")
		return
	}

	h.renderLogin(c, http.StatusOK, c.Query("next"), "", nil)
}

// Login 用戶名稱不分大小寫。找不到用戶時只加上提示，仍然繼續驗證密碼
func (h *AuthHandler) Login(c *gin.Context) {
	if middleware.CurrentVisitor(c).Authenticated() {
		redirect(c, "/")
		return
	}

	ctx := c.Request.Context()
	username := strings.ToLower(c.PostForm("username"))
	password := c.PostForm("password")
	next := c.PostForm("next")
	if next == "" {
		next = c.Query("next")
	}

	var notices []string
	exists, err := h.users.UserExists(ctx, username)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	if !exists {
		notices = append(notices, noticeUserMissing)
	}

	user, err := h.users.Authenticate(ctx, username, password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.log.Info("auth", "login failed", map[string]interface{}{"username": username, "client_ip": c.ClientIP()})
		notices = append(notices, noticeInvalidCredentials)
		h.renderLogin(c, http.StatusOK, next, username, notices)
		return
	}
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	if err := h.sessions.Login(c, user); err != nil {
		h.abortWithError(c, err)
		return
	}
	redirect(c, safeNext(next))
}

func (h *AuthHandler) RegisterPage(c *gin.Context) {
	h.renderRegister(c, http.StatusOK, service.RegisterInput{}, nil, nil)
}

// Register 成功後自動登入並導回首頁
func (h *AuthHandler) Register(c *gin.Context) {
	var input service.RegisterInput
	if err := c.ShouldBind(&input); err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	user, err := h.users.Register(c.Request.Context(), input)
	if err != nil {
		if verr := validationError(err); verr != nil {
			form := service.RegisterInput{Username: input.Username}
			h.renderRegister(c, http.StatusOK, form, verr.Fields, []string{noticeRegistrationFailed})
			return
		}
		h.abortWithError(c, err)
		return
	}

	if err := h.sessions.Login(c, user); err != nil {
		h.abortWithError(c, err)
		return
	}
	redirect(c, "/")
}

// Logout 撤銷 session 後導回首頁
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.Logout(c)
	redirect(c, "/")
}

func (h *AuthHandler) renderLogin(c *gin.Context, status int, next, username string, notices []string) {
	h.render(c, status, "login.html", gin.H{
		"page":     "login",
		"next":     next,
		"username": username,
		"messages": notices,
	})
}

func (h *AuthHandler) renderRegister(c *gin.Context, status int, form service.RegisterInput, fieldErrors map[string]string, notices []string) {
	h.render(c, status, "login.html", gin.H{
		"page":     "register",
		"form":     form,
		"errors":   fieldErrors,
		"messages": notices,
	})
}

// safeNext 只接受站內路徑，避免被當成開放重導
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}

	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}
