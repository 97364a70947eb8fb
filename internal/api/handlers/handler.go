package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studybud/internal/middleware"
	"studybud/internal/service"
	"studybud/internal/view"
	"studybud/pkg/logger"
)

// responder 是各處理器共用的渲染與錯誤對應
type responder struct {
	view view.Renderer
	log  logger.Logger
}

// render 補上目前登入的用戶後交給 Renderer
func (r responder) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["request_user"] = middleware.CurrentVisitor(c).User
	r.view.Render(c, status, name, data)
}

// abortWithError 把服務層錯誤對應到 HTTP 回應：404 頁面、空白的 403 或記錄後的 500 頁面
func (r responder) abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		r.NotFound(c)
	case errors.Is(err, service.ErrForbidden):
		c.AbortWithStatus(http.StatusForbidden)
	default:
		r.log.Error("http", "request failed", map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"error":  err,
		})
		_ = c.Error(err)
		r.render(c, http.StatusInternalServerError, "500.html", nil)
		c.Abort()
	}
}

// NotFound 渲染 404 頁面
func (r responder) NotFound(c *gin.Context) {
	r.render(c, http.StatusNotFound, "404.html", nil)
	c.Abort()
}

// paramID 解析路徑上的 :id；格式錯誤時直接回 404
func (r responder) paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		r.NotFound(c)
		return 0, false
	}
	return uint(id), true
}

func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}

func roomURL(id uint) string {
	return "/room/" + strconv.FormatUint(uint64(id), 10) + "/"
}

func profileURL(id uint) string {
	return "/profile/" + strconv.FormatUint(uint64(id), 10) + "/"
}

// validationError 取出欄位錯誤；不是驗證錯誤時回傳 nil
func validationError(err error) *service.ValidationError {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	return nil
}
