package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studybud/internal/middleware"
	"studybud/internal/service"
	"studybud/internal/view"
	"studybud/pkg/logger"
)

// UserHandler 處理個人頁面與個人資料編輯
type UserHandler struct {
	responder
	users *service.UserService
}

func NewUserHandler(users *service.UserService, renderer view.Renderer, log logger.Logger) *UserHandler {
	return &UserHandler{
		responder: responder{view: renderer, log: log},
		users:     users,
	}
}

func (h *UserHandler) Profile(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}

	profile, err := h.users.Profile(c.Request.Context(), id)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	h.render(c, http.StatusOK, "profile.html", gin.H{
		"user":          profile.User,
		"rooms":         profile.Rooms,
		"room_messages": profile.Messages,
		"topics":        profile.Topics,
		"topic_total":   profile.TotalRooms,
	})
}

// UpdateUserForm 表單一律綁定目前登入的用戶
func (h *UserHandler) UpdateUserForm(c *gin.Context) {
	user := middleware.CurrentVisitor(c).User
	h.renderForm(c, service.UpdateUserInput{Username: user.Username, Email: user.Email}, nil)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	var input service.UpdateUserInput
	if err := c.ShouldBind(&input); err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	user, err := h.users.UpdateUser(c.Request.Context(), middleware.CurrentVisitor(c).User, input)
	if err != nil {
		if verr := validationError(err); verr != nil {
			h.renderForm(c, input, verr.Fields)
			return
		}
		h.abortWithError(c, err)
		return
	}

	redirect(c, profileURL(user.ID))
}

func (h *UserHandler) renderForm(c *gin.Context, input service.UpdateUserInput, fieldErrors map[string]string) {
	h.render(c, http.StatusOK, "update_user.html", gin.H{
		"form":   input,
		"errors": fieldErrors,
	})
}
