package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studybud/internal/middleware"
	"studybud/internal/models"
	"studybud/internal/service"
	"studybud/internal/view"
	"studybud/pkg/logger"
)

// RoomHandler 處理房間與訊息相關的請求
type RoomHandler struct {
	responder
	rooms    *service.RoomService
	messages *service.MessageService
}

func NewRoomHandler(rooms *service.RoomService, messages *service.MessageService, renderer view.Renderer, log logger.Logger) *RoomHandler {
	return &RoomHandler{
		responder: responder{view: renderer, log: log},
		rooms:     rooms,
		messages:  messages,
	}
}

// Index 首頁搜尋
func (h *RoomHandler) Index(c *gin.Context) {
	q := c.Query("q")

	page, err := h.rooms.Home(c.Request.Context(), q)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	h.render(c, http.StatusOK, "index.html", gin.H{
		"q":             q,
		"rooms":         page.Rooms,
		"topics":        page.Topics,
		"room_count":    page.RoomCount,
		"topic_total":   page.TotalRooms,
		"room_messages": page.Messages,
	})
}

// Room 顯示房間、訊息與參與者
func (h *RoomHandler) Room(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}

	detail, err := h.rooms.Detail(c.Request.Context(), id)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	h.render(c, http.StatusOK, "room.html", gin.H{
		"room":          detail.Room,
		"room_messages": detail.Messages,
		"participants":  detail.Participants,
	})
}

// PostMessage 在房間留言後導回房間；空白訊息不建立任何資料
func (h *RoomHandler) PostMessage(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}

	actor := middleware.CurrentVisitor(c).User
	_, err := h.rooms.PostMessage(c.Request.Context(), actor, id, c.PostForm("body"))
	if err != nil && validationError(err) == nil {
		h.abortWithError(c, err)
		return
	}

	redirect(c, roomURL(id))
}

// CreateRoomForm 顯示建立房間表單
func (h *RoomHandler) CreateRoomForm(c *gin.Context) {
	h.renderRoomForm(c, http.StatusOK, nil, service.RoomInput{}, nil)
}

func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var input service.RoomInput
	if err := c.ShouldBind(&input); err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	actor := middleware.CurrentVisitor(c).User
	if _, err := h.rooms.CreateRoom(c.Request.Context(), actor, input); err != nil {
		if verr := validationError(err); verr != nil {
			h.renderRoomForm(c, http.StatusOK, nil, input, verr.Fields)
			return
		}
		h.abortWithError(c, err)
		return
	}

	redirect(c, "/")
}

// UpdateRoomForm 只有房主可以開啟編輯表單
func (h *RoomHandler) UpdateRoomForm(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}

	room, err := h.rooms.GetRoomForHost(c.Request.Context(), middleware.CurrentVisitor(c).User, id)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	input := service.RoomInput{Topic: room.Topic.Name, Name: room.Name, Description: room.Description}
	h.renderRoomForm(c, http.StatusOK, room, input, nil)
}

func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	actor := middleware.CurrentVisitor(c).User

	room, err := h.rooms.GetRoomForHost(ctx, actor, id)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	var input service.RoomInput
	if err := c.ShouldBind(&input); err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	if _, err := h.rooms.UpdateRoom(ctx, actor, id, input); err != nil {
		if verr := validationError(err); verr != nil {
			h.renderRoomForm(c, http.StatusOK, room, input, verr.Fields)
			return
		}
		h.abortWithError(c, err)
		return
	}

	redirect(c, "/")
}

// DeleteRoomConfirm 顯示刪除確認頁
func (h *RoomHandler) DeleteRoomConfirm(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}

	room, err := h.rooms.GetRoomForHost(c.Request.Context(), middleware.CurrentVisitor(c).User, id)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	h.render(c, http.StatusOK, "delete.html", gin.H{
		"obj":       room,
		"obj_label": room.Name,
		"cancel":    roomURL(room.ID),
	})
}

func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}

	if err := h.rooms.DeleteRoom(c.Request.Context(), middleware.CurrentVisitor(c).User, id); err != nil {
		h.abortWithError(c, err)
		return
	}

	redirect(c, "/")
}

// DeleteMessageConfirm 只有發言者可以看到確認頁
func (h *RoomHandler) DeleteMessageConfirm(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}

	message, err := h.messages.GetMessageForAuthor(c.Request.Context(), middleware.CurrentVisitor(c).User, id)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	h.render(c, http.StatusOK, "delete.html", gin.H{
		"obj":       message,
		"obj_label": message.Body,
		"cancel":    roomURL(message.RoomID),
	})
}

func (h *RoomHandler) DeleteMessage(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}

	message, err := h.messages.DeleteMessage(c.Request.Context(), middleware.CurrentVisitor(c).User, id)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	redirect(c, roomURL(message.RoomID))
}

func (h *RoomHandler) renderRoomForm(c *gin.Context, status int, room *models.Room, input service.RoomInput, fieldErrors map[string]string) {
	topics, err := h.rooms.Topics(c.Request.Context())
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	data := gin.H{
		"topics": topics,
		"form":   input,
		"errors": fieldErrors,
	}
	if room != nil {
		data["room"] = room
	}
	h.render(c, status, "room_form.html", data)
}
