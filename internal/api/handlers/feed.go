package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"studybud/internal/service"
	"studybud/internal/view"
	"studybud/pkg/logger"
)

// 定義 WebSocket 升級器
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// FeedHandler 讓瀏覽器訂閱房間的即時訊息
type FeedHandler struct {
	responder
	rooms *service.RoomService
	feed  *service.RoomFeed
}

func NewFeedHandler(rooms *service.RoomService, feed *service.RoomFeed, renderer view.Renderer, log logger.Logger) *FeedHandler {
	return &FeedHandler{
		responder: responder{view: renderer, log: log},
		rooms:     rooms,
		feed:      feed,
	}
}

// Subscribe 升級為 WebSocket 並阻塞直到連線結束；不存在的房間回 404
func (h *FeedHandler) Subscribe(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}

	if _, err := h.rooms.GetRoom(c.Request.Context(), id); err != nil {
		h.abortWithError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 已經寫入錯誤回應
		h.log.Warn("feed", "websocket upgrade failed", map[string]interface{}{"room_id": id, "error": err.Error()})
		return
	}

	h.feed.Serve(conn, id)
}
