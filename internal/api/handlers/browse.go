package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studybud/internal/service"
	"studybud/internal/view"
	"studybud/pkg/logger"
)

// BrowseHandler 處理主題與動態頁面
type BrowseHandler struct {
	responder
	topics   *service.TopicService
	messages *service.MessageService
}

func NewBrowseHandler(topics *service.TopicService, messages *service.MessageService, renderer view.Renderer, log logger.Logger) *BrowseHandler {
	return &BrowseHandler{
		responder: responder{view: renderer, log: log},
		topics:    topics,
		messages:  messages,
	}
}

func (h *BrowseHandler) Topics(c *gin.Context) {
	q := c.Query("q")

	topics, total, err := h.topics.Search(c.Request.Context(), q)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	h.render(c, http.StatusOK, "topics.html", gin.H{
		"q":           q,
		"topics":      topics,
		"topic_total": total,
	})
}

func (h *BrowseHandler) Activity(c *gin.Context) {
	messages, err := h.messages.Activity(c.Request.Context())
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	h.render(c, http.StatusOK, "activity.html", gin.H{
		"room_messages": messages,
	})
}
