package service

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"studybud/internal/models"
	"studybud/pkg/logger"
)

const (
	EventMessageCreated = "message.created"
	EventMessageDeleted = "message.deleted"

	feedSendBuffer = 256
	feedReadLimit  = 4096
	feedPongWait   = 60 * time.Second
	feedPingPeriod = 54 * time.Second
	feedWriteWait  = 10 * time.Second
)

// FeedEvent 是推送給房間訂閱者的事件
type FeedEvent struct {
	Type    string          `json:"type"`
	RoomID  uint            `json:"room_id"`
	Message *models.Message `json:"message"`
}

// Publisher 讓服務層發布房間事件，而不依賴 websocket
type Publisher interface {
	Publish(roomID uint, event FeedEvent)
}

// FeedClient 代表一個 WebSocket 訂閱連線
type FeedClient struct {
	conn   *websocket.Conn
	roomID uint
	send   chan []byte
	once   sync.Once
}

func (c *FeedClient) close() {
	c.once.Do(func() { close(c.send) })
}

// RoomFeed 管理各房間的 WebSocket 訂閱者
type RoomFeed struct {
	clients    map[uint]map[*FeedClient]bool // roomID -> client -> bool
	clientsMux sync.RWMutex
	log        logger.Logger
}

func NewRoomFeed(log logger.Logger) *RoomFeed {
	return &RoomFeed{
		clients: make(map[uint]map[*FeedClient]bool),
		log:     log,
	}
}

// Serve 接管連線直到對方斷線，呼叫端不需要再關閉 conn
func (f *RoomFeed) Serve(conn *websocket.Conn, roomID uint) {
	client := &FeedClient{
		conn:   conn,
		roomID: roomID,
		send:   make(chan []byte, feedSendBuffer),
	}

	f.addClient(client)
	defer func() {
		f.removeClient(client)
		conn.Close()
	}()

	go f.writePump(client)
	f.readPump(client)
}

// readPump 只處理 pong 與關閉；訂閱者送來的內容一律忽略
func (f *RoomFeed) readPump(client *FeedClient) {
	client.conn.SetReadLimit(feedReadLimit)
	client.conn.SetReadDeadline(time.Now().Add(feedPongWait))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(feedPongWait))
		return nil
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				f.log.Warn("feed", "unexpected websocket close", map[string]interface{}{"room_id": client.roomID, "error": err.Error()})
			}
			return
		}
	}
}

func (f *RoomFeed) writePump(client *FeedClient) {
	ticker := time.NewTicker(feedPingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Publish 向房間內所有訂閱者廣播事件；佇列已滿的訂閱者會被移除
func (f *RoomFeed) Publish(roomID uint, event FeedEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		f.log.Error("feed", "event encoding failed", map[string]interface{}{"room_id": roomID, "error": err})
		return
	}

	var stalled []*FeedClient
	f.clientsMux.RLock()
	for client := range f.clients[roomID] {
		select {
		case client.send <- payload:
		default:
			stalled = append(stalled, client)
		}
	}
	f.clientsMux.RUnlock()

	for _, client := range stalled {
		f.removeClient(client)
	}
}

func (f *RoomFeed) addClient(client *FeedClient) {
	f.clientsMux.Lock()
	defer f.clientsMux.Unlock()

	if f.clients[client.roomID] == nil {
		f.clients[client.roomID] = make(map[*FeedClient]bool)
	}
	f.clients[client.roomID][client] = true
}

func (f *RoomFeed) removeClient(client *FeedClient) {
	f.clientsMux.Lock()
	defer f.clientsMux.Unlock()

	if clients, ok := f.clients[client.roomID]; ok {
		if _, present := clients[client]; present {
			delete(clients, client)
			client.close()
		}
		if len(clients) == 0 {
			delete(f.clients, client.roomID)
		}
	}
}

// Subscribers 回傳房間目前的訂閱者數量
func (f *RoomFeed) Subscribers(roomID uint) int {
	f.clientsMux.RLock()
	defer f.clientsMux.RUnlock()

	return len(f.clients[roomID])
}
