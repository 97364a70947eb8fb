package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studybud/internal/service"
	"studybud/internal/testutil"
)

func TestRoomFeedOverHTTP(t *testing.T) {
	app := newTestApp(t)
	alice := testutil.CreateUser(t, app.db, "alice", "password123")
	room := testutil.CreateRoom(t, app.db, alice, "python", "Python learners", "")
	cookie := app.login(t, "alice", "password123")

	server := httptest.NewServer(app.router)
	defer server.Close()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"/room/9999/ws", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// 匿名訪客也可以訂閱
	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("%s/room/%d/ws", wsURL, room.ID), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return app.services.Feed.Subscribers(room.ID) == 1 }, 2*time.Second, 10*time.Millisecond)

	w := app.do(http.MethodPost, fmt.Sprintf("/room/%d/", room.ID), url.Values{"body": {"live!"}}, cookie)
	require.Equal(t, http.StatusFound, w.Code)

	var event service.FeedEvent
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, service.EventMessageCreated, event.Type)
	assert.Equal(t, room.ID, event.RoomID)
	require.NotNil(t, event.Message)
	assert.Equal(t, "live!", event.Message.Body)
	assert.Equal(t, "alice", event.Message.User.Username)
}
