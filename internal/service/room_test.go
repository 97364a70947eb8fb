package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studybud/internal/models"
	"studybud/internal/testutil"
)

func TestCreateRoomTopicGetOrCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice", "password123")

	first, err := f.rooms.CreateRoom(ctx, alice, RoomInput{Topic: "rust", Name: "Crabs", Description: "ownership"})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, first.HostID)
	assert.Equal(t, "rust", first.Topic.Name)
	assert.EqualValues(t, 1, mustCount(t, f.db, &models.Topic{}))

	second, err := f.rooms.CreateRoom(ctx, alice, RoomInput{Topic: "rust", Name: "Crabs"})
	require.NoError(t, err, "duplicate room names are allowed")
	assert.Equal(t, first.TopicID, second.TopicID)
	assert.EqualValues(t, 1, mustCount(t, f.db, &models.Topic{}))

	_, err = f.rooms.CreateRoom(ctx, alice, RoomInput{Topic: "Rust", Name: "Other"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, mustCount(t, f.db, &models.Topic{}), "topic identity is case sensitive")
}

func TestCreateRoomValidation(t *testing.T) {
	f := newFixture(t)
	alice := testutil.CreateUser(t, f.db, "alice", "password123")

	_, err := f.rooms.CreateRoom(context.Background(), alice, RoomInput{Topic: "  ", Name: ""})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "topic")
	assert.Contains(t, verr.Fields, "name")
	assert.Zero(t, mustCount(t, f.db, &models.Room{}))

	_, err = f.rooms.CreateRoom(context.Background(), nil, RoomInput{Topic: "go", Name: "x"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRoomNameLengthCountsCharacters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice", "password123")

	// 200 個中文字超過 200 bytes，但仍在字元上限內
	room, err := f.rooms.CreateRoom(ctx, alice, RoomInput{Topic: "讀書會", Name: strings.Repeat("讀", 200)})
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("讀", 200), room.Name)

	_, err = f.rooms.CreateRoom(ctx, alice, RoomInput{Topic: "讀書會", Name: strings.Repeat("讀", 201)})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Ensure this value has at most 200 characters.", verr.Fields["name"])

	_, err = f.rooms.UpdateRoom(ctx, alice, room.ID, RoomInput{Topic: "\t ", Name: "ok"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "This field is required.", verr.Fields["topic"])

	assert.EqualValues(t, 1, mustCount(t, f.db, &models.Room{}))
}

func TestUpdateRoomHostOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice", "password123")
	bob := testutil.CreateUser(t, f.db, "bob", "password123")
	room := testutil.CreateRoom(t, f.db, alice, "python", "Python learners", "old")

	input := RoomInput{Topic: "golang", Name: "Gophers", Description: "new"}

	_, err := f.rooms.UpdateRoom(ctx, bob, room.ID, input)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.rooms.UpdateRoom(ctx, nil, room.ID, input)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.rooms.UpdateRoom(ctx, alice, 9999, input)
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := f.rooms.UpdateRoom(ctx, alice, room.ID, input)
	require.NoError(t, err)
	assert.Equal(t, room.ID, updated.ID)

	reloaded, err := f.rooms.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gophers", reloaded.Name)
	assert.Equal(t, "golang", reloaded.Topic.Name)
	assert.Equal(t, "new", reloaded.Description)
	assert.Equal(t, alice.ID, reloaded.HostID)
}

func TestDeleteRoomHostOnlyAndCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice", "password123")
	bob := testutil.CreateUser(t, f.db, "bob", "password123")
	room := testutil.CreateRoom(t, f.db, alice, "python", "Python learners", "")
	testutil.CreateMessage(t, f.db, room, bob, "hello")
	testutil.CreateMessage(t, f.db, room, alice, "hi bob")

	assert.ErrorIs(t, f.rooms.DeleteRoom(ctx, bob, room.ID), ErrForbidden)
	assert.EqualValues(t, 2, mustCount(t, f.db, &models.Message{}))

	require.NoError(t, f.rooms.DeleteRoom(ctx, alice, room.ID))
	assert.Zero(t, mustCount(t, f.db, &models.Message{}))
	assert.Zero(t, mustCount(t, f.db, &models.Room{}))
	assert.EqualValues(t, 1, mustCount(t, f.db, &models.Topic{}), "topics are never deleted")

	assert.ErrorIs(t, f.rooms.DeleteRoom(ctx, alice, room.ID), ErrNotFound)
}

func TestPostMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice", "password123")
	bob := testutil.CreateUser(t, f.db, "bob", "password123")
	room := testutil.CreateRoom(t, f.db, alice, "python", "Python learners", "")

	for i := 0; i < 3; i++ {
		msg, err := f.rooms.PostMessage(ctx, bob, room.ID, "question")
		require.NoError(t, err)
		assert.Equal(t, bob.ID, msg.UserID)
	}

	detail, err := f.rooms.Detail(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, detail.Participants, 1)
	assert.Equal(t, "bob", detail.Participants[0].Username)
	assert.Len(t, detail.Messages, 3)

	events := f.feed.Events()
	require.Len(t, events, 3)
	assert.Equal(t, EventMessageCreated, events[0].Type)
	assert.Equal(t, room.ID, events[0].RoomID)
	assert.Equal(t, "bob", events[0].Message.User.Username)
}

func TestPostMessageRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice", "password123")
	room := testutil.CreateRoom(t, f.db, alice, "python", "Python learners", "")

	_, err := f.rooms.PostMessage(ctx, alice, room.ID, "   ")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = f.rooms.PostMessage(ctx, nil, room.ID, "hi")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.rooms.PostMessage(ctx, alice, 9999, "hi")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Zero(t, mustCount(t, f.db, &models.Message{}))
	assert.Empty(t, f.feed.Events())
}

func TestDetailOrdersMessagesOldestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice", "password123")
	room := testutil.CreateRoom(t, f.db, alice, "python", "Python learners", "")

	for _, body := range []string{"one", "two", "three"} {
		_, err := f.rooms.PostMessage(ctx, alice, room.ID, body)
		require.NoError(t, err)
	}

	detail, err := f.rooms.Detail(ctx, room.ID)
	require.NoError(t, err)
	bodies := make([]string, 0, len(detail.Messages))
	for _, m := range detail.Messages {
		bodies = append(bodies, m.Body)
	}
	assert.Equal(t, []string{"one", "two", "three"}, bodies)

	_, err = f.rooms.Detail(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHome(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice", "password123")
	py := testutil.CreateRoom(t, f.db, alice, "python", "Python learners", "")
	goRoom := testutil.CreateRoom(t, f.db, alice, "golang", "Gophers", "")
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		testutil.CreateRoom(t, f.db, alice, "topic-"+name, "Room "+name, "")
	}
	testutil.CreateMessage(t, f.db, py, alice, "first python message")
	testutil.CreateMessage(t, f.db, goRoom, alice, "go message")
	testutil.CreateMessage(t, f.db, py, alice, "second python message")

	page, err := f.rooms.Home(ctx, "python")
	require.NoError(t, err)
	require.Len(t, page.Rooms, 1)
	assert.Equal(t, "Python learners", page.Rooms[0].Name)
	assert.EqualValues(t, 1, page.RoomCount)
	assert.EqualValues(t, 7, page.TotalRooms)
	assert.Len(t, page.Topics, homeTopicLimit)
	require.Len(t, page.Messages, 2)
	assert.Equal(t, "second python message", page.Messages[0].Body, "newest first")

	all, err := f.rooms.Home(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all.Rooms, 7)
	assert.Len(t, all.Messages, 3)
}

func TestTopicsOrderedByName(t *testing.T) {
	f := newFixture(t)
	alice := testutil.CreateUser(t, f.db, "alice", "password123")
	testutil.CreateRoom(t, f.db, alice, "zig", "z", "")
	testutil.CreateRoom(t, f.db, alice, "ada", "a", "")

	topics, err := f.rooms.Topics(context.Background())
	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.Equal(t, "ada", topics[0].Name)
}
