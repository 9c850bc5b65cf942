package room

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchparty/server/internal/domain"
	connInmemory "github.com/watchparty/server/internal/repository/connection/inmemory"
	presenceInmemory "github.com/watchparty/server/internal/repository/presence/inmemory"
	roomInmemory "github.com/watchparty/server/internal/repository/room/inmemory"
	"github.com/watchparty/server/pkg/ytmedia"
)

type stubMedia struct {
	details    ytmedia.VideoDetails
	detailsErr error
	results    []ytmedia.SearchResult
	searchErr  error
}

func (m *stubMedia) Search(ctx context.Context, query string) ([]ytmedia.SearchResult, error) {
	return m.results, m.searchErr
}

func (m *stubMedia) Details(ctx context.Context, videoId string) (ytmedia.VideoDetails, error) {
	return m.details, m.detailsErr
}

type fixture struct {
	service *service
	media   *stubMedia
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	media := &stubMedia{}
	s := NewService(
		roomInmemory.NewRepo(),
		presenceInmemory.NewRepo(),
		connInmemory.NewRepo(),
		media,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		&Config{
			MessagesLimit: domain.DefaultMessagesLimit,
			SyncInterval:  5 * time.Second,
			LookupTimeout: time.Second,
		},
	)

	f := &fixture{
		service: s,
		media:   media,
		now:     time.Unix(1700000000, 0),
	}
	s.clock = func() time.Time { return f.now }

	return f
}

func (f *fixture) connect(t *testing.T) (string, *websocket.Conn) {
	t.Helper()

	conn := &websocket.Conn{}
	clientId, err := f.service.Connect(conn)
	require.NoError(t, err)

	return clientId, conn
}

func TestCreateRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, _ := f.connect(t)

	resp, err := f.service.CreateRoom(ctx, &CreateRoomParams{
		ClientId: alice,
		RoomName: "Movie Night",
		Username: "Alice",
	})
	require.NoError(t, err)

	assert.Len(t, resp.Room.Code, roomCodeLength)
	assert.Equal(t, "Movie Night", resp.Room.Name)
	assert.Equal(t, alice, resp.Room.CreatedBy)
	require.Len(t, resp.Room.Participants, 1)
	assert.Equal(t, "Alice", resp.Room.Participants[0].Name)
	assert.True(t, resp.Room.Participants[0].IsHost)
	assert.Equal(t, -1, resp.Room.CurrentIndex)
}

func TestCreateRoomDefaultUsername(t *testing.T) {
	f := newFixture(t)
	alice, _ := f.connect(t)

	resp, err := f.service.CreateRoom(context.Background(), &CreateRoomParams{
		ClientId: alice,
		RoomName: "Movie Night",
	})
	require.NoError(t, err)
	assert.Equal(t, "Host", resp.Room.Participants[0].Name)
}

func TestJoinRoomNotFound(t *testing.T) {
	f := newFixture(t)
	bob, _ := f.connect(t)

	_, err := f.service.JoinRoom(context.Background(), &JoinRoomParams{
		ClientId: bob,
		RoomCode: "ZZZZZZ",
		Username: "Bob",
	})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestJoinRoomCaseInsensitiveCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, _ := f.connect(t)
	bob, _ := f.connect(t)

	created, err := f.service.CreateRoom(ctx, &CreateRoomParams{ClientId: alice, RoomName: "Movie Night", Username: "Alice"})
	require.NoError(t, err)

	resp, err := f.service.JoinRoom(ctx, &JoinRoomParams{
		ClientId: bob,
		RoomCode: strings.ToLower(created.Room.Code),
		Username: "Bob",
	})
	require.NoError(t, err)
	assert.Equal(t, created.Room.Code, resp.Room.Code)
	assert.Len(t, resp.Room.Participants, 2)
	assert.Len(t, resp.OthersConns, 1, "only Alice gets the user-joined notification")
	assert.Equal(t, domain.SystemAuthorId, resp.SystemMessage.AuthorId)
	assert.Equal(t, "Bob joined the room", resp.SystemMessage.Text)
	assert.Nil(t, resp.Sync, "no media means no sync payload")
}

func TestJoinRoomRejoin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, _ := f.connect(t)

	created, err := f.service.CreateRoom(ctx, &CreateRoomParams{ClientId: alice, RoomName: "Movie Night", Username: "Alice"})
	require.NoError(t, err)

	resp, err := f.service.JoinRoom(ctx, &JoinRoomParams{ClientId: alice, RoomCode: created.Room.Code, Username: "Alice"})
	require.NoError(t, err)
	assert.True(t, resp.Rejoined)
	assert.Len(t, resp.Room.Participants, 1, "rejoin must not duplicate the participant")
	assert.Empty(t, resp.OthersConns)
}

func TestSessionLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.media.details = ytmedia.VideoDetails{
		Id:           "dQw4w9WgXcQ",
		Title:        "Feature Film",
		ChannelTitle: "Channel",
		Duration:     600,
	}

	alice, _ := f.connect(t)
	bob, _ := f.connect(t)

	created, err := f.service.CreateRoom(ctx, &CreateRoomParams{ClientId: alice, RoomName: "Movie Night", Username: "Alice"})
	require.NoError(t, err)
	code := created.Room.Code

	added, err := f.service.AddToQueue(ctx, &AddToQueueParams{ClientId: alice, MediaId: "dQw4w9WgXcQ"})
	require.NoError(t, err)
	assert.True(t, added.MediaChanged)
	require.NotNil(t, added.Current)
	assert.Equal(t, "Feature Film", added.Current.Title, "metadata backfilled from the lookup")
	assert.Equal(t, 600, added.Current.Duration)

	joined, err := f.service.JoinRoom(ctx, &JoinRoomParams{ClientId: bob, RoomCode: code, Username: "Bob"})
	require.NoError(t, err)
	require.NotNil(t, joined.Sync, "active media means the joiner gets a sync payload")
	assert.False(t, joined.Sync.IsPlaying)
	assert.Equal(t, float64(0), joined.Sync.CurrentTime)

	playResp, err := f.service.Play(ctx, &PlayParams{ClientId: alice})
	require.NoError(t, err)
	assert.True(t, playResp.Changed)
	assert.Len(t, playResp.Conns, 2, "play is broadcast to everyone, sender included")

	playResp, err = f.service.Play(ctx, &PlayParams{ClientId: alice})
	require.NoError(t, err)
	assert.False(t, playResp.Changed, "duplicate play must not broadcast")

	f.now = f.now.Add(5 * time.Second)

	syncResp, err := f.service.RequestSync(ctx, &RequestSyncParams{ClientId: bob})
	require.NoError(t, err)
	assert.True(t, syncResp.Sync.IsPlaying)
	assert.InDelta(t, 5, syncResp.Sync.CurrentTime, 1e-9)
	assert.Equal(t, f.now, syncResp.Sync.ServerTimestamp)

	pauseResp, err := f.service.Pause(ctx, &PlayParams{ClientId: bob})
	require.NoError(t, err)
	assert.True(t, pauseResp.Changed)

	f.now = f.now.Add(time.Minute)
	syncResp, err = f.service.RequestSync(ctx, &RequestSyncParams{ClientId: bob})
	require.NoError(t, err)
	assert.InDelta(t, 5, syncResp.Sync.CurrentTime, 1e-9, "paused position must not advance")
}

func TestRequestSyncWithoutMedia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, _ := f.connect(t)

	_, err := f.service.CreateRoom(ctx, &CreateRoomParams{ClientId: alice, RoomName: "Movie Night", Username: "Alice"})
	require.NoError(t, err)

	_, err = f.service.RequestSync(ctx, &RequestSyncParams{ClientId: alice})
	assert.ErrorIs(t, err, ErrNoActiveMedia)
}

func TestRoomScopedEventsRequireMembership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stranger, _ := f.connect(t)

	_, err := f.service.Play(ctx, &PlayParams{ClientId: stranger})
	assert.ErrorIs(t, err, ErrNotInRoom)

	_, err = f.service.SendMessage(ctx, &SendMessageParams{ClientId: stranger, Text: "hi"})
	assert.ErrorIs(t, err, ErrNotInRoom)

	_, err = f.service.AddToQueue(ctx, &AddToQueueParams{ClientId: stranger, MediaId: "abc"})
	assert.ErrorIs(t, err, ErrNotInRoom)

	_, err = f.service.LeaveRoom(ctx, &LeaveRoomParams{ClientId: stranger})
	assert.ErrorIs(t, err, ErrNotInRoom)
}

func TestAddToQueueLookupFailureDegrades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.media.detailsErr = ytmedia.ErrVideoNotFound

	alice, _ := f.connect(t)
	_, err := f.service.CreateRoom(ctx, &CreateRoomParams{ClientId: alice, RoomName: "Movie Night", Username: "Alice"})
	require.NoError(t, err)

	added, err := f.service.AddToQueue(ctx, &AddToQueueParams{ClientId: alice, MediaId: "missing", Title: "Client Title"})
	require.NoError(t, err, "a failed lookup must not fail the append")
	require.NotNil(t, added.Current)
	assert.Equal(t, 0, added.Current.Duration)
	assert.Equal(t, "Client Title", added.Current.Title)
}

func TestRemoveFromQueueOutOfRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, _ := f.connect(t)

	_, err := f.service.CreateRoom(ctx, &CreateRoomParams{ClientId: alice, RoomName: "Movie Night", Username: "Alice"})
	require.NoError(t, err)

	_, err = f.service.RemoveFromQueue(ctx, &RemoveFromQueueParams{ClientId: alice, Index: 0})
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestSelectFromQueueStartsPlayback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.media.details = ytmedia.VideoDetails{Id: "a", Title: "A", Duration: 60}

	alice, _ := f.connect(t)
	_, err := f.service.CreateRoom(ctx, &CreateRoomParams{ClientId: alice, RoomName: "Movie Night", Username: "Alice"})
	require.NoError(t, err)

	_, err = f.service.AddToQueue(ctx, &AddToQueueParams{ClientId: alice, MediaId: "a"})
	require.NoError(t, err)
	_, err = f.service.AddToQueue(ctx, &AddToQueueParams{ClientId: alice, MediaId: "b", Duration: 30, Title: "B"})
	require.NoError(t, err)

	resp, err := f.service.SelectFromQueue(ctx, &SelectFromQueueParams{ClientId: alice, Index: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.CurrentIndex)
	assert.Equal(t, "B", resp.Current.Title)

	syncResp, err := f.service.RequestSync(ctx, &RequestSyncParams{ClientId: alice})
	require.NoError(t, err)
	assert.True(t, syncResp.Sync.IsPlaying)
	assert.Equal(t, float64(0), syncResp.Sync.CurrentTime)
}

func TestChangeVolumeExcludesSender(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, _ := f.connect(t)
	bob, _ := f.connect(t)

	created, err := f.service.CreateRoom(ctx, &CreateRoomParams{ClientId: alice, RoomName: "Movie Night", Username: "Alice"})
	require.NoError(t, err)
	_, err = f.service.JoinRoom(ctx, &JoinRoomParams{ClientId: bob, RoomCode: created.Room.Code, Username: "Bob"})
	require.NoError(t, err)

	resp, err := f.service.ChangeVolume(ctx, &ChangeVolumeParams{ClientId: alice, Volume: 150})
	require.NoError(t, err)
	assert.Equal(t, 100, resp.Volume, "volume clamps to 100")
	assert.Len(t, resp.Conns, 1, "sender is excluded from the volume broadcast")
}

func TestSendMessageUsesBoundName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, _ := f.connect(t)

	_, err := f.service.CreateRoom(ctx, &CreateRoomParams{ClientId: alice, RoomName: "Movie Night", Username: "Alice"})
	require.NoError(t, err)

	resp, err := f.service.SendMessage(ctx, &SendMessageParams{ClientId: alice, Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, alice, resp.Message.AuthorId)
	assert.Equal(t, "Alice", resp.Message.AuthorName)
	assert.Equal(t, "hello", resp.Message.Text)
	assert.NotEmpty(t, resp.Message.Id)
	assert.Len(t, resp.Conns, 1)
}

func TestSendEmojiIsTransient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, _ := f.connect(t)

	created, err := f.service.CreateRoom(ctx, &CreateRoomParams{ClientId: alice, RoomName: "Movie Night", Username: "Alice"})
	require.NoError(t, err)

	x := 0.5
	resp, err := f.service.SendEmoji(ctx, &SendEmojiParams{ClientId: alice, Emoji: "🎉", X: &x})
	require.NoError(t, err)
	assert.Equal(t, "🎉", resp.Reaction.Emoji)
	assert.Equal(t, "Alice", resp.Reaction.AuthorName)
	require.NotNil(t, resp.Reaction.X)
	assert.Equal(t, 0.5, *resp.Reaction.X)

	room, err := f.service.roomRepo.Get(created.Room.Code)
	require.NoError(t, err)
	assert.Empty(t, room.Snapshot().Messages, "reactions are never stored")
}

func TestLeaveRoomDeletesEmptyRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, _ := f.connect(t)

	created, err := f.service.CreateRoom(ctx, &CreateRoomParams{ClientId: alice, RoomName: "Movie Night", Username: "Alice"})
	require.NoError(t, err)

	resp, err := f.service.LeaveRoom(ctx, &LeaveRoomParams{ClientId: alice})
	require.NoError(t, err)
	assert.True(t, resp.RoomDeleted)

	_, err = f.service.roomRepo.Get(created.Room.Code)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestLeaveRoomNotifiesRemaining(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, _ := f.connect(t)
	bob, _ := f.connect(t)

	created, err := f.service.CreateRoom(ctx, &CreateRoomParams{ClientId: alice, RoomName: "Movie Night", Username: "Alice"})
	require.NoError(t, err)
	_, err = f.service.JoinRoom(ctx, &JoinRoomParams{ClientId: bob, RoomCode: created.Room.Code, Username: "Bob"})
	require.NoError(t, err)

	resp, err := f.service.LeaveRoom(ctx, &LeaveRoomParams{ClientId: bob})
	require.NoError(t, err)
	assert.False(t, resp.RoomDeleted)
	assert.Equal(t, bob, resp.LeftClientId)
	assert.Equal(t, "Bob left the room", resp.SystemMessage.Text)
	assert.Len(t, resp.Conns, 1)

	room, err := f.service.roomRepo.Get(created.Room.Code)
	require.NoError(t, err)
	assert.Len(t, room.Snapshot().Participants, 1)
}

func TestDisconnectRunsLeavePath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, aliceConn := f.connect(t)
	bob, bobConn := f.connect(t)

	created, err := f.service.CreateRoom(ctx, &CreateRoomParams{ClientId: alice, RoomName: "Movie Night", Username: "Alice"})
	require.NoError(t, err)
	_, err = f.service.JoinRoom(ctx, &JoinRoomParams{ClientId: bob, RoomCode: created.Room.Code, Username: "Bob"})
	require.NoError(t, err)

	resp, err := f.service.Disconnect(ctx, bobConn)
	require.NoError(t, err)
	assert.False(t, resp.RoomDeleted)
	assert.Equal(t, bob, resp.LeftClientId)

	resp, err = f.service.Disconnect(ctx, aliceConn)
	require.NoError(t, err)
	assert.True(t, resp.RoomDeleted)

	_, err = f.service.Disconnect(ctx, aliceConn)
	assert.ErrorIs(t, err, ErrNotInRoom, "disconnecting an unknown connection is ignorable")
}

func TestPreviewRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, _ := f.connect(t)

	created, err := f.service.CreateRoom(ctx, &CreateRoomParams{ClientId: alice, RoomName: "Movie Night", Username: "Alice"})
	require.NoError(t, err)

	preview, err := f.service.PreviewRoom(ctx, strings.ToLower(created.Room.Code))
	require.NoError(t, err)
	assert.Equal(t, created.Room.Code, preview.RoomCode)
	assert.Equal(t, "Movie Night", preview.Name)
	assert.Equal(t, 1, preview.ParticipantCount)
	assert.False(t, preview.HasActiveMedia)

	_, err = f.service.PreviewRoom(ctx, "ZZZZZZ")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestSearchMediaPassThrough(t *testing.T) {
	f := newFixture(t)
	f.media.results = []ytmedia.SearchResult{
		{Id: "a", Title: "First"},
		{Id: "b", Title: "Second"},
	}

	resp, err := f.service.SearchMedia(context.Background(), &SearchMediaParams{Query: "test"})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 2)
	assert.Equal(t, "First", resp.Results[0].Title)
}
