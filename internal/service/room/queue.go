package room

import (
	"context"

	"github.com/gorilla/websocket"

	"github.com/watchparty/server/internal/domain"
)

var ErrIndexOutOfRange = domain.ErrIndexOutOfRange

type AddToQueueParams struct {
	ClientId     string
	MediaId      string
	Title        string
	ChannelTitle string
	Thumbnail    string
	Duration     int
}

type AddToQueueResponse struct {
	Queue []domain.MediaItem
	// Current is set when the appended item became the active selection.
	MediaChanged bool
	Current      *domain.MediaItem
	Conns        []*websocket.Conn
}

// AddToQueue appends an item, first resolving its duration through the
// metadata collaborator when the client did not supply one. The lookup runs
// with its own timeout and without holding the room; a failed or timed-out
// lookup degrades to duration 0, never to a failed append.
func (s service) AddToQueue(ctx context.Context, params *AddToQueueParams) (AddToQueueResponse, error) {
	_, queueRoom, err := s.resolve(params.ClientId)
	if err != nil {
		return AddToQueueResponse{}, err
	}

	item := domain.MediaItem{
		Id:           params.MediaId,
		Title:        params.Title,
		ChannelTitle: params.ChannelTitle,
		Thumbnail:    params.Thumbnail,
		Duration:     params.Duration,
	}

	if item.Duration == 0 && item.Id != "" {
		lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
		details, err := s.media.Details(lookupCtx, item.Id)
		cancel()
		if err != nil {
			s.logger.InfoContext(ctx, "metadata lookup failed, keeping zero duration",
				"media_id", item.Id, "error", err)
		} else {
			item.Duration = details.Duration
			if item.Title == "" {
				item.Title = details.Title
			}
			if item.ChannelTitle == "" {
				item.ChannelTitle = details.ChannelTitle
			}
			if item.Thumbnail == "" {
				item.Thumbnail = details.Thumbnail
			}
		}
	}

	change := queueRoom.AppendQueue(item)

	return AddToQueueResponse{
		Queue:        change.Queue,
		MediaChanged: change.MediaChanged,
		Current:      change.Current,
		Conns:        s.getConns(queueRoom.Snapshot().Participants, ""),
	}, nil
}

type RemoveFromQueueParams struct {
	ClientId string
	Index    int
}

type RemoveFromQueueResponse struct {
	Queue        []domain.MediaItem
	MediaChanged bool
	IndexChanged bool
	CurrentIndex int
	Current      *domain.MediaItem
	Conns        []*websocket.Conn
}

// RemoveFromQueue removes by position. ErrIndexOutOfRange marks a stale
// request (another participant got there first); the caller drops it
// silently.
func (s service) RemoveFromQueue(ctx context.Context, params *RemoveFromQueueParams) (RemoveFromQueueResponse, error) {
	_, queueRoom, err := s.resolve(params.ClientId)
	if err != nil {
		return RemoveFromQueueResponse{}, err
	}

	change, err := queueRoom.RemoveQueueAt(params.Index)
	if err != nil {
		return RemoveFromQueueResponse{}, err
	}

	return RemoveFromQueueResponse{
		Queue:        change.Queue,
		MediaChanged: change.MediaChanged,
		IndexChanged: change.IndexChanged,
		CurrentIndex: change.CurrentIndex,
		Current:      change.Current,
		Conns:        s.getConns(queueRoom.Snapshot().Participants, ""),
	}, nil
}

type SelectFromQueueParams struct {
	ClientId string
	Index    int
}

type SelectFromQueueResponse struct {
	CurrentIndex int
	Current      domain.MediaItem
	Conns        []*websocket.Conn
}

// SelectFromQueue jumps to the given entry and always starts it playing from
// position 0, regardless of the prior play/pause state.
func (s service) SelectFromQueue(ctx context.Context, params *SelectFromQueueParams) (SelectFromQueueResponse, error) {
	_, queueRoom, err := s.resolve(params.ClientId)
	if err != nil {
		return SelectFromQueueResponse{}, err
	}

	change, err := queueRoom.SelectQueueAt(params.Index, s.clock())
	if err != nil {
		return SelectFromQueueResponse{}, err
	}

	return SelectFromQueueResponse{
		CurrentIndex: change.CurrentIndex,
		Current:      *change.Current,
		Conns:        s.getConns(queueRoom.Snapshot().Participants, ""),
	}, nil
}
