package room

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"github.com/watchparty/server/internal/domain"
)

type PlayParams struct {
	ClientId string
}

type PlayResponse struct {
	// Changed is false when the room was already in the target state; no
	// broadcast happens then.
	Changed bool
	Conns   []*websocket.Conn
}

func (s service) Play(ctx context.Context, params *PlayParams) (PlayResponse, error) {
	_, playRoom, err := s.resolve(params.ClientId)
	if err != nil {
		return PlayResponse{}, err
	}

	if !playRoom.Play(s.clock()) {
		return PlayResponse{}, nil
	}

	return PlayResponse{
		Changed: true,
		Conns:   s.getConns(playRoom.Snapshot().Participants, ""),
	}, nil
}

func (s service) Pause(ctx context.Context, params *PlayParams) (PlayResponse, error) {
	_, pauseRoom, err := s.resolve(params.ClientId)
	if err != nil {
		return PlayResponse{}, err
	}

	if !pauseRoom.Pause(s.clock()) {
		return PlayResponse{}, nil
	}

	return PlayResponse{
		Changed: true,
		Conns:   s.getConns(pauseRoom.Snapshot().Participants, ""),
	}, nil
}

type SeekParams struct {
	ClientId string
	Time     float64
}

type SeekResponse struct {
	Time  float64
	Conns []*websocket.Conn
}

func (s service) Seek(ctx context.Context, params *SeekParams) (SeekResponse, error) {
	_, seekRoom, err := s.resolve(params.ClientId)
	if err != nil {
		return SeekResponse{}, err
	}

	seekRoom.Seek(params.Time, s.clock())

	return SeekResponse{
		Time:  params.Time,
		Conns: s.getConns(seekRoom.Snapshot().Participants, ""),
	}, nil
}

type ChangeVolumeParams struct {
	ClientId string
	Volume   int
}

type ChangeVolumeResponse struct {
	Volume int
	// Conns excludes the sender, who already has the value locally.
	Conns []*websocket.Conn
}

func (s service) ChangeVolume(ctx context.Context, params *ChangeVolumeParams) (ChangeVolumeResponse, error) {
	_, volumeRoom, err := s.resolve(params.ClientId)
	if err != nil {
		return ChangeVolumeResponse{}, err
	}

	volume := volumeRoom.SetVolume(params.Volume)

	return ChangeVolumeResponse{
		Volume: volume,
		Conns:  s.getConns(volumeRoom.Snapshot().Participants, params.ClientId),
	}, nil
}

type RequestSyncParams struct {
	ClientId string
}

type RequestSyncResponse struct {
	Sync domain.SyncState
}

// RequestSync performs drift reconciliation for the requester only.
func (s service) RequestSync(ctx context.Context, params *RequestSyncParams) (RequestSyncResponse, error) {
	_, syncRoom, err := s.resolve(params.ClientId)
	if err != nil {
		return RequestSyncResponse{}, err
	}

	sync, ok := syncRoom.SyncState(s.clock())
	if !ok {
		return RequestSyncResponse{}, ErrNoActiveMedia
	}

	return RequestSyncResponse{Sync: sync}, nil
}

// RunPlaybackTicker advances the clock of every playing room on a fixed
// cadence until the context is cancelled. Bookkeeping only: no events are
// emitted, clients extrapolate locally between explicit sync points. The
// tick takes one room at a time, exactly like any other event source.
func (s *service) RunPlaybackTicker(ctx context.Context) {
	ticker := time.NewTicker(s.syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, tickRoom := range s.roomRepo.All() {
				tickRoom.Advance(now)
			}
		}
	}
}
