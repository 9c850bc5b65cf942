package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayPauseIdempotence(t *testing.T) {
	r := testRoom()
	r.AppendQueue(mediaItem("abc"))
	now := time.Unix(1700000000, 0)

	assert.True(t, r.Play(now))
	assert.False(t, r.Play(now.Add(time.Second)), "duplicate play must be a no-op")

	assert.True(t, r.Pause(now.Add(2*time.Second)))
	assert.False(t, r.Pause(now.Add(3*time.Second)), "duplicate pause must be a no-op")
}

func TestDriftAccounting(t *testing.T) {
	r := testRoom()
	r.AppendQueue(mediaItem("abc"))

	start := time.Unix(1700000000, 0)
	r.Play(start)
	r.Seek(10, start)

	sync, ok := r.SyncState(start.Add(7 * time.Second))
	require.True(t, ok)
	assert.True(t, sync.IsPlaying)
	assert.InDelta(t, 17, sync.CurrentTime, 1e-9, "position 10 plus 7 elapsed seconds")
	assert.Equal(t, start.Add(7*time.Second), sync.ServerTimestamp)

	r.Pause(start.Add(7 * time.Second))
	sync, ok = r.SyncState(start.Add(30 * time.Second))
	require.True(t, ok)
	assert.False(t, sync.IsPlaying)
	assert.InDelta(t, 17, sync.CurrentTime, 1e-9, "paused position must not drift")
}

func TestPauseMaterializesElapsed(t *testing.T) {
	r := testRoom()
	r.AppendQueue(mediaItem("abc"))

	start := time.Unix(1700000000, 0)
	r.Play(start)
	r.Seek(10, start)
	r.Pause(start.Add(7 * time.Second))

	assert.InDelta(t, 17, r.Snapshot().CurrentTime, 1e-9)
}

func TestSeekIndependentOfPlayState(t *testing.T) {
	r := testRoom()
	r.AppendQueue(mediaItem("abc"))
	now := time.Unix(1700000000, 0)

	r.Seek(42, now)
	state := r.Snapshot()
	assert.False(t, state.IsPlaying, "seek must not start playback")
	assert.InDelta(t, 42, state.CurrentTime, 1e-9)

	r.Play(now)
	sync0, ok := r.SyncState(now.Add(3 * time.Second))
	require.True(t, ok)
	assert.InDelta(t, 45, sync0.CurrentTime, 1e-9, "play advances from the seeked position")

	r.Seek(5, now.Add(3*time.Second))
	sync, ok := r.SyncState(now.Add(5 * time.Second))
	require.True(t, ok)
	assert.True(t, sync.IsPlaying, "seek must not stop playback")
	assert.InDelta(t, 7, sync.CurrentTime, 1e-9, "accounting restarts from the seek target")
}

func TestSyncStateWithoutMedia(t *testing.T) {
	r := testRoom()

	_, ok := r.SyncState(time.Unix(1700000000, 0))
	assert.False(t, ok)
}

func TestAdvanceAccumulates(t *testing.T) {
	r := testRoom()
	r.AppendQueue(mediaItem("abc"))

	start := time.Unix(1700000000, 0)
	r.Play(start)
	for i := 1; i <= 3; i++ {
		r.Advance(start.Add(time.Duration(i) * 5 * time.Second))
	}

	assert.InDelta(t, 15, r.Snapshot().CurrentTime, 1e-9)
}

func TestAdvanceIgnoresPausedRoom(t *testing.T) {
	r := testRoom()
	r.AppendQueue(mediaItem("abc"))

	start := time.Unix(1700000000, 0)
	r.Advance(start.Add(time.Minute))
	assert.Equal(t, float64(0), r.Snapshot().CurrentTime)
}

func TestSetVolumeClamps(t *testing.T) {
	r := testRoom()

	assert.Equal(t, 100, r.SetVolume(250))
	assert.Equal(t, 0, r.SetVolume(-5))
	assert.Equal(t, 35, r.SetVolume(35))
}
