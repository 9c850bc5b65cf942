package domain

import "time"

// SyncState is a drift reconciliation payload: the effective playback
// position at ServerTimestamp. The receiver applies its own network-latency
// compensation against that timestamp; the server never guesses transit
// time.
type SyncState struct {
	IsPlaying       bool      `json:"is_playing"`
	CurrentTime     float64   `json:"current_time"`
	ServerTimestamp time.Time `json:"server_timestamp"`
	Media           MediaItem `json:"media"`
	Volume          int       `json:"volume"`
}

// Play starts playback. Reports false without side effects when already
// playing, so duplicate clicks produce no broadcast.
func (r *Room) Play(now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isPlaying {
		return false
	}

	r.isPlaying = true
	r.lastTick = now
	return true
}

// Pause materializes the elapsed time into the position, then freezes it.
// Reports false without side effects when already paused.
func (r *Room) Pause(now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isPlaying {
		return false
	}

	if !r.lastTick.IsZero() {
		r.position += now.Sub(r.lastTick).Seconds()
	}
	r.isPlaying = false
	return true
}

// Seek moves the position unconditionally. It never flips the play state;
// while playing, elapsed-time accounting restarts from the new position.
func (r *Room) Seek(seconds float64, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.position = seconds
	if r.isPlaying {
		r.lastTick = now
	}
}

// SetVolume clamps to 0-100 and stores the value, last write wins. Volume is
// a pass-through with no effect on the playback state machine.
func (r *Room) SetVolume(volume int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.volume = max(0, min(100, volume))
	return r.volume
}

// SyncState reconciles drift for a joining or resyncing participant. The
// second return is false when no media is active.
func (r *Room) SyncState(now time.Time) (SyncState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.currentIndex < 0 {
		return SyncState{}, false
	}

	if r.isPlaying && !r.lastTick.IsZero() {
		r.position += now.Sub(r.lastTick).Seconds()
		r.lastTick = now
	}

	return SyncState{
		IsPlaying:       r.isPlaying,
		CurrentTime:     r.position,
		ServerTimestamp: now,
		Media:           r.queue[r.currentIndex],
		Volume:          r.volume,
	}, true
}

// Advance folds elapsed wall-clock time into the position of a playing room.
// Pure bookkeeping for the periodic tick: it keeps the stored position fresh
// for the next join or explicit sync and must never trigger a broadcast.
func (r *Room) Advance(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isPlaying || r.currentIndex < 0 {
		return
	}

	if r.lastTick.IsZero() {
		r.lastTick = now
		return
	}

	r.position += now.Sub(r.lastTick).Seconds()
	r.lastTick = now
}
