package domain

import (
	"errors"
	"time"
)

var ErrIndexOutOfRange = errors.New("queue index out of range")

// QueueChange describes the outcome of a queue mutation so the caller knows
// which events to fan out.
type QueueChange struct {
	Queue        []MediaItem
	CurrentIndex int
	// Current is the item the playback clock tracks after the mutation, nil
	// when nothing is selected.
	Current *MediaItem
	// MediaChanged reports that Current now denotes a different item (or
	// none) than before.
	MediaChanged bool
	// IndexChanged reports that CurrentIndex moved, with or without a media
	// change.
	IndexChanged bool
}

func (r *Room) queueChangeLocked(mediaChanged, indexChanged bool) QueueChange {
	change := QueueChange{
		Queue:        append([]MediaItem(nil), r.queue...),
		CurrentIndex: r.currentIndex,
		MediaChanged: mediaChanged,
		IndexChanged: indexChanged,
	}

	if r.currentIndex >= 0 {
		media := r.queue[r.currentIndex]
		change.Current = &media
	}

	return change
}

// AppendQueue pushes an item to the end of the queue. When nothing is
// selected the appended item becomes the current selection without starting
// playback.
func (r *Room) AppendQueue(item MediaItem) QueueChange {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.queue = append(r.queue, item)

	mediaChanged := false
	if r.currentIndex < 0 {
		r.currentIndex = len(r.queue) - 1
		r.position = 0
		mediaChanged = true
	}

	return r.queueChangeLocked(mediaChanged, mediaChanged)
}

// RemoveQueueAt deletes the item at index, keeping the current selection
// pointing at the same logical item where possible:
//   - removing the current item selects min(index, len-1) and resets the
//     position to 0, or clears the selection if the queue emptied;
//   - removing an item before the current one shifts the index down by one;
//   - removing an item after it changes nothing.
func (r *Room) RemoveQueueAt(index int) (QueueChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.queue) {
		return QueueChange{}, ErrIndexOutOfRange
	}

	r.queue = append(r.queue[:index], r.queue[index+1:]...)

	switch {
	case index == r.currentIndex:
		if len(r.queue) > 0 {
			r.currentIndex = min(index, len(r.queue)-1)
			r.position = 0
			return r.queueChangeLocked(true, true), nil
		}

		r.currentIndex = -1
		return r.queueChangeLocked(true, false), nil

	case index < r.currentIndex:
		r.currentIndex--
		return r.queueChangeLocked(false, true), nil

	default:
		return r.queueChangeLocked(false, false), nil
	}
}

// SelectQueueAt jumps to the queue entry at index and starts playing it from
// the beginning, regardless of the prior play/pause state.
func (r *Room) SelectQueueAt(index int, now time.Time) (QueueChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.queue) {
		return QueueChange{}, ErrIndexOutOfRange
	}

	r.currentIndex = index
	r.position = 0
	r.isPlaying = true
	r.lastTick = now

	return r.queueChangeLocked(true, true), nil
}
