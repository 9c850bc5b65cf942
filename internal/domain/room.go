// Package domain holds the synchronization core: the room entity with its
// participant set, media queue, server-authoritative playback clock and
// bounded chat log. Every exported Room method takes the room's lock for the
// duration of its read-modify-write, so one Room is one unit of mutual
// exclusion and operations on different rooms never contend.
package domain

import (
	"sync"
	"time"
)

const (
	DefaultVolume        = 70
	DefaultMessagesLimit = 100
)

type Room struct {
	mu sync.Mutex

	code      string
	name      string
	createdBy string
	createdAt time.Time

	participants []Participant

	queue        []MediaItem
	currentIndex int

	isPlaying bool
	// position is the playback position in seconds, accurate as of lastTick.
	position float64
	// lastTick is the last moment position was known to be accurate; zero
	// means it never was.
	lastTick time.Time

	volume int

	messages      []ChatMessage
	messagesLimit int
}

func NewRoom(code, name, createdBy string, messagesLimit int, now time.Time) *Room {
	if messagesLimit <= 0 {
		messagesLimit = DefaultMessagesLimit
	}

	return &Room{
		code:          code,
		name:          name,
		createdBy:     createdBy,
		createdAt:     now,
		currentIndex:  -1,
		volume:        DefaultVolume,
		messagesLimit: messagesLimit,
	}
}

func (r *Room) Code() string {
	return r.code
}

// AddParticipant registers a participant unless one with the same id is
// already present; the boolean reports whether the set changed. A rejoin of
// a known id is not an error, the caller re-acks with a fresh snapshot.
func (r *Room) AddParticipant(p Participant) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.participants {
		if existing.Id == p.Id {
			return false
		}
	}

	r.participants = append(r.participants, p)
	return true
}

// RemoveParticipant removes the participant with the given id and reports
// how many remain. A room whose participant set becomes empty must be
// deleted by the caller.
func (r *Room) RemoveParticipant(id string) (Participant, int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.participants {
		if p.Id == id {
			r.participants = append(r.participants[:i], r.participants[i+1:]...)
			return p, len(r.participants), true
		}
	}

	return Participant{}, len(r.participants), false
}

func (r *Room) Participant(id string) (Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.participants {
		if p.Id == id {
			return p, true
		}
	}

	return Participant{}, false
}

// AppendMessage stores a chat or system message, evicting the oldest entries
// once the retained history exceeds the limit. Eviction is silent: it trims
// history, it does not unsend anything already broadcast.
func (r *Room) AppendMessage(msg ChatMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages = append(r.messages, msg)
	if len(r.messages) > r.messagesLimit {
		r.messages = r.messages[len(r.messages)-r.messagesLimit:]
	}
}

// RoomState is a point-in-time copy of everything a joining client needs.
type RoomState struct {
	Code         string        `json:"code"`
	Name         string        `json:"name"`
	CreatedBy    string        `json:"created_by"`
	CreatedAt    time.Time     `json:"created_at"`
	Participants []Participant `json:"participants"`
	Queue        []MediaItem   `json:"queue"`
	CurrentIndex int           `json:"current_index"`
	CurrentMedia *MediaItem    `json:"current_media"`
	IsPlaying    bool          `json:"is_playing"`
	CurrentTime  float64       `json:"current_time"`
	Volume       int           `json:"volume"`
	Messages     []ChatMessage `json:"messages"`
}

func (r *Room) Snapshot() RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := RoomState{
		Code:         r.code,
		Name:         r.name,
		CreatedBy:    r.createdBy,
		CreatedAt:    r.createdAt,
		Participants: append([]Participant(nil), r.participants...),
		Queue:        append([]MediaItem(nil), r.queue...),
		CurrentIndex: r.currentIndex,
		IsPlaying:    r.isPlaying,
		CurrentTime:  r.position,
		Volume:       r.volume,
		Messages:     append([]ChatMessage(nil), r.messages...),
	}

	if r.currentIndex >= 0 {
		media := r.queue[r.currentIndex]
		state.CurrentMedia = &media
	}

	return state
}
