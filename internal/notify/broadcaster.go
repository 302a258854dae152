package notify

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a transient message shown to the user.
type Notification struct {
	ID      string
	Level   Level
	Message string
	At      time.Time
}

func New(level Level, message string) Notification {
	return Notification{
		ID:      uuid.NewString(),
		Level:   level,
		Message: message,
		At:      time.Now(),
	}
}

type Broadcaster struct {
	subscribers map[uint64]chan Notification
	nextID      atomic.Uint64
	mu          sync.RWMutex
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]chan Notification),
	}
}

func (b *Broadcaster) Subscribe() (uint64, <-chan Notification) {
	id := b.nextID.Add(1)
	ch := make(chan Notification, 32)

	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()

	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

// Publish fans n out to every subscriber. Subscribers with a full buffer miss it.
func (b *Broadcaster) Publish(n Notification) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- n:
		default:
			slog.Debug("dropping notification for slow subscriber", "subscriber_id", id, "notification_id", n.ID)
		}
	}
}

func (b *Broadcaster) Info(msg string)    { b.Publish(New(LevelInfo, msg)) }
func (b *Broadcaster) Success(msg string) { b.Publish(New(LevelSuccess, msg)) }
func (b *Broadcaster) Error(msg string)   { b.Publish(New(LevelError, msg)) }

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes every subscriber channel.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
