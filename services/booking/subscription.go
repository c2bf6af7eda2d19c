package booking

import (
	"sync"
	"time"

	"havenstay/models"
	"havenstay/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const watchBuffer = 16

// WatchHub is an explicit subscription registry for per-property booking
// events. Each Watch call returns its own channel plus a cancellation handle
// owned by the caller; there is no shared global listener state.
type WatchHub struct {
	mu       sync.Mutex
	watchers map[string]map[string]chan models.BookingEvent
}

func NewWatchHub() *WatchHub {
	return &WatchHub{
		watchers: make(map[string]map[string]chan models.BookingEvent),
	}
}

// Watch subscribes to booking events for the given property. The returned
// cancel func detaches the subscription and closes the channel; it is safe to
// call more than once.
func (h *WatchHub) Watch(propertyID string) (<-chan models.BookingEvent, func()) {
	ch := make(chan models.BookingEvent, watchBuffer)
	id := uuid.New().String()

	h.mu.Lock()
	if h.watchers[propertyID] == nil {
		h.watchers[propertyID] = make(map[string]chan models.BookingEvent)
	}
	h.watchers[propertyID][id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if subs, ok := h.watchers[propertyID]; ok {
				delete(subs, id)
				if len(subs) == 0 {
					delete(h.watchers, propertyID)
				}
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish fans the event out to the property's watchers. Sends are
// non-blocking: a subscriber that stopped draining loses events rather than
// stalling state transitions.
func (h *WatchHub) Publish(eventType string, b models.Booking) {
	event := models.BookingEvent{
		Type:       eventType,
		PropertyID: b.PropertyID,
		Booking:    b,
		OccurredAt: time.Now(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.watchers[b.PropertyID] {
		select {
		case ch <- event:
		default:
			utils.GetLogger().Warn("dropping booking event for slow watcher",
				zap.String("propertyID", b.PropertyID),
				zap.String("type", eventType))
		}
	}
}
