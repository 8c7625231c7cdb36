package events

import (
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/quaesitor-ai/quaesitor/internal/models"
)

// Service is a small in-process pub/sub for pipeline step events. Publish
// never blocks: a subscriber whose buffer is full misses the event.
type Service struct {
	logger     arbor.ILogger
	bufferSize int

	mu          sync.Mutex
	nextID      int
	subscribers map[int]chan models.StepEvent
}

// NewService creates the event bus with the given per-subscriber buffer.
func NewService(bufferSize int, logger arbor.ILogger) *Service {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Service{
		logger:      logger,
		bufferSize:  bufferSize,
		subscribers: make(map[int]chan models.StepEvent),
	}
}

// Publish delivers the event to every subscriber that has buffer room.
func (s *Service) Publish(event models.StepEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			s.logger.Debug().Int("subscriber", id).Msg("Dropping step event for slow subscriber")
		}
	}
}

// Subscribe registers a new listener. The returned cancel func must be
// called to release the subscription; the channel is closed on cancel.
func (s *Service) Subscribe() (<-chan models.StepEvent, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan models.StepEvent, s.bufferSize)
	s.subscribers[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(sub)
		}
	}

	return ch, cancel
}

// SubscriberCount reports the number of active subscriptions.
func (s *Service) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}
