package interfaces

import "github.com/quaesitor-ai/quaesitor/internal/models"

// EventService fans pipeline step events out to subscribers. Publish must
// never block the pipeline; slow subscribers drop events.
type EventService interface {
	Publish(event models.StepEvent)
	Subscribe() (ch <-chan models.StepEvent, cancel func())
}
