package recording

import (
	"time"

	"github.com/google/uuid"
)

// Artifact is a finalized take waiting to be sent or discarded
type Artifact struct {
	ID              uuid.UUID     `json:"id" msgpack:"id"`
	Location        string        `json:"location" msgpack:"location"` // WAV file in the host's temp area
	DurationSeconds int           `json:"duration_seconds" msgpack:"duration_seconds"`
	Duration        time.Duration `json:"duration" msgpack:"duration"`
	SampleRate      int           `json:"sample_rate" msgpack:"sample_rate"`
	CreatedAt       time.Time     `json:"created_at" msgpack:"created_at"`
}
