package structs

import (
	"time"
)

const (
	ReadingTimeField = "timestamp"
	ReadingMetaField = "tags"
)

// Reading is one tagged, timestamped measurement. Tags is an open one-level
// map; the engine, not this module, rejects values it cannot store.
type Reading struct {
	Timestamp time.Time      `bson:"timestamp"`
	Value     float64        `bson:"value"`
	Tags      map[string]any `bson:"tags"`
}
