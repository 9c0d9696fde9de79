// Package invalidation defines the dataset-change events that evict
// memoized compositions. Producers are whatever system owns the source
// data; we only consume.
package invalidation

import (
	"fmt"
	"strings"
	"time"
)

type Event struct {
	Version int       `json:"version"`
	Op      string    `json:"op"`
	Dataset string    `json:"dataset"`
	TS      time.Time `json:"ts"`
	// ContentVersion is a producer-side monotonic counter per dataset.
	// Consumers drop events at or below the last version seen.
	ContentVersion int64  `json:"content_version,omitempty"`
	Source         string `json:"source,omitempty"`
}

func (e Event) Validate() error {
	if e.Version != 1 {
		return fmt.Errorf("version must be 1")
	}
	switch e.Op {
	case "insert", "update", "delete":
	default:
		return fmt.Errorf("op must be insert|update|delete")
	}
	if strings.TrimSpace(e.Dataset) == "" {
		return fmt.Errorf("dataset is required")
	}
	if e.TS.IsZero() {
		return fmt.Errorf("ts is required")
	}
	if e.ContentVersion < 0 {
		return fmt.Errorf("content_version must be non-negative")
	}
	return nil
}
