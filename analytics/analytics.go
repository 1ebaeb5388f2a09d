// Package analytics collects privacy-first usage events submitted by the
// static frontend. Client addresses are stored only as salted hashes.
package analytics

import (
	"fmt"
	"time"
)

// Event is a single client-side event.
type Event struct {
	Name       string                 `json:"name"`
	Category   string                 `json:"category"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Timestamp  int64                  `json:"timestamp,omitempty"` // unix millis, client clock
}

// CollectRequest is the batch payload posted by the frontend.
type CollectRequest struct {
	SessionID string  `json:"session_id"`
	Events    []Event `json:"events"`
}

// Input validation limits for the collect endpoint.
const (
	maxBatchEvents   = 100
	maxNameLen       = 100
	maxSessionIDLen  = 64
	maxPropertyCount = 20
)

// categories is the closed set the tracking client emits.
var categories = map[string]bool{
	"navigation":  true,
	"content":     true,
	"performance": true,
	"error":       true,
	"engagement":  true,
}

// validateCollectRequest checks batch shape, field lengths, and the
// category enum.
func validateCollectRequest(req *CollectRequest) error {
	if req.Events == nil {
		return fmt.Errorf("events must be an array")
	}
	if len(req.Events) > maxBatchEvents {
		return fmt.Errorf("batch exceeds maximum of %d events", maxBatchEvents)
	}
	if len(req.SessionID) > maxSessionIDLen {
		return fmt.Errorf("session_id exceeds maximum length of %d", maxSessionIDLen)
	}
	for i, ev := range req.Events {
		if ev.Name == "" {
			return fmt.Errorf("event %d: name is required", i)
		}
		if len(ev.Name) > maxNameLen {
			return fmt.Errorf("event %d: name exceeds maximum length of %d", i, maxNameLen)
		}
		if ev.Category != "" && !categories[ev.Category] {
			return fmt.Errorf("event %d: unknown category %q", i, ev.Category)
		}
		if len(ev.Properties) > maxPropertyCount {
			return fmt.Errorf("event %d: too many properties", i)
		}
	}
	return nil
}

// StoredEvent is an event as persisted, with server-side context attached.
type StoredEvent struct {
	ID        int64
	SessionID string
	Name      string
	Category  string
	IPHash    string
	Timestamp time.Time
}

// Stats holds aggregated analytics for a period.
type Stats struct {
	Period         string      `json:"period"`
	TotalEvents    int         `json:"total_events"`
	UniqueSessions int         `json:"unique_sessions"`
	TopEvents      []EventStat `json:"top_events"`
	DailyEvents    []DailyStat `json:"daily_events"`
}

// EventStat counts occurrences of one event name.
type EventStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DailyStat counts events per day.
type DailyStat struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
