package engine

import "time"

// EventType represents different lifecycle phases of engine operations
type EventType string

const (
	EventOpenStart     EventType = "open_start"
	EventOpenEnd       EventType = "open_end"
	EventTableRegister EventType = "table_register"
	EventInsertStart   EventType = "insert_start"
	EventInsertEnd     EventType = "insert_end"
	EventSearchStart   EventType = "search_start"
	EventSearchEnd     EventType = "search_end"
)

// Event represents a lifecycle event of an engine operation
type Event struct {
	Type      EventType // Type of event
	TxID      string    // Transaction ID for tracing
	Database  string
	Table     string
	Timestamp time.Time // When the event occurred
	Data      any       // Phase-specific data (e.g., row uid, query, match count)
}

// Observer interface for event subscribers
// Observers receive events at major execution phases
type Observer interface {
	OnEvent(event Event)
}
