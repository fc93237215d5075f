package transaction

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// seqCounter is an atomic counter ordering operations within a process
var seqCounter uint64

// ChangeType represents the type of modification
type ChangeType string

const (
	ChangeTypeInsert        ChangeType = "INSERT"
	ChangeTypeRegisterTable ChangeType = "REGISTER_TABLE"
)

// Change represents a single modification within an operation
type Change struct {
	Type     ChangeType
	Database string
	Table    string
	RowID    string         // _uid of the affected row (empty for schema changes)
	Data     map[string]any // New data for INSERT
}

// Transaction is the context of one engine operation, used to correlate events
type Transaction struct {
	ID        string    // Unique identifier (UUID)
	Seq       uint64    // Process-local ordering number
	Active    bool      // Whether the operation is still running
	StartTime time.Time // When the operation began
	Changes   []Change  // Modifications made
}

// NewTransaction creates a new transaction with a unique ID
func NewTransaction() *Transaction {
	return &Transaction{
		ID:        uuid.New().String(),
		Seq:       atomic.AddUint64(&seqCounter, 1),
		Active:    true,
		StartTime: time.Now(),
		Changes:   make([]Change, 0),
	}
}

// Record appends a change to the transaction
func (tx *Transaction) Record(change Change) {
	tx.Changes = append(tx.Changes, change)
}

// Close marks the transaction as inactive
func (tx *Transaction) Close() {
	tx.Active = false
}
