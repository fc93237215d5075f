package engine

import (
	"context"
	"testing"

	"github.com/leengari/schemadb/internal/domain/data"
	"github.com/leengari/schemadb/internal/domain/schema"
	"github.com/leengari/schemadb/internal/domain/transaction"
	"github.com/leengari/schemadb/internal/query/search"
)

// MockObserver is a test observer that records events
type MockObserver struct {
	Events []Event
}

func (m *MockObserver) OnEvent(event Event) {
	m.Events = append(m.Events, event)
}

func (m *MockObserver) types() []EventType {
	out := make([]EventType, len(m.Events))
	for i, e := range m.Events {
		out[i] = e.Type
	}
	return out
}

func TestAddObserver(t *testing.T) {
	eng := New(nil, nil, nil)
	observer := &MockObserver{}

	eng.AddObserver(observer)

	if len(eng.observers) != 1 {
		t.Errorf("Expected 1 observer, got %d", len(eng.observers))
	}
}

func TestRemoveObserver(t *testing.T) {
	eng := New(nil, nil, nil)
	observer := &MockObserver{}

	eng.AddObserver(observer)
	eng.RemoveObserver(observer)

	if len(eng.observers) != 0 {
		t.Errorf("Expected 0 observers, got %d", len(eng.observers))
	}
}

func TestNotifyWithNoObservers(t *testing.T) {
	eng := New(nil, nil, nil)

	// Should not panic
	eng.notify(Event{Type: EventInsertStart, TxID: "test-tx"})
}

func TestNotifyWithMultipleObservers(t *testing.T) {
	eng := New(nil, nil, nil)
	observer1 := &MockObserver{}
	observer2 := &MockObserver{}

	eng.AddObserver(observer1)
	eng.AddObserver(observer2)

	eng.notify(Event{Type: EventSearchStart, TxID: "test-tx", Data: "name = Alice"})

	if len(observer1.Events) != 1 {
		t.Errorf("Observer1: Expected 1 event, got %d", len(observer1.Events))
	}
	if len(observer2.Events) != 1 {
		t.Errorf("Observer2: Expected 1 event, got %d", len(observer2.Events))
	}
	if observer1.Events[0].Type != EventSearchStart {
		t.Errorf("Observer1: Expected EventSearchStart, got %v", observer1.Events[0].Type)
	}
}

func TestEventTimestamp(t *testing.T) {
	eng := New(nil, nil, nil)
	observer := &MockObserver{}
	eng.AddObserver(observer)

	eng.notify(Event{Type: EventInsertStart, TxID: "test-tx"})

	if observer.Events[0].Timestamp.IsZero() {
		t.Error("Expected timestamp to be set, got zero value")
	}
}

func TestLifecycleEvents(t *testing.T) {
	ctx := context.Background()
	eng := New(nil, nil, nil)
	observer := &MockObserver{}
	eng.AddObserver(observer)

	ts := schema.New("users").AddColumn(schema.NewColumn("name", schema.DataTypeString))
	if err := eng.RegisterTable(ctx, "main", ts); err != nil {
		t.Fatalf("RegisterTable: %v", err)
	}
	if _, err := eng.Insert(ctx, "main", "users", data.NewRow(map[string]any{"name": "Alice"})); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	want := []EventType{EventTableRegister, EventInsertStart, EventInsertEnd}
	got := observer.types()
	if len(got) != len(want) {
		t.Fatalf("Expected events %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	// Start and end of one operation share a transaction
	if observer.Events[1].TxID == "" || observer.Events[1].TxID != observer.Events[2].TxID {
		t.Errorf("Expected insert events to share a TxID, got %q and %q",
			observer.Events[1].TxID, observer.Events[2].TxID)
	}
	if observer.Events[0].TxID == observer.Events[1].TxID {
		t.Error("Expected separate operations to use separate TxIDs")
	}
}

func TestInsertEndCarriesRecordedChange(t *testing.T) {
	ctx := context.Background()
	eng := New(nil, nil, nil)
	ts := schema.New("users").AddColumn(schema.NewColumn("name", schema.DataTypeString))
	if err := eng.RegisterTable(ctx, "main", ts); err != nil {
		t.Fatalf("RegisterTable: %v", err)
	}

	observer := &MockObserver{}
	eng.AddObserver(observer)

	uid, err := eng.Insert(ctx, "main", "users", data.NewRow(map[string]any{"name": "Alice"}))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	end := observer.Events[len(observer.Events)-1]
	if end.Type != EventInsertEnd {
		t.Fatalf("Expected last event %s, got %s", EventInsertEnd, end.Type)
	}
	changes, ok := end.Data.([]transaction.Change)
	if !ok || len(changes) != 1 {
		t.Fatalf("Expected one recorded change, got %#v", end.Data)
	}
	if changes[0].Type != transaction.ChangeTypeInsert || changes[0].RowID != uid || changes[0].Table != "users" {
		t.Errorf("Unexpected change %+v for uid %s", changes[0], uid)
	}
}

func TestSearchEndSentOnError(t *testing.T) {
	ctx := context.Background()
	eng := New(nil, nil, nil)
	ts := schema.New("users").AddColumn(schema.NewColumn("name", schema.DataTypeString))
	if err := eng.RegisterTable(ctx, "main", ts); err != nil {
		t.Fatalf("RegisterTable: %v", err)
	}

	observer := &MockObserver{}
	eng.AddObserver(observer)

	if _, err := eng.Search("main", "users", search.Eq("nickname", "x")); err == nil {
		t.Fatal("Expected an error for an unknown column")
	}

	got := observer.types()
	if len(got) != 2 || got[0] != EventSearchStart || got[1] != EventSearchEnd {
		t.Fatalf("Expected [search_start search_end], got %v", got)
	}
	if observer.Events[0].TxID != observer.Events[1].TxID {
		t.Error("Expected search events to share a TxID")
	}
	if _, ok := observer.Events[1].Data.(string); !ok {
		t.Errorf("Expected the error text as event data, got %#v", observer.Events[1].Data)
	}
}
