package room

import (
	"sync"
	"testing"
)

func TestJoinCreatesRoom(t *testing.T) {
	reg := NewRegistry[string]()

	reg.Join("doc-1", "a")
	reg.Join("doc-1", "b")

	members := reg.Members("doc-1")
	if len(members) != 2 {
		t.Errorf("Expected 2 members, got %d", len(members))
	}
	if reg.RoomCount() != 1 {
		t.Errorf("Expected 1 room, got %d", reg.RoomCount())
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	reg := NewRegistry[string]()

	reg.Join("doc-1", "a")
	reg.Join("doc-1", "a")

	if got := reg.MemberCount(); got != 1 {
		t.Errorf("Expected 1 member after double join, got %d", got)
	}
}

func TestLastLeaveDeletesRoom(t *testing.T) {
	reg := NewRegistry[string]()

	reg.Join("doc-1", "a")
	reg.Join("doc-1", "b")

	if !reg.Leave("doc-1", "a") {
		t.Error("Leave should report the member was removed")
	}
	if reg.RoomCount() != 1 {
		t.Errorf("Room should survive while members remain, got %d rooms", reg.RoomCount())
	}

	reg.Leave("doc-1", "b")
	if reg.RoomCount() != 0 {
		t.Errorf("Empty room should be deleted, got %d rooms", reg.RoomCount())
	}

	// A rejoin gets a fresh, empty room
	reg.Join("doc-1", "c")
	if got := len(reg.Members("doc-1")); got != 1 {
		t.Errorf("Fresh room should have 1 member, got %d", got)
	}
}

func TestLeaveUnknownMember(t *testing.T) {
	reg := NewRegistry[string]()

	if reg.Leave("doc-1", "ghost") {
		t.Error("Leaving a room never joined should report false")
	}
}

func TestActiveRooms(t *testing.T) {
	reg := NewRegistry[string]()

	reg.Join("doc-1", "a")
	reg.Join("doc-1", "b")
	reg.Join("doc-2", "c")

	active := reg.ActiveRooms()
	if active["doc-1"] != 2 || active["doc-2"] != 1 {
		t.Errorf("Unexpected active rooms: %v", active)
	}
	if reg.MemberCount() != 3 {
		t.Errorf("Expected 3 members total, got %d", reg.MemberCount())
	}
}

func TestRegistryConcurrency(t *testing.T) {
	reg := NewRegistry[int]()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reg.Join("doc-1", i)
			reg.Members("doc-1")
			if i%2 == 0 {
				reg.Leave("doc-1", i)
			}
		}(i)
	}
	wg.Wait()

	if got := len(reg.Members("doc-1")); got != 50 {
		t.Errorf("Expected 50 members after concurrent churn, got %d", got)
	}
}
