package pool

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type waypoint struct {
	Name string
}

func TestAllocGetFree(t *testing.T) {
	p := New[waypoint]("waypoints", 4)
	a, err := p.Alloc(waypoint{Name: "a"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.Alloc(waypoint{Name: "b"})
	if err != nil {
		t.Fatal(err)
	}
	if a.Index != 0 || b.Index != 1 {
		t.Errorf("indices = %d, %d, want 0, 1", a.Index, b.Index)
	}
	got, err := p.Get(b)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(waypoint{Name: "b"}, *got); diff != "" {
		t.Errorf("Get mismatch (-want +got):\n%s", diff)
	}
	if err := p.Free(a); err != nil {
		t.Fatal(err)
	}
	if p.Len() != 1 {
		t.Errorf("Len = %d, want 1", p.Len())
	}
	if err := p.Free(a); !errors.Is(err, ErrStale) {
		t.Errorf("double Free err = %v, want ErrStale", err)
	}
}

func TestReusedSlotRejectsStaleID(t *testing.T) {
	p := New[waypoint]("waypoints", 4)
	old, _ := p.Alloc(waypoint{Name: "old"})
	if err := p.Free(old); err != nil {
		t.Fatal(err)
	}
	fresh, err := p.Alloc(waypoint{Name: "new"})
	if err != nil {
		t.Fatal(err)
	}
	if fresh.Index != old.Index {
		t.Fatalf("slot not reused: %v vs %v", fresh, old)
	}
	if _, err := p.Get(old); !errors.Is(err, ErrStale) {
		t.Errorf("Get(old) err = %v, want ErrStale", err)
	}
	if p.Valid(old) {
		t.Error("old id still valid")
	}
	if !p.Valid(fresh) {
		t.Error("fresh id not valid")
	}
}

func TestLimit(t *testing.T) {
	p := New[int]("objects", 2)
	p.Alloc(1)
	p.Alloc(2)
	if _, err := p.Alloc(3); !errors.Is(err, ErrFull) {
		t.Errorf("err = %v, want ErrFull", err)
	}
	if _, err := p.AllocAt(5, 3); !errors.Is(err, ErrFull) {
		t.Errorf("AllocAt err = %v, want ErrFull", err)
	}
}

func TestAllocAtKeepsIndexAndFillsGaps(t *testing.T) {
	p := New[int]("towns", 8)
	id, err := p.AllocAt(3, 30)
	if err != nil {
		t.Fatal(err)
	}
	if id.Index != 3 {
		t.Errorf("index = %d, want 3", id.Index)
	}
	if _, err := p.AllocAt(3, 31); !errors.Is(err, ErrInUse) {
		t.Errorf("err = %v, want ErrInUse", err)
	}
	next, _ := p.Alloc(0)
	if next.Index != 0 {
		t.Errorf("Alloc index = %d, want lowest free 0", next.Index)
	}
	var got []uint32
	for id := range p.All() {
		got = append(got, id.Index)
	}
	if diff := cmp.Diff([]uint32{0, 3}, got); diff != "" {
		t.Errorf("All mismatch (-want +got):\n%s", diff)
	}
	bid, v, ok := p.ByIndex(3)
	if !ok || *v != 30 || bid != id {
		t.Errorf("ByIndex(3) = %v, %v, %v", bid, v, ok)
	}
	if _, _, ok := p.ByIndex(2); ok {
		t.Error("ByIndex(2) found a free slot")
	}
}

func TestZeroIDNeverValid(t *testing.T) {
	p := New[int]("stations", 2)
	p.Alloc(7)
	if _, err := p.Get(None); !errors.Is(err, ErrInvalid) {
		t.Errorf("Get(None) err = %v, want ErrInvalid", err)
	}
}

func TestClearInvalidatesIDs(t *testing.T) {
	p := New[int]("objects", 2)
	id, _ := p.Alloc(1)
	p.Clear()
	if p.Valid(id) {
		t.Error("id valid after Clear")
	}
	again, _ := p.Alloc(2)
	if again == id {
		t.Errorf("reused id %v equals pre-Clear id", again)
	}
}
