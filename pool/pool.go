// Package pool provides bounded slot pools whose IDs carry a generation, so a
// reference into a freed and reused slot is detected instead of aliasing the
// new occupant.
package pool

import (
	"errors"
	"fmt"
	"iter"
)

var (
	ErrFull    = errors.New("pool: no free slot")
	ErrStale   = errors.New("pool: stale id")
	ErrInvalid = errors.New("pool: invalid id")
	ErrInUse   = errors.New("pool: slot in use")
)

// ID addresses a pool slot. The zero ID never refers to an entry.
type ID struct {
	Index uint32
	Gen   uint32
}

var None = ID{}

func (id ID) IsValid() bool {
	return id.Gen != 0
}

func (id ID) String() string {
	if !id.IsValid() {
		return "none"
	}
	return fmt.Sprintf("%d#%d", id.Index, id.Gen)
}

type slot[T any] struct {
	gen  uint32
	live bool
	val  T
}

// Pool holds at most limit entries of T.
type Pool[T any] struct {
	name  string
	limit int
	slots []slot[T]
	live  int
	// lowest index that may be free
	firstFree int
}

func New[T any](name string, limit int) *Pool[T] {
	return &Pool[T]{name: name, limit: limit}
}

func (p *Pool[T]) Name() string { return p.name }
func (p *Pool[T]) Len() int     { return p.live }
func (p *Pool[T]) Limit() int   { return p.limit }

// Alloc stores v in the lowest free slot.
func (p *Pool[T]) Alloc(v T) (ID, error) {
	for i := p.firstFree; i < len(p.slots); i++ {
		if !p.slots[i].live {
			p.firstFree = i
			return p.put(i, v), nil
		}
	}
	if len(p.slots) >= p.limit {
		return None, fmt.Errorf("%s: %w", p.name, ErrFull)
	}
	p.slots = append(p.slots, slot[T]{})
	p.firstFree = len(p.slots) - 1
	return p.put(len(p.slots)-1, v), nil
}

// AllocAt stores v at a fixed index. Loaders use it to keep saved indices.
func (p *Pool[T]) AllocAt(index uint32, v T) (ID, error) {
	if int(index) >= p.limit {
		return None, fmt.Errorf("%s: index %d beyond limit %d: %w", p.name, index, p.limit, ErrFull)
	}
	for int(index) >= len(p.slots) {
		p.slots = append(p.slots, slot[T]{})
	}
	if p.slots[index].live {
		return None, fmt.Errorf("%s: index %d: %w", p.name, index, ErrInUse)
	}
	return p.put(int(index), v), nil
}

func (p *Pool[T]) put(i int, v T) ID {
	s := &p.slots[i]
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	s.live = true
	s.val = v
	p.live++
	if i == p.firstFree {
		p.firstFree++
	}
	return ID{Index: uint32(i), Gen: s.gen}
}

// Get returns the entry for id, failing for freed or reused slots.
func (p *Pool[T]) Get(id ID) (*T, error) {
	if !id.IsValid() || int(id.Index) >= len(p.slots) {
		return nil, fmt.Errorf("%s: %v: %w", p.name, id, ErrInvalid)
	}
	s := &p.slots[id.Index]
	if !s.live || s.gen != id.Gen {
		return nil, fmt.Errorf("%s: %v: %w", p.name, id, ErrStale)
	}
	return &s.val, nil
}

// Valid reports whether id still refers to a live entry.
func (p *Pool[T]) Valid(id ID) bool {
	_, err := p.Get(id)
	return err == nil
}

// ByIndex resolves a bare index as stored on disk.
func (p *Pool[T]) ByIndex(index uint32) (ID, *T, bool) {
	if int(index) >= len(p.slots) || !p.slots[index].live {
		return None, nil, false
	}
	s := &p.slots[index]
	return ID{Index: index, Gen: s.gen}, &s.val, true
}

func (p *Pool[T]) Free(id ID) error {
	if _, err := p.Get(id); err != nil {
		return err
	}
	s := &p.slots[id.Index]
	var zero T
	s.val = zero
	s.live = false
	p.live--
	if int(id.Index) < p.firstFree {
		p.firstFree = int(id.Index)
	}
	return nil
}

// All iterates over live entries in index order.
func (p *Pool[T]) All() iter.Seq2[ID, *T] {
	return func(yield func(ID, *T) bool) {
		for i := range p.slots {
			s := &p.slots[i]
			if !s.live {
				continue
			}
			if !yield(ID{Index: uint32(i), Gen: s.gen}, &s.val) {
				return
			}
		}
	}
}

// MaxIndex returns one past the highest index ever used.
func (p *Pool[T]) MaxIndex() int {
	return len(p.slots)
}

// Clear frees every entry. Generations keep counting so old IDs stay stale.
func (p *Pool[T]) Clear() {
	for i := range p.slots {
		if p.slots[i].live {
			var zero T
			p.slots[i].val = zero
			p.slots[i].live = false
		}
	}
	p.live = 0
	p.firstFree = 0
}
