// Package pool keeps fixed sets of pre-instantiated entities grouped by tag and
// hands out inactive ones on request.
//
// There is no release call: deactivating an entity makes it available again.
// Availability is derived from the active flag rather than separate bookkeeping.
package pool

import (
	"errors"
	"fmt"

	"github.com/tomz197/driftfield/internal/physics"
)

// ErrInitialized is returned when Initialize is called twice.
var ErrInitialized = errors.New("pool already initialized")

// Entry declares one category's capacity.
type Entry struct {
	Tag      Tag
	Template string
	Amount   int
	Growable bool // instantiate more on exhaustion instead of failing
	New      Factory
}

// Stat is the occupancy of one tag.
type Stat struct {
	Tag    Tag
	Total  int
	Active int
}

// Registry owns every pooled entity.
// It is not safe for concurrent use; the simulation goroutine owns it.
type Registry struct {
	entries     []Entry
	entities    []*Entity
	tags        []Tag // first-seen order, for stable Stats output
	onDeactive  []func(*Entity)
	nextID      ID
	initialized bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{nextID: 1}
}

// Initialize pre-instantiates Amount inactive instances for every entry.
// Entries are validated up front; on error nothing is instantiated.
func (r *Registry) Initialize(entries []Entry) error {
	if r.initialized {
		return ErrInitialized
	}
	for i, e := range entries {
		if err := validate(e); err != nil {
			return fmt.Errorf("pool entry %d (%q): %w", i, e.Tag, err)
		}
	}

	r.entries = append(r.entries[:0], entries...)
	for i := range r.entries {
		entry := &r.entries[i]
		r.noteTag(entry.Tag)
		for n := 0; n < entry.Amount; n++ {
			r.instantiate(entry)
		}
	}
	r.initialized = true
	return nil
}

func validate(e Entry) error {
	switch {
	case e.Tag == "":
		return errors.New("empty tag")
	case e.Amount < 0:
		return fmt.Errorf("negative amount %d", e.Amount)
	case e.New == nil:
		return errors.New("nil factory")
	}
	return nil
}

// Acquire returns the first inactive entity with the given tag.
// When every instance is in use, the first growable entry for the tag grows by
// one instance, which is returned inactive. Otherwise it returns nil, false:
// exhaustion is an expected outcome, not an error.
func (r *Registry) Acquire(tag Tag) (*Entity, bool) {
	for _, e := range r.entities {
		if !e.active && e.tag == tag {
			return e, true
		}
	}

	for i := range r.entries {
		entry := &r.entries[i]
		if entry.Tag == tag && entry.Growable {
			return r.instantiate(entry), true
		}
	}
	return nil, false
}

// instantiate creates one inactive entity for entry and records it.
func (r *Registry) instantiate(entry *Entry) *Entity {
	e := &Entity{
		id:       r.nextID,
		tag:      entry.Tag,
		template: entry.Template,
		registry: r,
	}
	e.Transform.Rotation = physics.Identity
	r.nextID++
	e.behavior = entry.New(e)
	r.entities = append(r.entities, e)
	return e
}

func (r *Registry) noteTag(tag Tag) {
	for _, t := range r.tags {
		if t == tag {
			return
		}
	}
	r.tags = append(r.tags, tag)
}

// OnDeactivate registers fn to run whenever an entity is deactivated,
// after the entity's own OnDeactivate hook.
func (r *Registry) OnDeactivate(fn func(*Entity)) {
	r.onDeactive = append(r.onDeactive, fn)
}

func (r *Registry) notifyDeactivated(e *Entity) {
	for _, fn := range r.onDeactive {
		fn(e)
	}
}

// Entities returns every instance in creation order. The slice must not be modified.
func (r *Registry) Entities() []*Entity {
	return r.entities
}

// Count returns the total and active instance counts for tag.
func (r *Registry) Count(tag Tag) (total, active int) {
	for _, e := range r.entities {
		if e.tag != tag {
			continue
		}
		total++
		if e.active {
			active++
		}
	}
	return total, active
}

// Stats returns occupancy for every tag in declaration order.
func (r *Registry) Stats() []Stat {
	stats := make([]Stat, len(r.tags))
	for i, tag := range r.tags {
		stats[i].Tag = tag
		stats[i].Total, stats[i].Active = r.Count(tag)
	}
	return stats
}

// DeactivateAll returns every entity to the pool.
func (r *Registry) DeactivateAll() {
	for _, e := range r.entities {
		e.Deactivate()
	}
}
