package pool

import "github.com/tomz197/driftfield/internal/physics"

// ID identifies an entity for the lifetime of the process.
type ID uint32

// Tag names an entity category, used for pool lookup and collision filtering.
type Tag string

// Behavior receives lifecycle notifications for a pooled entity.
type Behavior interface {
	// OnActivate is called after the entity becomes active.
	OnActivate()
	// OnDeactivate is called after the entity becomes inactive.
	OnDeactivate()
}

// Factory builds the behavior for a freshly instantiated entity.
// It runs once per instance, at pre-warm or on growth.
type Factory func(e *Entity) Behavior

// Entity is a pre-instantiated object that cycles between active and inactive.
// Entities are never destroyed; an inactive entity is available for reuse.
type Entity struct {
	id         ID
	tag        Tag
	template   string
	active     bool
	generation uint64
	behavior   Behavior
	registry   *Registry

	// Transform is the world pose. Owners write it before activation.
	Transform physics.Pose
}

// ID returns the stable entity identifier.
func (e *Entity) ID() ID { return e.id }

// Tag returns the category tag.
func (e *Entity) Tag() Tag { return e.tag }

// Template returns the template name the entity was built from.
func (e *Entity) Template() string { return e.template }

// Active reports whether the entity is participating in the simulation.
func (e *Entity) Active() bool { return e.active }

// Generation counts activations. Delayed work compares it to detect reuse.
func (e *Entity) Generation() uint64 { return e.generation }

// Behavior returns the entity's behavior, or nil if the factory returned none.
func (e *Entity) Behavior() Behavior { return e.behavior }

// Activate makes the entity active. Activating an active entity is a no-op.
func (e *Entity) Activate() {
	if e.active {
		return
	}
	e.active = true
	e.generation++
	if e.behavior != nil {
		e.behavior.OnActivate()
	}
}

// Deactivate makes the entity inactive, returning it to its pool.
// Deactivating an inactive entity is a no-op.
func (e *Entity) Deactivate() {
	if !e.active {
		return
	}
	e.active = false
	if e.behavior != nil {
		e.behavior.OnDeactivate()
	}
	if e.registry != nil {
		e.registry.notifyDeactivated(e)
	}
}

// SetActive activates or deactivates the entity.
func (e *Entity) SetActive(active bool) {
	if active {
		e.Activate()
	} else {
		e.Deactivate()
	}
}
