// Package tracking tracks attribute modifications on a loaded record so only dirty
// columns are written back. Dirtiness is decided by each attribute's resolution.
package tracking

import (
	"fmt"
	"sync"

	"github.com/conduit-lang/typebind/internal/orm/resolution"
)

// FieldChange represents a change to a single attribute
type FieldChange struct {
	Field    string
	OldValue any
	NewValue any
}

// ChangeTracker tracks attribute changes on one record of a bound resource
type ChangeTracker struct {
	binding *resolution.Binding

	mu       sync.RWMutex
	original map[string]any
	current  map[string]any
	changes  map[string]*FieldChange
}

// NewChangeTracker creates a change tracker for a record
// original: the domain values loaded from the store
// current: the domain values with modifications
func NewChangeTracker(binding *resolution.Binding, original, current map[string]any) (*ChangeTracker, error) {
	ct := &ChangeTracker{
		binding:  binding,
		original: make(map[string]any, len(original)),
		current:  make(map[string]any, len(current)),
		changes:  make(map[string]*FieldChange),
	}

	for field, v := range original {
		if _, ok := binding.Get(field); !ok {
			return nil, fmt.Errorf("%s has no attribute %s", binding.Resource(), field)
		}
		ct.original[field] = v
	}
	for field, v := range current {
		if _, ok := binding.Get(field); !ok {
			return nil, fmt.Errorf("%s has no attribute %s", binding.Resource(), field)
		}
		ct.current[field] = v
	}

	for _, r := range binding.Resolutions() {
		ct.recompute(r)
	}
	return ct, nil
}

// recompute updates the change entry of one attribute. Callers hold mu or own ct.
func (ct *ChangeTracker) recompute(r *resolution.Resolution) {
	field := r.Attribute()
	oldValue, hadOld := ct.original[field]
	newValue, hasNew := ct.current[field]

	if !hadOld && !hasNew {
		delete(ct.changes, field)
		return
	}
	if hadOld != hasNew || r.IsDirty(oldValue, newValue) {
		ct.changes[field] = &FieldChange{Field: field, OldValue: oldValue, NewValue: newValue}
		return
	}
	delete(ct.changes, field)
}

// Changed returns true if the attribute has changed
func (ct *ChangeTracker) Changed(field string) bool {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	_, ok := ct.changes[field]
	return ok
}

// ChangedFields returns the changed attributes in declaration order
func (ct *ChangeTracker) ChangedFields() []string {
	ct.mu.RLock()
	defer ct.mu.RUnlock()

	fields := make([]string, 0, len(ct.changes))
	for _, r := range ct.binding.Resolutions() {
		if _, ok := ct.changes[r.Attribute()]; ok {
			fields = append(fields, r.Attribute())
		}
	}
	return fields
}

// PreviousValue returns the loaded value of an attribute
func (ct *ChangeTracker) PreviousValue(field string) any {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return ct.original[field]
}

// CurrentValue returns the current value of an attribute
func (ct *ChangeTracker) CurrentValue(field string) any {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return ct.current[field]
}

// GetChange returns the FieldChange for an attribute, or nil if unchanged
func (ct *ChangeTracker) GetChange(field string) *FieldChange {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return ct.changes[field]
}

// HasChanges returns true if any attribute has changed
func (ct *ChangeTracker) HasChanges() bool {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return len(ct.changes) > 0
}

// ChangedTo returns true if the attribute changed to the given value
func (ct *ChangeTracker) ChangedTo(field string, value any) bool {
	return ct.changedMatching(field, value, func(c *FieldChange) any { return c.NewValue })
}

// ChangedFrom returns true if the attribute changed from the given value
func (ct *ChangeTracker) ChangedFrom(field string, value any) bool {
	return ct.changedMatching(field, value, func(c *FieldChange) any { return c.OldValue })
}

func (ct *ChangeTracker) changedMatching(field string, value any, side func(*FieldChange) any) bool {
	ct.mu.RLock()
	defer ct.mu.RUnlock()

	change, ok := ct.changes[field]
	if !ok {
		return false
	}
	r, _ := ct.binding.Get(field)
	return r.AreEqual(side(change), value)
}

// SetFieldValue updates an attribute value and recomputes its change status.
// Setting a value equal to the loaded one clears the change.
func (ct *ChangeTracker) SetFieldValue(field string, value any) error {
	r, ok := ct.binding.Get(field)
	if !ok {
		return fmt.Errorf("%s has no attribute %s", ct.binding.Resource(), field)
	}

	ct.mu.Lock()
	defer ct.mu.Unlock()

	ct.current[field] = value
	ct.recompute(r)
	return nil
}

// Reset makes the current state the new loaded state. Call it after a successful save.
func (ct *ChangeTracker) Reset() {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	ct.original = make(map[string]any, len(ct.current))
	for field, v := range ct.current {
		ct.original[field] = v
	}
	ct.changes = make(map[string]*FieldChange)
}

// ChangedColumns returns the relational values of the changed attributes, keyed by
// column name, ready for an UPDATE statement
func (ct *ChangeTracker) ChangedColumns() (map[string]any, error) {
	ct.mu.RLock()
	defer ct.mu.RUnlock()

	result := make(map[string]any, len(ct.changes))
	for field, change := range ct.changes {
		r, _ := ct.binding.Get(field)
		v, err := r.ToRelational(change.NewValue)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", r.Resource(), field, err)
		}
		result[field] = v
	}
	return result, nil
}
