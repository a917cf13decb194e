package store

import "fmt"

// MaxActiveLabels caps how many labels the mirror holds at once.
const MaxActiveLabels = 20

// LabelRepo is a plain id-keyed label store with a capacity ceiling.
type LabelRepo struct {
	byID map[string]Label
}

// NewLabelRepo creates an empty label repository.
func NewLabelRepo() *LabelRepo {
	return &LabelRepo{byID: make(map[string]Label)}
}

// Upsert inserts or replaces a label. A new id arriving at capacity is
// rejected with ErrCapacityExceeded and not stored; existing ids can
// always be replaced.
func (r *LabelRepo) Upsert(l Label) error {
	if _, ok := r.byID[l.ID]; !ok && len(r.byID) >= MaxActiveLabels {
		return fmt.Errorf("label %q: %w", l.ID, ErrCapacityExceeded)
	}
	r.byID[l.ID] = l
	return nil
}

// DeleteID removes a label, reporting whether it was present.
func (r *LabelRepo) DeleteID(id string) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	delete(r.byID, id)
	return true
}

// Get returns a label by id.
func (r *LabelRepo) Get(id string) (Label, bool) {
	l, ok := r.byID[id]
	return l, ok
}

// Len returns the number of stored labels.
func (r *LabelRepo) Len() int {
	return len(r.byID)
}

// All returns a copy of all labels, order unspecified.
func (r *LabelRepo) All() []Label {
	out := make([]Label, 0, len(r.byID))
	for _, l := range r.byID {
		out = append(out, l)
	}
	return out
}

// UpsertLabel stores a label, subject to the capacity cap.
func (m *Mirror) UpsertLabel(l Label) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.labels.Upsert(l)
}

// DeleteLabel removes a label unconditionally if present.
func (m *Mirror) DeleteLabel(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.labels.DeleteID(id)
}

// Label returns a label by id.
func (m *Mirror) Label(id string) (Label, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.labels.Get(id)
}

// Labels returns a copy of all stored labels.
func (m *Mirror) Labels() []Label {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.labels.All()
}

// LabelCount returns the number of stored labels.
func (m *Mirror) LabelCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.labels.Len()
}

// UpsertLabelAssociation stores an association row, unique by composite
// key.
func (m *Mirror) UpsertLabelAssociation(a LabelAssociation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.associations.Upsert(a)
}

// DeleteLabelAssociation removes the row matching a's composite key.
func (m *Mirror) DeleteLabelAssociation(a LabelAssociation) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.associations.Delete(a)
}

// LabelAssociations returns all association rows in key order.
func (m *Mirror) LabelAssociations() []LabelAssociation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.associations.All()
}
