package store

import "sort"

// Ordered is a set of items uniquely keyed by id, kept iterable in
// descending order of a caller-supplied sort key. The key may depend on
// mutable fields, so every mutation path recomputes it and repositions the
// item; a stale key never survives a mutation. Callers must route all sort
// key changes through Upsert or Update.
type Ordered[T any] struct {
	idOf  func(T) string
	keyOf func(T) string
	byID  map[string]T
	order []orderedEntry // strictly descending by key
}

type orderedEntry struct {
	key string
	id  string
}

// NewOrdered creates an empty ordered collection. keyOf must embed idOf's
// result as the trailing key component so the order is total: no two items
// ever compare equal.
func NewOrdered[T any](idOf, keyOf func(T) string) *Ordered[T] {
	return &Ordered[T]{
		idOf:  idOf,
		keyOf: keyOf,
		byID:  make(map[string]T),
	}
}

// Len returns the number of items.
func (o *Ordered[T]) Len() int {
	return len(o.byID)
}

// Get returns the item with the given id.
func (o *Ordered[T]) Get(id string) (T, bool) {
	item, ok := o.byID[id]
	return item, ok
}

// All returns the items in descending key order.
func (o *Ordered[T]) All() []T {
	out := make([]T, len(o.order))
	for i, e := range o.order {
		out[i] = o.byID[e.id]
	}
	return out
}

// Clear removes every item.
func (o *Ordered[T]) Clear() {
	o.byID = make(map[string]T)
	o.order = o.order[:0]
}

// Upsert inserts or fully replaces each item, repositioning by its current
// sort key.
func (o *Ordered[T]) Upsert(items ...T) {
	for _, item := range items {
		id := o.idOf(item)
		if old, ok := o.byID[id]; ok {
			o.removeEntry(o.keyOf(old))
		}
		o.byID[id] = item
		o.insertEntry(orderedEntry{key: o.keyOf(item), id: id})
	}
}

// InsertIfAbsent inserts items whose id is not yet known and returns how
// many were actually inserted. Existing items are left untouched: the
// incoming batch is treated as lower priority than known state.
func (o *Ordered[T]) InsertIfAbsent(items ...T) int {
	inserted := 0
	for _, item := range items {
		id := o.idOf(item)
		if _, ok := o.byID[id]; ok {
			continue
		}
		o.byID[id] = item
		o.insertEntry(orderedEntry{key: o.keyOf(item), id: id})
		inserted++
	}
	return inserted
}

// Update applies mutate to the stored item and repositions it. Returns
// ErrNotFound if the id is unknown; the caller decides whether that is
// reportable.
func (o *Ordered[T]) Update(id string, mutate func(*T)) error {
	item, ok := o.byID[id]
	if !ok {
		return ErrNotFound
	}
	o.removeEntry(o.keyOf(item))
	mutate(&item)
	o.byID[id] = item
	o.insertEntry(orderedEntry{key: o.keyOf(item), id: id})
	return nil
}

// Delete removes the item with the same id as the given one.
func (o *Ordered[T]) Delete(item T) bool {
	return o.DeleteID(o.idOf(item))
}

// DeleteID removes the item with the given id, reporting whether it was
// present.
func (o *Ordered[T]) DeleteID(id string) bool {
	item, ok := o.byID[id]
	if !ok {
		return false
	}
	o.removeEntry(o.keyOf(item))
	delete(o.byID, id)
	return true
}

// insertEntry places e into the descending order slice.
func (o *Ordered[T]) insertEntry(e orderedEntry) {
	i := sort.Search(len(o.order), func(i int) bool {
		return o.order[i].key < e.key
	})
	o.order = append(o.order, orderedEntry{})
	copy(o.order[i+1:], o.order[i:])
	o.order[i] = e
}

// removeEntry drops the entry carrying exactly this key. Keys are unique
// because the id is the trailing component.
func (o *Ordered[T]) removeEntry(key string) {
	i := sort.Search(len(o.order), func(i int) bool {
		return o.order[i].key <= key
	})
	if i < len(o.order) && o.order[i].key == key {
		o.order = append(o.order[:i], o.order[i+1:]...)
	}
}
