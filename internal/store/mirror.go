package store

import "sync"

// Mirror is the in-memory reflection of remote conversational state. One
// instance owns every collection; there is no package-level state. The
// reconciliation engine is the only writer. External consumers read through
// the accessor methods, which copy under the read lock — mutating the
// mirror from outside the engine breaks its sort and capacity invariants.
type Mirror struct {
	mu sync.RWMutex

	chats        *Ordered[Chat]
	messages     map[string]*MessageList
	contacts     map[string]Contact
	contactOrder []string
	presences    map[string]map[string]Presence
	labels       *LabelRepo
	associations *Ordered[LabelAssociation]
	groups       map[string]GroupMetadata
	conn         *ConnState
}

// NewMirror creates an empty mirror.
func NewMirror() *Mirror {
	return &Mirror{
		chats:        NewOrdered(chatID, ChatSortKey),
		messages:     make(map[string]*MessageList),
		contacts:     make(map[string]Contact),
		presences:    make(map[string]map[string]Presence),
		labels:       NewLabelRepo(),
		associations: NewOrdered(associationKey, associationKey),
		groups:       make(map[string]GroupMetadata),
		conn:         NewConnState(),
	}
}

func chatID(c Chat) string { return c.ID }

func associationKey(a LabelAssociation) string { return a.Key() }

// ResetForBootstrap clears the chat collection and every message list
// ahead of a full resync. Contacts, presences, labels and associations
// are left alone: bootstrap merges those instead of replacing them.
func (m *Mirror) ResetForBootstrap() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chats.Clear()
	m.messages = make(map[string]*MessageList)
}

// MergeConnState shallow-merges connectivity fields.
func (m *Mirror) MergeConnState(fields map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conn.Merge(fields)
}

// ConnField returns one connectivity field.
func (m *Mirror) ConnField(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conn.Get(key)
}

// ConnFields returns a copy of the connectivity bag.
func (m *Mirror) ConnFields() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conn.Fields()
}

// MergePresence merges participant presence fields into the chat's
// presence map, creating it if absent. Stale participants are never
// evicted.
func (m *Mirror) MergePresence(chatID string, presences map[string]Presence) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byParticipant, ok := m.presences[chatID]
	if !ok {
		byParticipant = make(map[string]Presence)
		m.presences[chatID] = byParticipant
	}
	for id, p := range presences {
		byParticipant[id] = p
	}
}

// Presences returns a copy of the chat's participant presence map.
func (m *Mirror) Presences(chatID string) map[string]Presence {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Presence, len(m.presences[chatID]))
	for id, p := range m.presences[chatID] {
		out[id] = p
	}
	return out
}

// PutGroupMetadata stores group metadata under its JID. Passthrough only.
func (m *Mirror) PutGroupMetadata(g GroupMetadata) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[g.JID] = g
}

// Group returns group metadata by JID.
func (m *Mirror) Group(jid string) (GroupMetadata, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.groups[jid]
	return g, ok
}

// Groups returns a copy of the group metadata map.
func (m *Mirror) Groups() map[string]GroupMetadata {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]GroupMetadata, len(m.groups))
	for jid, g := range m.groups {
		out[jid] = g
	}
	return out
}
