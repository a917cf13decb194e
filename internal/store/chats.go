package store

import (
	"fmt"
	"strings"
)

// ChatSortKey builds the composite ordering key for a chat: pin bit,
// archive bit (unarchived chats carry '1' so they float above archived
// ones in the descending scan), conversation timestamp in fixed-width hex,
// then the id. The id tail makes the key total: two distinct chats never
// compare equal.
func ChatSortKey(c Chat) string {
	var b strings.Builder
	if c.Pinned {
		b.WriteByte('1')
	} else {
		b.WriteByte('0')
	}
	if c.Archived {
		b.WriteByte('0')
	} else {
		b.WriteByte('1')
	}
	if c.ConversationTimestamp > 0 {
		fmt.Fprintf(&b, "%016x", uint64(c.ConversationTimestamp))
	}
	b.WriteString(c.ID)
	return b.String()
}

// UpsertChats inserts or fully replaces chats, repositioning each by its
// current sort key.
func (m *Mirror) UpsertChats(chats ...Chat) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chats.Upsert(chats...)
}

// InsertChatsIfAbsent inserts only unknown chats and returns how many were
// inserted. Known chats — presumably refreshed by more recent live events —
// win over the incoming batch.
func (m *Mirror) InsertChatsIfAbsent(chats ...Chat) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chats.InsertIfAbsent(chats...)
}

// UpdateChat applies mutate to an existing chat and repositions it.
// Returns ErrNotFound for unknown ids.
func (m *Mirror) UpdateChat(id string, mutate func(*Chat)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chats.Update(id, mutate)
}

// DeleteChat removes a chat, reporting whether it was present.
func (m *Mirror) DeleteChat(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chats.DeleteID(id)
}

// Chat returns a chat by id.
func (m *Mirror) Chat(id string) (Chat, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.chats.Get(id)
}

// HasChat reports whether the chat is known.
func (m *Mirror) HasChat(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.chats.Get(id)
	return ok
}

// Chats returns all chats in descending sort key order.
func (m *Mirror) Chats() []Chat {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.chats.All()
}

// ChatCount returns the number of chats.
func (m *Mirror) ChatCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.chats.Len()
}
