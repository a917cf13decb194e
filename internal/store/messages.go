package store

// InsertPosition selects where an unknown message id lands in a chat's
// list. Bootstrap history prepends (it predates already-seen live
// messages); live messages append.
type InsertPosition int

const (
	Append InsertPosition = iota
	Prepend
)

// MessageList holds one chat's messages, uniquely keyed by message id.
// Re-upserting a known id replaces its content in place: a later
// correction never reorders history. The list grows without bound; callers
// needing a cap must trim on their side.
type MessageList struct {
	byID  map[string]*Message
	order []*Message
}

// NewMessageList creates an empty message list.
func NewMessageList() *MessageList {
	return &MessageList{byID: make(map[string]*Message)}
}

// Upsert inserts msg at the given position if its id is unknown, or
// replaces the known entry's content without moving it.
func (l *MessageList) Upsert(msg Message, pos InsertPosition) {
	if slot, ok := l.byID[msg.Key.ID]; ok {
		*slot = msg
		return
	}
	slot := &msg
	l.byID[msg.Key.ID] = slot
	if pos == Prepend {
		l.order = append([]*Message{slot}, l.order...)
	} else {
		l.order = append(l.order, slot)
	}
}

// Get returns the message with the given id.
func (l *MessageList) Get(id string) (Message, bool) {
	slot, ok := l.byID[id]
	if !ok {
		return Message{}, false
	}
	return *slot, true
}

// Len returns the number of messages.
func (l *MessageList) Len() int {
	return len(l.order)
}

// All returns the messages in list order.
func (l *MessageList) All() []Message {
	out := make([]Message, len(l.order))
	for i, slot := range l.order {
		out[i] = *slot
	}
	return out
}

// UpsertMessage applies msg to the chat's list, creating the list on first
// reference.
func (m *Mirror) UpsertMessage(chatID string, msg Message, pos InsertPosition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list, ok := m.messages[chatID]
	if !ok {
		list = NewMessageList()
		m.messages[chatID] = list
	}
	list.Upsert(msg, pos)
}

// MessagesFor returns a copy of the chat's messages in list order.
func (m *Mirror) MessagesFor(chatID string) []Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list, ok := m.messages[chatID]
	if !ok {
		return nil
	}
	return list.All()
}

// MessageCount returns the number of messages mirrored for a chat.
func (m *Mirror) MessageCount(chatID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list, ok := m.messages[chatID]
	if !ok {
		return 0
	}
	return list.Len()
}
