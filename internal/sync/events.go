package sync

import (
	"time"

	"github.com/matheus3301/wamirror/internal/bus"
	"github.com/matheus3301/wamirror/internal/store"
)

// Event is the closed set of synchronization payloads the engine applies.
// Sealing the union behind an unexported method keeps dispatch a
// compile-time-checked type switch instead of string-keyed registration.
type Event interface {
	kind() string
}

// ConnectionUpdate carries a partial connectivity state bag.
type ConnectionUpdate struct {
	Fields map[string]any
}

// HistorySet is a history synchronization batch. IsLatest marks a full
// bootstrap snapshot that resets chats and messages before merging.
type HistorySet struct {
	Chats    []store.Chat
	Contacts []store.Contact
	Messages []store.Message
	IsLatest bool
}

// ContactsUpsert carries full contact records to merge.
type ContactsUpsert struct {
	Contacts []store.Contact
}

// ContactPatch is a partial contact update. ID may be the canonical JID or
// a short fingerprint; nil fields are left untouched. ImgURL may carry the
// ImgChanged/ImgRemoved sentinels.
type ContactPatch struct {
	ID       string
	Name     *string
	PushName *string
	ImgURL   *string
}

// ContactsUpdate carries partial contact updates.
type ContactsUpdate struct {
	Updates []ContactPatch
}

// ChatsUpsert carries full chat records.
type ChatsUpsert struct {
	Chats []store.Chat
}

// ChatPatch is a partial chat update; nil fields are left untouched.
type ChatPatch struct {
	ID                    string
	Name                  *string
	Pinned                *bool
	Archived              *bool
	ConversationTimestamp *int64
	UnreadCount           *int
}

// ChatsUpdate carries partial chat updates.
type ChatsUpdate struct {
	Updates []ChatPatch
}

// LabelsEdit upserts a label, or deletes it when the Deleted flag is set.
type LabelsEdit struct {
	Label store.Label
}

// LabelAssociationUpdate adds or removes one association row.
type LabelAssociationUpdate struct {
	Op          string
	Association store.LabelAssociation
}

// PresenceUpdate carries per-participant presence for one chat.
type PresenceUpdate struct {
	ChatID    string
	Presences map[string]store.Presence
}

// ChatsDelete removes chats by id; absent ids are silently ignored.
type ChatsDelete struct {
	IDs []string
}

// MessagesUpsert carries live or appended messages. Type is TypeAppend or
// TypeNotify; notify additionally creates a placeholder chat for unknown
// destinations.
type MessagesUpsert struct {
	Messages []store.Message
	Type     string
}

const (
	OpAdd    = "add"
	OpRemove = "remove"

	TypeAppend = "append"
	TypeNotify = "notify"

	// ImgChanged and ImgRemoved are the sentinel ImgURL values on a
	// contact patch: fetch a fresh picture URL, or clear the field.
	ImgChanged = "changed"
	ImgRemoved = "removed"
)

func (ConnectionUpdate) kind() string        { return "connection.update" }
func (HistorySet) kind() string              { return "messaging-history.set" }
func (ContactsUpsert) kind() string          { return "contacts.upsert" }
func (ContactsUpdate) kind() string          { return "contacts.update" }
func (ChatsUpsert) kind() string             { return "chats.upsert" }
func (ChatsUpdate) kind() string             { return "chats.update" }
func (LabelsEdit) kind() string              { return "labels.edit" }
func (LabelAssociationUpdate) kind() string  { return "labels.association" }
func (PresenceUpdate) kind() string          { return "presence.update" }
func (ChatsDelete) kind() string             { return "chats.delete" }
func (MessagesUpsert) kind() string          { return "messages.upsert" }

// Namespace is the bus prefix the engine subscribes to.
const Namespace = "wa."

// BusEvent wraps a payload for publishing on the bus under the engine's
// namespace.
func BusEvent(e Event) bus.Event {
	return bus.Event{
		Kind:      Namespace + e.kind(),
		Timestamp: time.Now(),
		Payload:   e,
	}
}
