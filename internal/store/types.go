package store

// Chat represents a mirrored chat. Pinned, Archived and
// ConversationTimestamp all participate in the sort key, so any change to
// them repositions the chat in the ordered collection.
type Chat struct {
	ID                    string
	Name                  string
	Pinned                bool
	Archived              bool
	ConversationTimestamp int64
	UnreadCount           int
}

// MessageKey identifies a message. ID is unique within one chat's list.
type MessageKey struct {
	ID        string
	RemoteJID string
	FromMe    bool
}

// Message represents a mirrored message.
type Message struct {
	Key         MessageKey
	SenderJID   string
	PushName    string
	Body        string
	MessageType string
	Status      string
	Timestamp   int64
}

// Contact represents a mirrored contact. Empty string means "not known";
// merges never clear a known field unless explicitly overwritten.
type Contact struct {
	JID      string
	Name     string
	PushName string
	ImgURL   string
}

// Label represents a chat/message label.
type Label struct {
	ID      string
	Name    string
	Color   int32
	Deleted bool
}

// AssociationType distinguishes chat-scoped from message-scoped label links.
type AssociationType string

const (
	AssociationChat    AssociationType = "chat"
	AssociationMessage AssociationType = "message"
)

// LabelAssociation links a label to a chat or to a single message.
type LabelAssociation struct {
	Type      AssociationType
	ChatID    string
	MessageID string
	LabelID   string
}

// Key returns the composite identity of the association. Message-scoped
// rows include the message id; chat-scoped rows do not.
func (a LabelAssociation) Key() string {
	if a.Type == AssociationMessage {
		return a.ChatID + "\x00" + a.MessageID + "\x00" + a.LabelID
	}
	return a.ChatID + "\x00" + a.LabelID
}

// Presence holds one participant's last known presence in a chat.
type Presence struct {
	LastKnownPresence string
	LastSeen          int64
}

// GroupMetadata is unmanaged passthrough state: the engine never
// reconciles it, callers populate it out of band.
type GroupMetadata struct {
	JID          string
	Subject      string
	OwnerJID     string
	Participants int
}
