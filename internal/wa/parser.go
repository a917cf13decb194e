package wa

import (
	"strings"

	"github.com/matheus3301/wamirror/internal/store"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
)

// NormalizeJID strips the device suffix from a JID string. History sync
// and live events can carry device-specific JIDs ("5585...:0@s.whatsapp.net")
// for the same contact, which would split one conversation into several
// chat entries. LID JIDs pass through unchanged; those need the adapter.
func NormalizeJID(jid string) string {
	at := strings.IndexByte(jid, '@')
	if at < 0 {
		return jid
	}
	user := jid[:at]
	if colon := strings.IndexByte(user, ':'); colon >= 0 {
		user = user[:colon]
	}
	return user + jid[at:]
}

// ParseLiveMessage normalizes a live whatsmeow message event into a
// mirror message. chatJID is the (possibly LID-resolved) destination chat.
func ParseLiveMessage(evt *events.Message, chatJID string) store.Message {
	return store.Message{
		Key: store.MessageKey{
			ID:        evt.Info.ID,
			RemoteJID: NormalizeJID(chatJID),
			FromMe:    evt.Info.IsFromMe,
		},
		SenderJID:   NormalizeJID(evt.Info.Sender.String()),
		PushName:    evt.Info.PushName,
		Body:        extractTextBody(evt.Message),
		MessageType: detectMessageType(evt.Message),
		Status:      "received",
		Timestamp:   evt.Info.Timestamp.Unix(),
	}
}

// ParseHistoryMessage normalizes a history sync message.
func ParseHistoryMessage(msg *waE2E.Message, info types.MessageInfo) store.Message {
	return store.Message{
		Key: store.MessageKey{
			ID:        info.ID,
			RemoteJID: NormalizeJID(info.Chat.String()),
			FromMe:    info.IsFromMe,
		},
		SenderJID:   NormalizeJID(info.Sender.String()),
		PushName:    info.PushName,
		Body:        extractTextBody(msg),
		MessageType: detectMessageType(msg),
		Status:      "received",
		Timestamp:   info.Timestamp.Unix(),
	}
}

func extractTextBody(msg *waE2E.Message) string {
	if msg == nil {
		return ""
	}
	if c := msg.GetConversation(); c != "" {
		return c
	}
	if ext := msg.GetExtendedTextMessage(); ext != nil {
		return ext.GetText()
	}
	return ""
}

func detectMessageType(msg *waE2E.Message) string {
	if msg == nil {
		return "unknown"
	}
	switch {
	case msg.GetConversation() != "" || msg.GetExtendedTextMessage() != nil:
		return "text"
	case msg.GetImageMessage() != nil:
		return "image"
	case msg.GetVideoMessage() != nil:
		return "video"
	case msg.GetAudioMessage() != nil:
		return "audio"
	case msg.GetDocumentMessage() != nil:
		return "document"
	case msg.GetStickerMessage() != nil:
		return "sticker"
	case msg.GetContactMessage() != nil:
		return "contact"
	case msg.GetLocationMessage() != nil:
		return "location"
	default:
		return "unknown"
	}
}
