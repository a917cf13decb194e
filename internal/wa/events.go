package wa

import (
	"context"

	"github.com/matheus3301/wamirror/internal/bus"
	"github.com/matheus3301/wamirror/internal/status"
	"github.com/matheus3301/wamirror/internal/store"
	intsync "github.com/matheus3301/wamirror/internal/sync"
	"go.mau.fi/whatsmeow/proto/waHistorySync"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"go.uber.org/zap"
)

// EventHandler translates whatsmeow events into the engine's typed
// payloads and drives the connectivity state machine. It does NOT touch
// the mirror directly — the reconciliation engine subscribes to the bus
// independently and applies everything in order.
type EventHandler struct {
	bus     *bus.Bus
	machine *status.Machine
	adapter *Adapter
	logger  *zap.Logger
}

// NewEventHandler creates a new event handler. adapter may be nil in
// tests; LID resolution is then skipped.
func NewEventHandler(b *bus.Bus, machine *status.Machine, adapter *Adapter, logger *zap.Logger) *EventHandler {
	return &EventHandler{
		bus:     b,
		machine: machine,
		adapter: adapter,
		logger:  logger,
	}
}

func (h *EventHandler) publish(e intsync.Event) {
	h.bus.Publish(intsync.BusEvent(e))
}

// Handle is the main whatsmeow event handler function.
func (h *EventHandler) Handle(rawEvt any) {
	switch evt := rawEvt.(type) {
	case *events.Message:
		h.handleMessage(evt)
	case *events.HistorySync:
		h.handleHistorySync(evt)
	case *events.Connected:
		h.logger.Info("WhatsApp connected")
		current := h.machine.Current()
		if current == status.AuthRequired || current == status.Reconnecting {
			_ = h.machine.Transition(status.Connecting)
		}
		_ = h.machine.Transition(status.Syncing)
		h.publish(intsync.ConnectionUpdate{Fields: map[string]any{"connection": "open"}})
	case *events.Disconnected:
		h.logger.Warn("WhatsApp disconnected")
		_ = h.machine.Transition(status.Reconnecting)
		h.publish(intsync.ConnectionUpdate{Fields: map[string]any{"connection": "close"}})
	case *events.LoggedOut:
		h.logger.Warn("WhatsApp logged out", zap.String("reason", evt.Reason.String()))
		_ = h.machine.Transition(status.AuthRequired)
		h.publish(intsync.ConnectionUpdate{Fields: map[string]any{
			"connection": "close",
			"loggedOut":  true,
		}})
	case *events.Presence:
		h.handlePresence(evt)
	case *events.ChatPresence:
		h.handleChatPresence(evt)
	case *events.Picture:
		h.handlePicture(evt)
	case *events.Contact:
		h.handleContact(evt)
	case *events.PushName:
		pushName := evt.NewPushName
		h.publish(intsync.ContactsUpdate{Updates: []intsync.ContactPatch{{
			ID:       evt.JID.String(),
			PushName: &pushName,
		}}})
	case *events.Archive:
		archived := evt.Action.GetArchived()
		h.publish(intsync.ChatsUpdate{Updates: []intsync.ChatPatch{{
			ID:       evt.JID.String(),
			Archived: &archived,
		}}})
	case *events.Pin:
		pinned := evt.Action.GetPinned()
		h.publish(intsync.ChatsUpdate{Updates: []intsync.ChatPatch{{
			ID:     evt.JID.String(),
			Pinned: &pinned,
		}}})
	case *events.MarkChatAsRead:
		// Read clears the counter; marking unread plants the -1 marker.
		unread := 0
		if !evt.Action.GetRead() {
			unread = -1
		}
		h.publish(intsync.ChatsUpdate{Updates: []intsync.ChatPatch{{
			ID:          evt.JID.String(),
			UnreadCount: &unread,
		}}})
	case *events.DeleteChat:
		h.publish(intsync.ChatsDelete{IDs: []string{evt.JID.String()}})
	case *events.LabelEdit:
		h.publish(intsync.LabelsEdit{Label: store.Label{
			ID:      evt.LabelID,
			Name:    evt.Action.GetName(),
			Color:   evt.Action.GetColor(),
			Deleted: evt.Action.GetDeleted(),
		}})
	case *events.LabelAssociationChat:
		h.publish(intsync.LabelAssociationUpdate{
			Op: associationOp(evt.Action.GetLabeled()),
			Association: store.LabelAssociation{
				Type:    store.AssociationChat,
				ChatID:  evt.JID.String(),
				LabelID: evt.LabelID,
			},
		})
	case *events.LabelAssociationMessage:
		h.publish(intsync.LabelAssociationUpdate{
			Op: associationOp(evt.Action.GetLabeled()),
			Association: store.LabelAssociation{
				Type:      store.AssociationMessage,
				ChatID:    evt.JID.String(),
				MessageID: evt.MessageID,
				LabelID:   evt.LabelID,
			},
		})
	}
}

func associationOp(labeled bool) string {
	if labeled {
		return intsync.OpAdd
	}
	return intsync.OpRemove
}

func (h *EventHandler) handleMessage(evt *events.Message) {
	if h.machine.Current() == status.Syncing {
		_ = h.machine.Transition(status.Ready)
	}

	chat := evt.Info.Chat
	if h.adapter != nil {
		chat = h.adapter.ResolveLID(context.Background(), chat)
	}

	h.publish(intsync.MessagesUpsert{
		Type:     intsync.TypeNotify,
		Messages: []store.Message{ParseLiveMessage(evt, chat.String())},
	})
}

func (h *EventHandler) handlePresence(evt *events.Presence) {
	p := store.Presence{LastKnownPresence: "available"}
	if evt.Unavailable {
		p.LastKnownPresence = "unavailable"
	}
	if !evt.LastSeen.IsZero() {
		p.LastSeen = evt.LastSeen.Unix()
	}
	jid := evt.From.String()
	h.publish(intsync.PresenceUpdate{
		ChatID:    jid,
		Presences: map[string]store.Presence{jid: p},
	})
}

func (h *EventHandler) handleChatPresence(evt *events.ChatPresence) {
	state := string(evt.State)
	if evt.State == types.ChatPresenceComposing && evt.Media == types.ChatPresenceMediaAudio {
		state = "recording"
	}
	h.publish(intsync.PresenceUpdate{
		ChatID: evt.Chat.String(),
		Presences: map[string]store.Presence{
			evt.Sender.String(): {LastKnownPresence: state},
		},
	})
}

func (h *EventHandler) handlePicture(evt *events.Picture) {
	sentinel := intsync.ImgChanged
	if evt.Remove {
		sentinel = intsync.ImgRemoved
	}
	h.publish(intsync.ContactsUpdate{Updates: []intsync.ContactPatch{{
		ID:     evt.JID.String(),
		ImgURL: &sentinel,
	}}})
}

func (h *EventHandler) handleContact(evt *events.Contact) {
	name := evt.Action.GetFullName()
	if name == "" {
		name = evt.Action.GetFirstName()
	}
	h.publish(intsync.ContactsUpsert{Contacts: []store.Contact{{
		JID:  evt.JID.String(),
		Name: name,
	}}})
}

func (h *EventHandler) handleHistorySync(evt *events.HistorySync) {
	data := evt.Data
	if data == nil {
		return
	}

	set := intsync.HistorySet{
		IsLatest: data.GetSyncType() == waHistorySync.HistorySync_INITIAL_BOOTSTRAP,
	}

	for _, conv := range data.GetConversations() {
		chatJID := NormalizeJID(conv.GetID())
		set.Chats = append(set.Chats, store.Chat{
			ID:                    chatJID,
			Name:                  conv.GetName(),
			Pinned:                conv.GetPinned() > 0,
			Archived:              conv.GetArchived(),
			ConversationTimestamp: int64(conv.GetConversationTimestamp()),
			UnreadCount:           int(conv.GetUnreadCount()),
		})

		for _, hm := range conv.GetMessages() {
			wmsg := hm.GetMessage()
			if wmsg == nil || wmsg.GetMessage() == nil {
				continue
			}
			set.Messages = append(set.Messages, store.Message{
				Key: store.MessageKey{
					ID:        wmsg.GetKey().GetID(),
					RemoteJID: chatJID,
					FromMe:    wmsg.GetKey().GetFromMe(),
				},
				SenderJID:   NormalizeJID(wmsg.GetKey().GetParticipant()),
				PushName:    wmsg.GetPushName(),
				Body:        extractTextBody(wmsg.GetMessage()),
				MessageType: detectMessageType(wmsg.GetMessage()),
				Status:      "received",
				Timestamp:   int64(wmsg.GetMessageTimestamp()),
			})
		}
	}

	for _, pn := range data.GetPushnames() {
		set.Contacts = append(set.Contacts, store.Contact{
			JID:      pn.GetID(),
			PushName: pn.GetPushname(),
		})
	}

	if len(set.Chats) > 0 || len(set.Contacts) > 0 || len(set.Messages) > 0 {
		h.publish(set)
		h.logger.Info("history sync batch published",
			zap.Int("chats", len(set.Chats)),
			zap.Int("contacts", len(set.Contacts)),
			zap.Int("messages", len(set.Messages)),
			zap.Bool("is_latest", set.IsLatest))
	}
}
