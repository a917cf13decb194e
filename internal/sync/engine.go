package sync

import (
	"context"
	"time"

	"github.com/matheus3301/wamirror/internal/bus"
	"github.com/matheus3301/wamirror/internal/store"
	"go.uber.org/zap"
)

// DefaultFetchTimeout bounds the profile picture fetch so one slow network
// call cannot stall the event pipeline.
const DefaultFetchTimeout = 10 * time.Second

// ProfilePictureSource is the messaging-session collaborator used to
// resolve the "changed" picture sentinel. Empty URL with nil error means
// no picture is available.
type ProfilePictureSource interface {
	ProfilePictureURL(ctx context.Context, jid string) (string, error)
}

// Engine reconciles the synchronization event stream into the mirror. It
// subscribes to "wa." events on the bus and applies them strictly in
// arrival order, one at a time, on a single consumer goroutine — the
// mirror's collections assume exactly one writer. No event ever halts the
// engine: malformed or stale payloads are logged and dropped.
type Engine struct {
	mirror       *store.Mirror
	bus          *bus.Bus
	pics         ProfilePictureSource
	fetchTimeout time.Duration
	logger       *zap.Logger
	cancel       context.CancelFunc
}

// NewEngine creates a reconciliation engine. pics may be nil, in which
// case picture fetches are skipped and the field left unset. A
// non-positive fetchTimeout falls back to DefaultFetchTimeout.
func NewEngine(m *store.Mirror, b *bus.Bus, pics ProfilePictureSource, fetchTimeout time.Duration, logger *zap.Logger) *Engine {
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}
	return &Engine{
		mirror:       m,
		bus:          b,
		pics:         pics,
		fetchTimeout: fetchTimeout,
		logger:       logger,
	}
}

// Start binds the engine to inbound events on the bus.
func (e *Engine) Start(ctx context.Context) {
	ctx, e.cancel = context.WithCancel(ctx)
	ch, unsub := e.bus.Subscribe(Namespace, 256)

	go func() {
		defer unsub()
		for {
			select {
			case evt := <-ch:
				payload, ok := evt.Payload.(Event)
				if !ok {
					e.logger.Warn("non-event payload on engine namespace", zap.String("kind", evt.Kind))
					continue
				}
				e.Apply(ctx, payload)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the engine.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
}

// Apply applies one event to completion. Exported for callers driving the
// engine directly instead of through the bus; such callers must preserve
// the single-writer discipline themselves.
func (e *Engine) Apply(ctx context.Context, evt Event) {
	switch ev := evt.(type) {
	case ConnectionUpdate:
		e.applyConnectionUpdate(ev)
	case HistorySet:
		e.applyHistorySet(ev)
	case ContactsUpsert:
		e.applyContactsUpsert(ev)
	case ContactsUpdate:
		e.applyContactsUpdate(ctx, ev)
	case ChatsUpsert:
		e.mirror.UpsertChats(ev.Chats...)
	case ChatsUpdate:
		e.applyChatsUpdate(ev)
	case LabelsEdit:
		e.applyLabelsEdit(ev)
	case LabelAssociationUpdate:
		e.applyLabelAssociation(ev)
	case PresenceUpdate:
		e.mirror.MergePresence(ev.ChatID, ev.Presences)
	case ChatsDelete:
		for _, id := range ev.IDs {
			e.mirror.DeleteChat(id)
		}
	case MessagesUpsert:
		e.applyMessagesUpsert(ev)
	}
}

func (e *Engine) applyConnectionUpdate(ev ConnectionUpdate) {
	if len(ev.Fields) == 0 {
		e.logger.Warn("empty connection update dropped")
		return
	}
	e.mirror.MergeConnState(ev.Fields)
}

func (e *Engine) applyHistorySet(ev HistorySet) {
	if ev.IsLatest {
		e.mirror.ResetForBootstrap()
		e.logger.Info("bootstrap snapshot: mirror reset")
	}

	// Known chats win over the snapshot: live events that arrived before
	// the history batch are fresher than it.
	inserted := e.mirror.InsertChatsIfAbsent(ev.Chats...)

	known := e.mirror.ContactIDs()
	seen := make(map[string]bool, len(ev.Contacts))
	for _, c := range ev.Contacts {
		e.mirror.MergeContact(c)
		seen[c.JID] = true
	}
	if ev.IsLatest {
		// The bootstrap batch is authoritative for contact existence:
		// previously known ids absent from it are gone.
		for _, jid := range known {
			if !seen[jid] {
				e.mirror.DeleteContact(jid)
			}
		}
	}

	// History predates already-seen live messages.
	for _, msg := range ev.Messages {
		e.mirror.UpsertMessage(msg.Key.RemoteJID, msg, store.Prepend)
	}

	e.logger.Info("history batch merged",
		zap.Int("chats_inserted", inserted),
		zap.Int("contacts", len(ev.Contacts)),
		zap.Int("messages", len(ev.Messages)),
		zap.Bool("is_latest", ev.IsLatest))
}

func (e *Engine) applyContactsUpsert(ev ContactsUpsert) {
	for _, c := range ev.Contacts {
		e.mirror.MergeContact(c)
	}
}

func (e *Engine) applyContactsUpdate(ctx context.Context, ev ContactsUpdate) {
	for _, patch := range ev.Updates {
		contact, ok := e.mirror.Contact(patch.ID)
		if !ok {
			contact, ok = e.resolveByFingerprint(patch.ID)
		}
		if !ok {
			e.logger.Warn("contact update for unknown contact dropped", zap.String("id", patch.ID))
			continue
		}

		if patch.ImgURL != nil {
			switch *patch.ImgURL {
			case ImgChanged:
				contact.ImgURL = e.fetchProfilePicture(ctx, contact.JID)
			case ImgRemoved:
				contact.ImgURL = ""
			}
		}
		if patch.Name != nil {
			contact.Name = *patch.Name
		}
		if patch.PushName != nil {
			contact.PushName = *patch.PushName
		}
		e.mirror.PutContact(contact)
	}
}

// resolveByFingerprint scans known contacts in insertion order and returns
// the first whose fingerprint matches id. Best effort: three-character
// digests can collide, in which case the earliest-inserted contact wins.
func (e *Engine) resolveByFingerprint(id string) (store.Contact, bool) {
	for _, jid := range e.mirror.ContactIDs() {
		if Fingerprint(jid) == id {
			return e.mirror.Contact(jid)
		}
	}
	return store.Contact{}, false
}

func (e *Engine) fetchProfilePicture(ctx context.Context, jid string) string {
	if e.pics == nil {
		e.logger.Debug("no session for profile picture fetch", zap.String("jid", jid))
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
	defer cancel()
	url, err := e.pics.ProfilePictureURL(ctx, jid)
	if err != nil {
		e.logger.Warn("profile picture fetch failed", zap.String("jid", jid), zap.Error(err))
		return ""
	}
	return url
}

func (e *Engine) applyChatsUpdate(ev ChatsUpdate) {
	for _, patch := range ev.Updates {
		err := e.mirror.UpdateChat(patch.ID, func(c *store.Chat) {
			if patch.Name != nil {
				c.Name = *patch.Name
			}
			if patch.Pinned != nil {
				c.Pinned = *patch.Pinned
			}
			if patch.Archived != nil {
				c.Archived = *patch.Archived
			}
			if patch.ConversationTimestamp != nil {
				c.ConversationTimestamp = *patch.ConversationTimestamp
			}
			if patch.UnreadCount != nil {
				// Positive counts accumulate, anything else overwrites.
				// Inherited wire behavior; kept verbatim.
				if *patch.UnreadCount > 0 {
					c.UnreadCount += *patch.UnreadCount
				} else {
					c.UnreadCount = *patch.UnreadCount
				}
			}
		})
		if err != nil {
			// Updates never create chats implicitly.
			e.logger.Warn("chat update for unknown chat dropped", zap.String("id", patch.ID))
		}
	}
}

func (e *Engine) applyLabelsEdit(ev LabelsEdit) {
	if ev.Label.Deleted {
		e.mirror.DeleteLabel(ev.Label.ID)
		return
	}
	if err := e.mirror.UpsertLabel(ev.Label); err != nil {
		e.logger.Error("label rejected", zap.String("id", ev.Label.ID), zap.Error(err))
	}
}

func (e *Engine) applyLabelAssociation(ev LabelAssociationUpdate) {
	switch ev.Op {
	case OpAdd:
		e.mirror.UpsertLabelAssociation(ev.Association)
	case OpRemove:
		e.mirror.DeleteLabelAssociation(ev.Association)
	default:
		e.logger.Error("unknown label association op", zap.String("op", ev.Op))
	}
}

func (e *Engine) applyMessagesUpsert(ev MessagesUpsert) {
	switch ev.Type {
	case TypeAppend, TypeNotify:
		for _, msg := range ev.Messages {
			chatID := msg.Key.RemoteJID
			e.mirror.UpsertMessage(chatID, msg, store.Append)

			if ev.Type == TypeNotify && !e.mirror.HasChat(chatID) {
				// Direct insert on the chat collection, not a re-entrant
				// dispatch through the event interface.
				e.mirror.UpsertChats(store.Chat{
					ID:                    chatID,
					Name:                  msg.PushName,
					ConversationTimestamp: msg.Timestamp,
					UnreadCount:           1,
				})
				e.logger.Debug("placeholder chat created", zap.String("id", chatID))
			}
		}
	default:
		e.logger.Error("unknown messages upsert type", zap.String("type", ev.Type))
	}
}
