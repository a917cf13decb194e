package snapshot

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/matheus3301/wamirror/internal/store"
	"go.uber.org/zap"
)

// Result summarizes an export.
type Result struct {
	ID       string
	Path     string
	Chats    int
	Messages int
	Contacts int
	Labels   int
}

// Export dumps the mirror's durable entities into a SQLite file at path.
// Presence and connection state are ephemeral and not exported. The
// whole dump runs in one transaction so a failed export never leaves a
// half-written snapshot behind.
func Export(m *store.Mirror, path string, logger *zap.Logger) (*Result, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if _, err := db.Migrate(); err != nil {
		return nil, err
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	res := &Result{
		ID:   uuid.NewString(),
		Path: path,
	}

	for pos, c := range m.Chats() {
		_, err := tx.Exec(
			`INSERT OR REPLACE INTO chats (jid, name, pinned, archived, conversation_ts, unread_count, sort_pos)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.Pinned, c.Archived, c.ConversationTimestamp, c.UnreadCount, pos,
		)
		if err != nil {
			return nil, fmt.Errorf("insert chat %s: %w", c.ID, err)
		}
		res.Chats++

		for mpos, msg := range m.MessagesFor(c.ID) {
			_, err := tx.Exec(
				`INSERT OR REPLACE INTO messages (chat_jid, msg_id, from_me, sender_jid, push_name, body, message_type, status, ts, pos)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				c.ID, msg.Key.ID, msg.Key.FromMe, msg.SenderJID, msg.PushName,
				msg.Body, msg.MessageType, msg.Status, msg.Timestamp, mpos,
			)
			if err != nil {
				return nil, fmt.Errorf("insert message %s/%s: %w", c.ID, msg.Key.ID, err)
			}
			res.Messages++
		}
	}

	for pos, c := range m.Contacts() {
		_, err := tx.Exec(
			`INSERT OR REPLACE INTO contacts (jid, name, push_name, img_url, pos) VALUES (?, ?, ?, ?, ?)`,
			c.JID, c.Name, c.PushName, c.ImgURL, pos,
		)
		if err != nil {
			return nil, fmt.Errorf("insert contact %s: %w", c.JID, err)
		}
		res.Contacts++
	}

	for _, l := range m.Labels() {
		_, err := tx.Exec(
			`INSERT OR REPLACE INTO labels (id, name, color, deleted) VALUES (?, ?, ?, ?)`,
			l.ID, l.Name, l.Color, l.Deleted,
		)
		if err != nil {
			return nil, fmt.Errorf("insert label %s: %w", l.ID, err)
		}
		res.Labels++
	}

	for _, a := range m.LabelAssociations() {
		_, err := tx.Exec(
			`INSERT OR REPLACE INTO label_associations (assoc_type, chat_jid, msg_id, label_id) VALUES (?, ?, ?, ?)`,
			string(a.Type), a.ChatID, a.MessageID, a.LabelID,
		)
		if err != nil {
			return nil, fmt.Errorf("insert association: %w", err)
		}
	}

	for _, g := range m.Groups() {
		_, err := tx.Exec(
			`INSERT OR REPLACE INTO groups (jid, subject, owner_jid, participants) VALUES (?, ?, ?, ?)`,
			g.JID, g.Subject, g.OwnerJID, g.Participants,
		)
		if err != nil {
			return nil, fmt.Errorf("insert group %s: %w", g.JID, err)
		}
	}

	_, err = tx.Exec(
		`INSERT INTO snapshots (id, created_at, chats, messages, contacts, labels) VALUES (?, ?, ?, ?, ?, ?)`,
		res.ID, time.Now().Unix(), res.Chats, res.Messages, res.Contacts, res.Labels,
	)
	if err != nil {
		return nil, fmt.Errorf("insert snapshot row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit snapshot: %w", err)
	}

	logger.Info("mirror snapshot exported",
		zap.String("id", res.ID),
		zap.String("path", path),
		zap.Int("chats", res.Chats),
		zap.Int("messages", res.Messages),
		zap.Int("contacts", res.Contacts),
		zap.Int("labels", res.Labels))

	return res, nil
}
