package store

import (
	"errors"
	"fmt"
	"testing"
)

func TestMessageListPositionStability(t *testing.T) {
	l := NewMessageList()
	l.Upsert(Message{Key: MessageKey{ID: "m1"}, Body: "one"}, Append)
	l.Upsert(Message{Key: MessageKey{ID: "m2"}, Body: "two"}, Append)

	// Correct m1's content: order must not change.
	l.Upsert(Message{Key: MessageKey{ID: "m1"}, Body: "one, edited"}, Append)

	all := l.All()
	if len(all) != 2 {
		t.Fatalf("Len = %d, want 2", len(all))
	}
	if all[0].Key.ID != "m1" || all[1].Key.ID != "m2" {
		t.Errorf("order = [%s %s], want [m1 m2]", all[0].Key.ID, all[1].Key.ID)
	}
	if all[0].Body != "one, edited" {
		t.Errorf("m1 body = %q, want the edited content", all[0].Body)
	}
}

func TestMessageListPrepend(t *testing.T) {
	l := NewMessageList()
	l.Upsert(Message{Key: MessageKey{ID: "live"}}, Append)
	l.Upsert(Message{Key: MessageKey{ID: "history"}}, Prepend)

	all := l.All()
	if all[0].Key.ID != "history" || all[1].Key.ID != "live" {
		t.Errorf("order = [%s %s], want [history live]", all[0].Key.ID, all[1].Key.ID)
	}
}

func TestLabelRepoCapacity(t *testing.T) {
	r := NewLabelRepo()
	for i := 0; i < MaxActiveLabels; i++ {
		if err := r.Upsert(Label{ID: fmt.Sprintf("l%d", i)}); err != nil {
			t.Fatalf("label %d rejected: %v", i, err)
		}
	}

	err := r.Upsert(Label{ID: "l20"})
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("21st insert: err = %v, want ErrCapacityExceeded", err)
	}
	if r.Len() != MaxActiveLabels {
		t.Errorf("Len = %d, want %d", r.Len(), MaxActiveLabels)
	}

	// Replacing an existing id at capacity is always allowed.
	if err := r.Upsert(Label{ID: "l0", Name: "renamed"}); err != nil {
		t.Errorf("replace at capacity: %v", err)
	}
	got, _ := r.Get("l0")
	if got.Name != "renamed" {
		t.Errorf("l0 name = %q, want renamed", got.Name)
	}
}

func TestMergeContactKeepsKnownFields(t *testing.T) {
	m := NewMirror()
	m.MergeContact(Contact{JID: "a@s", Name: "Alice", ImgURL: "http://img"})
	m.MergeContact(Contact{JID: "a@s", PushName: "ali"})

	c, ok := m.Contact("a@s")
	if !ok {
		t.Fatal("contact missing")
	}
	if c.Name != "Alice" || c.PushName != "ali" || c.ImgURL != "http://img" {
		t.Errorf("merge dropped fields: %+v", c)
	}
}

func TestContactInsertionOrder(t *testing.T) {
	m := NewMirror()
	m.MergeContact(Contact{JID: "b@s"})
	m.MergeContact(Contact{JID: "a@s"})
	m.MergeContact(Contact{JID: "b@s", Name: "B"})

	ids := m.ContactIDs()
	if len(ids) != 2 || ids[0] != "b@s" || ids[1] != "a@s" {
		t.Errorf("ContactIDs = %v, want [b@s a@s]", ids)
	}

	m.DeleteContact("b@s")
	ids = m.ContactIDs()
	if len(ids) != 1 || ids[0] != "a@s" {
		t.Errorf("ContactIDs after delete = %v, want [a@s]", ids)
	}
}

func TestMergePresenceAdditive(t *testing.T) {
	m := NewMirror()
	m.MergePresence("group@g", map[string]Presence{
		"a@s": {LastKnownPresence: "available"},
	})
	m.MergePresence("group@g", map[string]Presence{
		"b@s": {LastKnownPresence: "composing"},
	})

	got := m.Presences("group@g")
	if len(got) != 2 {
		t.Fatalf("participants = %d, want 2 (stale entries never evicted)", len(got))
	}
	if got["a@s"].LastKnownPresence != "available" {
		t.Errorf("a@s presence = %+v", got["a@s"])
	}
}

func TestConnStateShallowMerge(t *testing.T) {
	m := NewMirror()
	m.MergeConnState(map[string]any{"connection": "connecting", "qr": "abc"})
	m.MergeConnState(map[string]any{"connection": "open"})

	if v, _ := m.ConnField("connection"); v != "open" {
		t.Errorf("connection = %v, want open", v)
	}
	if v, _ := m.ConnField("qr"); v != "abc" {
		t.Errorf("qr = %v, want abc (untouched keys survive)", v)
	}
}

func TestResetForBootstrap(t *testing.T) {
	m := NewMirror()
	m.UpsertChats(Chat{ID: "a@s"}, Chat{ID: "b@s"})
	m.UpsertMessage("a@s", Message{Key: MessageKey{ID: "m1"}}, Append)
	m.MergeContact(Contact{JID: "c@s", Name: "keep"})
	if err := m.UpsertLabel(Label{ID: "l1"}); err != nil {
		t.Fatal(err)
	}

	m.ResetForBootstrap()

	if m.ChatCount() != 0 {
		t.Errorf("chats = %d after reset, want 0", m.ChatCount())
	}
	if got := m.MessagesFor("a@s"); len(got) != 0 {
		t.Errorf("messages for a@s = %d after reset, want 0", len(got))
	}
	// Contacts and labels are merged by bootstrap, not cleared.
	if _, ok := m.Contact("c@s"); !ok {
		t.Error("contact dropped by reset")
	}
	if m.LabelCount() != 1 {
		t.Errorf("labels = %d after reset, want 1", m.LabelCount())
	}
}

func TestLabelAssociationCompositeKey(t *testing.T) {
	m := NewMirror()
	chatAssoc := LabelAssociation{Type: AssociationChat, ChatID: "a@s", LabelID: "l1"}
	msgAssoc := LabelAssociation{Type: AssociationMessage, ChatID: "a@s", MessageID: "m1", LabelID: "l1"}

	m.UpsertLabelAssociation(chatAssoc)
	m.UpsertLabelAssociation(msgAssoc)
	m.UpsertLabelAssociation(chatAssoc) // duplicate row, same composite key

	if got := len(m.LabelAssociations()); got != 2 {
		t.Fatalf("associations = %d, want 2", got)
	}

	if !m.DeleteLabelAssociation(msgAssoc) {
		t.Error("delete by message-scoped key failed")
	}
	if got := len(m.LabelAssociations()); got != 1 {
		t.Errorf("associations after delete = %d, want 1", got)
	}
}
