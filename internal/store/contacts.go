package store

// mergeContact folds src into dst field by field. Identity is never
// touched; a known field survives unless src carries a replacement. ImgURL
// is handled here like any other field — the sentinel values that drive
// picture fetching are resolved by the engine before the merge.
func mergeContact(dst *Contact, src Contact) {
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.PushName != "" {
		dst.PushName = src.PushName
	}
	if src.ImgURL != "" {
		dst.ImgURL = src.ImgURL
	}
}

// MergeContact field-wise merges c into the existing record, creating it
// on first reference.
func (m *Mirror) MergeContact(c Contact) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.contacts[c.JID]
	if !ok {
		existing = Contact{JID: c.JID}
		m.contactOrder = append(m.contactOrder, c.JID)
	}
	mergeContact(&existing, c)
	m.contacts[c.JID] = existing
}

// PutContact replaces the stored record wholesale, keeping its position in
// the insertion order. Used by the engine when a merge must overwrite or
// clear fields explicitly.
func (m *Mirror) PutContact(c Contact) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.contacts[c.JID]; !ok {
		m.contactOrder = append(m.contactOrder, c.JID)
	}
	m.contacts[c.JID] = c
}

// DeleteContact removes a contact, reporting whether it was present.
func (m *Mirror) DeleteContact(jid string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.contacts[jid]; !ok {
		return false
	}
	delete(m.contacts, jid)
	for i, id := range m.contactOrder {
		if id == jid {
			m.contactOrder = append(m.contactOrder[:i], m.contactOrder[i+1:]...)
			break
		}
	}
	return true
}

// Contact returns a contact by JID.
func (m *Mirror) Contact(jid string) (Contact, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.contacts[jid]
	return c, ok
}

// ContactIDs returns the known contact JIDs in insertion order. Identity
// resolution scans depend on this order being stable across calls.
func (m *Mirror) ContactIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.contactOrder))
	copy(out, m.contactOrder)
	return out
}

// Contacts returns a copy of all contacts in insertion order.
func (m *Mirror) Contacts() []Contact {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Contact, 0, len(m.contactOrder))
	for _, jid := range m.contactOrder {
		out = append(out, m.contacts[jid])
	}
	return out
}
