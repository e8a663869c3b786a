package domtree

import (
	dkerrors "domkey/internal/errors"
)

// Manager maps element ids to elements for the lifetime of a pass.
type Manager struct {
	elements map[string]*Element
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{elements: make(map[string]*Element)}
}

// Add tracks e, replacing any element with the same id.
func (m *Manager) Add(e *Element) {
	m.elements[e.ID] = e
}

// AddTree tracks every element of t.
func (m *Manager) AddTree(t *Tree) {
	t.Walk(func(v Visit) bool {
		m.Add(v.Element)
		return true
	})
}

// Lookup returns the element for id or an ELEMENT_NOT_FOUND error.
func (m *Manager) Lookup(id string) (*Element, error) {
	e, ok := m.elements[id]
	if !ok {
		return nil, dkerrors.Newf(dkerrors.ElementNotFound, "element with id %q not found", id)
	}
	return e, nil
}

// Len returns the number of tracked elements.
func (m *Manager) Len() int {
	return len(m.elements)
}

// Destroy drops every tracked element.
func (m *Manager) Destroy() {
	m.elements = make(map[string]*Element)
}
