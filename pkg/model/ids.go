package model

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// IDGenerator creates cell IDs. The model retries when a generated ID is
// already taken.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator creates random UUID cell IDs.
type UUIDGenerator struct{}

// NewID returns a new random UUID string.
func (UUIDGenerator) NewID() string { return uuid.NewString() }

// createID returns the next ID from the configured generator, or from the
// sequential counter wrapped in the model's prefix and postfix.
func (m *Model) createID() string {
	if m.ids != nil {
		return m.ids.NewID()
	}
	id := m.prefix + strconv.Itoa(m.nextID) + m.postfix
	m.nextID++
	return id
}

// observeID advances the sequential counter past id when id has the
// sequential form, so numeric IDs are never handed out twice.
func (m *Model) observeID(id string) {
	s, ok := strings.CutPrefix(id, m.prefix)
	if !ok {
		return
	}
	s, ok = strings.CutSuffix(s, m.postfix)
	if !ok {
		return
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return
	}
	if n >= m.nextID {
		m.nextID = n + 1
	}
}
