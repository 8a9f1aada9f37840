package bot

import "sync"

// State tags the current position of a chat within a flow. A chat with no
// session is idle and accepts only flow-start triggers and free-text Q&A.
type State string

const (
	// Registration flow.
	StateRegFirstName State = "reg_first_name"
	StateRegLastName  State = "reg_last_name"
	StateRegPhone     State = "reg_phone"
	StateRegCity      State = "reg_city"

	// Invoice creation flow.
	StateCreateClientID State = "create_client_id"
	StateCreateManager  State = "create_manager_name"

	// Client lookup flow.
	StateSearchPhone State = "search_phone"

	// Ad-hoc PDF export flow.
	StatePDFLink State = "pdf_link"
)

// allStates enumerates every non-idle state; the engine's transition table
// is checked against it at construction.
var allStates = []State{
	StateRegFirstName, StateRegLastName, StateRegPhone, StateRegCity,
	StateCreateClientID, StateCreateManager,
	StateSearchPhone, StatePDFLink,
}

// Session holds the in-flight conversation state for one chat. Sessions are
// volatile: a process restart drops them all.
type Session struct {
	ChatID int64
	State  State

	// Fields accumulates collected values across states, keyed by field name.
	Fields map[string]string

	// LastPromptID is the platform message ID of the most recent bot
	// prompt, removed best-effort when the next prompt is issued.
	LastPromptID int

	// PendingArtifact is the identifier of a provisioned sheet that has not
	// yet been committed to the ledger. Non-empty only between the copy
	// step and the ledger write; cancellation deletes it.
	PendingArtifact string
}

// SessionStore tracks at most one session per chat identifier.
type SessionStore interface {
	Get(chatID int64) (*Session, bool)
	Put(chatID int64, s *Session)
	Remove(chatID int64)
}

// MemorySessionStore is the in-memory SessionStore. The interface boundary
// allows swapping in a durable store without touching the state machine.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[int64]*Session)}
}

// Get returns the session for a chat, if any.
func (m *MemorySessionStore) Get(chatID int64) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[chatID]
	return s, ok
}

// Put stores the session for a chat, replacing any existing one.
func (m *MemorySessionStore) Put(chatID int64, s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[chatID] = s
}

// Remove deletes the session for a chat.
func (m *MemorySessionStore) Remove(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
}
