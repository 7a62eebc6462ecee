package assistant

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Session owns one conversation transcript. A session's runs are strictly
// serialized: the transcript is append-only and not safe for concurrent
// writers, so the manager holds the session lock for the whole run.
type Session struct {
	id         string
	transcript *Transcript
	createdAt  time.Time

	mu sync.Mutex
}

func newSession(id string) *Session {
	return &Session{
		id:         id,
		transcript: NewTranscript(),
		createdAt:  time.Now().UTC(),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Transcript() *Transcript { return s.transcript }

// Archiver persists conversation turns outside the process. Archiving is
// best-effort; a failing archiver never fails a conversation.
type Archiver interface {
	SaveTurns(ctx context.Context, sessionID string, turns []Turn) error
}

// Manager owns the live sessions and the per-session serialization. Distinct
// sessions converse fully in parallel; the catalog and the document index are
// the only shared state, and both are read-only at conversation time.
type Manager struct {
	agent    *Agent
	archiver Archiver
	logger   zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(agent *Agent, archiver Archiver, logger zerolog.Logger) *Manager {
	return &Manager{
		agent:    agent,
		archiver: archiver,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Converse runs one user message through the agent for the given session,
// creating the session on first use. An empty id mints a fresh one; the
// caller keeps it to continue the conversation. The returned id accompanies
// the reply.
//
// Cancellation caveat: if ctx is cancelled mid-run, tool calls that already
// mutated external state are not rolled back; there is no transaction across
// tool calls.
func (m *Manager) Converse(ctx context.Context, sessionID, message string) (reply, id string, err error) {
	session := m.getOrCreate(sessionID)

	session.mu.Lock()
	defer session.mu.Unlock()

	before := session.transcript.Len()
	reply, err = m.agent.Run(ctx, session, message)
	if err != nil {
		return "", session.ID(), err
	}

	m.archive(session, before)
	return reply, session.ID(), nil
}

// Session returns the live session for id, if any.
func (m *Manager) Session(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	return session, ok
}

// ActiveIDs lists the current session ids in sorted order.
func (m *Manager) ActiveIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *Manager) getOrCreate(id string) *Session {
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if session, ok := m.sessions[id]; ok {
		return session
	}
	session := newSession(id)
	m.sessions[id] = session
	return session
}

// archive persists the turns appended since the run started.
func (m *Manager) archive(session *Session, from int) {
	if m.archiver == nil {
		return
	}
	turns := session.transcript.Snapshot()
	if from >= len(turns) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.archiver.SaveTurns(ctx, session.ID(), turns[from:]); err != nil {
		m.logger.Warn().Str("session", session.ID()).Err(err).Msg("archiving turns failed")
	}
}
