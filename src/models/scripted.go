package models

import (
	"context"
	"sync"
)

// ScriptedModel replays a fixed queue of completions and records every
// request it receives. It exists for tests and offline runs.
type ScriptedModel struct {
	mu       sync.Mutex
	queue    []Completion
	Requests []ChatRequest
	Err      error
}

func NewScriptedModel(completions ...Completion) *ScriptedModel {
	return &ScriptedModel{queue: completions}
}

// Enqueue appends further completions to the script.
func (m *ScriptedModel) Enqueue(completions ...Completion) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, completions...)
}

func (m *ScriptedModel) Chat(_ context.Context, req ChatRequest) (*Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.queue) == 0 {
		return &Completion{Text: "ok"}, nil
	}
	next := m.queue[0]
	m.queue = m.queue[1:]
	return &next, nil
}

var _ ChatModel = (*ScriptedModel)(nil)
