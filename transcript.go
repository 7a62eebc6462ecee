package assistant

import (
	"sync"
	"time"

	"github.com/productstack/assistant/src/models"
)

// TurnKind tags the variant of a transcript turn.
type TurnKind string

const (
	TurnUser       TurnKind = "user"
	TurnAssistant  TurnKind = "assistant"
	TurnToolCall   TurnKind = "tool_call"
	TurnToolResult TurnKind = "tool_result"
)

// ToolResult is the flat textual outcome of a tool invocation. Failure is a
// data value here, never a control-flow error: failed results are appended to
// the transcript like any other so the provider can see and react to them.
type ToolResult struct {
	OK   bool
	Text string
}

// Turn is one entry of the conversation transcript.
type Turn struct {
	Kind      TurnKind
	Text      string         // user and assistant turns
	CallID    string         // tool_call and tool_result turns
	ToolName  string         // tool_call and tool_result turns
	Arguments map[string]any // tool_call turns
	Result    *ToolResult    // tool_result turns
	At        time.Time
}

// Transcript is the append-only, ordered record of a session. Turns are never
// mutated after creation; ordering is the single source of truth for what the
// completion provider is shown on every round.
type Transcript struct {
	mu    sync.RWMutex
	turns []Turn
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append records a turn, stamping it if the caller did not.
func (t *Transcript) Append(turn Turn) {
	if turn.At.IsZero() {
		turn.At = time.Now().UTC()
	}
	t.mu.Lock()
	t.turns = append(t.turns, turn)
	t.mu.Unlock()
}

// Snapshot returns a copy of the turns; the transcript keeps ownership of the
// originals.
func (t *Transcript) Snapshot() []Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Turn(nil), t.turns...)
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.turns)
}

// renderMessages converts the most recent turns into the role-tagged message
// list fed to the provider. window caps how many turns are rendered (0 means
// all); the cut is moved forward so it never lands inside a tool call/result
// pair, which would strip the causal chain the model needs.
func renderMessages(turns []Turn, window int) []models.Message {
	start := 0
	if window > 0 && len(turns) > window {
		start = len(turns) - window
		for start < len(turns) {
			kind := turns[start].Kind
			if kind != TurnToolCall && kind != TurnToolResult {
				break
			}
			start++
		}
	}

	messages := make([]models.Message, 0, len(turns)-start)
	for _, turn := range turns[start:] {
		switch turn.Kind {
		case TurnUser:
			messages = append(messages, models.Message{Role: models.RoleUser, Content: turn.Text})
		case TurnAssistant:
			messages = append(messages, models.Message{Role: models.RoleAssistant, Content: turn.Text})
		case TurnToolCall:
			messages = append(messages, models.Message{
				Role: models.RoleAssistant,
				ToolCalls: []models.ToolCall{{
					ID:        turn.CallID,
					Name:      turn.ToolName,
					Arguments: turn.Arguments,
				}},
			})
		case TurnToolResult:
			msg := models.Message{
				Role:     models.RoleTool,
				CallID:   turn.CallID,
				ToolName: turn.ToolName,
			}
			if turn.Result != nil {
				msg.Content = turn.Result.Text
				msg.ToolFailed = !turn.Result.OK
			}
			messages = append(messages, msg)
		}
	}
	return messages
}
