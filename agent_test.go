package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/productstack/assistant/src/models"
)

func newTestAgent(t *testing.T, model models.ChatModel, tools ...Tool) (*Agent, *Session) {
	t.Helper()
	catalog, err := NewCatalog(tools...)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	agent, err := New(Options{Model: model, Catalog: catalog, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return agent, newSession("test-session")
}

func fixedTimeTool() Tool {
	return NewFuncTool(ToolSpec{
		Name:        "get_current_time",
		Description: "Returns the current time.",
	}, func(ctx context.Context, req ToolRequest) (ToolResponse, error) {
		return ToolResponse{Content: "The current time is 10:00 AM."}, nil
	})
}

func TestAgentAnswersWithoutTools(t *testing.T) {
	model := models.NewScriptedModel(models.Completion{Text: "Hello there!"})
	agent, session := newTestAgent(t, model)

	answer, err := agent.Run(context.Background(), session, "hi")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if answer != "Hello there!" {
		t.Fatalf("unexpected answer: %q", answer)
	}

	turns := session.Transcript().Snapshot()
	if len(turns) != 2 || turns[0].Kind != TurnUser || turns[1].Kind != TurnAssistant {
		t.Fatalf("unexpected transcript: %+v", turns)
	}
}

func TestAgentExecutesToolAndFeedsResultBack(t *testing.T) {
	model := models.NewScriptedModel(
		models.Completion{ToolCalls: []models.ToolCall{{ID: "c1", Name: "get_current_time"}}},
		models.Completion{Text: "It is 10:00 AM."},
	)
	agent, session := newTestAgent(t, model, fixedTimeTool())

	answer, err := agent.Run(context.Background(), session, "what time is it?")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(answer, "10:00 AM") {
		t.Fatalf("unexpected answer: %q", answer)
	}

	// user, tool_call, tool_result, assistant
	turns := session.Transcript().Snapshot()
	if len(turns) != 4 {
		t.Fatalf("expected 4 turns, got %d: %+v", len(turns), turns)
	}
	if turns[2].Kind != TurnToolResult || turns[2].Result == nil || !turns[2].Result.OK {
		t.Fatalf("tool result turn wrong: %+v", turns[2])
	}

	// The second request must include the tool result message.
	second := model.Requests[1]
	var sawResult bool
	for _, msg := range second.Messages {
		if msg.Role == models.RoleTool && strings.Contains(msg.Content, "10:00 AM") {
			sawResult = true
		}
	}
	if !sawResult {
		t.Fatalf("tool result was not fed back to the provider: %+v", second.Messages)
	}
}

func TestAgentFailedToolStaysInTranscript(t *testing.T) {
	model := models.NewScriptedModel(
		models.Completion{ToolCalls: []models.ToolCall{{ID: "c1", Name: "does_not_exist"}}},
		models.Completion{Text: "Sorry, I could not do that."},
	)
	agent, session := newTestAgent(t, model)

	answer, err := agent.Run(context.Background(), session, "do something")
	if err != nil {
		t.Fatalf("a failed tool must not fail the run: %v", err)
	}
	if answer == "" {
		t.Fatalf("expected a final answer")
	}

	turns := session.Transcript().Snapshot()
	var result *ToolResult
	for _, turn := range turns {
		if turn.Kind == TurnToolResult {
			result = turn.Result
		}
	}
	if result == nil || result.OK {
		t.Fatalf("failed tool result missing from transcript: %+v", turns)
	}
}

func TestAgentToolRoundBound(t *testing.T) {
	// The provider keeps calling the tool forever; the agent must stop.
	model := models.NewScriptedModel()
	for i := 0; i < 20; i++ {
		model.Enqueue(models.Completion{ToolCalls: []models.ToolCall{{Name: "get_current_time"}}})
	}
	agent, session := newTestAgent(t, model, fixedTimeTool())

	answer, err := agent.Run(context.Background(), session, "loop forever")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(answer, "more tool calls than I am allowed") {
		t.Fatalf("expected the forced final answer, got %q", answer)
	}

	turns := session.Transcript().Snapshot()
	if turns[len(turns)-1].Kind != TurnAssistant {
		t.Fatalf("transcript must end with an assistant turn: %+v", turns[len(turns)-1])
	}
}

func TestAgentProviderErrorPropagates(t *testing.T) {
	model := models.NewScriptedModel()
	model.Err = errors.New("quota exceeded")
	agent, session := newTestAgent(t, model)

	if _, err := agent.Run(context.Background(), session, "hi"); err == nil {
		t.Fatalf("provider error should propagate")
	}
}

func TestAgentRejectsEmptyInput(t *testing.T) {
	agent, session := newTestAgent(t, models.NewScriptedModel())
	if _, err := agent.Run(context.Background(), session, "   "); err == nil {
		t.Fatalf("blank input should be rejected")
	}
	if session.Transcript().Len() != 0 {
		t.Fatalf("rejected input must not touch the transcript")
	}
}

func TestAgentEmptyCompletionIsAnError(t *testing.T) {
	model := models.NewScriptedModel(models.Completion{Text: "   "})
	agent, session := newTestAgent(t, model)
	if _, err := agent.Run(context.Background(), session, "hi"); err == nil {
		t.Fatalf("empty completion should be an error")
	}
}

func TestAgentMintsCallIDs(t *testing.T) {
	model := models.NewScriptedModel(
		models.Completion{ToolCalls: []models.ToolCall{{Name: "get_current_time"}}},
		models.Completion{Text: "done"},
	)
	agent, session := newTestAgent(t, model, fixedTimeTool())

	if _, err := agent.Run(context.Background(), session, "time?"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, turn := range session.Transcript().Snapshot() {
		if turn.Kind == TurnToolCall && turn.CallID == "" {
			t.Fatalf("tool call without id: %+v", turn)
		}
	}
}

func TestAgentClarifiesInsteadOfCallingTool(t *testing.T) {
	// The provider follows the slot-filling contract: no arguments known, so
	// it answers with a question instead of a tool call.
	var invoked bool
	createTool := NewFuncTool(ToolSpec{
		Name:       "create_product",
		Parameters: []Parameter{{Name: "data", Type: "object", Required: true}},
	}, func(ctx context.Context, req ToolRequest) (ToolResponse, error) {
		invoked = true
		return ToolResponse{Content: "created"}, nil
	})

	model := models.NewScriptedModel(models.Completion{
		Text: "Sure! What should the product be called, and what type is it?",
	})
	agent, session := newTestAgent(t, model, createTool)

	answer, err := agent.Run(context.Background(), session, "Create a product")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if invoked {
		t.Fatalf("tool must not be invoked while parameters are missing")
	}
	if !strings.Contains(answer, "?") {
		t.Fatalf("expected a clarifying question, got %q", answer)
	}
	if session.Transcript().Len() != 2 {
		t.Fatalf("clarification should add exactly two turns, got %d", session.Transcript().Len())
	}
}

func TestNewRequiresModel(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatalf("New without a model should fail")
	}
}
