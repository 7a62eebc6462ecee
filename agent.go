// Package assistant implements the tool-calling agent loop: it receives a
// user message, consults the completion provider with the conversation
// transcript and the tool catalog, executes any requested tools, and repeats
// until the provider produces a final natural-language answer.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/productstack/assistant/src/models"
)

const defaultSystemPrompt = `You are a conversational AI assistant. Your purpose is to help users by answering questions and performing actions using the tools at your disposal.

You have access to tools for product management, document search, and general assistance.

For multi-step requests, like creating a product, you must gather all the required information from the user before you call the tool. Do not call a tool until you have all its required parameters. If any required parameter is missing, do not call the tool; instead ask the user for the missing values, one by one if needed, and be clear about what you need.

When a tool reports a failure, explain it to the user in plain language and decide whether to ask for corrected input. Do not repeat an identical failing call.

Always respond conversationally.`

// loopBoundAnswer is the forced final answer when the tool-round bound trips.
const loopBoundAnswer = "I'm sorry, I wasn't able to complete that request: it required more tool calls than I am allowed to make in one turn. Could you simplify the request or try again?"

// Agent drives the reasoning loop for one conversation at a time.
type Agent struct {
	model         models.ChatModel
	catalog       *Catalog
	invoker       *Invoker
	systemPrompt  string
	maxToolRounds int
	historyWindow int
	logger        zerolog.Logger
}

// Options configure a new Agent.
type Options struct {
	Model         models.ChatModel
	Catalog       *Catalog
	Invoker       *Invoker
	SystemPrompt  string
	MaxToolRounds int // bound on tool rounds per Run; <=0 means the default of 8
	HistoryWindow int // turns rendered to the provider; <=0 means the default of 50
	Logger        zerolog.Logger
}

// New creates an Agent with the provided options.
func New(opts Options) (*Agent, error) {
	if opts.Model == nil {
		return nil, errors.New("agent requires a completion provider")
	}
	catalog := opts.Catalog
	if catalog == nil {
		var err error
		catalog, err = NewCatalog()
		if err != nil {
			return nil, err
		}
	}
	invoker := opts.Invoker
	if invoker == nil {
		invoker = NewInvoker(catalog, 0, opts.Logger)
	}

	systemPrompt := opts.SystemPrompt
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = defaultSystemPrompt
	}
	maxToolRounds := opts.MaxToolRounds
	if maxToolRounds <= 0 {
		maxToolRounds = 8
	}
	historyWindow := opts.HistoryWindow
	if historyWindow <= 0 {
		historyWindow = 50
	}

	return &Agent{
		model:         opts.Model,
		catalog:       catalog,
		invoker:       invoker,
		systemPrompt:  systemPrompt,
		maxToolRounds: maxToolRounds,
		historyWindow: historyWindow,
		logger:        opts.Logger,
	}, nil
}

// Run processes one user message against the session's transcript and returns
// the final assistant-facing answer. Tool failures stay inside the transcript
// as data; only provider failures surface as errors.
func (a *Agent) Run(ctx context.Context, session *Session, userInput string) (string, error) {
	if strings.TrimSpace(userInput) == "" {
		return "", errors.New("user input is empty")
	}

	transcript := session.Transcript()
	transcript.Append(Turn{Kind: TurnUser, Text: userInput})

	decls := a.catalog.Decls()
	rounds := 0
	for {
		completion, err := a.model.Chat(ctx, models.ChatRequest{
			System:   a.systemPrompt,
			Messages: renderMessages(transcript.Snapshot(), a.historyWindow),
			Tools:    decls,
		})
		if err != nil {
			return "", fmt.Errorf("completion provider: %w", err)
		}

		if len(completion.ToolCalls) == 0 {
			answer := strings.TrimSpace(completion.Text)
			if answer == "" {
				return "", errors.New("completion provider returned an empty response")
			}
			transcript.Append(Turn{Kind: TurnAssistant, Text: answer})
			return answer, nil
		}

		rounds++
		if rounds > a.maxToolRounds {
			a.logger.Warn().
				Str("session", session.ID()).
				Int("rounds", rounds).
				Msg("tool round bound exceeded, forcing final answer")
			transcript.Append(Turn{Kind: TurnAssistant, Text: loopBoundAnswer})
			return loopBoundAnswer, nil
		}

		for _, call := range completion.ToolCalls {
			id := call.ID
			if id == "" {
				id = uuid.NewString()
			}
			transcript.Append(Turn{
				Kind:      TurnToolCall,
				CallID:    id,
				ToolName:  call.Name,
				Arguments: call.Arguments,
			})

			result := a.invoker.Call(ctx, session.ID(), ToolCallRequest{
				ID:        id,
				Name:      call.Name,
				Arguments: call.Arguments,
			})
			transcript.Append(Turn{
				Kind:     TurnToolResult,
				CallID:   id,
				ToolName: call.Name,
				Result:   &result,
			})

			a.logger.Info().
				Str("session", session.ID()).
				Str("tool", call.Name).
				Bool("ok", result.OK).
				Msg("tool invoked")
		}
	}
}

// Catalog exposes the agent's tool registry.
func (a *Agent) Catalog() *Catalog {
	return a.catalog
}
