package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ToolCallRequest is one provider-requested invocation, consumed by the
// invoker and then discarded; only its textual trace survives in the
// transcript.
type ToolCallRequest struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// Invoker executes tool calls. Every possible failure (unknown tool, bad
// arguments, handler error, handler panic, timeout) is converted into a
// failed ToolResult so a broken tool call never terminates the conversation.
type Invoker struct {
	catalog *Catalog
	timeout time.Duration
	logger  zerolog.Logger
}

func NewInvoker(catalog *Catalog, timeout time.Duration, logger zerolog.Logger) *Invoker {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Invoker{catalog: catalog, timeout: timeout, logger: logger}
}

// Call runs one tool invocation to a ToolResult. Mutating tools are invoked
// at most once per request; retry is a provider decision on a later round,
// never the invoker's.
func (inv *Invoker) Call(ctx context.Context, sessionID string, req ToolCallRequest) ToolResult {
	tool, spec, ok := inv.catalog.Lookup(req.Name)
	if !ok {
		inv.logger.Warn().Str("tool", req.Name).Msg("unknown tool requested")
		return ToolResult{OK: false, Text: fmt.Sprintf("unknown tool %q: it is not registered", req.Name)}
	}

	args, problem := validateArguments(spec, req.Arguments)
	if problem != "" {
		inv.logger.Debug().Str("tool", spec.Name).Str("problem", problem).Msg("tool arguments rejected")
		return ToolResult{OK: false, Text: problem}
	}

	cctx, cancel := context.WithTimeout(ctx, inv.timeout)
	defer cancel()

	started := time.Now()
	resp, err := invokeSafely(cctx, tool, ToolRequest{SessionID: sessionID, Arguments: args})
	elapsed := time.Since(started)

	if err != nil {
		if cctx.Err() == context.DeadlineExceeded {
			inv.logger.Warn().Str("tool", spec.Name).Dur("elapsed", elapsed).Msg("tool timed out")
			return ToolResult{OK: false, Text: fmt.Sprintf("tool %s timed out after %s", spec.Name, inv.timeout)}
		}
		inv.logger.Warn().Str("tool", spec.Name).Err(err).Msg("tool failed")
		return ToolResult{OK: false, Text: fmt.Sprintf("tool %s failed: %v", spec.Name, err)}
	}

	inv.logger.Debug().Str("tool", spec.Name).Dur("elapsed", elapsed).Msg("tool succeeded")
	return ToolResult{OK: true, Text: resp.Content}
}

// invokeSafely shields the loop from panicking handlers.
func invokeSafely(ctx context.Context, tool Tool, req ToolRequest) (resp ToolResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool panicked: %v", r)
		}
	}()
	return tool.Invoke(ctx, req)
}

// validateArguments checks the provider-supplied arguments against the
// declared schema before the handler runs: required parameters must be
// present, and values are coerced to their declared types. A non-empty return
// string is the failure diagnostic for the transcript.
func validateArguments(spec ToolSpec, raw map[string]any) (map[string]any, string) {
	args := make(map[string]any, len(raw))
	for k, v := range raw {
		args[k] = v
	}

	var missing []string
	for _, param := range spec.Parameters {
		value, present := args[param.Name]
		if !present || value == nil || value == "" {
			if param.Required {
				missing = append(missing, param.Name)
			}
			continue
		}
		coerced, err := coerceValue(param, value)
		if err != nil {
			return nil, fmt.Sprintf("argument %q of tool %s is invalid: %v", param.Name, spec.Name, err)
		}
		args[param.Name] = coerced
	}
	if len(missing) > 0 {
		return nil, fmt.Sprintf(
			"tool %s is missing required argument(s): %s; ask the user to provide them before calling the tool again",
			spec.Name, strings.Join(missing, ", "),
		)
	}
	return args, ""
}

func coerceValue(param Parameter, value any) (any, error) {
	switch param.Type {
	case "object":
		switch v := value.(type) {
		case map[string]any:
			return v, nil
		case string:
			var parsed map[string]any
			if err := json.Unmarshal([]byte(v), &parsed); err != nil {
				return nil, fmt.Errorf("the provided data is not valid JSON: %v", err)
			}
			return parsed, nil
		default:
			return nil, fmt.Errorf("expected a JSON object, got %T", value)
		}
	case "integer":
		switch v := value.(type) {
		case float64:
			return int64(v), nil
		case int, int64:
			return v, nil
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("expected an integer, got %q", v)
			}
			return n, nil
		default:
			return nil, fmt.Errorf("expected an integer, got %T", value)
		}
	case "number":
		switch v := value.(type) {
		case float64:
			return v, nil
		case string:
			n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, fmt.Errorf("expected a number, got %q", v)
			}
			return n, nil
		default:
			return nil, fmt.Errorf("expected a number, got %T", value)
		}
	case "boolean":
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("expected a boolean, got %q", v)
			}
			return b, nil
		default:
			return nil, fmt.Errorf("expected a boolean, got %T", value)
		}
	default:
		// "string" and anything undeclared: accept scalars, render them.
		if _, ok := value.(string); ok {
			return value, nil
		}
		return fmt.Sprint(value), nil
	}
}
