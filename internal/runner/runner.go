package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/petasbytes/mcp-agent/internal/errkind"
	"github.com/petasbytes/mcp-agent/internal/provider"
	"github.com/petasbytes/mcp-agent/internal/telemetry"
	"github.com/petasbytes/mcp-agent/internal/transport"
	"github.com/petasbytes/mcp-agent/memory"
	"github.com/petasbytes/mcp-agent/tools"
)

var logger = xlog.NewPackageLogger("github.com/petasbytes/mcp-agent/internal", "runner")

// Invoker executes a tool on the peer.
type Invoker interface {
	Invoke(ctx context.Context, name string, args json.RawMessage) (*transport.Outcome, error)
}

type Runner struct {
	Client    *anthropic.Client
	Tools     *tools.Registry
	Invoker   Invoker
	Model     anthropic.Model
	MaxTokens int64
	// System is the optional system instruction sent with every request.
	System string
	// OnTransition, if set, observes every state change.
	OnTransition func(from, to State)
}

func New(client *anthropic.Client, registry *tools.Registry, invoker Invoker) *Runner {
	return &Runner{
		Client:    client,
		Tools:     registry,
		Invoker:   invoker,
		Model:     provider.DefaultModel,
		MaxTokens: provider.DefaultMaxTokens,
	}
}

// Result is what one query produced.
type Result struct {
	// Transcript holds text fragments and tool annotations in emission order.
	Transcript   []string
	Conversation *memory.Conversation
	// Completions counts completion requests issued.
	Completions int
	// ToolCalls counts tool invocations attempted.
	ToolCalls int
}

// Text joins the transcript lines.
func (r *Result) Text() string {
	return strings.Join(r.Transcript, "\n")
}

func (r *Result) add(line string) {
	if line != "" {
		r.Transcript = append(r.Transcript, line)
	}
}

// Run resolves query: it requests completions and dispatches tool requests
// until a response carries no tool requests. A completion failure aborts the
// query; tool failures are recorded in the transcript and the loop continues.
func (r *Runner) Run(ctx context.Context, query string) (*Result, error) {
	ctx, turnID := telemetry.EnsureTurnID(ctx)
	telemetry.EmitQueryFeatures(ctx, query)

	res := &Result{Conversation: &memory.Conversation{}}
	conv := res.Conversation

	var pending []memory.Fragment
	state := StateAwaitingQuery
	next := func(to State) {
		logger.ContextKV(ctx, xlog.DEBUG, "turn_id", turnID, "from", state, "to", to)
		if r.OnTransition != nil {
			r.OnTransition(state, to)
		}
		state = to
	}

	for state != StateDone {
		switch state {
		case StateAwaitingQuery:
			conv.Append(memory.UserMessage{Text: query})
			next(StateRequestingCompletion)

		case StateRequestingCompletion:
			if err := conv.CheckPairing(); err != nil {
				return nil, errors.Wrap(err, "conversation out of order")
			}
			msg, err := r.complete(ctx, conv, res.Completions)
			if err != nil {
				return nil, err
			}
			res.Completions++

			frags := fragmentsOf(msg)
			if len(memory.ModelOutput{Fragments: frags}.ToolRequests()) > 0 {
				pending = frags
				next(StateDispatchingTools)
				continue
			}

			if len(frags) == 0 {
				logger.ContextKV(ctx, xlog.WARNING, "event", "empty_response", "turn_id", turnID, "stop_reason", string(msg.StopReason))
			}
			for _, f := range frags {
				res.add(f.(memory.TextFragment).Text)
			}
			conv.Append(memory.ModelOutput{Fragments: frags})
			next(StateDone)

		case StateDispatchingTools:
			r.dispatch(ctx, conv, pending, res)
			pending = nil
			next(StateRequestingCompletion)
		}
	}
	return res, nil
}

func (r *Runner) complete(ctx context.Context, conv *memory.Conversation, round int) (*anthropic.Message, error) {
	turnID, _ := telemetry.TurnIDFromContext(ctx)

	params := anthropic.MessageNewParams{
		Model:     r.Model,
		MaxTokens: r.MaxTokens,
		Messages:  toMessageParams(conv.Turns()),
	}
	if r.Tools != nil && r.Tools.Len() > 0 {
		params.Tools = r.Tools.Declarations()
	}
	if r.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: r.System}}
	}

	telemetry.Emit("completion_request", map[string]any{
		"turn_id":  turnID,
		"round":    round,
		"model":    string(r.Model),
		"messages": len(params.Messages),
		"tools":    len(params.Tools),
	})
	logger.ContextKV(ctx, xlog.DEBUG,
		"event", "completion_start",
		"turn_id", turnID,
		"round", round,
		"messages", len(params.Messages),
	)

	msg, err := r.Client.Messages.New(ctx, params)
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR, "event", "completion_error", "turn_id", turnID, "err", err.Error())
		return nil, errkind.Completion(errors.Wrap(err, "completion request"))
	}

	frags := memory.ModelOutput{Fragments: fragmentsOf(msg)}
	telemetry.Emit("completion_response", map[string]any{
		"turn_id":        turnID,
		"round":          round,
		"stop_reason":    string(msg.StopReason),
		"text_fragments": len(frags.Texts()),
		"tool_requests":  len(frags.ToolRequests()),
	})
	logger.ContextKV(ctx, xlog.DEBUG,
		"event", "completion_end",
		"turn_id", turnID,
		"stop_reason", string(msg.StopReason),
		"tool_requests", len(frags.ToolRequests()),
	)
	return msg, nil
}

// dispatch walks one response in emission order. Each tool request is recorded
// as its own ModelOutput, holding the text emitted since the previous request,
// and is followed by its outcome. Text after the last request stays on the
// last ModelOutput so the replayed assistant turns keep the emitted order.
func (r *Runner) dispatch(ctx context.Context, conv *memory.Conversation, frags []memory.Fragment, res *Result) {
	var (
		segments [][]memory.Fragment
		buf      []memory.Fragment
	)
	for _, f := range frags {
		buf = append(buf, f)
		if _, ok := f.(memory.ToolRequest); ok {
			segments = append(segments, buf)
			buf = nil
		}
	}
	if len(buf) > 0 && len(segments) > 0 {
		last := len(segments) - 1
		segments[last] = append(segments[last], buf...)
	}

	for _, seg := range segments {
		conv.Append(memory.ModelOutput{Fragments: seg})
		var outcome memory.ToolOutcome
		for _, f := range seg {
			switch v := f.(type) {
			case memory.TextFragment:
				res.add(v.Text)
			case memory.ToolRequest:
				outcome = r.execTool(ctx, v, res)
			}
		}
		conv.Append(outcome)
	}
}

// execTool invokes req on the peer. Unknown names are still sent: the peer
// decides validity. Failures become transcript annotations, never errors.
func (r *Runner) execTool(ctx context.Context, req memory.ToolRequest, res *Result) memory.ToolOutcome {
	turnID, _ := telemetry.TurnIDFromContext(ctx)
	if r.Tools != nil && !r.Tools.Has(req.Name) {
		logger.ContextKV(ctx, xlog.DEBUG, "event", "tool_not_found", "turn_id", turnID, "tool", req.Name)
	}
	logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_start",
		"turn_id", turnID,
		"tool", req.Name,
		"args", string(req.Arguments),
	)

	emit := func(start time.Time, outputSize int, errStr string) {
		fields := map[string]any{
			"tool_name":   req.Name,
			"duration_ms": time.Since(start).Milliseconds(),
			"input_size":  len(req.Arguments),
			"output_size": outputSize,
			"turn_id":     turnID,
			"error":       nil,
		}
		if errStr != "" {
			fields["error"] = errStr
		}
		telemetry.Emit("tool_exec", fields)
	}

	start := time.Now()
	out, err := r.Invoker.Invoke(ctx, req.Name, req.Arguments)
	res.ToolCalls++

	if err != nil {
		// the peer's message is kept out of telemetry
		emit(start, 0, "tool error")
		logger.ContextKV(ctx, xlog.DEBUG, "event", "tool_error", "turn_id", turnID, "tool", req.Name, "err", err.Error())
		res.add(fmt.Sprintf("[Error] Failed to execute tool %s: %s", req.Name, err.Error()))

		content := []transport.ContentItem{transport.TextItem(err.Error())}
		if out != nil && len(out.Content) > 0 {
			content = out.Content
		}
		return memory.ToolOutcome{RequestID: req.ID, Content: content, IsError: true}
	}

	text := out.Text()
	emit(start, len(text), "")
	logger.ContextKV(ctx, xlog.DEBUG, "event", "tool_end", "turn_id", turnID, "tool", req.Name, "output_size", len(text))
	res.add(fmt.Sprintf("[Tool %s]: Executed with result: %s", req.Name, text))
	return memory.ToolOutcome{RequestID: req.ID, Content: out.Content, IsError: out.IsError}
}
